/*
SPDX-License-Identifier: Apache-2.0

Copyright 2024 The Taxinomia Authors

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    https://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/ternarybob/banner"

	"github.com/google/taxinomia-loans/core/config"
	"github.com/google/taxinomia-loans/core/logging"
)

// printBanner displays the startup banner on stderr and logs the same facts.
func printBanner(cfg *config.Config, records int, logger *logging.Logger) {
	serviceURL := fmt.Sprintf("http://%s", cfg.Server.Addr())

	lineColor := banner.ColorCyan
	textColor := banner.ColorBold + banner.ColorWhite
	hr := lineColor + strings.Repeat("═", 60) + banner.ColorReset

	fmt.Fprintf(os.Stderr, "\n%s\n\n", hr)
	fmt.Fprintf(os.Stderr, "%s  %s%s\n", textColor, strings.ToUpper(cfg.Dashboard.Title), banner.ColorReset)
	fmt.Fprintf(os.Stderr, "%s  Loan portfolio dashboard%s\n", textColor, banner.ColorReset)
	fmt.Fprintf(os.Stderr, "\n%s\n\n", hr)

	kvPad := 12
	for _, kv := range [][2]string{
		{"Version", version},
		{"Service URL", serviceURL},
		{"Data", cfg.Data.Path},
		{"Records", fmt.Sprint(records)},
		{"Log level", cfg.Logging.Level},
	} {
		fmt.Fprintf(os.Stderr, "%s  %-*s %s%s\n", textColor, kvPad, kv[0], kv[1], banner.ColorReset)
	}
	fmt.Fprintf(os.Stderr, "\n%s\n\n", hr)

	logger.Info().
		Str("version", version).
		Str("service_url", serviceURL).
		Str("data", cfg.Data.Path).
		Int("records", records).
		Msg("Application started")
}

// printShutdownBanner displays the shutdown banner on stderr.
func printShutdownBanner(logger *logging.Logger) {
	hr := banner.ColorCyan + strings.Repeat("═", 40) + banner.ColorReset

	fmt.Fprintf(os.Stderr, "\n%s\n", hr)
	fmt.Fprintf(os.Stderr, "%s  SHUTTING DOWN%s\n", banner.ColorBold+banner.ColorWhite, banner.ColorReset)
	fmt.Fprintf(os.Stderr, "%s\n\n", hr)

	logger.Info().Msg("Application shutting down")
}
