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
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/google/taxinomia-loans/core/charts"
	"github.com/google/taxinomia-loans/core/config"
	"github.com/google/taxinomia-loans/core/csvimport"
	"github.com/google/taxinomia-loans/core/logging"
	"github.com/google/taxinomia-loans/core/server"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "taxinomia-loans: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// .env is optional
	_ = godotenv.Load()

	cfg, err := config.LoadConfig("loans.toml", os.Getenv("LOANS_CONFIG"))
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := logging.NewLogger(cfg.Logging.Level)

	options := csvimport.DefaultOptions()
	options.Delimiter = cfg.Data.DelimiterRune()
	dataset, stats, err := csvimport.ImportFromFile(cfg.Data.Path, options)
	if err != nil {
		return fmt.Errorf("loading %s: %w", cfg.Data.Path, err)
	}
	for _, warning := range stats.Warnings() {
		logger.Warn().Str("path", cfg.Data.Path).Msg(warning)
	}
	logger.Info().
		Str("path", cfg.Data.Path).
		Int("records", dataset.Length()).
		Int("columns", len(dataset.GetColumnNames())).
		Msg("Loan data loaded")

	srv, err := server.NewServer(dataset, stats, logger, server.Options{
		Title:     cfg.Dashboard.Title,
		GridLimit: cfg.Dashboard.GridLimit,
		Chart: charts.Options{
			Width:  cfg.Dashboard.ChartWidth,
			Height: cfg.Dashboard.ChartHeight,
		},
		ChartRateLimit: cfg.Server.ChartRateLimit,
	})
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      srv.Handler(),
		ReadTimeout:  cfg.Server.GetReadTimeout(),
		WriteTimeout: cfg.Server.GetWriteTimeout(),
	}

	printBanner(cfg, dataset.Length(), logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		printShutdownBanner(logger)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.GetShutdownTimeout())
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
