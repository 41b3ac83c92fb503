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

// Package format renders dashboard figures as display strings with English
// digit grouping.
package format

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// Integer formats a count: 38576 -> "38,576".
func Integer(n int) string {
	return printer.Sprintf("%d", n)
}

// Decimal formats a number with two decimals: 1234.5 -> "1,234.50".
func Decimal(v float64) string {
	return printer.Sprintf("%.2f", v)
}

// Currency formats a dollar amount: 1234.5 -> "$1,234.50".
func Currency(v float64) string {
	if v < 0 {
		return "-$" + Decimal(-v)
	}
	return "$" + Decimal(v)
}

// Thousands formats a count in thousands: 38576 -> "38.58K".
func Thousands(v float64) string {
	return Decimal(v/1_000) + "K"
}

// Millions formats a dollar amount in millions: 435757075 -> "$435.76M".
func Millions(v float64) string {
	if v < 0 {
		return "-$" + Decimal(-v/1_000_000) + "M"
	}
	return "$" + Decimal(v/1_000_000) + "M"
}

// Percent formats a fraction as a percentage: 0.1205 -> "12.05%".
func Percent(fraction float64) string {
	return Decimal(fraction*100) + "%"
}

// Compact formats an axis value with a magnitude suffix: 1240000 -> "1.2M".
func Compact(v float64) string {
	abs := v
	if abs < 0 {
		abs = -abs
	}
	switch {
	case abs >= 1_000_000:
		return printer.Sprintf("%.1fM", v/1_000_000)
	case abs >= 1_000:
		return printer.Sprintf("%.1fK", v/1_000)
	case abs == float64(int64(abs)):
		return printer.Sprintf("%d", int64(v))
	default:
		return printer.Sprintf("%.2f", v)
	}
}

// Optional formats v with fn, or returns "" when v is missing.
func Optional(v *float64, fn func(float64) string) string {
	if v == nil {
		return ""
	}
	return fn(*v)
}
