// Package core provides money parsing and handling utilities.
//
// This file contains functions for parsing monetary amounts from strings
// and rounding them to currency precision.
package core

import (
	"errors"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

// ErrMalformedAmount is returned by ParseAmount for text that is not a
// plain non-negative decimal.
var ErrMalformedAmount = errors.New("malformed amount")

// RoundCurrency rounds to 2 decimal places, half away from zero. Amounts in
// this package are never negative, so this is the usual half-up rule.
func RoundCurrency(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// FormatAmount renders d with exactly two decimals, e.g. "34.00".
func FormatAmount(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// ParseAmount converts a dollar string to a currency amount.
//
// It accepts an optional leading "$" and commas as thousands separators in
// groups of three before the decimal point. Signs are rejected. Zero is
// accepted: comped items are legitimate expenses.
//
// Examples:
//   ParseAmount("12.34")     -> 12.34
//   ParseAmount("$1,200.50") -> 1200.50
//   ParseAmount("12.345")    -> 12.35 (half-up)
//   ParseAmount("12,34")     -> ErrMalformedAmount
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "$")
	if s == "" {
		return decimal.Zero, ErrMalformedAmount
	}
	if strings.Count(s, ".") > 1 {
		return decimal.Zero, ErrMalformedAmount
	}
	whole, frac, _ := strings.Cut(s, ".")
	if strings.Contains(frac, ",") || !validGrouping(whole) {
		return decimal.Zero, ErrMalformedAmount
	}
	s = strings.ReplaceAll(s, ",", "")
	for _, r := range s {
		if r != '.' && !unicode.IsDigit(r) {
			return decimal.Zero, ErrMalformedAmount
		}
	}
	if s == "." {
		return decimal.Zero, ErrMalformedAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrMalformedAmount
	}
	return RoundCurrency(d), nil
}

// validGrouping reports whether commas in the integer part, if any, split it
// into a leading group of 1-3 digits followed by groups of exactly three.
func validGrouping(whole string) bool {
	if !strings.Contains(whole, ",") {
		return true
	}
	groups := strings.Split(whole, ",")
	if n := len(groups[0]); n < 1 || n > 3 {
		return false
	}
	for _, g := range groups[1:] {
		if len(g) != 3 {
			return false
		}
	}
	return true
}
