// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sandbox Contributors

// Package errutil holds helpers for logging and inspecting oops errors.
package errutil

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/samber/oops"
)

// UncodedError is the code CountCodes reports for errors without one.
const UncodedError = "UNCODED"

// LogError logs an error with structured context if it's an oops error.
// For oops errors, it logs the message, code and context.
// For standard errors, it logs the error string.
func LogError(logger *slog.Logger, msg string, err error) {
	logger.Error(msg, attrs(err)...)
}

// LogWarn is LogError at warning level, for problems loading carries on
// past.
func LogWarn(logger *slog.Logger, msg string, err error) {
	logger.Warn(msg, attrs(err)...)
}

func attrs(err error) []any {
	oopsErr, ok := oops.AsOops(err)
	if !ok {
		return []any{"error", err}
	}
	out := []any{"error", oopsErr.Error()}
	if code := oopsErr.Code(); code != nil && code != "" {
		out = append(out, "code", code)
	}
	if ctx := oopsErr.Context(); len(ctx) > 0 {
		out = append(out, "context", ctx)
	}
	return out
}

// Code returns the oops code of err as a string, or "" when it has none.
func Code(err error) string {
	oopsErr, ok := oops.AsOops(err)
	if !ok {
		return ""
	}
	code := oopsErr.Code()
	if code == nil {
		return ""
	}
	return fmt.Sprint(code)
}

// Flatten expands errors built with errors.Join into their leaves.
func Flatten(err error) []error {
	if err == nil {
		return nil
	}
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		var out []error
		for _, e := range joined.Unwrap() {
			out = append(out, Flatten(e)...)
		}
		return out
	}
	return []error{err}
}

// CountCodes counts errors by oops code. Joined errors are counted per
// leaf.
func CountCodes(errs ...error) map[string]int {
	counts := make(map[string]int)
	for _, err := range errs {
		for _, leaf := range Flatten(err) {
			code := Code(leaf)
			if code == "" {
				code = UncodedError
			}
			counts[code]++
		}
	}
	return counts
}

// SortedCodes returns the keys of a CountCodes result in order.
func SortedCodes(counts map[string]int) []string {
	codes := make([]string, 0, len(counts))
	for code := range counts {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// HasCode reports whether err, or any error joined into it, carries code.
func HasCode(err error, code string) bool {
	for _, leaf := range Flatten(err) {
		if Code(leaf) == code {
			return true
		}
	}
	return false
}
