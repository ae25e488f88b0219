// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 QuillNote Contributors

// Package errutil bridges samber/oops errors and structured logging.
package errutil

import (
	"log/slog"

	"github.com/samber/oops"
)

// Attrs extracts structured logging attributes from an error. For oops
// errors this includes the code and attached context; for everything else
// just the error string.
func Attrs(err error) []any {
	attrs := []any{"error", err.Error()}
	oopsErr, ok := oops.AsOops(err)
	if !ok {
		return attrs
	}
	if code, ok := oopsErr.Code().(string); ok && code != "" {
		attrs = append(attrs, "code", code)
	}
	if ctx := oopsErr.Context(); len(ctx) > 0 {
		attrs = append(attrs, "context", ctx)
	}
	return attrs
}

// LogError logs an error with structured context.
func LogError(logger *slog.Logger, msg string, err error) {
	logger.Error(msg, Attrs(err)...)
}
