// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 QuillNote Contributors

package errutil_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/samber/oops"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quillnote/quillnote/pkg/errutil"
)

func TestAttrs(t *testing.T) {
	t.Run("plain error yields only the message", func(t *testing.T) {
		attrs := errutil.Attrs(errors.New("boom"))
		assert.Equal(t, []any{"error", "boom"}, attrs)
	})

	t.Run("oops error yields code and context", func(t *testing.T) {
		err := oops.Code("THING_FAILED").With("id", 42).Errorf("boom")
		attrs := errutil.Attrs(err)

		assert.Contains(t, attrs, "code")
		assert.Contains(t, attrs, "THING_FAILED")
		assert.Contains(t, attrs, "context")
	})

	t.Run("oops error without code omits the attr", func(t *testing.T) {
		attrs := errutil.Attrs(oops.With("id", 42).Errorf("boom"))

		assert.NotContains(t, attrs, "code")
		assert.Contains(t, attrs, "context")
	})
}

func TestLogError(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	err := oops.Code("THING_FAILED").With("id", 42).Errorf("boom")
	errutil.LogError(logger, "operation failed", err)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "operation failed", entry["msg"])
	assert.Equal(t, "ERROR", entry["level"])
	assert.Equal(t, "THING_FAILED", entry["code"])
	assert.Contains(t, entry["error"], "boom")
}
