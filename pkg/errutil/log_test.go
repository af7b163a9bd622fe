// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sandbox Contributors

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

	"github.com/sandboxgame/sandbox/pkg/errutil"
)

func TestLogError_WithOopsError(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	err := oops.Code("CONTENT_ERROR").
		With("key", "maxStack").
		Errorf("malformed value")

	errutil.LogError(logger, "load failed", err)

	var logEntry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &logEntry))
	assert.Equal(t, "ERROR", logEntry["level"])
	assert.Equal(t, "load failed", logEntry["msg"])
	assert.Equal(t, "CONTENT_ERROR", logEntry["code"])
}

func TestLogError_WithStandardError(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	errutil.LogError(logger, "load failed", errors.New("standard error"))

	var logEntry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &logEntry))
	assert.Equal(t, "ERROR", logEntry["level"])
	assert.Contains(t, logEntry["error"], "standard error")
}

func TestLogWarn(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	errutil.LogWarn(logger, "clamped", oops.Code("LOD_CLAMPED").Errorf("too far"))

	var logEntry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &logEntry))
	assert.Equal(t, "WARN", logEntry["level"])
	assert.Equal(t, "LOD_CLAMPED", logEntry["code"])
}

func TestCode(t *testing.T) {
	assert.Equal(t, "DEF_NOT_FOUND", errutil.Code(oops.Code("DEF_NOT_FOUND").Errorf("x")))
	assert.Empty(t, errutil.Code(errors.New("plain")))
	assert.Empty(t, errutil.Code(oops.Errorf("no code")))
}

func TestCountCodes_FlattensJoinedErrors(t *testing.T) {
	joined := errors.Join(
		oops.Code("CONTENT_ERROR").Errorf("a"),
		oops.Code("CONTENT_ERROR").Errorf("b"),
		errors.Join(oops.Code("DEF_DUPLICATE").Errorf("c"), errors.New("d")),
	)

	counts := errutil.CountCodes(joined, nil)

	assert.Equal(t, map[string]int{
		"CONTENT_ERROR":      2,
		"DEF_DUPLICATE":      1,
		errutil.UncodedError: 1,
	}, counts)
	assert.Equal(t, []string{"CONTENT_ERROR", "DEF_DUPLICATE", errutil.UncodedError}, errutil.SortedCodes(counts))
}

func TestHasCode(t *testing.T) {
	err := errors.Join(errors.New("x"), oops.Code("YAML_INVALID").Errorf("y"))

	assert.True(t, errutil.HasCode(err, "YAML_INVALID"))
	assert.False(t, errutil.HasCode(err, "DEF_NOT_FOUND"))
	assert.False(t, errutil.HasCode(nil, "YAML_INVALID"))
}
