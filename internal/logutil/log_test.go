package logutil

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/postboard/apiserver/config"
	"github.com/rs/zerolog"
	"github.com/steinfletcher/apitest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLevels(t *testing.T) {
	var buf bytes.Buffer
	logger := New(config.LogConfig{Level: "WARN"}, &buf)
	assert.Equal(t, zerolog.WarnLevel, logger.GetLevel())

	logger.Info().Msg("dropped")
	assert.Zero(t, buf.Len())
	logger.Warn().Msg("kept")
	assert.Contains(t, buf.String(), `"message":"kept"`)

	assert.Equal(t, zerolog.InfoLevel, New(config.LogConfig{Level: "loud"}, &buf).GetLevel())
	assert.Equal(t, zerolog.InfoLevel, New(config.LogConfig{}, &buf).GetLevel())
}

func TestContextLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := New(config.LogConfig{Level: "debug"}, &buf)

	ctx := WithLogger(context.Background(), logger)
	got := GetOrDefault(ctx)
	got.Debug().Msg("from context")
	assert.Contains(t, buf.String(), "from context")

	assert.NotPanics(t, func() {
		fallback := GetOrDefault(context.Background())
		_ = fallback
	})
}

func TestRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := New(config.LogConfig{Level: "info"}, &buf)

	handler := middleware.RequestID(RequestLogger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		zerolog.Ctx(r.Context()).Info().Msg("inside handler")
		w.WriteHeader(http.StatusTeapot)
	})))

	apitest.New().
		Handler(handler).
		Get("/brew").
		Expect(t).
		Status(http.StatusTeapot).
		End()

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 2)

	var access map[string]any
	require.NoError(t, json.Unmarshal(lines[1], &access))
	assert.Equal(t, "request", access["message"])
	assert.Equal(t, "/brew", access["path"])
	assert.EqualValues(t, http.StatusTeapot, access["status"])
	assert.NotEmpty(t, access["request_id"])
}
