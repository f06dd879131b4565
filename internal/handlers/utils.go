package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/postboard/apiserver/internal/services"
	"github.com/postboard/apiserver/internal/store"
	"github.com/postboard/apiserver/internal/views"
	"github.com/postboard/apiserver/types"
	"github.com/rs/zerolog/hlog"
)

type contextKey string

const contextUserKey contextKey = "user"

// ErrorResponse is the error payload for every failed request.
type ErrorResponse struct {
	Detail string `json:"detail"`
}

func withUser(ctx context.Context, user types.User) context.Context {
	return context.WithValue(ctx, contextUserKey, user)
}

func userFromContext(ctx context.Context) (types.User, bool) {
	user, ok := ctx.Value(contextUserKey).(types.User)
	return user, ok
}

func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Detail: message})
}

// writeServiceError maps service and store errors to a status and detail.
// Unknown errors are logged and reported as 500.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, services.ErrInvalidCredentials):
		w.Header().Set("WWW-Authenticate", "Bearer")
		writeError(w, http.StatusUnauthorized, "Incorrect username or password")
	case errors.Is(err, services.ErrUnauthenticated):
		writeError(w, http.StatusUnauthorized, "Not authenticated")
	case errors.Is(err, services.ErrUserNotFound):
		writeError(w, http.StatusNotFound, "User not found")
	case errors.Is(err, services.ErrForbidden):
		writeError(w, http.StatusForbidden, "Access forbidden")
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "Post not found")
	case errors.Is(err, store.ErrConflict):
		writeError(w, http.StatusConflict, "Username already registered")
	case errors.Is(err, services.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		hlog.FromRequest(r).Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}

// renderView answers with a page. Once the status line is out, a failure can
// only be logged.
func renderView(w http.ResponseWriter, r *http.Request, renderer views.Renderer, status int, name string, data any) {
	err := renderer.Render(w, status, name, data)
	switch {
	case err == nil:
	case errors.Is(err, views.ErrResponseWrite):
		hlog.FromRequest(r).Warn().Err(err).Str("view", name).Msg("response write failed")
	default:
		writeServiceError(w, r, err)
	}
}

// parseFormBool accepts strconv.ParseBool values and the "on" sent by an
// HTML checkbox. An absent field is false.
func parseFormBool(value string) (bool, error) {
	value = strings.TrimSpace(value)
	switch strings.ToLower(value) {
	case "":
		return false, nil
	case "on":
		return true, nil
	}
	return strconv.ParseBool(value)
}
