package views

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/postboard/apiserver/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderViews(t *testing.T) {
	r, err := NewTemplateRenderer()
	require.NoError(t, err)

	now := time.Date(2026, 1, 2, 3, 4, 0, 0, time.UTC)
	posts := []types.Post{{ID: 1, Title: "Hello", Content: "First post", CreatedAt: now, UpdatedAt: now}}

	cases := []struct {
		name string
		data any
		want []string
	}{
		{name: Register, want: []string{`action="/register"`, `name="is_admin"`}},
		{name: Login, data: LoginData{Message: "Registered"}, want: []string{`action="/loginp"`, "Registered"}},
		{name: Dashboard, data: DashboardData{User: types.User{Username: "alice", IsAdmin: true}, Posts: posts}, want: []string{"Welcome, alice", "edit and delete", "Hello"}},
		{name: Posts, data: PostsData{Posts: posts}, want: []string{"First post", "2026-01-02 03:04"}},
		{name: Posts, data: PostsData{}, want: []string{"No posts yet."}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			require.NoError(t, r.Render(rec, http.StatusOK, tc.name, tc.data))
			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
			for _, s := range tc.want {
				assert.Contains(t, rec.Body.String(), s)
			}
		})
	}
}

func TestRenderEscapesContent(t *testing.T) {
	r, err := NewTemplateRenderer()
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	data := DashboardData{User: types.User{Username: "<script>alert(1)</script>"}}
	require.NoError(t, r.Render(rec, http.StatusOK, Dashboard, data))
	assert.NotContains(t, rec.Body.String(), "<script>alert(1)</script>")
	assert.Contains(t, rec.Body.String(), "&lt;script&gt;")
}

func TestRenderUnknownView(t *testing.T) {
	r, err := NewTemplateRenderer()
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	assert.Error(t, r.Render(rec, http.StatusOK, "missing", nil))
	assert.Zero(t, rec.Body.Len())
}

type brokenWriter struct {
	*httptest.ResponseRecorder
}

func (brokenWriter) Write([]byte) (int, error) {
	return 0, errors.New("connection reset")
}

func TestRenderReportsWriteFailure(t *testing.T) {
	r, err := NewTemplateRenderer()
	require.NoError(t, err)

	w := brokenWriter{httptest.NewRecorder()}
	err = r.Render(w, http.StatusOK, Login, LoginData{})
	assert.ErrorIs(t, err, ErrResponseWrite)
	assert.Equal(t, http.StatusOK, w.Code)
}
