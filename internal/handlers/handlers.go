package handlers

import (
	"net/http"

	"github.com/postboard/apiserver/internal/services"
	"github.com/postboard/apiserver/internal/views"
)

// Deps bundles the services and renderer shared by the routers.
type Deps struct {
	Users        *services.UserService
	Sessions     *services.SessionService
	Posts        *services.PostService
	Views        views.Renderer
	CookieSecure bool
}

func Healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
