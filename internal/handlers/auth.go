package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/postboard/apiserver/internal/services"
	"github.com/postboard/apiserver/internal/views"
	"github.com/rs/zerolog/hlog"
)

// AuthHandler serves registration, login, logout and the dashboard.
type AuthHandler struct {
	users        *services.UserService
	sessions     *services.SessionService
	posts        *services.PostService
	views        views.Renderer
	cookieSecure bool
}

// NewAuthHandler constructs an AuthHandler with the provided dependencies.
func NewAuthHandler(deps Deps) *AuthHandler {
	return &AuthHandler{
		users:        deps.Users,
		sessions:     deps.Sessions,
		posts:        deps.Posts,
		views:        deps.Views,
		cookieSecure: deps.CookieSecure,
	}
}

// AuthRouter registers auth routes on the given router.
func AuthRouter(r chi.Router, deps Deps) {
	handler := NewAuthHandler(deps)

	r.Get("/register", handler.RegisterPage)
	r.Post("/register", handler.Register)
	r.Get("/login", handler.LoginPage)
	r.Post("/token", handler.Token)
	r.Post("/loginp", handler.LoginCookie)
	r.Get("/logout", handler.Logout)
	r.With(RequireSession(deps.Sessions)).Get("/dashboard", handler.Dashboard)
}

type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

func (h *AuthHandler) RegisterPage(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, views.Register, nil)
}

func (h *AuthHandler) LoginPage(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, views.Login, views.LoginData{})
}

// Register creates a user from form fields and shows the login page.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "invalid form")
		return
	}

	username := strings.TrimSpace(r.PostFormValue("username"))
	password := r.PostFormValue("password")
	if username == "" || password == "" {
		writeError(w, http.StatusBadRequest, "username and password are required")
		return
	}
	isAdmin, err := parseFormBool(r.PostFormValue("is_admin"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "is_admin must be a boolean")
		return
	}

	user, err := h.users.Register(r.Context(), username, password, isAdmin)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	hlog.FromRequest(r).Info().Str("username", user.Username).Bool("is_admin", user.IsAdmin).Msg("user registered")

	h.render(w, r, http.StatusOK, views.Login, views.LoginData{Message: "Registration successful, please log in."})
}

// Token is the password grant: form credentials in, bearer token out.
func (h *AuthHandler) Token(w http.ResponseWriter, r *http.Request) {
	token, ok := h.login(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, TokenResponse{AccessToken: token, TokenType: "bearer"})
}

// LoginCookie stores the token in the session cookie and redirects to the
// dashboard.
func (h *AuthHandler) LoginCookie(w http.ResponseWriter, r *http.Request) {
	token, ok := h.login(w, r)
	if !ok {
		return
	}
	setSessionCookie(w, token, h.sessions.TTL(), h.cookieSecure)
	http.Redirect(w, r, "/dashboard", http.StatusFound)
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Logout(r.Context(), sessionCookie(r)); err != nil {
		hlog.FromRequest(r).Warn().Err(err).Msg("revoke session token")
	}
	clearSessionCookie(w, h.cookieSecure)
	http.Redirect(w, r, "/login", http.StatusFound)
}

func (h *AuthHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r.Context())
	if !ok {
		writeServiceError(w, r, services.ErrUnauthenticated)
		return
	}
	posts, err := h.posts.List(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	h.render(w, r, http.StatusOK, views.Dashboard, views.DashboardData{User: user, Posts: posts})
}

func (h *AuthHandler) login(w http.ResponseWriter, r *http.Request) (string, bool) {
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "invalid form")
		return "", false
	}
	username := r.PostFormValue("username")
	password := r.PostFormValue("password")
	if strings.TrimSpace(username) == "" || password == "" {
		writeError(w, http.StatusBadRequest, "username and password are required")
		return "", false
	}

	token, err := h.sessions.Login(r.Context(), username, password)
	if err != nil {
		writeServiceError(w, r, err)
		return "", false
	}
	return token, true
}

func (h *AuthHandler) render(w http.ResponseWriter, r *http.Request, status int, name string, data any) {
	renderView(w, r, h.views, status, name, data)
}
