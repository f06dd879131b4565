package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/postboard/apiserver/internal/services"
	"github.com/postboard/apiserver/internal/views"
	"github.com/rs/zerolog/hlog"
)

// PostHandler provides HTTP handlers for posts.
type PostHandler struct {
	posts *services.PostService
	views views.Renderer
}

func NewPostHandler(deps Deps) *PostHandler {
	return &PostHandler{posts: deps.Posts, views: deps.Views}
}

// PostRouter registers post routes on the given router. Edits and deletes
// authenticate first, then require the admin flag.
func PostRouter(r chi.Router, deps Deps) {
	handler := NewPostHandler(deps)
	guarded := r.With(RequireSession(deps.Sessions), RequireAdmin)

	r.Get("/", handler.ListPosts)
	r.Get("/{postID}", handler.GetPost)
	guarded.Put("/{postID}", handler.UpdatePost)
	guarded.Delete("/{postID}", handler.DeletePost)
}

func (h *PostHandler) ListPosts(w http.ResponseWriter, r *http.Request) {
	posts, err := h.posts.List(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	renderView(w, r, h.views, http.StatusOK, views.Posts, views.PostsData{Posts: posts})
}

func (h *PostHandler) GetPost(w http.ResponseWriter, r *http.Request) {
	id, err := parsePostID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	post, err := h.posts.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, post)
}

func (h *PostHandler) UpdatePost(w http.ResponseWriter, r *http.Request) {
	user, _ := userFromContext(r.Context())
	id, err := parsePostID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "invalid form")
		return
	}

	post, err := h.posts.Update(r.Context(), user, id, r.PostFormValue("title"), r.PostFormValue("content"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	hlog.FromRequest(r).Info().Int("post_id", post.ID).Str("actor", user.Username).Msg("post updated")
	http.Redirect(w, r, "/dashboard", http.StatusFound)
}

func (h *PostHandler) DeletePost(w http.ResponseWriter, r *http.Request) {
	user, _ := userFromContext(r.Context())
	id, err := parsePostID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.posts.Delete(r.Context(), user, id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	hlog.FromRequest(r).Info().Int("post_id", id).Str("actor", user.Username).Msg("post deleted")
	http.Redirect(w, r, "/dashboard", http.StatusFound)
}

func parsePostID(r *http.Request) (int, error) {
	id, err := strconv.Atoi(chi.URLParam(r, "postID"))
	if err != nil || id < 1 {
		return 0, errors.New("invalid post id")
	}
	return id, nil
}
