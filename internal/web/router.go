// Package web implements the HTTP surface of nemoweb: server-rendered
// pages for visitors and the JSON/form admin endpoints behind a session.
package web

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/nemo-olympiad/nemoweb/internal/assets"
	"github.com/nemo-olympiad/nemoweb/internal/auth"
	"github.com/nemo-olympiad/nemoweb/internal/authoring"
	"github.com/nemo-olympiad/nemoweb/internal/content"
	"github.com/nemo-olympiad/nemoweb/internal/store"
)

// Handler holds every route handler and its collaborators.
type Handler struct {
	pages     *content.Store
	authoring *authoring.Service
	assets    *assets.Manager
	db        *store.DB
	sessions  *auth.Sessions
	hasher    *auth.Hasher
}

// NewHandler creates a Handler.
func NewHandler(pages *content.Store, author *authoring.Service, am *assets.Manager, db *store.DB, sessions *auth.Sessions, hasher *auth.Hasher) *Handler {
	return &Handler{
		pages:     pages,
		authoring: author,
		assets:    am,
		db:        db,
		sessions:  sessions,
		hasher:    hasher,
	}
}

func (h *Handler) loggedIn(r *http.Request) bool {
	return auth.CurrentUser(r.Context()) != nil
}

// pagePath extracts the page path from a wildcard route, decoding
// encoded slashes.
func pagePath(r *http.Request) string {
	raw := strings.TrimPrefix(chi.URLParam(r, "*"), "/")
	if raw == "" {
		return ""
	}
	decoded, err := url.PathUnescape(raw)
	if err != nil {
		return raw
	}
	return decoded
}

// NewRouter mounts all routes. uploadsURL is the public prefix under
// which the upload root is served.
func NewRouter(h *Handler, uploadsURL string) chi.Router {
	r := chi.NewRouter()
	r.Use(h.sessions.Middleware)

	// Public pages.
	r.Get("/", h.Index)
	r.Get("/login", h.LoginForm)
	r.Post("/login", h.Login)
	r.Get("/about", h.About)
	r.Get("/faq", h.FAQ)
	r.Get("/contact", h.Contact)
	r.Get("/materials", h.Materials)
	r.Get("/months-problems", h.MonthsProblems)
	r.Get("/news", h.News)
	r.Get("/news-awards", h.NewsAwards)
	r.Get("/news-general", h.NewsGeneral)
	r.Get("/post/*", h.ViewPost)

	// Uploaded files.
	fileServer := http.StripPrefix(uploadsURL, http.FileServer(http.Dir(h.assets.Root())))
	r.Get(uploadsURL+"/*", fileServer.ServeHTTP)

	// Admin pages and form endpoints.
	r.Group(func(r chi.Router) {
		r.Use(auth.RequireLogin(false))
		r.Get("/logout", h.Logout)
		r.Get("/manage-materials", h.ManageMaterials)
		r.Post("/manage-materials", h.CreateMaterial)
		r.Post("/manage-materials/delete/{id}", h.DeleteMaterial)
		r.Post("/manage-materials/update/{id}", h.UpdateMaterial)
		r.Get("/account-settings", h.AccountSettingsForm)
		r.Post("/account-settings", h.AccountSettings)
		r.Get("/edit-post/*", h.PostEditor)
		r.Get("/create-post", h.CreatePostForm)
		r.Post("/delete-post/*", h.DeletePost)
		r.Get("/drafts", h.Drafts)
	})

	// Admin JSON endpoints.
	r.Group(func(r chi.Router) {
		r.Use(auth.RequireLogin(true))
		r.Post("/manage-materials/save-order", h.SaveMaterialOrder)
		r.Post("/save-post/*", h.SavePost)
		r.Post("/create-post-save", h.CreatePostSave)
		r.Post("/upload-asset", h.UploadAsset)
		r.Get("/list-assets", h.ListAssets)
		r.Post("/delete-asset", h.DeleteAsset)
	})

	return r
}
