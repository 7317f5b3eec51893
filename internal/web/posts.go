package web

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/nemo-olympiad/nemoweb/internal/apperr"
)

// PostEditor handles GET /edit-post/{path}: loads the raw document into
// the editor.
func (h *Handler) PostEditor(w http.ResponseWriter, r *http.Request) {
	path := pagePath(r)
	post, err := h.pages.Get(path)
	if err != nil {
		setFlash(w, "Post file not found.", "warning")
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	h.render(w, r, "post-editor.html", "Edit: "+post.Meta.Title, map[string]any{
		"Post": post,
	})
}

// SavePost handles POST /save-post/{path} (JSON response). It overwrites
// an existing file only; creation goes through /create-post-save.
func (h *Handler) SavePost(w http.ResponseWriter, r *http.Request) {
	path := pagePath(r)
	rawContent := r.FormValue("content")
	if rawContent == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("content is required"))
		return
	}

	if err := h.authoring.UpdateFromRaw(path, rawContent); err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]any{
				"status":  "error",
				"message": "Error: Cannot save, original file not found at " + path,
			})
			return
		}
		slog.Error("save post failed", slog.String("path", path), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("failed to save post"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "success", "message": "Post saved!"})
}

// CreatePostForm handles GET /create-post.
func (h *Handler) CreatePostForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "create-post.html", "Create New Post", nil)
}

// CreatePostSave handles POST /create-post-save (JSON response with the
// new logical path and its edit URL).
func (h *Handler) CreatePostSave(w http.ResponseWriter, r *http.Request) {
	rawContent := r.FormValue("full_content")
	if rawContent == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"status": "error", "message": "Content cannot be empty.",
		})
		return
	}
	override := r.FormValue("filename_base")

	newPath, err := h.authoring.CreateFromRaw(rawContent, override)
	if err != nil {
		if errors.Is(err, apperr.ErrValidation) {
			writeJSON(w, http.StatusBadRequest, map[string]any{
				"status": "error", "message": "Error parsing Markdown file: " + err.Error(),
			})
			return
		}
		slog.Error("create post failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("failed to create post"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "success",
		"message":  "Post created successfully!",
		"new_path": newPath,
		"edit_url": "/edit-post/" + newPath,
	})
}

// DeletePost handles POST /delete-post/{path}.
func (h *Handler) DeletePost(w http.ResponseWriter, r *http.Request) {
	path := pagePath(r)
	if err := h.authoring.Delete(path); err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			setFlash(w, "Error: Post file not found.", "warning")
		} else {
			slog.Error("delete post failed", slog.String("path", path), slog.String("error", err.Error()))
			setFlash(w, "Error deleting file.", "danger")
		}
		http.Redirect(w, r, "/drafts", http.StatusSeeOther)
		return
	}
	setFlash(w, "Post '"+path+"' deleted successfully.", "success")
	http.Redirect(w, r, "/drafts", http.StatusSeeOther)
}
