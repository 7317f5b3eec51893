package web

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/nemo-olympiad/nemoweb/internal/apperr"
	"github.com/nemo-olympiad/nemoweb/internal/assets"
)

const assetUploadLimit = 50 << 20 // 50 MB

// UploadAsset handles POST /upload-asset: multipart field "file" plus
// form field "post_path" naming the target subfolder. The response
// carries a ready-to-paste Markdown snippet.
func (h *Handler) UploadAsset(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, assetUploadLimit)
	if err := r.ParseMultipartForm(assetUploadLimit); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("file too large or invalid multipart"))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("No file part"))
		return
	}
	defer file.Close()
	if header.Filename == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("No selected file"))
		return
	}

	stored, err := h.assets.Save(r.FormValue("post_path"), header.Filename, file)
	if err != nil {
		switch {
		case errors.Is(err, apperr.ErrForbidden):
			slog.Warn("asset upload path rejected", slog.String("post_path", r.FormValue("post_path")))
			writeJSON(w, http.StatusForbidden, errorBody("Invalid path specified"))
		case errors.Is(err, apperr.ErrValidation):
			writeJSON(w, http.StatusBadRequest, errorBody("File type not allowed"))
		default:
			slog.Error("asset upload failed", slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("Failed to save file"))
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"markdownLink": assets.MarkdownLink(stored.Name, stored.URL),
	})
}

// ListAssets handles GET /list-assets?post_path=: the regular files in
// one upload subfolder, with the relative paths a delete call needs.
func (h *Handler) ListAssets(w http.ResponseWriter, r *http.Request) {
	files, err := h.assets.List(r.URL.Query().Get("post_path"))
	if err != nil {
		switch {
		case errors.Is(err, apperr.ErrForbidden), errors.Is(err, apperr.ErrNotFound):
			writeJSON(w, http.StatusNotFound, errorBody("Invalid path or directory not found"))
		default:
			slog.Error("list assets failed", slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	writeJSON(w, http.StatusOK, files)
}

// DeleteAsset handles POST /delete-asset: JSON body {"file_path": ...},
// the exact relative path a previous list or upload returned.
func (h *Handler) DeleteAsset(w http.ResponseWriter, r *http.Request) {
	var req struct {
		FilePath string `json:"file_path"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.FilePath == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("No file path provided"))
		return
	}

	if err := h.assets.Delete(req.FilePath); err != nil {
		switch {
		case errors.Is(err, apperr.ErrForbidden):
			slog.Warn("asset delete path rejected", slog.String("file_path", req.FilePath))
			writeJSON(w, http.StatusForbidden, errorBody("Permission denied: Invalid path"))
		case errors.Is(err, apperr.ErrNotFound):
			writeJSON(w, http.StatusNotFound, errorBody("File not found"))
		default:
			slog.Error("asset delete failed", slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("Error deleting file"))
		}
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "success",
		"message": "File " + req.FilePath + " deleted.",
	})
}
