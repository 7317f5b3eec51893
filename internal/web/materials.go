package web

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nemo-olympiad/nemoweb/internal/apperr"
	"github.com/nemo-olympiad/nemoweb/internal/assets"
)

const materialUploadLimit = 50 << 20 // 50 MB

// Materials handles GET /materials: the public list, position order.
func (h *Handler) Materials(w http.ResponseWriter, r *http.Request) {
	list, err := h.db.ListMaterials()
	if err != nil {
		slog.Error("list materials failed", slog.String("error", err.Error()))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	h.render(w, r, "materials.html", "Materiais", map[string]any{"Materials": list})
}

// ManageMaterials handles GET /manage-materials.
func (h *Handler) ManageMaterials(w http.ResponseWriter, r *http.Request) {
	list, err := h.db.ListMaterials()
	if err != nil {
		slog.Error("list materials failed", slog.String("error", err.Error()))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	h.render(w, r, "manage-materials.html", "Manage Materials", map[string]any{"Materials": list})
}

// CreateMaterial handles POST /manage-materials: a new title/description
// plus a PDF stored under the pdfs/ subfolder.
func (h *Handler) CreateMaterial(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, materialUploadLimit)
	if err := r.ParseMultipartForm(materialUploadLimit); err != nil {
		setFlash(w, "Upload too large or invalid form.", "danger")
		http.Redirect(w, r, "/manage-materials", http.StatusSeeOther)
		return
	}

	title := r.FormValue("title")
	description := r.FormValue("description")
	file, header, err := r.FormFile("pdf_file")
	if title == "" || err != nil {
		setFlash(w, "Title and PDF file are required.", "danger")
		http.Redirect(w, r, "/manage-materials", http.StatusSeeOther)
		return
	}
	defer file.Close()

	if !assets.AllowedFile(header.Filename) {
		setFlash(w, "Invalid file type. Only PDFs are allowed (for now).", "danger")
		http.Redirect(w, r, "/manage-materials", http.StatusSeeOther)
		return
	}

	stored, err := h.assets.Save(assets.PDFDir, header.Filename, file)
	if err != nil {
		slog.Error("save material pdf failed", slog.String("error", err.Error()))
		setFlash(w, "Failed to save the PDF file.", "danger")
		http.Redirect(w, r, "/manage-materials", http.StatusSeeOther)
		return
	}

	if _, err := h.db.CreateMaterial(title, description, stored.Path); err != nil {
		slog.Error("create material failed", slog.String("error", err.Error()))
		setFlash(w, "Failed to create material.", "danger")
		http.Redirect(w, r, "/manage-materials", http.StatusSeeOther)
		return
	}
	setFlash(w, "New material added successfully.", "success")
	http.Redirect(w, r, "/manage-materials", http.StatusSeeOther)
}

// UpdateMaterial handles POST /manage-materials/update/{id}. A new PDF,
// when provided, replaces the stored file; the old one is removed
// best-effort.
func (h *Handler) UpdateMaterial(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	material, err := h.db.GetMaterial(id)
	if err != nil {
		setFlash(w, "Material not found.", "danger")
		http.Redirect(w, r, "/manage-materials", http.StatusSeeOther)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, materialUploadLimit)
	if err := r.ParseMultipartForm(materialUploadLimit); err != nil {
		setFlash(w, "Upload too large or invalid form.", "danger")
		http.Redirect(w, r, "/manage-materials", http.StatusSeeOther)
		return
	}

	material.Title = r.FormValue("title")
	material.Description = r.FormValue("description")

	if file, header, err := r.FormFile("pdf_file"); err == nil {
		defer file.Close()
		if !assets.AllowedFile(header.Filename) {
			setFlash(w, "Invalid new file type. Only PDFs are allowed.", "danger")
			http.Redirect(w, r, "/manage-materials", http.StatusSeeOther)
			return
		}
		if delErr := h.assets.Delete(material.PDFPath); delErr != nil && !errors.Is(delErr, apperr.ErrNotFound) {
			slog.Warn("delete old material pdf failed", slog.String("path", material.PDFPath), slog.String("error", delErr.Error()))
		}
		stored, saveErr := h.assets.Save(assets.PDFDir, header.Filename, file)
		if saveErr != nil {
			slog.Error("save material pdf failed", slog.String("error", saveErr.Error()))
			setFlash(w, "Failed to save the new PDF file.", "danger")
			http.Redirect(w, r, "/manage-materials", http.StatusSeeOther)
			return
		}
		material.PDFPath = stored.Path
	}

	if err := h.db.UpdateMaterial(material); err != nil {
		slog.Error("update material failed", slog.String("id", id), slog.String("error", err.Error()))
		setFlash(w, "Failed to update material.", "danger")
		http.Redirect(w, r, "/manage-materials", http.StatusSeeOther)
		return
	}
	setFlash(w, "Material updated successfully.", "success")
	http.Redirect(w, r, "/manage-materials", http.StatusSeeOther)
}

// DeleteMaterial handles POST /manage-materials/delete/{id}. The backing
// PDF is removed best-effort before the row.
func (h *Handler) DeleteMaterial(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	material, err := h.db.GetMaterial(id)
	if err != nil {
		setFlash(w, "Material not found.", "danger")
		http.Redirect(w, r, "/manage-materials", http.StatusSeeOther)
		return
	}

	if err := h.assets.Delete(material.PDFPath); err != nil && !errors.Is(err, apperr.ErrNotFound) {
		slog.Warn("delete material pdf failed", slog.String("path", material.PDFPath), slog.String("error", err.Error()))
		setFlash(w, "Error deleting file from disk.", "warning")
	}

	if err := h.db.DeleteMaterial(id); err != nil {
		slog.Error("delete material failed", slog.String("id", id), slog.String("error", err.Error()))
		setFlash(w, "Failed to delete material.", "danger")
		http.Redirect(w, r, "/manage-materials", http.StatusSeeOther)
		return
	}
	setFlash(w, "Material deleted successfully.", "success")
	http.Redirect(w, r, "/manage-materials", http.StatusSeeOther)
}

// SaveMaterialOrder handles POST /manage-materials/save-order: a JSON
// body {"order": [id, ...]} reassigns positions by array index.
func (h *Handler) SaveMaterialOrder(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Order []string `json:"order"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Order == nil {
		writeJSON(w, http.StatusBadRequest, errorBody("No order data provided"))
		return
	}

	if err := h.db.SaveMaterialOrder(req.Order); err != nil {
		slog.Error("save material order failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody(err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "success", "message": "Order saved!"})
}
