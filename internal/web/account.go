package web

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/nemo-olympiad/nemoweb/internal/apperr"
	"github.com/nemo-olympiad/nemoweb/internal/auth"
)

// AccountSettingsForm handles GET /account-settings.
func (h *Handler) AccountSettingsForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "account-settings.html", "Account Settings", map[string]any{
		"User": auth.CurrentUser(r.Context()),
	})
}

// AccountSettings handles POST /account-settings. Every change is gated
// on the current password; the password itself changes only when a new
// one is submitted.
func (h *Handler) AccountSettings(w http.ResponseWriter, r *http.Request) {
	user := auth.CurrentUser(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, assetUploadLimit)
	if err := r.ParseMultipartForm(assetUploadLimit); err != nil {
		setFlash(w, "Upload too large or invalid form.", "danger")
		http.Redirect(w, r, "/account-settings", http.StatusSeeOther)
		return
	}

	if !h.hasher.Verify(r.FormValue("current_password"), user.PasswordHash) {
		setFlash(w, "Incorrect password. Please try again.", "danger")
		http.Redirect(w, r, "/account-settings", http.StatusSeeOther)
		return
	}

	newEmail := r.FormValue("email")
	if newEmail != user.Email {
		if _, err := h.db.GetUserByEmail(newEmail); err == nil {
			setFlash(w, "That email address is already in use.", "danger")
			http.Redirect(w, r, "/account-settings", http.StatusSeeOther)
			return
		}
	}

	updated := *user
	updated.Email = newEmail
	updated.Name = r.FormValue("name")
	updated.AboutMe = r.FormValue("about_me")

	if newPassword := r.FormValue("password"); newPassword != "" {
		hash, err := h.hasher.Hash(newPassword)
		if err != nil {
			slog.Error("hash password failed", slog.String("error", err.Error()))
			setFlash(w, "Failed to update password.", "danger")
			http.Redirect(w, r, "/account-settings", http.StatusSeeOther)
			return
		}
		updated.PasswordHash = hash
	}

	if file, header, err := r.FormFile("profile_pic"); err == nil {
		defer file.Close()
		if header.Filename != "" {
			stored, saveErr := h.assets.Save("avatars", header.Filename, file)
			if saveErr != nil {
				slog.Error("save profile picture failed", slog.String("error", saveErr.Error()))
				setFlash(w, "Failed to save the profile picture.", "danger")
				http.Redirect(w, r, "/account-settings", http.StatusSeeOther)
				return
			}
			updated.ProfileImagePath = stored.Path
		}
	}

	if err := h.db.UpdateUser(&updated); err != nil {
		if errors.Is(err, apperr.ErrAlreadyExists) {
			setFlash(w, "That email address is already in use.", "danger")
		} else {
			slog.Error("update user failed", slog.String("error", err.Error()))
			setFlash(w, "Failed to update settings.", "danger")
		}
		http.Redirect(w, r, "/account-settings", http.StatusSeeOther)
		return
	}

	setFlash(w, "Your settings have been updated successfully!", "success")
	http.Redirect(w, r, "/account-settings", http.StatusSeeOther)
}
