package web

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
)

const flashCookie = "nemoweb_flash"

// Flash is a one-shot notice rendered on the next page view.
type Flash struct {
	Message  string `json:"message"`
	Category string `json:"category"` // "success", "danger", "warning"
}

// setFlash queues a notice in a short-lived cookie.
func setFlash(w http.ResponseWriter, message, category string) {
	data, _ := json.Marshal(Flash{Message: message, Category: category})
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookie,
		Value:    base64.URLEncoding.EncodeToString(data),
		Path:     "/",
		MaxAge:   60,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// popFlash reads and clears the queued notice, if any.
func popFlash(w http.ResponseWriter, r *http.Request) []Flash {
	c, err := r.Cookie(flashCookie)
	if err != nil || c.Value == "" {
		return nil
	}
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	raw, err := base64.URLEncoding.DecodeString(c.Value)
	if err != nil {
		return nil
	}
	var f Flash
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil
	}
	return []Flash{f}
}
