package web

import (
	"embed"
	"html/template"
	"log/slog"
	"net/http"
)

//go:embed templates/*.html
var templateFS embed.FS

// pageTemplates maps a page template to its parsed set (base + page).
var pageTemplates = map[string]*template.Template{}

func init() {
	pages := []string{
		"index.html", "login.html", "about.html", "faq.html", "contact.html",
		"materials.html", "manage-materials.html", "months-problems.html",
		"news.html", "news-awards.html", "news-general.html",
		"view-post.html", "account-settings.html", "post-editor.html",
		"create-post.html", "drafts.html",
	}
	for _, p := range pages {
		pageTemplates[p] = template.Must(template.ParseFS(templateFS,
			"templates/base.html", "templates/"+p))
	}
}

// viewData is the payload every page template receives.
type viewData struct {
	Title    string
	LoggedIn bool
	Flashes  []Flash
	Data     any
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, page, title string, data any) {
	tpl, ok := pageTemplates[page]
	if !ok {
		slog.Error("unknown template", slog.String("page", page))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	vd := viewData{
		Title:    title,
		LoggedIn: h.loggedIn(r),
		Flashes:  popFlash(w, r),
		Data:     data,
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tpl.ExecuteTemplate(w, "base", vd); err != nil {
		slog.Error("template execute failed", slog.String("page", page), slog.String("error", err.Error()))
	}
}
