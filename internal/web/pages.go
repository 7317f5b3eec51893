package web

import (
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"github.com/nemo-olympiad/nemoweb/internal/apperr"
	"github.com/nemo-olympiad/nemoweb/internal/content"
	"github.com/nemo-olympiad/nemoweb/internal/models"
	"github.com/nemo-olympiad/nemoweb/internal/render"
)

// Index handles GET /: the six most recent news posts plus the current
// unsolved problem of the month.
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	pages := h.pages.Snapshot().Pages()
	h.render(w, r, "index.html", "NEMO Home", map[string]any{
		"NewsPosts":   content.RecentNews(pages, 6),
		"ProblemPost": content.CurrentUnsolvedProblem(pages),
	})
}

// LoginForm handles GET /login.
func (h *Handler) LoginForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "login.html", "Login", nil)
}

// Login handles POST /login.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	email := r.FormValue("email")
	password := r.FormValue("password")

	user, err := h.db.GetUserByEmail(email)
	if err != nil || !h.hasher.Verify(password, user.PasswordHash) {
		setFlash(w, "Invalid credentials.", "danger")
		h.render(w, r, "login.html", "Login", nil)
		return
	}
	if err := h.sessions.Login(w, user); err != nil {
		slog.Error("login failed", slog.String("error", err.Error()))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// Logout handles GET /logout.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	h.sessions.Logout(w, r)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// About handles GET /about.
func (h *Handler) About(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "about.html", "Sobre", nil)
}

// FAQ handles GET /faq.
func (h *Handler) FAQ(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "faq.html", "FAQ", nil)
}

// Contact handles GET /contact.
func (h *Handler) Contact(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "contact.html", "Contato", nil)
}

// MonthsProblems handles GET /months-problems.
func (h *Handler) MonthsProblems(w http.ResponseWriter, r *http.Request) {
	pages := h.pages.Snapshot().Pages()
	h.render(w, r, "months-problems.html", "Problemas do Mês", map[string]any{
		"CurrentProblem": content.CurrentUnsolvedProblem(pages),
		"SolvedProblems": content.SolvedProblems(pages),
	})
}

// News handles GET /news.
func (h *Handler) News(w http.ResponseWriter, r *http.Request) {
	pages := h.pages.Snapshot().Pages()
	h.render(w, r, "news.html", "Notícias", map[string]any{
		"AwardPosts":     content.AwardPosts(pages),
		"OtherNewsPosts": content.GeneralNewsPosts(pages),
	})
}

// NewsAwards handles GET /news-awards.
func (h *Handler) NewsAwards(w http.ResponseWriter, r *http.Request) {
	pages := h.pages.Snapshot().Pages()
	h.render(w, r, "news-awards.html", "Prêmios e Conquistas", map[string]any{
		"AwardPosts": content.AwardPosts(pages),
	})
}

// NewsGeneral handles GET /news-general.
func (h *Handler) NewsGeneral(w http.ResponseWriter, r *http.Request) {
	pages := h.pages.Snapshot().Pages()
	h.render(w, r, "news-general.html", "Notícias Gerais", map[string]any{
		"OtherNewsPosts": content.GeneralNewsPosts(pages),
	})
}

// ViewPost handles GET /post/{path}. Draft pages are indistinguishable
// from missing ones for anonymous visitors.
func (h *Handler) ViewPost(w http.ResponseWriter, r *http.Request) {
	path := pagePath(r)
	post, err := h.pages.Get(path)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	if post.Meta.Status == content.StatusDraft && !h.loggedIn(r) {
		http.NotFound(w, r)
		return
	}

	// Author resolution is display-only; an unknown email just means
	// no author block.
	var author *models.User
	if post.Meta.AuthorEmail != "" {
		if u, err := h.db.GetUserByEmail(post.Meta.AuthorEmail); err == nil {
			author = u
		} else if !errors.Is(err, apperr.ErrNotFound) {
			slog.Error("author lookup failed", slog.String("email", post.Meta.AuthorEmail), slog.String("error", err.Error()))
		}
	}

	postHTML, err := render.PostHTML(post)
	if err != nil {
		slog.Error("render post failed", slog.String("path", path), slog.String("error", err.Error()))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	var solutionHTML template.HTML
	if sh, err := render.SolutionHTML(post); err == nil {
		solutionHTML = sh
	} else {
		slog.Error("render solution failed", slog.String("path", path), slog.String("error", err.Error()))
	}

	h.render(w, r, "view-post.html", post.Meta.Title, map[string]any{
		"Post":         post,
		"Author":       author,
		"PostHTML":     postHTML,
		"SolutionHTML": solutionHTML,
	})
}

// Drafts handles GET /drafts. Undated drafts sink to the bottom: the
// sort fallback here is the zero time, unlike the public listings.
func (h *Handler) Drafts(w http.ResponseWriter, r *http.Request) {
	pages := h.pages.Snapshot().Pages()
	drafts := content.SortByDateDesc(content.Drafts(pages), time.Time{})
	h.render(w, r, "drafts.html", "Drafts", map[string]any{
		"PostList": drafts,
	})
}
