package auth

import (
	"context"
	"net/http"
	"time"

	"github.com/nemo-olympiad/nemoweb/internal/models"
	"github.com/nemo-olympiad/nemoweb/internal/store"
)

// CookieName is the session cookie issued on login.
const CookieName = "nemoweb_session"

const sessionTTL = 30 * 24 * time.Hour

type contextKey struct{}

// Sessions issues and resolves session cookies. Tokens are random and
// stored server-side; the cookie carries only the token.
type Sessions struct {
	db     *store.DB
	secure bool
}

// NewSessions creates a session manager. secure controls the cookie's
// Secure flag and should be true behind TLS.
func NewSessions(db *store.DB, secure bool) *Sessions {
	return &Sessions{db: db, secure: secure}
}

// Login creates a session for the user and sets the cookie.
func (s *Sessions) Login(w http.ResponseWriter, u *models.User) error {
	token, err := s.db.CreateSession(u.ID)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(sessionTTL),
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// Logout invalidates the request's session and clears the cookie.
func (s *Sessions) Logout(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(CookieName); err == nil {
		_ = s.db.DeleteSession(c.Value)
	}
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// Middleware resolves the session cookie into the current user and puts
// it on the request context. Requests without a valid session pass
// through anonymously.
func (s *Sessions) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if c, err := r.Cookie(CookieName); err == nil && c.Value != "" {
			if user, err := s.db.GetSessionUser(c.Value); err == nil {
				r = r.WithContext(context.WithValue(r.Context(), contextKey{}, user))
			}
		}
		next.ServeHTTP(w, r)
	})
}

// CurrentUser returns the authenticated user on the context, or nil.
func CurrentUser(ctx context.Context) *models.User {
	u, _ := ctx.Value(contextKey{}).(*models.User)
	return u
}

// RequireLogin rejects anonymous requests: JSON endpoints get a 401,
// everything else is redirected to the login page.
func RequireLogin(jsonResponse bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if CurrentUser(r.Context()) == nil {
				if jsonResponse {
					w.Header().Set("Content-Type", "application/json; charset=utf-8")
					w.WriteHeader(http.StatusUnauthorized)
					_, _ = w.Write([]byte(`{"error":"unauthorized"}`))
				} else {
					http.Redirect(w, r, "/login", http.StatusSeeOther)
				}
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
