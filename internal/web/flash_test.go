package web

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestFlashRoundtrip(t *testing.T) {
	rec := httptest.NewRecorder()
	setFlash(rec, "Saved.", "success")

	var cookie *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == flashCookie {
			cookie = c
		}
	}
	if cookie == nil {
		t.Fatal("no flash cookie set")
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookie)
	rec2 := httptest.NewRecorder()

	flashes := popFlash(rec2, req)
	if len(flashes) != 1 || flashes[0].Message != "Saved." || flashes[0].Category != "success" {
		t.Errorf("popFlash = %v", flashes)
	}

	// The pop clears the cookie.
	var cleared bool
	for _, c := range rec2.Result().Cookies() {
		if c.Name == flashCookie && c.MaxAge < 0 {
			cleared = true
		}
	}
	if !cleared {
		t.Error("flash cookie not cleared")
	}
}

func TestPopFlash_NoCookie(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if got := popFlash(httptest.NewRecorder(), req); got != nil {
		t.Errorf("popFlash = %v, want nil", got)
	}
}
