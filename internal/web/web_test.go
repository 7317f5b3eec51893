package web

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/nemo-olympiad/nemoweb/internal/assets"
	"github.com/nemo-olympiad/nemoweb/internal/auth"
	"github.com/nemo-olympiad/nemoweb/internal/authoring"
	"github.com/nemo-olympiad/nemoweb/internal/models"
	"github.com/nemo-olympiad/nemoweb/internal/testutil"
)

type testApp struct {
	server  *httptest.Server
	handler *Handler
	admin   *models.User
}

const adminPassword = "test-password"

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	pages, _ := testutil.TestStore(t)
	db := testutil.TestDB(t)

	am, err := assets.NewManager(t.TempDir(), "/static/uploads")
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}

	hasher := auth.NewHasher()
	hash, err := hasher.Hash(adminPassword)
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	admin, err := db.CreateUser(models.User{Email: "admin@example.org", Name: "Admin", PasswordHash: hash})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	sessions := auth.NewSessions(db, false)
	h := NewHandler(pages, authoring.NewService(pages), am, db, sessions, hasher)

	srv := httptest.NewServer(NewRouter(h, "/static/uploads"))
	t.Cleanup(srv.Close)

	return &testApp{server: srv, handler: h, admin: admin}
}

// addPage writes a content file directly and reloads the store.
func (a *testApp) addPage(t *testing.T, path, raw string) {
	t.Helper()
	fs := a.handler.pages.FS()
	if err := fs.Write(path+fs.Ext(), []byte(raw)); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := a.handler.pages.Reload(); err != nil {
		t.Fatalf("Reload: %v", err)
	}
}

// login signs the admin in through the real login endpoint and returns
// the session cookie.
func (a *testApp) login(t *testing.T) *http.Cookie {
	t.Helper()
	client := &http.Client{
		CheckRedirect: func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse },
	}
	resp, err := client.PostForm(a.server.URL+"/login", url.Values{
		"email":    {a.admin.Email},
		"password": {adminPassword},
	})
	if err != nil {
		t.Fatalf("login request: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("login status = %d, want 303", resp.StatusCode)
	}
	for _, c := range resp.Cookies() {
		if c.Name == auth.CookieName {
			return c
		}
	}
	t.Fatal("no session cookie after login")
	return nil
}

func (a *testApp) do(t *testing.T, req *http.Request, cookie *http.Cookie) *http.Response {
	t.Helper()
	if cookie != nil {
		req.AddCookie(cookie)
	}
	client := &http.Client{
		CheckRedirect: func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse },
	}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("request %s %s: %v", req.Method, req.URL, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func (a *testApp) get(t *testing.T, path string, cookie *http.Cookie) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, a.server.URL+path, nil)
	if err != nil {
		t.Fatal(err)
	}
	return a.do(t, req, cookie)
}

func (a *testApp) postForm(t *testing.T, path string, form url.Values, cookie *http.Cookie) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, a.server.URL+path, strings.NewReader(form.Encode()))
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return a.do(t, req, cookie)
}

func body(t *testing.T, resp *http.Response) string {
	t.Helper()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return string(b)
}

func decodeJSON(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("decode json: %v", err)
	}
}

const publishedPost = "---\ntitle: Launch Day\nstatus: published\npost_type: News\ndate: 2024-03-01\n---\nWe are **live**.\n"

func TestIndex(t *testing.T) {
	app := newTestApp(t)
	app.addPage(t, "news/others/launch", publishedPost)
	app.addPage(t, "months-problems/2024-03",
		"---\ntitle: March Problem\nstatus: published\npost_type: Month-Problem\ndate: 2024-03-01\nis_solved: false\n---\nFind x.\n")

	resp := app.get(t, "/", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	got := body(t, resp)
	if !strings.Contains(got, "Launch Day") {
		t.Error("recent news missing from index")
	}
	if !strings.Contains(got, "March Problem") {
		t.Error("current problem missing from index")
	}
}

func TestViewPost(t *testing.T) {
	app := newTestApp(t)
	app.addPage(t, "news/others/launch", publishedPost)

	resp := app.get(t, "/post/news/others/launch", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	got := body(t, resp)
	if !strings.Contains(got, "<strong>live</strong>") {
		t.Errorf("body not rendered: %s", got)
	}
}

func TestViewPost_Missing(t *testing.T) {
	app := newTestApp(t)
	resp := app.get(t, "/post/news/others/ghost", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}

func TestViewPost_DraftVisibility(t *testing.T) {
	app := newTestApp(t)
	app.addPage(t, "news/others/secret",
		"---\ntitle: Secret Draft\nstatus: draft\npost_type: News\n---\nnot yet\n")

	// Anonymous visitors cannot tell a draft from a missing page.
	resp := app.get(t, "/post/news/others/secret", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("anonymous: status = %d, want 404", resp.StatusCode)
	}

	cookie := app.login(t)
	resp = app.get(t, "/post/news/others/secret", cookie)
	if resp.StatusCode != http.StatusOK {
		t.Errorf("logged in: status = %d, want 200", resp.StatusCode)
	}
	if got := body(t, resp); !strings.Contains(got, "Secret Draft") {
		t.Error("draft not rendered for the author")
	}
}

func TestViewPost_SolutionShown(t *testing.T) {
	app := newTestApp(t)
	app.addPage(t, "months-problems/2024-02",
		"---\ntitle: February\nstatus: published\npost_type: Month-Problem\nis_solved: true\nsolution_content: 'Answer: **42**'\n---\nFind y.\n")

	resp := app.get(t, "/post/months-problems/2024-02", nil)
	got := body(t, resp)
	if !strings.Contains(got, "<strong>42</strong>") {
		t.Errorf("solution missing: %s", got)
	}
}

func TestLogin_InvalidCredentials(t *testing.T) {
	app := newTestApp(t)

	resp := app.postForm(t, "/login", url.Values{
		"email":    {"admin@example.org"},
		"password": {"wrong"},
	}, nil)
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200 (re-rendered form)", resp.StatusCode)
	}
	for _, c := range resp.Cookies() {
		if c.Name == auth.CookieName && c.Value != "" {
			t.Error("session cookie issued for bad credentials")
		}
	}
}

func TestLogout(t *testing.T) {
	app := newTestApp(t)
	cookie := app.login(t)

	resp := app.get(t, "/logout", cookie)
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", resp.StatusCode)
	}
	if loc := resp.Header.Get("Location"); loc != "/" {
		t.Errorf("location = %q, want /", loc)
	}

	// The token is dead server-side; the old cookie no longer grants access.
	resp = app.get(t, "/drafts", cookie)
	if resp.StatusCode != http.StatusSeeOther || resp.Header.Get("Location") != "/login" {
		t.Errorf("session still valid after logout: status = %d, location = %q",
			resp.StatusCode, resp.Header.Get("Location"))
	}
}

func TestLogout_RequiresLogin(t *testing.T) {
	app := newTestApp(t)

	resp := app.get(t, "/logout", nil)
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", resp.StatusCode)
	}
	if loc := resp.Header.Get("Location"); loc != "/login" {
		t.Errorf("location = %q, want /login", loc)
	}
}

func TestAdminPagesRequireLogin(t *testing.T) {
	app := newTestApp(t)

	resp := app.get(t, "/drafts", nil)
	if resp.StatusCode != http.StatusSeeOther {
		t.Errorf("/drafts: status = %d, want 303", resp.StatusCode)
	}
	if loc := resp.Header.Get("Location"); loc != "/login" {
		t.Errorf("/drafts: location = %q", loc)
	}

	resp = app.postForm(t, "/create-post-save", url.Values{"full_content": {"x"}}, nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("/create-post-save: status = %d, want 401", resp.StatusCode)
	}
}

func TestCreatePostSave(t *testing.T) {
	app := newTestApp(t)
	cookie := app.login(t)

	raw := "---\ntitle: Fresh Post\nstatus: draft\npost_type: News\n---\ndraft body\n"
	resp := app.postForm(t, "/create-post-save", url.Values{"full_content": {raw}}, cookie)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	var got struct {
		Status  string `json:"status"`
		NewPath string `json:"new_path"`
		EditURL string `json:"edit_url"`
	}
	decodeJSON(t, resp, &got)
	if got.Status != "success" || got.NewPath != "news/others/fresh-post" {
		t.Errorf("response = %+v", got)
	}
	if got.EditURL != "/edit-post/news/others/fresh-post" {
		t.Errorf("edit_url = %q", got.EditURL)
	}

	if _, err := app.handler.pages.Get(got.NewPath); err != nil {
		t.Errorf("created page not in store: %v", err)
	}
}

func TestCreatePostSave_EmptyContent(t *testing.T) {
	app := newTestApp(t)
	cookie := app.login(t)

	resp := app.postForm(t, "/create-post-save", url.Values{}, cookie)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestCreatePostSave_BadFrontmatter(t *testing.T) {
	app := newTestApp(t)
	cookie := app.login(t)

	resp := app.postForm(t, "/create-post-save", url.Values{"full_content": {"no front matter"}}, cookie)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
	var got struct {
		Message string `json:"message"`
	}
	decodeJSON(t, resp, &got)
	if !strings.Contains(got.Message, "Error parsing Markdown file") {
		t.Errorf("message = %q", got.Message)
	}
}

func TestSavePost(t *testing.T) {
	app := newTestApp(t)
	cookie := app.login(t)
	app.addPage(t, "news/others/launch", publishedPost)

	updated := "---\ntitle: Launch Day\nstatus: published\npost_type: News\n---\nUpdated body.\n"
	resp := app.postForm(t, "/save-post/news/others/launch", url.Values{"content": {updated}}, cookie)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	p, err := app.handler.pages.Get("news/others/launch")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if p.Body != "Updated body.\n" {
		t.Errorf("body = %q", p.Body)
	}
}

func TestSavePost_MissingFile(t *testing.T) {
	app := newTestApp(t)
	cookie := app.login(t)

	resp := app.postForm(t, "/save-post/news/others/ghost", url.Values{"content": {"x"}}, cookie)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
	var got struct {
		Status  string `json:"status"`
		Message string `json:"message"`
	}
	decodeJSON(t, resp, &got)
	if got.Status != "error" || !strings.Contains(got.Message, "original file not found") {
		t.Errorf("response = %+v", got)
	}
}

func TestDeletePost(t *testing.T) {
	app := newTestApp(t)
	cookie := app.login(t)
	app.addPage(t, "news/others/doomed",
		"---\ntitle: Doomed\nstatus: draft\npost_type: News\n---\nx\n")

	resp := app.postForm(t, "/delete-post/news/others/doomed", url.Values{}, cookie)
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if loc := resp.Header.Get("Location"); loc != "/drafts" {
		t.Errorf("location = %q", loc)
	}
	if _, err := app.handler.pages.Get("news/others/doomed"); err == nil {
		t.Error("page still in store after delete")
	}
}

func multipartUpload(t *testing.T, fields map[string]string, fileField, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatal(err)
		}
	}
	fw, err := mw.CreateFormFile(fileField, filename)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := fw.Write(content); err != nil {
		t.Fatal(err)
	}
	if err := mw.Close(); err != nil {
		t.Fatal(err)
	}
	return &buf, mw.FormDataContentType()
}

func TestUploadAsset(t *testing.T) {
	app := newTestApp(t)
	cookie := app.login(t)

	buf, contentType := multipartUpload(t,
		map[string]string{"post_path": "news/others/launch"},
		"file", "chart.png", []byte("png-bytes"))

	req, err := http.NewRequest(http.MethodPost, app.server.URL+"/upload-asset", buf)
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Content-Type", contentType)
	resp := app.do(t, req, cookie)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	var got struct {
		MarkdownLink string `json:"markdownLink"`
	}
	decodeJSON(t, resp, &got)
	if got.MarkdownLink != "![chart.png](/static/uploads/news/others/launch/chart.png)" {
		t.Errorf("markdownLink = %q", got.MarkdownLink)
	}
}

func TestUploadAsset_DisallowedType(t *testing.T) {
	app := newTestApp(t)
	cookie := app.login(t)

	buf, contentType := multipartUpload(t,
		map[string]string{"post_path": "posts"},
		"file", "evil.exe", []byte("x"))

	req, err := http.NewRequest(http.MethodPost, app.server.URL+"/upload-asset", buf)
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Content-Type", contentType)
	resp := app.do(t, req, cookie)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestListAssets(t *testing.T) {
	app := newTestApp(t)
	cookie := app.login(t)

	if _, err := app.handler.assets.Save("news/others/launch", "a.png", strings.NewReader("x")); err != nil {
		t.Fatalf("Save: %v", err)
	}

	resp := app.get(t, "/list-assets?post_path=news/others/launch", cookie)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var files []assets.File
	decodeJSON(t, resp, &files)
	if len(files) != 1 || files[0].Name != "a.png" {
		t.Errorf("files = %v", files)
	}
}

func TestListAssets_MissingFolder(t *testing.T) {
	app := newTestApp(t)
	cookie := app.login(t)

	resp := app.get(t, "/list-assets?post_path=nope", cookie)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}

func TestDeleteAsset(t *testing.T) {
	app := newTestApp(t)
	cookie := app.login(t)

	stored, err := app.handler.assets.Save("posts", "a.png", strings.NewReader("x"))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}

	payload, _ := json.Marshal(map[string]string{"file_path": stored.Path})
	req, err := http.NewRequest(http.MethodPost, app.server.URL+"/delete-asset", bytes.NewReader(payload))
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp := app.do(t, req, cookie)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
}

func TestDeleteAsset_TraversalForbidden(t *testing.T) {
	app := newTestApp(t)
	cookie := app.login(t)

	payload, _ := json.Marshal(map[string]string{"file_path": "../../etc/passwd"})
	req, err := http.NewRequest(http.MethodPost, app.server.URL+"/delete-asset", bytes.NewReader(payload))
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp := app.do(t, req, cookie)
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("status = %d, want 403", resp.StatusCode)
	}
}

func TestSaveMaterialOrder(t *testing.T) {
	app := newTestApp(t)
	cookie := app.login(t)

	a, err := app.handler.db.CreateMaterial("A", "", "pdfs/a.pdf")
	if err != nil {
		t.Fatalf("CreateMaterial: %v", err)
	}
	b, err := app.handler.db.CreateMaterial("B", "", "pdfs/b.pdf")
	if err != nil {
		t.Fatalf("CreateMaterial: %v", err)
	}

	payload, _ := json.Marshal(map[string][]string{"order": {b.ID, a.ID}})
	req, err := http.NewRequest(http.MethodPost, app.server.URL+"/manage-materials/save-order", bytes.NewReader(payload))
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp := app.do(t, req, cookie)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	list, err := app.handler.db.ListMaterials()
	if err != nil {
		t.Fatalf("ListMaterials: %v", err)
	}
	if list[0].Title != "B" || list[1].Title != "A" {
		t.Errorf("order = %s, %s", list[0].Title, list[1].Title)
	}
}

func TestUploadedFilesServed(t *testing.T) {
	app := newTestApp(t)

	stored, err := app.handler.assets.Save("posts", "pic.png", strings.NewReader("png-bytes"))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}

	resp := app.get(t, stored.URL, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if got := body(t, resp); got != "png-bytes" {
		t.Errorf("served bytes = %q", got)
	}
}
