package render

import (
	"strings"
	"testing"

	"github.com/nemo-olympiad/nemoweb/internal/content"
)

func TestMarkdown_BasicFormatting(t *testing.T) {
	got, err := Markdown("# Title\n\nSome **bold** and ~~struck~~ text.\n")
	if err != nil {
		t.Fatalf("Markdown: %v", err)
	}
	html := string(got)
	for _, want := range []string{"<h1", "<strong>bold</strong>", "<s>struck</s>"} {
		if !strings.Contains(html, want) {
			t.Errorf("output missing %q: %s", want, html)
		}
	}
}

func TestMarkdown_ScriptStripped(t *testing.T) {
	cases := []string{
		"hello <script>alert(1)</script> world",
		"[click](javascript:alert(1))",
		"<img src=x onerror=alert(1)>",
	}
	for _, src := range cases {
		got, err := Markdown(src)
		if err != nil {
			t.Fatalf("Markdown(%q): %v", src, err)
		}
		html := string(got)
		if strings.Contains(html, "script") || strings.Contains(html, "alert(1)") || strings.Contains(html, "onerror") {
			t.Errorf("Markdown(%q) leaked active content: %s", src, html)
		}
	}
}

func TestMarkdown_EmbeddedMediaSurvives(t *testing.T) {
	src := `<video src="/static/uploads/clip.mp4" controls width="640"></video>

<iframe src="https://example.com/embed" allowfullscreen title="demo"></iframe>`
	got, err := Markdown(src)
	if err != nil {
		t.Fatalf("Markdown: %v", err)
	}
	html := string(got)
	for _, want := range []string{"<video", "controls", `width="640"`, "<iframe", "allowfullscreen"} {
		if !strings.Contains(html, want) {
			t.Errorf("output missing %q: %s", want, html)
		}
	}
}

func TestMarkdown_DisallowedAttributesDropped(t *testing.T) {
	got, err := Markdown(`<img src="/x.png" style="position:fixed" onclick="x()">`)
	if err != nil {
		t.Fatalf("Markdown: %v", err)
	}
	html := string(got)
	if !strings.Contains(html, "<img") || !strings.Contains(html, `src="/x.png"`) {
		t.Errorf("img not kept: %s", html)
	}
	if strings.Contains(html, "style") || strings.Contains(html, "onclick") {
		t.Errorf("disallowed attributes leaked: %s", html)
	}
}

func TestSanitize_Idempotent(t *testing.T) {
	in := `<p>text</p><script>alert(1)</script><div class="box">ok</div>`
	once := string(Sanitize(in))
	twice := string(Sanitize(once))
	if once != twice {
		t.Errorf("sanitize not idempotent:\nonce:  %s\ntwice: %s", once, twice)
	}
	if strings.Contains(once, "script") {
		t.Errorf("script survived: %s", once)
	}
}

func solvedProblem() *content.Page {
	return &content.Page{
		Path: "months-problems/2024-03",
		Meta: content.Meta{
			Title:           "March",
			Status:          content.StatusPublished,
			PostType:        content.TypeMonthProblem,
			IsSolved:        true,
			SolutionContent: "The answer is **42**.",
		},
		Body: "Find x.",
	}
}

func TestSolutionHTML_Rendered(t *testing.T) {
	got, err := SolutionHTML(solvedProblem())
	if err != nil {
		t.Fatalf("SolutionHTML: %v", err)
	}
	if !strings.Contains(string(got), "<strong>42</strong>") {
		t.Errorf("solution not rendered: %s", got)
	}
}

func TestSolutionHTML_Gating(t *testing.T) {
	unsolved := solvedProblem()
	unsolved.Meta.IsSolved = false

	draft := solvedProblem()
	draft.Meta.Status = content.StatusDraft

	notProblem := solvedProblem()
	notProblem.Path = "news/others/2024-03"

	empty := solvedProblem()
	empty.Meta.SolutionContent = ""

	for name, p := range map[string]*content.Page{
		"unsolved":       unsolved,
		"draft":          draft,
		"not a problem":  notProblem,
		"empty solution": empty,
	} {
		got, err := SolutionHTML(p)
		if err != nil {
			t.Fatalf("%s: SolutionHTML: %v", name, err)
		}
		if got != "" {
			t.Errorf("%s: SolutionHTML = %q, want empty", name, got)
		}
	}
}

func TestSolutionHTML_SanitizedLikeBody(t *testing.T) {
	p := solvedProblem()
	p.Meta.SolutionContent = `Solution <script>steal()</script> here.`
	got, err := SolutionHTML(p)
	if err != nil {
		t.Fatalf("SolutionHTML: %v", err)
	}
	if strings.Contains(string(got), "script") {
		t.Errorf("solution bypassed sanitizer: %s", got)
	}
}
