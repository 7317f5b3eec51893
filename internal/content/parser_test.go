package content

import (
	"testing"
	"time"
)

func TestParse_FrontmatterAndBody(t *testing.T) {
	input := []byte("---\ntitle: Hello\nstatus: published\ndate: 2024-03-01\n---\n# Hello\nBody text.\n")
	doc, err := Parse(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.Meta.Title != "Hello" {
		t.Errorf("title = %q, want %q", doc.Meta.Title, "Hello")
	}
	if doc.Meta.Status != StatusPublished {
		t.Errorf("status = %q, want published", doc.Meta.Status)
	}
	if doc.Body != "# Hello\nBody text.\n" {
		t.Errorf("body = %q", doc.Body)
	}
}

func TestParse_MissingDelimiters(t *testing.T) {
	cases := []string{
		"# Just a heading\nSome text.\n",
		"---\ntitle: No closing delimiter\n",
		"title: x\n---\nbody\n",
	}
	for _, input := range cases {
		if _, err := Parse([]byte(input)); err == nil {
			t.Errorf("Parse(%q) expected error", input)
		}
	}
}

func TestParse_InvalidYAML(t *testing.T) {
	input := []byte("---\n: invalid: yaml: {{{\n---\nBody\n")
	if _, err := Parse(input); err == nil {
		t.Error("expected error for invalid YAML front-matter")
	}
}

func TestParse_NonMappingFrontmatter(t *testing.T) {
	input := []byte("---\n- a\n- b\n---\nBody\n")
	if _, err := Parse(input); err == nil {
		t.Error("expected error for non-mapping front-matter")
	}
}

func TestParse_ExtraKeysPreserved(t *testing.T) {
	input := []byte("---\ntitle: T\ncustom_key: custom value\n---\nbody\n")
	doc, err := Parse(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.Meta.Extra["custom_key"] != "custom value" {
		t.Errorf("extra = %v", doc.Meta.Extra)
	}
}

func TestParse_SolvedProblemFields(t *testing.T) {
	input := []byte("---\ntitle: P\nis_solved: true\nsolution_content: 'The answer is **42**.'\n---\nproblem\n")
	doc, err := Parse(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !doc.Meta.IsSolved {
		t.Error("is_solved not parsed")
	}
	if doc.Meta.SolutionContent != "The answer is **42**." {
		t.Errorf("solution_content = %q", doc.Meta.SolutionContent)
	}
}

func TestMeta_DateValueIsTotal(t *testing.T) {
	cases := []struct {
		name string
		date any
		want time.Time
	}{
		{"absent", nil, time.Time{}},
		{"iso string", "2024-03-05", time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)},
		{"datetime", time.Date(2024, 3, 5, 13, 45, 0, 0, time.UTC), time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)},
		{"garbage string", "next tuesday", time.Time{}},
		{"wrong type", 42, time.Time{}},
	}
	for _, tc := range cases {
		m := Meta{Date: tc.date}
		if got := m.DateValue(); !got.Equal(tc.want) {
			t.Errorf("%s: DateValue() = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestMeta_HasDate(t *testing.T) {
	if (Meta{Date: nil}).HasDate() {
		t.Error("nil date should not count")
	}
	if (Meta{Date: "not a date"}).HasDate() {
		t.Error("unparseable date should not count")
	}
	if !(Meta{Date: "2024-01-31"}).HasDate() {
		t.Error("ISO string date should count")
	}
	if !(Meta{Date: time.Now()}).HasDate() {
		t.Error("time.Time date should count")
	}
}
