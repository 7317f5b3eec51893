// Package content implements the flat-file page store: Markdown files with
// YAML front-matter, loaded into a reload-replaceable in-memory snapshot.
package content

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Front-matter status values.
const (
	StatusPublished = "published"
	StatusDraft     = "draft"
)

// Post type values recognized in front-matter.
const (
	TypeNews         = "News"
	TypeMonthProblem = "Month-Problem"
)

// Meta is the typed front-matter record. Unrecognized keys are preserved
// in Extra so that round-tripping through the editor loses nothing.
type Meta struct {
	Title           string
	Status          string
	Date            any // raw YAML scalar: time.Time, string, or nil
	AuthorEmail     string
	PostType        string
	Category        string
	IsSolved        bool
	SolutionContent string
	Extra           map[string]any
}

// Document is a parsed content file: typed metadata plus the Markdown body.
type Document struct {
	Meta Meta
	Body string
}

// Parse splits raw bytes into a YAML front-matter block and a Markdown body.
// The block must open with a line containing only "---" and close with a
// subsequent such line; the block must be a YAML mapping. Any deviation is
// an error so that callers can decide between skipping and rejecting.
func Parse(data []byte) (*Document, error) {
	block, body, err := splitFrontMatter(data)
	if err != nil {
		return nil, err
	}

	var raw map[string]any
	if err := yaml.Unmarshal(block, &raw); err != nil {
		return nil, fmt.Errorf("front-matter is not valid YAML: %w", err)
	}
	if raw == nil {
		return nil, fmt.Errorf("front-matter is empty")
	}

	return &Document{Meta: metaFromMap(raw), Body: body}, nil
}

const fmDelim = "---"

// splitFrontMatter returns the YAML block between the delimiter pair and
// the body that follows the closing delimiter line.
func splitFrontMatter(data []byte) ([]byte, string, error) {
	trimmed := bytes.TrimLeft(data, "\n\r")
	if !hasDelimLine(trimmed) {
		return nil, "", fmt.Errorf("missing front-matter delimiter %q", fmDelim)
	}

	rest := trimmed[len(fmDelim):]
	// Skip the remainder of the opening line.
	if i := bytes.IndexByte(rest, '\n'); i >= 0 {
		rest = rest[i+1:]
	} else {
		return nil, "", fmt.Errorf("missing closing front-matter delimiter %q", fmDelim)
	}

	end := -1
	offset := 0
	for {
		line := rest[offset:]
		if hasDelimLine(line) {
			end = offset
			break
		}
		i := bytes.IndexByte(line, '\n')
		if i < 0 {
			break
		}
		offset += i + 1
	}
	if end < 0 {
		return nil, "", fmt.Errorf("missing closing front-matter delimiter %q", fmDelim)
	}

	block := rest[:end]
	after := rest[end+len(fmDelim):]
	if i := bytes.IndexByte(after, '\n'); i >= 0 {
		after = after[i+1:]
	} else {
		after = nil
	}
	return block, string(after), nil
}

// hasDelimLine reports whether data starts with a line containing only "---".
func hasDelimLine(data []byte) bool {
	if !bytes.HasPrefix(data, []byte(fmDelim)) {
		return false
	}
	rest := data[len(fmDelim):]
	if i := bytes.IndexByte(rest, '\n'); i >= 0 {
		rest = rest[:i]
	}
	return len(bytes.TrimRight(rest, " \t\r")) == 0
}

// metaFromMap lifts the recognized keys out of the raw mapping into typed
// fields; everything else lands in Extra.
func metaFromMap(raw map[string]any) Meta {
	m := Meta{Extra: make(map[string]any)}
	for k, v := range raw {
		switch k {
		case "title":
			m.Title = stringVal(v)
		case "status":
			m.Status = stringVal(v)
		case "date":
			m.Date = v
		case "author_email":
			m.AuthorEmail = stringVal(v)
		case "post_type":
			m.PostType = stringVal(v)
		case "category":
			m.Category = stringVal(v)
		case "is_solved":
			b, _ := v.(bool)
			m.IsSolved = b
		case "solution_content":
			m.SolutionContent = stringVal(v)
		default:
			m.Extra[k] = v
		}
	}
	return m
}

func stringVal(v any) string {
	s, _ := v.(string)
	return s
}

// DateValue normalizes the front-matter date into a time.Time. It is total:
// a date, a datetime, or an ISO YYYY-MM-DD string all resolve to a date;
// anything absent or unparseable resolves to the zero time.
func (m Meta) DateValue() time.Time {
	switch v := m.Date.(type) {
	case time.Time:
		y, mo, d := v.Date()
		return time.Date(y, mo, d, 0, 0, 0, 0, time.UTC)
	case string:
		t, err := time.Parse("2006-01-02", strings.TrimSpace(v))
		if err != nil {
			return time.Time{}
		}
		return t
	default:
		return time.Time{}
	}
}

// HasDate reports whether the front-matter carries a usable date.
func (m Meta) HasDate() bool {
	switch v := m.Date.(type) {
	case time.Time:
		return true
	case string:
		_, err := time.Parse("2006-01-02", strings.TrimSpace(v))
		return err == nil
	default:
		return false
	}
}
