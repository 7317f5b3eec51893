package content

import (
	"sort"
	"strings"
	"time"
)

// Content tree directories. News splits into awards and general posts by
// path prefix; everything that is neither news nor a monthly problem goes
// to the misc bucket.
const (
	DirNews           = "news"
	DirNewsAwards     = "news/awards"
	DirNewsOthers     = "news/others"
	DirMonthsProblems = "months-problems"
	DirMisc           = "misc"
)

// Published keeps pages whose status is "published".
func Published(pages []*Page) []*Page {
	return filter(pages, func(p *Page) bool { return p.Meta.Status == StatusPublished })
}

// Drafts keeps pages whose status is "draft".
func Drafts(pages []*Page) []*Page {
	return filter(pages, func(p *Page) bool { return p.Meta.Status == StatusDraft })
}

// Under keeps pages whose path is under the given directory.
func Under(pages []*Page, dir string) []*Page {
	prefix := dir + "/"
	return filter(pages, func(p *Page) bool { return strings.HasPrefix(p.Path, prefix) })
}

// SortByDateDesc returns the pages ordered newest first. A page with a
// missing or unparseable date sorts as if dated at fallback: listings pass
// time.Now() so undated posts float to the top, the drafts view passes the
// zero time so undated drafts sink to the bottom. The asymmetry is
// deliberate and fixed per call site.
func SortByDateDesc(pages []*Page, fallback time.Time) []*Page {
	out := make([]*Page, len(pages))
	copy(out, pages)
	sort.SliceStable(out, func(i, j int) bool {
		return sortDate(out[i], fallback).After(sortDate(out[j], fallback))
	})
	return out
}

func sortDate(p *Page, fallback time.Time) time.Time {
	if !p.Meta.HasDate() {
		return fallback
	}
	return p.Meta.DateValue()
}

// DateOf normalizes a page's date for the monthly-problem ordering.
// It is total: absent or unparseable dates resolve to the zero time.
func DateOf(p *Page) time.Time {
	return p.Meta.DateValue()
}

// CurrentUnsolvedProblem returns the newest published monthly problem not
// yet marked solved, or nil if every problem is solved.
func CurrentUnsolvedProblem(pages []*Page) *Page {
	for _, p := range sortedProblems(pages) {
		if !p.Meta.IsSolved {
			return p
		}
	}
	return nil
}

// SolvedProblems returns all published monthly problems marked solved,
// newest first.
func SolvedProblems(pages []*Page) []*Page {
	return filter(sortedProblems(pages), func(p *Page) bool { return p.Meta.IsSolved })
}

// sortedProblems returns published monthly problems ordered newest first
// by the total DateOf normalizer.
func sortedProblems(pages []*Page) []*Page {
	problems := Under(Published(pages), DirMonthsProblems)
	sort.SliceStable(problems, func(i, j int) bool {
		return DateOf(problems[i]).After(DateOf(problems[j]))
	})
	return problems
}

// RecentNews returns the n newest published news posts.
func RecentNews(pages []*Page, n int) []*Page {
	news := SortByDateDesc(Under(Published(pages), DirNews), time.Now())
	if len(news) > n {
		news = news[:n]
	}
	return news
}

// AwardPosts returns published award news, newest first.
func AwardPosts(pages []*Page) []*Page {
	news := SortByDateDesc(Under(Published(pages), DirNews), time.Now())
	return Under(news, DirNewsAwards)
}

// GeneralNewsPosts returns published general news, newest first.
func GeneralNewsPosts(pages []*Page) []*Page {
	news := SortByDateDesc(Under(Published(pages), DirNews), time.Now())
	return Under(news, DirNewsOthers)
}

func filter(pages []*Page, keep func(*Page) bool) []*Page {
	var out []*Page
	for _, p := range pages {
		if keep(p) {
			out = append(out, p)
		}
	}
	return out
}
