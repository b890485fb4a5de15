// Package filter holds the optional keyword admission filter. Postings it
// rejects are neither reported nor recorded as seen, so widening the keywords
// later surfaces them again.
package filter

import (
	"strings"

	"github.com/amishk599/jobradar/internal/model"
)

// TitleFilter admits postings whose title contains any include keyword and
// none of the exclude keywords. Matching is a case-insensitive substring test.
// An empty include list admits every title.
type TitleFilter struct {
	include []string
	exclude []string
}

// NewTitleFilter returns a filter over the given keyword lists. It returns nil
// when both lists are empty, meaning "no filter".
func NewTitleFilter(include, exclude []string) *TitleFilter {
	f := &TitleFilter{
		include: lowerAll(include),
		exclude: lowerAll(exclude),
	}
	if len(f.include) == 0 && len(f.exclude) == 0 {
		return nil
	}
	return f
}

// Match reports whether p passes the filter. A nil filter passes everything.
func (f *TitleFilter) Match(p model.Posting) bool {
	if f == nil {
		return true
	}
	title := strings.ToLower(p.Title)

	for _, kw := range f.exclude {
		if strings.Contains(title, kw) {
			return false
		}
	}
	if len(f.include) == 0 {
		return true
	}
	for _, kw := range f.include {
		if strings.Contains(title, kw) {
			return true
		}
	}
	return false
}

func lowerAll(keywords []string) []string {
	var out []string
	for _, kw := range keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw != "" {
			out = append(out, kw)
		}
	}
	return out
}
