// Package normalize turns raw source items into canonical postings.
package normalize

import (
	"html"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/amishk599/jobradar/internal/model"
)

var htmlTagRegex = regexp.MustCompile(`<[^>]*>`)

// Normalizer maps raw items of any supported kind onto model.Posting.
// It performs no I/O; the clock is only consulted for relative dates.
type Normalizer struct {
	now func() time.Time
}

// New returns a Normalizer using the wall clock.
func New() *Normalizer {
	return &Normalizer{now: time.Now}
}

// NewWithClock returns a Normalizer whose relative dates ("Posted Today")
// are resolved against now.
func NewWithClock(now func() time.Time) *Normalizer {
	return &Normalizer{now: now}
}

// Normalize converts one raw item from src into a Posting. It fails with a
// *model.NormalizationError when no absolute http(s) URL can be extracted.
func (n *Normalizer) Normalize(src model.SourceDescriptor, item model.RawItem) (model.Posting, error) {
	spec := specFor(src)
	fields := map[string]any(item)

	rawURL := stringify(first(fields, spec.URL))
	link, err := resolveURL(src.Endpoint, rawURL)
	if err != nil {
		return model.Posting{}, &model.NormalizationError{Source: src.Name, Reason: "url", Err: err}
	}

	p := model.Posting{
		SourceName: src.Name,
		ExternalID: stringify(first(fields, spec.ID)),
		Title:      CleanText(stringify(first(fields, spec.Title))),
		Company:    CleanText(stringify(first(fields, spec.Company))),
		Location:   CleanText(stringify(first(fields, spec.Location))),
		URL:        link,
	}

	if p.Company == "" {
		if src.Kind == model.KindRSS && src.Company == "" {
			p.Company, p.Title = splitCompanyTitle(p.Title)
		} else {
			p.Company = CleanText(src.Company)
		}
	}

	p.PublishedAt = parseTime(first(fields, spec.Published), n.now())
	return p, nil
}

// CleanText unescapes HTML entities, strips tags, trims, and collapses
// internal whitespace runs. Case is preserved.
func CleanText(s string) string {
	if s == "" {
		return ""
	}
	s = html.UnescapeString(s)
	s = htmlTagRegex.ReplaceAllString(s, "")
	return strings.Join(strings.Fields(s), " ")
}

// splitCompanyTitle splits feed titles of the form "Company: Title".
func splitCompanyTitle(title string) (company, rest string) {
	c, t, ok := strings.Cut(title, ": ")
	if !ok || c == "" || t == "" {
		return "", title
	}
	return strings.TrimSpace(c), strings.TrimSpace(t)
}

// resolveURL returns raw as an absolute http(s) URL, resolving relative
// references against base when base is itself an absolute URL.
func resolveURL(base, raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", model.ErrNoURL
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	if !u.IsAbs() {
		b, err := url.Parse(strings.TrimSpace(base))
		if err != nil || !b.IsAbs() {
			return "", model.ErrNoURL
		}
		u = b.ResolveReference(u)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", model.ErrNoURL
	}
	if u.Host == "" {
		return "", model.ErrNoURL
	}
	return u.String(), nil
}
