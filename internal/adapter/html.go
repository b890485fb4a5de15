package adapter

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/amishk599/jobradar/internal/model"
)

const defaultHTMLSelector = "a[href]"

// HTMLAdapter scrapes a careers page: every element matching the selector
// becomes one item with a title and a (possibly relative) url.
type HTMLAdapter struct {
	pageURL  string
	selector string
	headers  map[string]string
	client   *http.Client
}

// NewHTMLAdapter creates a new adapter for a careers page.
func NewHTMLAdapter(pageURL, selector string, headers map[string]string, client *http.Client) *HTMLAdapter {
	if selector == "" {
		selector = defaultHTMLSelector
	}
	return &HTMLAdapter{
		pageURL:  pageURL,
		selector: selector,
		headers:  headers,
		client:   client,
	}
}

// Fetch downloads the page and extracts the matching postings in document
// order. Matches without a link are skipped.
func (a *HTMLAdapter) Fetch(ctx context.Context) ([]model.RawItem, error) {
	label := "html fetch for " + a.pageURL
	data, err := do(ctx, a.client, request{url: a.pageURL, headers: a.headers, label: label})
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%s: parse: %w", label, err)
	}

	var items []model.RawItem
	doc.Find(a.selector).Each(func(_ int, s *goquery.Selection) {
		link := s
		if goquery.NodeName(s) != "a" {
			link = s.Find("a[href]").First()
		}
		href, ok := link.Attr("href")
		href = strings.TrimSpace(href)
		if !ok || href == "" || strings.HasPrefix(href, "#") || strings.HasPrefix(strings.ToLower(href), "javascript:") {
			return
		}

		title := strings.TrimSpace(s.AttrOr("data-title", ""))
		if title == "" {
			title = strings.Join(strings.Fields(s.Text()), " ")
		}
		item := model.RawItem{"title": title, "url": href}
		if id, ok := s.Attr("data-id"); ok {
			item["id"] = id
		}
		items = append(items, item)
	})
	return items, nil
}
