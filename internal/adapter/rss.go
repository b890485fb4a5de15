package adapter

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/amishk599/jobradar/internal/model"
)

// RSSAdapter reads an RSS, Atom, or JSON Feed document.
type RSSAdapter struct {
	feedURL string
	headers map[string]string
	client  *http.Client
	parser  *gofeed.Parser
}

// NewRSSAdapter creates a new adapter for a feed URL.
func NewRSSAdapter(feedURL string, headers map[string]string, client *http.Client) *RSSAdapter {
	return &RSSAdapter{
		feedURL: feedURL,
		headers: headers,
		client:  client,
		parser:  gofeed.NewParser(),
	}
}

// Fetch downloads the feed and flattens each entry into a raw item keyed like
// the feed's own elements (title, link, guid, published, ...).
func (a *RSSAdapter) Fetch(ctx context.Context) ([]model.RawItem, error) {
	label := "rss fetch for " + a.feedURL
	data, err := do(ctx, a.client, request{url: a.feedURL, headers: a.headers, label: label})
	if err != nil {
		return nil, err
	}

	feed, err := a.parser.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%s: parse: %w", label, err)
	}

	items := make([]model.RawItem, 0, len(feed.Items))
	for _, it := range feed.Items {
		if it == nil {
			continue
		}
		items = append(items, feedItem(it))
	}
	return items, nil
}

func feedItem(it *gofeed.Item) model.RawItem {
	item := model.RawItem{
		"title":       it.Title,
		"link":        it.Link,
		"guid":        it.GUID,
		"description": it.Description,
	}
	if len(it.Links) > 0 {
		links := make([]any, len(it.Links))
		for i, l := range it.Links {
			links[i] = l
		}
		item["links"] = links
	}
	if it.PublishedParsed != nil {
		item["published"] = it.PublishedParsed.UTC().Format(time.RFC3339)
	} else if it.Published != "" {
		item["published"] = it.Published
	}
	if it.UpdatedParsed != nil {
		item["updated"] = it.UpdatedParsed.UTC().Format(time.RFC3339)
	} else if it.Updated != "" {
		item["updated"] = it.Updated
	}
	if it.Author != nil && it.Author.Name != "" {
		item["author"] = map[string]any{"name": it.Author.Name}
	}
	if len(it.Categories) > 0 {
		cats := make([]any, len(it.Categories))
		for i, c := range it.Categories {
			cats[i] = c
		}
		item["categories"] = cats
	}
	for k, v := range it.Custom {
		if _, taken := item[k]; !taken {
			item[k] = v
		}
	}
	return item
}
