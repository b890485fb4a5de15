package adapter

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/amishk599/jobradar/internal/model"
)

// JSONAdapter reads a generic JSON endpoint whose postings sit in an array,
// either at the top level or under a dotted items path such as "data.jobs".
type JSONAdapter struct {
	endpoint  string
	itemsPath string
	headers   map[string]string
	client    *http.Client
}

// NewJSONAdapter creates a new adapter for a JSON endpoint.
func NewJSONAdapter(endpoint, itemsPath string, headers map[string]string, client *http.Client) *JSONAdapter {
	return &JSONAdapter{
		endpoint:  endpoint,
		itemsPath: itemsPath,
		headers:   headers,
		client:    client,
	}
}

// Fetch downloads the document and returns the objects found at the items path.
func (a *JSONAdapter) Fetch(ctx context.Context) ([]model.RawItem, error) {
	label := "json fetch for " + a.endpoint
	var doc any
	if err := getJSON(ctx, a.client, request{url: a.endpoint, headers: a.headers, label: label}, &doc); err != nil {
		return nil, err
	}

	node, err := walk(doc, a.itemsPath)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", label, err)
	}
	list, ok := node.([]any)
	if !ok {
		return nil, fmt.Errorf("%s: items path %q is not an array", label, a.itemsPath)
	}
	return toItems(list), nil
}

// walk follows a dotted path through objects and arrays. An empty path
// returns doc itself.
func walk(doc any, path string) (any, error) {
	if path == "" {
		return doc, nil
	}
	cur := doc
	for _, seg := range strings.Split(path, ".") {
		switch node := cur.(type) {
		case map[string]any:
			next, ok := node[seg]
			if !ok {
				return nil, fmt.Errorf("items path %q: no key %q", path, seg)
			}
			cur = next
		case []any:
			i, err := strconv.Atoi(seg)
			if err != nil || i < 0 || i >= len(node) {
				return nil, fmt.Errorf("items path %q: bad index %q", path, seg)
			}
			cur = node[i]
		default:
			return nil, fmt.Errorf("items path %q: cannot descend into %q", path, seg)
		}
	}
	return cur, nil
}
