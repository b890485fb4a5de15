package adapter

import (
	"context"
	"fmt"
	"net/http"

	"github.com/amishk599/jobradar/internal/model"
)

const leverBaseURL = "https://api.lever.co/v0/postings"

// LeverAdapter fetches jobs from the Lever public postings API.
type LeverAdapter struct {
	companySlug string
	baseURL     string
	headers     map[string]string
	client      *http.Client
}

// NewLeverAdapter creates a new adapter for a Lever board.
func NewLeverAdapter(companySlug string, headers map[string]string, client *http.Client) *LeverAdapter {
	return &LeverAdapter{
		companySlug: companySlug,
		baseURL:     leverBaseURL,
		headers:     headers,
		client:      client,
	}
}

// Fetch retrieves every posting on the board. Lever answers with a bare array.
func (a *LeverAdapter) Fetch(ctx context.Context) ([]model.RawItem, error) {
	var postings []any
	err := getJSON(ctx, a.client, request{
		url:     fmt.Sprintf("%s/%s?mode=json", a.baseURL, a.companySlug),
		headers: a.headers,
		label:   "lever fetch for " + a.companySlug,
	}, &postings)
	if err != nil {
		return nil, err
	}
	return toItems(postings), nil
}
