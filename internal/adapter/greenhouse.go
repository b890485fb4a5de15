package adapter

import (
	"context"
	"fmt"
	"net/http"

	"github.com/amishk599/jobradar/internal/model"
)

const greenhouseBaseURL = "https://boards-api.greenhouse.io/v1/boards"

// GreenhouseAdapter fetches jobs from the Greenhouse public boards API.
type GreenhouseAdapter struct {
	boardToken string
	baseURL    string
	headers    map[string]string
	client     *http.Client
}

// NewGreenhouseAdapter creates a new adapter for a Greenhouse board.
func NewGreenhouseAdapter(boardToken string, headers map[string]string, client *http.Client) *GreenhouseAdapter {
	return &GreenhouseAdapter{
		boardToken: boardToken,
		baseURL:    greenhouseBaseURL,
		headers:    headers,
		client:     client,
	}
}

// Fetch retrieves every job on the board as returned by the API.
func (a *GreenhouseAdapter) Fetch(ctx context.Context) ([]model.RawItem, error) {
	var resp struct {
		Jobs []any `json:"jobs"`
	}
	err := getJSON(ctx, a.client, request{
		url:     fmt.Sprintf("%s/%s/jobs", a.baseURL, a.boardToken),
		headers: a.headers,
		label:   "greenhouse fetch for " + a.boardToken,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return toItems(resp.Jobs), nil
}
