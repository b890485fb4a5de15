package adapter

import (
	"context"
	"fmt"
	"net/http"

	"github.com/amishk599/jobradar/internal/model"
)

const ashbyBaseURL = "https://api.ashbyhq.com/posting-api/job-board"

// AshbyAdapter fetches jobs from the Ashby public job board API.
type AshbyAdapter struct {
	boardToken string
	baseURL    string
	headers    map[string]string
	client     *http.Client
}

// NewAshbyAdapter creates a new adapter for an Ashby job board.
func NewAshbyAdapter(boardToken string, headers map[string]string, client *http.Client) *AshbyAdapter {
	return &AshbyAdapter{
		boardToken: boardToken,
		baseURL:    ashbyBaseURL,
		headers:    headers,
		client:     client,
	}
}

// Fetch retrieves the board's listed jobs. Unlisted jobs are left out since
// they cannot be opened by candidates.
func (a *AshbyAdapter) Fetch(ctx context.Context) ([]model.RawItem, error) {
	var resp struct {
		Jobs []any `json:"jobs"`
	}
	err := getJSON(ctx, a.client, request{
		url:     fmt.Sprintf("%s/%s", a.baseURL, a.boardToken),
		headers: a.headers,
		label:   "ashby fetch for " + a.boardToken,
	}, &resp)
	if err != nil {
		return nil, err
	}

	items := toItems(resp.Jobs)
	listed := items[:0]
	for _, item := range items {
		if v, ok := item["isListed"].(bool); ok && !v {
			continue
		}
		listed = append(listed, item)
	}
	return listed, nil
}
