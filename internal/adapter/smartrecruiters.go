package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/amishk599/jobradar/internal/model"
)

const (
	smartRecruitersBaseURL  = "https://api.smartrecruiters.com/v1/companies"
	smartRecruitersJobsURL  = "https://jobs.smartrecruiters.com"
	smartRecruitersPageSize = 100
	smartRecruitersMaxPages = 10
)

// SmartRecruitersAdapter fetches postings from the SmartRecruiters public API.
type SmartRecruitersAdapter struct {
	companySlug string
	query       string
	baseURL     string
	headers     map[string]string
	client      *http.Client
}

// NewSmartRecruitersAdapter creates a new adapter for a SmartRecruiters company.
func NewSmartRecruitersAdapter(companySlug, query string, headers map[string]string, client *http.Client) *SmartRecruitersAdapter {
	return &SmartRecruitersAdapter{
		companySlug: companySlug,
		query:       query,
		baseURL:     smartRecruitersBaseURL,
		headers:     headers,
		client:      client,
	}
}

// Fetch pages through the company's postings. The API carries no public link,
// so each item gets a "url" pointing at the hosted job page.
func (a *SmartRecruitersAdapter) Fetch(ctx context.Context) ([]model.RawItem, error) {
	var all []model.RawItem

	for page := 0; page < smartRecruitersMaxPages; page++ {
		offset := page * smartRecruitersPageSize
		q := url.Values{}
		q.Set("limit", strconv.Itoa(smartRecruitersPageSize))
		q.Set("offset", strconv.Itoa(offset))
		if a.query != "" {
			q.Set("q", a.query)
		}

		var resp struct {
			Content    []any       `json:"content"`
			TotalFound json.Number `json:"totalFound"`
		}
		err := getJSON(ctx, a.client, request{
			url:     fmt.Sprintf("%s/%s/postings?%s", a.baseURL, url.PathEscape(a.companySlug), q.Encode()),
			headers: a.headers,
			label:   "smartrecruiters fetch for " + a.companySlug,
		}, &resp)
		if err != nil {
			return nil, err
		}

		items := toItems(resp.Content)
		for _, item := range items {
			if _, ok := item["url"]; ok {
				continue
			}
			if id := fmt.Sprint(item["id"]); item["id"] != nil && id != "" {
				item["url"] = fmt.Sprintf("%s/%s/%s", smartRecruitersJobsURL, url.PathEscape(a.companySlug), url.PathEscape(id))
			}
		}
		all = append(all, items...)

		if len(items) < smartRecruitersPageSize {
			break
		}
		if total, err := resp.TotalFound.Int64(); err == nil && total > 0 && int64(offset+len(items)) >= total {
			break
		}
	}

	return all, nil
}
