package adapter

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/amishk599/jobradar/internal/model"
)

const (
	workdayPageSize = 20
	workdayMaxPages = 25
)

// workdayListingRequest is the POST body for the Workday jobs listing endpoint.
type workdayListingRequest struct {
	AppliedFacets map[string]any `json:"appliedFacets"`
	Limit         int            `json:"limit"`
	Offset        int            `json:"offset"`
	SearchText    string         `json:"searchText"`
}

// WorkdayAdapter fetches jobs from a Workday career site through its CXS API,
// e.g. https://nvidia.wd5.myworkdayjobs.com/wday/cxs/nvidia/NVIDIAExternalCareerSite.
type WorkdayAdapter struct {
	baseURL    string
	siteURL    string // public site root that externalPath is relative to
	searchText string
	headers    map[string]string
	client     *http.Client
}

// NewWorkdayAdapter creates a new adapter for a Workday career site.
func NewWorkdayAdapter(baseURL, searchText string, headers map[string]string, client *http.Client) *WorkdayAdapter {
	baseURL = strings.TrimRight(baseURL, "/")
	return &WorkdayAdapter{
		baseURL:    baseURL,
		siteURL:    workdaySiteURL(baseURL),
		searchText: searchText,
		headers:    headers,
		client:     client,
	}
}

// Fetch pages through POST /jobs until the reported total is reached, a page
// comes back empty, or workdayMaxPages pages have been read. Each item gets a
// "url" built from the site root and its externalPath.
func (a *WorkdayAdapter) Fetch(ctx context.Context) ([]model.RawItem, error) {
	var all []model.RawItem
	offset, total := 0, -1

	for page := 0; page < workdayMaxPages; page++ {
		var resp struct {
			Total       any   `json:"total"`
			JobPostings []any `json:"jobPostings"`
		}
		err := getJSON(ctx, a.client, request{
			method: http.MethodPost,
			url:    a.baseURL + "/jobs",
			body: workdayListingRequest{
				AppliedFacets: map[string]any{},
				Limit:         workdayPageSize,
				Offset:        offset,
				SearchText:    a.searchText,
			},
			headers: a.headers,
			label:   fmt.Sprintf("workday listing fetch for %s (offset %d)", a.baseURL, offset),
		}, &resp)
		if err != nil {
			return nil, err
		}

		items := toItems(resp.JobPostings)
		for _, item := range items {
			if p, ok := item["externalPath"].(string); ok && p != "" {
				item["url"] = a.siteURL + "/" + strings.TrimLeft(p, "/")
			}
		}
		all = append(all, items...)

		if n, ok := workdayTotal(resp.Total); ok && total < 0 {
			total = n
		}
		offset += workdayPageSize
		if len(resp.JobPostings) < workdayPageSize || (total >= 0 && offset >= total) {
			break
		}
	}

	return all, nil
}

// workdaySiteURL maps a CXS API base (scheme://host/wday/cxs/{tenant}/{site})
// to the public site root (scheme://host/{site}). Anything else is used as is.
func workdaySiteURL(baseURL string) string {
	u, err := url.Parse(baseURL)
	if err != nil {
		return baseURL
	}
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(parts) == 4 && parts[0] == "wday" && parts[1] == "cxs" {
		u.Path = "/" + parts[3]
	}
	u.RawQuery = ""
	return strings.TrimRight(u.String(), "/")
}

// workdayTotal reads the "total" field. Workday only fills it in on the
// first page and sends zero afterwards, so zero is treated as absent.
func workdayTotal(v any) (int, bool) {
	var s string
	switch t := v.(type) {
	case string:
		s = t
	case fmt.Stringer:
		s = t.String()
	default:
		return 0, false
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}
