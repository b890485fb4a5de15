package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestWorkdayFetch_PaginatesAndBuildsURLs(t *testing.T) {
	var offsets []int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if r.URL.Path != "/wday/cxs/nvidia/NVIDIAExternalCareerSite/jobs" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		var body workdayListingRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decoding request body: %v", err)
			return
		}
		if body.SearchText != "data engineer" || body.Limit != workdayPageSize {
			t.Errorf("unexpected request body: %+v", body)
		}
		offsets = append(offsets, body.Offset)

		// 25 postings in total: a full first page, then five. Later pages
		// report total 0 like the real API does.
		n, total := workdayPageSize, 25
		if body.Offset > 0 {
			n, total = 5, 0
		}
		postings := make([]map[string]any, n)
		for i := range postings {
			postings[i] = map[string]any{
				"title":        fmt.Sprintf("Engineer %d", body.Offset+i),
				"externalPath": fmt.Sprintf("/job/US-CA-Santa-Clara/Engineer_JR%d", body.Offset+i),
				"postedOn":     "Posted Today",
			}
		}
		json.NewEncoder(w).Encode(map[string]any{"total": total, "jobPostings": postings})
	}))
	defer srv.Close()

	base := "https://nvidia.wd5.myworkdayjobs.com/wday/cxs/nvidia/NVIDIAExternalCareerSite"
	a := NewWorkdayAdapter(base, "data engineer", nil, redirectTo(srv))

	items, err := a.Fetch(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 25 {
		t.Fatalf("expected 25 items, got %d", len(items))
	}
	if len(offsets) != 2 || offsets[1] != workdayPageSize {
		t.Errorf("expected two pages at offsets 0 and %d, got %v", workdayPageSize, offsets)
	}

	want := "https://nvidia.wd5.myworkdayjobs.com/NVIDIAExternalCareerSite/job/US-CA-Santa-Clara/Engineer_JR0"
	if items[0]["url"] != want {
		t.Errorf("url = %v, want %s", items[0]["url"], want)
	}
}

func TestWorkdayFetch_StopsAtPageCap(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		postings := make([]map[string]any, workdayPageSize)
		for i := range postings {
			postings[i] = map[string]any{"title": "Engineer", "externalPath": fmt.Sprintf("/job/%d-%d", calls, i)}
		}
		json.NewEncoder(w).Encode(map[string]any{"jobPostings": postings})
	}))
	defer srv.Close()

	items, err := NewWorkdayAdapter(srv.URL+"/wday/cxs/x/Site", "", nil, srv.Client()).Fetch(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != workdayMaxPages {
		t.Errorf("expected %d requests, got %d", workdayMaxPages, calls)
	}
	if len(items) != workdayMaxPages*workdayPageSize {
		t.Errorf("expected %d items, got %d", workdayMaxPages*workdayPageSize, len(items))
	}
}

func TestWorkdayFetch_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	if _, err := NewWorkdayAdapter(srv.URL, "", nil, srv.Client()).Fetch(context.Background()); err == nil {
		t.Fatal("expected error for HTTP 503, got nil")
	}
}

func TestWorkdaySiteURL(t *testing.T) {
	tests := []struct {
		base string
		want string
	}{
		{"https://acme.wd1.myworkdayjobs.com/wday/cxs/acme/Careers", "https://acme.wd1.myworkdayjobs.com/Careers"},
		{"https://acme.wd1.myworkdayjobs.com/Careers", "https://acme.wd1.myworkdayjobs.com/Careers"},
		{"https://acme.wd1.myworkdayjobs.com/", "https://acme.wd1.myworkdayjobs.com"},
	}
	for _, tc := range tests {
		if got := workdaySiteURL(tc.base); got != tc.want {
			t.Errorf("workdaySiteURL(%q) = %q, want %q", tc.base, got, tc.want)
		}
	}
}
