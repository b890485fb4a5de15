package adapter

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestLeverFetch_Success(t *testing.T) {
	payload := `[
		{
			"id": "abc-123",
			"text": "Backend Engineer",
			"categories": {"location": "New York, NY", "allLocations": ["New York, NY", "Remote"]},
			"createdAt": 1770000000000,
			"hostedUrl": "https://jobs.lever.co/plaid/abc-123"
		},
		{
			"id": "def-456",
			"text": "Data Scientist",
			"categories": {"location": "Remote"},
			"createdAt": 1770100000000,
			"hostedUrl": "https://jobs.lever.co/plaid/def-456"
		}
	]`

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v0/postings/plaid" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if r.URL.Query().Get("mode") != "json" {
			t.Errorf("expected mode=json, got %q", r.URL.RawQuery)
		}
		w.Write([]byte(payload))
	}))
	defer srv.Close()

	a := NewLeverAdapter("plaid", nil, redirectTo(srv))

	items, err := a.Fetch(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	if items[0]["text"] != "Backend Engineer" || items[1]["id"] != "def-456" {
		t.Errorf("items not returned in board order: %v", items)
	}
}

func TestLeverFetch_EmptyBoard(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	items, err := NewLeverAdapter("empty", nil, redirectTo(srv)).Fetch(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("expected 0 items, got %d", len(items))
	}
}

func TestLeverFetch_ObjectInsteadOfArray(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"ok": false, "error": "Document not found"}`))
	}))
	defer srv.Close()

	if _, err := NewLeverAdapter("gone", nil, redirectTo(srv)).Fetch(context.Background()); err == nil {
		t.Fatal("expected error when the board answers with an object, got nil")
	}
}

func TestLeverFetch_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	if _, err := NewLeverAdapter("missing", nil, redirectTo(srv)).Fetch(context.Background()); err == nil {
		t.Fatal("expected error for HTTP 404, got nil")
	}
}
