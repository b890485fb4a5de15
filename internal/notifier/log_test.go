package notifier

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/amishk599/jobradar/internal/model"
)

func TestLogNotifier_Notify_emptyBatch(t *testing.T) {
	n := NewLogNotifier(discardLogger())
	if err := n.Notify(context.Background(), nil); err != nil {
		t.Errorf("Notify(nil) = %v, want nil", err)
	}
	if err := n.Notify(context.Background(), []model.Posting{}); err != nil {
		t.Errorf("Notify([]) = %v, want nil", err)
	}
}

func TestLogNotifier_Notify_logsEachPosting(t *testing.T) {
	var buf bytes.Buffer
	n := NewLogNotifier(slog.New(slog.NewTextHandler(&buf, nil)))
	posted := time.Date(2026, 3, 9, 8, 0, 0, 0, time.UTC)
	postings := []model.Posting{
		{SourceName: "lever:acme", Company: "Acme", Title: "Engineer", Location: "Remote", URL: "https://example.com/1", PublishedAt: &posted},
		{SourceName: "rss:wwr", Company: "Beta", Title: "Developer", URL: "https://example.com/2"},
	}
	if err := n.Notify(context.Background(), postings); err != nil {
		t.Fatalf("Notify() = %v, want nil", err)
	}

	out := buf.String()
	if got := strings.Count(out, `msg="new posting"`); got != 2 {
		t.Errorf("expected 2 log lines, got %d:\n%s", got, out)
	}
	if !strings.Contains(out, "published_at=2026-03-09") {
		t.Errorf("expected published_at in output:\n%s", out)
	}
}
