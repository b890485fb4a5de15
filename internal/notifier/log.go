package notifier

import (
	"context"
	"log/slog"

	"github.com/amishk599/jobradar/internal/model"
)

// Ensure LogNotifier implements model.Notifier.
var _ model.Notifier = (*LogNotifier)(nil)

// LogNotifier writes new postings to the given logger as structured messages.
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier returns a notifier that logs each posting via slog.
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

// Notify logs each posting. It never fails.
func (n *LogNotifier) Notify(_ context.Context, postings []model.Posting) error {
	for _, p := range postings {
		args := []any{"source", p.SourceName, "company", p.Company, "title", p.Title, "location", p.Location, "url", p.URL}
		if p.PublishedAt != nil {
			args = append(args, "published_at", p.PublishedAt.Format("2006-01-02"))
		}
		n.logger.Info("new posting", args...)
	}
	return nil
}
