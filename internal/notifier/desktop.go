package notifier

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/gen2brain/beeep"

	"github.com/amishk599/jobradar/internal/model"
)

// Ensure DesktopNotifier implements model.Notifier.
var _ model.Notifier = (*DesktopNotifier)(nil)

// maxDesktopPopups bounds how many popups one batch may raise; the rest are
// summarized in a final popup.
const maxDesktopPopups = 5

// DesktopNotifier raises a native desktop notification per posting.
type DesktopNotifier struct {
	popup  func(title, message string) error
	logger *slog.Logger
}

// NewDesktopNotifier returns a notifier backed by the OS notification center.
func NewDesktopNotifier(logger *slog.Logger) *DesktopNotifier {
	return &DesktopNotifier{
		popup: func(title, message string) error {
			return beeep.Notify(title, message, "")
		},
		logger: logger,
	}
}

// Notify raises up to maxDesktopPopups popups and one summary for the rest.
func (n *DesktopNotifier) Notify(ctx context.Context, postings []model.Posting) error {
	shown := min(len(postings), maxDesktopPopups)
	for _, p := range postings[:shown] {
		if err := ctx.Err(); err != nil {
			return err
		}
		title := p.Title
		if p.Company != "" {
			title = p.Company + ": " + p.Title
		}
		msg := p.URL
		if p.Location != "" {
			msg = p.Location + "\n" + p.URL
		}
		if err := n.popup(title, msg); err != nil {
			return fmt.Errorf("desktop notification: %w", err)
		}
	}
	if rest := len(postings) - shown; rest > 0 {
		if err := n.popup("jobradar", fmt.Sprintf("%d more new postings", rest)); err != nil {
			return fmt.Errorf("desktop notification: %w", err)
		}
	}
	n.logger.Debug("desktop notifications raised", "postings", len(postings))
	return nil
}
