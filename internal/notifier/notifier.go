// Package notifier delivers new postings to people: logs, Slack, email,
// desktop popups, and a Kafka topic for downstream consumers.
package notifier

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/amishk599/jobradar/internal/model"
)

// Notifier types accepted in configuration.
const (
	TypeLog     = "log"
	TypeSlack   = "slack"
	TypeEmail   = "email"
	TypeDesktop = "desktop"
	TypeKafka   = "kafka"
)

// Types lists every supported notifier type.
var Types = []string{TypeLog, TypeSlack, TypeEmail, TypeDesktop, TypeKafka}

// Multi fans a batch out to every notifier in order. All of them are tried;
// their errors are joined.
type Multi []model.Notifier

// Ensure Multi implements model.Notifier.
var _ model.Notifier = Multi(nil)

// Notify hands postings to each notifier.
func (m Multi) Notify(ctx context.Context, postings []model.Posting) error {
	var errs []error
	for _, n := range m {
		if err := n.Notify(ctx, postings); err != nil {
			errs = append(errs, fmt.Errorf("%T: %w", n, err))
		}
	}
	return errors.Join(errs...)
}

// SendTestMessage sends a dummy posting to verify the integration works.
func SendTestMessage(ctx context.Context, n model.Notifier) error {
	now := time.Now()
	return n.Notify(ctx, []model.Posting{{
		SourceName:  "test",
		ExternalID:  "test-001",
		Company:     "jobradar",
		Title:       "Test notification: integration verified",
		Location:    "Everywhere",
		URL:         "https://github.com/amishk599/jobradar",
		PublishedAt: &now,
	}})
}

func postedText(p model.Posting) string {
	if p.PublishedAt == nil {
		return "Just detected"
	}
	return p.PublishedAt.Format("Mon, 02 Jan 2006")
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
