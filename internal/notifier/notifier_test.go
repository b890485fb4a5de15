package notifier

import (
	"context"
	"errors"
	"testing"

	"github.com/amishk599/jobradar/internal/model"
)

type recordingNotifier struct {
	batches [][]model.Posting
	err     error
}

func (r *recordingNotifier) Notify(_ context.Context, postings []model.Posting) error {
	r.batches = append(r.batches, postings)
	return r.err
}

func TestMulti_AllNotifiersRunDespiteErrors(t *testing.T) {
	errSlack := errors.New("slack down")
	errMail := errors.New("smtp refused")
	first := &recordingNotifier{err: errSlack}
	second := &recordingNotifier{}
	third := &recordingNotifier{err: errMail}

	err := Multi{first, second, third}.Notify(context.Background(), []model.Posting{samplePosting("SRE", "Acme")})
	if !errors.Is(err, errSlack) || !errors.Is(err, errMail) {
		t.Fatalf("expected both errors to be joined, got %v", err)
	}
	for i, r := range []*recordingNotifier{first, second, third} {
		if len(r.batches) != 1 {
			t.Errorf("notifier %d called %d times, want 1", i, len(r.batches))
		}
	}
}

func TestMulti_Empty(t *testing.T) {
	if err := (Multi{}).Notify(context.Background(), []model.Posting{samplePosting("SRE", "Acme")}); err != nil {
		t.Errorf("empty Multi returned %v", err)
	}
}

func TestSendTestMessage(t *testing.T) {
	r := &recordingNotifier{}
	if err := SendTestMessage(context.Background(), r); err != nil {
		t.Fatalf("SendTestMessage() = %v", err)
	}
	if len(r.batches) != 1 || len(r.batches[0]) != 1 {
		t.Fatalf("expected one batch of one posting, got %v", r.batches)
	}
	p := r.batches[0][0]
	if p.URL == "" || p.Title == "" || p.PublishedAt == nil {
		t.Errorf("test posting is incomplete: %+v", p)
	}
}
