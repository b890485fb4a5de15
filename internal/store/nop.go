package store

import (
	"context"
	"time"

	"github.com/amishk599/jobradar/internal/model"
)

// Ensure NopStore implements model.SeenStore.
var _ model.SeenStore = (*NopStore)(nil)

// NopStore is a no-op store used in dry-run mode. It never records anything,
// so every posting appears new on each scan.
type NopStore struct{}

func NewNopStore() *NopStore { return &NopStore{} }

func (s *NopStore) Load(context.Context) error            { return nil }
func (s *NopStore) Contains(string) bool                 { return false }
func (s *NopStore) AddAll([]string, time.Time)           {}
func (s *NopStore) Persist(context.Context) error        { return nil }
func (s *NopStore) Len() int                             { return 0 }
func (s *NopStore) Entries() map[string]time.Time        { return map[string]time.Time{} }
func (s *NopStore) Close() error                         { return nil }
func (s *NopStore) Prune(context.Context, time.Duration) (int, error) { return 0, nil }
