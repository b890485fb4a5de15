package browse

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/amishk599/jobradar/internal/model"
	"github.com/amishk599/jobradar/internal/store"
)

type staticFetcher struct {
	items []model.RawItem
	err   error
}

func (f staticFetcher) Fetch(context.Context) ([]model.RawItem, error) {
	return f.items, f.err
}

type rejectTitle string

func (r rejectTitle) Match(p model.Posting) bool { return p.Title != string(r) }

var leverSource = model.SourceDescriptor{Name: "lever:plaid", Kind: model.KindLever, Endpoint: "plaid", Company: "Plaid"}

func leverItem(id, title string, createdMs int64) model.RawItem {
	return model.RawItem{
		"id":        id,
		"text":      title,
		"hostedUrl": "https://jobs.lever.co/plaid/" + id,
		"createdAt": float64(createdMs),
	}
}

func TestCollect_ClassifiesWithoutMutatingStore(t *testing.T) {
	items := []model.RawItem{
		leverItem("a", "Backend Engineer", 1770000000000),
		leverItem("b", "Intern", 1770100000000),
		leverItem("c", "SRE", 1770200000000),
		leverItem("c", "SRE", 1770200000000),
		{"text": "no link"},
	}

	mem := newMemSeen(t, "lever:plaid:c")
	snap, err := Collect(context.Background(), leverSource, staticFetcher{items: items}, mem, rejectTitle("Intern"))
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}

	if len(snap.Entries) != 3 {
		t.Fatalf("expected 3 entries after dedup, got %d", len(snap.Entries))
	}
	if snap.Dropped != 1 {
		t.Errorf("Dropped = %d, want 1", snap.Dropped)
	}

	// newest first
	if snap.Entries[0].ID != "lever:plaid:c" || snap.Entries[0].FirstSeen == nil {
		t.Errorf("expected the seen SRE posting first, got %+v", snap.Entries[0])
	}
	fresh := snap.New()
	if len(fresh) != 1 || fresh[0].Posting.Title != "Backend Engineer" {
		t.Errorf("New() = %+v, want only Backend Engineer", fresh)
	}
	if mem.Len() != 1 {
		t.Errorf("Collect must not add to the seen-set, Len = %d", mem.Len())
	}
}

func TestCollect_FetchError(t *testing.T) {
	_, err := Collect(context.Background(), leverSource, staticFetcher{err: errors.New("boom")}, store.NewNopStore(), nil)
	if err == nil {
		t.Fatal("expected fetch error to surface")
	}
}

func TestSortByDate_UndatedLast(t *testing.T) {
	t1 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	t2 := t1.Add(time.Hour)
	entries := []Entry{
		{ID: "undated"},
		{ID: "old", Posting: model.Posting{PublishedAt: &t1}},
		{ID: "new", Posting: model.Posting{PublishedAt: &t2}},
	}
	sortByDate(entries)
	got := []string{entries[0].ID, entries[1].ID, entries[2].ID}
	if strings.Join(got, ",") != "new,old,undated" {
		t.Errorf("order = %v", got)
	}
}

func TestPicker_Keys(t *testing.T) {
	m := pickerModel{sources: []model.SourceDescriptor{leverSource, {Name: "rss:wwr", Kind: model.KindRSS}}, chosen: pickerPending}

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyDown})
	next, cmd := next.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if got := next.(pickerModel).chosen; got != 1 {
		t.Errorf("chosen = %d, want 1", got)
	}
	if cmd == nil {
		t.Error("enter should quit the picker")
	}

	quit, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	if quit.(pickerModel).chosen != pickerQuit {
		t.Error("q should mark the picker as quit")
	}
}

func TestBrowseModel_SwitchPanesAndOpenDetail(t *testing.T) {
	snap := Snapshot{
		Source: leverSource,
		Entries: []Entry{
			{ID: "lever:plaid:a", Posting: model.Posting{Title: "Backend Engineer", URL: "https://jobs.lever.co/plaid/a"}},
			{ID: "lever:plaid:b", Posting: model.Posting{Title: "SRE"}, FirstSeen: ptr(time.Now().Add(-48 * time.Hour))},
		},
	}
	var m tea.Model = newBrowseModel(snap)
	m, _ = m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})

	if !strings.Contains(m.View(), "New since last scan (1)") {
		t.Errorf("list view missing new count:\n%s", m.View())
	}

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	bm := m.(browseModel)
	if bm.view != viewDetail || bm.detail.ID != "lever:plaid:a" {
		t.Fatalf("expected detail of the new posting, got view=%v detail=%+v", bm.view, bm.detail)
	}
	if !strings.Contains(renderDetail(bm.detail), "NEW") {
		t.Error("detail should mark the posting as new")
	}

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if m.(browseModel).view != viewList {
		t.Error("esc should return to the list")
	}
}

func TestStatusText_Seen(t *testing.T) {
	e := Entry{FirstSeen: ptr(time.Now().Add(-72 * time.Hour))}
	if got := statusText(e); !strings.HasPrefix(got, "seen 3 days ago") {
		t.Errorf("statusText = %q", got)
	}
}

// --- helpers ---

func ptr(t time.Time) *time.Time { return &t }

func newMemSeen(t *testing.T, ids ...string) *store.FileStore {
	t.Helper()
	s, err := store.NewFileStore(t.TempDir() + "/seen.jsonl")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })
	if err := s.Load(context.Background()); err != nil {
		t.Fatal(err)
	}
	s.AddAll(ids, time.Now())
	return s
}

func TestBrowseModel_OpenURLFailureShownInStatusBar(t *testing.T) {
	snap := Snapshot{
		Source:  leverSource,
		Entries: []Entry{{ID: "lever:plaid:a", Posting: model.Posting{Title: "Backend Engineer", URL: "https://jobs.lever.co/plaid/a"}}},
	}
	bm := newBrowseModel(snap)
	var opened string
	bm.open = func(url string) error {
		opened = url
		return errors.New("xdg-open: executable file not found")
	}

	var m tea.Model = bm
	m, _ = m.Update(tea.WindowSizeMsg{Width: 160, Height: 40})
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'o'}})

	if opened != "https://jobs.lever.co/plaid/a" {
		t.Errorf("opened %q", opened)
	}
	if got := m.(browseModel).notice; !strings.Contains(got, "executable file not found") {
		t.Errorf("notice = %q, want the open error", got)
	}
	if !strings.Contains(m.View(), "could not open URL") {
		t.Errorf("detail view does not show the error:\n%s", m.View())
	}

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if m.(browseModel).notice != "" {
		t.Error("leaving the detail view should clear the notice")
	}
}
