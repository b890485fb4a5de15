package filter

import (
	"testing"

	"github.com/amishk599/jobradar/internal/model"
)

func posting(title string) model.Posting {
	return model.Posting{Title: title, Location: "Remote"}
}

func TestTitleFilter_Match(t *testing.T) {
	tests := []struct {
		name      string
		include   []string
		exclude   []string
		posting   model.Posting
		wantMatch bool
	}{
		{
			name:      "include keyword matches",
			include:   []string{"software engineer", "backend"},
			posting:   posting("Senior Backend Developer"),
			wantMatch: true,
		},
		{
			name:      "no include keyword matches",
			include:   []string{"devops", "sre"},
			posting:   posting("Frontend Engineer"),
			wantMatch: false,
		},
		{
			name:      "case insensitive matching",
			include:   []string{"FULLSTACK"},
			posting:   posting("Fullstack Developer"),
			wantMatch: true,
		},
		{
			name:      "exclude wins over include",
			include:   []string{"engineer"},
			exclude:   []string{"manager"},
			posting:   posting("Engineering Manager"),
			wantMatch: false,
		},
		{
			name:      "exclude only admits the rest",
			exclude:   []string{"intern"},
			posting:   posting("Data Engineer"),
			wantMatch: true,
		},
		{
			name:      "blank keywords are ignored",
			include:   []string{"  ", "data"},
			posting:   posting("Data Engineer"),
			wantMatch: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := NewTitleFilter(tt.include, tt.exclude)
			if got := f.Match(tt.posting); got != tt.wantMatch {
				t.Errorf("Match(%q) = %v, want %v", tt.posting.Title, got, tt.wantMatch)
			}
		})
	}
}

func TestNewTitleFilter_EmptyIsNil(t *testing.T) {
	f := NewTitleFilter(nil, []string{""})
	if f != nil {
		t.Fatalf("expected nil filter for empty keyword lists, got %+v", f)
	}
	if !f.Match(posting("Anything")) {
		t.Error("nil filter must admit every posting")
	}
}
