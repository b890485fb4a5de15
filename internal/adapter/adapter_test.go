package adapter

import (
	"net/http"
	"testing"

	"github.com/amishk599/jobradar/internal/model"
)

func TestNew_EveryKind(t *testing.T) {
	for _, kind := range model.Kinds {
		desc := model.SourceDescriptor{Name: "s", Kind: kind, Endpoint: "https://example.com/x"}
		f, err := New(desc, http.DefaultClient)
		if err != nil {
			t.Errorf("kind %s: unexpected error: %v", kind, err)
			continue
		}
		if f == nil {
			t.Errorf("kind %s: nil fetcher", kind)
		}
	}
}

func TestNew_Rejects(t *testing.T) {
	tests := []model.SourceDescriptor{
		{Name: "a", Kind: "monster", Endpoint: "x"},
		{Name: "b", Kind: model.KindLever},
	}
	for _, desc := range tests {
		if _, err := New(desc, http.DefaultClient); err == nil {
			t.Errorf("expected error for %+v", desc)
		}
	}
}
