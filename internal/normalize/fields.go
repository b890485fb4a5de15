package normalize

import (
	"strconv"
	"strings"

	"github.com/amishk599/jobradar/internal/model"
)

// Canonical field names accepted as keys in a source's field overrides.
const (
	FieldID        = "id"
	FieldTitle     = "title"
	FieldURL       = "url"
	FieldCompany   = "company"
	FieldLocation  = "location"
	FieldPublished = "published_at"
)

// fieldSpec lists, per canonical field, the dotted paths tried in order.
// The first path yielding a non-empty value wins.
type fieldSpec struct {
	ID        []string
	Title     []string
	URL       []string
	Company   []string
	Location  []string
	Published []string
}

var kindFields = map[string]fieldSpec{
	model.KindGreenhouse: {
		ID:        []string{"id"},
		Title:     []string{"title"},
		URL:       []string{"absolute_url"},
		Company:   []string{"company_name"},
		Location:  []string{"location.name"},
		Published: []string{"first_published", "updated_at"},
	},
	model.KindLever: {
		ID:        []string{"id"},
		Title:     []string{"text"},
		URL:       []string{"hostedUrl", "applyUrl"},
		Location:  []string{"categories.location", "categories.allLocations.0"},
		Published: []string{"createdAt"},
	},
	model.KindAshby: {
		ID:        []string{"id"},
		Title:     []string{"title"},
		URL:       []string{"jobUrl", "applyUrl"},
		Location:  []string{"location"},
		Published: []string{"publishedAt", "publishedDate"},
	},
	model.KindWorkday: {
		ID:        []string{"jobReqId", "externalPath"},
		Title:     []string{"title"},
		URL:       []string{"url", "externalUrl"},
		Location:  []string{"locationsText", "location"},
		Published: []string{"startDate", "postedOn"},
	},
	model.KindSmartRecruiters: {
		ID:        []string{"id", "uuid"},
		Title:     []string{"name"},
		URL:       []string{"url", "postingUrl"},
		Company:   []string{"company.name"},
		Location:  []string{"location.fullLocation", "location.city"},
		Published: []string{"releasedDate"},
	},
	model.KindRSS: {
		ID:        []string{"guid"},
		Title:     []string{"title"},
		URL:       []string{"link", "links.0"},
		Company:   []string{"author.name", "authors.0.name"},
		Location:  []string{"location"},
		Published: []string{"published", "updated"},
	},
	model.KindJSON: {
		ID:        []string{"id", "uuid", "slug"},
		Title:     []string{"title", "name", "position"},
		URL:       []string{"url", "link", "absolute_url", "apply_url", "refs.landing_page"},
		Company:   []string{"company_name", "company", "company.name", "companyName"},
		Location:  []string{"location", "candidate_required_location", "locations.0.name", "location.name"},
		Published: []string{"published_at", "publication_date", "created_at", "date", "pubDate", "epoch"},
	},
	model.KindHTML: {
		ID:    []string{"id"},
		Title: []string{"title"},
		URL:   []string{"url"},
	},
}

// specFor returns the field table for a source, with its overrides applied.
// An override replaces the whole path list for that field.
func specFor(src model.SourceDescriptor) fieldSpec {
	spec, ok := kindFields[src.Kind]
	if !ok {
		spec = kindFields[model.KindJSON]
	}
	for field, path := range src.Fields {
		paths := []string{path}
		switch field {
		case FieldID:
			spec.ID = paths
		case FieldTitle:
			spec.Title = paths
		case FieldURL:
			spec.URL = paths
		case FieldCompany:
			spec.Company = paths
		case FieldLocation:
			spec.Location = paths
		case FieldPublished:
			spec.Published = paths
		}
	}
	return spec
}

// lookup walks a dotted path through nested maps and slices.
// Numeric segments index into slices.
func lookup(item map[string]any, path string) any {
	var cur any = item
	for _, seg := range strings.Split(path, ".") {
		switch node := cur.(type) {
		case map[string]any:
			v, ok := node[seg]
			if !ok {
				return nil
			}
			cur = v
		case model.RawItem:
			v, ok := node[seg]
			if !ok {
				return nil
			}
			cur = v
		case []any:
			i, err := strconv.Atoi(seg)
			if err != nil || i < 0 || i >= len(node) {
				return nil
			}
			cur = node[i]
		case []string:
			i, err := strconv.Atoi(seg)
			if err != nil || i < 0 || i >= len(node) {
				return nil
			}
			cur = node[i]
		default:
			return nil
		}
	}
	return cur
}

// first returns the first path that resolves to a non-empty scalar value.
func first(item map[string]any, paths []string) any {
	for _, p := range paths {
		v := lookup(item, p)
		if stringify(v) != "" {
			return v
		}
	}
	return nil
}

// stringify renders scalar JSON values as text. Objects and arrays yield "".
func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case int32:
		return strconv.FormatInt(int64(t), 10)
	case uint64:
		return strconv.FormatUint(t, 10)
	case bool:
		return strconv.FormatBool(t)
	case interface{ String() string }:
		return strings.TrimSpace(t.String())
	default:
		return ""
	}
}
