// Package adapter contains one fetcher per kind of job source. Adapters only
// read and decode: they return items in the source's native shape and leave
// normalization to the engine.
package adapter

import (
	"fmt"
	"net/http"

	"github.com/amishk599/jobradar/internal/model"
)

// New builds the fetcher for a source descriptor.
func New(desc model.SourceDescriptor, client *http.Client) (model.Fetcher, error) {
	if desc.Endpoint == "" {
		return nil, fmt.Errorf("source %q: endpoint is required", desc.Name)
	}
	switch desc.Kind {
	case model.KindGreenhouse:
		return NewGreenhouseAdapter(desc.Endpoint, desc.Credentials, client), nil
	case model.KindLever:
		return NewLeverAdapter(desc.Endpoint, desc.Credentials, client), nil
	case model.KindAshby:
		return NewAshbyAdapter(desc.Endpoint, desc.Credentials, client), nil
	case model.KindWorkday:
		return NewWorkdayAdapter(desc.Endpoint, desc.Query, desc.Credentials, client), nil
	case model.KindSmartRecruiters:
		return NewSmartRecruitersAdapter(desc.Endpoint, desc.Query, desc.Credentials, client), nil
	case model.KindRSS:
		return NewRSSAdapter(desc.Endpoint, desc.Credentials, client), nil
	case model.KindJSON:
		return NewJSONAdapter(desc.Endpoint, desc.ItemsPath, desc.Credentials, client), nil
	case model.KindHTML:
		return NewHTMLAdapter(desc.Endpoint, desc.Selector, desc.Credentials, client), nil
	default:
		return nil, fmt.Errorf("source %q: unsupported kind %q", desc.Name, desc.Kind)
	}
}
