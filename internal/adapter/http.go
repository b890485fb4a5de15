package adapter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/amishk599/jobradar/internal/model"
)

const userAgent = "jobradar/1.0 (+https://github.com/amishk599/jobradar)"

// parseRetryAfter parses the Retry-After header value into a duration.
// Supports seconds format (e.g. "120"). Returns zero if absent or unparseable.
func parseRetryAfter(value string) time.Duration {
	if value == "" {
		return 0
	}
	seconds, err := strconv.Atoi(value)
	if err != nil {
		return 0
	}
	return time.Duration(seconds) * time.Second
}

// request carries what every adapter needs to issue one HTTP call.
type request struct {
	method  string
	url     string
	body    any               // JSON-encoded when non-nil
	headers map[string]string // credentials and extra headers
	label   string            // prefix for error messages, e.g. "greenhouse fetch for airbnb"
}

// do performs req and returns the response body for a 200 response. Any other
// status is reported as a *model.HTTPError so the retry decorator can see it.
func do(ctx context.Context, client *http.Client, req request) ([]byte, error) {
	var body io.Reader
	if req.body != nil {
		b, err := json.Marshal(req.body)
		if err != nil {
			return nil, fmt.Errorf("%s: marshal: %w", req.label, err)
		}
		body = bytes.NewReader(b)
	}

	method := req.method
	if method == "" {
		method = http.MethodGet
	}
	httpReq, err := http.NewRequestWithContext(ctx, method, req.url, body)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", req.label, err)
	}
	httpReq.Header.Set("User-Agent", userAgent)
	if req.body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
		httpReq.Header.Set("Accept", "application/json")
	}
	for k, v := range req.headers {
		httpReq.Header.Set(k, v)
	}

	resp, err := client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", req.label, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &model.HTTPError{
			StatusCode: resp.StatusCode,
			RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
			Err:        fmt.Errorf("%s: unexpected status %d", req.label, resp.StatusCode),
		}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s: reading body: %w", req.label, err)
	}
	return data, nil
}

// getJSON performs req and decodes the body into out. Numbers are kept as
// json.Number so large ids survive intact.
func getJSON(ctx context.Context, client *http.Client, req request, out any) error {
	data, err := do(ctx, client, req)
	if err != nil {
		return err
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("%s: decode: %w", req.label, err)
	}
	return nil
}

// toItems converts a decoded JSON array into raw items, skipping anything
// that is not an object.
func toItems(list []any) []model.RawItem {
	items := make([]model.RawItem, 0, len(list))
	for _, v := range list {
		if m, ok := v.(map[string]any); ok {
			items = append(items, model.RawItem(m))
		}
	}
	return items
}
