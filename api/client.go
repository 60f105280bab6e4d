package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

var (
	// ErrTransport covers connection failures, timeouts and error statuses.
	ErrTransport = errors.New("transport error")
	// ErrDecode is returned when a response has an unexpected shape.
	ErrDecode = errors.New("decode error")
	// ErrNoBody is returned when a response carries no body.
	ErrNoBody = errors.New("empty response body")
	// ErrRegionBlocked is returned when every endpoint refused the request
	// for legal reasons.
	ErrRegionBlocked = errors.New("region blocked")
)

// StatusError carries a non-2xx HTTP response.
type StatusError struct {
	URL        string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("API request to %s failed with status %d: %s", e.URL, e.StatusCode, e.Body)
}

func (e *StatusError) Unwrap() error {
	if e.StatusCode == http.StatusUnavailableForLegalReasons {
		return ErrRegionBlocked
	}
	return ErrTransport
}

const userAgent = "cryptosage/1.0"

func newHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &http.Client{Timeout: timeout}
}

// get performs a GET and returns the body of a 2xx response.
func get(ctx context.Context, client *http.Client, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response: %v", ErrTransport, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusError{URL: url, StatusCode: resp.StatusCode, Body: truncate(string(body), 200)}
	}
	if len(body) == 0 {
		return nil, ErrNoBody
	}
	return body, nil
}

// getJSON performs a GET and decodes a 2xx body into v.
func getJSON(ctx context.Context, client *http.Client, url string, v any) error {
	body, err := get(ctx, client, url)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return nil
}

// getRows performs a GET of a JSON array and decodes each element on its
// own. Elements that do not decode into T are skipped and counted.
func getRows[T any](ctx context.Context, client *http.Client, url string) ([]T, int, error) {
	body, err := get(ctx, client, url)
	if err != nil {
		return nil, 0, err
	}
	var raw []json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrDecode, err)
	}

	rows := make([]T, 0, len(raw))
	skipped := 0
	for _, r := range raw {
		var row T
		if err := json.Unmarshal(r, &row); err != nil {
			skipped++
			continue
		}
		rows = append(rows, row)
	}
	return rows, skipped, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
