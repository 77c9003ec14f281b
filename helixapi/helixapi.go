// Package helixapi builds typed Helix requests that are sent with any
// *http.Client. Only endpoints this module needs are covered; conduit and
// EventSub management go through kappopher in the subscriber package.
package helixapi

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/go-json-experiment/json"

	"github.com/suniastar/twitch-api/internal/platform/version"
)

// BaseURL is the production Helix endpoint.
const BaseURL = "https://api.twitch.tv/helix"

const maxErrorBody = 64 << 10

// Response is the common Helix response envelope.
type Response[T any] struct {
	Data       []T         `json:"data"`
	Pagination *Pagination `json:"pagination,omitzero"`
	Total      int         `json:"total,omitzero"`
}

type Pagination struct {
	Cursor string `json:"cursor,omitzero"`
}

// APIError is a non-2xx Helix response.
type APIError struct {
	StatusCode int    `json:"status"`
	ErrorText  string `json:"error"`
	Message    string `json:"message"`
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("helix: %d %s", e.StatusCode, e.ErrorText)
	}
	return fmt.Sprintf("helix: %d %s: %s", e.StatusCode, e.ErrorText, e.Message)
}

// authorize sets the headers every Helix request carries.
func authorize(req *http.Request, token, clientID string) {
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Client-Id", clientID)
	req.Header.Set("User-Agent", version.UserAgent())
}

// Do sends req and decodes the response envelope. Non-2xx responses are
// returned as *APIError.
func Do[T any](client *http.Client, req *http.Request) (*Response[T], error) {
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("helix request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, decodeError(resp)
	}

	var out Response[T]
	if err := json.UnmarshalRead(resp.Body, &out); err != nil {
		return nil, fmt.Errorf("failed to decode helix response: %w", err)
	}
	return &out, nil
}

func decodeError(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode, ErrorText: http.StatusText(resp.StatusCode)}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil || len(body) == 0 {
		return apiErr
	}
	// Helix error bodies are best effort; keep the status code if they do not decode.
	_ = json.Unmarshal(body, apiErr)
	apiErr.StatusCode = resp.StatusCode
	return apiErr
}

func newJSONRequest(ctx context.Context, method, url string, body any) (*http.Request, error) {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode helix request: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to build helix request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}
