package helixapi

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-json-experiment/json"
)

// ValidateURL is the OAuth token validation endpoint.
const ValidateURL = "https://id.twitch.tv/oauth2/validate"

// TokenInfo describes an access token as reported by Twitch. UserID and Login
// are empty for app access tokens.
type TokenInfo struct {
	ClientID  string   `json:"client_id"`
	Login     string   `json:"login,omitzero"`
	UserID    string   `json:"user_id,omitzero"`
	Scopes    []string `json:"scopes"`
	ExpiresIn int      `json:"expires_in"`
}

// ValidateToken looks up the client and user a token belongs to. An empty
// endpoint uses ValidateURL.
func ValidateToken(ctx context.Context, client *http.Client, endpoint, token string) (*TokenInfo, error) {
	if endpoint == "" {
		endpoint = ValidateURL
	}

	req, err := newJSONRequest(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "OAuth "+token)

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("token validation failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, decodeError(resp)
	}

	var info TokenInfo
	if err := json.UnmarshalRead(resp.Body, &info); err != nil {
		return nil, fmt.Errorf("failed to decode token info: %w", err)
	}
	return &info, nil
}
