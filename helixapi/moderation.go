package helixapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
)

// maxAutoModChecks is the most messages one request may check.
const maxAutoModChecks = 100

// CheckAutoModStatusRequest asks whether messages would be held by a
// broadcaster's AutoMod settings. Requires the moderation:read scope.
type CheckAutoModStatusRequest struct {
	BroadcasterID string
	// BaseURL overrides the Helix endpoint; empty uses BaseURL.
	BaseURL string
}

func NewCheckAutoModStatusRequest(broadcasterID string) CheckAutoModStatusRequest {
	return CheckAutoModStatusRequest{BroadcasterID: broadcasterID}
}

// CheckAutoModStatusBody is one message to check.
type CheckAutoModStatusBody struct {
	MsgID   string `json:"msg_id"`
	MsgText string `json:"msg_text"`
}

func NewCheckAutoModStatusBody(msgID, msgText string) CheckAutoModStatusBody {
	return CheckAutoModStatusBody{MsgID: msgID, MsgText: msgText}
}

// CheckAutoModStatus is the verdict for one message.
type CheckAutoModStatus struct {
	MsgID       string `json:"msg_id"`
	IsPermitted bool   `json:"is_permitted"`
}

type checkAutoModStatusPayload struct {
	Data []CheckAutoModStatusBody `json:"data"`
}

// NewRequest builds the POST request for bodies, authorized with a user access
// token of the broadcaster or one of their moderators.
func (r CheckAutoModStatusRequest) NewRequest(ctx context.Context, token, clientID string, bodies ...CheckAutoModStatusBody) (*http.Request, error) {
	if r.BroadcasterID == "" {
		return nil, errors.New("broadcaster id is required")
	}
	if len(bodies) == 0 || len(bodies) > maxAutoModChecks {
		return nil, fmt.Errorf("between 1 and %d messages can be checked, got %d", maxAutoModChecks, len(bodies))
	}

	base := r.BaseURL
	if base == "" {
		base = BaseURL
	}
	endpoint := base + "/moderation/enforcements/status?" + url.Values{"broadcaster_id": {r.BroadcasterID}}.Encode()

	req, err := newJSONRequest(ctx, http.MethodPost, endpoint, checkAutoModStatusPayload{Data: bodies})
	if err != nil {
		return nil, err
	}
	authorize(req, token, clientID)
	return req, nil
}

// Check sends the request with client and returns one verdict per body.
func (r CheckAutoModStatusRequest) Check(ctx context.Context, client *http.Client, token, clientID string, bodies ...CheckAutoModStatusBody) ([]CheckAutoModStatus, error) {
	req, err := r.NewRequest(ctx, token, clientID, bodies...)
	if err != nil {
		return nil, err
	}

	resp, err := Do[CheckAutoModStatus](client, req)
	if err != nil {
		return nil, fmt.Errorf("check automod status: %w", err)
	}
	return resp.Data, nil
}
