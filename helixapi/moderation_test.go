package helixapi

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-json-experiment/json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckAutoModStatusRequest_NewRequest(t *testing.T) {
	r := NewCheckAutoModStatusRequest("1337")

	req, err := r.NewRequest(context.Background(), "token-abc", "client-xyz", NewCheckAutoModStatusBody("123", "hello!"))
	require.NoError(t, err)

	assert.Equal(t, http.MethodPost, req.Method)
	assert.Equal(t, "https://api.twitch.tv/helix/moderation/enforcements/status?broadcaster_id=1337", req.URL.String())
	assert.Equal(t, "Bearer token-abc", req.Header.Get("Authorization"))
	assert.Equal(t, "client-xyz", req.Header.Get("Client-Id"))
	assert.Equal(t, "application/json", req.Header.Get("Content-Type"))
	assert.True(t, strings.HasPrefix(req.Header.Get("User-Agent"), "twitch-api/"))

	body, err := io.ReadAll(req.Body)
	require.NoError(t, err)
	assert.JSONEq(t, `{"data":[{"msg_id":"123","msg_text":"hello!"}]}`, string(body))
}

func TestCheckAutoModStatusRequest_Validation(t *testing.T) {
	_, err := CheckAutoModStatusRequest{}.NewRequest(context.Background(), "t", "c", NewCheckAutoModStatusBody("1", "x"))
	require.Error(t, err)

	_, err = NewCheckAutoModStatusRequest("1337").NewRequest(context.Background(), "t", "c")
	require.Error(t, err)

	bodies := make([]CheckAutoModStatusBody, maxAutoModChecks+1)
	_, err = NewCheckAutoModStatusRequest("1337").NewRequest(context.Background(), "t", "c", bodies...)
	require.Error(t, err)
}

func TestCheckAutoModStatusRequest_Check(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/moderation/enforcements/status", r.URL.Path)
		assert.Equal(t, "1337", r.URL.Query().Get("broadcaster_id"))

		var payload checkAutoModStatusPayload
		assert.NoError(t, json.UnmarshalRead(r.Body, &payload))
		assert.Len(t, payload.Data, 2)

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"data":[{"msg_id":"1","is_permitted":true},{"msg_id":"2","is_permitted":false}]}`)
	}))
	defer srv.Close()

	r := CheckAutoModStatusRequest{BroadcasterID: "1337", BaseURL: srv.URL}
	verdicts, err := r.Check(context.Background(), srv.Client(), "t", "c",
		NewCheckAutoModStatusBody("1", "hello!"),
		NewCheckAutoModStatusBody("2", "something rude"),
	)
	require.NoError(t, err)

	assert.Equal(t, []CheckAutoModStatus{
		{MsgID: "1", IsPermitted: true},
		{MsgID: "2", IsPermitted: false},
	}, verdicts)
}

func TestCheckAutoModStatusRequest_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"error":"Unauthorized","status":401,"message":"Invalid OAuth token"}`)
	}))
	defer srv.Close()

	r := CheckAutoModStatusRequest{BroadcasterID: "1337", BaseURL: srv.URL}
	_, err := r.Check(context.Background(), srv.Client(), "t", "c", NewCheckAutoModStatusBody("1", "x"))

	apiErr, ok := errors.AsType[*APIError](err)
	require.True(t, ok)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Equal(t, "Invalid OAuth token", apiErr.Message)
	assert.Contains(t, err.Error(), "helix: 401 Unauthorized: Invalid OAuth token")
}

func TestDo_ErrorWithoutBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	req, err := http.NewRequest(http.MethodGet, srv.URL, nil)
	require.NoError(t, err)

	_, err = Do[CheckAutoModStatus](srv.Client(), req)

	apiErr, ok := errors.AsType[*APIError](err)
	require.True(t, ok)
	assert.Equal(t, http.StatusServiceUnavailable, apiErr.StatusCode)
	assert.Equal(t, "Service Unavailable", apiErr.ErrorText)
}
