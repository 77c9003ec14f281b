package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSign_MatchesTwitchScheme(t *testing.T) {
	body := []byte(`{"hello":"world"}`)
	mac := hmac.New(sha256.New, []byte("secret-0123456789"))
	mac.Write([]byte("msg-1" + "2024-03-01T12:00:00Z" + string(body)))
	want := "sha256=" + hex.EncodeToString(mac.Sum(nil))

	assert.Equal(t, want, Sign("secret-0123456789", "msg-1", "2024-03-01T12:00:00Z", body))
}

func TestVerify(t *testing.T) {
	body := []byte(`{"hello":"world"}`)
	sig := Sign("secret-0123456789", "msg-1", "2024-03-01T12:00:00Z", body)

	assert.True(t, Verify("secret-0123456789", "msg-1", "2024-03-01T12:00:00Z", body, sig))
	assert.False(t, Verify("secret-0123456789", "msg-2", "2024-03-01T12:00:00Z", body, sig))
	assert.False(t, Verify("secret-0123456789", "msg-1", "2024-03-01T12:00:01Z", body, sig))
	assert.False(t, Verify("other-secret-value", "msg-1", "2024-03-01T12:00:00Z", body, sig))
	assert.False(t, Verify("secret-0123456789", "msg-1", "2024-03-01T12:00:00Z", body, "sha256=deadbeef"))
	assert.False(t, Verify("secret-0123456789", "msg-1", "2024-03-01T12:00:00Z", body, ""))
}
