package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

const signaturePrefix = "sha256="

// Sign computes the Twitch-Eventsub-Message-Signature header value for a message.
func Sign(secret, messageID, timestamp string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(messageID))
	mac.Write([]byte(timestamp))
	mac.Write(body)
	return signaturePrefix + hex.EncodeToString(mac.Sum(nil))
}

// Verify reports whether signature matches the message, in constant time.
func Verify(secret, messageID, timestamp string, body []byte, signature string) bool {
	expected := Sign(secret, messageID, timestamp, body)
	return hmac.Equal([]byte(expected), []byte(signature))
}
