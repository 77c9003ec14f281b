package eventsub

import (
	"fmt"
	"reflect"
	"time"

	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"
)

// MessageType is the kind of a websocket frame or webhook request.
type MessageType string

const (
	MessageTypeSessionWelcome   MessageType = "session_welcome"
	MessageTypeSessionKeepalive MessageType = "session_keepalive"
	MessageTypeSessionReconnect MessageType = "session_reconnect"
	MessageTypeNotification     MessageType = "notification"
	MessageTypeRevocation       MessageType = "revocation"

	// MessageTypeVerification is only sent to webhook transports.
	MessageTypeVerification MessageType = "webhook_callback_verification"
)

// Metadata is the metadata section of a websocket frame.
type Metadata struct {
	MessageID           string      `json:"message_id"`
	MessageType         MessageType `json:"message_type"`
	MessageTimestamp    time.Time   `json:"message_timestamp"`
	SubscriptionType    EventType   `json:"subscription_type,omitzero"`
	SubscriptionVersion string      `json:"subscription_version,omitzero"`
}

// Session describes a websocket session as reported by welcome and reconnect frames.
type Session struct {
	ID                      string    `json:"id"`
	Status                  string    `json:"status"`
	ConnectedAt             time.Time `json:"connected_at"`
	KeepaliveTimeoutSeconds *int      `json:"keepalive_timeout_seconds"`
	ReconnectURL            *string   `json:"reconnect_url"`
	RecoveryURL             *string   `json:"recovery_url,omitzero"`
}

// WebsocketMessage is a decoded websocket frame. Which of Session,
// Notification and Revoked is set depends on Metadata.MessageType.
type WebsocketMessage struct {
	Metadata     Metadata
	Session      *Session
	Notification *Envelope
	Revoked      *Subscription
}

type websocketFrame struct {
	Metadata jsontext.Value `json:"metadata"`
	Payload  jsontext.Value `json:"payload"`
}

type sessionPayload struct {
	Session Session `json:"session"`
}

var sessionShape = shapeOf(reflect.TypeFor[sessionPayload]())

// ParseWebsocketMessage decodes a websocket frame with a permissive Parser.
func ParseWebsocketMessage(raw []byte) (WebsocketMessage, error) {
	return defaultParser.ParseWebsocketMessage(raw)
}

// ParseWebsocketMessage decodes a websocket frame. Notification payloads go
// through the same dispatch as Parse. The strict option applies to session,
// notification and revocation payloads alike.
func (p *Parser) ParseWebsocketMessage(raw []byte) (WebsocketMessage, error) {
	var frame websocketFrame
	if err := json.Unmarshal(raw, &frame); err != nil {
		return WebsocketMessage{}, malformed(Discriminant{}, "", err)
	}
	if len(frame.Metadata) == 0 {
		return WebsocketMessage{}, missingMember(Discriminant{}, "/metadata")
	}

	var msg WebsocketMessage
	if err := json.Unmarshal(frame.Metadata, &msg.Metadata); err != nil {
		return WebsocketMessage{}, malformed(Discriminant{}, "/metadata", err)
	}

	switch msg.Metadata.MessageType {
	case MessageTypeSessionKeepalive:
		return msg, nil
	case MessageTypeSessionWelcome, MessageTypeSessionReconnect:
		var sp sessionPayload
		if err := json.Unmarshal(frame.Payload, &sp, p.options()); err != nil {
			return WebsocketMessage{}, malformed(Discriminant{}, "/payload", err)
		}
		if path, ok := sessionShape.missing(frame.Payload, "/payload"); ok {
			return WebsocketMessage{}, missingMember(Discriminant{}, path)
		}
		msg.Session = &sp.Session
		return msg, nil
	case MessageTypeNotification:
		doc, err := decodeDocument(frame.Payload)
		if err != nil {
			return WebsocketMessage{}, err
		}
		env, err := p.parseDocument(doc)
		if err != nil {
			return WebsocketMessage{}, err
		}
		msg.Notification = &env
		return msg, nil
	case MessageTypeRevocation:
		sub, err := p.ParseSubscription(frame.Payload)
		if err != nil {
			return WebsocketMessage{}, err
		}
		msg.Revoked = &sub
		return msg, nil
	default:
		return WebsocketMessage{}, &ParseError{
			Kind: KindMalformedPayload,
			Path: "/metadata/message_type",
			Err:  fmt.Errorf("unsupported message type %q", msg.Metadata.MessageType),
		}
	}
}
