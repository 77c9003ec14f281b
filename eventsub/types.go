package eventsub

import "time"

// EventType is the dotted name of an EventSub subscription type.
type EventType string

const (
	EventTypeAutomodMessageHold   EventType = "automod.message.hold"
	EventTypeAutomodMessageUpdate EventType = "automod.message.update"
	EventTypeChannelChatMessage   EventType = "channel.chat.message"
	EventTypeChannelFollow        EventType = "channel.follow"
	EventTypeChannelUpdate        EventType = "channel.update"
	EventTypeStreamOnline         EventType = "stream.online"
	EventTypeStreamOffline        EventType = "stream.offline"
)

// Discriminant is the (type, version) pair selecting a payload schema.
type Discriminant struct {
	Type    EventType
	Version string
}

func (d Discriminant) String() string {
	return string(d.Type) + "@v" + d.Version
}

// Subscription statuses reported by Twitch.
const (
	StatusEnabled                            = "enabled"
	StatusWebhookCallbackVerificationPending = "webhook_callback_verification_pending"
	StatusAuthorizationRevoked               = "authorization_revoked"
	StatusUserRemoved                        = "user_removed"
	StatusVersionRemoved                     = "version_removed"
	StatusNotificationFailuresExceeded       = "notification_failures_exceeded"
)

// Subscription is the metadata of the subscription a message was sent for.
type Subscription struct {
	ID        string            `json:"id"`
	Type      EventType         `json:"type"`
	Version   string            `json:"version"`
	Status    string            `json:"status"`
	Cost      int               `json:"cost"`
	Condition map[string]string `json:"condition"`
	Transport Transport         `json:"transport"`
	CreatedAt time.Time         `json:"created_at"`
}

// Discriminant returns the (type, version) pair of the subscription.
func (s Subscription) Discriminant() Discriminant {
	return Discriminant{Type: s.Type, Version: s.Version}
}

// Transport describes how notifications for a subscription are delivered.
// Only the members matching Method are set.
type Transport struct {
	Method         string     `json:"method"`
	Callback       string     `json:"callback,omitzero"`
	SessionID      string     `json:"session_id,omitzero"`
	ConduitID      string     `json:"conduit_id,omitzero"`
	ConnectedAt    *time.Time `json:"connected_at,omitzero"`
	DisconnectedAt *time.Time `json:"disconnected_at,omitzero"`
}

// Payload is the typed event body of a notification.
type Payload interface {
	Discriminant() Discriminant
}

// Envelope is a decoded notification: subscription metadata plus the typed event.
type Envelope struct {
	Subscription Subscription `json:"subscription"`
	Event        Payload      `json:"event"`
}

// PayloadAs returns the envelope's event as T when it holds one.
func PayloadAs[T Payload](env Envelope) (T, bool) {
	p, ok := env.Event.(T)
	return p, ok
}

// Definition describes a subscription that can be created: its type, version
// and the condition parameters Twitch expects for it.
type Definition interface {
	EventType() EventType
	Version() string
	Condition() map[string]string
}

// DiscriminantOf returns the (type, version) pair a definition subscribes to.
func DiscriminantOf(def Definition) Discriminant {
	return Discriminant{Type: def.EventType(), Version: def.Version()}
}
