package eventsub

import "time"

// Stream types reported by stream.online.
const (
	StreamLive       = "live"
	StreamPlaylist   = "playlist"
	StreamWatchParty = "watch_party"
	StreamPremiere   = "premiere"
	StreamRerun      = "rerun"
)

type StreamOnlineV1 struct {
	BroadcasterUserID string `json:"broadcaster_user_id"`
}

func NewStreamOnlineV1(broadcasterUserID string) StreamOnlineV1 {
	return StreamOnlineV1{BroadcasterUserID: broadcasterUserID}
}

func (StreamOnlineV1) EventType() EventType { return EventTypeStreamOnline }
func (StreamOnlineV1) Version() string      { return "1" }

func (s StreamOnlineV1) Condition() map[string]string {
	return map[string]string{"broadcaster_user_id": s.BroadcasterUserID}
}

type StreamOnlineV1Payload struct {
	// ID is the stream ID.
	ID                   string    `json:"id"`
	BroadcasterUserID    string    `json:"broadcaster_user_id"`
	BroadcasterUserLogin string    `json:"broadcaster_user_login"`
	BroadcasterUserName  string    `json:"broadcaster_user_name"`
	Type                 string    `json:"type"`
	StartedAt            time.Time `json:"started_at"`
}

func (StreamOnlineV1Payload) Discriminant() Discriminant {
	return Discriminant{Type: EventTypeStreamOnline, Version: "1"}
}

type StreamOfflineV1 struct {
	BroadcasterUserID string `json:"broadcaster_user_id"`
}

func NewStreamOfflineV1(broadcasterUserID string) StreamOfflineV1 {
	return StreamOfflineV1{BroadcasterUserID: broadcasterUserID}
}

func (StreamOfflineV1) EventType() EventType { return EventTypeStreamOffline }
func (StreamOfflineV1) Version() string      { return "1" }

func (s StreamOfflineV1) Condition() map[string]string {
	return map[string]string{"broadcaster_user_id": s.BroadcasterUserID}
}

type StreamOfflineV1Payload struct {
	BroadcasterUserID    string `json:"broadcaster_user_id"`
	BroadcasterUserLogin string `json:"broadcaster_user_login"`
	BroadcasterUserName  string `json:"broadcaster_user_name"`
}

func (StreamOfflineV1Payload) Discriminant() Discriminant {
	return Discriminant{Type: EventTypeStreamOffline, Version: "1"}
}
