package eventsub

import "time"

// ChannelFollowV2 subscribes to new followers of a channel. The moderator
// must be the broadcaster or one of their moderators.
type ChannelFollowV2 struct {
	BroadcasterUserID string `json:"broadcaster_user_id"`
	ModeratorUserID   string `json:"moderator_user_id"`
}

func NewChannelFollowV2(broadcasterUserID, moderatorUserID string) ChannelFollowV2 {
	return ChannelFollowV2{BroadcasterUserID: broadcasterUserID, ModeratorUserID: moderatorUserID}
}

func (ChannelFollowV2) EventType() EventType { return EventTypeChannelFollow }
func (ChannelFollowV2) Version() string      { return "2" }

func (s ChannelFollowV2) Condition() map[string]string {
	return map[string]string{
		"broadcaster_user_id": s.BroadcasterUserID,
		"moderator_user_id":   s.ModeratorUserID,
	}
}

type ChannelFollowV2Payload struct {
	UserID               string    `json:"user_id"`
	UserLogin            string    `json:"user_login"`
	UserName             string    `json:"user_name"`
	BroadcasterUserID    string    `json:"broadcaster_user_id"`
	BroadcasterUserLogin string    `json:"broadcaster_user_login"`
	BroadcasterUserName  string    `json:"broadcaster_user_name"`
	FollowedAt           time.Time `json:"followed_at"`
}

func (ChannelFollowV2Payload) Discriminant() Discriminant {
	return Discriminant{Type: EventTypeChannelFollow, Version: "2"}
}

// ChannelUpdateV2 subscribes to title, category and label changes of a channel.
type ChannelUpdateV2 struct {
	BroadcasterUserID string `json:"broadcaster_user_id"`
}

func NewChannelUpdateV2(broadcasterUserID string) ChannelUpdateV2 {
	return ChannelUpdateV2{BroadcasterUserID: broadcasterUserID}
}

func (ChannelUpdateV2) EventType() EventType { return EventTypeChannelUpdate }
func (ChannelUpdateV2) Version() string      { return "2" }

func (s ChannelUpdateV2) Condition() map[string]string {
	return map[string]string{"broadcaster_user_id": s.BroadcasterUserID}
}

type ChannelUpdateV2Payload struct {
	BroadcasterUserID           string   `json:"broadcaster_user_id"`
	BroadcasterUserLogin        string   `json:"broadcaster_user_login"`
	BroadcasterUserName         string   `json:"broadcaster_user_name"`
	Title                       string   `json:"title"`
	Language                    string   `json:"language"`
	CategoryID                  string   `json:"category_id"`
	CategoryName                string   `json:"category_name"`
	ContentClassificationLabels []string `json:"content_classification_labels"`
}

func (ChannelUpdateV2Payload) Discriminant() Discriminant {
	return Discriminant{Type: EventTypeChannelUpdate, Version: "2"}
}
