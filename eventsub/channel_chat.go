package eventsub

// ChannelChatMessageV1 subscribes to every chat message in a channel, read as UserID.
type ChannelChatMessageV1 struct {
	BroadcasterUserID string `json:"broadcaster_user_id"`
	UserID            string `json:"user_id"`
}

func NewChannelChatMessageV1(broadcasterUserID, userID string) ChannelChatMessageV1 {
	return ChannelChatMessageV1{BroadcasterUserID: broadcasterUserID, UserID: userID}
}

func (ChannelChatMessageV1) EventType() EventType { return EventTypeChannelChatMessage }
func (ChannelChatMessageV1) Version() string      { return "1" }

func (s ChannelChatMessageV1) Condition() map[string]string {
	return map[string]string{
		"broadcaster_user_id": s.BroadcasterUserID,
		"user_id":             s.UserID,
	}
}

// Chat message types.
const (
	ChatMessageText                     = "text"
	ChatMessageChannelPointsHighlighted = "channel_points_highlighted"
	ChatMessageChannelPointsSubOnly     = "channel_points_sub_only"
	ChatMessageUserIntro                = "user_intro"
	ChatMessagePowerUpsMessageEffect    = "power_ups_message_effect"
	ChatMessagePowerUpsGigantifiedEmote = "power_ups_gigantified_emote"
)

// ChannelChatMessageV1Payload is the channel.chat.message v1 event.
type ChannelChatMessageV1Payload struct {
	BroadcasterUserID           string  `json:"broadcaster_user_id"`
	BroadcasterUserName         string  `json:"broadcaster_user_name"`
	BroadcasterUserLogin        string  `json:"broadcaster_user_login"`
	ChatterUserID               string  `json:"chatter_user_id"`
	ChatterUserName             string  `json:"chatter_user_name"`
	ChatterUserLogin            string  `json:"chatter_user_login"`
	MessageID                   string  `json:"message_id"`
	Message                     Message `json:"message"`
	MessageType                 string  `json:"message_type"`
	Badges                      []Badge `json:"badges"`
	Cheer                       *Cheer  `json:"cheer,omitzero"`
	Color                       string  `json:"color"`
	Reply                       *Reply  `json:"reply,omitzero"`
	ChannelPointsCustomRewardID *string `json:"channel_points_custom_reward_id,omitzero"`
	ChannelPointsAnimationID    *string `json:"channel_points_animation_id,omitzero"`
	SourceBroadcasterUserID     *string `json:"source_broadcaster_user_id,omitzero"`
	SourceBroadcasterUserName   *string `json:"source_broadcaster_user_name,omitzero"`
	SourceBroadcasterUserLogin  *string `json:"source_broadcaster_user_login,omitzero"`
	SourceMessageID             *string `json:"source_message_id,omitzero"`
	SourceBadges                []Badge `json:"source_badges,omitzero"`
	IsSourceOnly                *bool   `json:"is_source_only,omitzero"`
}

func (ChannelChatMessageV1Payload) Discriminant() Discriminant {
	return Discriminant{Type: EventTypeChannelChatMessage, Version: "1"}
}

type Badge struct {
	SetID string `json:"set_id"`
	ID    string `json:"id"`
	Info  string `json:"info"`
}

type Cheer struct {
	Bits int `json:"bits"`
}

// Reply references the message a chat message replies to and the top of its thread.
type Reply struct {
	ParentMessageID   string `json:"parent_message_id"`
	ParentMessageBody string `json:"parent_message_body"`
	ParentUserID      string `json:"parent_user_id"`
	ParentUserName    string `json:"parent_user_name"`
	ParentUserLogin   string `json:"parent_user_login"`
	ThreadMessageID   string `json:"thread_message_id"`
	ThreadUserID      string `json:"thread_user_id"`
	ThreadUserName    string `json:"thread_user_name"`
	ThreadUserLogin   string `json:"thread_user_login"`
}
