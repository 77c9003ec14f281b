package eventsub

import "time"

// AutomodMessageHoldV1 subscribes to messages caught by AutoMod for review.
//
// Requires a user access token with the moderator:manage:automod scope; the
// moderator in the condition must match the token's user.
type AutomodMessageHoldV1 struct {
	BroadcasterUserID string `json:"broadcaster_user_id"`
	ModeratorUserID   string `json:"moderator_user_id"`
}

// NewAutomodMessageHoldV1 gets automod message hold events for a channel as moderator.
func NewAutomodMessageHoldV1(broadcasterUserID, moderatorUserID string) AutomodMessageHoldV1 {
	return AutomodMessageHoldV1{BroadcasterUserID: broadcasterUserID, ModeratorUserID: moderatorUserID}
}

func (AutomodMessageHoldV1) EventType() EventType { return EventTypeAutomodMessageHold }
func (AutomodMessageHoldV1) Version() string      { return "1" }

func (s AutomodMessageHoldV1) Condition() map[string]string {
	return map[string]string{
		"broadcaster_user_id": s.BroadcasterUserID,
		"moderator_user_id":   s.ModeratorUserID,
	}
}

// AutomodMessageHoldV1Payload is the automod.message.hold v1 event.
type AutomodMessageHoldV1Payload struct {
	BroadcasterUserID    string `json:"broadcaster_user_id"`
	BroadcasterUserName  string `json:"broadcaster_user_name"`
	BroadcasterUserLogin string `json:"broadcaster_user_login"`
	// UserID is the user that sent the message.
	UserID    string  `json:"user_id"`
	UserName  string  `json:"user_name"`
	UserLogin string  `json:"user_login"`
	MessageID string  `json:"message_id"`
	Message   Message `json:"message"`
	// Level is the severity, documented as 1 to 4. Values outside that range
	// are passed through as sent.
	Level    int    `json:"level"`
	Category string `json:"category"`
	// HeldAt is when AutoMod saved the message.
	HeldAt time.Time `json:"held_at"`
	// Fragments is only present in the flat shape Twitch actually sends,
	// where Message is a bare string.
	Fragments *HeldFragments `json:"fragments,omitzero"`
}

func (AutomodMessageHoldV1Payload) Discriminant() Discriminant {
	return Discriminant{Type: EventTypeAutomodMessageHold, Version: "1"}
}

// HeldFragments groups the emotes and cheermotes of a held message.
type HeldFragments struct {
	Emotes     []HeldEmote     `json:"emotes,omitzero"`
	Cheermotes []HeldCheermote `json:"cheermotes,omitzero"`
}

type HeldEmote struct {
	Text  string `json:"text"`
	ID    string `json:"id"`
	SetID string `json:"set-id"`
}

type HeldCheermote struct {
	Text   string `json:"text"`
	Amount int    `json:"amount"`
	Prefix string `json:"prefix"`
	Tier   int    `json:"tier"`
}

// AutomodMessageHoldV2 is the v2 of automod.message.hold, which also reports
// messages held for matching a blocked term.
type AutomodMessageHoldV2 struct {
	BroadcasterUserID string `json:"broadcaster_user_id"`
	ModeratorUserID   string `json:"moderator_user_id"`
}

func NewAutomodMessageHoldV2(broadcasterUserID, moderatorUserID string) AutomodMessageHoldV2 {
	return AutomodMessageHoldV2{BroadcasterUserID: broadcasterUserID, ModeratorUserID: moderatorUserID}
}

func (AutomodMessageHoldV2) EventType() EventType { return EventTypeAutomodMessageHold }
func (AutomodMessageHoldV2) Version() string      { return "2" }

func (s AutomodMessageHoldV2) Condition() map[string]string {
	return map[string]string{
		"broadcaster_user_id": s.BroadcasterUserID,
		"moderator_user_id":   s.ModeratorUserID,
	}
}

// Reasons a message was held, see AutomodMessageHoldV2Payload.Reason.
const (
	HoldReasonAutomod     = "automod"
	HoldReasonBlockedTerm = "blocked_term"
)

// AutomodMessageHoldV2Payload is the automod.message.hold v2 event. Exactly
// one of Automod and BlockedTerm is set, depending on Reason.
type AutomodMessageHoldV2Payload struct {
	BroadcasterUserID    string             `json:"broadcaster_user_id"`
	BroadcasterUserName  string             `json:"broadcaster_user_name"`
	BroadcasterUserLogin string             `json:"broadcaster_user_login"`
	UserID               string             `json:"user_id"`
	UserName             string             `json:"user_name"`
	UserLogin            string             `json:"user_login"`
	MessageID            string             `json:"message_id"`
	Message              Message            `json:"message"`
	Reason               string             `json:"reason"`
	Automod              *AutomodReason     `json:"automod"`
	BlockedTerm          *BlockedTermReason `json:"blocked_term"`
	HeldAt               time.Time          `json:"held_at"`
}

func (AutomodMessageHoldV2Payload) Discriminant() Discriminant {
	return Discriminant{Type: EventTypeAutomodMessageHold, Version: "2"}
}

type AutomodReason struct {
	Category   string     `json:"category"`
	Level      int        `json:"level"`
	Boundaries []Boundary `json:"boundaries"`
}

// Boundary is a span of the message text, in code points.
type Boundary struct {
	StartPos int `json:"start_pos"`
	EndPos   int `json:"end_pos"`
}

type BlockedTermReason struct {
	TermsFound []BlockedTerm `json:"terms_found"`
}

type BlockedTerm struct {
	TermID                    string   `json:"term_id"`
	Boundary                  Boundary `json:"boundary"`
	OwnerBroadcasterUserID    string   `json:"owner_broadcaster_user_id"`
	OwnerBroadcasterUserLogin string   `json:"owner_broadcaster_user_login"`
	OwnerBroadcasterUserName  string   `json:"owner_broadcaster_user_name"`
}

// AutomodMessageUpdateV1 subscribes to moderator decisions on held messages.
type AutomodMessageUpdateV1 struct {
	BroadcasterUserID string `json:"broadcaster_user_id"`
	ModeratorUserID   string `json:"moderator_user_id"`
}

func NewAutomodMessageUpdateV1(broadcasterUserID, moderatorUserID string) AutomodMessageUpdateV1 {
	return AutomodMessageUpdateV1{BroadcasterUserID: broadcasterUserID, ModeratorUserID: moderatorUserID}
}

func (AutomodMessageUpdateV1) EventType() EventType { return EventTypeAutomodMessageUpdate }
func (AutomodMessageUpdateV1) Version() string      { return "1" }

func (s AutomodMessageUpdateV1) Condition() map[string]string {
	return map[string]string{
		"broadcaster_user_id": s.BroadcasterUserID,
		"moderator_user_id":   s.ModeratorUserID,
	}
}

// Statuses of an automod.message.update event.
const (
	AutomodStatusApproved = "Approved"
	AutomodStatusDenied   = "Denied"
	AutomodStatusExpired  = "Expired"
)

// AutomodMessageUpdateV1Payload is the automod.message.update v1 event.
type AutomodMessageUpdateV1Payload struct {
	BroadcasterUserID    string    `json:"broadcaster_user_id"`
	BroadcasterUserName  string    `json:"broadcaster_user_name"`
	BroadcasterUserLogin string    `json:"broadcaster_user_login"`
	UserID               string    `json:"user_id"`
	UserName             string    `json:"user_name"`
	UserLogin            string    `json:"user_login"`
	ModeratorUserID      string    `json:"moderator_user_id"`
	ModeratorUserName    string    `json:"moderator_user_name"`
	ModeratorUserLogin   string    `json:"moderator_user_login"`
	MessageID            string    `json:"message_id"`
	Message              Message   `json:"message"`
	Category             string    `json:"category"`
	Level                int       `json:"level"`
	Status               string    `json:"status"`
	HeldAt               time.Time `json:"held_at"`
}

func (AutomodMessageUpdateV1Payload) Discriminant() Discriminant {
	return Discriminant{Type: EventTypeAutomodMessageUpdate, Version: "1"}
}
