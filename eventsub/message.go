package eventsub

import (
	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"
)

// Message is a chat message as Twitch structures it: its text and the
// fragments (plain text, emotes, cheermotes, mentions) it consists of.
type Message struct {
	Text      string     `json:"text"`
	Fragments []Fragment `json:"fragments,omitzero"`
}

type messageObject Message

// UnmarshalJSONFrom accepts both the structured object and a bare string.
// Captured automod payloads carry the message as a plain string even though
// the documentation promises an object.
func (m *Message) UnmarshalJSONFrom(dec *jsontext.Decoder) error {
	if dec.PeekKind() == '"' {
		var text string
		if err := json.UnmarshalDecode(dec, &text); err != nil {
			return err
		}
		*m = Message{Text: text}
		return nil
	}
	return json.UnmarshalDecode(dec, (*messageObject)(m))
}

// Fragment types.
const (
	FragmentText      = "text"
	FragmentCheermote = "cheermote"
	FragmentEmote     = "emote"
	FragmentMention   = "mention"
)

// Fragment is one part of a Message. At most one of Cheermote, Emote and
// Mention is set, matching Type.
type Fragment struct {
	Type      string     `json:"type,omitzero"`
	Text      string     `json:"text"`
	Cheermote *Cheermote `json:"cheermote,omitzero"`
	Emote     *Emote     `json:"emote,omitzero"`
	Mention   *Mention   `json:"mention,omitzero"`
}

type Cheermote struct {
	Prefix string `json:"prefix"`
	Bits   int    `json:"bits"`
	Tier   int    `json:"tier"`
}

type Emote struct {
	ID         string   `json:"id"`
	EmoteSetID string   `json:"emote_set_id"`
	OwnerID    string   `json:"owner_id,omitzero"`
	Format     []string `json:"format,omitzero"`
}

type Mention struct {
	UserID    string `json:"user_id"`
	UserName  string `json:"user_name"`
	UserLogin string `json:"user_login"`
}
