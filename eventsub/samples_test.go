package eventsub

import "fmt"

const automodHoldSample = `
{
  "subscription": {
    "id": "f1c2a387-161a-49f9-a165-0f21d7a4e1c4",
    "type": "automod.message.hold",
    "version": "1",
    "status": "enabled",
    "cost": 0,
    "condition": {
      "broadcaster_user_id": "1337",
      "moderator_user_id": "9001"
    },
    "transport": {
      "method": "webhook",
      "callback": "https://example.com/webhooks/callback"
    },
    "created_at": "2023-04-11T10:11:12.123Z"
  },
  "event": {
    "broadcaster_user_id": "1337",
    "broadcaster_user_name": "blah",
    "broadcaster_user_login": "blahblah",
    "user_id": "456789012",
    "user_name": "baduser",
    "user_login": "baduserbla",
    "message_id": "bad-message-id",
    "message": "This is a bad message… ",
    "level": 5,
    "category": "aggressive",
    "held_at": "2022-12-02T15:00:00.00Z",
    "fragments": {
      "emotes": [
        {"text": "badtextemote1", "id": "emote-123", "set-id": "set-emote-1"},
        {"text": "badtextemote2", "id": "emote-234", "set-id": "set-emote-2"}
      ],
      "cheermotes": [
        {"text": "badtextcheermote1", "amount": 1000, "prefix": "prefix", "tier": 1}
      ]
    }
  }
}`

// sampleEvents holds one representative event body per registered schema.
var sampleEvents = map[Discriminant]string{
	{EventTypeAutomodMessageHold, "1"}: `{
		"broadcaster_user_id": "1337", "broadcaster_user_name": "blah", "broadcaster_user_login": "blahblah",
		"user_id": "456789012", "user_name": "baduser", "user_login": "baduserbla",
		"message_id": "bad-message-id",
		"message": {"text": "hello kappa", "fragments": [
			{"text": "hello ", "emote": null, "cheermote": null},
			{"text": "kappa", "emote": {"id": "25", "emote_set_id": "0"}, "cheermote": null}
		]},
		"level": 2, "category": "swearing", "held_at": "2024-01-02T03:04:05.5Z"
	}`,
	{EventTypeAutomodMessageHold, "2"}: `{
		"broadcaster_user_id": "1337", "broadcaster_user_name": "blah", "broadcaster_user_login": "blahblah",
		"user_id": "456789012", "user_name": "baduser", "user_login": "baduserbla",
		"message_id": "msg-2",
		"message": {"text": "badword", "fragments": [{"type": "text", "text": "badword"}]},
		"reason": "blocked_term",
		"automod": null,
		"blocked_term": {"terms_found": [{
			"term_id": "term-1", "boundary": {"start_pos": 0, "end_pos": 6},
			"owner_broadcaster_user_id": "1337", "owner_broadcaster_user_login": "blahblah", "owner_broadcaster_user_name": "blah"
		}]},
		"held_at": "2024-05-06T07:08:09Z"
	}`,
	{EventTypeAutomodMessageUpdate, "1"}: `{
		"broadcaster_user_id": "1337", "broadcaster_user_name": "blah", "broadcaster_user_login": "blahblah",
		"user_id": "456789012", "user_name": "baduser", "user_login": "baduserbla",
		"moderator_user_id": "9001", "moderator_user_name": "mod", "moderator_user_login": "themod",
		"message_id": "msg-3", "message": {"text": "meh"},
		"category": "aggressive", "level": 1, "status": "Approved",
		"held_at": "2024-05-06T07:08:09Z"
	}`,
	{EventTypeChannelChatMessage, "1"}: `{
		"broadcaster_user_id": "1971641", "broadcaster_user_login": "streamer", "broadcaster_user_name": "Streamer",
		"chatter_user_id": "4145994", "chatter_user_login": "viewer32", "chatter_user_name": "viewer32",
		"message_id": "cc106a89-1814-919d-454c-f4f2f970aae7",
		"message": {"text": "Hi chat @streamer", "fragments": [
			{"type": "text", "text": "Hi chat ", "cheermote": null, "emote": null, "mention": null},
			{"type": "mention", "text": "@streamer", "cheermote": null, "emote": null,
			 "mention": {"user_id": "1971641", "user_name": "Streamer", "user_login": "streamer"}}
		]},
		"message_type": "text",
		"badges": [{"set_id": "moderator", "id": "1", "info": ""}],
		"cheer": null,
		"color": "#00FF7F",
		"reply": null,
		"channel_points_custom_reward_id": null
	}`,
	{EventTypeChannelFollow, "2"}: `{
		"user_id": "1234", "user_login": "cool_user", "user_name": "Cool_User",
		"broadcaster_user_id": "1337", "broadcaster_user_login": "cooler_user", "broadcaster_user_name": "Cooler_User",
		"followed_at": "2020-07-15T18:16:11.17106713Z"
	}`,
	{EventTypeChannelUpdate, "2"}: `{
		"broadcaster_user_id": "1337", "broadcaster_user_login": "cool_user", "broadcaster_user_name": "Cool_User",
		"title": "Best Stream Ever", "language": "en",
		"category_id": "12453", "category_name": "Grand Theft Auto",
		"content_classification_labels": ["MatureGame"]
	}`,
	{EventTypeStreamOnline, "1"}: `{
		"id": "9001",
		"broadcaster_user_id": "1337", "broadcaster_user_login": "cool_user", "broadcaster_user_name": "Cool_User",
		"type": "live", "started_at": "2020-10-11T10:11:12.123Z"
	}`,
	{EventTypeStreamOffline, "1"}: `{
		"broadcaster_user_id": "1337", "broadcaster_user_login": "cool_user", "broadcaster_user_name": "Cool_User"
	}`,
}

func notification(eventType EventType, version, event string) []byte {
	return fmt.Appendf(nil, `{
		"subscription": {
			"id": "sub-123",
			"type": %q,
			"version": %q,
			"status": "enabled",
			"cost": 1,
			"condition": {"broadcaster_user_id": "1337"},
			"transport": {"method": "conduit", "conduit_id": "conduit-1"},
			"created_at": "2024-01-01T00:00:00Z"
		},
		"event": %s
	}`, eventType, version, event)
}
