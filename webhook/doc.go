// Package webhook receives Twitch EventSub webhook requests.
//
// Handler verifies the HMAC signature and freshness of each request, drops
// redelivered messages, answers callback verification challenges and hands
// decoded notifications to the caller as eventsub.Envelope values.
package webhook
