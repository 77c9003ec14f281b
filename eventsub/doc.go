// Package eventsub decodes Twitch EventSub notifications into typed envelopes.
//
// A notification carries a subscription section whose type and version select
// one of the payload schemas registered in this package. Parse inspects that
// pair, decodes the event body into the matching payload struct and returns an
// Envelope holding both the subscription metadata and the payload.
//
// The set of known schemas is fixed at build time. Documents with an unknown
// (type, version) pair fail with ErrUnknownEventType so callers can log and
// skip them instead of treating them as corrupt.
package eventsub
