package main

import (
	"context"
	"log/slog"

	"github.com/suniastar/twitch-api/eventsub"
)

func logNotification(ctx context.Context, env eventsub.Envelope) {
	switch event := env.Event.(type) {
	case eventsub.StreamOnlineV1Payload:
		slog.InfoContext(ctx, "Stream went online", "broadcaster", event.BroadcasterUserLogin, "stream_type", event.Type, "started_at", event.StartedAt)
	case eventsub.StreamOfflineV1Payload:
		slog.InfoContext(ctx, "Stream went offline", "broadcaster", event.BroadcasterUserLogin)
	case eventsub.ChannelUpdateV2Payload:
		slog.InfoContext(ctx, "Channel updated", "broadcaster", event.BroadcasterUserLogin, "title", event.Title, "category", event.CategoryName)
	case eventsub.ChannelFollowV2Payload:
		slog.InfoContext(ctx, "New follower", "broadcaster", event.BroadcasterUserLogin, "user", event.UserLogin)
	case eventsub.AutomodMessageHoldV2Payload:
		slog.InfoContext(ctx, "Message held by AutoMod", "broadcaster", event.BroadcasterUserLogin, "user", event.UserLogin, "message_id", event.MessageID, "reason", event.Reason)
	case eventsub.AutomodMessageUpdateV1Payload:
		slog.InfoContext(ctx, "Held message resolved", "message_id", event.MessageID, "status", event.Status, "moderator", event.ModeratorUserLogin)
	default:
		slog.InfoContext(ctx, "Notification received", "subscription_type", env.Subscription.Type, "version", env.Subscription.Version)
	}
}

func logRevocation(ctx context.Context, sub eventsub.Subscription) {
	slog.WarnContext(ctx, "Subscription revoked by Twitch", "subscription_id", sub.ID, "type", sub.Type, "status", sub.Status)
}
