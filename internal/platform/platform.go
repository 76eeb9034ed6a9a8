// Package platform defines the boundary to the chat platform: the message
// events the bot consumes and the moderation actions it performs. Concrete
// implementations live in the gateway (event delivery) and rest (actions)
// subpackages; services depend only on these types so the core pipeline is
// testable without a live connection.
package platform

import (
	"context"
	"time"
)

// EventKind distinguishes message delivery events.
type EventKind string

const (
	// EventMessageCreate is a newly posted message.
	EventMessageCreate EventKind = "message_create"
	// EventMessageUpdate is an edit to an existing message.
	EventMessageUpdate EventKind = "message_update"
)

// Event is one message-created or message-edited delivery.
type Event struct {
	Kind         EventKind `json:"kind"`
	MessageID    string    `json:"message_id"`
	GuildID      string    `json:"guild_id"`
	ChannelID    string    `json:"channel_id"`
	AuthorID     string    `json:"author_id"`
	AuthorIsSelf bool      `json:"author_is_self"`
	Content      string    `json:"content"`
	// PriorContent carries the pre-edit text on EventMessageUpdate so
	// handlers can skip no-op edits (embed unfurls, pin changes).
	PriorContent string    `json:"prior_content,omitempty"`
	Timestamp    time.Time `json:"timestamp"`
}

// Actions is the set of moderation capabilities the platform exposes.
// All calls are best-effort from the pipeline's point of view: a failed
// action is logged, never rolled back into store state.
type Actions interface {
	// DeleteMessage removes a message from its channel.
	DeleteMessage(ctx context.Context, channelID, messageID string) error
	// Reply posts text as a reply to a message.
	Reply(ctx context.Context, channelID, messageID, text string) error
	// Announce posts text to a channel. suppressMentions prevents user
	// references in text from pinging anyone.
	Announce(ctx context.Context, channelID, text string, suppressMentions bool) error
	// RestrictPosting blocks a guild member from posting until the given
	// time, with a reason shown in the guild's audit log.
	RestrictPosting(ctx context.Context, guildID, userID string, until time.Time, reason string) error
}

// Handler consumes one event. Returned errors are logged by the event
// source; they never stop delivery.
type Handler func(ctx context.Context, ev Event) error
