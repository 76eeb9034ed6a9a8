// Package bot glues platform events to the moderation pipeline and the chat
// commands. It owns the entry conditions (moderated channel, own-message
// filter, changed-text edits) and the user-facing rendering of query
// responses; all real logic lives in the services it delegates to.
package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/r9klabs/r9kbot/internal/config"
	"github.com/r9klabs/r9kbot/internal/platform"
	"github.com/r9klabs/r9kbot/internal/services"
)

const (
	cmdStats       = "-stats"
	cmdLeaderboard = "-lb"
)

// Bot dispatches incoming events to moderation or command handling.
type Bot struct {
	Cfg        config.Config
	Moderation *services.ModerationService
	Stats      *services.StatsService
	Actions    platform.Actions
	Log        zerolog.Logger
}

// HandleEvent is the single handler registered for message-create and
// message-update events.
func (b *Bot) HandleEvent(ctx context.Context, ev platform.Event) error {
	if ev.AuthorIsSelf {
		return nil
	}

	if b.Cfg.IsModerated(ev.ChannelID) {
		// Re-delivered edits with unchanged text are not new submissions
		// (embed unfurls and pins arrive as updates too).
		if ev.Kind == platform.EventMessageUpdate && ev.Content == ev.PriorContent {
			return nil
		}
		return b.Moderation.HandleMessage(ctx, ev)
	}

	// Commands live outside moderated channels and only on fresh messages.
	if b.Cfg.RunCommands && ev.Kind == platform.EventMessageCreate {
		return b.handleCommand(ctx, ev)
	}
	return nil
}

func (b *Bot) handleCommand(ctx context.Context, ev platform.Event) error {
	switch strings.TrimSpace(ev.Content) {
	case cmdStats:
		return b.handleStats(ctx, ev)
	case cmdLeaderboard:
		return b.handleLeaderboard(ctx, ev)
	}
	return nil
}

func (b *Bot) handleStats(ctx context.Context, ev platform.Event) error {
	b.deleteTrigger(ctx, ev)

	st, err := b.Stats.Stats(ctx, ev.AuthorID)
	if err != nil {
		if errors.Is(err, services.ErrNoInfractions) {
			return b.Actions.Announce(ctx, ev.ChannelID,
				fmt.Sprintf("%s has no infractions.", mention(ev.AuthorID)), false)
		}
		return err
	}
	text := fmt.Sprintf("%s has %d infraction%s. The next one costs %s.",
		mention(ev.AuthorID), st.Count, plural(st.Count), st.NextDuration)
	return b.Actions.Announce(ctx, ev.ChannelID, text, false)
}

func (b *Bot) handleLeaderboard(ctx context.Context, ev platform.Event) error {
	b.deleteTrigger(ctx, ev)

	entries, err := b.Stats.Leaderboard(ctx)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		return b.Actions.Announce(ctx, ev.ChannelID, "No infractions recorded yet.", true)
	}

	var sb strings.Builder
	sb.WriteString("Infraction leaderboard:\n")
	for i, e := range entries {
		fmt.Fprintf(&sb, "%d. %s: %d infraction%s (next: %s)\n",
			i+1, mention(e.UserID), e.Count, plural(e.Count), e.NextDuration)
	}
	// Mention pings are suppressed: a leaderboard must not notify the
	// users it lists.
	return b.Actions.Announce(ctx, ev.ChannelID, strings.TrimRight(sb.String(), "\n"), true)
}

// deleteTrigger removes the command message; commands always clean up after
// themselves regardless of outcome.
func (b *Bot) deleteTrigger(ctx context.Context, ev platform.Event) {
	if err := b.Actions.DeleteMessage(ctx, ev.ChannelID, ev.MessageID); err != nil {
		b.Log.Warn().Err(err).Str("message_id", ev.MessageID).Msg("command trigger delete failed")
	}
}

func mention(userID string) string {
	return "<@" + userID + ">"
}

func plural(n int64) string {
	if n == 1 {
		return ""
	}
	return "s"
}
