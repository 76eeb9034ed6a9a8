// Package services – ModerationService
//
// This file implements ModerationService, the per-event pipeline that
// enforces the unique-content rule. For each message (or edit) in a
// moderated channel it checks the encoding policy, fingerprints the text,
// records the fingerprint in the guild-scoped uniqueness store, and on a
// collision increments the author's infraction ledger, computes the
// escalating punishment, and dispatches the moderation actions.
//
// Failure semantics: a storage error from either store aborts the event at
// that point with zero further side effects. Platform action failures are
// logged and best-effort; recorded store state is never rolled back.
//
// Observability: the public entry point is OpenTelemetry-instrumented and
// pipeline outcomes are counted with Prometheus.
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/r9klabs/r9kbot/internal/fingerprint"
	"github.com/r9klabs/r9kbot/internal/platform"
	"github.com/r9klabs/r9kbot/internal/policy"
	"github.com/r9klabs/r9kbot/internal/repo"

	// OpenTelemetry
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const (
	replyUnicode   = "No unicode is allowed."
	replyDuplicate = "You can only post unique text here."

	// seenCacheSize bounds the in-process cache of fingerprints known to be
	// present in the store. Membership is monotone (seen_posts is
	// append-only), so a cache hit can safely skip the DB probe.
	seenCacheSize = 8192
)

var (
	modChecked = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "moderation_messages_checked_total",
		Help: "Total messages run through the moderation pipeline.",
	})
	modOutcomes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "moderation_outcomes_total",
			Help: "Pipeline outcomes by result.",
		},
		[]string{"outcome"}, // accepted | duplicate | storage_error
	)
	modEncodingRejected = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "moderation_encoding_rejected_total",
		Help: "Messages deleted for non-ASCII content.",
	})
	modPunishmentSecs = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "moderation_punishment_seconds_total",
		Help: "Sum of punishment durations applied, in seconds.",
	})
)

func init() {
	prometheus.MustRegister(modChecked, modOutcomes, modEncodingRejected, modPunishmentSecs)
}

// ModerationService runs the duplicate-detection and punishment pipeline.
// Construct with NewModerationService.
type ModerationService struct {
	DB         *gorm.DB
	Actions    platform.Actions
	SilentMode bool
	Log        zerolog.Logger

	// now is swapped in tests to pin restriction deadlines.
	now  func() time.Time
	seen *lru.Cache[string, struct{}]
}

// NewModerationService wires a pipeline over the given stores and actions.
func NewModerationService(db *gorm.DB, actions platform.Actions, silentMode bool, log zerolog.Logger) *ModerationService {
	cache, err := lru.New[string, struct{}](seenCacheSize)
	if err != nil {
		// lru.New only fails for a non-positive size
		panic(err)
	}
	return &ModerationService{
		DB:         db,
		Actions:    actions,
		SilentMode: silentMode,
		Log:        log,
		now:        time.Now,
		seen:       cache,
	}
}

// HandleMessage runs one event through the pipeline. It returns an error
// only for storage failures; everything else is handled in-band.
//
// The caller is expected to have applied the entry conditions already
// (moderated channel, not the bot's own message, edit with changed text);
// HandleMessage re-checks only the own-message filter.
func (s *ModerationService) HandleMessage(ctx context.Context, ev platform.Event) error {
	tr := otel.Tracer("services/ModerationService")
	ctx, span := tr.Start(ctx, "HandleMessage",
		trace.WithAttributes(
			attribute.String("guild.id", ev.GuildID),
			attribute.String("channel.id", ev.ChannelID),
			attribute.String("author.id", ev.AuthorID),
		),
	)
	defer span.End()

	if ev.AuthorIsSelf {
		return nil
	}
	modChecked.Inc()

	// Encoding policy: delete + notify, but keep going. A non-ASCII message
	// is still checked for uniqueness and can be punished on top.
	if fingerprint.IsRestrictedEncoding(ev.Content) {
		modEncodingRejected.Inc()
		if !s.SilentMode {
			if err := s.Actions.Reply(ctx, ev.ChannelID, ev.MessageID, replyUnicode); err != nil {
				s.Log.Warn().Err(err).Str("message_id", ev.MessageID).Msg("encoding reply failed")
			}
		}
		if err := s.Actions.DeleteMessage(ctx, ev.ChannelID, ev.MessageID); err != nil {
			s.Log.Warn().Err(err).Str("message_id", ev.MessageID).Msg("encoding delete failed")
		}
	}

	fp := fingerprint.Compute(ev.Content)
	key := fingerprint.Key(ev.GuildID, fp)

	// A cache hit means the key is already on record; membership never
	// retracts, so the DB probe can be skipped.
	if !s.seen.Contains(key) {
		switch err := repo.RecordSeen(ctx, s.DB, ev.GuildID, fp); {
		case err == nil:
			// Inserted: the text is now on record, so identical future
			// posts are duplicates. Cache the key for them.
			s.seen.Add(key, struct{}{})
			modOutcomes.WithLabelValues("accepted").Inc()
			return nil
		case errors.Is(err, repo.ErrDuplicate):
			s.seen.Add(key, struct{}{})
		default:
			modOutcomes.WithLabelValues("storage_error").Inc()
			return fmt.Errorf("%w: recording fingerprint: %v", ErrStorageFailure, err)
		}
	}

	// Duplicate: the ledger update must land before any punitive action so
	// punishment never desynchronizes from recorded infractions.
	count, err := repo.IncrementInfraction(ctx, s.DB, ev.AuthorID)
	if err != nil {
		modOutcomes.WithLabelValues("storage_error").Inc()
		return fmt.Errorf("%w: updating ledger: %v", ErrStorageFailure, err)
	}
	modOutcomes.WithLabelValues("duplicate").Inc()

	dec := policy.Decide(count)
	span.SetAttributes(
		attribute.Int64("infraction.count", count),
		attribute.Int64("punishment.seconds", int64(dec.Duration/time.Second)),
	)
	s.punish(ctx, ev, dec)
	return nil
}

// punish performs the side-effect batch for a confirmed duplicate: delete,
// restrict, notify, audit. Each step is best-effort and logged on failure.
func (s *ModerationService) punish(ctx context.Context, ev platform.Event, dec policy.Decision) {
	lg := s.Log.With().
		Str("user_id", ev.AuthorID).
		Str("message_id", ev.MessageID).
		Int64("count", dec.Count).
		Logger()

	if err := s.Actions.DeleteMessage(ctx, ev.ChannelID, ev.MessageID); err != nil {
		lg.Warn().Err(err).Msg("duplicate delete failed")
	}

	until := s.now().UTC().Add(dec.Duration)
	if err := s.Actions.RestrictPosting(ctx, ev.GuildID, ev.AuthorID, until, dec.Reason); err != nil {
		lg.Error().Err(err).Msg("posting restriction failed")
	}

	if !s.SilentMode {
		text := fmt.Sprintf("%s You have been restricted for %s.", replyDuplicate, dec.Duration)
		if err := s.Actions.Reply(ctx, ev.ChannelID, ev.MessageID, text); err != nil {
			lg.Warn().Err(err).Msg("duplicate reply failed")
		}
	}

	modPunishmentSecs.Add(float64(dec.Duration / time.Second))

	// Audit trail is best-effort, unlike the ledger.
	if _, err := repo.CreatePunishment(ctx, s.DB, ev.AuthorID, ev.GuildID, ev.MessageID, dec.Count, dec.Duration, dec.Reason); err != nil {
		lg.Warn().Err(err).Msg("punishment audit write failed")
	}

	lg.Info().Dur("duration", dec.Duration).Msg("punished duplicate post")
}
