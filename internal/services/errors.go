// Package services implements the business logic of the moderation bot: the
// duplicate-detection pipeline and the read-only infraction queries. This
// file centralizes common service-level error values so that they can be
// consistently returned by service methods and checked by callers.
package services

import "errors"

var (
	// ErrStorageFailure wraps any persistence error from the uniqueness
	// store or the infraction ledger. It is fatal for the event being
	// processed: the pipeline stops and performs no further side effects,
	// so punishment never runs ahead of (or without) a recorded violation.
	ErrStorageFailure = errors.New("storage failure")

	// ErrNoInfractions is returned by Stats for users with a clean record.
	ErrNoInfractions = errors.New("no infractions recorded")
)
