// Package services holds the business logic that spans more than one
// repository: the reaction ledger (row + counter as one unit) and the
// notification dispatcher. This file centralizes the sentinel errors service
// methods return; mapping them to HTTP status codes happens in the handlers.
package services

import "errors"

var (
	// ErrTargetNotFound indicates the referenced post or comment does not exist.
	ErrTargetNotFound = errors.New("target not found")

	// ErrReactionNotFound is returned when removing a reaction that was never
	// created or has already been toggled away.
	ErrReactionNotFound = errors.New("reaction not found")

	// ErrDuplicateReaction is returned when a concurrent toggle already
	// inserted the same (target, user) reaction row.
	ErrDuplicateReaction = errors.New("reaction already exists")
)
