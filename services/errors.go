package services

import "errors"

// Sentinel errors shared across services and the HTTP mapping.
var (
	// Not found
	ErrNotFound      = errors.New("requested resource not found")
	ErrMatchNotFound = errors.New("match not found")
	ErrSlotNotFound  = errors.New("slot not found")

	// Invalid input
	ErrInvalidSetCount         = errors.New("scorecard must contain exactly 3 sets")
	ErrInvalidSetScore         = errors.New("set games must be between 0 and 7")
	ErrTiedSetScore            = errors.New("set cannot end with equal games")
	ErrInvalidSetPlayers       = errors.New("each set needs two distinct winners and two distinct losers from the match")
	ErrInvalidOverridePairing  = errors.New("each override set must split the match's four players into two pairs")
	ErrInvalidSlotTime         = errors.New("slot start time is malformed")
	ErrPlayerNotInMatch        = errors.New("player does not belong to this match")
	ErrInvalidTossChoice       = errors.New("toss choice must be one of serve or court")

	// Conflicts
	ErrTossAlreadyDone      = errors.New("toss has already been performed for this match")
	ErrTooManySlots         = errors.New("a match can carry at most 3 proposed slots")
	ErrNotEnoughPlayers     = errors.New("at least 4 players are required to schedule a season")
	ErrTierNotConfigured    = errors.New("tier has no season configuration")
	ErrNoPendingScorecard   = errors.New("no pending scorecard to approve")
	ErrMatchAlreadyPlayed   = errors.New("match already has an approved scorecard")
	ErrMatchNotSchedulable  = errors.New("calendar export requires a confirmed match with a scheduled time")
)
