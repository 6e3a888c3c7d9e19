package moderation

import "fmt"

// Validation failures are detected before any state mutation and always carry
// the offending entity id so callers can decide on retry themselves.

type ArticleNotFoundError struct {
	ArticleID uint
}

func (e *ArticleNotFoundError) Error() string {
	return fmt.Sprintf("article %d not found", e.ArticleID)
}

type DuplicateFlagError struct {
	ArticleID uint
	StakerID  uint
}

func (e *DuplicateFlagError) Error() string {
	return fmt.Sprintf("staker %d already has an open flag on article %d", e.StakerID, e.ArticleID)
}

type InvalidStakeError struct {
	Stake int64
}

func (e *InvalidStakeError) Error() string {
	return fmt.Sprintf("stake must not be negative, got %d", e.Stake)
}

type EmptyReasonError struct {
	ArticleID uint
}

func (e *EmptyReasonError) Error() string {
	return fmt.Sprintf("flag on article %d requires a non-empty reason", e.ArticleID)
}

type DisputeNotFoundError struct {
	DisputeID uint
}

func (e *DisputeNotFoundError) Error() string {
	return fmt.Sprintf("dispute %d not found", e.DisputeID)
}

type AlreadyResolvedError struct {
	DisputeID uint
}

func (e *AlreadyResolvedError) Error() string {
	return fmt.Sprintf("dispute %d is already resolved", e.DisputeID)
}

type InvalidOutcomeError struct {
	Outcome string
}

func (e *InvalidOutcomeError) Error() string {
	return fmt.Sprintf("outcome must be upheld or dismissed, got %q", e.Outcome)
}

type UnknownIdentityError struct {
	IdentityID uint
}

func (e *UnknownIdentityError) Error() string {
	return fmt.Sprintf("identity %d not found", e.IdentityID)
}
