package checkin

import "errors"

var (
	// ErrSessionNotFound is returned when the session reference matches
	// nothing by id, number or access code.
	ErrSessionNotFound = errors.New("session not found")

	// ErrAlreadyCheckedIn is returned when the wallet already has an
	// attendance for the session, whether caught by the pre-check or by the
	// store constraint.
	ErrAlreadyCheckedIn = errors.New("already checked in for this session")

	// ErrNotAuthorized is returned when an admin override is requested by a
	// wallet that is not a registered admin. The request fails closed rather
	// than falling through to the normal path.
	ErrNotAuthorized = errors.New("not authorized as admin")

	// ErrSessionNotActive is returned when a non-admin checks in to a
	// deactivated session.
	ErrSessionNotActive = errors.New("session is not active")

	// ErrSessionWindowClosed is returned when a non-admin checks in outside
	// the session's time window.
	ErrSessionWindowClosed = errors.New("session is not available at this time")

	// ErrMintFailed is returned when the ledger rejects, reverts or times out
	// the mint. No local state is written in that case.
	ErrMintFailed = errors.New("failed to mint attendance token")

	// ErrConfigMissing is returned when the ledger gateway was never
	// configured. Distinct from ErrMintFailed so operators can tell
	// misconfiguration apart from ledger rejection.
	ErrConfigMissing = errors.New("mint configuration is missing")
)
