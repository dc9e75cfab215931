package domain

import "errors"

var (
	ErrNotFound           = errors.New("not found")
	ErrDuplicateUser      = errors.New("username or email already taken")
	ErrInvalidCredentials = errors.New("invalid username or password")
	// ErrMatchDecided rejects predictions against matches that are no
	// longer Scheduled.
	ErrMatchDecided   = errors.New("match already has a result")
	ErrInvalidOutcome = errors.New("prediction must be Home Win, Draw or Away Win")
	// ErrValidation wraps rejected user input so the transport layer can
	// answer 400 instead of 500.
	ErrValidation = errors.New("invalid input")
)
