package domain

import "errors"

var (
	ErrPollNotFound       = errors.New("poll not found")
	ErrInvalidPollInput   = errors.New("a question and 2 to 10 options are required")
	ErrInvalidOption      = errors.New("invalid option for this poll")
	ErrMissingIdentity    = errors.New("browser fingerprint required")
	ErrDuplicateVote      = errors.New("a vote was already cast for this poll from this browser or address")
	ErrStorageUnavailable = errors.New("storage unavailable")

	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserNotFound       = errors.New("user not found")
)
