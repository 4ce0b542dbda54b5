package apperror

import "errors"

var (
	ErrUnknownGame       = errors.New("unknown game")
	ErrNoActiveSession   = errors.New("no active session")
	ErrSessionDisposed   = errors.New("session is disposed")
	ErrInvalidPayload    = errors.New("invalid payload")
	ErrClientIsRequired  = errors.New("client is required")
	ErrSessionIDMismatch = errors.New("session does not belong to client")
)
