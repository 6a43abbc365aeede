package apperror

import "errors"

var (
	ErrOutOfRange         = errors.New("index out of range")
	ErrUnauthenticated    = errors.New("player is not signed in")
	ErrSessionNotFound    = errors.New("game session not found")
	ErrNotFound           = errors.New("not found")
	ErrHighScoreStatus    = errors.New("unexpected high score service status")
	ErrInvalidOAuthState  = errors.New("invalid oauth state")
	ErrMissingOAuthCode   = errors.New("oauth code not found in request")
	ErrIncompleteIdentity = errors.New("identity provider returned no name or email")
)
