package domain

import "errors"

// Shared error taxonomy. Handlers map these to HTTP status codes; services
// log the real cause and return one of these so callers never learn more
// than they should (invalid credentials stays one undifferentiated error).
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrConflict           = errors.New("already registered")
	ErrValidation         = errors.New("invalid input")
	ErrNotFound           = errors.New("not found")
	ErrUnauthenticated    = errors.New("unauthorized")
	ErrUnavailable        = errors.New("service unavailable")
)

// LinkOutcome reports what ResolveGoogleIdentity did to the account space.
type LinkOutcome string

const (
	OutcomeCreated       LinkOutcome = "created"
	OutcomeLinked        LinkOutcome = "linked"
	OutcomeAlreadyLinked LinkOutcome = "already_linked"
)
