package domain

import "errors"

// Authentication outcomes.
var (
	ErrNoCredential      = errors.New("missing credential")
	ErrInvalidCredential = errors.New("invalid credential")
	ErrUnknownIdentity   = errors.New("unknown identity")
	// ErrIntegrityFault marks a stored identity that violates its invariants.
	// It is a server fault, never a client authorization outcome.
	ErrIntegrityFault = errors.New("identity integrity fault")
)

// Authorization and lookup outcomes.
var (
	ErrForbidden          = errors.New("access forbidden")
	ErrOrderNotFound      = errors.New("order not found")
	ErrUserNotFound       = errors.New("user not found")
	ErrUserExists         = errors.New("user already exists")
	ErrInvalidInput       = errors.New("invalid input")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// Idempotent create outcomes.
var (
	ErrDuplicateOrder    = errors.New("order already created for idempotency key")
	ErrRequestInProgress = errors.New("a request with this idempotency key is still in progress")
)
