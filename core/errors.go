package core

import "errors"

var (
	// Authentication failures: the signature does not prove ownership of the
	// claimed wallet. The client has to sign a fresh message.
	ErrAuthentication   = errors.New("authentication failed")
	ErrInvalidSignature = errors.New("invalid signature")
	ErrInvalidAddress   = errors.New("invalid wallet address")

	// ErrIdentityCreation is returned when the backend user for a wallet
	// could neither be found nor created.
	ErrIdentityCreation = errors.New("identity creation failed")

	// ErrSession is returned when no session could be established for a
	// resolved identity, including after the password reset retry.
	ErrSession = errors.New("session creation failed")

	ErrUserExists     = errors.New("user already exists")
	ErrNotFound       = errors.New("not found")
	ErrBadCredentials = errors.New("invalid login credentials")
	ErrStoreOperation = errors.New("store operation failed")

	ErrTokenExpired     = errors.New("token has expired")
	ErrTokenInvalidated = errors.New("token has been invalidated")
	ErrInvalidToken     = errors.New("invalid token")
)
