package sis

import "errors"

var (
	// ErrConnection means the host could not be reached (or the request was cancelled).
	ErrConnection = errors.New("sis: could not reach server")
	// ErrGeneric500 means the server failed in a way that is not a content-level rejection.
	ErrGeneric500 = errors.New("sis: server error")
	// ErrInvalidLogin means the credentials were rejected.
	ErrInvalidLogin = errors.New("sis: invalid username or password")
	// ErrInvalidSession means the server does not recognize the session (expired, never logged
	// in or logged out elsewhere).
	ErrInvalidSession = errors.New("sis: session is invalid or expired")
	// ErrUnknownClass means the class token was not accepted.
	ErrUnknownClass = errors.New("sis: unknown class")
	// ErrDecode means a page did not have the expected structure.
	ErrDecode = errors.New("sis: unexpected page structure")
)
