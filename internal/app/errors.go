package app

import (
	"errors"
	"fmt"
)

// ErrNotFound indicates that a project or task does not exist or is not
// owned by the caller.
var ErrNotFound = errors.New("not found")

// ValidationError is a client error whose message is safe to surface.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

func invalid(format string, args ...any) error {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// AuthErrorKind distinguishes why authentication failed. The kind is for
// logs and tests only and must never reach a client.
type AuthErrorKind int

const (
	// AuthInvalidSignature covers malformed tokens and signature mismatches.
	AuthInvalidSignature AuthErrorKind = iota + 1
	// AuthExpired means the token's expiry has passed.
	AuthExpired
	// AuthUnknownSubject means the token's subject is not a stored user.
	AuthUnknownSubject
	// AuthInvalidCredentials means the email or password was wrong.
	AuthInvalidCredentials
)

func (k AuthErrorKind) String() string {
	switch k {
	case AuthInvalidSignature:
		return "invalid signature"
	case AuthExpired:
		return "expired"
	case AuthUnknownSubject:
		return "unknown subject"
	case AuthInvalidCredentials:
		return "invalid credentials"
	}
	return "unknown"
}

// AuthError reports an authentication failure.
type AuthError struct {
	Kind AuthErrorKind
	Err  error
}

func (e *AuthError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("auth: %s: %v", e.Kind, e.Err)
	}
	return "auth: " + e.Kind.String()
}

func (e *AuthError) Unwrap() error { return e.Err }

// IsAuthKind reports whether err is an *AuthError of the given kind.
func IsAuthKind(err error, kind AuthErrorKind) bool {
	var ae *AuthError
	return errors.As(err, &ae) && ae.Kind == kind
}
