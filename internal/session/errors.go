package session

import (
	"errors"
	"fmt"
	"strings"
)

// AuthErrorKind classifies identity provider failures.
type AuthErrorKind int

const (
	AuthUnknown AuthErrorKind = iota
	AuthInvalidCredentials
	AuthInvalidEmail
	AuthEmailInUse
	AuthWeakPassword
)

func (k AuthErrorKind) String() string {
	switch k {
	case AuthInvalidCredentials:
		return "invalid-credentials"
	case AuthInvalidEmail:
		return "invalid-email-format"
	case AuthEmailInUse:
		return "email-already-registered"
	case AuthWeakPassword:
		return "weak-password"
	default:
		return "unknown"
	}
}

// ValidationError is raised before any network call.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// AuthError is a classified identity provider failure.
type AuthError struct {
	Kind AuthErrorKind
	Err  error
}

func (e *AuthError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("auth %s: %v", e.Kind, e.Err)
	}
	return "auth " + e.Kind.String()
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

// TransportError means the backend could not be reached or its reply could
// not be parsed.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// BackendError is a well-formed error reply from the backend.
type BackendError struct {
	Status  int
	Message string
}

func (e *BackendError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("backend status %d", e.Status)
	}
	return e.Message
}

// User-facing messages.
const (
	MsgPasswordMismatch   = "Passwords do not match"
	MsgMissingCredentials = "Please enter your email and password."
	MsgMissingName        = "Please enter your name."
	MsgInvalidCredentials = "Invalid email or password."
	MsgInvalidEmail       = "Please enter a valid email address."
	MsgEmailInUse         = "An account with this email already exists."
	MsgWeakPassword       = "Password should be at least 6 characters."
	MsgAuthUnknown        = "Authentication failed. Please try again."
	MsgUnreachable        = "Could not reach the server. Please try again."
	MsgBackendGeneric     = "Something went wrong. Please try again."
	MsgEmptyFile          = "Please choose a non-empty file."
	MsgMissingGroupName   = "Please give the group a name."
	MsgBadReference       = "That reference is not part of the open document."
	MsgUnknownGroup       = "That group no longer exists."
	MsgUnavailableView    = "That screen is not available right now."
)

var authMessages = map[AuthErrorKind]string{
	AuthInvalidCredentials: MsgInvalidCredentials,
	AuthInvalidEmail:       MsgInvalidEmail,
	AuthEmailInUse:         MsgEmailInUse,
	AuthWeakPassword:       MsgWeakPassword,
	AuthUnknown:            MsgAuthUnknown,
}

// UserMessage maps any error onto the fixed user-facing text for its class.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var validation *ValidationError
	var authErr *AuthError
	var backend *BackendError
	var transport *TransportError
	switch {
	case errors.As(err, &validation):
		return validation.Message
	case errors.As(err, &authErr):
		return authMessages[authErr.Kind]
	case errors.As(err, &backend):
		if msg := strings.TrimSpace(backend.Message); msg != "" {
			return msg
		}
		return MsgBackendGeneric
	case errors.As(err, &transport):
		return MsgUnreachable
	default:
		return MsgUnreachable
	}
}
