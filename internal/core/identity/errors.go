package identity

import (
	"errors"
	"fmt"
	"strings"
)

// LineBreak is a markdown hard line break as rendered by Matrix clients
const LineBreak = "      \n"

// ErrAccountNotFound is returned by Directory implementations when the
// directory reports no account with the requested name
var ErrAccountNotFound = errors.New("account not found")

// ServiceError is returned by Directory implementations for any failure other
// than a missing account. StatusCode is zero when no HTTP response was received.
type ServiceError struct {
	Err        error
	StatusCode int
}

func (e *ServiceError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("directory request failed: %v", e.Err)
	}
	return fmt.Sprintf("directory returned status %d", e.StatusCode)
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

// Kind discriminates resolution failures
type Kind int

const (
	KindAmbiguousSubject Kind = iota + 1
	KindMalformedProtocolID
	KindNoSuchAccount
	KindNoProtocolMapping
	KindAmbiguousDirectoryMatch
	KindDirectoryUnavailable
)

func (k Kind) String() string {
	switch k {
	case KindAmbiguousSubject:
		return "ambiguous_subject"
	case KindMalformedProtocolID:
		return "malformed_protocol_id"
	case KindNoSuchAccount:
		return "no_such_account"
	case KindNoProtocolMapping:
		return "no_protocol_mapping"
	case KindAmbiguousDirectoryMatch:
		return "ambiguous_directory_match"
	case KindDirectoryUnavailable:
		return "directory_unavailable"
	default:
		return "unknown"
	}
}

// Error is a resolution failure. Message is ready to be shown in chat as is.
type Error struct {
	Err     error
	Message string
	Kind    Kind
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the failure kind carried by err, if any
func KindOf(err error) (Kind, bool) {
	var resolveErr *Error
	if errors.As(err, &resolveErr) {
		return resolveErr.Kind, true
	}
	return 0, false
}

// IsKind reports whether err is a resolution failure of the given kind
func IsKind(err error, kind Kind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}

func ambiguousSubject() *Error {
	return &Error{
		Kind:    KindAmbiguousSubject,
		Message: "Sorry, I can only look up one username at a time",
	}
}

func malformedMatrixID(raw string) *Error {
	return &Error{
		Kind:    KindMalformedProtocolID,
		Message: fmt.Sprintf("Sorry, %s does not look like a valid matrix user ID (e.g. @username:homeserver.com )", raw),
	}
}

func noSuchAccount(name string, err error) *Error {
	return &Error{
		Kind:    KindNoSuchAccount,
		Message: fmt.Sprintf("Sorry, but Fedora Accounts user '%s' does not exist", name),
		Err:     err,
	}
}

func noProtocolMapping(id MatrixID) *Error {
	return &Error{
		Kind:    KindNoProtocolMapping,
		Message: fmt.Sprintf("No Fedora Accounts users have the %s Matrix Account defined", id),
	}
}

func ambiguousDirectoryMatch(id MatrixID, matches []*Profile) *Error {
	names := make([]string, 0, len(matches))
	for _, p := range matches {
		names = append(names, p.Username)
	}
	return &Error{
		Kind: KindAmbiguousDirectoryMatch,
		Message: fmt.Sprintf("%d Fedora Accounts users have the %s Matrix Account defined:%s%s",
			len(matches), id, LineBreak, strings.Join(names, LineBreak)),
	}
}

func directoryUnavailable(err error) *Error {
	var svcErr *ServiceError
	detail := "no response"
	if errors.As(err, &svcErr) && svcErr.StatusCode != 0 {
		detail = fmt.Sprintf("code %d", svcErr.StatusCode)
	}
	return &Error{
		Kind:    KindDirectoryUnavailable,
		Message: fmt.Sprintf("Sorry, could not get info from FASJSON (%s)", detail),
		Err:     err,
	}
}
