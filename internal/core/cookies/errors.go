package cookies

import (
	"errors"
	"fmt"
)

var (
	// ErrSelfGift is returned when a user tries to give themselves a cookie
	ErrSelfGift = errors.New("You can't give a cookie to yourself")

	// ErrDuplicateCookie is returned by repositories when the giver already
	// gave the recipient a cookie during the release
	ErrDuplicateCookie = errors.New("cookie already given during this release")
)

// AlreadyGivenError is the user-facing form of ErrDuplicateCookie
type AlreadyGivenError struct {
	From    string
	To      string
	Release string
}

func (e *AlreadyGivenError) Error() string {
	return fmt.Sprintf("%s has already given cookies to %s during the F%s timeframe", e.From, e.To, e.Release)
}

func (e *AlreadyGivenError) Unwrap() error {
	return ErrDuplicateCookie
}
