package oncall

import "errors"

var (
	// ErrAlreadyOnCall is returned when adding a username that is already listed
	ErrAlreadyOnCall = errors.New("already on the oncall list")

	// ErrNotOnCall is returned when removing a username that is not listed
	ErrNotOnCall = errors.New("not on the oncall list")
)
