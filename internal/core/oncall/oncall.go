// Package oncall keeps the list of Fedora Infrastructure members on call
package oncall

// Entry is one person on the oncall list
type Entry struct {
	Username string
	MXID     string
	Timezone string
}

// DefaultTimezone is used when an account does not share its timezone
const DefaultTimezone = "UTC"
