// Package cookies implements the Fedora cookie (karma) ledger: one cookie per
// giver, recipient and Fedora release.
package cookies

import "time"

// Cookie is one cookie given during a release cycle
type Cookie struct {
	GivenAt time.Time
	From    string
	To      string
	Release string
}

// ReleaseCount is the number of cookies received during one release
type ReleaseCount struct {
	Release string
	Count   int
}

// Tally summarises the cookies a user has received
type Tally struct {
	Username  string
	ByRelease []ReleaseCount
	Total     int
}

// CountFor returns the cookies received during release
func (t Tally) CountFor(release string) int {
	for _, rc := range t.ByRelease {
		if rc.Release == release {
			return rc.Count
		}
	}
	return 0
}

// Receipt describes a successful gift
type Receipt struct {
	From    string
	To      string
	Release string
	Tally   Tally
}

// GiveCookieEvent is published on the message bus after every gift
type GiveCookieEvent struct {
	CountByRelease map[string]int `json:"count_by_release"`
	Sender         string         `json:"sender"`
	Recipient      string         `json:"recipient"`
	FedoraRelease  string         `json:"fedora_release"`
	Total          int            `json:"total"`
}

// EventFromReceipt builds the bus event for a gift
func EventFromReceipt(r Receipt) GiveCookieEvent {
	byRelease := make(map[string]int, len(r.Tally.ByRelease))
	for _, rc := range r.Tally.ByRelease {
		byRelease[rc.Release] = rc.Count
	}
	return GiveCookieEvent{
		Sender:         r.From,
		Recipient:      r.To,
		Total:          r.Tally.Total,
		FedoraRelease:  r.Release,
		CountByRelease: byRelease,
	}
}
