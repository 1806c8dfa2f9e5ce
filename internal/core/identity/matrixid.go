package identity

import (
	"regexp"
	"strings"
)

var matrixUserPattern = regexp.MustCompile(`^@([^:]+):(\S+)$`)

const (
	nickPrefix       = "matrix://"
	legacyNickPrefix = "matrix:/"
)

// MatrixID is a Matrix user ID split into its parts
type MatrixID struct {
	Localpart string
	Domain    string
}

// ParseMatrixID parses "@localpart:domain". Anything else is a
// KindMalformedProtocolID failure.
func ParseMatrixID(raw string) (MatrixID, error) {
	m := matrixUserPattern.FindStringSubmatch(raw)
	if m == nil {
		return MatrixID{}, malformedMatrixID(raw)
	}
	return MatrixID{Localpart: m[1], Domain: m[2]}, nil
}

// LooksLikeMatrixID reports whether token has the "@localpart:domain" shape
func LooksLikeMatrixID(token string) bool {
	return matrixUserPattern.MatchString(token)
}

func (m MatrixID) String() string {
	return "@" + m.Localpart + ":" + m.Domain
}

// DirectoryNick encodes the ID the way Fedora Accounts stores it in ircnicks
func (m MatrixID) DirectoryNick() string {
	return nickPrefix + m.Domain + "/" + m.Localpart
}

// ParseNick decodes a Fedora Accounts nickname into a Matrix ID.
// "matrix://domain/localpart" carries its own domain; the legacy
// "matrix:/localpart" form lives on defaultDomain. Other nicknames
// (IRC and friends) report false.
func ParseNick(nick, defaultDomain string) (MatrixID, bool) {
	switch {
	case strings.HasPrefix(nick, nickPrefix):
		domain, localpart, ok := strings.Cut(strings.TrimPrefix(nick, nickPrefix), "/")
		if !ok || domain == "" || localpart == "" {
			return MatrixID{}, false
		}
		return MatrixID{Localpart: localpart, Domain: domain}, true
	case strings.HasPrefix(nick, legacyNickPrefix):
		localpart := strings.TrimPrefix(nick, legacyNickPrefix)
		if localpart == "" || strings.Contains(localpart, "/") {
			return MatrixID{}, false
		}
		return MatrixID{Localpart: localpart, Domain: defaultDomain}, true
	default:
		return MatrixID{}, false
	}
}

// MatrixIDsFromNicks returns every Matrix ID encoded in nicks, in order
func MatrixIDsFromNicks(nicks []string, defaultDomain string) []MatrixID {
	var ids []MatrixID
	for _, nick := range nicks {
		if id, ok := ParseNick(nick, defaultDomain); ok {
			ids = append(ids, id)
		}
	}
	return ids
}
