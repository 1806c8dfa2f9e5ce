package identity

import (
	"encoding/json"
	"reflect"
	"strings"
)

// Profile is a Fedora Accounts user record.
// Fields the bot never reads are kept in Extra.
type Profile struct {
	Extra     map[string]json.RawMessage `json:"-"`
	Username  string                     `json:"username"`
	HumanName string                     `json:"human_name,omitempty"`
	Timezone  string                     `json:"timezone,omitempty"`
	Locale    string                     `json:"locale,omitempty"`
	Creation  string                     `json:"creation,omitempty"`
	Ircnicks  []string                   `json:"ircnicks,omitempty"`
	Pronouns  []string                   `json:"pronouns,omitempty"`
	GPGKeyIDs []string                   `json:"gpgkeyids,omitempty"`
	Emails    []string                   `json:"emails,omitempty"`
}

// profileFields are the json keys Profile decodes itself
var profileFields = jsonFieldNames(reflect.TypeOf(Profile{}))

func jsonFieldNames(t reflect.Type) []string {
	names := make([]string, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		name, _, _ := strings.Cut(t.Field(i).Tag.Get("json"), ",")
		if name != "" && name != "-" {
			names = append(names, name)
		}
	}
	return names
}

// UnmarshalJSON decodes the known fields and keeps the rest in Extra
func (p *Profile) UnmarshalJSON(data []byte) error {
	type plain Profile
	var decoded plain
	if err := json.Unmarshal(data, &decoded); err != nil {
		return err
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	for _, field := range profileFields {
		delete(raw, field)
	}
	if len(raw) > 0 {
		decoded.Extra = raw
	}

	*p = Profile(decoded)
	return nil
}

// Message is the part of a chat event the resolver reads
type Message struct {
	// Sender is the invoker's Matrix ID, used when no subject is given
	Sender string
	// FormattedBody is the HTML rendering of the message, empty when absent
	FormattedBody string
}

// Settings holds the resolver's fixed configuration
type Settings struct {
	// DefaultDomain is the homeserver assumed by legacy "matrix:/name" nicknames
	DefaultDomain string
	// SafeDomains are homeservers whose localparts equal Fedora Accounts usernames
	SafeDomains []string
}

// DefaultSettings returns the settings used for the Fedora deployment
func DefaultSettings() Settings {
	return Settings{
		DefaultDomain: "fedora.im",
		SafeDomains:   []string{"fedora.im"},
	}
}

// IsSafeDomain reports whether localparts on domain can be used as account
// names. Domains compare case-insensitively.
func (s Settings) IsSafeDomain(domain string) bool {
	for _, safe := range s.SafeDomains {
		if strings.EqualFold(safe, domain) {
			return true
		}
	}
	return false
}

func (s Settings) clone() Settings {
	out := s
	out.SafeDomains = append([]string(nil), s.SafeDomains...)
	if out.DefaultDomain == "" {
		out.DefaultDomain = DefaultSettings().DefaultDomain
	}
	return out
}
