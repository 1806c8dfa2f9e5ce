package identity

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestParseMatrixID(t *testing.T) {
	id, err := ParseMatrixID("@dummy:fedora.im")
	require.NoError(t, err)
	assert.Equal(t, MatrixID{Localpart: "dummy", Domain: "fedora.im"}, id)
	assert.Equal(t, "@dummy:fedora.im", id.String())
	assert.Equal(t, "matrix://fedora.im/dummy", id.DirectoryNick())

	id, err = ParseMatrixID("@dummy:matrix.example.com:8448")
	require.NoError(t, err)
	assert.Equal(t, "matrix.example.com:8448", id.Domain)

	for _, bad := range []string{"", "dummy", "@dummy", "@:fedora.im", "@dummy:", "!room:fedora.im"} {
		_, err := ParseMatrixID(bad)
		assert.True(t, IsKind(err, KindMalformedProtocolID), bad)
	}
}

func TestParseNick(t *testing.T) {
	tests := []struct {
		nick string
		want MatrixID
		ok   bool
	}{
		{nick: "matrix://matrix.org/dummy", want: MatrixID{Localpart: "dummy", Domain: "matrix.org"}, ok: true},
		{nick: "matrix:/dummy", want: MatrixID{Localpart: "dummy", Domain: "fedora.im"}, ok: true},
		{nick: "irc:/dummy", ok: false},
		{nick: "matrix://matrix.org", ok: false},
		{nick: "matrix:/", ok: false},
		{nick: "dummy", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.nick, func(t *testing.T) {
			got, ok := ParseNick(tt.nick, "fedora.im")
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMatrixIDsFromNicks(t *testing.T) {
	ids := MatrixIDsFromNicks([]string{"irc:/dummy", "matrix:/dummy", "matrix://example.com/dummy2"}, "fedora.im")

	assert.Equal(t, []MatrixID{
		{Localpart: "dummy", Domain: "fedora.im"},
		{Localpart: "dummy2", Domain: "example.com"},
	}, ids)
	assert.Empty(t, MatrixIDsFromNicks(nil, "fedora.im"))
}

func TestProfile_UnmarshalKeepsExtraFields(t *testing.T) {
	data := []byte(`{
		"username": "dummy",
		"human_name": "Dummy User",
		"timezone": null,
		"pronouns": ["they / them"],
		"ircnicks": ["matrix:/dummy"],
		"certificates": null,
		"rssurl": "https://example.com/rss"
	}`)

	var p Profile
	require.NoError(t, json.Unmarshal(data, &p))

	want := Profile{
		Username:  "dummy",
		HumanName: "Dummy User",
		Pronouns:  []string{"they / them"},
		Ircnicks:  []string{"matrix:/dummy"},
		Extra: map[string]json.RawMessage{
			"certificates": json.RawMessage(`null`),
			"rssurl":       json.RawMessage(`"https://example.com/rss"`),
		},
	}
	if diff := cmp.Diff(want, p); diff != "" {
		t.Errorf("profile mismatch (-want +got):\n%s", diff)
	}
}

func TestProfile_KnownFieldsNeverLandInExtra(t *testing.T) {
	full := Profile{
		Username:  "dummy",
		HumanName: "Dummy User",
		Timezone:  "UTC",
		Locale:    "en-US",
		Creation:  "2020-01-01T00:00:00",
		Ircnicks:  []string{"irc:/dummy"},
		Pronouns:  []string{"they / them"},
		GPGKeyIDs: []string{"ABCD"},
		Emails:    []string{"dummy@example.com"},
	}
	data, err := json.Marshal(full)
	require.NoError(t, err)

	var decoded Profile
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.Nil(t, decoded.Extra)
	assert.ElementsMatch(t, []string{
		"username", "human_name", "timezone", "locale", "creation",
		"ircnicks", "pronouns", "gpgkeyids", "emails",
	}, profileFields)
}

func TestSettings_IsSafeDomain(t *testing.T) {
	s := DefaultSettings()
	assert.True(t, s.IsSafeDomain("fedora.im"))
	assert.True(t, s.IsSafeDomain("Fedora.IM"))
	assert.False(t, s.IsSafeDomain("matrix.org"))
	assert.False(t, Settings{}.IsSafeDomain("fedora.im"))
}
