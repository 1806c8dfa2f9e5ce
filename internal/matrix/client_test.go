package matrix

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"maunium.net/go/mautrix"
	"maunium.net/go/mautrix/event"
	"maunium.net/go/mautrix/id"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(ClientConfig{
		HTTPClient:    server.Client(),
		HomeserverURL: server.URL + "/",
		AccessToken:   "secret",
		UserID:        "@zodbot:fedora.im",
	})
	require.NoError(t, err)
	return client
}

func TestNewClient_Validation(t *testing.T) {
	_, err := NewClient(ClientConfig{AccessToken: "x"})
	assert.Error(t, err)
	_, err = NewClient(ClientConfig{HomeserverURL: "https://fedora.im"})
	assert.Error(t, err)
}

func TestWhoAmI(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/_matrix/client/v3/account/whoami", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"user_id": "@bot:fedora.im"}`))
	})

	userID, err := client.WhoAmI(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "@bot:fedora.im", userID)
	assert.Equal(t, "@bot:fedora.im", client.UserID())
}

func TestSendMarkdown_Reply(t *testing.T) {
	var content MessageContent
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.True(t, strings.HasPrefix(r.URL.Path, "/_matrix/client/v3/rooms/!room:fedora.im/send/m.room.message/zodbot-"), r.URL.Path)
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &content))
		_, _ = w.Write([]byte(`{"event_id": "$sent"}`))
	})

	eventID, err := client.SendMarkdown(context.Background(), "!room:fedora.im", "**hi**", MarkdownOptions{ReplyTo: "$orig"})

	require.NoError(t, err)
	assert.Equal(t, "$sent", eventID)
	assert.Equal(t, MsgNotice, content.MsgType)
	assert.Equal(t, "**hi**", content.Body)
	assert.Equal(t, FormatHTML, content.Format)
	assert.Equal(t, "<strong>hi</strong>", content.FormattedBody)
	require.NotNil(t, content.RelatesTo)
	require.NotNil(t, content.RelatesTo.InReplyTo)
	assert.Equal(t, id.EventID("$orig"), content.RelatesTo.InReplyTo.EventID)
}

func TestSendReaction(t *testing.T) {
	var content event.ReactionEventContent
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Path, "/send/m.reaction/zodbot-")
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &content))
		_, _ = w.Write([]byte(`{"event_id": "$r"}`))
	})

	eventID, err := client.SendReaction(context.Background(), "!room:fedora.im", "$msg", "🔥")

	require.NoError(t, err)
	assert.Equal(t, "$r", eventID)
	assert.Equal(t, RelatesTo{Type: RelAnnotation, EventID: "$msg", Key: "🔥"}, content.RelatesTo)
}

func TestGetEvent(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/_matrix/client/v3/rooms/!room:fedora.im/event/$msg", r.URL.Path)
		_, _ = w.Write([]byte(`{"event_id": "$msg", "type": "m.room.message", "sender": "@alice:fedora.im",
			"content": {"msgtype": "m.text", "body": "hello"}}`))
	})

	event, err := client.GetEvent(context.Background(), "!room:fedora.im", "$msg")

	require.NoError(t, err)
	assert.Equal(t, "$msg", event.EventID)
	assert.Equal(t, "@alice:fedora.im", event.Sender)
	assert.Equal(t, "!room:fedora.im", event.RoomID)
	msg, err := event.Message()
	require.NoError(t, err)
	assert.Equal(t, "hello", msg.Body)
	_, err = event.Reaction()
	assert.Error(t, err)
}

func TestMatrixErrors(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.Path, "/receipt/") {
			w.WriteHeader(http.StatusForbidden)
			_, _ = w.Write([]byte(`{"errcode": "M_FORBIDDEN", "error": "not in room"}`))
			return
		}
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`<html>internal error</html>`))
	})

	err := client.MarkRead(context.Background(), "!room:fedora.im", "$msg")
	require.Error(t, err)
	assert.True(t, errors.Is(err, mautrix.MForbidden))

	err = client.JoinRoom(context.Background(), "!room:fedora.im")
	require.Error(t, err)
	assert.False(t, errors.Is(err, mautrix.MForbidden))
	assert.Contains(t, err.Error(), "join room !room:fedora.im failed")
}

func TestSync(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/_matrix/client/v3/sync", r.URL.Path)
		assert.Equal(t, "s1", r.URL.Query().Get("since"))
		assert.Equal(t, "30000", r.URL.Query().Get("timeout"))
		_, _ = w.Write([]byte(`{"next_batch": "s2", "rooms": {
			"join": {"!a:fedora.im": {"timeline": {"events": [{"event_id": "$1", "type": "m.room.message", "sender": "@x:fedora.im", "content": {}}]}}},
			"invite": {"!b:fedora.im": {}}}}`))
	})

	resp, err := client.Sync(context.Background(), "s1", 30*time.Second)

	require.NoError(t, err)
	assert.Equal(t, "s2", resp.NextBatch)
	require.Contains(t, resp.Rooms.Join, id.RoomID("!a:fedora.im"))
	assert.Len(t, resp.Rooms.Join["!a:fedora.im"].Timeline.Events, 1)
	assert.Contains(t, resp.Rooms.Invite, id.RoomID("!b:fedora.im"))
}

func TestFromMautrix(t *testing.T) {
	var evt event.Event
	require.NoError(t, json.Unmarshal([]byte(`{"event_id": "$e", "type": "m.reaction", "sender": "@alice:fedora.im",
		"room_id": "!room:fedora.im", "origin_server_ts": 42,
		"content": {"m.relates_to": {"rel_type": "m.annotation", "event_id": "$target", "key": "🍪"}}}`), &evt))

	converted := FromMautrix(&evt)

	assert.Equal(t, "$e", converted.EventID)
	assert.Equal(t, EventReaction, converted.Type)
	assert.Equal(t, "!room:fedora.im", converted.RoomID)
	assert.Equal(t, int64(42), converted.OriginServerTS)
	relation, err := converted.Reaction()
	require.NoError(t, err)
	assert.Equal(t, id.EventID("$target"), relation.EventID)
	_, err = converted.Message()
	assert.Error(t, err)
}
