package matrix

import (
	"encoding/json"
	"fmt"

	"maunium.net/go/mautrix/event"
)

// Event types and message kinds the bot deals with
const (
	EventMessage  = "m.room.message"
	EventReaction = "m.reaction"

	MsgText   = event.MsgText
	MsgNotice = event.MsgNotice

	FormatHTML = event.FormatHTML

	RelAnnotation = event.RelAnnotation
)

// MessageContent is the content of an m.room.message event
type MessageContent = event.MessageEventContent

// RelatesTo links an event to another one
type RelatesTo = event.RelatesTo

// Event is a room event reduced to what the bot reads. Content stays raw
// so handlers decode only the events they care about.
type Event struct {
	Content        json.RawMessage
	EventID        string
	Type           string
	Sender         string
	RoomID         string
	OriginServerTS int64
}

// FromMautrix flattens a decoded homeserver event
func FromMautrix(evt *event.Event) Event {
	return Event{
		Content:        evt.Content.VeryRaw,
		EventID:        evt.ID.String(),
		Type:           evt.Type.Type,
		Sender:         evt.Sender.String(),
		RoomID:         evt.RoomID.String(),
		OriginServerTS: evt.Timestamp,
	}
}

// Message decodes the content of an m.room.message event
func (e *Event) Message() (*MessageContent, error) {
	if e.Type != EventMessage {
		return nil, fmt.Errorf("matrix: event %s is %s, not a message", e.EventID, e.Type)
	}
	var content MessageContent
	if err := json.Unmarshal(e.Content, &content); err != nil {
		return nil, fmt.Errorf("matrix: failed to decode message %s: %w", e.EventID, err)
	}
	return &content, nil
}

// Reaction decodes the content of an m.reaction event
func (e *Event) Reaction() (*RelatesTo, error) {
	if e.Type != EventReaction {
		return nil, fmt.Errorf("matrix: event %s is %s, not a reaction", e.EventID, e.Type)
	}
	var content event.ReactionEventContent
	if err := json.Unmarshal(e.Content, &content); err != nil {
		return nil, fmt.Errorf("matrix: failed to decode reaction %s: %w", e.EventID, err)
	}
	if content.RelatesTo.EventID == "" {
		return nil, fmt.Errorf("matrix: reaction %s relates to nothing", e.EventID)
	}
	return &content.RelatesTo, nil
}
