package bot

import (
	"context"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// listedMeetings is how many upcoming meetings nextmeetings shows
const listedMeetings = 3

func (b *Bot) meetingCommands() []*Command {
	return []*Command{
		{
			Name:    "nextmeetings",
			Help:    "Get the next 3 meetings",
			Handler: b.nextMeetings,
		},
	}
}

func (b *Bot) nextMeetings(ctx context.Context, req *Request) error {
	b.markRead(ctx, req)

	now := b.now().UTC()
	meetings, err := b.Calendar.FutureMeetings(ctx, now)
	if err != nil {
		return err
	}

	var out strings.Builder
	out.WriteString("The next meetings in FedoCal are:" + NL)
	for i, m := range meetings {
		if i == listedMeetings {
			break
		}
		out.WriteString("- " + m.Name + " (starting " + startingIn(now, m.Start) + ")" + NL)
	}
	if len(meetings) == 0 {
		out.WriteString("There are no future meetings in FedoCal." + NL)
	}

	room := req.RoomID()
	found := false
	for _, m := range meetings {
		if room != "" && strings.Contains(m.Location, room) {
			out.WriteString("The next meeting in this room (" + room + ") is: '" + m.Name + "' (starting " + startingIn(now, m.Start) + ")")
			found = true
			break
		}
	}
	if !found {
		out.WriteString("There are no future meetings in FedoCal for this room (" + room + ").")
	}

	b.respond(ctx, req, out.String())
	return nil
}

// startingIn renders the distance to a future start, e.g. "in 3 days"
func startingIn(now, start time.Time) string {
	return "in " + strings.TrimSpace(humanize.RelTime(now, start, "", ""))
}
