package bot

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"
	"time"

	"Zodbot/internal/clients/fedorastatus"
	"Zodbot/internal/core/oncall"
	"Zodbot/internal/matrix"
)

const fileTicketHint = "\nIf they do not respond, please [file a ticket](https://pagure.io/fedora-infrastructure/issues)"

func (b *Bot) infraCommands() []*Command {
	return []*Command{
		{
			Name:    "oncall",
			Help:    "List the Fedora Infrastructure members currently on call",
			Handler: b.oncallAlias,
		},
		{
			Name: "infra",
			Help: "Fedora Infrastructure commands",
			Subcommands: []*Command{
				{
					Name: "oncall",
					Help: "oncall",
					Subcommands: []*Command{
						{
							Name:    "list",
							Help:    "List the Fedora Infrastructure members currently on call",
							Handler: b.oncallList,
						},
						{
							Name:    "add",
							Args:    "[username]",
							Help:    "Add a user to the current oncall list",
							Handler: b.oncallAdd,
						},
						{
							Name:    "remove",
							Args:    "[username]",
							Help:    "Remove a user from the current oncall list",
							Handler: b.oncallRemove,
						},
					},
				},
				{
					Name:    "status",
					Help:    "get a list of the ongoing and planned outages",
					Handler: b.infraStatus,
				},
			},
		},
	}
}

func (b *Bot) oncallAlias(ctx context.Context, req *Request) error {
	if req.Args != "" {
		b.respond(ctx, req, fmt.Sprintf("`%soncall` is an alias to `%sinfra oncall list` please use "+
			"the `%sinfra oncall` command for changing the oncall list", b.opts.Prefix, b.opts.Prefix, b.opts.Prefix))
		return nil
	}
	return b.oncallList(ctx, req)
}

func (b *Bot) oncallList(ctx context.Context, req *Request) error {
	b.markRead(ctx, req)

	entries, err := b.Oncall.List(ctx)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		b.respond(ctx, req, "No one from Fedora Infrastructure is currently on call")
		return nil
	}

	var out strings.Builder
	out.WriteString("The following people are oncall:" + NL)
	for _, entry := range entries {
		fmt.Fprintf(&out, "* %s (%s) Current Time for them: %s (%s)%s",
			formatMXID(entry.MXID), entry.Username, b.clockIn(entry.Timezone), entry.Timezone, NL)
	}
	out.WriteString(fileTicketHint)

	b.send(ctx, req.RoomID(), out.String(), matrix.MarkdownOptions{AllowHTML: true})
	return nil
}

func (b *Bot) oncallAdd(ctx context.Context, req *Request) error {
	if req.RoomID() != b.opts.ControlRoom {
		b.reply(ctx, req, "Sorry, adding to the oncall list can only be done from the controlroom")
		return nil
	}
	b.markRead(ctx, req)

	user, err := b.resolve(ctx, req, req.Args)
	if err != nil {
		return err
	}

	if _, err := b.Oncall.Add(ctx, user); err != nil {
		if errors.Is(err, oncall.ErrAlreadyOnCall) {
			b.respond(ctx, req, user.Username+" is already on the oncall list")
			return nil
		}
		return err
	}
	b.respond(ctx, req, user.Username+" has been added to the oncall list")
	return nil
}

func (b *Bot) oncallRemove(ctx context.Context, req *Request) error {
	if req.RoomID() != b.opts.ControlRoom {
		b.reply(ctx, req, "Sorry, removing from the oncall list can only be done from the controlroom")
		return nil
	}
	b.markRead(ctx, req)

	user, err := b.resolve(ctx, req, req.Args)
	if err != nil {
		return err
	}

	if err := b.Oncall.Remove(ctx, user.Username); err != nil {
		if errors.Is(err, oncall.ErrNotOnCall) {
			b.reply(ctx, req, user.Username+" is not currently on the oncall list")
			return nil
		}
		return err
	}
	b.reply(ctx, req, user.Username+" has been removed from the oncall list")
	return nil
}

func (b *Bot) infraStatus(ctx context.Context, req *Request) error {
	ongoing, err := b.Status.Outages(ctx, fedorastatus.Ongoing)
	if err != nil {
		return err
	}
	planned, err := b.Status.Outages(ctx, fedorastatus.Planned)
	if err != nil {
		return err
	}

	var out strings.Builder
	fmt.Fprintf(&out, "I checked [Fedora Status](%s) and there are ", b.Status.URL())
	if len(ongoing) == 0 && len(planned) == 0 {
		out.WriteString("**no planned or ongoing outages on Fedora Infrastructure.**" + NL)
		b.respond(ctx, req, out.String())
		return nil
	}

	fmt.Fprintf(&out, "**%d ongoing** and **%d planned** outages on Fedora Infrastructure.%s", len(ongoing), len(planned), NL)
	if len(ongoing) > 0 {
		out.WriteString("##### Ongoing" + NL)
		for _, outage := range ongoing {
			out.WriteString(" * " + outageTitle(outage) + NL)
			out.WriteString("   Started at: " + outage.StartDate + NL)
			out.WriteString("   Estimated to end: " + orUnknown(outage.EndDate) + NL)
		}
	}
	if len(planned) > 0 {
		out.WriteString("##### Planned" + NL)
		for _, outage := range planned {
			out.WriteString(" * " + outageTitle(outage) + NL)
			out.WriteString("   Scheduled to start at: " + outage.StartDate + NL)
			out.WriteString("   Scheduled to end at: " + orUnknown(outage.EndDate) + NL)
		}
	}
	b.respond(ctx, req, out.String())
	return nil
}

// clockIn is the current wall clock time in tz, or UTC when tz is unknown
func (b *Bot) clockIn(tz string) string {
	loc, err := time.LoadLocation(tz)
	if err != nil {
		loc = time.UTC
	}
	return b.now().In(loc).Format("15:04")
}

func formatMXID(mxid string) string {
	escaped := html.EscapeString(mxid)
	return fmt.Sprintf(`<a href="https://matrix.to/#/%s">%s</a>`, escaped, escaped)
}

func outageTitle(outage fedorastatus.Outage) string {
	if outage.Ticket != nil && outage.Ticket.URL != "" {
		return fmt.Sprintf("**[%s](%s)**", outage.Title, outage.Ticket.URL)
	}
	return "**" + outage.Title + "**"
}

func orUnknown(s string) string {
	if s == "" {
		return "Unknown"
	}
	return s
}
