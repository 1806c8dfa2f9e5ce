package bot

import (
	"context"
	"fmt"
	"strings"
	"time"

	"Zodbot/internal/clients/fasjson"
	"Zodbot/internal/core/identity"
)

// maxListedMembers caps the group members the bot will paste into a room
const maxListedMembers = 200

const usernameDoc = "#### Arguments ####" + NL +
	"* `username`: A Fedora Accounts username or a Matrix User ID (e.g. @username:fedora.im)"

func (b *Bot) fasCommands() []*Command {
	return []*Command{
		{
			Name:    "hello",
			Aliases: []string{"hi", "hello2", "hellomynameis"},
			Args:    "[username]",
			Help:    "Return brief information about a Fedora user.",
			Doc: "Returns a short line of information about the user. If no username is provided, " +
				"defaults to the sender of the message." + NL + usernameDoc,
			Handler: b.hello,
		},
		{
			Name:    "user",
			Aliases: []string{"fasinfo"},
			Args:    "[username]",
			Help:    "Return brief information about a Fedora user.",
			Doc: "Returns information from Fedora Accounts about the user. If no username is provided, " +
				"defaults to the sender of the message." + NL + usernameDoc,
			Handler: b.userInfo,
		},
		{
			Name:    "localtime",
			Args:    "[username]",
			Help:    "Returns the current time of the user.",
			Doc:     "Returns the current time of the user. The timezone is queried from Fedora Accounts." + NL + usernameDoc,
			Handler: b.localtime,
		},
		{
			Name: "group",
			Help: "Query information about Fedora Accounts groups",
			Subcommands: []*Command{
				{
					Name:    "members",
					Args:    "<groupname>",
					Help:    "Return a list of members of the specified group",
					Handler: b.groupMembership(fasjson.Members),
				},
				{
					Name:    "sponsors",
					Args:    "<groupname>",
					Help:    "Return a list of owners of the specified group",
					Handler: b.groupMembership(fasjson.Sponsors),
				},
				{
					Name:    "info",
					Args:    "<groupname>",
					Help:    "Return information about the specified group",
					Handler: b.groupInfo,
				},
			},
		},
	}
}

func (b *Bot) hello(ctx context.Context, req *Request) error {
	user, err := b.resolve(ctx, req, req.Args)
	if err != nil {
		return err
	}

	message := fmt.Sprintf("%s (%s)", user.HumanName, user.Username)
	if len(user.Pronouns) > 0 {
		message += " - " + strings.Join(user.Pronouns, " or ")
	}
	b.respond(ctx, req, message)
	return nil
}

func (b *Bot) userInfo(ctx context.Context, req *Request) error {
	user, err := b.resolve(ctx, req, req.Args)
	if err != nil {
		return err
	}

	b.respond(ctx, req, ""+
		"User: "+user.Username+","+NL+
		"Name: "+orNone(user.HumanName)+","+NL+
		"Pronouns: "+joinOr(user.Pronouns, " or ", "unset")+","+NL+
		"Creation: "+orNone(user.Creation)+","+NL+
		"Timezone: "+orNone(user.Timezone)+","+NL+
		"Locale: "+orNone(user.Locale)+","+NL+
		"GPG Key IDs: "+joinOr(user.GPGKeyIDs, " and ", "None")+NL)
	return nil
}

func (b *Bot) localtime(ctx context.Context, req *Request) error {
	user, err := b.resolve(ctx, req, req.Args)
	if err != nil {
		return err
	}

	if user.Timezone == "" {
		b.reply(ctx, req, fmt.Sprintf("User %q doesn't share their timezone", user.Username))
		return nil
	}
	loc, err := time.LoadLocation(user.Timezone)
	if err != nil {
		b.reply(ctx, req, fmt.Sprintf("The timezone of %q was unknown: %q", user.Username, user.Timezone))
		return nil
	}

	b.respond(ctx, req, fmt.Sprintf("The current local time of %q is: %q (timezone: %s)",
		user.Username, b.now().In(loc).Format("15:04"), user.Timezone))
	return nil
}

func (b *Bot) groupMembership(kind fasjson.MembershipType) HandlerFunc {
	return func(ctx context.Context, req *Request) error {
		groupname, _ := cutWord(req.Args)
		if groupname == "" {
			return usageHint(fmt.Sprintf("groupname argument is required. e.g. `%sgroup %s designteam`", b.opts.Prefix, kind))
		}

		members, err := b.Groups.GetGroupMembership(ctx, groupname, kind)
		if err != nil {
			return err
		}

		if kind == fasjson.Members && len(members) > maxListedMembers {
			b.respond(ctx, req, fmt.Sprintf("%s has %d and thats too much to dump here", groupname, len(members)))
			return nil
		}

		title := "Members"
		if kind == fasjson.Sponsors {
			title = "Sponsors"
		}
		b.respond(ctx, req, fmt.Sprintf("%s of %s: %s", title, groupname, strings.Join(usernames(members), ", ")))
		return nil
	}
}

func (b *Bot) groupInfo(ctx context.Context, req *Request) error {
	groupname, _ := cutWord(req.Args)
	if groupname == "" {
		return usageHint(fmt.Sprintf("groupname argument is required. e.g. `%sgroup info designteam`", b.opts.Prefix))
	}

	group, err := b.Groups.GetGroup(ctx, groupname)
	if err != nil {
		return err
	}

	chat := "None"
	if len(group.IRC) > 0 {
		chat = "`" + strings.Join(group.IRC, "` and `") + "`"
	}
	b.respond(ctx, req, ""+
		"**Group Name:** "+group.Groupname+NL+
		"**Description:** "+orNone(group.Description)+NL+
		"**URL:** "+orNone(group.URL)+","+NL+
		"**Mailing List:** "+orNone(group.MailingList)+NL+
		"**Chat:** "+chat+NL)
	return nil
}

func usernames(profiles []*identity.Profile) []string {
	names := make([]string, 0, len(profiles))
	for _, p := range profiles {
		names = append(names, p.Username)
	}
	return names
}

func orNone(s string) string {
	if s == "" {
		return "None"
	}
	return s
}
