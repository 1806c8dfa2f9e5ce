package bot

import (
	"context"
	"fmt"
	"strings"
)

// pagureAliases are shortcuts for the pagure.io trackers people ask about most
var pagureAliases = []struct {
	name, project, help string
}{
	{"fpc", "packaging-committee", "Get a Summary of a ticket from the packaging-committee ticket tracker"},
	{"epel", "epel", "Get a Summary of a ticket from the epel ticket tracker"},
	{"fesco", "fesco", "Get a Summary of a ticket from the fesco ticket tracker"},
}

func (b *Bot) trackerCommands() []*Command {
	cmds := []*Command{
		{
			Name:    "bug",
			Args:    "<bug_id>",
			Help:    "return a bugzilla bug",
			Handler: b.bug,
		},
		{
			Name: "pagureissue",
			Args: "<project> <issue_id>",
			Help: "return a pagure issue",
			Doc: "Show a summary of a Pagure issue" + NL +
				"#### Arguments ####" + NL +
				"* `project`: a project in pagure.io" + NL +
				"* `issue_id`: the issue number",
			Handler: b.pagureIssue,
		},
		{
			Name:    "whoowns",
			Args:    "<package>",
			Help:    "Retrieve the owner of a given package",
			Doc:     "#### Arguments ####" + NL + "* `package`: A Fedora package name",
			Handler: b.whoowns,
		},
	}
	for _, alias := range pagureAliases {
		project := alias.project
		cmds = append(cmds, &Command{
			Name: alias.name,
			Args: "<issue_id>",
			Help: alias.help,
			Doc:  fmt.Sprintf("Show a summary of an issue in the `%s` pagure.io project", project),
			Handler: func(ctx context.Context, req *Request) error {
				id, _ := cutWord(req.Args)
				if id == "" {
					return usageHint(fmt.Sprintf("issue_id argument is required. e.g. `%s%s 1234`", b.opts.Prefix, req.Path))
				}
				return b.showIssue(ctx, req, project, id)
			},
		})
	}
	return cmds
}

func (b *Bot) bug(ctx context.Context, req *Request) error {
	id, _ := cutWord(req.Args)
	if id == "" {
		return usageHint(fmt.Sprintf("bug_id argument is required. e.g. `%sbug 1234567`", b.opts.Prefix))
	}

	bug, err := b.Bugs.GetBug(ctx, id)
	if err != nil {
		return err
	}

	message := fmt.Sprintf("[RHBZ#%s](%s): ", id, b.Bugs.BugURL(id))
	if len(bug.Component) > 0 {
		message += "[" + strings.Join(bug.Component, ", ") + "]: "
	}
	b.respond(ctx, req, message+bug.Summary)
	return nil
}

func (b *Bot) pagureIssue(ctx context.Context, req *Request) error {
	project, rest := cutWord(req.Args)
	id, _ := cutWord(rest)
	if project == "" || id == "" {
		return usageHint(fmt.Sprintf("project and issue_id arguments are required. e.g. `%spagureissue fesco 1234`", b.opts.Prefix))
	}
	return b.showIssue(ctx, req, project, id)
}

func (b *Bot) showIssue(ctx context.Context, req *Request, project, id string) error {
	issue, err := b.Issues.GetIssue(ctx, project, id)
	if err != nil {
		return err
	}
	b.respond(ctx, req, fmt.Sprintf("[%s #%s](%s): %s", project, id, issue.FullURL, issue.Title))
	return nil
}

func (b *Bot) whoowns(ctx context.Context, req *Request) error {
	pkg, _ := cutWord(req.Args)
	if pkg == "" {
		return usageHint(fmt.Sprintf("package argument is required. e.g. `%swhoowns kernel`", b.opts.Prefix))
	}

	project, err := b.DistGit.GetProject(ctx, "rpms", pkg)
	if err != nil {
		return err
	}

	var out strings.Builder
	for _, line := range []struct {
		label string
		users []string
	}{
		{"owner", project.AccessUsers.Owner},
		{"admin", project.AccessUsers.Admin},
		{"commit", project.AccessUsers.Commit},
	} {
		if len(line.users) > 0 {
			out.WriteString("__" + line.label + ":__ " + strings.Join(line.users, ", ") + NL)
		}
	}
	if out.Len() == 0 {
		out.WriteString("rpms/" + pkg + " has no owners")
	}
	b.respond(ctx, req, out.String())
	return nil
}
