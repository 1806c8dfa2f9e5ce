package bot

import (
	"context"
	"fmt"
	"strings"
)

func (b *Bot) helpCommands() []*Command {
	return []*Command{
		{
			Name:    "help",
			Args:    "[commandname]",
			Help:    "list commands",
			Handler: b.help,
		},
		{
			Name:    "version",
			Help:    "return information about this bot",
			Handler: b.version,
		},
	}
}

func (b *Bot) help(ctx context.Context, req *Request) error {
	if req.Args != "" {
		cmd, path, _, ok := b.router.Match(b.opts.Prefix + strings.TrimPrefix(req.Args, b.opts.Prefix))
		if !ok {
			b.respond(ctx, req, fmt.Sprintf("`%s` is not a valid command", req.Args))
			return nil
		}
		b.respond(ctx, req, b.usage(cmd, path))
		return nil
	}

	var out strings.Builder
	for _, cmd := range b.router.Visible() {
		out.WriteString("`" + b.opts.Prefix + strings.TrimSpace(cmd.Name+" "+cmd.usageArgs()) + "`:: " + cmd.Help + NL)
	}
	b.respond(ctx, req, out.String())
	return nil
}

// usage describes a command, its subcommands and its documentation
func (b *Bot) usage(cmd *Command, path string) string {
	var out strings.Builder
	out.WriteString("**Usage:** " + b.opts.Prefix + strings.TrimSpace(path+" "+cmd.usageArgs()))
	if cmd.Help != "" {
		out.WriteString(" - " + cmd.Help)
	}
	out.WriteString(NL)

	for _, sub := range cmd.Subcommands {
		out.WriteString("* " + strings.TrimSpace(sub.Name+" "+sub.usageArgs()))
		if sub.Help != "" {
			out.WriteString(" - " + sub.Help)
		}
		out.WriteString(NL)
	}
	if cmd.Doc != "" {
		out.WriteString("\n" + cmd.Doc)
	}
	return out.String()
}

func (b *Bot) version(ctx context.Context, req *Request) error {
	b.respond(ctx, req, fmt.Sprintf("%s version %s", b.opts.Name, b.opts.Version))
	return nil
}
