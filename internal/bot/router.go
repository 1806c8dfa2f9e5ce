package bot

import (
	"context"
	"sort"
	"strings"

	"Zodbot/internal/core/identity"
	"Zodbot/internal/matrix"
)

// Request is one command invocation
type Request struct {
	Event   matrix.Event
	Content *matrix.MessageContent
	// Path is the command and subcommand names that matched, e.g. "infra oncall add"
	Path string
	// Args is everything after the matched command, trimmed
	Args string
}

// RoomID is the room the command was sent in
func (r *Request) RoomID() string { return r.Event.RoomID }

// Sender is the Matrix ID of the invoker
func (r *Request) Sender() string { return r.Event.Sender }

// Message is the part of the request the identity resolver reads
func (r *Request) Message() identity.Message {
	msg := identity.Message{Sender: r.Event.Sender}
	if r.Content != nil && r.Content.Format == matrix.FormatHTML {
		msg.FormattedBody = r.Content.FormattedBody
	}
	return msg
}

// HandlerFunc runs a command
type HandlerFunc func(ctx context.Context, req *Request) error

// Command is a chat command and its subcommands
type Command struct {
	Handler     HandlerFunc
	Name        string
	Args        string
	Help        string
	Doc         string
	Aliases     []string
	Subcommands []*Command
	Hidden      bool
}

func (c *Command) subcommand(name string) *Command {
	for _, sub := range c.Subcommands {
		if sub.Name == name {
			return sub
		}
	}
	return nil
}

// usageArgs is the argument summary shown in help listings
func (c *Command) usageArgs() string {
	if len(c.Subcommands) == 0 {
		return c.Args
	}
	names := make([]string, 0, len(c.Subcommands))
	for _, sub := range c.Subcommands {
		names = append(names, sub.Name)
	}
	return "<" + strings.Join(names, "|") + ">"
}

// Router finds commands by name or alias
type Router struct {
	commands map[string]*Command
	names    map[string]*Command
	prefix   string
}

// NewRouter creates a router for messages starting with prefix
func NewRouter(prefix string) *Router {
	return &Router{
		commands: make(map[string]*Command),
		names:    make(map[string]*Command),
		prefix:   prefix,
	}
}

// Register adds commands. A later registration of the same name wins.
func (r *Router) Register(cmds ...*Command) {
	for _, cmd := range cmds {
		r.commands[cmd.Name] = cmd
		r.names[cmd.Name] = cmd
		for _, alias := range cmd.Aliases {
			r.names[alias] = cmd
		}
	}
}

// Lookup finds a command by name or alias
func (r *Router) Lookup(name string) (*Command, bool) {
	cmd, ok := r.names[strings.TrimPrefix(name, r.prefix)]
	return cmd, ok
}

// Visible returns the commands shown in help, sorted by name
func (r *Router) Visible() []*Command {
	var cmds []*Command
	for _, cmd := range r.commands {
		if !cmd.Hidden {
			cmds = append(cmds, cmd)
		}
	}
	sort.Slice(cmds, func(i, j int) bool { return cmds[i].Name < cmds[j].Name })
	return cmds
}

// Match parses body into a command. Subcommands are followed as long as the
// next word names one. ok is false when body is not a known command.
func (r *Router) Match(body string) (cmd *Command, path, args string, ok bool) {
	if r.prefix == "" || !strings.HasPrefix(body, r.prefix) {
		return nil, "", "", false
	}
	name, rest := cutWord(strings.TrimPrefix(body, r.prefix))
	cmd, ok = r.names[name]
	if !ok {
		return nil, "", "", false
	}

	path = cmd.Name
	for len(cmd.Subcommands) > 0 {
		word, after := cutWord(rest)
		sub := cmd.subcommand(word)
		if sub == nil {
			break
		}
		cmd, rest = sub, after
		path += " " + sub.Name
	}
	return cmd, path, strings.TrimSpace(rest), true
}

// cutWord splits off the first whitespace separated word
func cutWord(s string) (word, rest string) {
	s = strings.TrimLeft(s, " \t\n")
	if i := strings.IndexAny(s, " \t\n"); i >= 0 {
		return s[:i], s[i+1:]
	}
	return s, ""
}
