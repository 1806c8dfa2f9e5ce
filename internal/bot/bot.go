// Package bot implements the Fedora chat commands on top of the Matrix
// transport and the Fedora service clients.
package bot

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"Zodbot/internal/clients/bodhi"
	"Zodbot/internal/clients/bugzilla"
	"Zodbot/internal/clients/fasjson"
	"Zodbot/internal/clients/fedocal"
	"Zodbot/internal/clients/fedorastatus"
	"Zodbot/internal/clients/pagure"
	"Zodbot/internal/core/cookies"
	"Zodbot/internal/core/identity"
	"Zodbot/internal/core/oncall"
	"Zodbot/internal/matrix"
	"Zodbot/internal/metrics"
)

// NL ends a line in chat markdown
const NL = identity.LineBreak

const somethingBlewUp = "Something blew up, please try again"

// Options are the bot's static settings
type Options struct {
	Name        string
	Version     string
	Prefix      string
	ControlRoom string
}

// Deps are the services the commands use
type Deps struct {
	Chat     Chat
	Resolver IdentityResolver
	Groups   Groups
	Bugs     Bugs
	Issues   Issues
	DistGit  Projects
	Status   StatusPage
	Calendar Calendar
	Oncall   oncall.Service
	Cookies  cookies.Service
	Throttle Throttle
	Metrics  Metrics
	Logger   *zap.Logger
}

// Bot routes Matrix events to commands
type Bot struct {
	Deps
	router *Router
	now    func() time.Time
	opts   Options
}

// New creates a bot with every command registered
func New(opts Options, deps Deps) *Bot {
	if opts.Prefix == "" {
		opts.Prefix = "!"
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Metrics == nil {
		deps.Metrics = nopMetrics{}
	}

	b := &Bot{Deps: deps, opts: opts, now: time.Now, router: NewRouter(opts.Prefix)}
	b.router.Register(b.helpCommands()...)
	b.router.Register(b.fasCommands()...)
	b.router.Register(b.infraCommands()...)
	b.router.Register(b.cookieCommands()...)
	b.router.Register(b.trackerCommands()...)
	b.router.Register(b.meetingCommands()...)
	b.router.Register(b.gagCommands()...)
	return b
}

// HandleEvent implements matrix.EventHandler
func (b *Bot) HandleEvent(ctx context.Context, event matrix.Event) {
	if event.Sender == b.Chat.UserID() {
		return
	}

	switch event.Type {
	case matrix.EventMessage:
		content, err := event.Message()
		if err != nil {
			b.Logger.Debug("ignoring undecodable message", zap.String("event_id", event.EventID), zap.Error(err))
			return
		}
		if content.MsgType != matrix.MsgText && content.MsgType != matrix.MsgNotice {
			return
		}
		b.handleMessage(ctx, event, content)
	case matrix.EventReaction:
		relation, err := event.Reaction()
		if err != nil {
			return
		}
		b.handleReaction(ctx, event, relation)
	}
}

func (b *Bot) handleMessage(ctx context.Context, event matrix.Event, content *matrix.MessageContent) {
	cmd, path, args, ok := b.router.Match(content.Body)
	if !ok {
		b.handleCookieText(ctx, event, content)
		return
	}

	if b.Throttle != nil && !b.Throttle.Allow(event.Sender) {
		b.Logger.Debug("throttled command", zap.String("sender", event.Sender), zap.String("command", path))
		b.Metrics.IncCommand(path, metrics.OutcomeThrottled)
		return
	}

	req := &Request{Event: event, Content: content, Path: path, Args: args}
	if cmd.Handler == nil {
		b.respond(ctx, req, b.usage(cmd, path))
		b.Metrics.IncCommand(path, metrics.OutcomeOK)
		return
	}

	if err := cmd.Handler(ctx, req); err != nil {
		b.Metrics.IncCommand(path, metrics.OutcomeError)
		b.respond(ctx, req, b.userMessage(err, path))
		return
	}
	b.Metrics.IncCommand(path, metrics.OutcomeOK)
}

// respond sends md to the request's room
func (b *Bot) respond(ctx context.Context, req *Request, md string) {
	b.send(ctx, req.RoomID(), md, matrix.MarkdownOptions{})
}

// reply sends md as a reply to the request
func (b *Bot) reply(ctx context.Context, req *Request, md string) {
	b.send(ctx, req.RoomID(), md, matrix.MarkdownOptions{ReplyTo: req.Event.EventID})
}

func (b *Bot) send(ctx context.Context, roomID, md string, opts matrix.MarkdownOptions) {
	if _, err := b.Chat.SendMarkdown(ctx, roomID, md, opts); err != nil {
		b.Logger.Warn("failed to send message", zap.String("room", roomID), zap.Error(err))
	}
}

func (b *Bot) react(ctx context.Context, req *Request, key string) {
	if _, err := b.Chat.SendReaction(ctx, req.RoomID(), req.Event.EventID, key); err != nil {
		b.Logger.Warn("failed to react", zap.String("room", req.RoomID()), zap.Error(err))
	}
}

func (b *Bot) markRead(ctx context.Context, req *Request) {
	if err := b.Chat.MarkRead(ctx, req.RoomID(), req.Event.EventID); err != nil {
		b.Logger.Debug("failed to mark read", zap.String("room", req.RoomID()), zap.Error(err))
	}
}

// resolve finds the account a command argument refers to
func (b *Bot) resolve(ctx context.Context, req *Request, raw string) (*identity.Profile, error) {
	profile, err := b.Resolver.Resolve(ctx, raw, req.Message())
	if err != nil {
		outcome := "error"
		if kind, ok := identity.KindOf(err); ok {
			outcome = kind.String()
		}
		b.Metrics.IncResolution(outcome)
		b.Logger.Debug("identity resolution failed",
			zap.String("sender", req.Sender()), zap.String("subject", raw), zap.Error(err))
		return nil, err
	}
	b.Metrics.IncResolution("ok")
	return profile, nil
}

// userMessage turns a command failure into chat text. Failures that carry
// their own chat text are shown as-is; anything else is logged.
func (b *Bot) userMessage(err error, command string) string {
	var (
		identityErr *identity.Error
		groupErr    *fasjson.GroupNotFoundError
		bodhiErr    *bodhi.QueryError
		bugErr      *bugzilla.QueryError
		pagureErr   *pagure.QueryError
		statusErr   *fedorastatus.QueryError
		fedocalErr  *fedocal.QueryError
		givenErr    *cookies.AlreadyGivenError
	)
	switch {
	case errors.As(err, &identityErr):
		return identityErr.Message
	case errors.As(err, &groupErr),
		errors.As(err, &bodhiErr),
		errors.As(err, &bugErr),
		errors.As(err, &pagureErr),
		errors.As(err, &statusErr),
		errors.As(err, &fedocalErr),
		errors.As(err, &givenErr),
		errors.Is(err, cookies.ErrSelfGift):
		return err.Error()
	}

	var hint *usageError
	if errors.As(err, &hint) {
		return hint.message
	}

	b.Logger.Warn("command failed", zap.String("command", command), zap.Error(err))
	return somethingBlewUp
}

// usageError is a missing or malformed argument
type usageError struct {
	message string
}

func (e *usageError) Error() string { return e.message }

func usageHint(message string) error {
	return &usageError{message: message}
}

// joinOr joins values with sep, or returns fallback when there are none
func joinOr(values []string, sep, fallback string) string {
	if len(values) == 0 {
		return fallback
	}
	return strings.Join(values, sep)
}
