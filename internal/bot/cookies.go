package bot

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"Zodbot/internal/core/identity"
	"Zodbot/internal/matrix"
)

const cookieEmoji = "🍪"

var (
	cookieTextPattern = regexp.MustCompile(`^([\w.-]+)\+\+`)
	cookieHTMLPattern = regexp.MustCompile(`^<a href=['"]?http[s]?://matrix.to/#/([^'" >]+)['" >][^>]*>[^<]+</a>:?\s?\+\+`)
)

func (b *Bot) cookieCommands() []*Command {
	return []*Command{
		{
			Name: "cookie",
			Help: "Commands for the cookie system",
			Subcommands: []*Command{
				{
					Name:    "give",
					Args:    "<username>",
					Help:    "Give a cookie to another Fedora contributor",
					Handler: b.cookieGive,
				},
				{
					Name:    "count",
					Args:    "[username]",
					Help:    "Return the cookie count for a user",
					Handler: b.cookieCount,
				},
			},
		},
	}
}

func (b *Bot) cookieGive(ctx context.Context, req *Request) error {
	username, _ := cutWord(req.Args)
	if username == "" {
		return usageHint(fmt.Sprintf("username argument is required. e.g. `%scookie give mattdm`", b.opts.Prefix))
	}

	to, err := b.resolve(ctx, req, username)
	if err != nil {
		return err
	}
	message, err := b.giveCookie(ctx, req.Sender(), to)
	if err != nil {
		return err
	}
	b.respond(ctx, req, message)
	return nil
}

func (b *Bot) cookieCount(ctx context.Context, req *Request) error {
	username, _ := cutWord(req.Args)
	user, err := b.resolve(ctx, req, username)
	if err != nil {
		return err
	}

	tally, err := b.Cookies.Count(ctx, user.Username)
	if err != nil {
		return err
	}
	if tally.Total == 0 {
		b.respond(ctx, req, user.Username+" has no cookies")
		return nil
	}

	var out strings.Builder
	fmt.Fprintf(&out, "%s has %d cookies:%s", user.Username, tally.Total, NL)
	for _, rc := range tally.ByRelease {
		fmt.Fprintf(&out, " * Fedora %s: %d cookies%s", rc.Release, rc.Count, NL)
	}
	b.respond(ctx, req, out.String())
	return nil
}

// giveCookie records a cookie from the account behind sender to the
// recipient and returns the chat announcement
func (b *Bot) giveCookie(ctx context.Context, sender string, to *identity.Profile) (string, error) {
	if unescaped, err := url.PathUnescape(sender); err == nil {
		sender = unescaped
	}
	from, err := b.Resolver.Resolve(ctx, "", identity.Message{Sender: sender})
	if err != nil {
		return "", err
	}

	receipt, err := b.Cookies.Give(ctx, from.Username, to.Username)
	if err != nil {
		return "", err
	}
	b.Metrics.IncCookiesGiven()

	total := receipt.Tally.Total
	plural, verb := "s", "were"
	if total == 1 {
		plural, verb = "", "was"
	}
	return fmt.Sprintf("%s gave a cookie to %s. They now have %d cookie%s, %d of which %s obtained in the Fedora %s release cycle",
		receipt.From, receipt.To, total, plural, receipt.Tally.CountFor(receipt.Release), verb, receipt.Release), nil
}

// cookieTarget finds a "name++" or "<mention>++" at the start of a message
func cookieTarget(content *matrix.MessageContent) string {
	pattern, text := cookieTextPattern, content.Body
	if content.Format == matrix.FormatHTML && content.FormattedBody != "" {
		pattern, text = cookieHTMLPattern, content.FormattedBody
	}
	m := pattern.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return m[1]
}

func (b *Bot) handleCookieText(ctx context.Context, event matrix.Event, content *matrix.MessageContent) {
	target := cookieTarget(content)
	if target == "" {
		return
	}

	req := &Request{Event: event, Content: content, Path: "cookie++", Args: target}
	if b.Throttle != nil && !b.Throttle.Allow(event.Sender) {
		b.Logger.Debug("throttled cookie", zap.String("sender", event.Sender))
		return
	}
	b.markRead(ctx, req)

	message, err := b.passiveCookie(ctx, req, target)
	if err != nil {
		message = b.userMessage(err, req.Path)
	}
	b.respond(ctx, req, message)
}

func (b *Bot) passiveCookie(ctx context.Context, req *Request, target string) (string, error) {
	to, err := b.resolve(ctx, req, target)
	if err != nil {
		return "", err
	}
	return b.giveCookie(ctx, req.Sender(), to)
}

func (b *Bot) handleReaction(ctx context.Context, event matrix.Event, relation *matrix.RelatesTo) {
	if relation.Key != cookieEmoji || relation.EventID == "" {
		return
	}

	original, err := b.Chat.GetEvent(ctx, event.RoomID, relation.EventID.String())
	if err != nil {
		b.Logger.Warn("failed to fetch reacted event", zap.String("room", event.RoomID), zap.Error(err))
		return
	}

	var message string
	to, err := b.Resolver.Resolve(ctx, "", identity.Message{Sender: original.Sender})
	if err == nil {
		message, err = b.giveCookie(ctx, event.Sender, to)
	}
	if err != nil {
		message = b.userMessage(err, "cookie reaction")
	}
	b.send(ctx, event.RoomID, message, matrix.MarkdownOptions{})
}
