package bot

import (
	"context"
	"fmt"
)

// Old zodbot had a lot of fun little gags; a few live on here.
func (b *Bot) gagCommands() []*Command {
	return []*Command{
		{
			Name:   "fire",
			Args:   "<firee>",
			Hidden: true,
			Handler: func(ctx context.Context, req *Request) error {
				firee, _ := cutWord(req.Args)
				if firee == "" {
					return usageHint(fmt.Sprintf("firee argument is required. e.g. `%sfire adamw`", b.opts.Prefix))
				}
				b.gag(ctx, req, "🔥", "adamw fires "+firee)
				return nil
			},
		},
		{
			Name:   "cake",
			Hidden: true,
			Handler: func(ctx context.Context, req *Request) error {
				b.gag(ctx, req, "🍰", fmt.Sprintf("here %s, take your slice of cake", req.Sender()))
				return nil
			},
		},
		{
			Name:   "beefymiracle",
			Hidden: true,
			Handler: func(ctx context.Context, req *Request) error {
				b.gag(ctx, req, "🌭", "ALL HAIL THE BEEFY MIRACLE!! (The mustard indicates progress)")
				return nil
			},
		},
	}
}

func (b *Bot) gag(ctx context.Context, req *Request, emoji, message string) {
	b.markRead(ctx, req)
	b.react(ctx, req, emoji)
	b.reply(ctx, req, message)
}
