package bot

import (
	"context"
	"errors"

	"github.com/gsem/gradebot/auth"
	"github.com/gsem/gradebot/progress"
)

// HelpHandler answers /start and /help.
func (b *Bot) HelpHandler() HandlerFunc {
	return func(ctx context.Context, msg *Message) string {
		return replyHelp
	}
}

// LoginHandler answers /login <token>.
func (b *Bot) LoginHandler() HandlerFunc {
	return func(ctx context.Context, msg *Message) string {
		if _, err := b.services.Auth.Login(ctx, msg.From, msg.Args); err != nil {
			return b.errorReply(msg, err)
		}
		return replyLoggedIn
	}
}

// LoginStatusHandler answers /login_status.
func (b *Bot) LoginStatusHandler() HandlerFunc {
	return func(ctx context.Context, msg *Message) string {
		token, err := b.services.Auth.CurrentTokenFor(ctx, msg.From)
		if errors.Is(err, auth.ErrTokenNotFound) {
			return replyNotLoggedIn
		} else if err != nil {
			return b.errorReply(msg, err)
		}
		return statusReply(token)
	}
}

// ProgressHandler answers /progress.
func (b *Bot) ProgressHandler() HandlerFunc {
	return func(ctx context.Context, msg *Message) string {
		token, err := b.services.Auth.CurrentTokenFor(ctx, msg.From)
		if errors.Is(err, auth.ErrTokenNotFound) {
			return replyLoginRequired
		} else if err != nil {
			return b.errorReply(msg, err)
		}

		done, err := b.services.Progress.GetProgress(ctx, token)
		if err != nil {
			return b.errorReply(msg, err)
		}
		return progressReply(progress.Summary(done, len(b.services.Answers)), progress.Render(done))
	}
}

// LogoutHandler answers /logout.
func (b *Bot) LogoutHandler() HandlerFunc {
	return func(ctx context.Context, msg *Message) string {
		if err := b.services.Auth.LogOut(ctx, msg.From); err != nil {
			return b.errorReply(msg, err)
		}
		return replyLoggedOut
	}
}
