package bot

import (
	"context"
	"fmt"
	"runtime/debug"

	"github.com/rs/zerolog/log"
)

func ChainMiddleware(handler HandlerFunc, mw ...func(HandlerFunc) HandlerFunc) HandlerFunc {
	chained := handler
	// Apply middleware in reverse order
	for i := len(mw) - 1; i >= 0; i-- {
		chained = mw[i](chained)
	}
	return chained
}

// Middleware returns the standard chain followed by mw.
func (b *Bot) Middleware(mw ...func(HandlerFunc) HandlerFunc) []func(HandlerFunc) HandlerFunc {
	chain := []func(HandlerFunc) HandlerFunc{
		b.RecoverMiddleware,
		b.LoggingMiddleware,
	}
	return append(chain, mw...)
}

func (b *Bot) LoggingMiddleware(next HandlerFunc) HandlerFunc {
	return func(ctx context.Context, msg *Message) string {
		event := log.Debug().Int64("chat", msg.ChatID).Str("handle", msg.From.Handle)
		if msg.IsCommand() {
			event = event.Str("command", msg.Command)
		}
		if msg.Document != nil {
			event = event.Str("file", msg.Document.FileName)
		}
		event.Msg("Message received")
		return next(ctx, msg)
	}
}

// RecoverMiddleware turns a handler panic into the generic failure reply.
func (b *Bot) RecoverMiddleware(next HandlerFunc) HandlerFunc {
	return func(ctx context.Context, msg *Message) (reply string) {
		defer func() {
			if r := recover(); r != nil {
				logFailure(msg, fmt.Errorf("panic: %v\n%s", r, debug.Stack()))
				reply = replyInternal
			}
		}()
		return next(ctx, msg)
	}
}

// RequireAdmin refuses the request unless the sender's handle is on the admin allow-list.
func (b *Bot) RequireAdmin(next HandlerFunc) HandlerFunc {
	return func(ctx context.Context, msg *Message) string {
		if !b.admins.IsAdmin(msg.From.Handle) {
			log.Warn().Str("handle", msg.From.Handle).Msg("Admin request refused")
			return replyAdminOnly
		}
		return next(ctx, msg)
	}
}
