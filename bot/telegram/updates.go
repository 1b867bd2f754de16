package telegram

import (
	"context"
	"strings"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/gsem/gradebot/bot"
	"github.com/gsem/gradebot/sessions"
	"github.com/rs/zerolog/log"
)

// Handler answers one converted message.
type Handler interface {
	Handle(ctx context.Context, msg *bot.Message) error
}

// Run polls updates until ctx is done, handling each message on its own
// goroutine. It returns after every in-flight message has been answered;
// those keep running when ctx is cancelled.
func (c *Client) Run(ctx context.Context, h Handler) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = c.pollTimeout
	updates := c.api.GetUpdatesChan(u)
	log.Info().Str("bot", c.UserName()).Msg("Polling for updates")

	handleCtx := context.WithoutCancel(ctx)
	var wg sync.WaitGroup
	defer wg.Wait()
	defer c.api.StopReceivingUpdates()

	for {
		select {
		case <-ctx.Done():
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			msg, ok := ConvertUpdate(update)
			if !ok {
				continue
			}
			wg.Add(1)
			go func() {
				defer wg.Done()
				if err := h.Handle(handleCtx, msg); err != nil {
					log.Err(err).Int64("chat", msg.ChatID).Msg("Failed to answer message")
				}
			}()
		}
	}
}

// ConvertUpdate turns an update into a bot message. Updates without a
// message or a sender are skipped.
func ConvertUpdate(update tgbotapi.Update) (*bot.Message, bool) {
	m := update.Message
	if m == nil || m.From == nil || m.Chat == nil {
		return nil, false
	}

	msg := &bot.Message{
		ChatID:  m.Chat.ID,
		From:    sessions.Identity{PlatformID: m.From.ID, Handle: m.From.UserName},
		Text:    m.Text,
		Caption: m.Caption,
	}
	if m.IsCommand() {
		msg.Command = m.Command()
		msg.Args = strings.Fields(m.CommandArguments())
	}
	if m.Document != nil {
		msg.Document = &bot.Document{FileID: m.Document.FileID, FileName: m.Document.FileName}
	}
	return msg, true
}
