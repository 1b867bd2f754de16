package telegram

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/gsem/gradebot/bot"
	"github.com/pkg/errors"
)

// MaxMessageLength is the longest text Telegram accepts in one message.
const MaxMessageLength = 4096

// Client is the Telegram side of the bot: it polls updates and delivers
// replies and file downloads.
type Client struct {
	api         *tgbotapi.BotAPI
	http        *http.Client
	pollTimeout int
}

var _ bot.Transport = (*Client)(nil)

// ClientOption defines a function type to modify the Client instance.
type ClientOption func(*Client)

// WithHTTPClient sets the client used for file downloads.
func WithHTTPClient(c *http.Client) ClientOption {
	return func(cl *Client) {
		cl.http = c
	}
}

// WithPollTimeout sets the long polling timeout in seconds.
func WithPollTimeout(seconds int) ClientOption {
	return func(cl *Client) {
		cl.pollTimeout = seconds
	}
}

// New connects to the Bot API with token.
func New(token string, debug bool, options ...ClientOption) (*Client, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, errors.Wrap(err, "[telegram.New] connect")
	}
	api.Debug = debug

	c := &Client{
		api:         api,
		http:        &http.Client{Timeout: time.Minute},
		pollTimeout: 60,
	}
	for _, opt := range options {
		opt(c)
	}
	return c, nil
}

// UserName is the bot's own handle.
func (c *Client) UserName() string {
	return c.api.Self.UserName
}

func (c *Client) Send(ctx context.Context, chatID int64, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := tgbotapi.NewMessage(chatID, Truncate(text, MaxMessageLength))
	if _, err := c.api.Send(msg); err != nil {
		return errors.Wrapf(err, "[Client.Send] chat %d", chatID)
	}
	return nil
}

func (c *Client) Download(ctx context.Context, doc bot.Document, dst string) error {
	url, err := c.api.GetFileDirectURL(doc.FileID)
	if err != nil {
		return errors.Wrapf(err, "[Client.Download] resolve %s", doc.FileName)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return errors.Wrap(err, "[Client.Download] build request")
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return errors.Wrapf(err, "[Client.Download] fetch %s", doc.FileName)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("[Client.Download] fetch %s: unexpected status %s", doc.FileName, resp.Status)
	}
	return errors.Wrap(saveFile(resp.Body, dst), "[Client.Download]")
}

// saveFile writes r to dst through a temp file in the same folder.
func saveFile(r io.Reader, dst string) error {
	dir := filepath.Dir(dst)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrap(err, "create folder")
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(dst)+".*.part")
	if err != nil {
		return errors.Wrap(err, "create temp file")
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return errors.Wrap(err, "write file")
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, "close file")
	}
	return errors.Wrap(os.Rename(tmp.Name(), dst), "replace file")
}

// Truncate cuts text to at most limit characters.
func Truncate(text string, limit int) string {
	if len(text) <= limit {
		return text
	}
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit])
}
