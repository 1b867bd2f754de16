package bot

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/gsem/gradebot/auth"
	"github.com/gsem/gradebot/grading"
	"github.com/gsem/gradebot/internal/config"
	"github.com/gsem/gradebot/progress"
	zlog "github.com/rs/zerolog/log"
)

const (
	audienceUser  = "user"
	audienceAdmin = "admin"
	audienceFile  = "file"
)

// HandlerFunc answers one message. An empty reply sends nothing.
type HandlerFunc func(ctx context.Context, msg *Message) string

// Config is the part of the application configuration the bot reads.
type Config interface {
	GetEnv() string
	GetAdminHandles() config.AdminHandles
	GetSubmissionsFolder() string
	GetRosterFile() string
	GetExportFile() string
}

// Submitter grades a submission, typically on the grading worker pool.
type Submitter interface {
	Submit(ctx context.Context, job grading.Job) (grading.Result, error)
}

// Services are the core operations commands are mapped onto.
type Services struct {
	Auth     *auth.Service
	Progress *progress.Tracker
	Grader   Submitter
	Answers  grading.Answers
}

type route struct {
	audience string
	handler  HandlerFunc
}

// Bot maps chat messages onto core operations and turns their outcomes
// into replies.
type Bot struct {
	env       string
	config    Config
	transport Transport
	services  Services
	admins    config.AdminHandles
	commands  map[string]route
	documents map[string]route
	nowTime   func() time.Time
}

// Option defines a function type to modify the Bot instance.
type Option func(*Bot)

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) Option {
	return func(b *Bot) {
		b.nowTime = nowFunc
	}
}

func New(cfg Config, transport Transport, services Services, options ...Option) (*Bot, error) {
	switch {
	case cfg == nil:
		return nil, errors.New("[bot.New] config is required")
	case transport == nil:
		return nil, errors.New("[bot.New] transport is required")
	case services.Auth == nil:
		return nil, errors.New("[bot.New] auth service is required")
	case services.Progress == nil:
		return nil, errors.New("[bot.New] progress tracker is required")
	case services.Grader == nil:
		return nil, errors.New("[bot.New] grader is required")
	}
	if services.Answers == nil {
		services.Answers = grading.DefaultAnswers()
	}

	b := &Bot{
		env:       cfg.GetEnv(),
		config:    cfg,
		transport: transport,
		services:  services,
		admins:    cfg.GetAdminHandles(),
		commands:  make(map[string]route),
		documents: make(map[string]route),
		nowTime:   time.Now,
	}
	for _, opt := range options {
		opt(b)
	}

	b.initRoutes()
	b.logRoutes()
	return b, nil
}

func (b *Bot) initRoutes() {
	mw := b.Middleware()

	b.RegisterCommand(audienceUser, CommandStart, ChainMiddleware(b.HelpHandler(), mw...))
	b.RegisterCommand(audienceUser, CommandHelp, ChainMiddleware(b.HelpHandler(), mw...))

	// SESSION
	b.RegisterCommand(audienceUser, CommandLogin, ChainMiddleware(b.LoginHandler(), mw...))
	b.RegisterCommand(audienceUser, CommandLoginStatus, ChainMiddleware(b.LoginStatusHandler(), mw...))
	b.RegisterCommand(audienceUser, CommandProgress, ChainMiddleware(b.ProgressHandler(), mw...))
	b.RegisterCommand(audienceUser, CommandLogout, ChainMiddleware(b.LogoutHandler(), mw...))

	// ADMIN
	b.RegisterCommand(audienceAdmin, CommandExport, ChainMiddleware(b.ExportHandler(), b.Middleware(b.RequireAdmin)...))

	// FILES
	b.RegisterDocument(audienceFile, DocumentSubmission, ChainMiddleware(b.SubmissionHandler(), mw...))
	b.RegisterDocument(audienceAdmin, DocumentRoster, ChainMiddleware(b.RosterHandler(), b.Middleware(b.RequireAdmin)...))
}

func (b *Bot) RegisterCommand(audience, name string, handler HandlerFunc) {
	b.commands[name] = route{audience: audience, handler: handler}
}

func (b *Bot) RegisterDocument(audience, kind string, handler HandlerFunc) {
	b.documents[kind] = route{audience: audience, handler: handler}
}

// Handle answers msg through the transport. Messages that need no reply
// send nothing.
func (b *Bot) Handle(ctx context.Context, msg *Message) error {
	reply := b.Reply(ctx, msg)
	if reply == "" {
		return nil
	}
	if err := b.transport.Send(ctx, msg.ChatID, reply); err != nil {
		return fmt.Errorf("[Bot.Handle] send reply: %w", err)
	}
	return nil
}

// Reply routes msg to its handler and returns the reply text.
func (b *Bot) Reply(ctx context.Context, msg *Message) string {
	switch {
	case msg.Document != nil:
		kind := DocumentSubmission
		if strings.EqualFold(extension(msg.Document.FileName), rosterExtension) {
			kind = DocumentRoster
		}
		return b.documents[kind].handler(ctx, msg)
	case msg.IsCommand():
		r, ok := b.commands[msg.Command]
		if !ok {
			return replyUnknownCommand
		}
		return r.handler(ctx, msg)
	default:
		return ""
	}
}

func (b *Bot) logRoutes() {
	if b.env != "DEV" {
		return // Skip logging in non-development environments
	}
	names := make([]string, 0, len(b.commands))
	for name := range b.commands {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		logRoute(b.commands[name].audience, "/"+name)
	}
	for _, kind := range []string{DocumentSubmission, DocumentRoster} {
		logRoute(b.documents[kind].audience, kind)
	}
}

func logRoute(audience, name string) {
	var displayAudience string
	padded := fmt.Sprintf(" %-6s", audience)
	if color, ok := audienceColors[audience]; ok {
		displayAudience = color + padded + ResetColor
	} else {
		displayAudience = Gray + padded + ResetColor
	}
	log.Printf("[%-16s] %s\n", displayAudience, name)
}

func extension(filename string) string {
	if i := strings.LastIndexByte(filename, '.'); i >= 0 {
		return filename[i:]
	}
	return ""
}

// logFailure records errors that are not the user's fault.
func logFailure(msg *Message, err error) {
	zlog.Error().Err(err).Str("handle", msg.From.Handle).Str("command", msg.Command).Msg("Request failed")
}
