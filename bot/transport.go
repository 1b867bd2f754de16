package bot

import (
	"context"

	"github.com/gsem/gradebot/sessions"
)

// Document is a file attached to a chat message.
type Document struct {
	FileID   string // Platform handle used to download the file
	FileName string // Name the sender gave the file
}

// Message is one inbound chat update, already stripped of platform types.
type Message struct {
	ChatID   int64
	From     sessions.Identity
	Text     string
	Command  string    // Command name without the leading slash, empty for plain messages
	Args     []string  // Whitespace separated command arguments
	Document *Document // Attached file, nil when there is none
	Caption  string    // Caption of the attached file
}

// IsCommand reports whether the message invokes a bot command.
func (m *Message) IsCommand() bool {
	return m.Command != ""
}

// Transport sends replies and fetches attachments on the chat platform.
type Transport interface {
	// Send delivers text to the chat. Transports enforce their own length limits.
	Send(ctx context.Context, chatID int64, text string) error

	// Download stores the document at dst, creating parent folders as needed.
	Download(ctx context.Context, doc Document, dst string) error
}
