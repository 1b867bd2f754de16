package bot

import (
	"context"
	"os"
	"path/filepath"

	"github.com/gsem/gradebot/tokens"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// RosterHandler turns an uploaded roster file into a batch of tokens. The
// caption must hold the expiry date; nothing is downloaded when it is wrong.
func (b *Bot) RosterHandler() HandlerFunc {
	return func(ctx context.Context, msg *Message) string {
		deadline, err := tokens.ParseDeadline(msg.Caption, b.nowTime())
		if err != nil {
			return b.errorReply(msg, err)
		}

		rosterFile := b.config.GetRosterFile()
		dir, err := uploadDir(filepath.Dir(rosterFile))
		if err != nil {
			return b.errorReply(msg, err)
		}
		defer os.RemoveAll(dir)

		path := filepath.Join(dir, filepath.Base(rosterFile))
		if err := b.transport.Download(ctx, *msg.Document, path); err != nil {
			return b.errorReply(msg, err)
		}

		batch, err := importRosterFile(path, deadline)
		if err != nil {
			return b.errorReply(msg, err)
		}
		if err := b.services.Auth.IssueTokens(ctx, batch); err != nil {
			return b.errorReply(msg, err)
		}
		keepUpload(path, rosterFile)

		log.Info().Str("admin", msg.From.Handle).Int("tokens", len(batch)).Str("deadline", deadline.String()).Msg("Roster imported")
		return replyTokensIssued + "\n\n" + tokens.FormatBatch(batch)
	}
}

// ExportHandler writes every student's progress to the export file.
func (b *Bot) ExportHandler() HandlerFunc {
	return func(ctx context.Context, msg *Message) string {
		rows, err := b.services.Progress.Report(ctx)
		if err != nil {
			return b.errorReply(msg, err)
		}

		path := b.config.GetExportFile()
		if err := WriteReportFile(path, rows, b.services.Answers.TaskIDs()); err != nil {
			return b.errorReply(msg, err)
		}

		log.Info().Str("admin", msg.From.Handle).Int("students", len(rows)).Str("file", path).Msg("Progress exported")
		return exportReply(len(rows), path)
	}
}

func importRosterFile(path string, deadline tokens.Date) (map[string]*tokens.Token, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "[importRosterFile] open roster")
	}
	defer f.Close()

	return tokens.ImportRoster(f, deadline)
}
