package bot

import (
	"context"
	"os"
	"path/filepath"

	"github.com/gsem/gradebot/grading"
	"github.com/rs/zerolog/log"
)

// SubmissionHandler grades a task<N>.py document and records the task as
// done when it passes. The filename is checked before anything is
// downloaded; progress is recorded only after a full pass. Each upload is
// graded from its own folder and the last graded copy is kept.
func (b *Bot) SubmissionHandler() HandlerFunc {
	return func(ctx context.Context, msg *Message) string {
		filename := msg.Document.FileName
		if _, err := grading.ParseTaskID(filename); err != nil {
			return b.errorReply(msg, err)
		}

		token, err := b.services.Auth.CurrentTokenFor(ctx, msg.From)
		if err != nil {
			return b.errorReply(msg, err)
		}

		folder := filepath.Join(b.config.GetSubmissionsFolder(), token)
		dir, err := uploadDir(folder)
		if err != nil {
			return b.errorReply(msg, err)
		}
		defer os.RemoveAll(dir)

		path := filepath.Join(dir, filename)
		if err := b.transport.Download(ctx, *msg.Document, path); err != nil {
			return b.errorReply(msg, err)
		}

		result, err := b.services.Grader.Submit(ctx, grading.Job{Path: path, Filename: filename})
		keepUpload(path, filepath.Join(folder, filename))
		if err != nil {
			log.Info().Str("token", token).Str("file", filename).Err(err).Msg("Submission rejected")
			return b.errorReply(msg, err)
		}

		if err := b.services.Progress.MarkDone(ctx, token, result.TaskID); err != nil {
			return b.errorReply(msg, err)
		}
		return acceptedReply(result)
	}
}
