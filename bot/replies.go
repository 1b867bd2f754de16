package bot

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gsem/gradebot/auth"
	"github.com/gsem/gradebot/grading"
	apperrors "github.com/gsem/gradebot/internal/errors"
	"github.com/gsem/gradebot/tokens"
)

const (
	replyHelp = `Commands:
/login <token>  log in with the token you were given
/login_status   show which token you are logged in with
/progress       list the tasks you have completed
/logout         end your session, your progress is kept

Send a file named task<N>.py to have it graded.`

	replyLoggedIn        = "[Login] Logged in successfully"
	replyLoggedOut       = "[Logout] Logged out successfully"
	replyNotLoggedIn     = "[Status] Not logged in"
	replyLoginRequired   = "[Error] You need to log in first: /login <token>"
	replyUnknownCommand  = "[Error] Unknown command, see /help"
	replyAdminOnly       = "[Error] This account is not allowed to do that"
	replyInternal        = "[Error] Something went wrong on our side, please contact the administrator"
	replyAccepted        = "This is the correct output, the task is accepted"
	replyTokensIssued    = "[Tokens issued]"
	replyNoTokenArgument = "[Login error] No token given. Usage: /login <token>"
)

var reasonReplies = map[auth.Reason]string{
	auth.ReasonNoArguments:        replyNoTokenArgument,
	auth.ReasonTooManyArguments:   "[Login error] Only one token is expected. Usage: /login <token>",
	auth.ReasonInvalidToken:       "[Login error] This token does not exist",
	auth.ReasonAlreadyLoggedIn:    "[Login error] This account is already logged in",
	auth.ReasonTokenAlreadyInUse:  "[Login error] Someone is already logged in with this token",
	auth.ReasonNoActiveSession:    replyLoginRequired,
	auth.ReasonTokenNotFound:      "[Error] No token is linked to your profile",
	auth.ReasonAnonymousUser:      "[Login error] Set a username in your profile settings before logging in",
	auth.ReasonTokenAlreadyIssued: "[Error] A generated token already exists, upload the roster again",
}

func statusReply(token string) string {
	return fmt.Sprintf("[Status] Logged in with %q", token)
}

func progressReply(summary, rendered string) string {
	return fmt.Sprintf("[Progress] %s\n%s", summary, rendered)
}

func acceptedReply(result grading.Result) string {
	return fmt.Sprintf("[Accepted] %s\n%s\n%s", result.TaskID, result.Output, replyAccepted)
}

func exportReply(students int, path string) string {
	return fmt.Sprintf("[Export] Progress of %d student(s) written to %s", students, path)
}

// errorReply translates a failed operation into the text shown to the user.
// Failures that are not the user's fault are logged and get the generic reply.
func (b *Bot) errorReply(msg *Message, err error) string {
	if reason, ok := auth.ReasonOf(err); ok {
		if text, ok := reasonReplies[reason]; ok {
			return text
		}
	}

	var (
		malformed *tokens.MalformedRosterLineError
		wrong     *grading.WrongAnswerError
		execErr   *grading.ExecutionError
		styleErr  *grading.StyleViolationError
	)
	switch {
	case apperrors.Is(err, apperrors.ErrStorage):
		logFailure(msg, err)
		return replyInternal

	// roster upload
	case errors.As(err, &malformed):
		return fmt.Sprintf("[Error] Roster line %d %q must be \"last_name first_name group\"", malformed.Line, malformed.Text)
	case errors.Is(err, tokens.ErrEmptyRoster):
		return "[Error] The roster has no students"
	case errors.Is(err, tokens.ErrNoArguments), errors.Is(err, tokens.ErrTooManyArguments):
		return "[Error] Put the token expiry date in the caption, for example 01.09.2030"
	case errors.Is(err, tokens.ErrWrongDateFormat):
		return "[Error] The date must be in DD.MM.YYYY format, for example 01.09.2030"
	case errors.Is(err, tokens.ErrDateInPast):
		return fmt.Sprintf("[Error] The date cannot be earlier than %s", b.nowTime().Format(tokens.CaptionDateLayout))

	// submissions
	case errors.Is(err, grading.ErrWrongFilename):
		return "[Submission error] Wrong file name. Expected task1.py, task2.py, task3.py..."
	case errors.Is(err, grading.ErrUnknownTask):
		return "[Submission error] There is no such task"
	case errors.As(err, &wrong):
		return fmt.Sprintf("[Wrong answer] The program prints wrong output\nExpected:\n%q\nGot:\n%q", wrong.Expected, wrong.Actual)
	case errors.As(err, &execErr):
		return executionReply(execErr)
	case errors.As(err, &styleErr):
		return styleReply(styleErr)
	}

	logFailure(msg, err)
	return replyInternal
}

func executionReply(err *grading.ExecutionError) string {
	if err.TimedOut {
		return "[Wrong answer] The program ran out of time"
	}
	text := "[Wrong answer] The program could not be run"
	if err.ExitCode >= 0 {
		text = fmt.Sprintf("[Wrong answer] The program exited with code %d", err.ExitCode)
	}
	if err.Stderr != "" {
		text += "\n" + err.Stderr
	}
	return text
}

func styleReply(err *grading.StyleViolationError) string {
	lines := make([]string, 0, len(err.Violations)+1)
	lines = append(lines, "[Wrong answer] The program did not pass the PEP8 check")
	for _, v := range err.Violations {
		lines = append(lines, v.String())
	}
	return strings.Join(lines, "\n")
}
