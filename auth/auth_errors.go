package auth

import "errors"

// Reason names why a lifecycle operation was refused.
type Reason int

const (
	ReasonNoArguments Reason = iota + 1
	ReasonTooManyArguments
	ReasonInvalidToken
	ReasonAlreadyLoggedIn
	ReasonTokenAlreadyInUse
	ReasonNoActiveSession
	ReasonTokenNotFound
	ReasonAnonymousUser
	ReasonTokenAlreadyIssued
)

var reasonNames = map[Reason]string{
	ReasonNoArguments:        "no token given",
	ReasonTooManyArguments:   "too many arguments given",
	ReasonInvalidToken:       "invalid token",
	ReasonAlreadyLoggedIn:    "already logged in",
	ReasonTokenAlreadyInUse:  "token already in use",
	ReasonNoActiveSession:    "no active session",
	ReasonTokenNotFound:      "token not found",
	ReasonAnonymousUser:      "user has no handle",
	ReasonTokenAlreadyIssued: "token already issued",
}

func (r Reason) String() string {
	if name, ok := reasonNames[r]; ok {
		return name
	}
	return "unknown reason"
}

// Failure is the refusal outcome of a lifecycle operation.
type Failure struct {
	Reason Reason
}

func (f *Failure) Error() string {
	return "auth: " + f.Reason.String()
}

// Is matches any Failure with the same reason, so the sentinels below work with errors.Is.
func (f *Failure) Is(target error) bool {
	t, ok := target.(*Failure)
	return ok && t.Reason == f.Reason
}

var (
	ErrNoArguments        = &Failure{ReasonNoArguments}
	ErrTooManyArguments   = &Failure{ReasonTooManyArguments}
	ErrInvalidToken       = &Failure{ReasonInvalidToken}
	ErrAlreadyLoggedIn    = &Failure{ReasonAlreadyLoggedIn}
	ErrTokenAlreadyInUse  = &Failure{ReasonTokenAlreadyInUse}
	ErrNoActiveSession    = &Failure{ReasonNoActiveSession}
	ErrTokenNotFound      = &Failure{ReasonTokenNotFound}
	ErrAnonymousUser      = &Failure{ReasonAnonymousUser}
	ErrTokenAlreadyIssued = &Failure{ReasonTokenAlreadyIssued}
)

// ReasonOf extracts the failure reason from anywhere in err's chain.
func ReasonOf(err error) (Reason, bool) {
	var f *Failure
	if errors.As(err, &f) {
		return f.Reason, true
	}
	return 0, false
}
