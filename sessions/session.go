package sessions

import (
	"time"

	"github.com/gsem/gradebot/internal/utils"
)

// Identity is the chat platform user behind a request.
type Identity struct {
	PlatformID int64  // Numeric user id on the chat platform
	Handle     string // Public handle (username), empty for anonymous users
}

// Anonymous reports whether the identity has no handle. Anonymous identities
// can never be matched against a stored binding.
func (id Identity) Anonymous() bool {
	return id.Handle == ""
}

// Progress maps a task identifier ("task3") to whether it was completed.
type Progress map[string]bool

// Clone copies the map so callers cannot mutate stored progress.
func (p Progress) Clone() Progress {
	c := make(Progress, len(p))
	for k, v := range p {
		c[k] = v
	}
	return c
}

// Session is the binding of one token to a chat identity plus the progress
// accumulated under that token. Deactivated sessions keep their progress.
type Session struct {
	Token       string    `json:"token"`             // Token the session belongs to (1:1)
	FirstName   string    `json:"first_name"`        // Copied from the token record
	LastName    string    `json:"last_name"`         // Copied from the token record
	Group       string    `json:"group"`             // Copied from the token record
	BoundID     *int64    `json:"telegram_id"`       // Platform id of the bound user, nil when inactive
	BoundHandle *string   `json:"telegram_username"` // Handle of the bound user, nil when inactive
	StartedAt   time.Time `json:"started_at"`        // First successful login with the token
	Deadline    time.Time `json:"deadline"`          // Copied from the token record
	Active      bool      `json:"is_in_progress"`    // Active, is the token currently logged in
	Progress    Progress  `json:"progress"`          // Completed tasks, entries are never removed
}

// HeldBy reports whether the session is active and bound to handle.
func (s *Session) HeldBy(handle string) bool {
	return s.Active && handle != "" && utils.Value(s.BoundHandle) == handle
}

// Bind activates the session for id.
func (s *Session) Bind(id Identity) {
	s.Active = true
	s.BoundID = utils.NonZeroPtr(id.PlatformID)
	s.BoundHandle = utils.NonZeroPtr(id.Handle)
	if s.Progress == nil {
		s.Progress = Progress{}
	}
}

// Unbind deactivates the session, keeping its progress.
func (s *Session) Unbind() {
	s.Active = false
	s.BoundID = nil
	s.BoundHandle = nil
}

// Clone returns a deep copy of the session.
func (s *Session) Clone() *Session {
	c := *s
	if s.BoundID != nil {
		c.BoundID = utils.Ptr(*s.BoundID)
	}
	if s.BoundHandle != nil {
		c.BoundHandle = utils.Ptr(*s.BoundHandle)
	}
	if s.Progress != nil {
		c.Progress = s.Progress.Clone()
	}
	return &c
}
