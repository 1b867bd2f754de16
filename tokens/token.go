package tokens

import (
	"encoding/json"
	"time"
)

// DateLayout is the persisted form of a token deadline.
const DateLayout = "2006-01-02"

// Date is a calendar day persisted as YYYY-MM-DD.
type Date struct {
	time.Time
}

func NewDate(year int, month time.Month, day int) Date {
	return Date{time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

func (d Date) String() string {
	return d.Format(DateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	t, err := time.Parse(DateLayout, raw)
	if err != nil {
		return err
	}
	d.Time = t
	return nil
}

// Token is one student enrollment. It is either unused (no bound handle)
// or bound to exactly one chat handle.
type Token struct {
	Token       string  `json:"-"`                 // Token string, the key of the token table
	FirstName   string  `json:"first_name"`        // Student first name from the roster
	LastName    string  `json:"last_name"`         // Student last name from the roster
	Group       string  `json:"group"`             // Group label from the roster
	Deadline    Date    `json:"deadline"`          // Last day the token is meant to be used
	InUse       bool    `json:"is_in_use"`         // InUse, is a session currently bound to it
	BoundHandle *string `json:"telegram_username"` // Handle of the chat user holding it, nil when unused
}

// FullName is "Last First", the form used in exports and replies.
func (t *Token) FullName() string {
	return t.LastName + " " + t.FirstName
}

// Clone returns a deep copy, so stored records never alias caller values.
func (t *Token) Clone() *Token {
	c := *t
	if t.BoundHandle != nil {
		h := *t.BoundHandle
		c.BoundHandle = &h
	}
	return &c
}
