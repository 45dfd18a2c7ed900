package contact

import (
	"slices"
	"strings"

	"github.com/dmitrymomot/outreach/pkg/schedule"
)

// Status is the outreach stage of a contact.
type Status string

const (
	StatusNotContacted       Status = "Not Contacted"
	StatusContacted          Status = "Contacted"
	StatusFollowedUp         Status = "Followed Up"
	StatusInProgress         Status = "In Progress"
	StatusAchieved           Status = "Achieved"
	StatusNoLongerInterested Status = "No Longer Interested"
)

// Statuses lists every valid status in pipeline order.
var Statuses = []Status{
	StatusNotContacted,
	StatusContacted,
	StatusFollowedUp,
	StatusInProgress,
	StatusAchieved,
	StatusNoLongerInterested,
}

// Valid reports whether s is one of Statuses.
func (s Status) Valid() bool {
	return slices.Contains(Statuses, s)
}

// Contact is a person the service sends outreach email to.
// SendDate and SendTime are both nil for on-demand contacts.
type Contact struct {
	SendDate  *schedule.Date  `json:"sendDate"`
	SendTime  *schedule.Clock `json:"sendTime"`
	FirstName string          `json:"firstName"`
	Email     string          `json:"email"`
	Template  string          `json:"template"`
	Note      string          `json:"note"`
	Status    Status          `json:"status"`
	ID        int64           `json:"id"`
}

// Schedule returns the contact's send schedule.
func (c Contact) Schedule() schedule.Schedule {
	return schedule.Schedule{Date: c.SendDate, Time: c.SendTime}
}

// Normalized returns a copy with surrounding whitespace removed from the
// text fields.
func (c Contact) Normalized() Contact {
	c.FirstName = strings.TrimSpace(c.FirstName)
	c.Email = strings.TrimSpace(c.Email)
	c.Template = strings.TrimSpace(c.Template)
	c.Note = strings.TrimSpace(c.Note)
	return c
}

// Complete reports whether the contact has everything a send needs:
// a recipient, a first name and a template.
func (c Contact) Complete() bool {
	n := c.Normalized()
	return n.Email != "" && n.FirstName != "" && n.Template != ""
}

// Key identifies the (recipient, template) pair used for deduplication.
// Email case is ignored.
func (c Contact) Key() string {
	n := c.Normalized()
	return strings.ToLower(n.Email) + "|" + n.Template
}
