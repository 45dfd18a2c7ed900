package contact

import (
	"bytes"
	"encoding/json"

	"github.com/dmitrymomot/outreach/pkg/schedule"
)

// Optional is a JSON field that distinguishes "absent" from "null".
// Set is true whenever the key was present; Value is nil for null or "".
type Optional[T any] struct {
	Value *T
	Set   bool
}

func (o *Optional[T]) UnmarshalJSON(b []byte) error {
	o.Set = true
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) || bytes.Equal(b, []byte(`""`)) {
		o.Value = nil
		return nil
	}
	var v T
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	o.Value = &v
	return nil
}

// Patch is a partial update. Only fields that are set are written.
type Patch struct {
	FirstName *string                  `json:"firstName"`
	Email     *string                  `json:"email"`
	Template  *string                  `json:"template"`
	Note      *string                  `json:"note"`
	Status    *Status                  `json:"status"`
	SendDate  Optional[schedule.Date]  `json:"sendDate"`
	SendTime  Optional[schedule.Clock] `json:"sendTime"`
}

// Empty reports whether the patch changes nothing.
func (p Patch) Empty() bool {
	return p.FirstName == nil && p.Email == nil && p.Template == nil && p.Note == nil &&
		p.Status == nil && !p.SendDate.Set && !p.SendTime.Set
}

// Validate checks the fields that are set.
func (p Patch) Validate() error {
	if p.Status != nil && !p.Status.Valid() {
		return ErrInvalidStatus
	}
	return nil
}

// Apply returns c with the patch applied.
func (p Patch) Apply(c Contact) Contact {
	if p.FirstName != nil {
		c.FirstName = *p.FirstName
	}
	if p.Email != nil {
		c.Email = *p.Email
	}
	if p.Template != nil {
		c.Template = *p.Template
	}
	if p.Note != nil {
		c.Note = *p.Note
	}
	if p.Status != nil {
		c.Status = *p.Status
	}
	if p.SendDate.Set {
		c.SendDate = p.SendDate.Value
	}
	if p.SendTime.Set {
		c.SendTime = p.SendTime.Value
	}
	return c
}
