package contact_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/outreach/internal/contact"
	"github.com/dmitrymomot/outreach/pkg/schedule"
)

func TestContact_Complete(t *testing.T) {
	t.Parallel()

	c := contact.Contact{FirstName: " Ada ", Email: "ada@example.com", Template: "t1.html"}
	assert.True(t, c.Complete())

	c.Email = "   "
	assert.False(t, c.Complete())

	assert.False(t, contact.Contact{Email: "a@x.com", Template: "t.html"}.Complete())
	assert.False(t, contact.Contact{Email: "a@x.com", FirstName: "A"}.Complete())
}

func TestContact_Key(t *testing.T) {
	t.Parallel()

	a := contact.Contact{Email: " a@x.com", Template: "t1.html "}
	b := contact.Contact{Email: "A@X.com", Template: "t1.html"}
	assert.Equal(t, a.Key(), b.Key())
	assert.NotEqual(t, a.Key(), contact.Contact{Email: "a@x.com", Template: "t2.html"}.Key())
}

func TestStatus_Valid(t *testing.T) {
	t.Parallel()

	for _, s := range contact.Statuses {
		assert.True(t, s.Valid(), s)
	}
	assert.False(t, contact.Status("Lost").Valid())
}

func TestPatch_UnmarshalJSON(t *testing.T) {
	t.Parallel()

	var p contact.Patch
	require.NoError(t, json.Unmarshal([]byte(`{"note":"hi","sendDate":null,"sendTime":"09:30"}`), &p))

	require.NotNil(t, p.Note)
	assert.Equal(t, "hi", *p.Note)
	assert.Nil(t, p.FirstName)
	assert.True(t, p.SendDate.Set)
	assert.Nil(t, p.SendDate.Value)
	assert.True(t, p.SendTime.Set)
	assert.Equal(t, schedule.Clock{Hour: 9, Minute: 30}, *p.SendTime.Value)

	var empty contact.Patch
	require.NoError(t, json.Unmarshal([]byte(`{"sendDate":""}`), &empty))
	assert.True(t, empty.SendDate.Set)
	assert.Nil(t, empty.SendDate.Value)
	assert.False(t, empty.SendTime.Set)

	var bad contact.Patch
	require.Error(t, json.Unmarshal([]byte(`{"sendDate":"tomorrow"}`), &bad))
}

func TestPatch_Apply(t *testing.T) {
	t.Parallel()

	d := schedule.Date{Year: 2024, Month: 1, Day: 1}
	c := contact.Contact{FirstName: "Ada", SendDate: &d, Status: contact.StatusContacted}

	status := contact.StatusFollowedUp
	p := contact.Patch{Status: &status, SendDate: contact.Optional[schedule.Date]{Set: true}}

	got := p.Apply(c)
	assert.Nil(t, got.SendDate)
	assert.Equal(t, contact.StatusFollowedUp, got.Status)
	assert.Equal(t, "Ada", got.FirstName)
}

func TestMemory_CRUD(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	m := contact.NewMemory()

	c, err := m.Create(ctx, contact.Contact{FirstName: " Ada ", Email: "ada@example.com", Template: "t1.html"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), c.ID)
	assert.Equal(t, "Ada", c.FirstName)
	assert.Equal(t, contact.StatusNotContacted, c.Status)

	_, err = m.Create(ctx, contact.Contact{Status: "Lost"})
	require.ErrorIs(t, err, contact.ErrInvalidStatus)

	note := "met at expo"
	updated, err := m.Update(ctx, c.ID, contact.Patch{Note: &note})
	require.NoError(t, err)
	assert.Equal(t, "met at expo", updated.Note)

	_, err = m.Update(ctx, c.ID, contact.Patch{})
	require.ErrorIs(t, err, contact.ErrEmptyPatch)

	_, err = m.Update(ctx, 99, contact.Patch{Note: &note})
	require.ErrorIs(t, err, contact.ErrNotFound)

	require.NoError(t, m.Delete(ctx, c.ID))
	require.ErrorIs(t, m.Delete(ctx, c.ID), contact.ErrNotFound)

	_, err = m.Get(ctx, c.ID)
	require.ErrorIs(t, err, contact.ErrNotFound)
}

func TestMemory_Queries(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	jan1 := schedule.Date{Year: 2024, Month: 1, Day: 1}
	jan5 := schedule.Date{Year: 2024, Month: 1, Day: 5}
	nine := schedule.Clock{Hour: 9}

	m := contact.NewMemory(
		contact.Contact{Email: "a@x.com", SendDate: &jan1},
		contact.Contact{Email: "b@x.com", SendDate: &jan5, Status: contact.StatusContacted},
		contact.Contact{Email: "c@x.com", SendTime: &nine},
		contact.Contact{Email: "d@x.com"},
	)

	scheduled, err := m.ListScheduled(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a@x.com", "b@x.com", "c@x.com"}, emails(scheduled))

	due, err := m.ListDue(ctx, schedule.Date{Year: 2024, Month: 1, Day: 2})
	require.NoError(t, err)
	assert.Equal(t, []string{"a@x.com", "c@x.com", "d@x.com"}, emails(due))

	byStatus, err := m.List(ctx, contact.Filter{Status: contact.StatusContacted})
	require.NoError(t, err)
	assert.Equal(t, []string{"b@x.com"}, emails(byStatus))

	byDate, err := m.List(ctx, contact.Filter{Date: &jan1})
	require.NoError(t, err)
	assert.Equal(t, []string{"a@x.com"}, emails(byDate))
}

func emails(cs []contact.Contact) []string {
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = c.Email
	}
	return out
}
