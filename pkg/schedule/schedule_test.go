package schedule_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/outreach/pkg/schedule"
)

func TestParseDate(t *testing.T) {
	t.Parallel()

	d, err := schedule.ParseDate(" 2024-02-29 ")
	require.NoError(t, err)
	assert.Equal(t, "2024-02-29", d.String())

	_, err = schedule.ParseDate("2023-02-29")
	require.ErrorIs(t, err, schedule.ErrInvalidDate)

	_, err = schedule.ParseDate("02/03/2024")
	require.ErrorIs(t, err, schedule.ErrInvalidDate)
}

func TestParseClock(t *testing.T) {
	t.Parallel()

	c, err := schedule.ParseClock("09:05")
	require.NoError(t, err)
	assert.Equal(t, schedule.Clock{Hour: 9, Minute: 5}, c)

	c, err = schedule.ParseClock("18:30:59")
	require.NoError(t, err)
	assert.Equal(t, "18:30", c.String())

	_, err = schedule.ParseClock("25:00")
	require.ErrorIs(t, err, schedule.ErrInvalidClock)
}

func TestDate_Before(t *testing.T) {
	t.Parallel()

	a := schedule.Date{Year: 2024, Month: 1, Day: 31}
	b := schedule.Date{Year: 2024, Month: 2, Day: 1}
	assert.True(t, a.Before(b))
	assert.False(t, b.Before(a))
	assert.False(t, a.Before(a))
}

func TestJSONText(t *testing.T) {
	t.Parallel()

	type payload struct {
		Date *schedule.Date  `json:"date"`
		Time *schedule.Clock `json:"time"`
	}

	var p payload
	require.NoError(t, json.Unmarshal([]byte(`{"date":"2024-05-06","time":"07:45"}`), &p))
	require.NotNil(t, p.Date)
	require.NotNil(t, p.Time)
	assert.Equal(t, schedule.Date{Year: 2024, Month: 5, Day: 6}, *p.Date)
	assert.Equal(t, schedule.Clock{Hour: 7, Minute: 45}, *p.Time)

	out, err := json.Marshal(payload{})
	require.NoError(t, err)
	assert.JSONEq(t, `{"date":null,"time":null}`, string(out))
}
