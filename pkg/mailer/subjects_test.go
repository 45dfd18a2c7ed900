package mailer_test

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/outreach/pkg/mailer"
)

func TestDerivedSubjects(t *testing.T) {
	t.Parallel()

	s, ok := mailer.DerivedSubjects{}.Subject("motorhome_followup.html", "Ada")
	require.True(t, ok)
	assert.Equal(t, "Motorhome Followup - Great to connect with you Ada", s)

	_, ok = mailer.DerivedSubjects{}.Subject("", "Ada")
	assert.False(t, ok)
}

func TestSubjectMap(t *testing.T) {
	t.Parallel()

	m := mailer.DefaultSubjects()

	s, ok := m.Subject("final_check.html", "ignored")
	require.True(t, ok)
	assert.Equal(t, "Happy to reconnect later if needed", s)

	_, ok = m.Subject("unknown.html", "Ada")
	assert.False(t, ok)

	_, ok = mailer.SubjectMap{"blank.html": "  "}.Subject("blank.html", "Ada")
	assert.False(t, ok)
}

func TestLoadSubjects(t *testing.T) {
	t.Parallel()

	m, err := mailer.LoadSubjects(testFS(), "subjects.yaml")
	require.NoError(t, err)
	assert.Equal(t, mailer.SubjectMap{"been_a_while.html": "Long time"}, m)

	m, err = mailer.LoadSubjects(fstest.MapFS{}, "subjects.yaml")
	require.NoError(t, err)
	assert.Equal(t, mailer.DefaultSubjects(), m)
}

func TestParseSubjects_Invalid(t *testing.T) {
	t.Parallel()

	_, err := mailer.ParseSubjects([]byte("notes.txt: nope\n"))
	require.ErrorIs(t, err, mailer.ErrSubjectsFile)

	_, err = mailer.ParseSubjects([]byte("- a\n- b\n"))
	require.ErrorIs(t, err, mailer.ErrSubjectsFile)

	m, err := mailer.ParseSubjects(nil)
	require.NoError(t, err)
	assert.Empty(t, m)
}
