package proposal

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyrsmithlabs/minuted/internal/meeting"
)

func testProposal(project string) *Proposal {
	return &Proposal{
		ProjectID:   project,
		MeetingDate: "2026-03-10",
		Decisions:   []meeting.Decision{{Content: "use postgres", Date: "2026-03-10"}},
	}
}

func TestStore_PutGet(t *testing.T) {
	s := NewStore()
	s.Put("1710000000.000100", testProposal("apollo"))

	got, ok := s.Get("1710000000.000100")
	require.True(t, ok)
	assert.Equal(t, "apollo", got.ProjectID)
	assert.False(t, got.CreatedAt.IsZero())

	_, ok = s.Get("unknown")
	assert.False(t, ok)
}

func TestStore_LastWriteWins(t *testing.T) {
	s := NewStore()
	s.Put("ts", testProposal("first"))
	s.Put("ts", testProposal("second"))

	got, ok := s.Get("ts")
	require.True(t, ok)
	assert.Equal(t, "second", got.ProjectID)
	assert.Equal(t, 1, s.Len())
}

func TestStore_GetDoesNotRemove(t *testing.T) {
	s := NewStore()
	s.Put("ts", testProposal("apollo"))

	for i := 0; i < 3; i++ {
		_, ok := s.Get("ts")
		assert.True(t, ok)
	}
	assert.Equal(t, 1, s.Len())
}

func TestStore_LazyPurgeOnInsert(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	s := NewStore(WithClock(clock), WithTTL(time.Hour))

	s.Put("old", testProposal("old"))

	// No background sweep: the stale entry stays until the next insert.
	now = now.Add(2 * time.Hour)
	_, ok := s.Get("old")
	assert.True(t, ok)

	s.Put("new", testProposal("new"))

	_, ok = s.Get("old")
	assert.False(t, ok, "stale entry purged on insert")
	_, ok = s.Get("new")
	assert.True(t, ok)
}

func TestStore_PurgeSparesFreshEntries(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	s := NewStore(WithClock(clock), WithTTL(time.Hour))

	s.Put("a", testProposal("a"))
	now = now.Add(30 * time.Minute)
	s.Put("b", testProposal("b"))

	assert.Equal(t, 2, s.Len())
}

func TestStore_Delete(t *testing.T) {
	s := NewStore()
	s.Put("ts", testProposal("apollo"))
	s.Delete("ts")

	_, ok := s.Get("ts")
	assert.False(t, ok)

	// Deleting a missing handle is a no-op.
	s.Delete("ts")
}
