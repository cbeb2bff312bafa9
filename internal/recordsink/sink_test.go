package recordsink

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/fyrsmithlabs/minuted/internal/config"
	"github.com/fyrsmithlabs/minuted/internal/logging"
	"github.com/fyrsmithlabs/minuted/internal/meeting"
	"github.com/fyrsmithlabs/minuted/internal/project"
)

// MockCreator is a mock implementation of RecordCreator.
type MockCreator struct {
	mock.Mock
}

func (m *MockCreator) CreateRecord(ctx context.Context, baseID, table string, fields map[string]any) (string, error) {
	args := m.Called(ctx, baseID, table, fields)
	return args.String(0), args.Error(1)
}

func testResolver() project.Resolver {
	return project.NewRegistry([]config.ProjectConfig{
		{ID: "apollo", RecordBase: "appXYZ"},
	})
}

func TestRegisterTasks_EmptyBatch(t *testing.T) {
	creator := &MockCreator{}
	s := NewSink(creator, testResolver(), "Tasks", logging.NewNop())

	outcome := s.RegisterTasks(context.Background(), nil, "apollo", "2026-03-10")

	assert.True(t, outcome.Success)
	assert.Zero(t, outcome.Committed)
	creator.AssertNotCalled(t, "CreateRecord")
}

func TestRegisterTasks_UnresolvedDestination(t *testing.T) {
	creator := &MockCreator{}
	s := NewSink(creator, testResolver(), "Tasks", logging.NewNop())

	actions := []meeting.Action{{Task: "a"}, {Task: "b"}, {Task: "c"}}
	outcome := s.RegisterTasks(context.Background(), actions, "unknown", "2026-03-10")

	assert.False(t, outcome.Success)
	assert.Equal(t, 3, outcome.Failed)
	require.Len(t, outcome.Errors, 1)
	creator.AssertNotCalled(t, "CreateRecord")
}

func TestRegisterTasks_FieldsCarryProvenance(t *testing.T) {
	creator := &MockCreator{}
	creator.On("CreateRecord", mock.Anything, "appXYZ", "Tasks", mock.MatchedBy(func(fields map[string]any) bool {
		return fields["Title"] == "write migration" &&
			fields["Assignee"] == "田中" &&
			fields["Status"] == "未着手" &&
			fields["Source"] == "minuted" &&
			fields["MeetingDate"] == "2026-03-10"
	})).Return("rec123", nil)

	s := NewSink(creator, testResolver(), "Tasks", logging.NewNop())
	actions := []meeting.Action{{Task: "write migration", Assignee: "田中", Deadline: "未定"}}
	outcome := s.RegisterTasks(context.Background(), actions, "apollo", "2026-03-10")

	assert.True(t, outcome.Success)
	assert.Equal(t, 1, outcome.Committed)
	creator.AssertExpectations(t)
}

func TestRegisterTasks_DeadlineNormalized(t *testing.T) {
	creator := &MockCreator{}
	creator.On("CreateRecord", mock.Anything, mock.Anything, mock.Anything, mock.MatchedBy(func(fields map[string]any) bool {
		deadline, ok := fields["Deadline"].(string)
		return ok && deadline == "2025-01-15"
	})).Return("rec1", nil)

	s := NewSink(creator, testResolver(), "Tasks", logging.NewNop())
	outcome := s.RegisterTasks(context.Background(), []meeting.Action{{Task: "x", Deadline: "2025/01/15"}}, "apollo", "2026-03-10")

	assert.Equal(t, 1, outcome.Committed)
	creator.AssertExpectations(t)
}

func TestRegisterTasks_UnparseableDeadlineOmitted(t *testing.T) {
	creator := &MockCreator{}
	creator.On("CreateRecord", mock.Anything, mock.Anything, mock.Anything, mock.MatchedBy(func(fields map[string]any) bool {
		_, present := fields["Deadline"]
		return !present
	})).Return("rec1", nil)

	s := NewSink(creator, testResolver(), "Tasks", logging.NewNop())
	s.RegisterTasks(context.Background(), []meeting.Action{{Task: "x", Deadline: "なるはや"}}, "apollo", "2026-03-10")

	creator.AssertExpectations(t)
}

func TestRegisterTasks_PartialFailure(t *testing.T) {
	creator := &MockCreator{}
	creator.On("CreateRecord", mock.Anything, mock.Anything, mock.Anything, mock.MatchedBy(func(f map[string]any) bool {
		return f["Title"] == "first"
	})).Return("rec1", nil)
	creator.On("CreateRecord", mock.Anything, mock.Anything, mock.Anything, mock.MatchedBy(func(f map[string]any) bool {
		return f["Title"] == "second"
	})).Return("", errors.New("rate limited"))
	creator.On("CreateRecord", mock.Anything, mock.Anything, mock.Anything, mock.MatchedBy(func(f map[string]any) bool {
		return f["Title"] == "third"
	})).Return("rec3", nil)

	s := NewSink(creator, testResolver(), "Tasks", logging.NewNop())
	actions := []meeting.Action{{Task: "first"}, {Task: "second"}, {Task: "third"}}
	outcome := s.RegisterTasks(context.Background(), actions, "apollo", "2026-03-10")

	assert.False(t, outcome.Success)
	assert.Equal(t, 2, outcome.Committed)
	assert.Equal(t, 1, outcome.Failed)
	require.Len(t, outcome.Errors, 1)
	assert.Equal(t, "second", outcome.Errors[0].Subject)
}

// Duplicate submissions create duplicate records: the sink never
// searches for an existing record before writing.
func TestRegisterTasks_NoDedupe(t *testing.T) {
	creator := &MockCreator{}
	creator.On("CreateRecord", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return("rec", nil).Times(2)

	s := NewSink(creator, testResolver(), "Tasks", logging.NewNop())
	actions := []meeting.Action{{Task: "same task"}}

	s.RegisterTasks(context.Background(), actions, "apollo", "2026-03-10")
	s.RegisterTasks(context.Background(), actions, "apollo", "2026-03-10")

	creator.AssertNumberOfCalls(t, "CreateRecord", 2)
}
