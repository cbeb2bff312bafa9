package approval

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/fyrsmithlabs/minuted/internal/meeting"
	"github.com/fyrsmithlabs/minuted/internal/proposal"
)

// MockDecisionSink is a mock implementation of DecisionSink.
type MockDecisionSink struct {
	mock.Mock
}

func (m *MockDecisionSink) CommitDecisions(ctx context.Context, decisions []meeting.Decision, projectID, meetingDate string) meeting.CommitOutcome {
	args := m.Called(ctx, decisions, projectID, meetingDate)
	return args.Get(0).(meeting.CommitOutcome)
}

// MockTaskSink is a mock implementation of TaskSink.
type MockTaskSink struct {
	mock.Mock
}

func (m *MockTaskSink) RegisterTasks(ctx context.Context, actions []meeting.Action, projectID, meetingDate string) meeting.CommitOutcome {
	args := m.Called(ctx, actions, projectID, meetingDate)
	return args.Get(0).(meeting.CommitOutcome)
}

func twoByTwoProposal() *proposal.Proposal {
	return &proposal.Proposal{
		ProjectID:   "apollo",
		MeetingDate: "2026-03-10",
		Decisions: []meeting.Decision{
			{Content: "use postgres", Date: "2026-03-10"},
			{Content: "drop old api", Date: "2026-03-10"},
		},
		Actions: []meeting.Action{
			{Task: "write migration", Assignee: "tanaka"},
			{Task: "update docs", Assignee: "suzuki"},
		},
	}
}

func TestDispatch_ApproveItem_Decision(t *testing.T) {
	decisions := &MockDecisionSink{}
	tasks := &MockTaskSink{}
	decisions.On("CommitDecisions", mock.Anything, mock.MatchedBy(func(d []meeting.Decision) bool {
		return len(d) == 1 && d[0].Content == "drop old api"
	}), "apollo", "2026-03-10").Return(meeting.CommitOutcome{Success: true, Committed: 1})

	m := NewMachine(decisions, tasks)
	out, err := m.Dispatch(context.Background(), twoByTwoProposal(), Command{Kind: KindApproveItem, ItemType: ItemDecision, Index: 1})

	require.NoError(t, err)
	assert.False(t, out.Final)
	assert.Equal(t, 1, out.DecisionsCommitted)
	assert.False(t, out.Failed())
	decisions.AssertExpectations(t)
	tasks.AssertNotCalled(t, "RegisterTasks")
}

func TestDispatch_ApproveItem_OutOfRange(t *testing.T) {
	decisions := &MockDecisionSink{}
	tasks := &MockTaskSink{}
	m := NewMachine(decisions, tasks)

	_, err := m.Dispatch(context.Background(), twoByTwoProposal(), Command{Kind: KindApproveItem, ItemType: ItemAction, Index: 5})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "out of range")
	decisions.AssertNotCalled(t, "CommitDecisions")
	tasks.AssertNotCalled(t, "RegisterTasks")
}

func TestDispatch_RejectItem_NeverCallsSinks(t *testing.T) {
	decisions := &MockDecisionSink{}
	tasks := &MockTaskSink{}
	m := NewMachine(decisions, tasks)

	out, err := m.Dispatch(context.Background(), twoByTwoProposal(), Command{Kind: KindRejectItem, ItemType: ItemDecision, Index: 0})

	require.NoError(t, err)
	assert.False(t, out.Final)
	assert.Equal(t, 1, out.DecisionsRejected)
	decisions.AssertNotCalled(t, "CommitDecisions")
	tasks.AssertNotCalled(t, "RegisterTasks")
}

func TestDispatch_ApproveAll_Aggregates(t *testing.T) {
	decisions := &MockDecisionSink{}
	tasks := &MockTaskSink{}
	decisions.On("CommitDecisions", mock.Anything, mock.Anything, "apollo", "2026-03-10").
		Return(meeting.CommitOutcome{Success: true, Committed: 2})
	// Record store fails on the second action only.
	tasks.On("RegisterTasks", mock.Anything, mock.Anything, "apollo", "2026-03-10").
		Return(meeting.CommitOutcome{
			Committed: 1,
			Failed:    1,
			Errors:    []meeting.ItemError{{Subject: "update docs", Reason: "rate limited"}},
		})

	m := NewMachine(decisions, tasks)
	out, err := m.Dispatch(context.Background(), twoByTwoProposal(), Command{Kind: KindApproveAll})

	require.NoError(t, err)
	assert.True(t, out.Final)
	assert.Equal(t, 2, out.DecisionsCommitted)
	assert.Equal(t, 1, out.ActionsRegistered)
	require.Len(t, out.Errors, 1)
	assert.Equal(t, "update docs", out.Errors[0].Subject)
	assert.Empty(t, out.DecisionErrors, "failure belongs to the task sink")
	require.Len(t, out.ActionErrors, 1)
	assert.Equal(t, "update docs", out.ActionErrors[0].Subject)
}

func TestDispatch_ApproveItem_FailureAttributedToTaskSink(t *testing.T) {
	decisions := &MockDecisionSink{}
	tasks := &MockTaskSink{}
	tasks.On("RegisterTasks", mock.Anything, mock.Anything, "apollo", "2026-03-10").
		Return(meeting.CommitOutcome{
			Failed: 1,
			Errors: []meeting.ItemError{{Subject: "write migration", Reason: "rate limited"}},
		})

	m := NewMachine(decisions, tasks)
	out, err := m.Dispatch(context.Background(), twoByTwoProposal(), Command{Kind: KindApproveItem, ItemType: ItemAction, Index: 0})

	require.NoError(t, err)
	assert.True(t, out.Failed())
	assert.Empty(t, out.DecisionErrors)
	require.Len(t, out.ActionErrors, 1)
	assert.Equal(t, "write migration", out.ActionErrors[0].Subject)
	decisions.AssertNotCalled(t, "CommitDecisions")
}

func TestDispatch_NegativeIndexIsHandled(t *testing.T) {
	decisions := &MockDecisionSink{}
	tasks := &MockTaskSink{}
	m := NewMachine(decisions, tasks)

	_, err := m.Dispatch(context.Background(), twoByTwoProposal(), Command{Kind: KindApproveItem, ItemType: ItemDecision, Index: -1})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "out of range")
	decisions.AssertNotCalled(t, "CommitDecisions")
	tasks.AssertNotCalled(t, "RegisterTasks")
}

func TestDispatch_ApproveAll_SkipsEmptySequences(t *testing.T) {
	decisions := &MockDecisionSink{}
	tasks := &MockTaskSink{}
	tasks.On("RegisterTasks", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(meeting.CommitOutcome{Success: true, Committed: 1})

	p := twoByTwoProposal()
	p.Decisions = nil
	p.Actions = p.Actions[:1]

	m := NewMachine(decisions, tasks)
	out, err := m.Dispatch(context.Background(), p, Command{Kind: KindApproveAll})

	require.NoError(t, err)
	assert.True(t, out.Final)
	decisions.AssertNotCalled(t, "CommitDecisions")
	tasks.AssertExpectations(t)
	assert.Equal(t, 1, out.ActionsRegistered)
}

func TestDispatch_RejectAll_NeverCallsSinks(t *testing.T) {
	decisions := &MockDecisionSink{}
	tasks := &MockTaskSink{}
	m := NewMachine(decisions, tasks)

	out, err := m.Dispatch(context.Background(), twoByTwoProposal(), Command{Kind: KindRejectAll})

	require.NoError(t, err)
	assert.True(t, out.Final)
	assert.Equal(t, 2, out.DecisionsRejected)
	assert.Equal(t, 2, out.ActionsRejected)
	decisions.AssertNotCalled(t, "CommitDecisions")
	tasks.AssertNotCalled(t, "RegisterTasks")
}

func TestDispatch_ApproveAll_ConfigurationFailure(t *testing.T) {
	decisions := &MockDecisionSink{}
	tasks := &MockTaskSink{}
	decisions.On("CommitDecisions", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(meeting.CommitOutcome{
			Failed: 2,
			Errors: []meeting.ItemError{{Subject: "apollo", Reason: "no document destination configured for project"}},
		})
	tasks.On("RegisterTasks", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(meeting.CommitOutcome{Success: true, Committed: 2})

	m := NewMachine(decisions, tasks)
	out, err := m.Dispatch(context.Background(), twoByTwoProposal(), Command{Kind: KindApproveAll})

	require.NoError(t, err)
	assert.Zero(t, out.DecisionsCommitted)
	assert.Equal(t, 2, out.ActionsRegistered)
	assert.True(t, out.Failed())
}
