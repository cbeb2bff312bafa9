package approval

import (
	"context"
	"fmt"

	"github.com/fyrsmithlabs/minuted/internal/meeting"
	"github.com/fyrsmithlabs/minuted/internal/proposal"
)

// DecisionSink persists approved decisions.
type DecisionSink interface {
	CommitDecisions(ctx context.Context, decisions []meeting.Decision, projectID, meetingDate string) meeting.CommitOutcome
}

// TaskSink persists approved actions.
type TaskSink interface {
	RegisterTasks(ctx context.Context, actions []meeting.Action, projectID, meetingDate string) meeting.CommitOutcome
}

// Outcome is the normalized result of one dispatched command.
type Outcome struct {
	Kind Kind

	// Final marks the two whole-batch transitions. The orchestrator
	// evicts the proposal and replaces the presentation exactly when
	// Final is set.
	Final bool

	DecisionsCommitted int
	ActionsRegistered  int
	DecisionsRejected  int
	ActionsRejected    int

	// DecisionErrors and ActionErrors attribute failures to the sink
	// that produced them; Errors is the combined view for display.
	DecisionErrors []meeting.ItemError
	ActionErrors   []meeting.ItemError
	Errors         []meeting.ItemError
}

// Failed reports whether any item in the dispatch failed.
func (o Outcome) Failed() bool {
	return len(o.Errors) > 0
}

// Machine decides the downstream effect of approval commands. It holds
// no per-proposal state: a proposal is Proposed until a whole-batch
// command finalizes it, and per-item history is not tracked.
type Machine struct {
	decisions DecisionSink
	tasks     TaskSink
}

// NewMachine creates a Machine over the two sinks.
func NewMachine(decisions DecisionSink, tasks TaskSink) *Machine {
	return &Machine{decisions: decisions, tasks: tasks}
}

// Dispatch applies a command to a live proposal. An out-of-range item
// index is a handled error; sink failures are data in the Outcome, not
// errors.
func (m *Machine) Dispatch(ctx context.Context, p *proposal.Proposal, cmd Command) (Outcome, error) {
	switch cmd.Kind {
	case KindApproveItem:
		return m.approveItem(ctx, p, cmd)
	case KindRejectItem:
		if err := checkIndex(p, cmd); err != nil {
			return Outcome{}, err
		}
		out := Outcome{Kind: cmd.Kind}
		if cmd.ItemType == ItemDecision {
			out.DecisionsRejected = 1
		} else {
			out.ActionsRejected = 1
		}
		return out, nil
	case KindApproveAll:
		return m.approveAll(ctx, p), nil
	case KindRejectAll:
		return Outcome{
			Kind:              cmd.Kind,
			Final:             true,
			DecisionsRejected: len(p.Decisions),
			ActionsRejected:   len(p.Actions),
		}, nil
	default:
		return Outcome{}, fmt.Errorf("%w: %q", ErrUnknownCommand, cmd.Kind)
	}
}

// approveItem dispatches a single item to its sink as a singleton
// batch.
func (m *Machine) approveItem(ctx context.Context, p *proposal.Proposal, cmd Command) (Outcome, error) {
	if err := checkIndex(p, cmd); err != nil {
		return Outcome{}, err
	}

	out := Outcome{Kind: cmd.Kind}
	if cmd.ItemType == ItemDecision {
		result := m.decisions.CommitDecisions(ctx, []meeting.Decision{p.Decisions[cmd.Index]}, p.ProjectID, p.MeetingDate)
		out.DecisionsCommitted = result.Committed
		out.DecisionErrors = result.Errors
		out.Errors = result.Errors
	} else {
		result := m.tasks.RegisterTasks(ctx, []meeting.Action{p.Actions[cmd.Index]}, p.ProjectID, p.MeetingDate)
		out.ActionsRegistered = result.Committed
		out.ActionErrors = result.Errors
		out.Errors = result.Errors
	}
	return out, nil
}

// approveAll dispatches both full sequences, skipping empty ones. No
// ordering between the two sinks is guaranteed; failures from either
// are aggregated.
func (m *Machine) approveAll(ctx context.Context, p *proposal.Proposal) Outcome {
	out := Outcome{Kind: KindApproveAll, Final: true}

	if len(p.Decisions) > 0 {
		result := m.decisions.CommitDecisions(ctx, p.Decisions, p.ProjectID, p.MeetingDate)
		out.DecisionsCommitted = result.Committed
		out.DecisionErrors = result.Errors
		out.Errors = append(out.Errors, result.Errors...)
	}
	if len(p.Actions) > 0 {
		result := m.tasks.RegisterTasks(ctx, p.Actions, p.ProjectID, p.MeetingDate)
		out.ActionsRegistered = result.Committed
		out.ActionErrors = result.Errors
		out.Errors = append(out.Errors, result.Errors...)
	}
	return out
}

// checkIndex validates a per-item command against the proposal it
// targets.
func checkIndex(p *proposal.Proposal, cmd Command) error {
	var size int
	if cmd.ItemType == ItemDecision {
		size = len(p.Decisions)
	} else {
		size = len(p.Actions)
	}
	if cmd.Index < 0 || cmd.Index >= size {
		return fmt.Errorf("%s index %d out of range (batch has %d)", cmd.ItemType, cmd.Index, size)
	}
	return nil
}
