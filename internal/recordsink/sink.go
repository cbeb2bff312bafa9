package recordsink

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/minuted/internal/logging"
	"github.com/fyrsmithlabs/minuted/internal/meeting"
	"github.com/fyrsmithlabs/minuted/internal/project"
)

// Record field values fixed for this intake path.
const (
	initialStatus    = "未着手"
	provenanceSource = "minuted"
)

// Sink registers approved actions as task records.
type Sink struct {
	creator  RecordCreator
	resolver project.Resolver
	table    string
	logger   *logging.Logger
	now      func() time.Time
}

// NewSink creates a Sink writing to the given table.
func NewSink(creator RecordCreator, resolver project.Resolver, table string, logger *logging.Logger) *Sink {
	return &Sink{
		creator:  creator,
		resolver: resolver,
		table:    table,
		logger:   logger,
		now:      time.Now,
	}
}

// RegisterTasks writes each action as a new record. An unresolved
// record destination fails the whole batch with zero attempts;
// otherwise per-action failures are isolated and the batch continues.
func (s *Sink) RegisterTasks(ctx context.Context, actions []meeting.Action, projectID, meetingDate string) meeting.CommitOutcome {
	outcome := meeting.CommitOutcome{Success: true}
	if len(actions) == 0 {
		return outcome
	}

	dest, ok := s.resolver.ResolveRecordDestination(projectID)
	if !ok {
		outcome.Success = false
		outcome.Failed = len(actions)
		outcome.Errors = append(outcome.Errors, meeting.ItemError{
			Subject: projectID,
			Reason:  "no record destination configured for project",
		})
		return outcome
	}

	for _, a := range actions {
		fields := map[string]any{
			"Title":       a.Task,
			"Assignee":    a.Assignee,
			"Status":      initialStatus,
			"Source":      provenanceSource,
			"MeetingDate": meetingDate,
		}
		if due := meeting.ParseDeadline(a.Deadline, s.now()); due != nil {
			fields["Deadline"] = due.Format("2006-01-02")
		}

		id, err := s.creator.CreateRecord(ctx, dest.BaseID, s.table, fields)
		if err != nil {
			s.logger.Warn(ctx, "task registration failed",
				zap.String("project_id", projectID),
				zap.Error(err),
			)
			outcome.AddError(a.Task, err.Error())
			continue
		}

		s.logger.Debug(ctx, "task registered",
			zap.String("project_id", projectID),
			zap.String("record_id", id),
		)
		outcome.Committed++
	}
	return outcome
}
