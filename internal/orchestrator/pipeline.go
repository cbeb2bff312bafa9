// Package orchestrator wires extraction, proposal storage,
// presentation, and approval dispatch into the governance pipeline.
package orchestrator

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/minuted/internal/approval"
	"github.com/fyrsmithlabs/minuted/internal/extraction"
	"github.com/fyrsmithlabs/minuted/internal/logging"
	"github.com/fyrsmithlabs/minuted/internal/meeting"
	"github.com/fyrsmithlabs/minuted/internal/proposal"
	"github.com/fyrsmithlabs/minuted/internal/slack"
	"github.com/fyrsmithlabs/minuted/internal/telemetry"
)

// restartMessage is shown when an approval arrives for a proposal that
// was purged or already finalized. The event cannot be replayed; the
// flow has to start over.
const restartMessage = "この議事録は見つかりませんでした。提案の有効期限が切れたか、すでに処理済みです。もう一度議事録の抽出からやり直してください。"

// transcriptExtractor is the extraction step collaborator.
type transcriptExtractor interface {
	Extract(ctx context.Context, transcript, meetingDate string) extraction.Result
}

// Pipeline owns the proposal store and coordinates the flow from
// transcript to durable records.
type Pipeline struct {
	extractor transcriptExtractor
	store     *proposal.Store
	machine   *approval.Machine
	messenger slack.Messenger
	logger    *logging.Logger
	metrics   *telemetry.Metrics
}

// NewPipeline wires the pipeline. metrics may be nil.
func NewPipeline(
	extractor transcriptExtractor,
	store *proposal.Store,
	machine *approval.Machine,
	messenger slack.Messenger,
	logger *logging.Logger,
	metrics *telemetry.Metrics,
) *Pipeline {
	return &Pipeline{
		extractor: extractor,
		store:     store,
		machine:   machine,
		messenger: messenger,
		logger:    logger,
		metrics:   metrics,
	}
}

// PresentRequest carries one transcript into the pipeline.
type PresentRequest struct {
	Transcript  string
	Channel     string
	ProjectID   string
	ProjectName string
	MeetingDate string

	// PrecomputedActions, when non-nil, replaces the extracted action
	// sequence. Callers that already track action items upstream use
	// this to keep extraction for decisions only.
	PrecomputedActions []meeting.Action
}

// PresentResult reports what was presented.
type PresentResult struct {
	Presented      bool   `json:"presented"`
	DecisionsCount int    `json:"decisions_count"`
	ActionsCount   int    `json:"actions_count"`
	Handle         string `json:"handle,omitempty"`
	Diagnostic     string `json:"diagnostic,omitempty"`
}

// EventResult is the user-facing outcome of one approval event.
type EventResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// PresentProposal extracts candidates from a transcript and presents
// them for approval. Nothing is presented (and the store is untouched)
// when extraction yields no items.
func (p *Pipeline) PresentProposal(ctx context.Context, req PresentRequest) (PresentResult, error) {
	res := p.extractor.Extract(ctx, req.Transcript, req.MeetingDate)
	if res.Err != "" {
		p.logger.Warn(ctx, "extraction failed", zap.String("reason", res.Err))
	} else if res.ParseError != "" {
		p.logger.Warn(ctx, "extraction output unparseable", zap.String("reason", res.ParseError))
	}

	actions := res.Actions
	if req.PrecomputedActions != nil {
		actions = req.PrecomputedActions
	}

	if len(res.Decisions) == 0 && len(actions) == 0 {
		return PresentResult{
			Presented:  false,
			Diagnostic: firstNonEmpty(res.Err, res.ParseError),
		}, nil
	}

	pending := &proposal.Proposal{
		ProjectID:   req.ProjectID,
		ProjectName: req.ProjectName,
		MeetingDate: req.MeetingDate,
		Decisions:   res.Decisions,
		Actions:     actions,
		ChannelID:   req.Channel,
	}

	summary := fmt.Sprintf("%s 議事録: 決定 %d 件 / アクション %d 件", req.ProjectName, len(pending.Decisions), len(pending.Actions))
	ts, err := p.messenger.PostMessage(ctx, req.Channel, summary, slack.BuildProposalBlocks(pending))
	if err != nil {
		return PresentResult{}, fmt.Errorf("presenting proposal: %w", err)
	}

	p.store.Put(ts, pending)
	if p.metrics != nil {
		p.metrics.ProposalsPresented.Inc()
	}
	p.logger.Info(ctx, "proposal presented",
		zap.String("project_id", req.ProjectID),
		zap.String("handle", ts),
		zap.Int("decisions", len(pending.Decisions)),
		zap.Int("actions", len(pending.Actions)),
	)

	return PresentResult{
		Presented:      true,
		DecisionsCount: len(pending.Decisions),
		ActionsCount:   len(pending.Actions),
		Handle:         ts,
	}, nil
}

// HandleApprovalEvent resolves an approval click against its pending
// proposal and applies the outcome. Whole-batch transitions replace the
// presentation and evict the proposal; per-item outcomes reply without
// touching it.
func (p *Pipeline) HandleApprovalEvent(ctx context.Context, ev slack.ApprovalEvent) EventResult {
	pending, ok := p.store.Get(ev.MessageTS)
	if !ok {
		return EventResult{Success: false, Message: restartMessage}
	}

	cmd, err := approval.ParseCommand(ev.ActionID, ev.Value)
	if err != nil {
		p.logger.Warn(ctx, "unparseable approval command",
			zap.String("action_id", ev.ActionID),
			zap.String("value", ev.Value),
			zap.Error(err),
		)
		return EventResult{Success: false, Message: "操作を解釈できませんでした。"}
	}

	outcome, err := p.machine.Dispatch(ctx, pending, cmd)
	if err != nil {
		return EventResult{Success: false, Message: fmt.Sprintf("操作を処理できませんでした: %v", err)}
	}

	p.recordMetrics(outcome)
	status := statusLine(pending, outcome)

	if outcome.Final {
		if err := p.messenger.UpdateMessage(ctx, pending.ChannelID, ev.MessageTS, status, slack.StatusBlocks(status)); err != nil {
			p.logger.Warn(ctx, "failed to update presentation", zap.Error(err))
		}
		p.store.Delete(ev.MessageTS)
	} else {
		if _, err := p.messenger.PostMessage(ctx, pending.ChannelID, status, nil); err != nil {
			p.logger.Warn(ctx, "failed to post status", zap.Error(err))
		}
	}

	return EventResult{Success: !outcome.Failed(), Message: status}
}

func (p *Pipeline) recordMetrics(out approval.Outcome) {
	if p.metrics == nil {
		return
	}
	p.metrics.DecisionsCommitted.Add(float64(out.DecisionsCommitted))
	p.metrics.TasksRegistered.Add(float64(out.ActionsRegistered))
	if n := len(out.DecisionErrors); n > 0 {
		p.metrics.CommitFailures.WithLabelValues("docs").Add(float64(n))
	}
	if n := len(out.ActionErrors); n > 0 {
		p.metrics.CommitFailures.WithLabelValues("tasks").Add(float64(n))
	}
}

// statusLine builds the short user-visible status for an outcome.
// Internal error detail stays in the logs; only counts and subjects
// reach the approval surface.
func statusLine(p *proposal.Proposal, out approval.Outcome) string {
	switch out.Kind {
	case approval.KindApproveItem:
		if out.Failed() {
			return fmt.Sprintf("❌ 保存に失敗しました: %s", out.Errors[0].Subject)
		}
		if out.DecisionsCommitted > 0 {
			return "✅ 決定事項を保存しました。"
		}
		return "✅ タスクを登録しました。"
	case approval.KindRejectItem:
		return "🗑 この項目を却下しました。"
	case approval.KindApproveAll:
		var b strings.Builder
		fmt.Fprintf(&b, "✅ 一括承認: 決定 %d/%d 件保存、タスク %d/%d 件登録。",
			out.DecisionsCommitted, len(p.Decisions),
			out.ActionsRegistered, len(p.Actions),
		)
		if out.Failed() {
			subjects := make([]string, 0, len(out.Errors))
			for _, e := range out.Errors {
				subjects = append(subjects, e.Subject)
			}
			fmt.Fprintf(&b, " 失敗: %s", strings.Join(subjects, ", "))
		}
		return b.String()
	case approval.KindRejectAll:
		return fmt.Sprintf("🗑 一括却下: 決定 %d 件、アクション %d 件を破棄しました。", out.DecisionsRejected, out.ActionsRejected)
	default:
		return "処理しました。"
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
