package slack

import (
	"fmt"

	"github.com/fyrsmithlabs/minuted/internal/proposal"
)

// Action ids understood by the approval layer. The button value carries
// the item address as "<type>:<index>"; whole-batch buttons carry no
// value.
const (
	ActionApproveItem = "approve_item"
	ActionRejectItem  = "reject_item"
	ActionApproveAll  = "approve_all"
	ActionRejectAll   = "reject_all"
)

// Block is a loosely-typed Block Kit element. The structures here are
// built once and serialized; nothing reads them back.
type Block map[string]any

func sectionBlock(text string) Block {
	return Block{
		"type": "section",
		"text": map[string]any{"type": "mrkdwn", "text": text},
	}
}

func headerBlock(text string) Block {
	return Block{
		"type": "header",
		"text": map[string]any{"type": "plain_text", "text": text, "emoji": true},
	}
}

func button(text, actionID, value, style string) map[string]any {
	b := map[string]any{
		"type":      "button",
		"text":      map[string]any{"type": "plain_text", "text": text, "emoji": true},
		"action_id": actionID,
	}
	if value != "" {
		b["value"] = value
	}
	if style != "" {
		b["style"] = style
	}
	return b
}

func actionsBlock(blockID string, elements ...map[string]any) Block {
	return Block{
		"type":     "actions",
		"block_id": blockID,
		"elements": elements,
	}
}

// BuildProposalBlocks renders a pending proposal as Block Kit: one
// section per item with its own approve/reject pair, and a trailing
// whole-batch row.
func BuildProposalBlocks(p *proposal.Proposal) []Block {
	blocks := []Block{
		headerBlock(fmt.Sprintf("📋 %s 議事録の確認 (%s)", p.ProjectName, p.MeetingDate)),
	}

	if len(p.Decisions) > 0 {
		blocks = append(blocks, sectionBlock("*決定事項*"))
		for i, d := range p.Decisions {
			text := fmt.Sprintf("%d. %s", i+1, d.Content)
			if d.Context != "" {
				text += fmt.Sprintf("\n_%s_", d.Context)
			}
			blocks = append(blocks,
				sectionBlock(text),
				actionsBlock(fmt.Sprintf("decision_%d", i),
					button("承認", ActionApproveItem, fmt.Sprintf("decision:%d", i), "primary"),
					button("却下", ActionRejectItem, fmt.Sprintf("decision:%d", i), "danger"),
				),
			)
		}
	}

	if len(p.Actions) > 0 {
		blocks = append(blocks, sectionBlock("*アクションアイテム*"))
		for i, a := range p.Actions {
			text := fmt.Sprintf("%d. %s — %s", i+1, a.Task, a.Assignee)
			if a.Deadline != "" {
				text += fmt.Sprintf(" (期限: %s)", a.Deadline)
			}
			blocks = append(blocks,
				sectionBlock(text),
				actionsBlock(fmt.Sprintf("action_%d", i),
					button("承認", ActionApproveItem, fmt.Sprintf("action:%d", i), "primary"),
					button("却下", ActionRejectItem, fmt.Sprintf("action:%d", i), "danger"),
				),
			)
		}
	}

	blocks = append(blocks,
		actionsBlock("batch",
			button("すべて承認", ActionApproveAll, "", "primary"),
			button("すべて却下", ActionRejectAll, "", "danger"),
		),
	)
	return blocks
}

// StatusBlocks renders a short final status line replacing a proposal.
func StatusBlocks(status string) []Block {
	return []Block{sectionBlock(status)}
}
