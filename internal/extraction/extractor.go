package extraction

import (
	"context"
	"fmt"
	"strings"
)

// extractionPrompt instructs the model to emit a single JSON object.
// The output is still treated as untrusted; the parser repairs or
// discards whatever comes back.
const extractionPrompt = `あなたは会議の書記です。以下の会議の文字起こしから、決定事項とアクションアイテムを抽出してください。

出力は次の形式のJSONのみとし、他のテキストを含めないでください:

` + "```json" + `
{
  "decisions": [
    {"content": "決定の内容", "context": "決定に至った背景(任意)"}
  ],
  "actions": [
    {"task": "タスクの内容", "assignee": "担当者", "deadline": "期限(例: 12/20, 2026/01/15, 来週, 今週中)"}
  ]
}
` + "```" + `

決定事項やアクションアイテムが無い場合は空の配列を返してください。

--- 文字起こし ---
%s`

// Extractor runs the extraction model against transcripts.
type Extractor struct {
	generator Generator
}

// NewExtractor creates an Extractor using the given model collaborator.
func NewExtractor(generator Generator) *Extractor {
	return &Extractor{generator: generator}
}

// Extract proposes decisions and actions from a transcript. Every
// parsed decision is stamped with the governing meeting date, replacing
// anything the model put there. Generator failures yield an empty
// Result carrying Err; Extract itself never fails.
func (e *Extractor) Extract(ctx context.Context, transcript, meetingDate string) Result {
	if strings.TrimSpace(transcript) == "" {
		return Result{}
	}

	text, err := e.generator.Generate(ctx, fmt.Sprintf(extractionPrompt, transcript))
	if err != nil {
		return Result{Err: err.Error()}
	}

	res := ParseResult(text)
	for i := range res.Decisions {
		res.Decisions[i].Date = meetingDate
	}
	return res
}
