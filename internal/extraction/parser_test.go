package extraction

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseResult_FencedBlock(t *testing.T) {
	text := "Here is what I found:\n```json\n" +
		`{"decisions":[{"content":"use postgres","context":"perf review"}],` +
		`"actions":[{"task":"write migration","assignee":"tanaka","deadline":"12/20"}]}` +
		"\n```\nLet me know if you need more."

	res := ParseResult(text)
	require.Empty(t, res.ParseError)
	require.Len(t, res.Decisions, 1)
	require.Len(t, res.Actions, 1)
	assert.Equal(t, "use postgres", res.Decisions[0].Content)
	assert.Equal(t, "tanaka", res.Actions[0].Assignee)
}

func TestParseResult_BareJSON(t *testing.T) {
	res := ParseResult(`{"decisions":[{"content":"ship it"}],"actions":[]}`)
	require.Empty(t, res.ParseError)
	require.Len(t, res.Decisions, 1)
	assert.Empty(t, res.Actions)
}

func TestParseResult_RepairsMalformedJSON(t *testing.T) {
	// Trailing comma and unquoted key: typical model sloppiness.
	res := ParseResult(`{decisions: [{"content": "use postgres"},], "actions": []}`)
	require.Empty(t, res.ParseError)
	require.Len(t, res.Decisions, 1)
	assert.Equal(t, "use postgres", res.Decisions[0].Content)
}

func TestParseResult_Degrades(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"whitespace", "   \n  "},
		{"prose", "I could not find any decisions in this transcript, sorry."},
		{"empty fence", "```json\n```"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := ParseResult(tt.input)
			assert.Empty(t, res.Decisions)
			assert.Empty(t, res.Actions)
			assert.NotEmpty(t, res.ParseError)
		})
	}
}

func TestParseResult_NonArrayFieldsCoerced(t *testing.T) {
	res := ParseResult(`{"decisions":"none","actions":{"task":"x"}}`)
	assert.Empty(t, res.Decisions)
	assert.Empty(t, res.Actions)
	assert.Empty(t, res.ParseError, "valid JSON with wrong shapes is not a parse error")
}

type stubGenerator struct {
	text string
	err  error
}

func (s *stubGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	return s.text, s.err
}

func TestExtractor_StampsMeetingDate(t *testing.T) {
	gen := &stubGenerator{text: `{"decisions":[{"content":"use postgres","date":"1999-01-01"}],"actions":[]}`}
	e := NewExtractor(gen)

	res := e.Extract(context.Background(), "we talked about databases", "2026-03-10")
	require.Len(t, res.Decisions, 1)
	assert.Equal(t, "2026-03-10", res.Decisions[0].Date, "hallucinated date overridden")
}

func TestExtractor_GeneratorFailure(t *testing.T) {
	e := NewExtractor(&stubGenerator{err: errors.New("model unavailable")})

	res := e.Extract(context.Background(), "transcript", "2026-03-10")
	assert.Empty(t, res.Decisions)
	assert.Empty(t, res.Actions)
	assert.Contains(t, res.Err, "model unavailable")
}

func TestExtractor_EmptyTranscript(t *testing.T) {
	gen := &stubGenerator{text: `{"decisions":[{"content":"ghost"}]}`}
	e := NewExtractor(gen)

	res := e.Extract(context.Background(), "   ", "2026-03-10")
	assert.Empty(t, res.Decisions)
	assert.Empty(t, res.Err)
}
