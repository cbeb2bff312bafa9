// Package extraction turns a meeting transcript into candidate
// decisions and actions via an LLM, degrading gracefully on malformed
// model output. Nothing in this package mutates shared state; its
// output becomes a proposal only once the orchestrator stores it.
package extraction

import (
	"context"

	"github.com/fyrsmithlabs/minuted/internal/meeting"
)

// Generator is the text-extraction model collaborator. Its output is
// untrusted free text and is never assumed to be valid JSON.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Result is the outcome of one extraction run. Malformed model output
// and generator failures degrade to empty sequences plus a diagnostic;
// extraction never returns a Go error to its caller.
type Result struct {
	Decisions []meeting.Decision `json:"decisions"`
	Actions   []meeting.Action   `json:"actions"`

	// ParseError is set when the model output could not be parsed.
	ParseError string `json:"parse_error,omitempty"`

	// Err is set when the generator itself failed.
	Err string `json:"error,omitempty"`
}

// Config holds extraction model configuration.
type Config struct {
	APIKey  string
	Model   string
	BaseURL string
	Timeout int // seconds
}
