package slack

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ApprovalEvent is one approval click, normalized from Slack's
// interaction payload. MessageTS is the presentation handle.
type ApprovalEvent struct {
	ActionID  string
	Value     string
	MessageTS string
	Channel   string
	UserID    string
}

// interactionPayload mirrors the slice of Slack's block_actions
// payload this service reads.
type interactionPayload struct {
	Type string `json:"type"`
	User struct {
		ID string `json:"id"`
	} `json:"user"`
	Container struct {
		MessageTS string `json:"message_ts"`
	} `json:"container"`
	Channel struct {
		ID string `json:"id"`
	} `json:"channel"`
	Actions []struct {
		ActionID string `json:"action_id"`
		Value    string `json:"value"`
	} `json:"actions"`
}

// ParseInteraction decodes the JSON payload of an interaction POST into
// an ApprovalEvent.
func ParseInteraction(raw []byte) (ApprovalEvent, error) {
	var payload interactionPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return ApprovalEvent{}, fmt.Errorf("invalid interaction payload: %w", err)
	}
	if payload.Type != "block_actions" {
		return ApprovalEvent{}, fmt.Errorf("unsupported interaction type %q", payload.Type)
	}
	if len(payload.Actions) == 0 {
		return ApprovalEvent{}, fmt.Errorf("interaction payload has no actions")
	}
	if strings.TrimSpace(payload.Container.MessageTS) == "" {
		return ApprovalEvent{}, fmt.Errorf("interaction payload has no message timestamp")
	}

	return ApprovalEvent{
		ActionID:  payload.Actions[0].ActionID,
		Value:     payload.Actions[0].Value,
		MessageTS: payload.Container.MessageTS,
		Channel:   payload.Channel.ID,
		UserID:    payload.User.ID,
	}, nil
}

// eventEnvelope is the outer shape of an Events API POST.
type eventEnvelope struct {
	Type      string `json:"type"`
	Challenge string `json:"challenge"`
}

// ParseEventChallenge returns the url_verification challenge string, or
// "" when the body is any other event type.
func ParseEventChallenge(raw []byte) string {
	var envelope eventEnvelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return ""
	}
	if envelope.Type != "url_verification" {
		return ""
	}
	return envelope.Challenge
}
