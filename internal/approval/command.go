// Package approval interprets human approval commands against a
// pending proposal and dispatches approved items to the persistence
// sinks. It is a pure decision layer: idempotence under redelivery is
// the sinks' concern, not this package's.
package approval

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Kind is the approval command variant.
type Kind string

// Command kinds, matching the presentation layer's action ids.
const (
	KindApproveItem Kind = "approve_item"
	KindRejectItem  Kind = "reject_item"
	KindApproveAll  Kind = "approve_all"
	KindRejectAll   Kind = "reject_all"
)

// ItemType addresses one of the proposal's two sequences.
type ItemType string

// Item types carried in button values.
const (
	ItemDecision ItemType = "decision"
	ItemAction   ItemType = "action"
)

// ErrUnknownCommand is returned for action ids this layer does not
// understand.
var ErrUnknownCommand = errors.New("unknown approval command")

// Command is one validated approval instruction. Index is meaningful
// only for the per-item kinds and addresses the proposal sequence
// matching ItemType.
type Command struct {
	Kind     Kind
	ItemType ItemType
	Index    int
	Raw      string
}

// ParseCommand validates an action id and its value into a Command.
// Per-item values have the form "<type>:<index>". Range checking
// against the live proposal happens at dispatch, not here.
func ParseCommand(actionID, value string) (Command, error) {
	switch Kind(actionID) {
	case KindApproveAll:
		return Command{Kind: KindApproveAll, Raw: value}, nil
	case KindRejectAll:
		return Command{Kind: KindRejectAll, Raw: value}, nil
	case KindApproveItem, KindRejectItem:
		itemType, index, err := parseItemValue(value)
		if err != nil {
			return Command{}, err
		}
		return Command{Kind: Kind(actionID), ItemType: itemType, Index: index, Raw: value}, nil
	default:
		return Command{}, fmt.Errorf("%w: %q", ErrUnknownCommand, actionID)
	}
}

func parseItemValue(value string) (ItemType, int, error) {
	parts := strings.SplitN(value, ":", 2)
	if len(parts) != 2 {
		return "", 0, fmt.Errorf("malformed item value %q", value)
	}

	itemType := ItemType(parts[0])
	if itemType != ItemDecision && itemType != ItemAction {
		return "", 0, fmt.Errorf("unknown item type %q", parts[0])
	}

	index, err := strconv.Atoi(parts[1])
	if err != nil {
		return "", 0, fmt.Errorf("malformed item index %q", parts[1])
	}
	if index < 0 {
		return "", 0, fmt.Errorf("negative item index %d", index)
	}
	return itemType, index, nil
}
