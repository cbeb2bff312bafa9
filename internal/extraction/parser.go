package extraction

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/kaptinlin/jsonrepair"
	"github.com/tidwall/gjson"

	"github.com/fyrsmithlabs/minuted/internal/meeting"
)

// fencedBlock matches a ```json ... ``` (or bare ``` ... ```) block.
var fencedBlock = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)```")

// ParseResult parses free-form model text into decisions and actions.
// A fenced code block is preferred; otherwise the whole trimmed text is
// treated as the document. Unparseable input yields empty sequences and
// a ParseError instead of an error, and non-array decisions/actions
// fields are coerced to empty sequences.
func ParseResult(text string) Result {
	candidate := strings.TrimSpace(text)
	if m := fencedBlock.FindStringSubmatch(candidate); m != nil {
		candidate = strings.TrimSpace(m[1])
	}
	if candidate == "" {
		return Result{ParseError: "empty extraction output"}
	}
	// jsonrepair happily quotes prose into a JSON string, so only text
	// that at least starts like a JSON document is worth repairing.
	if candidate[0] != '{' && candidate[0] != '[' {
		return Result{ParseError: "extraction output is not valid JSON"}
	}

	doc := candidate
	if !gjson.Valid(doc) {
		repaired, err := jsonrepair.JSONRepair(doc)
		if err != nil || !gjson.Valid(repaired) {
			return Result{ParseError: "extraction output is not valid JSON"}
		}
		doc = repaired
	}

	var res Result
	res.Decisions = decodeArray[meeting.Decision](gjson.Get(doc, "decisions"))
	res.Actions = decodeArray[meeting.Action](gjson.Get(doc, "actions"))
	return res
}

// decodeArray decodes a gjson array into typed items, dropping elements
// that do not decode. A missing or non-array field yields nil.
func decodeArray[T any](v gjson.Result) []T {
	if !v.IsArray() {
		return nil
	}
	var out []T
	for _, item := range v.Array() {
		var decoded T
		if err := json.Unmarshal([]byte(item.Raw), &decoded); err != nil {
			continue
		}
		out = append(out, decoded)
	}
	return out
}
