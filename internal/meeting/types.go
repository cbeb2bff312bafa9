// Package meeting holds the domain types shared by the extraction,
// approval, and persistence layers, plus the deadline and slug
// normalizers applied to extracted items.
package meeting

// Decision is a qualitative statement agreed upon in a meeting,
// destined for the document store. Immutable once extracted; it has no
// identity beyond its position in a batch until it is committed and
// gains a file path.
type Decision struct {
	Content string `json:"content"`
	Context string `json:"context,omitempty"`
	Date    string `json:"date"`
}

// Action is a task candidate with an assignee and a free-form deadline,
// destined for the record store.
type Action struct {
	Task     string `json:"task"`
	Assignee string `json:"assignee"`
	Deadline string `json:"deadline"`
}

// ItemError records a single failed item within a batch commit.
type ItemError struct {
	// Subject identifies the failed item, usually its content or title.
	Subject string `json:"subject"`
	Reason  string `json:"reason"`
}

// CommitOutcome aggregates the result of persisting a batch. Each item
// in a batch is attempted independently; Committed+Failed always equals
// the batch size when the destination resolves.
type CommitOutcome struct {
	Success   bool        `json:"success"`
	Committed int         `json:"committed"`
	Failed    int         `json:"failed"`
	Errors    []ItemError `json:"errors,omitempty"`
}

// AddError records a per-item failure and keeps the counters consistent.
func (o *CommitOutcome) AddError(subject, reason string) {
	o.Failed++
	o.Success = false
	o.Errors = append(o.Errors, ItemError{Subject: subject, Reason: reason})
}
