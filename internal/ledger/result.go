// internal/ledger/result.go
package ledger

import "strings"

// Intent tags a classification Result.
type Intent string

const (
	IntentBookkeeping Intent = "bookkeeping"
	IntentOther       Intent = "other"
)

// FallbackReply is the neutral acknowledgment used when a candidate carries
// no usable reply text of its own.
const FallbackReply = "收到，有需要記帳跟我說～"

// Result is the tagged classification outcome. Exactly one variant is
// active: a bookkeeping result carries a complete Entry, an other result
// carries only a reply.
type Result struct {
	Intent Intent `json:"intent"`
	Entry  *Entry `json:"entry,omitempty"`
	Reply  string `json:"reply"`
}

// OtherResult builds an other-variant Result with the given reply.
func OtherResult(reply string) Result {
	return Result{Intent: IntentOther, Reply: reply}
}

// Validate normalizes a candidate Result so that nothing invalid ever
// reaches persistence. A bookkeeping candidate passes only with a known
// category and a strictly positive amount; an other candidate passes only
// with a non-blank reply. Everything else collapses to an other result,
// reusing the candidate's own reply when it has one. Validate is total and
// idempotent.
func Validate(r Result) Result {
	if r.Intent == IntentBookkeeping && r.Entry != nil &&
		IsCategory(r.Entry.Category) && r.Entry.Amount > 0 {
		return r
	}
	if r.Intent == IntentOther && strings.TrimSpace(r.Reply) != "" {
		return r
	}
	reply := strings.TrimSpace(r.Reply)
	if reply == "" {
		reply = FallbackReply
	}
	return OtherResult(reply)
}
