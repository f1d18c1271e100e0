// internal/classifier/extract.go
package classifier

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/user/ledgerline/internal/ledger"
)

// Models intermittently wrap JSON in prose or markdown fences despite being
// told not to. Extraction runs an ordered list of tiers over the candidate
// text and short-circuits on the first one that parses with a recognized
// intent tag; rejecting on the first malformed attempt causes too many
// false negatives in production.

var fencePattern = regexp.MustCompile("(?s)^```(?:json)?\\s*\\n?(.*?)\\n?\\s*```$")

// extractAttempts returns the raw JSON candidates for one part text, in
// strict priority order: the whole trimmed text, the fenced-block interior,
// then the first-{ to last-} substring.
func extractAttempts(text string) []string {
	t := strings.TrimSpace(text)
	if t == "" {
		return nil
	}
	attempts := []string{t}
	if m := fencePattern.FindStringSubmatch(t); m != nil {
		if inner := strings.TrimSpace(m[1]); inner != "" {
			attempts = append(attempts, inner)
		}
	}
	if start, end := strings.Index(t, "{"), strings.LastIndex(t, "}"); start >= 0 && end > start {
		attempts = append(attempts, t[start:end+1])
	}
	return attempts
}

// parsePartText turns one candidate part's text into a validated Result, or
// nil when no tier yields JSON with a recognized intent tag.
func parsePartText(text string) *ledger.Result {
	for _, raw := range extractAttempts(text) {
		var candidate ledger.Result
		if err := json.Unmarshal([]byte(raw), &candidate); err != nil {
			continue
		}
		if candidate.Intent != ledger.IntentBookkeeping && candidate.Intent != ledger.IntentOther {
			continue
		}
		validated := ledger.Validate(candidate)
		return &validated
	}
	return nil
}
