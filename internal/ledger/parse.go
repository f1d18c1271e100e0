// internal/ledger/parse.go
package ledger

import (
	"regexp"
	"strconv"
	"strings"
)

var datePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// Parse extracts an Entry from the fixed "category amount [memo]" grammar,
// with an optional leading YYYY-MM-DD date token. It returns nil for any
// structural mismatch; a nil result is the recognized "no match" outcome,
// not a fault. When no date token is present, Entry.Date is left empty and
// the caller fills in its own default.
func Parse(text string) *Entry {
	parts := strings.Fields(text)
	if len(parts) < 2 {
		return nil
	}

	i := 0
	var date string
	if datePattern.MatchString(parts[0]) {
		date = parts[0]
		i = 1
	}
	if i >= len(parts)-1 {
		return nil
	}

	category := parts[i]
	amount, err := strconv.ParseFloat(parts[i+1], 64)
	if !IsCategory(category) || err != nil {
		return nil
	}
	memo := strings.Join(parts[i+2:], " ")
	return &Entry{Date: date, Category: category, Amount: amount, Memo: memo}
}
