package classifier

import (
	"testing"

	"github.com/user/ledgerline/internal/ledger"
)

const bookkeepingJSON = `{"intent":"bookkeeping","entry":{"date":"2025-03-01","category":"餐飲","amount":50,"memo":"奶茶"},"reply":"好，奶茶 50 記好了～"}`

func TestParsePartTextDirect(t *testing.T) {
	got := parsePartText(bookkeepingJSON)
	if got == nil {
		t.Fatal("parsePartText = nil")
	}
	if got.Intent != ledger.IntentBookkeeping {
		t.Errorf("intent = %q", got.Intent)
	}
	if got.Entry == nil || got.Entry.Category != "餐飲" || got.Entry.Amount != 50 {
		t.Errorf("entry = %+v", got.Entry)
	}
}

func TestParsePartTextFenced(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"json fence", "```json\n" + bookkeepingJSON + "\n```"},
		{"bare fence", "```\n" + bookkeepingJSON + "\n```"},
		{"fence with padding", "```json  \n" + bookkeepingJSON + "\n  ```"},
	}

	want := parsePartText(bookkeepingJSON)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parsePartText(tt.text)
			if got == nil {
				t.Fatal("parsePartText = nil")
			}
			if got.Intent != want.Intent || got.Reply != want.Reply {
				t.Errorf("fenced result %+v differs from unwrapped %+v", got, want)
			}
			if got.Entry.Amount != want.Entry.Amount {
				t.Errorf("amount = %v, want %v", got.Entry.Amount, want.Entry.Amount)
			}
		})
	}
}

func TestParsePartTextBraceSubstring(t *testing.T) {
	text := "好的，結果如下：" + bookkeepingJSON + " 以上。"
	got := parsePartText(text)
	if got == nil {
		t.Fatal("parsePartText = nil")
	}
	if got.Intent != ledger.IntentBookkeeping || got.Entry == nil || got.Entry.Amount != 50 {
		t.Errorf("result = %+v", got)
	}
}

func TestParsePartTextOther(t *testing.T) {
	got := parsePartText(`{"intent":"other","reply":"嗨！需要記帳跟我說"}`)
	if got == nil {
		t.Fatal("parsePartText = nil")
	}
	if got.Intent != ledger.IntentOther || got.Entry != nil {
		t.Errorf("result = %+v", got)
	}
}

func TestParsePartTextNoMatch(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"empty", ""},
		{"whitespace", "   "},
		{"prose only", "我今天喝了奶茶"},
		{"json without intent", `{"reply":"hi"}`},
		{"unknown intent", `{"intent":"greeting","reply":"hi"}`},
		{"broken json everywhere", "```json\n{intent: bookkeeping\n```"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := parsePartText(tt.text); got != nil {
				t.Errorf("parsePartText(%q) = %+v, want nil", tt.text, got)
			}
		})
	}
}

func TestParsePartTextValidates(t *testing.T) {
	// A parseable candidate with a bad amount must come out coerced, not
	// rejected: the tier succeeded, validation normalized it.
	got := parsePartText(`{"intent":"bookkeeping","entry":{"date":"2025-03-01","category":"餐飲","amount":0},"reply":"記好了"}`)
	if got == nil {
		t.Fatal("parsePartText = nil")
	}
	if got.Intent != ledger.IntentOther {
		t.Errorf("intent = %q, want other", got.Intent)
	}
	if got.Reply != "記好了" {
		t.Errorf("reply = %q", got.Reply)
	}
}

func TestExtractAttemptsOrder(t *testing.T) {
	text := "```json\n{\"a\":1}\n```"
	attempts := extractAttempts(text)
	if len(attempts) != 3 {
		t.Fatalf("attempts = %d, want 3", len(attempts))
	}
	if attempts[0] != text {
		t.Errorf("first attempt should be the trimmed text, got %q", attempts[0])
	}
	if attempts[1] != `{"a":1}` {
		t.Errorf("second attempt should be the fence interior, got %q", attempts[1])
	}
	if attempts[2] != `{"a":1}` {
		t.Errorf("third attempt should be the brace substring, got %q", attempts[2])
	}
}
