package classifier

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"google.golang.org/genai"

	"github.com/user/ledgerline/internal/ledger"
)

type fakeGenerator struct {
	resp   *genai.GenerateContentResponse
	err    error
	prompt string
}

func (f *fakeGenerator) Generate(ctx context.Context, prompt string) (*genai.GenerateContentResponse, error) {
	f.prompt = prompt
	if f.err != nil {
		return nil, f.err
	}
	return f.resp, nil
}

func responseWithParts(parts ...*genai.Part) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{Content: &genai.Content{Parts: parts}},
		},
	}
}

func newTestClassifier(gen Generator) *Gemini {
	return NewWithGenerator(gen, zerolog.Nop())
}

func TestClassifyBookkeeping(t *testing.T) {
	gen := &fakeGenerator{resp: responseWithParts(&genai.Part{Text: bookkeepingJSON})}
	g := newTestClassifier(gen)

	got := g.Classify(context.Background(), "奶茶 50", "2025-03-01")
	if got.Intent != ledger.IntentBookkeeping {
		t.Fatalf("intent = %q", got.Intent)
	}
	if got.Entry == nil || got.Entry.Category != "餐飲" || got.Entry.Amount != 50 {
		t.Errorf("entry = %+v", got.Entry)
	}
	if !strings.Contains(gen.prompt, "用戶說：奶茶 50") {
		t.Errorf("prompt missing user message: %q", gen.prompt)
	}
	if !strings.Contains(gen.prompt, "2025-03-01") {
		t.Errorf("prompt missing today default: %q", gen.prompt)
	}
}

func TestClassifySkipsNonTextParts(t *testing.T) {
	// Thought-signature-only parts carry no text and must be ignored in
	// favor of a later usable part.
	gen := &fakeGenerator{resp: responseWithParts(
		&genai.Part{ThoughtSignature: []byte{0x01, 0x02}},
		&genai.Part{Text: `{"intent":"other","reply":"嗨"}`},
	)}
	g := newTestClassifier(gen)

	got := g.Classify(context.Background(), "嗨", "2025-03-01")
	if got.Intent != ledger.IntentOther || got.Reply != "嗨" {
		t.Errorf("result = %+v", got)
	}
}

func TestClassifyFirstParseableWins(t *testing.T) {
	gen := &fakeGenerator{resp: responseWithParts(
		&genai.Part{Text: "not json"},
		&genai.Part{Text: `{"intent":"other","reply":"first"}`},
		&genai.Part{Text: `{"intent":"other","reply":"second"}`},
	)}
	g := newTestClassifier(gen)

	got := g.Classify(context.Background(), "x", "2025-03-01")
	if got.Reply != "first" {
		t.Errorf("reply = %q, want first parseable part to win", got.Reply)
	}
}

func TestClassifyTimeout(t *testing.T) {
	gen := &fakeGenerator{err: context.DeadlineExceeded}
	g := newTestClassifier(gen)

	got := g.Classify(context.Background(), "奶茶 50", "2025-03-01")
	if got.Intent != ledger.IntentOther {
		t.Fatalf("intent = %q", got.Intent)
	}
	if !strings.Contains(got.Reply, "逾時") {
		t.Errorf("reply %q missing timeout marker", got.Reply)
	}
}

func TestClassifyAPIError(t *testing.T) {
	gen := &fakeGenerator{err: genai.APIError{Code: 429, Message: "quota exceeded"}}
	g := newTestClassifier(gen)

	got := g.Classify(context.Background(), "奶茶 50", "2025-03-01")
	if got.Intent != ledger.IntentOther {
		t.Fatalf("intent = %q", got.Intent)
	}
	if !strings.Contains(got.Reply, "429") {
		t.Errorf("reply %q missing status code", got.Reply)
	}
}

func TestClassifyTransportFailure(t *testing.T) {
	gen := &fakeGenerator{err: errors.New("connection refused")}
	g := newTestClassifier(gen)

	got := g.Classify(context.Background(), "奶茶 50", "2025-03-01")
	if got.Intent != ledger.IntentOther {
		t.Fatalf("intent = %q", got.Intent)
	}
	if !strings.Contains(got.Reply, "連線失敗") {
		t.Errorf("reply %q missing transport marker", got.Reply)
	}
}

func TestClassifyEmptyResponse(t *testing.T) {
	tests := []struct {
		name string
		resp *genai.GenerateContentResponse
	}{
		{"no candidates", &genai.GenerateContentResponse{}},
		{"nil content", &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{}}}},
		{"no parts", responseWithParts()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := newTestClassifier(&fakeGenerator{resp: tt.resp})
			got := g.Classify(context.Background(), "x", "2025-03-01")
			if got.Intent != ledger.IntentOther || !strings.Contains(got.Reply, "空回傳") {
				t.Errorf("result = %+v", got)
			}
		})
	}
}

func TestClassifyUnparseable(t *testing.T) {
	gen := &fakeGenerator{resp: responseWithParts(&genai.Part{Text: "我不會回 JSON"})}
	g := newTestClassifier(gen)

	got := g.Classify(context.Background(), "x", "2025-03-01")
	if got.Intent != ledger.IntentOther || !strings.Contains(got.Reply, "無法解析") {
		t.Errorf("result = %+v", got)
	}
}
