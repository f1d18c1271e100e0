// internal/classifier/gemini.go
package classifier

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"google.golang.org/genai"

	"github.com/user/ledgerline/internal/ledger"
)

// DefaultModel is the Gemini model used when the config names none.
const DefaultModel = "gemini-2.0-flash"

// requestTimeout bounds one classification call. On expiry the in-flight
// request is aborted and the event degrades to a diagnostic other result.
const requestTimeout = 15 * time.Second

// Diagnostic replies for the classifier failure taxonomy. Operators can tell
// "the model never replied" from "the model replied badly" by the marker.
const (
	replyTimeout       = "[錯誤] Gemini 逾時，請再試一次"
	replyEmptyResponse = "[除錯] Gemini 空回傳"
	replyUnparseable   = "[除錯] Gemini 回傳無法解析為 JSON"
)

// Generator is the transport seam: one generateContent call for one prompt.
// The production implementation wraps the genai SDK; tests substitute
// canned responses.
type Generator interface {
	Generate(ctx context.Context, prompt string) (*genai.GenerateContentResponse, error)
}

// Gemini classifies user messages by intent through the Gemini API. Classify
// is total: every failure path degrades to an other result carrying a
// diagnostic reply, nothing escapes the classifier boundary.
type Gemini struct {
	gen Generator
	log zerolog.Logger
}

// New creates a Gemini classifier talking to the real API.
func New(ctx context.Context, apiKey, model string, log zerolog.Logger) (*Gemini, error) {
	if model == "" {
		model = DefaultModel
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return &Gemini{
		gen: &genaiGenerator{client: client, model: model},
		log: log,
	}, nil
}

// NewWithGenerator creates a classifier over a custom Generator.
func NewWithGenerator(gen Generator, log zerolog.Logger) *Gemini {
	return &Gemini{gen: gen, log: log}
}

type genaiGenerator struct {
	client *genai.Client
	model  string
}

func (g *genaiGenerator) Generate(ctx context.Context, prompt string) (*genai.GenerateContentResponse, error) {
	return g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   responseSchema(),
	})
}

// Classify sends the user message to the model and converts the raw
// response into a validated Result. today is the default entry date when the
// user names none.
func (g *Gemini) Classify(ctx context.Context, userMessage, today string) ledger.Result {
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	prompt := buildPrompt(today) + "\n\n用戶說：" + userMessage
	resp, err := g.gen.Generate(ctx, prompt)
	if err != nil {
		return g.failure(err)
	}

	parts := candidateParts(resp)
	if len(parts) == 0 {
		g.log.Warn().Msg("gemini returned no candidate parts")
		return ledger.OtherResult(replyEmptyResponse)
	}

	for _, part := range parts {
		if part == nil || part.Text == "" {
			continue // non-text artifacts such as thought signatures
		}
		if result := parsePartText(part.Text); result != nil {
			g.log.Debug().Str("intent", string(result.Intent)).Msg("gemini result parsed")
			return *result
		}
	}

	for i, part := range parts {
		if part != nil && part.Text != "" {
			g.log.Error().Int("part", i).Str("text", truncate(part.Text, 200)).Msg("unparseable gemini part")
		}
	}
	return ledger.OtherResult(replyUnparseable)
}

func (g *Gemini) failure(err error) ledger.Result {
	if errors.Is(err, context.DeadlineExceeded) {
		g.log.Warn().Err(err).Msg("gemini request timed out")
		return ledger.OtherResult(replyTimeout)
	}
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		g.log.Error().Int("status", apiErr.Code).Str("message", truncate(apiErr.Message, 500)).Msg("gemini API error")
		return ledger.OtherResult(fmt.Sprintf("[除錯] Gemini HTTP %d", apiErr.Code))
	}
	g.log.Error().Err(err).Msg("gemini request failed")
	return ledger.OtherResult(fmt.Sprintf("[錯誤] Gemini 連線失敗: %v", err))
}

// candidateParts pulls the first candidate's parts out of the response
// envelope.
func candidateParts(resp *genai.GenerateContentResponse) []*genai.Part {
	if resp == nil || len(resp.Candidates) == 0 {
		return nil
	}
	cand := resp.Candidates[0]
	if cand == nil || cand.Content == nil {
		return nil
	}
	return cand.Content.Parts
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}
