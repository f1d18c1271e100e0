// internal/gateway/gateway.go

// Package gateway routes the events of one webhook delivery through
// classification, persistence, and reply. Each event is handled inside its
// own failure boundary so one bad event never aborts its siblings.
package gateway

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/user/ledgerline/internal/audit"
	"github.com/user/ledgerline/internal/ledger"
	"github.com/user/ledgerline/internal/line"
)

// Classifier turns a user message into a validated Result. Implementations
// must be total: every failure degrades to an other result.
type Classifier interface {
	Classify(ctx context.Context, userMessage, today string) ledger.Result
}

// Replier sends one reply through the platform's single-use reply token.
type Replier interface {
	Reply(ctx context.Context, replyToken, text string) error
}

const (
	serverErrorReply = "系統有點問題，請稍後再試一次"
	formatHintReply  = "格式：類別 金額 [備註]\n類別可填：餐飲、交通、日用品、娛樂、醫療、教育、其他\n例：餐飲 120 午餐"

	// Memos are free text from the model or the user; clamp before storage.
	maxMemoLength = 500
)

// Gateway dispatches inbound webhook events. When no classifier is
// configured it falls back to the deterministic grammar parser.
type Gateway struct {
	classifier Classifier // nil disables the LLM path
	entries    ledger.EntryStore
	replier    Replier
	audit      *audit.Logger
	log        zerolog.Logger
	now        func() time.Time
}

// New creates a Gateway. classifier may be nil.
func New(classifier Classifier, entries ledger.EntryStore, replier Replier, auditLog *audit.Logger, log zerolog.Logger) *Gateway {
	return &Gateway{
		classifier: classifier,
		entries:    entries,
		replier:    replier,
		audit:      auditLog,
		log:        log,
		now:        time.Now,
	}
}

// HandleDelivery processes the decoded events of one delivery in their
// original order. Events that are not text messages with a reply token are
// dropped without a trace.
func (g *Gateway) HandleDelivery(ctx context.Context, deliveryID string, events []line.Event) {
	for _, ev := range events {
		if !ev.IsTextMessage() {
			continue
		}
		g.handleEvent(ctx, deliveryID, ev)
	}
}

func (g *Gateway) handleEvent(ctx context.Context, deliveryID string, ev line.Event) {
	defer func() {
		if r := recover(); r != nil {
			g.log.Error().Str("delivery", deliveryID).Any("panic", r).Msg("event handler panicked")
			g.audit.Append(ctx, audit.LevelError, "event handler panicked", fmt.Sprintf("delivery=%s panic=%v", deliveryID, r))
			g.sendReply(ctx, deliveryID, ev.ReplyToken, serverErrorReply)
		}
	}()

	text := strings.TrimSpace(ev.Message.Text)
	replyText := g.decide(ctx, deliveryID, text, true)
	g.sendReply(ctx, deliveryID, ev.ReplyToken, replyText)
}

// Preview runs classification (or the deterministic parse) for text without
// persisting anything or talking to the platform, and returns the reply that
// would have been sent. Used by the diagnostic endpoint and the classify
// command.
func (g *Gateway) Preview(ctx context.Context, text string) string {
	return g.decide(ctx, "preview", strings.TrimSpace(text), false)
}

// decide picks the reply for one message, inserting an Entry when the
// message is a spending record and persist is set.
func (g *Gateway) decide(ctx context.Context, deliveryID, text string, persist bool) string {
	today := g.now().Format("2006-01-02")

	if g.classifier != nil {
		result := g.classifier.Classify(ctx, text, today)
		if result.Intent == ledger.IntentBookkeeping && result.Entry != nil {
			entry := *result.Entry
			if entry.Date == "" {
				entry.Date = today
			}
			entry.ID = 0
			entry.Memo = truncateRunes(entry.Memo, maxMemoLength)
			if persist {
				if err := g.entries.Insert(ctx, &entry); err != nil {
					g.log.Error().Err(err).Str("delivery", deliveryID).Msg("entry insert failed")
					g.audit.Append(ctx, audit.LevelError, "entry insert failed", fmt.Sprintf("delivery=%s err=%v", deliveryID, err))
					return serverErrorReply
				}
			}
			g.audit.Append(ctx, audit.LevelGemini, "bookkeeping entry classified",
				fmt.Sprintf("delivery=%s date=%s category=%s amount=%s", deliveryID, entry.Date, entry.Category, formatAmount(entry.Amount)))
			if strings.TrimSpace(result.Reply) == "" {
				return ledger.FallbackReply
			}
			return result.Reply
		}
		g.audit.Append(ctx, audit.LevelGemini, "classified as other",
			fmt.Sprintf("delivery=%s reply=%s", deliveryID, truncateRunes(result.Reply, 80)))
		return result.Reply
	}

	entry := ledger.Parse(text)
	if entry == nil {
		g.audit.Append(ctx, audit.LevelLine, "deterministic parse: no match",
			fmt.Sprintf("delivery=%s text=%s", deliveryID, truncateRunes(text, 80)))
		return formatHintReply
	}
	if entry.Date == "" {
		entry.Date = today
	}
	entry.Memo = truncateRunes(entry.Memo, maxMemoLength)
	if persist {
		if err := g.entries.Insert(ctx, entry); err != nil {
			g.log.Error().Err(err).Str("delivery", deliveryID).Msg("entry insert failed")
			g.audit.Append(ctx, audit.LevelError, "entry insert failed", fmt.Sprintf("delivery=%s err=%v", deliveryID, err))
			return serverErrorReply
		}
	}
	g.audit.Append(ctx, audit.LevelLine, "deterministic parse matched",
		fmt.Sprintf("delivery=%s date=%s category=%s amount=%s", deliveryID, entry.Date, entry.Category, formatAmount(entry.Amount)))

	reply := fmt.Sprintf("已記一筆：%s %s %s 元", entry.Date, entry.Category, formatAmount(entry.Amount))
	if entry.Memo != "" {
		reply += " " + entry.Memo
	}
	return reply
}

// sendReply attempts the single reply for an event. A failed delivery is
// logged and abandoned; the reply token is single-use, so there is nothing
// sensible to retry with.
func (g *Gateway) sendReply(ctx context.Context, deliveryID, replyToken, text string) {
	text = truncateRunes(text, line.MaxMessageLength)
	if err := g.replier.Reply(ctx, replyToken, text); err != nil {
		g.log.Error().Err(err).Str("delivery", deliveryID).Msg("reply send failed")
		g.audit.Append(ctx, audit.LevelError, "reply send failed", fmt.Sprintf("delivery=%s err=%v", deliveryID, err))
		return
	}
	g.audit.Append(ctx, audit.LevelLine, "reply sent",
		fmt.Sprintf("delivery=%s chars=%d", deliveryID, len([]rune(text))))
}

func formatAmount(amount float64) string {
	return strconv.FormatFloat(amount, 'f', -1, 64)
}

func truncateRunes(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}
