// Package bot implements the conversation orchestrator: for every inbound
// text event it decides whether the bot speaks, with what context, and how
// the session and memory state move afterwards.
package bot

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/tyhsieh/adabot/internal/adabot/line"
	"github.com/tyhsieh/adabot/internal/adabot/llm"
	"github.com/tyhsieh/adabot/internal/adabot/memory"
	"github.com/tyhsieh/adabot/internal/adabot/metrics"
	"github.com/tyhsieh/adabot/internal/adabot/observability"
	"github.com/tyhsieh/adabot/internal/adabot/profile"
	"github.com/tyhsieh/adabot/internal/adabot/session"
	"github.com/tyhsieh/adabot/internal/adabot/trigger"
)

// Messenger delivers a reply to the chat that produced an event. Failures
// are logged and dropped — reply tokens are single-use, so there is nothing
// useful to retry.
type Messenger interface {
	Reply(ctx context.Context, replyToken, text string) error
}

// Profiles serves the current bot profile. The production implementation is
// *profile.Manager.
type Profiles interface {
	Get() *profile.Profile
}

// Processor wires the trigger detector, session manager, memory store, and
// the two external gateways into the per-event pipeline.
type Processor struct {
	profiles  Profiles
	memory    *memory.Store
	sessions  *session.Manager
	model     llm.Provider
	messenger Messenger
}

// NewProcessor creates a Processor from its collaborators.
func NewProcessor(profiles Profiles, mem *memory.Store, sessions *session.Manager, model llm.Provider, messenger Messenger) *Processor {
	return &Processor{
		profiles:  profiles,
		memory:    mem,
		sessions:  sessions,
		model:     model,
		messenger: messenger,
	}
}

// HandleBatch processes one webhook delivery. Events are grouped by chat ID
// in receipt order; groups run concurrently while events inside a group run
// sequentially, because session and memory mutations for one chat do not
// commute. Blocks until every event is done — callers run it on their own
// goroutine, the transport acknowledgement has already gone out.
func (p *Processor) HandleBatch(ctx context.Context, events []line.Event) {
	log := observability.WithTrace(ctx)

	groups := make(map[string][]line.Event)
	var order []string
	for _, evt := range events {
		if !evt.IsTextMessage() {
			metrics.EventsReceived.WithLabelValues(metrics.DispositionSkipped).Inc()
			log.Debug("skipping non-text event", "type", evt.Type, "message_type", evt.Message.Type)
			continue
		}
		chatID := evt.ChatID()
		if chatID == line.UnknownChatID {
			// Known limitation: sourceless events share one state bucket.
			log.Warn("event has no identifiable source, using shared sentinel chat")
		}
		if _, seen := groups[chatID]; !seen {
			order = append(order, chatID)
		}
		groups[chatID] = append(groups[chatID], evt)
	}

	var wg sync.WaitGroup
	for _, chatID := range order {
		chatEvents := groups[chatID]
		wg.Add(1)
		go func() {
			defer wg.Done()
			for _, evt := range chatEvents {
				p.handleEvent(ctx, evt)
			}
		}()
	}
	wg.Wait()
}

// handleEvent runs one text event through the trigger/session decision tree
// and, when the turn qualifies, through the model.
func (p *Processor) handleEvent(ctx context.Context, evt line.Event) {
	log := observability.WithTrace(ctx)
	prof := p.profiles.Get()
	det := trigger.New(prof.Mention, prof.EndCommands)

	chatID := evt.ChatID()
	text := evt.Message.Text

	var userClean string
	var mentionTurn bool

	switch {
	case det.ContainsMention(text):
		clean := det.StripMention(text)
		if det.IsEndCommand(clean) {
			p.endSession(ctx, chatID, evt.ReplyToken, prof)
			return
		}
		p.sessions.StartOrRefresh(chatID)
		if clean == "" {
			// Addressed but nothing said: ask, leave memory untouched.
			log.Info("mention without content", "chat", chatID)
			p.reply(ctx, evt.ReplyToken, prof.Replies.AskForInput)
			metrics.EventsReceived.WithLabelValues(metrics.DispositionPrompted).Inc()
			return
		}
		userClean, mentionTurn = clean, true

	case p.sessions.IsActive(chatID):
		trimmed := strings.TrimSpace(text)
		if det.IsEndCommand(trimmed) {
			p.endSession(ctx, chatID, evt.ReplyToken, prof)
			return
		}
		userClean = trimmed

	default:
		// Not addressed, no awake session: stay silent so "ignored" is
		// observably different from "answered".
		metrics.EventsReceived.WithLabelValues(metrics.DispositionIgnored).Inc()
		log.Debug("ignoring unaddressed message", "chat", chatID)
		return
	}

	p.answer(ctx, chatID, evt.ReplyToken, userClean, mentionTurn, prof)
}

// endSession handles an end command: tear the session down when one is
// awake, otherwise tell the sender the bot was not listening anyway.
// The model is never consulted.
func (p *Processor) endSession(ctx context.Context, chatID, replyToken string, prof *profile.Profile) {
	log := observability.WithTrace(ctx)
	if p.sessions.IsActive(chatID) {
		p.sessions.End(chatID)
		log.Info("session ended by command", "chat", chatID)
		p.reply(ctx, replyToken, prof.Replies.Goodbye)
	} else {
		p.reply(ctx, replyToken, prof.Replies.AlreadyIdle)
	}
	metrics.EventsReceived.WithLabelValues(metrics.DispositionEnded).Inc()
}

// answer relays a qualifying turn to the model and applies the post-reply
// state transitions. On model failure nothing is mutated: the turn is
// answered with the fallback apology and forgotten.
func (p *Processor) answer(ctx context.Context, chatID, replyToken, userClean string, mentionTurn bool, prof *profile.Profile) {
	log := observability.WithTrace(ctx)

	remembered := p.memory.ReadActive(chatID)
	msgs := make([]llm.Message, 0, len(remembered)+2)
	msgs = append(msgs, llm.Message{Role: llm.RoleSystem, Content: prof.Persona})
	for _, t := range remembered {
		msgs = append(msgs, llm.Message{Role: string(t.Role), Content: t.Content})
	}
	msgs = append(msgs, llm.Message{Role: llm.RoleUser, Content: userClean})

	start := time.Now()
	completion, err := p.model.Complete(ctx, msgs)
	metrics.ModelLatency.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.ModelFailures.Inc()
		log.Error("model call failed", "chat", chatID, "err", err)
		p.reply(ctx, replyToken, prof.Replies.Fallback)
		return
	}

	replyText := completion
	remember := completion != ""
	if !remember {
		// The model had nothing to say; relay the canned quip but keep it
		// out of memory.
		replyText = prof.Replies.Empty
	}

	p.reply(ctx, replyToken, replyText)

	if remember {
		p.memory.Append(chatID, memory.RoleUser, userClean)
		p.memory.Append(chatID, memory.RoleAssistant, replyText)
	}

	p.sessions.RefreshExpiry(chatID)
	if !mentionTurn {
		p.sessions.ConsumeTurn(chatID)
		if !p.sessions.IsActive(chatID) {
			p.sessions.End(chatID)
			log.Info("session budget exhausted", "chat", chatID)
		}
	}

	metrics.EventsReceived.WithLabelValues(metrics.DispositionAnswered).Inc()
	log.Info("turn answered", "chat", chatID, "mention", mentionTurn, "history_turns", len(remembered))
}

// reply is the best-effort delivery wrapper around the messenger.
func (p *Processor) reply(ctx context.Context, replyToken, text string) {
	if err := p.messenger.Reply(ctx, replyToken, text); err != nil {
		metrics.DeliveryFailures.Inc()
		observability.WithTrace(ctx).Error("reply delivery failed", "err", err)
		return
	}
	metrics.RepliesSent.Inc()
}
