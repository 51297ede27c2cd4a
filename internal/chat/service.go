package chat

import (
	"context"
	"fmt"
	"hash/fnv"
	"strings"
	"sync"
	"time"

	"github.com/suPer8Hu/diy-assistant/internal/ai"
	"github.com/suPer8Hu/diy-assistant/internal/logging"
)

const systemPreamble = "You are a helpful assistant with expertise in DIY home improvement. " +
	"While you specialize in home improvement topics, you can also answer other questions. " +
	"Give practical, safe, step-by-step advice when the question is about a home project."

type Options struct {
	ContextWindowSize int
	HistoryLimit      int
	Fallback          *FallbackTable
	Now               func() time.Time
}

const lockStripes = 64

// Manager owns chat transcripts. The TranscriptStore is the only copy: every
// call reads through it, so expiry in the store and other replicas sharing it
// are always observed.
type Manager struct {
	store     TranscriptStore
	completer ai.Completer
	fallback  *FallbackTable
	window    int
	limit     int
	now       func() time.Time

	// serialises load-modify-save per session within this process
	locks [lockStripes]sync.Mutex
}

func NewManager(store TranscriptStore, completer ai.Completer, opts Options) *Manager {
	if opts.ContextWindowSize <= 0 {
		opts.ContextWindowSize = 5
	}
	if opts.HistoryLimit < opts.ContextWindowSize {
		opts.HistoryLimit = 100
	}
	if opts.Fallback == nil {
		opts.Fallback = MustDefaultFallback()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Manager{
		store:     store,
		completer: completer,
		fallback:  opts.Fallback,
		window:    opts.ContextWindowSize,
		limit:     opts.HistoryLimit,
		now:       opts.Now,
	}
}

func (m *Manager) lockFor(sessionID string) *sync.Mutex {
	h := fnv.New32a()
	_, _ = h.Write([]byte(sessionID))
	return &m.locks[h.Sum32()%lockStripes]
}

func (m *Manager) load(ctx context.Context, sessionID string) ([]Turn, error) {
	turns, err := m.store.Load(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load transcript: %w", err)
	}
	return turns, nil
}

func (m *Manager) save(ctx context.Context, sessionID string, turns []Turn) error {
	if err := m.store.Save(ctx, sessionID, turns); err != nil {
		return fmt.Errorf("save transcript: %w", err)
	}
	return nil
}

// appendTurn adds one turn and writes the capped transcript back. The
// returned transcript includes the new turn even when loading or saving failed.
func (m *Manager) appendTurn(ctx context.Context, sessionID, role, content string) ([]Turn, error) {
	mu := m.lockFor(sessionID)
	mu.Lock()
	defer mu.Unlock()

	turns, err := m.load(ctx, sessionID)
	turns = append(turns, Turn{Role: role, Content: content, Timestamp: m.now().UTC()})
	if over := len(turns) - m.limit; over > 0 {
		turns = append([]Turn(nil), turns[over:]...)
	}
	if err != nil {
		return turns, err
	}
	return turns, m.save(ctx, sessionID, turns)
}

func (m *Manager) AppendUserTurn(ctx context.Context, sessionID, text string) error {
	_, err := m.appendTurn(ctx, sessionID, RoleUser, text)
	return err
}

func (m *Manager) AppendAssistantTurn(ctx context.Context, sessionID, text string) error {
	_, err := m.appendTurn(ctx, sessionID, RoleAssistant, text)
	return err
}

// BuildContext renders the most recent turns, oldest first, one "role: content"
// line each.
func (m *Manager) BuildContext(ctx context.Context, sessionID string) (string, error) {
	turns, err := m.load(ctx, sessionID)
	if err != nil {
		return "", err
	}
	return renderContext(turns, m.window), nil
}

func renderContext(turns []Turn, window int) string {
	if len(turns) > window {
		turns = turns[len(turns)-window:]
	}
	lines := make([]string, 0, len(turns))
	for _, t := range turns {
		lines = append(lines, t.Role+": "+t.Content)
	}
	return strings.Join(lines, "\n")
}

func buildPrompt(convo, message string) string {
	var b strings.Builder
	b.WriteString(systemPreamble)
	b.WriteString("\n\nPrevious conversation:\n")
	b.WriteString(convo)
	b.WriteString("\n\nUser question: ")
	b.WriteString(message)
	return b.String()
}

// Converse records message, asks the completer once and records the reply.
// When the completer fails a canned reply is used instead, so a reply is
// always returned; the error only reports a transcript that could not be
// read or written.
func (m *Manager) Converse(ctx context.Context, sessionID, message string) (string, error) {
	log := logging.FromContext(ctx)

	turns, storeErr := m.appendTurn(ctx, sessionID, RoleUser, message)
	convo := renderContext(turns, m.window)

	reply, err := m.completer.Complete(ctx, buildPrompt(convo, message))
	reply = strings.TrimSpace(reply)
	source := "completer"
	if err != nil || reply == "" {
		kind := ai.KindMalformed
		if err != nil {
			kind = ai.KindOf(err)
		}
		log.Warn("chat_fallback",
			"session_id", sessionID,
			"kind", string(kind),
			"category", m.fallback.Category(message),
			"err", err,
		)
		reply = m.fallback.Reply(message)
		source = "fallback"
	}
	log.Info("chat_turn",
		"session_id", sessionID,
		"source", source,
		"diy_related", m.fallback.IsDIYRelated(message),
	)

	if _, err := m.appendTurn(ctx, sessionID, RoleAssistant, reply); err != nil && storeErr == nil {
		storeErr = err
	}
	return reply, storeErr
}

// FallbackReply is the canned reply Converse would use for message.
func (m *Manager) FallbackReply(message string) string {
	return m.fallback.Reply(message)
}

// History returns the transcript, oldest first.
func (m *Manager) History(ctx context.Context, sessionID string) ([]Turn, error) {
	turns, err := m.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if turns == nil {
		turns = []Turn{}
	}
	return turns, nil
}

// Persist rewrites the stored snapshot as is, which restarts its expiry.
func (m *Manager) Persist(ctx context.Context, sessionID string) error {
	mu := m.lockFor(sessionID)
	mu.Lock()
	defer mu.Unlock()

	turns, err := m.load(ctx, sessionID)
	if err != nil {
		return err
	}
	if turns == nil {
		return nil
	}
	return m.save(ctx, sessionID, turns)
}

// Reload reads the stored snapshot. A session without one reloads as empty.
func (m *Manager) Reload(ctx context.Context, sessionID string) ([]Turn, error) {
	return m.load(ctx, sessionID)
}

// Clear removes the transcript snapshot.
func (m *Manager) Clear(ctx context.Context, sessionID string) error {
	mu := m.lockFor(sessionID)
	mu.Lock()
	defer mu.Unlock()

	if err := m.store.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("delete transcript: %w", err)
	}
	return nil
}
