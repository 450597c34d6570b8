package triage

import (
	"context"
	"sync"
	"time"

	"github.com/mimohealth/triage/internal/session"
	"go.uber.org/zap"
)

// Generator resolves a prompt into a reply through the configured
// generation backends. *provider.Chain satisfies it.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Engine is the triage facade: one call per incoming message, safely
// concurrent across session keys. The vocabulary snapshot is its only
// shared state; everything else persists through the session store.
type Engine struct {
	vocab     *Vocabulary
	extractor *Extractor
	scorer    *Scorer
	chain     Generator
	sessions  session.Store
	locks     keyLocks
	logger    *zap.Logger
}

// NewEngine builds the engine, snapshotting the graph vocabulary once.
// A nil or unreachable graph leaves the engine in fallback-only mode.
func NewEngine(ctx context.Context, graph GraphStore, sessions session.Store, chain Generator, logger *zap.Logger) *Engine {
	vocab := LoadVocabulary(ctx, graph, logger)
	return &Engine{
		vocab:     vocab,
		extractor: NewExtractor(vocab),
		scorer:    NewScorer(graph, logger),
		chain:     chain,
		sessions:  sessions,
		logger:    logger,
	}
}

// HandleTurn processes one user message for a session and returns the
// reply. The reply is always non-empty and sanitized; provider failures
// never surface. Turns for the same session key are serialized so the
// load-resolve-save cycle cannot interleave.
func (e *Engine) HandleTurn(ctx context.Context, sessionKey, userText string) (string, error) {
	lock := e.locks.forKey(sessionKey)
	lock.Lock()
	defer lock.Unlock()

	mem, err := e.sessions.Load(ctx, sessionKey)
	if err != nil {
		e.logger.Error("session load failed, starting fresh",
			zap.String("key", sessionKey), zap.Error(err))
		mem = session.NewMemory()
	}

	mem.Append(session.SpeakerUser, userText, time.Now().UTC())

	reply := Sanitize(e.resolve(ctx, mem, userText))
	if reply == "" {
		reply = repromptText
	}

	mem.Append(session.SpeakerAssistant, reply, time.Now().UTC())
	mem.LastInteraction = time.Now().UTC()

	// Both turns land in one save: the turn is a single logical transaction.
	// A failed save loses at most this turn; the reply still goes out.
	if err := e.sessions.Save(ctx, sessionKey, mem); err != nil {
		e.logger.Error("session save failed, turn not durable",
			zap.String("key", sessionKey), zap.Error(err))
	}
	return reply, nil
}

// Vocabulary exposes the engine's read-only vocabulary snapshot.
func (e *Engine) Vocabulary() *Vocabulary { return e.vocab }

// keyLocks hands out one mutex per session key.
type keyLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func (k *keyLocks) forKey(key string) *sync.Mutex {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.locks == nil {
		k.locks = make(map[string]*sync.Mutex)
	}
	l, ok := k.locks[key]
	if !ok {
		l = &sync.Mutex{}
		k.locks[key] = l
	}
	return l
}
