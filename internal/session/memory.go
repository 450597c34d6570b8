package session

import (
	"context"
	"time"
)

// Speaker identifies who produced a turn.
const (
	SpeakerUser      = "user"
	SpeakerAssistant = "assistant"
)

// Turn is one utterance in a conversation.
type Turn struct {
	Speaker   string    `json:"speaker"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// Memory is the durable record of one conversation, owned exclusively by a
// single session key. History is append-only and never reordered.
type Memory struct {
	ReportedSymptoms []string  `json:"reported_symptoms"`
	History          []Turn    `json:"session_history"`
	LastInteraction  time.Time `json:"last_interaction"`
}

// NewMemory returns an empty session memory.
func NewMemory() *Memory {
	return &Memory{}
}

// Append adds a turn to the history.
func (m *Memory) Append(speaker, text string, at time.Time) {
	m.History = append(m.History, Turn{Speaker: speaker, Text: text, Timestamp: at})
}

// HasSymptom reports whether the symptom was already recorded.
func (m *Memory) HasSymptom(name string) bool {
	for _, s := range m.ReportedSymptoms {
		if s == name {
			return true
		}
	}
	return false
}

// AddSymptoms appends symptoms not yet present, preserving insertion order.
// Returns the names actually added.
func (m *Memory) AddSymptoms(names []string) []string {
	var added []string
	for _, n := range names {
		if m.HasSymptom(n) {
			continue
		}
		m.ReportedSymptoms = append(m.ReportedSymptoms, n)
		added = append(added, n)
	}
	return added
}

// Store persists session memories, one record per session key.
// Load must tolerate a missing or corrupt record by returning a fresh
// empty memory rather than an error.
type Store interface {
	Load(ctx context.Context, key string) (*Memory, error)
	Save(ctx context.Context, key string, mem *Memory) error
}
