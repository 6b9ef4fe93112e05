package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Event types emitted by the memory service.
const (
	TypeMemoryCreated    = "memory.created"
	TypeMemoryUpdated    = "memory.updated"
	TypeMemoryDeleted    = "memory.deleted"
	TypeChecklistToggled = "checklist.toggled"
)

// MemoryEvent records one change to a memory.
type MemoryEvent struct {
	ID        uuid.UUID       `json:"id"`
	Type      string          `json:"type"`
	MemoryID  uuid.UUID       `json:"memory_id"`
	UserID    uuid.UUID       `json:"user_id"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

// MemoryPayload accompanies created and updated events.
type MemoryPayload struct {
	Emotion string `json:"emotion"`
	Blocks  int    `json:"blocks"`
}

// ChecklistPayload accompanies checklist.toggled events.
type ChecklistPayload struct {
	BlockID string `json:"block_id"`
	Index   int    `json:"index"`
	Checked bool   `json:"checked"`
}

// NewMemoryEvent creates an event of eventType; payload may be nil.
func NewMemoryEvent(eventType string, memoryID, userID uuid.UUID, payload any) (*MemoryEvent, error) {
	var raw json.RawMessage
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		raw = b
	}
	return &MemoryEvent{
		ID:        uuid.New(),
		Type:      eventType,
		MemoryID:  memoryID,
		UserID:    userID,
		Payload:   raw,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// UnmarshalPayload decodes the event payload into v.
func (e *MemoryEvent) UnmarshalPayload(v any) error {
	return json.Unmarshal(e.Payload, v)
}

// EventHandler processes emitted events.
type EventHandler interface {
	HandleEvent(ctx context.Context, event *MemoryEvent) error
}

// EventHandlerFunc adapts a function to EventHandler.
type EventHandlerFunc func(ctx context.Context, event *MemoryEvent) error

// HandleEvent calls f.
func (f EventHandlerFunc) HandleEvent(ctx context.Context, event *MemoryEvent) error {
	return f(ctx, event)
}

// EventEmitter publishes events to interested handlers.
type EventEmitter interface {
	EmitEvent(ctx context.Context, event *MemoryEvent) error
}
