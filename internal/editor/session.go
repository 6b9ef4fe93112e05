package editor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/phrazzld/memoryblocks/internal/domain"
	"github.com/phrazzld/memoryblocks/internal/domain/block"
	"github.com/phrazzld/memoryblocks/internal/domain/placement"
)

// DefaultMaxBlocks is the total-block ceiling of a session.
const DefaultMaxBlocks = 10

// State is a step of the editing lifecycle.
type State string

// Session states. Submitted and Discarded are terminal.
const (
	StateEmpty         State = "empty"
	StateHasPinnedMood State = "has_pinned_mood"
	StateEditing       State = "editing"
	StateValidating    State = "validating"
	StateValid         State = "valid"
	StateInvalid       State = "invalid"
	StateSubmitted     State = "submitted"
	StateDiscarded     State = "discarded"
)

// Terminal reports whether no further edits are accepted in s.
func (s State) Terminal() bool {
	return s == StateSubmitted || s == StateDiscarded
}

// Metadata is the memory information edited next to the blocks.
type Metadata struct {
	Title string
	Color string
	Date  time.Time
}

// Persister stores a memory and returns the stored, authoritative copy.
type Persister interface {
	CreateMemory(ctx context.Context, userID uuid.UUID, data domain.MemoryData) (*domain.Memory, error)
	UpdateMemory(ctx context.Context, userID, memoryID uuid.UUID, data domain.MemoryData) (*domain.Memory, error)
}

// Session owns one block document while it is being edited. All methods
// are safe for concurrent use; every mutation replaces the whole document
// and is reported through the onChange callback after the session lock is
// released.
type Session struct {
	mu        sync.Mutex
	doc       block.Document
	meta      Metadata
	memoryID  uuid.UUID
	state     State
	readOnly  bool
	maxBlocks int
	onChange  func(block.Document)
	logger    *slog.Logger
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithOnChange registers the callback receiving every new document.
func WithOnChange(fn func(block.Document)) SessionOption {
	return func(s *Session) { s.onChange = fn }
}

// WithMaxBlocks sets the total-block ceiling.
func WithMaxBlocks(n int) SessionOption {
	return func(s *Session) {
		if n > 0 {
			s.maxBlocks = n
		}
	}
}

// ReadOnly disables every edit of the session.
func ReadOnly() SessionOption {
	return func(s *Session) { s.readOnly = true }
}

// WithSessionLogger sets the session logger.
func WithSessionLogger(l *slog.Logger) SessionOption {
	return func(s *Session) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithMemoryID binds the session to a stored memory.
func WithMemoryID(id uuid.UUID) SessionOption {
	return func(s *Session) { s.memoryID = id }
}

// WithMetadata seeds the memory metadata.
func WithMetadata(m Metadata) SessionOption {
	return func(s *Session) { s.meta = m }
}

func newSession(opts []SessionOption) *Session {
	s := &Session{
		state:     StateEmpty,
		maxBlocks: DefaultMaxBlocks,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With(slog.String("component", "editor_session"))
	return s
}

// NewSession starts a session for a new memory. The document is seeded
// with the pinned mood block.
func NewSession(opts ...SessionOption) (*Session, error) {
	s := newSession(opts)
	mood, err := block.New(block.TypeMood)
	if err != nil {
		return nil, fmt.Errorf("seed mood block: %w", err)
	}
	s.doc = block.Document{mood}
	s.state = StateHasPinnedMood
	return s, nil
}

// LoadSession starts a session editing an existing memory.
func LoadSession(m *domain.Memory, opts ...SessionOption) *Session {
	s := newSession(opts)
	s.adopt(m)
	s.state = StateEditing
	return s
}

// OpenDocument starts a session over a document that arrived without its
// stored memory, such as one posted by a client. Combine with WithMemoryID
// to submit it as an update.
func OpenDocument(doc block.Document, opts ...SessionOption) *Session {
	s := newSession(opts)
	s.doc = doc.Clone()
	s.state = StateEditing
	if len(s.doc) == 0 {
		s.state = StateEmpty
	}
	return s
}

// Document returns a copy of the current document.
func (s *Session) Document() block.Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc.Clone()
}

// State returns the lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Metadata returns the memory metadata.
func (s *Session) Metadata() Metadata {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.meta
}

// MemoryID returns the id of the stored memory, or uuid.Nil before the
// first submission of a new memory.
func (s *Session) MemoryID() uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.memoryID
}

// ReadOnly reports whether edits are disabled.
func (s *Session) ReadOnly() bool {
	return s.readOnly
}

// MaxBlocks returns the total-block ceiling.
func (s *Session) MaxBlocks() int {
	return s.maxBlocks
}

// checkMutable must be called with s.mu held.
func (s *Session) checkMutable() error {
	if s.state.Terminal() {
		return fmt.Errorf("%w: %s", ErrSessionClosed, s.state)
	}
	if s.readOnly {
		return ErrReadOnly
	}
	return nil
}

// commit must be called with s.mu held. The returned function delivers
// the change notification and must be called after unlocking.
func (s *Session) commit(doc block.Document) func() {
	s.doc = doc
	s.state = StateEditing
	return s.notifier()
}

func (s *Session) notifier() func() {
	cb := s.onChange
	if cb == nil {
		return func() {}
	}
	snapshot := s.doc.Clone()
	return func() { cb(snapshot) }
}

// SetMetadata replaces the memory metadata.
func (s *Session) SetMetadata(m Metadata) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkMutable(); err != nil {
		return err
	}
	s.meta = m
	s.state = StateEditing
	return nil
}

// canAdd must be called with s.mu held.
func (s *Session) canAdd(t block.Type) bool {
	return !s.readOnly && !s.state.Terminal() &&
		len(s.doc) < s.maxBlocks && block.CanAdd(t, s.doc)
}

// Insert creates a block of type t and places it at sortable index
// target, or appends it when target is nil.
func (s *Session) Insert(t block.Type, target *int) (block.Block, error) {
	s.mu.Lock()
	if err := s.checkMutable(); err != nil {
		s.mu.Unlock()
		return block.Block{}, err
	}
	if !block.IsRegistered(t) {
		s.mu.Unlock()
		return block.Block{}, &block.UnknownTypeError{Type: t}
	}
	if !s.canAdd(t) {
		s.mu.Unlock()
		return block.Block{}, fmt.Errorf("%w: %s", ErrTypeUnavailable, t)
	}
	b, err := block.New(t)
	if err != nil {
		s.mu.Unlock()
		return block.Block{}, err
	}
	notify := s.commit(placement.Insert(s.doc, b, target))
	s.mu.Unlock()

	notify()
	return b, nil
}

// Reorder moves the sortable block at from to sortable index to.
func (s *Session) Reorder(from, to int) error {
	s.mu.Lock()
	if err := s.checkMutable(); err != nil {
		s.mu.Unlock()
		return err
	}
	notify := s.commit(placement.Reorder(s.doc, from, to))
	s.mu.Unlock()

	notify()
	return nil
}

// Delete removes the block with the given id. Deleting the pinned mood
// block or the last block is ignored.
func (s *Session) Delete(id string) error {
	s.mu.Lock()
	if err := s.checkMutable(); err != nil {
		s.mu.Unlock()
		return err
	}
	doc, err := placement.Delete(s.doc, id, true)
	if err != nil {
		s.mu.Unlock()
		if errors.Is(err, placement.ErrStructuralInvariant) {
			s.logger.Debug("delete refused", slog.String("block_id", id), slog.String("reason", err.Error()))
			return nil
		}
		return err
	}
	notify := s.commit(doc)
	s.mu.Unlock()

	notify()
	return nil
}

// Update replaces the block sharing b's id. The block type cannot change.
func (s *Session) Update(b block.Block) error {
	s.mu.Lock()
	if err := s.checkMutable(); err != nil {
		s.mu.Unlock()
		return err
	}
	current, ok := s.doc.Find(b.ID)
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrBlockNotFound, b.ID)
	}
	if current.Type != b.Type {
		s.mu.Unlock()
		return wrongType(current.Type, b.Type)
	}
	doc, _ := s.doc.Replace(b)
	notify := s.commit(doc)
	s.mu.Unlock()

	notify()
	return nil
}

func (s *Session) data() domain.MemoryData {
	return domain.MemoryData{
		Title:   s.meta.Title,
		Color:   s.meta.Color,
		Date:    s.meta.Date,
		Content: s.doc.Clone(),
	}.WithDerivedEmotion()
}

// validate must be called with s.mu held.
func (s *Session) validate() *domain.DocumentErrors {
	s.state = StateValidating
	err := s.data().Validate()
	if err == nil {
		s.state = StateValid
		return nil
	}
	s.state = StateInvalid
	var docErrs *domain.DocumentErrors
	if errors.As(err, &docErrs) {
		return docErrs
	}
	return &domain.DocumentErrors{Fields: []*domain.FieldError{{Field: "memory", Message: err.Error()}}}
}

// Validate checks the metadata and every block. It returns nil when the
// memory can be submitted. A submitted or discarded session reports a
// "session" field error and keeps its state.
func (s *Session) Validate() *domain.DocumentErrors {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.Terminal() {
		return &domain.DocumentErrors{Fields: []*domain.FieldError{{
			Field:   "session",
			Message: fmt.Sprintf("%v: %s", ErrSessionClosed, s.state),
		}}}
	}
	return s.validate()
}

// Submit validates the memory and hands it to p: a create for a new
// memory, an update otherwise. On success the session adopts the memory
// returned by p and ends in StateSubmitted.
func (s *Session) Submit(ctx context.Context, userID uuid.UUID, p Persister) (*domain.Memory, error) {
	s.mu.Lock()
	if err := s.checkMutable(); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	if errs := s.validate(); errs != nil {
		s.mu.Unlock()
		return nil, errs
	}
	data := s.data()
	memoryID := s.memoryID
	s.mu.Unlock()

	var (
		stored *domain.Memory
		err    error
	)
	if memoryID == uuid.Nil {
		stored, err = p.CreateMemory(ctx, userID, data)
	} else {
		stored, err = p.UpdateMemory(ctx, userID, memoryID, data)
	}
	if err != nil {
		return nil, fmt.Errorf("submit memory: %w", err)
	}

	s.mu.Lock()
	s.adopt(stored)
	s.state = StateSubmitted
	notify := s.notifier()
	s.mu.Unlock()

	notify()
	s.logger.Debug("memory submitted", slog.String("memory_id", stored.ID.String()))
	return stored, nil
}

// Adopt replaces the document and metadata with an authoritative copy of
// the memory, such as the one returned after a checklist toggle.
func (s *Session) Adopt(m *domain.Memory) error {
	s.mu.Lock()
	if s.state == StateDiscarded {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrSessionClosed, s.state)
	}
	s.adopt(m)
	notify := s.notifier()
	s.mu.Unlock()

	notify()
	return nil
}

// adopt must be called with s.mu held.
func (s *Session) adopt(m *domain.Memory) {
	s.doc = m.Content.Clone()
	s.memoryID = m.ID
	s.meta = Metadata{Title: m.Title, Color: m.Color, Date: m.Date}
}

// Discard ends the session without submitting.
func (s *Session) Discard() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.state.Terminal() {
		s.state = StateDiscarded
	}
}
