package domain

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/phrazzld/memoryblocks/internal/domain/block"
	"github.com/phrazzld/memoryblocks/internal/domain/placement"
)

// MaxTitleLength is the longest allowed memory title, in characters.
const MaxTitleLength = 100

// Validation errors for Memory
var (
	ErrEmptyMemoryID     = errors.New("memory ID cannot be empty")
	ErrEmptyMemoryUserID = errors.New("memory user ID cannot be empty")
)

var hexColor = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// ValidHexColor reports whether c has the #RRGGBB form.
func ValidHexColor(c string) bool {
	return hexColor.MatchString(c)
}

// MemoryData is the user-editable part of a memory, as handed to the
// persistence layer. Emotion always mirrors the mood block of Content.
type MemoryData struct {
	Title   string         `json:"title"`
	Emotion string         `json:"emotion"`
	Color   string         `json:"color"`
	Date    time.Time      `json:"date"`
	Content block.Document `json:"content"`
}

// WithDerivedEmotion returns d with Emotion taken from its mood block.
func (d MemoryData) WithDerivedEmotion() MemoryData {
	d.Emotion = d.Content.Emotion()
	return d
}

// Memory is a dated, titled entry whose body is a block document.
type Memory struct {
	ID        uuid.UUID      `json:"id"`
	UserID    uuid.UUID      `json:"user_id"`
	Title     string         `json:"title"`
	Emotion   string         `json:"emotion"`
	Color     string         `json:"color"`
	Date      time.Time      `json:"date"`
	Content   block.Document `json:"content"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// NewMemory creates a Memory owned by userID from data.
// It generates a new UUID, derives the emotion from the mood block and
// sets the creation/update timestamps.
// Returns a *DocumentErrors if validation fails.
func NewMemory(userID uuid.UUID, data MemoryData) (*Memory, error) {
	now := time.Now().UTC()
	m := &Memory{
		ID:        uuid.New(),
		UserID:    userID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	m.apply(data)

	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

// Update replaces the editable fields with data and bumps UpdatedAt.
// The memory is left untouched when data is invalid.
func (m *Memory) Update(data MemoryData) error {
	if err := data.WithDerivedEmotion().Validate(); err != nil {
		return err
	}
	m.apply(data)
	m.UpdatedAt = time.Now().UTC()
	return nil
}

func (m *Memory) apply(data MemoryData) {
	data = data.WithDerivedEmotion()
	m.Title = strings.TrimSpace(data.Title)
	m.Emotion = data.Emotion
	m.Color = data.Color
	m.Date = data.Date
	m.Content = data.Content.Clone()
}

// Data returns the editable fields of m.
func (m *Memory) Data() MemoryData {
	return MemoryData{
		Title:   m.Title,
		Emotion: m.Emotion,
		Color:   m.Color,
		Date:    m.Date,
		Content: m.Content.Clone(),
	}
}

// Validate checks identifiers and every editable field.
func (m *Memory) Validate() error {
	if m.ID == uuid.Nil {
		return ErrEmptyMemoryID
	}
	if m.UserID == uuid.Nil {
		return ErrEmptyMemoryUserID
	}
	return m.Data().Validate()
}

// Validate checks the metadata and the block document, collecting every
// problem. It returns nil or a *DocumentErrors.
func (d MemoryData) Validate() error {
	errs := ValidateDocument(d.Content)

	title := strings.TrimSpace(d.Title)
	switch n := utf8.RuneCountInString(title); {
	case n == 0:
		errs.addField("title", "is required")
	case n > MaxTitleLength:
		errs.addField("title", fmt.Sprintf("must be at most %d characters", MaxTitleLength))
	}
	if d.Content.Emotion() == "" {
		errs.addField("emotion", "is required; select a mood")
	}
	if d.Date.IsZero() {
		errs.addField("date", "is required")
	}
	if !ValidHexColor(d.Color) {
		errs.addField("color", "must be a #RRGGBB color")
	}

	if errs.Empty() {
		return nil
	}
	return errs
}

// ValidateDocument validates every block of doc and the document's
// structure: unique ids, per-type limits and a leading mood block.
// The result is never nil; check Empty.
func ValidateDocument(doc block.Document) *DocumentErrors {
	errs := &DocumentErrors{}
	for i, b := range doc {
		if res := block.Validate(b); !res.Valid {
			errs.addBlock(i, res.Errors...)
		}
	}

	for _, id := range doc.DuplicateIDs() {
		errs.addField("content", fmt.Sprintf("block id %q is used more than once", id))
	}
	for _, def := range block.Definitions() {
		if n := doc.Count(def.Type); n > def.MaxUses {
			errs.addField("content", fmt.Sprintf("%s blocks used %d times, at most %d allowed", def.Type, n, def.MaxUses))
		}
	}
	slots := placement.Slots(doc)
	if len(slots) == 0 || !slots[0].Pinned {
		errs.addField("content", "must start with a mood block")
	}
	return errs
}

// FieldError describes an invalid memory field.
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string {
	return e.Field + " " + e.Message
}

func (e *FieldError) Unwrap() error {
	return ErrValidation
}

// DocumentErrors collects every validation problem of a memory: block
// errors keyed by block index, and errors on memory fields.
type DocumentErrors struct {
	Blocks map[int][]error
	Fields []*FieldError
}

func (e *DocumentErrors) addBlock(index int, errs ...error) {
	if e.Blocks == nil {
		e.Blocks = make(map[int][]error)
	}
	e.Blocks[index] = append(e.Blocks[index], errs...)
}

func (e *DocumentErrors) addField(field, message string) {
	e.Fields = append(e.Fields, &FieldError{Field: field, Message: message})
}

// Empty reports whether no problem was recorded.
func (e *DocumentErrors) Empty() bool {
	return e == nil || (len(e.Blocks) == 0 && len(e.Fields) == 0)
}

// BlockIndexes returns the indexes of invalid blocks in ascending order.
func (e *DocumentErrors) BlockIndexes() []int {
	idx := make([]int, 0, len(e.Blocks))
	for i := range e.Blocks {
		idx = append(idx, i)
	}
	sort.Ints(idx)
	return idx
}

func (e *DocumentErrors) Error() string {
	var parts []string
	for _, f := range e.Fields {
		parts = append(parts, f.Error())
	}
	for _, i := range e.BlockIndexes() {
		for _, err := range e.Blocks[i] {
			parts = append(parts, fmt.Sprintf("block %d: %v", i, err))
		}
	}
	return fmt.Sprintf("%v: %s", ErrValidation, strings.Join(parts, "; "))
}

func (e *DocumentErrors) Unwrap() error {
	return ErrValidation
}
