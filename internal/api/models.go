package api

import (
	"time"

	"github.com/google/uuid"

	"github.com/phrazzld/memoryblocks/internal/domain"
	"github.com/phrazzld/memoryblocks/internal/domain/block"
	"github.com/phrazzld/memoryblocks/internal/editor"
)

// MemoryRequest is the payload for creating or replacing a memory.
// Field-level problems are reported by document validation, which names
// every invalid field and block at once.
type MemoryRequest struct {
	Title   string         `json:"title"   validate:"max=1000"`
	Color   string         `json:"color"`
	Date    time.Time      `json:"date"`
	Content block.Document `json:"content"`
}

// MemoryResponse defines the response structure for a memory.
type MemoryResponse struct {
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

// ListMemoriesResponse is one page of a user's memories.
type ListMemoriesResponse struct {
	Memories []MemoryResponse `json:"memories"`
	Limit    int              `json:"limit"`
	Offset   int              `json:"offset"`
}

// BlockTypesResponse lists the block type registry.
type BlockTypesResponse struct {
	Types      []BlockTypeResponse `json:"types"`
	Categories []block.Category    `json:"categories"`
	Emotions   []string            `json:"emotions"`
}

// BlockTypeResponse describes one registered block type.
type BlockTypeResponse struct {
	block.Definition
	DefaultProps map[string]any `json:"default_props"`
}

// DocumentRequest carries a block document to inspect or edit.
type DocumentRequest struct {
	Document block.Document `json:"document"`
}

// AvailableResponse is what the insertion selector offers for a document.
type AvailableResponse struct {
	Enabled bool                  `json:"enabled"`
	Groups  []block.CategoryGroup `json:"groups"`
}

// CreateBlockRequest asks the factory for a new block.
type CreateBlockRequest struct {
	Type string `json:"type" validate:"required"`
}

// ValidateBlockRequest carries one block to validate.
type ValidateBlockRequest struct {
	Block block.Block `json:"block"`
}

// ValidateBlockResponse is the validation result of one block.
type ValidateBlockResponse struct {
	Valid  bool                 `json:"valid"`
	Errors []FieldErrorResponse `json:"errors"`
	// CharCount is set for text blocks.
	CharCount *int `json:"char_count,omitempty"`
}

// ValidateDocumentRequest carries a document and, optionally, the memory
// fields validated with it.
type ValidateDocumentRequest struct {
	Document block.Document `json:"document"`
	Title    *string        `json:"title,omitempty"`
	Color    *string        `json:"color,omitempty"`
	Date     *time.Time     `json:"date,omitempty"`
}

// ValidateDocumentResponse is the validation result of a whole document.
type ValidateDocumentResponse struct {
	Valid   bool               `json:"valid"`
	Emotion string             `json:"emotion"`
	Details *ValidationDetails `json:"details,omitempty"`
}

// InsertBlockRequest inserts a new block of Type into Document.
type InsertBlockRequest struct {
	Document block.Document `json:"document"`
	Type     string         `json:"type"   validate:"required"`
	// Target is a sortable index; nil appends.
	Target *int `json:"target,omitempty" validate:"omitempty,gte=0"`
}

// ReorderRequest moves the sortable block at From to To.
type ReorderRequest struct {
	Document block.Document `json:"document"`
	From     int            `json:"from" validate:"gte=0"`
	To       int            `json:"to"   validate:"gte=0"`
}

// DeleteBlockRequest removes a block from Document.
type DeleteBlockRequest struct {
	Document block.Document `json:"document"`
	BlockID  string         `json:"block_id" validate:"required"`
}

// DocumentResponse returns an edited document.
type DocumentResponse struct {
	Document block.Document `json:"document"`
	// Block is the inserted block, for insert requests.
	Block *block.Block `json:"block,omitempty"`
}

// UploadResponse reports an image upload batch.
type UploadResponse struct {
	Block  block.Block                   `json:"block"`
	Images []block.Image                 `json:"images"`
	Errors []*editor.FileValidationError `json:"errors"`
}

// memoryToResponse converts a domain.Memory to a MemoryResponse.
func memoryToResponse(m *domain.Memory) MemoryResponse {
	return MemoryResponse{
		ID:        m.ID,
		UserID:    m.UserID,
		Title:     m.Title,
		Emotion:   m.Emotion,
		Color:     m.Color,
		Date:      m.Date,
		Content:   m.Content,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

// memoriesToResponse converts a slice of domain memories.
func memoriesToResponse(ms []*domain.Memory) []MemoryResponse {
	out := make([]MemoryResponse, 0, len(ms))
	for _, m := range ms {
		out = append(out, memoryToResponse(m))
	}
	return out
}

// definitionToResponse adds the default props to a type definition.
func definitionToResponse(def block.Definition) BlockTypeResponse {
	return BlockTypeResponse{Definition: def, DefaultProps: def.DefaultProps()}
}
