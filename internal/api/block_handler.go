package api

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/phrazzld/memoryblocks/internal/api/shared"
	"github.com/phrazzld/memoryblocks/internal/domain"
	"github.com/phrazzld/memoryblocks/internal/domain/block"
	"github.com/phrazzld/memoryblocks/internal/domain/richtext"
	"github.com/phrazzld/memoryblocks/internal/editor"
	"github.com/phrazzld/memoryblocks/internal/platform/logger"
	"github.com/phrazzld/memoryblocks/internal/platform/metrics"
)

// BlockHandler exposes the block registry, factory, validation and
// placement engine over HTTP. Documents are posted by the client; nothing
// here touches storage.
type BlockHandler struct {
	maxBlocks int
	metrics   *metrics.Metrics
	logger    *slog.Logger
}

// NewBlockHandler creates a new BlockHandler. A nil m disables metrics.
func NewBlockHandler(maxBlocks int, m *metrics.Metrics, logger *slog.Logger) *BlockHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for BlockHandler")
	}
	if maxBlocks <= 0 {
		maxBlocks = editor.DefaultMaxBlocks
	}

	return &BlockHandler{
		maxBlocks: maxBlocks,
		metrics:   m,
		logger:    logger.With(slog.String("component", "block_handler")),
	}
}

// openSession starts an editing session over a posted document.
func (h *BlockHandler) openSession(r *http.Request, doc block.Document, opts ...editor.SessionOption) *editor.Session {
	opts = append([]editor.SessionOption{
		editor.WithMaxBlocks(h.maxBlocks),
		editor.WithSessionLogger(logger.FromContextOrDefault(r.Context(), h.logger)),
	}, opts...)
	return editor.OpenDocument(doc, opts...)
}

// ListBlockTypes handles GET /block-types requests.
func (h *BlockHandler) ListBlockTypes(w http.ResponseWriter, r *http.Request) {
	defs := block.Definitions()
	types := make([]BlockTypeResponse, 0, len(defs))
	for _, def := range defs {
		types = append(types, definitionToResponse(def))
	}

	shared.RespondWithJSON(w, r, http.StatusOK, BlockTypesResponse{
		Types:      types,
		Categories: block.Categories(),
		Emotions:   block.Emotions,
	})
}

// AvailableBlockTypes handles POST /block-types/available requests.
// It returns what the insertion selector offers for the posted document.
func (h *BlockHandler) AvailableBlockTypes(w http.ResponseWriter, r *http.Request) {
	var req DocumentRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	sel := editor.NewSelector(h.openSession(r, req.Document))
	groups := sel.Groups()
	if groups == nil {
		groups = []block.CategoryGroup{}
	}

	shared.RespondWithJSON(w, r, http.StatusOK, AvailableResponse{
		Enabled: sel.Enabled(),
		Groups:  groups,
	})
}

// CreateBlock handles POST /blocks requests.
func (h *BlockHandler) CreateBlock(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var req CreateBlockRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(&req); err != nil {
		HandleValidationError(w, r, err)
		return
	}

	b, err := block.New(block.Type(req.Type))
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create block")
		return
	}

	log.Debug("block created", slog.String("block_id", b.ID), slog.String("type", string(b.Type)))
	shared.RespondWithJSON(w, r, http.StatusCreated, b)
}

// ValidateBlock handles POST /blocks/validate requests. An invalid block is
// a successful request: the result carries the problems.
func (h *BlockHandler) ValidateBlock(w http.ResponseWriter, r *http.Request) {
	var req ValidateBlockRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	res := block.Validate(req.Block)
	if !res.Valid && h.metrics != nil {
		h.metrics.BlockValidationFailures.WithLabelValues(string(req.Block.Type)).Inc()
	}

	resp := ValidateBlockResponse{
		Valid:  res.Valid,
		Errors: blockErrorsToResponse(res.Errors),
	}
	if req.Block.Type == block.TypeParagraph {
		n := 0
		if len(req.Block.Content) > 0 {
			if markup, ok := req.Block.Content[0].(string); ok {
				n = richtext.CharCount(markup)
			}
		}
		resp.CharCount = &n
	}

	shared.RespondWithJSON(w, r, http.StatusOK, resp)
}

// ValidateDocument handles POST /documents/validate requests. Memory fields
// are checked only when at least one of them is posted.
func (h *BlockHandler) ValidateDocument(w http.ResponseWriter, r *http.Request) {
	var req ValidateDocumentRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	var docErrs *domain.DocumentErrors
	if req.Title != nil || req.Color != nil || req.Date != nil {
		var meta editor.Metadata
		if req.Title != nil {
			meta.Title = *req.Title
		}
		if req.Color != nil {
			meta.Color = *req.Color
		}
		if req.Date != nil {
			meta.Date = *req.Date
		}
		docErrs = h.openSession(r, req.Document, editor.WithMetadata(meta)).Validate()
	} else if errs := domain.ValidateDocument(req.Document); !errs.Empty() {
		docErrs = errs
	}

	if h.metrics != nil && docErrs != nil {
		for _, i := range docErrs.BlockIndexes() {
			h.metrics.BlockValidationFailures.WithLabelValues(string(req.Document[i].Type)).Inc()
		}
	}

	resp := ValidateDocumentResponse{
		Valid:   docErrs.Empty(),
		Emotion: req.Document.Emotion(),
	}
	if docErrs != nil {
		resp.Details = validationDetails(docErrs)
	}
	shared.RespondWithJSON(w, r, http.StatusOK, resp)
}

// InsertBlock handles POST /documents/insert requests.
func (h *BlockHandler) InsertBlock(w http.ResponseWriter, r *http.Request) {
	var req InsertBlockRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(&req); err != nil {
		HandleValidationError(w, r, err)
		return
	}

	t := block.Type(req.Type)
	if !block.IsRegistered(t) {
		HandleAPIError(w, r, &block.UnknownTypeError{Type: t}, "")
		return
	}

	s := h.openSession(r, req.Document)
	b, err := editor.NewSelector(s).Select(t, req.Target)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to insert block")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, DocumentResponse{Document: s.Document(), Block: &b})
}

// ReorderBlocks handles POST /documents/reorder requests.
// Indexes address the sortable blocks; the pinned mood block never moves.
func (h *BlockHandler) ReorderBlocks(w http.ResponseWriter, r *http.Request) {
	var req ReorderRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(&req); err != nil {
		HandleValidationError(w, r, err)
		return
	}

	s := h.openSession(r, req.Document)
	if err := s.Reorder(req.From, req.To); err != nil {
		HandleAPIError(w, r, err, "Failed to reorder blocks")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, DocumentResponse{Document: s.Document()})
}

// DeleteBlock handles POST /documents/delete requests. Deleting the pinned
// mood block or the only block returns the document unchanged.
func (h *BlockHandler) DeleteBlock(w http.ResponseWriter, r *http.Request) {
	var req DeleteBlockRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(&req); err != nil {
		HandleValidationError(w, r, err)
		return
	}

	if req.Document.IndexOf(req.BlockID) < 0 {
		HandleAPIError(w, r, fmt.Errorf("%w: %s", editor.ErrBlockNotFound, req.BlockID), "")
		return
	}

	s := h.openSession(r, req.Document)
	if err := s.Delete(req.BlockID); err != nil {
		HandleAPIError(w, r, err, "Failed to delete block")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, DocumentResponse{Document: s.Document()})
}
