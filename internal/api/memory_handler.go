package api

import (
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/phrazzld/memoryblocks/internal/api/shared"
	"github.com/phrazzld/memoryblocks/internal/domain"
	"github.com/phrazzld/memoryblocks/internal/domain/block"
	"github.com/phrazzld/memoryblocks/internal/editor"
	"github.com/phrazzld/memoryblocks/internal/platform/logger"
	"github.com/phrazzld/memoryblocks/internal/platform/metrics"
	"github.com/phrazzld/memoryblocks/internal/service"
	"github.com/phrazzld/memoryblocks/internal/store"
	"github.com/phrazzld/memoryblocks/internal/viewer"
)

// MemoryHandler handles memory-related HTTP requests
type MemoryHandler struct {
	memoryService service.MemoryService
	maxBlocks     int
	metrics       *metrics.Metrics
	logger        *slog.Logger
}

// NewMemoryHandler creates a new MemoryHandler. A nil m disables metrics.
func NewMemoryHandler(
	memoryService service.MemoryService,
	maxBlocks int,
	m *metrics.Metrics,
	logger *slog.Logger,
) *MemoryHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for MemoryHandler")
	}
	if maxBlocks <= 0 {
		maxBlocks = editor.DefaultMaxBlocks
	}

	return &MemoryHandler{
		memoryService: memoryService,
		maxBlocks:     maxBlocks,
		metrics:       m,
		logger:        logger.With(slog.String("component", "memory_handler")),
	}
}

// submit runs req through an editing session and persists it. A zero
// memoryID creates a new memory.
func (h *MemoryHandler) submit(r *http.Request, userID, memoryID uuid.UUID, req MemoryRequest) (*domain.Memory, error) {
	opts := []editor.SessionOption{
		editor.WithMaxBlocks(h.maxBlocks),
		editor.WithMetadata(editor.Metadata{Title: req.Title, Color: req.Color, Date: req.Date}),
		editor.WithSessionLogger(logger.FromContextOrDefault(r.Context(), h.logger)),
	}
	if memoryID != uuid.Nil {
		opts = append(opts, editor.WithMemoryID(memoryID))
	}
	return editor.OpenDocument(req.Content, opts...).Submit(r.Context(), userID, h.memoryService)
}

// decodeMemoryRequest writes a 400 response and returns false when the body
// is not a valid MemoryRequest.
func decodeMemoryRequest(w http.ResponseWriter, r *http.Request, req *MemoryRequest) bool {
	if err := shared.DecodeJSON(r, req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return false
	}
	if err := shared.ValidateRequest(req); err != nil {
		HandleValidationError(w, r, err)
		return false
	}
	return true
}

// CreateMemory handles POST /memories requests.
func (h *MemoryHandler) CreateMemory(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := requireUserID(w, r, log)
	if !ok {
		return
	}

	var req MemoryRequest
	if !decodeMemoryRequest(w, r, &req) {
		return
	}

	memory, err := h.submit(r, userID, uuid.Nil, req)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create memory")
		return
	}

	log.Debug("memory created",
		slog.String("user_id", userID.String()),
		slog.String("memory_id", memory.ID.String()))
	shared.RespondWithJSON(w, r, http.StatusCreated, memoryToResponse(memory))
}

// GetMemory handles GET /memories/{id} requests.
func (h *MemoryHandler) GetMemory(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, memoryID, ok := handleUserIDAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	memory, err := h.memoryService.GetMemoryByID(r.Context(), userID, memoryID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get memory")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, memoryToResponse(memory))
}

// ListMemories handles GET /memories requests, paged with limit and offset.
func (h *MemoryHandler) ListMemories(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := requireUserID(w, r, log)
	if !ok {
		return
	}

	limit, err := getQueryInt(r, "limit", store.DefaultListLimit)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	offset, err := getQueryInt(r, "offset", 0)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	limit, offset = store.NormalizePage(limit, offset)

	memories, err := h.memoryService.ListMemories(r.Context(), userID, limit, offset)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list memories")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, ListMemoriesResponse{
		Memories: memoriesToResponse(memories),
		Limit:    limit,
		Offset:   offset,
	})
}

// UpdateMemory handles PUT /memories/{id} requests. The whole memory is
// replaced by the request.
func (h *MemoryHandler) UpdateMemory(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, memoryID, ok := handleUserIDAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	var req MemoryRequest
	if !decodeMemoryRequest(w, r, &req) {
		return
	}

	memory, err := h.submit(r, userID, memoryID, req)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to update memory")
		return
	}

	log.Debug("memory updated",
		slog.String("user_id", userID.String()),
		slog.String("memory_id", memory.ID.String()))
	shared.RespondWithJSON(w, r, http.StatusOK, memoryToResponse(memory))
}

// DeleteMemory handles DELETE /memories/{id} requests.
func (h *MemoryHandler) DeleteMemory(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, memoryID, ok := handleUserIDAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	if err := h.memoryService.DeleteMemory(r.Context(), userID, memoryID); err != nil {
		HandleAPIError(w, r, err, "Failed to delete memory")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ToggleChecklistItem handles POST /memories/{id}/blocks/{blockID}/items/{index}/toggle
// requests. JSON clients receive the stored memory; HTML forms posted from
// the view are redirected back to it.
func (h *MemoryHandler) ToggleChecklistItem(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, memoryID, ok := handleUserIDAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}
	blockID := chi.URLParam(r, "blockID")
	index, err := getPathInt(r, "index")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	memory, err := h.memoryService.ToggleChecklistItem(r.Context(), userID, memoryID, blockID, index)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to toggle checklist item")
		return
	}

	if isFormPost(r) {
		target := viewPath(memoryID)
		if accent := r.URL.Query().Get("accent"); accent != "" {
			target += "?accent=" + url.QueryEscape(accent)
		}
		http.Redirect(w, r, target, http.StatusSeeOther)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, memoryToResponse(memory))
}

// ViewMemory handles GET /memories/{id}/view requests with the read-only
// HTML rendering. The accent query parameter overrides the memory color.
func (h *MemoryHandler) ViewMemory(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, memoryID, ok := handleUserIDAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	memory, err := h.memoryService.GetMemoryByID(r.Context(), userID, memoryID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get memory")
		return
	}

	accent := r.URL.Query().Get("accent")
	if !domain.ValidHexColor(accent) {
		accent = memory.Color
	}

	opts := []viewer.Option{
		viewer.WithLogger(log),
		viewer.WithMetrics(h.metrics),
		viewer.WithToggleAction(func(blockID string, item int) string {
			return togglePath(memoryID, blockID, item) + "?accent=" + url.QueryEscape(accent)
		}),
		viewer.WithImageLinks(func(blockID string, image int) string {
			return imageViewPath(memoryID, accent, blockID, image)
		}),
	}
	if blockID, image, ok := openImage(r, memory.Content); ok {
		opts = append(opts, viewer.WithOpenImage(blockID, image))
	}
	renderer := viewer.NewRenderer(opts...)
	// Toggles are posted back as forms, so the update callback is never
	// invoked in-process.
	body := renderer.RenderDocument(memory.Content, accent, func(block.Block) {})

	shared.RespondWithHTML(w, r, http.StatusOK, viewer.Page(memory.Title, accent, body))
}

func viewPath(memoryID uuid.UUID) string {
	return fmt.Sprintf("/api/memories/%s/view", memoryID)
}

// imageViewPath links the view with the lightbox of blockID open at image,
// or closed when image is negative.
func imageViewPath(memoryID uuid.UUID, accent, blockID string, image int) string {
	q := url.Values{}
	q.Set("accent", accent)
	if image >= 0 {
		q.Set("block", blockID)
		q.Set("image", strconv.Itoa(image))
	}
	return viewPath(memoryID) + "?" + q.Encode()
}

// openImage reads the lightbox selection from ?image=N and an optional
// ?block=ID, which defaults to the first image block.
func openImage(r *http.Request, doc block.Document) (string, int, bool) {
	raw := r.URL.Query().Get("image")
	if raw == "" {
		return "", 0, false
	}
	image, err := strconv.Atoi(raw)
	if err != nil || image < 0 {
		return "", 0, false
	}
	blockID := r.URL.Query().Get("block")
	if blockID == "" {
		first, ok := doc.FirstOfType(block.TypeImage)
		if !ok {
			return "", 0, false
		}
		blockID = first.ID
	}
	return blockID, image, true
}

func togglePath(memoryID uuid.UUID, blockID string, item int) string {
	return fmt.Sprintf("/api/memories/%s/blocks/%s/items/%d/toggle", memoryID, url.PathEscape(blockID), item)
}
