package api

import "github.com/go-chi/chi/v5"

// Handlers groups the handlers served under /api.
type Handlers struct {
	Blocks   *BlockHandler
	Memories *MemoryHandler
	Uploads  *UploadHandler
}

// Routes registers every endpoint on r. Authentication is applied by the
// caller.
func (h Handlers) Routes(r chi.Router) {
	// Registry, factory and validation
	r.Get("/block-types", h.Blocks.ListBlockTypes)
	r.Post("/block-types/available", h.Blocks.AvailableBlockTypes)
	r.Post("/blocks", h.Blocks.CreateBlock)
	r.Post("/blocks/validate", h.Blocks.ValidateBlock)

	// Placement over posted documents
	r.Post("/documents/validate", h.Blocks.ValidateDocument)
	r.Post("/documents/insert", h.Blocks.InsertBlock)
	r.Post("/documents/reorder", h.Blocks.ReorderBlocks)
	r.Post("/documents/delete", h.Blocks.DeleteBlock)

	// Stored memories
	r.Get("/memories", h.Memories.ListMemories)
	r.Post("/memories", h.Memories.CreateMemory)
	r.Get("/memories/{id}", h.Memories.GetMemory)
	r.Put("/memories/{id}", h.Memories.UpdateMemory)
	r.Delete("/memories/{id}", h.Memories.DeleteMemory)
	r.Get("/memories/{id}/view", h.Memories.ViewMemory)
	r.Post("/memories/{id}/blocks/{blockID}/items/{index}/toggle", h.Memories.ToggleChecklistItem)

	r.Post("/uploads/images", h.Uploads.UploadImages)
}
