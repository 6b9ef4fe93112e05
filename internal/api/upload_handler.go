package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"

	"github.com/phrazzld/memoryblocks/internal/api/shared"
	"github.com/phrazzld/memoryblocks/internal/config"
	"github.com/phrazzld/memoryblocks/internal/domain/block"
	"github.com/phrazzld/memoryblocks/internal/editor"
	"github.com/phrazzld/memoryblocks/internal/platform/logger"
	"github.com/phrazzld/memoryblocks/internal/platform/metrics"
)

const (
	// uploadFilesField is the multipart field holding the image files.
	uploadFilesField = "files"
	// uploadBlockField optionally holds the JSON image block to add to.
	uploadBlockField = "block"

	multipartMemory = 8 << 20
)

// UploadHandler validates and decodes image upload batches into image
// block descriptors.
type UploadHandler struct {
	cfg     config.EditorConfig
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// NewUploadHandler creates a new UploadHandler. A nil m disables metrics.
func NewUploadHandler(cfg config.EditorConfig, m *metrics.Metrics, logger *slog.Logger) *UploadHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for UploadHandler")
	}

	return &UploadHandler{
		cfg:     cfg,
		metrics: m,
		logger:  logger.With(slog.String("component", "upload_handler")),
	}
}

// maxBody bounds a whole batch: one block's worth of images plus form overhead.
func (h *UploadHandler) maxBody() int64 {
	return h.cfg.MaxImageBytes*int64(h.cfg.MaxImagesPerBlock) + (1 << 20)
}

// UploadImages handles POST /uploads/images requests. Every file is checked
// on its own; accepted files are added to the posted image block, or to a
// new one. The request fails with 422 only when no file was accepted.
func (h *UploadHandler) UploadImages(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	r.Body = http.MaxBytesReader(w, r.Body, h.maxBody())
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			shared.RespondWithError(w, r, http.StatusRequestEntityTooLarge, "Upload is too large")
			return
		}
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid multipart form")
		return
	}
	defer func() {
		if err := r.MultipartForm.RemoveAll(); err != nil {
			log.Warn("failed to remove multipart temp files", slog.String("error", err.Error()))
		}
	}()

	headers := r.MultipartForm.File[uploadFilesField]
	if len(headers) == 0 {
		shared.RespondWithError(w, r, http.StatusBadRequest, "No files uploaded")
		return
	}

	target, err := uploadTarget(r.FormValue(uploadBlockField))
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	files := make([]editor.FileInput, 0, len(headers))
	for _, fh := range headers {
		f, err := readFormFile(fh, h.cfg.MaxImageBytes)
		if err != nil {
			shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid multipart form", err)
			return
		}
		files = append(files, f)
	}

	opts := append(editor.OptionsFromConfig(h.cfg), editor.WithLogger(log))
	ed, err := editor.NewImageEditor(target, nil, opts...)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	defer ed.Close()

	accepted, rejected, err := ed.AddFiles(r.Context(), files)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to process upload")
		return
	}

	if h.metrics != nil {
		h.metrics.ImageFilesTotal.WithLabelValues("accepted").Add(float64(len(accepted)))
		h.metrics.ImageFilesTotal.WithLabelValues("rejected").Add(float64(len(rejected)))
	}

	if accepted == nil {
		accepted = []block.Image{}
	}
	if rejected == nil {
		rejected = []*editor.FileValidationError{}
	}
	resp := UploadResponse{Block: ed.Block(), Images: accepted, Errors: rejected}

	status := http.StatusOK
	if len(accepted) == 0 {
		status = http.StatusUnprocessableEntity
	}
	log.Debug("image upload processed",
		slog.Int("accepted", len(accepted)),
		slog.Int("rejected", len(rejected)))
	shared.RespondWithJSON(w, r, status, resp)
}

// uploadTarget decodes the posted image block, or creates one.
func uploadTarget(raw string) (block.Block, error) {
	if raw == "" {
		return block.New(block.TypeImage)
	}
	var b block.Block
	if err := json.Unmarshal([]byte(raw), &b); err != nil {
		return block.Block{}, fmt.Errorf("%w: block: %v", block.ErrInvalidContent, err)
	}
	return b, nil
}

// readFormFile reads one uploaded file. At most maxBytes+1 bytes are kept
// so that oversized files are still reported as such.
func readFormFile(fh *multipart.FileHeader, maxBytes int64) (editor.FileInput, error) {
	f, err := fh.Open()
	if err != nil {
		return editor.FileInput{}, fmt.Errorf("open %s: %w", fh.Filename, err)
	}
	defer func() { _ = f.Close() }()

	data, err := io.ReadAll(io.LimitReader(f, maxBytes+1))
	if err != nil {
		return editor.FileInput{}, fmt.Errorf("read %s: %w", fh.Filename, err)
	}
	return editor.FileInput{
		Name:         fh.Filename,
		Data:         data,
		DeclaredType: fh.Header.Get("Content-Type"),
	}, nil
}
