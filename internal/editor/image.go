package editor

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/phrazzld/memoryblocks/internal/domain/block"
	"github.com/phrazzld/memoryblocks/internal/platform/logger"
)

// ImageEditor manages the images of an image block. Uploads and removals
// are reported at once; alt text and caption edits are applied locally and
// reported after the metadata debounce window.
type ImageEditor struct {
	core
	debouncer *Debouncer
}

// NewImageEditor wraps an image block.
func NewImageEditor(b block.Block, onChange func(block.Block), opts ...Option) (*ImageEditor, error) {
	e := &ImageEditor{}
	if err := e.init(b, block.TypeImage, onChange, opts); err != nil {
		return nil, err
	}
	if _, err := block.Images(b); err != nil {
		return nil, err
	}
	e.debouncer = NewDebouncer(e.opts.debounce)
	return e, nil
}

// Images returns the current images.
func (e *ImageEditor) Images() []block.Image {
	e.mu.Lock()
	defer e.mu.Unlock()
	images, _ := block.Images(e.block)
	return images
}

// AddFiles validates and decodes a batch of files. Accepted images are
// appended and reported with a single onChange call; rejected files are
// returned, in input order. Files beyond the per-block image limit are
// rejected as well. The error is only set when ctx is done.
func (e *ImageEditor) AddFiles(ctx context.Context, files []FileInput) ([]block.Image, []*FileValidationError, error) {
	log := logger.FromContextOrDefault(ctx, e.opts.logger)

	results := decodeFiles(ctx, files, e.opts.limits, e.opts.concurrency, e.opts.now())
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	e.debouncer.Flush()

	e.mu.Lock()
	current, err := block.Images(e.block)
	if err != nil {
		e.mu.Unlock()
		return nil, nil, err
	}

	var (
		accepted []block.Image
		errs     []*FileValidationError
	)
	limit := e.opts.limits.MaxImages
	for i, r := range results {
		switch {
		case r.err != nil:
			errs = append(errs, r.err)
		case limit > 0 && len(current)+len(accepted) >= limit:
			errs = append(errs, &FileValidationError{
				Index:  i,
				Name:   r.name,
				Reason: fmt.Sprintf("image limit of %d reached", limit),
			})
		default:
			accepted = append(accepted, *r.image)
		}
	}

	if len(accepted) == 0 {
		e.mu.Unlock()
		logRejected(log, errs)
		return nil, errs, nil
	}

	b, err := block.WithImages(e.block, append(current, accepted...))
	if err != nil {
		e.mu.Unlock()
		return nil, errs, err
	}
	updated := e.set(b)
	e.mu.Unlock()

	e.emit(updated)
	log.Debug("images added", slog.Int("accepted", len(accepted)), slog.Int("rejected", len(errs)))
	logRejected(log, errs)
	return accepted, errs, nil
}

func logRejected(log *slog.Logger, errs []*FileValidationError) {
	for _, fe := range errs {
		log.Debug("image file rejected",
			slog.Int("index", fe.Index),
			slog.String("name", fe.Name),
			slog.String("reason", fe.Reason))
	}
}

// SetAlt changes the alt text of the image with the given id.
func (e *ImageEditor) SetAlt(imageID, alt string) error {
	return e.editMetadata(imageID, func(img *block.Image) { img.Alt = alt })
}

// SetCaption changes the caption of the image with the given id.
func (e *ImageEditor) SetCaption(imageID, caption string) error {
	return e.editMetadata(imageID, func(img *block.Image) { img.Caption = caption })
}

func (e *ImageEditor) editMetadata(imageID string, fn func(*block.Image)) error {
	e.mu.Lock()
	images, err := block.Images(e.block)
	if err != nil {
		e.mu.Unlock()
		return err
	}
	i := findImage(images, imageID)
	if i < 0 {
		e.mu.Unlock()
		return fmt.Errorf("%w: image %s", ErrBlockNotFound, imageID)
	}
	fn(&images[i])
	b, err := block.WithImages(e.block, images)
	if err != nil {
		e.mu.Unlock()
		return err
	}
	e.set(b)
	e.mu.Unlock()

	e.debouncer.Trigger(func() { e.emit(e.Block()) })
	return nil
}

// RemoveImage deletes the image with the given id.
func (e *ImageEditor) RemoveImage(imageID string) error {
	e.debouncer.Flush()

	e.mu.Lock()
	images, err := block.Images(e.block)
	if err != nil {
		e.mu.Unlock()
		return err
	}
	i := findImage(images, imageID)
	if i < 0 {
		e.mu.Unlock()
		return fmt.Errorf("%w: image %s", ErrBlockNotFound, imageID)
	}
	b, err := block.WithImages(e.block, append(images[:i], images[i+1:]...))
	if err != nil {
		e.mu.Unlock()
		return err
	}
	updated := e.set(b)
	e.mu.Unlock()

	e.emit(updated)
	return nil
}

// Flush reports pending metadata edits now.
func (e *ImageEditor) Flush() {
	e.debouncer.Flush()
}

// Close reports pending metadata edits and stops debouncing.
func (e *ImageEditor) Close() {
	e.debouncer.Close()
}

func findImage(images []block.Image, id string) int {
	for i, img := range images {
		if img.ID == id {
			return i
		}
	}
	return -1
}
