package editor

import (
	"log/slog"
	"sync"
	"time"

	"github.com/phrazzld/memoryblocks/internal/config"
	"github.com/phrazzld/memoryblocks/internal/domain/block"
)

// Option configures a block editor.
type Option func(*options)

type options struct {
	now         func() time.Time
	logger      *slog.Logger
	limits      UploadLimits
	debounce    time.Duration
	concurrency int
}

func defaultOptions() options {
	return options{
		now:         time.Now,
		logger:      slog.Default(),
		limits:      DefaultUploadLimits(),
		debounce:    500 * time.Millisecond,
		concurrency: 4,
	}
}

// WithClock sets the time source used for completion and upload stamps.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

// WithLogger sets the editor logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithUploadLimits sets the image size and count limits.
func WithUploadLimits(l UploadLimits) Option {
	return func(o *options) { o.limits = l }
}

// WithMetadataDebounce sets the quiescence window for alt and caption edits.
func WithMetadataDebounce(d time.Duration) Option {
	return func(o *options) { o.debounce = d }
}

// WithUploadConcurrency limits how many files of a batch are decoded at once.
func WithUploadConcurrency(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.concurrency = n
		}
	}
}

// OptionsFromConfig translates editor configuration into options.
func OptionsFromConfig(cfg config.EditorConfig) []Option {
	return []Option{
		WithUploadLimits(UploadLimits{MaxBytes: cfg.MaxImageBytes, MaxImages: cfg.MaxImagesPerBlock}),
		WithMetadataDebounce(cfg.MetadataDebounce()),
		WithUploadConcurrency(cfg.UploadConcurrency),
	}
}

// core holds the block shared by every editor.
type core struct {
	mu       sync.Mutex
	block    block.Block
	onChange func(block.Block)
	opts     options
}

func (c *core) init(b block.Block, want block.Type, onChange func(block.Block), opts []Option) error {
	if b.Type != want {
		return wrongType(want, b.Type)
	}
	c.opts = defaultOptions()
	for _, opt := range opts {
		opt(&c.opts)
	}
	c.block = b.Clone()
	c.onChange = onChange
	return nil
}

// Block returns a copy of the edited block.
func (c *core) Block() block.Block {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.block.Clone()
}

// set must be called with c.mu held.
func (c *core) set(b block.Block) block.Block {
	c.block = b
	return b.Clone()
}

func (c *core) emit(b block.Block) {
	if c.onChange != nil {
		c.onChange(b)
	}
}
