package editor

import (
	"context"
	"encoding/base64"
	"fmt"
	"path/filepath"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/gabriel-vasile/mimetype"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/unicode/norm"

	"github.com/phrazzld/memoryblocks/internal/domain/block"
)

// MaxFileNameLength bounds upload file names, in characters.
const MaxFileNameLength = 255

// FileInput is one file of an upload batch.
type FileInput struct {
	Name         string
	Data         []byte
	DeclaredType string
}

// UploadLimits bounds image uploads.
type UploadLimits struct {
	// MaxBytes is the largest accepted file.
	MaxBytes int64
	// MaxImages is the most images one image block may hold.
	MaxImages int
}

// DefaultUploadLimits allows 5 MB files and 10 images per block.
func DefaultUploadLimits() UploadLimits {
	return UploadLimits{MaxBytes: 5 << 20, MaxImages: 10}
}

var allowedImageTypes = []string{"image/jpeg", "image/png", "image/webp", "image/gif"}

var allowedExtensions = map[string]bool{
	"jpg": true, "jpeg": true, "png": true, "webp": true, "gif": true,
}

// Extensions that must not appear anywhere in a file name.
var dangerousExtensions = map[string]bool{
	"php": true, "phtml": true, "php5": true, "exe": true, "dll": true,
	"js": true, "mjs": true, "sh": true, "bash": true, "bat": true,
	"cmd": true, "com": true, "ps1": true, "vbs": true, "jar": true,
	"html": true, "htm": true, "svg": true, "jsp": true, "asp": true,
	"aspx": true, "cgi": true, "pl": true, "py": true, "scr": true,
}

// AllowedImageTypes lists the accepted MIME types.
func AllowedImageTypes() []string {
	out := make([]string, len(allowedImageTypes))
	copy(out, allowedImageTypes)
	return out
}

func isAllowedType(t string) bool {
	for _, a := range allowedImageTypes {
		if a == t {
			return true
		}
	}
	return false
}

func normalizeDeclared(t string) string {
	t, _, _ = strings.Cut(t, ";")
	t = strings.ToLower(strings.TrimSpace(t))
	if t == "image/jpg" || t == "image/pjpeg" {
		return "image/jpeg"
	}
	return t
}

// ValidateFile checks one file and returns its detected MIME type. The
// returned error is a plain reason suitable for a FileValidationError.
func ValidateFile(f FileInput, maxBytes int64) (string, error) {
	if err := validateFileName(f.Name); err != nil {
		return "", err
	}
	if len(f.Data) == 0 {
		return "", fmt.Errorf("file is empty")
	}
	if maxBytes > 0 && int64(len(f.Data)) > maxBytes {
		return "", fmt.Errorf("file is larger than %s", formatBytes(maxBytes))
	}

	declared := normalizeDeclared(f.DeclaredType)
	if declared != "" && !isAllowedType(declared) {
		return "", fmt.Errorf("file type %s is not allowed", declared)
	}

	detected := mimetype.Detect(f.Data)
	mime := ""
	for _, t := range allowedImageTypes {
		if detected.Is(t) {
			mime = t
			break
		}
	}
	if mime == "" {
		return "", fmt.Errorf("content is not a supported image (detected %s)", detected.String())
	}
	if declared != "" && declared != mime {
		return "", fmt.Errorf("declared type %s does not match content %s", declared, mime)
	}
	return mime, nil
}

func validateFileName(name string) error {
	folded := norm.NFKC.String(name)
	if strings.TrimSpace(folded) == "" {
		return fmt.Errorf("file name is required")
	}
	if utf8.RuneCountInString(folded) > MaxFileNameLength {
		return fmt.Errorf("file name is longer than %d characters", MaxFileNameLength)
	}
	if strings.Contains(folded, "..") || strings.ContainsAny(folded, `/\`) {
		return fmt.Errorf("file name contains path characters")
	}
	for _, r := range folded {
		if r == 0 || unicode.IsControl(r) {
			return fmt.Errorf("file name contains control characters")
		}
	}

	parts := strings.Split(strings.ToLower(folded), ".")
	if len(parts) == 1 {
		return nil
	}
	for _, p := range parts[1 : len(parts)-1] {
		if dangerousExtensions[strings.TrimSpace(p)] {
			return fmt.Errorf("file name has a suspicious extension .%s", p)
		}
	}
	if ext := parts[len(parts)-1]; !allowedExtensions[ext] {
		return fmt.Errorf("extension .%s is not allowed", ext)
	}
	return nil
}

func formatBytes(n int64) string {
	switch {
	case n >= 1<<20 && n%(1<<20) == 0:
		return fmt.Sprintf("%d MB", n>>20)
	case n >= 1<<10 && n%(1<<10) == 0:
		return fmt.Sprintf("%d KB", n>>10)
	default:
		return fmt.Sprintf("%d bytes", n)
	}
}

// fileResult is the outcome for one file of a batch; exactly one of
// image and err is set.
type fileResult struct {
	name  string
	image *block.Image
	err   *FileValidationError
}

// DecodeFiles validates every file independently and converts the valid
// ones to image descriptors. Files are processed concurrently, at most
// concurrency at a time; one failure never affects another file. Both
// results keep the input order.
func DecodeFiles(ctx context.Context, files []FileInput, limits UploadLimits, concurrency int, now time.Time) ([]block.Image, []*FileValidationError) {
	var (
		images []block.Image
		errs   []*FileValidationError
	)
	for _, r := range decodeFiles(ctx, files, limits, concurrency, now) {
		if r.err != nil {
			errs = append(errs, r.err)
			continue
		}
		images = append(images, *r.image)
	}
	return images, errs
}

func decodeFiles(ctx context.Context, files []FileInput, limits UploadLimits, concurrency int, now time.Time) []fileResult {
	results := make([]fileResult, len(files))

	var g errgroup.Group
	if concurrency > 0 {
		g.SetLimit(concurrency)
	}
	for i, f := range files {
		i, f := i, f
		results[i].name = f.Name
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				results[i].err = &FileValidationError{Index: i, Name: f.Name, Reason: "upload cancelled"}
				return nil
			}
			mime, err := ValidateFile(f, limits.MaxBytes)
			if err != nil {
				results[i].err = &FileValidationError{Index: i, Name: f.Name, Reason: err.Error()}
				return nil
			}
			img := describe(f, mime, now)
			results[i].image = &img
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func describe(f FileInput, mime string, now time.Time) block.Image {
	return block.Image{
		ID:         block.NewID(),
		URL:        "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(f.Data),
		Alt:        strings.TrimSuffix(f.Name, filepath.Ext(f.Name)),
		Size:       int64(len(f.Data)),
		Type:       mime,
		UploadedAt: now.UTC(),
	}
}
