package editor

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	pngBytes  = append([]byte("\x89PNG\r\n\x1a\n"), make([]byte, 64)...)
	jpegBytes = append([]byte("\xff\xd8\xff\xe0\x00\x10JFIF\x00"), make([]byte, 64)...)
	gifBytes  = append([]byte("GIF89a"), make([]byte, 64)...)
	webpBytes = append([]byte("RIFF\x24\x00\x00\x00WEBPVP8 "), make([]byte, 64)...)
)

func TestValidateFile(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		file       FileInput
		maxBytes   int64
		wantType   string
		wantReason string
	}{
		{name: "png", file: FileInput{Name: "a.png", Data: pngBytes, DeclaredType: "image/png"}, wantType: "image/png"},
		{name: "jpeg with jpg alias", file: FileInput{Name: "a.jpg", Data: jpegBytes, DeclaredType: "image/jpg"}, wantType: "image/jpeg"},
		{name: "gif without declared type", file: FileInput{Name: "a.gif", Data: gifBytes}, wantType: "image/gif"},
		{name: "webp", file: FileInput{Name: "photo.webp", Data: webpBytes, DeclaredType: "image/webp"}, wantType: "image/webp"},
		{name: "name without extension", file: FileInput{Name: "IMG_0001", Data: pngBytes}, wantType: "image/png"},
		{
			name:       "disallowed declared type",
			file:       FileInput{Name: "a.png", Data: pngBytes, DeclaredType: "application/octet-stream"},
			wantReason: "file type application/octet-stream is not allowed",
		},
		{
			name:       "content is not an image",
			file:       FileInput{Name: "a.png", Data: []byte("just some text pretending")},
			wantReason: "content is not a supported image",
		},
		{
			name:       "declared type does not match content",
			file:       FileInput{Name: "a.png", Data: gifBytes, DeclaredType: "image/png"},
			wantReason: "declared type image/png does not match content image/gif",
		},
		{
			name:       "too large",
			file:       FileInput{Name: "a.png", Data: pngBytes},
			maxBytes:   16,
			wantReason: "file is larger than 16 bytes",
		},
		{name: "empty", file: FileInput{Name: "a.png"}, wantReason: "file is empty"},
		{name: "blank name", file: FileInput{Name: " ", Data: pngBytes}, wantReason: "file name is required"},
		{
			name:       "long name",
			file:       FileInput{Name: strings.Repeat("a", 252) + ".png", Data: pngBytes},
			wantReason: "longer than 255",
		},
		{name: "path traversal", file: FileInput{Name: "../etc/a.png", Data: pngBytes}, wantReason: "path characters"},
		{name: "fullwidth slash", file: FileInput{Name: "dir／a.png", Data: pngBytes}, wantReason: "path characters"},
		{name: "control character", file: FileInput{Name: "a\x00.png", Data: pngBytes}, wantReason: "control characters"},
		{name: "double extension", file: FileInput{Name: "shell.php.png", Data: pngBytes}, wantReason: "suspicious extension .php"},
		{name: "wrong extension", file: FileInput{Name: "a.txt", Data: pngBytes}, wantReason: "extension .txt is not allowed"},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			maxBytes := tc.maxBytes
			if maxBytes == 0 {
				maxBytes = DefaultUploadLimits().MaxBytes
			}
			mime, err := ValidateFile(tc.file, maxBytes)
			if tc.wantReason == "" {
				require.NoError(t, err)
				assert.Equal(t, tc.wantType, mime)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantReason)
		})
	}
}

func TestDecodeFiles_IndependentResultsInOrder(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 2, 2, 2, 2, 2, 0, time.UTC)
	files := []FileInput{
		{Name: "one.png", Data: pngBytes, DeclaredType: "image/png"},
		{Name: "two.bin", Data: []byte{0x00, 0x01, 0x02}, DeclaredType: "application/octet-stream"},
		{Name: "three.gif", Data: gifBytes, DeclaredType: "image/gif"},
		{Name: "four.jpeg", Data: jpegBytes, DeclaredType: "image/jpeg"},
	}

	images, errs := DecodeFiles(context.Background(), files, DefaultUploadLimits(), 2, now)

	require.Len(t, images, 3)
	assert.Equal(t, "one", images[0].Alt)
	assert.Equal(t, "three", images[1].Alt)
	assert.Equal(t, "four", images[2].Alt)
	assert.Equal(t, "image/gif", images[1].Type)
	assert.Equal(t, int64(len(gifBytes)), images[1].Size)
	assert.True(t, strings.HasPrefix(images[1].URL, "data:image/gif;base64,"))
	assert.Equal(t, now, images[0].UploadedAt)
	assert.NotEqual(t, images[0].ID, images[1].ID)

	require.Len(t, errs, 1)
	assert.Equal(t, 1, errs[0].Index)
	assert.Equal(t, "two.bin", errs[0].Name)
	assert.ErrorIs(t, errs[0], ErrFileValidation)
	assert.Contains(t, errs[0].Error(), "file 2 (two.bin)")
}

func TestDecodeFiles_CancelledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	images, errs := DecodeFiles(ctx, []FileInput{{Name: "a.png", Data: pngBytes}}, DefaultUploadLimits(), 1, time.Now())
	assert.Empty(t, images)
	require.Len(t, errs, 1)
	assert.Equal(t, "upload cancelled", errs[0].Reason)
}
