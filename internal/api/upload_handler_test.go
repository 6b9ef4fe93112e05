package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/memoryblocks/internal/config"
	"github.com/phrazzld/memoryblocks/internal/domain/block"
	"github.com/phrazzld/memoryblocks/internal/platform/logger"
	"github.com/phrazzld/memoryblocks/internal/platform/metrics"
	"github.com/phrazzld/memoryblocks/internal/testutils"
)

var testPNG = append([]byte("\x89PNG\r\n\x1a\n"), make([]byte, 64)...)

type uploadFile struct {
	name        string
	contentType string
	data        []byte
}

// multipartBody builds an upload form; blockJSON is sent when not empty.
func multipartBody(t *testing.T, files []uploadFile, blockJSON string) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for _, f := range files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`, uploadFilesField, f.name))
		h.Set("Content-Type", f.contentType)
		part, err := mw.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write(f.data)
		require.NoError(t, err)
	}
	if blockJSON != "" {
		require.NoError(t, mw.WriteField(uploadBlockField, blockJSON))
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func (e *testEnv) upload(t *testing.T, files []uploadFile, blockJSON string) *httptest.ResponseRecorder {
	t.Helper()

	body, contentType := multipartBody(t, files, blockJSON)
	req := httptest.NewRequest(http.MethodPost, "/api/uploads/images", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", authHeader(t, e, uuid.New()))

	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func TestUploadHandler_UploadImages(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)

	t.Run("mixed batch keeps accepted files", func(t *testing.T) {
		t.Parallel()

		rec := env.upload(t, []uploadFile{
			{name: "lake.png", contentType: "image/png", data: testPNG},
			{name: "notes.txt", contentType: "text/plain", data: []byte("hello there")},
			{name: "shell.php.png", contentType: "image/png", data: testPNG},
		}, "")

		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		resp := decodeBody[UploadResponse](t, rec)

		require.Len(t, resp.Images, 1)
		assert.Equal(t, "lake", resp.Images[0].Alt)
		assert.Equal(t, "image/png", resp.Images[0].Type)
		assert.Equal(t, int64(len(testPNG)), resp.Images[0].Size)

		require.Len(t, resp.Errors, 2)
		assert.Equal(t, 1, resp.Errors[0].Index)
		assert.Equal(t, 2, resp.Errors[1].Index)

		assert.Equal(t, block.TypeImage, resp.Block.Type)
		images, err := block.Images(resp.Block)
		require.NoError(t, err)
		assert.Len(t, images, 1)
		assert.True(t, block.Validate(resp.Block).Valid)
	})

	t.Run("appends to the posted block", func(t *testing.T) {
		t.Parallel()

		existing, err := block.WithImages(testutils.NewBlock(t, block.TypeImage), []block.Image{
			{ID: "first", URL: "https://example.com/a.png", Type: "image/png"},
		})
		require.NoError(t, err)
		raw, err := json.Marshal(existing)
		require.NoError(t, err)

		rec := env.upload(t, []uploadFile{{name: "b.png", contentType: "image/png", data: testPNG}}, string(raw))

		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		resp := decodeBody[UploadResponse](t, rec)
		assert.Equal(t, existing.ID, resp.Block.ID)
		images, err := block.Images(resp.Block)
		require.NoError(t, err)
		require.Len(t, images, 2)
		assert.Equal(t, "first", images[0].ID)
	})

	t.Run("every file rejected", func(t *testing.T) {
		t.Parallel()

		rec := env.upload(t, []uploadFile{{name: "a.exe", contentType: "image/png", data: testPNG}}, "")

		require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		resp := decodeBody[UploadResponse](t, rec)
		assert.Empty(t, resp.Images)
		require.Len(t, resp.Errors, 1)
		assert.Equal(t, "a.exe", resp.Errors[0].Name)
	})

	t.Run("posted block of another type", func(t *testing.T) {
		t.Parallel()

		raw, err := json.Marshal(testutils.NewBlock(t, block.TypeDivider))
		require.NoError(t, err)

		rec := env.upload(t, []uploadFile{{name: "a.png", contentType: "image/png", data: testPNG}}, string(raw))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("no files", func(t *testing.T) {
		t.Parallel()

		rec := env.upload(t, nil, "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "No files uploaded", decodeError(t, rec).Error)
	})
}

func TestUploadHandler_CountsFiles(t *testing.T) {
	t.Parallel()

	log, _ := logger.GetTestLogger(t)
	m := metrics.NewMetrics()
	h := NewUploadHandler(config.DefaultEditorConfig(), m, log)

	accepted := m.ImageFilesTotal.WithLabelValues("accepted")
	rejected := m.ImageFilesTotal.WithLabelValues("rejected")
	beforeAccepted, beforeRejected := testutil.ToFloat64(accepted), testutil.ToFloat64(rejected)

	body, contentType := multipartBody(t, []uploadFile{
		{name: "a.png", contentType: "image/png", data: testPNG},
		{name: "b.gif", contentType: "image/gif", data: testPNG},
	}, "")
	req := httptest.NewRequest(http.MethodPost, "/", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	h.UploadImages(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, beforeAccepted+1, testutil.ToFloat64(accepted))
	assert.Equal(t, beforeRejected+1, testutil.ToFloat64(rejected))
}
