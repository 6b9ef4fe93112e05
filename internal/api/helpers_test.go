package api

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	apiMiddleware "github.com/phrazzld/memoryblocks/internal/api/middleware"
	"github.com/phrazzld/memoryblocks/internal/api/shared"
	"github.com/phrazzld/memoryblocks/internal/config"
	"github.com/phrazzld/memoryblocks/internal/platform/logger"
	"github.com/phrazzld/memoryblocks/internal/platform/sqlite"
	"github.com/phrazzld/memoryblocks/internal/service"
	"github.com/phrazzld/memoryblocks/internal/service/auth"
	"github.com/phrazzld/memoryblocks/internal/testutils"
)

// testEnv is a full API stack over an in-memory SQLite database.
type testEnv struct {
	router http.Handler
	svc    service.MemoryService
	jwt    auth.JWTService
	logs   *logger.TestLogBuffer
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := testutils.NewSQLiteDB(t)
	log, logs := logger.GetTestLogger(t)

	repo := service.NewMemoryRepositoryAdapter(sqlite.NewMemoryStore(db, log), db)
	svc, err := service.NewMemoryService(repo, nil, log)
	require.NoError(t, err)

	env := &testEnv{svc: svc, jwt: auth.RequireTestJWTService(t), logs: logs}
	env.router = newTestRouter(env.svc, env.jwt, config.DefaultEditorConfig(), log)
	return env
}

func newTestRouter(
	svc service.MemoryService,
	jwtService auth.JWTService,
	editorCfg config.EditorConfig,
	log *slog.Logger,
) http.Handler {
	handlers := Handlers{
		Blocks:   NewBlockHandler(editorCfg.MaxBlocks, nil, log),
		Memories: NewMemoryHandler(svc, editorCfg.MaxBlocks, nil, log),
		Uploads:  NewUploadHandler(editorCfg, nil, log),
	}
	authMiddleware := apiMiddleware.NewAuthMiddleware(jwtService)

	r := chi.NewRouter()
	r.Use(apiMiddleware.NewTraceMiddleware(log))
	r.Route("/api", func(r chi.Router) {
		r.Use(authMiddleware.Authenticate)
		handlers.Routes(r)
	})
	return r
}

// do sends a JSON request as userID; uuid.Nil sends it unauthenticated.
func (e *testEnv) do(t *testing.T, method, path string, body any, userID uuid.UUID) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, ok := body.([]byte)
		if !ok {
			var err error
			raw, err = json.Marshal(body)
			require.NoError(t, err)
		}
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if userID != uuid.Nil {
		req.Header.Set("Authorization", auth.GenerateAuthHeaderForTestingT(t, e.jwt, userID))
	}

	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), "body: %s", rec.Body.String())
	return v
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) shared.ErrorResponse {
	t.Helper()
	return decodeBody[shared.ErrorResponse](t, rec)
}

// serveJSON calls h directly with a JSON body, bypassing routing and auth.
func serveJSON(t *testing.T, h http.HandlerFunc, body any) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h(rec, req)
	return rec
}
