package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hairizuan-noorazman/browser-smoke/logger"
	"github.com/hairizuan-noorazman/browser-smoke/run"
	"github.com/hairizuan-noorazman/browser-smoke/storage"
	"github.com/hairizuan-noorazman/browser-smoke/testutil"
)

func setupRunHandler(t *testing.T) (*RunHandler, run.Store, run.ArtifactStore, storage.BlobStorage) {
	db := testutil.SetupTestDB(t)
	testutil.AutoMigrate(t, db, &run.Run{}, &run.Artifact{})

	log := logger.NewTestLogger()
	runStore := run.NewMySQLStore(db, log)
	artifactStore := run.NewMySQLArtifactStore(db, log)

	blob, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	h := NewRunHandler(runStore, artifactStore, blob, log)
	return h, runStore, artifactStore, blob
}

func seedRun(t *testing.T, store run.Store, caseName string) *run.Run {
	rec := &run.Run{
		SuiteName:   "staff smoke",
		CaseName:    caseName,
		TargetURL:   "https://staff.example.com",
		Browser:     "headless-chrome",
		DelayMillis: 0,
		Status:      run.StatusPending,
	}
	require.NoError(t, store.Create(context.Background(), rec))
	return rec
}

func newRouter(h *RunHandler) *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/api/v1/runs", h.List).Methods("GET")
	r.HandleFunc("/api/v1/runs/{id}", h.GetByID).Methods("GET")
	r.HandleFunc("/api/v1/runs/{id}/artifacts", h.ListArtifacts).Methods("GET")
	r.HandleFunc("/api/v1/artifacts/{id}/download", h.DownloadArtifact).Methods("GET")
	return r
}

func TestRunHandler_List(t *testing.T) {
	h, store, _, _ := setupRunHandler(t)
	seedRun(t, store, "landing page")
	seedRun(t, store, "login page")

	req := httptest.NewRequest("GET", "/api/v1/runs", nil)
	rec := httptest.NewRecorder()
	newRouter(h).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp PaginatedResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, int64(2), resp.Total)
}

func TestRunHandler_ListByCase(t *testing.T) {
	h, store, _, _ := setupRunHandler(t)
	seedRun(t, store, "landing page")
	seedRun(t, store, "login page")

	req := httptest.NewRequest("GET", "/api/v1/runs?case_name=landing+page", nil)
	rec := httptest.NewRecorder()
	newRouter(h).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Items []run.Run `json:"items"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Items, 1)
	assert.Equal(t, "landing page", resp.Items[0].CaseName)
}

func TestRunHandler_GetByID(t *testing.T) {
	h, store, _, _ := setupRunHandler(t)
	seeded := seedRun(t, store, "landing page")

	tests := []struct {
		name       string
		id         string
		wantStatus int
	}{
		{"existing run", seeded.ID.String(), http.StatusOK},
		{"unknown run", uuid.New().String(), http.StatusNotFound},
		{"invalid id", "not-a-uuid", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/api/v1/runs/"+tt.id, nil)
			rec := httptest.NewRecorder()
			newRouter(h).ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func TestRunHandler_ListArtifacts(t *testing.T) {
	h, store, artifactStore, _ := setupRunHandler(t)
	seeded := seedRun(t, store, "landing page")

	artifact := &run.Artifact{
		RunID:        seeded.ID,
		Kind:         run.ArtifactKindScreenshot,
		ArtifactPath: "custom_name.png",
		FileName:     "custom_name.png",
		FileSize:     128,
		MimeType:     "image/png",
	}
	require.NoError(t, artifactStore.Create(context.Background(), artifact))

	req := httptest.NewRequest("GET", "/api/v1/runs/"+seeded.ID.String()+"/artifacts", nil)
	rec := httptest.NewRecorder()
	newRouter(h).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var artifacts []run.Artifact
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &artifacts))
	require.Len(t, artifacts, 1)
	assert.Equal(t, run.ArtifactKindScreenshot, artifacts[0].Kind)
}

func TestRunHandler_ListArtifacts_RunNotFound(t *testing.T) {
	h, _, _, _ := setupRunHandler(t)

	req := httptest.NewRequest("GET", "/api/v1/runs/"+uuid.New().String()+"/artifacts", nil)
	rec := httptest.NewRecorder()
	newRouter(h).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRunHandler_DownloadArtifact(t *testing.T) {
	h, store, artifactStore, blob := setupRunHandler(t)
	seeded := seedRun(t, store, "landing page")

	content := []byte("fake png bytes")
	require.NoError(t, storage.UploadBytes(context.Background(), blob, "custom_name.png", content))

	artifact := &run.Artifact{
		RunID:        seeded.ID,
		Kind:         run.ArtifactKindScreenshot,
		ArtifactPath: "custom_name.png",
		FileName:     "custom_name.png",
		FileSize:     int64(len(content)),
		MimeType:     "image/png",
	}
	require.NoError(t, artifactStore.Create(context.Background(), artifact))

	req := httptest.NewRequest("GET", "/api/v1/artifacts/"+artifact.ID.String()+"/download", nil)
	rec := httptest.NewRecorder()
	newRouter(h).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "custom_name.png")
	assert.Equal(t, content, rec.Body.Bytes())
}

func TestRunHandler_DownloadArtifact_MissingContent(t *testing.T) {
	h, store, artifactStore, _ := setupRunHandler(t)
	seeded := seedRun(t, store, "landing page")

	artifact := &run.Artifact{
		RunID:        seeded.ID,
		Kind:         run.ArtifactKindScreenshot,
		ArtifactPath: "missing.png",
		FileName:     "missing.png",
		FileSize:     1,
	}
	require.NoError(t, artifactStore.Create(context.Background(), artifact))

	req := httptest.NewRequest("GET", "/api/v1/artifacts/"+artifact.ID.String()+"/download", nil)
	rec := httptest.NewRecorder()
	newRouter(h).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
