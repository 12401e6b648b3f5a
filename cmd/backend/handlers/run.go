package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/hairizuan-noorazman/browser-smoke/logger"
	"github.com/hairizuan-noorazman/browser-smoke/run"
	"github.com/hairizuan-noorazman/browser-smoke/storage"
)

// RunHandler serves recorded runs and their artifacts.
type RunHandler struct {
	runStore      run.Store
	artifactStore run.ArtifactStore
	blob          storage.BlobStorage
	logger        logger.Logger
}

// NewRunHandler creates a run handler.
func NewRunHandler(runStore run.Store, artifactStore run.ArtifactStore, blob storage.BlobStorage, log logger.Logger) *RunHandler {
	return &RunHandler{
		runStore:      runStore,
		artifactStore: artifactStore,
		blob:          blob,
		logger:        log,
	}
}

// List handles GET /api/v1/runs. Supports case_name, limit, offset query
// parameters.
func (h *RunHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := pagination(r)

	var (
		runs []*run.Run
		err  error
	)
	if caseName := r.URL.Query().Get("case_name"); caseName != "" {
		runs, err = h.runStore.ListByCase(r.Context(), caseName, limit, offset)
	} else {
		runs, err = h.runStore.List(r.Context(), limit, offset)
	}
	if err != nil {
		h.logger.Error(r.Context(), "failed to list runs", map[string]interface{}{
			"error": err.Error(),
		})
		respondError(w, http.StatusInternalServerError, "failed to list runs")
		return
	}

	total, err := h.runStore.Count(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to count runs")
		return
	}

	respondJSON(w, http.StatusOK, PaginatedResponse{
		Items:  runs,
		Total:  total,
		Limit:  limit,
		Offset: offset,
	})
}

// GetByID handles GET /api/v1/runs/{id}.
func (h *RunHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid run id")
		return
	}

	rec, err := h.runStore.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, run.ErrRunNotFound) {
			respondError(w, http.StatusNotFound, "run not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to get run")
		return
	}

	respondJSON(w, http.StatusOK, rec)
}

// ListArtifacts handles GET /api/v1/runs/{id}/artifacts.
func (h *RunHandler) ListArtifacts(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid run id")
		return
	}

	if _, err := h.runStore.GetByID(r.Context(), id); err != nil {
		if errors.Is(err, run.ErrRunNotFound) {
			respondError(w, http.StatusNotFound, "run not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to get run")
		return
	}

	artifacts, err := h.artifactStore.ListByRun(r.Context(), id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to list artifacts")
		return
	}

	respondJSON(w, http.StatusOK, artifacts)
}

// DownloadArtifact handles GET /api/v1/artifacts/{id}/download and streams
// the artifact content from blob storage.
func (h *RunHandler) DownloadArtifact(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid artifact id")
		return
	}

	artifact, err := h.artifactStore.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, run.ErrArtifactNotFound) {
			respondError(w, http.StatusNotFound, "artifact not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to get artifact")
		return
	}

	body, err := h.blob.Download(r.Context(), artifact.ArtifactPath)
	if err != nil {
		if errors.Is(err, storage.ErrFileNotFound) {
			respondError(w, http.StatusNotFound, "artifact content not found")
			return
		}
		h.logger.Error(r.Context(), "failed to download artifact", map[string]interface{}{
			"artifact_id": id,
			"error":       err.Error(),
		})
		respondError(w, http.StatusInternalServerError, "failed to download artifact")
		return
	}
	defer body.Close()

	if artifact.MimeType != "" {
		w.Header().Set("Content-Type", artifact.MimeType)
	} else {
		w.Header().Set("Content-Type", "application/octet-stream")
	}
	w.Header().Set("Content-Disposition", "attachment; filename=\""+artifact.FileName+"\"")
	io.Copy(w, body)
}
