package server

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/nkmathur/partsrecon/constants"
	"github.com/nkmathur/partsrecon/internal/async"
	"github.com/nkmathur/partsrecon/internal/common"
	"github.com/nkmathur/partsrecon/internal/runs"
)

// handleCompare runs a synchronous comparison of the two uploaded files and
// returns the full result.
func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	estPath, billPath, cleanup, ok := s.receiveUploads(w, r)
	if !ok {
		return
	}
	defer cleanup()

	result, err := s.comparator.Compare(r.Context(), estPath, billPath)
	if err != nil {
		s.compareError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, result)
}

// handleCompareAsync queues the comparison and returns a run ID to poll.
func (s *Server) handleCompareAsync(w http.ResponseWriter, r *http.Request) {
	estPath, billPath, cleanup, ok := s.receiveUploads(w, r)
	if !ok {
		return
	}

	run := runs.Run{
		ID:          uuid.New(),
		Status:      constants.RunStatusQueued,
		SubmittedAt: time.Now().UTC(),
	}
	s.store.Put(run)

	err := s.queue.Enqueue(r.Context(), async.Job{
		RunID:        run.ID,
		EstimatePath: estPath,
		BillPath:     billPath,
		SubmittedAt:  run.SubmittedAt,
		Cleanup:      cleanup,
	})
	if err != nil {
		cleanup()
		s.sendJSONError(w, "failed to queue comparison", http.StatusInternalServerError)
		return
	}
	s.writeJSON(w, http.StatusAccepted, map[string]string{
		"run_id": run.ID.String(),
		"status": string(run.Status),
	})
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.sendJSONError(w, "invalid run id", http.StatusBadRequest)
		return
	}
	run, ok := s.store.Get(id)
	if !ok {
		s.sendJSONError(w, "run not found or expired", http.StatusNotFound)
		return
	}
	s.writeJSON(w, http.StatusOK, run)
}

func (s *Server) handleExportRun(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.sendJSONError(w, "invalid run id", http.StatusBadRequest)
		return
	}
	run, ok := s.store.Get(id)
	if !ok {
		s.sendJSONError(w, "run not found or expired", http.StatusNotFound)
		return
	}
	if run.Status != constants.RunStatusDone || run.Result == nil {
		s.sendJSONError(w, fmt.Sprintf("run is %s, not exportable", run.Status), http.StatusConflict)
		return
	}

	data, err := s.exporter.ComparisonXLSX(run.Result.Results)
	if err != nil {
		s.logger.Error("export failed", "run_id", id, "error", err)
		s.sendJSONError(w, "failed to build workbook", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="comparison_result.xlsx"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// compareError maps pipeline errors onto responses. An empty extraction is
// the user's problem to fix (unsupported layout), not a server fault.
func (s *Server) compareError(w http.ResponseWriter, err error) {
	if errors.Is(err, common.ErrNoUsableData) {
		s.sendJSONError(w, "one of the documents didn't contain usable data", http.StatusUnprocessableEntity)
		return
	}
	s.logger.Error("comparison failed", "error", err)
	s.sendJSONError(w, "comparison failed", http.StatusInternalServerError)
}

// receiveUploads parses the multipart form, validates both files, and spools
// them to a scratch directory. The returned cleanup removes the directory
// and must be called on every path once ok is true.
func (s *Server) receiveUploads(w http.ResponseWriter, r *http.Request) (estPath, billPath string, cleanup func(), ok bool) {
	if err := r.ParseMultipartForm(s.cfg.MaxUploadSizeBytes); err != nil {
		s.logger.Warn("failed to parse multipart form or request too large", "error", err, "limit", s.cfg.MaxUploadSizeBytes)
		s.sendJSONError(w, fmt.Sprintf("failed to parse form or request too large (max %d MB)", s.cfg.MaxUploadSizeBytes/(1024*1024)), http.StatusBadRequest)
		return "", "", nil, false
	}

	dir, err := os.MkdirTemp("", "partsrecon-upload-*")
	if err != nil {
		s.sendJSONError(w, "failed to allocate scratch space", http.StatusInternalServerError)
		return "", "", nil, false
	}
	cleanup = func() { _ = os.RemoveAll(dir) }

	estPath, err = s.spoolUpload(r, "estimate", dir)
	if err != nil {
		cleanup()
		s.sendJSONError(w, err.Error(), http.StatusBadRequest)
		return "", "", nil, false
	}
	billPath, err = s.spoolUpload(r, "bill", dir)
	if err != nil {
		cleanup()
		s.sendJSONError(w, err.Error(), http.StatusBadRequest)
		return "", "", nil, false
	}
	return estPath, billPath, cleanup, true
}

func (s *Server) spoolUpload(r *http.Request, field, dir string) (string, error) {
	file, header, err := r.FormFile(field)
	if err != nil {
		return "", fmt.Errorf("missing %q file field", field)
	}
	defer file.Close()

	ext := constants.NormalizeExt(filepath.Ext(header.Filename))
	if _, allowed := constants.AllowedExtensions[ext]; !allowed {
		return "", fmt.Errorf("unsupported file type %q for %s", ext, field)
	}
	if header.Size > s.cfg.MaxUploadSizeBytes {
		return "", fmt.Errorf("%s file too large, max %d MB", field, s.cfg.MaxUploadSizeBytes/(1024*1024))
	}

	dst := filepath.Join(dir, field+"."+ext)
	if err := copyUpload(file, dst); err != nil {
		return "", fmt.Errorf("store %s upload: %w", field, err)
	}
	s.logger.Debug("upload spooled", "field", field, "filename", header.Filename, "size", header.Size)
	return dst, nil
}

func copyUpload(src multipart.File, dst string) error {
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()
	if _, err := io.Copy(out, src); err != nil {
		return err
	}
	return out.Sync()
}
