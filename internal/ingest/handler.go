package ingest

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/pyqvault/pyqvault/internal/jobs"
	"github.com/pyqvault/pyqvault/pkg/handlers"
	"github.com/pyqvault/pyqvault/pkg/pagination"
	"github.com/pyqvault/pyqvault/pkg/routes"
)

// Handler exposes archive ingestion over HTTP. All routes are admin-only and
// mounted behind the auth middleware.
type Handler struct {
	jobs          jobs.System
	driver        *Driver
	fetcher       *Fetcher
	config        *Config
	pagination    pagination.Config
	maxUploadSize int64
	logger        *slog.Logger
}

// NewHandler creates an ingest HTTP handler.
func NewHandler(
	cfg *Config,
	jobSystem jobs.System,
	driver *Driver,
	fetcher *Fetcher,
	paginationCfg pagination.Config,
	maxUploadSize int64,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		jobs:          jobSystem,
		driver:        driver,
		fetcher:       fetcher,
		config:        cfg,
		pagination:    paginationCfg,
		maxUploadSize: maxUploadSize,
		logger:        logger.With("handler", "ingest"),
	}
}

// Routes returns the handler's route group.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/admin",
		Routes: []routes.Route{
			{Method: http.MethodPost, Pattern: "/archives", Handler: h.upload},
			{Method: http.MethodPost, Pattern: "/archives/url", Handler: h.uploadFromURL},
			{Method: http.MethodGet, Pattern: "/jobs", Handler: h.listJobs},
			{Method: http.MethodGet, Pattern: "/jobs/{id}", Handler: h.findJob},
			{Method: http.MethodPost, Pattern: "/jobs/{id}/process", Handler: h.process},
		},
	}
}

func (h *Handler) upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		status := http.StatusBadRequest
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			status = http.StatusRequestEntityTooLarge
		}
		handlers.RespondError(w, h.logger, status, fmt.Errorf("parse upload: %w", err))
		return
	}

	examType, examYear, err := sessionFromForm(r.FormValue("exam_type"), r.FormValue("exam_year"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrMissingFile)
		return
	}
	defer file.Close()

	filename := filepath.Base(header.Filename)
	if !strings.EqualFold(filepath.Ext(filename), ".zip") {
		handlers.RespondError(w, h.logger, http.StatusBadRequest,
			fmt.Errorf("%w: only zip archives are accepted", ErrMissingFile))
		return
	}

	archivePath, err := h.saveArchive(file, filename)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	job, err := h.jobs.Create(r.Context(), jobs.NewJob{
		Filename:    filename,
		ArchivePath: archivePath,
		ExamType:    examType,
		ExamYear:    examYear,
		Status:      jobs.StatusUploaded,
	})
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusCreated, job)
}

type uploadFromURLRequest struct {
	URL      string `json:"url"`
	ExamType string `json:"exam_type"`
	ExamYear int    `json:"exam_year"`
}

func (h *Handler) uploadFromURL(w http.ResponseWriter, r *http.Request) {
	var req uploadFromURLRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}

	examType, examYear, err := sessionFromForm(req.ExamType, strconv.Itoa(req.ExamYear))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	if err := h.fetcher.ValidateURL(req.URL); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	filename := remoteFilename(req.URL)
	targetPath := filepath.Join(h.config.UploadDir, uuid.NewString()+"_"+filename)

	job, err := h.jobs.Create(r.Context(), jobs.NewJob{
		Filename:    filename,
		ArchivePath: targetPath,
		SourceURL:   &req.URL,
		ExamType:    examType,
		ExamYear:    examYear,
		Status:      jobs.StatusFetching,
	})
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	h.fetcher.FetchAsync(job.ID, req.URL, targetPath)
	handlers.RespondJSON(w, http.StatusAccepted, job)
}

func (h *Handler) listJobs(w http.ResponseWriter, r *http.Request) {
	req := pagination.PageRequestFromQuery(r.URL.Query(), h.pagination)

	var status *jobs.Status
	if raw := r.URL.Query().Get("status"); raw != "" {
		s := jobs.Status(strings.ToUpper(raw))
		if !s.Valid() {
			handlers.RespondError(w, h.logger, http.StatusBadRequest,
				fmt.Errorf("unknown job status %q", raw))
			return
		}
		status = &s
	}

	result, err := h.jobs.List(r.Context(), req, status)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

func (h *Handler) findJob(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, fmt.Errorf("invalid job id"))
		return
	}

	job, err := h.jobs.Find(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, job)
}

type processRequest struct {
	BatchSize int `json:"batch_size"`
}

func (h *Handler) process(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, fmt.Errorf("invalid job id"))
		return
	}

	// Batch size is optional; an empty body selects the configured default.
	var req processRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}

	progress, err := h.driver.Advance(r.Context(), id, req.BatchSize)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, progress)
}

func (h *Handler) saveArchive(file io.Reader, filename string) (string, error) {
	if err := os.MkdirAll(h.config.UploadDir, 0o755); err != nil {
		return "", fmt.Errorf("create upload directory: %w", err)
	}

	path := filepath.Join(h.config.UploadDir, uuid.NewString()+"_"+filename)
	target, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create archive file: %w", err)
	}
	defer target.Close()

	if _, err := io.Copy(target, file); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("save archive: %w", err)
	}

	return path, nil
}

func sessionFromForm(examType, examYear string) (string, int, error) {
	examType = strings.TrimSpace(examType)
	if examType == "" {
		return "", 0, fmt.Errorf("exam_type is required")
	}

	year, err := strconv.Atoi(strings.TrimSpace(examYear))
	if err != nil || year < 2000 || year > 2100 {
		return "", 0, fmt.Errorf("exam_year must be a four digit year")
	}

	return examType, year, nil
}

func remoteFilename(rawURL string) string {
	base := filepath.Base(strings.SplitN(rawURL, "?", 2)[0])
	if base == "" || base == "." || base == "/" || !strings.EqualFold(filepath.Ext(base), ".zip") {
		return "archive.zip"
	}
	return base
}
