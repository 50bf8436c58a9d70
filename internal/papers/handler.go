package papers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/google/uuid"

	"github.com/pyqvault/pyqvault/pkg/handlers"
	"github.com/pyqvault/pyqvault/pkg/pagination"
	"github.com/pyqvault/pyqvault/pkg/routes"
	"github.com/pyqvault/pyqvault/pkg/storage"
)

// Handler exposes the paper catalog over HTTP.
type Handler struct {
	papers     System
	pagination pagination.Config
	logger     *slog.Logger
}

// NewHandler creates a papers HTTP handler.
func NewHandler(papers System, cfg pagination.Config, logger *slog.Logger) *Handler {
	return &Handler{
		papers:     papers,
		pagination: cfg,
		logger:     logger.With("handler", "papers"),
	}
}

// Routes returns the handler's route group.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/papers",
		Routes: []routes.Route{
			{Method: http.MethodGet, Pattern: "", Handler: h.list},
			{Method: http.MethodPost, Pattern: "/search", Handler: h.search},
			{Method: http.MethodGet, Pattern: "/sessions", Handler: h.sessions},
			{Method: http.MethodGet, Pattern: "/branches", Handler: h.branches},
			{Method: http.MethodGet, Pattern: "/subjects", Handler: h.subjects},
			{Method: http.MethodGet, Pattern: "/paper", Handler: h.byFacets},
			{Method: http.MethodGet, Pattern: "/{id}", Handler: h.find},
			{Method: http.MethodGet, Pattern: "/{id}/view", Handler: h.view},
			{Method: http.MethodGet, Pattern: "/{id}/download", Handler: h.download},
		},
	}
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	req := pagination.PageRequestFromQuery(r.URL.Query(), h.pagination)
	facets := facetsFromQuery(r.URL.Query())

	result, err := h.papers.List(r.Context(), req, facets)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

type searchRequest struct {
	pagination.PageRequest
	ExamType    string `json:"exam_type"`
	ExamYear    int    `json:"exam_year"`
	Degree      string `json:"degree"`
	Branch      string `json:"branch"`
	Semester    int    `json:"semester"`
	SubjectCode string `json:"subject_code"`
}

func (h *Handler) search(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest,
			fmt.Errorf("%w: %v", ErrInvalidRequest, err))
		return
	}
	req.Normalize(h.pagination)

	facets := Facets{
		ExamType:    req.ExamType,
		ExamYear:    req.ExamYear,
		Degree:      req.Degree,
		Branch:      req.Branch,
		Semester:    req.Semester,
		SubjectCode: req.SubjectCode,
	}

	result, err := h.papers.List(r.Context(), req.PageRequest, facets)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

func (h *Handler) sessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := h.papers.Sessions(r.Context())
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, sessions)
}

func (h *Handler) branches(w http.ResponseWriter, r *http.Request) {
	branches, err := h.papers.Branches(r.Context(), facetsFromQuery(r.URL.Query()))
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, branches)
}

func (h *Handler) subjects(w http.ResponseWriter, r *http.Request) {
	subjects, err := h.papers.Subjects(r.Context(), facetsFromQuery(r.URL.Query()))
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, subjects)
}

func (h *Handler) byFacets(w http.ResponseWriter, r *http.Request) {
	facets := facetsFromQuery(r.URL.Query())
	if facets == (Facets{}) {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrMissingFacet)
		return
	}

	papers, err := h.papers.FindByFacets(r.Context(), facets)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, papers)
}

func (h *Handler) find(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest,
			fmt.Errorf("%w: invalid paper id", ErrInvalidRequest))
		return
	}

	paper, err := h.papers.Find(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, paper)
}

func (h *Handler) view(w http.ResponseWriter, r *http.Request) {
	h.serveFile(w, r, "inline")
}

func (h *Handler) download(w http.ResponseWriter, r *http.Request) {
	h.serveFile(w, r, "attachment")
}

func (h *Handler) serveFile(w http.ResponseWriter, r *http.Request, disposition string) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest,
			fmt.Errorf("%w: invalid paper id", ErrInvalidRequest))
		return
	}

	paper, reader, err := h.papers.Open(r.Context(), id)
	if err != nil {
		status := MapHTTPStatus(err)
		if errors.Is(err, storage.ErrNotFound) {
			status = http.StatusNotFound
		}
		handlers.RespondError(w, h.logger, status, err)
		return
	}
	defer reader.Close()

	filename := fmt.Sprintf("%s_%s_%d.pdf", paper.SubjectCode, paper.ExamType, paper.ExamYear)

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("%s; filename=%q", disposition, filename))

	if _, err := io.Copy(w, reader); err != nil {
		h.logger.Error("paper stream interrupted", "id", id, "error", err)
	}
}

func facetsFromQuery(values url.Values) Facets {
	year, _ := strconv.Atoi(values.Get("exam_year"))
	semester, _ := strconv.Atoi(values.Get("semester"))

	return Facets{
		ExamType:    values.Get("exam_type"),
		ExamYear:    year,
		Degree:      values.Get("degree"),
		Branch:      values.Get("branch"),
		Semester:    semester,
		SubjectCode: values.Get("subject_code"),
	}
}
