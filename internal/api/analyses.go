package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/sentio-labs/chatlens/internal/bus"
	"github.com/sentio-labs/chatlens/internal/parser"
	"github.com/sentio-labs/chatlens/internal/processor"
	"github.com/sentio-labs/chatlens/internal/store"
)

var validate = validator.New()

// AnalyzeRequest is the POST /api/v1/analyses payload. Async switches the
// response to an operation id the client polls instead of the full report.
type AnalyzeRequest struct {
	Title      string                `json:"title"`
	Files      []AnalyzeFile         `json:"files" validate:"required,min=1,dive"`
	Async      bool                  `json:"async"`
	Enrichment *processor.Enrichment `json:"enrichment,omitempty"`
}

// AnalyzeFile is one export file in an analysis request.
type AnalyzeFile struct {
	Name    string `json:"name" validate:"required"`
	Content string `json:"content" validate:"required"`
}

// createAnalysis handles POST /api/v1/analyses.
func (s *Server) createAnalysis(w http.ResponseWriter, r *http.Request) {
	var req AnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf(`{"error":%q}`, "invalid JSON: "+err.Error()), http.StatusBadRequest)
		return
	}
	if err := validate.Struct(req); err != nil {
		http.Error(w, fmt.Sprintf(`{"error":%q}`, "invalid request: "+err.Error()), http.StatusBadRequest)
		return
	}

	preq := processor.Request{
		Title:      req.Title,
		Files:      make([]bus.ExportFile, len(req.Files)),
		Enrichment: req.Enrichment,
	}
	for i, f := range req.Files {
		preq.Files[i] = bus.ExportFile{Name: f.Name, Content: f.Content}
	}

	if req.Async {
		op := s.processor.AnalyzeAsync(preq)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusAccepted)
		json.NewEncoder(w).Encode(map[string]string{"operation_id": op.ID.String()})
		return
	}

	rep, err := s.processor.Analyze(r.Context(), preq)
	if err != nil {
		writeAnalysisError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(rep)
}

// getAnalysis handles GET /api/v1/analyses/{id}. The stored payload is the
// report document itself and is served verbatim.
func (s *Server) getAnalysis(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, `{"error":"invalid report id"}`, http.StatusBadRequest)
		return
	}
	if s.store == nil {
		http.Error(w, `{"error":"report storage not configured"}`, http.StatusServiceUnavailable)
		return
	}

	rec, err := s.store.GetReport(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		http.Error(w, `{"error":"report not found"}`, http.StatusNotFound)
		return
	}
	if err != nil {
		slog.Error("report lookup failed", "report_id", id, "error", err)
		http.Error(w, `{"error":"report lookup failed"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Write(rec.Payload)
}

// listAnalyses handles GET /api/v1/analyses.
func (s *Server) listAnalyses(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		http.Error(w, `{"error":"report storage not configured"}`, http.StatusServiceUnavailable)
		return
	}

	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			http.Error(w, `{"error":"invalid limit"}`, http.StatusBadRequest)
			return
		}
		limit = n
	}

	reports, err := s.store.ListReports(r.Context(), limit)
	if err != nil {
		slog.Error("report listing failed", "error", err)
		http.Error(w, `{"error":"report listing failed"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"reports": reports,
		"count":   len(reports),
	})
}

// listOperations handles GET /api/v1/operations.
func (s *Server) listOperations(w http.ResponseWriter, r *http.Request) {
	ops := s.registry.Snapshot()
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"operations": ops,
		"count":      len(ops),
	})
}

// getOperation handles GET /api/v1/operations/{id}.
func (s *Server) getOperation(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, `{"error":"invalid operation id"}`, http.StatusBadRequest)
		return
	}

	op, ok := s.registry.Get(id)
	if !ok {
		http.Error(w, `{"error":"operation not found"}`, http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(op)
}

// writeAnalysisError distinguishes caller mistakes from pipeline faults.
// Malformed exports come back as 400 with the parse error; anything else is
// an opaque 500.
func writeAnalysisError(w http.ResponseWriter, err error) {
	var ife *parser.InvalidFormatError
	if errors.Is(err, parser.ErrNoFiles) || errors.As(err, &ife) {
		http.Error(w, fmt.Sprintf(`{"error":%q}`, err.Error()), http.StatusBadRequest)
		return
	}
	slog.Error("analysis failed", "error", err)
	http.Error(w, `{"error":"analysis failed"}`, http.StatusInternalServerError)
}
