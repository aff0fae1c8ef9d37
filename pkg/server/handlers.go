package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/algotrace/pkg/buildinfo"
	"github.com/matzehuels/algotrace/pkg/errors"
	"github.com/matzehuels/algotrace/pkg/pipeline"
	"github.com/matzehuels/algotrace/pkg/render"
	"github.com/matzehuels/algotrace/pkg/trace"
)

// CreateResponse is returned by POST /api/v1/traces.
type CreateResponse struct {
	ID        string `json:"id"`
	Engine    string `json:"engine"`
	Operation string `json:"operation"`
	Steps     int    `json:"steps"`
	CacheHit  bool   `json:"cache_hit"`
	Result    any    `json:"result,omitempty"`
}

// HealthResponse is returned by GET /healthz.
type HealthResponse struct {
	Status string         `json:"status"`
	Build  buildinfo.Info `json:"build"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok", Build: buildinfo.Get()})
}

func (s *Server) handleEngines(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, pipeline.Engines)
}

func (s *Server) handleCreateTrace(w http.ResponseWriter, r *http.Request) {
	var opts pipeline.Options
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&opts); err != nil {
		writeError(w, s.logger, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode request body"))
		return
	}
	opts.Logger = s.logger

	res, err := s.runner.Execute(r.Context(), opts)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}

	// The cached document may be shared; archive a copy under a fresh id.
	doc := *res.Document
	doc.ID = ""
	id, err := s.store.Save(r.Context(), &doc)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}

	w.Header().Set("Location", "/api/v1/traces/"+id)
	writeJSON(w, http.StatusCreated, CreateResponse{
		ID:        id,
		Engine:    doc.Engine,
		Operation: doc.Operation,
		Steps:     doc.Steps.Len(),
		CacheHit:  res.CacheHit,
		Result:    doc.Result,
	})
}

func (s *Server) handleListTraces(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, s.logger, errors.New(errors.ErrCodeInvalidInput, "limit must be a non-negative integer, got %q", v))
			return
		}
		limit = n
	}
	summaries, err := s.store.List(r.Context(), limit)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, summaries)
}

func (s *Server) handleGetTrace(w http.ResponseWriter, r *http.Request) {
	doc, ok := s.loadTrace(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := trace.WriteJSON(doc, w); err != nil {
		s.logger.Error("write trace", "id", doc.ID, "err", err)
	}
}

func (s *Server) handleDeleteTrace(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := errors.ValidateTraceID(id); err != nil {
		writeError(w, s.logger, err)
		return
	}
	if err := s.store.Delete(r.Context(), id); err != nil {
		writeError(w, s.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleGetStep(w http.ResponseWriter, r *http.Request) {
	doc, ok := s.loadTrace(w, r)
	if !ok {
		return
	}
	index, ok := s.stepIndex(w, r, doc)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, doc.Steps.At(index))
}

func (s *Server) handleRenderStep(w http.ResponseWriter, r *http.Request) {
	format := chi.URLParam(r, "format")
	if err := render.ValidateFormat(format); err != nil {
		writeError(w, s.logger, err)
		return
	}
	doc, ok := s.loadTrace(w, r)
	if !ok {
		return
	}
	index, ok := s.stepIndex(w, r, doc)
	if !ok {
		return
	}

	data, err := s.runner.RenderStep(r.Context(), doc, doc.ID, index, format)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	w.Header().Set("Content-Type", render.ContentType(format))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		s.logger.Error("write render", "id", doc.ID, "step", index, "format", format, "err", err)
	}
}

func (s *Server) loadTrace(w http.ResponseWriter, r *http.Request) (*trace.Document, bool) {
	id := chi.URLParam(r, "id")
	if err := errors.ValidateTraceID(id); err != nil {
		writeError(w, s.logger, err)
		return nil, false
	}
	doc, err := s.store.Get(r.Context(), id)
	if err != nil {
		writeError(w, s.logger, err)
		return nil, false
	}
	return doc, true
}

func (s *Server) stepIndex(w http.ResponseWriter, r *http.Request, doc *trace.Document) (int, bool) {
	raw := chi.URLParam(r, "index")
	index, err := strconv.Atoi(raw)
	if err != nil {
		writeError(w, s.logger, errors.New(errors.ErrCodeInvalidInput, "step index must be an integer, got %q", raw))
		return 0, false
	}
	if index < 0 || index >= doc.Steps.Len() {
		writeError(w, s.logger, &errors.StepRangeError{Index: index, Len: doc.Steps.Len()})
		return 0, false
	}
	return index, true
}
