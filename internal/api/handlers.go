package api

import (
	"encoding/json"
	stderrors "errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/chromatree/chromatree/pkg/cache"
	"github.com/chromatree/chromatree/pkg/errors"
	"github.com/chromatree/chromatree/pkg/graph"
	"github.com/chromatree/chromatree/pkg/pipeline"
	"github.com/chromatree/chromatree/pkg/store"
)

const defaultListLimit = 50

// runRequest is the body of POST /api/v1/runs.
type runRequest struct {
	Problem       graph.Problem `json:"problem"`
	MaxIterations int           `json:"max_iterations,omitempty"`
	NodeCeiling   int           `json:"node_ceiling,omitempty"`
}

// renderRequest is the body of POST /api/v1/render.
type renderRequest struct {
	Problem     graph.Problem `json:"problem"`
	Format      string        `json:"format,omitempty"`
	MaxDepth    int           `json:"max_depth,omitempty"`
	ColorLeaves bool          `json:"color_leaves"`
	SkipSolver  bool          `json:"skip_solver,omitempty"`
	NodeCeiling int           `json:"node_ceiling,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleCreateRun builds the tree, enumerates against the solver, and
// archives the completed run.
func (s *Server) handleCreateRun(w http.ResponseWriter, r *http.Request) {
	var req runRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if _, err := req.Problem.Graph(); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if s.runner.Oracle == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "no solver configured"})
		return
	}

	opts := pipeline.Options{
		Problem:       req.Problem,
		MaxIterations: req.MaxIterations,
		NodeCeiling:   req.NodeCeiling,
	}

	ctx := r.Context()
	start := time.Now()
	t, err := s.runner.Build(ctx, opts)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	state, err := s.runner.Enumerate(ctx, t, opts)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}

	data, err := graph.MarshalProblem(req.Problem)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	run := store.NewRun(req.Problem, cache.Hash(data))
	run.SetColorings(state.Exclusions.Assignments())
	run.Iterations = state.Iterations
	run.Discarded = state.Discarded
	run.Reason = state.Reason.String()
	run.Duration = time.Since(start)
	run.TotalNodes = t.TotalNodes()
	run.ValidLeaves = t.ValidLeafCount()
	run.InvalidLeaves = t.InvalidLeafCount()

	if err := s.store.Save(ctx, run); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusCreated, run)
}

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	limit := defaultListLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "limit must be a positive integer"})
			return
		}
		limit = n
	}

	runs, err := s.store.List(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if runs == nil {
		runs = []*store.Run{}
	}
	writeJSON(w, http.StatusOK, runs)
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	run, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if stderrors.Is(err, store.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorResponse{Error: "run not found"})
			return
		}
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, run)
}

func (s *Server) handleDeleteRun(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		if stderrors.Is(err, store.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorResponse{Error: "run not found"})
			return
		}
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleRender runs the pipeline for a single format and returns the
// artifact bytes directly.
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	var req renderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if _, err := req.Problem.Graph(); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if req.Format == "" {
		req.Format = pipeline.FormatSVG
	}
	if err := pipeline.ValidateFormat(req.Format); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	opts := pipeline.Options{
		Problem:         req.Problem,
		Formats:         []string{req.Format},
		MaxDepth:        req.MaxDepth,
		ColorLeaves:     req.ColorLeaves,
		SkipEnumeration: req.SkipSolver || s.runner.Oracle == nil,
		NodeCeiling:     req.NodeCeiling,
	}

	result, err := s.runner.Execute(r.Context(), opts)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}

	data, ok := result.Artifacts[req.Format]
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "unknown format: " + req.Format})
		return
	}
	w.Header().Set("Content-Type", contentTypeFor(req.Format))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

func contentTypeFor(format string) string {
	switch format {
	case pipeline.FormatSVG:
		return "image/svg+xml"
	case pipeline.FormatPNG:
		return "image/png"
	case pipeline.FormatJSON:
		return "application/json"
	default:
		return "text/plain; charset=utf-8"
	}
}

// statusFor maps pipeline error codes to HTTP statuses.
func statusFor(err error) int {
	switch errors.GetCode(err) {
	case errors.ErrCodeInvalidGraph, errors.ErrCodeInvalidConfiguration, errors.ErrCodeTreeTooLarge:
		return http.StatusBadRequest
	case errors.ErrCodeSolverBudget, errors.ErrCodeSolverProcess, errors.ErrCodeSolverUnavailable:
		return http.StatusBadGateway
	case errors.ErrCodeReconciliation:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	resp := errorResponse{Error: err.Error()}
	if code := errors.GetCode(err); code != "" {
		resp.Code = string(code)
	}
	writeJSON(w, status, resp)
}
