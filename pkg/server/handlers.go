package server

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/heatmap/pkg/buildinfo"
	herrors "github.com/matzehuels/heatmap/pkg/errors"
	"github.com/matzehuels/heatmap/pkg/heatmap"
	"github.com/matzehuels/heatmap/pkg/pipeline"
	"github.com/matzehuels/heatmap/pkg/portfolio"
	"github.com/matzehuels/heatmap/pkg/storage"
	"github.com/matzehuels/heatmap/pkg/treemap"
)

// =============================================================================
// Health
// =============================================================================

type healthResponse struct {
	Status string         `json:"status"`
	Build  buildinfo.Info `json:"build"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Build: buildinfo.Get()})
}

// =============================================================================
// Squarify
// =============================================================================

// SquarifyRequest lays out arbitrary records weighted by WeightKey.
type SquarifyRequest struct {
	Records   []treemap.Record `json:"records"`
	WeightKey string           `json:"weight_key"`
	Width     float64          `json:"width"`
	Height    float64          `json:"height"`
}

// SquarifyResponse holds the input records with x, y, w and h added.
type SquarifyResponse struct {
	Records []treemap.Record `json:"records"`
}

func (s *Server) handleSquarify(w http.ResponseWriter, r *http.Request) {
	var req SquarifyRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if req.WeightKey == "" {
		req.WeightKey = "value"
	}
	if req.Width == 0 && req.Height == 0 {
		req.Width, req.Height = pipeline.DefaultWidth, pipeline.DefaultHeight
	}
	if err := validateSquarify(req); err != nil {
		writeError(w, r, err)
		return
	}

	out := treemap.SquarifyRecords(req.Records, req.WeightKey, req.Width, req.Height)
	writeJSON(w, http.StatusOK, SquarifyResponse{Records: out})
}

func validateSquarify(req SquarifyRequest) error {
	if err := herrors.ValidateWeightKey(req.WeightKey); err != nil {
		return err
	}
	if err := herrors.ValidateContainer(req.Width, req.Height); err != nil {
		return err
	}
	if req.Width > pipeline.MaxDimension || req.Height > pipeline.MaxDimension {
		return herrors.New(herrors.ErrCodeInvalidContainer,
			"container %gx%g exceeds %g", req.Width, req.Height, pipeline.MaxDimension)
	}
	weights := make([]float64, len(req.Records))
	for i, rec := range req.Records {
		if rec == nil {
			return herrors.New(herrors.ErrCodeInvalidInput, "record %d is not an object", i)
		}
		weights[i], _ = treemap.Number(rec[req.WeightKey])
	}
	return herrors.ValidateWeights(weights)
}

// =============================================================================
// Layouts
// =============================================================================

// CreateLayoutRequest lays out a portfolio with the given options.
type CreateLayoutRequest struct {
	Portfolio portfolio.Portfolio `json:"portfolio"`
	Options   pipeline.Options    `json:"options"`
}

// LayoutResponse is a stored layout.
type LayoutResponse struct {
	ID     string          `json:"id"`
	Layout *heatmap.Layout `json:"layout"`
}

type listResponse struct {
	Layouts []storage.Summary `json:"layouts"`
}

func (s *Server) handleCreateLayout(w http.ResponseWriter, r *http.Request) {
	var req CreateLayoutRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	ctx := r.Context()

	opts := req.Options
	opts.Input = ""
	opts.Formats = nil
	l, err := s.runner.ComputeLayout(ctx, req.Portfolio, opts)
	if err != nil {
		writeError(w, r, err)
		return
	}

	id, err := s.store.Save(ctx, l)
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Location", "/v1/layouts/"+id)
	writeJSON(w, http.StatusCreated, LayoutResponse{ID: id, Layout: l})
}

func (s *Server) handleListLayouts(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeError(w, r, herrors.New(herrors.ErrCodeInvalidInput, "limit must be a positive integer, got %q", v))
			return
		}
		limit = n
	}

	summaries, err := s.store.List(r.Context(), limit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse{Layouts: summaries})
}

func (s *Server) handleGetLayout(w http.ResponseWriter, r *http.Request) {
	snap, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleRenderLayout(w http.ResponseWriter, r *http.Request) {
	format := chi.URLParam(r, "format")
	if err := pipeline.ValidateFormat(format); err != nil {
		writeError(w, r, err)
		return
	}
	scale, err := parseScale(r.URL.Query().Get("scale"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	ctx := r.Context()
	id := chi.URLParam(r, "id")
	snap, err := s.store.Get(ctx, id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	artifacts, err := s.runner.Render(ctx, snap.Layout, pipeline.Options{
		Formats: []string{format},
		Scale:   scale,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", pipeline.ContentTypes[format])
	if format == pipeline.FormatPDF || format == pipeline.FormatXLSX {
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", id+"."+format))
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(artifacts[format])
}

func parseScale(v string) (float64, error) {
	if v == "" {
		return pipeline.DefaultScale, nil
	}
	scale, err := strconv.ParseFloat(v, 64)
	if err != nil || !(scale > 0) || scale > 10 {
		return 0, herrors.New(herrors.ErrCodeInvalidInput, "scale must be in (0, 10], got %q", v)
	}
	return scale, nil
}

func (s *Server) handleDeleteLayout(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
