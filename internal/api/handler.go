// Package api exposes the displacement service over HTTP. It is thin
// plumbing: DTO translation, validation error mapping, and content-type
// negotiation around the core pipeline.
package api

import (
	"encoding/json"
	"io"
	"math"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/geoclear/geoclear/internal/lib/displace"
	"github.com/geoclear/geoclear/internal/lib/geo"
	"github.com/geoclear/geoclear/internal/services"
)

// maxBodyBytes caps request bodies before JSON or WKT decoding begins.
const maxBodyBytes = 16 << 20

// Handler wires the HTTP surface to the displacement service.
type Handler struct {
	service *services.DisplacementService
	logger  *zap.Logger
}

// NewHandler creates a new Handler.
func NewHandler(service *services.DisplacementService, logger *zap.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Routes builds the router.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(h.logRequests)

	r.Get("/healthz", h.health)
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/displace", h.displace)
		r.Post("/displace/kml", h.displaceKML)
		r.Post("/wkt", h.processWKT)
	})

	return r
}

// DisplaceRequest is the JSON request body for POST /api/v1/displace.
type DisplaceRequest struct {
	CoordinateSystem string                  `json:"coordinate_system,omitempty"`
	MinClearance     float64                 `json:"min_clearance,omitempty"`
	Features         []services.FeatureInput `json:"features"`
}

// FeatureOutput is one processed feature on the wire.
type FeatureOutput struct {
	ID             string      `json:"id"`
	Priority       int         `json:"priority"`
	Type           string      `json:"type"`
	Width          float64     `json:"width"`
	Displaced      bool        `json:"displaced"`
	Coords         []geo.Point `json:"coords"`
	OriginalCoords []geo.Point `json:"original_coords"`
}

// MetricsOutput mirrors the core metrics on the wire.
type MetricsOutput struct {
	OverlapsDetected      int     `json:"overlaps_detected"`
	OverlapsResolved      int     `json:"overlaps_resolved"`
	MaxDisplacementMeters float64 `json:"max_displacement_meters"`
	ProcessingTimeSeconds float64 `json:"processing_time_seconds"`
	TotalFeatures         int     `json:"total_features"`
}

// DisplaceResponse is the JSON response for POST /api/v1/displace.
type DisplaceResponse struct {
	Features []FeatureOutput `json:"features"`
	Metrics  MetricsOutput   `json:"metrics"`
}

// WKTResponse is the JSON response for POST /api/v1/wkt.
type WKTResponse struct {
	Features     []services.WKTFeature `json:"features"`
	Metrics      MetricsOutput         `json:"metrics"`
	SkippedLines int                   `json:"skipped_lines"`
}

func (h *Handler) displace(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeDisplaceRequest(w, r)
	if !ok {
		return
	}

	result, err := h.service.ProcessFeatures(r.Context(), *req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	writeJSON(w, http.StatusOK, buildDisplaceResponse(result))
}

func (h *Handler) displaceKML(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeDisplaceRequest(w, r)
	if !ok {
		return
	}

	result, err := h.service.ProcessFeatures(r.Context(), *req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.google-earth.kml+xml")
	w.WriteHeader(http.StatusOK)
	if err := services.ExportKML(result, w); err != nil {
		h.logger.Error("failed to write KML export", zap.Error(err))
	}
}

func (h *Handler) processWKT(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	result, err := h.service.ProcessWKT(r.Context(), string(body))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	writeJSON(w, http.StatusOK, WKTResponse{
		Features:     result.Features,
		Metrics:      buildMetricsOutput(result.Metrics),
		SkippedLines: result.Skipped,
	})
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) decodeDisplaceRequest(w http.ResponseWriter, r *http.Request) (*services.ProcessRequest, bool) {
	var body DisplaceRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return nil, false
	}

	sys, err := geo.ParseSystem(body.CoordinateSystem)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return nil, false
	}
	if body.MinClearance < 0 {
		writeError(w, http.StatusBadRequest, errNegativeClearance)
		return nil, false
	}

	return &services.ProcessRequest{
		System:       sys,
		MinClearance: body.MinClearance,
		Features:     body.Features,
	}, true
}

func buildDisplaceResponse(result *displace.Result) DisplaceResponse {
	resp := DisplaceResponse{
		Features: make([]FeatureOutput, 0, len(result.Features)),
		Metrics:  buildMetricsOutput(result.Metrics),
	}
	for _, f := range result.Features {
		resp.Features = append(resp.Features, FeatureOutput{
			ID:             f.ID,
			Priority:       int(f.Priority),
			Type:           f.Priority.String(),
			Width:          f.Width,
			Displaced:      f.Displaced,
			Coords:         f.Coords,
			OriginalCoords: f.OriginalCoords,
		})
	}
	return resp
}

func buildMetricsOutput(m displace.Metrics) MetricsOutput {
	return MetricsOutput{
		OverlapsDetected:      m.OverlapsDetected,
		OverlapsResolved:      m.OverlapsResolved,
		MaxDisplacementMeters: round2(m.MaxDisplacement),
		ProcessingTimeSeconds: round3(m.ProcessingTime.Seconds()),
		TotalFeatures:         m.TotalFeatures,
	}
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }
func round3(v float64) float64 { return math.Round(v*1000) / 1000 }
