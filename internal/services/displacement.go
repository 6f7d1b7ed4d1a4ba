package services

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/geoclear/geoclear/internal/config"
	"github.com/geoclear/geoclear/internal/lib/displace"
	"github.com/geoclear/geoclear/internal/lib/geo"
	"github.com/geoclear/geoclear/internal/lib/wkt"
)

// FeatureInput is one caller-supplied feature. Geometry arrives either as a
// coordinate array or as a Google encoded polyline (geographic batches only).
type FeatureInput struct {
	ID              string      `json:"id"`
	Priority        int         `json:"priority"`
	Width           float64     `json:"width"`
	Coords          []geo.Point `json:"coords,omitempty"`
	EncodedPolyline string      `json:"encoded_polyline,omitempty"`
}

// ProcessRequest is a displacement request for a single feature batch.
type ProcessRequest struct {
	System       geo.System
	MinClearance float64 // 0 means use the configured default
	Features     []FeatureInput
}

// DisplacementService validates caller input, runs the displacement core,
// and reports metrics. It holds no state between requests; every call gets
// its own feature copies and its own result.
type DisplacementService struct {
	logger *zap.Logger
	cfg    *config.DisplacementConfig
}

// NewDisplacementService creates a new DisplacementService.
func NewDisplacementService(logger *zap.Logger, cfg *config.DisplacementConfig) *DisplacementService {
	return &DisplacementService{
		logger: logger,
		cfg:    cfg,
	}
}

// ProcessFeatures runs the full pipeline on a JSON feature batch. The
// returned result owns the mutated features; detail lookup by id is the
// caller's business via Result.FeatureByID.
func (s *DisplacementService) ProcessFeatures(ctx context.Context, req ProcessRequest) (*displace.Result, error) {
	features, err := s.buildFeatures(req)
	if err != nil {
		return nil, err
	}

	engine := displace.NewEngine(s.engineOptions(req.System, req.MinClearance))
	result := engine.Process(features)

	s.logger.Info("displacement run complete",
		zap.String("system", req.System.String()),
		zap.Int("features", result.Metrics.TotalFeatures),
		zap.Int("overlaps_detected", result.Metrics.OverlapsDetected),
		zap.Int("overlaps_resolved", result.Metrics.OverlapsResolved),
		zap.Int("displaced", result.DisplacedCount()),
		zap.Float64("max_displacement", result.Metrics.MaxDisplacement),
		zap.Duration("elapsed", result.Metrics.ProcessingTime),
	)

	return result, nil
}

// buildFeatures validates the request and constructs core features.
// Validation failures are aggregated so the caller sees them all at once.
func (s *DisplacementService) buildFeatures(req ProcessRequest) ([]*displace.Feature, error) {
	if len(req.Features) == 0 {
		return nil, fmt.Errorf("feature list is empty")
	}
	if s.cfg.MaxFeatures > 0 && len(req.Features) > s.cfg.MaxFeatures {
		return nil, fmt.Errorf("feature count %d exceeds limit %d", len(req.Features), s.cfg.MaxFeatures)
	}
	if req.MinClearance < 0 {
		return nil, fmt.Errorf("min clearance must be positive, got %f", req.MinClearance)
	}

	var errs error
	seen := make(map[string]bool, len(req.Features))
	features := make([]*displace.Feature, 0, len(req.Features))

	for i, in := range req.Features {
		if in.ID == "" {
			errs = multierr.Append(errs, fmt.Errorf("feature %d: id is empty", i))
			continue
		}
		if seen[in.ID] {
			errs = multierr.Append(errs, fmt.Errorf("feature %q: duplicate id", in.ID))
			continue
		}
		seen[in.ID] = true

		if in.Width < 0 {
			errs = multierr.Append(errs, fmt.Errorf("feature %q: width must be >= 0", in.ID))
			continue
		}

		coords := in.Coords
		if len(coords) == 0 && in.EncodedPolyline != "" {
			if req.System != geo.Geographic {
				errs = multierr.Append(errs, fmt.Errorf("feature %q: encoded polylines require geographic coordinates", in.ID))
				continue
			}
			decoded, err := geo.DecodePolyline(in.EncodedPolyline)
			if err != nil {
				errs = multierr.Append(errs, fmt.Errorf("feature %q: %w", in.ID, err))
				continue
			}
			coords = decoded
		}

		if len(coords) < 2 {
			errs = multierr.Append(errs, fmt.Errorf("feature %q: needs at least 2 coordinates, got %d", in.ID, len(coords)))
			continue
		}

		if req.System == geo.Geographic {
			for _, p := range coords {
				if !geo.IsValid(p) {
					errs = multierr.Append(errs, fmt.Errorf("feature %q: coordinate out of range (%f, %f)", in.ID, p.Lat, p.Lng))
					break
				}
			}
		}

		features = append(features, displace.NewFeature(in.ID, displace.PriorityFromValue(in.Priority), in.Width, coords))
	}

	if errs != nil {
		return nil, fmt.Errorf("invalid features: %w", errs)
	}
	return features, nil
}

// engineOptions merges configured defaults with a per-request clearance.
func (s *DisplacementService) engineOptions(sys geo.System, minClearance float64) displace.Options {
	opts := displace.DefaultOptions(sys)

	if sys == geo.Planar && s.cfg.MinClearanceUnits > 0 {
		opts.MinClearance = s.cfg.MinClearanceUnits
	} else if sys == geo.Geographic && s.cfg.MinClearanceMeters > 0 {
		opts.MinClearance = s.cfg.MinClearanceMeters
	}
	if minClearance > 0 {
		opts.MinClearance = minClearance
	}
	if s.cfg.Iterations > 0 {
		opts.Iterations = s.cfg.Iterations
	}
	if s.cfg.SmoothingIterations >= 0 {
		opts.SmoothingIterations = s.cfg.SmoothingIterations
	}
	if s.cfg.PriorityThreshold > 0 {
		opts.PriorityThreshold = displace.Priority(s.cfg.PriorityThreshold)
	}

	return opts
}

// WKTFeature is one processed feature in a WKT batch response.
type WKTFeature struct {
	ID           string  `json:"id"`
	Type         string  `json:"type"`
	Priority     int     `json:"priority"`
	Width        float64 `json:"width"`
	Displaced    bool    `json:"displaced"`
	WKT          string  `json:"wkt"`
	OriginalWKT  string  `json:"original_wkt"`
	Displacement float64 `json:"displacement"`
}

// WKTResult is the outcome of processing a WKT document.
type WKTResult struct {
	Features []WKTFeature
	Metrics  displace.Metrics
	Skipped  int
}

// ProcessWKT ingests a planar WKT street-network document, estimates a
// priority for each line (keyword tags on the line win over the shape
// heuristic), runs the displacement core in planar mode, and renders the
// results back to WKT.
func (s *DisplacementService) ProcessWKT(ctx context.Context, content string) (*WKTResult, error) {
	lines, skipped, err := wkt.ParseDocument(content)
	if err != nil {
		return nil, err
	}
	if s.cfg.MaxFeatures > 0 && len(lines) > s.cfg.MaxFeatures {
		return nil, fmt.Errorf("feature count %d exceeds limit %d", len(lines), s.cfg.MaxFeatures)
	}

	features := make([]*displace.Feature, 0, len(lines))
	for i, line := range lines {
		priority, tagged := priorityFromKeywords(line.Raw)
		if !tagged {
			priority = displace.EstimatePriority(geo.Planar, line.Points)
		}
		id := fmt.Sprintf("street_%03d", i+1)
		features = append(features, displace.NewFeature(id, priority, widthForPriority(priority), line.Points))
	}

	engine := displace.NewEngine(s.engineOptions(geo.Planar, 0))
	result := engine.Process(features)

	out := &WKTResult{
		Metrics: result.Metrics,
		Skipped: skipped,
	}
	for _, f := range result.Features {
		out.Features = append(out.Features, WKTFeature{
			ID:           f.ID,
			Type:         f.Priority.String(),
			Priority:     int(f.Priority),
			Width:        f.Width,
			Displaced:    f.Displaced,
			WKT:          wkt.FormatLineString(f.Coords),
			OriginalWKT:  wkt.FormatLineString(f.OriginalCoords),
			Displacement: f.DisplacementDistance(geo.Planar),
		})
	}

	s.logger.Info("wkt batch processed",
		zap.Int("features", len(out.Features)),
		zap.Int("skipped_lines", skipped),
		zap.Int("overlaps_detected", result.Metrics.OverlapsDetected),
		zap.Int("displaced", result.DisplacedCount()),
		zap.Duration("elapsed", result.Metrics.ProcessingTime),
	)

	return out, nil
}

// priorityFromKeywords scans the raw source line for road-class keywords.
// Pure WKT geometry never matches; tags only appear when the producer
// annotates lines with type names.
func priorityFromKeywords(raw string) (displace.Priority, bool) {
	lower := strings.ToLower(raw)
	switch {
	case strings.Contains(lower, "motorway"), strings.Contains(lower, "highway"):
		return displace.PriorityMotorway, true
	case strings.Contains(lower, "primary"), strings.Contains(lower, "secondary"):
		return displace.PriorityPrimary, true
	case strings.Contains(lower, "tertiary"), strings.Contains(lower, "residential"):
		return displace.PriorityStreet, true
	default:
		return 0, false
	}
}

// widthForPriority returns the nominal display width per tier, in planar
// units.
func widthForPriority(p displace.Priority) float64 {
	switch p {
	case displace.PriorityMotorway:
		return 25
	case displace.PriorityPrimary:
		return 18
	case displace.PriorityStreet:
		return 12
	case displace.PriorityBuilding:
		return 8
	default:
		return 5
	}
}
