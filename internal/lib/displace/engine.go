package displace

import (
	"math"
	"time"

	"github.com/geoclear/geoclear/internal/lib/geo"
)

const (
	// DefaultIterations is the fixed number of repulsion passes. There is
	// no convergence check; residual violations after the final pass are
	// accepted and reflected in the metrics.
	DefaultIterations = 5

	// DefaultOvershoot scales each push past the minimum separation so
	// later iterations interacting with other obstacles do not pull the
	// vertex straight back into violation.
	DefaultOvershoot = 1.2

	// DefaultMinClearanceMeters is the margin between feature centerlines
	// for geographic batches, beyond the two half-widths.
	DefaultMinClearanceMeters = 10.0

	// DefaultMinClearanceUnits is the equivalent margin for planar batches.
	DefaultMinClearanceUnits = 2.0

	// DefaultSmoothingIterations is the number of corner-cutting passes
	// applied to displaced features after the repulsion loop.
	DefaultSmoothingIterations = 3
)

// Options configures a displacement run.
type Options struct {
	System              geo.System
	MinClearance        float64
	Iterations          int
	SmoothingIterations int
	PriorityThreshold   Priority
	Overshoot           float64
}

// DefaultOptions returns the standard options for a coordinate system.
func DefaultOptions(sys geo.System) Options {
	clearance := DefaultMinClearanceMeters
	if sys == geo.Planar {
		clearance = DefaultMinClearanceUnits
	}
	return Options{
		System:              sys,
		MinClearance:        clearance,
		Iterations:          DefaultIterations,
		SmoothingIterations: DefaultSmoothingIterations,
		PriorityThreshold:   DefaultPriorityThreshold,
		Overshoot:           DefaultOvershoot,
	}
}

// Metrics aggregates the counters collected across a displacement run.
type Metrics struct {
	// OverlapsDetected counts vertex/fixed-feature proximity violations
	// found during the first iteration only.
	OverlapsDetected int

	// OverlapsResolved counts (feature, iteration) pairs in which at least
	// one vertex of the feature was displaced.
	OverlapsResolved int

	// MaxDisplacement is the largest single-vertex shift observed, in the
	// system's distance unit (meters for geographic batches).
	MaxDisplacement float64

	// ProcessingTime is the wall-clock duration of the run.
	ProcessingTime time.Duration

	// TotalFeatures is the size of the processed feature set.
	TotalFeatures int
}

// Engine runs the iterative repulsion algorithm. It holds no per-request
// state, so a single engine may serve concurrent runs as long as each run
// operates on its own feature set.
type Engine struct {
	opts Options
}

// NewEngine creates an engine, filling unset options with defaults.
func NewEngine(opts Options) *Engine {
	defaults := DefaultOptions(opts.System)
	if opts.MinClearance <= 0 {
		opts.MinClearance = defaults.MinClearance
	}
	if opts.Iterations <= 0 {
		opts.Iterations = defaults.Iterations
	}
	if opts.Overshoot <= 0 {
		opts.Overshoot = defaults.Overshoot
	}
	if opts.PriorityThreshold <= 0 {
		opts.PriorityThreshold = defaults.PriorityThreshold
	}
	return &Engine{opts: opts}
}

// Options returns the engine's effective options.
func (e *Engine) Options() Options {
	return e.opts
}

// Process classifies features, runs the repulsion iterations, smooths
// displaced geometries, and returns the combined feature set with metrics.
// Features are mutated in place; fixed features are never touched. Features
// with fewer than 2 coordinates are carried through unmodified.
func (e *Engine) Process(features []*Feature) *Result {
	start := time.Now()
	sys := e.opts.System

	fixed, moveable := Classify(features, e.opts.PriorityThreshold)

	var metrics Metrics
	metrics.TotalFeatures = len(features)

	for iter := 0; iter < e.opts.Iterations; iter++ {
		for _, m := range moveable {
			if len(m.Coords) < 2 {
				continue
			}

			moved := false
			next := make([]geo.Point, 0, len(m.Coords))

			for _, vertex := range m.Coords {
				var totalLat, totalLng float64
				violations := 0

				for _, obstacle := range fixed {
					nearest, dist, ok := geo.NearestPointOnPolyline(sys, vertex, obstacle.Coords)
					if !ok {
						continue
					}

					required := obstacle.Width/2 + m.Width/2 + e.opts.MinClearance
					if dist >= required {
						continue
					}

					if iter == 0 {
						metrics.OverlapsDetected++
					}

					push := sys.FromMeters((required - dist) * e.opts.Overshoot)
					angle := math.Atan2(vertex.Lat-nearest.Lat, vertex.Lng-nearest.Lng)

					totalLat += math.Sin(angle) * push
					totalLng += math.Cos(angle) * push
					violations++
				}

				if violations == 0 {
					next = append(next, vertex)
					continue
				}

				// Simultaneous conflicts resolve to one combined move: the
				// average of the accumulated pushes.
				moved = true
				displaced := geo.Point{
					Lat: vertex.Lat + totalLat/float64(violations),
					Lng: vertex.Lng + totalLng/float64(violations),
				}

				if shift := sys.Distance(vertex, displaced); shift > metrics.MaxDisplacement {
					metrics.MaxDisplacement = shift
				}

				next = append(next, displaced)
			}

			if moved {
				m.Coords = next
				m.Displaced = true
				metrics.OverlapsResolved++
			}
		}
	}

	if e.opts.SmoothingIterations > 0 {
		for _, m := range moveable {
			if m.Displaced {
				m.Coords = Smooth(m.Coords, e.opts.SmoothingIterations)
			}
		}
	}

	combined := make([]*Feature, 0, len(features))
	combined = append(combined, fixed...)
	combined = append(combined, moveable...)

	metrics.ProcessingTime = time.Since(start)

	return &Result{Features: combined, Metrics: metrics}
}

// ResidualViolations re-runs the proximity check against the final
// coordinates and counts the vertex/fixed-feature pairs still inside the
// required clearance. The engine never does this on its own; remaining
// violations after the fixed iteration budget are expected, not an error.
func (e *Engine) ResidualViolations(features []*Feature) int {
	sys := e.opts.System
	fixed, moveable := Classify(features, e.opts.PriorityThreshold)

	violations := 0
	for _, m := range moveable {
		if len(m.Coords) < 2 {
			continue
		}
		for _, vertex := range m.Coords {
			for _, obstacle := range fixed {
				_, dist, ok := geo.NearestPointOnPolyline(sys, vertex, obstacle.Coords)
				if !ok {
					continue
				}
				if dist < obstacle.Width/2+m.Width/2+e.opts.MinClearance {
					violations++
				}
			}
		}
	}
	return violations
}
