// Package metrics exposes resolver and evaluator counters as prometheus
// collectors on a private registry.
package metrics

import (
	"fmt"
	"io"
	"time"

	"mapped-wrap/internal/deform"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
)

// Recorder owns the collectors. A nil *Recorder records nothing.
type Recorder struct {
	reg *prometheus.Registry

	evaluations     *prometheus.CounterVec
	evalDuration    *prometheus.HistogramVec
	verticesWritten *prometheus.CounterVec
	entriesSkipped  *prometheus.CounterVec
	targetsSkipped  *prometheus.CounterVec
	truncated       *prometheus.CounterVec

	targetsResolved *prometheus.CounterVec
	unmatched       *prometheus.CounterVec
	overlaps        *prometheus.CounterVec
}

// New registers all collectors on a fresh registry.
func New() *Recorder {
	byDeformer := []string{"deformer"}
	r := &Recorder{
		reg: prometheus.NewRegistry(),
		evaluations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mapwrap_evaluations_total",
			Help: "Deformer evaluations, including identity fast paths.",
		}, byDeformer),
		evalDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "mapwrap_evaluation_duration_seconds",
			Help:    "Wall time of one deformer evaluation.",
			Buckets: prometheus.ExponentialBuckets(1e-5, 4, 10),
		}, byDeformer),
		verticesWritten: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mapwrap_vertices_written_total",
			Help: "Base vertices written by targets.",
		}, byDeformer),
		entriesSkipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mapwrap_mapping_entries_skipped_total",
			Help: "Mapping entries skipped as unmatched or out of base range.",
		}, byDeformer),
		targetsSkipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mapwrap_targets_skipped_total",
			Help: "Targets skipped for low weight or an empty mapping.",
		}, byDeformer),
		truncated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mapwrap_targets_truncated_total",
			Help: "Targets whose mapping ran past the target's vertex count.",
		}, byDeformer),
		targetsResolved: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mapwrap_targets_resolved_total",
			Help: "Targets attached through the correspondence resolver.",
		}, byDeformer),
		unmatched: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mapwrap_unmatched_vertices_total",
			Help: "Target vertices left without a base vertex at attach time.",
		}, byDeformer),
		overlaps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mapwrap_overlapping_vertices_total",
			Help: "Base vertices shared between a new target and existing ones.",
		}, byDeformer),
	}
	r.reg.MustRegister(
		r.evaluations, r.evalDuration, r.verticesWritten, r.entriesSkipped,
		r.targetsSkipped, r.truncated, r.targetsResolved, r.unmatched, r.overlaps,
	)
	return r
}

// Registry returns the registry the collectors live on.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.reg
}

// ObserveEvaluate records one evaluation.
func (r *Recorder) ObserveEvaluate(deformer string, st deform.Stats, d time.Duration) {
	if r == nil {
		return
	}
	r.evaluations.WithLabelValues(deformer).Inc()
	r.evalDuration.WithLabelValues(deformer).Observe(d.Seconds())
	r.verticesWritten.WithLabelValues(deformer).Add(float64(st.Written))
	r.entriesSkipped.WithLabelValues(deformer).Add(float64(st.Skipped))
	r.targetsSkipped.WithLabelValues(deformer).Add(float64(st.TargetsSkipped))
	r.truncated.WithLabelValues(deformer).Add(float64(st.Truncated))
}

// ObserveResolve records one attached target.
func (r *Recorder) ObserveResolve(deformer string, unmatched, overlapping int) {
	if r == nil {
		return
	}
	r.targetsResolved.WithLabelValues(deformer).Inc()
	r.unmatched.WithLabelValues(deformer).Add(float64(unmatched))
	r.overlaps.WithLabelValues(deformer).Add(float64(overlapping))
}

// WriteText dumps every collector in the prometheus text format.
func (r *Recorder) WriteText(w io.Writer) error {
	mfs, err := r.reg.Gather()
	if err != nil {
		return fmt.Errorf("metrics: gather: %w", err)
	}
	for _, mf := range mfs {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return fmt.Errorf("metrics: write %s: %w", mf.GetName(), err)
		}
	}
	return nil
}
