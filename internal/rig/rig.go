// Package rig attaches targets to mapped-wrap deformers and evaluates them
// against live geometry. It is the layer a host calls; the resolver and
// evaluator underneath it are pure functions.
//
// A Rig is not safe for concurrent mutation. Evaluate only reads, so several
// deformers may be evaluated in parallel once setup is done.
package rig

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"time"

	"mapped-wrap/internal/deform"
	"mapped-wrap/internal/logging"
	"mapped-wrap/internal/mesh"
	"mapped-wrap/internal/metrics"
	"mapped-wrap/internal/resolve"
)

var (
	ErrNoShape          = errors.New("no shape found")
	ErrNoDeformerFound  = errors.New("no deformer found")
	ErrNoInputGeometry  = errors.New("no input geometry for deformer")
	ErrAlreadyATarget   = errors.New("already a target")
	ErrDeformerExists   = errors.New("deformer already exists")
	ErrNoTarget         = errors.New("not a target")
	ErrInvalidTolerance = errors.New("tolerance must be a non-negative number")
)

// Geometry supplies shapes by name: object-space points plus the
// object-to-world transform.
type Geometry interface {
	Shape(name string) (*mesh.Shape, bool)
}

// Rig holds the deformers of one scene.
type Rig struct {
	geo       Geometry
	deformers map[string]*deform.State
	eval      deform.Evaluator
	log       *slog.Logger
	metrics   *metrics.Recorder
}

// Option configures a Rig.
type Option func(*Rig)

// WithLogger sets the logger operation results are written to.
func WithLogger(l *slog.Logger) Option {
	return func(r *Rig) {
		r.log = l
	}
}

// WithWeightMode selects how target envelopes combine with the deformer envelope.
func WithWeightMode(m deform.WeightMode) Option {
	return func(r *Rig) {
		r.eval.Mode = m
	}
}

// WithMetrics records resolve and evaluate counters.
func WithMetrics(m *metrics.Recorder) Option {
	return func(r *Rig) {
		r.metrics = m
	}
}

// New creates a Rig over geo with no deformers.
func New(geo Geometry, opts ...Option) *Rig {
	r := &Rig{
		geo:       geo,
		deformers: make(map[string]*deform.State),
		log:       logging.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Restore adds previously persisted deformer states, replacing any with the
// same name. A state whose base already carries a differently named deformer
// is rejected with ErrDeformerExists; the states before it stay restored.
func (r *Rig) Restore(states ...*deform.State) error {
	for _, s := range states {
		for _, other := range r.deformers {
			if other.Base == s.Base && other.Name != s.Name {
				return fmt.Errorf("rig: restore %s on %s: %w (%s)", s.Name, s.Base, ErrDeformerExists, other.Name)
			}
		}
		r.deformers[s.Name] = s
	}
	return nil
}

// CreateDeformer adds an empty deformer on base. An empty name defaults to
// "<base>Wrap".
func (r *Rig) CreateDeformer(name, base string) (*deform.State, error) {
	if _, ok := r.geo.Shape(base); !ok {
		return nil, fmt.Errorf("rig: create on %s: %w", base, ErrNoShape)
	}
	if name == "" {
		name = base + "Wrap"
	}
	if _, ok := r.deformers[name]; ok {
		return nil, fmt.Errorf("rig: create %s: %w", name, ErrDeformerExists)
	}
	for _, s := range r.deformers {
		if s.Base == base {
			return nil, fmt.Errorf("rig: create on %s: %w (%s)", base, ErrDeformerExists, s.Name)
		}
	}

	s := deform.NewState(name, base)
	r.deformers[name] = s
	r.log.Info("deformer created", "deformer", name, "base", base)
	return s, nil
}

// Deformer finds a deformer by its own name or by the name of its base shape.
func (r *Rig) Deformer(ref string) (*deform.State, error) {
	if s, ok := r.deformers[ref]; ok {
		return s, nil
	}
	for _, s := range r.deformers {
		if s.Base == ref {
			return s, nil
		}
	}
	return nil, fmt.Errorf("rig: %s: %w", ref, ErrNoDeformerFound)
}

// DeleteDeformer removes a deformer and all its bindings. It returns the
// removed state.
func (r *Rig) DeleteDeformer(ref string) (*deform.State, error) {
	s, err := r.Deformer(ref)
	if err != nil {
		return nil, err
	}
	delete(r.deformers, s.Name)
	r.log.Info("deformer deleted", "deformer", s.Name, "base", s.Base, "count", len(s.Targets))
	return s, nil
}

// Deformers returns all deformers ordered by name.
func (r *Rig) Deformers() []*deform.State {
	out := make([]*deform.State, 0, len(r.deformers))
	for _, s := range r.deformers {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Base returns the deformer's base shape.
func (r *Rig) Base(ref string) (*mesh.Shape, error) {
	s, err := r.Deformer(ref)
	if err != nil {
		return nil, err
	}
	base, ok := r.geo.Shape(s.Base)
	if !ok {
		return nil, fmt.Errorf("rig: %s base %s: %w", s.Name, s.Base, ErrNoInputGeometry)
	}
	return base, nil
}

// AddTarget resolves target against the deformer's base shape in world space
// and binds it. Unmatched vertices and overlaps with existing targets come
// back as warnings; they do not fail the call.
func (r *Rig) AddTarget(ref, target string, tolerance float64) (resolve.Mapping, []Message, error) {
	if tolerance < 0 || math.IsNaN(tolerance) {
		return nil, nil, fmt.Errorf("rig: add target %s: %w", target, ErrInvalidTolerance)
	}
	s, err := r.Deformer(ref)
	if err != nil {
		return nil, nil, err
	}
	targetShape, ok := r.geo.Shape(target)
	if !ok {
		return nil, nil, fmt.Errorf("rig: add target %s: %w", target, ErrNoShape)
	}
	if s.Binding(target) != nil {
		return nil, nil, fmt.Errorf("rig: %s is already a target for %s: %w", target, s.Name, ErrAlreadyATarget)
	}
	baseShape, ok := r.geo.Shape(s.Base)
	if !ok {
		return nil, nil, fmt.Errorf("rig: %s base %s: %w", s.Name, s.Base, ErrNoInputGeometry)
	}

	mapping := resolve.Resolve(baseShape.WorldPoints(), targetShape.WorldPoints(), tolerance)

	var msgs []Message
	unmatched := mapping.Unmatched()
	if unmatched > 0 {
		msgs = append(msgs, warnf("%d of %d vertices couldn't be matched", unmatched, len(mapping)))
	} else {
		msgs = append(msgs, infof("All %d vertices were matched", len(mapping)))
	}

	added := s.Add(target, mapping)

	overlapping := 0
	for _, b := range s.Targets {
		if b == added {
			continue
		}
		// Bindings whose geometry is gone are disconnected.
		if _, ok := r.geo.Shape(b.Target); !ok {
			continue
		}
		if n := resolve.Overlap(mapping, b.Mapping); n > 0 {
			overlapping += n
			msgs = append(msgs, warnf("New target %s shares %d vertices with existing target %s", target, n, b.Target))
		}
	}

	r.metrics.ObserveResolve(s.Name, unmatched, overlapping)
	for _, m := range msgs {
		r.log.Log(context.Background(), m.Level.slog(), m.Text, "deformer", s.Name, "target", target, "index", added.Index)
	}
	return mapping, msgs, nil
}

// RemoveTarget unbinds target and drops its mapping.
func (r *Rig) RemoveTarget(ref, target string) error {
	s, err := r.Deformer(ref)
	if err != nil {
		return err
	}
	if !s.Remove(target) {
		return fmt.Errorf("rig: %s on %s: %w", target, s.Name, ErrNoTarget)
	}
	r.log.Info("target removed", "deformer", s.Name, "target", target)
	return nil
}

// SetEnvelope sets the deformer's global envelope.
func (r *Rig) SetEnvelope(ref string, v float64) error {
	s, err := r.Deformer(ref)
	if err != nil {
		return err
	}
	s.Envelope = v
	return nil
}

// SetTargetEnvelope sets one target's envelope.
func (r *Rig) SetTargetEnvelope(ref, target string, v float64) error {
	s, err := r.Deformer(ref)
	if err != nil {
		return err
	}
	b := s.Binding(target)
	if b == nil {
		return fmt.Errorf("rig: %s on %s: %w", target, s.Name, ErrNoTarget)
	}
	b.Envelope = v
	return nil
}

// Evaluate returns the deformed object-space points of the deformer's base
// shape. Targets whose geometry cannot be found are skipped. Errors only
// report a deformer or base that cannot be found; evaluation itself never fails.
func (r *Rig) Evaluate(ref string) (mesh.PointSet, deform.Stats, error) {
	s, err := r.Deformer(ref)
	if err != nil {
		return nil, deform.Stats{}, err
	}
	base, err := r.Base(s.Name)
	if err != nil {
		return nil, deform.Stats{}, err
	}

	bindings := make([]*deform.Binding, len(s.Targets))
	copy(bindings, s.Targets)
	sort.SliceStable(bindings, func(i, j int) bool { return bindings[i].Index < bindings[j].Index })

	targets := make([]deform.Target, 0, len(bindings))
	for _, b := range bindings {
		shape, ok := r.geo.Shape(b.Target)
		if !ok {
			continue
		}
		targets = append(targets, deform.Target{
			Mapping:  b.Mapping,
			Points:   shape.WorldPoints(),
			Envelope: b.Envelope,
		})
	}

	start := time.Now()
	out, st := r.eval.EvaluateStats(base.Points, base.Transform, s.Envelope, targets)
	r.metrics.ObserveEvaluate(s.Name, st, time.Since(start))
	r.log.Debug("deformer evaluated", "deformer", s.Name, "targets", st.TargetsApplied, "written", st.Written)
	return out, st, nil
}
