// Package deform blends base mesh points toward target mesh points through
// per-target vertex mappings.
package deform

import (
	"math"

	"mapped-wrap/internal/mathutil"
	"mapped-wrap/internal/mesh"
	"mapped-wrap/internal/resolve"
)

// EnvelopeEpsilon is the cutoff below which an envelope counts as off, and
// within which of 1 a target weight counts as saturated.
const EnvelopeEpsilon = 0.001

// WeightMode selects how a target envelope combines with the deformer envelope.
type WeightMode int

const (
	// WeightSquared computes targetEnvelope² × envelope. Existing rigs are
	// tuned against this curve, so it stays the default.
	WeightSquared WeightMode = iota
	// WeightLinear computes targetEnvelope × envelope.
	WeightLinear
)

func (m WeightMode) String() string {
	switch m {
	case WeightLinear:
		return "linear"
	default:
		return "squared"
	}
}

// EffectiveWeight returns the blend weight applied to one target.
func EffectiveWeight(mode WeightMode, targetEnvelope, envelope float64) float64 {
	if mode == WeightLinear {
		return targetEnvelope * envelope
	}
	return targetEnvelope * targetEnvelope * envelope
}

// Target is one binding's mapping together with the target's current
// world-space points.
type Target struct {
	Mapping  resolve.Mapping
	Points   mesh.PointSet
	Envelope float64
}

// Stats counts what one evaluation did.
type Stats struct {
	Identity       bool // envelope below cutoff, input returned as is
	TargetsApplied int
	TargetsSkipped int // weight below cutoff or empty mapping
	Truncated      int // targets cut short by a mapping longer than the target
	Written        int // base vertices written, counting rewrites
	Skipped        int // mapping entries unmatched or past the base
}

// Evaluator evaluates with a chosen weight mode. The zero value uses WeightSquared.
type Evaluator struct {
	Mode WeightMode
}

// Evaluate deforms base (object space) with the default evaluator.
func Evaluate(base mesh.PointSet, objectToWorld mathutil.Mat4, envelope float64, targets []Target) mesh.PointSet {
	out, _ := Evaluator{}.EvaluateStats(base, objectToWorld, envelope, targets)
	return out
}

// Evaluate deforms base (object space) and returns the new object-space points.
func (e Evaluator) Evaluate(base mesh.PointSet, objectToWorld mathutil.Mat4, envelope float64, targets []Target) mesh.PointSet {
	out, _ := e.EvaluateStats(base, objectToWorld, envelope, targets)
	return out
}

// EvaluateStats is Evaluate plus counters. base is never modified.
//
// Targets apply in slice order and write into the same output, so a later
// target overwrites an earlier one on shared vertices, and a blend reads the
// value left by earlier targets. Malformed mappings degrade silently: an
// entry past the end of the target stops that target, an entry that is
// unmatched or past the end of the base is skipped.
func (e Evaluator) EvaluateStats(base mesh.PointSet, objectToWorld mathutil.Mat4, envelope float64, targets []Target) (mesh.PointSet, Stats) {
	var st Stats
	out := base.Clone()
	if envelope < EnvelopeEpsilon {
		st.Identity = true
		return out, st
	}

	worldToObject := objectToWorld.Inverse()

	for _, t := range targets {
		w := EffectiveWeight(e.Mode, t.Envelope, envelope)
		if w < EnvelopeEpsilon || len(t.Mapping) == 0 {
			st.TargetsSkipped++
			continue
		}
		st.TargetsApplied++

		saturated := math.Abs(1-w) < EnvelopeEpsilon
		for ti, bi := range t.Mapping {
			if ti >= len(t.Points) {
				st.Truncated++
				break
			}
			if bi < 0 || bi >= len(out) {
				st.Skipped++
				continue
			}

			world := t.Points[ti]
			if !saturated {
				// Blend in world space; the meshes may be transformed independently.
				baseWorld := objectToWorld.MulPoint(out[bi])
				world = world.Scale(w).Add(baseWorld.Scale(1 - w))
			}
			out[bi] = worldToObject.MulPoint(world)
			st.Written++
		}
	}

	return out, st
}
