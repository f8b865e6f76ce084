// Package objective accumulates weighted boolean objective terms grouped
// by named tier, scales fractional weights to integer coefficients, and
// composes either a single big-M lexicographic objective or a staged
// resolve plan.
package objective

import (
	"math"
	"sort"

	"github.com/google/or-tools/ortools/sat/go/cpmodel"

	"github.com/degreepath/scheduler/internal/constraint"
)

// DefaultScale is the fixed integer multiplier applied to fractional
// weights before they enter the solver model, per §4.4.
const DefaultScale int64 = 1000

// Term is one (variable, coefficient) pair contributing to a tier's
// expression.
type Term struct {
	Var   cpmodel.BoolVar
	Coeff int64
}

// Manager groups Terms by Tier and knows the caller's priority ordering.
type Manager struct {
	scale int64
	order []constraint.Tier
	terms map[constraint.Tier][]Term
}

// NewManager constructs a Manager. order is highest-priority-first; a tier
// with no terms is simply skipped when composing objectives.
func NewManager(scale int64, order []constraint.Tier) *Manager {
	if scale <= 0 {
		scale = DefaultScale
	}
	return &Manager{scale: scale, order: order, terms: make(map[constraint.Tier][]Term)}
}

// Scale returns the configured integer scale.
func (m *Manager) Scale() int64 {
	return m.scale
}

// ScaleWeight rounds a fractional weight to the nearest scaled integer
// coefficient. Centralizing this keeps every float outside the solver
// model, per §9.
func (m *Manager) ScaleWeight(weight float64) int64 {
	return int64(math.Round(weight * float64(m.scale)))
}

// Add registers a weighted boolean term in the named tier. A zero
// coefficient after scaling is dropped, per §4.4.
func (m *Manager) Add(tier constraint.Tier, v cpmodel.BoolVar, weight float64) {
	coeff := m.ScaleWeight(weight)
	if coeff == 0 {
		return
	}
	m.terms[tier] = append(m.terms[tier], Term{Var: v, Coeff: coeff})
	m.ensureOrdered(tier)
}

// AddCoeff registers a pre-scaled integer coefficient directly.
func (m *Manager) AddCoeff(tier constraint.Tier, v cpmodel.BoolVar, coeff int64) {
	if coeff == 0 {
		return
	}
	m.terms[tier] = append(m.terms[tier], Term{Var: v, Coeff: coeff})
	m.ensureOrdered(tier)
}

// ensureOrdered appends a tier encountered only through Add/AddCoeff (never
// named by SetOrder) to the back of the priority order, so it still
// contributes to the big-M composite at the lowest priority.
func (m *Manager) ensureOrdered(tier constraint.Tier) {
	for _, t := range m.order {
		if t == tier {
			return
		}
	}
	m.order = append(m.order, tier)
}

// SetOrder replaces the tier priority order, e.g. from a
// lexicographic_priority constraint.
func (m *Manager) SetOrder(order []constraint.Tier) {
	if len(order) == 0 {
		return
	}
	m.order = order
}

// Order returns tiers with at least one term, in priority order.
func (m *Manager) Order() []constraint.Tier {
	out := make([]constraint.Tier, 0, len(m.order))
	seen := make(map[constraint.Tier]bool)
	for _, t := range m.order {
		if len(m.terms[t]) == 0 || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	// Any tier with terms not named in order (shouldn't happen after
	// ensureOrdered, but keep this deterministic regardless).
	var extra []constraint.Tier
	for t := range m.terms {
		if !seen[t] && len(m.terms[t]) > 0 {
			extra = append(extra, t)
		}
	}
	sort.Slice(extra, func(i, j int) bool { return extra[i] < extra[j] })
	return append(out, extra...)
}

// Terms returns the accumulated terms for a tier.
func (m *Manager) Terms(tier constraint.Tier) []Term {
	return m.terms[tier]
}

// UpperBound returns the sum of absolute coefficients in a tier, the `UB`
// used by the big-M weight formula.
func (m *Manager) UpperBound(tier constraint.Tier) int64 {
	var ub int64
	for _, t := range m.terms[tier] {
		c := t.Coeff
		if c < 0 {
			c = -c
		}
		ub += c
	}
	return ub
}

// TierExpr builds the raw (unweighted) linear expression for one tier.
func (m *Manager) TierExpr(tier constraint.Tier) *cpmodel.LinearExpr {
	expr := cpmodel.NewLinearExpr()
	for _, t := range m.terms[tier] {
		expr.AddTerm(t.Var, t.Coeff)
	}
	return expr
}

// BigMExpr composes the single-pass big-M objective: each tier's terms are
// scaled by a weight guaranteed to dominate every lower-priority tier's
// maximum possible contribution, per §4.4 mode 1.
func (m *Manager) BigMExpr() *cpmodel.LinearExpr {
	order := m.Order()
	expr := cpmodel.NewLinearExpr()
	for i, tier := range order {
		var lowerUB int64
		for j := i + 1; j < len(order); j++ {
			lowerUB += m.UpperBound(order[j])
		}
		weight := int64(1) + lowerUB
		for _, t := range m.terms[tier] {
			expr.AddTerm(t.Var, weight*t.Coeff)
		}
	}
	return expr
}
