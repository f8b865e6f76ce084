package modelbuilder

import (
	"github.com/google/or-tools/ortools/sat/go/cpmodel"

	"github.com/degreepath/scheduler/internal/constraint"
)

// SetBigMObjective wires the Objective Manager's single-pass composite
// expression as the model's maximization objective (§4.4 mode 1).
func (m *Model) SetBigMObjective() {
	m.Builder.Maximize(m.Obj.BigMExpr())
}

// SetTierObjective wires a single tier's raw expression as the model's
// maximization objective, for the staged lexicographic driver (§4.4 mode
// 2). Returns the expression so the caller can lock its value in before
// moving to the next tier.
func (m *Model) SetTierObjective(tier constraint.Tier) *cpmodel.LinearExpr {
	expr := m.Obj.TierExpr(tier)
	m.Builder.Maximize(expr)
	return expr
}

// LockTierFloor adds tierExpr >= floor as a hard constraint, the bound
// lock-in step between stages of the staged resolve.
func (m *Model) LockTierFloor(tierExpr *cpmodel.LinearExpr, floor int64) {
	m.Builder.AddGreaterOrEqual(tierExpr, cpmodel.NewConstant(floor))
	m.constrCount++
}
