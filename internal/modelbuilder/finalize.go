package modelbuilder

import (
	"fmt"

	cmpb "github.com/google/or-tools/ortools/sat/proto/cpmodel"

	appErrors "github.com/degreepath/scheduler/pkg/errors"
)

// Finalize re-checks the size ceiling (objective terms and reifications
// added after NewBuilder can have grown the model) and converts the
// builder into the wire CpModelProto the Solver Driver submits.
func (m *Model) Finalize() (*cmpb.CpModelProto, error) {
	if err := m.checkLimits(); err != nil {
		return nil, err
	}
	proto, err := m.Builder.Model()
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrSolverInternal, fmt.Sprintf("failed to build CP model: %v", err))
	}
	return proto, nil
}
