package dephub

import (
	"context"
	"fmt"
)

// RequirementsChecker represents checkers interface.
type RequirementsChecker interface {
	// Check reads the requirements of src and reports the unsatisfied ones.
	Check(ctx context.Context, src DependencySource, typ DepType) (*Report, error)
}

// Report represents one requirements check result.
type Report struct {
	Requires           Requires             `json:"requires" yaml:"requires"`
	Missing            []MissingRequirement `json:"missing" yaml:"missing"`
	DisabledDependency bool                 `json:"disabledDependency" yaml:"disabledDependency"`
}

// Satisfied reports whether every requirement is met and no required
// component is disabled.
func (r Report) Satisfied() bool {
	return len(r.Missing) == 0 && !r.DisabledDependency
}

// NewChecker constructs new Checker over the evaluator.
func NewChecker(evaluator *Evaluator) *Checker {
	if evaluator == nil {
		evaluator = NewEvaluator(nil)
	}
	return &Checker{evaluator: evaluator}
}

// Checker checks dependency sources requirements with an Evaluator.
type Checker struct {
	evaluator *Evaluator
}

// Check reads the requirements of src and reports the unsatisfied ones.
//
// Only reading the source can fail: evaluation itself never does.
func (c Checker) Check(ctx context.Context, src DependencySource, typ DepType) (*Report, error) {
	requires, err := src.Requires(ctx, typ)
	if err != nil {
		return nil, fmt.Errorf("unable to read %s requirements: %w", typ, err)
	}

	return c.CheckRequires(requires), nil
}

// CheckRequires reports the unsatisfied requirements of an already parsed list.
func (c Checker) CheckRequires(requires Requires) *Report {
	if requires == nil {
		requires = Requires{}
	}
	return &Report{
		Requires:           requires,
		Missing:            c.evaluator.GetMissingDependencies(requires),
		DisabledDependency: c.evaluator.HasDependencyToDisabledPlugin(requires),
	}
}
