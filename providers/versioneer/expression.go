package versioneer

import "strings"

// Expression represents a conjunction of clauses (e.g. '>=1.0.0, <2.0.0').
type Expression []Clause

// ParseExpression splits expression on commas and parses every non-empty clause.
//
// It never fails: malformed clauses are kept in place and never match,
// their parse errors are available through Clause.Err and Expression.Errors.
func ParseExpression(expression string) Expression {
	parts := splitExpression(expression)
	expr := make(Expression, 0, len(parts))
	for _, p := range parts {
		c, _ := ParseClause(p)
		expr = append(expr, c)
	}
	return expr
}

// Match reports whether v satisfies every clause of the expression.
func (e Expression) Match(v Version) bool {
	for _, c := range e {
		if !Satisfies(v, c) {
			return false
		}
	}
	return true
}

// Errors returns parse errors of the malformed clauses, in source order.
func (e Expression) Errors() []error {
	var errs []error
	for _, c := range e {
		if c.err != nil {
			errs = append(errs, c.err)
		}
	}
	return errs
}

// Values returns the clause texts in source order.
func (e Expression) Values() []string {
	values := make([]string, len(e))
	for i, c := range e {
		values[i] = c.raw
	}
	return values
}

// String joins the clause texts with ", ".
func (e Expression) String() string {
	return strings.Join(e.Values(), ", ")
}

// Evaluate returns the ordered sub-list of clauses of expr that v does not satisfy.
// An empty result means v satisfies the whole expression.
func Evaluate(v Version, expr Expression) Expression {
	failed := Expression{}
	for _, c := range expr {
		if !Satisfies(v, c) {
			failed = append(failed, c)
		}
	}
	return failed
}
