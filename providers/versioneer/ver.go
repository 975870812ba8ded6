/*
Package versioneer provides the version and constraint parsing used to validate
declared requirements against installed versions.

A constraint expression is a comma-separated conjunction of clauses:

	>=2.0.0-b1, <3.0.0
	^1.4
	~1.2.3, !=1.2.7
	1.2.*
	1.0 - 2.0
	*

Every clause of an expression must hold for a version to satisfy it. Clauses
that cannot be parsed never match, so malformed input surfaces as an unmet
requirement instead of an error.

Usage:

	expr := versioneer.ParseExpression(">=1.0.0, <2.0.0")
	v, err := versioneer.NewVersion("2.5.0")
	if err != nil {
		return err
	}
	failed := versioneer.Evaluate(v, expr) // [<2.0.0]
*/
package versioneer

import "strings"

// Match reports whether version satisfies every clause of expression.
// An unparseable version satisfies nothing but always-true clauses.
func Match(version, expression string) bool {
	v, _ := NewVersion(version)
	return len(Evaluate(v, ParseExpression(expression))) == 0
}

// splitExpression splits a raw expression into trimmed, non-empty clause texts.
func splitExpression(expression string) []string {
	parts := strings.Split(expression, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		result = append(result, p)
	}
	return result
}
