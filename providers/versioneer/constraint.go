package versioneer

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// ErrMalformedClause is returned for clauses that can not be parsed.
var ErrMalformedClause = errors.New("malformed constraint clause")

// Operator represents a clause comparison operator.
type Operator string

// Supported clause operators.
const (
	OpEqual            Operator = "="
	OpNotEqual         Operator = "!="
	OpGreaterThan      Operator = ">"
	OpGreaterThanEqual Operator = ">="
	OpLessThan         Operator = "<"
	OpLessThanEqual    Operator = "<="
	OpTilde            Operator = "~"
	OpCaret            Operator = "^"
	OpAny              Operator = "*"
	// OpRange is a hyphen range (e.g. '1.0 - 2.0').
	OpRange Operator = "-"
)

// oprFunc represents clause operator check function.
// It returns true if the version is satisfied by the clause.
type oprFunc func(v Version, c Clause) bool

// operators maps every supported operator to its check function.
var operators = map[Operator]oprFunc{
	OpEqual:            clauseEqual,
	OpNotEqual:         clauseNotEqual,
	OpGreaterThan:      clauseGreaterThan,
	OpGreaterThanEqual: clauseGreaterThanEqual,
	OpLessThan:         clauseLessThan,
	OpLessThanEqual:    clauseLessThanEqual,
	OpTilde:            clauseBounded,
	OpCaret:            clauseBounded,
	OpAny:              clauseAny,
	OpRange:            clauseBounded,
}

// prefixes lists operator tokens in matching order (longest first).
var prefixes = []struct {
	token string
	op    Operator
}{
	{">=", OpGreaterThanEqual},
	{"<=", OpLessThanEqual},
	{"!=", OpNotEqual},
	{"==", OpEqual},
	{">", OpGreaterThan},
	{"<", OpLessThan},
	{"=", OpEqual},
	{"~", OpTilde},
	{"^", OpCaret},
}

// hyphenRgx matches hyphen ranges. Spaces around the hyphen are required so
// that pre-release suffixes are not mistaken for ranges.
var hyphenRgx = regexp.MustCompile(`^(\S+)\s+-\s+(\S+)$`)

// bounds is a version interval. The lower end is always inclusive.
type bounds struct {
	lower          *semver.Version
	upper          *semver.Version
	upperInclusive bool
}

// contains checks v against the interval. Exclusive upper ends also exclude
// the pre-releases of the bound, so '2.0.0-beta' is outside '[1.0.0, 2.0.0)'.
func (b bounds) contains(v Version) bool {
	if b.lower != nil && v.sv.Compare(b.lower) < 0 {
		return false
	}
	if b.upper == nil {
		return true
	}
	if b.upperInclusive {
		return v.sv.Compare(b.upper) <= 0
	}
	return v.release().Compare(b.upper) < 0
}

// Clause represents a single relational test (e.g. '>=1.2.3' from '>=1.2.3, <2.0').
type Clause struct {
	op  Operator
	raw string
	ver Version
	rng *bounds // set for '~', '^', ranges, wildcards and partial equality
	err error
}

// Operator returns the clause operator.
func (c Clause) Operator() Operator {
	return c.op
}

// Version returns the clause operand. It is the zero Version for '*'.
func (c Clause) Version() Version {
	return c.ver
}

// Value returns the trimmed clause text as written.
func (c Clause) Value() string {
	return c.raw
}

// String implements fmt.Stringer.
func (c Clause) String() string {
	return c.raw
}

// Err returns the parse error of a malformed clause.
func (c Clause) Err() error {
	return c.err
}

// Valid reports whether the clause was parsed successfully.
func (c Clause) Valid() bool {
	return c.err == nil
}

// ParseClause converts a raw clause into a Clause.
//
// The returned Clause is usable even when err is not nil: it never matches.
func ParseClause(raw string) (Clause, error) {
	s := strings.TrimSpace(raw)
	c := Clause{raw: s}

	if strings.Contains(s, "||") || strings.Contains(s, ",") {
		return c.malformed("only a single conjunctive clause is supported")
	}

	if m := hyphenRgx.FindStringSubmatch(s); m != nil {
		return parseRange(c, m[1], m[2])
	}

	op, rest := OpEqual, s
	for _, p := range prefixes {
		if strings.HasPrefix(s, p.token) {
			op, rest = p.op, strings.TrimSpace(s[len(p.token):])
			break
		}
	}

	if rest == "" || rest == "*" {
		if op == OpNotEqual {
			return c.malformed("'!=' requires a version")
		}
		c.op = OpAny
		return c, nil
	}

	if strings.ContainsAny(strings.ToLower(rest), "*x") && wildcardRgx.MatchString(strings.ToLower(rest)) {
		if op != OpEqual {
			return c.malformed(fmt.Sprintf("wildcard can not be combined with %q", op))
		}
		return parseWildcard(c, rest)
	}

	v, err := NewVersion(rest)
	if err != nil {
		return c.malformed(err.Error())
	}
	c.op, c.ver = op, v

	switch op {
	case OpTilde:
		c.rng = &bounds{lower: v.sv, upper: v.bump(tildeSegment(v))}
	case OpCaret:
		c.rng = &bounds{lower: v.sv, upper: v.bump(caretSegment(v))}
	case OpEqual, OpNotEqual:
		// Partial versions are compatible with every release sharing the given segments.
		if v.segments < 3 && v.Prerelease() == "" {
			c.rng = &bounds{lower: v.sv, upper: v.bump(v.segments - 1)}
		}
	}

	return c, nil
}

// malformed marks the clause as never matching.
func (c Clause) malformed(reason string) (Clause, error) {
	c.op = ""
	c.err = fmt.Errorf("%w %q: %s", ErrMalformedClause, c.raw, reason)
	return c, c.err
}

// tildeSegment returns the segment incremented for the exclusive upper bound:
// the second-most-significant given segment ('~1.2.3' => <1.3.0, '~1.2' => <2.0.0).
func tildeSegment(v Version) int {
	if v.segments < 2 {
		return 0
	}
	return v.segments - 2
}

// caretSegment returns the left-most non-zero given segment, or the last
// given one if all of them are zero ('^0.3' => <0.4.0, '^0.0' => <0.1.0).
func caretSegment(v Version) int {
	segs := [3]uint64{v.Major(), v.Minor(), v.Patch()}
	for i := 0; i < v.segments; i++ {
		if segs[i] != 0 {
			return i
		}
	}
	return v.segments - 1
}

// parseWildcard converts '1.2.*' style versions into an equality range.
func parseWildcard(c Clause, raw string) (Clause, error) {
	m := wildcardRgx.FindStringSubmatch(strings.ToLower(raw))
	fixed := make([]string, 0, 3)
	wild := false
	for _, seg := range m[1:] {
		switch {
		case seg == "":
		case seg == "*" || seg == "x":
			wild = true
		case wild:
			return c.malformed("numeric segment after wildcard")
		default:
			fixed = append(fixed, seg)
		}
	}

	if len(fixed) == 0 {
		c.op = OpAny
		return c, nil
	}

	v, err := NewVersion(strings.Join(fixed, "."))
	if err != nil {
		return c.malformed(err.Error())
	}
	c.op, c.ver = OpEqual, v
	c.rng = &bounds{lower: v.sv, upper: v.bump(v.segments - 1)}
	return c, nil
}

// parseRange converts 'A - B' into '>=A, <=B' (or '<next(B)' when B is partial).
func parseRange(c Clause, from, to string) (Clause, error) {
	lo, err := NewVersion(from)
	if err != nil {
		return c.malformed(err.Error())
	}
	hi, err := NewVersion(to)
	if err != nil {
		return c.malformed(err.Error())
	}

	c.op, c.ver = OpRange, lo
	if hi.segments < 3 {
		c.rng = &bounds{lower: lo.sv, upper: hi.bump(hi.segments - 1)}
	} else {
		c.rng = &bounds{lower: lo.sv, upper: hi.sv, upperInclusive: true}
	}
	return c, nil
}

func clauseEqual(v Version, c Clause) bool {
	if c.rng != nil {
		return c.rng.contains(v)
	}
	return v.Compare(c.ver) == 0
}

func clauseNotEqual(v Version, c Clause) bool {
	return !clauseEqual(v, c)
}

func clauseGreaterThan(v Version, c Clause) bool {
	return v.Compare(c.ver) > 0
}

func clauseLessThan(v Version, c Clause) bool {
	return v.Compare(c.ver) < 0
}

func clauseGreaterThanEqual(v Version, c Clause) bool {
	return v.Compare(c.ver) >= 0
}

func clauseLessThanEqual(v Version, c Clause) bool {
	return v.Compare(c.ver) <= 0
}

func clauseBounded(v Version, c Clause) bool {
	return c.rng != nil && c.rng.contains(v)
}

func clauseAny(Version, Clause) bool {
	return true
}

// Satisfies reports whether version v satisfies clause c.
//
// Malformed clauses never match. Invalid versions only match '*'.
func Satisfies(v Version, c Clause) bool {
	compare, ok := operators[c.op]
	if !ok || c.err != nil {
		return false
	}
	if c.op != OpAny && !v.Valid() {
		return false
	}
	return compare(v, c)
}
