package versioneer

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// ErrInvalidVersion is returned when a version string can not be parsed.
var ErrInvalidVersion = errors.New("invalid version")

// versionRgx matches release versions (e.g. 'v1.2.3-beta.1+build.5' or '2.0.0b1').
//
// Groups:
//
//	1-3: major, minor, patch
//	4:   dash separated pre-release
//	5:   letter-led pre-release glued to the last segment
//	6:   build metadata
var versionRgx = regexp.MustCompile(`^v?([0-9]+)(?:\.([0-9]+))?(?:\.([0-9]+))?` +
	`(?:-([0-9a-z\-]+(?:\.[0-9a-z\-]+)*)|([a-z][0-9a-z\-]*(?:\.[0-9a-z\-]+)*))?` +
	`(?:\+([0-9a-z\-]+(?:\.[0-9a-z\-]+)*))?$`)

// wildcardRgx matches wildcard versions (e.g. '1.2.*', 'v1.x', '*').
var wildcardRgx = regexp.MustCompile(`^v?([0-9]+|[*x])(?:\.([0-9]+|[*x]))?(?:\.([0-9]+|[*x]))?$`)

// Version represents a parsed release version.
//
// The zero value is not a valid version: it sorts below everything and only
// satisfies always-true clauses.
type Version struct {
	sv       *semver.Version
	segments int // number of numeric segments given in the raw value (1-3)
	value    string
}

// NewVersion parses a version string.
//
// Leading 'v' and leading zeros are ignored, so 'v01.2' equals '1.2.0'.
// Missing minor and patch segments default to zero.
func NewVersion(value string) (Version, error) {
	raw := strings.TrimSpace(value)
	matches := versionRgx.FindStringSubmatch(strings.ToLower(raw))
	if matches == nil {
		return Version{}, fmt.Errorf("%w: %q", ErrInvalidVersion, value)
	}

	var (
		segs     [3]uint64
		segments int
	)
	for i := 0; i < 3; i++ {
		if matches[i+1] == "" {
			break
		}
		n, err := strconv.ParseUint(matches[i+1], 10, 64)
		if err != nil {
			return Version{}, fmt.Errorf("%w: segment parse error: %s", ErrInvalidVersion, err)
		}
		segs[i] = n
		segments++
	}

	pre := matches[4]
	if pre == "" {
		pre = matches[5]
	}

	return Version{
		sv:       semver.New(segs[0], segs[1], segs[2], pre, matches[6]),
		segments: segments,
		value:    value,
	}, nil
}

// MustVersion is like NewVersion but panics on error. Meant for tests and
// package level variables.
func MustVersion(value string) Version {
	v, err := NewVersion(value)
	if err != nil {
		panic(err)
	}
	return v
}

// Valid reports whether v was produced by a successful parse.
func (v Version) Valid() bool {
	return v.sv != nil
}

// Major returns the major version segment.
func (v Version) Major() uint64 {
	if v.sv == nil {
		return 0
	}
	return v.sv.Major()
}

// Minor returns the minor version segment.
func (v Version) Minor() uint64 {
	if v.sv == nil {
		return 0
	}
	return v.sv.Minor()
}

// Patch returns the patch version segment.
func (v Version) Patch() uint64 {
	if v.sv == nil {
		return 0
	}
	return v.sv.Patch()
}

// Prerelease returns the normalized pre-release suffix, if any.
func (v Version) Prerelease() string {
	if v.sv == nil {
		return ""
	}
	return v.sv.Prerelease()
}

// Value returns the original unmodified raw value of the version.
func (v Version) Value() string {
	return v.value
}

// String returns the normalized form of the version (e.g. '1.2.0-beta').
func (v Version) String() string {
	if v.sv == nil {
		return ""
	}
	return v.sv.String()
}

// Compare returns -1, 0 or 1 when v is lower, equal or greater than o.
// Build metadata is ignored and pre-releases sort below their release.
func (v Version) Compare(o Version) int {
	switch {
	case v.sv == nil && o.sv == nil:
		return 0
	case v.sv == nil:
		return -1
	case o.sv == nil:
		return 1
	}
	return v.sv.Compare(o.sv)
}

// Equal reports whether both versions have the same precedence.
func (v Version) Equal(o Version) bool {
	return v.Compare(o) == 0
}

// LessThan reports whether v sorts below o.
func (v Version) LessThan(o Version) bool {
	return v.Compare(o) < 0
}

// release returns v without its pre-release and build suffixes.
func (v Version) release() *semver.Version {
	return semver.New(v.sv.Major(), v.sv.Minor(), v.sv.Patch(), "", "")
}

// bump returns the release obtained by incrementing segment idx (0 = major)
// and zeroing every segment after it.
//
// A segment at math.MaxUint64 carries into the previous one; nil (no upper
// bound) is returned when the major segment would overflow.
func (v Version) bump(idx int) *semver.Version {
	segs := [3]uint64{v.sv.Major(), v.sv.Minor(), v.sv.Patch()}
	for idx >= 0 && segs[idx] == math.MaxUint64 {
		idx--
	}
	if idx < 0 {
		return nil
	}
	segs[idx]++
	for i := idx + 1; i < 3; i++ {
		segs[i] = 0
	}
	return semver.New(segs[0], segs[1], segs[2], "", "")
}
