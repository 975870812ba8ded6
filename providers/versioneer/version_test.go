package versioneer

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVersion_Parts(t *testing.T) {
	raw := "v1.2.3"
	version, err := NewVersion(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if version.Major() != 1 || version.Minor() != 2 || version.Patch() != 3 || version.Value() != raw {
		t.Errorf("version %q parsed incorrectly, got '%+v'", raw, version)
	}
	if version.String() != "1.2.3" {
		t.Errorf("unexpected normalized version %q", version.String())
	}
}

func TestVersion_Prerelease(t *testing.T) {
	cases := map[string]string{
		"1.0.0-beta":      "beta",
		"2.0.0-b1":        "b1",
		"2.0.0b1":         "b1",
		"3.1RC2":          "rc2",
		"1.0.0-alpha.1":   "alpha.1",
		"1.0.0+build.7":   "",
		"1.0.0-rc.1+b.12": "rc.1",
	}

	for raw, expected := range cases {
		t.Run(raw, func(t *testing.T) {
			v, err := NewVersion(raw)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			assert.Equal(t, expected, v.Prerelease())
		})
	}
}

func TestVersion_Error(t *testing.T) {
	for _, raw := range []string{"hi1.2.3", "", "1.2.3.4", "1..2", "v", "1.2-", "*"} {
		t.Run(raw, func(t *testing.T) {
			version, err := NewVersion(raw)
			if err == nil {
				t.Error("expected error on invalid version, got none")
			}
			if !errors.Is(err, ErrInvalidVersion) {
				t.Errorf("expected ErrInvalidVersion, got %v", err)
			}
			if version.Valid() {
				t.Errorf("expected invalid version on error, got '%+v'", version)
			}
		})
	}
}

func TestVersion_Compare(t *testing.T) {
	cases := []struct {
		A, B   string
		Result int
	}{
		{"1.10.0", "1.9.0", 1},
		{"1.9.0", "1.10.0", -1},
		{"1.0.0-beta", "1.0.0", -1},
		{"1.0.0-alpha", "1.0.0-beta", -1},
		{"2.0.0b1", "2.0.0", -1},
		{"1.0.0+build", "1.0.0", 0},
		{"V1.0", "1.0.0", 0},
		{"v01.002.0", "1.2.0", 0},
		{"1", "1.0.0", 0},
		{"2.0.0", "1.99.99", 1},
	}

	for _, tcase := range cases {
		t.Run(fmt.Sprintf("%s<=>%s", tcase.A, tcase.B), func(t *testing.T) {
			a, b := MustVersion(tcase.A), MustVersion(tcase.B)
			assert.Equal(t, tcase.Result, a.Compare(b))
			assert.Equal(t, -tcase.Result, b.Compare(a))
			assert.Equal(t, tcase.Result == 0, a.Equal(b))
			assert.Equal(t, tcase.Result < 0, a.LessThan(b))
		})
	}
}

func TestVersion_CompareInvalid(t *testing.T) {
	var invalid Version
	assert.Equal(t, -1, invalid.Compare(MustVersion("0.0.0")))
	assert.Equal(t, 1, MustVersion("0.0.0").Compare(invalid))
	assert.Equal(t, 0, invalid.Compare(Version{}))
	assert.Equal(t, "", invalid.String())
}

func TestMustVersion_Panics(t *testing.T) {
	assert.Panics(t, func() { MustVersion("not a version") })
}
