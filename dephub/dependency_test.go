package dephub

import (
	"bytes"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dephub/dephub-requirements/providers/components"
)

// RegistryMock mocks components.Registry logic.
type RegistryMock struct {
	mock.Mock
}

func (m *RegistryMock) Names() []string {
	args := m.Called()
	if names, ok := args.Get(0).([]string); ok {
		return names
	}
	return nil
}

func (m *RegistryMock) IsLoaded(name string) bool {
	return m.Called(name).Bool(0)
}

func (m *RegistryMock) IsActivated(name string) bool {
	return m.Called(name).Bool(0)
}

func (m *RegistryMock) Load(name string) (components.Component, error) {
	args := m.Called(name)
	var c components.Component
	// To allow nil values
	if comp, ok := args.Get(0).(components.Component); ok {
		c = comp
	}
	return c, args.Error(1)
}

// panickyComponent simulates a misbehaving component.
type panickyComponent struct{}

func (panickyComponent) Version() string {
	panic("component crashed")
}

// VersionSourceMock mocks VersionSource logic.
type VersionSourceMock struct {
	mock.Mock
}

func (m *VersionSourceMock) Resolve(name string) (string, error) {
	args := m.Called(name)
	return args.String(0), args.Error(1)
}

func testRegistry() *components.MemoryRegistry {
	return components.NewMemoryRegistry(
		components.Info{Name: "Goals", Version: "2.1.0", Loaded: true, Activated: true},
		components.Info{Name: "CustomAlerts", Version: "0.4.0", Loaded: true},
		components.Info{Name: "SomePlugin", Version: "1.0.0"},
	)
}

func TestGetMissingVersions(t *testing.T) {
	cases := []struct {
		Name     string
		Current  string
		Required string
		Missing  []string
	}{
		{"unknown current version", "", ">=3.0.0", []string{">=3.0.0"}},
		{"unknown current version keeps expression verbatim", "  ", " >=3.0.0, <4 ", []string{" >=3.0.0, <4 "}},
		{"unknown current version, empty expression", "", "", []string{}},
		{"conjunction partial failure", "2.5.0", ">=1.0.0,<2.0.0", []string{"<2.0.0"}},
		{"conjunction satisfied", "1.5.0", ">=1.0.0,<2.0.0", []string{}},
		{"caret satisfied", "1.4.9", "^1.0.0", []string{}},
		{"caret next major", "2.0.0", "^1.0.0", []string{"^1.0.0"}},
		{"tilde next minor", "1.3.0", "~1.2.3", []string{"~1.2.3"}},
		{"pre-release below release", "2.0.0-beta", ">=2.0.0", []string{">=2.0.0"}},
		{"clauses trimmed and empties skipped", "1.0.0", " >=2.0 , ,<0.5 ,", []string{">=2.0", "<0.5"}},
		{"current version trimmed", " 1.5.0 ", ">=1.0.0", []string{}},
		{"malformed clause never matches", "1.5.0", ">=1.0.0, banana", []string{"banana"}},
		{"unparseable current version", "unknown-build", ">=1.0.0, *", []string{">=1.0.0"}},
		{"empty expression", "1.0.0", "", []string{}},
	}

	for _, tcase := range cases {
		t.Run(tcase.Name, func(t *testing.T) {
			assert.Equal(t, tcase.Missing, GetMissingVersions(tcase.Current, tcase.Required))
		})
	}
}

func TestEvaluator_GetMissingDependencies_Empty(t *testing.T) {
	e := NewEvaluator(testRegistry())

	missing := e.GetMissingDependencies(nil)
	assert.NotNil(t, missing)
	assert.Len(t, missing, 0)

	missing = e.GetMissingDependencies(Requires{})
	assert.NotNil(t, missing)
	assert.Len(t, missing, 0)
}

func TestEvaluator_GetMissingDependencies_Host(t *testing.T) {
	e := NewEvaluator(testRegistry(), WithHost("", "2.9.9"))

	missing := e.GetMissingDependencies(Requires{{Name: "host", Constraint: ">=3.0.0"}})

	expected := []MissingRequirement{
		{Requirement: "host", ActualVersion: "2.9.9", RequiredVersion: ">=3.0.0", CausedBy: ">=3.0.0"},
	}
	assert.Equal(t, expected, missing)
}

func TestEvaluator_GetMissingDependencies_Report(t *testing.T) {
	e := NewEvaluator(testRegistry(),
		WithHost("Piwik", "2.16.0"),
		WithRuntime("PHP", "7.0.1"),
	)

	requires := Requires{
		{Name: "PIWIK", Constraint: ">=2.16.0-b1,<3.0.0-b1"},
		{Name: "php", Constraint: ">=7.1, <8, !=7.0.1"},
		{Name: "goals", Constraint: "^2.0"},
		{Name: "CustomAlerts", Constraint: ">=0.5.0"},
		{Name: "SomePlugin", Constraint: ">=1.0"},
		{Name: "Unknown", Constraint: "*"},
	}

	expected := []MissingRequirement{
		{Requirement: "php", ActualVersion: "7.0.1", RequiredVersion: ">=7.1, <8, !=7.0.1", CausedBy: ">=7.1, !=7.0.1"},
		// Names reported by the registry are case-sensitive.
		{Requirement: "goals", ActualVersion: "", RequiredVersion: "^2.0", CausedBy: "^2.0"},
		{Requirement: "CustomAlerts", ActualVersion: "0.4.0", RequiredVersion: ">=0.5.0", CausedBy: ">=0.5.0"},
		// Not loaded.
		{Requirement: "SomePlugin", ActualVersion: "", RequiredVersion: ">=1.0", CausedBy: ">=1.0"},
		{Requirement: "Unknown", ActualVersion: "", RequiredVersion: "*", CausedBy: "*"},
	}

	assert.Equal(t, expected, e.GetMissingDependencies(requires))
}

func TestEvaluator_GetMissingDependencies_Idempotent(t *testing.T) {
	e := NewEvaluator(testRegistry(), WithHost("", "2.9.9"))
	requires := Requires{
		{Name: "host", Constraint: ">=3.0.0"},
		{Name: "Goals", Constraint: "~2.0.0"},
		{Name: "CustomAlerts", Constraint: "^0.4"},
	}

	first := e.GetMissingDependencies(requires)
	second := e.GetMissingDependencies(requires)
	assert.Equal(t, first, second)
	assert.Len(t, first, 2)
}

func TestEvaluator_GetMissingDependencies_Concurrent(t *testing.T) {
	e := NewEvaluator(testRegistry(), WithHost("", "3.1.0"))
	requires := Requires{
		{Name: "host", Constraint: ">=3.0.0"},
		{Name: "Goals", Constraint: ">=3.0"},
	}

	var wg sync.WaitGroup
	results := make([][]MissingRequirement, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = e.GetMissingDependencies(requires)
		}(i)
	}
	wg.Wait()

	for _, r := range results {
		assert.Equal(t, results[0], r)
	}
}

func TestEvaluator_LoadUsesNormalizedName(t *testing.T) {
	registry := new(RegistryMock)
	registry.On("Names").Return([]string{"goals"})
	registry.On("IsLoaded", "goals").Return(true)
	registry.On("Load", "Goals").Return(components.Info{Name: "Goals", Version: "2.1.0"}.AsComponent(), nil)

	e := NewEvaluator(registry)
	assert.Equal(t, []MissingRequirement{}, e.GetMissingDependencies(Requires{{Name: "goals", Constraint: ">=2"}}))
	registry.AssertExpectations(t)
}

func TestEvaluator_CustomNormalizer(t *testing.T) {
	registry := new(RegistryMock)
	registry.On("Names").Return([]string{"goals"})
	registry.On("IsLoaded", "goals").Return(true)
	registry.On("Load", "GOALS").Return(components.Info{Version: "1.0.0"}.AsComponent(), nil)

	e := NewEvaluator(registry, WithNameNormalizer(strings.ToUpper))
	assert.Equal(t, "1.0.0", e.CurrentVersion("goals"))
	registry.AssertExpectations(t)
}

func TestEvaluator_RegistryFailures(t *testing.T) {
	cases := []struct {
		Name  string
		Setup func(r *RegistryMock)
	}{
		{"load error", func(r *RegistryMock) {
			r.On("Names").Return([]string{"Broken"})
			r.On("IsLoaded", "Broken").Return(true)
			r.On("Load", "Broken").Return(nil, errors.New("boom"))
		}},
		{"nil component", func(r *RegistryMock) {
			r.On("Names").Return([]string{"Broken"})
			r.On("IsLoaded", "Broken").Return(true)
			r.On("Load", "Broken").Return(nil, nil)
		}},
		{"panicking component", func(r *RegistryMock) {
			r.On("Names").Return([]string{"Broken"})
			r.On("IsLoaded", "Broken").Return(true)
			r.On("Load", "Broken").Return(panickyComponent{}, nil)
		}},
		{"panicking registry", func(r *RegistryMock) {
			r.On("Names").Run(func(mock.Arguments) { panic("registry crashed") }).Return(nil)
		}},
		{"empty version", func(r *RegistryMock) {
			r.On("Names").Return([]string{"Broken"})
			r.On("IsLoaded", "Broken").Return(true)
			r.On("Load", "Broken").Return(components.Info{}.AsComponent(), nil)
		}},
	}

	for _, tcase := range cases {
		t.Run(tcase.Name, func(t *testing.T) {
			registry := new(RegistryMock)
			tcase.Setup(registry)

			var buf bytes.Buffer
			logger := zerolog.New(&buf).Level(zerolog.DebugLevel)
			e := NewEvaluator(registry, WithLogger(logger))

			var missing []MissingRequirement
			require.NotPanics(t, func() {
				missing = e.GetMissingDependencies(Requires{{Name: "Broken", Constraint: ">=1.0"}})
			})

			expected := []MissingRequirement{
				{Requirement: "Broken", ActualVersion: "", RequiredVersion: ">=1.0", CausedBy: ">=1.0"},
			}
			assert.Equal(t, expected, missing)
			assert.Contains(t, buf.String(), `"requirement":"Broken"`)
		})
	}
}

func TestEvaluator_VersionSource(t *testing.T) {
	src := new(VersionSourceMock)
	src.On("Resolve", "host").Return("3.2.0", nil)
	src.On("Resolve", "Goals").Return("", ErrVersionUnknown)

	e := NewEvaluator(testRegistry(), WithVersionSource(src))
	missing := e.GetMissingDependencies(Requires{
		{Name: "host", Constraint: "~3.1"},
		{Name: "Goals", Constraint: ">=1.0"},
	})

	expected := []MissingRequirement{
		{Requirement: "Goals", ActualVersion: "", RequiredVersion: ">=1.0", CausedBy: ">=1.0"},
	}
	assert.Equal(t, expected, missing)
	src.AssertExpectations(t)
}

func TestEvaluator_GetMissingVersionsMethod(t *testing.T) {
	e := NewEvaluator(nil)
	assert.Equal(t, []string{"<2.0.0"}, e.GetMissingVersions("2.5.0", ">=1.0.0,<2.0.0"))
}

func TestEvaluator_HasDependencyToDisabledPlugin(t *testing.T) {
	e := NewEvaluator(testRegistry())

	assert.False(t, e.HasDependencyToDisabledPlugin(nil))
	assert.False(t, e.HasDependencyToDisabledPlugin(Requires{}))
	assert.False(t, e.HasDependencyToDisabledPlugin(Requires{{Name: "host", Constraint: "*"}, {Name: "runtime", Constraint: "*"}}))
	assert.False(t, e.HasDependencyToDisabledPlugin(Requires{{Name: "HOST", Constraint: ">=99"}, {Name: "Runtime", Constraint: "<0"}}))
	assert.False(t, e.HasDependencyToDisabledPlugin(Requires{{Name: "Goals", Constraint: ">=99"}}), "versions are not checked")
	assert.True(t, e.HasDependencyToDisabledPlugin(Requires{{Name: "SomePlugin", Constraint: "*"}}))
	assert.True(t, e.HasDependencyToDisabledPlugin(Requires{{Name: "Goals", Constraint: "*"}, {Name: "CustomAlerts", Constraint: "*"}}))
	assert.True(t, e.HasDependencyToDisabledPlugin(Requires{{Name: "Unknown", Constraint: "*"}}))
}

func TestEvaluator_HasDependencyToDisabledPlugin_ShortCircuit(t *testing.T) {
	registry := new(RegistryMock)
	registry.On("IsActivated", "Goals").Return(true).Once()
	registry.On("IsActivated", "SomePlugin").Return(false).Once()

	e := NewEvaluator(registry, WithHost("piwik", ""), WithRuntime("php", ""))
	disabled := e.HasDependencyToDisabledPlugin(Requires{
		{Name: "Piwik", Constraint: "*"},
		{Name: "Goals", Constraint: "*"},
		{Name: "PHP", Constraint: "*"},
		{Name: "SomePlugin", Constraint: "*"},
		{Name: "Later", Constraint: "*"},
	})

	assert.True(t, disabled)
	registry.AssertExpectations(t)
	registry.AssertNotCalled(t, "IsActivated", "Later")
	registry.AssertNotCalled(t, "IsActivated", "Piwik")
}

func TestRequiresFromMap(t *testing.T) {
	requires := RequiresFromMap(map[string]string{"php": ">=7", "Goals": "*", "piwik": "^3"})
	assert.Equal(t, Requires{
		{Name: "Goals", Constraint: "*"},
		{Name: "php", Constraint: ">=7"},
		{Name: "piwik", Constraint: "^3"},
	}, requires)
}
