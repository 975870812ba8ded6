package dephub

import (
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/dephub/dephub-requirements/providers/components"
	"github.com/dephub/dephub-requirements/providers/versioneer"
)

// Requirement represents one declared dependency and its version constraint
// expression (e.g. {"host", ">=3.0.0,<4.0.0"}).
type Requirement struct {
	Name       string `json:"name" yaml:"name"`
	Constraint string `json:"constraint" yaml:"constraint"`
}

// Requires is an ordered list of requirements, evaluated in slice order.
type Requires []Requirement

// RequiresFromMap converts a name => constraint map into Requires ordered by name.
func RequiresFromMap(m map[string]string) Requires {
	result := make(Requires, 0, len(m))
	for name, constraint := range m {
		result = append(result, Requirement{Name: name, Constraint: constraint})
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Name < result[j].Name
	})
	return result
}

// MissingRequirement reports a requirement the current configuration does not meet.
type MissingRequirement struct {
	Requirement string `json:"requirement" yaml:"requirement"`
	// ActualVersion is empty when the current version is unknown.
	ActualVersion   string `json:"actualVersion" yaml:"actualVersion"`
	RequiredVersion string `json:"requiredVersion" yaml:"requiredVersion"`
	// CausedBy lists the failing clauses joined with ", " (the whole
	// RequiredVersion when ActualVersion is empty).
	CausedBy string `json:"causedBy" yaml:"causedBy"`
}

// Option configures an Evaluator.
type Option func(*evaluatorConfig)

type evaluatorConfig struct {
	hostName       string
	hostVersion    string
	runtimeName    string
	runtimeVersion string
	normalize      NameNormalizer
	source         VersionSource
	logger         zerolog.Logger
}

func newEvaluatorConfig(opts []Option) evaluatorConfig {
	cfg := evaluatorConfig{
		hostName:       DefaultHostName,
		runtimeName:    DefaultRuntimeName,
		runtimeVersion: RuntimeVersion(),
		normalize:      UpperFirst,
		logger:         zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// WithHost sets the reserved host name and the host platform version.
// An empty name keeps the default one.
func WithHost(name, version string) Option {
	return func(c *evaluatorConfig) {
		if name != "" {
			c.hostName = name
		}
		c.hostVersion = version
	}
}

// WithRuntime sets the reserved runtime name and overrides the runtime version.
// Empty arguments keep the defaults (the running Go toolchain version).
func WithRuntime(name, version string) Option {
	return func(c *evaluatorConfig) {
		if name != "" {
			c.runtimeName = name
		}
		if version != "" {
			c.runtimeVersion = version
		}
	}
}

// WithNameNormalizer sets the function used to convert names before loading components.
func WithNameNormalizer(fn NameNormalizer) Option {
	return func(c *evaluatorConfig) {
		if fn != nil {
			c.normalize = fn
		}
	}
}

// WithVersionSource replaces the registry based VersionSource.
func WithVersionSource(src VersionSource) Option {
	return func(c *evaluatorConfig) {
		c.source = src
	}
}

// WithLogger sets the logger used to report unresolvable versions.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *evaluatorConfig) {
		c.logger = logger
	}
}

// Evaluator validates declared requirements against the current host, runtime
// and component versions.
//
// An Evaluator is immutable: its methods may be called concurrently as long as
// the registry and version source allow concurrent reads.
type Evaluator struct {
	source   VersionSource
	registry components.Registry
	reserved reservedNames
	logger   zerolog.Logger
}

// NewEvaluator constructs an Evaluator resolving component versions and
// activation states through registry. A nil registry is treated as empty.
func NewEvaluator(registry components.Registry, opts ...Option) *Evaluator {
	if registry == nil {
		registry = components.NewMemoryRegistry()
	}

	cfg := newEvaluatorConfig(opts)

	e := &Evaluator{
		source:   cfg.source,
		registry: registry,
		reserved: newReservedNames(cfg.hostName, cfg.runtimeName),
		logger:   cfg.logger,
	}
	if e.source == nil {
		e.source = newRegistrySource(registry, cfg)
	}

	return e
}

// GetMissingDependencies returns a report for every requirement whose current
// version does not satisfy its constraint, in requires order.
//
// It never fails: unknown versions are reported with an empty ActualVersion.
func (e *Evaluator) GetMissingDependencies(requires Requires) []MissingRequirement {
	missing := []MissingRequirement{}

	for _, req := range requires {
		currentVersion := e.resolveCurrentVersion(req.Name)
		missingVersions := GetMissingVersions(currentVersion, req.Constraint)

		if len(missingVersions) > 0 {
			missing = append(missing, MissingRequirement{
				Requirement:     req.Name,
				ActualVersion:   currentVersion,
				RequiredVersion: req.Constraint,
				CausedBy:        strings.Join(missingVersions, ", "),
			})
		}
	}

	return missing
}

// GetMissingVersions is the Evaluator counterpart of the package level GetMissingVersions.
func (e *Evaluator) GetMissingVersions(currentVersion, requiredVersion string) []string {
	return GetMissingVersions(currentVersion, requiredVersion)
}

// HasDependencyToDisabledPlugin reports whether any non reserved requirement
// refers to a component that is not activated. Versions are not checked.
func (e *Evaluator) HasDependencyToDisabledPlugin(requires Requires) bool {
	for _, req := range requires {
		if e.reserved.contains(req.Name) {
			continue
		}
		// Everything that is not the host or the runtime is assumed to be a component.
		if !e.registry.IsActivated(req.Name) {
			return true
		}
	}

	return false
}

// CurrentVersion returns the resolved current version of name, empty when unknown.
func (e *Evaluator) CurrentVersion(name string) string {
	return e.resolveCurrentVersion(name)
}

// resolveCurrentVersion downgrades every resolution error into an unknown version.
func (e *Evaluator) resolveCurrentVersion(name string) string {
	version, err := e.source.Resolve(name)
	if err != nil {
		e.logger.Debug().
			Err(err).
			Str("requirement", name).
			Msg("Current version is unknown")
		return ""
	}
	return version
}

// GetMissingVersions returns the clauses of requiredVersion that currentVersion
// does not satisfy, in source order.
//
// An empty current version satisfies nothing: the whole requiredVersion is
// returned (or nothing if it is empty too). A current version that can not be
// parsed fails every clause but '*'.
func GetMissingVersions(currentVersion, requiredVersion string) []string {
	currentVersion = strings.TrimSpace(currentVersion)

	missingVersions := []string{}

	if currentVersion == "" {
		if requiredVersion != "" {
			missingVersions = append(missingVersions, requiredVersion)
		}
		return missingVersions
	}

	version, _ := versioneer.NewVersion(currentVersion)
	failed := versioneer.Evaluate(version, versioneer.ParseExpression(requiredVersion))

	return append(missingVersions, failed.Values()...)
}
