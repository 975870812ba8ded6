package dephub

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/dephub/dephub-requirements/providers/components"
)

// Reserved requirement names used unless configured otherwise.
const (
	DefaultHostName    = "host"
	DefaultRuntimeName = "runtime"
)

var (
	ErrVersionUnknown  = errors.New("version unknown")
	ErrRegistryFailure = errors.New("component registry failure")
)

// VersionSource resolves a requirement name into its current version.
type VersionSource interface {
	// Resolve returns the current version of the named dependency, or an error
	// when it can not be determined.
	Resolve(name string) (string, error)
}

// NameNormalizer converts a requirement name into the registry naming convention.
type NameNormalizer func(name string) string

// UpperFirst is the default NameNormalizer: it upper-cases the first letter ('goals' => 'Goals').
func UpperFirst(name string) string {
	r, size := utf8.DecodeRuneInString(name)
	if r == utf8.RuneError {
		return name
	}
	return string(unicode.ToUpper(r)) + name[size:]
}

// RuntimeVersion returns the version of the running Go toolchain (e.g. '1.22.3'),
// or an empty string for development builds.
func RuntimeVersion() string {
	return toolchainVersion(runtime.Version())
}

// toolchainVersion strips the 'go' prefix and any experiment suffix from a
// runtime.Version() value.
func toolchainVersion(raw string) string {
	fields := strings.Fields(raw)
	if len(fields) == 0 || !strings.HasPrefix(fields[0], "go") {
		return ""
	}
	return strings.TrimPrefix(fields[0], "go")
}

// RegistrySource is the default VersionSource. It resolves the reserved host
// and runtime names from configured versions and every other name through a
// component registry.
//
// Reserved names are matched case-insensitively, independently from the
// registry naming convention.
type RegistrySource struct {
	registry       components.Registry
	reserved       reservedNames
	hostVersion    string
	runtimeVersion string
	normalize      NameNormalizer
}

// reservedNames holds the lower-cased host and runtime requirement names.
type reservedNames struct {
	host, runtime string
}

func newReservedNames(host, runtime string) reservedNames {
	return reservedNames{host: strings.ToLower(host), runtime: strings.ToLower(runtime)}
}

// contains reports whether name is the host or runtime name, ignoring case.
func (rn reservedNames) contains(name string) bool {
	lower := strings.ToLower(name)
	return lower == rn.host || lower == rn.runtime
}

// NewRegistrySource constructs a RegistrySource. Without options the host
// version is unknown and the runtime version is the running toolchain version.
//
// Only the WithHost, WithRuntime and WithNameNormalizer options apply.
func NewRegistrySource(registry components.Registry, opts ...Option) *RegistrySource {
	return newRegistrySource(registry, newEvaluatorConfig(opts))
}

func newRegistrySource(registry components.Registry, cfg evaluatorConfig) *RegistrySource {
	if registry == nil {
		registry = components.NewMemoryRegistry()
	}
	return &RegistrySource{
		registry:       registry,
		reserved:       newReservedNames(cfg.hostName, cfg.runtimeName),
		hostVersion:    cfg.hostVersion,
		runtimeVersion: cfg.runtimeVersion,
		normalize:      cfg.normalize,
	}
}

// Resolve returns the current version of the named dependency.
//
// Registry errors and panics are returned as errors wrapping ErrRegistryFailure.
func (rs *RegistrySource) Resolve(name string) (string, error) {
	switch strings.ToLower(name) {
	case rs.reserved.host:
		return knownVersion(name, rs.hostVersion)
	case rs.reserved.runtime:
		return knownVersion(name, rs.runtimeVersion)
	}
	return rs.componentVersion(name)
}

func (rs *RegistrySource) componentVersion(name string) (version string, err error) {
	defer func() {
		if r := recover(); r != nil {
			version, err = "", fmt.Errorf("%w: %q panicked: %v", ErrRegistryFailure, name, r)
		}
	}()

	if !containsName(rs.registry.Names(), name) {
		return "", fmt.Errorf("%w: %q", components.ErrComponentNotFound, name)
	}
	if !rs.registry.IsLoaded(name) {
		return "", fmt.Errorf("%w: %q", components.ErrComponentNotLoaded, name)
	}

	c, err := rs.registry.Load(rs.normalize(name))
	if err != nil {
		return "", fmt.Errorf("%w: unable to load %q: %w", ErrRegistryFailure, name, err)
	}
	if c == nil {
		return "", fmt.Errorf("%w: %q", ErrVersionUnknown, name)
	}

	return knownVersion(name, c.Version())
}

func knownVersion(name, version string) (string, error) {
	if strings.TrimSpace(version) == "" {
		return "", fmt.Errorf("%w: %q", ErrVersionUnknown, name)
	}
	return version, nil
}

func containsName(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}
