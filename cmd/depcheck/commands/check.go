package commands

import (
	"context"
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/dephub/dephub-requirements/dephub"
	"github.com/dephub/dephub-requirements/providers/api/registry"
)

// sourceFlags selects the dependency sources of check and active.
type sourceFlags struct {
	typ  string
	git  string
	ref  string
	lock bool
}

func (sf *sourceFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&sf.typ, "type", "t", string(dephub.ManifestType), "manifest type (plugin, composer)")
	cmd.Flags().StringVar(&sf.git, "git", "", "read the manifest from a GitHub repository (e.g. git@github.com:vendor/plugin.git)")
	cmd.Flags().StringVar(&sf.ref, "ref", "", "commit, branch or tag of the --git repository")
	cmd.Flags().BoolVar(&sf.lock, "lock", false, "register the locked packages (composer.lock) as activated components")
}

// namedSource is a dependency source and its display name.
type namedSource struct {
	name string
	src  dephub.DependencySource
}

// sources builds the dependency sources of the command arguments
// (component directories, the current directory by default).
func (sf *sourceFlags) sources(args []string) (dephub.DepType, []namedSource, error) {
	typ, err := dephub.ParseDepType(sf.typ)
	if err != nil {
		return "", nil, err
	}

	if sf.git != "" {
		if len(args) > 0 {
			return "", nil, fmt.Errorf("directories can not be combined with --git")
		}
		src, err := dephub.NewGitSource(http.DefaultClient, sf.git, sf.ref)
		if err != nil {
			return "", nil, err
		}
		return typ, []namedSource{{name: sf.git, src: src}}, nil
	}

	if len(args) == 0 {
		args = []string{"."}
	}
	result := make([]namedSource, 0, len(args))
	for _, dir := range args {
		result = append(result, namedSource{name: dir, src: dephub.NewDirSource(dir)})
	}
	return typ, result, nil
}

// evaluator builds an Evaluator over the configured components, the remote
// registry snapshot (if configured) and the locked packages of srcs (with --lock).
func (a *app) evaluator(ctx context.Context, sf *sourceFlags, typ dephub.DepType, srcs []namedSource) (*dephub.Evaluator, error) {
	reg := a.cfg.ComponentRegistry()
	opts := a.cfg.EvaluatorOptions()

	u, err := a.cfg.RegistryURL()
	if err != nil {
		return nil, fmt.Errorf("invalid registry url: %w", err)
	}
	if u != nil {
		cl, err := registry.NewClient(nil, u)
		if err != nil {
			return nil, err
		}
		remote, platform, err := cl.Snapshot(ctx)
		if err != nil {
			return nil, err
		}

		a.logger.Debug().
			Str("registry", u.String()).
			Int("components", len(remote.Names())).
			Msg("Loaded remote registry snapshot")

		for _, info := range remote.Infos() {
			reg.Register(info)
		}
		// Configured versions win over the remote ones.
		if a.cfg.Host.Version == "" {
			opts = append(opts, dephub.WithHost(a.cfg.Host.Name, platform.Host.Version))
		}
		if a.cfg.Runtime.Version == "" {
			opts = append(opts, dephub.WithRuntime(a.cfg.Runtime.Name, platform.Runtime.Version))
		}
	}

	if sf.lock {
		// Locked package names are used verbatim (e.g. 'vendor/package').
		opts = append(opts, dephub.WithNameNormalizer(func(name string) string { return name }))
		for _, ns := range srcs {
			installed, err := ns.src.Installed(ctx, typ)
			if err != nil {
				return nil, fmt.Errorf("unable to read %s installed packages: %w", ns.name, err)
			}
			for _, info := range installed {
				reg.Register(info)
			}
		}
	}

	return dephub.NewEvaluator(reg, append(opts, dephub.WithLogger(a.logger))...), nil
}

func newCheckCommand(a *app) *cobra.Command {
	var sf sourceFlags

	cmd := &cobra.Command{
		Use:   "check [dir...]",
		Short: "Check the requirements of components",
		Long: `Check the requirements declared in component manifests.

Every requirement whose current version does not satisfy the version constraint
is reported with the failing constraint clauses. Requirements on components
that are not activated are reported too.

The command exits with code 1 when any requirement is not met.`,
		Example: `  # Check the component in the current directory
  depcheck check

  # Check several components against host version 3.2.0
  DEPCHECK_HOST_VERSION=3.2.0 depcheck check plugins/Goals plugins/CustomAlerts

  # Check a composer project with its locked packages
  depcheck check --type composer --lock -o json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			typ, srcs, err := sf.sources(args)
			if err != nil {
				return err
			}

			evaluator, err := a.evaluator(cmd.Context(), &sf, typ, srcs)
			if err != nil {
				return err
			}
			checker := dephub.NewChecker(evaluator)

			result := checkResult{Reports: make([]sourceReport, 0, len(srcs))}
			for _, ns := range srcs {
				a.logger.Info().
					Str("source", ns.name).
					Str("type", string(typ)).
					Msg("Checking requirements")

				report, err := checker.Check(cmd.Context(), ns.src, typ)
				if err != nil {
					return fmt.Errorf("%s: %w", ns.name, err)
				}
				result.Reports = append(result.Reports, sourceReport{Source: ns.name, Report: *report})
			}

			if err := render(cmd.OutOrStdout(), a.cfg.Output, result); err != nil {
				return err
			}
			if !result.satisfied() {
				return ErrRequirementsMissing
			}
			return nil
		},
	}

	sf.register(cmd)

	return cmd
}
