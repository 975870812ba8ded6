package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newActiveCommand(a *app) *cobra.Command {
	var sf sourceFlags

	cmd := &cobra.Command{
		Use:   "active [dir...]",
		Short: "Check that required components are activated",
		Long: `Check that every component required by the given components is activated.
Versions are not checked.

The command exits with code 1 when a required component is not activated.`,
		Example: `  depcheck active plugins/CustomAlerts`,
		RunE: func(cmd *cobra.Command, args []string) error {
			typ, srcs, err := sf.sources(args)
			if err != nil {
				return err
			}

			evaluator, err := a.evaluator(cmd.Context(), &sf, typ, srcs)
			if err != nil {
				return err
			}

			result := activeResult{Sources: make([]activeEntry, 0, len(srcs))}
			for _, ns := range srcs {
				requires, err := ns.src.Requires(cmd.Context(), typ)
				if err != nil {
					return fmt.Errorf("%s: %w", ns.name, err)
				}
				result.Sources = append(result.Sources, activeEntry{
					Source:             ns.name,
					DisabledDependency: evaluator.HasDependencyToDisabledPlugin(requires),
				})
			}

			if err := render(cmd.OutOrStdout(), a.cfg.Output, result); err != nil {
				return err
			}
			if result.anyDisabled() {
				return ErrRequirementsMissing
			}
			return nil
		},
	}

	sf.register(cmd)

	return cmd
}
