package commands

import (
	"github.com/spf13/cobra"

	"github.com/dephub/dephub-requirements/dephub"
	"github.com/dephub/dephub-requirements/providers/versioneer"
)

func newMatchCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "match <version> <expression>",
		Short: "List the constraint clauses a version does not satisfy",
		Long: `Evaluate a version constraint expression (comma separated clauses) against a
version and list the clauses it does not satisfy.

The command exits with code 1 when any clause is not satisfied.`,
		Example: `  depcheck match 2.5.0 ">=1.0.0,<2.0.0"
  depcheck match 1.4.9 "^1.0.0" -o json`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			version, expression := args[0], args[1]

			for _, err := range versioneer.ParseExpression(expression).Errors() {
				a.logger.Warn().Err(err).Msg("Constraint clause never matches")
			}

			result := matchResult{
				Version:    version,
				Expression: expression,
				Missing:    dephub.GetMissingVersions(version, expression),
			}

			if err := render(cmd.OutOrStdout(), a.cfg.Output, result); err != nil {
				return err
			}
			if len(result.Missing) > 0 {
				return ErrRequirementsMissing
			}
			return nil
		},
	}

	return cmd
}
