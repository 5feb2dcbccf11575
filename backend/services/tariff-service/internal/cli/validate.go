package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"meterbill/backend/libs/tariff"
)

func newValidateCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <file>",
		Short: "Check a schedule file without starting the service",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			table, err := tariff.LoadSchedules(args[0])
			if err != nil {
				return err
			}
			classes := table.Classes()
			if opts.output == OutputJSON {
				return writeJSON(cmd.OutOrStdout(), map[string]interface{}{
					"file":    args[0],
					"valid":   true,
					"classes": classes,
				})
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s: ok (%d classes: %s)\n", args[0], len(classes), strings.Join(classes, ", "))
			return err
		},
	}
}
