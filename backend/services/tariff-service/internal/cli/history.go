package cli

import (
	"errors"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

func newHistoryCommand(opts *options) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List calculations stored by a running service",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c := opts.remote()
			if c == nil {
				return errors.New("history needs --server")
			}
			calcs, err := c.Calculations(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if opts.output == OutputJSON {
				return writeJSON(cmd.OutOrStdout(), calcs)
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "TIME\tTYPE\tMETER\tKW\tCOST")
			for _, calc := range calcs {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
					calc.Timestamp.Format(time.RFC3339),
					calc.CalculationType,
					calc.MeterType,
					optional(calc.Consumption),
					optional(calc.TotalCost, calc.Amount),
				)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum records (server default when 0)")
	return cmd
}

// optional prints the first non-nil value, or "-".
func optional(values ...*float64) string {
	for _, v := range values {
		if v != nil {
			return fmt.Sprintf("%.2f", *v)
		}
	}
	return "-"
}
