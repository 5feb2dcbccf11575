package cli

import (
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"meterbill/backend/services/tariff-service/internal/models"
)

func newQuoteCommand(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "quote",
		Short: "Convert between consumption and money",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "kw <class> <kw>",
		Short: "Price a consumption in kW",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			kw, err := parseNumber(args[1])
			if err != nil {
				return err
			}
			calc, err := opts.calculator()
			if err != nil {
				return err
			}
			quote, err := calc.PriceConsumption(cmd.Context(), args[0], kw)
			if err != nil {
				return err
			}
			if opts.output == OutputJSON {
				return writeJSON(cmd.OutOrStdout(), quote)
			}
			return writeBreakdown(cmd.OutOrStdout(), quote.Breakdown, quote.Consumption, quote.TotalCost)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "money <class> <amount>",
		Short: "Find the consumption an amount buys",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := parseNumber(args[1])
			if err != nil {
				return err
			}
			calc, err := opts.calculator()
			if err != nil {
				return err
			}
			quote, err := calc.MoneyToKW(cmd.Context(), args[0], amount)
			if err != nil {
				return err
			}
			if opts.output == OutputJSON {
				return writeJSON(cmd.OutOrStdout(), quote)
			}
			return writeBreakdown(cmd.OutOrStdout(), quote.Breakdown, quote.TotalKW, quote.Amount)
		},
	})
	return cmd
}

func parseNumber(raw string) (float64, error) {
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q", raw)
	}
	return v, nil
}

func writeBreakdown(w io.Writer, lines []models.BreakdownLine, kw, cost float64) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "BAND\tUSAGE\tRATE\tCOST")
	for _, l := range lines {
		fmt.Fprintf(tw, "%s\t%.2f\t%s\t%.2f\n", l.Tier, l.Usage, formatNumber(l.Rate), l.Cost)
	}
	fmt.Fprintf(tw, "TOTAL\t%.2f\t\t%.2f\n", kw, cost)
	return tw.Flush()
}
