package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"meterbill/backend/services/tariff-service/internal/models"
)

func newRatesCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "rates",
		Short: "Show the rate schedule of every class",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sheet, err := loadRateSheet(cmd, opts)
			if err != nil {
				return err
			}
			if opts.output == OutputJSON {
				return writeJSON(cmd.OutOrStdout(), sheet)
			}
			return writeRateSheet(cmd.OutOrStdout(), sheet)
		},
	}
}

func loadRateSheet(cmd *cobra.Command, opts *options) (map[string]json.RawMessage, error) {
	if c := opts.remote(); c != nil {
		return c.Rates(cmd.Context())
	}
	svc, err := opts.local()
	if err != nil {
		return nil, err
	}
	data, err := json.Marshal(svc.Rates())
	if err != nil {
		return nil, err
	}
	var sheet map[string]json.RawMessage
	if err := json.Unmarshal(data, &sheet); err != nil {
		return nil, err
	}
	return sheet, nil
}

// writeRateSheet prints one row per band; flat classes get a single "all" row.
func writeRateSheet(w io.Writer, sheet map[string]json.RawMessage) error {
	classes := make([]string, 0, len(sheet))
	for class := range sheet {
		classes = append(classes, class)
	}
	sort.Strings(classes)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "CLASS\tKIND\tBAND\tRATE")
	for _, class := range classes {
		var bands []models.RateBand
		if err := json.Unmarshal(sheet[class], &bands); err == nil {
			for _, b := range bands {
				fmt.Fprintf(tw, "%s\ttiered\t%s\t%s\n", class, bandLabel(b), formatNumber(b.Rate))
			}
			continue
		}
		var flat models.FlatRate
		if err := json.Unmarshal(sheet[class], &flat); err != nil {
			return fmt.Errorf("class %s: %w", class, err)
		}
		fmt.Fprintf(tw, "%s\tflat\tall\t%s\n", class, formatNumber(flat.Rate))
	}
	return tw.Flush()
}

func bandLabel(b models.RateBand) string {
	if b.Max == nil {
		return fmt.Sprintf("%d-∞", b.Min)
	}
	return fmt.Sprintf("%d-%d", b.Min, *b.Max)
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
