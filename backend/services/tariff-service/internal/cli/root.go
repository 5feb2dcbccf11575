// Package cli implements tariffctl. Quotes are computed in-process by default,
// or fetched from a running tariff service when --server is set.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"meterbill/backend/libs/logging"
	"meterbill/backend/libs/tariff"
	"meterbill/backend/services/tariff-service/internal/app"
	"meterbill/backend/services/tariff-service/internal/client"
	"meterbill/backend/services/tariff-service/internal/models"
	"meterbill/backend/services/tariff-service/internal/repository"
	"meterbill/backend/services/tariff-service/internal/service"
)

// Output formats.
const (
	OutputTable = "table"
	OutputJSON  = "json"
)

// calculator is served either by the in-process service or by client.TariffClient.
type calculator interface {
	PriceConsumption(ctx context.Context, meterType string, kw float64) (models.CostQuote, error)
	MoneyToKW(ctx context.Context, meterType string, amount float64) (models.EnergyQuote, error)
}

type options struct {
	schedules string
	server    string
	timeout   time.Duration
	output    string
	verbose   bool

	logger *zap.Logger
}

// NewRootCommand builds the tariffctl command tree.
func NewRootCommand() *cobra.Command {
	opts := &options{logger: zap.NewNop()}

	root := &cobra.Command{
		Use:   "tariffctl",
		Short: "Price electricity consumption against rate schedules",
		Long: `tariffctl prices consumption and prepaid amounts with the same engine the
tariff service uses.

Examples:
  tariffctl rates
  tariffctl quote kw residential 250
  tariffctl quote money commercial 1000 --output json
  tariffctl validate ./schedules.yaml
  tariffctl --server http://localhost:8085 history --limit 10`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			switch opts.output {
			case OutputTable, OutputJSON:
			default:
				return fmt.Errorf("unknown output format %q", opts.output)
			}
			level := "warn"
			if opts.verbose {
				level = "debug"
			}
			logger, err := logging.NewLogger(logging.Config{Level: level, Format: "console", Output: "stderr"})
			if err != nil {
				return err
			}
			opts.logger = logger
			return nil
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.schedules, "schedules", "", "YAML schedule file (default is the built-in table)")
	flags.StringVar(&opts.server, "server", "", "base URL of a running tariff service")
	flags.DurationVar(&opts.timeout, "timeout", 10*time.Second, "request timeout for --server")
	flags.StringVarP(&opts.output, "output", "o", OutputTable, "output format (table, json)")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug logging on stderr")

	root.AddCommand(newRatesCommand(opts))
	root.AddCommand(newQuoteCommand(opts))
	root.AddCommand(newValidateCommand(opts))
	root.AddCommand(newHistoryCommand(opts))
	return root
}

// Execute runs tariffctl with os.Args.
func Execute() error {
	return NewRootCommand().Execute()
}

func (o *options) remote() *client.TariffClient {
	if strings.TrimSpace(o.server) == "" {
		return nil
	}
	o.logger.Debug("using remote tariff service", zap.String("server", o.server))
	return client.NewTariffClient(o.server, client.NewDefaultHTTPClient(o.timeout))
}

func (o *options) table() (*tariff.Table, error) {
	table, err := app.LoadTable(o.schedules)
	if err != nil {
		return nil, err
	}
	source := strings.TrimSpace(o.schedules)
	if source == "" {
		source = "built-in"
	}
	o.logger.Debug("schedules loaded", zap.String("source", source), zap.Strings("classes", table.Classes()))
	return table, nil
}

// local builds an in-process calculator without history storage.
func (o *options) local() (*service.CalculatorService, error) {
	table, err := o.table()
	if err != nil {
		return nil, err
	}
	return service.NewCalculatorService(
		tariff.NewEngine(table),
		repository.NewMemoryCalculationRepository(),
		nil,
		0,
		o.logger,
	), nil
}

func (o *options) calculator() (calculator, error) {
	if c := o.remote(); c != nil {
		return c, nil
	}
	svc, err := o.local()
	if err != nil {
		return nil, err
	}
	return svc, nil
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
