// Package cmd provides the quotectl commands.
package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Simplici0/scanquote/internal/logging"
	"github.com/Simplici0/scanquote/internal/quotes"
	"github.com/Simplici0/scanquote/internal/ratecard"
)

// app holds the state shared by every subcommand.
type app struct {
	ratesPath string
	logLevel  string

	logger *zap.Logger
}

// Execute runs the CLI
func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "quotectl",
		Short: "Price scanning quotes from the command line",
		Long: `quotectl prices scanning quotes against a rate card without the server.

It runs the same calculator, margin gate and adjustment logic as the API,
so a quote priced here matches what the server would save.

Examples:
  quotectl price request.yaml
  quotectl price --adjust 12.5 --format json request.yaml
  quotectl tier-a --band 7000 --modeling 20000 --margin standard --origin WOODSTOCK --distance 35
  quotectl travel --origin WOODSTOCK --distance 40 --sqft 50000
  quotectl rates validate ./rates.yaml`,
		SilenceUsage:      true,
		PersistentPreRunE: a.init,
	}

	root.PersistentFlags().StringVar(&a.ratesPath, "rates", "", "rate card YAML (default is the embedded card)")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "warn", "log level (debug, info, warn, error)")

	root.AddCommand(newPriceCmd(a))
	root.AddCommand(newTierACmd(a))
	root.AddCommand(newTravelCmd(a))
	root.AddCommand(newRatesCmd(a))
	return root
}

func (a *app) init(cmd *cobra.Command, args []string) error {
	cfg := logging.DefaultConfig()
	cfg.Level = a.logLevel
	logger, err := logging.New(cfg)
	if err != nil {
		return err
	}
	a.logger = logger
	return nil
}

func (a *app) card() (ratecard.Card, error) {
	card, err := ratecard.Load(a.ratesPath)
	if err != nil {
		return ratecard.Card{}, err
	}
	a.logger.Debug("rate card loaded", zap.String("source", card.Source), zap.String("fingerprint", card.Fingerprint))
	return card, nil
}

// service returns a quote service with no store; it can price but not save.
func (a *app) service() (*quotes.Service, error) {
	card, err := a.card()
	if err != nil {
		return nil, err
	}
	return quotes.NewService(nil, card, a.logger), nil
}

// output formats
const (
	formatTable = "table"
	formatJSON  = "json"
)

func writePriced(w io.Writer, format string, priced quotes.Priced) error {
	switch format {
	case formatJSON:
		return writeJSON(w, priced)
	case formatTable:
		if priced.TierA != nil {
			fmt.Fprintf(w, "Tier A margin: %s (×%s)\n", priced.TierA.MarginName, priced.TierA.MarginMultiplier)
		}
		return quotes.WriteBreakdown(w, priced.Result, priced.Gate)
	default:
		return fmt.Errorf("unknown format %q (want %s or %s)", format, formatTable, formatJSON)
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
