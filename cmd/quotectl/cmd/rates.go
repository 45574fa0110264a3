package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Simplici0/scanquote/internal/pricing"
	"github.com/Simplici0/scanquote/internal/ratecard"
)

func newRatesCmd(a *app) *cobra.Command {
	rates := &cobra.Command{
		Use:   "rates",
		Short: "Inspect and validate rate cards",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	validate := &cobra.Command{
		Use:   "validate [path]",
		Short: "Check a rate card file",
		Long: `Parse and validate a rate card. Without a path, the --rates card
(or the embedded default) is checked.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := a.ratesPath
			if len(args) > 0 {
				path = args[0]
			}
			card, err := ratecard.Load(path)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "ok: %s (fingerprint %s)\n", card.Source, card.Fingerprint)
			return nil
		},
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "List the codes of every rate table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			card, err := a.card()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Source: %s\nFingerprint: %s\n", card.Source, card.Fingerprint)
			margin := card.Rates.Margin()
			fmt.Fprintf(out, "Margin: floor %s%%, target %s%%\n\n", margin.FloorPercent, margin.TargetPercent)
			for _, table := range pricing.Tables {
				fmt.Fprintf(out, "%-20s %s\n", table, strings.Join(card.Rates.Codes(table), ", "))
			}
			return nil
		},
	}

	def := &cobra.Command{
		Use:   "default",
		Short: "Print the embedded default rate card",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := cmd.OutOrStdout().Write(ratecard.DefaultYAML())
			return err
		},
	}

	rates.AddCommand(validate, show, def)
	return rates
}
