package cmd

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/Simplici0/scanquote/internal/pricing"
	"github.com/Simplici0/scanquote/internal/quotes"
)

func newTravelCmd(a *app) *cobra.Command {
	var (
		travel pricing.TravelConfig
		custom float64
		sqft   float64
		format string
	)
	cmd := &cobra.Command{
		Use:   "travel",
		Short: "Preview the travel cost for a dispatch origin",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("custom") {
				travel.CustomCost = &custom
			}
			if sqft < 0 {
				return &pricing.InvalidInputError{Field: "aggregate sqft", Reason: "must not be negative"}
			}
			card, err := a.card()
			if err != nil {
				return err
			}
			preview, err := pricing.NewCalculator(card.Rates).TravelPreview(travel, decimal.NewFromFloat(sqft))
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			switch format {
			case formatJSON:
				return writeJSON(out, preview)
			case formatTable:
			default:
				return fmt.Errorf("unknown format %q (want %s or %s)", format, formatTable, formatJSON)
			}
			fmt.Fprintf(out, "Origin: %s\n", travel.Origin)
			if preview.IsCustom {
				fmt.Fprintf(out, "Travel: %s (custom)\n", quotes.Money(preview.Cost))
				return nil
			}
			if travel.Origin != pricing.FlyOut {
				fmt.Fprintf(out, "Base fee: %s\n", quotes.Money(preview.BaseFee))
				fmt.Fprintf(out, "Billable miles: %s\n", preview.BillableMiles)
			}
			fmt.Fprintf(out, "Travel: %s\n", quotes.Money(preview.Cost))
			return nil
		},
	}
	cmd.Flags().StringVar(&travel.Origin, "origin", "", "dispatch origin, or "+pricing.FlyOut)
	cmd.Flags().Float64Var(&travel.DistanceMiles, "distance", 0, "distance from the origin in miles")
	cmd.Flags().Float64Var(&sqft, "sqft", 0, "aggregate equivalent square footage of the project")
	cmd.Flags().Float64Var(&custom, "custom", 0, "custom travel cost, replacing the computed one")
	cmd.Flags().StringVarP(&format, "format", "f", formatTable, "output format (table, json)")
	_ = cmd.MarkFlagRequired("origin")
	return cmd
}
