package cmd

import (
	"github.com/spf13/cobra"

	"github.com/Simplici0/scanquote/internal/pricing"
	"github.com/Simplici0/scanquote/internal/quotes"
)

func newTierACmd(a *app) *cobra.Command {
	var (
		req        quotes.TierARequest
		customScan float64
		adjust     float64
		format     string
	)
	cmd := &cobra.Command{
		Use:   "tier-a",
		Short: "Price a large project with the Tier-A formula",
		Long: `Price a Tier-A project: (scanning + modeling) × margin multiplier, plus travel.

Use --band other with --custom-scan for a scanning figure outside the fixed bands,
and --origin FLY_OUT for projects reached by air. Without --origin no travel is charged.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("custom-scan") {
				req.CustomScanningCost = &customScan
			}
			svc, err := a.service()
			if err != nil {
				return err
			}
			priced, err := svc.Price(cmd.Context(), quotes.Submission{
				Mode:              quotes.ModeTierA,
				TierA:             &req,
				AdjustmentPercent: adjust,
			})
			if err != nil {
				return err
			}
			return writePriced(cmd.OutOrStdout(), format, priced)
		},
	}
	cmd.Flags().StringVar(&req.ScanningBand, "band", "", `scanning band code, or "`+pricing.OtherBand+`"`)
	cmd.Flags().Float64Var(&customScan, "custom-scan", 0, "scanning cost when --band is other")
	cmd.Flags().Float64Var(&req.ModelingCost, "modeling", 0, "modeling cost")
	cmd.Flags().StringVar(&req.Margin, "margin", "", "margin multiplier code")
	cmd.Flags().StringVar(&req.Origin, "origin", "", "dispatch origin, or "+pricing.FlyOut)
	cmd.Flags().Float64Var(&req.DistanceMiles, "distance", 0, "distance from the origin in miles")
	cmd.Flags().Float64Var(&adjust, "adjust", 0, "price adjustment percent")
	cmd.Flags().StringVarP(&format, "format", "f", formatTable, "output format (table, json)")
	_ = cmd.MarkFlagRequired("band")
	_ = cmd.MarkFlagRequired("margin")
	return cmd
}
