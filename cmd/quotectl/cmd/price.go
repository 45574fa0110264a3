package cmd

import (
	"fmt"
	"io"
	"math"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v2"

	"github.com/Simplici0/scanquote/internal/pricing"
	"github.com/Simplici0/scanquote/internal/quotes"
)

func newPriceCmd(a *app) *cobra.Command {
	var (
		format string
		adjust float64
	)
	cmd := &cobra.Command{
		Use:   "price <request.yaml>",
		Short: "Price a quote request file",
		Long: `Price a quote request described in YAML. Use "-" to read from stdin.

The file holds one submission:

  mode: standard
  standard:
    areas:
      - name: HQ
        building_type: office
        size: 50000
        lod: "300"
        scope: full
        disciplines: [{code: architecture}, {code: mep}]
    travel: {origin: WOODSTOCK, distance_miles: 40}
    payment_terms: standard
  adjustment_percent: 0

A landscape area with a boundary polygon and no size is sized from the polygon.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sub, err := readSubmission(cmd.InOrStdin(), args[0])
			if err != nil {
				return err
			}
			if sub.Standard != nil {
				fillBoundaryAcres(sub.Standard)
			}
			if cmd.Flags().Changed("adjust") {
				sub.AdjustmentPercent = adjust
			}

			svc, err := a.service()
			if err != nil {
				return err
			}
			priced, err := svc.Price(cmd.Context(), sub)
			if err != nil {
				return err
			}
			return writePriced(cmd.OutOrStdout(), format, priced)
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", formatTable, "output format (table, json)")
	cmd.Flags().Float64Var(&adjust, "adjust", 0, "price adjustment percent, replacing the file's value")
	return cmd
}

func readSubmission(stdin io.Reader, path string) (quotes.Submission, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return quotes.Submission{}, fmt.Errorf("read request: %w", err)
	}

	var sub quotes.Submission
	if err := yaml.UnmarshalStrict(data, &sub); err != nil {
		return quotes.Submission{}, fmt.Errorf("parse request %s: %w", path, err)
	}
	return sub, nil
}

// fillBoundaryAcres sizes landscape areas drawn as a polygon, to the hundredth of an acre.
func fillBoundaryAcres(req *pricing.Request) {
	for i := range req.Areas {
		a := &req.Areas[i]
		if a.Kind == pricing.KindLandscape && a.Size == 0 && len(a.Boundary) >= 3 {
			a.Size = math.Round(a.AcresFromBoundary()*100) / 100
		}
	}
}
