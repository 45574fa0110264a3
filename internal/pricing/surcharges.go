package pricing

import (
	"sort"

	"github.com/shopspring/decimal"
)

// riskLines adds one pure-margin line per selected risk. Every premium is
// taken from the same base (discipline + travel), so selection order never
// changes the total. Repeated codes are priced once.
func (c *Calculator) riskLines(base decimal.Decimal, codes []string) ([]LineItem, error) {
	lines := make([]LineItem, 0, len(codes))
	seen := make(map[string]bool, len(codes))
	for _, code := range codes {
		if seen[code] {
			continue
		}
		seen[code] = true

		risk, err := c.rates.Risk(code)
		if err != nil {
			return nil, err
		}
		lines = append(lines, LineItem{
			Label:        "Risk — " + risk.Name + " (+" + risk.PremiumPercent.String() + "%)",
			Category:     CategoryRisk,
			ClientPrice:  percentOf(base, risk.PremiumPercent),
			InternalCost: decimal.Zero,
		})
	}
	return lines, nil
}

// serviceLines prices every service with a positive quantity. Services carry
// real labor, so their internal cost comes from the parallel internal rate.
func (c *Calculator) serviceLines(services map[string]float64) ([]LineItem, error) {
	codes := make([]string, 0, len(services))
	for code := range services {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	lines := make([]LineItem, 0, len(codes))
	for _, code := range codes {
		service, err := c.rates.Service(code)
		if err != nil {
			return nil, err
		}
		qty, err := nonNegative("quantity for service "+code, services[code])
		if err != nil {
			return nil, err
		}
		if qty.IsZero() {
			continue
		}

		label := service.Name
		if !qty.Equal(one) {
			label += " ×" + qty.String()
		}
		lines = append(lines, LineItem{
			Label:        label,
			Category:     service.Category,
			ClientPrice:  round2(service.UnitRate.Mul(qty)),
			InternalCost: round2(service.InternalRate.Mul(qty)),
		})
	}
	return lines, nil
}

// paymentTermsLine applies the terms percentage to the subtotal after risk and
// services. Zero-percent terms produce no line; negative terms are discounts.
func (c *Calculator) paymentTermsLine(base decimal.Decimal, code string) (LineItem, bool, error) {
	if code == "" {
		return LineItem{}, false, nil
	}
	term, err := c.rates.PaymentTerm(code)
	if err != nil {
		return LineItem{}, false, err
	}
	if term.Percent.IsZero() {
		return LineItem{}, false, nil
	}

	sign := "+"
	if term.Percent.IsNegative() {
		sign = ""
	}
	return LineItem{
		Label:        "Payment Terms — " + term.Name + " (" + sign + term.Percent.String() + "%)",
		Category:     CategoryPaymentTerms,
		ClientPrice:  percentOf(base, term.Percent),
		InternalCost: decimal.Zero,
		IsDiscount:   term.Percent.IsNegative(),
	}, true, nil
}
