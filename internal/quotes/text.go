package quotes

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"

	"github.com/Simplici0/scanquote/internal/pricing"
)

const (
	labelWidth  = 50
	amountWidth = 14
)

// WriteBreakdown renders the line items, totals and gate verdict of a priced quote.
func WriteBreakdown(w io.Writer, r pricing.Result, gate pricing.GateResult) error {
	var b strings.Builder
	rule := strings.Repeat("─", labelWidth+amountWidth+1)

	b.WriteString(rule + "\n")
	for _, item := range r.Items {
		label := item.Label
		if item.IsDiscount {
			label += " (discount)"
		}
		fmt.Fprintf(&b, "%s %s\n", padRight(truncate(label, labelWidth), labelWidth), padLeft(Money(item.ClientPrice), amountWidth))
	}
	b.WriteString(rule + "\n")
	writeRow(&b, "Subtotal", r.Subtotal)
	if !r.TotalClientPrice.Equal(r.Subtotal) {
		writeRow(&b, "Adjustments", r.TotalClientPrice.Sub(r.Subtotal))
	}
	writeRow(&b, "Total", r.TotalClientPrice)
	writeRow(&b, "Internal cost", r.TotalInternalCost)
	writeRow(&b, "Profit", r.ProfitMargin)
	b.WriteString(rule + "\n")

	fmt.Fprintf(&b, "Margin: %s%% (%s; floor %s%%, target %s%%)\n",
		gate.MarginPercent.StringFixed(1), gate.Status, gate.FloorPercent, gate.TargetPercent)
	if gate.BlockingMessage != "" {
		b.WriteString(gate.BlockingMessage + "\n")
	}
	if r.TierAEligible && r.AggregateSqft.IsPositive() {
		fmt.Fprintf(&b, "Project is %s sqft: Tier A pricing may apply.\n", r.AggregateSqft.StringFixed(0))
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// Text renders a stored version as a plain-text quote for email or chat.
func Text(q Quote, v Version) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Quote: %s\n", q.Title)
	if q.ClientName != "" {
		fmt.Fprintf(&b, "Client: %s\n", q.ClientName)
	}
	fmt.Fprintf(&b, "Version: %d (%s)\n", v.Version, v.CreatedAt.Format("2006-01-02"))
	fmt.Fprintf(&b, "Pricing: %s\n", modeName(v.Mode))
	if v.AdjustmentPercent.IsPositive() {
		fmt.Fprintf(&b, "Price adjustment: +%s%%\n", v.AdjustmentPercent)
	}
	b.WriteString("\n")

	gate := pricing.GateResult{Status: v.GateStatus, MarginPercent: v.MarginPercent}
	if v.Result.MarginTarget != nil {
		gate.TargetPercent = *v.Result.MarginTarget
	}
	b.WriteString("Line items:\n")
	for _, item := range v.Result.Items {
		fmt.Fprintf(&b, "  - %s: %s\n", item.Label, Money(item.ClientPrice))
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "Subtotal: %s\n", Money(v.Result.Subtotal))
	fmt.Fprintf(&b, "Total: %s\n", Money(v.TotalClientPrice))
	fmt.Fprintf(&b, "Margin: %s%% (%s)\n", gate.MarginPercent.StringFixed(1), gate.Status)

	if q.Notes != "" {
		fmt.Fprintf(&b, "\nNotes:\n%s\n", q.Notes)
	}
	return b.String()
}

func modeName(m Mode) string {
	if m == ModeTierA {
		return "Tier A"
	}
	return "Standard"
}

func writeRow(b *strings.Builder, label string, amount decimal.Decimal) {
	fmt.Fprintf(b, "%s %s\n", padRight(label, labelWidth), padLeft(Money(amount), amountWidth))
}

// Money formats a cent-rounded amount as $1,234.56.
func Money(d decimal.Decimal) string {
	sign := ""
	if d.IsNegative() {
		sign = "-"
	}
	return sign + "$" + humanize.FormatFloat("#,###.##", d.Abs().Round(2).InexactFloat64())
}

func truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return string(runes[:max-3]) + "..."
}

// padRight and padLeft count runes so labels with "—" or "×" stay aligned.
func padRight(s string, width int) string {
	if n := utf8.RuneCountInString(s); n < width {
		return s + strings.Repeat(" ", width-n)
	}
	return s
}

func padLeft(s string, width int) string {
	if n := utf8.RuneCountInString(s); n < width {
		return strings.Repeat(" ", width-n) + s
	}
	return s
}
