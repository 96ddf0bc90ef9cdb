package render

import (
	"fmt"
	"strings"

	"cryptodash/internal/model"

	"github.com/dustin/go-humanize"
)

// FormatCurrency renders a USD amount with a magnitude suffix for
// large values.
func FormatCurrency(v float64) string {
	switch {
	case v >= 1e12:
		return fmt.Sprintf("$%.3fT", v/1e12)
	case v >= 1e9:
		return fmt.Sprintf("$%.2fB", v/1e9)
	case v >= 1e6:
		return fmt.Sprintf("$%.2fM", v/1e6)
	default:
		return "$" + humanize.CommafWithDigits(v, 2)
	}
}

// FormatQuantity renders a unit quantity (e.g. coin supply) with a
// magnitude suffix.
func FormatQuantity(v float64) string {
	switch {
	case v >= 1e6:
		return fmt.Sprintf("%.2fM", v/1e6)
	case v >= 1e3:
		return fmt.Sprintf("%.2fK", v/1e3)
	default:
		return fmt.Sprintf("%.2f", v)
	}
}

// FormatPriceChange renders a signed percentage with a direction
// arrow.
func FormatPriceChange(v float64) string {
	arrow := "↑"
	if v < 0 {
		arrow = "↓"
	}
	return fmt.Sprintf("%+.2f%% %s", v, arrow)
}

func formatOptional(ind model.Indicator, f func(float64) string) string {
	if !ind.Valid {
		return "N/A"
	}
	return f(ind.Value)
}

// FormatSnapshot renders the market-info panel for one snapshot.
func FormatSnapshot(snap *model.MarketSnapshot) string {
	var b strings.Builder
	fmt.Fprintf(&b, "=== %s | %s ===\n", snap.Symbol, snap.FetchedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "LOW 24H:  $%s\n", humanize.CommafWithDigits(snap.Low24h, 2))
	fmt.Fprintf(&b, "HIGH 24H: $%s\n", humanize.CommafWithDigits(snap.High24h, 2))
	fmt.Fprintf(&b, "1H CHANGE:  %s\n", FormatPriceChange(snap.PriceChange1h))
	fmt.Fprintf(&b, "24H CHANGE: %s\n", FormatPriceChange(snap.PriceChange24h))
	fmt.Fprintf(&b, "7D CHANGE:  %s\n", FormatPriceChange(snap.PriceChange7d))
	fmt.Fprintf(&b, "VOLUME 24H: %s\n", FormatCurrency(snap.Volume24h))
	fmt.Fprintf(&b, "MARKET CAP: %s\n", formatOptional(snap.MarketCap, FormatCurrency))
	fmt.Fprintf(&b, "CIRCULATION SUPPLY: %s\n", formatOptional(snap.CirculationSupply, FormatQuantity))
	fmt.Fprintf(&b, "MAX SUPPLY: %s\n", formatOptional(snap.MaxSupply, FormatQuantity))
	fmt.Fprintf(&b, "ALL-TIME HIGH: $%s\n", humanize.CommafWithDigits(snap.AllTimeHigh, 0))
	return b.String()
}

// FormatSeriesTail renders the most recent n candles of a series with
// their moving averages.
func FormatSeriesTail(series *model.Series, n int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Latest %s candles (%s):\n", series.Symbol, series.Interval)
	b.WriteString("time                   open        high        low         close       volume      MA20        MA50        MA200\n")
	start := len(series.Candles) - n
	if start < 0 {
		start = 0
	}
	for i := start; i < len(series.Candles); i++ {
		c := series.Candles[i]
		fmt.Fprintf(&b, "%-22s %-11.2f %-11.2f %-11.2f %-11.2f %-11.0f %-11s %-11s %-11s\n",
			c.Time.Format("2006-01-02 15:04"),
			c.Open, c.High, c.Low, c.Close, c.Volume,
			formatMA(series.MA20[i]), formatMA(series.MA50[i]), formatMA(series.MA200[i]))
	}
	return b.String()
}

func formatMA(ind model.Indicator) string {
	if !ind.Valid {
		return "-"
	}
	return fmt.Sprintf("%.2f", ind.Value)
}
