package render

import (
	"fmt"
	"io"

	"cryptodash/internal/model"
)

// Console writes each published cycle to a writer, typically stdout.
// It is the in-process stand-in for the dashboard UI.
type Console struct {
	Out io.Writer
	// TailRows caps the candle table; zero means 10.
	TailRows int
}

// Publish renders the snapshot panel and the latest candles.
func (c *Console) Publish(snap *model.MarketSnapshot, series *model.Series) {
	rows := c.TailRows
	if rows == 0 {
		rows = 10
	}
	fmt.Fprintln(c.Out, FormatSnapshot(snap))
	fmt.Fprintln(c.Out, FormatSeriesTail(series, rows))
}
