package market

import (
	"fmt"
	"io"
	"time"

	"github.com/olekukonko/tablewriter"
)

// WriteReport renders the pair snapshots as a status table
func WriteReport(w io.Writer, snapshots []PairSnapshot, now time.Time) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Pair", "Price", "Volatility", "Samples", "Last Alert"})

	for _, snapshot := range snapshots {
		lastAlert := "Never"
		if !snapshot.LastAlert.IsZero() {
			lastAlert = fmt.Sprintf("%ds ago", int(now.Sub(snapshot.LastAlert).Seconds()))
		}

		table.Append([]string{
			snapshot.Pair,
			fmt.Sprintf("%.4f", snapshot.Price),
			fmt.Sprintf("%.4f", snapshot.Volatility),
			fmt.Sprintf("%d", snapshot.Samples),
			lastAlert,
		})
	}

	table.SetColumnAlignment([]int{
		tablewriter.ALIGN_LEFT,
		tablewriter.ALIGN_RIGHT,
		tablewriter.ALIGN_RIGHT,
		tablewriter.ALIGN_RIGHT,
		tablewriter.ALIGN_RIGHT,
	})
	table.Render()
}
