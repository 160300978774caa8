package main

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/tesla3327/literoom-sub019/bench"
)

var stageTitle = cases.Title(language.English)

// renderMeasurement prints one scenario's stage timings as a rounded
// table. All figures are milliseconds.
func renderMeasurement(w io.Writer, m bench.PipelineMeasurement) {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetStyle(table.StyleRounded)
	tw.SetTitle("%s (%dx%d, %d runs)", m.Name, m.Width, m.Height, m.Total.Count)
	tw.AppendHeader(table.Row{"Stage", "Mean", "Median", "P99", "StdDev", "Min", "Max"})

	for _, st := range m.Stages {
		tw.AppendRow(summaryRow(stageTitle.String(st.Stage), st.Summary))
	}
	tw.AppendFooter(summaryRow("Total", m.Total))

	configs := make([]table.ColumnConfig, 0, 6)
	for i := 0; i < 6; i++ {
		configs = append(configs, table.ColumnConfig{
			Number:      i + 2,
			Align:       text.AlignRight,
			AlignFooter: text.AlignRight,
			AlignHeader: text.AlignLeft,
		})
	}
	tw.SetColumnConfigs(configs)
	tw.Render()
}

func summaryRow(label string, s bench.Summary) table.Row {
	return table.Row{
		label,
		fmt.Sprintf("%.2f", s.Mean),
		fmt.Sprintf("%.2f", s.Median),
		fmt.Sprintf("%.2f", s.P99),
		fmt.Sprintf("%.2f", s.StdDev),
		fmt.Sprintf("%.2f", s.Min),
		fmt.Sprintf("%.2f", s.Max),
	}
}

func renderKeyValues(w io.Writer, title string, rows []table.Row) {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetStyle(table.StyleRounded)
	if title != "" {
		tw.SetTitle(title)
	}
	for _, row := range rows {
		tw.AppendRow(row)
	}
	tw.Render()
}
