package main

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

const (
	alignLeft  = text.AlignLeft
	alignRight = text.AlignRight
)

type tableColumn struct {
	Header string
	Align  text.Align
}

// renderTable draws rows in the rounded style with an optional title. Rows
// shorter than the header are padded with blanks; extra cells are dropped.
func renderTable(title string, columns []tableColumn, rows [][]string) string {
	if len(columns) == 0 {
		return ""
	}
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.SetTitle(title)

	header := make(table.Row, 0, len(columns))
	configs := make([]table.ColumnConfig, 0, len(columns))
	for i, col := range columns {
		header = append(header, col.Header)
		configs = append(configs, table.ColumnConfig{Number: i + 1, Align: col.Align, AlignHeader: alignLeft})
	}
	tw.AppendHeader(header)
	tw.SetColumnConfigs(configs)

	for _, cells := range rows {
		row := make(table.Row, len(columns))
		for i := range row {
			row[i] = ""
			if i < len(cells) {
				row[i] = cells[i]
			}
		}
		tw.AppendRow(row)
	}
	return tw.Render()
}
