package main

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/tendant/simple-photolist/internal/photo"
)

type columnAlignment int

const (
	alignLeft columnAlignment = iota
	alignRight
)

func renderTable(headers []string, rows [][]string, aligns []columnAlignment) string {
	columns := len(headers)
	if columns == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, columns)
	for i := 0; i < columns; i++ {
		header[i] = headers[i]
	}
	tw.AppendHeader(header)

	for _, row := range rows {
		r := make(table.Row, columns)
		for i := 0; i < columns; i++ {
			if i < len(row) {
				r[i] = row[i]
			} else {
				r[i] = ""
			}
		}
		tw.AppendRow(r)
	}

	columnConfigs := make([]table.ColumnConfig, 0, columns)
	for i := 0; i < columns; i++ {
		align := text.AlignLeft
		if i < len(aligns) && aligns[i] == alignRight {
			align = text.AlignRight
		}
		columnConfigs = append(columnConfigs, table.ColumnConfig{
			Number:      i + 1,
			Align:       align,
			AlignHeader: text.AlignLeft,
		})
	}
	tw.SetColumnConfigs(columnConfigs)

	return tw.Render()
}

// renderSummary tabulates the final state of every record.
func renderSummary(records []*photo.Record, colorize bool) string {
	headers := []string{"#", "Name", "State", "Downloaded", "Thumbnail"}
	aligns := []columnAlignment{alignRight, alignLeft, alignLeft, alignRight, alignLeft}

	rows := make([][]string, 0, len(records))
	counts := make(map[photo.State]int)
	for _, r := range records {
		s := r.Snapshot()
		counts[s.State]++
		rows = append(rows, []string{
			strconv.Itoa(s.ID),
			s.Name,
			stateLabel(s, colorize),
			sizeLabel(s.RawSize),
			thumbLabel(s.Artifact),
		})
	}

	out := renderTable(headers, rows, aligns)
	return fmt.Sprintf("%s\n%d transformed, %d failed, %d pending", out,
		counts[photo.StateTransformed], counts[photo.StateFailed],
		counts[photo.StateNew]+counts[photo.StateFetched])
}

func stateLabel(s photo.Snapshot, colorize bool) string {
	label := s.State.String()
	if s.State == photo.StateFailed && s.Failure != nil {
		label = fmt.Sprintf("%s: %v", label, s.Failure)
	}
	if !colorize {
		return label
	}
	switch s.State {
	case photo.StateTransformed:
		return text.FgGreen.Sprint(label)
	case photo.StateFailed:
		return text.FgRed.Sprint(label)
	default:
		return text.FgYellow.Sprint(label)
	}
}

func sizeLabel(n int) string {
	if n == 0 {
		return "-"
	}
	return humanize.Bytes(uint64(n))
}

func thumbLabel(a *photo.Artifact) string {
	if a == nil {
		return "-"
	}
	label := fmt.Sprintf("%dx%d %s (%s)", a.Width, a.Height, a.Filter, humanize.Bytes(uint64(len(a.Data))))
	if a.Path != "" {
		label += " " + a.Path
	}
	return label
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	return isTerminal(file)
}
