package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/sells-group/lead-engine/internal/export"
	"github.com/sells-group/lead-engine/internal/lifecycle"
	"github.com/sells-group/lead-engine/internal/model"
	"github.com/sells-group/lead-engine/internal/scorer"
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

func renderCounts(pairs [][2]string) string {
	rows := make([][]string, len(pairs))
	for i, p := range pairs {
		rows[i] = []string{p[0], p[1]}
	}
	return renderTable([]string{"Metric", "Value"}, rows, []columnAlignment{alignLeft, alignRight})
}

func renderIngestResult(res lifecycle.IngestResult) string {
	return renderCounts([][2]string{
		{"received", strconv.Itoa(res.Received)},
		{"admitted", strconv.Itoa(res.Admitted)},
		{"rejected (missing name)", strconv.Itoa(res.RejectedMissingName)},
		{"rejected (quality)", strconv.Itoa(res.RejectedQuality)},
		{"rejected (incomplete)", strconv.Itoa(res.RejectedIncomplete)},
		{"duplicates", strconv.Itoa(res.Duplicates)},
	})
}

func renderRescoreResult(res lifecycle.RescoreResult) string {
	pairs := [][2]string{
		{"strategy", string(res.Strategy)},
		{"leads", strconv.Itoa(res.Total)},
		{"mean score", fmt.Sprintf("%.1f", res.MeanScore)},
	}
	for _, c := range model.Categories {
		pairs = append(pairs, [2]string{string(c), strconv.Itoa(res.Categories[c])})
	}
	return renderCounts(pairs)
}

// writeSummary renders a pool summary as a table or as indented JSON.
func writeSummary(w io.Writer, s lifecycle.Summary, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(s)
	case "table", "":
	default:
		return fmt.Errorf("unknown format %q (want table or json)", format)
	}

	cats := make([][]string, 0, len(model.Categories))
	for _, c := range model.Categories {
		info, _ := scorer.LookupCategory(c)
		cats = append(cats, []string{info.Label, strconv.Itoa(s.Categories[c])})
	}
	fmt.Fprintf(w, "Leads: %d  Mean score: %.1f\n", s.Total, s.MeanScore) //nolint:errcheck

	fmt.Fprintln(w, renderTable([]string{"Category", "Count"}, cats, []columnAlignment{alignLeft, alignRight})) //nolint:errcheck

	top := make([][]string, len(s.Top))
	for i := range s.Top {
		l := &s.Top[i]
		top[i] = []string{
			strconv.Itoa(i + 1),
			l.Name,
			strconv.Itoa(l.TotalScore),
			string(l.ScoreCategory),
			l.Source,
			model.Deref(l.Location),
		}
	}
	_, err := fmt.Fprintln(w, renderTable(
		[]string{"#", "Name", "Score", "Category", "Source", "Location"},
		top,
		[]columnAlignment{alignRight, alignLeft, alignRight},
	))
	return err
}

func renderOutcomes(outcomes []export.Outcome) string {
	rows := make([][]string, len(outcomes))
	for i, o := range outcomes {
		status := "ok"
		if !o.OK() {
			status = "failed: " + o.Err.Error()
		}
		rows[i] = []string{
			o.Target,
			strconv.Itoa(o.Result.Exported),
			strconv.Itoa(o.Result.Created),
			strconv.Itoa(o.Result.Updated),
			strconv.Itoa(o.Result.Failed),
			o.Result.Location,
			status,
		}
	}
	return renderTable(
		[]string{"Target", "Exported", "Created", "Updated", "Failed", "Location", "Status"},
		rows,
		[]columnAlignment{alignLeft, alignRight, alignRight, alignRight, alignRight},
	)
}
