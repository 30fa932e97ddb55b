package export

import (
	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/lead-engine/internal/model"
)

// Sheet names of an exported workbook, in order.
const (
	SheetLeads        = "Leads"
	SheetPlatforms    = "Platform Stats"
	SheetScores       = "Score Distribution"
	SheetIndustries   = "Top Industries"
	SheetContactStats = "Contact Info Stats"
	SheetPainPoints   = "Top Pain Points"
)

const topN = 10

// WriteXLSX writes the leads sheet followed by the summary sheets.
func WriteXLSX(path string, leads []model.Lead) error {
	f := xlsx.NewFile()
	header := headerStyle()

	table, err := Table(leads)
	if err != nil {
		return err
	}
	sheet, err := f.AddSheet(SheetLeads)
	if err != nil {
		return eris.Wrap(err, "xlsx: add leads sheet")
	}
	for i, rec := range table {
		row := sheet.AddRow()
		for _, v := range rec {
			cell := row.AddCell()
			cell.SetString(v)
			if i == 0 {
				cell.SetStyle(header)
			}
		}
	}

	summaries := []struct {
		name, label, value string
		counts             []Count
	}{
		{SheetPlatforms, "Platform", "Count", PlatformCounts(leads)},
		{SheetScores, "Score Range", "Count", ScoreDistribution(leads)},
		{SheetIndustries, "Industry", "Count", TopIndustries(leads, topN)},
		{SheetContactStats, "Field", "Count", ContactStats(leads)},
		{SheetPainPoints, "Pain Point", "Count", TopPainPoints(leads, topN)},
	}
	for _, s := range summaries {
		if err := addCountSheet(f, s.name, s.label, s.value, s.counts, header); err != nil {
			return err
		}
	}

	return eris.Wrapf(f.Save(path), "xlsx: save %s", path)
}

func addCountSheet(f *xlsx.File, name, label, value string, counts []Count, header *xlsx.Style) error {
	sheet, err := f.AddSheet(name)
	if err != nil {
		return eris.Wrapf(err, "xlsx: add sheet %q", name)
	}
	row := sheet.AddRow()
	for _, h := range []string{label, value} {
		cell := row.AddCell()
		cell.SetString(h)
		cell.SetStyle(header)
	}
	for _, c := range counts {
		row := sheet.AddRow()
		row.AddCell().SetString(c.Label)
		row.AddCell().SetInt(c.N)
	}
	return nil
}

func headerStyle() *xlsx.Style {
	s := xlsx.NewStyle()
	s.Font.Bold = true
	s.Font.Color = "FFFFFFFF"
	s.Fill = *xlsx.NewFill("solid", "FF366092", "FF366092")
	s.ApplyFont = true
	s.ApplyFill = true
	return s
}
