package sink

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/matzehuels/planeseg/pkg/render"
	"github.com/matzehuels/planeseg/pkg/segmentation"
)

// Sheet names of the XLSX workbook.
const (
	SheetSummary   = "Summary"
	SheetRegions   = "Regions"
	SheetItems     = "Items"
	SheetAdjacency = "Adjacency"
)

const (
	defaultSheet    = "Sheet1"
	regionsColWidth = 14
)

// RenderXLSX produces a workbook with a summary sheet, one row per region,
// one row per item with its region label, and the region adjacency list.
func RenderXLSX(s segmentation.Segmentation) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(defaultSheet, SheetSummary); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	for _, name := range []string{SheetRegions, SheetItems, SheetAdjacency} {
		if _, err := f.NewSheet(name); err != nil {
			return nil, fmt.Errorf("new sheet %s: %w", name, err)
		}
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("style: %w", err)
	}

	th := s.Thresholds
	summary := [][]any{
		{"Source", s.Source},
		{"Kind", s.Kind},
		{"Items", s.ItemCount},
		{"Regions", len(s.Regions)},
		{"Unassigned", len(s.Unassigned)},
		{"Coverage", s.Coverage()},
		{"Distance threshold", th.Distance},
		{"Angle threshold (deg)", th.Angle},
		{"Min region size", th.MinRegionSize},
	}
	if err := writeRows(f, SheetSummary, summary); err != nil {
		return nil, err
	}
	if err := f.SetColStyle(SheetSummary, "A", bold); err != nil {
		return nil, fmt.Errorf("style: %w", err)
	}

	regions := [][]any{{"Region", "Items", "Area", "Nx", "Ny", "Nz", "Residual", "Color"}}
	for _, r := range s.Regions {
		row := []any{r.ID, len(r.Items), r.Area}
		if r.Plane != nil {
			row = append(row, r.Plane.Normal[0], r.Plane.Normal[1], r.Plane.Normal[2], r.Plane.Residual)
		} else {
			row = append(row, nil, nil, nil, nil)
		}
		regions = append(regions, append(row, render.Color(r.ID).Hex()))
	}
	if err := writeRows(f, SheetRegions, regions); err != nil {
		return nil, err
	}
	if err := f.SetColWidth(SheetRegions, "A", "H", regionsColWidth); err != nil {
		return nil, fmt.Errorf("column width: %w", err)
	}

	items := [][]any{{"Item", "Region"}}
	for it, id := range s.Labels() {
		var label any = id
		if id == segmentation.Unlabeled {
			label = "unassigned"
		}
		items = append(items, []any{it, label})
	}
	if err := writeRows(f, SheetItems, items); err != nil {
		return nil, err
	}

	adjacency := [][]any{{"Region A", "Region B", "Weight"}}
	for _, e := range s.Adjacency {
		adjacency = append(adjacency, []any{e.A, e.B, e.Weight})
	}
	if err := writeRows(f, SheetAdjacency, adjacency); err != nil {
		return nil, err
	}

	for _, sheet := range []string{SheetRegions, SheetItems, SheetAdjacency} {
		if err := f.SetRowStyle(sheet, 1, 1, bold); err != nil {
			return nil, fmt.Errorf("style: %w", err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write xlsx: %w", err)
	}
	return buf.Bytes(), nil
}

func writeRows(f *excelize.File, sheet string, rows [][]any) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("%s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}
