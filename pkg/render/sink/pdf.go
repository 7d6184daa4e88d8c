package sink

import (
	"bytes"
	"fmt"

	"github.com/go-pdf/fpdf"

	"github.com/matzehuels/planeseg/pkg/render"
	"github.com/matzehuels/planeseg/pkg/segmentation"
)

// PDFOption configures PDF rendering via [RenderPDF].
type PDFOption func(*pdfRenderer)

type pdfRenderer struct {
	title   string
	diagram []byte
}

// WithPDFTitle sets the report heading. Defaults to the segmentation source.
func WithPDFTitle(title string) PDFOption { return func(r *pdfRenderer) { r.title = title } }

// WithPDFDiagram embeds a PNG image, typically the region adjacency graph,
// below the summary.
func WithPDFDiagram(png []byte) PDFOption { return func(r *pdfRenderer) { r.diagram = png } }

// Page layout (A4 portrait, mm).
const (
	pdfMargin    = 15.0
	pdfWidth     = 210.0 - 2*pdfMargin
	pdfRowHeight = 6.0
	pdfPageLimit = 297.0 - pdfMargin - pdfRowHeight
)

var pdfColumns = []struct {
	title string
	width float64
}{
	{"", 8},
	{"Region", 18},
	{"Items", 20},
	{"Area", 28},
	{"Normal", 62},
	{"Residual", 44},
}

// RenderPDF produces a summary report: thresholds, coverage, an optional
// diagram and one table row per region.
func RenderPDF(s segmentation.Segmentation, opts ...PDFOption) ([]byte, error) {
	r := pdfRenderer{title: s.Source}
	for _, opt := range opts {
		opt(&r)
	}
	if r.title == "" {
		r.title = "Planar regions"
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(pdfMargin, pdfMargin, pdfMargin)
	pdf.SetAutoPageBreak(false, pdfMargin)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(pdfWidth, 10, r.title, "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	for _, line := range summaryLines(s) {
		pdf.CellFormat(pdfWidth, 5, line, "", 1, "L", false, 0, "")
	}
	pdf.Ln(4)

	if len(r.diagram) > 0 {
		opt := fpdf.ImageOptions{ImageType: "PNG", ReadDpi: true}
		info := pdf.RegisterImageOptionsReader("diagram", opt, bytes.NewReader(r.diagram))
		if pdf.Ok() && info != nil {
			w, h := info.Width(), info.Height()
			scale := min(pdfWidth/w, 110/h, 1)
			pdf.ImageOptions("diagram", pdfMargin, pdf.GetY(), w*scale, h*scale, false, opt, 0, "")
			pdf.SetY(pdf.GetY() + h*scale + 4)
		}
	}

	tableHeader(pdf)
	pdf.SetFont("Helvetica", "", 9)
	for _, reg := range s.Regions {
		if pdf.GetY() > pdfPageLimit {
			pdf.AddPage()
			tableHeader(pdf)
			pdf.SetFont("Helvetica", "", 9)
		}
		tableRow(pdf, reg)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func summaryLines(s segmentation.Segmentation) []string {
	th := s.Thresholds
	return []string{
		fmt.Sprintf("Input: %d %s", s.ItemCount, s.Kind),
		fmt.Sprintf("Thresholds: distance %g, angle %g deg, min region size %d", th.Distance, th.Angle, th.MinRegionSize),
		fmt.Sprintf("Regions: %d (largest %d)", len(s.Regions), s.Largest()),
		fmt.Sprintf("Unassigned: %d (coverage %.1f%%)", len(s.Unassigned), 100*s.Coverage()),
	}
}

func tableHeader(pdf *fpdf.Fpdf) {
	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(230, 230, 230)
	for _, c := range pdfColumns {
		pdf.CellFormat(c.width, pdfRowHeight, c.title, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)
}

func tableRow(pdf *fpdf.Fpdf, reg segmentation.Region) {
	r, g, b := render.Color(reg.ID).RGB255()
	pdf.SetFillColor(int(r), int(g), int(b))

	normal, residual := "-", "-"
	if reg.Plane != nil {
		n := reg.Plane.Normal
		normal = fmt.Sprintf("%.3f  %.3f  %.3f", n[0], n[1], n[2])
		residual = fmt.Sprintf("%.2e", reg.Plane.Residual)
	}
	cells := []string{"", fmt.Sprintf("R%d", reg.ID), fmt.Sprint(len(reg.Items)), fmt.Sprintf("%.4g", reg.Area), normal, residual}
	for i, c := range pdfColumns {
		pdf.CellFormat(c.width, pdfRowHeight, cells[i], "1", 0, "C", i == 0, 0, "")
	}
	pdf.Ln(-1)
}
