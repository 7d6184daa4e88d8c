package cli

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/planeseg/pkg/render"
	"github.com/matzehuels/planeseg/pkg/segmentation"
)

// =============================================================================
// Color Palette
// =============================================================================

var (
	colorCyan   = lipgloss.Color("36")  // Teal - primary actions
	colorGreen  = lipgloss.Color("35")  // Green - success
	colorYellow = lipgloss.Color("220") // Amber - warnings
	colorRed    = lipgloss.Color("167") // Soft red - errors
	colorBlue   = lipgloss.Color("75")  // Light blue - links
	colorWhite  = lipgloss.Color("255") // Bright white - values
	colorGray   = lipgloss.Color("245") // Gray - secondary text
	colorDim    = lipgloss.Color("240") // Dim gray - muted text
)

// =============================================================================
// Public Styles
// =============================================================================

var (
	// StyleTitle for main headings.
	StyleTitle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)

	// StyleHighlight for emphasized values.
	StyleHighlight = lipgloss.NewStyle().Foreground(colorCyan)

	// StyleLink for URLs.
	StyleLink = lipgloss.NewStyle().Foreground(colorBlue).Underline(true)

	// StyleDim for secondary/muted text.
	StyleDim = lipgloss.NewStyle().Foreground(colorDim)

	// StyleValue for data values.
	StyleValue = lipgloss.NewStyle().Foreground(colorWhite)

	// StyleNumber for numeric values.
	StyleNumber = lipgloss.NewStyle().Foreground(colorCyan)

	// StyleSuccess for success messages.
	StyleSuccess = lipgloss.NewStyle().Foreground(colorGreen)

	// StyleWarning for warning messages.
	StyleWarning = lipgloss.NewStyle().Foreground(colorYellow)
)

// =============================================================================
// Internal Styles
// =============================================================================

var (
	styleIconSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleIconWarning = lipgloss.NewStyle().Foreground(colorYellow)
	styleIconInfo    = lipgloss.NewStyle().Foreground(colorGray)
	styleIconSpinner = lipgloss.NewStyle().Foreground(colorCyan)

	styleCached   = lipgloss.NewStyle().Foreground(colorGreen)
	styleComputed = lipgloss.NewStyle().Foreground(colorGray)

	styleCommand = lipgloss.NewStyle().Foreground(colorBlue)
)

// =============================================================================
// Icons
// =============================================================================

const (
	iconSuccess = "✓"
	iconWarning = "!"
	iconInfo    = "›"
	iconArrow   = "→"
	iconCached  = "cached"
	iconFresh   = "fresh"
)

// =============================================================================
// Status Output
// =============================================================================

// printSuccess prints a success message.
func printSuccess(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(styleIconSuccess.Render(iconSuccess) + " " + msg)
}

// printWarning prints a warning message.
func printWarning(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(styleIconWarning.Render(iconWarning) + " " + StyleWarning.Render(msg))
}

// printInfo prints an info/status message.
func printInfo(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(styleIconInfo.Render(iconInfo) + " " + msg)
}

// printDetail prints a detail line (indented).
func printDetail(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println("  " + StyleDim.Render(msg))
}

// =============================================================================
// File Output
// =============================================================================

// printFile prints a file output line.
func printFile(path string) {
	fmt.Println("  " + StyleDim.Render(iconArrow) + " " + StyleValue.Render(path))
}

// =============================================================================
// Key-Value Output
// =============================================================================

// printKeyValue prints a labeled value.
func printKeyValue(key, value string) {
	keyStyle := lipgloss.NewStyle().Foreground(colorGray).Width(12)
	fmt.Println(keyStyle.Render(key) + " " + StyleValue.Render(value))
}

// =============================================================================
// Stats Display
// =============================================================================

// printStats prints segmentation statistics on a single line.
func printStats(seg segmentation.Segmentation, cached bool) {
	parts := []string{
		fmt.Sprintf("%d %s", seg.ItemCount, itemUnit(seg.Kind)),
		fmt.Sprintf("%d regions", len(seg.Regions)),
	}
	if n := len(seg.Unassigned); n > 0 {
		parts = append(parts, fmt.Sprintf("%d unassigned", n))
	}
	parts = append(parts, fmt.Sprintf("%.1f%% covered", 100*seg.Coverage()))

	status := iconFresh
	statusStyle := styleComputed
	if cached {
		status = iconCached
		statusStyle = styleCached
	}

	line := "  "
	for i, part := range parts {
		if i > 0 {
			line += StyleDim.Render(" · ")
		}
		line += StyleDim.Render(part)
	}
	fmt.Println(line + StyleDim.Render(" · ") + statusStyle.Render(status))
}

func itemUnit(kind string) string {
	if kind == segmentation.KindMesh {
		return "faces"
	}
	return "points"
}

// =============================================================================
// Region Table
// =============================================================================

// regionTable renders up to limit regions, largest first. A limit of zero
// renders all of them.
func regionTable(seg segmentation.Segmentation, limit int) string {
	regions := largestRegions(seg, limit)
	showArea := seg.Kind == segmentation.KindMesh

	headers := []string{"", "Region", "Items"}
	if showArea {
		headers = append(headers, "Area")
	}
	headers = append(headers, "Normal", "Residual")

	rows := make([][]string, len(regions))
	for i, r := range regions {
		row := []string{"■", fmt.Sprintf("R%d", r.ID), fmt.Sprint(len(r.Items))}
		if showArea {
			row = append(row, fmt.Sprintf("%.4g", r.Area))
		}
		rows[i] = append(row, formatNormal(r.Plane), formatResidual(r.Plane))
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			if col == 0 && row >= 0 && row < len(regions) {
				return lipgloss.NewStyle().Foreground(regionColor(regions[row].ID))
			}
			return lipgloss.NewStyle().Foreground(colorWhite).PaddingRight(1)
		})
	return t.Render()
}

// largestRegions returns regions ordered by size, then ID.
func largestRegions(seg segmentation.Segmentation, limit int) []segmentation.Region {
	regions := make([]segmentation.Region, len(seg.Regions))
	copy(regions, seg.Regions)
	slices.SortStableFunc(regions, func(a, b segmentation.Region) int {
		return cmp.Compare(len(b.Items), len(a.Items))
	})
	if limit > 0 && len(regions) > limit {
		regions = regions[:limit]
	}
	return regions
}

func regionColor(id int) lipgloss.Color {
	return lipgloss.Color(render.Color(id).Hex())
}

func formatNormal(p *segmentation.Plane) string {
	if p == nil {
		return "-"
	}
	n := p.Normal
	return fmt.Sprintf("(%.3f, %.3f, %.3f)", n[0], n[1], n[2])
}

func formatResidual(p *segmentation.Plane) string {
	if p == nil {
		return "-"
	}
	return fmt.Sprintf("%.2e", p.Residual)
}

// formatItems lists items, cutting long lists after limit entries.
func formatItems(items []int, limit int) string {
	parts := make([]string, 0, min(len(items), limit)+1)
	for i, it := range items {
		if len(items) > limit && i == limit-1 {
			parts = append(parts, fmt.Sprintf("… %d more", len(items)-i))
			break
		}
		parts = append(parts, fmt.Sprint(it))
	}
	return strings.Join(parts, ", ")
}

// =============================================================================
// Commands & Next Steps
// =============================================================================

// printNextStep prints a suggested next command.
func printNextStep(description, cmd string) {
	fmt.Println(StyleDim.Render(description+":") + " " + styleCommand.Render(cmd))
}
