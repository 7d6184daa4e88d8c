package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/planeseg/pkg/segmentation"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

const (
	defaultListHeight = 15
	detailItems       = 24
)

// inspectCommand creates the inspect command, an interactive region browser.
func (c *CLI) inspectCommand() *cobra.Command {
	var plain bool

	cmd := &cobra.Command{
		Use:   "inspect <segmentation.json>",
		Short: "Browse the regions of a saved segmentation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			seg, err := segmentation.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read %s: %w", args[0], err)
			}
			if plain || len(seg.Regions) == 0 {
				printStats(seg, false)
				if len(seg.Regions) > 0 {
					fmt.Println(regionTable(seg, 0))
				}
				return nil
			}
			_, err = tea.NewProgram(NewRegionListModel(seg), tea.WithContext(cmd.Context())).Run()
			return err
		},
	}

	cmd.Flags().BoolVar(&plain, "plain", false, "print a table instead of the interactive browser")
	return cmd
}

// =============================================================================
// RegionListModel - Interactive region browser
// =============================================================================

// RegionListModel is the bubbletea model for browsing regions.
type RegionListModel struct {
	Seg         segmentation.Segmentation
	Order       []int // indices into Seg.Regions in display order
	BySize      bool
	Cursor      int
	Offset      int
	Height      int
	neighbors   map[int][]segmentation.Edge
	itemsPerRow int
}

// NewRegionListModel creates a region browser listing regions by ID.
func NewRegionListModel(seg segmentation.Segmentation) RegionListModel {
	m := RegionListModel{
		Seg:         seg,
		Height:      defaultListHeight,
		neighbors:   make(map[int][]segmentation.Edge),
		itemsPerRow: detailItems,
	}
	for _, e := range seg.Adjacency {
		m.neighbors[e.A] = append(m.neighbors[e.A], e)
		m.neighbors[e.B] = append(m.neighbors[e.B], e)
	}
	m.setOrder(false)
	return m
}

// Selected returns the region under the cursor.
func (m RegionListModel) Selected() segmentation.Region {
	return m.Seg.Regions[m.Order[m.Cursor]]
}

func (m *RegionListModel) setOrder(bySize bool) {
	m.BySize = bySize
	m.Order = make([]int, len(m.Seg.Regions))
	if bySize {
		for i, r := range largestRegions(m.Seg, 0) {
			m.Order[i] = r.ID
		}
	} else {
		for i := range m.Order {
			m.Order[i] = i
		}
	}
	m.Cursor, m.Offset = 0, 0
}

func (m RegionListModel) Init() tea.Cmd {
	return nil
}

func (m RegionListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			m.move(-1)
		case "down", "j":
			m.move(1)
		case "pgup":
			m.move(-m.Height)
		case "pgdown":
			m.move(m.Height)
		case "home", "g":
			m.move(-len(m.Order))
		case "end", "G":
			m.move(len(m.Order))
		case "s":
			m.setOrder(!m.BySize)
		}
	case tea.WindowSizeMsg:
		// Leave room for the header and the detail pane.
		m.Height = max(msg.Height-16, 5)
		m.move(0)
	}
	return m, nil
}

// move shifts the cursor by delta, clamped, and scrolls the window.
func (m *RegionListModel) move(delta int) {
	if len(m.Order) == 0 {
		return
	}
	m.Cursor = min(max(m.Cursor+delta, 0), len(m.Order)-1)
	if m.Cursor < m.Offset {
		m.Offset = m.Cursor
	}
	if m.Cursor >= m.Offset+m.Height {
		m.Offset = m.Cursor - m.Height + 1
	}
}

func (m RegionListModel) View() string {
	var b strings.Builder

	title := "Regions"
	if m.Seg.Source != "" {
		title += " of " + m.Seg.Source
	}
	b.WriteString(StyleTitle.Render(title))
	b.WriteString("\n")
	order := "id"
	if m.BySize {
		order = "size"
	}
	b.WriteString(listDimStyle.Render(fmt.Sprintf("↑/↓ navigate  s sort (by %s)  q quit", order)))
	b.WriteString("\n\n")

	end := min(m.Offset+m.Height, len(m.Order))
	rows := make([][]string, 0, end-m.Offset)
	for i := m.Offset; i < end; i++ {
		r := m.Seg.Regions[m.Order[i]]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		rows = append(rows, []string{cursor, "■", fmt.Sprintf("R%d", r.ID), fmt.Sprint(len(r.Items)), formatNormal(r.Plane)})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "", "Region", "Items", "Normal").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			idx := m.Offset + row
			if idx >= len(m.Order) {
				return lipgloss.NewStyle()
			}
			if col == 1 {
				return lipgloss.NewStyle().Foreground(regionColor(m.Order[idx]))
			}
			if idx == m.Cursor {
				return listSelectedStyle
			}
			return listNormalStyle
		})

	b.WriteString(t.Render())
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Order))))
	b.WriteString("\n\n")
	b.WriteString(m.detail())

	return b.String()
}

// detail describes the selected region.
func (m RegionListModel) detail() string {
	if len(m.Order) == 0 {
		return listDimStyle.Render("no regions")
	}
	r := m.Selected()

	var b strings.Builder
	line := func(key, value string) {
		b.WriteString(listDimStyle.Render(fmt.Sprintf("%-10s", key)))
		b.WriteString(listNormalStyle.Render(value))
		b.WriteString("\n")
	}

	line("region", fmt.Sprintf("R%d", r.ID))
	line(itemUnit(m.Seg.Kind), formatItems(r.Items, m.itemsPerRow))
	if r.Area > 0 {
		line("area", fmt.Sprintf("%.4g", r.Area))
	}
	if p := r.Plane; p != nil {
		line("point", fmt.Sprintf("(%.3f, %.3f, %.3f)", p.Point[0], p.Point[1], p.Point[2]))
		line("normal", formatNormal(p))
		line("residual", formatResidual(p))
	}

	edges := m.neighbors[r.ID]
	if len(edges) == 0 {
		line("adjacent", "-")
		return b.String()
	}
	parts := make([]string, len(edges))
	for i, e := range edges {
		other := e.A
		if other == r.ID {
			other = e.B
		}
		parts[i] = fmt.Sprintf("R%d (%d)", other, e.Weight)
	}
	line("adjacent", strings.Join(parts, ", "))
	return b.String()
}
