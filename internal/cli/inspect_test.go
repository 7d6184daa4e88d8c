package cli

import (
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/planeseg/internal/meshtest"
	planeio "github.com/matzehuels/planeseg/pkg/io"
	"github.com/matzehuels/planeseg/pkg/pipeline"
	"github.com/matzehuels/planeseg/pkg/segmentation"
)

// finSegmentation has a nine-face floor (R0) and a single-face fin (R1).
func finSegmentation(t *testing.T) segmentation.Segmentation {
	t.Helper()
	ds := planeio.Dataset{Kind: planeio.KindMesh, Mesh: meshtest.GridWithFin(3, 3)}
	seg, _, err := pipeline.Segment(context.Background(), ds, pipeline.Options{})
	if err != nil {
		t.Fatal(err)
	}
	seg.Source = "fin.off"
	return seg
}

func key(s string) tea.KeyMsg {
	switch s {
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func update(m RegionListModel, msgs ...tea.Msg) RegionListModel {
	for _, msg := range msgs {
		next, _ := m.Update(msg)
		m = next.(RegionListModel)
	}
	return m
}

func TestRegionListNavigation(t *testing.T) {
	seg := finSegmentation(t)
	if len(seg.Regions) != 2 {
		t.Fatalf("fixture has %d regions, want 2", len(seg.Regions))
	}
	m := NewRegionListModel(seg)

	m = update(m, key("up"))
	if m.Cursor != 0 {
		t.Errorf("cursor moved above the first row: %d", m.Cursor)
	}
	m = update(m, key("down"), key("j"), key("j"))
	if m.Cursor != 1 || m.Selected().ID != 1 {
		t.Errorf("cursor = %d, selected R%d, want clamped at R1", m.Cursor, m.Selected().ID)
	}
	m = update(m, key("g"))
	if m.Cursor != 0 {
		t.Errorf("home: cursor = %d", m.Cursor)
	}
}

func TestRegionListSort(t *testing.T) {
	seg := finSegmentation(t)
	// Swap so the larger region has the higher ID.
	seg.Regions[0], seg.Regions[1] = seg.Regions[1], seg.Regions[0]
	seg.Regions[0].ID, seg.Regions[1].ID = 0, 1

	m := NewRegionListModel(seg)
	if m.Selected().ID != 0 {
		t.Fatalf("initial selection R%d", m.Selected().ID)
	}
	m = update(m, key("s"))
	if !m.BySize || m.Selected().ID != 1 {
		t.Errorf("sorted by size: selected R%d, want the nine-face region R1", m.Selected().ID)
	}
	m = update(m, key("s"))
	if m.BySize || m.Selected().ID != 0 {
		t.Errorf("sorted by id: selected R%d", m.Selected().ID)
	}
}

func TestRegionListScroll(t *testing.T) {
	ds := planeio.Dataset{Kind: planeio.KindMesh, Mesh: meshtest.Cube()}
	seg, _, err := pipeline.Segment(context.Background(), ds, pipeline.Options{})
	if err != nil {
		t.Fatal(err)
	}
	m := NewRegionListModel(seg)
	m.Height = 2

	m = update(m, key("G"))
	if m.Cursor != 5 || m.Offset != 4 {
		t.Errorf("end: cursor %d offset %d, want 5 and 4", m.Cursor, m.Offset)
	}
	m = update(m, key("up"), key("up"), key("up"))
	if m.Cursor != 2 || m.Offset != 2 {
		t.Errorf("after up: cursor %d offset %d, want 2 and 2", m.Cursor, m.Offset)
	}
	m = update(m, tea.WindowSizeMsg{Width: 80, Height: 10})
	if m.Height != 5 {
		t.Errorf("height = %d, want the minimum of 5", m.Height)
	}
}

func TestRegionListView(t *testing.T) {
	m := NewRegionListModel(finSegmentation(t))
	m = update(m, key("j"))

	view := m.View()
	for _, want := range []string{"Regions of fin.off", "R0", "R1", "[2/2]", "adjacent", "R0 (1)"} {
		if !strings.Contains(view, want) {
			t.Errorf("View() lacks %q:\n%s", want, view)
		}
	}
}

func TestRegionListQuit(t *testing.T) {
	m := NewRegionListModel(finSegmentation(t))
	_, cmd := m.Update(key("q"))
	if cmd == nil {
		t.Fatal("q returned no command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q should quit")
	}
}

func TestFormatItems(t *testing.T) {
	if got := formatItems([]int{1, 2, 3}, 5); got != "1, 2, 3" {
		t.Errorf("formatItems() = %q", got)
	}
	if got := formatItems([]int{1, 2, 3, 4, 5, 6}, 3); got != "1, 2, … 4 more" {
		t.Errorf("formatItems() = %q", got)
	}
}
