package cli

import (
	"context"
	"fmt"
	"math"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/matzehuels/numberline/pkg/config"
	"github.com/matzehuels/numberline/pkg/errors"
	"github.com/matzehuels/numberline/pkg/item"
	"github.com/matzehuels/numberline/pkg/layout"
	"github.com/matzehuels/numberline/pkg/measure"
	"github.com/matzehuels/numberline/pkg/pipeline"
	"github.com/matzehuels/numberline/pkg/render"
	"github.com/matzehuels/numberline/pkg/scale"
	"github.com/matzehuels/numberline/pkg/store"
)

// Viewer styles
var (
	viewerAxisStyle     = lipgloss.NewStyle().Foreground(colorDim)
	viewerTickStyle     = lipgloss.NewStyle().Foreground(colorGray)
	viewerItemStyle     = lipgloss.NewStyle().Foreground(colorWhite)
	viewerSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	viewerStatusStyle   = lipgloss.NewStyle().Foreground(colorGray)
	viewerErrorStyle    = lipgloss.NewStyle().Foreground(colorRed)
)

const (
	bulletRune         = "●"
	selectedBulletRune = "◉"
	axisRune           = "─"
	tickRune           = "┬"

	viewerMargin = 1 // cells left of the leftmost tick or item
	viewerChrome = 4 // header and status lines around the item rows
)

// scaleKeys maps viewer keys to scale multipliers.
var scaleKeys = map[string]int{"1": 1, "2": 2, "5": 5, "0": 10}

// =============================================================================
// ViewerModel - Interactive number line browser
// =============================================================================

// ViewerModel is the bubbletea model for browsing a layout in the terminal.
// Distances are measured in terminal cells: one cell per pixel, one row per
// line of text.
type ViewerModel struct {
	ctx  context.Context
	repo store.Repository

	cfg      config.Layout
	metrics  measure.Provider
	scale    int
	strategy layout.Strategy

	mapper scale.Mapper
	result layout.Result
	err    error

	cursor  int
	width   int
	height  int
	xOffset int
	yOffset int
}

// NewViewerModel creates a viewer over repo and computes the first layout.
func NewViewerModel(ctx context.Context, repo store.Repository, multiplier int, strategy layout.Strategy) ViewerModel {
	if multiplier == 0 {
		multiplier = pipeline.DefaultMultiplier
	}
	if strategy == "" {
		strategy = layout.Cascade
	}
	m := ViewerModel{
		ctx:      ctx,
		repo:     repo,
		cfg:      config.Terminal(),
		metrics:  measure.Cells{},
		scale:    multiplier,
		strategy: strategy,
		width:    80,
		height:   24,
	}
	m.recompute()
	return m
}

// recompute re-reads the repository and runs a fresh layout pass. A failed
// pass clears the view and records the error for the status line.
func (m *ViewerModel) recompute() {
	m.result, m.err = layout.Result{}, nil

	raws, err := m.repo.All(m.ctx)
	if err != nil {
		m.err = err
		return
	}
	mapper, err := scale.NewMapper(m.scale, m.cfg.MinTickSpacing)
	if err != nil {
		m.err = err
		return
	}
	res, err := pipeline.LayoutItems(raws, mapper, m.metrics, m.cfg, m.strategy)
	if err != nil {
		m.err = err
		return
	}
	m.mapper, m.result = mapper, res
	m.cursor = min(m.cursor, max(len(res.Items)-1, 0))
}

// Selected returns the item under the cursor.
func (m ViewerModel) Selected() (item.Positioned, bool) {
	if m.cursor < 0 || m.cursor >= len(m.result.Items) {
		return item.Positioned{}, false
	}
	return m.result.Items[m.cursor], true
}

func (m ViewerModel) Init() tea.Cmd {
	return nil
}

func (m ViewerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		key := msg.String()
		if mult, ok := scaleKeys[key]; ok {
			m.scale = mult
			m.recompute()
			return m, nil
		}
		switch key {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "s":
			if m.strategy == layout.Shelf {
				m.strategy = layout.Cascade
			} else {
				m.strategy = layout.Shelf
			}
			m.recompute()
		case "r":
			m.recompute()
		case "down", "j", "right", "l":
			if m.cursor < len(m.result.Items)-1 {
				m.cursor++
			}
		case "up", "k", "left", "h":
			if m.cursor > 0 {
				m.cursor--
			}
		case "d", "delete":
			if it, ok := m.Selected(); ok {
				if err := m.repo.Delete(m.ctx, it.ID); err != nil {
					m.err = err
					return m, nil
				}
				m.recompute()
			}
		}
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
	}
	m.scrollToCursor()
	return m, nil
}

// scrollToCursor moves the viewport so the selected item is visible.
func (m *ViewerModel) scrollToCursor() {
	it, ok := m.Selected()
	if !ok {
		m.xOffset, m.yOffset = 0, 0
		return
	}
	g := m.geometry()
	left := g.column(it.Left)
	right := left + int(it.Width)
	if left < m.xOffset {
		m.xOffset = max(left-viewerMargin, 0)
	} else if right > m.xOffset+m.width {
		m.xOffset = right - m.width + viewerMargin
	}

	rows := m.itemRows()
	row := int(it.Top)
	if row < m.yOffset {
		m.yOffset = row
	} else if row >= m.yOffset+rows {
		m.yOffset = row - rows + 1
	}
}

func (m ViewerModel) itemRows() int {
	return max(m.height-viewerChrome, 1)
}

// =============================================================================
// Drawing
// =============================================================================

// viewGeometry places value 0 and the ticks on the cell grid.
type viewGeometry struct {
	origin int
	width  int
	ticks  []scale.Tick
	step   float64
}

// maxColumn keeps cell columns for huge offsets within int range.
const maxColumn = 1 << 40

func (g viewGeometry) column(x float64) int {
	return g.origin + int(math.Round(math.Max(-maxColumn, math.Min(x, maxColumn))))
}

func (m ViewerModel) geometry() viewGeometry {
	var g viewGeometry
	minV, maxV := 0.0, 0.0
	for _, it := range m.result.Items {
		minV = math.Min(minV, it.Value)
		maxV = math.Max(maxV, it.Value)
	}
	ticks, err := m.mapper.Ticks(minV, maxV)
	if err != nil || len(ticks) == 0 {
		return g
	}
	g.ticks = ticks
	g.step, _ = m.mapper.RangeStep(minV, maxV)

	minX, maxX := ticks[0].X, ticks[len(ticks)-1].X
	for _, it := range m.result.Items {
		minX = math.Min(minX, it.Left)
		maxX = math.Max(maxX, it.Right())
	}
	g.origin = viewerMargin - int(math.Floor(math.Max(minX, -maxColumn)))
	g.width = g.column(maxX) + viewerMargin + 1
	for _, it := range m.result.Items {
		g.width = max(g.width, g.column(it.Left)+int(it.Width)+viewerMargin+1)
	}
	return g
}

// cellStyle indexes viewerStyles.
type cellStyle uint8

const (
	styleAxis cellStyle = iota
	styleTick
	styleItem
	styleSelected
)

var viewerStyles = []lipgloss.Style{
	styleAxis:     viewerAxisStyle,
	styleTick:     viewerTickStyle,
	styleItem:     viewerItemStyle,
	styleSelected: viewerSelectedStyle,
}

// cellRow is the visible window of one grid line, starting at column from.
// Wide runes occupy their first cell; the cells they cover hold an empty
// string.
type cellRow struct {
	from  int
	cells []string
	style []cellStyle
}

func newCellRow(from, width int, style cellStyle) cellRow {
	r := cellRow{from: from, cells: make([]string, width), style: make([]cellStyle, width)}
	for i := range r.cells {
		r.cells[i] = " "
		r.style[i] = style
	}
	return r
}

// put writes s starting at grid column col, clipped to the window.
func (r cellRow) put(col int, s string, style cellStyle) {
	col -= r.from
	for _, ch := range s {
		w := runewidth.RuneWidth(ch)
		if w == 0 {
			continue
		}
		if col >= 0 && col+w <= len(r.cells) {
			r.cells[col] = string(ch)
			r.style[col] = style
			for i := 1; i < w; i++ {
				r.cells[col+i] = ""
			}
		}
		col += w
	}
}

// render returns the window with styles applied to runs of cells sharing
// a style.
func (r cellRow) render() string {
	var b strings.Builder
	for i := 0; i < len(r.cells); {
		j := i
		var run strings.Builder
		for j < len(r.cells) && r.style[j] == r.style[i] {
			run.WriteString(r.cells[j])
			j++
		}
		b.WriteString(viewerStyles[r.style[i]].Render(run.String()))
		i = j
	}
	return b.String()
}

func (m ViewerModel) View() string {
	g := m.geometry()
	frame := render.Frame{Step: g.step}

	window := max(min(m.width, g.width-m.xOffset), 0)
	labels := newCellRow(m.xOffset, window, styleTick)
	axis := newCellRow(m.xOffset, window, styleAxis)
	for i := range axis.cells {
		axis.cells[i] = axisRune
	}
	nextFree := 0
	for _, t := range g.ticks {
		col := g.column(t.X)
		axis.put(col, tickRune, styleAxis)
		text := frame.TickLabel(t.Value)
		start := col - runewidth.StringWidth(text)/2
		if start >= nextFree {
			labels.put(start, text, styleTick)
			nextFree = start + runewidth.StringWidth(text) + 1
		}
	}

	rows := make([]cellRow, 0, m.result.Rows)
	for i, it := range m.result.Items {
		row := int(it.Top / m.cfg.LineHeight)
		for len(rows) <= row {
			rows = append(rows, newCellRow(m.xOffset, window, styleItem))
		}
		bullet, style := bulletRune, styleItem
		if i == m.cursor {
			bullet, style = selectedBulletRune, styleSelected
		}
		col := g.column(it.Left)
		rows[row].put(col, bullet, style)
		text := measure.TruncateCells(it.Label, int(it.Width-m.cfg.BulletWidth))
		rows[row].put(col+int(m.cfg.BulletWidth), text, style)
	}

	var b strings.Builder
	b.WriteString(labels.render())
	b.WriteString("\n")
	b.WriteString(axis.render())
	b.WriteString("\n")

	visible := m.itemRows()
	for r := m.yOffset; r < min(len(rows), m.yOffset+visible); r++ {
		b.WriteString(rows[r].render())
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.statusLine())
	return b.String()
}

func (m ViewerModel) statusLine() string {
	if m.err != nil {
		return viewerErrorStyle.Render(iconError + " " + errors.UserMessage(m.err))
	}
	parts := []string{
		fmt.Sprintf("×%d", m.scale),
		fmt.Sprintf("%s units/cell", formatNumber(m.mapper.UnitsPerPixel)),
		string(m.strategy),
		fmt.Sprintf("%d items", len(m.result.Items)),
		fmt.Sprintf("%d rows", m.result.Rows),
	}
	if it, ok := m.Selected(); ok {
		parts = append(parts, StyleHighlight.Render(fmt.Sprintf("%s = %s", it.Label, formatNumber(it.Value))))
	}
	status := strings.Join(parts, " · ")
	help := "1/2/5/0 scale  s strategy  ←/→ select  d delete  r reload  q quit"
	return viewerStatusStyle.Render(status) + "\n" + StyleDim.Render(help)
}
