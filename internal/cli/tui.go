package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/cloverquilt/pkg/errors"
	"github.com/matzehuels/cloverquilt/pkg/fill"
	"github.com/matzehuels/cloverquilt/pkg/prefs"
	"github.com/matzehuels/cloverquilt/pkg/tile"
)

// List styles
var (
	listDimStyle    = lipgloss.NewStyle().Foreground(colorDim)
	statusStyle     = lipgloss.NewStyle().Foreground(colorGray)
	statusErrStyle  = lipgloss.NewStyle().Foreground(colorRed)
	listHeaderStyle = lipgloss.NewStyle().Foreground(colorGray).Bold(true)
)

// =============================================================================
// paintModel - Interactive region filling
// =============================================================================

// paintModel is the bubbletea model of the paint command. It owns the
// engine for the lifetime of the program; every key press is applied
// synchronously in Update.
type paintModel struct {
	ctx     context.Context
	ws      *workspace
	export  func() (string, error)
	palette []string

	regions  []string
	patterns []string

	Cursor  int
	Offset  int
	Height  int
	pattern int // index into patterns of the last pattern applied, -1 for none

	status string
	failed bool
}

// newPaintModel creates a paint model over a loaded workspace. export is
// called when the user presses s; it returns the path written.
func newPaintModel(ctx context.Context, ws *workspace, export func() (string, error)) paintModel {
	ids := make([]string, 0, ws.engine.RegionCount())
	for _, r := range ws.engine.Regions() {
		ids = append(ids, r.ID)
	}
	return paintModel{
		ctx:      ctx,
		ws:       ws,
		export:   export,
		palette:  ws.state.Palette,
		regions:  ids,
		patterns: ws.library.IDs(),
		Height:   15,
		pattern:  -1,
		status:   "Ready",
	}
}

func (m paintModel) Init() tea.Cmd {
	return nil
}

func (m paintModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		key := msg.String()
		switch key {
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
		case "p":
			m.cyclePattern(1)
		case "P":
			m.cyclePattern(-1)
		case "x":
			m.apply(func(id string) (string, error) {
				_, err := m.ws.engine.ResetRegion(id)
				return "reset " + id, err
			})
		case "R":
			if err := m.ws.engine.ResetAll(); err != nil {
				m.setError(err)
			} else {
				m.setStatus("all regions reset")
			}
		case "+", "=":
			m.zoom(1)
		case "-", "_":
			m.zoom(-1)
		case "s":
			if m.export == nil {
				break
			}
			path, err := m.export()
			if err != nil {
				m.setError(err)
			} else {
				m.setStatus("exported " + filepath.Base(path))
			}
		default:
			if slot, ok := paletteSlot(key); ok && slot < len(m.palette) {
				color := m.palette[slot]
				m.apply(func(id string) (string, error) {
					_, err := m.ws.engine.FillRegion(id, fill.Color(color))
					return id + " " + iconArrow + " " + color, err
				})
			}
		}
	case tea.WindowSizeMsg:
		m.Height = msg.Height - 10
		if m.Height < 5 {
			m.Height = 5
		}
		m.move(0)
	}
	return m, nil
}

// paletteSlot maps the keys 1-9 and 0 to palette slots 0-9.
func paletteSlot(key string) (int, bool) {
	if len(key) != 1 || key[0] < '0' || key[0] > '9' {
		return 0, false
	}
	if key[0] == '0' {
		return 9, true
	}
	return int(key[0] - '1'), true
}

func (m *paintModel) move(delta int) {
	m.Cursor += delta
	if m.Cursor < 0 {
		m.Cursor = 0
	}
	if m.Cursor > len(m.regions)-1 {
		m.Cursor = len(m.regions) - 1
	}
	if m.Cursor < m.Offset {
		m.Offset = m.Cursor
	}
	if m.Cursor >= m.Offset+m.Height {
		m.Offset = m.Cursor - m.Height + 1
	}
}

// apply runs fn against the region under the cursor.
func (m *paintModel) apply(fn func(id string) (string, error)) {
	if len(m.regions) == 0 {
		return
	}
	msg, err := fn(m.regions[m.Cursor])
	if err != nil {
		m.setError(err)
		return
	}
	m.setStatus(msg)
}

func (m *paintModel) cyclePattern(step int) {
	if len(m.patterns) == 0 {
		m.setError(errors.New(errors.ErrCodeUnknownPattern, "no patterns in the library"))
		return
	}
	n := len(m.patterns)
	m.pattern = ((m.pattern+step)%n + n) % n
	id := m.patterns[m.pattern]
	m.apply(func(region string) (string, error) {
		_, err := m.ws.engine.FillRegion(region, fill.Pattern(id))
		return region + " " + iconArrow + " pattern " + id, err
	})
}

// zoom steps the zoom level and persists it.
func (m *paintModel) zoom(step int) {
	level, ok := tile.ZoomForSize(m.ws.engine.Presentation().TileSize)
	if !ok {
		level = tile.DefaultZoom
	}
	level += step
	if level < 0 || level >= len(tile.ZoomSizes) {
		return
	}
	if err := m.ws.engine.SetZoomLevel(level); err != nil {
		m.setError(err)
		return
	}
	if err := prefs.SaveZoom(m.ctx, m.ws.store, level); err != nil {
		m.setError(err)
		return
	}
	m.setStatus(fmt.Sprintf("zoom %d (tile %d)", level, tile.ZoomSizes[level]))
}

func (m *paintModel) setStatus(s string) {
	m.status, m.failed = s, false
}

func (m *paintModel) setError(err error) {
	m.status, m.failed = errors.UserMessage(err), true
}

func (m paintModel) View() string {
	var b strings.Builder
	eng := m.ws.engine

	b.WriteString(StyleTitle.Render("Paint " + filepath.Base(m.ws.path)))
	b.WriteString("  ")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("%d/%d filled", eng.FilledCount(), eng.RegionCount())))
	b.WriteString("\n")

	var swatches []string
	for i, hex := range m.palette {
		swatches = append(swatches, listDimStyle.Render(fmt.Sprint(paletteKey(i)))+swatch(hex))
	}
	b.WriteString(strings.Join(swatches, " "))
	b.WriteString("\n\n")

	end := m.Offset + m.Height
	if end > len(m.regions) {
		end = len(m.regions)
	}
	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		snap, err := eng.Region(m.regions[i])
		if err != nil {
			continue
		}
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		fillText := "—"
		if snap.IsFilled {
			fillText = snap.Fill.String()
		}
		rows = append(rows, []string{cursor, snap.ID, swatchOrValue(snap.CurrentColor), fillText})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Region", "Current", "Fill").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return listHeaderStyle
			}
			if m.Offset+row == m.Cursor && col != 2 {
				return lipgloss.NewStyle().Foreground(colorCyan).Bold(true)
			}
			return lipgloss.NewStyle()
		})
	b.WriteString(t.Render())
	b.WriteString("\n")

	pres := eng.Presentation()
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]  stroke %s  canvas %s  tile %d",
		m.Cursor+1, len(m.regions), pres.StrokeColor, pres.CanvasColor, pres.TileSize)))
	b.WriteString("\n")
	if m.failed {
		b.WriteString(statusErrStyle.Render("  " + iconError + " " + m.status))
	} else {
		b.WriteString(statusStyle.Render("  " + iconInfo + " " + m.status))
	}
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render("↑/↓ move  1-0 color  p/P pattern  x reset  R reset all  +/- zoom  s export  q quit"))
	return b.String()
}

// =============================================================================
// Command
// =============================================================================

// paintCommand creates the interactive paint command.
func (c *CLI) paintCommand() *cobra.Command {
	var opts exportOpts

	cmd := &cobra.Command{
		Use:               "paint <drawing.svg>",
		Short:             "Fill regions interactively",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeDrawing,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if opts.output == "" {
				opts.output = defaultOutput(args[0], "-painted", ".png")
			}

			ws, err := c.openWorkspace(ctx, args[0])
			if err != nil {
				return err
			}
			defer ws.Close()

			export := func() (string, error) {
				_, err := c.exportDrawing(ctx, ws.engine, opts)
				return opts.output, err
			}
			model := newPaintModel(ctx, ws, export)
			final, err := tea.NewProgram(model, tea.WithContext(ctx), tea.WithAltScreen()).Run()
			if err != nil {
				return err
			}
			if m, ok := final.(paintModel); ok {
				printRegionStats(m.ws.engine.FilledCount(), m.ws.engine.RegionCount(), m.ws.engine.Tiles().Len(), false)
			}
			return nil
		},
	}

	opts.register(cmd, c.cfg.Scale)
	return cmd
}
