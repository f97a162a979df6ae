package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

const (
	frameInterval = 120 * time.Millisecond
	tickInterval  = 150 * time.Millisecond
	// minFlexWidth is the narrowest the last column shrinks to on small terminals.
	minFlexWidth = 12
	columnGap    = "  "
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

type frameMsg time.Time

// Column is one column of the update table. The last column stretches to the
// terminal width once it is known.
type Column struct {
	Header string
	Width  int
}

type tableRow struct {
	tool  string
	cells []string
}

// ProgressModel renders one row per tool. The STATUS column, when present,
// drives styling and the finished counter in the footer.
type ProgressModel struct {
	title     string
	columns   []Column
	rows      []tableRow
	byTool    map[string]int
	statusCol int

	termWidth int
	frame     int
	done      bool
	err       error
}

// NewProgressModel creates an empty table with the given title and columns.
func NewProgressModel(title string, columns []Column) ProgressModel {
	statusCol := -1
	for i, c := range columns {
		if strings.EqualFold(c.Header, ColStatus) {
			statusCol = i
			break
		}
	}
	return ProgressModel{
		title:     title,
		columns:   columns,
		byTool:    make(map[string]int),
		statusCol: statusCol,
	}
}

// AddRow appends a row keyed by tool. Call it before the program starts.
func (m *ProgressModel) AddRow(tool string, cells []string) {
	row := tableRow{tool: tool, cells: make([]string, len(m.columns))}
	copy(row.cells, cells)
	m.byTool[tool] = len(m.rows)
	m.rows = append(m.rows, row)
}

func nextFrame() tea.Cmd {
	return tea.Tick(frameInterval, func(t time.Time) tea.Msg {
		return frameMsg(t)
	})
}

func (m ProgressModel) Init() tea.Cmd {
	return nextFrame()
}

func (m ProgressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case frameMsg:
		m.frame++
		if m.done {
			return m, nil
		}
		return m, nextFrame()

	case tea.WindowSizeMsg:
		m.termWidth = msg.Width
		return m, nil

	case RowUpdateMsg:
		m.setCells(msg)
		return m, nil

	case WorkDoneMsg:
		m.done = true
		return m, tea.Quit

	case ErrorMsg:
		return m.stop(msg.Err)

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m.stop(ErrInterrupted)
		}
	}
	return m, nil
}

func (m ProgressModel) stop(err error) (tea.Model, tea.Cmd) {
	m.err = err
	m.done = true
	return m, tea.Quit
}

func (m *ProgressModel) setCells(msg RowUpdateMsg) {
	idx, ok := m.byTool[msg.Key]
	if !ok {
		return
	}
	cells := m.rows[idx].cells
	for j, col := range m.columns {
		if val, ok := msg.Fields[col.Header]; ok {
			cells[j] = val
		}
	}
}

// widths returns the rendered width of each column. With a known terminal
// width the last column takes whatever the others leave over.
func (m ProgressModel) widths() []int {
	widths := make([]int, len(m.columns))
	used := 0
	for i, col := range m.columns {
		widths[i] = max(len(col.Header), col.Width)
		used += widths[i]
	}
	last := len(widths) - 1
	if m.termWidth <= 0 || last < 0 {
		return widths
	}
	used += len(columnGap) * last
	widths[last] = max(minFlexWidth, m.termWidth-(used-widths[last]))
	return widths
}

func (m ProgressModel) View() string {
	if m.done && m.err != nil {
		return fmt.Sprintf("Error: %v\n", m.err)
	}

	widths := m.widths()
	var b strings.Builder
	if m.title != "" {
		b.WriteString(TitleStyle.Render(m.title))
		b.WriteString("\n\n")
	}

	cells := make([]string, len(m.columns))
	for i, col := range m.columns {
		cells[i] = HeaderStyle.Render(pad(col.Header, widths[i]))
	}
	b.WriteString(strings.Join(cells, columnGap))
	b.WriteByte('\n')

	for _, row := range m.rows {
		for i, val := range row.cells {
			val = truncate(val, widths[i])
			if i == m.statusCol {
				cells[i] = StatusStyle(val).Render(pad(val, widths[i]))
			} else {
				cells[i] = pad(val, widths[i])
			}
		}
		b.WriteString(strings.TrimRight(strings.Join(cells, columnGap), " "))
		b.WriteByte('\n')
	}

	if !m.done {
		fmt.Fprintf(&b, "\n%s Updating %d/%d tools...\n", spinnerFrames[m.frame%len(spinnerFrames)], m.finished(), len(m.rows))
	}
	return b.String()
}

// finished counts rows whose status is final.
func (m ProgressModel) finished() int {
	if m.statusCol < 0 {
		return 0
	}
	n := 0
	for _, row := range m.rows {
		if IsFinalStatus(strings.TrimSpace(row.cells[m.statusCol])) {
			n++
		}
	}
	return n
}

// Err returns the error that stopped the table, if any.
func (m ProgressModel) Err() error {
	return m.err
}

func pad(s string, width int) string {
	if n := len([]rune(s)); n < width {
		return s + strings.Repeat(" ", width-n)
	}
	return s
}

// NonEmptyOrDash returns "-" for empty or blank strings.
func NonEmptyOrDash(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return "-"
	}
	return value
}

// truncate shortens value to width runes, marking the cut with "…".
func truncate(value string, width int) string {
	if width <= 0 {
		return ""
	}
	runes := []rune(strings.TrimSpace(value))
	if len(runes) <= width {
		return string(runes)
	}
	if width == 1 {
		return string(runes[:1])
	}
	return string(runes[:width-1]) + "…"
}
