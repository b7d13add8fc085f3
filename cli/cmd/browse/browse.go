// Package browse implements an interactive read-only browser over a
// resolved configuration.
package browse

import (
	"context"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ardnew/kconfgen/kconfig"
	"github.com/ardnew/kconfgen/log"
	"github.com/ardnew/kconfgen/resolve"
)

const (
	filterPrompt  = "/ "
	defaultWidth  = 80
	defaultHeight = 24
	// chrome is the number of lines in the list view that are not rows.
	chrome = 4
)

// row is one symbol of the list.
type row struct {
	sym     *kconfig.Symbol
	value   string
	menu    string
	visible bool
}

// model is the Bubble Tea model for the browser.
type model struct {
	ctxFunc    func() context.Context
	input      textinput.Model
	tree       *kconfig.Tree
	logger     log.Logger
	history    *History
	historyIdx int
	rows       []row
	names      []string
	shown      []int         // indexes into rows passing the filter
	matched    map[int][]int // matched byte offsets of names, by row index
	cursor     int           // index into shown
	offset     int           // first index into shown on screen
	nameWidth  int
	width      int
	height     int
	detail     bool
	quitting   bool
}

// Run starts the browser over res, keeping filter history under cacheDir.
func Run(
	ctx context.Context,
	res *resolve.Resolution,
	cacheDir string,
	logger log.Logger,
) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	history := NewHistory(filepath.Join(cacheDir, baseHistory))
	if err := history.Load(); err != nil {
		logger.WarnContext(ctx, "could not load history",
			slog.String("path", history.path),
			slog.String("error", err.Error()),
		)
	}

	logger.TraceContext(ctx, "browse start",
		slog.Int("symbols", len(res.Tree.Symbols)),
		slog.Int("history", history.Len()),
	)

	m := newModel(ctx, res, history, logger)

	p := tea.NewProgram(m, tea.WithContext(ctx), tea.WithAltScreen())
	_, err = p.Run()

	return err
}

func newModel(
	ctx context.Context,
	res *resolve.Resolution,
	history *History,
	logger log.Logger,
) model {
	ti := textinput.New()
	ti.Prompt = promptStyle.Render(filterPrompt)
	ti.Placeholder = "filter symbols"
	ti.Focus()
	ti.CharLimit = 256
	ti.Width = defaultWidth - len(filterPrompt) - 2

	m := model{
		ctxFunc:    func() context.Context { return ctx },
		input:      ti,
		tree:       res.Tree,
		logger:     logger,
		history:    history,
		historyIdx: history.Len(),
		width:      defaultWidth,
		height:     defaultHeight,
	}

	for _, s := range res.Tree.Symbols {
		v, _ := res.Value(s.Name)

		menu := kconfig.Ungrouped
		if len(s.Locations) > 0 {
			menu = res.Tree.MenuPath(s.Locations[0])
		}

		m.rows = append(m.rows, row{
			sym:     s,
			value:   v.String(),
			menu:    menu,
			visible: res.Visible(s.Name),
		})
		m.names = append(m.names, s.Name)
		m.nameWidth = max(m.nameWidth, len(s.Name))
	}

	m.refilter()

	return m
}

func (m model) Init() tea.Cmd {
	return textinput.Blink
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.input.Width = msg.Width - len(filterPrompt) - 2
		m.scroll()

		return m, nil
	}

	var cmd tea.Cmd

	m.input, cmd = m.input.Update(msg)

	return m, cmd
}

func (m model) View() string {
	if m.quitting {
		return ""
	}

	if m.detail {
		if r, ok := m.selected(); ok {
			return renderDetails(r, m.tree)
		}
	}

	var b strings.Builder

	title := m.tree.Title
	if title == "" {
		title = "Configuration"
	}

	b.WriteString(titleStyle.Render(title))
	b.WriteString("\n")
	b.WriteString(m.input.View())
	b.WriteString("\n")

	end := min(m.offset+m.pageSize(), len(m.shown))
	for i := m.offset; i < end; i++ {
		idx := m.shown[i]
		line := renderRow(m.rows[idx], m.matched[idx], i == m.cursor, m.nameWidth)
		b.WriteString(lipgloss.NewStyle().MaxWidth(m.width).Render(line))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(hintStyle.Render(
		strconv.Itoa(len(m.shown)) + "/" + strconv.Itoa(len(m.rows)) +
			" symbols  Enter: details  Ctrl+P/Ctrl+N: history  Esc: clear/quit",
	))
	b.WriteString("\n")

	return b.String()
}

func (m model) handleKey(msg tea.KeyMsg) (model, tea.Cmd) {
	m.logger.TraceContext(
		m.ctxFunc(),
		"browse keypress",
		slog.String("key", msg.String()),
		slog.Int("type", int(msg.Type)),
	)

	if m.detail {
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyCtrlD:
			m.quitting = true

			return m, tea.Quit

		case tea.KeyEsc, tea.KeyEnter, tea.KeyBackspace:
			m.detail = false
		}

		return m, nil
	}

	switch msg.Type {
	case tea.KeyCtrlC:
		if m.input.Value() == "" {
			m.quitting = true

			return m, tea.Quit
		}

		m.setQuery("")

		return m, nil

	case tea.KeyCtrlD:
		m.quitting = true

		return m, tea.Quit

	case tea.KeyEsc:
		if m.input.Value() == "" {
			m.quitting = true

			return m, tea.Quit
		}

		m.setQuery("")

		return m, nil

	case tea.KeyEnter:
		if _, ok := m.selected(); !ok {
			return m, nil
		}

		if err := m.history.Add(m.input.Value()); err != nil {
			m.logger.WarnContext(m.ctxFunc(), "could not save history",
				slog.String("error", err.Error()),
			)
		}

		m.historyIdx = m.history.Len()
		m.detail = true

		return m, nil

	case tea.KeyUp:
		m.move(-1)

		return m, nil

	case tea.KeyDown:
		m.move(1)

		return m, nil

	case tea.KeyPgUp:
		m.move(-m.pageSize())

		return m, nil

	case tea.KeyPgDown:
		m.move(m.pageSize())

		return m, nil

	case tea.KeyCtrlP:
		if m.historyIdx > 0 {
			m.historyIdx--
			query, _ := m.history.Get(m.historyIdx)
			m.setQuery(query)
		}

		return m, nil

	case tea.KeyCtrlN:
		if m.historyIdx < m.history.Len() {
			m.historyIdx++
			query, _ := m.history.Get(m.historyIdx)
			m.setQuery(query)
		}

		return m, nil
	}

	var cmd tea.Cmd

	before := m.input.Value()
	m.input, cmd = m.input.Update(msg)

	if m.input.Value() != before {
		m.historyIdx = m.history.Len()
		m.refilter()
	}

	return m, cmd
}

// setQuery replaces the filter text and recomputes the list.
func (m *model) setQuery(query string) {
	m.input.SetValue(query)
	m.input.CursorEnd()
	m.refilter()
}

// refilter recomputes the rows shown for the current filter text, best
// matches first, and resets the cursor.
func (m *model) refilter() {
	query := strings.TrimSpace(m.input.Value())

	m.shown = m.shown[:0]
	m.matched = nil
	m.cursor = 0
	m.offset = 0

	if query == "" {
		for i := range m.rows {
			m.shown = append(m.shown, i)
		}

		return
	}

	matches := fuzzy.Find(query, m.names)
	m.matched = make(map[int][]int, len(matches))

	for _, match := range matches {
		m.shown = append(m.shown, match.Index)
		m.matched[match.Index] = match.MatchedIndexes
	}
}

func (m *model) move(delta int) {
	if len(m.shown) == 0 {
		return
	}

	m.cursor = min(max(m.cursor+delta, 0), len(m.shown)-1)
	m.scroll()
}

// scroll keeps the cursor on screen.
func (m *model) scroll() {
	page := m.pageSize()

	switch {
	case m.cursor < m.offset:
		m.offset = m.cursor
	case m.cursor >= m.offset+page:
		m.offset = m.cursor - page + 1
	}
}

func (m model) pageSize() int { return max(m.height-chrome, 1) }

func (m model) selected() (row, bool) {
	if m.cursor < 0 || m.cursor >= len(m.shown) {
		return row{}, false
	}

	return m.rows[m.shown[m.cursor]], true
}
