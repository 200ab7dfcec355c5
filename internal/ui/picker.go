package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mydehq/otr/internal/matcher"
	"github.com/mydehq/otr/internal/types"
)

// ShowLoader fetches the catalog shows for the picker
type ShowLoader func(ctx context.Context) ([]types.CatalogEntry, error)

type showsLoadedMsg struct {
	shows []types.CatalogEntry
	err   error
}

// searchPicker lists catalog shows re-ranked against the query as the
// user types.
type searchPicker struct {
	ctx    context.Context
	load   ShowLoader
	scorer matcher.Scorer

	shows   []types.CatalogEntry
	results []types.MatchCandidate
	err     error
	loading bool

	input   textinput.Model
	spinner spinner.Model
	cursor  int

	windowSize int

	aborted  bool
	chosen   bool
	selected int
}

func newSearchPicker(ctx context.Context, query string, load ShowLoader, scorer matcher.Scorer) searchPicker {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = StyleCommand

	in := textinput.New()
	in.Placeholder = "show title"
	in.Prompt = "  search: "
	in.SetValue(query)
	in.Focus()

	return searchPicker{
		ctx:        ctx,
		load:       load,
		scorer:     scorer,
		loading:    true,
		input:      in,
		spinner:    s,
		windowSize: 12,
	}
}

func (m searchPicker) Init() tea.Cmd {
	load := func() tea.Msg {
		shows, err := m.load(m.ctx)
		return showsLoadedMsg{shows: shows, err: err}
	}
	return tea.Batch(load, m.spinner.Tick, textinput.Blink)
}

// rerank recomputes results for the current query. An empty query lists
// the catalog in its own order.
func (m *searchPicker) rerank() {
	query := strings.TrimSpace(m.input.Value())
	if query == "" {
		m.results = m.results[:0]
		for _, s := range m.shows {
			m.results = append(m.results, types.MatchCandidate{Label: s.Title, RefID: s.ID})
		}
	} else {
		m.results = m.scorer.Rank(query, m.shows, 0, matcher.MaxCandidates)
	}
	if m.cursor >= len(m.results) {
		m.cursor = max(len(m.results)-1, 0)
	}
}

func (m searchPicker) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case showsLoadedMsg:
		m.loading = false
		m.shows, m.err = msg.shows, msg.err
		m.rerank()
		return m, nil

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.aborted = true
			return m, tea.Quit

		case tea.KeyEnter:
			if m.cursor < len(m.results) {
				m.chosen = true
				m.selected = m.results[m.cursor].RefID
				return m, tea.Quit
			}
			return m, nil

		case tea.KeyUp, tea.KeyShiftTab:
			if m.cursor > 0 {
				m.cursor--
			}
			return m, nil

		case tea.KeyDown, tea.KeyTab:
			if m.cursor < len(m.results)-1 {
				m.cursor++
			}
			return m, nil
		}
	}

	before := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if m.input.Value() != before {
		m.cursor = 0
		m.rerank()
	}
	return m, cmd
}

func (m searchPicker) View() string {
	var b strings.Builder

	title := StyleHeader.Render("Catalog search")
	switch {
	case m.loading:
		title += StyleCommand.Render(fmt.Sprintf("  %s loading catalog…", m.spinner.View()))
	case m.err != nil:
		title += StyleFlag.Render("  " + m.err.Error())
	default:
		title += StyleDim.Render(fmt.Sprintf("  %d of %d shows", len(m.results), len(m.shows)))
	}
	b.WriteString(title + "\n")
	b.WriteString(m.input.View() + "\n\n")

	if !m.loading && len(m.results) == 0 {
		b.WriteString(StyleDim.Render("  No matching shows.") + "\n")
	}

	start, end := window(m.cursor, len(m.results), m.windowSize)
	if start > 0 {
		b.WriteString(StyleDim.Render(fmt.Sprintf("  ↑ %d more", start)) + "\n")
	}
	selectedStyle := lipgloss.NewStyle().Bold(true).Foreground(colorCommand)
	for i := start; i < end; i++ {
		r := m.results[i]
		score := ""
		if r.Score > 0 {
			score = StyleDim.Render(fmt.Sprintf(" %.2f", r.Score))
		}
		id := StyleDim.Render(fmt.Sprintf(" [%d]", r.RefID))
		if i == m.cursor {
			b.WriteString("  " + selectedStyle.Render("> "+r.Label) + id + score + "\n")
		} else {
			b.WriteString("    " + r.Label + id + score + "\n")
		}
	}
	if end < len(m.results) {
		b.WriteString(StyleDim.Render(fmt.Sprintf("  ↓ %d more", len(m.results)-end)) + "\n")
	}

	b.WriteString("\n" + StyleDim.Render("  ↑/↓ navigate • type to search • enter select • esc back") + "\n")
	return b.String()
}

// window returns the visible [start, end) slice around cursor
func window(cursor, total, size int) (int, int) {
	if total <= size {
		return 0, total
	}
	start := max(cursor-size/2, 0)
	end := start + size
	if end > total {
		end = total
		start = end - size
	}
	return start, end
}

// RunSearch shows the live picker and returns the chosen show id. ok is
// false when the user left without choosing.
func RunSearch(ctx context.Context, query string, load ShowLoader, scorer matcher.Scorer) (id int, ok bool, err error) {
	interceptedKey = ""
	p := tea.NewProgram(newSearchPicker(ctx, query, load, scorer), tea.WithFilter(keyFilter), tea.WithContext(ctx))
	final, err := p.Run()
	if err != nil {
		return 0, false, fmt.Errorf("search picker failed: %w", err)
	}
	m := final.(searchPicker)
	if m.err != nil {
		return 0, false, m.err
	}
	if m.aborted || !m.chosen {
		return 0, false, nil
	}
	return m.selected, true, nil
}
