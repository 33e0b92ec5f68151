package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/multierr"

	"github.com/wippyai/jsrt/runtime"
	"github.com/wippyai/jsrt/sys"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	outputStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#AAAAAA"))

	resultStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

// maxEntries bounds the transcript kept on screen.
const maxEntries = 20

type entry struct {
	src     string
	printed string
	value   string
	err     error
}

type interactiveModel struct {
	session *session
	input   textinput.Model
	history []string
	entries []entry
	histIdx int
	busy    bool
	lineNo  int
}

type evalResultMsg struct {
	entry entry
}

func newInteractiveModel(s *session) *interactiveModel {
	ti := textinput.New()
	ti.Placeholder = "multiply(191, 7)"
	ti.Prompt = promptStyle.Render("js> ")
	ti.Width = 72
	ti.Focus()

	return &interactiveModel{session: s, input: ti}
}

func (m *interactiveModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m *interactiveModel) eval(src string) tea.Cmd {
	m.lineNo++
	url := fmt.Sprintf("repl:%d", m.lineNo)
	return func() tea.Msg {
		res := m.session.Run(src, url)
		return evalResultMsg{entry: entry{
			src:     src,
			printed: res.printed,
			value:   res.value,
			err:     res.err,
		}}
	}
}

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "ctrl+d":
			return m, tea.Quit

		case "enter":
			src := strings.TrimSpace(m.input.Value())
			if src == "" || m.busy {
				return m, nil
			}
			m.history = append(m.history, src)
			m.histIdx = len(m.history)
			m.input.SetValue("")
			m.busy = true
			return m, m.eval(src)

		case "up":
			if m.histIdx > 0 {
				m.histIdx--
				m.input.SetValue(m.history[m.histIdx])
				m.input.CursorEnd()
			}
			return m, nil

		case "down":
			if m.histIdx < len(m.history)-1 {
				m.histIdx++
				m.input.SetValue(m.history[m.histIdx])
				m.input.CursorEnd()
			} else {
				m.histIdx = len(m.history)
				m.input.SetValue("")
			}
			return m, nil
		}

	case evalResultMsg:
		m.busy = false
		m.entries = append(m.entries, msg.entry)
		if len(m.entries) > maxEntries {
			m.entries = m.entries[len(m.entries)-maxEntries:]
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *interactiveModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("JsRT REPL"))
	b.WriteString(" ")
	b.WriteString(helpStyle.Render("backend: " + sys.Backend))
	b.WriteString("\n\n")

	for _, e := range m.entries {
		b.WriteString(promptStyle.Render("js> "))
		b.WriteString(e.src)
		b.WriteString("\n")
		if e.printed != "" {
			b.WriteString(outputStyle.Render(strings.TrimRight(e.printed, "\n")))
			b.WriteString("\n")
		}
		if e.err != nil {
			b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", e.err)))
		} else {
			b.WriteString(resultStyle.Render(e.value))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.input.View())
	b.WriteString("\n\n")
	b.WriteString(helpStyle.Render("enter eval • ↑/↓ history • ctrl+c quit"))

	return b.String()
}

func runInteractive(cfg *runtime.Config) (err error) {
	s, err := startSession(cfg)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, s.Close())
	}()

	p := tea.NewProgram(newInteractiveModel(s), tea.WithAltScreen())
	_, err = p.Run()
	return err
}
