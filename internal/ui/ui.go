// Package ui provides the interactive list picker used when a choice was not
// given on the command line.
package ui

import (
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// ErrCancelled is returned when the user leaves the picker without choosing.
var ErrCancelled = errors.New("selection cancelled")

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("230")).Background(lipgloss.Color("62")).Padding(0, 1)
	frameStyle = lipgloss.NewStyle().Margin(1, 2)
)

// Interactive reports whether stdin and stderr are terminals, so a picker
// can be shown.
func Interactive() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stderr.Fd()))
}

// Select shows items in a filterable list and returns the chosen index.
func Select(prompt string, items []string) (int, error) {
	if len(items) == 0 {
		return -1, fmt.Errorf("no items to select from")
	}

	final, err := tea.NewProgram(newModel(prompt, items), tea.WithAltScreen(), tea.WithOutput(os.Stderr)).Run()
	if err != nil {
		return -1, fmt.Errorf("running picker: %w", err)
	}

	m, ok := final.(model)
	if !ok || m.cancelled || m.choice < 0 {
		return -1, ErrCancelled
	}
	return m.choice, nil
}

// entry is one row of the picker.
type entry struct {
	label string
	index int
}

func (e entry) Title() string       { return e.label }
func (e entry) Description() string { return "" }
func (e entry) FilterValue() string { return e.label }

type model struct {
	list      list.Model
	choice    int
	cancelled bool
}

func newModel(prompt string, items []string) model {
	rows := make([]list.Item, len(items))
	for i, it := range items {
		rows[i] = entry{label: it, index: i}
	}

	delegate := list.NewDefaultDelegate()
	delegate.ShowDescription = false
	delegate.SetSpacing(0)

	l := list.New(rows, delegate, 80, 20)
	l.Title = prompt
	l.Styles.Title = titleStyle
	l.SetShowStatusBar(len(items) > 1)

	return model{list: l, choice: -1}
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		h, v := frameStyle.GetFrameSize()
		m.list.SetSize(msg.Width-h, msg.Height-v)
		return m, nil

	case tea.KeyMsg:
		if m.list.FilterState() == list.Filtering {
			break
		}
		switch msg.String() {
		case "enter":
			if e, ok := m.list.SelectedItem().(entry); ok {
				m.choice = e.index
				return m, tea.Quit
			}
		case "ctrl+c", "esc", "q":
			if msg.String() == "esc" && m.list.FilterState() == list.FilterApplied {
				break
			}
			m.cancelled = true
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m model) View() string {
	return frameStyle.Render(m.list.View())
}
