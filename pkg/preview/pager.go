package preview

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type keyMap struct {
	Up     key.Binding
	Down   key.Binding
	PgUp   key.Binding
	PgDown key.Binding
	Top    key.Binding
	Bottom key.Binding
	Quit   key.Binding
}

var keys = keyMap{
	Up:     key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down:   key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
	PgUp:   key.NewBinding(key.WithKeys("pgup", "b"), key.WithHelp("PgUp", "page up")),
	PgDown: key.NewBinding(key.WithKeys("pgdown", " ", "f"), key.WithHelp("PgDn", "page down")),
	Top:    key.NewBinding(key.WithKeys("home", "g"), key.WithHelp("g", "top")),
	Bottom: key.NewBinding(key.WithKeys("end", "G"), key.WithHelp("G", "bottom")),
	Quit:   key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q", "quit")),
}

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")).Padding(0, 1)
	keyStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Bold(true)
	keyDescStyle = lipgloss.NewStyle().Foreground(colorDim)
)

// Pager is a scrollable full-screen view of a rendered action. The markdown
// is re-rendered whenever the terminal width changes.
type Pager struct {
	title    string
	markdown string
	viewport viewport.Model
	ready    bool
	quitting bool
}

// NewPager returns a pager over markdown.
func NewPager(title, markdown string) Pager {
	return Pager{title: title, markdown: markdown}
}

// Page runs the pager until the user quits.
func Page(title, markdown string) error {
	_, err := tea.NewProgram(NewPager(title, markdown), tea.WithAltScreen()).Run()
	return err
}

func (p Pager) Init() tea.Cmd { return nil }

func (p Pager) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		w, h := msg.Width, msg.Height-2 // title + key bar
		if h < 1 {
			h = 1
		}
		if !p.ready {
			p.viewport = viewport.New(w, h)
			p.ready = true
		} else {
			p.viewport.Width = w
			p.viewport.Height = h
		}
		p.viewport.SetContent(Render(p.markdown, w-2))
		return p, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			p.quitting = true
			return p, tea.Quit
		case key.Matches(msg, keys.Top):
			p.viewport.GotoTop()
			return p, nil
		case key.Matches(msg, keys.Bottom):
			p.viewport.GotoBottom()
			return p, nil
		}
	}
	var cmd tea.Cmd
	p.viewport, cmd = p.viewport.Update(msg)
	return p, cmd
}

func (p Pager) View() string {
	if p.quitting {
		return ""
	}
	if !p.ready {
		return "loading…"
	}
	header := titleStyle.Render(Truncate(p.title, max(p.viewport.Width-2, 1)))
	bar := keyStyle.Render("↑↓") + keyDescStyle.Render(":scroll") + "  " +
		keyStyle.Render("g/G") + keyDescStyle.Render(":top/bottom") + "  " +
		keyStyle.Render("q") + keyDescStyle.Render(":quit") + "  " +
		keyDescStyle.Render(fmt.Sprintf("%3.f%%", p.viewport.ScrollPercent()*100))
	return header + "\n" + p.viewport.View() + "\n" + bar
}
