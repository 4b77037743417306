package tui

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"newton-gpt/internal/logbuf"
)

const pollInterval = 100 * time.Millisecond

const banner = `
 _  _  ____  _  _  ____  __   __ _        ___  ____  ____
( \( )( ___)( \/ )(_  _)/  \ (  ( \ ___  / __)(  _ \(_  _)
 )  (  )__)  \/\/   )(( () ) )  ( (___)( (_ \ ) __/  )(
(_)\_)(____)(__)(__)(__)\__/(_)\_)      \___/(__)   (__)`

var (
	bannerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))
	logStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	helpStyle   = lipgloss.NewStyle().Faint(true)
	popupStyle  = lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			Padding(1, 3).
			Foreground(lipgloss.Color("220")).
			Align(lipgloss.Center)
)

type tickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(pollInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Model is the status display: a banner, the shared log and a help line.
// The bot is started at most once, behind a confirm popup, through the
// callback injected by main.
type Model struct {
	buf   *logbuf.Buffer
	start func()

	vp      viewport.Model
	width   int
	height  int
	ready   bool
	lastLen int

	confirm bool
	started bool
}

func New(buf *logbuf.Buffer, start func()) Model {
	return Model{buf: buf, start: start, vp: viewport.New(0, 0)}
}

func (m Model) Init() tea.Cmd { return tick() }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		headerH := lipgloss.Height(m.headerView())
		footerH := lipgloss.Height(m.footerView())
		m.vp.Width = msg.Width - logStyle.GetHorizontalFrameSize()
		m.vp.Height = msg.Height - headerH - footerH - logStyle.GetVerticalFrameSize()
		m.ready = true
		return m, nil

	case tickMsg:
		if lines := m.buf.Snapshot(); len(lines) != m.lastLen {
			m.lastLen = len(lines)
			m.vp.SetContent(strings.Join(lines, "\n"))
			m.vp.GotoBottom()
		}
		return m, tick()

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "s":
			if !m.started {
				m.confirm = !m.confirm
			}
			return m, nil
		case "y":
			if m.confirm && !m.started {
				m.confirm = false
				m.started = true
				go m.start()
			}
			return m, nil
		case "n", "esc":
			m.confirm = false
			return m, nil
		default:
			var cmd tea.Cmd
			m.vp, cmd = m.vp.Update(msg)
			return m, cmd
		}
	}
	return m, nil
}

func (m Model) View() string {
	if !m.ready {
		return "loading..."
	}
	if m.confirm {
		popup := popupStyle.Render("Starting a Discord bot\n\nContinue running the bot? (y/n)")
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, popup)
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		m.headerView(),
		logStyle.Render(m.vp.View()),
		m.footerView(),
	)
}

func (m Model) headerView() string {
	return bannerStyle.Render(banner)
}

func (m Model) footerView() string {
	if m.started {
		return helpStyle.Render("bot running · press q to exit (restart the program to restart the bot)")
	}
	return helpStyle.Render("press q to exit, s to start bot")
}

// Run blocks until the user quits the display.
func Run(buf *logbuf.Buffer, start func()) error {
	p := tea.NewProgram(New(buf, start), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
