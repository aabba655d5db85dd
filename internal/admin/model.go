package admin

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/open5dchess/matchd/internal/lobby"
	"github.com/open5dchess/matchd/internal/session"
)

var (
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("62"))
	sectionStyle = lipgloss.NewStyle().Bold(true).MarginTop(1)
	footerStyle  = lipgloss.NewStyle().Faint(true)
)

// refreshInterval is how often the dashboard re-reads lobby.Snapshot, the
// way the teacher's GameModel drives its own render loop with a
// tea.Tick-based tickCmd.
const refreshInterval = 500 * time.Millisecond

type tickMsg time.Time

func tickCmd() tea.Cmd {
	return tea.Tick(refreshInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// dashboardModel is a read-only Bubble Tea model over live lobby and
// session state. It never sends anything back into the lobby or server.
type dashboardModel struct {
	lobby    *lobby.Lobby
	registry *session.Registry

	width, height int

	openTable    table.Model
	runningTable table.Model
	historyTable table.Model
}

func newDashboardModel(l *lobby.Lobby, registry *session.Registry, width, height int) dashboardModel {
	m := dashboardModel{
		lobby:        l,
		registry:     registry,
		width:        width,
		height:       height,
		openTable:    newTable([]string{"Passcode", "Color", "Clock", "Variant"}),
		runningTable: newTable([]string{"Match", "Clock", "Variant", "P1", "P2", "Elapsed"}),
		historyTable: newTable([]string{"Match", "Status", "Clock", "Variant", "Secs"}),
	}
	return m
}

func newTable(cols []string) table.Model {
	columns := make([]table.Column, len(cols))
	for i, c := range cols {
		columns[i] = table.Column{Title: c, Width: 12}
	}
	t := table.New(table.WithColumns(columns), table.WithFocused(false), table.WithHeight(6))
	style := table.DefaultStyles()
	style.Header = style.Header.BorderStyle(lipgloss.NormalBorder()).Bold(true)
	style.Selected = style.Cell
	t.SetStyles(style)
	return t
}

func (m dashboardModel) Init() tea.Cmd { return tickCmd() }

func (m dashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		}
		return m, nil

	case tickMsg:
		m.refresh()
		return m, tickCmd()
	}
	return m, nil
}

func (m *dashboardModel) refresh() {
	snap := m.lobby.Snapshot()

	openRows := make([]table.Row, 0, len(snap.OpenPublic))
	for _, o := range snap.OpenPublic {
		openRows = append(openRows, table.Row{
			fmt.Sprintf("%d", o.Passcode), colorName(o.Color), clockName(o.Clock), fmt.Sprintf("%d", o.Variant),
		})
	}
	m.openTable.SetRows(openRows)

	runningRows := make([]table.Row, 0, len(snap.Running))
	for _, r := range snap.Running {
		runningRows = append(runningRows, table.Row{
			fmt.Sprintf("%d", r.MatchID), clockName(r.Clock), fmt.Sprintf("%d", r.Variant),
			shortID(r.Player1), shortID(r.Player2), fmt.Sprintf("%ds", r.SecondsPassed),
		})
	}
	m.runningTable.SetRows(runningRows)

	historyRows := make([]table.Row, 0, len(snap.History))
	for _, h := range snap.History {
		status := "completed"
		if h.Status == lobby.HistoryInProgress {
			status = "in-progress"
		}
		historyRows = append(historyRows, table.Row{
			fmt.Sprintf("%d", h.MatchID), status, clockName(h.Clock), fmt.Sprintf("%d", h.Variant),
			fmt.Sprintf("%d", h.SecondsPassed),
		})
	}
	m.historyTable.SetRows(historyRows)
}

func (m dashboardModel) View() string {
	sessions := 0
	if m.registry != nil {
		sessions = m.registry.Count()
	}

	out := headerStyle.Render(fmt.Sprintf("matchd admin — %d connected sessions", sessions)) + "\n"
	out += sectionStyle.Render("Open matches") + "\n" + m.openTable.View() + "\n"
	out += sectionStyle.Render("Running matches") + "\n" + m.runningTable.View() + "\n"
	out += sectionStyle.Render("Recent history") + "\n" + m.historyTable.View() + "\n"
	out += footerStyle.Render("q to quit · read-only view, refreshes every 500ms")
	return out
}

func shortID(id lobby.SessionID) string {
	s := string(id)
	if len(s) > 8 {
		return s[:8]
	}
	return s
}

func colorName(c int64) string {
	switch c {
	case lobby.ColorWhite:
		return "white"
	case lobby.ColorBlack:
		return "black"
	case lobby.ColorRandom:
		return "random"
	default:
		return "none"
	}
}

func clockName(c int64) string {
	switch c {
	case 1:
		return "no-clock"
	case 2:
		return "short"
	case 3:
		return "medium"
	case 4:
		return "long"
	default:
		return "none"
	}
}
