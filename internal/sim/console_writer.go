// Terminal console rendering live tracks and traffic via bubbletea
package sim

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"
	"golang.org/x/term"

	"tactimesh/internal/comms"
	"tactimesh/internal/geo"
	"tactimesh/internal/unit"
)

// teaProgram abstracts bubbletea.Program for testing.
type teaProgram interface {
	Send(tea.Msg)
}

// trackMsg carries one track row into the model.
type trackMsg struct{ row unit.TrackRow }

// messageMsg carries one tactical message into the model.
type messageMsg struct{ msg comms.Message }

// clockTickMsg refreshes the mission clock header.
type clockTickMsg time.Time

const consoleMessageCap = 50

var (
	headerStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("114"))
	clockStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	alertStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	routineStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	priorityStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("208"))
	borderStyle   = lipgloss.NewStyle().BorderStyle(lipgloss.NormalBorder()).BorderForeground(lipgloss.Color("240"))
)

// ConsoleWriter renders the tactical picture in a bubbletea TUI.
type ConsoleWriter struct {
	program    teaProgram
	done       chan struct{}
	sendSignal atomic.Bool
}

// NewConsoleWriter starts a bubbletea program bound to the engine and
// returns a writer feeding it.
func NewConsoleWriter(eng *Engine) *ConsoleWriter {
	w := &ConsoleWriter{done: make(chan struct{})}
	w.sendSignal.Store(true)

	width, height := 120, 40
	if tw, th, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
		width, height = tw, th
	}

	m := newConsoleModel(eng, width, height)
	p := tea.NewProgram(m, tea.WithAltScreen())
	w.program = p

	go func() {
		_, _ = p.Run()
		close(w.done)
		if w.sendSignal.Load() {
			if proc, err := os.FindProcess(os.Getpid()); err == nil {
				_ = proc.Signal(os.Interrupt)
			}
		}
	}()
	return w
}

// Done is closed when the console exits.
func (w *ConsoleWriter) Done() <-chan struct{} { return w.done }

// Quit stops the console without signalling the process.
func (w *ConsoleWriter) Quit() {
	w.sendSignal.Store(false)
	w.program.Send(tea.Quit())
}

// WriteTrack implements TrackWriter.
func (w *ConsoleWriter) WriteTrack(row unit.TrackRow) error {
	w.program.Send(trackMsg{row: row})
	return nil
}

// WriteTracks implements batch track writing.
func (w *ConsoleWriter) WriteTracks(rows []unit.TrackRow) error {
	for _, r := range rows {
		_ = w.WriteTrack(r)
	}
	return nil
}

// WriteMessage implements MessageWriter.
func (w *ConsoleWriter) WriteMessage(m comms.Message) error {
	w.program.Send(messageMsg{msg: m})
	return nil
}

type consoleModel struct {
	eng      *Engine
	nodes    table.Model
	traffic  viewport.Model
	input    textinput.Model
	messages []comms.Message
	now      time.Time
	width    int
	height   int
	status   string
	typing   bool
}

func newConsoleModel(eng *Engine, width, height int) consoleModel {
	columns := []table.Column{
		{Title: "CALLSIGN", Width: 10},
		{Title: "UNIT", Width: 8},
		{Title: "ROLE", Width: 12},
		{Title: "GRID", Width: 5},
		{Title: "LAT", Width: 9},
		{Title: "LON", Width: 10},
		{Title: "BATT", Width: 4},
		{Title: "SIG", Width: 4},
		{Title: "STATUS", Width: 8},
	}
	t := table.New(table.WithColumns(columns), table.WithHeight(8))

	vp := viewport.New(width-2, height/2)

	ti := textinput.New()
	ti.Placeholder = "RECIPIENT [TYPE] [PRIORITY] message"
	ti.CharLimit = 240

	m := consoleModel{
		eng:     eng,
		nodes:   t,
		traffic: vp,
		input:   ti,
		now:     time.Now(),
		width:   width,
		height:  height,
	}
	m.refreshNodes()
	m.messages = eng.Messages(consoleMessageCap)
	m.refreshTraffic()
	return m
}

func (m consoleModel) Init() tea.Cmd {
	return clockTickCmd()
}

func clockTickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return clockTickMsg(t)
	})
}

func (m consoleModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.traffic.Width = msg.Width - 2
		m.traffic.Height = msg.Height / 2
		m.refreshTraffic()
		return m, nil

	case clockTickMsg:
		m.now = time.Time(msg)
		return m, clockTickCmd()

	case trackMsg:
		m.refreshNodes()
		return m, nil

	case messageMsg:
		m.messages = append([]comms.Message{msg.msg}, m.messages...)
		if len(m.messages) > consoleMessageCap {
			m.messages = m.messages[:consoleMessageCap]
		}
		m.refreshTraffic()
		return m, nil

	case tea.KeyMsg:
		if m.typing {
			switch msg.String() {
			case "enter":
				m.status = m.submit()
				m.input.Reset()
				m.typing = false
				m.input.Blur()
				return m, nil
			case "esc":
				m.typing = false
				m.input.Blur()
				return m, nil
			default:
				var cmd tea.Cmd
				m.input, cmd = m.input.Update(msg)
				return m, cmd
			}
		}
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "s":
			m.typing = true
			return m, m.input.Focus()
		case "+", "=":
			m.eng.Zoom(true)
			return m, nil
		case "-":
			m.eng.Zoom(false)
			return m, nil
		case "c":
			m.eng.Recenter("")
			return m, nil
		default:
			var cmd tea.Cmd
			m.nodes, cmd = m.nodes.Update(msg)
			return m, cmd
		}
	}
	return m, nil
}

// submit parses the input line and sends a direct message from the command
// node. Format: RECIPIENT [TYPE] [PRIORITY] message text.
func (m *consoleModel) submit() string {
	fields := strings.Fields(m.input.Value())
	if len(fields) < 2 {
		return "usage: RECIPIENT [TYPE] [PRIORITY] message"
	}
	recipient := fields[0]
	msgType := comms.TypeCommand
	priority := comms.PriorityPriority
	rest := fields[1:]

	if len(rest) > 1 {
		if t, ok := parseType(rest[0]); ok {
			msgType = t
			rest = rest[1:]
		}
	}
	if len(rest) > 1 {
		if p, err := strconv.Atoi(rest[0]); err == nil && p >= 1 && p <= 3 {
			priority = p
			rest = rest[1:]
		}
	}

	msg, err := m.eng.Send("", recipient, msgType, priority, strings.Join(rest, " "))
	if err != nil {
		return fmt.Sprintf("send rejected: %v", err)
	}
	return fmt.Sprintf("sent #%d to %s", msg.ID, msg.Recipient)
}

func parseType(s string) (comms.Type, bool) {
	switch comms.Type(strings.ToUpper(s)) {
	case comms.TypeCommand, comms.TypeIntel, comms.TypeMedical, comms.TypeLogistics, comms.TypeSitrep, comms.TypeAlert:
		return comms.Type(strings.ToUpper(s)), true
	}
	return "", false
}

func (m *consoleModel) refreshNodes() {
	nodes := m.eng.Nodes()
	rows := make([]table.Row, len(nodes))
	for i, n := range nodes {
		rows[i] = table.Row{
			n.Callsign,
			n.Unit,
			n.Role,
			geo.GridLabel(n.Position),
			fmt.Sprintf("%.4f", n.Position.Lat),
			fmt.Sprintf("%.4f", n.Position.Lon),
			strconv.Itoa(n.Battery),
			strconv.Itoa(n.Signal),
			string(n.Status),
		}
	}
	m.nodes.SetRows(rows)
}

func (m *consoleModel) refreshTraffic() {
	var b strings.Builder
	for _, msg := range m.messages {
		style := routineStyle
		switch {
		case msg.Type == comms.TypeAlert:
			style = alertStyle
		case msg.Priority == comms.PriorityImmediate:
			style = priorityStyle
		}
		line := fmt.Sprintf("#%03d %s [%s] %s -> %s: %s",
			msg.ID, msg.Timestamp.Format("15:04:05"), msg.Type, msg.Sender, msg.Recipient, msg.Content)
		b.WriteString(style.Render(wordwrap.String(line, m.traffic.Width)))
		b.WriteString("\n")
	}
	m.traffic.SetContent(b.String())
}

func (m consoleModel) View() string {
	edges := m.eng.Connectivity()
	header := headerStyle.Render(fmt.Sprintf("TACTIMESH  %s", m.eng.MissionName())) +
		"  " + clockStyle.Render(m.eng.ClockDisplay()) +
		routineStyle.Render(fmt.Sprintf("  links=%d  nodes=%d", len(edges), len(m.eng.Nodes())))

	var input string
	if m.typing {
		input = m.input.View()
	} else {
		input = routineStyle.Render("s: send  +/-: zoom  c: recenter  q: quit  " + m.status)
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		borderStyle.Render(m.nodes.View()),
		borderStyle.Render(m.traffic.View()),
		input,
	)
}
