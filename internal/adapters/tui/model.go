package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.trai.ch/fake/internal/adapters/telemetry"
	"go.trai.ch/fake/internal/core/domain"
)

const (
	taskListWidthRatio = 0.4
	logPaneBorderWidth = 4
)

// TaskNode is one row of the task list.
type TaskNode struct {
	Name       string
	Depth      int
	Status     domain.TaskStatus
	Term       *Vterm
	Start      time.Time
	End        time.Time
	Err        error
	Dependency string
}

// Elapsed returns how long the task ran, or has been running at now.
func (n *TaskNode) Elapsed(now time.Time) time.Duration {
	switch {
	case n.Start.IsZero():
		return 0
	case n.End.IsZero():
		return now.Sub(n.Start)
	default:
		return n.End.Sub(n.Start)
	}
}

// Model represents the main TUI state.
type Model struct {
	Tasks          []*TaskNode
	TaskMap        map[string]*TaskNode
	SpanMap        map[string]*TaskNode
	Spinner        spinner.Model
	Now            func() time.Time
	AutoScroll     bool
	ActiveTaskName string
	SelectedIdx    int
	ListOffset     int
	ListHeight     int
	ListWidth      int
	LogWidth       int
	LogHeight      int
	FollowMode     bool
	DisableTick    bool
}

// Init starts the spinner, which also refreshes elapsed times.
func (m *Model) Init() tea.Cmd {
	if m.DisableTick {
		return nil
	}
	return m.Spinner.Tick
}

func (m *Model) now() time.Time {
	if m.Now != nil {
		return m.Now()
	}
	return time.Now()
}

func (m *Model) ensureVisible() {
	if m.ListHeight <= 0 {
		return
	}
	if m.SelectedIdx < m.ListOffset {
		m.ListOffset = m.SelectedIdx
	} else if m.SelectedIdx >= m.ListOffset+m.ListHeight {
		m.ListOffset = m.SelectedIdx - m.ListHeight + 1
	}
}

func (m *Model) selectedTask() *TaskNode {
	if m.SelectedIdx >= 0 && m.SelectedIdx < len(m.Tasks) {
		return m.Tasks[m.SelectedIdx]
	}
	return nil
}

func (m *Model) updateActiveView() {
	node := m.selectedTask()
	if node == nil {
		return
	}
	m.ActiveTaskName = node.Name
	if m.FollowMode && m.AutoScroll {
		node.Term.ScrollToBottom()
	}
}

func (m *Model) selectTask(name string) {
	for i, t := range m.Tasks {
		if t.Name == name {
			m.SelectedIdx = i
			break
		}
	}
	m.ensureVisible()
	m.updateActiveView()
}

func (m *Model) newTerm() *Vterm {
	term := NewVterm()
	if m.LogWidth > 0 && m.LogHeight > 0 {
		term.SetWidth(m.LogWidth)
		term.SetHeight(m.LogHeight)
	}
	return term
}

// Update handles incoming messages and updates the model state.
//
//nolint:cyclop // one case per message type
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m, m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.ListWidth = int(float64(msg.Width) * taskListWidthRatio)
		m.LogWidth = msg.Width - m.ListWidth - logPaneBorderWidth
		m.LogHeight = msg.Height - lipgloss.Height(titleStyle.Render("LOGS"))
		m.ListHeight = msg.Height - lipgloss.Height(titleStyle.Render("TASKS")+"\n\n")
		m.ensureVisible()

		for _, node := range m.Tasks {
			node.Term.SetWidth(m.LogWidth)
			node.Term.SetHeight(m.LogHeight)
		}

	case spinner.TickMsg:
		if m.DisableTick {
			return m, nil
		}
		var cmd tea.Cmd
		m.Spinner, cmd = m.Spinner.Update(msg)
		return m, cmd

	case telemetry.MsgInitPlan:
		m.initPlan(msg.Plan)

	case telemetry.MsgTaskStart:
		node, ok := m.TaskMap[msg.Name]
		if !ok {
			// Not part of the plan, e.g. a span started outside the scheduler.
			return m, nil
		}
		node.Status = domain.StatusRunning
		node.Start = msg.StartTime
		m.SpanMap[msg.SpanID] = node
		if m.FollowMode {
			m.selectTask(msg.Name)
		}

	case telemetry.MsgTaskLog:
		if node, ok := m.SpanMap[msg.SpanID]; ok {
			_, _ = node.Term.Write(msg.Data)
		}

	case telemetry.MsgTaskComplete:
		if node, ok := m.SpanMap[msg.SpanID]; ok {
			node.End = msg.EndTime
			node.Err = msg.Err
			if msg.Err != nil {
				node.Status = domain.StatusFailed
			} else {
				node.Status = domain.StatusCompleted
			}
		}

	case telemetry.MsgTaskSkip:
		if node, ok := m.TaskMap[msg.Name]; ok {
			node.Status = domain.StatusSkipped
			node.Dependency = msg.Dependency
		}
	}

	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "q", "ctrl+c":
		return tea.Quit
	case "k", "up":
		if m.SelectedIdx > 0 {
			m.SelectedIdx--
			m.FollowMode = false
			m.ensureVisible()
			m.updateActiveView()
		}
	case "j", "down":
		if m.SelectedIdx < len(m.Tasks)-1 {
			m.SelectedIdx++
			m.FollowMode = false
			m.ensureVisible()
			m.updateActiveView()
		}
	case "esc":
		m.FollowMode = true
		for i, t := range m.Tasks {
			if t.Status == domain.StatusRunning {
				m.SelectedIdx = i
				break
			}
		}
		m.ensureVisible()
		m.updateActiveView()
	default:
		if node, ok := m.TaskMap[m.ActiveTaskName]; ok {
			node.Term.Scroll(msg)
		}
	}
	return nil
}

// initPlan replaces the task list with one row per planned task, in plan order.
func (m *Model) initPlan(plan domain.Plan) {
	m.Tasks = make([]*TaskNode, len(plan.Order))
	m.TaskMap = make(map[string]*TaskNode, len(plan.Order))
	m.SpanMap = make(map[string]*TaskNode)
	m.SelectedIdx = 0
	m.ListOffset = 0
	m.ActiveTaskName = ""

	for i, name := range plan.Order {
		node := &TaskNode{
			Name:   name.String(),
			Depth:  plan.Depths[name],
			Status: domain.StatusPending,
			Term:   m.newTerm(),
		}
		m.Tasks[i] = node
		m.TaskMap[node.Name] = node
	}
}
