// Package ui renders the checklist in the terminal for `timegate watch`.
// The model never touches the engine: it receives snapshots and forwards
// user actions to a Controller.
package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/dotcommander/timegate/internal/engine"
)

// Controller carries user actions to the engine host. Calls may block
// briefly; the model invokes them from tea.Cmd goroutines.
type Controller interface {
	Toggle(id int)
	AcceptIntro()
}

// SnapshotMsg delivers freshly sampled engine state.
type SnapshotMsg struct {
	Snapshot engine.Snapshot
}

// NoticeMsg shows a one-line status under the list.
type NoticeMsg struct {
	Text string
	Err  bool
}

const barWidth = 30

// Model is the bubbletea model for the watch screen.
type Model struct {
	title string
	snap  engine.Snapshot
	ctrl  Controller

	cursor  int
	consent bool
	notice  NoticeMsg

	keys     keyMap
	help     help.Model
	width    int
	quitting bool
}

// New returns a model showing snap until the first SnapshotMsg arrives.
func New(title string, snap engine.Snapshot, ctrl Controller) Model {
	return Model{
		title: title,
		snap:  snap,
		ctrl:  ctrl,
		keys:  defaultKeys(),
		help:  help.New(),
	}
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		return m, nil

	case SnapshotMsg:
		m.snap = msg.Snapshot
		m.cursor = clamp(m.cursor, len(m.visible()))
		return m, nil

	case NoticeMsg:
		m.notice = msg
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	}

	switch m.snap.Phase {
	case engine.ShowingIntro:
		switch {
		case key.Matches(msg, m.keys.Consent):
			m.consent = !m.consent
		case key.Matches(msg, m.keys.Accept):
			if !m.consent {
				m.notice = NoticeMsg{Text: "Tick the consent box first (c).", Err: true}
				return m, nil
			}
			ctrl := m.ctrl
			return m, func() tea.Msg {
				ctrl.AcceptIntro()
				return nil
			}
		}

	case engine.Active:
		tasks := m.visible()
		switch {
		case key.Matches(msg, m.keys.Up):
			if m.cursor > 0 {
				m.cursor--
			}
		case key.Matches(msg, m.keys.Down):
			if m.cursor < len(tasks)-1 {
				m.cursor++
			}
		case key.Matches(msg, m.keys.Toggle):
			if len(tasks) == 0 {
				return m, nil
			}
			ts := tasks[m.cursor]
			if !ts.Unlockable {
				m.notice = NoticeMsg{Text: lockedReason(ts), Err: true}
				return m, nil
			}
			ctrl, id := m.ctrl, ts.ID
			return m, func() tea.Msg {
				ctrl.Toggle(id)
				return nil
			}
		}
	}
	return m, nil
}

// visible lists tasks shown on screen, in id order.
func (m Model) visible() []engine.TaskState {
	out := make([]engine.TaskState, 0, len(m.snap.Tasks))
	for _, ts := range m.snap.Tasks {
		if ts.Visible {
			out = append(out, ts)
		}
	}
	return out
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(m.header())
	b.WriteString("\n\n")

	switch m.snap.Phase {
	case engine.WaitingForEvent:
		b.WriteString(m.waitingView())
	case engine.ShowingIntro:
		b.WriteString(m.introView())
	default:
		b.WriteString(m.activeView())
	}

	if m.notice.Text != "" {
		b.WriteString("\n")
		if m.notice.Err {
			b.WriteString(StyleError.Render(m.notice.Text))
		} else {
			b.WriteString(StyleSuccess.Render(m.notice.Text))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func (m Model) header() string {
	clockText := m.snap.SampledAt.Format("15:04:05")
	return lipgloss.JoinHorizontal(lipgloss.Center,
		StyleTitle.Render(m.title),
		"  ",
		StyleClock.Render(clockText),
	)
}

func (m Model) waitingView() string {
	var b strings.Builder
	b.WriteString(StyleText.Render("The event has not started yet."))
	b.WriteString("\n\n")
	b.WriteString(StylePrimary.Bold(true).Render(m.snap.Countdown))
	if m.snap.EventStart != nil {
		b.WriteString("\n")
		b.WriteString(StyleSubtle.Render("starts " + m.snap.EventStart.Format("2006-01-02 15:04")))
	}
	b.WriteString("\n")
	return b.String()
}

func (m Model) introView() string {
	var b strings.Builder
	b.WriteString(StyleTitle.Render("Before you begin"))
	b.WriteString("\n\n")
	b.WriteString(StyleText.Render("Tasks appear through the day. Each one opens only after the previous one is done."))
	b.WriteString("\n")
	b.WriteString(StyleText.Render("Descriptions are revealed shortly before their task unlocks."))
	b.WriteString("\n\n")
	box := "[ ]"
	if m.consent {
		box = StyleSuccess.Render("[x]")
	}
	b.WriteString(box + " I have read the rules")
	b.WriteString("\n\n")
	if m.consent {
		b.WriteString(StylePrimary.Render("Press a to start."))
	} else {
		b.WriteString(StyleSubtle.Render("Press c to tick the box."))
	}
	b.WriteString("\n")
	return b.String()
}

func (m Model) activeView() string {
	var b strings.Builder
	p := m.snap.Progress
	fmt.Fprintf(&b, "Available: %s   Completed: %s   %s\n\n",
		StylePrimary.Render(fmt.Sprint(p.Visible)),
		StyleSuccess.Render(fmt.Sprint(p.Completed)),
		progressBar(p.Percent, barWidth),
	)

	tasks := m.visible()
	if len(tasks) == 0 {
		b.WriteString(StyleCard.Render(StyleText.Render("No tasks yet") + "\n" + StyleSubtle.Render("Tasks appear at their scheduled time.")))
		b.WriteString("\n")
		return b.String()
	}

	for i, ts := range tasks {
		b.WriteString(m.taskCard(ts, i == m.cursor))
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) taskCard(ts engine.TaskState, selected bool) string {
	mark := StylePrimary.Render("○")
	title := StyleText.Bold(true).Render(ts.Title)
	switch {
	case ts.Completed:
		mark = StyleSuccess.Render("●")
		title = StyleDone.Render(ts.Title)
	case !ts.Unlockable:
		mark = StyleSubtle.Render("🔒")
	}

	line := fmt.Sprintf("%s %s  %s", mark, title, StyleSubtle.Render(ts.UnlockAt.String()))
	var body string
	switch {
	case !ts.DescriptionVisible:
		body = StyleSubtle.Render("Revealed at " + ts.RevealAt.String())
	case ts.Completed:
		body = StyleDone.Render(ts.Description)
	default:
		body = StyleText.Render(ts.Description)
	}

	style := StyleCard
	if selected {
		style = StyleCardSelected
	}
	if m.width > 4 {
		style = style.Width(m.width - 4)
	}
	return style.Render(line + "\n" + body)
}

func lockedReason(ts engine.TaskState) string {
	if !ts.DescriptionVisible {
		return fmt.Sprintf("%q opens at %s.", ts.Title, ts.RevealAt)
	}
	return fmt.Sprintf("Finish task %d before %q.", ts.ID-1, ts.Title)
}

func progressBar(percent float64, width int) string {
	filled := int(percent / 100 * float64(width))
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}
	return StyleBarFilled.Render(strings.Repeat("█", filled)) +
		StyleBarEmpty.Render(strings.Repeat("░", width-filled)) +
		fmt.Sprintf(" %3.0f%%", percent)
}

func clamp(cursor, n int) int {
	if n == 0 || cursor < 0 {
		return 0
	}
	if cursor >= n {
		return n - 1
	}
	return cursor
}
