package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type severity int

const (
	severityInfo severity = iota
	severitySuccess
	severityError
)

func (s severity) String() string {
	switch s {
	case severitySuccess:
		return "success"
	case severityError:
		return "error"
	default:
		return "info"
	}
}

// notificationTimeout is how long a notification stays up without being dismissed.
var notificationTimeout = 6 * time.Second

// notification is the single transient status line. A newer one replaces the older and
// restarts the timer; seq ties each expiry tick to the notification that scheduled it.
type notification struct {
	message  string
	severity severity
	visible  bool
	seq      int
}

func (n *notification) show(sev severity, message string) tea.Cmd {
	n.seq++
	n.message = message
	n.severity = sev
	n.visible = true
	seq := n.seq
	return tea.Tick(notificationTimeout, func(time.Time) tea.Msg { return noteExpiredMsg{seq: seq} })
}

func (n *notification) expire(seq int) {
	if seq == n.seq {
		n.visible = false
	}
}

func (n *notification) dismiss() {
	n.visible = false
}

func (n notification) view(width int) string {
	if !n.visible || n.message == "" {
		return ""
	}
	bg := colorInfo
	switch n.severity {
	case severitySuccess:
		bg = colorSuccess
	case severityError:
		bg = colorError
	}
	st := lipgloss.NewStyle().
		Foreground(colorAccentFg).
		Background(bg).
		Padding(0, 1)
	line := st.Render(n.message) + " " + styleMuted().Render("esc: dismiss")
	if width > 0 {
		line = lipgloss.NewStyle().MaxWidth(width).Render(line)
	}
	return line
}
