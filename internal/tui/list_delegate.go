package tui

import (
	"fmt"
	"io"
	"strings"

	"taskdeck/internal/model"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	xansi "github.com/charmbracelet/x/ansi"
)

type taskItem struct {
	task model.Task
}

func (i taskItem) Title() string       { return i.task.Title }
func (i taskItem) Description() string { return i.task.Description }
func (i taskItem) FilterValue() string { return strings.TrimSpace(i.task.Title) }

// taskDelegate renders one task per line: the title, then the first line of the
// description.
type taskDelegate struct {
	normal   lipgloss.Style
	selected lipgloss.Style
}

func newTaskDelegate() taskDelegate {
	return taskDelegate{
		normal: lipgloss.NewStyle().Foreground(colorSurfaceFg),
		selected: lipgloss.NewStyle().
			Foreground(colorSelectedFg).
			Background(colorSelectedBg).
			Bold(true),
	}
}

func (d taskDelegate) Height() int                             { return 1 }
func (d taskDelegate) Spacing() int                            { return 0 }
func (d taskDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }

func (d taskDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	contentW := m.Width()
	if contentW < 4 {
		return
	}
	it, ok := item.(taskItem)
	if !ok {
		fmt.Fprint(w, xansi.Truncate(fmt.Sprint(item), contentW, "…"))
		return
	}

	style := d.normal
	marker := "  "
	if index == m.Index() {
		style = d.selected
		marker = "> "
	}

	line := marker + it.task.Title
	if desc := firstLine(it.task.Description); desc != "" {
		line += "  " + desc
	}
	lineW := xansi.StringWidth(line)
	if lineW > contentW {
		line = xansi.Truncate(line, contentW-1, "") + "…"
	} else if lineW < contentW {
		line += strings.Repeat(" ", contentW-lineW)
	}
	fmt.Fprint(w, style.Render(line))
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = strings.TrimSpace(s[:i])
	}
	return s
}

func newTaskList() list.Model {
	l := list.New(nil, newTaskDelegate(), 0, 0)
	l.Title = "Tasks"
	// The page draws its own header and footer.
	l.SetShowTitle(false)
	l.SetShowHelp(false)
	l.SetShowStatusBar(false)
	l.SetShowPagination(true)
	l.SetFilteringEnabled(false)
	l.SetStatusBarItemName("task", "tasks")
	// q and esc belong to the page.
	l.KeyMap.Quit.SetEnabled(false)
	l.KeyMap.ForceQuit.SetEnabled(false)

	cursorUpKeys := append([]string{}, l.KeyMap.CursorUp.Keys()...)
	l.KeyMap.CursorUp.SetKeys(append(cursorUpKeys, "ctrl+p")...)
	cursorDownKeys := append([]string{}, l.KeyMap.CursorDown.Keys()...)
	l.KeyMap.CursorDown.SetKeys(append(cursorDownKeys, "ctrl+n")...)
	return l
}

func taskItems(tasks []model.Task) []list.Item {
	items := make([]list.Item, 0, len(tasks))
	for _, t := range tasks {
		items = append(items, taskItem{task: t})
	}
	return items
}
