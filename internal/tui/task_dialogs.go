package tui

import (
	"strings"
	"time"

	"taskdeck/internal/form"
	"taskdeck/internal/model"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type dialogKind int

const (
	dialogClosed dialogKind = iota
	dialogCreating
	dialogEditing
	dialogConfirmDelete
	dialogViewing
)

func (k dialogKind) String() string {
	switch k {
	case dialogCreating:
		return "creating"
	case dialogEditing:
		return "editing"
	case dialogConfirmDelete:
		return "confirm-delete"
	case dialogViewing:
		return "viewing"
	default:
		return "closed"
	}
}

// Focus positions inside the task form.
const (
	formFocusTitle = iota
	formFocusDescription
	formFocusSave
	formFocusCancel
	formFocusCount
)

// taskDialog is the one open dialog, if any. task is the record the dialog is bound to
// (edit target, delete target or viewed detail); it is zero while creating.
type taskDialog struct {
	kind dialogKind
	task model.Task

	title textinput.Model
	desc  textarea.Model
	errs  form.Errors
	focus int

	confirmFocus confirmModalFocus
}

func closedDialog() taskDialog {
	return taskDialog{kind: dialogClosed}
}

// newFormDialog opens the create form (task is nil) or the edit form prefilled from task.
func newFormDialog(task *model.Task) (taskDialog, tea.Cmd) {
	dlg := taskDialog{kind: dialogCreating, errs: form.Errors{}}

	dlg.title = textinput.New()
	dlg.title.Prompt = ""
	dlg.title.Placeholder = form.FieldTitle.Label()
	dlg.title.CharLimit = 0
	dlg.title.Width = 48
	dlg.title.Cursor.Style = lipgloss.NewStyle().Foreground(colorAccentFg).Background(colorAccent)

	dlg.desc = textarea.New()
	dlg.desc.Placeholder = form.FieldDescription.Label()
	dlg.desc.ShowLineNumbers = false
	dlg.desc.CharLimit = 0
	dlg.desc.MaxHeight = 0
	dlg.desc.SetWidth(48)
	dlg.desc.SetHeight(5)

	if task != nil {
		dlg.kind = dialogEditing
		dlg.task = *task
		dlg.title.SetValue(task.Title)
		dlg.desc.SetValue(task.Description)
	}
	cmd := dlg.setFocus(formFocusTitle)
	return dlg, cmd
}

func newConfirmDeleteDialog(task model.Task) taskDialog {
	return taskDialog{kind: dialogConfirmDelete, task: task, confirmFocus: confirmFocusCancel}
}

func newViewDialog(task model.Task) taskDialog {
	return taskDialog{kind: dialogViewing, task: task}
}

func (d taskDialog) isForm() bool {
	return d.kind == dialogCreating || d.kind == dialogEditing
}

// boundTo reports whether the dialog is still the one opened for id.
func (d taskDialog) boundTo(kind dialogKind, id string) bool {
	return d.kind == kind && d.task.ID == id
}

func (d taskDialog) draft() form.TaskDraft {
	return form.TaskDraft{Title: d.title.Value(), Description: d.desc.Value()}
}

func (d *taskDialog) setFocus(i int) tea.Cmd {
	d.focus = ((i % formFocusCount) + formFocusCount) % formFocusCount
	d.title.Blur()
	d.desc.Blur()
	switch d.focus {
	case formFocusTitle:
		return d.title.Focus()
	case formFocusDescription:
		return d.desc.Focus()
	}
	return nil
}

// updateInputs forwards msg to the focused input and clears that field's error when its
// value changes.
func (d taskDialog) updateInputs(msg tea.Msg) (taskDialog, tea.Cmd) {
	var cmd tea.Cmd
	switch d.focus {
	case formFocusTitle:
		before := d.title.Value()
		d.title, cmd = d.title.Update(msg)
		if d.title.Value() != before {
			d.errs.Clear(form.FieldTitle)
		}
	case formFocusDescription:
		before := d.desc.Value()
		d.desc, cmd = d.desc.Update(msg)
		if d.desc.Value() != before {
			d.errs.Clear(form.FieldDescription)
		}
	}
	return d, cmd
}

func (d taskDialog) view(width, height int, busy bool) string {
	w := modalWidth(width)
	switch d.kind {
	case dialogCreating, dialogEditing:
		return d.viewForm(w, busy)
	case dialogConfirmDelete:
		body := "Are you sure you want to delete " + quoteTitle(d.task.Title) + "?"
		return renderConfirmModal(w, "Delete Task", body, "Delete", "Cancel", d.confirmFocus, busy)
	case dialogViewing:
		return d.viewDetail(w, height)
	default:
		return ""
	}
}

func (d taskDialog) viewForm(w int, busy bool) string {
	bodyW := modalBodyWidth(w)
	title := "New Task"
	if d.kind == dialogEditing {
		title = "Edit Task"
	}

	label := func(f form.Field, focused bool) string {
		st := lipgloss.NewStyle().Foreground(colorSurfaceFg)
		if focused {
			st = st.Foreground(colorAccent).Bold(true)
		}
		return st.Render(f.Label())
	}
	fieldErr := func(f form.Field) string {
		if msg, ok := d.errs[f]; ok {
			return "\n" + styleFieldError().Width(bodyW).Render(msg)
		}
		return ""
	}

	focusedBtn := -1
	switch d.focus {
	case formFocusSave:
		focusedBtn = 0
	case formFocusCancel:
		focusedBtn = 1
	}
	save := "Save"
	if busy {
		save = "Saving…"
	}

	content := strings.Join([]string{
		label(form.FieldTitle, d.focus == formFocusTitle),
		d.title.View() + fieldErr(form.FieldTitle),
		"",
		label(form.FieldDescription, d.focus == formFocusDescription),
		d.desc.View() + fieldErr(form.FieldDescription),
		"",
		renderButtons([]string{save, "Cancel"}, focusedBtn, busy),
		"",
		styleMuted().Width(bodyW).Render("tab: focus   ctrl+s: save   esc: cancel"),
	}, "\n")
	return renderModalBox(w, title, content)
}

func (d taskDialog) viewDetail(w, height int) string {
	bodyW := modalBodyWidth(w)
	desc := renderMarkdown(d.task.Description, bodyW)
	if desc == "" {
		desc = styleMuted().Render("(no description)")
	}
	meta := []string{}
	if !d.task.CreatedAt.IsZero() {
		meta = append(meta, "Created: "+formatTimestamp(d.task.CreatedAt))
	}
	if !d.task.UpdatedAt.IsZero() {
		meta = append(meta, "Updated: "+formatTimestamp(d.task.UpdatedAt))
	}

	parts := []string{styleHeading().Width(bodyW).Render(d.task.Title), "", desc}
	if len(meta) > 0 {
		parts = append(parts, "", styleMuted().Render(strings.Join(meta, "\n")))
	}
	parts = append(parts, "", styleMuted().Render("esc/enter: close"))

	content := strings.Join(parts, "\n")
	if maxH := height - 4; maxH > 4 {
		content = normalizeHeight(content, maxH)
	}
	return renderModalBox(w, "Task Details", content)
}

func formatTimestamp(t time.Time) string {
	return t.Local().Format("2006-01-02 15:04")
}

func quoteTitle(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "this task"
	}
	return "\"" + s + "\""
}

// normalizeHeight cuts s to at most h lines, marking the cut.
func normalizeHeight(s string, h int) string {
	lines := strings.Split(s, "\n")
	if len(lines) <= h {
		return s
	}
	lines = lines[:h]
	lines[h-1] = styleMuted().Render("…")
	return strings.Join(lines, "\n")
}
