package tui

import (
	"strings"

	"taskdeck/internal/api"
	"taskdeck/internal/form"
	"taskdeck/internal/model"
	"taskdeck/internal/router"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const (
	msgFetchFailed     = "Failed to fetch tasks"
	msgViewFailed      = "Failed to view task"
	msgSaveFailed      = "Failed to save task"
	msgCreated         = "Task created successfully"
	msgCreatedUnlisted = "Task created; reloading the list"
	msgUpdated         = "Task updated successfully"
	msgDeleted         = "Task deleted successfully"
	msgDeleteFailed    = "Failed to delete task"

	unknownUsername = "unknown"
)

// User menu entries.
const (
	menuItemLogout = iota
	menuItemClose
	menuItemsInTotal
)

type tasksPage struct {
	d     deps
	epoch int

	user  model.User
	tasks []model.Task
	list  list.Model

	dialog    taskDialog
	menuOpen  bool
	menuFocus int

	// busy covers create, edit and delete; loading covers the list fetch.
	busy    bool
	loading bool
	spin    spinner.Model

	width  int
	height int
}

func newTasksPage(d deps, epoch int) tasksPage {
	p := tasksPage{
		d:      d,
		epoch:  epoch,
		list:   newTaskList(),
		dialog: closedDialog(),
		spin:   spinner.New(spinner.WithSpinner(spinner.Dot)),
	}
	sess, err := d.session.Current(d.ctx)
	if err != nil {
		d.log.Warn("read session", "err", err)
	}
	p.user = sess.User
	return p
}

func (p *tasksPage) init() tea.Cmd {
	return p.fetch()
}

func (p *tasksPage) fetch() tea.Cmd {
	p.loading = true
	client, ctx, epoch := p.d.api, p.d.ctx, p.epoch
	return tea.Batch(p.spin.Tick, func() tea.Msg {
		tasks, err := client.ListTasks(ctx)
		return tasksLoadedMsg{epochTag: epochTag{epoch: epoch}, tasks: tasks, err: err}
	})
}

func (p *tasksPage) setSize(w, h int) {
	p.width, p.height = w, h
	if w <= 0 {
		w = 80
	}
	// Header line and footer.
	lh := h - 3
	if lh < 3 {
		lh = 3
	}
	p.list.SetSize(w, lh)
}

func (p tasksPage) overlayOpen() bool {
	return p.dialog.kind != dialogClosed || p.menuOpen
}

func (p *tasksPage) setTasks(tasks []model.Task) {
	p.tasks = tasks
	p.list.SetItems(taskItems(tasks))
}

func (p tasksPage) selected() (model.Task, bool) {
	it, ok := p.list.SelectedItem().(taskItem)
	if !ok {
		return model.Task{}, false
	}
	return it.task, true
}

func (p tasksPage) update(msg tea.Msg) (tasksPage, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		if !p.loading && !p.busy {
			return p, nil
		}
		var cmd tea.Cmd
		p.spin, cmd = p.spin.Update(msg)
		return p, cmd

	case tasksLoadedMsg:
		p.loading = false
		if msg.err != nil {
			p.d.log.Warn("list tasks", "err", msg.err)
			return p, notify(severityError, msgFetchFailed)
		}
		p.setTasks(msg.tasks)
		return p, nil

	case taskViewedMsg:
		if msg.err != nil {
			p.d.log.Warn("view task", "err", msg.err)
			return p, notify(severityError, msgViewFailed)
		}
		// Another dialog opened while the detail was loading; it keeps the screen.
		if p.overlayOpen() {
			return p, nil
		}
		p.dialog = newViewDialog(msg.task)
		return p, nil

	case taskSavedMsg:
		return p.applySaved(msg)

	case taskDeletedMsg:
		return p.applyDeleted(msg)

	case tea.KeyMsg:
		if p.menuOpen {
			return p.updateMenu(msg)
		}
		switch p.dialog.kind {
		case dialogCreating, dialogEditing:
			return p.updateForm(msg)
		case dialogConfirmDelete:
			return p.updateConfirm(msg)
		case dialogViewing:
			switch msg.String() {
			case "esc", "enter", "q", "v":
				p.dialog = closedDialog()
			}
			return p, nil
		}
		return p.updateList(msg)
	}

	if p.dialog.isForm() {
		var cmd tea.Cmd
		p.dialog, cmd = p.dialog.updateInputs(msg)
		return p, cmd
	}
	return p, nil
}

func (p tasksPage) updateList(msg tea.KeyMsg) (tasksPage, tea.Cmd) {
	switch msg.String() {
	case "q":
		return p, tea.Quit
	case "n":
		if p.busy {
			return p, nil
		}
		var cmd tea.Cmd
		p.dialog, cmd = newFormDialog(nil)
		return p, cmd
	case "e":
		t, ok := p.selected()
		if !ok || p.busy {
			return p, nil
		}
		var cmd tea.Cmd
		p.dialog, cmd = newFormDialog(&t)
		return p, cmd
	case "d":
		t, ok := p.selected()
		if !ok || p.busy {
			return p, nil
		}
		p.dialog = newConfirmDeleteDialog(t)
		return p, nil
	case "v", "enter":
		t, ok := p.selected()
		if !ok {
			return p, nil
		}
		return p, p.viewTask(t.ID)
	case "u":
		p.menuOpen = true
		p.menuFocus = menuItemLogout
		return p, nil
	case "r":
		if p.loading {
			return p, nil
		}
		cmd := p.fetch()
		return p, cmd
	}

	var cmd tea.Cmd
	p.list, cmd = p.list.Update(msg)
	return p, cmd
}

func (p tasksPage) viewTask(id string) tea.Cmd {
	client, ctx, epoch := p.d.api, p.d.ctx, p.epoch
	return func() tea.Msg {
		t, err := client.GetTask(ctx, id)
		return taskViewedMsg{epochTag: epochTag{epoch: epoch}, task: t, err: err}
	}
}

func (p tasksPage) updateForm(msg tea.KeyMsg) (tasksPage, tea.Cmd) {
	switch msg.String() {
	case "esc":
		p.dialog = closedDialog()
		return p, nil
	case "tab":
		cmd := p.dialog.setFocus(p.dialog.focus + 1)
		return p, cmd
	case "shift+tab":
		cmd := p.dialog.setFocus(p.dialog.focus - 1)
		return p, cmd
	case "ctrl+s":
		return p.save()
	case "enter":
		switch p.dialog.focus {
		case formFocusTitle:
			cmd := p.dialog.setFocus(formFocusDescription)
			return p, cmd
		case formFocusSave:
			return p.save()
		case formFocusCancel:
			p.dialog = closedDialog()
			return p, nil
		}
	}
	var cmd tea.Cmd
	p.dialog, cmd = p.dialog.updateInputs(msg)
	return p, cmd
}

// save validates the open form and issues the create or update.
func (p tasksPage) save() (tasksPage, tea.Cmd) {
	if p.busy {
		return p, nil
	}
	d := p.dialog.draft()
	p.dialog.errs = form.ValidateTask(d)
	if len(p.dialog.errs) > 0 {
		return p, nil
	}
	p.busy = true

	client, ctx, epoch := p.d.api, p.d.ctx, p.epoch
	in := api.TaskInput{Title: d.Title, Description: d.Description}
	if p.dialog.kind == dialogEditing {
		id := p.dialog.task.ID
		return p, tea.Batch(p.spin.Tick, func() tea.Msg {
			updated, err := client.UpdateTask(ctx, id, in)
			return taskSavedMsg{epochTag: epochTag{epoch: epoch}, id: id, title: in.Title,
				description: in.Description, updated: updated, err: err}
		})
	}
	return p, tea.Batch(p.spin.Tick, func() tea.Msg {
		t, err := client.CreateTask(ctx, in)
		return taskSavedMsg{epochTag: epochTag{epoch: epoch}, title: in.Title,
			description: in.Description, task: t, err: err}
	})
}

func (p tasksPage) applySaved(msg taskSavedMsg) (tasksPage, tea.Cmd) {
	p.busy = false
	if msg.err != nil {
		p.d.log.Warn("save task", "id", msg.id, "err", msg.err)
		return p, notify(severityError, msgSaveFailed)
	}

	if msg.id == "" && msg.task.ID == "" {
		// Created, but the response carried no id to list it by.
		if p.dialog.kind == dialogCreating {
			p.dialog = closedDialog()
		}
		cmd := tea.Batch(notify(severityInfo, msgCreatedUnlisted), p.fetch())
		return p, cmd
	}
	if msg.id == "" {
		p.setTasks(append(append([]model.Task(nil), p.tasks...), msg.task))
		if p.dialog.kind == dialogCreating {
			p.dialog = closedDialog()
		}
		return p, notify(severitySuccess, msgCreated)
	}

	next := make([]model.Task, len(p.tasks))
	copy(next, p.tasks)
	for i := range next {
		if next[i].ID != msg.id {
			continue
		}
		if msg.updated != nil {
			next[i] = *msg.updated
		} else {
			next[i].Title = msg.title
			next[i].Description = msg.description
		}
	}
	p.setTasks(next)
	if p.dialog.boundTo(dialogEditing, msg.id) {
		p.dialog = closedDialog()
	}
	return p, notify(severitySuccess, msgUpdated)
}

func (p tasksPage) updateConfirm(msg tea.KeyMsg) (tasksPage, tea.Cmd) {
	switch msg.String() {
	case "esc", "n":
		p.dialog = closedDialog()
		return p, nil
	case "tab", "shift+tab", "left", "right", "h", "l":
		if p.dialog.confirmFocus == confirmFocusConfirm {
			p.dialog.confirmFocus = confirmFocusCancel
		} else {
			p.dialog.confirmFocus = confirmFocusConfirm
		}
		return p, nil
	case "y":
		return p.confirmDelete()
	case "enter":
		if p.dialog.confirmFocus == confirmFocusCancel {
			p.dialog = closedDialog()
			return p, nil
		}
		return p.confirmDelete()
	}
	return p, nil
}

func (p tasksPage) confirmDelete() (tasksPage, tea.Cmd) {
	if p.busy {
		return p, nil
	}
	p.busy = true
	client, ctx, epoch, id := p.d.api, p.d.ctx, p.epoch, p.dialog.task.ID
	return p, tea.Batch(p.spin.Tick, func() tea.Msg {
		err := client.DeleteTask(ctx, id)
		return taskDeletedMsg{epochTag: epochTag{epoch: epoch}, id: id, err: err}
	})
}

func (p tasksPage) applyDeleted(msg taskDeletedMsg) (tasksPage, tea.Cmd) {
	p.busy = false
	if p.dialog.boundTo(dialogConfirmDelete, msg.id) {
		p.dialog = closedDialog()
	}
	if msg.err != nil {
		p.d.log.Warn("delete task", "id", msg.id, "err", msg.err)
		return p, notify(severityError, msgDeleteFailed)
	}
	next := make([]model.Task, 0, len(p.tasks))
	for _, t := range p.tasks {
		if t.ID != msg.id {
			next = append(next, t)
		}
	}
	p.setTasks(next)
	return p, notify(severitySuccess, msgDeleted)
}

func (p tasksPage) updateMenu(msg tea.KeyMsg) (tasksPage, tea.Cmd) {
	switch msg.String() {
	case "esc", "u":
		p.menuOpen = false
	case "up", "k", "shift+tab":
		p.menuFocus = (p.menuFocus + menuItemsInTotal - 1) % menuItemsInTotal
	case "down", "j", "tab":
		p.menuFocus = (p.menuFocus + 1) % menuItemsInTotal
	case "enter":
		if p.menuFocus == menuItemClose {
			p.menuOpen = false
			return p, nil
		}
		return p.logout()
	}
	return p, nil
}

func (p tasksPage) logout() (tasksPage, tea.Cmd) {
	if err := p.d.session.ClearSession(p.d.ctx); err != nil {
		p.d.log.Error("clear session", "err", err)
		return p, notify(severityError, msgGenericError)
	}
	p.d.log.Info("signed out", "user", p.user.Username)
	p.menuOpen = false
	p.setTasks(nil)
	return p, navigateTo(router.PathLogin)
}

func (p tasksPage) displayName() string {
	return p.user.DisplayName(unknownUsername)
}

func (p tasksPage) view(width, height int) string {
	header := styleHeading().Render("Tasks") + "  " + styleMuted().Render("signed in as "+p.displayName())
	if p.loading || p.busy {
		header += "  " + p.spin.View()
	}

	var body string
	switch {
	case p.loading && len(p.tasks) == 0:
		body = styleMuted().Render("Loading tasks…")
	case len(p.tasks) == 0:
		body = styleMuted().Render("No tasks yet. Press n to create one.")
	default:
		body = p.list.View()
	}

	footer := styleMuted().Render("n: new  e: edit  d: delete  v/enter: view  r: refresh  u: account  q: quit")
	page := strings.Join([]string{header, "", body, "", footer}, "\n")

	switch {
	case p.menuOpen:
		return placeModal(width, height, p.viewMenu(width))
	case p.dialog.kind != dialogClosed:
		return placeModal(width, height, p.dialog.view(width, height, p.busy))
	}
	return page
}

func (p tasksPage) viewMenu(width int) string {
	w := modalWidth(width) / 2
	if w < modalMinWidth {
		w = modalMinWidth
	}
	items := []string{"Logout", "Close"}
	lines := make([]string, 0, len(items)+2)
	lines = append(lines, styleMuted().Render("Signed in as ")+lipgloss.NewStyle().Bold(true).Render(p.displayName()), "")
	for i, it := range items {
		if i == p.menuFocus {
			lines = append(lines, lipgloss.NewStyle().Foreground(colorSelectedFg).Background(colorSelectedBg).Bold(true).Render("> "+it))
			continue
		}
		lines = append(lines, "  "+it)
	}
	return renderModalBox(w, "Account", strings.Join(lines, "\n"))
}
