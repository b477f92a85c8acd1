package tui

import (
	"taskdeck/internal/model"

	tea "github.com/charmbracelet/bubbletea"
)

// epochTag marks a message as the result of a request issued by a page. The shell
// drops it when that page is no longer mounted.
type epochTag struct {
	epoch int
}

func (t epochTag) pageEpoch() int { return t.epoch }

type pageResult interface {
	pageEpoch() int
}

type navigateMsg struct {
	path string
}

type notifyMsg struct {
	severity severity
	message  string
}

type noteExpiredMsg struct {
	seq int
}

type sessionChangedMsg struct {
	session model.Session
}

type authResultMsg struct {
	epochTag
	login bool
	token string
	user  model.User
	err   error
}

type tasksLoadedMsg struct {
	epochTag
	tasks []model.Task
	err   error
}

type taskViewedMsg struct {
	epochTag
	task model.Task
	err  error
}

type taskSavedMsg struct {
	epochTag
	// id is empty for a create.
	id          string
	title       string
	description string
	task        model.Task
	// updated is the server representation returned by an update, if any.
	updated *model.Task
	err     error
}

type taskDeletedMsg struct {
	epochTag
	id  string
	err error
}

func navigateTo(path string) tea.Cmd {
	return func() tea.Msg { return navigateMsg{path: path} }
}

func notify(sev severity, message string) tea.Cmd {
	return func() tea.Msg { return notifyMsg{severity: sev, message: message} }
}
