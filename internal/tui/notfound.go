package tui

import (
	"strings"

	"taskdeck/internal/router"

	tea "github.com/charmbracelet/bubbletea"
)

type notFoundPage struct {
	path string
}

func (p notFoundPage) update(msg tea.Msg) (notFoundPage, tea.Cmd) {
	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return p, nil
	}
	switch km.String() {
	case "enter":
		return p, navigateTo(router.PathTasks)
	case "q":
		return p, tea.Quit
	}
	return p, nil
}

func (p notFoundPage) view(width, height int) string {
	body := strings.Join([]string{
		styleHeading().Render("404: Page not found"),
		"",
		"Nothing lives at " + p.path + ".",
		"",
		styleMuted().Render("enter: go to tasks   q: quit"),
	}, "\n")
	return placeModal(width, height, body)
}
