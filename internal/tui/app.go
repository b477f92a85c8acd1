package tui

import (
	"context"
	"strings"

	"taskdeck/internal/form"
	"taskdeck/internal/router"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// appModel is the shell: it owns routing, the notification line and the mounted page.
type appModel struct {
	d deps

	width  int
	height int

	route router.Resolution
	// epoch increments on every mount; results tagged with an older epoch are dropped.
	epoch int

	auth     authPage
	tasks    tasksPage
	notFound notFoundPage

	note notification

	initCmd tea.Cmd
}

func newAppModel(ctx context.Context, opts Options) appModel {
	m := appModel{d: newDeps(ctx, opts)}
	start := opts.StartPath
	if strings.TrimSpace(start) == "" {
		start = router.PathTasks
	}
	m.initCmd = m.navigate(start)
	return m
}

func (m appModel) Init() tea.Cmd {
	return m.initCmd
}

// navigate resolves path through the guard and mounts the resulting page.
func (m *appModel) navigate(path string) tea.Cmd {
	res := router.Resolve(path, m.d.session.IsAuthenticated(m.d.ctx))
	if res.Redirected {
		m.d.log.Debug("redirect", "from", res.Requested, "to", res.Path)
	}
	m.route = res
	m.epoch++

	switch res.Page {
	case router.PageLogin:
		m.auth = newAuthPage(m.d, m.epoch, form.ModeLogin)
		return m.auth.init()
	case router.PageSignup:
		m.auth = newAuthPage(m.d, m.epoch, form.ModeSignup)
		return m.auth.init()
	case router.PageTasks:
		m.tasks = newTasksPage(m.d, m.epoch)
		m.tasks.setSize(m.width, m.bodyHeight())
		return m.tasks.init()
	default:
		m.notFound = notFoundPage{path: res.Requested}
		return nil
	}
}

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.route.Page == router.PageTasks {
			m.tasks.setSize(m.width, m.bodyHeight())
		}
		return m, nil

	case navigateMsg:
		cmd := m.navigate(msg.path)
		return m, cmd

	case notifyMsg:
		cmd := m.note.show(msg.severity, msg.message)
		return m, cmd

	case noteExpiredMsg:
		m.note.expire(msg.seq)
		return m, nil

	case sessionChangedMsg:
		// Re-run the guard when the session disappears under the task list.
		if m.route.Page == router.PageTasks {
			if !msg.session.Authenticated() {
				cmd := m.navigate(router.PathLogin)
				return m, cmd
			}
			m.tasks.user = msg.session.User
		}
		return m, nil

	case pageResult:
		if msg.pageEpoch() != m.epoch {
			m.d.log.Debug("dropping stale result", "epoch", msg.pageEpoch(), "current", m.epoch)
			return m, nil
		}

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if m.note.visible && !m.pageCapturesKeys() {
			switch msg.String() {
			case "esc":
				m.note.dismiss()
				return m, nil
			case "x":
				if m.route.Page != router.PageLogin && m.route.Page != router.PageSignup {
					m.note.dismiss()
					return m, nil
				}
			}
		}
	}

	var cmd tea.Cmd
	switch m.route.Page {
	case router.PageLogin, router.PageSignup:
		m.auth, cmd = m.auth.update(msg)
	case router.PageTasks:
		m.tasks, cmd = m.tasks.update(msg)
	default:
		m.notFound, cmd = m.notFound.update(msg)
	}
	return m, cmd
}

// pageCapturesKeys reports whether the mounted page has an overlay that owns esc.
func (m appModel) pageCapturesKeys() bool {
	if m.route.Page == router.PageTasks {
		return m.tasks.overlayOpen()
	}
	return false
}

func (m appModel) bodyHeight() int {
	// Header, notification line and footer.
	h := m.height - 4
	if h < 6 {
		h = 6
	}
	return h
}

func (m appModel) View() string {
	header := lipgloss.NewStyle().Bold(true).Render("taskdeck") + "  " + styleMuted().Render(m.route.Path)

	var body string
	switch m.route.Page {
	case router.PageLogin, router.PageSignup:
		body = m.auth.view(m.width, m.bodyHeight())
	case router.PageTasks:
		body = m.tasks.view(m.width, m.bodyHeight())
	default:
		body = m.notFound.view(m.width, m.bodyHeight())
	}

	return strings.Join([]string{header, body, m.note.view(m.width)}, "\n")
}
