// Package tui is the interactive client: login and signup forms, the task list with its
// dialogs, and a not-found page, routed through the authentication guard.
package tui

import (
	"context"
	"encoding/json"

	"taskdeck/internal/api"
	"taskdeck/internal/logging"
	"taskdeck/internal/model"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
)

// API is the subset of *api.Client the pages call.
type API interface {
	Login(ctx context.Context, creds api.Credentials) (api.LoginResult, error)
	Register(ctx context.Context, reg api.Registration) (json.RawMessage, error)
	ListTasks(ctx context.Context) ([]model.Task, error)
	GetTask(ctx context.Context, id string) (model.Task, error)
	CreateTask(ctx context.Context, in api.TaskInput) (model.Task, error)
	UpdateTask(ctx context.Context, id string, in api.TaskInput) (*model.Task, error)
	DeleteTask(ctx context.Context, id string) error
}

// Session is the subset of *session.Service the pages use.
type Session interface {
	IsAuthenticated(ctx context.Context) bool
	Current(ctx context.Context) (model.Session, error)
	SetSession(ctx context.Context, token string, user model.User) error
	ClearSession(ctx context.Context) error
	Subscribe(fn func(model.Session)) func()
}

type Options struct {
	API     API
	Session Session
	Logger  *log.Logger
	// StartPath is the first path routed; empty means the task list.
	StartPath string
}

// deps is what every page needs to issue requests.
type deps struct {
	ctx     context.Context
	api     API
	session Session
	log     *log.Logger
}

func Run(ctx context.Context, opts Options) error {
	applyThemePreference()
	applyColorProfilePreference()

	m := newAppModel(ctx, opts)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))

	// Send from a goroutine: session changes are published from inside Update, where a
	// blocking Send would deadlock the event loop.
	unsub := opts.Session.Subscribe(func(s model.Session) {
		go p.Send(sessionChangedMsg{session: s})
	})
	defer unsub()

	_, err := p.Run()
	return err
}

func newDeps(ctx context.Context, opts Options) deps {
	if ctx == nil {
		ctx = context.Background()
	}
	l := opts.Logger
	if l == nil {
		l = logging.Discard()
	}
	return deps{ctx: ctx, api: opts.API, session: opts.Session, log: l}
}
