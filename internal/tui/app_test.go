package tui

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"taskdeck/internal/api"
	"taskdeck/internal/form"
	"taskdeck/internal/model"
	"taskdeck/internal/router"
	"taskdeck/internal/session"
	"taskdeck/internal/store"

	tea "github.com/charmbracelet/bubbletea"
	xansi "github.com/charmbracelet/x/ansi"
)

type fakeAPI struct {
	mu    sync.Mutex
	calls []string

	loginRes    api.LoginResult
	loginErr    error
	registerErr error
	lastCreds   api.Credentials
	lastReg     api.Registration

	tasks   []model.Task
	listErr error

	detail model.Task
	getErr error

	created   model.Task
	createErr error
	updated   *model.Task
	updateErr error
	lastInput api.TaskInput

	deleteErr error
}

func (f *fakeAPI) record(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, name)
}

func (f *fakeAPI) count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c == name {
			n++
		}
	}
	return n
}

func (f *fakeAPI) total() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeAPI) Login(_ context.Context, creds api.Credentials) (api.LoginResult, error) {
	f.record("login")
	f.lastCreds = creds
	return f.loginRes, f.loginErr
}

func (f *fakeAPI) Register(_ context.Context, reg api.Registration) (json.RawMessage, error) {
	f.record("register")
	f.lastReg = reg
	return nil, f.registerErr
}

func (f *fakeAPI) ListTasks(context.Context) ([]model.Task, error) {
	f.record("list")
	return append([]model.Task(nil), f.tasks...), f.listErr
}

func (f *fakeAPI) GetTask(_ context.Context, id string) (model.Task, error) {
	f.record("get:" + id)
	return f.detail, f.getErr
}

func (f *fakeAPI) CreateTask(_ context.Context, in api.TaskInput) (model.Task, error) {
	f.record("create")
	f.lastInput = in
	return f.created, f.createErr
}

func (f *fakeAPI) UpdateTask(_ context.Context, id string, in api.TaskInput) (*model.Task, error) {
	f.record("update:" + id)
	f.lastInput = in
	return f.updated, f.updateErr
}

func (f *fakeAPI) DeleteTask(_ context.Context, id string) error {
	f.record("delete:" + id)
	return f.deleteErr
}

// newTestApp mounts start with an in-memory session, signed in as alice when authed,
// and applies every result of the initial commands.
func newTestApp(t *testing.T, fa *fakeAPI, authed bool, start string) (appModel, *session.Service, *store.Memory) {
	t.Helper()
	kv := store.NewMemory()
	sess := session.NewService(kv, nil)
	if authed {
		if err := sess.SetSession(context.Background(), "t1", model.User{ID: "u1", Username: "alice"}); err != nil {
			t.Fatalf("seed session: %v", err)
		}
	}
	m := newAppModel(context.Background(), Options{API: fa, Session: sess, StartPath: start})
	m = drive(t, m, m.Init())
	return m, sess, kv
}

// collect runs cmd and returns the messages it produces. Commands that do not return
// promptly (ticks, cursor blink) are abandoned.
func collect(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	ch := make(chan tea.Msg, 1)
	go func() { ch <- cmd() }()
	select {
	case msg := <-ch:
		if batch, ok := msg.(tea.BatchMsg); ok {
			var out []tea.Msg
			for _, c := range batch {
				out = append(out, collect(c)...)
			}
			return out
		}
		if msg == nil {
			return nil
		}
		return []tea.Msg{msg}
	case <-time.After(50 * time.Millisecond):
		return nil
	}
}

// routable reports whether msg is one the shell acts on; widget housekeeping is dropped.
func routable(msg tea.Msg) bool {
	switch msg.(type) {
	case navigateMsg, notifyMsg, sessionChangedMsg, pageResult:
		return true
	}
	return false
}

// drive feeds the results of cmd back through Update until nothing is left.
func drive(t *testing.T, m appModel, cmd tea.Cmd) appModel {
	t.Helper()
	queue := collect(cmd)
	for i := 0; len(queue) > 0; i++ {
		if i > 100 {
			t.Fatalf("message loop did not settle")
		}
		msg := queue[0]
		queue = queue[1:]
		if !routable(msg) {
			continue
		}
		mm, c := m.Update(msg)
		m = mm.(appModel)
		queue = append(queue, collect(c)...)
	}
	return m
}

func keyMsg(key string) tea.KeyMsg {
	switch key {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "shift+tab":
		return tea.KeyMsg{Type: tea.KeyShiftTab}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "backspace":
		return tea.KeyMsg{Type: tea.KeyBackspace}
	case "ctrl+s":
		return tea.KeyMsg{Type: tea.KeyCtrlS}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	case "ctrl+r":
		return tea.KeyMsg{Type: tea.KeyCtrlR}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
	}
}

func press(t *testing.T, m appModel, keys ...string) appModel {
	t.Helper()
	for _, k := range keys {
		mm, cmd := m.Update(keyMsg(k))
		m = drive(t, mm.(appModel), cmd)
	}
	return m
}

func typeText(t *testing.T, m appModel, s string) appModel {
	t.Helper()
	for _, r := range s {
		mm, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
		m = drive(t, mm.(appModel), cmd)
	}
	return m
}

func containsText(view, want string) bool {
	return strings.Contains(xansi.Strip(view), want)
}

func TestGuard_TasksWithoutTokenRedirectsToLogin(t *testing.T) {
	fa := &fakeAPI{}
	m, _, _ := newTestApp(t, fa, false, router.PathTasks)

	if m.route.Page != router.PageLogin || m.route.Path != router.PathLogin {
		t.Fatalf("expected login page, got %+v", m.route)
	}
	if fa.total() != 0 {
		t.Fatalf("expected no requests, got %v", fa.calls)
	}
}

func TestGuard_TasksWithTokenMountsList(t *testing.T) {
	fa := &fakeAPI{tasks: []model.Task{{ID: "1", Title: "A", Description: "d1"}}}
	m, _, _ := newTestApp(t, fa, true, router.PathTasks)

	if m.route.Page != router.PageTasks {
		t.Fatalf("expected tasks page, got %+v", m.route)
	}
	if len(m.tasks.tasks) != 1 || m.tasks.tasks[0].ID != "1" {
		t.Fatalf("expected fetched tasks, got %+v", m.tasks.tasks)
	}
	if m.tasks.displayName() != "alice" {
		t.Fatalf("expected cached user, got %q", m.tasks.displayName())
	}
}

func TestGuard_RootAlwaysGoesToLogin(t *testing.T) {
	m, _, _ := newTestApp(t, &fakeAPI{}, true, router.PathRoot)
	if m.route.Page != router.PageLogin {
		t.Fatalf("expected login page, got %+v", m.route)
	}
}

func TestGuard_UnknownPathIsNotFound(t *testing.T) {
	for _, authed := range []bool{false, true} {
		m, _, _ := newTestApp(t, &fakeAPI{}, authed, "/nope")
		if m.route.Page != router.PageNotFound {
			t.Fatalf("authed=%v: expected not-found, got %+v", authed, m.route)
		}
	}
}

func TestNotFound_EnterGoesToTasks(t *testing.T) {
	m, _, _ := newTestApp(t, &fakeAPI{}, true, "/nope")
	m = press(t, m, "enter")
	if m.route.Page != router.PageTasks {
		t.Fatalf("expected tasks page, got %+v", m.route)
	}
}

func TestSessionCleared_LeavesTaskList(t *testing.T) {
	m, sess, _ := newTestApp(t, &fakeAPI{}, true, router.PathTasks)
	if err := sess.ClearSession(context.Background()); err != nil {
		t.Fatalf("clear: %v", err)
	}
	mm, cmd := m.Update(sessionChangedMsg{})
	m = drive(t, mm.(appModel), cmd)
	if m.route.Page != router.PageLogin {
		t.Fatalf("expected login page, got %+v", m.route)
	}
}

func TestStaleResultsAreDropped(t *testing.T) {
	fa := &fakeAPI{tasks: []model.Task{{ID: "1", Title: "A", Description: "d"}}}
	m, _, _ := newTestApp(t, fa, true, router.PathTasks)
	oldEpoch := m.epoch

	m = press(t, m, "u", "enter")
	if m.route.Page != router.PageLogin {
		t.Fatalf("expected login after logout, got %+v", m.route)
	}

	late := tasksLoadedMsg{epochTag: epochTag{epoch: oldEpoch}, err: context.DeadlineExceeded}
	mm, cmd := m.Update(late)
	m = mm.(appModel)
	if cmd != nil {
		t.Fatalf("expected stale result to be ignored")
	}
	if m.note.visible && m.note.message == msgFetchFailed {
		t.Fatalf("stale failure should not notify")
	}
}

func TestNotification_NewerReplacesOlderAndRestartsTimer(t *testing.T) {
	var n notification
	_ = n.show(severityError, "first")
	firstSeq := n.seq
	_ = n.show(severitySuccess, "second")

	n.expire(firstSeq)
	if !n.visible || n.message != "second" {
		t.Fatalf("older expiry must not hide the newer notification: %+v", n)
	}
	n.expire(n.seq)
	if n.visible {
		t.Fatalf("expected notification to expire")
	}
}

func TestNotification_EscDismisses(t *testing.T) {
	fa := &fakeAPI{listErr: context.DeadlineExceeded}
	m, _, _ := newTestApp(t, fa, true, router.PathTasks)
	if !m.note.visible || m.note.message != msgFetchFailed || m.note.severity != severityError {
		t.Fatalf("expected fetch failure notification, got %+v", m.note)
	}
	m = press(t, m, "esc")
	if m.note.visible {
		t.Fatalf("expected esc to dismiss")
	}
}

func TestNotification_XDismissesOnTasksPage(t *testing.T) {
	fa := &fakeAPI{listErr: context.DeadlineExceeded}
	m, _, _ := newTestApp(t, fa, true, router.PathTasks)
	m = press(t, m, "x")
	if m.note.visible {
		t.Fatalf("expected x to dismiss")
	}
}

func TestNotification_XTypedOnLoginPage(t *testing.T) {
	fa := &fakeAPI{loginErr: errors.New("boom")}
	m, _, _ := newTestApp(t, fa, false, router.PathLogin)
	m = fillAuth(m, form.AuthDraft{Username: "ale", Password: "pw"})
	m = press(t, m, "enter")
	if !m.note.visible || m.note.severity != severityError {
		t.Fatalf("expected failure notification, got %+v", m.note)
	}

	m = typeText(t, m, "x")

	if !m.note.visible {
		t.Fatalf("x must not dismiss on the login page")
	}
	if got := m.auth.inputs[0].Value(); got != "alex" {
		t.Fatalf("expected x typed into username, got %q", got)
	}
}

func TestCtrlCQuits(t *testing.T) {
	m, _, _ := newTestApp(t, &fakeAPI{}, false, router.PathLogin)
	_, cmd := m.Update(keyMsg("ctrl+c"))
	if cmd == nil {
		t.Fatalf("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatalf("expected tea.QuitMsg")
	}
}

func TestView_RendersEachPage(t *testing.T) {
	fa := &fakeAPI{tasks: []model.Task{{ID: "1", Title: "Write report", Description: "d"}}}
	for _, tc := range []struct {
		path   string
		authed bool
		want   string
	}{
		{path: router.PathLogin, want: "Login"},
		{path: router.PathSignup, want: "Sign Up"},
		{path: router.PathTasks, authed: true, want: "Write report"},
		{path: "/nope", want: "Page not found"},
	} {
		m, _, _ := newTestApp(t, fa, tc.authed, tc.path)
		mm, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
		m = mm.(appModel)
		if got := m.View(); !containsText(got, tc.want) {
			t.Fatalf("%s: expected view to contain %q, got:\n%s", tc.path, tc.want, got)
		}
	}
}
