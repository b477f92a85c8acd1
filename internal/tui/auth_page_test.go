package tui

import (
	"context"
	"strings"
	"testing"

	"taskdeck/internal/api"
	"taskdeck/internal/form"
	"taskdeck/internal/model"
	"taskdeck/internal/router"
)

func fillAuth(m appModel, d form.AuthDraft) appModel {
	for i, f := range m.auth.fields {
		m.auth.inputs[i].SetValue(d.Value(f))
	}
	return m
}

func TestLogin_EmptyFieldsBlockSubmit(t *testing.T) {
	fa := &fakeAPI{}
	m, _, _ := newTestApp(t, fa, false, router.PathLogin)

	m = press(t, m, "enter")

	if m.auth.errs[form.FieldUsername] != form.MsgUsernameRequired {
		t.Fatalf("expected username error, got %v", m.auth.errs)
	}
	if m.auth.errs[form.FieldPassword] != form.MsgPasswordRequired {
		t.Fatalf("expected password error, got %v", m.auth.errs)
	}
	if fa.total() != 0 {
		t.Fatalf("expected no request, got %v", fa.calls)
	}

	m = fillAuth(m, form.AuthDraft{Username: "alice"})
	m = press(t, m, "enter")
	if _, ok := m.auth.errs[form.FieldPassword]; !ok || fa.total() != 0 {
		t.Fatalf("expected password still required and no request; errs=%v calls=%v", m.auth.errs, fa.calls)
	}
}

func TestLogin_LongPasswordSentIntact(t *testing.T) {
	pw := strings.Repeat("p", 300)
	fa := &fakeAPI{loginRes: api.LoginResult{Token: "t1", User: model.User{Username: "alice"}}}
	m, _, _ := newTestApp(t, fa, false, router.PathLogin)
	m = fillAuth(m, form.AuthDraft{Username: "alice", Password: pw})

	m = press(t, m, "enter")

	if fa.lastCreds.Password != pw {
		t.Fatalf("password altered: sent %d chars, want %d", len(fa.lastCreds.Password), len(pw))
	}
}

func TestSignup_WeakPasswordBlocksSubmit(t *testing.T) {
	for _, pw := range []string{"abc!", "ABCDE1!", "abcdef!", "abcdef1", "abc 12!"} {
		fa := &fakeAPI{}
		m, _, _ := newTestApp(t, fa, false, router.PathSignup)
		m = fillAuth(m, form.AuthDraft{Username: "alice", Email: "a@b.co", Password: pw, ConfirmPassword: pw})

		m = press(t, m, "ctrl+s")

		if got := m.auth.errs[form.FieldPassword]; got != form.MsgPasswordRequirements {
			t.Fatalf("%q: expected requirements error, got %q", pw, got)
		}
		if fa.total() != 0 {
			t.Fatalf("%q: expected no request, got %v", pw, fa.calls)
		}
	}
}

func TestSignup_MismatchReportedOnConfirmOnly(t *testing.T) {
	fa := &fakeAPI{}
	m, _, _ := newTestApp(t, fa, false, router.PathSignup)
	m = fillAuth(m, form.AuthDraft{Username: "alice", Email: "a@b.co", Password: "abc12!", ConfirmPassword: "abc12?"})

	m = press(t, m, "enter")

	if len(m.auth.errs) != 1 || m.auth.errs[form.FieldConfirmPassword] != form.MsgPasswordsDoNotMatch {
		t.Fatalf("expected only a mismatch error, got %v", m.auth.errs)
	}
	if fa.total() != 0 {
		t.Fatalf("expected no request, got %v", fa.calls)
	}
}

func TestLogin_SuccessStoresSessionAndOpensTasks(t *testing.T) {
	fa := &fakeAPI{
		loginRes: api.LoginResult{Token: "t1", User: model.User{Username: "alice"}},
		tasks:    []model.Task{{ID: "1", Title: "A", Description: "d1"}},
	}
	m, sess, _ := newTestApp(t, fa, false, router.PathLogin)
	m = fillAuth(m, form.AuthDraft{Username: "alice", Password: "pw"})

	m = press(t, m, "enter")

	cur, err := sess.Current(context.Background())
	if err != nil {
		t.Fatalf("current: %v", err)
	}
	if cur.Token != "t1" || cur.User.Username != "alice" {
		t.Fatalf("unexpected session: %+v", cur)
	}
	if m.route.Page != router.PageTasks {
		t.Fatalf("expected tasks page, got %+v", m.route)
	}
	if m.note.message != msgLoginSuccess || m.note.severity != severitySuccess {
		t.Fatalf("expected success notification, got %+v", m.note)
	}
	if fa.lastCreds != (api.Credentials{Username: "alice", Password: "pw"}) {
		t.Fatalf("unexpected credentials sent: %+v", fa.lastCreds)
	}
	if len(m.tasks.tasks) != 1 {
		t.Fatalf("expected task list to load, got %+v", m.tasks.tasks)
	}
}

func TestSignup_SuccessDoesNotSignIn(t *testing.T) {
	fa := &fakeAPI{}
	m, sess, _ := newTestApp(t, fa, false, router.PathSignup)
	m = fillAuth(m, form.AuthDraft{Username: "alice", Email: "a@b.co", Password: "abc12!", ConfirmPassword: "abc12!"})

	m = press(t, m, "enter")

	if fa.count("register") != 1 {
		t.Fatalf("expected one register call, got %v", fa.calls)
	}
	if fa.lastReg != (api.Registration{Username: "alice", Email: "a@b.co", Password: "abc12!"}) {
		t.Fatalf("unexpected registration: %+v", fa.lastReg)
	}
	if sess.IsAuthenticated(context.Background()) {
		t.Fatalf("signup must not establish a session")
	}
	if m.route.Page != router.PageSignup {
		t.Fatalf("expected to stay on signup, got %+v", m.route)
	}
	if m.note.message != msgSignupSuccess {
		t.Fatalf("expected signup notification, got %+v", m.note)
	}
	if m.auth.busy {
		t.Fatalf("busy must clear after the request")
	}
}

func TestLogin_FailureKeepsValuesAndShowsServerMessage(t *testing.T) {
	fa := &fakeAPI{loginErr: &api.Error{Status: 401, Message: "Invalid credentials"}}
	m, sess, _ := newTestApp(t, fa, false, router.PathLogin)
	m = fillAuth(m, form.AuthDraft{Username: "alice", Password: "nope"})

	m = press(t, m, "enter")

	if m.note.message != "Invalid credentials" || m.note.severity != severityError {
		t.Fatalf("expected server message, got %+v", m.note)
	}
	if got := m.auth.draft(); got.Username != "alice" || got.Password != "nope" {
		t.Fatalf("expected values to be kept, got %+v", got)
	}
	if m.auth.busy || sess.IsAuthenticated(context.Background()) || m.route.Page != router.PageLogin {
		t.Fatalf("unexpected state after failure: busy=%v route=%+v", m.auth.busy, m.route)
	}
}

func TestLogin_FailureWithoutMessageUsesGenericText(t *testing.T) {
	fa := &fakeAPI{loginErr: context.DeadlineExceeded}
	m, _, _ := newTestApp(t, fa, false, router.PathLogin)
	m = fillAuth(m, form.AuthDraft{Username: "alice", Password: "pw"})

	m = press(t, m, "enter")

	if m.note.message != msgGenericError {
		t.Fatalf("expected generic message, got %+v", m.note)
	}
}

func TestAuth_BusyBlocksSecondSubmit(t *testing.T) {
	fa := &fakeAPI{}
	m, _, _ := newTestApp(t, fa, false, router.PathLogin)
	m = fillAuth(m, form.AuthDraft{Username: "alice", Password: "pw"})

	mm, cmd := m.Update(keyMsg("enter"))
	m = mm.(appModel)
	if !m.auth.busy || cmd == nil {
		t.Fatalf("expected request in flight")
	}
	if _, cmd := m.Update(keyMsg("enter")); cmd != nil {
		t.Fatalf("expected second submit to be ignored while busy")
	}
}

func TestAuth_EditingClearsOnlyThatFieldsError(t *testing.T) {
	m, _, _ := newTestApp(t, &fakeAPI{}, false, router.PathLogin)
	m = press(t, m, "enter")
	if len(m.auth.errs) != 2 {
		t.Fatalf("expected two errors, got %v", m.auth.errs)
	}

	// Focus starts on username.
	m = typeText(t, m, "a")

	if _, ok := m.auth.errs[form.FieldUsername]; ok {
		t.Fatalf("expected username error to clear")
	}
	if _, ok := m.auth.errs[form.FieldPassword]; !ok {
		t.Fatalf("expected password error to remain")
	}
}

func TestAuth_ToggleSwitchesModeWithFreshForm(t *testing.T) {
	m, _, _ := newTestApp(t, &fakeAPI{}, false, router.PathLogin)
	m = fillAuth(m, form.AuthDraft{Username: "alice"})
	m = press(t, m, "enter") // password missing

	m.auth.setFocus(m.auth.toggleIndex())
	m = press(t, m, "enter")

	if m.route.Page != router.PageSignup || m.auth.mode != form.ModeSignup {
		t.Fatalf("expected signup page, got %+v", m.route)
	}
	if len(m.auth.errs) != 0 || m.auth.draft() != (form.AuthDraft{}) {
		t.Fatalf("expected a fresh form, got errs=%v draft=%+v", m.auth.errs, m.auth.draft())
	}
	if len(m.auth.inputs) != 4 {
		t.Fatalf("expected four signup fields, got %d", len(m.auth.inputs))
	}
}

func TestAuth_RevealPassword(t *testing.T) {
	m, _, _ := newTestApp(t, &fakeAPI{}, false, router.PathLogin)
	m = fillAuth(m, form.AuthDraft{Username: "alice", Password: "s3cret"})
	if containsText(m.View(), "s3cret") {
		t.Fatalf("password must be masked by default")
	}
	m = press(t, m, "ctrl+r")
	if !containsText(m.View(), "s3cret") {
		t.Fatalf("expected password to be visible after reveal")
	}
}
