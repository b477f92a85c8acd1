package tui

import (
	"strings"

	"taskdeck/internal/api"
	"taskdeck/internal/form"
	"taskdeck/internal/router"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const (
	msgLoginSuccess  = "Login successful!"
	msgSignupSuccess = "Sign Up successful!"
	msgGenericError  = "An error occurred"
)

// authPage is the login or signup form. Focus runs over the inputs, then the submit
// button, then the mode toggle.
type authPage struct {
	d     deps
	epoch int

	mode   form.Mode
	fields []form.Field
	inputs []textinput.Model
	errs   form.Errors

	focus  int
	busy   bool
	spin   spinner.Model
	reveal bool
}

func newAuthPage(d deps, epoch int, mode form.Mode) authPage {
	p := authPage{
		d:      d,
		epoch:  epoch,
		mode:   mode,
		fields: mode.Fields(),
		errs:   form.Errors{},
		spin:   spinner.New(spinner.WithSpinner(spinner.Dot)),
	}
	for _, f := range p.fields {
		in := textinput.New()
		in.Prompt = ""
		in.Placeholder = f.Label()
		in.CharLimit = 0
		in.Width = 32
		in.TextStyle = lipgloss.NewStyle().Foreground(colorSurfaceFg)
		in.PlaceholderStyle = styleMuted()
		in.Cursor.Style = lipgloss.NewStyle().Foreground(colorAccentFg).Background(colorAccent)
		if isSecret(f) {
			in.EchoMode = textinput.EchoPassword
			in.EchoCharacter = '•'
		}
		p.inputs = append(p.inputs, in)
	}
	p.inputs[0].Focus()
	return p
}

func isSecret(f form.Field) bool {
	return f == form.FieldPassword || f == form.FieldConfirmPassword
}

func (p authPage) init() tea.Cmd {
	return textinput.Blink
}

func (p authPage) submitIndex() int { return len(p.inputs) }
func (p authPage) toggleIndex() int { return len(p.inputs) + 1 }

func (p authPage) draft() form.AuthDraft {
	var d form.AuthDraft
	for i, f := range p.fields {
		d.Set(f, p.inputs[i].Value())
	}
	return d
}

func (p *authPage) setFocus(i int) tea.Cmd {
	n := len(p.inputs) + 2
	p.focus = ((i % n) + n) % n
	var cmd tea.Cmd
	for j := range p.inputs {
		if j == p.focus {
			cmd = p.inputs[j].Focus()
		} else {
			p.inputs[j].Blur()
		}
	}
	return cmd
}

func (p authPage) update(msg tea.Msg) (authPage, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		if !p.busy {
			return p, nil
		}
		var cmd tea.Cmd
		p.spin, cmd = p.spin.Update(msg)
		return p, cmd

	case authResultMsg:
		return p.applyResult(msg)

	case tea.KeyMsg:
		switch msg.String() {
		case "tab", "down":
			cmd := p.setFocus(p.focus + 1)
			return p, cmd
		case "shift+tab", "up":
			cmd := p.setFocus(p.focus - 1)
			return p, cmd
		case "ctrl+r":
			p.reveal = !p.reveal
			for i, f := range p.fields {
				if f != form.FieldPassword {
					continue
				}
				if p.reveal {
					p.inputs[i].EchoMode = textinput.EchoNormal
				} else {
					p.inputs[i].EchoMode = textinput.EchoPassword
				}
			}
			return p, nil
		case "ctrl+s":
			return p.submit()
		case "enter":
			// Enter submits from any field, as a form does.
			if p.focus == p.toggleIndex() {
				return p, navigateTo(siblingPath(p.mode))
			}
			return p.submit()
		}
	}

	if p.focus >= len(p.inputs) {
		return p, nil
	}
	i := p.focus
	before := p.inputs[i].Value()
	var cmd tea.Cmd
	p.inputs[i], cmd = p.inputs[i].Update(msg)
	if p.inputs[i].Value() != before {
		p.errs.Clear(p.fields[i])
	}
	return p, cmd
}

func siblingPath(mode form.Mode) string {
	if mode.Sibling() == form.ModeSignup {
		return router.PathSignup
	}
	return router.PathLogin
}

// submit validates the whole form and, when it passes, issues the request.
func (p authPage) submit() (authPage, tea.Cmd) {
	if p.busy {
		return p, nil
	}
	d := p.draft()
	p.errs = form.ValidateAuth(p.mode, d)
	if len(p.errs) > 0 {
		return p, nil
	}
	p.busy = true
	return p, tea.Batch(p.spin.Tick, p.request(d))
}

func (p authPage) request(d form.AuthDraft) tea.Cmd {
	client, ctx, epoch, mode := p.d.api, p.d.ctx, p.epoch, p.mode
	return func() tea.Msg {
		msg := authResultMsg{epochTag: epochTag{epoch: epoch}, login: mode == form.ModeLogin}
		if msg.login {
			res, err := client.Login(ctx, api.Credentials{Username: d.Username, Password: d.Password})
			msg.token, msg.user, msg.err = res.Token, res.User, err
			return msg
		}
		_, msg.err = client.Register(ctx, api.Registration{Username: d.Username, Email: d.Email, Password: d.Password})
		return msg
	}
}

func (p authPage) applyResult(msg authResultMsg) (authPage, tea.Cmd) {
	p.busy = false
	if msg.err != nil {
		p.d.log.Warn("auth request failed", "mode", p.mode, "err", msg.err)
		return p, notify(severityError, api.MessageOr(msg.err, msgGenericError))
	}
	if !msg.login {
		return p, notify(severitySuccess, msgSignupSuccess)
	}
	if err := p.d.session.SetSession(p.d.ctx, msg.token, msg.user); err != nil {
		p.d.log.Error("store session", "err", err)
		return p, notify(severityError, msgGenericError)
	}
	p.d.log.Info("signed in", "user", msg.user.Username)
	return p, tea.Batch(notify(severitySuccess, msgLoginSuccess), navigateTo(router.PathTasks))
}

func (p authPage) view(width, height int) string {
	var b strings.Builder
	b.WriteString(styleHeading().Render(p.mode.String()))
	b.WriteString("\n\n")

	for i, f := range p.fields {
		label := f.Label()
		if i == p.focus {
			label = lipgloss.NewStyle().Foreground(colorAccent).Bold(true).Render(label)
		}
		b.WriteString(label)
		b.WriteString("\n")
		b.WriteString(lipgloss.NewStyle().Background(colorInputBg).Render(p.inputs[i].View()))
		b.WriteString("\n")
		if msg, ok := p.errs[f]; ok {
			b.WriteString(styleFieldError().Width(48).Render(msg))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	submit := p.mode.String()
	if p.busy {
		submit = p.spin.View() + " " + submit
	}
	focused := -1
	switch p.focus {
	case p.submitIndex():
		focused = 0
	case p.toggleIndex():
		focused = 1
	}
	b.WriteString(renderButtons([]string{submit, toggleLabel(p.mode)}, focused, p.busy))
	b.WriteString("\n\n")
	b.WriteString(styleMuted().Render("tab: next   enter: submit   ctrl+r: show password   ctrl+c: quit"))

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorMuted).
		Padding(1, 2).
		Render(b.String())
	return placeModal(width, height, box)
}

func toggleLabel(mode form.Mode) string {
	if mode == form.ModeLogin {
		return "Need an account? Sign Up"
	}
	return "Have an account? Login"
}
