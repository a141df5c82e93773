package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

const (
	fieldName = iota
	fieldEmail
	fieldPassword
)

type authScreen struct {
	app     *App
	signup  bool
	inputs  []textinput.Model
	focus   int
	pending bool
	err     string
}

func newAuthScreen(app *App) *authScreen {
	labels := []string{"Name", "Email", "Password"}
	inputs := make([]textinput.Model, len(labels))
	for i, label := range labels {
		inp := textinput.New()
		inp.Prompt = label + ": "
		inp.CharLimit = 128
		inputs[i] = inp
	}
	inputs[fieldEmail].Placeholder = "you@example.com"
	inputs[fieldPassword].EchoMode = textinput.EchoPassword
	inputs[fieldPassword].EchoCharacter = '•'

	s := &authScreen{app: app, inputs: inputs, focus: fieldEmail}
	s.inputs[s.focus].Focus()
	return s
}

func (s *authScreen) Init() tea.Cmd { return textinput.Blink }

// fields lists the inputs visible in the current mode.
func (s *authScreen) fields() []int {
	if s.signup {
		return []int{fieldName, fieldEmail, fieldPassword}
	}
	return []int{fieldEmail, fieldPassword}
}

func (s *authScreen) moveFocus(dir int) {
	fields := s.fields()
	pos := 0
	for i, f := range fields {
		if f == s.focus {
			pos = i
		}
	}
	s.inputs[s.focus].Blur()
	s.focus = fields[(pos+dir+len(fields))%len(fields)]
	s.inputs[s.focus].Focus()
}

func (s *authScreen) Update(msg tea.Msg) (screen, tea.Cmd) {
	switch msg := msg.(type) {
	case errMsg:
		s.pending = false
		s.err = humanize(msg.error)
		return s, nil
	case tea.KeyMsg:
		switch s.app.keys.lookup(msg.String(), scopeAuth) {
		case actionNextField:
			s.moveFocus(1)
			return s, nil
		case actionPrevField:
			s.moveFocus(-1)
			return s, nil
		case actionToggleMode:
			s.signup = !s.signup
			s.err = ""
			s.inputs[s.focus].Blur()
			s.focus = s.fields()[0]
			s.inputs[s.focus].Focus()
			return s, nil
		case actionSubmit:
			if s.pending {
				return s, nil
			}
			s.pending = true
			s.err = ""
			return s, s.submit()
		}
	}
	var cmd tea.Cmd
	s.inputs[s.focus], cmd = s.inputs[s.focus].Update(msg)
	return s, cmd
}

func (s *authScreen) submit() tea.Cmd {
	ctx, svc := s.app.ctx, s.app.services.Auth
	name := s.inputs[fieldName].Value()
	email := s.inputs[fieldEmail].Value()
	password := s.inputs[fieldPassword].Value()
	signup := s.signup
	return s.app.scoped(func() tea.Msg {
		var (
			res authDoneMsg
			err error
		)
		if signup {
			res.Result, err = svc.Signup(ctx, name, email, password)
		} else {
			res.Result, err = svc.Login(ctx, email, password)
		}
		if err != nil {
			return errMsg{err}
		}
		return res
	})
}

func (s *authScreen) View(width int) string {
	title, toggle := "Log in", "create an account"
	if s.signup {
		title, toggle = "Create account", "log in instead"
	}
	lines := []string{
		kickerStyle.Render("coinfeed"),
		titleStyle.Render(title),
		"",
	}
	for _, f := range s.fields() {
		lines = append(lines, s.inputs[f].View())
	}
	lines = append(lines, "")
	switch {
	case s.pending:
		lines = append(lines, mutedStyle.Render("Contacting server..."))
	case s.err != "":
		lines = append(lines, errorStyle.Render(s.err))
	}
	lines = append(lines, mutedStyle.Render("ctrl+t to "+toggle), "", s.app.keys.footer(scopeAuth))
	return formStyle.Render(strings.Join(lines, "\n"))
}
