package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// authForm drives both the login and signup screens. Field order is
// name (signup only), email, password.
type authForm struct {
	signup bool
	inputs []textinput.Model
	index  int
	err    string
	note   string
}

func newAuthForm(signup bool) *authForm {
	f := &authForm{signup: signup}

	if signup {
		name := textinput.New()
		name.Placeholder = "Name"
		name.CharLimit = 128
		name.Width = 40
		f.inputs = append(f.inputs, name)
	}

	email := textinput.New()
	email.Placeholder = "Email"
	email.CharLimit = 128
	email.Width = 40
	f.inputs = append(f.inputs, email)

	password := textinput.New()
	password.Placeholder = "Password"
	password.CharLimit = 128
	password.Width = 40
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '•'
	f.inputs = append(f.inputs, password)

	f.inputs[0].Focus()
	return f
}

func (f *authForm) focusIndex(i int) {
	f.index = wrapIndex(i, len(f.inputs))
	for j := range f.inputs {
		if j == f.index {
			f.inputs[j].Focus()
		} else {
			f.inputs[j].Blur()
		}
	}
}

func (f *authForm) values() (name, email, password string) {
	fields := make([]string, len(f.inputs))
	for i := range f.inputs {
		fields[i] = strings.TrimSpace(f.inputs[i].Value())
	}
	if f.signup {
		return fields[0], fields[1], fields[2]
	}
	return "", fields[0], fields[1]
}

// validate mirrors the server's rules so bad input never reaches the
// network layer.
func (f *authForm) validate() error {
	name, email, password := f.values()
	if f.signup && name == "" {
		return fmt.Errorf("name is required")
	}
	at := strings.Index(email, "@")
	if at < 1 || !strings.Contains(email[at:], ".") {
		return fmt.Errorf("invalid email address")
	}
	if len(password) < 6 {
		return fmt.Errorf("password must be at least 6 characters")
	}
	return nil
}

func (m Model) updateAuth(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	f := m.authForm
	switch msg.String() {
	case "tab", "down":
		f.focusIndex(f.index + 1)
		return m, nil
	case "shift+tab", "up":
		f.focusIndex(f.index - 1)
		return m, nil
	case "ctrl+s":
		// Switch between login and signup.
		m.authForm = newAuthForm(m.screen == screenLogin)
		if m.screen == screenLogin {
			m.screen = screenSignup
		} else {
			m.screen = screenLogin
		}
		return m, nil
	case "enter":
		if f.index < len(f.inputs)-1 {
			f.focusIndex(f.index + 1)
			return m, nil
		}
		if err := f.validate(); err != nil {
			f.err = err.Error()
			return m, nil
		}
		f.err = ""
		name, email, password := f.values()
		if m.screen == screenSignup {
			return m, m.signupCmd(name, email, password)
		}
		return m, m.loginCmd(email, password)
	default:
		var cmd tea.Cmd
		f.inputs[f.index], cmd = f.inputs[f.index].Update(msg)
		return m, cmd
	}
}

func (m Model) loginCmd(email, password string) tea.Cmd {
	client := m.auth
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		token, user, err := client.Login(ctx, email, password)
		if err != nil {
			return opFailedMsg{op: "login", err: err}
		}
		return loggedInMsg{token: token, user: user}
	}
}

func (m Model) signupCmd(name, email, password string) tea.Cmd {
	client := m.auth
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		if err := client.Signup(ctx, name, email, password); err != nil {
			return opFailedMsg{op: "signup", err: err}
		}
		return signedUpMsg{}
	}
}

func (m Model) viewAuth() string {
	f := m.authForm
	var b strings.Builder

	if m.screen == screenSignup {
		b.WriteString(titleStyle.Render("Create an account"))
	} else {
		b.WriteString(titleStyle.Render("Eisenhower Matrix: Login"))
	}
	b.WriteString("\n\n")

	labels := []string{"Email", "Password"}
	if f.signup {
		labels = []string{"Name", "Email", "Password"}
	}
	for i, in := range f.inputs {
		b.WriteString(fmt.Sprintf("%-9s %s\n", labels[i], in.View()))
	}

	b.WriteString("\n")
	if f.err != "" {
		b.WriteString(errStyle.Render(f.err))
		b.WriteString("\n")
	}
	if f.note != "" {
		b.WriteString(f.note)
		b.WriteString("\n")
	}

	if m.screen == screenSignup {
		b.WriteString(dimStyle.Render("enter submit • ctrl+s back to login • ctrl+c quit"))
	} else {
		b.WriteString(dimStyle.Render("enter submit • ctrl+s sign up • ctrl+c quit"))
	}
	return b.String()
}

func wrapIndex(idx, n int) int {
	if n <= 0 {
		return 0
	}
	idx %= n
	if idx < 0 {
		idx += n
	}
	return idx
}
