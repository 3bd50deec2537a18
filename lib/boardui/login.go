// Copyright 2026 The Telboard Authors
// SPDX-License-Identifier: Apache-2.0

package boardui

import (
	"errors"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/telboard/telboard/lib/boardstore"
)

// loginErrorFadeDelay is how long a failed attempt stays on screen
// before the error line clears itself.
const loginErrorFadeDelay = 5 * time.Second

// loginErrorFadeMsg clears the login error line. The sequence number
// keeps an old timer from erasing a newer failure.
type loginErrorFadeMsg struct {
	seq int
}

// loginField identifies what the login form's keyboard input edits.
type loginField int

const (
	fieldUsername loginField = iota
	fieldPassword
	fieldGuestButton
)

// loginForm is the sign-in screen state: two text fields, an optional
// guest button, and an inline error line.
type loginForm struct {
	username []rune
	password []rune
	field    loginField

	guestEnabled bool

	// errorText is shown under the fields after a failed attempt,
	// then fades after loginErrorFadeDelay. errorSeq invalidates
	// outstanding fade timers when a newer error replaces the text.
	errorText string
	errorSeq  int

	// busy disables input while an authentication call is in flight.
	busy bool
}

func newLoginForm(guestEnabled bool) loginForm {
	return loginForm{guestEnabled: guestEnabled}
}

// handleLoginKeys routes keys while the login form has focus.
func (m Model) handleLoginKeys(message tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.login.busy {
		return m, nil
	}

	switch message.Type {
	case tea.KeyCtrlC:
		m.quitting = true
		return m, tea.Quit

	case tea.KeyTab, tea.KeyDown:
		m.login.field = m.login.nextField(1)
	case tea.KeyShiftTab, tea.KeyUp:
		m.login.field = m.login.nextField(-1)

	case tea.KeyEnter:
		switch m.login.field {
		case fieldUsername:
			m.login.field = fieldPassword
		case fieldPassword:
			return m.submitLogin()
		case fieldGuestButton:
			m.login.busy = true
			m.login.errorText = ""
			return m, m.signInGuest()
		}

	case tea.KeyBackspace:
		switch m.login.field {
		case fieldUsername:
			if len(m.login.username) > 0 {
				m.login.username = m.login.username[:len(m.login.username)-1]
			}
		case fieldPassword:
			if len(m.login.password) > 0 {
				m.login.password = m.login.password[:len(m.login.password)-1]
			}
		}

	case tea.KeyRunes, tea.KeySpace:
		for _, r := range message.Runes {
			switch m.login.field {
			case fieldUsername:
				m.login.username = append(m.login.username, r)
			case fieldPassword:
				m.login.password = append(m.login.password, r)
			}
		}
	}
	return m, nil
}

// nextField cycles focus through username, password, and (when
// enabled) the guest button.
func (form loginForm) nextField(direction int) loginField {
	count := 2
	if form.guestEnabled {
		count = 3
	}
	next := (int(form.field) + direction + count) % count
	return loginField(next)
}

// submitLogin validates locally and fires the authentication call.
func (m Model) submitLogin() (tea.Model, tea.Cmd) {
	username := strings.TrimSpace(string(m.login.username))
	password := string(m.login.password)
	if username == "" {
		m = m.showLoginError("아이디를 입력해 주세요.")
		m.login.field = fieldUsername
		return m, m.fadeLoginError()
	}
	m.login.busy = true
	m.login.errorText = ""
	return m, m.signIn(username, password)
}

// handleAuthResult finishes a sign-in attempt: on success the session
// opens and the board data loads; on failure the form shows why.
func (m Model) handleAuthResult(message authResultMsg) (tea.Model, tea.Cmd) {
	m.login.busy = false
	if message.err != nil {
		m = m.showLoginError(loginErrorText(message.err))
		m.login.password = nil
		m.login.field = fieldPassword
		return m, m.fadeLoginError()
	}

	m.session.SignIn(message.user)
	m.user = message.user
	m.screen = ScreenDesktop
	m.focus = FocusMenu
	m.menu = newMenuState()
	return m, m.loadBoardData(message.user)
}

// showLoginError installs the error line and bumps the fade sequence.
func (m Model) showLoginError(text string) Model {
	m.login.errorText = text
	m.login.errorSeq++
	return m
}

// fadeLoginError schedules the clear for the current error line.
func (m Model) fadeLoginError() tea.Cmd {
	seq := m.login.errorSeq
	after := m.clk.After(loginErrorFadeDelay)
	return func() tea.Msg {
		<-after
		return loginErrorFadeMsg{seq: seq}
	}
}

// loginErrorText maps backend failures to the form's messages.
func loginErrorText(err error) string {
	switch {
	case errors.Is(err, boardstore.ErrInvalidCredentials):
		return "아이디 또는 비밀번호가 올바르지 않습니다."
	case errors.Is(err, boardstore.ErrAccountDisabled):
		return "사용이 정지된 계정입니다."
	}
	return "로그인에 실패했습니다: " + err.Error()
}

// viewLogin renders the sign-in screen: banner, two framed fields,
// guest button, and the error line.
func (m Model) viewLogin() string {
	theme := m.theme
	background := lipgloss.NewStyle().Background(theme.ScreenBackground)

	title := lipgloss.NewStyle().
		Foreground(theme.TitleForeground).
		Background(theme.ScreenBackground).
		Bold(true).
		Render("═══ " + m.options.BoardName + " ═══")
	tagline := lipgloss.NewStyle().
		Foreground(theme.FaintText).
		Background(theme.ScreenBackground).
		Render(m.options.Tagline)

	fieldWidth := 28
	usernameLine := m.loginFieldLine("아이디", string(m.login.username), fieldWidth, m.login.field == fieldUsername, false)
	passwordLine := m.loginFieldLine("비밀번호", string(m.login.password), fieldWidth, m.login.field == fieldPassword, true)

	lines := []string{
		"",
		title,
		tagline,
		"",
		usernameLine,
		passwordLine,
	}

	if m.login.guestEnabled {
		guestStyle := lipgloss.NewStyle().
			Foreground(theme.GuestForeground).
			Background(theme.ScreenBackground)
		label := "손님으로 둘러보기"
		if m.login.field == fieldGuestButton {
			guestStyle = lipgloss.NewStyle().
				Foreground(theme.SelectedForeground).
				Background(theme.SelectedBackground).
				Bold(true)
			label = "[ " + label + " ]"
		}
		lines = append(lines, "", guestStyle.Render(label))
	}

	if m.login.busy {
		busy := lipgloss.NewStyle().
			Foreground(theme.FaintText).
			Background(theme.ScreenBackground).
			Render("접속 중...")
		lines = append(lines, "", busy)
	} else if m.login.errorText != "" {
		errStyle := lipgloss.NewStyle().
			Foreground(theme.AccentError).
			Background(theme.ScreenBackground).
			Bold(true)
		lines = append(lines, "", errStyle.Render(m.login.errorText))
	}

	content := strings.Join(lines, "\n")
	framed := lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(theme.BorderColor).
		BorderBackground(theme.ScreenBackground).
		Background(theme.ScreenBackground).
		Padding(1, 4).
		Render(content)

	centered := lipgloss.Place(
		m.width, m.height,
		lipgloss.Center, lipgloss.Center,
		framed,
		lipgloss.WithWhitespaceBackground(theme.ScreenBackground),
	)
	return background.Render(centered)
}

// loginFieldLine renders a labeled input field. Passwords echo as
// asterisks.
func (m Model) loginFieldLine(label, value string, width int, focused, masked bool) string {
	theme := m.theme

	labelStyle := lipgloss.NewStyle().
		Foreground(theme.HeaderForeground).
		Background(theme.ScreenBackground)
	fieldStyle := lipgloss.NewStyle().
		Foreground(theme.InputForeground).
		Background(theme.InputBackground)

	display := value
	if masked {
		display = strings.Repeat("*", len([]rune(value)))
	}
	if focused {
		display += "▏"
	}
	runes := []rune(display)
	if len(runes) > width {
		runes = runes[len(runes)-width:]
	}
	padded := string(runes) + strings.Repeat(" ", max(0, width-lipgloss.Width(string(runes))))

	return labelStyle.Render(padLabel(label, 10)) + fieldStyle.Render(padded)
}

// padLabel right-pads a label to a fixed display width, accounting
// for double-width hangul.
func padLabel(label string, width int) string {
	padding := width - lipgloss.Width(label)
	if padding < 0 {
		padding = 0
	}
	return label + strings.Repeat(" ", padding) + " "
}
