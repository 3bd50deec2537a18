// Copyright 2026 The Telboard Authors
// SPDX-License-Identifier: Apache-2.0

package boardui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// menuEntry identifies a desktop main menu action.
type menuEntry int

const (
	menuBoard menuEntry = iota
	menuBookmarks
	menuSettings
	menuHelp
	menuLogout
)

var menuLabels = map[menuEntry]string{
	menuBoard:     "게시판",
	menuBookmarks: "내 책갈피",
	menuSettings:  "설정",
	menuHelp:      "도움말",
	menuLogout:    "로그아웃",
}

// menuOrder is the display order; digit keys 1..N map onto it.
var menuOrder = []menuEntry{menuBoard, menuBookmarks, menuSettings, menuHelp, menuLogout}

// menuState is the desktop main menu: a highlighted index over
// menuOrder.
type menuState struct {
	cursor int
}

func newMenuState() menuState {
	return menuState{}
}

// handleMenuKeys routes keys on the desktop screen. Arrows wrap
// around the menu; digits 1..N jump to and activate entry N.
func (m Model) handleMenuKeys(message tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(message, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit

	case key.Matches(message, m.keys.Up):
		m.menu.cursor = (m.menu.cursor - 1 + len(menuOrder)) % len(menuOrder)

	case key.Matches(message, m.keys.Down):
		m.menu.cursor = (m.menu.cursor + 1) % len(menuOrder)

	case key.Matches(message, m.keys.Select):
		return m.activateMenuEntry(menuOrder[m.menu.cursor])

	case key.Matches(message, m.keys.Help):
		return m.showHelp(), nil

	default:
		// Digit keys jump directly to entry N and activate it.
		if message.Type == tea.KeyRunes && len(message.Runes) == 1 {
			digit := message.Runes[0]
			if digit >= '1' && digit <= '9' {
				index := int(digit - '1')
				if index < len(menuOrder) {
					m.menu.cursor = index
					return m.activateMenuEntry(menuOrder[index])
				}
			}
		}
	}
	return m, nil
}

// activateMenuEntry performs the highlighted action.
func (m Model) activateMenuEntry(entry menuEntry) (tea.Model, tea.Cmd) {
	switch entry {
	case menuBoard:
		m.screen = ScreenBoard
		m.focus = FocusPostList
		m.board.filter.SetBookmarksOnly(false)
		m.board.refreshVisible()
		m = m.clearOrphanedSelection()
		return m, nil

	case menuBookmarks:
		m.screen = ScreenBoard
		m.focus = FocusPostList
		m.board.filter.SetBookmarksOnly(true)
		m.board.refreshVisible()
		m = m.clearOrphanedSelection()
		return m, nil

	case menuSettings:
		return m.showSettings(), nil

	case menuHelp:
		return m.showHelp(), nil

	case menuLogout:
		m.session.SignOut()
		m = m.resetToLogin()
		return m, nil
	}
	return m, nil
}

// viewDesktop renders the main menu: banner with the service name and
// clock, the numbered menu box, and the session line.
func (m Model) viewDesktop() string {
	theme := m.theme
	background := lipgloss.NewStyle().Background(theme.ScreenBackground)

	banner := m.viewBanner()

	var rows []string
	for index, entry := range menuOrder {
		label := fmt.Sprintf(" %d. %s", index+1, menuLabels[entry])
		if entry == menuBookmarks && m.board.bookmarks != nil {
			label += fmt.Sprintf(" (%d)", m.board.bookmarks.Count())
		}

		style := lipgloss.NewStyle().
			Foreground(theme.NormalText).
			Background(theme.ScreenBackground)
		if index == m.menu.cursor {
			style = lipgloss.NewStyle().
				Foreground(theme.SelectedForeground).
				Background(theme.SelectedBackground).
				Bold(true)
			label = "▶" + label[1:]
		}
		rows = append(rows, style.Render(padRight(label, 24)))
	}

	menuBox := lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(theme.BorderColor).
		BorderBackground(theme.ScreenBackground).
		Background(theme.ScreenBackground).
		Padding(1, 2).
		Render(strings.Join(rows, "\n"))

	sessionLine := lipgloss.NewStyle().
		Foreground(theme.RoleColor(string(m.user.Role))).
		Background(theme.ScreenBackground).
		Render(m.user.Name() + " 님, 어서 오세요.")

	body := lipgloss.JoinVertical(lipgloss.Center, menuBox, "", sessionLine)
	centered := lipgloss.Place(
		m.width, m.height-2,
		lipgloss.Center, lipgloss.Center,
		body,
		lipgloss.WithWhitespaceBackground(theme.ScreenBackground),
	)

	help := m.helpBar(m.keys.Up, m.keys.Down, m.keys.Select, m.keys.Help, m.keys.Quit)
	return background.Render(banner + "\n" + centered + "\n" + help)
}

// viewBanner renders the top chrome line: service name on the left,
// live clock on the right.
func (m Model) viewBanner() string {
	theme := m.theme

	title := lipgloss.NewStyle().
		Foreground(theme.TitleForeground).
		Background(theme.ScreenBackground).
		Bold(true).
		Render(" ■ " + m.options.BoardName)
	clockText := lipgloss.NewStyle().
		Foreground(theme.ClockForeground).
		Background(theme.ScreenBackground).
		Render(m.clockText() + " ")

	gap := m.width - lipgloss.Width(title) - lipgloss.Width(clockText)
	if gap < 1 {
		gap = 1
	}
	filler := lipgloss.NewStyle().
		Background(theme.ScreenBackground).
		Render(strings.Repeat(" ", gap))
	return title + filler + clockText
}

// padRight pads a string with spaces to a display width.
func padRight(s string, width int) string {
	padding := width - lipgloss.Width(s)
	if padding < 0 {
		padding = 0
	}
	return s + strings.Repeat(" ", padding)
}
