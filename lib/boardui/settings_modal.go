// Copyright 2026 The Telboard Authors
// SPDX-License-Identifier: Apache-2.0

package boardui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/telboard/telboard/lib/settings"
)

// settingsModal is the preferences screen: a toggle list over the
// persisted user settings.
type settingsModal struct {
	cursor int
	values settings.Settings
	theme  Theme
}

// settingsRows are the toggle labels, in display order. They map 1:1
// onto the Settings fields by index.
var settingsRows = []string{
	"시계에 초 표시",
	"하단 도움말 표시",
	"대체 화면 사용",
}

func (s *settingsModal) get(index int) bool {
	switch index {
	case 0:
		return s.values.ClockSeconds
	case 1:
		return s.values.ShowHelpBar
	case 2:
		return s.values.AltScreen
	}
	return false
}

func (s *settingsModal) toggle(index int) {
	switch index {
	case 0:
		s.values.ClockSeconds = !s.values.ClockSeconds
	case 1:
		s.values.ShowHelpBar = !s.values.ShowHelpBar
	case 2:
		s.values.AltScreen = !s.values.AltScreen
	}
}

// showSettings opens the preferences modal over the current screen.
func (m Model) showSettings() Model {
	m.settingsModal = &settingsModal{values: m.settings, theme: m.theme}
	if m.focus != FocusSettings {
		m.priorFocus = m.focus
	}
	m.focus = FocusSettings
	return m
}

// handleSettingsKeys routes keys while the preferences modal is up.
// Toggles apply immediately; closing persists them.
func (m Model) handleSettingsKeys(message tea.KeyMsg) (tea.Model, tea.Cmd) {
	modal := m.settingsModal
	switch {
	case message.Type == tea.KeyEsc || message.Type == tea.KeyEnter:
		m.settings = modal.values
		m.settingsModal = nil
		m.focus = m.priorFocus
		if m.options.SaveSettings != nil {
			if err := m.options.SaveSettings(m.settings); err != nil {
				return m.showError("설정을 저장하지 못했습니다: " + err.Error()), nil
			}
		}
		return m, nil

	case message.Type == tea.KeyUp:
		if modal.cursor > 0 {
			modal.cursor--
		}
	case message.Type == tea.KeyDown:
		if modal.cursor < len(settingsRows)-1 {
			modal.cursor++
		}
	case message.Type == tea.KeySpace,
		message.Type == tea.KeyLeft, message.Type == tea.KeyRight:
		modal.toggle(modal.cursor)
	}
	return m, nil
}

// Render produces the modal lines and anchor for overlay splicing.
func (s *settingsModal) Render(screenWidth, screenHeight int) ([]string, int, int) {
	theme := s.theme

	titleStyle := lipgloss.NewStyle().
		Foreground(theme.HeaderForeground).
		Background(theme.NoticeBackground).
		Bold(true)
	normal := lipgloss.NewStyle().
		Foreground(theme.NoticeForeground).
		Background(theme.NoticeBackground)
	selected := lipgloss.NewStyle().
		Foreground(theme.SelectedForeground).
		Background(theme.SelectedBackground).
		Bold(true)
	faint := lipgloss.NewStyle().
		Foreground(theme.FaintText).
		Background(theme.NoticeBackground)

	innerWidth := 30
	rows := []string{titleStyle.Render(padRight("■ 설정", innerWidth)), ""}
	for index, label := range settingsRows {
		mark := "[ ]"
		if s.get(index) {
			mark = "[■]"
		}
		row := " " + mark + " " + label
		if index == s.cursor {
			rows = append(rows, selected.Render(padRight(row, innerWidth)))
		} else {
			rows = append(rows, normal.Render(padRight(row, innerWidth)))
		}
	}
	rows = append(rows, "", faint.Render(padRight("Space 전환  Enter 저장", innerWidth)))

	border := lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(theme.BorderColor).
		BorderBackground(theme.NoticeBackground).
		Background(theme.NoticeBackground).
		Padding(0, 1)

	rendered := border.Render(strings.Join(rows, "\n"))
	lines := strings.Split(rendered, "\n")
	blockWidth := 0
	if len(lines) > 0 {
		blockWidth = ansi.StringWidth(lines[0])
	}
	anchorX, anchorY := centerAnchor(screenWidth, screenHeight, blockWidth, len(lines))
	return lines, anchorX, anchorY
}

// showHelp raises the key-binding reference as a blocking notice.
func (m Model) showHelp() Model {
	help := strings.Join([]string{
		"방향키        이동",
		"Enter         열기 / 선택",
		"Esc           이전 화면",
		"Tab           칸 이동 / 댓글 선택",
		"w             새 게시물",
		"e             고치기",
		"d             삭제",
		"c             댓글 쓰기",
		"b             책갈피 전환",
		"B             책갈피 모아보기",
		"t             태그로 찾기",
		"/             제목·내용 찾기",
		"q             접속 끊기",
	}, "\n")
	return m.showNotice(help, false)
}
