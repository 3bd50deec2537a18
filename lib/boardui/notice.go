// Copyright 2026 The Telboard Authors
// SPDX-License-Identifier: Apache-2.0

package boardui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// Notice is a blocking modal: a message the user must dismiss before
// any other input is processed. In confirm mode it carries OK/Cancel
// buttons; otherwise a single OK button. Guest write attempts, errors,
// and delete confirmations all surface through it.
type Notice struct {
	Message string
	IsError bool

	// Confirm is true for OK/Cancel dialogs. The model inspects the
	// outcome of Update and runs the pending action on confirmation.
	Confirm bool

	// selected is the highlighted button: 0 = OK, 1 = Cancel.
	selected int

	theme Theme
}

// NewNotice builds a single-button blocking notice.
func NewNotice(message string, isError bool, theme Theme) *Notice {
	return &Notice{Message: message, IsError: isError, theme: theme}
}

// NewConfirm builds an OK/Cancel dialog with Cancel preselected, so a
// reflexive Enter does not destroy anything.
func NewConfirm(message string, theme Theme) *Notice {
	return &Notice{Message: message, Confirm: true, selected: 1, theme: theme}
}

// Update processes a key while the notice is active. done reports that
// the notice should close; confirmed is meaningful only for confirm
// dialogs and only when done.
func (n *Notice) Update(message tea.KeyMsg) (done, confirmed bool) {
	switch message.Type {
	case tea.KeyEnter:
		if n.Confirm {
			return true, n.selected == 0
		}
		return true, false
	case tea.KeyEsc:
		return true, false
	case tea.KeyLeft, tea.KeyRight, tea.KeyTab:
		if n.Confirm {
			n.selected = 1 - n.selected
		}
	case tea.KeyRunes:
		// y/n shortcuts on confirm dialogs.
		if n.Confirm && len(message.Runes) == 1 {
			switch message.Runes[0] {
			case 'y', 'Y':
				return true, true
			case 'n', 'N':
				return true, false
			}
		}
	}
	return false, false
}

// Render produces the modal lines and the centered anchor position
// for splicing onto the view.
func (n *Notice) Render(screenWidth, screenHeight int) ([]string, int, int) {
	foreground := n.theme.NoticeForeground
	if n.IsError {
		foreground = n.theme.AccentError
	}

	background := lipgloss.NewStyle().Background(n.theme.NoticeBackground)
	textStyle := lipgloss.NewStyle().
		Foreground(foreground).
		Background(n.theme.NoticeBackground).
		Bold(n.IsError)

	// Wrap the message to a comfortable width, capped by the screen.
	maxInner := screenWidth - 8
	if maxInner > 52 {
		maxInner = 52
	}
	if maxInner < 16 {
		maxInner = 16
	}
	wrapped := ansi.Wrap(n.Message, maxInner, " ,.;")
	messageLines := strings.Split(wrapped, "\n")

	innerWidth := 0
	for _, line := range messageLines {
		if w := ansi.StringWidth(line); w > innerWidth {
			innerWidth = w
		}
	}

	buttons := n.renderButtons()
	if w := ansi.StringWidth(buttons); w > innerWidth {
		innerWidth = w
	}

	var content []string
	for _, line := range messageLines {
		content = append(content, padCenter(textStyle.Render(line), ansi.StringWidth(line), innerWidth, background))
	}
	content = append(content, background.Render(strings.Repeat(" ", innerWidth)))
	content = append(content, padCenter(buttons, ansi.StringWidth(buttons), innerWidth, background))

	border := lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(n.theme.BorderColor).
		BorderBackground(n.theme.NoticeBackground).
		Background(n.theme.NoticeBackground).
		Padding(0, 1)

	rendered := border.Render(strings.Join(content, "\n"))
	lines := strings.Split(rendered, "\n")

	blockWidth := 0
	if len(lines) > 0 {
		blockWidth = ansi.StringWidth(lines[0])
	}
	anchorX, anchorY := centerAnchor(screenWidth, screenHeight, blockWidth, len(lines))
	return lines, anchorX, anchorY
}

// renderButtons draws the button row. The highlighted button is shown
// inverse, the way the dial-up services marked the active choice.
func (n *Notice) renderButtons() string {
	normal := lipgloss.NewStyle().
		Foreground(n.theme.NoticeForeground).
		Background(n.theme.NoticeBackground)
	active := lipgloss.NewStyle().
		Foreground(n.theme.SelectedForeground).
		Background(n.theme.SelectedBackground).
		Bold(true)

	if !n.Confirm {
		return active.Render("[ 확인 ]")
	}

	ok := normal.Render("  확인  ")
	cancel := normal.Render("  취소  ")
	if n.selected == 0 {
		ok = active.Render("[ 확인 ]")
	} else {
		cancel = active.Render("[ 취소 ]")
	}
	return ok + normal.Render("  ") + cancel
}

// padCenter pads styled content to width with background spaces on
// both sides.
func padCenter(styled string, contentWidth, width int, background lipgloss.Style) string {
	padding := width - contentWidth
	if padding <= 0 {
		return styled
	}
	left := padding / 2
	right := padding - left
	return background.Render(strings.Repeat(" ", left)) +
		styled +
		background.Render(strings.Repeat(" ", right))
}
