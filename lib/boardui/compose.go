// Copyright 2026 The Telboard Authors
// SPDX-License-Identifier: Apache-2.0

package boardui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/telboard/telboard/lib/schema/board"
)

// composeField identifies which part of the compose form has the
// cursor.
type composeField int

const (
	composeTitle composeField = iota
	composeCategory
	composeTags
	composeBody
)

// composeForm is the post authoring modal, used for both new posts
// and edits. Edit mode initializes exactly once from the post being
// edited; nothing re-initializes it afterwards, so in-progress typing
// survives collection reloads.
type composeForm struct {
	// editingID is the post being edited; 0 means a new post.
	editingID int64

	title []rune
	tags  []rune

	categories    []board.Category
	categoryIndex int

	// Body is a multi-line rune editor with a tracked cursor.
	lines   [][]rune
	cursorY int
	cursorX int

	field composeField

	// Tag auto-complete over the last comma-fragment.
	suggestions     []string
	suggestionIndex int

	submitting bool
	errorText  string

	vocabulary []string
	limit      int
	theme      Theme
}

// openCompose opens the authoring modal. A nil post starts a new
// draft; otherwise the form initializes from the post (stored markup
// stripped of raw HTML, absent body treated as empty).
func (m Model) openCompose(post *board.Post) (tea.Model, tea.Cmd) {
	var allowed bool
	m, allowed = m.guardWrite()
	if !allowed {
		return m, nil
	}
	if len(m.board.categories) == 0 {
		return m.showNotice("등록된 분류가 없습니다.", false), nil
	}

	form := &composeForm{
		categories: m.board.categories,
		lines:      [][]rune{{}},
		vocabulary: m.board.tags,
		limit:      m.options.AutocompleteLimit,
		theme:      m.theme,
	}

	if post != nil {
		if post.AuthorID != m.user.ID && !m.user.IsAdmin() {
			return m.showNotice("자신의 게시물만 고칠 수 있습니다.", false), nil
		}
		form.editingID = post.ID
		form.title = []rune(post.Title)
		form.tags = []rune(board.JoinTags(post.Tags))
		for index, category := range form.categories {
			if category.ID == post.CategoryID {
				form.categoryIndex = index
				break
			}
		}
		body := StripHTMLTags(post.Body)
		form.lines = nil
		for _, line := range strings.Split(body, "\n") {
			form.lines = append(form.lines, []rune(line))
		}
		if len(form.lines) == 0 {
			form.lines = [][]rune{{}}
		}
	} else if m.board.filter.CategoryID != 0 {
		// New posts default to the category currently on screen.
		for index, category := range form.categories {
			if category.ID == m.board.filter.CategoryID {
				form.categoryIndex = index
				break
			}
		}
	}

	m.compose = form
	m.priorFocus = m.focus
	m.focus = FocusCompose
	return m, nil
}

// handleComposeKeys routes keys inside the authoring modal.
func (m Model) handleComposeKeys(message tea.KeyMsg) (tea.Model, tea.Cmd) {
	form := m.compose
	if form == nil {
		m.focus = FocusPostList
		return m, nil
	}
	if form.submitting {
		return m, nil
	}

	switch message.Type {
	case tea.KeyEsc:
		m.compose = nil
		m.focus = m.priorFocus
		return m, nil

	case tea.KeyCtrlD:
		return m.submitCompose()

	case tea.KeyTab:
		// In the tags field, Tab accepts the highlighted suggestion;
		// elsewhere it advances to the next field.
		if form.field == composeTags && len(form.suggestions) > 0 {
			form.acceptSuggestion()
			return m, nil
		}
		form.field = (form.field + 1) % 4
		form.refreshSuggestions()
		return m, nil

	case tea.KeyShiftTab:
		form.field = (form.field + 3) % 4
		form.refreshSuggestions()
		return m, nil
	}

	switch form.field {
	case composeTitle:
		form.editLine(&form.title, message)
	case composeCategory:
		switch message.Type {
		case tea.KeyLeft:
			form.categoryIndex = (form.categoryIndex + len(form.categories) - 1) % len(form.categories)
		case tea.KeyRight, tea.KeySpace:
			form.categoryIndex = (form.categoryIndex + 1) % len(form.categories)
		}
	case composeTags:
		switch message.Type {
		case tea.KeyDown:
			if len(form.suggestions) > 0 {
				form.suggestionIndex = (form.suggestionIndex + 1) % len(form.suggestions)
			}
		case tea.KeyUp:
			if len(form.suggestions) > 0 {
				form.suggestionIndex = (form.suggestionIndex + len(form.suggestions) - 1) % len(form.suggestions)
			}
		default:
			form.editLine(&form.tags, message)
			form.refreshSuggestions()
		}
	case composeBody:
		form.editBody(message)
	}
	return m, nil
}

// editLine applies a key to a single-line rune buffer.
func (form *composeForm) editLine(buffer *[]rune, message tea.KeyMsg) {
	switch message.Type {
	case tea.KeyBackspace:
		if len(*buffer) > 0 {
			*buffer = (*buffer)[:len(*buffer)-1]
		}
	case tea.KeyRunes, tea.KeySpace:
		*buffer = append(*buffer, message.Runes...)
	}
}

// editBody applies a key to the multi-line body editor. The editor
// is the same rune-buffer line editor pattern used across the UI:
// enter splits, backspace merges, arrows track the cursor.
func (form *composeForm) editBody(message tea.KeyMsg) {
	switch message.Type {
	case tea.KeyRunes, tea.KeySpace:
		for _, r := range message.Runes {
			line := form.lines[form.cursorY]
			next := make([]rune, len(line)+1)
			copy(next, line[:form.cursorX])
			next[form.cursorX] = r
			copy(next[form.cursorX+1:], line[form.cursorX:])
			form.lines[form.cursorY] = next
			form.cursorX++
		}

	case tea.KeyEnter:
		line := form.lines[form.cursorY]
		before := make([]rune, form.cursorX)
		copy(before, line[:form.cursorX])
		after := make([]rune, len(line)-form.cursorX)
		copy(after, line[form.cursorX:])

		form.lines[form.cursorY] = before
		next := make([][]rune, len(form.lines)+1)
		copy(next, form.lines[:form.cursorY+1])
		next[form.cursorY+1] = after
		copy(next[form.cursorY+2:], form.lines[form.cursorY+1:])
		form.lines = next
		form.cursorY++
		form.cursorX = 0

	case tea.KeyBackspace:
		if form.cursorX > 0 {
			line := form.lines[form.cursorY]
			form.lines[form.cursorY] = append(line[:form.cursorX-1], line[form.cursorX:]...)
			form.cursorX--
		} else if form.cursorY > 0 {
			previous := form.lines[form.cursorY-1]
			current := form.lines[form.cursorY]
			form.cursorX = len(previous)
			form.lines[form.cursorY-1] = append(previous, current...)
			form.lines = append(form.lines[:form.cursorY], form.lines[form.cursorY+1:]...)
			form.cursorY--
		}

	case tea.KeyLeft:
		if form.cursorX > 0 {
			form.cursorX--
		} else if form.cursorY > 0 {
			form.cursorY--
			form.cursorX = len(form.lines[form.cursorY])
		}
	case tea.KeyRight:
		if form.cursorX < len(form.lines[form.cursorY]) {
			form.cursorX++
		} else if form.cursorY < len(form.lines)-1 {
			form.cursorY++
			form.cursorX = 0
		}
	case tea.KeyUp:
		if form.cursorY > 0 {
			form.cursorY--
			if form.cursorX > len(form.lines[form.cursorY]) {
				form.cursorX = len(form.lines[form.cursorY])
			}
		}
	case tea.KeyDown:
		if form.cursorY < len(form.lines)-1 {
			form.cursorY++
			if form.cursorX > len(form.lines[form.cursorY]) {
				form.cursorX = len(form.lines[form.cursorY])
			}
		}
	case tea.KeyHome, tea.KeyCtrlA:
		form.cursorX = 0
	case tea.KeyEnd, tea.KeyCtrlE:
		form.cursorX = len(form.lines[form.cursorY])
	}
}

// refreshSuggestions recomputes the auto-complete list from the last
// comma-fragment of the tags input.
func (form *composeForm) refreshSuggestions() {
	if form.field != composeTags {
		form.suggestions = nil
		form.suggestionIndex = 0
		return
	}
	fragment := LastTagFragment(string(form.tags))
	form.suggestions = TagSuggestions(form.vocabulary, fragment, form.limit)
	if form.suggestionIndex >= len(form.suggestions) {
		form.suggestionIndex = 0
	}
}

// acceptSuggestion replaces the in-progress fragment with the
// highlighted suggestion.
func (form *composeForm) acceptSuggestion() {
	if form.suggestionIndex >= len(form.suggestions) {
		return
	}
	chosen := form.suggestions[form.suggestionIndex]
	input := string(form.tags)
	if idx := strings.LastIndex(input, ","); idx >= 0 {
		input = input[:idx+1] + " " + chosen
	} else {
		input = chosen
	}
	form.tags = []rune(input)
	form.refreshSuggestions()
}

// body returns the editor content joined into the markdown source.
func (form *composeForm) body() string {
	var parts []string
	for _, line := range form.lines {
		parts = append(parts, string(line))
	}
	return strings.Join(parts, "\n")
}

// draft assembles the PostDraft from the form fields.
func (form *composeForm) draft() board.PostDraft {
	return board.PostDraft{
		CategoryID: form.categories[form.categoryIndex].ID,
		Title:      strings.TrimSpace(string(form.title)),
		Body:       strings.TrimSpace(form.body()),
		Tags:       board.ParseTags(string(form.tags)),
	}
}

// submitCompose validates the draft and fires the create or update
// call. Validation failures show inline; the form and its contents
// stay put until the backend confirms.
func (m Model) submitCompose() (tea.Model, tea.Cmd) {
	form := m.compose
	draft := form.draft()
	if err := draft.Validate(); err != nil {
		form.errorText = composeErrorText(err)
		return m, nil
	}

	var allowed bool
	m, allowed = m.guardWrite()
	if !allowed {
		return m, nil
	}

	form.errorText = ""
	form.submitting = true
	if form.editingID != 0 {
		return m, m.updatePost(form.editingID, draft)
	}
	return m, m.createPost(draft)
}

// composeErrorText maps draft validation errors onto the form's
// message line.
func composeErrorText(err error) string {
	message := err.Error()
	switch {
	case strings.Contains(message, "title"):
		return "제목을 입력해 주세요."
	case strings.Contains(message, "category"):
		return "분류를 선택해 주세요."
	case strings.Contains(message, "body"):
		return "내용을 입력해 주세요."
	case strings.Contains(message, "tags"):
		return "태그가 너무 많습니다."
	}
	return message
}

// Modal chrome: border, padding, title, field rows, footer.
const (
	composeChromeWidth  = 4
	composeMinBodyLines = 5
	composeMargin       = 3
)

// Render produces the modal lines and anchor for overlay splicing.
func (form *composeForm) Render(screenWidth, screenHeight int) ([]string, int, int) {
	theme := form.theme

	modalWidth := screenWidth - composeMargin*2
	if modalWidth < 48 {
		modalWidth = min(48, screenWidth)
	}
	innerWidth := modalWidth - composeChromeWidth

	background := lipgloss.NewStyle().Background(theme.NoticeBackground)
	labelStyle := lipgloss.NewStyle().
		Foreground(theme.HeaderForeground).
		Background(theme.NoticeBackground).
		Bold(true)
	textStyle := lipgloss.NewStyle().
		Foreground(theme.NoticeForeground).
		Background(theme.NoticeBackground)
	fieldStyle := lipgloss.NewStyle().
		Foreground(theme.InputForeground).
		Background(theme.InputBackground)
	activeLabel := lipgloss.NewStyle().
		Foreground(theme.SelectedForeground).
		Background(theme.SelectedBackground).
		Bold(true)
	faint := lipgloss.NewStyle().
		Foreground(theme.FaintText).
		Background(theme.NoticeBackground)

	label := func(text string, field composeField) string {
		if form.field == field {
			return activeLabel.Render("▸" + text)
		}
		return labelStyle.Render(" " + text)
	}
	fieldLine := func(value string, field composeField, width int) string {
		display := value
		if form.field == field && !form.submitting {
			display += "▏"
		}
		runes := []rune(display)
		for lipgloss.Width(string(runes)) > width && len(runes) > 0 {
			runes = runes[1:]
		}
		return fieldStyle.Render(padRight(string(runes), width))
	}

	title := "새 게시물"
	if form.editingID != 0 {
		title = "게시물 고치기"
	}

	fieldWidth := innerWidth - 12
	if fieldWidth < 12 {
		fieldWidth = 12
	}

	var rows []string
	rows = append(rows, labelStyle.Render(padRight("■ "+title, innerWidth)))
	rows = append(rows, background.Render(strings.Repeat(" ", innerWidth)))
	rows = append(rows, label("제목    ", composeTitle)+" "+fieldLine(string(form.title), composeTitle, fieldWidth))

	category := form.categories[form.categoryIndex].Name
	categoryDisplay := "◀ " + category + " ▶"
	rows = append(rows, label("분류    ", composeCategory)+" "+textStyle.Render(padRight(categoryDisplay, fieldWidth)))

	rows = append(rows, label("태그    ", composeTags)+" "+fieldLine(string(form.tags), composeTags, fieldWidth))

	// Suggestion strip under the tags field.
	if form.field == composeTags && len(form.suggestions) > 0 {
		var parts []string
		for index, suggestion := range form.suggestions {
			if index == form.suggestionIndex {
				parts = append(parts, activeLabel.Render(" "+suggestion+" "))
			} else {
				parts = append(parts, faint.Render(" "+suggestion+" "))
			}
		}
		strip := strings.Join(parts, "")
		pad := innerWidth - ansi.StringWidth(strip) - 10
		if pad < 0 {
			pad = 0
		}
		rows = append(rows, background.Render(strings.Repeat(" ", 10))+strip+background.Render(strings.Repeat(" ", pad)))
	}

	rows = append(rows, background.Render(strings.Repeat(" ", innerWidth)))
	rows = append(rows, label("내용    ", composeBody))

	// Body editor lines, scrolled so the cursor stays visible.
	bodyHeight := screenHeight - len(rows) - 8
	if bodyHeight < composeMinBodyLines {
		bodyHeight = composeMinBodyLines
	}
	scroll := 0
	if form.cursorY >= bodyHeight {
		scroll = form.cursorY - bodyHeight + 1
	}
	for lineIndex := scroll; lineIndex < scroll+bodyHeight; lineIndex++ {
		var rendered string
		if lineIndex < len(form.lines) {
			line := form.lines[lineIndex]
			if lineIndex == form.cursorY && form.field == composeBody && !form.submitting {
				cursorStyle := lipgloss.NewStyle().Reverse(true)
				if form.cursorX >= len(line) {
					rendered = fieldStyle.Render(string(line)) + cursorStyle.Render(" ")
				} else {
					rendered = fieldStyle.Render(string(line[:form.cursorX])) +
						cursorStyle.Render(string(line[form.cursorX:form.cursorX+1])) +
						fieldStyle.Render(string(line[form.cursorX+1:]))
				}
			} else {
				rendered = fieldStyle.Render(string(line))
			}
		}
		width := ansi.StringWidth(rendered)
		if width < innerWidth {
			rendered += fieldStyle.Render(strings.Repeat(" ", innerWidth-width))
		}
		rows = append(rows, rendered)
	}

	rows = append(rows, background.Render(strings.Repeat(" ", innerWidth)))
	if form.errorText != "" {
		errStyle := lipgloss.NewStyle().
			Foreground(theme.AccentError).
			Background(theme.NoticeBackground).
			Bold(true)
		rows = append(rows, errStyle.Render(padRight(form.errorText, innerWidth)))
	}
	footerText := "Ctrl+D 등록  Tab 다음 항목  Esc 취소"
	if form.submitting {
		footerText = "등록 중..."
	}
	rows = append(rows, faint.Render(padRight(footerText, innerWidth)))

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
