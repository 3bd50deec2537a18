// Copyright 2026 The Telboard Authors
// SPDX-License-Identifier: Apache-2.0

package boardui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/telboard/telboard/lib/schema/board"
)

// detailHeaderLines is the fixed chrome above the scrolling body:
// title line, byline, tag row, and a separator.
const detailHeaderLines = 4

// detailState is the open post view: header, viewport-scrolled
// markdown body with the comment section appended, and the comment
// editor.
type detailState struct {
	// postID is 0 when no post is open.
	postID   int64
	post     board.Post
	comments []board.Comment

	viewport viewport.Model

	// commentIndex is the selected comment (-1 = none). Edit and
	// delete act on it.
	commentIndex int

	// tagIndex cycles through the post's tags for the tag-filter
	// jump.
	tagIndex int

	input commentEditor

	width  int
	height int
}

// commentEditor is the single-line rune editor at the bottom of the
// detail view, used for both new comments and in-place edits.
type commentEditor struct {
	draft []rune
	// editing holds the comment ID being edited in place; 0 means a
	// new comment is being written.
	editing int64
	// submitting disables input while a call is in flight, and
	// relabels the submit control.
	submitting bool
}

func newDetailState() detailState {
	return detailState{commentIndex: -1}
}

func (d *detailState) resize(width, height int) {
	d.width = width
	d.height = height
	d.viewport.Width = width - 4
	d.viewport.Height = height - detailHeaderLines - 4
	if d.viewport.Height < 1 {
		d.viewport.Height = 1
	}
}

// open shows a post. Comments arrive separately via loadComments.
func (d *detailState) open(post board.Post, theme Theme) {
	d.postID = post.ID
	d.post = post
	d.comments = nil
	d.commentIndex = -1
	d.tagIndex = 0
	d.input = commentEditor{}
	d.render(theme)
	d.viewport.GotoTop()
}

// setPost refreshes the displayed post after a collection reload.
func (d *detailState) setPost(post board.Post, theme Theme) {
	d.post = post
	d.render(theme)
}

// setComments installs a freshly loaded comment list, keeping the
// selection in bounds.
func (d *detailState) setComments(postID int64, comments []board.Comment) {
	if postID != d.postID {
		return
	}
	d.comments = comments
	if d.commentIndex >= len(comments) {
		d.commentIndex = len(comments) - 1
	}
}

func (d *detailState) close() {
	*d = newDetailState()
}

// selectedComment returns the highlighted comment, if any.
func (d *detailState) selectedComment() (board.Comment, bool) {
	if d.commentIndex < 0 || d.commentIndex >= len(d.comments) {
		return board.Comment{}, false
	}
	return d.comments[d.commentIndex], true
}

// render re-renders the markdown body into the viewport. The comment
// section is rendered separately by viewDetail so comment selection
// changes don't re-run the markdown pipeline.
func (d *detailState) render(theme Theme) {
	width := d.viewport.Width
	if width < 10 {
		width = 10
	}
	d.viewport.SetContent(renderPostMarkdown(d.post.Body, theme, width))
}

// handleDetailKeys routes keys while the post detail has focus.
func (m Model) handleDetailKeys(message tea.KeyMsg) (tea.Model, tea.Cmd) {
	d := &m.board.detail
	post := d.post

	switch {
	case key.Matches(message, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit

	case key.Matches(message, m.keys.Back):
		d.close()
		m.focus = FocusPostList
		return m, nil

	case key.Matches(message, m.keys.Up):
		d.viewport.LineUp(1)
	case key.Matches(message, m.keys.Down):
		d.viewport.LineDown(1)
	case key.Matches(message, m.keys.PageUp):
		d.viewport.HalfViewUp()
	case key.Matches(message, m.keys.PageDown):
		d.viewport.HalfViewDown()
	case key.Matches(message, m.keys.Home):
		d.viewport.GotoTop()
	case key.Matches(message, m.keys.End):
		d.viewport.GotoBottom()

	case key.Matches(message, m.keys.FocusToggle):
		// Cycle comment selection: none, first, ..., last, none.
		if len(d.comments) > 0 {
			d.commentIndex++
			if d.commentIndex >= len(d.comments) {
				d.commentIndex = -1
			}
		}

	case key.Matches(message, m.keys.Comment):
		var allowed bool
		m, allowed = m.guardWrite()
		if !allowed {
			return m, nil
		}
		// Keep any draft already in progress.
		d.input.editing = 0
		m.focus = FocusCommentInput
		return m, nil

	case key.Matches(message, m.keys.Edit):
		if comment, ok := d.selectedComment(); ok {
			return m.beginCommentEdit(comment)
		}
		return m.openCompose(&post)

	case key.Matches(message, m.keys.Delete):
		if comment, ok := d.selectedComment(); ok {
			var allowed bool
			m, allowed = m.guardWrite()
			if !allowed {
				return m, nil
			}
			return m.showConfirm("댓글을 삭제할까요?", m.deleteComment(post.ID, comment.ID)), nil
		}
		var allowed bool
		m, allowed = m.guardWrite()
		if !allowed {
			return m, nil
		}
		return m.showConfirm("게시물을 삭제할까요?", m.deletePost(post.ID)), nil

	case key.Matches(message, m.keys.Bookmark):
		var allowed bool
		m, allowed = m.guardWrite()
		if !allowed {
			return m, nil
		}
		return m, m.toggleBookmark(post.ID)

	case key.Matches(message, m.keys.TagJump):
		if len(post.Tags) > 0 {
			tag := post.Tags[d.tagIndex%len(post.Tags)]
			d.tagIndex++
			d.close()
			m.focus = FocusPostList
			m.board.filter.SelectTag(tag)
			m.board.refreshVisible()
			return m.clearOrphanedSelection(), nil
		}
	}
	return m, nil
}

// beginCommentEdit enters in-place edit mode for a comment the gates
// allow the user to touch.
func (m Model) beginCommentEdit(comment board.Comment) (tea.Model, tea.Cmd) {
	var allowed bool
	m, allowed = m.guardWrite()
	if !allowed {
		return m, nil
	}
	if comment.AuthorID != m.user.ID && !m.user.IsAdmin() {
		return m.showNotice("자신의 댓글만 고칠 수 있습니다.", false), nil
	}
	m.board.detail.input = commentEditor{
		draft:   []rune(comment.Body),
		editing: comment.ID,
	}
	m.focus = FocusCommentInput
	return m, nil
}

// handleCommentInputKeys edits the comment draft. Enter submits,
// Esc returns to the detail view with the draft preserved.
func (m Model) handleCommentInputKeys(message tea.KeyMsg) (tea.Model, tea.Cmd) {
	d := &m.board.detail
	if d.input.submitting {
		return m, nil
	}

	switch message.Type {
	case tea.KeyEsc:
		m.focus = FocusDetail
		if d.input.editing != 0 {
			// Leaving edit mode discards the edit draft; the comment
			// itself is untouched.
			d.input = commentEditor{}
		}
		return m, nil

	case tea.KeyEnter:
		body := strings.TrimSpace(string(d.input.draft))
		if body == "" {
			return m, nil
		}
		var allowed bool
		m, allowed = m.guardWrite()
		if !allowed {
			return m, nil
		}
		m.board.detail.input.submitting = true
		if d.input.editing != 0 {
			return m, m.updateComment(d.postID, d.input.editing, body)
		}
		return m, m.addComment(d.postID, body)

	case tea.KeyBackspace:
		if len(d.input.draft) > 0 {
			d.input.draft = d.input.draft[:len(d.input.draft)-1]
		}

	case tea.KeyRunes, tea.KeySpace:
		d.input.draft = append(d.input.draft, message.Runes...)
	}
	return m, nil
}

// finishCommentMutation is called from Update on commentMutatedMsg:
// success clears the draft and leaves edit mode; failure keeps both
// so nothing typed is lost.
func (m Model) finishCommentMutation(err error) Model {
	d := &m.board.detail
	d.input.submitting = false
	if err == nil {
		d.input = commentEditor{}
		if m.focus == FocusCommentInput {
			m.focus = FocusDetail
		}
	}
	return m
}

// viewDetail renders the open post: fixed header, scrolling body,
// comment section, and the comment editor line.
func (m Model) viewDetail(height int) string {
	theme := m.theme
	d := m.board.detail
	post := d.post
	inner := m.width - 4

	titleStyle := lipgloss.NewStyle().
		Foreground(theme.TitleForeground).
		Background(theme.ScreenBackground).
		Bold(true)
	faint := lipgloss.NewStyle().
		Foreground(theme.FaintText).
		Background(theme.ScreenBackground)
	tagStyle := lipgloss.NewStyle().
		Foreground(theme.AccentTag).
		Background(theme.ScreenBackground)

	star := ""
	if m.board.bookmarks.IsBookmarked(post.ID) {
		star = lipgloss.NewStyle().
			Foreground(theme.AccentBookmark).
			Background(theme.ScreenBackground).
			Render(" ★")
	}

	header := []string{
		titleStyle.Render(ansi.Truncate(post.Title, inner-2, "…")) + star,
		faint.Render(fmt.Sprintf("%s · %s · 댓글 %d",
			post.AuthorName, post.CreatedAt.Format("2006-01-02 15:04"), post.CommentCount)),
		tagStyle.Render(tagRow(post.Tags)),
		faint.Render(strings.Repeat("─", max(1, inner))),
	}

	body := d.viewport.View()

	commentSection := m.viewComments(inner)
	editorLine := m.viewCommentEditor(inner)

	content := strings.Join(header, "\n") + "\n" + body + "\n" +
		commentSection + "\n" + editorLine

	return lipgloss.NewStyle().
		Border(lipgloss.NormalBorder()).
		BorderForeground(theme.BorderColor).
		BorderBackground(theme.ScreenBackground).
		Background(theme.ScreenBackground).
		Width(m.width-2).
		Height(height-2).
		Padding(0, 1).
		Render(content)
}

// tagRow formats the tag chips line.
func tagRow(tags []string) string {
	if len(tags) == 0 {
		return ""
	}
	var parts []string
	for _, tag := range tags {
		parts = append(parts, "#"+tag)
	}
	return strings.Join(parts, " ")
}

// viewComments renders the comment list. The selected comment is
// inverse-video; its author sees edit/delete hints in the help bar.
func (m Model) viewComments(width int) string {
	theme := m.theme
	d := m.board.detail

	headerStyle := lipgloss.NewStyle().
		Foreground(theme.HeaderForeground).
		Background(theme.ScreenBackground).
		Bold(true)
	lines := []string{headerStyle.Render(fmt.Sprintf("댓글 %d", len(d.comments)))}

	if len(d.comments) == 0 {
		lines = append(lines, lipgloss.NewStyle().
			Foreground(theme.FaintText).
			Background(theme.ScreenBackground).
			Render("아직 댓글이 없습니다."))
	}

	for index, comment := range d.comments {
		prefix := fmt.Sprintf("%s │ ", comment.AuthorName)
		text := ansi.Truncate(prefix+strings.ReplaceAll(comment.Body, "\n", " "), width, "…")

		if index == d.commentIndex {
			lines = append(lines, lipgloss.NewStyle().
				Foreground(theme.SelectedForeground).
				Background(theme.SelectedBackground).
				Render(padRight(text, width)))
			continue
		}
		lines = append(lines, lipgloss.NewStyle().
			Foreground(theme.NormalText).
			Background(theme.ScreenBackground).
			Render(text))
	}
	return strings.Join(lines, "\n")
}

// viewCommentEditor renders the input line at the bottom of the
// detail view.
func (m Model) viewCommentEditor(width int) string {
	theme := m.theme
	d := m.board.detail

	label := "댓글 쓰기: "
	if d.input.editing != 0 {
		label = "댓글 고치기: "
	}
	if d.input.submitting {
		label = "등록 중... "
	}

	labelStyle := lipgloss.NewStyle().
		Foreground(theme.HeaderForeground).
		Background(theme.ScreenBackground)
	fieldStyle := lipgloss.NewStyle().
		Foreground(theme.InputForeground).
		Background(theme.InputBackground)

	display := string(d.input.draft)
	if m.focus == FocusCommentInput && !d.input.submitting {
		display += "▏"
	}
	fieldWidth := width - lipgloss.Width(label)
	if fieldWidth < 8 {
		fieldWidth = 8
	}
	runes := []rune(display)
	for lipgloss.Width(string(runes)) > fieldWidth && len(runes) > 0 {
		runes = runes[1:]
	}
	field := padRight(string(runes), fieldWidth)

	return labelStyle.Render(label) + fieldStyle.Render(field)
}
