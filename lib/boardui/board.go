// Copyright 2026 The Telboard Authors
// SPDX-License-Identifier: Apache-2.0

package boardui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/telboard/telboard/lib/schema/board"
)

// sidebarWidth is the fixed category pane width on the board screen.
const sidebarWidth = 22

// boardState holds everything the board screen derives its views
// from: the loaded collections, the active filter, and the cursor
// positions.
type boardState struct {
	categories []board.Category
	posts      []board.Post
	tags       []string
	bookmarks  *BookmarkCache

	filter Filter
	// visible is the full filtered sequence; page is the slice of it
	// for the current page.
	visible []board.Post
	page    []board.Post

	// cursor indexes into page; sidebarIndex indexes categories,
	// with -1 meaning the "전체" (all categories) row.
	cursor       int
	sidebarIndex int

	search searchField

	detail detailState

	width  int
	height int
	loaded bool
}

// searchField is the one-line search input above the post list.
type searchField struct {
	active bool
	input  []rune
}

func newBoardState(pageSize int) boardState {
	return boardState{
		filter:       NewFilter(0, pageSize),
		sidebarIndex: -1,
		bookmarks:    NewBookmarkCache(nil),
		detail:       newDetailState(),
	}
}

func (b *boardState) resize(width, height int) {
	b.width = width
	b.height = height
	b.detail.resize(width, height)
}

// refreshVisible recomputes the filtered sequence and the current
// page from the collection and filter, clamping the page and cursor
// when the collection shrank under them.
func (b *boardState) refreshVisible() {
	b.visible = b.filter.VisiblePosts(b.posts, b.bookmarks)
	totalPages := b.filter.TotalPages(len(b.visible))
	if b.filter.Page > totalPages {
		b.filter.Page = totalPages
	}
	b.page = b.filter.PagePosts(b.visible)
	if b.cursor >= len(b.page) {
		b.cursor = len(b.page) - 1
	}
	if b.cursor < 0 {
		b.cursor = 0
	}
}

// selectedPost returns the highlighted post on the current page, or
// false when the page is empty.
func (b *boardState) selectedPost() (board.Post, bool) {
	if b.cursor < 0 || b.cursor >= len(b.page) {
		return board.Post{}, false
	}
	return b.page[b.cursor], true
}

// containsPost reports whether the visible sequence still holds the
// given post ID.
func (b *boardState) containsPost(postID int64) bool {
	for _, post := range b.visible {
		if post.ID == postID {
			return true
		}
	}
	return false
}

// clearOrphanedSelection is the explicit deselect transition: after
// any filter change or collection reload, an open post that is no
// longer in the visible sequence loses focus and the detail view
// closes.
func (m Model) clearOrphanedSelection() Model {
	if m.board.detail.postID != 0 && !m.board.containsPost(m.board.detail.postID) {
		m.board.detail.close()
		if m.focus == FocusDetail || m.focus == FocusCommentInput {
			m.focus = FocusPostList
		}
	}
	return m
}

// handleBoardData installs the initial load after sign-in.
func (m Model) handleBoardData(message boardDataMsg) (tea.Model, tea.Cmd) {
	if message.err != nil {
		return m.showError(message.err.Error()), nil
	}
	m.board.categories = message.categories
	m.board.posts = message.posts
	m.board.tags = message.tags
	m.board.bookmarks = NewBookmarkCache(message.bookmarks)
	m.board.loaded = true
	// A collection change resets paging, like any filter change.
	m.board.filter.Page = 1
	m.board.refreshVisible()
	return m, nil
}

// handlePostsReloaded refreshes the collection after a mutation; the
// filter stays put but the visible list and any open post re-derive.
func (m Model) handlePostsReloaded(message postsReloadedMsg) (tea.Model, tea.Cmd) {
	if message.err != nil {
		return m.showError(message.err.Error()), nil
	}
	m.board.posts = message.posts
	m.board.tags = message.tags
	// A collection change resets paging, like any filter change.
	m.board.filter.Page = 1
	m.board.refreshVisible()
	m = m.clearOrphanedSelection()

	// Keep an open detail view in step with the edited collection.
	if m.board.detail.postID != 0 {
		for _, post := range m.board.posts {
			if post.ID == m.board.detail.postID {
				m.board.detail.setPost(post, m.theme)
				break
			}
		}
	}
	return m, nil
}

// handleBoardKeys routes keys while the sidebar or post list has
// focus.
func (m Model) handleBoardKeys(message tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.board.search.active {
		return m.handleSearchKeys(message)
	}

	switch {
	case key.Matches(message, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit

	case key.Matches(message, m.keys.Back):
		if m.board.filter.Tag != "" {
			// First Esc drops the tag filter and restores the
			// retained category view.
			m.board.filter.ClearTag()
			m.board.refreshVisible()
			return m.clearOrphanedSelection(), nil
		}
		m.screen = ScreenDesktop
		m.focus = FocusMenu
		return m, nil

	case key.Matches(message, m.keys.FocusToggle):
		if m.focus == FocusSidebar {
			m.focus = FocusPostList
		} else {
			m.focus = FocusSidebar
		}

	case key.Matches(message, m.keys.BookmarkView):
		m.board.filter.SetBookmarksOnly(!m.board.filter.BookmarksOnly)
		m.board.refreshVisible()
		return m.clearOrphanedSelection(), nil

	case key.Matches(message, m.keys.FilterClear):
		if m.board.filter.Tag != "" {
			m.board.filter.ClearTag()
			m.board.refreshVisible()
			return m.clearOrphanedSelection(), nil
		}

	case key.Matches(message, m.keys.Compose):
		return m.openCompose(nil)

	case message.Type == tea.KeyRunes && len(message.Runes) == 1 && message.Runes[0] == '/':
		m.board.search.active = true
		m.board.search.input = []rune(m.board.filter.Search)
		return m, nil

	default:
		if m.focus == FocusSidebar {
			return m.handleSidebarKeys(message)
		}
		return m.handlePostListKeys(message)
	}
	return m, nil
}

// handleSidebarKeys moves the category selection. Selecting a
// category switches to category-driven listing (dropping any tag
// filter) and resets to page 1.
func (m Model) handleSidebarKeys(message tea.KeyMsg) (tea.Model, tea.Cmd) {
	count := len(m.board.categories)
	switch {
	case key.Matches(message, m.keys.Up):
		if m.board.sidebarIndex > -1 {
			m.board.sidebarIndex--
		}
	case key.Matches(message, m.keys.Down):
		if m.board.sidebarIndex < count-1 {
			m.board.sidebarIndex++
		}
	case key.Matches(message, m.keys.Select):
		var categoryID int64
		if m.board.sidebarIndex >= 0 && m.board.sidebarIndex < count {
			categoryID = m.board.categories[m.board.sidebarIndex].ID
		}
		m.board.filter.SelectCategory(categoryID)
		m.board.refreshVisible()
		m.focus = FocusPostList
		return m.clearOrphanedSelection(), nil
	}
	return m, nil
}

// handlePostListKeys moves the post highlight, pages, and opens
// posts.
func (m Model) handlePostListKeys(message tea.KeyMsg) (tea.Model, tea.Cmd) {
	b := &m.board
	switch {
	case key.Matches(message, m.keys.Up):
		if b.cursor > 0 {
			b.cursor--
		}
	case key.Matches(message, m.keys.Down):
		if b.cursor < len(b.page)-1 {
			b.cursor++
		}
	case key.Matches(message, m.keys.Home):
		b.cursor = 0
	case key.Matches(message, m.keys.End):
		if len(b.page) > 0 {
			b.cursor = len(b.page) - 1
		}

	case key.Matches(message, m.keys.PageUp), key.Matches(message, m.keys.Left):
		totalPages := b.filter.TotalPages(len(b.visible))
		if b.filter.SetPage(b.filter.Page-1, totalPages) {
			b.page = b.filter.PagePosts(b.visible)
			if b.cursor >= len(b.page) {
				b.cursor = max(0, len(b.page)-1)
			}
		}

	case key.Matches(message, m.keys.PageDown), key.Matches(message, m.keys.Right):
		totalPages := b.filter.TotalPages(len(b.visible))
		if b.filter.SetPage(b.filter.Page+1, totalPages) {
			b.page = b.filter.PagePosts(b.visible)
			if b.cursor >= len(b.page) {
				b.cursor = max(0, len(b.page)-1)
			}
		}

	case key.Matches(message, m.keys.Select):
		if post, ok := b.selectedPost(); ok {
			b.detail.open(post, m.theme)
			m.focus = FocusDetail
			return m, m.loadComments(post.ID)
		}

	case key.Matches(message, m.keys.Bookmark):
		if post, ok := b.selectedPost(); ok {
			var allowed bool
			m, allowed = m.guardWrite()
			if !allowed {
				return m, nil
			}
			return m, m.toggleBookmark(post.ID)
		}
	}
	return m, nil
}

// handleSearchKeys edits the search term. Every keystroke re-derives
// the list (search is conjunctive with the other filters); Enter
// keeps the term and returns focus, Esc clears it.
func (m Model) handleSearchKeys(message tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch message.Type {
	case tea.KeyEnter:
		m.board.search.active = false
		return m, nil
	case tea.KeyEsc:
		m.board.search.active = false
		m.board.search.input = nil
		m.board.filter.SetSearch("")
		m.board.refreshVisible()
		return m.clearOrphanedSelection(), nil
	case tea.KeyBackspace:
		if len(m.board.search.input) > 0 {
			m.board.search.input = m.board.search.input[:len(m.board.search.input)-1]
		}
	case tea.KeyRunes, tea.KeySpace:
		m.board.search.input = append(m.board.search.input, message.Runes...)
	default:
		return m, nil
	}
	m.board.filter.SetSearch(string(m.board.search.input))
	m.board.refreshVisible()
	return m.clearOrphanedSelection(), nil
}

// viewBoard renders the board screen: banner, sidebar and post list
// (or the detail view when a post is open), and the help bar.
func (m Model) viewBoard() string {
	theme := m.theme
	background := lipgloss.NewStyle().Background(theme.ScreenBackground)

	banner := m.viewBanner()
	contentHeight := m.height - 2

	var content string
	if m.board.detail.postID != 0 {
		content = m.viewDetail(contentHeight)
	} else {
		sidebar := m.viewSidebar(contentHeight)
		list := m.viewPostList(m.width-sidebarWidth, contentHeight)
		content = lipgloss.JoinHorizontal(lipgloss.Top, sidebar, list)
	}

	var help string
	switch {
	case m.board.detail.postID != 0:
		help = m.helpBar(m.keys.Comment, m.keys.Edit, m.keys.Delete, m.keys.Bookmark, m.keys.TagJump, m.keys.Back)
	default:
		help = m.helpBar(m.keys.Select, m.keys.Compose, m.keys.Bookmark, m.keys.BookmarkView, m.keys.FocusToggle, m.keys.Back)
	}

	return background.Render(banner + "\n" + content + "\n" + help)
}

// viewSidebar renders the category pane. The highlighted row tracks
// the retained category selection even while a tag filter is active.
func (m Model) viewSidebar(height int) string {
	theme := m.theme
	focused := m.focus == FocusSidebar

	rowStyle := func(selected, active bool) lipgloss.Style {
		switch {
		case selected && focused:
			return lipgloss.NewStyle().
				Foreground(theme.SelectedForeground).
				Background(theme.SelectedBackground).
				Bold(true)
		case active:
			return lipgloss.NewStyle().
				Foreground(theme.HeaderForeground).
				Background(theme.ScreenBackground).
				Bold(true)
		default:
			return lipgloss.NewStyle().
				Foreground(theme.NormalText).
				Background(theme.ScreenBackground)
		}
	}

	inner := sidebarWidth - 4
	var rows []string
	header := lipgloss.NewStyle().
		Foreground(theme.HeaderForeground).
		Background(theme.ScreenBackground).
		Bold(true).
		Render(padRight("분류", inner))
	rows = append(rows, header, "")

	allRow := rowStyle(m.board.sidebarIndex == -1, m.board.filter.CategoryID == 0).
		Render(padRight("전체", inner))
	rows = append(rows, allRow)

	for index, category := range m.board.categories {
		label := ansi.Truncate(category.Name, inner, "…")
		row := rowStyle(m.board.sidebarIndex == index, m.board.filter.CategoryID == category.ID).
			Render(padRight(label, inner))
		rows = append(rows, row)
	}

	if m.board.filter.Tag != "" {
		tag := lipgloss.NewStyle().
			Foreground(theme.AccentTag).
			Background(theme.ScreenBackground).
			Render(padRight("#"+ansi.Truncate(m.board.filter.Tag, inner-1, "…"), inner))
		rows = append(rows, "", tag)
	}

	borderColor := theme.BorderColor
	if focused {
		borderColor = theme.SelectedBackground
	}
	return lipgloss.NewStyle().
		Border(lipgloss.NormalBorder()).
		BorderForeground(borderColor).
		BorderBackground(theme.ScreenBackground).
		Background(theme.ScreenBackground).
		Width(sidebarWidth-2).
		Height(height-2).
		Padding(0, 1).
		Render(strings.Join(rows, "\n"))
}

// viewPostList renders the paged post table.
func (m Model) viewPostList(width, height int) string {
	theme := m.theme
	focused := m.focus == FocusPostList
	inner := width - 4

	var rows []string

	// Search / filter status line.
	if m.board.search.active {
		cursor := lipgloss.NewStyle().
			Foreground(theme.HeaderForeground).
			Background(theme.ScreenBackground).
			Render("▎")
		rows = append(rows, lipgloss.NewStyle().
			Foreground(theme.NormalText).
			Background(theme.ScreenBackground).
			Render(" 찾기: "+string(m.board.search.input))+cursor)
	} else {
		title := m.listTitle()
		rows = append(rows, lipgloss.NewStyle().
			Foreground(theme.HeaderForeground).
			Background(theme.ScreenBackground).
			Bold(true).
			Render(padRight(title, inner)))
	}
	rows = append(rows, "")

	if len(m.board.page) == 0 {
		rows = append(rows, lipgloss.NewStyle().
			Foreground(theme.FaintText).
			Background(theme.ScreenBackground).
			Render("게시물이 없습니다."))
	}

	for index, post := range m.board.page {
		rows = append(rows, m.postRow(post, index == m.board.cursor && focused, inner))
	}

	// Page indicator pinned under the rows.
	totalPages := m.board.filter.TotalPages(len(m.board.visible))
	pageLine := fmt.Sprintf("─ %d/%d 쪽 (%d건) ─", m.board.filter.Page, totalPages, len(m.board.visible))
	rows = append(rows, "", lipgloss.NewStyle().
		Foreground(theme.FaintText).
		Background(theme.ScreenBackground).
		Render(pageLine))

	borderColor := theme.BorderColor
	if focused {
		borderColor = theme.SelectedBackground
	}
	return lipgloss.NewStyle().
		Border(lipgloss.NormalBorder()).
		BorderForeground(borderColor).
		BorderBackground(theme.ScreenBackground).
		Background(theme.ScreenBackground).
		Width(width-2).
		Height(height-2).
		Padding(0, 1).
		Render(strings.Join(rows, "\n"))
}

// listTitle names the active view: bookmarks, tag, search, or the
// selected category.
func (m Model) listTitle() string {
	filter := m.board.filter
	switch {
	case filter.BookmarksOnly:
		return "내 책갈피"
	case filter.Tag != "":
		return "태그: #" + filter.Tag
	case filter.Search != "":
		return "찾기: " + filter.Search
	case filter.CategoryID != 0:
		for _, category := range m.board.categories {
			if category.ID == filter.CategoryID {
				return category.Name
			}
		}
	}
	return "전체 게시물"
}

// postRow renders one list row: star, title, author, comment count,
// and date.
func (m Model) postRow(post board.Post, selected bool, width int) string {
	theme := m.theme

	star := "  "
	if m.board.bookmarks.IsBookmarked(post.ID) {
		star = "★ "
	}
	comments := ""
	if post.CommentCount > 0 {
		comments = fmt.Sprintf(" [%d]", post.CommentCount)
	}
	date := post.CreatedAt.Format("01-02")
	author := post.AuthorName

	// Fixed right side: author, date. Title gets the remainder.
	right := fmt.Sprintf(" %s %s", padRight(author, 10), date)
	titleWidth := width - lipgloss.Width(star) - lipgloss.Width(comments) - lipgloss.Width(right)
	if titleWidth < 4 {
		titleWidth = 4
	}
	title := ansi.Truncate(post.Title, titleWidth, "…")
	title = padRight(title, titleWidth)

	if selected {
		style := lipgloss.NewStyle().
			Foreground(theme.SelectedForeground).
			Background(theme.SelectedBackground)
		return style.Render(star + title + comments + right)
	}

	starStyle := lipgloss.NewStyle().
		Foreground(theme.AccentBookmark).
		Background(theme.ScreenBackground)
	titleStyle := lipgloss.NewStyle().
		Foreground(theme.NormalText).
		Background(theme.ScreenBackground)
	commentStyle := lipgloss.NewStyle().
		Foreground(theme.AccentNew).
		Background(theme.ScreenBackground)
	rightStyle := lipgloss.NewStyle().
		Foreground(theme.FaintText).
		Background(theme.ScreenBackground)

	return starStyle.Render(star) +
		titleStyle.Render(title) +
		commentStyle.Render(comments) +
		rightStyle.Render(right)
}
