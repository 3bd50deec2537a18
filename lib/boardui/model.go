// Copyright 2026 The Telboard Authors
// SPDX-License-Identifier: Apache-2.0

package boardui

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/telboard/telboard/lib/clock"
	"github.com/telboard/telboard/lib/schema/board"
	"github.com/telboard/telboard/lib/session"
	"github.com/telboard/telboard/lib/settings"
)

// Screen identifies which top-level view is active.
type Screen int

const (
	// ScreenLogin is the sign-in form shown before a session exists.
	ScreenLogin Screen = iota
	// ScreenDesktop is the main menu with the service banner and clock.
	ScreenDesktop
	// ScreenBoard is the post list with its category sidebar, and the
	// post detail view layered on top of it.
	ScreenBoard
)

// FocusRegion identifies which component receives keyboard input.
type FocusRegion int

const (
	// FocusLogin routes keys to the sign-in form.
	FocusLogin FocusRegion = iota
	// FocusMenu routes keys to the desktop main menu.
	FocusMenu
	// FocusSidebar routes keys to the category sidebar.
	FocusSidebar
	// FocusPostList routes keys to the post list.
	FocusPostList
	// FocusDetail routes keys to the open post's detail view,
	// including comment selection.
	FocusDetail
	// FocusCommentInput routes keys to the comment editor at the
	// bottom of the detail view.
	FocusCommentInput
	// FocusCompose routes keys to the post authoring form.
	FocusCompose
	// FocusNotice means a blocking notice or confirm dialog is up and
	// swallows all input until dismissed.
	FocusNotice
	// FocusSettings routes keys to the preferences modal.
	FocusSettings
)

// Options configures the board UI.
type Options struct {
	// BoardName is the service title shown in the banner.
	BoardName string
	// Tagline is shown under the title on the login screen.
	Tagline string
	// PageSize is the number of posts per page.
	PageSize int
	// AutocompleteLimit caps tag suggestions in the compose form.
	AutocompleteLimit int
	// GuestEnabled shows the guest sign-in option.
	GuestEnabled bool
	// ClockFormat is the time layout for the desktop clock.
	ClockFormat string
	// Clock supplies time for the desktop clock ticker. Tests inject
	// a fake; nil means the real clock.
	Clock clock.Clock
	// Settings holds the user's persisted preferences. A zero value
	// falls back to the defaults.
	Settings settings.Settings
	// SaveSettings persists preference changes made in the settings
	// modal. Nil means changes apply for this session only.
	SaveSettings func(settings.Settings) error
}

// clockTickMsg drives the desktop clock redraw, once per second.
type clockTickMsg time.Time

// sessionEventMsg wraps a session state change (sign-in, sign-out,
// forced sign-out) for delivery through the bubbletea loop.
type sessionEventMsg session.Event

// authResultMsg reports the outcome of an asynchronous sign-in call.
type authResultMsg struct {
	user board.User
	err  error
}

// boardDataMsg carries the initial data load after sign-in:
// categories, the full post collection, the tag vocabulary, and the
// session's bookmark set.
type boardDataMsg struct {
	categories []board.Category
	posts      []board.Post
	tags       []string
	bookmarks  map[int64]bool
	err        error
}

// postsReloadedMsg refreshes the post collection and tag vocabulary
// after a post mutation.
type postsReloadedMsg struct {
	posts []board.Post
	tags  []string
	err   error
}

// commentsLoadedMsg delivers a post's comments for the detail view.
type commentsLoadedMsg struct {
	postID   int64
	comments []board.Comment
	err      error
}

// postMutatedMsg reports a create/update/delete post call. A nil
// error triggers a collection reload.
type postMutatedMsg struct {
	err error
}

// commentMutatedMsg reports an add/delete comment call; on success
// the post's comments are re-fetched.
type commentMutatedMsg struct {
	postID int64
	err    error
}

// bookmarkToggledMsg reports a bookmark toggle for cache update.
type bookmarkToggledMsg struct {
	postID     int64
	bookmarked bool
	err        error
}

// bookmarksReloadedMsg replaces the bookmark cache after a failed
// toggle forced a re-query.
type bookmarksReloadedMsg struct {
	bookmarks map[int64]bool
	err       error
}

// Model is the top-level bubbletea model for the board client.
type Model struct {
	ctx     context.Context
	service Service
	session *session.Session
	clk     clock.Clock
	theme   Theme
	keys    KeyMap
	options Options

	width  int
	height int
	ready  bool

	screen Screen
	focus  FocusRegion
	// priorFocus is restored when a blocking notice closes.
	priorFocus FocusRegion

	user board.User
	now  time.Time

	login   loginForm
	menu    menuState
	board   boardState
	compose *composeForm

	settings      settings.Settings
	settingsModal *settingsModal

	notice *Notice
	// pendingConfirm runs when the active confirm dialog is accepted.
	pendingConfirm tea.Cmd

	// statusLog is a transient log summary shown in place of the help
	// bar until its fade timer fires.
	statusLog      string
	statusLogLevel slog.Level

	events <-chan session.Event

	// quitting suppresses the final render after tea.Quit.
	quitting bool
}

// NewModel creates the board client model. The session must be fresh
// (signed out); the model drives sign-in itself.
func NewModel(ctx context.Context, service Service, sess *session.Session, options Options) Model {
	if options.PageSize <= 0 {
		options.PageSize = 15
	}
	if options.AutocompleteLimit <= 0 {
		options.AutocompleteLimit = 5
	}
	if options.BoardName == "" {
		options.BoardName = "텔보드"
	}
	if options.ClockFormat == "" {
		options.ClockFormat = "2006-01-02 (Mon) 15:04:05"
	}
	clk := options.Clock
	if clk == nil {
		clk = clock.Real()
	}
	if options.Settings == (settings.Settings{}) {
		options.Settings = settings.Default()
	}

	model := Model{
		ctx:     ctx,
		service: service,
		session: sess,
		clk:     clk,
		theme:   DefaultTheme,
		keys:    DefaultKeyMap,
		options: options,
		screen:  ScreenLogin,
		focus:   FocusLogin,
		login:   newLoginForm(options.GuestEnabled),
		menu:    newMenuState(),
		board:   newBoardState(options.PageSize),
		events:  sess.Subscribe(),
		now:     clk.Now(),
	}
	model.settings = options.Settings
	return model
}

// Init implements tea.Model: starts the clock ticker and the session
// event listener.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.tickClock(), listenForSessionEvent(m.events))
}

// tickClock schedules the next clock redraw one second out, using the
// injected clock so tests can drive time.
func (m Model) tickClock() tea.Cmd {
	after := m.clk.After(time.Second)
	return func() tea.Msg {
		return clockTickMsg(<-after)
	}
}

func listenForSessionEvent(events <-chan session.Event) tea.Cmd {
	return func() tea.Msg {
		event, ok := <-events
		if !ok {
			return nil
		}
		return sessionEventMsg(event)
	}
}

// Update implements tea.Model. Blocking notices swallow all keyboard
// input; otherwise keys route by focus region.
func (m Model) Update(message tea.Msg) (tea.Model, tea.Cmd) {
	switch message := message.(type) {
	case tea.KeyMsg:
		if m.focus == FocusNotice {
			return m.handleNoticeKeys(message)
		}
		switch m.focus {
		case FocusLogin:
			return m.handleLoginKeys(message)
		case FocusMenu:
			return m.handleMenuKeys(message)
		case FocusCompose:
			return m.handleComposeKeys(message)
		case FocusCommentInput:
			return m.handleCommentInputKeys(message)
		case FocusDetail:
			return m.handleDetailKeys(message)
		case FocusSidebar, FocusPostList:
			return m.handleBoardKeys(message)
		case FocusSettings:
			return m.handleSettingsKeys(message)
		}

	case tea.WindowSizeMsg:
		m.width = message.Width
		m.height = message.Height
		m.ready = true
		m.board.resize(message.Width, message.Height)

	case clockTickMsg:
		m.now = time.Time(message)
		return m, m.tickClock()

	case sessionEventMsg:
		return m.handleSessionEvent(session.Event(message))

	case authResultMsg:
		return m.handleAuthResult(message)

	case boardDataMsg:
		return m.handleBoardData(message)

	case postsReloadedMsg:
		return m.handlePostsReloaded(message)

	case commentsLoadedMsg:
		if message.err != nil {
			return m.showError(message.err.Error()), nil
		}
		m.board.detail.setComments(message.postID, message.comments)

	case postMutatedMsg:
		if message.err != nil {
			// A failed submit keeps the compose form open with its
			// contents intact behind the notice.
			if m.compose != nil {
				m.compose.submitting = false
			}
			return m.showError(message.err.Error()), nil
		}
		if m.compose != nil {
			m.compose = nil
			if m.focus == FocusCompose {
				m.focus = m.priorFocus
			}
		}
		return m, m.reloadPosts()

	case commentMutatedMsg:
		m = m.finishCommentMutation(message.err)
		if message.err != nil {
			// The draft (and edit mode) stay intact so nothing typed
			// is lost behind the notice.
			return m.showError(message.err.Error()), nil
		}
		// Re-fetch comments and reload the collection so the list's
		// comment counts stay in step.
		return m, tea.Batch(m.loadComments(message.postID), m.reloadPosts())

	case bookmarkToggledMsg:
		if message.err != nil {
			// No optimistic state to roll back (the cache only moves
			// on success); re-query so a cross-client drift cannot
			// survive the failure either.
			m = m.showError(message.err.Error())
			return m, m.reloadBookmarks()
		}
		m.board.bookmarks.Set(message.postID, message.bookmarked)
		// In the bookmarks-only view removing a mark shrinks the
		// visible list, which may orphan the open post.
		if m.board.filter.BookmarksOnly {
			m.board.refreshVisible()
			m = m.clearOrphanedSelection()
		}

	case logRecordMsg:
		m.statusLog = message.Summary
		m.statusLogLevel = message.Level
		after := m.clk.After(logRecordFadeDelay)
		return m, func() tea.Msg {
			<-after
			return logRecordFadeMsg{}
		}

	case logRecordFadeMsg:
		m.statusLog = ""

	case loginErrorFadeMsg:
		if message.seq == m.login.errorSeq {
			m.login.errorText = ""
		}

	case bookmarksReloadedMsg:
		if message.err == nil {
			m.board.bookmarks = NewBookmarkCache(message.bookmarks)
			if m.board.filter.BookmarksOnly {
				m.board.refreshVisible()
				m = m.clearOrphanedSelection()
			}
		}
	}
	return m, nil
}

// handleSessionEvent reacts to session transitions. A forced
// sign-out tears down all board state and returns to the login screen
// with a blocking notice.
func (m Model) handleSessionEvent(event session.Event) (tea.Model, tea.Cmd) {
	next := listenForSessionEvent(m.events)
	if event == session.EventForcedOut {
		m = m.resetToLogin()
		m.notice = NewNotice("운영자에 의해 접속이 종료되었습니다.", true, m.theme)
		m.priorFocus = FocusLogin
		m.focus = FocusNotice
	}
	return m, next
}

// resetToLogin drops every per-session piece of state.
func (m Model) resetToLogin() Model {
	m.user = board.User{}
	m.screen = ScreenLogin
	m.focus = FocusLogin
	m.login = newLoginForm(m.options.GuestEnabled)
	m.board = newBoardState(m.options.PageSize)
	m.board.resize(m.width, m.height)
	m.compose = nil
	m.settingsModal = nil
	m.notice = nil
	m.pendingConfirm = nil
	return m
}

// handleNoticeKeys routes input to the active blocking notice.
func (m Model) handleNoticeKeys(message tea.KeyMsg) (tea.Model, tea.Cmd) {
	done, confirmed := m.notice.Update(message)
	if !done {
		return m, nil
	}
	m.notice = nil
	m.focus = m.priorFocus
	if confirmed && m.pendingConfirm != nil {
		cmd := m.pendingConfirm
		m.pendingConfirm = nil
		return m, cmd
	}
	m.pendingConfirm = nil
	return m, nil
}

// showNotice raises a blocking notice, remembering where focus was.
func (m Model) showNotice(message string, isError bool) Model {
	m.notice = NewNotice(message, isError, m.theme)
	if m.focus != FocusNotice {
		m.priorFocus = m.focus
	}
	m.focus = FocusNotice
	return m
}

func (m Model) showError(message string) Model {
	return m.showNotice(message, true)
}

// showConfirm raises an OK/Cancel dialog; onConfirm runs if the user
// accepts.
func (m Model) showConfirm(message string, onConfirm tea.Cmd) Model {
	m.notice = NewConfirm(message, m.theme)
	if m.focus != FocusNotice {
		m.priorFocus = m.focus
	}
	m.focus = FocusNotice
	m.pendingConfirm = onConfirm
	return m
}

// guardWrite is the client-side read-only gate: every mutating entry
// point calls it before doing anything else. Guests get a blocking
// notice and the action never reaches the backend (which enforces the
// same rule independently).
func (m Model) guardWrite() (Model, bool) {
	err := m.session.AssertCanMutate()
	if err == nil {
		return m, true
	}
	if errors.Is(err, session.ErrReadOnly) {
		return m.showNotice("손님은 읽기만 할 수 있습니다. 정회원으로 로그인해 주세요.", false), false
	}
	return m.showNotice("로그인이 필요합니다.", false), false
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready || m.quitting {
		return ""
	}

	var view string
	switch m.screen {
	case ScreenLogin:
		view = m.viewLogin()
	case ScreenDesktop:
		view = m.viewDesktop()
	case ScreenBoard:
		view = m.viewBoard()
	}

	if m.compose != nil {
		lines, x, y := m.compose.Render(m.width, m.height)
		view = spliceOverlay(view, lines, x, y)
	}
	if m.settingsModal != nil {
		lines, x, y := m.settingsModal.Render(m.width, m.height)
		view = spliceOverlay(view, lines, x, y)
	}
	if m.notice != nil {
		lines, x, y := m.notice.Render(m.width, m.height)
		view = spliceOverlay(view, lines, x, y)
	}
	return view
}

// screenStyle fills the terminal with the service background.
func (m Model) screenStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Background(m.theme.ScreenBackground).
		Width(m.width).
		Height(m.height)
}

// clockText formats the desktop clock, honoring the seconds
// preference.
func (m Model) clockText() string {
	layout := m.options.ClockFormat
	if !m.settings.ClockSeconds {
		layout = strings.Replace(layout, ":05", "", 1)
	}
	return m.now.Format(layout)
}

// helpBar renders the bottom key-hint line for the given bindings. A
// transient log summary takes the line over until it fades; otherwise
// the line collapses to nothing when the user has hidden it.
func (m Model) helpBar(bindings ...key.Binding) string {
	if m.statusLog != "" {
		color := m.theme.HelpText
		if m.statusLogLevel >= slog.LevelError {
			color = m.theme.AccentError
		}
		return lipgloss.NewStyle().
			Foreground(color).
			Background(m.theme.ScreenBackground).
			Render(" " + m.statusLog)
	}
	if !m.settings.ShowHelpBar {
		return ""
	}
	style := lipgloss.NewStyle().
		Foreground(m.theme.HelpText).
		Background(m.theme.ScreenBackground)
	var parts []string
	for _, binding := range bindings {
		help := binding.Help()
		parts = append(parts, help.Key+" "+help.Desc)
	}
	joined := ""
	for i, part := range parts {
		if i > 0 {
			joined += "  │  "
		}
		joined += part
	}
	return style.Render(" " + joined)
}
