// Copyright 2026 The Telboard Authors
// SPDX-License-Identifier: Apache-2.0

package boardui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/telboard/telboard/lib/schema/board"
)

// signIn authenticates the primary account asynchronously.
func (m Model) signIn(username, password string) tea.Cmd {
	ctx, service := m.ctx, m.service
	return func() tea.Msg {
		user, err := service.Authenticate(ctx, username, password)
		return authResultMsg{user: user, err: err}
	}
}

// signInGuest signs in the shared read-only guest account.
func (m Model) signInGuest() tea.Cmd {
	ctx, service := m.ctx, m.service
	return func() tea.Msg {
		user, err := service.AuthenticateGuest(ctx)
		return authResultMsg{user: user, err: err}
	}
}

// loadBoardData fetches everything the board screens need in one
// round: categories, posts, the tag vocabulary, and the user's
// bookmarks.
func (m Model) loadBoardData(user board.User) tea.Cmd {
	ctx, service := m.ctx, m.service
	return func() tea.Msg {
		categories, err := service.ListCategories(ctx)
		if err != nil {
			return boardDataMsg{err: err}
		}
		posts, err := service.ListPosts(ctx)
		if err != nil {
			return boardDataMsg{err: err}
		}
		tags, err := service.AllTags(ctx)
		if err != nil {
			return boardDataMsg{err: err}
		}
		bookmarks, err := service.Bookmarks(ctx, user.ID)
		if err != nil {
			return boardDataMsg{err: err}
		}
		return boardDataMsg{
			categories: categories,
			posts:      posts,
			tags:       tags,
			bookmarks:  bookmarks,
		}
	}
}

// reloadPosts refreshes the post collection and tag vocabulary after
// a mutation.
func (m Model) reloadPosts() tea.Cmd {
	ctx, service := m.ctx, m.service
	return func() tea.Msg {
		posts, err := service.ListPosts(ctx)
		if err != nil {
			return postsReloadedMsg{err: err}
		}
		tags, err := service.AllTags(ctx)
		if err != nil {
			return postsReloadedMsg{err: err}
		}
		return postsReloadedMsg{posts: posts, tags: tags}
	}
}

// loadComments fetches a post's comments for the detail view.
func (m Model) loadComments(postID int64) tea.Cmd {
	ctx, service := m.ctx, m.service
	return func() tea.Msg {
		comments, err := service.ListComments(ctx, postID)
		return commentsLoadedMsg{postID: postID, comments: comments, err: err}
	}
}

// createPost submits a new post draft.
func (m Model) createPost(draft board.PostDraft) tea.Cmd {
	ctx, service, actor := m.ctx, m.service, m.user
	return func() tea.Msg {
		_, err := service.CreatePost(ctx, actor, draft)
		return postMutatedMsg{err: err}
	}
}

// updatePost submits edits to an existing post.
func (m Model) updatePost(postID int64, draft board.PostDraft) tea.Cmd {
	ctx, service, actor := m.ctx, m.service, m.user
	return func() tea.Msg {
		err := service.UpdatePost(ctx, actor, postID, draft)
		return postMutatedMsg{err: err}
	}
}

// deletePost removes a post after the confirm dialog.
func (m Model) deletePost(postID int64) tea.Cmd {
	ctx, service, actor := m.ctx, m.service, m.user
	return func() tea.Msg {
		err := service.DeletePost(ctx, actor, postID)
		return postMutatedMsg{err: err}
	}
}

// addComment appends a comment to the open post.
func (m Model) addComment(postID int64, body string) tea.Cmd {
	ctx, service, actor := m.ctx, m.service, m.user
	return func() tea.Msg {
		_, err := service.AddComment(ctx, actor, postID, body)
		return commentMutatedMsg{postID: postID, err: err}
	}
}

// updateComment submits an in-place comment edit.
func (m Model) updateComment(postID, commentID int64, body string) tea.Cmd {
	ctx, service, actor := m.ctx, m.service, m.user
	return func() tea.Msg {
		err := service.UpdateComment(ctx, actor, commentID, body)
		return commentMutatedMsg{postID: postID, err: err}
	}
}

// deleteComment removes a comment after the confirm dialog.
func (m Model) deleteComment(postID, commentID int64) tea.Cmd {
	ctx, service, actor := m.ctx, m.service, m.user
	return func() tea.Msg {
		err := service.DeleteComment(ctx, actor, commentID)
		return commentMutatedMsg{postID: postID, err: err}
	}
}

// toggleBookmark flips bookmark membership for a post.
func (m Model) toggleBookmark(postID int64) tea.Cmd {
	ctx, service, actor := m.ctx, m.service, m.user
	return func() tea.Msg {
		bookmarked, err := service.ToggleBookmark(ctx, actor, postID)
		return bookmarkToggledMsg{postID: postID, bookmarked: bookmarked, err: err}
	}
}

// reloadBookmarks re-queries the whole membership set. Used after a
// failed toggle so the cache reflects the backend, not a guess.
func (m Model) reloadBookmarks() tea.Cmd {
	ctx, service, user := m.ctx, m.service, m.user
	return func() tea.Msg {
		marks, err := service.Bookmarks(ctx, user.ID)
		return bookmarksReloadedMsg{bookmarks: marks, err: err}
	}
}
