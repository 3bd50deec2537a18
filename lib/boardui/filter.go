// Copyright 2026 The Telboard Authors
// SPDX-License-Identifier: Apache-2.0

package boardui

import (
	"strings"

	"github.com/telboard/telboard/lib/schema/board"
)

// Filter is the board view's derivation state: which subsequence of
// the full post collection is visible, and which page of it. All
// fields are plain values so the filter can be copied and compared in
// tests.
type Filter struct {
	// CategoryID selects the category-driven view. Retained while a
	// tag filter is active so clearing the tag restores the previous
	// category view without re-selection.
	CategoryID int64

	// Tag, when non-empty, switches the list to tag-membership
	// filtering. Mutually exclusive with category filtering for the
	// visible list; CategoryID stays set but inert.
	Tag string

	// Search narrows the list to posts whose title or body contains
	// the term, case-insensitively.
	Search string

	// BookmarksOnly restricts the list to the session's bookmarks.
	BookmarksOnly bool

	// Page is the 1-based page within the filtered sequence.
	Page int

	// PageSize is the number of posts per page.
	PageSize int
}

// NewFilter returns a filter showing page 1 of the given category.
func NewFilter(categoryID int64, pageSize int) Filter {
	return Filter{CategoryID: categoryID, Page: 1, PageSize: pageSize}
}

// SelectCategory switches to category-driven listing, dropping any
// active tag filter and resetting to page 1.
func (f *Filter) SelectCategory(categoryID int64) {
	f.CategoryID = categoryID
	f.Tag = ""
	f.Page = 1
}

// SelectTag switches to tag-membership listing and resets to page 1.
// The category selection is retained for when the tag is cleared.
func (f *Filter) SelectTag(tag string) {
	f.Tag = tag
	f.Page = 1
}

// ClearTag returns to the retained category's listing.
func (f *Filter) ClearTag() {
	f.Tag = ""
	f.Page = 1
}

// SetSearch replaces the free-text term and resets to page 1.
func (f *Filter) SetSearch(term string) {
	f.Search = term
	f.Page = 1
}

// SetBookmarksOnly flips the bookmarks-only view and resets to page 1.
func (f *Filter) SetBookmarksOnly(on bool) {
	f.BookmarksOnly = on
	f.Page = 1
}

// Matches reports whether a single post satisfies the conjunction of
// active predicates (ignoring pagination).
func (f Filter) Matches(post board.Post, bookmarks *BookmarkCache) bool {
	if f.Tag != "" {
		if !post.HasTag(f.Tag) {
			return false
		}
	} else if f.CategoryID != 0 && post.CategoryID != f.CategoryID {
		return false
	}

	if f.Search != "" {
		term := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(post.Title), term) &&
			!strings.Contains(strings.ToLower(post.Body), term) {
			return false
		}
	}

	if f.BookmarksOnly {
		if bookmarks == nil || !bookmarks.IsBookmarked(post.ID) {
			return false
		}
	}

	return true
}

// VisiblePosts returns the subsequence of posts satisfying every
// active predicate, preserving the input order. Pagination is applied
// separately by [PagePosts] so callers can compute totals from the
// full filtered sequence.
func (f Filter) VisiblePosts(posts []board.Post, bookmarks *BookmarkCache) []board.Post {
	var visible []board.Post
	for _, post := range posts {
		if f.Matches(post, bookmarks) {
			visible = append(visible, post)
		}
	}
	return visible
}

// TotalPages returns the page count for the filtered sequence: at
// least 1, even when the sequence is empty.
func (f Filter) TotalPages(filtered int) int {
	if f.PageSize <= 0 || filtered <= 0 {
		return 1
	}
	pages := (filtered + f.PageSize - 1) / f.PageSize
	if pages < 1 {
		pages = 1
	}
	return pages
}

// SetPage moves to the given 1-based page. Out-of-range requests are
// rejected with no state change; the return value reports whether the
// page moved.
func (f *Filter) SetPage(page, totalPages int) bool {
	if page < 1 || page > totalPages {
		return false
	}
	f.Page = page
	return true
}

// PagePosts slices the filtered sequence down to the current page.
// A page beyond the end (possible after the collection shrinks)
// yields an empty slice rather than panicking.
func (f Filter) PagePosts(filtered []board.Post) []board.Post {
	if f.PageSize <= 0 {
		return filtered
	}
	start := (f.Page - 1) * f.PageSize
	if start < 0 || start >= len(filtered) {
		return nil
	}
	end := start + f.PageSize
	if end > len(filtered) {
		end = len(filtered)
	}
	return filtered[start:end]
}

// TagSuggestions computes auto-complete candidates for an in-progress
// tag fragment: known tags containing the fragment case-insensitively,
// in their original relative order, excluding an exact
// case-insensitive match to the fragment itself, capped at limit.
// An empty fragment yields no suggestions.
func TagSuggestions(known []string, fragment string, limit int) []string {
	fragment = strings.TrimSpace(fragment)
	if fragment == "" || limit <= 0 {
		return nil
	}
	needle := strings.ToLower(fragment)

	var suggestions []string
	for _, tag := range known {
		lower := strings.ToLower(tag)
		if lower == needle {
			continue
		}
		if strings.Contains(lower, needle) {
			suggestions = append(suggestions, tag)
			if len(suggestions) == limit {
				break
			}
		}
	}
	return suggestions
}

// LastTagFragment extracts the in-progress fragment from a
// comma-separated tag input: everything after the final comma,
// trimmed. This is what auto-complete matches against.
func LastTagFragment(input string) string {
	if idx := strings.LastIndex(input, ","); idx >= 0 {
		return strings.TrimSpace(input[idx+1:])
	}
	return strings.TrimSpace(input)
}
