// Copyright 2026 The Telboard Authors
// SPDX-License-Identifier: Apache-2.0

package board

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// Role is a user's access level.
type Role string

const (
	// RoleAdmin can manage posts, categories, users, and backups.
	RoleAdmin Role = "admin"

	// RoleMember can create posts and comments and manage bookmarks.
	RoleMember Role = "member"

	// RoleGuest is a read-only role. Guests browse, read, and search
	// but every mutating operation is refused. The guest account has
	// no password.
	RoleGuest Role = "guest"
)

// MaxTitleLength is the longest accepted post title, in runes. Titles
// render on a single 80-column board row alongside the post number,
// author, and date, so anything longer would be truncated everywhere
// it appears.
const MaxTitleLength = 120

// MaxTagsPerPost caps the number of tags on a single post.
const MaxTagsPerPost = 10

// User is a board account.
type User struct {
	// ID is the database row ID.
	ID int64 `json:"id"`

	// Username is the login ID, unique among all accounts.
	Username string `json:"username"`

	// DisplayName is shown next to posts and comments. Falls back to
	// Username when empty.
	DisplayName string `json:"display_name,omitempty"`

	// Role is the access level: admin, member, or guest.
	Role Role `json:"role"`

	// Active is false for deactivated accounts. Deactivated accounts
	// cannot sign in; their posts and comments remain.
	Active bool `json:"active"`

	// CreatedAt is when the account was registered.
	CreatedAt time.Time `json:"created_at"`
}

// Name returns the display name, falling back to the username.
func (u User) Name() string {
	if u.DisplayName != "" {
		return u.DisplayName
	}
	return u.Username
}

// IsGuest reports whether this account is read-only.
func (u User) IsGuest() bool {
	return u.Role == RoleGuest
}

// IsAdmin reports whether this account can use the admin area.
func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Validate checks that required fields are present and well-formed.
func (u User) Validate() error {
	if u.Username == "" {
		return errors.New("user: username is required")
	}
	switch u.Role {
	case RoleAdmin, RoleMember, RoleGuest:
		// Valid.
	case "":
		return errors.New("user: role is required")
	default:
		return fmt.Errorf("user: unknown role %q", u.Role)
	}
	return nil
}

// Category is a board section. Posts belong to exactly one category.
type Category struct {
	// ID is the database row ID.
	ID int64 `json:"id"`

	// Slug is the stable short identifier used in admin tooling and
	// category import files (e.g. "free", "qna", "notice").
	Slug string `json:"slug"`

	// Name is the label shown in the sidebar.
	Name string `json:"name"`

	// Position orders categories in the sidebar. Lower sorts first;
	// ties break by ID.
	Position int `json:"position"`
}

// Validate checks that required fields are present and well-formed.
func (c Category) Validate() error {
	if c.Slug == "" {
		return errors.New("category: slug is required")
	}
	if strings.ContainsAny(c.Slug, " \t\n") {
		return fmt.Errorf("category: slug %q must not contain whitespace", c.Slug)
	}
	if c.Name == "" {
		return errors.New("category: name is required")
	}
	return nil
}

// Post is a board article.
type Post struct {
	// ID is the database row ID, shown as the post number in listings.
	ID int64 `json:"id"`

	// CategoryID is the category this post belongs to.
	CategoryID int64 `json:"category_id"`

	// AuthorID is the account that wrote the post.
	AuthorID int64 `json:"author_id"`

	// AuthorName is the author's display name at query time. Derived
	// from the users table on read; not stored on the post row.
	AuthorName string `json:"author_name,omitempty"`

	// Title is the one-line summary shown in listings.
	Title string `json:"title"`

	// Body is the full article text, in markdown.
	Body string `json:"body"`

	// Tags are free-form labels in the order the author entered them.
	Tags []string `json:"tags,omitempty"`

	// CommentCount is the number of comments at query time. Derived
	// on read; not stored on the post row.
	CommentCount int `json:"comment_count"`

	// CreatedAt is when the post was written.
	CreatedAt time.Time `json:"created_at"`

	// UpdatedAt is when the post was last edited. Equals CreatedAt
	// for never-edited posts.
	UpdatedAt time.Time `json:"updated_at"`
}

// HasTag reports whether the post carries the given tag, matching
// case-sensitively.
func (p Post) HasTag(tag string) bool {
	for _, t := range p.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// Comment is a reply attached to a post.
type Comment struct {
	// ID is the database row ID.
	ID int64 `json:"id"`

	// PostID is the post this comment belongs to.
	PostID int64 `json:"post_id"`

	// AuthorID is the account that wrote the comment.
	AuthorID int64 `json:"author_id"`

	// AuthorName is the author's display name at query time.
	AuthorName string `json:"author_name,omitempty"`

	// Body is the comment text. Plain text; comments do not render
	// markdown.
	Body string `json:"body"`

	// CreatedAt is when the comment was written.
	CreatedAt time.Time `json:"created_at"`
}

// Validate checks that required fields are present.
func (c Comment) Validate() error {
	if c.PostID == 0 {
		return errors.New("comment: post id is required")
	}
	if strings.TrimSpace(c.Body) == "" {
		return errors.New("comment: body is required")
	}
	return nil
}

// PostDraft is the input for creating or editing a post. The compose
// form builds one of these; the store validates it again before
// writing.
type PostDraft struct {
	// CategoryID is the category the post will belong to.
	CategoryID int64 `json:"category_id"`

	// Title is the post title.
	Title string `json:"title"`

	// Body is the markdown article text.
	Body string `json:"body"`

	// Tags are the parsed tag list, in input order. See ParseTags.
	Tags []string `json:"tags,omitempty"`
}

// Validate checks that the draft is complete enough to save. The
// title and body must be non-blank after trimming and a category must
// be chosen.
func (d PostDraft) Validate() error {
	if d.CategoryID == 0 {
		return errors.New("post draft: category is required")
	}
	if strings.TrimSpace(d.Title) == "" {
		return errors.New("post draft: title is required")
	}
	if utf8.RuneCountInString(d.Title) > MaxTitleLength {
		return fmt.Errorf("post draft: title exceeds %d characters", MaxTitleLength)
	}
	if strings.TrimSpace(d.Body) == "" {
		return errors.New("post draft: body is required")
	}
	if len(d.Tags) > MaxTagsPerPost {
		return fmt.Errorf("post draft: at most %d tags allowed, got %d", MaxTagsPerPost, len(d.Tags))
	}
	return nil
}

// ParseTags splits a comma-separated tag input into a tag list. Each
// fragment is whitespace-trimmed; empty fragments are dropped.
// Duplicates are preserved in input order — the input is the author's
// to clean up, and collapsing repeats here would make the saved post
// disagree with what the form showed.
//
//	ParseTags("a, b, ,a") → ["a", "b", "a"]
func ParseTags(input string) []string {
	var tags []string
	for _, fragment := range strings.Split(input, ",") {
		fragment = strings.TrimSpace(fragment)
		if fragment == "" {
			continue
		}
		tags = append(tags, fragment)
	}
	return tags
}

// JoinTags is the inverse of ParseTags for pre-filling the compose
// form when editing: tags joined with ", ".
func JoinTags(tags []string) string {
	return strings.Join(tags, ", ")
}
