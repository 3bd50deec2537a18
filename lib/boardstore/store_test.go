// Copyright 2026 The Telboard Authors
// SPDX-License-Identifier: Apache-2.0

package boardstore_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/telboard/telboard/lib/boardstore"
	"github.com/telboard/telboard/lib/clock"
	"github.com/telboard/telboard/lib/schema/board"
)

func baseTime() time.Time {
	return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
}

// openTestStore creates a store backed by a temporary database file,
// closed automatically when the test completes.
func openTestStore(t *testing.T) (*boardstore.Store, *clock.FakeClock) {
	t.Helper()

	fake := clock.Fake(baseTime())
	store, err := boardstore.Open(boardstore.Config{
		Path:  filepath.Join(t.TempDir(), "board.db"),
		Clock: fake,
	})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("Close: %v", err)
		}
	})
	return store, fake
}

// seedBoard creates the standard fixture: an admin, a member, the
// guest account, and one category.
func seedBoard(t *testing.T, store *boardstore.Store) (admin, member, guest board.User, category board.Category) {
	t.Helper()
	ctx := context.Background()

	var err error
	admin, err = store.CreateUser(ctx, "sysop", "시삽", "op-sekrit", board.RoleAdmin)
	if err != nil {
		t.Fatalf("create admin: %v", err)
	}
	member, err = store.CreateUser(ctx, "alice", "앨리스", "wonderland", board.RoleMember)
	if err != nil {
		t.Fatalf("create member: %v", err)
	}
	guest, err = store.EnsureGuest(ctx)
	if err != nil {
		t.Fatalf("ensure guest: %v", err)
	}
	category, err = store.AddCategory(ctx, admin, board.Category{Slug: "free", Name: "자유게시판"})
	if err != nil {
		t.Fatalf("add category: %v", err)
	}
	return admin, member, guest, category
}

func TestAuthenticate(t *testing.T) {
	store, _ := openTestStore(t)
	_, member, _, _ := seedBoard(t, store)
	ctx := context.Background()

	user, err := store.Authenticate(ctx, "alice", "wonderland")
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if user.ID != member.ID || user.Role != board.RoleMember {
		t.Errorf("Authenticate returned %+v", user)
	}

	if _, err := store.Authenticate(ctx, "alice", "wrong"); !errors.Is(err, boardstore.ErrInvalidCredentials) {
		t.Errorf("wrong password: got %v, want ErrInvalidCredentials", err)
	}
	if _, err := store.Authenticate(ctx, "nobody", "wonderland"); !errors.Is(err, boardstore.ErrInvalidCredentials) {
		t.Errorf("unknown user: got %v, want ErrInvalidCredentials", err)
	}
}

func TestAuthenticateGuest(t *testing.T) {
	store, _ := openTestStore(t)
	_, _, guest, _ := seedBoard(t, store)
	ctx := context.Background()

	user, err := store.AuthenticateGuest(ctx)
	if err != nil {
		t.Fatalf("AuthenticateGuest: %v", err)
	}
	if user.ID != guest.ID || !user.IsGuest() {
		t.Errorf("AuthenticateGuest returned %+v", user)
	}
}

func TestEnsureGuestIdempotent(t *testing.T) {
	store, _ := openTestStore(t)
	ctx := context.Background()

	first, err := store.EnsureGuest(ctx)
	if err != nil {
		t.Fatalf("first EnsureGuest: %v", err)
	}
	second, err := store.EnsureGuest(ctx)
	if err != nil {
		t.Fatalf("second EnsureGuest: %v", err)
	}
	if first.ID != second.ID {
		t.Errorf("EnsureGuest created a second account: %d != %d", first.ID, second.ID)
	}
}

func TestDuplicateUsernameRejected(t *testing.T) {
	store, _ := openTestStore(t)
	seedBoard(t, store)
	ctx := context.Background()

	_, err := store.CreateUser(ctx, "alice", "", "other", board.RoleMember)
	if !errors.Is(err, boardstore.ErrConflict) {
		t.Errorf("duplicate username: got %v, want ErrConflict", err)
	}
}

func TestDeactivatedAccountCannotSignIn(t *testing.T) {
	store, _ := openTestStore(t)
	admin, _, _, _ := seedBoard(t, store)
	ctx := context.Background()

	if err := store.DeactivateUser(ctx, admin, "alice"); err != nil {
		t.Fatalf("DeactivateUser: %v", err)
	}
	if _, err := store.Authenticate(ctx, "alice", "wonderland"); !errors.Is(err, boardstore.ErrAccountDisabled) {
		t.Errorf("deactivated sign-in: got %v, want ErrAccountDisabled", err)
	}
}

func TestDeactivatePolicies(t *testing.T) {
	store, _ := openTestStore(t)
	admin, member, _, _ := seedBoard(t, store)
	ctx := context.Background()

	if err := store.DeactivateUser(ctx, member, "sysop"); !errors.Is(err, boardstore.ErrForbidden) {
		t.Errorf("member deactivating: got %v, want ErrForbidden", err)
	}
	if err := store.DeactivateUser(ctx, admin, "sysop"); !errors.Is(err, boardstore.ErrForbidden) {
		t.Errorf("self deactivation: got %v, want ErrForbidden", err)
	}
	if err := store.DeactivateUser(ctx, admin, "nobody"); !errors.Is(err, boardstore.ErrNotFound) {
		t.Errorf("unknown user: got %v, want ErrNotFound", err)
	}
}

func TestCreateAndListPosts(t *testing.T) {
	store, fake := openTestStore(t)
	_, member, _, category := seedBoard(t, store)
	ctx := context.Background()

	first, err := store.CreatePost(ctx, member, board.PostDraft{
		CategoryID: category.ID,
		Title:      "모뎀 속도 질문",
		Body:       "2400bps에서 올릴 방법이 있나요?",
		Tags:       []string{"modem", "question"},
	})
	if err != nil {
		t.Fatalf("CreatePost: %v", err)
	}

	fake.Advance(time.Minute)
	second, err := store.CreatePost(ctx, member, board.PostDraft{
		CategoryID: category.ID,
		Title:      "second",
		Body:       "body",
	})
	if err != nil {
		t.Fatalf("CreatePost: %v", err)
	}

	posts, err := store.ListPosts(ctx)
	if err != nil {
		t.Fatalf("ListPosts: %v", err)
	}
	if len(posts) != 2 {
		t.Fatalf("got %d posts, want 2", len(posts))
	}
	// Newest first.
	if posts[0].ID != second.ID || posts[1].ID != first.ID {
		t.Errorf("order: got [%d %d], want [%d %d]", posts[0].ID, posts[1].ID, second.ID, first.ID)
	}
	if posts[1].AuthorName != "앨리스" {
		t.Errorf("author name = %q, want display name", posts[1].AuthorName)
	}
	if got := posts[1].Tags; len(got) != 2 || got[0] != "modem" || got[1] != "question" {
		t.Errorf("tags = %v", got)
	}
	if !posts[0].CreatedAt.After(posts[1].CreatedAt) {
		t.Errorf("timestamps not advancing: %v vs %v", posts[0].CreatedAt, posts[1].CreatedAt)
	}
}

func TestDuplicateTagsPreserved(t *testing.T) {
	store, _ := openTestStore(t)
	_, member, _, category := seedBoard(t, store)
	ctx := context.Background()

	post, err := store.CreatePost(ctx, member, board.PostDraft{
		CategoryID: category.ID,
		Title:      "t",
		Body:       "b",
		Tags:       board.ParseTags("a, b, ,a"),
	})
	if err != nil {
		t.Fatalf("CreatePost: %v", err)
	}

	stored, err := store.GetPost(ctx, post.ID)
	if err != nil {
		t.Fatalf("GetPost: %v", err)
	}
	if len(stored.Tags) != 3 || stored.Tags[0] != "a" || stored.Tags[1] != "b" || stored.Tags[2] != "a" {
		t.Errorf("tags = %v, want [a b a]", stored.Tags)
	}
}

func TestGuestCannotMutate(t *testing.T) {
	store, _ := openTestStore(t)
	_, member, guest, category := seedBoard(t, store)
	ctx := context.Background()

	post, err := store.CreatePost(ctx, member, board.PostDraft{CategoryID: category.ID, Title: "t", Body: "b"})
	if err != nil {
		t.Fatalf("CreatePost: %v", err)
	}

	if _, err := store.CreatePost(ctx, guest, board.PostDraft{CategoryID: category.ID, Title: "t", Body: "b"}); !errors.Is(err, boardstore.ErrForbidden) {
		t.Errorf("guest CreatePost: got %v, want ErrForbidden", err)
	}
	if err := store.UpdatePost(ctx, guest, post.ID, board.PostDraft{CategoryID: category.ID, Title: "t", Body: "b"}); !errors.Is(err, boardstore.ErrForbidden) {
		t.Errorf("guest UpdatePost: got %v, want ErrForbidden", err)
	}
	if err := store.DeletePost(ctx, guest, post.ID); !errors.Is(err, boardstore.ErrForbidden) {
		t.Errorf("guest DeletePost: got %v, want ErrForbidden", err)
	}
	if _, err := store.AddComment(ctx, guest, post.ID, "hi"); !errors.Is(err, boardstore.ErrForbidden) {
		t.Errorf("guest AddComment: got %v, want ErrForbidden", err)
	}
	if _, err := store.ToggleBookmark(ctx, guest, post.ID); !errors.Is(err, boardstore.ErrForbidden) {
		t.Errorf("guest ToggleBookmark: got %v, want ErrForbidden", err)
	}
}

func TestOwnershipEnforced(t *testing.T) {
	store, _ := openTestStore(t)
	admin, member, _, category := seedBoard(t, store)
	ctx := context.Background()

	other, err := store.CreateUser(ctx, "bob", "", "builder", board.RoleMember)
	if err != nil {
		t.Fatalf("create bob: %v", err)
	}

	post, err := store.CreatePost(ctx, member, board.PostDraft{CategoryID: category.ID, Title: "t", Body: "b"})
	if err != nil {
		t.Fatalf("CreatePost: %v", err)
	}

	draft := board.PostDraft{CategoryID: category.ID, Title: "hijacked", Body: "b"}
	if err := store.UpdatePost(ctx, other, post.ID, draft); !errors.Is(err, boardstore.ErrForbidden) {
		t.Errorf("non-owner UpdatePost: got %v, want ErrForbidden", err)
	}
	if err := store.DeletePost(ctx, other, post.ID); !errors.Is(err, boardstore.ErrForbidden) {
		t.Errorf("non-owner DeletePost: got %v, want ErrForbidden", err)
	}

	// Admin override.
	if err := store.UpdatePost(ctx, admin, post.ID, draft); err != nil {
		t.Errorf("admin UpdatePost: %v", err)
	}
	if err := store.DeletePost(ctx, admin, post.ID); err != nil {
		t.Errorf("admin DeletePost: %v", err)
	}
}

func TestDeletePostCascades(t *testing.T) {
	store, _ := openTestStore(t)
	_, member, _, category := seedBoard(t, store)
	ctx := context.Background()

	post, err := store.CreatePost(ctx, member, board.PostDraft{
		CategoryID: category.ID, Title: "t", Body: "b", Tags: []string{"x"},
	})
	if err != nil {
		t.Fatalf("CreatePost: %v", err)
	}
	if _, err := store.AddComment(ctx, member, post.ID, "first"); err != nil {
		t.Fatalf("AddComment: %v", err)
	}
	if _, err := store.ToggleBookmark(ctx, member, post.ID); err != nil {
		t.Fatalf("ToggleBookmark: %v", err)
	}

	if err := store.DeletePost(ctx, member, post.ID); err != nil {
		t.Fatalf("DeletePost: %v", err)
	}

	if _, err := store.GetPost(ctx, post.ID); !errors.Is(err, boardstore.ErrNotFound) {
		t.Errorf("GetPost after delete: got %v, want ErrNotFound", err)
	}
	comments, err := store.ListComments(ctx, post.ID)
	if err != nil {
		t.Fatalf("ListComments: %v", err)
	}
	if len(comments) != 0 {
		t.Errorf("comments survived delete: %v", comments)
	}
	bookmarks, err := store.Bookmarks(ctx, member.ID)
	if err != nil {
		t.Fatalf("Bookmarks: %v", err)
	}
	if bookmarks[post.ID] {
		t.Error("bookmark survived delete")
	}
	tags, err := store.AllTags(ctx)
	if err != nil {
		t.Fatalf("AllTags: %v", err)
	}
	if len(tags) != 0 {
		t.Errorf("tags survived delete: %v", tags)
	}
}

func TestCommentCountDerived(t *testing.T) {
	store, _ := openTestStore(t)
	_, member, _, category := seedBoard(t, store)
	ctx := context.Background()

	post, err := store.CreatePost(ctx, member, board.PostDraft{CategoryID: category.ID, Title: "t", Body: "b"})
	if err != nil {
		t.Fatalf("CreatePost: %v", err)
	}
	for range 3 {
		if _, err := store.AddComment(ctx, member, post.ID, "reply"); err != nil {
			t.Fatalf("AddComment: %v", err)
		}
	}

	stored, err := store.GetPost(ctx, post.ID)
	if err != nil {
		t.Fatalf("GetPost: %v", err)
	}
	if stored.CommentCount != 3 {
		t.Errorf("CommentCount = %d, want 3", stored.CommentCount)
	}
}

func TestCommentOnDeletedPost(t *testing.T) {
	store, _ := openTestStore(t)
	_, member, _, category := seedBoard(t, store)
	ctx := context.Background()

	post, err := store.CreatePost(ctx, member, board.PostDraft{CategoryID: category.ID, Title: "t", Body: "b"})
	if err != nil {
		t.Fatalf("CreatePost: %v", err)
	}
	if err := store.DeletePost(ctx, member, post.ID); err != nil {
		t.Fatalf("DeletePost: %v", err)
	}

	if _, err := store.AddComment(ctx, member, post.ID, "late"); !errors.Is(err, boardstore.ErrNotFound) {
		t.Errorf("comment on deleted post: got %v, want ErrNotFound", err)
	}
}

func TestDeleteCommentOwnership(t *testing.T) {
	store, _ := openTestStore(t)
	admin, member, _, category := seedBoard(t, store)
	ctx := context.Background()

	other, err := store.CreateUser(ctx, "bob", "", "builder", board.RoleMember)
	if err != nil {
		t.Fatalf("create bob: %v", err)
	}
	post, err := store.CreatePost(ctx, member, board.PostDraft{CategoryID: category.ID, Title: "t", Body: "b"})
	if err != nil {
		t.Fatalf("CreatePost: %v", err)
	}
	comment, err := store.AddComment(ctx, member, post.ID, "mine")
	if err != nil {
		t.Fatalf("AddComment: %v", err)
	}

	if err := store.DeleteComment(ctx, other, comment.ID); !errors.Is(err, boardstore.ErrForbidden) {
		t.Errorf("non-owner DeleteComment: got %v, want ErrForbidden", err)
	}
	if err := store.DeleteComment(ctx, admin, comment.ID); err != nil {
		t.Errorf("admin DeleteComment: %v", err)
	}
}

func TestUpdateCommentOwnership(t *testing.T) {
	store, _ := openTestStore(t)
	admin, member, guest, category := seedBoard(t, store)
	ctx := context.Background()

	other, err := store.CreateUser(ctx, "bob", "", "builder", board.RoleMember)
	if err != nil {
		t.Fatalf("create bob: %v", err)
	}
	post, err := store.CreatePost(ctx, member, board.PostDraft{CategoryID: category.ID, Title: "t", Body: "b"})
	if err != nil {
		t.Fatalf("CreatePost: %v", err)
	}
	comment, err := store.AddComment(ctx, member, post.ID, "처음 내용")
	if err != nil {
		t.Fatalf("AddComment: %v", err)
	}

	if err := store.UpdateComment(ctx, other, comment.ID, "남의 글 수정"); !errors.Is(err, boardstore.ErrForbidden) {
		t.Errorf("non-owner UpdateComment: got %v, want ErrForbidden", err)
	}
	if err := store.UpdateComment(ctx, guest, comment.ID, "손님 수정"); !errors.Is(err, boardstore.ErrForbidden) {
		t.Errorf("guest UpdateComment: got %v, want ErrForbidden", err)
	}
	if err := store.UpdateComment(ctx, member, comment.ID, "고친 내용"); err != nil {
		t.Fatalf("owner UpdateComment: %v", err)
	}
	if err := store.UpdateComment(ctx, admin, comment.ID, "운영자 수정"); err != nil {
		t.Fatalf("admin UpdateComment: %v", err)
	}

	comments, err := store.ListComments(ctx, post.ID)
	if err != nil {
		t.Fatalf("ListComments: %v", err)
	}
	if len(comments) != 1 || comments[0].Body != "운영자 수정" {
		t.Errorf("comments after updates: %+v", comments)
	}

	if err := store.UpdateComment(ctx, member, comment.ID+99, "없는 댓글"); !errors.Is(err, boardstore.ErrNotFound) {
		t.Errorf("missing comment UpdateComment: got %v, want ErrNotFound", err)
	}
}

func TestToggleBookmark(t *testing.T) {
	store, _ := openTestStore(t)
	_, member, _, category := seedBoard(t, store)
	ctx := context.Background()

	post, err := store.CreatePost(ctx, member, board.PostDraft{CategoryID: category.ID, Title: "t", Body: "b"})
	if err != nil {
		t.Fatalf("CreatePost: %v", err)
	}

	on, err := store.ToggleBookmark(ctx, member, post.ID)
	if err != nil {
		t.Fatalf("first toggle: %v", err)
	}
	if !on {
		t.Error("first toggle should bookmark")
	}

	off, err := store.ToggleBookmark(ctx, member, post.ID)
	if err != nil {
		t.Fatalf("second toggle: %v", err)
	}
	if off {
		t.Error("second toggle should unbookmark")
	}

	if _, err := store.ToggleBookmark(ctx, member, 9999); !errors.Is(err, boardstore.ErrNotFound) {
		t.Errorf("toggle on missing post: got %v, want ErrNotFound", err)
	}
}

func TestAllTagsListingOrder(t *testing.T) {
	store, _ := openTestStore(t)
	_, member, _, category := seedBoard(t, store)
	ctx := context.Background()

	mustPost := func(tags ...string) {
		t.Helper()
		if _, err := store.CreatePost(ctx, member, board.PostDraft{
			CategoryID: category.ID, Title: "t", Body: "b", Tags: tags,
		}); err != nil {
			t.Fatalf("CreatePost: %v", err)
		}
	}
	mustPost("old", "shared")
	mustPost("new", "shared")

	tags, err := store.AllTags(ctx)
	if err != nil {
		t.Fatalf("AllTags: %v", err)
	}
	// Newest post's tags first; "shared" appears once, at its first
	// (newest) occurrence.
	want := []string{"new", "shared", "old"}
	if len(tags) != len(want) {
		t.Fatalf("AllTags = %v, want %v", tags, want)
	}
	for i := range want {
		if tags[i] != want[i] {
			t.Errorf("AllTags[%d] = %q, want %q", i, tags[i], want[i])
		}
	}
}

func TestRemoveCategoryWithPosts(t *testing.T) {
	store, _ := openTestStore(t)
	admin, member, _, category := seedBoard(t, store)
	ctx := context.Background()

	if _, err := store.CreatePost(ctx, member, board.PostDraft{CategoryID: category.ID, Title: "t", Body: "b"}); err != nil {
		t.Fatalf("CreatePost: %v", err)
	}

	if err := store.RemoveCategory(ctx, admin, "free"); !errors.Is(err, boardstore.ErrConflict) {
		t.Errorf("remove non-empty category: got %v, want ErrConflict", err)
	}
}

func TestImportCategoriesUpserts(t *testing.T) {
	store, _ := openTestStore(t)
	admin, _, _, _ := seedBoard(t, store)
	ctx := context.Background()

	err := store.ImportCategories(ctx, admin, []board.Category{
		{Slug: "free", Name: "자유(개편)", Position: 5},
		{Slug: "qna", Name: "질문답변", Position: 1},
	})
	if err != nil {
		t.Fatalf("ImportCategories: %v", err)
	}

	categories, err := store.ListCategories(ctx)
	if err != nil {
		t.Fatalf("ListCategories: %v", err)
	}
	if len(categories) != 2 {
		t.Fatalf("got %d categories, want 2", len(categories))
	}
	// Position ordering: qna (1) before free (5).
	if categories[0].Slug != "qna" || categories[1].Slug != "free" {
		t.Errorf("order = [%s %s], want [qna free]", categories[0].Slug, categories[1].Slug)
	}
	if categories[1].Name != "자유(개편)" {
		t.Errorf("upsert did not rename: %q", categories[1].Name)
	}
}
