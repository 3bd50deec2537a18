// Copyright 2026 The Telboard Authors
// SPDX-License-Identifier: Apache-2.0

package board

import (
	"reflect"
	"strings"
	"testing"
)

func TestParseTags(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{"", nil},
		{"   ", nil},
		{",,,", nil},
		{"retro", []string{"retro"}},
		{"retro, modem", []string{"retro", "modem"}},
		{"  retro ,modem  ,  bbs ", []string{"retro", "modem", "bbs"}},
		// Duplicates survive in input order.
		{"a, b, ,a", []string{"a", "b", "a"}},
		{"한글, 태그", []string{"한글", "태그"}},
	}

	for _, tt := range tests {
		got := ParseTags(tt.input)
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("ParseTags(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestJoinTags(t *testing.T) {
	joined := JoinTags([]string{"retro", "modem"})
	if joined != "retro, modem" {
		t.Errorf("JoinTags = %q, want %q", joined, "retro, modem")
	}

	// Parsing the joined form gives back the original list.
	if got := ParseTags(joined); !reflect.DeepEqual(got, []string{"retro", "modem"}) {
		t.Errorf("ParseTags(JoinTags(...)) = %v", got)
	}
}

func TestUserName(t *testing.T) {
	named := User{Username: "sysop", DisplayName: "시삽"}
	if named.Name() != "시삽" {
		t.Errorf("Name() = %q, want display name", named.Name())
	}

	unnamed := User{Username: "sysop"}
	if unnamed.Name() != "sysop" {
		t.Errorf("Name() = %q, want username fallback", unnamed.Name())
	}
}

func TestUserRolePredicates(t *testing.T) {
	if !(User{Role: RoleGuest}).IsGuest() {
		t.Error("guest should be guest")
	}
	if (User{Role: RoleMember}).IsGuest() {
		t.Error("member should not be guest")
	}
	if !(User{Role: RoleAdmin}).IsAdmin() {
		t.Error("admin should be admin")
	}
	if (User{Role: RoleMember}).IsAdmin() {
		t.Error("member should not be admin")
	}
}

func TestUserValidate(t *testing.T) {
	tests := []struct {
		name    string
		user    User
		wantErr bool
	}{
		{"valid member", User{Username: "alice", Role: RoleMember}, false},
		{"valid guest", User{Username: "guest", Role: RoleGuest}, false},
		{"missing username", User{Role: RoleMember}, true},
		{"missing role", User{Username: "alice"}, true},
		{"unknown role", User{Username: "alice", Role: "superuser"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.user.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestCategoryValidate(t *testing.T) {
	tests := []struct {
		name     string
		category Category
		wantErr  bool
	}{
		{"valid", Category{Slug: "free", Name: "자유게시판"}, false},
		{"missing slug", Category{Name: "자유게시판"}, true},
		{"slug with space", Category{Slug: "free board", Name: "x"}, true},
		{"missing name", Category{Slug: "free"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.category.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestPostHasTag(t *testing.T) {
	post := Post{Tags: []string{"retro", "Modem"}}

	if !post.HasTag("retro") {
		t.Error("expected HasTag(retro) = true")
	}
	// Matching is case-sensitive.
	if post.HasTag("modem") {
		t.Error("expected HasTag(modem) = false for tag \"Modem\"")
	}
	if post.HasTag("absent") {
		t.Error("expected HasTag(absent) = false")
	}
}

func TestCommentValidate(t *testing.T) {
	valid := Comment{PostID: 1, Body: "first!"}
	if err := valid.Validate(); err != nil {
		t.Errorf("valid comment rejected: %v", err)
	}

	if err := (Comment{Body: "no post"}).Validate(); err == nil {
		t.Error("comment without post id accepted")
	}
	if err := (Comment{PostID: 1, Body: "   "}).Validate(); err == nil {
		t.Error("blank comment body accepted")
	}
}

func TestPostDraftValidate(t *testing.T) {
	valid := PostDraft{CategoryID: 1, Title: "hello", Body: "world"}
	if err := valid.Validate(); err != nil {
		t.Errorf("valid draft rejected: %v", err)
	}

	tests := []struct {
		name  string
		draft PostDraft
	}{
		{"missing category", PostDraft{Title: "t", Body: "b"}},
		{"blank title", PostDraft{CategoryID: 1, Title: "  ", Body: "b"}},
		{"blank body", PostDraft{CategoryID: 1, Title: "t", Body: "\n\t"}},
		{"title too long", PostDraft{CategoryID: 1, Title: strings.Repeat("가", MaxTitleLength+1), Body: "b"}},
		{"too many tags", PostDraft{CategoryID: 1, Title: "t", Body: "b", Tags: make([]string, MaxTagsPerPost+1)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.draft.Validate(); err == nil {
				t.Error("invalid draft accepted")
			}
		})
	}
}

func TestMaxTitleLengthCountsRunes(t *testing.T) {
	// A title of exactly MaxTitleLength multibyte runes is accepted;
	// byte length must not matter.
	draft := PostDraft{
		CategoryID: 1,
		Title:      strings.Repeat("가", MaxTitleLength),
		Body:       "b",
	}
	if err := draft.Validate(); err != nil {
		t.Errorf("rune-length title rejected: %v", err)
	}
}
