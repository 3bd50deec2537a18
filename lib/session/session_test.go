// Copyright 2026 The Telboard Authors
// SPDX-License-Identifier: Apache-2.0

package session

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/telboard/telboard/lib/clock"
	"github.com/telboard/telboard/lib/schema/board"
)

func member() board.User {
	return board.User{ID: 2, Username: "alice", Role: board.RoleMember, Active: true}
}

func guest() board.User {
	return board.User{ID: 3, Username: "guest", Role: board.RoleGuest, Active: true}
}

func TestSignInSignOut(t *testing.T) {
	s := New()

	if _, signedIn := s.Current(); signedIn {
		t.Fatal("new session should be signed out")
	}

	s.SignIn(member())
	user, signedIn := s.Current()
	if !signedIn || user.Username != "alice" {
		t.Fatalf("Current = %+v, %v", user, signedIn)
	}

	s.SignOut()
	if _, signedIn := s.Current(); signedIn {
		t.Fatal("session should be signed out")
	}
}

func TestAssertCanMutate(t *testing.T) {
	s := New()

	if err := s.AssertCanMutate(); !errors.Is(err, ErrSignedOut) {
		t.Errorf("signed out: got %v, want ErrSignedOut", err)
	}

	s.SignIn(guest())
	if err := s.AssertCanMutate(); !errors.Is(err, ErrReadOnly) {
		t.Errorf("guest: got %v, want ErrReadOnly", err)
	}

	s.SignIn(member())
	if err := s.AssertCanMutate(); err != nil {
		t.Errorf("member: got %v, want nil", err)
	}
}

func TestSubscribeReceivesEvents(t *testing.T) {
	s := New()
	events := s.Subscribe()

	s.SignIn(member())
	s.SignOut()
	s.SignIn(member())
	s.ForceOut()

	want := []Event{EventSignedIn, EventSignedOut, EventSignedIn, EventForcedOut}
	for i, wantEvent := range want {
		select {
		case got := <-events:
			if got != wantEvent {
				t.Errorf("event %d = %v, want %v", i, got, wantEvent)
			}
		default:
			t.Fatalf("event %d missing", i)
		}
	}
}

func TestEndSessionIdempotent(t *testing.T) {
	s := New()
	events := s.Subscribe()

	s.SignOut()
	s.ForceOut()

	select {
	case event := <-events:
		t.Errorf("signed-out session emitted %v", event)
	default:
	}
}

func TestFlagLifecycle(t *testing.T) {
	flag := NewFlag(filepath.Join(t.TempDir(), "force-logout"))

	raised, err := flag.Raised()
	if err != nil {
		t.Fatalf("Raised: %v", err)
	}
	if raised {
		t.Fatal("flag should start cleared")
	}

	if err := flag.Raise(); err != nil {
		t.Fatalf("Raise: %v", err)
	}
	// Raising twice is fine.
	if err := flag.Raise(); err != nil {
		t.Fatalf("second Raise: %v", err)
	}

	raised, err = flag.Raised()
	if err != nil {
		t.Fatalf("Raised: %v", err)
	}
	if !raised {
		t.Fatal("flag should be raised")
	}

	if err := flag.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	// Clearing twice is fine.
	if err := flag.Clear(); err != nil {
		t.Fatalf("second Clear: %v", err)
	}

	raised, err = flag.Raised()
	if err != nil {
		t.Fatalf("Raised: %v", err)
	}
	if raised {
		t.Fatal("flag should be cleared")
	}
}

func TestWatcherForcesOutOnFlag(t *testing.T) {
	flag := NewFlag(filepath.Join(t.TempDir(), "force-logout"))
	s := New()
	s.SignIn(member())
	events := s.Subscribe()

	fake := clock.Fake(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	watcher, err := NewWatcher(WatcherConfig{
		Flag:     flag,
		Session:  s,
		Clock:    fake,
		Interval: time.Second,
	})
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go watcher.Run(ctx)

	// The flag raise happens before any teardown, so a tick after
	// this point must observe it.
	if err := flag.Raise(); err != nil {
		t.Fatalf("Raise: %v", err)
	}

	// Drive ticks until the watcher reacts. Run starts its ticker
	// asynchronously, so early Advances may find no waiter yet.
	deadline := time.After(2 * time.Second)
	for {
		fake.Advance(time.Second)
		select {
		case event := <-events:
			if event != EventForcedOut {
				t.Fatalf("event = %v, want EventForcedOut", event)
			}
			if _, signedIn := s.Current(); signedIn {
				t.Fatal("session still signed in after forced logout")
			}
			// The watcher clears the flag after acting.
			waitForClear(t, flag)
			return
		case <-deadline:
			t.Fatal("watcher never forced the session out")
		case <-time.After(10 * time.Millisecond):
			// Tick again.
		}
	}
}

func TestWatcherIgnoresFlagWhenSignedOut(t *testing.T) {
	flag := NewFlag(filepath.Join(t.TempDir(), "force-logout"))
	if err := flag.Raise(); err != nil {
		t.Fatalf("Raise: %v", err)
	}

	s := New()
	fake := clock.Fake(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	watcher, err := NewWatcher(WatcherConfig{
		Flag:    flag,
		Session: s,
		Clock:   fake,
	})
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go watcher.Run(ctx)

	for range 5 {
		fake.Advance(time.Second)
		time.Sleep(10 * time.Millisecond)
	}

	// The flag is left for clients that are still signed in.
	raised, err := flag.Raised()
	if err != nil {
		t.Fatalf("Raised: %v", err)
	}
	if !raised {
		t.Error("watcher cleared the flag despite being signed out")
	}
}

func TestSignInHookClearsStaleFlag(t *testing.T) {
	flag := NewFlag(filepath.Join(t.TempDir(), "force-logout"))
	if err := flag.Raise(); err != nil {
		t.Fatalf("Raise: %v", err)
	}

	s := New()
	s.OnSignIn(func() {
		if err := flag.Clear(); err != nil {
			t.Errorf("Clear: %v", err)
		}
	})

	fake := clock.Fake(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	watcher, err := NewWatcher(WatcherConfig{
		Flag:     flag,
		Session:  s,
		Clock:    fake,
		Interval: time.Second,
	})
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go watcher.Run(ctx)

	// A tick while everyone is signed out leaves the flag alone.
	fake.Advance(time.Second)
	time.Sleep(10 * time.Millisecond)

	// The hook runs inside SignIn, so the flag is gone before any
	// later poll can observe it.
	s.SignIn(member())
	raised, err := flag.Raised()
	if err != nil {
		t.Fatalf("Raised: %v", err)
	}
	if raised {
		t.Fatal("sign-in should clear the stale flag before returning")
	}

	events := s.Subscribe()
	for range 3 {
		fake.Advance(time.Second)
		time.Sleep(10 * time.Millisecond)
	}
	select {
	case event := <-events:
		t.Fatalf("fresh session saw %v from a stale flag", event)
	default:
	}
	if _, signedIn := s.Current(); !signedIn {
		t.Fatal("fresh sign-in was terminated by a stale flag")
	}
}

func waitForClear(t *testing.T, flag Flag) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		raised, err := flag.Raised()
		if err != nil {
			t.Fatalf("Raised: %v", err)
		}
		if !raised {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("flag never cleared")
}
