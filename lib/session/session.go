// Copyright 2026 The Telboard Authors
// SPDX-License-Identifier: Apache-2.0

// Package session tracks who is signed in to a running client and
// coordinates forced sign-out.
//
// In-process state changes are pushed to subscribers: the terminal UI
// subscribes once and receives an event the moment an admin forces a
// logout, instead of discovering it on a timer. The flag file (see
// [Flag] and [Watcher]) covers the cross-process case: an admin
// command raises the flag on disk, and every running client's watcher
// notices within its poll interval, signs the session out, and clears
// the flag.
package session

import (
	"errors"
	"fmt"
	"sync"

	"github.com/telboard/telboard/lib/schema/board"
)

// Errors returned by session checks.
var (
	// ErrSignedOut: no user is signed in.
	ErrSignedOut = errors.New("signed out")

	// ErrReadOnly: the signed-in user is a guest and may not mutate.
	ErrReadOnly = errors.New("read-only session")
)

// Event describes a session state change delivered to subscribers.
type Event int

const (
	// EventSignedIn: a user signed in.
	EventSignedIn Event = iota

	// EventSignedOut: the user signed out normally.
	EventSignedOut

	// EventForcedOut: the session was terminated by an admin. The UI
	// shows a notice on the login screen for this one.
	EventForcedOut
)

// String returns the event name.
func (e Event) String() string {
	switch e {
	case EventSignedIn:
		return "signed-in"
	case EventSignedOut:
		return "signed-out"
	case EventForcedOut:
		return "forced-out"
	default:
		return fmt.Sprintf("event(%d)", int(e))
	}
}

// Session is the client's login state. Safe for concurrent use.
type Session struct {
	mu          sync.Mutex
	user        board.User
	signedIn    bool
	subscribers []chan Event
	signInHooks []func()
}

// New returns a signed-out session.
func New() *Session {
	return &Session{}
}

// SignIn records the user as signed in, notifies subscribers, and
// runs the sign-in hooks. By the time SignIn returns the hooks have
// completed, so a hook that clears the force-logout flag wins any
// race with the next watcher poll.
func (s *Session) SignIn(user board.User) {
	s.mu.Lock()
	s.user = user
	s.signedIn = true
	s.notifyLocked(EventSignedIn)
	hooks := make([]func(), len(s.signInHooks))
	copy(hooks, s.signInHooks)
	s.mu.Unlock()

	for _, hook := range hooks {
		hook()
	}
}

// OnSignIn registers a hook invoked synchronously from every
// subsequent SignIn.
func (s *Session) OnSignIn(hook func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.signInHooks = append(s.signInHooks, hook)
}

// SignOut clears the session and notifies subscribers. No-op when
// already signed out.
func (s *Session) SignOut() {
	s.endSession(EventSignedOut)
}

// ForceOut clears the session on an admin's order and notifies
// subscribers with EventForcedOut. No-op when already signed out.
func (s *Session) ForceOut() {
	s.endSession(EventForcedOut)
}

func (s *Session) endSession(event Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.signedIn {
		return
	}
	s.user = board.User{}
	s.signedIn = false
	s.notifyLocked(event)
}

// Current returns the signed-in user, or false when signed out.
func (s *Session) Current() (board.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user, s.signedIn
}

// AssertCanMutate is the client-side policy gate called at every
// mutating entry point before the store is even asked: signed-out
// sessions and guests are refused. The store re-checks the same
// policy on its side.
func (s *Session) AssertCanMutate() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.signedIn {
		return ErrSignedOut
	}
	if s.user.IsGuest() {
		return fmt.Errorf("guests may not do that: %w", ErrReadOnly)
	}
	return nil
}

// Subscribe returns a channel receiving session events. The channel
// is buffered; a subscriber that stops draining loses events rather
// than blocking sign-out.
func (s *Session) Subscribe() <-chan Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	channel := make(chan Event, 8)
	s.subscribers = append(s.subscribers, channel)
	return channel
}

func (s *Session) notifyLocked(event Event) {
	for _, subscriber := range s.subscribers {
		select {
		case subscriber <- event:
		default:
		}
	}
}
