// Copyright 2026 The Telboard Authors
// SPDX-License-Identifier: Apache-2.0

package boardstore

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"github.com/telboard/telboard/lib/schema/board"
)

// GuestUsername is the reserved login ID for the read-only guest
// account.
const GuestUsername = "guest"

// dummyPasswordHash is a syntactically valid bcrypt hash compared
// against when the username does not exist, so unknown-user and
// wrong-password failures take the same time.
const dummyPasswordHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

// CreateUser registers a new account. The password is hashed with
// bcrypt before storage; it must be non-empty for every role except
// guest, which never has a password. Returns ErrConflict when the
// username is already taken.
func (s *Store) CreateUser(ctx context.Context, username, displayName, password string, role board.Role) (board.User, error) {
	user := board.User{
		Username:    strings.TrimSpace(username),
		DisplayName: strings.TrimSpace(displayName),
		Role:        role,
		Active:      true,
		CreatedAt:   s.clock.Now(),
	}
	if err := user.Validate(); err != nil {
		return board.User{}, err
	}

	var passwordHash any
	if role == board.RoleGuest {
		if password != "" {
			return board.User{}, fmt.Errorf("board store: guest accounts have no password")
		}
	} else {
		if password == "" {
			return board.User{}, fmt.Errorf("board store: password is required for role %s", role)
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return board.User{}, fmt.Errorf("board store: hashing password: %w", err)
		}
		passwordHash = string(hash)
	}

	conn, err := s.pool.Take(ctx)
	if err != nil {
		return board.User{}, fmt.Errorf("board store: create user: %w", err)
	}
	defer s.pool.Put(conn)

	err = sqlitex.Execute(conn, `INSERT INTO users
		(username, display_name, role, password_hash, active, created_at)
		VALUES (?, ?, ?, ?, 1, ?)`, &sqlitex.ExecOptions{
		Args: []any{user.Username, user.DisplayName, string(user.Role), passwordHash, user.CreatedAt.Unix()},
	})
	if err != nil {
		if sqlite.ErrCode(err) == sqlite.ResultConstraintUnique {
			return board.User{}, fmt.Errorf("board store: username %q is taken: %w", user.Username, ErrConflict)
		}
		return board.User{}, fmt.Errorf("board store: create user: %w", err)
	}

	user.ID = conn.LastInsertRowID()
	s.logger.Info("user created", "username", user.Username, "role", user.Role)
	return user, nil
}

// Authenticate verifies a username and password and returns the
// account. Unknown usernames and wrong passwords both return
// ErrInvalidCredentials; deactivated accounts return
// ErrAccountDisabled. Guest sign-in does not go through here — see
// AuthenticateGuest.
func (s *Store) Authenticate(ctx context.Context, username, password string) (board.User, error) {
	conn, err := s.pool.Take(ctx)
	if err != nil {
		return board.User{}, fmt.Errorf("board store: authenticate: %w", err)
	}
	defer s.pool.Put(conn)

	user, passwordHash, err := lookupUser(conn, username)
	if err != nil {
		return board.User{}, err
	}
	if user.ID == 0 || passwordHash == "" {
		// Equalize timing between unknown-user and wrong-password by
		// running bcrypt either way.
		bcrypt.CompareHashAndPassword([]byte(dummyPasswordHash), []byte(password))
		return board.User{}, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(passwordHash), []byte(password)); err != nil {
		return board.User{}, ErrInvalidCredentials
	}
	if !user.Active {
		return board.User{}, ErrAccountDisabled
	}

	return user, nil
}

// AuthenticateGuest signs in the shared read-only guest account. No
// password is involved. Returns ErrInvalidCredentials when no guest
// account exists and ErrAccountDisabled when it has been deactivated.
func (s *Store) AuthenticateGuest(ctx context.Context) (board.User, error) {
	conn, err := s.pool.Take(ctx)
	if err != nil {
		return board.User{}, fmt.Errorf("board store: authenticate guest: %w", err)
	}
	defer s.pool.Put(conn)

	user, _, err := lookupUser(conn, GuestUsername)
	if err != nil {
		return board.User{}, err
	}
	if user.ID == 0 || user.Role != board.RoleGuest {
		return board.User{}, ErrInvalidCredentials
	}
	if !user.Active {
		return board.User{}, ErrAccountDisabled
	}

	return user, nil
}

// EnsureGuest creates the guest account if it does not already exist.
// Idempotent; called during startup when guest access is enabled.
func (s *Store) EnsureGuest(ctx context.Context) (board.User, error) {
	existing, err := s.GetUser(ctx, GuestUsername)
	if err == nil {
		return existing, nil
	}
	if !isNotFound(err) {
		return board.User{}, err
	}
	return s.CreateUser(ctx, GuestUsername, "손님", "", board.RoleGuest)
}

// GetUser fetches an account by username.
func (s *Store) GetUser(ctx context.Context, username string) (board.User, error) {
	conn, err := s.pool.Take(ctx)
	if err != nil {
		return board.User{}, fmt.Errorf("board store: get user: %w", err)
	}
	defer s.pool.Put(conn)

	user, _, err := lookupUser(conn, username)
	if err != nil {
		return board.User{}, err
	}
	if user.ID == 0 {
		return board.User{}, fmt.Errorf("board store: user %q: %w", username, ErrNotFound)
	}
	return user, nil
}

// ListUsers returns every account ordered by username.
func (s *Store) ListUsers(ctx context.Context) ([]board.User, error) {
	conn, err := s.pool.Take(ctx)
	if err != nil {
		return nil, fmt.Errorf("board store: list users: %w", err)
	}
	defer s.pool.Put(conn)

	var users []board.User
	err = sqlitex.Execute(conn, `SELECT id, username, display_name, role, active, created_at
		FROM users ORDER BY username`, &sqlitex.ExecOptions{
		ResultFunc: func(stmt *sqlite.Stmt) error {
			users = append(users, readUser(stmt))
			return nil
		},
	})
	if err != nil {
		return nil, fmt.Errorf("board store: list users: %w", err)
	}
	return users, nil
}

// DeactivateUser disables an account. Only admins may do this, and
// not to themselves (a board should not be able to lock out its last
// admin in one keystroke). The account's posts and comments remain.
func (s *Store) DeactivateUser(ctx context.Context, actor board.User, username string) error {
	if !actor.IsAdmin() {
		return fmt.Errorf("board store: %s may not deactivate accounts: %w", actor.Username, ErrForbidden)
	}
	if actor.Username == username {
		return fmt.Errorf("board store: %s may not deactivate their own account: %w", username, ErrForbidden)
	}

	conn, err := s.pool.Take(ctx)
	if err != nil {
		return fmt.Errorf("board store: deactivate user: %w", err)
	}
	defer s.pool.Put(conn)

	err = sqlitex.Execute(conn, "UPDATE users SET active = 0 WHERE username = ?", &sqlitex.ExecOptions{
		Args: []any{username},
	})
	if err != nil {
		return fmt.Errorf("board store: deactivate user: %w", err)
	}
	if conn.Changes() == 0 {
		return fmt.Errorf("board store: user %q: %w", username, ErrNotFound)
	}

	s.logger.Info("user deactivated", "username", username, "by", actor.Username)
	return nil
}

// lookupUser reads one user row by username. Returns a zero User (ID
// 0) when the row does not exist.
func lookupUser(conn *sqlite.Conn, username string) (board.User, string, error) {
	var user board.User
	var passwordHash string
	err := sqlitex.Execute(conn, `SELECT id, username, display_name, role, active, created_at, password_hash
		FROM users WHERE username = ?`, &sqlitex.ExecOptions{
		Args: []any{username},
		ResultFunc: func(stmt *sqlite.Stmt) error {
			user = readUser(stmt)
			passwordHash = stmt.ColumnText(6)
			return nil
		},
	})
	if err != nil {
		return board.User{}, "", fmt.Errorf("board store: lookup user: %w", err)
	}
	return user, passwordHash, nil
}

// readUser decodes the common user columns: id, username,
// display_name, role, active, created_at in that order.
func readUser(stmt *sqlite.Stmt) board.User {
	return board.User{
		ID:          stmt.ColumnInt64(0),
		Username:    stmt.ColumnText(1),
		DisplayName: stmt.ColumnText(2),
		Role:        board.Role(stmt.ColumnText(3)),
		Active:      stmt.ColumnInt(4) != 0,
		CreatedAt:   time.Unix(stmt.ColumnInt64(5), 0).UTC(),
	}
}
