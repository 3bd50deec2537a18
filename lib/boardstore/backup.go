// Copyright 2026 The Telboard Authors
// SPDX-License-Identifier: Apache-2.0

package boardstore

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"time"

	"filippo.io/age"
	"github.com/zeebo/blake3"
	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"github.com/telboard/telboard/lib/codec"
	"github.com/telboard/telboard/lib/schema/board"
)

// Backup container format:
//
//	[Magic: 4 bytes "TBKP"] [Version: 1 byte (0x01)]
//	[Flags: 1 byte] [Compression: 1 byte]
//	[Uncompressed size: 8 bytes big-endian]
//	[Digest: 32 bytes keyed BLAKE3 of the uncompressed snapshot CBOR]
//	[Payload: compressed snapshot, age-encrypted when flag bit 0 set]
//
// The header stays plaintext so Inspect can report what a container
// is without the passphrase. The digest covers the uncompressed
// snapshot bytes, so it survives recompression and catches corruption
// in the payload, the compressor, and the cipher alike.

// backupMagic identifies a Telboard backup container.
var backupMagic = [4]byte{'T', 'B', 'K', 'P'}

// BackupVersion is the container format version byte.
const BackupVersion byte = 0x01

// backupFlagEncrypted marks an age-encrypted payload.
const backupFlagEncrypted byte = 0x01

// backupHeaderSize is the fixed plaintext header length.
const backupHeaderSize = 4 + 1 + 1 + 1 + 8 + 32

// snapshotDomainKey is the BLAKE3 key for snapshot digests. The byte
// values are the ASCII encoding of the domain name, zero-padded to 32
// bytes: readable in hex dumps without sacrificing any cryptographic
// property.
var snapshotDomainKey = [32]byte{
	't', 'e', 'l', 'b', 'o', 'a', 'r', 'd', '.', 'b', 'a', 'c', 'k', 'u', 'p', '.',
	's', 'n', 'a', 'p', 's', 'h', 'o', 't', 0, 0, 0, 0, 0, 0, 0, 0,
}

// ErrBadContainer is wrapped by Restore and Inspect errors for
// malformed, truncated, or digest-mismatched containers.
var ErrBadContainer = errors.New("bad backup container")

// ErrPassphraseRequired is returned when a container is encrypted and
// no passphrase was supplied.
var ErrPassphraseRequired = errors.New("backup is encrypted, passphrase required")

// CompressionTag identifies the payload compression algorithm. These
// values are format constants — changing them breaks container
// compatibility.
type CompressionTag uint8

const (
	// CompressionNone stores the snapshot uncompressed. Chosen
	// automatically when compression would not shrink the payload.
	CompressionNone CompressionTag = 0

	// CompressionLZ4 is LZ4 block compression: fast, modest ratio.
	CompressionLZ4 CompressionTag = 1

	// CompressionZstd is zstd at the default level. Best ratio for
	// the mostly-text snapshot; the default for new backups.
	CompressionZstd CompressionTag = 2
)

// String returns the human-readable name of a compression tag.
func (tag CompressionTag) String() string {
	switch tag {
	case CompressionNone:
		return "none"
	case CompressionLZ4:
		return "lz4"
	case CompressionZstd:
		return "zstd"
	default:
		return fmt.Sprintf("unknown(%d)", tag)
	}
}

// ParseCompressionTag parses a compression tag from its string
// representation.
func ParseCompressionTag(name string) (CompressionTag, error) {
	switch name {
	case "none":
		return CompressionNone, nil
	case "lz4":
		return CompressionLZ4, nil
	case "zstd":
		return CompressionZstd, nil
	default:
		return 0, fmt.Errorf("unknown compression tag: %q", name)
	}
}

// BackupOptions control how a container is written.
type BackupOptions struct {
	// Compression selects the payload compression. Zero value is
	// CompressionNone; callers normally pass CompressionZstd.
	Compression CompressionTag

	// Passphrase enables age scrypt encryption of the payload when
	// non-empty.
	Passphrase string
}

// Snapshot is the full board state carried by a backup. Purely
// internal: cbor tags, never JSON.
type Snapshot struct {
	CreatedAt  int64            `cbor:"created_at"`
	Users      []snapshotUser   `cbor:"users"`
	Categories []board.Category `cbor:"categories"`
	Posts      []snapshotPost   `cbor:"posts"`
	Comments   []board.Comment  `cbor:"comments"`
	Bookmarks  []snapshotMark   `cbor:"bookmarks"`
}

// snapshotUser carries the password hash, which board.User
// deliberately omits. Snapshots are the one place hashes leave the
// database, which is why containers support encryption.
type snapshotUser struct {
	User         board.User `cbor:"user"`
	PasswordHash string     `cbor:"password_hash,omitempty"`
}

type snapshotPost struct {
	Post board.Post `cbor:"post"`
}

type snapshotMark struct {
	UserID    int64 `cbor:"user_id"`
	PostID    int64 `cbor:"post_id"`
	CreatedAt int64 `cbor:"created_at"`
}

// Manifest describes a container without restoring it.
type Manifest struct {
	CreatedAt   time.Time      `json:"created_at"`
	Compression CompressionTag `json:"-"`
	Encrypted   bool           `json:"encrypted"`
	Digest      string         `json:"digest"`
	Users       int            `json:"users"`
	Categories  int            `json:"categories"`
	Posts       int            `json:"posts"`
	Comments    int            `json:"comments"`
	Bookmarks   int            `json:"bookmarks"`
}

// Backup serializes the whole board into a container written to w.
// Admin only.
func (s *Store) Backup(ctx context.Context, actor board.User, w io.Writer, opts BackupOptions) error {
	if !actor.IsAdmin() {
		return fmt.Errorf("board store: %s may not take backups: %w", actor.Username, ErrForbidden)
	}

	snapshot, err := s.readSnapshot(ctx)
	if err != nil {
		return err
	}

	plaintext, err := codec.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("board store: encoding snapshot: %w", err)
	}
	digest := snapshotDigest(plaintext)

	compression := opts.Compression
	payload, err := compressSnapshot(plaintext, compression)
	if err != nil {
		return err
	}
	if len(payload) >= len(plaintext) && compression != CompressionNone {
		// Incompressible (tiny boards, mostly-binary bodies): store
		// raw rather than growing the container.
		compression = CompressionNone
		payload = plaintext
	}

	var flags byte
	if opts.Passphrase != "" {
		flags |= backupFlagEncrypted
		payload, err = encryptPayload(payload, opts.Passphrase)
		if err != nil {
			return err
		}
	}

	header := make([]byte, backupHeaderSize)
	copy(header[0:4], backupMagic[:])
	header[4] = BackupVersion
	header[5] = flags
	header[6] = byte(compression)
	binary.BigEndian.PutUint64(header[7:15], uint64(len(plaintext)))
	copy(header[15:47], digest[:])

	if _, err := w.Write(header); err != nil {
		return fmt.Errorf("board store: writing backup header: %w", err)
	}
	if _, err := w.Write(payload); err != nil {
		return fmt.Errorf("board store: writing backup payload: %w", err)
	}

	s.logger.Info("backup written",
		"by", actor.Username,
		"compression", compression.String(),
		"encrypted", flags&backupFlagEncrypted != 0,
		"snapshot_bytes", len(plaintext),
		"payload_bytes", len(payload),
	)
	return nil
}

// Restore replaces the entire board state with a container's
// snapshot. Admin only. The container is fully decoded and
// digest-verified before the first row is touched, and the swap runs
// in one transaction: a bad container leaves the board exactly as it
// was.
func (s *Store) Restore(ctx context.Context, actor board.User, r io.Reader, passphrase string) error {
	if !actor.IsAdmin() {
		return fmt.Errorf("board store: %s may not restore backups: %w", actor.Username, ErrForbidden)
	}

	snapshot, _, err := decodeContainer(r, passphrase)
	if err != nil {
		return err
	}

	conn, err := s.pool.Take(ctx)
	if err != nil {
		return fmt.Errorf("board store: restore: %w", err)
	}
	defer s.pool.Put(conn)

	endTransaction, err := sqlitex.ImmediateTransaction(conn)
	if err != nil {
		return fmt.Errorf("board store: restore: %w", err)
	}
	defer endTransaction(&err)

	// Children before parents, then rebuild parents before children.
	for _, table := range []string{"bookmarks", "comments", "post_tags", "posts", "categories", "users"} {
		if err = sqlitex.Execute(conn, "DELETE FROM "+table, nil); err != nil {
			return fmt.Errorf("board store: restore: clearing %s: %w", table, err)
		}
	}

	for _, record := range snapshot.Users {
		user := record.User
		var passwordHash any
		if record.PasswordHash != "" {
			passwordHash = record.PasswordHash
		}
		err = sqlitex.Execute(conn, `INSERT INTO users
			(id, username, display_name, role, password_hash, active, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)`, &sqlitex.ExecOptions{
			Args: []any{user.ID, user.Username, user.DisplayName, string(user.Role),
				passwordHash, boolToInt(user.Active), user.CreatedAt.Unix()},
		})
		if err != nil {
			return fmt.Errorf("board store: restore user %q: %w", user.Username, err)
		}
	}

	for _, category := range snapshot.Categories {
		err = sqlitex.Execute(conn, `INSERT INTO categories (id, slug, name, position)
			VALUES (?, ?, ?, ?)`, &sqlitex.ExecOptions{
			Args: []any{category.ID, category.Slug, category.Name, category.Position},
		})
		if err != nil {
			return fmt.Errorf("board store: restore category %q: %w", category.Slug, err)
		}
	}

	for _, record := range snapshot.Posts {
		post := record.Post
		err = sqlitex.Execute(conn, `INSERT INTO posts
			(id, category_id, author_id, title, body, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)`, &sqlitex.ExecOptions{
			Args: []any{post.ID, post.CategoryID, post.AuthorID, post.Title, post.Body,
				post.CreatedAt.Unix(), post.UpdatedAt.Unix()},
		})
		if err != nil {
			return fmt.Errorf("board store: restore post %d: %w", post.ID, err)
		}
		if err = writeTags(conn, post.ID, post.Tags); err != nil {
			return err
		}
	}

	for _, comment := range snapshot.Comments {
		err = sqlitex.Execute(conn, `INSERT INTO comments (id, post_id, author_id, body, created_at)
			VALUES (?, ?, ?, ?, ?)`, &sqlitex.ExecOptions{
			Args: []any{comment.ID, comment.PostID, comment.AuthorID, comment.Body, comment.CreatedAt.Unix()},
		})
		if err != nil {
			return fmt.Errorf("board store: restore comment %d: %w", comment.ID, err)
		}
	}

	for _, mark := range snapshot.Bookmarks {
		err = sqlitex.Execute(conn, `INSERT INTO bookmarks (user_id, post_id, created_at)
			VALUES (?, ?, ?)`, &sqlitex.ExecOptions{
			Args: []any{mark.UserID, mark.PostID, mark.CreatedAt},
		})
		if err != nil {
			return fmt.Errorf("board store: restore bookmark: %w", err)
		}
	}

	s.logger.Info("backup restored",
		"by", actor.Username,
		"users", len(snapshot.Users),
		"posts", len(snapshot.Posts),
		"comments", len(snapshot.Comments),
	)
	return nil
}

// Inspect decodes a container's manifest without touching the
// database. An empty passphrase is fine for unencrypted containers;
// encrypted ones return ErrPassphraseRequired without it.
func Inspect(r io.Reader, passphrase string) (Manifest, error) {
	snapshot, manifest, err := decodeContainer(r, passphrase)
	if err != nil {
		return Manifest{}, err
	}

	manifest.CreatedAt = time.Unix(snapshot.CreatedAt, 0).UTC()
	manifest.Users = len(snapshot.Users)
	manifest.Categories = len(snapshot.Categories)
	manifest.Posts = len(snapshot.Posts)
	manifest.Comments = len(snapshot.Comments)
	manifest.Bookmarks = len(snapshot.Bookmarks)
	return manifest, nil
}

// readSnapshot loads the full board state in one transaction so the
// snapshot is internally consistent.
func (s *Store) readSnapshot(ctx context.Context) (Snapshot, error) {
	conn, err := s.pool.Take(ctx)
	if err != nil {
		return Snapshot{}, fmt.Errorf("board store: snapshot: %w", err)
	}
	defer s.pool.Put(conn)

	endTransaction, err := sqlitex.ImmediateTransaction(conn)
	if err != nil {
		return Snapshot{}, fmt.Errorf("board store: snapshot: %w", err)
	}
	defer endTransaction(&err)

	snapshot := Snapshot{CreatedAt: s.clock.Now().Unix()}

	err = sqlitex.Execute(conn, `SELECT id, username, display_name, role, active, created_at, password_hash
		FROM users ORDER BY id`, &sqlitex.ExecOptions{
		ResultFunc: func(stmt *sqlite.Stmt) error {
			snapshot.Users = append(snapshot.Users, snapshotUser{
				User:         readUser(stmt),
				PasswordHash: stmt.ColumnText(6),
			})
			return nil
		},
	})
	if err != nil {
		return Snapshot{}, fmt.Errorf("board store: snapshot users: %w", err)
	}

	err = sqlitex.Execute(conn, "SELECT id, slug, name, position FROM categories ORDER BY id", &sqlitex.ExecOptions{
		ResultFunc: func(stmt *sqlite.Stmt) error {
			snapshot.Categories = append(snapshot.Categories, board.Category{
				ID:       stmt.ColumnInt64(0),
				Slug:     stmt.ColumnText(1),
				Name:     stmt.ColumnText(2),
				Position: stmt.ColumnInt(3),
			})
			return nil
		},
	})
	if err != nil {
		return Snapshot{}, fmt.Errorf("board store: snapshot categories: %w", err)
	}

	index := make(map[int64]int)
	err = sqlitex.Execute(conn, postSelect+" ORDER BY p.id", &sqlitex.ExecOptions{
		ResultFunc: func(stmt *sqlite.Stmt) error {
			post := readPost(stmt)
			index[post.ID] = len(snapshot.Posts)
			snapshot.Posts = append(snapshot.Posts, snapshotPost{Post: post})
			return nil
		},
	})
	if err != nil {
		return Snapshot{}, fmt.Errorf("board store: snapshot posts: %w", err)
	}
	err = sqlitex.Execute(conn, "SELECT post_id, tag FROM post_tags ORDER BY post_id, position", &sqlitex.ExecOptions{
		ResultFunc: func(stmt *sqlite.Stmt) error {
			if i, ok := index[stmt.ColumnInt64(0)]; ok {
				snapshot.Posts[i].Post.Tags = append(snapshot.Posts[i].Post.Tags, stmt.ColumnText(1))
			}
			return nil
		},
	})
	if err != nil {
		return Snapshot{}, fmt.Errorf("board store: snapshot tags: %w", err)
	}

	err = sqlitex.Execute(conn, `SELECT id, post_id, author_id, body, created_at
		FROM comments ORDER BY id`, &sqlitex.ExecOptions{
		ResultFunc: func(stmt *sqlite.Stmt) error {
			snapshot.Comments = append(snapshot.Comments, board.Comment{
				ID:        stmt.ColumnInt64(0),
				PostID:    stmt.ColumnInt64(1),
				AuthorID:  stmt.ColumnInt64(2),
				Body:      stmt.ColumnText(3),
				CreatedAt: time.Unix(stmt.ColumnInt64(4), 0).UTC(),
			})
			return nil
		},
	})
	if err != nil {
		return Snapshot{}, fmt.Errorf("board store: snapshot comments: %w", err)
	}

	err = sqlitex.Execute(conn, "SELECT user_id, post_id, created_at FROM bookmarks ORDER BY user_id, post_id", &sqlitex.ExecOptions{
		ResultFunc: func(stmt *sqlite.Stmt) error {
			snapshot.Bookmarks = append(snapshot.Bookmarks, snapshotMark{
				UserID:    stmt.ColumnInt64(0),
				PostID:    stmt.ColumnInt64(1),
				CreatedAt: stmt.ColumnInt64(2),
			})
			return nil
		},
	})
	if err != nil {
		return Snapshot{}, fmt.Errorf("board store: snapshot bookmarks: %w", err)
	}

	return snapshot, nil
}

// decodeContainer reads and verifies a container: header, optional
// decryption, decompression, digest check, CBOR decode.
func decodeContainer(r io.Reader, passphrase string) (Snapshot, Manifest, error) {
	plaintext, manifest, err := containerPlaintext(r, passphrase)
	if err != nil {
		return Snapshot{}, Manifest{}, err
	}

	var snapshot Snapshot
	if err := codec.Unmarshal(plaintext, &snapshot); err != nil {
		return Snapshot{}, Manifest{}, fmt.Errorf("board store: decoding snapshot: %w", err)
	}
	return snapshot, manifest, nil
}

// containerPlaintext verifies the header, decrypts and decompresses
// the payload, and checks the digest, returning the raw CBOR
// snapshot bytes.
func containerPlaintext(r io.Reader, passphrase string) ([]byte, Manifest, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, Manifest{}, fmt.Errorf("board store: reading backup: %w", err)
	}
	if len(raw) < backupHeaderSize {
		return nil, Manifest{}, fmt.Errorf("board store: %d bytes is shorter than the header: %w", len(raw), ErrBadContainer)
	}
	if !bytes.Equal(raw[0:4], backupMagic[:]) {
		return nil, Manifest{}, fmt.Errorf("board store: not a backup container: %w", ErrBadContainer)
	}
	if raw[4] != BackupVersion {
		return nil, Manifest{}, fmt.Errorf("board store: container version %d is not supported: %w", raw[4], ErrBadContainer)
	}

	flags := raw[5]
	compression := CompressionTag(raw[6])
	uncompressedSize := binary.BigEndian.Uint64(raw[7:15])
	var wantDigest [32]byte
	copy(wantDigest[:], raw[15:47])
	payload := raw[backupHeaderSize:]

	encrypted := flags&backupFlagEncrypted != 0
	if encrypted {
		if passphrase == "" {
			return nil, Manifest{}, ErrPassphraseRequired
		}
		payload, err = decryptPayload(payload, passphrase)
		if err != nil {
			return nil, Manifest{}, err
		}
	}

	plaintext, err := decompressSnapshot(payload, compression, int(uncompressedSize))
	if err != nil {
		return nil, Manifest{}, err
	}

	digest := snapshotDigest(plaintext)
	if digest != wantDigest {
		return nil, Manifest{}, fmt.Errorf("board store: snapshot digest mismatch: %w", ErrBadContainer)
	}

	manifest := Manifest{
		Compression: compression,
		Encrypted:   encrypted,
		Digest:      hex.EncodeToString(digest[:]),
	}
	return plaintext, manifest, nil
}

// Diagnose renders a container's snapshot in CBOR diagnostic
// notation, for debugging a backup without restoring it. The same
// passphrase rules as Inspect apply.
func Diagnose(r io.Reader, passphrase string) (string, error) {
	plaintext, _, err := containerPlaintext(r, passphrase)
	if err != nil {
		return "", err
	}
	return codec.Diagnose(plaintext)
}

// snapshotDigest computes the keyed BLAKE3 digest of uncompressed
// snapshot bytes.
func snapshotDigest(data []byte) [32]byte {
	hasher, err := blake3.NewKeyed(snapshotDomainKey[:])
	if err != nil {
		panic("board store: BLAKE3 keyed hash initialization failed: " + err.Error())
	}
	hasher.Write(data)
	var digest [32]byte
	copy(digest[:], hasher.Sum(nil))
	return digest
}

// encryptPayload wraps the payload with age scrypt encryption.
func encryptPayload(payload []byte, passphrase string) ([]byte, error) {
	recipient, err := age.NewScryptRecipient(passphrase)
	if err != nil {
		return nil, fmt.Errorf("board store: age recipient: %w", err)
	}

	var buffer bytes.Buffer
	w, err := age.Encrypt(&buffer, recipient)
	if err != nil {
		return nil, fmt.Errorf("board store: age encrypt: %w", err)
	}
	if _, err := w.Write(payload); err != nil {
		return nil, fmt.Errorf("board store: age encrypt: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("board store: age encrypt: %w", err)
	}
	return buffer.Bytes(), nil
}

// decryptPayload unwraps an age-encrypted payload.
func decryptPayload(payload []byte, passphrase string) ([]byte, error) {
	identity, err := age.NewScryptIdentity(passphrase)
	if err != nil {
		return nil, fmt.Errorf("board store: age identity: %w", err)
	}

	r, err := age.Decrypt(bytes.NewReader(payload), identity)
	if err != nil {
		return nil, fmt.Errorf("board store: age decrypt (wrong passphrase?): %w", err)
	}
	plaintext, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("board store: age decrypt: %w", err)
	}
	return plaintext, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
