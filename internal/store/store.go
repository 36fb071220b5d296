// Package store persists users, groups and messages in SQLite.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	_ "modernc.org/sqlite"
)

var (
	ErrInvalidCredentials = errors.New("store: invalid credentials")
	ErrUsernameTaken      = errors.New("store: username already taken")
	ErrGroupNameTaken     = errors.New("store: group name already taken")
	ErrNotFound           = errors.New("store: not found")
)

// Message types accepted by SaveMessage.
const (
	TypeBroadcast = "broadcast"
	TypeGroup     = "group"
	TypePrivate   = "private"
)

type User struct {
	ID       int64
	Username string
	Email    string
}

type Group struct {
	ID          int64
	Name        string
	Description string
	CreatedBy   int64
}

// Message is a row to persist. GroupID is set for group messages,
// ReceiverID for private ones, neither for broadcasts.
type Message struct {
	SenderID   int64
	ReceiverID int64
	GroupID    int64
	Content    string
	Type       string
}

// HistoryRow is the shape served by the history endpoints.
type HistoryRow struct {
	SenderName string `json:"sender_name"`
	Content    string `json:"message_content"`
}

type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the SQLite database at path and
// ensures the schema.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("store: path is required")
	}
	dsn := path + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: apply schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// CreateUser registers a user with a bcrypt password hash.
func (s *Store) CreateUser(ctx context.Context, username, password, email string) (int64, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return 0, fmt.Errorf("store: username and password are required")
	}
	var exists int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM users WHERE username = ?`, username).Scan(&exists)
	if err != nil {
		return 0, fmt.Errorf("store: check username: %w", err)
	}
	if exists > 0 {
		return 0, ErrUsernameTaken
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return 0, fmt.Errorf("store: hash password: %w", err)
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO users (username, password_hash, email) VALUES (?, ?, ?)`,
		username, string(hash), email)
	if err != nil {
		return 0, fmt.Errorf("store: create user: %w", err)
	}
	return res.LastInsertId()
}

// Authenticate checks a username/password pair.
func (s *Store) Authenticate(ctx context.Context, username, password string) (User, error) {
	var u User
	var hash string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, username, COALESCE(email, ''), password_hash FROM users WHERE username = ?`,
		username).Scan(&u.ID, &u.Username, &u.Email, &hash)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrInvalidCredentials
	}
	if err != nil {
		return User{}, fmt.Errorf("store: authenticate: %w", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) != nil {
		return User{}, ErrInvalidCredentials
	}
	return u, nil
}

// UserByID fetches one user.
func (s *Store) UserByID(ctx context.Context, id int64) (User, error) {
	var u User
	err := s.db.QueryRowContext(ctx,
		`SELECT id, username, COALESCE(email, '') FROM users WHERE id = ?`, id).
		Scan(&u.ID, &u.Username, &u.Email)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrNotFound
	}
	if err != nil {
		return User{}, fmt.Errorf("store: user %d: %w", id, err)
	}
	return u, nil
}

// ListUsers returns every registered user ordered by name.
func (s *Store) ListUsers(ctx context.Context) ([]User, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, username, COALESCE(email, '') FROM users ORDER BY username`)
	if err != nil {
		return nil, fmt.Errorf("store: list users: %w", err)
	}
	defer rows.Close()
	var users []User
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.ID, &u.Username, &u.Email); err != nil {
			return nil, fmt.Errorf("store: scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// CreateGroup registers a group and enrolls its creator as owner.
func (s *Store) CreateGroup(ctx context.Context, name, description string, createdBy int64) (int64, error) {
	name = strings.TrimSpace(name)
	if len(name) < 3 {
		return 0, fmt.Errorf("store: group name must be at least 3 characters")
	}
	var exists int
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM groups WHERE group_name = ?`, name).Scan(&exists); err != nil {
		return 0, fmt.Errorf("store: check group name: %w", err)
	}
	if exists > 0 {
		return 0, ErrGroupNameTaken
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("store: begin: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO groups (group_name, description, created_by) VALUES (?, ?, ?)`,
		name, description, createdBy)
	if err != nil {
		return 0, fmt.Errorf("store: create group: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO group_members (group_id, user_id, role) VALUES (?, ?, 'owner')`,
		id, createdBy); err != nil {
		return 0, fmt.Errorf("store: enroll creator: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("store: commit: %w", err)
	}
	return id, nil
}

// ListGroups returns every group ordered by name.
func (s *Store) ListGroups(ctx context.Context) ([]Group, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, group_name, COALESCE(description, ''), created_by FROM groups ORDER BY group_name`)
	if err != nil {
		return nil, fmt.Errorf("store: list groups: %w", err)
	}
	defer rows.Close()
	var groups []Group
	for rows.Next() {
		var g Group
		if err := rows.Scan(&g.ID, &g.Name, &g.Description, &g.CreatedBy); err != nil {
			return nil, fmt.Errorf("store: scan group: %w", err)
		}
		groups = append(groups, g)
	}
	return groups, rows.Err()
}

// AddMember enrolls a user in a group; already-enrolled is a no-op.
func (s *Store) AddMember(ctx context.Context, groupID, userID int64) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO group_members (group_id, user_id) VALUES (?, ?)`,
		groupID, userID)
	if err != nil {
		return fmt.Errorf("store: add member: %w", err)
	}
	return nil
}

// IsMember reports whether the user belongs to the group.
func (s *Store) IsMember(ctx context.Context, userID, groupID int64) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM group_members WHERE group_id = ? AND user_id = ?`,
		groupID, userID).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("store: is member: %w", err)
	}
	return n > 0, nil
}

// SaveMessage persists one message and returns its id.
func (s *Store) SaveMessage(ctx context.Context, m Message) (int64, error) {
	var receiver, group any
	switch m.Type {
	case TypeBroadcast:
	case TypeGroup:
		group = m.GroupID
	case TypePrivate:
		receiver = m.ReceiverID
	default:
		return 0, fmt.Errorf("store: unknown message type %q", m.Type)
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO messages (sender_id, receiver_id, group_id, message_content, message_hash, message_type)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		m.SenderID, receiver, group, m.Content, uuid.NewString(), m.Type)
	if err != nil {
		return 0, fmt.Errorf("store: save message: %w", err)
	}
	return res.LastInsertId()
}

// BroadcastMessages returns the latest limit broadcast rows, oldest
// first.
func (s *Store) BroadcastMessages(ctx context.Context, limit int) ([]HistoryRow, error) {
	return s.history(ctx, `
		SELECT sender_name, message_content FROM (
			SELECT m.id, u.username AS sender_name, m.message_content
			FROM messages m JOIN users u ON u.id = m.sender_id
			WHERE m.message_type = 'broadcast'
			ORDER BY m.id DESC LIMIT ?
		) ORDER BY id`, limit)
}

// GroupMessages returns the latest limit rows for one group, oldest
// first.
func (s *Store) GroupMessages(ctx context.Context, groupID int64, limit int) ([]HistoryRow, error) {
	return s.history(ctx, `
		SELECT sender_name, message_content FROM (
			SELECT m.id, u.username AS sender_name, m.message_content
			FROM messages m JOIN users u ON u.id = m.sender_id
			WHERE m.message_type = 'group' AND m.group_id = ?
			ORDER BY m.id DESC LIMIT ?
		) ORDER BY id`, groupID, limit)
}

// PrivateMessages returns the latest limit rows between two users in
// either direction, oldest first.
func (s *Store) PrivateMessages(ctx context.Context, userA, userB int64, limit int) ([]HistoryRow, error) {
	return s.history(ctx, `
		SELECT sender_name, message_content FROM (
			SELECT m.id, u.username AS sender_name, m.message_content
			FROM messages m JOIN users u ON u.id = m.sender_id
			WHERE m.message_type = 'private'
			  AND ((m.sender_id = ? AND m.receiver_id = ?) OR (m.sender_id = ? AND m.receiver_id = ?))
			ORDER BY m.id DESC LIMIT ?
		) ORDER BY id`, userA, userB, userB, userA, limit)
}

func (s *Store) history(ctx context.Context, query string, args ...any) ([]HistoryRow, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("store: history: %w", err)
	}
	defer rows.Close()
	out := []HistoryRow{}
	for rows.Next() {
		var r HistoryRow
		if err := rows.Scan(&r.SenderName, &r.Content); err != nil {
			return nil, fmt.Errorf("store: scan history row: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
