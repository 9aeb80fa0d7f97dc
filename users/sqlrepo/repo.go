package sqlrepo

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	apperrors "github.com/simaris-dev/simaris-auth/internal/errors"
	"github.com/simaris-dev/simaris-auth/users"
)

var _ users.Repo = (*Repo)(nil)

// Repo is a database/sql implementation of users.Repo. The default wiring
// uses the sqlite3 driver; the SQL is kept portable.
type Repo struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id            TEXT PRIMARY KEY,
	email         TEXT NOT NULL UNIQUE,
	name          TEXT NOT NULL,
	password_hash TEXT NOT NULL,
	roles         TEXT NOT NULL,
	created_at    TIMESTAMP NOT NULL,
	last_login_at TIMESTAMP
)`

// Open opens (or creates) the sqlite database at path and ensures the schema.
func Open(path string) (*Repo, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("[sqlrepo Open] failed to open database: %w", err)
	}
	return New(db)
}

// New wraps an existing database handle and ensures the schema.
func New(db *sql.DB) (*Repo, error) {
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("[sqlrepo New] failed to create schema: %w", err)
	}
	return &Repo{db: db}, nil
}

func (r *Repo) Close() error {
	return r.db.Close()
}

func (r *Repo) Upsert(user *users.User) error {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}
	user.Email = users.NormalizeEmail(user.Email)

	_, err := r.db.Exec(`
		INSERT INTO users (id, email, name, password_hash, roles, created_at, last_login_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(email) DO UPDATE SET
			name = excluded.name,
			password_hash = excluded.password_hash,
			roles = excluded.roles`,
		user.ID, user.Email, user.Name, user.PasswordHash,
		joinRoles(user.Roles), user.CreatedAt, nullableTime(user.LastLoginAt))
	if err != nil {
		return fmt.Errorf("[sqlrepo Upsert] failed to upsert user: %w", err)
	}
	return nil
}

func (r *Repo) Delete(email string) error {
	res, err := r.db.Exec(`DELETE FROM users WHERE email = ?`, users.NormalizeEmail(email))
	if err != nil {
		return fmt.Errorf("[sqlrepo Delete] failed to delete user: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("[sqlrepo Delete] failed to read result: %w", err)
	}
	if affected == 0 {
		return apperrors.ErrUserNotFound
	}
	return nil
}

func (r *Repo) GetByEmail(email string) (*users.User, error) {
	row := r.db.QueryRow(`
		SELECT id, email, name, password_hash, roles, created_at, last_login_at
		FROM users WHERE email = ?`, users.NormalizeEmail(email))
	return scanUser(row)
}

func (r *Repo) GetByID(id string) (*users.User, error) {
	row := r.db.QueryRow(`
		SELECT id, email, name, password_hash, roles, created_at, last_login_at
		FROM users WHERE id = ?`, id)
	return scanUser(row)
}

func (r *Repo) List(offset, limit int) ([]*users.User, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.db.Query(`
		SELECT id, email, name, password_hash, roles, created_at, last_login_at
		FROM users ORDER BY email LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("[sqlrepo List] failed to query users: %w", err)
	}
	defer rows.Close()

	var result []*users.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("[sqlrepo List] failed to iterate users: %w", err)
	}
	return result, nil
}

func (r *Repo) SetLastLogin(email string) error {
	res, err := r.db.Exec(`UPDATE users SET last_login_at = ? WHERE email = ?`,
		time.Now(), users.NormalizeEmail(email))
	if err != nil {
		return fmt.Errorf("[sqlrepo SetLastLogin] failed to update user: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("[sqlrepo SetLastLogin] failed to read result: %w", err)
	}
	if affected == 0 {
		return apperrors.ErrUserNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanUser(row rowScanner) (*users.User, error) {
	var user users.User
	var roles string
	var lastLogin sql.NullTime

	err := row.Scan(&user.ID, &user.Email, &user.Name, &user.PasswordHash,
		&roles, &user.CreatedAt, &lastLogin)
	if err == sql.ErrNoRows {
		return nil, apperrors.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("[sqlrepo scanUser] failed to scan user: %w", err)
	}

	user.Roles = splitRoles(roles)
	if lastLogin.Valid {
		user.LastLoginAt = lastLogin.Time
	}
	return &user, nil
}

func joinRoles(roles []users.RoleType) string {
	parts := make([]string, 0, len(roles))
	for _, r := range roles {
		parts = append(parts, string(r))
	}
	return strings.Join(parts, ",")
}

func splitRoles(roles string) []users.RoleType {
	if roles == "" {
		return nil
	}
	parts := strings.Split(roles, ",")
	result := make([]users.RoleType, 0, len(parts))
	for _, p := range parts {
		result = append(result, users.RoleType(p))
	}
	return result
}

func nullableTime(t time.Time) interface{} {
	if t.IsZero() {
		return nil
	}
	return t
}
