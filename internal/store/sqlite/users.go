package sqlite

import (
	"context"
	"database/sql"
	"strings"

	"github.com/pagemarkapp/pagemark-server/internal/domain"
	"github.com/pagemarkapp/pagemark-server/internal/store"
)

// userColumns is the ordered list of columns selected in user queries.
// Must match the scan order in scanUser.
const userColumns = `id, username, key_hash, created_at`

// scanUser scans a sql.Row (or sql.Rows via its Scan method) into a domain.User.
func scanUser(scanner interface{ Scan(dest ...any) error }) (*domain.User, error) {
	var u domain.User
	var createdAt string

	err := scanner.Scan(
		&u.ID,
		&u.Username,
		&u.KeyHash,
		&createdAt,
	)
	if err != nil {
		return nil, err
	}

	u.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}

	return &u, nil
}

// CreateUser inserts a new user into the database.
// Returns store.ErrUsernameExists if the username is already registered.
func (s *Store) CreateUser(ctx context.Context, user *domain.User) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, username, key_hash, created_at)
		VALUES (?, ?, ?, ?)`,
		user.ID,
		user.Username,
		user.KeyHash,
		formatTime(user.CreatedAt),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return store.ErrUsernameExists
		}
		return err
	}
	return nil
}

// GetUserByUsername retrieves a user by exact username match.
// Returns store.ErrNotFound if the user does not exist.
func (s *Store) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE username = ?`, username)

	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}
