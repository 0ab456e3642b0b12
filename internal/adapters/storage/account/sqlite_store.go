package account

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"plotmap/internal/adapters/storage"
	domain "plotmap/internal/domain/account"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new account store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

const accountColumns = "id, username, display_name, password_hash, role, created_at"

func scanAccount(row interface{ Scan(...any) error }) (domain.Account, error) {
	var entity domain.Account
	var createdAt string
	err := row.Scan(
		&entity.ID,
		&entity.Username,
		&entity.DisplayName,
		&entity.PasswordHash,
		&entity.Role,
		&createdAt,
	)
	if err != nil {
		return domain.Account{}, err
	}
	if t, err := time.Parse(time.RFC3339, createdAt); err == nil {
		entity.CreatedAt = t
	}
	return entity, nil
}

// GetByID retrieves an Account by its ID.
// PRE: id is non-empty
// POST: Returns the entity or an error if not found
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Account, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+accountColumns+" FROM account WHERE id = ?", id)
	entity, err := scanAccount(row)
	if err == sql.ErrNoRows {
		return domain.Account{}, fmt.Errorf("account not found: %w", err)
	}
	return entity, err
}

// GetByUsername retrieves an Account by username.
// PRE: username is non-empty
// POST: Returns the entity or an error if not found
func (s *SQLiteStore) GetByUsername(ctx context.Context, username string) (domain.Account, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+accountColumns+" FROM account WHERE username = ?", username)
	entity, err := scanAccount(row)
	if err == sql.ErrNoRows {
		return domain.Account{}, fmt.Errorf("account not found: %w", err)
	}
	return entity, err
}

// Save persists an Account to the database.
// PRE: entity has been validated
// POST: Entity is persisted (insert or update)
func (s *SQLiteStore) Save(ctx context.Context, entity domain.Account) error {
	query := "INSERT INTO account (id, username, display_name, password_hash, role, created_at) VALUES (?, ?, ?, ?, ?, ?) ON CONFLICT(id) DO UPDATE SET username=excluded.username, display_name=excluded.display_name, password_hash=excluded.password_hash, role=excluded.role"
	_, err := s.db.ExecContext(ctx, query,
		entity.ID,
		entity.Username,
		entity.DisplayName,
		entity.PasswordHash,
		entity.Role,
		entity.CreatedAt.UTC().Format(time.RFC3339),
	)
	return err
}

// Count returns the number of accounts.
func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM account").Scan(&n)
	return n, err
}
