package mediator

import (
	"context"
	"database/sql"
	"fmt"

	"plotmap/internal/adapters/storage"
	domain "plotmap/internal/domain/mediator"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new mediator store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// GetByID retrieves a Mediator by its ID.
// PRE: id is non-empty
// POST: Returns the entity or an error if not found
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Mediator, error) {
	row := s.db.QueryRowContext(ctx, "SELECT id, name, phone, location FROM mediator WHERE id = ?", id)

	var entity domain.Mediator
	err := row.Scan(&entity.ID, &entity.Name, &entity.Phone, &entity.Location)
	if err == sql.ErrNoRows {
		return domain.Mediator{}, fmt.Errorf("mediator not found: %w", err)
	}
	return entity, err
}

// Save persists a Mediator to the database.
// PRE: entity has been validated
// POST: Entity is persisted (insert or update)
func (s *SQLiteStore) Save(ctx context.Context, entity domain.Mediator) error {
	query := "INSERT INTO mediator (id, name, phone, location) VALUES (?, ?, ?, ?) ON CONFLICT(id) DO UPDATE SET name=excluded.name, phone=excluded.phone, location=excluded.location"
	_, err := s.db.ExecContext(ctx, query, entity.ID, entity.Name, entity.Phone, entity.Location)
	return err
}

// Delete removes a Mediator from the database.
// PRE: id is non-empty
// POST: Entity with given id is removed
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM mediator WHERE id = ?", id)
	return err
}

// List retrieves all mediators ordered by name.
func (s *SQLiteStore) List(ctx context.Context) ([]domain.Mediator, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, name, phone, location FROM mediator ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.Mediator
	for rows.Next() {
		var entity domain.Mediator
		if err := rows.Scan(&entity.ID, &entity.Name, &entity.Phone, &entity.Location); err != nil {
			return nil, err
		}
		results = append(results, entity)
	}
	return results, rows.Err()
}
