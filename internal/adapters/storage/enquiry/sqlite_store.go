package enquiry

import (
	"context"
	"database/sql"
	"time"

	"plotmap/internal/adapters/storage"
	domain "plotmap/internal/domain/enquiry"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new enquiry store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Save persists an Enquiry to the database.
// PRE: entity has been validated
// POST: Entity is persisted
func (s *SQLiteStore) Save(ctx context.Context, entity domain.Enquiry) error {
	var plotID any
	if entity.PlotID != "" {
		plotID = entity.PlotID
	}
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO enquiry (id, plot_id, name, phone, address, created_at) VALUES (?, ?, ?, ?, ?, ?)",
		entity.ID,
		plotID,
		entity.Name,
		entity.Phone,
		entity.Address,
		entity.CreatedAt.UTC().Format(time.RFC3339),
	)
	return err
}

// List retrieves the most recent enquiries, newest first.
func (s *SQLiteStore) List(ctx context.Context, limit int) ([]domain.Enquiry, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, plot_id, name, phone, address, created_at FROM enquiry ORDER BY created_at DESC LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.Enquiry
	for rows.Next() {
		var entity domain.Enquiry
		var plotID sql.NullString
		var createdAt string
		if err := rows.Scan(&entity.ID, &plotID, &entity.Name, &entity.Phone, &entity.Address, &createdAt); err != nil {
			return nil, err
		}
		if plotID.Valid {
			entity.PlotID = plotID.String
		}
		if t, err := time.Parse(time.RFC3339, createdAt); err == nil {
			entity.CreatedAt = t
		}
		results = append(results, entity)
	}
	return results, rows.Err()
}
