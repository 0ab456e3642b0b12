package plot

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"plotmap/internal/adapters/storage"
	domain "plotmap/internal/domain/plot"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new plot store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

const plotColumns = "id, title, plot_num, stamp_num, visible_id, price, sqft, cent, facing, status"

func scanPlot(row interface{ Scan(...any) error }) (domain.Plot, error) {
	var entity domain.Plot
	var price, sqft, cent sql.NullFloat64
	var status string
	err := row.Scan(
		&entity.ID,
		&entity.Title,
		&entity.PlotNum,
		&entity.StampNum,
		&entity.VisibleID,
		&price,
		&sqft,
		&cent,
		&entity.Facing,
		&status,
	)
	if err != nil {
		return domain.Plot{}, err
	}
	if price.Valid {
		entity.Price = price.Float64
	}
	if sqft.Valid {
		entity.Sqft = sqft.Float64
	}
	if cent.Valid {
		entity.Cent = cent.Float64
	}
	// stored spellings predate the canonical set
	parsed, err := domain.ParseStatus(status)
	if err != nil {
		return domain.Plot{}, fmt.Errorf("plot %s: %w", entity.ID, err)
	}
	entity.Status = parsed
	return entity, nil
}

// GetByID retrieves a Plot by its ID.
// PRE: id is non-empty
// POST: Returns the entity or an error if not found
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Plot, error) {
	query := "SELECT " + plotColumns + " FROM plot WHERE id = ?"
	entity, err := scanPlot(s.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return domain.Plot{}, fmt.Errorf("plot not found: %w", err)
	}
	return entity, err
}

// Save persists a Plot to the database.
// PRE: entity has been validated
// POST: Entity is persisted (insert or update)
func (s *SQLiteStore) Save(ctx context.Context, entity domain.Plot) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	// Upsert implementation
	fields := []string{"id", "title", "plot_num", "stamp_num", "visible_id", "price", "sqft", "cent", "facing", "status"}
	placeholders := []string{"?", "?", "?", "?", "?", "?", "?", "?", "?", "?"}
	updates := []string{"title=excluded.title", "plot_num=excluded.plot_num", "stamp_num=excluded.stamp_num", "visible_id=excluded.visible_id", "price=excluded.price", "sqft=excluded.sqft", "cent=excluded.cent", "facing=excluded.facing", "status=excluded.status"}

	query := fmt.Sprintf(
		"INSERT INTO plot (%s) VALUES (%s) ON CONFLICT(id) DO UPDATE SET %s",
		strings.Join(fields, ", "),
		strings.Join(placeholders, ", "),
		strings.Join(updates, ", "),
	)

	_, err = tx.ExecContext(ctx, query,
		entity.ID,
		entity.Title,
		entity.PlotNum,
		entity.StampNum,
		entity.VisibleID,
		entity.Price,
		entity.Sqft,
		entity.Cent,
		entity.Facing,
		string(entity.Status),
	)
	if err != nil {
		return err
	}

	return tx.Commit()
}

// UpdateDetails updates the listing fields of a plot without touching its
// status. Status moves only through the customer write path.
// PRE: entity.ID names an existing plot
// POST: Listing fields updated; status column unchanged
func (s *SQLiteStore) UpdateDetails(ctx context.Context, entity domain.Plot) error {
	query := "UPDATE plot SET title = ?, plot_num = ?, stamp_num = ?, visible_id = ?, price = ?, sqft = ?, cent = ?, facing = ? WHERE id = ?"
	res, err := s.db.ExecContext(ctx, query,
		entity.Title,
		entity.PlotNum,
		entity.StampNum,
		entity.VisibleID,
		entity.Price,
		entity.Sqft,
		entity.Cent,
		entity.Facing,
		entity.ID,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("plot not found: %s", entity.ID)
	}
	return nil
}

// SetStatus updates a plot's status column.
// PRE: status is canonical
// POST: Status column updated, error if the plot does not exist
func (s *SQLiteStore) SetStatus(ctx context.Context, id string, status domain.Status) error {
	res, err := s.db.ExecContext(ctx, "UPDATE plot SET status = ? WHERE id = ?", string(status), id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("plot not found: %s", id)
	}
	return nil
}

// List retrieves plots matching the filter, ordered by title.
func (s *SQLiteStore) List(ctx context.Context, filter ListFilter) ([]domain.Plot, error) {
	query := "SELECT " + plotColumns + " FROM plot"
	var conditions []string
	var args []any

	if filter.Status != "" {
		conditions = append(conditions, "status = ?")
		args = append(args, filter.Status)
	}
	if filter.Facing != "" {
		conditions = append(conditions, "facing = ?")
		args = append(args, filter.Facing)
	}
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY title"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
		if filter.Offset > 0 {
			query += " OFFSET ?"
			args = append(args, filter.Offset)
		}
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.Plot
	for rows.Next() {
		entity, err := scanPlot(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, entity)
	}
	return results, rows.Err()
}

// Count returns the total number of plots.
func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM plot").Scan(&n)
	return n, err
}
