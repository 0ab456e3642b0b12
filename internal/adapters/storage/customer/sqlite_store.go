package customer

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"plotmap/internal/adapters/storage"
	domain "plotmap/internal/domain/customer"
	plotdomain "plotmap/internal/domain/plot"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new customer store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

const recordColumns = "c.id, c.plot_id, p.title, c.name, c.phone, c.mediator, c.commission, c.booking_amount, c.closure_date, c.status"

const recordSelect = "SELECT " + recordColumns + " FROM customer c JOIN plot p ON p.id = c.plot_id"

func scanRecord(row interface{ Scan(...any) error }) (domain.Record, error) {
	var entity domain.Record
	var status string
	err := row.Scan(
		&entity.ID,
		&entity.PlotID,
		&entity.PlotLabel,
		&entity.Name,
		&entity.Phone,
		&entity.Mediator,
		&entity.Commission,
		&entity.BookingAmount,
		&entity.ClosureDate,
		&status,
	)
	if err != nil {
		return domain.Record{}, err
	}
	// stored spellings predate the canonical set
	parsed, err := plotdomain.ParseStatus(status)
	if err != nil {
		return domain.Record{}, fmt.Errorf("customer %s: %w", entity.ID, err)
	}
	entity.Status = parsed
	return entity, nil
}

// GetByID retrieves a Record with its installments by customer ID.
// PRE: id is non-empty
// POST: Returns the entity or an error wrapping sql.ErrNoRows if not found
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Record, error) {
	entity, err := scanRecord(s.db.QueryRowContext(ctx, recordSelect+" WHERE c.id = ?", id))
	if err == sql.ErrNoRows {
		return domain.Record{}, fmt.Errorf("customer not found: %w", err)
	}
	if err != nil {
		return domain.Record{}, err
	}
	entity.Installments, err = s.loadInstallments(ctx, entity.ID)
	return entity, err
}

// GetByPlotID retrieves the Record bound to a plot.
// PRE: plotID is non-empty
// POST: Returns the entity or an error wrapping sql.ErrNoRows if the plot
// has no record
func (s *SQLiteStore) GetByPlotID(ctx context.Context, plotID string) (domain.Record, error) {
	entity, err := scanRecord(s.db.QueryRowContext(ctx, recordSelect+" WHERE c.plot_id = ?", plotID))
	if err == sql.ErrNoRows {
		return domain.Record{}, fmt.Errorf("customer not found: %w", err)
	}
	if err != nil {
		return domain.Record{}, err
	}
	entity.Installments, err = s.loadInstallments(ctx, entity.ID)
	return entity, err
}

func (s *SQLiteStore) loadInstallments(ctx context.Context, customerID string) ([]domain.Installment, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT amount, received_date, follow_up_date FROM installment WHERE customer_id = ? ORDER BY position",
		customerID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.Installment
	for rows.Next() {
		var inst domain.Installment
		if err := rows.Scan(&inst.Amount, &inst.Date, &inst.FollowUp); err != nil {
			return nil, err
		}
		results = append(results, inst)
	}
	return results, rows.Err()
}

func insertInstallments(ctx context.Context, tx *sql.Tx, customerID string, installments []domain.Installment) error {
	for i, inst := range installments {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO installment (customer_id, position, amount, received_date, follow_up_date) VALUES (?, ?, ?, ?, ?)",
			customerID, i+1, inst.Amount, inst.Date, inst.FollowUp,
		)
		if err != nil {
			return err
		}
	}
	return nil
}

// Create persists a new Record and moves the plot to the record's status,
// both in one transaction.
// PRE: entity has been validated; the plot has no record yet
// POST: Record, installments and plot status are all committed, or none
func (s *SQLiteStore) Create(ctx context.Context, entity domain.Record) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	now := time.Now().UTC().Format(time.RFC3339)
	_, err = tx.ExecContext(ctx,
		"INSERT INTO customer (id, plot_id, name, phone, mediator, commission, booking_amount, closure_date, status, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
		entity.ID,
		entity.PlotID,
		entity.Name,
		entity.Phone,
		entity.Mediator,
		entity.Commission,
		entity.BookingAmount,
		entity.ClosureDate,
		string(entity.Status),
		now,
	)
	if err != nil {
		return err
	}
	if err := insertInstallments(ctx, tx, entity.ID, entity.Installments); err != nil {
		return err
	}
	if err := setPlotStatus(ctx, tx, entity.PlotID, string(entity.Status)); err != nil {
		return err
	}
	return tx.Commit()
}

// Update rewrites an existing Record, replaces its installments and moves
// the plot to the record's status, all in one transaction.
// PRE: entity has been validated and entity.ID exists
// POST: Record, installments and plot status are all committed, or none
func (s *SQLiteStore) Update(ctx context.Context, entity domain.Record) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	now := time.Now().UTC().Format(time.RFC3339)
	res, err := tx.ExecContext(ctx,
		"UPDATE customer SET name = ?, phone = ?, mediator = ?, commission = ?, booking_amount = ?, closure_date = ?, status = ?, updated_at = ? WHERE id = ?",
		entity.Name,
		entity.Phone,
		entity.Mediator,
		entity.Commission,
		entity.BookingAmount,
		entity.ClosureDate,
		string(entity.Status),
		now,
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
		return fmt.Errorf("customer not found: %w", sql.ErrNoRows)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM installment WHERE customer_id = ?", entity.ID); err != nil {
		return err
	}
	if err := insertInstallments(ctx, tx, entity.ID, entity.Installments); err != nil {
		return err
	}
	if err := setPlotStatus(ctx, tx, entity.PlotID, string(entity.Status)); err != nil {
		return err
	}
	return tx.Commit()
}

// Delete removes a Record and frees its plot in one transaction. The
// installments go with the record via the cascade.
// PRE: id names an existing record
// POST: Record gone and plot back to available, or neither
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var plotID string
	err = tx.QueryRowContext(ctx, "SELECT plot_id FROM customer WHERE id = ?", id).Scan(&plotID)
	if err == sql.ErrNoRows {
		return fmt.Errorf("customer not found: %w", err)
	}
	if err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM customer WHERE id = ?", id); err != nil {
		return err
	}
	if err := setPlotStatus(ctx, tx, plotID, "available"); err != nil {
		return err
	}
	return tx.Commit()
}

func setPlotStatus(ctx context.Context, tx *sql.Tx, plotID, status string) error {
	res, err := tx.ExecContext(ctx, "UPDATE plot SET status = ? WHERE id = ?", status, plotID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("plot not found: %s", plotID)
	}
	return nil
}

// List retrieves records matching the filter, ordered by plot title.
// Installments are not loaded; list views do not show them.
func (s *SQLiteStore) List(ctx context.Context, filter ListFilter) ([]domain.Record, error) {
	query := recordSelect
	var conditions []string
	var args []any

	if filter.Status != "" {
		conditions = append(conditions, "c.status = ?")
		args = append(args, filter.Status)
	}
	if filter.Mediator != "" {
		conditions = append(conditions, "c.mediator = ?")
		args = append(args, filter.Mediator)
	}
	if filter.Search != "" {
		conditions = append(conditions, "(c.name LIKE ? OR c.phone LIKE ?)")
		like := "%" + filter.Search + "%"
		args = append(args, like, like)
	}
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY p.title"
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

	var results []domain.Record
	for rows.Next() {
		entity, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, entity)
	}
	return results, rows.Err()
}

// Count returns the total number of customer records.
func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM customer").Scan(&n)
	return n, err
}

var _ Store = (*SQLiteStore)(nil)
