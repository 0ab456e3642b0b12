package customer

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	_ "modernc.org/sqlite"

	"plotmap/internal/adapters/storage"
	domain "plotmap/internal/domain/customer"
	plotdomain "plotmap/internal/domain/plot"
)

// openTestDB opens an in-memory SQLite database with the schema applied.
// MaxOpenConns(1) keeps every statement on the same connection so the
// in-memory database and its pragmas survive across calls.
func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	if err := storage.InitDB(db); err != nil {
		t.Fatalf("InitDB: %v", err)
	}
	return db
}

func seedPlot(t *testing.T, db *sql.DB, id, status string) {
	t.Helper()
	_, err := db.Exec("INSERT INTO plot (id, title, status) VALUES (?, ?, ?)", id, "Plot "+id, status)
	if err != nil {
		t.Fatalf("seed plot %s: %v", id, err)
	}
}

func plotStatus(t *testing.T, db *sql.DB, id string) string {
	t.Helper()
	var status string
	if err := db.QueryRow("SELECT status FROM plot WHERE id = ?", id).Scan(&status); err != nil {
		t.Fatalf("read plot status: %v", err)
	}
	return status
}

func TestCreateMovesPlotInSameTransaction(t *testing.T) {
	db := openTestDB(t)
	seedPlot(t, db, "p1", "available")
	store := NewSQLiteStore(db)

	rec := domain.Record{
		ID:     "c1",
		PlotID: "p1",
		Name:   "Anand",
		Phone:  "9876543210",
		Status: plotdomain.StatusBooked,
		Installments: []domain.Installment{
			{Amount: "50000", Date: "2024-01-10"},
			{Amount: "25000", Date: "2024-02-10", FollowUp: "2024-03-01"},
		},
	}
	if err := store.Create(context.Background(), rec); err != nil {
		t.Fatalf("Create: %v", err)
	}

	if got := plotStatus(t, db, "p1"); got != "booked" {
		t.Errorf("plot status = %q, want booked", got)
	}
	got, err := store.GetByPlotID(context.Background(), "p1")
	if err != nil {
		t.Fatalf("GetByPlotID: %v", err)
	}
	if got.Name != "Anand" || got.Status != plotdomain.StatusBooked {
		t.Errorf("record = %+v", got)
	}
	if len(got.Installments) != 2 || got.Installments[1].FollowUp != "2024-03-01" {
		t.Errorf("installments = %+v", got.Installments)
	}
}

func TestCreateOnTakenPlotRollsBack(t *testing.T) {
	db := openTestDB(t)
	seedPlot(t, db, "p1", "available")
	store := NewSQLiteStore(db)

	first := domain.Record{ID: "c1", PlotID: "p1", Name: "Anand", Status: plotdomain.StatusReserved}
	if err := store.Create(context.Background(), first); err != nil {
		t.Fatalf("first Create: %v", err)
	}

	// the UNIQUE plot_id constraint fires; nothing from the second
	// record may land, the plot keeps the first record's status
	second := domain.Record{ID: "c2", PlotID: "p1", Name: "Bala", Status: plotdomain.StatusBooked}
	if err := store.Create(context.Background(), second); err == nil {
		t.Fatal("second Create on the same plot should fail")
	}
	if got := plotStatus(t, db, "p1"); got != "reserved" {
		t.Errorf("plot status after failed create = %q, want reserved", got)
	}
	if _, err := store.GetByID(context.Background(), "c2"); !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("GetByID(c2) = %v, want ErrNoRows", err)
	}
}

func TestUpdateReplacesInstallmentsAndMovesPlot(t *testing.T) {
	db := openTestDB(t)
	seedPlot(t, db, "p1", "available")
	store := NewSQLiteStore(db)

	rec := domain.Record{
		ID: "c1", PlotID: "p1", Name: "Anand", Status: plotdomain.StatusReserved,
		Installments: []domain.Installment{{Amount: "10000", Date: "2024-01-10"}},
	}
	if err := store.Create(context.Background(), rec); err != nil {
		t.Fatalf("Create: %v", err)
	}

	rec.Status = plotdomain.StatusRegistered
	rec.Installments = []domain.Installment{
		{Amount: "10000", Date: "2024-01-10"},
		{Amount: "90000", Date: "2024-04-02"},
	}
	if err := store.Update(context.Background(), rec); err != nil {
		t.Fatalf("Update: %v", err)
	}

	if got := plotStatus(t, db, "p1"); got != "registered" {
		t.Errorf("plot status = %q, want registered", got)
	}
	got, err := store.GetByID(context.Background(), "c1")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if len(got.Installments) != 2 {
		t.Errorf("installments = %+v, want the replaced pair", got.Installments)
	}
}

func TestUpdateMissingCustomer(t *testing.T) {
	db := openTestDB(t)
	seedPlot(t, db, "p1", "available")
	store := NewSQLiteStore(db)

	rec := domain.Record{ID: "ghost", PlotID: "p1", Name: "Anand", Status: plotdomain.StatusReserved}
	if err := store.Update(context.Background(), rec); !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("Update = %v, want ErrNoRows", err)
	}
	if got := plotStatus(t, db, "p1"); got != "available" {
		t.Errorf("plot status moved by failed update: %q", got)
	}
}

func TestDeleteFreesPlotAndCascadesInstallments(t *testing.T) {
	db := openTestDB(t)
	seedPlot(t, db, "p1", "available")
	store := NewSQLiteStore(db)

	rec := domain.Record{
		ID: "c1", PlotID: "p1", Name: "Anand", Status: plotdomain.StatusBooked,
		Installments: []domain.Installment{{Amount: "10000", Date: "2024-01-10"}},
	}
	if err := store.Create(context.Background(), rec); err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := store.Delete(context.Background(), "c1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if got := plotStatus(t, db, "p1"); got != "available" {
		t.Errorf("plot status after delete = %q, want available", got)
	}
	var n int
	if err := db.QueryRow("SELECT COUNT(*) FROM installment WHERE customer_id = 'c1'").Scan(&n); err != nil {
		t.Fatalf("count installments: %v", err)
	}
	if n != 0 {
		t.Errorf("%d installments survived the delete", n)
	}

	if err := store.Delete(context.Background(), "c1"); !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("second Delete = %v, want ErrNoRows", err)
	}
}

func TestLegacyStatusSpellingNormalizedOnRead(t *testing.T) {
	db := openTestDB(t)
	seedPlot(t, db, "p1", "Booked")
	store := NewSQLiteStore(db)

	_, err := db.Exec(
		"INSERT INTO customer (id, plot_id, name, status, created_at) VALUES ('c1', 'p1', 'Anand', 'Booked', '2024-01-01T00:00:00Z')",
	)
	if err != nil {
		t.Fatalf("seed legacy row: %v", err)
	}

	got, err := store.GetByPlotID(context.Background(), "p1")
	if err != nil {
		t.Fatalf("GetByPlotID: %v", err)
	}
	if got.Status != plotdomain.StatusBooked {
		t.Errorf("status = %q, want canonical booked", got.Status)
	}
}

func TestListFilters(t *testing.T) {
	db := openTestDB(t)
	store := NewSQLiteStore(db)
	ctx := context.Background()

	seedPlot(t, db, "p1", "available")
	seedPlot(t, db, "p2", "available")
	seedPlot(t, db, "p3", "available")
	recs := []domain.Record{
		{ID: "c1", PlotID: "p1", Name: "Anand", Mediator: "Ravi", Status: plotdomain.StatusReserved},
		{ID: "c2", PlotID: "p2", Name: "Bala", Mediator: "Ravi", Status: plotdomain.StatusBooked},
		{ID: "c3", PlotID: "p3", Name: "Chitra", Mediator: "Kumar", Status: plotdomain.StatusBooked},
	}
	for _, r := range recs {
		if err := store.Create(ctx, r); err != nil {
			t.Fatalf("Create %s: %v", r.ID, err)
		}
	}

	byStatus, err := store.List(ctx, ListFilter{Status: "booked"})
	if err != nil {
		t.Fatalf("List by status: %v", err)
	}
	if len(byStatus) != 2 {
		t.Errorf("booked records = %d, want 2", len(byStatus))
	}

	byMediator, err := store.List(ctx, ListFilter{Mediator: "Kumar"})
	if err != nil {
		t.Fatalf("List by mediator: %v", err)
	}
	if len(byMediator) != 1 || byMediator[0].ID != "c3" {
		t.Errorf("mediator filter = %+v", byMediator)
	}

	bySearch, err := store.List(ctx, ListFilter{Search: "bal"})
	if err != nil {
		t.Fatalf("List by search: %v", err)
	}
	if len(bySearch) != 1 || bySearch[0].ID != "c2" {
		t.Errorf("search filter = %+v", bySearch)
	}

	total, err := store.Count(ctx)
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if total != 3 {
		t.Errorf("Count = %d, want 3", total)
	}
}
