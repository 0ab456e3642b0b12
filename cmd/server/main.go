package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"

	_ "modernc.org/sqlite"

	emailPkg "plotmap/internal/adapters/email"
	web "plotmap/internal/adapters/http"
	"plotmap/internal/adapters/http/perf"
	"plotmap/internal/adapters/storage"
	accountStore "plotmap/internal/adapters/storage/account"
	customerStore "plotmap/internal/adapters/storage/customer"
	enquiryStore "plotmap/internal/adapters/storage/enquiry"
	mediatorStore "plotmap/internal/adapters/storage/mediator"
	plotStore "plotmap/internal/adapters/storage/plot"
	"plotmap/internal/application/orchestrators"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

func main() {
	// Initialize database with WAL mode, foreign keys, and busy timeout
	dbPath := envOrDefault("PLOTMAP_DB", "plotmap.db")
	dsn := dbPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(ON)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	// Connection pool settings for WAL mode
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)

	// Health check
	if err := db.Ping(); err != nil {
		log.Fatalf("database unreachable: %v", err)
	}

	if err := storage.InitDB(db); err != nil {
		log.Fatalf("failed to initialize database: %v", err)
	}

	// Performance instrumentation: wrap DB with timing, create collector
	collector := perf.NewCollector(perf.DefaultRingSize)
	timedDB := storage.NewTimedDB(db, collector)

	// Create store instances (using timed DB for query instrumentation)
	acctStore := accountStore.NewSQLiteStore(timedDB)
	stores := &web.Stores{
		AccountStore:  acctStore,
		PlotStore:     plotStore.NewSQLiteStore(timedDB),
		CustomerStore: customerStore.NewSQLiteStore(timedDB),
		MediatorStore: mediatorStore.NewSQLiteStore(timedDB),
		EnquiryStore:  enquiryStore.NewSQLiteStore(timedDB),
	}

	// Seed default admin account if no accounts exist
	adminUser := envOrDefault("PLOTMAP_ADMIN_USER", "admin")
	adminPassword := os.Getenv("PLOTMAP_ADMIN_PASSWORD")
	if adminPassword == "" {
		if os.Getenv("PLOTMAP_ENV") == "production" {
			log.Fatal("PLOTMAP_ADMIN_PASSWORD is required in production")
		}
		adminPassword = "plotmap-dev-admin"
	}
	seedDeps := orchestrators.CreateAccountDeps{AccountStore: acctStore}
	if err := orchestrators.ExecuteSeedAdmin(context.Background(), seedDeps, adminUser, adminPassword); err != nil {
		log.Fatalf("failed to seed admin: %v", err)
	}

	// Configure email sender for enquiry notifications
	resendKey := os.Getenv("PLOTMAP_RESEND_API_KEY")
	emailFrom := envOrDefault("PLOTMAP_EMAIL_FROM", "Plot Sales <noreply@example.com>")
	enquiryTo := os.Getenv("PLOTMAP_ENQUIRY_TO")
	if resendKey != "" {
		web.SetEmailSender(emailPkg.NewResendSender(resendKey, emailFrom), emailFrom, enquiryTo)
		log.Println("Email sender configured (Resend)")
	} else {
		web.SetEmailSender(emailPkg.NewNoopSender(), emailFrom, enquiryTo)
		if os.Getenv("PLOTMAP_ENV") == "production" {
			log.Println("WARNING: PLOTMAP_RESEND_API_KEY is not set — enquiry notifications are DISABLED in production")
		} else {
			log.Println("Email sender configured (noop — set PLOTMAP_RESEND_API_KEY for real delivery)")
		}
	}

	// Create HTTP handler with middleware (pass collector for timing)
	mux := web.NewMux(envOrDefault("PLOTMAP_STATIC_DIR", "static"), stores, collector)

	// Start server
	addr := envOrDefault("PLOTMAP_ADDR", ":8080")
	log.Printf("plotmap %s starting on %s (env=%s)", version, addr, envOrDefault("PLOTMAP_ENV", "development"))

	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
