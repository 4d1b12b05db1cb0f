package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "golang.org/x/crypto/x509roots/fallback" // Embed CA certs for scratch container

	"github.com/ledgerdesk/ledgerdesk/internal/adapter/driven/emailjs"
	sqliteadapter "github.com/ledgerdesk/ledgerdesk/internal/adapter/driven/sqlite"
	httphandler "github.com/ledgerdesk/ledgerdesk/internal/adapter/driving/http"
	"github.com/ledgerdesk/ledgerdesk/internal/application"
	"github.com/ledgerdesk/ledgerdesk/internal/config"
	"github.com/ledgerdesk/ledgerdesk/internal/fieldcrypt"
	"github.com/ledgerdesk/ledgerdesk/internal/security"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load configuration (fail fast on missing required env vars).
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	slog.Info("config loaded",
		"listen_addr", cfg.ListenAddr,
		"db_path", cfg.DBPath,
		"otp_expiry", cfg.OTPExpiry,
		"session_ttl", cfg.SessionTTL,
	)

	// 2. Parse the field-encryption key before touching anything else: a bad
	// key must never let the app run and write plaintext-adjacent garbage.
	key, err := fieldcrypt.ParseKey(cfg.EncryptionKey)
	if err != nil {
		return err
	}
	codec, err := fieldcrypt.New(key)
	if err != nil {
		return err
	}

	// 3. Setup signal-based context (SIGINT, SIGTERM).
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 4. Open database (dual reader/writer with WAL mode).
	db, err := sqliteadapter.NewDB(cfg.DBPath)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			slog.Error("error closing database", "error", closeErr)
		}
	}()
	slog.Info("database opened", "path", cfg.DBPath)

	// 5. Run migrations on writer connection.
	if err := sqliteadapter.RunMigrations(db.Writer); err != nil {
		return err
	}
	slog.Info("migrations complete")

	// 6. Wire driven adapters.
	companies := sqliteadapter.NewCompanyRepo(db)
	challenges := sqliteadapter.NewChallengeRepo(db)
	transactions := sqliteadapter.NewTransactionRepo(db)
	sessions := sqliteadapter.NewSessionRepo(db)
	products := sqliteadapter.NewProductRepo(db)
	customers := sqliteadapter.NewCustomerRepo(db)
	sales := sqliteadapter.NewSaleRepo(db)

	notifier := emailjs.New(emailjs.Credentials{
		ServiceID:   cfg.EmailJSServiceID,
		TemplateID:  cfg.EmailJSTemplateID,
		PublicKey:   cfg.EmailJSPublicKey,
		AccessToken: cfg.EmailJSAccessToken,
	})
	if !cfg.HasEmailJSCredentials() {
		slog.Warn("emailjs credentials not configured: one-time codes cannot be delivered and logins will not complete")
	}

	// 7. Wire application services.
	hasher := security.NewHasher(0)
	authSvc := application.NewAuthService(companies, challenges, notifier, hasher, cfg.OTPExpiry, slog.Default())
	ledgerSvc := application.NewLedgerService(transactions, codec, slog.Default())

	// 8. Create HTTP handler with session management and register routes.
	sessionMgr := httphandler.NewSessionManager(sessions, []byte(cfg.SessionSecret), cfg.SessionTTL)
	apiHandler := httphandler.NewHandler(authSvc, ledgerSvc, products, customers, sales, sessionMgr, slog.Default())
	handler := httphandler.NewServeMux(apiHandler, slog.Default())

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		slog.Info("http server starting", "addr", cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("http server error", "error", err)
		}
	}()

	slog.Info("ledgerdesk started", "listen_addr", cfg.ListenAddr)

	// 9. Wait for shutdown signal.
	<-ctx.Done()
	slog.Info("shutting down")

	// 10. Graceful shutdown with 10s timeout to drain in-flight requests.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("http server shutdown error", "error", err)
	}

	slog.Info("shutdown complete")
	return nil
}
