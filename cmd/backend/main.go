package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"pin-vault/internal/db"
	"pin-vault/internal/server"
)

func main() {
	// A local .env is a convenience for development; absence is fine.
	_ = godotenv.Load()

	addr := getenvDefault("VAULT_ADDR", ":8080")

	build := server.BuildInfo{
		Version: getenvDefault("VAULT_VERSION", "dev"),
		Commit:  getenvDefault("VAULT_COMMIT", "unknown"),
	}

	session := server.SessionConfig{
		Secret:     getenvDefault("VAULT_SESSION_SECRET", ""),
		TTL:        24 * time.Hour,
		Legacy:     getenvDefault("VAULT_LEGACY_TOKENS", "") == "true",
		CookieName: "session_token",
	}

	// Safety: refuse to start without a signing secret unless the
	// deployment explicitly opted into the unsigned legacy tokens.
	if session.Secret == "" && !session.Legacy {
		log.Printf("service=backend msg=%q", "missing VAULT_SESSION_SECRET")
		os.Exit(1)
	}
	if session.Legacy {
		log.Printf("service=backend msg=%q", "legacy_unsigned_tokens_enabled")
	}

	// Database
	dsn := getenvDefault("DATABASE_URL", "")
	dbConn, err := server.OpenDB(dsn)
	if err != nil {
		log.Printf("service=backend msg=%q err=%v", "db_connect_failed", err)
		os.Exit(1)
	}
	defer func() { _ = dbConn.Close() }()

	log.Printf("service=backend msg=%q", "running_migrations")
	if err := db.RunMigrations(dbConn); err != nil {
		log.Printf("service=backend msg=%q err=%v", "migration_failed", err)
		os.Exit(1)
	}
	log.Printf("service=backend msg=%q", "migrations_complete")

	// Create the shared credential up front so the lazy bootstrap path
	// inside Verify stays a fallback, not the normal case.
	creds := server.NewCredentialStore(dbConn, getenvDefault("VAULT_DEFAULT_PIN", "1234"))
	if err := creds.EnsureBootstrap(context.Background()); err != nil {
		log.Printf("service=backend msg=%q err=%v", "credential_bootstrap_failed", err)
		os.Exit(1)
	}

	// Object store. A misconfigured store is not fatal: the catalog
	// still works, and the broker endpoints answer with a config error.
	objects, err := server.NewObjectStoreFromEnv()
	if err != nil {
		log.Printf("service=backend msg=%q err=%v", "object_store_unavailable", err)
		objects = nil
	}

	srv := server.New(server.Config{
		Addr:        addr,
		Build:       build,
		Session:     session,
		Credentials: creds,
		Catalog:     server.NewPostgresCatalog(dbConn),
		Objects:     objects,
		DB:          dbConn,
	})

	// Sweeper retries object-store deletions that failed during catalog
	// deletes.
	sweepCtx, stopSweep := context.WithCancel(context.Background())
	defer stopSweep()
	go server.StartStorageSweeper(sweepCtx, server.SweeperConfig{
		Enabled:  objects != nil,
		Interval: sweepInterval(),
		DB:       dbConn,
		Objects:  objects,
	})

	errCh := make(chan error, 1)
	go func() {
		log.Printf("service=backend msg=%q addr=%s version=%s commit=%s",
			"starting", addr, build.Version, build.Commit)
		errCh <- srv.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Printf("service=backend msg=%q signal=%s", "shutting_down", sig.String())
		stopSweep()
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			log.Printf("service=backend msg=%q err=%v", "shutdown_error", err)
			os.Exit(1)
		}
		log.Printf("service=backend msg=%q", "shutdown_complete")
	case err := <-errCh:
		if err != nil {
			log.Printf("service=backend msg=%q err=%v", "server_error", err)
			os.Exit(1)
		}
	}
}

func sweepInterval() time.Duration {
	if v := os.Getenv("VAULT_SWEEP_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
		log.Printf("service=backend msg=%q value=%q", "invalid_sweep_interval", v)
	}
	return 10 * time.Minute
}

// getenvDefault reads an environment variable and returns a default value if not set.
func getenvDefault(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}
