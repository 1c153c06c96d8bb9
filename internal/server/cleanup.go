// cleanup.go - Out-of-band retry of failed object-store deletions.
//
// Catalog deletion is authoritative; storage deletion is advisory. When
// the advisory delete fails, the storage key lands in
// pending_storage_deletes and the sweeper retries it here.
package server

import (
	"context"
	"database/sql"
	"log"
	"time"

	"github.com/google/uuid"
)

// sweeperMaxAttempts is how often a key is retried before the sweeper
// gives up. Exhausted rows stay in the table for operator inspection.
const sweeperMaxAttempts = 10

// SweeperConfig holds configuration for the storage-delete sweeper.
type SweeperConfig struct {
	Enabled  bool
	Interval time.Duration
	DB       *sql.DB
	Objects  ObjectStore
}

// queueStorageDelete records a storage key whose deletion failed so the
// sweeper can retry it. Failures here are logged only; the caller's
// delete must not be blocked by bookkeeping.
func (cfg Config) queueStorageDelete(ctx context.Context, storageKey string, cause error) {
	if cfg.DB == nil {
		return
	}
	_, err := cfg.DB.ExecContext(ctx, `
		INSERT INTO pending_storage_deletes (id, storage_key, last_error)
		VALUES ($1, $2, $3)
	`, uuid.New(), storageKey, cause.Error())
	if err != nil {
		log.Printf("service=cleanup msg=%q key=%s err=%v", "queue_failed", storageKey, err)
	}
}

// StartStorageSweeper runs the retry loop until the context is
// cancelled. An immediate sweep runs on start.
func StartStorageSweeper(ctx context.Context, cfg SweeperConfig) {
	if !cfg.Enabled || cfg.DB == nil || cfg.Objects == nil {
		log.Printf("service=cleanup msg=%q", "disabled")
		return
	}

	log.Printf("service=cleanup msg=%q interval=%s", "starting", cfg.Interval)

	ticker := time.NewTicker(cfg.Interval)
	defer ticker.Stop()

	runSweep(ctx, cfg)

	for {
		select {
		case <-ctx.Done():
			log.Printf("service=cleanup msg=%q", "shutting_down")
			return
		case <-ticker.C:
			runSweep(ctx, cfg)
		}
	}
}

func runSweep(ctx context.Context, cfg SweeperConfig) {
	rows, err := cfg.DB.QueryContext(ctx, `
		SELECT id, storage_key, attempts
		FROM pending_storage_deletes
		WHERE attempts < $1
		ORDER BY created_at ASC
		LIMIT 100
	`, sweeperMaxAttempts)
	if err != nil {
		log.Printf("service=cleanup msg=%q err=%v", "query_failed", err)
		return
	}
	defer rows.Close()

	type pending struct {
		id       string
		key      string
		attempts int
	}
	var batch []pending
	for rows.Next() {
		var p pending
		if err := rows.Scan(&p.id, &p.key, &p.attempts); err != nil {
			log.Printf("service=cleanup msg=%q err=%v", "scan_failed", err)
			continue
		}
		batch = append(batch, p)
	}
	if err := rows.Err(); err != nil {
		log.Printf("service=cleanup msg=%q err=%v", "rows_failed", err)
		return
	}

	removed := 0
	for _, p := range batch {
		if err := cfg.Objects.Remove(ctx, p.key); err != nil {
			log.Printf("service=cleanup msg=%q key=%s attempt=%d err=%v",
				"retry_failed", p.key, p.attempts+1, err)
			_, uerr := cfg.DB.ExecContext(ctx, `
				UPDATE pending_storage_deletes
				SET attempts = attempts + 1, last_error = $2
				WHERE id = $1
			`, p.id, err.Error())
			if uerr != nil {
				log.Printf("service=cleanup msg=%q key=%s err=%v", "update_failed", p.key, uerr)
			}
			continue
		}
		if _, err := cfg.DB.ExecContext(ctx,
			`DELETE FROM pending_storage_deletes WHERE id = $1`, p.id); err != nil {
			log.Printf("service=cleanup msg=%q key=%s err=%v", "dequeue_failed", p.key, err)
			continue
		}
		removed++
	}

	if len(batch) > 0 {
		log.Printf("service=cleanup msg=%q pending=%d removed=%d", "sweep_done", len(batch), removed)
	}
}
