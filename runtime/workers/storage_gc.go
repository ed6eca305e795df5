package workers

import (
	"context"
	goerrors "errors"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"
)

// StorageGCWorker reclaims Badger value-log space on a fixed interval.
// Badger never garbage-collects on its own; without this loop the value
// log grows forever.
type StorageGCWorker struct {
	log      *slog.Logger
	db       *badger.DB
	interval time.Duration
}

func NewStorageGCWorker(log *slog.Logger, db *badger.DB, interval time.Duration) *StorageGCWorker {
	return &StorageGCWorker{log: log, db: db, interval: interval}
}

func (w *StorageGCWorker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			w.collect()
		}
	}
}

func (w *StorageGCWorker) collect() {
	// One GC call rewrites at most one value-log file; keep calling
	// until Badger reports there is nothing left worth rewriting.
	for {
		err := w.db.RunValueLogGC(0.5)
		if goerrors.Is(err, badger.ErrNoRewrite) {
			return
		}
		if err != nil {
			w.log.Warn("Value log GC failed", "error", err)
			return
		}
		w.log.Debug("Value log file reclaimed")
	}
}
