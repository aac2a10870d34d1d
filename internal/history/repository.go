package history

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"sync"
	"time"

	"codeberg.org/mutker/rogctl/internal/errors"
	"codeberg.org/mutker/rogctl/internal/logger"
	"codeberg.org/mutker/rogctl/internal/profile"
	"github.com/google/uuid"

	_ "github.com/mattn/go-sqlite3"
)

type sqliteRepository struct {
	db     *sql.DB
	logger logger.Logger
	mu     sync.Mutex
}

func NewRepository(cfg Config, log logger.Logger) (Repository, error) {
	errFactory := errors.New()

	if cfg.DBPath == "" {
		return nil, errFactory.New(ErrInvalidDBPath)
	}

	// Ensure the directory exists
	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), defaultDirPerm); err != nil {
		return nil, errFactory.WithData(ErrStorageInit, struct {
			Phase string
			Path  string
			Error string
		}{
			Phase: "create_directory",
			Path:  cfg.DBPath,
			Error: err.Error(),
		})
	}

	dsn := cfg.DBPath + "?_journal=WAL&_busy_timeout=5000"
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, errFactory.Wrap(ErrStorageInit, err)
	}

	if err := InitSchema(db, log); err != nil {
		db.Close()
		return nil, errFactory.Wrap(ErrStorageInit, err)
	}

	log.Debug().Str("path", cfg.DBPath).Msg("History repository initialized")

	return &sqliteRepository{
		db:     db,
		logger: log,
	}, nil
}

func (r *sqliteRepository) Store(ctx context.Context, entry *Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.ExecContext(ctx, insertEntrySQL,
		entry.ID.String(),
		entry.Timestamp.UnixNano(),
		string(entry.Action),
		int64(entry.Profile.Encode()),
		entry.FanPath,
		entry.Mechanism,
		int64(entry.ChargeLimit),
	)
	if err != nil {
		return errors.New().Wrap(ErrStorageAccess, err)
	}

	return nil
}

func (r *sqliteRepository) List(ctx context.Context, limit int) ([]Entry, error) {
	errFactory := errors.New()

	if limit <= 0 {
		limit = defaultLimit
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	rows, err := r.db.QueryContext(ctx, listEntriesSQL, limit)
	if err != nil {
		return nil, errFactory.Wrap(ErrStorageAccess, err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			id          string
			timestamp   int64
			action      string
			code        int64
			entry       Entry
			chargeLimit int64
		)
		if err := rows.Scan(&id, &timestamp, &action, &code, &entry.FanPath, &entry.Mechanism, &chargeLimit); err != nil {
			return nil, errFactory.Wrap(ErrStorageAccess, err)
		}

		entry.ID, err = uuid.Parse(id)
		if err != nil {
			r.logger.Warn().Str("id", id).Err(err).Msg("Skipping history entry with invalid id")
			continue
		}
		entry.Timestamp = time.Unix(0, timestamp)
		entry.Action = Action(action)
		entry.Profile = profile.Decode(byte(code))
		entry.ChargeLimit = uint8(chargeLimit)

		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, errFactory.Wrap(ErrStorageAccess, err)
	}

	return entries, nil
}

func (r *sqliteRepository) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, err := r.db.Exec("PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
		r.logger.Debug().Err(err).Msg("Failed to checkpoint WAL")
	}

	if err := r.db.Close(); err != nil {
		return errors.New().Wrap(ErrStorageClose, err)
	}

	return nil
}
