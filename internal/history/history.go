// Package history keeps a SQLite log of applied profile and charge-limit
// changes.
package history

import (
	"context"

	"codeberg.org/mutker/rogctl/internal/errors"
	"codeberg.org/mutker/rogctl/internal/logger"
)

type service struct {
	repo Repository
	cfg  Config
}

// Service records and lists history entries.
type Service interface {
	Recorder
	Reader
}

// No-op implementation
type noopService struct{}

func NewService(cfg Config, log logger.Logger) (Service, error) {
	errFactory := errors.New()

	if err := cfg.Validate(); err != nil {
		return nil, errFactory.Wrap(ErrInvalidConfig, err)
	}

	// If history is disabled, return a no-op service
	if !cfg.Enabled {
		log.Debug().Msg("History disabled, using no-op recorder")
		return noopService{}, nil
	}

	repo, err := NewRepository(cfg, log)
	if err != nil {
		return nil, err
	}

	return &service{
		repo: repo,
		cfg:  cfg,
	}, nil
}

// Noop returns a recorder that discards everything.
func Noop() Service {
	return noopService{}
}

func (s *service) Record(ctx context.Context, entry *Entry) error {
	errFactory := errors.New()

	if entry == nil {
		return errFactory.New(ErrInvalidEntry)
	}

	select {
	case <-ctx.Done():
		return errFactory.Wrap(ErrOperationTimeout, ctx.Err())
	default:
		return s.repo.Store(ctx, entry)
	}
}

func (s *service) List(ctx context.Context, limit int) ([]Entry, error) {
	return s.repo.List(ctx, limit)
}

func (s *service) Close() error {
	return s.repo.Close()
}

func (noopService) Record(context.Context, *Entry) error {
	return nil
}

func (noopService) List(context.Context, int) ([]Entry, error) {
	return nil, nil
}

func (noopService) Close() error {
	return nil
}
