// Package store persists applications, their AI analysis and quiz outcomes.
package store

import (
	"context"
	"fmt"
	"time"

	"hirescore/internal/config"
	"hirescore/internal/errors"
	"hirescore/internal/types"
)

// Store is the persistence contract used by the application service.
// Writes that touch several records are all-or-nothing.
type Store interface {
	// CreateApplication saves the application row and its analysis together
	CreateApplication(ctx context.Context, app *types.Application) error
	// GetApplication returns APPLICATION_NOT_FOUND for unknown ids
	GetApplication(ctx context.Context, id string) (*types.Application, error)
	// SaveQuizResult records the single quiz submission of an application.
	// A second call returns QUIZ_ALREADY_SUBMITTED.
	SaveQuizResult(ctx context.Context, id string, quiz types.QuizResult, verification types.SkillVerification, at time.Time) error
	Ping(ctx context.Context) error
	Close()
}

// Open returns the store selected by cfg.Driver
func Open(ctx context.Context, cfg config.StoreConfig, logger *errors.Logger) (Store, error) {
	switch cfg.Driver {
	case "", "memory":
		logger.Info("Using in-memory application store")
		return NewMemoryStore(), nil
	case "postgres":
		s, err := NewPostgresStore(ctx, cfg.DatabaseURL, cfg.MaxConns)
		if err != nil {
			return nil, err
		}
		if cfg.Migrate {
			if err := s.Migrate(ctx); err != nil {
				s.Close()
				return nil, err
			}
			logger.Info("Database schema applied")
		}
		logger.Info("Using Postgres application store", "max_conns", cfg.MaxConns)
		return s, nil
	default:
		return nil, errors.NewConfigError(errors.ErrCodeInvalidConfig,
			fmt.Sprintf("unsupported store driver: %s", cfg.Driver), nil)
	}
}

func notFound(id string) error {
	return errors.NewNotFoundError(errors.ErrCodeApplicationNotFound,
		fmt.Sprintf("application %s not found", id), nil).WithContext("application_id", id)
}

func alreadySubmitted(id string) error {
	return errors.NewConflictError(errors.ErrCodeQuizAlreadySubmitted,
		"quiz already submitted for this application", nil).WithContext("application_id", id)
}

func dbError(message string, err error) error {
	return errors.NewStorageError(errors.ErrCodeDatabaseFailed, message, err)
}
