package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/SscSPs/ledgerbook/internal/core/domain"
	portssvc "github.com/SscSPs/ledgerbook/internal/core/ports/services"
	"github.com/SscSPs/ledgerbook/internal/middleware"
)

// BaseService provides common functionality for all services
type BaseService struct {
	Authorizer portssvc.Authorizer
	Settings   domain.LedgerSettings
	Now        func() time.Time
}

// ServiceOption configures the BaseService embedded in every ledger service.
type ServiceOption func(*BaseService)

// WithAuthorizer replaces the default role-based authorizer.
func WithAuthorizer(authorizer portssvc.Authorizer) ServiceOption {
	return func(s *BaseService) {
		s.Authorizer = authorizer
	}
}

// WithLedgerSettings sets the tolerance and numbering settings.
func WithLedgerSettings(settings domain.LedgerSettings) ServiceOption {
	return func(s *BaseService) {
		s.Settings = settings
	}
}

// WithClock sets the time source used for audit fields and posting timestamps.
func WithClock(now func() time.Time) ServiceOption {
	return func(s *BaseService) {
		s.Now = now
	}
}

func newBaseService(opts ...ServiceOption) BaseService {
	base := BaseService{
		Authorizer: NewRoleAuthorizer(),
		Settings:   domain.DefaultLedgerSettings(),
		Now:        time.Now,
	}
	for _, opt := range opts {
		opt(&base)
	}
	return base
}

// GetLogger gets the logger from context or returns a default one
func (s *BaseService) GetLogger(ctx context.Context) *slog.Logger {
	logger := middleware.GetLoggerFromCtx(ctx)
	if logger == nil {
		return slog.Default()
	}
	return logger
}

// LogError logs an error with consistent formatting
func (s *BaseService) LogError(ctx context.Context, err error, msg string, keyvals ...any) {
	logger := s.GetLogger(ctx)
	args := make([]any, 0, len(keyvals)+1)
	args = append(args, slog.String("error", err.Error()))
	args = append(args, keyvals...)
	logger.Error(msg, args...)
}

// LogInfo logs an info message with consistent formatting
func (s *BaseService) LogInfo(ctx context.Context, msg string, keyvals ...any) {
	logger := s.GetLogger(ctx)
	logger.Info(msg, keyvals...)
}

// LogDebug logs a debug message with consistent formatting
func (s *BaseService) LogDebug(ctx context.Context, msg string, keyvals ...any) {
	logger := s.GetLogger(ctx)
	logger.Debug(msg, keyvals...)
}

// AuthorizeActor checks that the actor holds the permission.
func (s *BaseService) AuthorizeActor(ctx context.Context, actor domain.Actor, perm domain.Permission) error {
	if err := s.Authorizer.Authorize(ctx, actor, perm); err != nil {
		s.GetLogger(ctx).Warn("Authorization failed",
			slog.String("actor_id", actor.ID),
			slog.String("role", string(actor.Role)),
			slog.String("permission", string(perm)))
		return err
	}
	return nil
}

func (s *BaseService) now() time.Time {
	return s.Now().UTC()
}

// today returns the current UTC calendar date at midnight.
func (s *BaseService) today() time.Time {
	return truncateToDate(s.now())
}

func truncateToDate(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
