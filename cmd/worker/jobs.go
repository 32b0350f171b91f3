package main

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"

	"tradedesk/internal/domain/stock"
	"tradedesk/pkg/logger"
)

// StockScanner lists balances.
type StockScanner interface {
	AvailableStock(ctx context.Context, filter stock.Filter) ([]stock.Balance, error)
}

// OrderScanner logs overdrawn PO lines.
type OrderScanner interface {
	ScanOverdrawn(ctx context.Context, pageSize int) (int, error)
}

// ExpiredCleaner deletes expired rows and reports how many.
type ExpiredCleaner interface {
	CleanupExpired(ctx context.Context) (int64, error)
}

// TokenCleaner deletes expired refresh tokens.
type TokenCleaner interface {
	CleanupTokens(ctx context.Context) (int64, error)
}

// Jobs are the periodic tasks of the worker.
type Jobs struct {
	Stock       StockScanner
	Orders      OrderScanner
	Idempotency ExpiredCleaner
	Tokens      TokenCleaner
}

// IntegrityReport counts the anomalies one scan found. Nothing is corrected.
type IntegrityReport struct {
	NegativeStock  int
	OverdrawnLines int
}

// ScanIntegrity logs negative stock and overdrawn PO lines.
func (j *Jobs) ScanIntegrity(ctx context.Context) (IntegrityReport, error) {
	var report IntegrityReport

	balances, err := j.Stock.AvailableStock(ctx, stock.Filter{OnlyNegative: true})
	if err != nil {
		return report, fmt.Errorf("scan stock: %w", err)
	}
	report.NegativeStock = len(balances)

	if report.OverdrawnLines, err = j.Orders.ScanOverdrawn(ctx, 200); err != nil {
		return report, fmt.Errorf("scan purchase orders: %w", err)
	}
	return report, nil
}

// Schedules are cron specs in the standard five-field format.
type Schedules struct {
	Integrity          string
	IdempotencyCleanup string
	TokenCleanup       string
}

// NewScheduler registers every job. Runs of the same job never overlap.
func NewScheduler(ctx context.Context, log *logger.Logger, jobs *Jobs, s Schedules) (*cron.Cron, error) {
	clog := cronLogger{log: log}
	c := cron.New(
		cron.WithLogger(clog),
		cron.WithChain(cron.Recover(clog), cron.SkipIfStillRunning(clog)),
	)

	entries := []struct {
		name string
		spec string
		run  func(ctx context.Context) error
	}{
		{"integrity_scan", s.Integrity, func(ctx context.Context) error {
			report, err := jobs.ScanIntegrity(ctx)
			if err != nil {
				return err
			}
			if report.NegativeStock > 0 || report.OverdrawnLines > 0 {
				logger.Warn(ctx, "integrity scan found anomalies",
					"negative_stock", report.NegativeStock,
					"overdrawn_lines", report.OverdrawnLines)
			}
			return nil
		}},
		{"idempotency_cleanup", s.IdempotencyCleanup, func(ctx context.Context) error {
			n, err := jobs.Idempotency.CleanupExpired(ctx)
			if n > 0 {
				logger.Info(ctx, "expired idempotency keys removed", "count", n)
			}
			return err
		}},
		{"token_cleanup", s.TokenCleanup, func(ctx context.Context) error {
			n, err := jobs.Tokens.CleanupTokens(ctx)
			if n > 0 {
				logger.Info(ctx, "expired refresh tokens removed", "count", n)
			}
			return err
		}},
	}

	for _, e := range entries {
		if e.spec == "" {
			continue
		}
		if _, err := c.AddFunc(e.spec, func() {
			jobCtx := logger.WithLogger(ctx, log.With("job", e.name))
			if err := e.run(jobCtx); err != nil {
				logger.Error(jobCtx, "job failed", "error", err)
			}
		}); err != nil {
			return nil, fmt.Errorf("schedule %s %q: %w", e.name, e.spec, err)
		}
	}
	return c, nil
}

// cronLogger adapts the zap logger to cron.Logger.
type cronLogger struct {
	log *logger.Logger
}

// Info logs cron's routine messages at debug level.
func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.log.Debugw(msg, keysAndValues...)
}

// Error logs a cron failure, such as a recovered panic.
func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.log.Errorw(msg, append(keysAndValues, "error", err)...)
}
