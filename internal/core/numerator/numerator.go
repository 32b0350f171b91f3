// Package numerator defines how voucher numbers are generated.
// The PostgreSQL implementation lives in infrastructure/numerator.
package numerator

import (
	"context"
	"time"
)

// Strategy selects how numbers are drawn from the sequence table.
type Strategy int

const (
	// StrategyStrict draws every number in its own UPSERT. No gaps.
	StrategyStrict Strategy = iota

	// StrategyCached reserves ranges in memory. Restarts leave gaps.
	StrategyCached
)

// Options for a single GetNextNumber call.
type Options struct {
	Strategy Strategy
	// RangeSize is the reservation size for StrategyCached (default 50).
	RangeSize int64
}

// DefaultOptions numbers without gaps.
func DefaultOptions() *Options {
	return &Options{Strategy: StrategyStrict}
}

// Config describes the number format of one voucher type.
type Config struct {
	Prefix      string
	IncludeYear bool
	PadWidth    int
	// ResetPeriod is "year", "month" or "never".
	ResetPeriod string
}

// DefaultConfig yields PREFIX-YYYY-00001 numbers restarting every year.
func DefaultConfig(prefix string) Config {
	return Config{
		Prefix:      prefix,
		IncludeYear: true,
		PadWidth:    5,
		ResetPeriod: "year",
	}
}

// Generator issues voucher numbers.
type Generator interface {
	GetNextNumber(ctx context.Context, cfg Config, opts *Options, period time.Time) (string, error)
	// SetNextNumber moves the sequence, e.g. after importing legacy vouchers.
	SetNextNumber(ctx context.Context, cfg Config, period time.Time, value int64) error
}
