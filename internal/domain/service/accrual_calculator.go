package service

import (
	"errors"
	"time"
)

// Accrual failure modes. Both are consumed inside connection enrichment and
// never escape an aggregation pass.
var (
	ErrNoClaimHistory  = errors.New("no claim history observed")
	ErrFutureTimestamp = errors.New("last claim timestamp is in the future")
)

// Default accrual parameters of the Circles ledger: one CRC per hour,
// capped at a seven-day window, classified against a 24 CRC daily unit.
const (
	DefaultHourlyRate     = 1.0
	DefaultMaxAccrualDays = 7
	DefaultDailyUnit      = 24.0
)

// AccrualParams configures the accrual formula. Zero values fall back to the
// ledger defaults.
type AccrualParams struct {
	HourlyRate     float64
	MaxAccrualDays int
}

// AccrualCalculator computes the CRC amount owed to an account from the time
// elapsed since its last personalMint. Pure computation, no I/O.
type AccrualCalculator struct {
	params AccrualParams
}

// NewAccrualCalculator creates a new accrual calculator
func NewAccrualCalculator(params AccrualParams) *AccrualCalculator {
	if params.HourlyRate <= 0 {
		params.HourlyRate = DefaultHourlyRate
	}
	if params.MaxAccrualDays <= 0 {
		params.MaxAccrualDays = DefaultMaxAccrualDays
	}
	return &AccrualCalculator{params: params}
}

// Accrue maps a last-claim timestamp to the capped accrual amount.
// A nil timestamp fails with ErrNoClaimHistory: an address with no observed
// claim event never gets a guessed accrual. A timestamp past now fails with
// ErrFutureTimestamp: the amount is never negative.
func (c *AccrualCalculator) Accrue(lastClaim *time.Time, now time.Time) (float64, error) {
	if lastClaim == nil {
		return 0, ErrNoClaimHistory
	}
	if lastClaim.After(now) {
		return 0, ErrFutureTimestamp
	}

	hours := now.Sub(*lastClaim).Hours()
	maxHours := float64(c.params.MaxAccrualDays) * 24
	if hours > maxHours {
		hours = maxHours
	}

	return hours * c.params.HourlyRate, nil
}

// HourlyRate returns the configured accrual rate.
func (c *AccrualCalculator) HourlyRate() float64 {
	return c.params.HourlyRate
}
