package domain

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

type ListRequest struct {
	CenterID  snowflake.ID
	StudentID snowflake.ID
	GroupID   snowflake.ID
	// Month, when set, is normalized to its first day before matching.
	Month  time.Time
	Status PaymentStatus
}

// Service mutates and reads the payment ledger. Recording and cancelling are
// the only writers to existing rows; creation belongs to the generator.
type Service interface {
	GetByID(ctx context.Context, id snowflake.ID) (*MonthlyPayment, error)
	List(ctx context.Context, req ListRequest) ([]MonthlyPayment, error)

	// RecordPayment adds amount to the row's collected total, stamps
	// last_payment_at, stamps paid_at the first time the paid threshold is
	// crossed, and re-derives status.
	RecordPayment(ctx context.Context, id snowflake.ID, amount decimal.Decimal, at time.Time) (*MonthlyPayment, error)

	// Cancel marks the row cancelled. Terminal: cancelled rows never change
	// status again.
	Cancel(ctx context.Context, id snowflake.ID) (*MonthlyPayment, error)

	// SweepOverdue flips pending rows whose due date has passed to overdue
	// and returns how many rows changed.
	SweepOverdue(ctx context.Context, today time.Time) (int64, error)
}

var (
	ErrPaymentNotFound  = errors.New("payment_not_found")
	ErrInvalidPaymentID = errors.New("invalid_payment_id")
	ErrInvalidAmount    = errors.New("invalid_amount")
	ErrPaymentCancelled = errors.New("payment_cancelled")
)

// ParseID parses a ledger row id from its string form.
func ParseID(raw string) (snowflake.ID, error) {
	return snowflake.ParseString(strings.TrimSpace(raw))
}

// ParseMonth parses "2006-01" into the month's first day, UTC.
func ParseMonth(raw string) (time.Time, error) {
	return time.Parse("2006-01", strings.TrimSpace(raw))
}
