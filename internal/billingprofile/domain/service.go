package domain

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

type CreateRequest struct {
	CenterID      snowflake.ID
	StudentID     snowflake.ID
	GroupID       snowflake.ID
	JoinDate      time.Time
	MonthlyAmount decimal.Decimal
	// DueDay of zero takes the configured center default.
	DueDay int
}

type UpdateRequest struct {
	ID            snowflake.ID
	MonthlyAmount *decimal.Decimal
	DueDay        *int
}

type ListRequest struct {
	CenterID  snowflake.ID
	GroupID   snowflake.ID
	StudentID snowflake.ID
}

// Service is the billing profile store. The generator depends on ListActive:
// every profile whose enrollment window covers the month containing asOf.
type Service interface {
	Create(ctx context.Context, req CreateRequest) (*BillingProfile, error)
	Update(ctx context.Context, req UpdateRequest) (*BillingProfile, error)
	Close(ctx context.Context, id snowflake.ID, leaveDate time.Time) (*BillingProfile, error)
	GetByID(ctx context.Context, id snowflake.ID) (*BillingProfile, error)
	List(ctx context.Context, req ListRequest) ([]BillingProfile, error)
	ListActive(ctx context.Context, asOf time.Time) ([]BillingProfile, error)
}

var (
	ErrInvalidStudent          = errors.New("invalid_student")
	ErrInvalidGroup            = errors.New("invalid_group")
	ErrInvalidCenter           = errors.New("invalid_center")
	ErrInvalidJoinDate         = errors.New("invalid_join_date")
	ErrInvalidDueDay           = errors.New("invalid_due_day")
	ErrInvalidAmount           = errors.New("invalid_amount")
	ErrInvalidEnrollmentWindow = errors.New("invalid_enrollment_window")
	ErrProfileNotFound         = errors.New("profile_not_found")
	ErrProfileExists           = errors.New("profile_exists")
	ErrDanglingReference       = errors.New("dangling_reference")
)

// ParseID parses a profile id from its string form.
func ParseID(raw string) (snowflake.ID, error) {
	return snowflake.ParseString(strings.TrimSpace(raw))
}
