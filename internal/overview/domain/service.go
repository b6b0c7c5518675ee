package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
)

// Service exposes the billing overview read surface for the dashboard.
type Service interface {
	MonthSummary(ctx context.Context, centerID snowflake.ID, month time.Time) (MonthSummary, error)
	ListDebtors(ctx context.Context, centerID snowflake.ID, limit int) ([]Debtor, error)
}

var ErrInvalidCenter = errors.New("invalid_center")
