package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// MonthSummary aggregates one billing month for a center.
type MonthSummary struct {
	Month         time.Time       `json:"month"`
	TotalDue      decimal.Decimal `json:"total_due"`
	TotalPaid     decimal.Decimal `json:"total_paid"`
	PendingRows   int64           `json:"pending_rows"`
	PaidRows      int64           `json:"paid_rows"`
	OverdueRows   int64           `json:"overdue_rows"`
	CancelledRows int64           `json:"cancelled_rows"`
}

// Debtor is a student with unpaid overdue ledger rows.
type Debtor struct {
	StudentID   snowflake.ID    `json:"student_id"`
	StudentName string          `json:"student_name"`
	GroupID     snowflake.ID    `json:"group_id"`
	GroupName   string          `json:"group_name"`
	Months      int64           `json:"months"`
	Outstanding decimal.Decimal `json:"outstanding"`
}
