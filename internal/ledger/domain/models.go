// Package domain contains the monthly payment ledger: one row per student,
// group and billing month, tracking what is owed and what was collected.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// PaymentStatus tracks a ledger row through its lifecycle.
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusPaid      PaymentStatus = "paid"
	PaymentStatusOverdue   PaymentStatus = "overdue"
	PaymentStatusCancelled PaymentStatus = "cancelled"
)

// MonthlyPayment is one billing obligation. Rows are created by the cycle
// generator, mutated only by payment recording and status recomputation, and
// removed only by roster cascades.
type MonthlyPayment struct {
	ID       snowflake.ID `gorm:"primaryKey" json:"id"`
	CenterID snowflake.ID `gorm:"not null;index:ix_monthly_payments_center_month,priority:1" json:"center_id"`

	StudentID snowflake.ID `gorm:"not null;uniqueIndex:ux_monthly_payments_month,priority:1" json:"student_id"`
	GroupID   snowflake.ID `gorm:"not null;uniqueIndex:ux_monthly_payments_month,priority:2" json:"group_id"`

	// BillingMonth is normalized to the first day of the covered month.
	BillingMonth time.Time `gorm:"type:date;not null;uniqueIndex:ux_monthly_payments_month,priority:3;index:ix_monthly_payments_center_month,priority:2" json:"billing_month"`
	DueDate      time.Time `gorm:"type:date;not null;index" json:"due_date"`

	AmountDue  decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"amount_due"`
	AmountPaid decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"amount_paid"`

	Status PaymentStatus `gorm:"type:text;not null;default:'pending';index" json:"status"`

	LastPaymentAt *time.Time `gorm:"column:last_payment_at" json:"last_payment_at,omitempty"`
	PaidAt        *time.Time `gorm:"column:paid_at" json:"paid_at,omitempty"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (MonthlyPayment) TableName() string { return "monthly_payments" }
