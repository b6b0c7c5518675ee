package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// DefaultDueDay is the center policy applied when a profile does not set one.
const DefaultDueDay = 10

// BillingProfile configures a student's recurring fee for one group. There is
// at most one profile per (student, group) pair.
type BillingProfile struct {
	ID       snowflake.ID `gorm:"primaryKey" json:"id"`
	CenterID snowflake.ID `gorm:"not null;index" json:"center_id"`

	StudentID snowflake.ID `gorm:"not null;uniqueIndex:ux_billing_profiles_student_group,priority:1" json:"student_id"`
	GroupID   snowflake.ID `gorm:"not null;index;uniqueIndex:ux_billing_profiles_student_group,priority:2" json:"group_id"`

	// JoinDate opens the enrollment window; LeaveDate, once set, closes it.
	// Months past the leave month get no further ledger rows.
	JoinDate  time.Time  `gorm:"type:date;not null" json:"join_date"`
	LeaveDate *time.Time `gorm:"type:date" json:"leave_date,omitempty"`

	MonthlyAmount decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"monthly_amount"`
	DueDay        int             `gorm:"type:smallint;not null;default:10" json:"due_day"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (BillingProfile) TableName() string { return "billing_profiles" }

// Validate reports whether the profile can drive payment generation.
func (p BillingProfile) Validate() error {
	if p.DueDay < 1 || p.DueDay > 31 {
		return ErrInvalidDueDay
	}
	if p.MonthlyAmount.IsNegative() {
		return ErrInvalidAmount
	}
	if p.LeaveDate != nil && p.LeaveDate.Before(p.JoinDate) {
		return ErrInvalidEnrollmentWindow
	}
	return nil
}

// ActiveInMonth reports whether the profile's enrollment window overlaps the
// month starting at monthStart.
func (p BillingProfile) ActiveInMonth(monthStart time.Time) bool {
	nextMonth := monthStart.AddDate(0, 1, 0)
	if !p.JoinDate.Before(nextMonth) {
		return false
	}
	if p.LeaveDate != nil && p.LeaveDate.Before(monthStart) {
		return false
	}
	return true
}
