package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestMonthStartNormalizes(t *testing.T) {
	got := MonthStart(time.Date(2026, time.March, 17, 14, 30, 0, 0, time.UTC))
	if !got.Equal(date(2026, time.March, 1)) {
		t.Fatalf("expected 2026-03-01, got %v", got)
	}
}

func TestDueDateFor(t *testing.T) {
	cases := []struct {
		name   string
		month  time.Time
		dueDay int
		want   time.Time
	}{
		{"regular day", date(2026, time.January, 1), 10, date(2026, time.January, 10)},
		{"first day", date(2026, time.January, 1), 1, date(2026, time.January, 1)},
		{"clamped in 30-day month", date(2026, time.April, 1), 31, date(2026, time.April, 30)},
		{"clamped in february", date(2026, time.February, 1), 31, date(2026, time.February, 28)},
		{"clamped in leap february", date(2028, time.February, 1), 31, date(2028, time.February, 29)},
	}
	for _, tc := range cases {
		if got := DueDateFor(tc.month, tc.dueDay); !got.Equal(tc.want) {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, got)
		}
	}
}

func TestDeriveStatusPaidWinsOverDueDate(t *testing.T) {
	payment := MonthlyPayment{
		DueDate:    date(2026, time.January, 10),
		AmountDue:  decimal.NewFromInt(300000),
		AmountPaid: decimal.NewFromInt(300000),
		Status:     PaymentStatusOverdue,
	}
	if got := DeriveStatus(payment, date(2026, time.March, 1)); got != PaymentStatusPaid {
		t.Fatalf("expected paid, got %s", got)
	}
}

func TestDeriveStatusOverdueAfterDueDate(t *testing.T) {
	payment := MonthlyPayment{
		DueDate:    date(2026, time.January, 10),
		AmountDue:  decimal.NewFromInt(300000),
		AmountPaid: decimal.NewFromInt(100000),
		Status:     PaymentStatusPending,
	}
	if got := DeriveStatus(payment, date(2026, time.January, 11)); got != PaymentStatusOverdue {
		t.Fatalf("expected overdue, got %s", got)
	}
}

func TestDeriveStatusPendingOnDueDate(t *testing.T) {
	payment := MonthlyPayment{
		DueDate:    date(2026, time.January, 10),
		AmountDue:  decimal.NewFromInt(300000),
		AmountPaid: decimal.Zero,
		Status:     PaymentStatusPending,
	}
	if got := DeriveStatus(payment, date(2026, time.January, 10)); got != PaymentStatusPending {
		t.Fatalf("expected pending on the due date itself, got %s", got)
	}
	if got := DeriveStatus(payment, date(2026, time.January, 3)); got != PaymentStatusPending {
		t.Fatalf("expected pending before due date, got %s", got)
	}
}

func TestDeriveStatusCancelledIsTerminal(t *testing.T) {
	payment := MonthlyPayment{
		DueDate:    date(2026, time.January, 10),
		AmountDue:  decimal.NewFromInt(300000),
		AmountPaid: decimal.NewFromInt(300000),
		Status:     PaymentStatusCancelled,
	}
	if got := DeriveStatus(payment, date(2026, time.June, 1)); got != PaymentStatusCancelled {
		t.Fatalf("expected cancelled to stay cancelled, got %s", got)
	}
}

func TestDeriveStatusOverpaymentIsPaid(t *testing.T) {
	payment := MonthlyPayment{
		DueDate:    date(2026, time.January, 10),
		AmountDue:  decimal.NewFromInt(300000),
		AmountPaid: decimal.NewFromInt(350000),
	}
	if got := DeriveStatus(payment, date(2026, time.January, 1)); got != PaymentStatusPaid {
		t.Fatalf("expected paid, got %s", got)
	}
}
