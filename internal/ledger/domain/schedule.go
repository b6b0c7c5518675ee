package domain

import "time"

// MonthStart normalizes t to the first day of its calendar month, UTC.
func MonthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// DueDateFor places dueDay inside the month starting at monthStart. A due day
// past the month's last day clamps to the last day, so dueDay=31 in February
// lands on Feb 28 (or 29).
func DueDateFor(monthStart time.Time, dueDay int) time.Time {
	start := MonthStart(monthStart)
	if last := DaysInMonth(start); dueDay > last {
		dueDay = last
	}
	if dueDay < 1 {
		dueDay = 1
	}
	return start.AddDate(0, 0, dueDay-1)
}

// DaysInMonth returns the number of days in the month containing t.
func DaysInMonth(t time.Time) int {
	return time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// DeriveStatus recomputes a payment's status from its amounts and due date.
// Pure: the result depends only on the row and "today". Cancelled is
// terminal; full payment wins over the due date; past-due unpaid rows are
// overdue; everything else is pending.
func DeriveStatus(p MonthlyPayment, today time.Time) PaymentStatus {
	if p.Status == PaymentStatusCancelled {
		return PaymentStatusCancelled
	}
	if p.AmountPaid.GreaterThanOrEqual(p.AmountDue) {
		return PaymentStatusPaid
	}
	day := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	if day.After(p.DueDate) {
		return PaymentStatusOverdue
	}
	return PaymentStatusPending
}
