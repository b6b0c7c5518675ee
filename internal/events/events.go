package events

// Billing event types consumed by the notification side (bot, dashboard feed).
const (
	EventMonthGenerated   = "billing.month_generated"
	EventPaymentRecorded  = "billing.payment_recorded"
	EventPaymentPaid      = "billing.payment_paid"
	EventPaymentCancelled = "billing.payment_cancelled"
)

// PaymentPayload captures the minimal data a consumer needs to notify about
// a ledger row change.
type PaymentPayload struct {
	PaymentID    string `json:"payment_id"`
	StudentID    string `json:"student_id"`
	GroupID      string `json:"group_id"`
	BillingMonth string `json:"billing_month"`
	Amount       string `json:"amount,omitempty"`
	Status       string `json:"status"`
}

// ToMap converts a payload into an outbox-friendly map.
func (p PaymentPayload) ToMap() map[string]any {
	payload := map[string]any{
		"payment_id":    p.PaymentID,
		"student_id":    p.StudentID,
		"group_id":      p.GroupID,
		"billing_month": p.BillingMonth,
		"status":        p.Status,
	}
	if p.Amount != "" {
		payload["amount"] = p.Amount
	}
	return payload
}
