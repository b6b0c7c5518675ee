package service

import (
	"context"
	"time"

	"github.com/Behzodbek19981230/lms-sub004/internal/clock"
	"github.com/Behzodbek19981230/lms-sub004/internal/events"
	ledgerdomain "github.com/Behzodbek19981230/lms-sub004/internal/ledger/domain"
	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB     *gorm.DB
	Log    *zap.Logger
	Repo   ledgerdomain.Repository
	Outbox *events.Outbox
	Clock  clock.Clock
}

type Service struct {
	db     *gorm.DB
	log    *zap.Logger
	repo   ledgerdomain.Repository
	outbox *events.Outbox
	clock  clock.Clock
}

func NewService(p Params) ledgerdomain.Service {
	return &Service{
		db:     p.DB,
		log:    p.Log.Named("ledger.service"),
		repo:   p.Repo,
		outbox: p.Outbox,
		clock:  p.Clock,
	}
}

func (s *Service) GetByID(ctx context.Context, id snowflake.ID) (*ledgerdomain.MonthlyPayment, error) {
	payment, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if payment == nil {
		return nil, ledgerdomain.ErrPaymentNotFound
	}
	return payment, nil
}

func (s *Service) List(ctx context.Context, req ledgerdomain.ListRequest) ([]ledgerdomain.MonthlyPayment, error) {
	return s.repo.List(ctx, s.db, req)
}

func (s *Service) RecordPayment(ctx context.Context, id snowflake.ID, amount decimal.Decimal, at time.Time) (*ledgerdomain.MonthlyPayment, error) {
	if !amount.IsPositive() {
		return nil, ledgerdomain.ErrInvalidAmount
	}
	if at.IsZero() {
		at = s.clock.Now()
	}

	var payment *ledgerdomain.MonthlyPayment
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		found, err := s.repo.FindByID(ctx, tx, id)
		if err != nil {
			return err
		}
		if found == nil {
			return ledgerdomain.ErrPaymentNotFound
		}
		if found.Status == ledgerdomain.PaymentStatusCancelled {
			return ledgerdomain.ErrPaymentCancelled
		}

		wasPaid := found.AmountPaid.GreaterThanOrEqual(found.AmountDue)
		found.AmountPaid = found.AmountPaid.Add(amount)
		found.LastPaymentAt = &at
		found.Status = ledgerdomain.DeriveStatus(*found, s.clock.Now())
		if !wasPaid && found.Status == ledgerdomain.PaymentStatusPaid && found.PaidAt == nil {
			// paid_at records the payment event that crossed the threshold.
			found.PaidAt = &at
		}
		found.UpdatedAt = s.clock.Now()
		if err := s.repo.Update(ctx, tx, found); err != nil {
			return err
		}

		eventType := events.EventPaymentRecorded
		if !wasPaid && found.Status == ledgerdomain.PaymentStatusPaid {
			eventType = events.EventPaymentPaid
		}
		if err := s.publishTx(ctx, tx, eventType, found, amount); err != nil {
			return err
		}

		payment = found
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("payment recorded",
		zap.String("payment_id", id.String()),
		zap.String("amount", amount.String()),
		zap.String("status", string(payment.Status)),
	)
	return payment, nil
}

func (s *Service) Cancel(ctx context.Context, id snowflake.ID) (*ledgerdomain.MonthlyPayment, error) {
	var payment *ledgerdomain.MonthlyPayment
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		found, err := s.repo.FindByID(ctx, tx, id)
		if err != nil {
			return err
		}
		if found == nil {
			return ledgerdomain.ErrPaymentNotFound
		}
		if found.Status == ledgerdomain.PaymentStatusCancelled {
			payment = found
			return nil
		}

		found.Status = ledgerdomain.PaymentStatusCancelled
		found.UpdatedAt = s.clock.Now()
		if err := s.repo.Update(ctx, tx, found); err != nil {
			return err
		}
		if err := s.publishTx(ctx, tx, events.EventPaymentCancelled, found, decimal.Zero); err != nil {
			return err
		}
		payment = found
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("payment cancelled", zap.String("payment_id", id.String()))
	return payment, nil
}

func (s *Service) SweepOverdue(ctx context.Context, today time.Time) (int64, error) {
	if today.IsZero() {
		today = s.clock.Now()
	}
	flipped, err := s.repo.MarkOverdue(ctx, s.db, today)
	if err != nil {
		return 0, err
	}
	if flipped > 0 {
		s.log.Info("overdue sweep", zap.Int64("flipped", flipped))
	}
	return flipped, nil
}

func (s *Service) publishTx(ctx context.Context, tx *gorm.DB, eventType string, p *ledgerdomain.MonthlyPayment, amount decimal.Decimal) error {
	if s.outbox == nil {
		return nil
	}
	payload := events.PaymentPayload{
		PaymentID:    p.ID.String(),
		StudentID:    p.StudentID.String(),
		GroupID:      p.GroupID.String(),
		BillingMonth: p.BillingMonth.Format("2006-01"),
		Status:       string(p.Status),
	}
	if !amount.IsZero() {
		payload.Amount = amount.String()
	}
	return s.outbox.PublishTx(ctx, tx, events.Event{
		CenterID: p.CenterID,
		Type:     eventType,
		Payload:  payload.ToMap(),
	})
}
