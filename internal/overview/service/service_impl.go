package service

import (
	"context"
	"fmt"
	"time"

	"github.com/Behzodbek19981230/lms-sub004/internal/cache"
	ledgerdomain "github.com/Behzodbek19981230/lms-sub004/internal/ledger/domain"
	overviewdomain "github.com/Behzodbek19981230/lms-sub004/internal/overview/domain"
	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const summaryTTL = 30 * time.Second

type Params struct {
	fx.In

	DB  *gorm.DB
	Log *zap.Logger
}

type Service struct {
	db  *gorm.DB
	log *zap.Logger

	summaries *cache.TTLCache[string, overviewdomain.MonthSummary]
}

func NewService(p Params) overviewdomain.Service {
	return &Service{
		db:        p.DB,
		log:       p.Log.Named("overview.service"),
		summaries: cache.NewTTLCache[string, overviewdomain.MonthSummary](),
	}
}

type summaryRow struct {
	Status    string
	RowCount  int64
	TotalDue  decimal.Decimal
	TotalPaid decimal.Decimal
}

func (s *Service) MonthSummary(ctx context.Context, centerID snowflake.ID, month time.Time) (overviewdomain.MonthSummary, error) {
	if centerID == 0 {
		return overviewdomain.MonthSummary{}, overviewdomain.ErrInvalidCenter
	}
	monthStart := ledgerdomain.MonthStart(month)

	key := fmt.Sprintf("%d:%s", centerID, monthStart.Format("2006-01"))
	if cached, ok := s.summaries.Get(key); ok {
		return cached, nil
	}

	var rows []summaryRow
	err := s.db.WithContext(ctx).Raw(
		`SELECT status, COUNT(1) AS row_count, SUM(amount_due) AS total_due, SUM(amount_paid) AS total_paid
		 FROM monthly_payments
		 WHERE center_id = ? AND billing_month = ?
		 GROUP BY status`,
		centerID,
		monthStart,
	).Scan(&rows).Error
	if err != nil {
		return overviewdomain.MonthSummary{}, err
	}

	summary := overviewdomain.MonthSummary{
		Month:     monthStart,
		TotalDue:  decimal.Zero,
		TotalPaid: decimal.Zero,
	}
	for _, row := range rows {
		summary.TotalDue = summary.TotalDue.Add(row.TotalDue)
		summary.TotalPaid = summary.TotalPaid.Add(row.TotalPaid)
		switch ledgerdomain.PaymentStatus(row.Status) {
		case ledgerdomain.PaymentStatusPending:
			summary.PendingRows = row.RowCount
		case ledgerdomain.PaymentStatusPaid:
			summary.PaidRows = row.RowCount
		case ledgerdomain.PaymentStatusOverdue:
			summary.OverdueRows = row.RowCount
		case ledgerdomain.PaymentStatusCancelled:
			summary.CancelledRows = row.RowCount
		}
	}

	s.summaries.Set(key, summary, summaryTTL)
	return summary, nil
}

func (s *Service) ListDebtors(ctx context.Context, centerID snowflake.ID, limit int) ([]overviewdomain.Debtor, error) {
	if centerID == 0 {
		return nil, overviewdomain.ErrInvalidCenter
	}
	if limit <= 0 {
		limit = 20
	}

	var debtors []overviewdomain.Debtor
	err := s.db.WithContext(ctx).Raw(
		`SELECT mp.student_id,
		        st.full_name AS student_name,
		        mp.group_id,
		        sg.name AS group_name,
		        COUNT(1) AS months,
		        SUM(mp.amount_due - mp.amount_paid) AS outstanding
		 FROM monthly_payments mp
		 JOIN students st ON st.id = mp.student_id
		 JOIN study_groups sg ON sg.id = mp.group_id
		 WHERE mp.center_id = ? AND mp.status = ?
		 GROUP BY mp.student_id, st.full_name, mp.group_id, sg.name
		 ORDER BY outstanding DESC
		 LIMIT ?`,
		centerID,
		ledgerdomain.PaymentStatusOverdue,
		limit,
	).Scan(&debtors).Error
	if err != nil {
		return nil, err
	}
	return debtors, nil
}
