package repository

import (
	"context"
	"errors"
	"time"

	ledgerdomain "github.com/Behzodbek19981230/lms-sub004/internal/ledger/domain"
	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type gormRepository struct{}

// Provide constructs the gorm-backed ledger repository.
func Provide() ledgerdomain.Repository {
	return gormRepository{}
}

// InsertIfAbsent relies on the unique (student_id, group_id, billing_month)
// key: concurrent generator runs racing on the same month leave exactly one
// row, and the loser no-ops.
func (gormRepository) InsertIfAbsent(ctx context.Context, db *gorm.DB, payment *ledgerdomain.MonthlyPayment) (bool, error) {
	result := db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "student_id"},
			{Name: "group_id"},
			{Name: "billing_month"},
		},
		DoNothing: true,
	}).Create(payment)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (gormRepository) Update(ctx context.Context, db *gorm.DB, payment *ledgerdomain.MonthlyPayment) error {
	return db.WithContext(ctx).Save(payment).Error
}

func (gormRepository) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*ledgerdomain.MonthlyPayment, error) {
	var payment ledgerdomain.MonthlyPayment
	err := db.WithContext(ctx).First(&payment, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

func (gormRepository) List(ctx context.Context, db *gorm.DB, filter ledgerdomain.ListRequest) ([]ledgerdomain.MonthlyPayment, error) {
	query := db.WithContext(ctx).Model(&ledgerdomain.MonthlyPayment{})
	if filter.CenterID != 0 {
		query = query.Where("center_id = ?", filter.CenterID)
	}
	if filter.StudentID != 0 {
		query = query.Where("student_id = ?", filter.StudentID)
	}
	if filter.GroupID != 0 {
		query = query.Where("group_id = ?", filter.GroupID)
	}
	if !filter.Month.IsZero() {
		query = query.Where("billing_month = ?", ledgerdomain.MonthStart(filter.Month))
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	var payments []ledgerdomain.MonthlyPayment
	if err := query.Order("billing_month DESC, id").Find(&payments).Error; err != nil {
		return nil, err
	}
	return payments, nil
}

// MarkOverdue is the scheduled form of status derivation. The guard repeats
// the pure rule: only pending rows past their due date flip.
func (gormRepository) MarkOverdue(ctx context.Context, db *gorm.DB, today time.Time) (int64, error) {
	day := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	result := db.WithContext(ctx).Model(&ledgerdomain.MonthlyPayment{}).
		Where("status = ?", ledgerdomain.PaymentStatusPending).
		Where("due_date < ?", day).
		Updates(map[string]any{
			"status":     ledgerdomain.PaymentStatusOverdue,
			"updated_at": today.UTC(),
		})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}
