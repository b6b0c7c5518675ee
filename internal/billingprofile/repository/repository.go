package repository

import (
	"context"
	"errors"
	"time"

	profiledomain "github.com/Behzodbek19981230/lms-sub004/internal/billingprofile/domain"
	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type gormRepository struct{}

// Provide constructs the gorm-backed profile repository.
func Provide() profiledomain.Repository {
	return gormRepository{}
}

func (gormRepository) Insert(ctx context.Context, db *gorm.DB, profile *profiledomain.BillingProfile) error {
	return db.WithContext(ctx).Create(profile).Error
}

func (gormRepository) Update(ctx context.Context, db *gorm.DB, profile *profiledomain.BillingProfile) error {
	return db.WithContext(ctx).Save(profile).Error
}

func (gormRepository) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*profiledomain.BillingProfile, error) {
	var profile profiledomain.BillingProfile
	err := db.WithContext(ctx).First(&profile, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

func (gormRepository) FindByStudentGroup(ctx context.Context, db *gorm.DB, studentID, groupID snowflake.ID) (*profiledomain.BillingProfile, error) {
	var profile profiledomain.BillingProfile
	err := db.WithContext(ctx).
		First(&profile, "student_id = ? AND group_id = ?", studentID, groupID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

func (gormRepository) List(ctx context.Context, db *gorm.DB, filter profiledomain.ListRequest) ([]profiledomain.BillingProfile, error) {
	query := db.WithContext(ctx).Model(&profiledomain.BillingProfile{})
	if filter.CenterID != 0 {
		query = query.Where("center_id = ?", filter.CenterID)
	}
	if filter.GroupID != 0 {
		query = query.Where("group_id = ?", filter.GroupID)
	}
	if filter.StudentID != 0 {
		query = query.Where("student_id = ?", filter.StudentID)
	}
	var profiles []profiledomain.BillingProfile
	if err := query.Order("id").Find(&profiles).Error; err != nil {
		return nil, err
	}
	return profiles, nil
}

// ListActive returns profiles whose enrollment window covers the month
// containing asOf: joined before the next month starts and not left before
// the month starts.
func (gormRepository) ListActive(ctx context.Context, db *gorm.DB, asOf time.Time) ([]profiledomain.BillingProfile, error) {
	monthStart := time.Date(asOf.Year(), asOf.Month(), 1, 0, 0, 0, 0, time.UTC)
	nextMonth := monthStart.AddDate(0, 1, 0)

	var profiles []profiledomain.BillingProfile
	err := db.WithContext(ctx).
		Where("join_date < ?", nextMonth).
		Where("leave_date IS NULL OR leave_date >= ?", monthStart).
		Order("id").
		Find(&profiles).Error
	if err != nil {
		return nil, err
	}
	return profiles, nil
}
