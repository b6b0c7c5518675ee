package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, profile *BillingProfile) error
	Update(ctx context.Context, db *gorm.DB, profile *BillingProfile) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*BillingProfile, error)
	FindByStudentGroup(ctx context.Context, db *gorm.DB, studentID, groupID snowflake.ID) (*BillingProfile, error)
	List(ctx context.Context, db *gorm.DB, filter ListRequest) ([]BillingProfile, error)
	ListActive(ctx context.Context, db *gorm.DB, asOf time.Time) ([]BillingProfile, error)
}
