package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	// InsertIfAbsent creates the row unless one already exists for its
	// (student, group, billing month) key. Returns whether a row was created;
	// losing a creation race is not an error.
	InsertIfAbsent(ctx context.Context, db *gorm.DB, payment *MonthlyPayment) (bool, error)

	Update(ctx context.Context, db *gorm.DB, payment *MonthlyPayment) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*MonthlyPayment, error)
	List(ctx context.Context, db *gorm.DB, filter ListRequest) ([]MonthlyPayment, error)
	MarkOverdue(ctx context.Context, db *gorm.DB, today time.Time) (int64, error)
}
