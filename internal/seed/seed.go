// Package seed bootstraps demo roster data for non-production environments.
package seed

import (
	"context"
	"errors"
	"time"

	profiledomain "github.com/Behzodbek19981230/lms-sub004/internal/billingprofile/domain"
	rosterdomain "github.com/Behzodbek19981230/lms-sub004/internal/roster/domain"
	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const demoCenterID snowflake.ID = 1

var demoGroups = []string{"Math A1", "English B2"}

var demoStudents = []string{
	"Aziza Karimova",
	"Jasur Toshmatov",
	"Malika Yusupova",
}

// EnsureDemoData inserts a small center roster plus billing profiles so a
// fresh install has something to generate against. Idempotent.
func EnsureDemoData(db *gorm.DB) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	node, err := snowflake.NewNode(2)
	if err != nil {
		return err
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&rosterdomain.Student{}).
			Where("center_id = ?", demoCenterID).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return nil
		}

		groups := make([]rosterdomain.Group, 0, len(demoGroups))
		for _, name := range demoGroups {
			groups = append(groups, rosterdomain.Group{
				ID:       node.Generate(),
				CenterID: demoCenterID,
				Name:     name,
			})
		}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&groups).Error; err != nil {
			return err
		}

		joinDate := time.Now().UTC().AddDate(0, -1, 0)
		fee := decimal.NewFromInt(300000)
		for i, name := range demoStudents {
			student := rosterdomain.Student{
				ID:       node.Generate(),
				CenterID: demoCenterID,
				FullName: name,
			}
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&student).Error; err != nil {
				return err
			}
			profile := profiledomain.BillingProfile{
				ID:            node.Generate(),
				CenterID:      demoCenterID,
				StudentID:     student.ID,
				GroupID:       groups[i%len(groups)].ID,
				JoinDate:      time.Date(joinDate.Year(), joinDate.Month(), joinDate.Day(), 0, 0, 0, 0, time.UTC),
				MonthlyAmount: fee,
				DueDay:        profiledomain.DefaultDueDay,
			}
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&profile).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
