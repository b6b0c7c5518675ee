package service

import (
	"context"
	"strings"
	"time"

	profiledomain "github.com/Behzodbek19981230/lms-sub004/internal/billingprofile/domain"
	"github.com/Behzodbek19981230/lms-sub004/internal/clock"
	"github.com/Behzodbek19981230/lms-sub004/internal/config"
	rosterdomain "github.com/Behzodbek19981230/lms-sub004/internal/roster/domain"
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Repo  profiledomain.Repository
	Cfg   config.Config
	Clock clock.Clock
}

type Service struct {
	db            *gorm.DB
	log           *zap.Logger
	genID         *snowflake.Node
	repo          profiledomain.Repository
	clock         clock.Clock
	defaultDueDay int
}

func NewService(p Params) profiledomain.Service {
	dueDay := p.Cfg.DefaultDueDay
	if dueDay < 1 || dueDay > 31 {
		dueDay = profiledomain.DefaultDueDay
	}
	return &Service{
		db:            p.DB,
		log:           p.Log.Named("billingprofile.service"),
		genID:         p.GenID,
		repo:          p.Repo,
		clock:         p.Clock,
		defaultDueDay: dueDay,
	}
}

func (s *Service) Create(ctx context.Context, req profiledomain.CreateRequest) (*profiledomain.BillingProfile, error) {
	if req.CenterID == 0 {
		return nil, profiledomain.ErrInvalidCenter
	}
	if req.StudentID == 0 {
		return nil, profiledomain.ErrInvalidStudent
	}
	if req.GroupID == 0 {
		return nil, profiledomain.ErrInvalidGroup
	}
	if req.JoinDate.IsZero() {
		return nil, profiledomain.ErrInvalidJoinDate
	}

	dueDay := req.DueDay
	if dueDay == 0 {
		dueDay = s.defaultDueDay
	}

	profile := &profiledomain.BillingProfile{
		ID:            s.genID.Generate(),
		CenterID:      req.CenterID,
		StudentID:     req.StudentID,
		GroupID:       req.GroupID,
		JoinDate:      truncateToDate(req.JoinDate),
		MonthlyAmount: req.MonthlyAmount,
		DueDay:        dueDay,
	}
	if err := profile.Validate(); err != nil {
		return nil, err
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.checkReferences(ctx, tx, req.CenterID, req.StudentID, req.GroupID); err != nil {
			return err
		}
		existing, err := s.repo.FindByStudentGroup(ctx, tx, req.StudentID, req.GroupID)
		if err != nil {
			return err
		}
		if existing != nil {
			return profiledomain.ErrProfileExists
		}
		return s.repo.Insert(ctx, tx, profile)
	})
	if err != nil {
		if isUniqueViolation(err) {
			return nil, profiledomain.ErrProfileExists
		}
		return nil, err
	}

	s.log.Info("billing profile created",
		zap.String("profile_id", profile.ID.String()),
		zap.String("student_id", profile.StudentID.String()),
		zap.String("group_id", profile.GroupID.String()),
	)
	return profile, nil
}

func (s *Service) Update(ctx context.Context, req profiledomain.UpdateRequest) (*profiledomain.BillingProfile, error) {
	if req.ID == 0 {
		return nil, profiledomain.ErrProfileNotFound
	}

	var profile *profiledomain.BillingProfile
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		found, err := s.repo.FindByID(ctx, tx, req.ID)
		if err != nil {
			return err
		}
		if found == nil {
			return profiledomain.ErrProfileNotFound
		}
		if req.MonthlyAmount != nil {
			// Affects months generated from now on; existing ledger rows keep
			// their snapshotted amount.
			found.MonthlyAmount = *req.MonthlyAmount
		}
		if req.DueDay != nil {
			found.DueDay = *req.DueDay
		}
		if err := found.Validate(); err != nil {
			return err
		}
		found.UpdatedAt = s.clock.Now()
		if err := s.repo.Update(ctx, tx, found); err != nil {
			return err
		}
		profile = found
		return nil
	})
	if err != nil {
		return nil, err
	}
	return profile, nil
}

func (s *Service) Close(ctx context.Context, id snowflake.ID, leaveDate time.Time) (*profiledomain.BillingProfile, error) {
	if leaveDate.IsZero() {
		return nil, profiledomain.ErrInvalidEnrollmentWindow
	}

	var profile *profiledomain.BillingProfile
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		found, err := s.repo.FindByID(ctx, tx, id)
		if err != nil {
			return err
		}
		if found == nil {
			return profiledomain.ErrProfileNotFound
		}
		day := truncateToDate(leaveDate)
		found.LeaveDate = &day
		if err := found.Validate(); err != nil {
			return err
		}
		found.UpdatedAt = s.clock.Now()
		if err := s.repo.Update(ctx, tx, found); err != nil {
			return err
		}
		profile = found
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("billing profile closed",
		zap.String("profile_id", id.String()),
		zap.Time("leave_date", leaveDate),
	)
	return profile, nil
}

func (s *Service) GetByID(ctx context.Context, id snowflake.ID) (*profiledomain.BillingProfile, error) {
	profile, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, profiledomain.ErrProfileNotFound
	}
	return profile, nil
}

func (s *Service) List(ctx context.Context, req profiledomain.ListRequest) ([]profiledomain.BillingProfile, error) {
	return s.repo.List(ctx, s.db, req)
}

func (s *Service) ListActive(ctx context.Context, asOf time.Time) ([]profiledomain.BillingProfile, error) {
	return s.repo.ListActive(ctx, s.db, asOf)
}

func (s *Service) checkReferences(ctx context.Context, tx *gorm.DB, centerID, studentID, groupID snowflake.ID) error {
	var count int64
	if err := tx.WithContext(ctx).Model(&rosterdomain.Student{}).
		Where("id = ? AND center_id = ?", studentID, centerID).
		Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return profiledomain.ErrDanglingReference
	}
	if err := tx.WithContext(ctx).Model(&rosterdomain.Group{}).
		Where("id = ? AND center_id = ?", groupID, centerID).
		Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return profiledomain.ErrDanglingReference
	}
	return nil
}

func truncateToDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique") || strings.Contains(msg, "duplicate key")
}
