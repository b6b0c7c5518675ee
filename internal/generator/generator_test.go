package generator

import (
	"context"
	"errors"
	"testing"
	"time"

	profiledomain "github.com/Behzodbek19981230/lms-sub004/internal/billingprofile/domain"
	profilerepo "github.com/Behzodbek19981230/lms-sub004/internal/billingprofile/repository"
	"github.com/Behzodbek19981230/lms-sub004/internal/clock"
	"github.com/Behzodbek19981230/lms-sub004/internal/events"
	ledgerdomain "github.com/Behzodbek19981230/lms-sub004/internal/ledger/domain"
	ledgerrepo "github.com/Behzodbek19981230/lms-sub004/internal/ledger/repository"
	rosterdomain "github.com/Behzodbek19981230/lms-sub004/internal/roster/domain"
	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func setupGenTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := db.AutoMigrate(
		&rosterdomain.Student{},
		&rosterdomain.Group{},
		&profiledomain.BillingProfile{},
		&ledgerdomain.MonthlyPayment{},
		&events.OutboxRow{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func newTestGenerator(t *testing.T, db *gorm.DB, today time.Time) *Generator {
	t.Helper()
	return newTestGeneratorWithRepo(t, db, today, ledgerrepo.Provide())
}

func newTestGeneratorWithRepo(t *testing.T, db *gorm.DB, today time.Time, repo ledgerdomain.Repository) *Generator {
	t.Helper()
	node, err := snowflake.NewNode(9)
	if err != nil {
		t.Fatalf("snowflake node: %v", err)
	}
	return New(Params{
		DB:          db,
		Log:         zap.NewNop(),
		GenID:       node,
		Clock:       clock.Fixed{At: today},
		ProfileRepo: profilerepo.Provide(),
		LedgerRepo:  repo,
		Outbox:      events.NewOutbox(db, node),
	})
}

// insertFailingRepo fails InsertIfAbsent for one student and delegates the
// rest to the real repository.
type insertFailingRepo struct {
	ledgerdomain.Repository
	failStudent snowflake.ID
	failErr     error
}

func (r insertFailingRepo) InsertIfAbsent(ctx context.Context, db *gorm.DB, payment *ledgerdomain.MonthlyPayment) (bool, error) {
	if payment.StudentID == r.failStudent {
		return false, r.failErr
	}
	return r.Repository.InsertIfAbsent(ctx, db, payment)
}

func insertRoster(t *testing.T, db *gorm.DB, studentID, groupID snowflake.ID) {
	t.Helper()
	student := rosterdomain.Student{ID: studentID, CenterID: 1, FullName: "Test Student"}
	if err := db.Create(&student).Error; err != nil {
		t.Fatalf("insert student: %v", err)
	}
	group := rosterdomain.Group{ID: groupID, CenterID: 1, Name: "Test Group"}
	if err := db.Create(&group).Error; err != nil {
		t.Fatalf("insert group: %v", err)
	}
}

func insertProfile(t *testing.T, db *gorm.DB, profile profiledomain.BillingProfile) profiledomain.BillingProfile {
	t.Helper()
	if profile.CenterID == 0 {
		profile.CenterID = 1
	}
	if err := db.Create(&profile).Error; err != nil {
		t.Fatalf("insert profile: %v", err)
	}
	return profile
}

func loadPayments(t *testing.T, db *gorm.DB) []ledgerdomain.MonthlyPayment {
	t.Helper()
	var payments []ledgerdomain.MonthlyPayment
	if err := db.Order("id").Find(&payments).Error; err != nil {
		t.Fatalf("load payments: %v", err)
	}
	return payments
}

func TestRunCreatesRowFromProfile(t *testing.T) {
	db := setupGenTestDB(t)
	insertRoster(t, db, 100, 200)
	insertProfile(t, db, profiledomain.BillingProfile{
		ID:            1,
		StudentID:     100,
		GroupID:       200,
		JoinDate:      date(2026, time.January, 5),
		MonthlyAmount: decimal.NewFromInt(300000),
		DueDay:        10,
	})

	gen := newTestGenerator(t, db, date(2026, time.January, 20))
	report, err := gen.Run(context.Background(), date(2026, time.January, 15))
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if report.Created != 1 || report.Existing != 0 || len(report.Skipped) != 0 {
		t.Fatalf("unexpected report: %+v", report)
	}

	payments := loadPayments(t, db)
	if len(payments) != 1 {
		t.Fatalf("expected 1 payment, got %d", len(payments))
	}
	p := payments[0]
	if !p.BillingMonth.Equal(date(2026, time.January, 1)) {
		t.Fatalf("expected billing month 2026-01-01, got %v", p.BillingMonth)
	}
	if !p.DueDate.Equal(date(2026, time.January, 10)) {
		t.Fatalf("expected due date 2026-01-10, got %v", p.DueDate)
	}
	if !p.AmountDue.Equal(decimal.NewFromInt(300000)) {
		t.Fatalf("expected amount due 300000, got %s", p.AmountDue)
	}
	if !p.AmountPaid.IsZero() {
		t.Fatalf("expected zero amount paid, got %s", p.AmountPaid)
	}
	if p.Status != ledgerdomain.PaymentStatusPending {
		t.Fatalf("expected pending, got %s", p.Status)
	}
}

func TestRunIsIdempotent(t *testing.T) {
	db := setupGenTestDB(t)
	insertRoster(t, db, 100, 200)
	insertProfile(t, db, profiledomain.BillingProfile{
		ID:            1,
		StudentID:     100,
		GroupID:       200,
		JoinDate:      date(2025, time.September, 1),
		MonthlyAmount: decimal.NewFromInt(250000),
		DueDay:        10,
	})

	gen := newTestGenerator(t, db, date(2026, time.January, 2))
	ctx := context.Background()
	if _, err := gen.Run(ctx, date(2026, time.January, 1)); err != nil {
		t.Fatalf("first run: %v", err)
	}

	// Mark the row paid before re-running; the generator must not touch it.
	if err := db.Model(&ledgerdomain.MonthlyPayment{}).
		Where("student_id = ?", 100).
		Updates(map[string]any{
			"amount_paid": decimal.NewFromInt(250000),
			"status":      ledgerdomain.PaymentStatusPaid,
		}).Error; err != nil {
		t.Fatalf("mark paid: %v", err)
	}

	report, err := gen.Run(ctx, date(2026, time.January, 1))
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if report.Created != 0 || report.Existing != 1 {
		t.Fatalf("expected no new rows, got %+v", report)
	}

	payments := loadPayments(t, db)
	if len(payments) != 1 {
		t.Fatalf("expected 1 payment after rerun, got %d", len(payments))
	}
	if payments[0].Status != ledgerdomain.PaymentStatusPaid {
		t.Fatalf("rerun must not reset status, got %s", payments[0].Status)
	}
	if !payments[0].AmountPaid.Equal(decimal.NewFromInt(250000)) {
		t.Fatalf("rerun must not reset amount paid, got %s", payments[0].AmountPaid)
	}
}

func TestRunSnapshotsAmountAtCreation(t *testing.T) {
	db := setupGenTestDB(t)
	insertRoster(t, db, 100, 200)
	insertProfile(t, db, profiledomain.BillingProfile{
		ID:            1,
		StudentID:     100,
		GroupID:       200,
		JoinDate:      date(2025, time.December, 1),
		MonthlyAmount: decimal.NewFromInt(300000),
		DueDay:        10,
	})

	gen := newTestGenerator(t, db, date(2026, time.January, 2))
	ctx := context.Background()
	if _, err := gen.Run(ctx, date(2026, time.January, 1)); err != nil {
		t.Fatalf("january run: %v", err)
	}

	// Raise the fee; January keeps its snapshot, February gets the new fee.
	if err := db.Model(&profiledomain.BillingProfile{}).
		Where("id = ?", 1).
		Update("monthly_amount", decimal.NewFromInt(350000)).Error; err != nil {
		t.Fatalf("update fee: %v", err)
	}
	if _, err := gen.Run(ctx, date(2026, time.January, 1)); err != nil {
		t.Fatalf("january rerun: %v", err)
	}
	if _, err := gen.Run(ctx, date(2026, time.February, 1)); err != nil {
		t.Fatalf("february run: %v", err)
	}

	payments := loadPayments(t, db)
	if len(payments) != 2 {
		t.Fatalf("expected 2 payments, got %d", len(payments))
	}
	for _, p := range payments {
		switch {
		case p.BillingMonth.Equal(date(2026, time.January, 1)):
			if !p.AmountDue.Equal(decimal.NewFromInt(300000)) {
				t.Fatalf("january snapshot changed: %s", p.AmountDue)
			}
		case p.BillingMonth.Equal(date(2026, time.February, 1)):
			if !p.AmountDue.Equal(decimal.NewFromInt(350000)) {
				t.Fatalf("february should use new fee, got %s", p.AmountDue)
			}
		default:
			t.Fatalf("unexpected billing month %v", p.BillingMonth)
		}
	}
}

func TestRunRespectsEnrollmentWindow(t *testing.T) {
	db := setupGenTestDB(t)
	insertRoster(t, db, 100, 200)

	leaveDate := date(2026, time.January, 15)
	joinedLater := rosterdomain.Student{ID: 101, CenterID: 1, FullName: "Joined Later"}
	if err := db.Create(&joinedLater).Error; err != nil {
		t.Fatalf("insert student: %v", err)
	}
	leftEarlier := rosterdomain.Student{ID: 102, CenterID: 1, FullName: "Left Earlier"}
	if err := db.Create(&leftEarlier).Error; err != nil {
		t.Fatalf("insert student: %v", err)
	}

	// Active through January, leaves mid-month: still billed.
	insertProfile(t, db, profiledomain.BillingProfile{
		ID: 1, StudentID: 100, GroupID: 200,
		JoinDate:      date(2025, time.October, 1),
		LeaveDate:     &leaveDate,
		MonthlyAmount: decimal.NewFromInt(300000),
		DueDay:        10,
	})
	// Joins in February: not billed in January.
	insertProfile(t, db, profiledomain.BillingProfile{
		ID: 2, StudentID: 101, GroupID: 200,
		JoinDate:      date(2026, time.February, 3),
		MonthlyAmount: decimal.NewFromInt(300000),
		DueDay:        10,
	})
	// Left in December: not billed in January.
	december := date(2025, time.December, 20)
	insertProfile(t, db, profiledomain.BillingProfile{
		ID: 3, StudentID: 102, GroupID: 200,
		JoinDate:      date(2025, time.June, 1),
		LeaveDate:     &december,
		MonthlyAmount: decimal.NewFromInt(300000),
		DueDay:        10,
	})

	gen := newTestGenerator(t, db, date(2026, time.January, 2))
	report, err := gen.Run(context.Background(), date(2026, time.January, 1))
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if report.Created != 1 {
		t.Fatalf("expected only the mid-month leaver billed, got %+v", report)
	}
	payments := loadPayments(t, db)
	if len(payments) != 1 || payments[0].StudentID != 100 {
		t.Fatalf("expected a single payment for student 100, got %+v", payments)
	}
}

func TestRunSkipsInvalidProfileAndContinues(t *testing.T) {
	db := setupGenTestDB(t)
	insertRoster(t, db, 100, 200)
	other := rosterdomain.Student{ID: 101, CenterID: 1, FullName: "Valid Student"}
	if err := db.Create(&other).Error; err != nil {
		t.Fatalf("insert student: %v", err)
	}

	insertProfile(t, db, profiledomain.BillingProfile{
		ID: 1, StudentID: 100, GroupID: 200,
		JoinDate:      date(2025, time.September, 1),
		MonthlyAmount: decimal.NewFromInt(300000),
		DueDay:        45,
	})
	insertProfile(t, db, profiledomain.BillingProfile{
		ID: 2, StudentID: 101, GroupID: 200,
		JoinDate:      date(2025, time.September, 1),
		MonthlyAmount: decimal.NewFromInt(300000),
		DueDay:        10,
	})

	gen := newTestGenerator(t, db, date(2026, time.January, 2))
	report, err := gen.Run(context.Background(), date(2026, time.January, 1))
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if report.Created != 1 {
		t.Fatalf("valid profile should still be billed, got %+v", report)
	}
	if len(report.Skipped) != 1 || report.Skipped[0].Reason != "invalid_due_day" {
		t.Fatalf("expected one invalid_due_day skip, got %+v", report.Skipped)
	}
}

func TestRunClampsDueDay(t *testing.T) {
	db := setupGenTestDB(t)
	insertRoster(t, db, 100, 200)
	insertProfile(t, db, profiledomain.BillingProfile{
		ID: 1, StudentID: 100, GroupID: 200,
		JoinDate:      date(2025, time.September, 1),
		MonthlyAmount: decimal.NewFromInt(300000),
		DueDay:        31,
	})

	gen := newTestGenerator(t, db, date(2026, time.February, 2))
	if _, err := gen.Run(context.Background(), date(2026, time.February, 1)); err != nil {
		t.Fatalf("run: %v", err)
	}

	payments := loadPayments(t, db)
	if len(payments) != 1 {
		t.Fatalf("expected 1 payment, got %d", len(payments))
	}
	if !payments[0].DueDate.Equal(date(2026, time.February, 28)) {
		t.Fatalf("expected due date clamped to 2026-02-28, got %v", payments[0].DueDate)
	}
}

func TestRunReportsDanglingReferenceAndContinues(t *testing.T) {
	db := setupGenTestDB(t)
	insertRoster(t, db, 100, 200)
	other := rosterdomain.Student{ID: 101, CenterID: 1, FullName: "Intact Student"}
	if err := db.Create(&other).Error; err != nil {
		t.Fatalf("insert student: %v", err)
	}

	insertProfile(t, db, profiledomain.BillingProfile{
		ID: 1, StudentID: 100, GroupID: 200,
		JoinDate:      date(2025, time.September, 1),
		MonthlyAmount: decimal.NewFromInt(300000),
		DueDay:        10,
	})
	insertProfile(t, db, profiledomain.BillingProfile{
		ID: 2, StudentID: 101, GroupID: 200,
		JoinDate:      date(2025, time.September, 1),
		MonthlyAmount: decimal.NewFromInt(300000),
		DueDay:        10,
	})

	repo := insertFailingRepo{
		Repository:  ledgerrepo.Provide(),
		failStudent: 100,
		failErr:     errors.New("FOREIGN KEY constraint failed"),
	}
	gen := newTestGeneratorWithRepo(t, db, date(2026, time.January, 2), repo)
	report, err := gen.Run(context.Background(), date(2026, time.January, 1))
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if report.Created != 1 {
		t.Fatalf("intact profile should still be billed, got %+v", report)
	}
	if len(report.Skipped) != 1 {
		t.Fatalf("expected one skipped profile, got %+v", report.Skipped)
	}
	skipped := report.Skipped[0]
	if skipped.Reason != "dangling_reference" || skipped.StudentID != 100 {
		t.Fatalf("expected dangling_reference for student 100, got %+v", skipped)
	}

	payments := loadPayments(t, db)
	if len(payments) != 1 || payments[0].StudentID != 101 {
		t.Fatalf("expected only the intact student's row, got %+v", payments)
	}
}

func TestRunAbortsOnStorageError(t *testing.T) {
	db := setupGenTestDB(t)
	insertRoster(t, db, 100, 200)
	insertProfile(t, db, profiledomain.BillingProfile{
		ID: 1, StudentID: 100, GroupID: 200,
		JoinDate:      date(2025, time.September, 1),
		MonthlyAmount: decimal.NewFromInt(300000),
		DueDay:        10,
	})

	repo := insertFailingRepo{
		Repository:  ledgerrepo.Provide(),
		failStudent: 100,
		failErr:     errors.New("driver: bad connection"),
	}
	gen := newTestGeneratorWithRepo(t, db, date(2026, time.January, 2), repo)
	if _, err := gen.Run(context.Background(), date(2026, time.January, 1)); err == nil {
		t.Fatal("storage errors must abort the batch")
	}
}

func TestRunPublishesMonthGeneratedEvent(t *testing.T) {
	db := setupGenTestDB(t)
	insertRoster(t, db, 100, 200)
	insertProfile(t, db, profiledomain.BillingProfile{
		ID: 1, StudentID: 100, GroupID: 200,
		JoinDate:      date(2025, time.September, 1),
		MonthlyAmount: decimal.NewFromInt(300000),
		DueDay:        10,
	})

	gen := newTestGenerator(t, db, date(2026, time.January, 2))
	if _, err := gen.Run(context.Background(), date(2026, time.January, 1)); err != nil {
		t.Fatalf("run: %v", err)
	}

	var rows []events.OutboxRow
	if err := db.Find(&rows).Error; err != nil {
		t.Fatalf("load events: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 outbox event, got %d", len(rows))
	}
	if rows[0].EventType != events.EventMonthGenerated {
		t.Fatalf("expected %s, got %s", events.EventMonthGenerated, rows[0].EventType)
	}
}

func TestRunNotifiesEachCreatingRun(t *testing.T) {
	db := setupGenTestDB(t)
	insertRoster(t, db, 100, 200)
	insertProfile(t, db, profiledomain.BillingProfile{
		ID: 1, StudentID: 100, GroupID: 200,
		JoinDate:      date(2025, time.September, 1),
		MonthlyAmount: decimal.NewFromInt(300000),
		DueDay:        10,
	})

	gen := newTestGenerator(t, db, date(2026, time.January, 2))
	ctx := context.Background()
	if _, err := gen.Run(ctx, date(2026, time.January, 1)); err != nil {
		t.Fatalf("first run: %v", err)
	}

	// A re-run that creates nothing stays silent.
	if _, err := gen.Run(ctx, date(2026, time.January, 1)); err != nil {
		t.Fatalf("idle rerun: %v", err)
	}
	var count int64
	if err := db.Model(&events.OutboxRow{}).Count(&count).Error; err != nil {
		t.Fatalf("count events: %v", err)
	}
	if count != 1 {
		t.Fatalf("idle rerun must not publish, got %d events", count)
	}

	// A profile added after the first run gets its month announced by the
	// run that bills it.
	late := rosterdomain.Student{ID: 101, CenterID: 1, FullName: "Late Student"}
	if err := db.Create(&late).Error; err != nil {
		t.Fatalf("insert student: %v", err)
	}
	insertProfile(t, db, profiledomain.BillingProfile{
		ID: 2, StudentID: 101, GroupID: 200,
		JoinDate:      date(2025, time.October, 1),
		MonthlyAmount: decimal.NewFromInt(300000),
		DueDay:        10,
	})

	report, err := gen.Run(ctx, date(2026, time.January, 1))
	if err != nil {
		t.Fatalf("late run: %v", err)
	}
	if report.Created != 1 {
		t.Fatalf("late profile should be billed, got %+v", report)
	}

	var rows []events.OutboxRow
	if err := db.Order("id").Find(&rows).Error; err != nil {
		t.Fatalf("load events: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected a second event for the creating run, got %d", len(rows))
	}
	if rows[1].EventType != events.EventMonthGenerated {
		t.Fatalf("expected %s, got %s", events.EventMonthGenerated, rows[1].EventType)
	}
	if got := rows[1].Payload["created"]; got != float64(1) && got != int64(1) && got != 1 {
		t.Fatalf("second event should carry its own created count, got %v", got)
	}
}
