// Package generator creates the monthly payment rows for every active
// billing profile.
package generator

import (
	"context"
	"strings"
	"time"

	profiledomain "github.com/Behzodbek19981230/lms-sub004/internal/billingprofile/domain"
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

	DB          *gorm.DB
	Log         *zap.Logger
	GenID       *snowflake.Node
	Clock       clock.Clock
	ProfileRepo profiledomain.Repository
	LedgerRepo  ledgerdomain.Repository
	Outbox      *events.Outbox
}

// Generator ensures each eligible profile has exactly one ledger row for the
// target month. Safe to re-run: existing rows are left untouched and
// concurrent runs resolve through the ledger's unique key.
type Generator struct {
	db          *gorm.DB
	log         *zap.Logger
	genID       *snowflake.Node
	clock       clock.Clock
	profileRepo profiledomain.Repository
	ledgerRepo  ledgerdomain.Repository
	outbox      *events.Outbox
}

func New(p Params) *Generator {
	return &Generator{
		db:          p.DB,
		log:         p.Log.Named("generator"),
		genID:       p.GenID,
		clock:       p.Clock,
		profileRepo: p.ProfileRepo,
		ledgerRepo:  p.LedgerRepo,
		outbox:      p.Outbox,
	}
}

// SkippedProfile reports one profile excluded from a run.
type SkippedProfile struct {
	ProfileID snowflake.ID `json:"profile_id"`
	StudentID snowflake.ID `json:"student_id"`
	GroupID   snowflake.ID `json:"group_id"`
	Reason    string       `json:"reason"`
}

// RunReport summarizes one generation run.
type RunReport struct {
	Month    time.Time        `json:"month"`
	Eligible int              `json:"eligible"`
	Created  int              `json:"created"`
	Existing int              `json:"existing"`
	Skipped  []SkippedProfile `json:"skipped,omitempty"`
}

// RunCurrentMonth generates payments for the month containing "now".
func (g *Generator) RunCurrentMonth(ctx context.Context) (RunReport, error) {
	return g.Run(ctx, g.clock.Now())
}

// Run generates payments for the month containing target. Bad profile data
// skips that profile and continues; storage errors abort the batch.
func (g *Generator) Run(ctx context.Context, target time.Time) (RunReport, error) {
	monthStart := ledgerdomain.MonthStart(target)
	report := RunReport{Month: monthStart}

	profiles, err := g.profileRepo.ListActive(ctx, g.db, monthStart)
	if err != nil {
		return report, err
	}
	report.Eligible = len(profiles)

	createdByCenter := map[snowflake.ID]int{}
	for _, profile := range profiles {
		created, err := g.generateOne(ctx, profile, monthStart)
		if err != nil {
			reason := classifySkip(err)
			if reason == "" {
				return report, err
			}
			report.Skipped = append(report.Skipped, SkippedProfile{
				ProfileID: profile.ID,
				StudentID: profile.StudentID,
				GroupID:   profile.GroupID,
				Reason:    reason,
			})
			g.log.Warn("profile skipped",
				zap.String("profile_id", profile.ID.String()),
				zap.String("reason", reason),
			)
			continue
		}
		if created {
			report.Created++
			createdByCenter[profile.CenterID]++
		} else {
			report.Existing++
		}
	}

	for centerID, created := range createdByCenter {
		if err := g.publishRun(ctx, centerID, monthStart, created); err != nil {
			g.log.Warn("month generated event not published",
				zap.String("center_id", centerID.String()),
				zap.Error(err),
			)
		}
	}

	g.log.Info("generation run finished",
		zap.Time("month", monthStart),
		zap.Int("eligible", report.Eligible),
		zap.Int("created", report.Created),
		zap.Int("existing", report.Existing),
		zap.Int("skipped", len(report.Skipped)),
	)
	return report, nil
}

func (g *Generator) generateOne(ctx context.Context, profile profiledomain.BillingProfile, monthStart time.Time) (bool, error) {
	if err := profile.Validate(); err != nil {
		return false, err
	}
	if !profile.ActiveInMonth(monthStart) {
		return false, profiledomain.ErrInvalidEnrollmentWindow
	}

	// AmountDue snapshots the profile's current fee. Later fee changes only
	// affect months generated after the change.
	payment := &ledgerdomain.MonthlyPayment{
		ID:           g.genID.Generate(),
		CenterID:     profile.CenterID,
		StudentID:    profile.StudentID,
		GroupID:      profile.GroupID,
		BillingMonth: monthStart,
		DueDate:      ledgerdomain.DueDateFor(monthStart, profile.DueDay),
		AmountDue:    profile.MonthlyAmount,
		AmountPaid:   decimal.Zero,
		Status:       ledgerdomain.PaymentStatusPending,
	}
	return g.ledgerRepo.InsertIfAbsent(ctx, g.db, payment)
}

// publishRun notifies once per run that created rows. Re-runs that create
// nothing stay silent, so late-added profiles still get their month announced
// with that run's count.
func (g *Generator) publishRun(ctx context.Context, centerID snowflake.ID, monthStart time.Time, created int) error {
	if g.outbox == nil {
		return nil
	}
	return g.outbox.Publish(ctx, events.Event{
		CenterID: centerID,
		Type:     events.EventMonthGenerated,
		Payload: map[string]any{
			"month":   monthStart.Format("2006-01"),
			"created": created,
		},
	})
}

// classifySkip returns a skip reason for per-profile failures, or "" for
// errors that should abort the batch.
func classifySkip(err error) string {
	switch {
	case err == nil:
		return ""
	case err == profiledomain.ErrInvalidDueDay:
		return "invalid_due_day"
	case err == profiledomain.ErrInvalidAmount:
		return "invalid_amount"
	case err == profiledomain.ErrInvalidEnrollmentWindow:
		return "inactive_enrollment"
	case isForeignKeyViolation(err):
		return "dangling_reference"
	default:
		return ""
	}
}

func isForeignKeyViolation(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "foreign key")
}

// Module provides the generator.
var Module = fx.Module("generator",
	fx.Provide(New),
)
