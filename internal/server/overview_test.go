package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Behzodbek19981230/lms-sub004/internal/clock"
	overviewdomain "github.com/Behzodbek19981230/lms-sub004/internal/overview/domain"
	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type capturingOverviewService struct {
	centerID snowflake.ID
	month    time.Time
}

func (s *capturingOverviewService) MonthSummary(_ context.Context, centerID snowflake.ID, month time.Time) (overviewdomain.MonthSummary, error) {
	s.centerID = centerID
	s.month = month
	return overviewdomain.MonthSummary{Month: month}, nil
}

func (s *capturingOverviewService) ListDebtors(context.Context, snowflake.ID, int) ([]overviewdomain.Debtor, error) {
	return nil, nil
}

func TestOverviewDefaultsMonthFromClock(t *testing.T) {
	gin.SetMode(gin.TestMode)
	now := time.Date(2026, time.March, 15, 9, 30, 0, 0, time.UTC)
	svc := &capturingOverviewService{}
	srv := &Server{
		log:         zap.NewNop(),
		overviewSvc: svc,
		clock:       clock.Fixed{At: now},
	}

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/billing/overview?center_id=1", nil)

	srv.Overview(c)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if svc.centerID != 1 {
		t.Fatalf("expected center 1, got %d", svc.centerID)
	}
	if !svc.month.Equal(now) {
		t.Fatalf("default month should come from the clock, got %v", svc.month)
	}
}

func TestOverviewParsesExplicitMonth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := &capturingOverviewService{}
	srv := &Server{
		log:         zap.NewNop(),
		overviewSvc: svc,
		clock:       clock.Fixed{At: time.Date(2026, time.March, 15, 0, 0, 0, 0, time.UTC)},
	}

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/billing/overview?center_id=1&month=2026-01", nil)

	srv.Overview(c)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	want := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	if !svc.month.Equal(want) {
		t.Fatalf("expected parsed month %v, got %v", want, svc.month)
	}
}
