package server

import (
	"net/http"
	"strings"

	ledgerdomain "github.com/Behzodbek19981230/lms-sub004/internal/ledger/domain"
	"github.com/gin-gonic/gin"
)

func (s *Server) Overview(c *gin.Context) {
	var query struct {
		CenterID string `form:"center_id"`
		Month    string `form:"month"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	centerID, err := parseSnowflake(query.CenterID)
	if err != nil {
		AbortWithError(c, newValidationError("center_id", "invalid_center_id", "invalid center_id"))
		return
	}

	month := s.clock.Now()
	if raw := strings.TrimSpace(query.Month); raw != "" {
		if month, err = ledgerdomain.ParseMonth(raw); err != nil {
			AbortWithError(c, newValidationError("month", "invalid_month", "month must be YYYY-MM"))
			return
		}
	}

	summary, err := s.overviewSvc.MonthSummary(c.Request.Context(), centerID, month)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": summary})
}

func (s *Server) ListDebtors(c *gin.Context) {
	var query struct {
		CenterID string `form:"center_id"`
		Limit    int    `form:"limit"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	centerID, err := parseSnowflake(query.CenterID)
	if err != nil {
		AbortWithError(c, newValidationError("center_id", "invalid_center_id", "invalid center_id"))
		return
	}

	debtors, err := s.overviewSvc.ListDebtors(c.Request.Context(), centerID, query.Limit)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": debtors})
}
