package server

import (
	"net/http"
	"strings"

	ledgerdomain "github.com/Behzodbek19981230/lms-sub004/internal/ledger/domain"
	"github.com/gin-gonic/gin"
)

type triggerRunRequest struct {
	// Month is "YYYY-MM"; empty means the current month.
	Month string `json:"month"`
}

// TriggerRun is the manual admin form of the scheduled generation.
func (s *Server) TriggerRun(c *gin.Context) {
	var req triggerRunRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			AbortWithError(c, invalidRequestError())
			return
		}
	}

	ctx := c.Request.Context()
	if month := strings.TrimSpace(req.Month); month != "" {
		target, err := ledgerdomain.ParseMonth(month)
		if err != nil {
			AbortWithError(c, newValidationError("month", "invalid_month", "month must be YYYY-MM"))
			return
		}
		report, err := s.generator.Run(ctx, target)
		if err != nil {
			AbortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": report})
		return
	}

	report, err := s.generator.RunCurrentMonth(ctx)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": report})
}
