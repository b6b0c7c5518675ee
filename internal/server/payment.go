package server

import (
	"net/http"
	"strings"
	"time"

	ledgerdomain "github.com/Behzodbek19981230/lms-sub004/internal/ledger/domain"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

func (s *Server) ListPayments(c *gin.Context) {
	var query struct {
		CenterID  string `form:"center_id"`
		StudentID string `form:"student_id"`
		GroupID   string `form:"group_id"`
		Month     string `form:"month"`
		Status    string `form:"status"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	req := ledgerdomain.ListRequest{Status: ledgerdomain.PaymentStatus(strings.TrimSpace(query.Status))}
	var err error
	if req.CenterID, err = parseOptionalSnowflake(query.CenterID); err != nil {
		AbortWithError(c, newValidationError("center_id", "invalid_center_id", "invalid center_id"))
		return
	}
	if req.StudentID, err = parseOptionalSnowflake(query.StudentID); err != nil {
		AbortWithError(c, newValidationError("student_id", "invalid_student_id", "invalid student_id"))
		return
	}
	if req.GroupID, err = parseOptionalSnowflake(query.GroupID); err != nil {
		AbortWithError(c, newValidationError("group_id", "invalid_group_id", "invalid group_id"))
		return
	}
	if month := strings.TrimSpace(query.Month); month != "" {
		if req.Month, err = ledgerdomain.ParseMonth(month); err != nil {
			AbortWithError(c, newValidationError("month", "invalid_month", "month must be YYYY-MM"))
			return
		}
	}

	payments, err := s.ledgerSvc.List(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": payments})
}

func (s *Server) GetPayment(c *gin.Context) {
	id, err := ledgerdomain.ParseID(c.Param("id"))
	if err != nil {
		AbortWithError(c, ErrNotFound)
		return
	}
	payment, err := s.ledgerSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": payment})
}

type recordPaymentRequest struct {
	Amount string `json:"amount"`
	PaidAt string `json:"paid_at"`
}

func (s *Server) RecordPayment(c *gin.Context) {
	id, err := ledgerdomain.ParseID(c.Param("id"))
	if err != nil {
		AbortWithError(c, ErrNotFound)
		return
	}
	var req recordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	amount, err := decimal.NewFromString(strings.TrimSpace(req.Amount))
	if err != nil {
		AbortWithError(c, newValidationError("amount", "invalid_amount", "invalid amount"))
		return
	}

	var at time.Time
	if raw := strings.TrimSpace(req.PaidAt); raw != "" {
		if at, err = time.Parse(time.RFC3339, raw); err != nil {
			AbortWithError(c, newValidationError("paid_at", "invalid_paid_at", "paid_at must be RFC 3339"))
			return
		}
	}

	payment, err := s.ledgerSvc.RecordPayment(c.Request.Context(), id, amount, at)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": payment})
}

func (s *Server) CancelPayment(c *gin.Context) {
	id, err := ledgerdomain.ParseID(c.Param("id"))
	if err != nil {
		AbortWithError(c, ErrNotFound)
		return
	}
	payment, err := s.ledgerSvc.Cancel(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": payment})
}
