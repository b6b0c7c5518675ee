package server

import (
	"net/http"
	"strings"
	"time"

	profiledomain "github.com/Behzodbek19981230/lms-sub004/internal/billingprofile/domain"
	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type createProfileRequest struct {
	CenterID      string `json:"center_id"`
	StudentID     string `json:"student_id"`
	GroupID       string `json:"group_id"`
	JoinDate      string `json:"join_date"`
	MonthlyAmount string `json:"monthly_amount"`
	DueDay        int    `json:"due_day"`
}

func (s *Server) CreateProfile(c *gin.Context) {
	var req createProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	centerID, err := parseSnowflake(req.CenterID)
	if err != nil {
		AbortWithError(c, newValidationError("center_id", "invalid_center_id", "invalid center_id"))
		return
	}
	studentID, err := parseSnowflake(req.StudentID)
	if err != nil {
		AbortWithError(c, newValidationError("student_id", "invalid_student_id", "invalid student_id"))
		return
	}
	groupID, err := parseSnowflake(req.GroupID)
	if err != nil {
		AbortWithError(c, newValidationError("group_id", "invalid_group_id", "invalid group_id"))
		return
	}
	joinDate, err := time.Parse("2006-01-02", strings.TrimSpace(req.JoinDate))
	if err != nil {
		AbortWithError(c, newValidationError("join_date", "invalid_join_date", "join_date must be YYYY-MM-DD"))
		return
	}
	amount, err := decimal.NewFromString(strings.TrimSpace(req.MonthlyAmount))
	if err != nil {
		AbortWithError(c, newValidationError("monthly_amount", "invalid_monthly_amount", "invalid monthly_amount"))
		return
	}

	profile, err := s.profileSvc.Create(c.Request.Context(), profiledomain.CreateRequest{
		CenterID:      centerID,
		StudentID:     studentID,
		GroupID:       groupID,
		JoinDate:      joinDate,
		MonthlyAmount: amount,
		DueDay:        req.DueDay,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": profile})
}

func (s *Server) ListProfiles(c *gin.Context) {
	var query struct {
		CenterID  string `form:"center_id"`
		GroupID   string `form:"group_id"`
		StudentID string `form:"student_id"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	req := profiledomain.ListRequest{}
	var err error
	if req.CenterID, err = parseOptionalSnowflake(query.CenterID); err != nil {
		AbortWithError(c, newValidationError("center_id", "invalid_center_id", "invalid center_id"))
		return
	}
	if req.GroupID, err = parseOptionalSnowflake(query.GroupID); err != nil {
		AbortWithError(c, newValidationError("group_id", "invalid_group_id", "invalid group_id"))
		return
	}
	if req.StudentID, err = parseOptionalSnowflake(query.StudentID); err != nil {
		AbortWithError(c, newValidationError("student_id", "invalid_student_id", "invalid student_id"))
		return
	}

	profiles, err := s.profileSvc.List(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": profiles})
}

func (s *Server) GetProfile(c *gin.Context) {
	id, err := profiledomain.ParseID(c.Param("id"))
	if err != nil {
		AbortWithError(c, ErrNotFound)
		return
	}
	profile, err := s.profileSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": profile})
}

type updateProfileRequest struct {
	MonthlyAmount *string `json:"monthly_amount"`
	DueDay        *int    `json:"due_day"`
}

func (s *Server) UpdateProfile(c *gin.Context) {
	id, err := profiledomain.ParseID(c.Param("id"))
	if err != nil {
		AbortWithError(c, ErrNotFound)
		return
	}
	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	update := profiledomain.UpdateRequest{ID: id, DueDay: req.DueDay}
	if req.MonthlyAmount != nil {
		amount, err := decimal.NewFromString(strings.TrimSpace(*req.MonthlyAmount))
		if err != nil {
			AbortWithError(c, newValidationError("monthly_amount", "invalid_monthly_amount", "invalid monthly_amount"))
			return
		}
		update.MonthlyAmount = &amount
	}

	profile, err := s.profileSvc.Update(c.Request.Context(), update)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": profile})
}

type closeProfileRequest struct {
	LeaveDate string `json:"leave_date"`
}

func (s *Server) CloseProfile(c *gin.Context) {
	id, err := profiledomain.ParseID(c.Param("id"))
	if err != nil {
		AbortWithError(c, ErrNotFound)
		return
	}
	var req closeProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	leaveDate, err := time.Parse("2006-01-02", strings.TrimSpace(req.LeaveDate))
	if err != nil {
		AbortWithError(c, newValidationError("leave_date", "invalid_leave_date", "leave_date must be YYYY-MM-DD"))
		return
	}

	profile, err := s.profileSvc.Close(c.Request.Context(), id, leaveDate)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": profile})
}

func parseSnowflake(raw string) (snowflake.ID, error) {
	return snowflake.ParseString(strings.TrimSpace(raw))
}

func parseOptionalSnowflake(raw string) (snowflake.ID, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	return snowflake.ParseString(raw)
}
