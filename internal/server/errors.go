package server

import (
	"errors"
	"net/http"

	profiledomain "github.com/Behzodbek19981230/lms-sub004/internal/billingprofile/domain"
	ledgerdomain "github.com/Behzodbek19981230/lms-sub004/internal/ledger/domain"
	overviewdomain "github.com/Behzodbek19981230/lms-sub004/internal/overview/domain"
	"github.com/gin-gonic/gin"
)

var (
	ErrNotFound           = errors.New("not_found")
	ErrServiceUnavailable = errors.New("service_unavailable")
)

type apiError struct {
	status  int
	code    string
	field   string
	message string
}

func (e *apiError) Error() string { return e.code }

func invalidRequestError() error {
	return &apiError{
		status:  http.StatusBadRequest,
		code:    "invalid_request",
		message: "request body or query is malformed",
	}
}

func newValidationError(field, code, message string) error {
	return &apiError{
		status:  http.StatusBadRequest,
		code:    code,
		field:   field,
		message: message,
	}
}

// AbortWithError maps domain errors onto HTTP responses with a stable error
// code body.
func AbortWithError(c *gin.Context, err error) {
	var apiErr *apiError
	if errors.As(err, &apiErr) {
		body := gin.H{"error": apiErr.code}
		if apiErr.field != "" {
			body["field"] = apiErr.field
		}
		if apiErr.message != "" {
			body["message"] = apiErr.message
		}
		_ = c.Error(err)
		c.AbortWithStatusJSON(apiErr.status, body)
		return
	}

	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, profiledomain.ErrProfileNotFound),
		errors.Is(err, ledgerdomain.ErrPaymentNotFound),
		errors.Is(err, ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, profiledomain.ErrProfileExists):
		status = http.StatusConflict
	case errors.Is(err, profiledomain.ErrInvalidDueDay),
		errors.Is(err, profiledomain.ErrInvalidAmount),
		errors.Is(err, profiledomain.ErrInvalidJoinDate),
		errors.Is(err, profiledomain.ErrInvalidEnrollmentWindow),
		errors.Is(err, profiledomain.ErrInvalidStudent),
		errors.Is(err, profiledomain.ErrInvalidGroup),
		errors.Is(err, profiledomain.ErrInvalidCenter),
		errors.Is(err, ledgerdomain.ErrInvalidAmount),
		errors.Is(err, ledgerdomain.ErrInvalidPaymentID),
		errors.Is(err, overviewdomain.ErrInvalidCenter):
		status = http.StatusBadRequest
	case errors.Is(err, profiledomain.ErrDanglingReference),
		errors.Is(err, ledgerdomain.ErrPaymentCancelled):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, ErrServiceUnavailable):
		status = http.StatusServiceUnavailable
	}

	_ = c.Error(err)
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}
