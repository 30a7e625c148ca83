package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"billing/internal/pricing"
	"billing/internal/repository"
	"billing/internal/service"
)

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error   string   `json:"error"`
	Details []string `json:"details,omitempty"`
}

// respondError sends an error response with the appropriate HTTP status code.
// Tier validation failures carry one detail line per offending field.
func respondError(c *gin.Context, err error) {
	code := mapErrorToHTTPStatus(err)
	resp := ErrorResponse{Error: err.Error()}

	var verr *pricing.ValidationError
	if errors.As(err, &verr) {
		resp.Error = "invalid commission tiers"
		resp.Details = verr.Details()
	}

	if code == http.StatusInternalServerError {
		_ = c.Error(err)
		resp.Error = "internal server error"
	}

	c.JSON(code, resp)
}

// respondJSON sends a JSON response with the given status code.
func respondJSON(c *gin.Context, code int, data any) {
	c.JSON(code, data)
}

// mapErrorToHTTPStatus maps service/repository/pricing errors to HTTP status codes.
func mapErrorToHTTPStatus(err error) int {
	var verr *pricing.ValidationError
	var cerr *pricing.ComputationError

	switch {
	// Not found errors
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound

	// Validation errors - Bad Request
	case errors.As(err, &verr),
		errors.As(err, &cerr),
		errors.Is(err, service.ErrInvalidCustomerID),
		errors.Is(err, service.ErrInvalidPaymentID),
		errors.Is(err, service.ErrMissingCustomerFields),
		errors.Is(err, service.ErrInvalidCustomerStatus),
		errors.Is(err, service.ErrInvalidMonthlySpendings),
		errors.Is(err, service.ErrInvalidPaymentMethod),
		errors.Is(err, service.ErrInvalidServiceType),
		errors.Is(err, service.ErrMissingPaymentDate):
		return http.StatusBadRequest

	// Unresolvable commission
	case errors.Is(err, pricing.ErrNoTierMatched):
		return http.StatusUnprocessableEntity

	// Conflict errors
	case errors.Is(err, repository.ErrConflict),
		errors.Is(err, service.ErrTierUpdateInProgress),
		errors.Is(err, service.ErrCustomerHasPayments):
		return http.StatusConflict

	// Default to internal server error
	default:
		return http.StatusInternalServerError
	}
}
