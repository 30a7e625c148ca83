package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"billing/internal/domain"
	"billing/internal/service"
)

// CustomerHandler handles HTTP requests for customers and their commission tiers.
type CustomerHandler struct {
	customerService *service.CustomerService
}

// NewCustomerHandler creates a new CustomerHandler.
func NewCustomerHandler(customerService *service.CustomerService) *CustomerHandler {
	return &CustomerHandler{customerService: customerService}
}

// CustomerRequest is the HTTP request body for creating or replacing a customer.
type CustomerRequest struct {
	Company          string          `json:"company"`
	ContactPerson    string          `json:"contact_person"`
	Email            string          `json:"email"`
	Phone            string          `json:"phone"`
	Status           string          `json:"status,omitempty"` // active, pending, inactive
	MonthlySpendings decimal.Decimal `json:"monthly_spendings"`
	Sector           string          `json:"sector"`
	Notes            string          `json:"notes,omitempty"`
	CommissionTiers  []TierPayload   `json:"commission_tiers"`
}

// CustomerResponse is the HTTP response for customer data.
type CustomerResponse struct {
	ID               string          `json:"id"`
	Company          string          `json:"company"`
	ContactPerson    string          `json:"contact_person"`
	Email            string          `json:"email"`
	Phone            string          `json:"phone"`
	Status           string          `json:"status"`
	MonthlySpendings decimal.Decimal `json:"monthly_spendings"`
	Sector           string          `json:"sector"`
	Notes            string          `json:"notes,omitempty"`
	CommissionTiers  []TierPayload   `json:"commission_tiers"`
	CreatedAt        string          `json:"created_at"`
	UpdatedAt        string          `json:"updated_at"`
}

func (r CustomerRequest) toService() service.CustomerRequest {
	return service.CustomerRequest{
		Company:          r.Company,
		ContactPerson:    r.ContactPerson,
		Email:            r.Email,
		Phone:            r.Phone,
		Status:           domain.CustomerStatus(r.Status),
		MonthlySpendings: r.MonthlySpendings,
		Sector:           r.Sector,
		Notes:            r.Notes,
		CommissionTiers:  toDomainTiers(r.CommissionTiers),
	}
}

func toCustomerResponse(c *domain.Customer) CustomerResponse {
	return CustomerResponse{
		ID:               c.ID,
		Company:          c.Company,
		ContactPerson:    c.ContactPerson,
		Email:            c.Email,
		Phone:            c.Phone,
		Status:           string(c.Status),
		MonthlySpendings: c.MonthlySpendings,
		Sector:           c.Sector,
		Notes:            c.Notes,
		CommissionTiers:  toTierPayloads(c.CommissionTiers),
		CreatedAt:        formatTime(c.CreatedAt),
		UpdatedAt:        formatTime(c.UpdatedAt),
	}
}

// CreateCustomer handles POST /v1/customers
func (h *CustomerHandler) CreateCustomer(c *gin.Context) {
	var req CustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	customer, err := h.customerService.CreateCustomer(c.Request.Context(), req.toService())
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, toCustomerResponse(customer))
}

// GetAll handles GET /v1/customers
func (h *CustomerHandler) GetAll(c *gin.Context) {
	customers, err := h.customerService.ListCustomers(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]CustomerResponse, 0, len(customers))
	for _, customer := range customers {
		response = append(response, toCustomerResponse(customer))
	}

	respondJSON(c, http.StatusOK, response)
}

// GetCustomer handles GET /v1/customers/:id
func (h *CustomerHandler) GetCustomer(c *gin.Context) {
	customer, err := h.customerService.GetCustomer(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toCustomerResponse(customer))
}

// UpdateCustomer handles PUT /v1/customers/:id
func (h *CustomerHandler) UpdateCustomer(c *gin.Context) {
	var req CustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	customer, err := h.customerService.UpdateCustomer(c.Request.Context(), c.Param("id"), req.toService())
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toCustomerResponse(customer))
}

// DeleteCustomer handles DELETE /v1/customers/:id
func (h *CustomerHandler) DeleteCustomer(c *gin.Context) {
	if err := h.customerService.DeleteCustomer(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// ReplaceTiers handles PUT /v1/customers/:id/tiers
func (h *CustomerHandler) ReplaceTiers(c *gin.Context) {
	var req TiersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	tiers, err := h.customerService.UpdateTiers(c.Request.Context(), c.Param("id"), toDomainTiers(req.CommissionTiers))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, TiersResponse{CommissionTiers: toTierPayloads(tiers), Valid: true})
}

// ValidateTiers handles POST /v1/tiers/validate
func (h *CustomerHandler) ValidateTiers(c *gin.Context) {
	var req TiersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	tiers, err := h.customerService.ValidateTiers(toDomainTiers(req.CommissionTiers))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, TiersResponse{CommissionTiers: toTierPayloads(tiers), Valid: true})
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}
