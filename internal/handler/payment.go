package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"billing/internal/domain"
	"billing/internal/pricing"
	"billing/internal/service"
)

// PaymentHandler handles HTTP requests for payments.
type PaymentHandler struct {
	paymentService *service.PaymentService
}

// NewPaymentHandler creates a new PaymentHandler.
func NewPaymentHandler(paymentService *service.PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService}
}

// PaymentRequest is the HTTP request body for creating, replacing or quoting a payment.
type PaymentRequest struct {
	CustomerID       string           `json:"customer_id"`
	Amount           *decimal.Decimal `json:"amount"`
	PaymentDate      time.Time        `json:"payment_date"`
	PaymentMethod    string           `json:"payment_method"` // CREDIT_CARD, BANK_TRANSFER
	ServiceType      string           `json:"service_type"`
	Bank             string           `json:"bank,omitempty"`
	HasCommission    bool             `json:"has_commission"`
	CommissionRate   *decimal.Decimal `json:"commission_rate,omitempty"`
	CommissionAmount *decimal.Decimal `json:"commission_amount,omitempty"`
	HasVAT           *bool            `json:"has_vat,omitempty"` // Defaults to true
	IsVATExempt      bool             `json:"is_vat_exempt"`
}

// PaymentResponse is the HTTP response for payment operations.
type PaymentResponse struct {
	ID               string           `json:"id"`
	CustomerID       string           `json:"customer_id"`
	Amount           decimal.Decimal  `json:"amount"`
	PaymentDate      string           `json:"payment_date"`
	PaymentMethod    string           `json:"payment_method"`
	ServiceType      string           `json:"service_type"`
	Bank             string           `json:"bank,omitempty"`
	HasCommission    bool             `json:"has_commission"`
	CommissionRate   *decimal.Decimal `json:"commission_rate,omitempty"`
	CommissionAmount decimal.Decimal  `json:"commission_amount"`
	HasVAT           bool             `json:"has_vat"`
	IsVATExempt      bool             `json:"is_vat_exempt"`
	VATAmount        decimal.Decimal  `json:"vat_amount"`
	NetAmount        decimal.Decimal  `json:"net_amount"`
	TotalAmount      decimal.Decimal  `json:"total_amount"`
	CreatedAt        string           `json:"created_at"`
	UpdatedAt        string           `json:"updated_at"`
}

// QuoteResponse is the HTTP response for a payment quote.
type QuoteResponse struct {
	CommissionAmount decimal.Decimal `json:"commission_amount"`
	CommissionSource string          `json:"commission_source"`
	Tier             *TierPayload    `json:"tier,omitempty"`
	VATAmount        decimal.Decimal `json:"vat_amount"`
	NetAmount        decimal.Decimal `json:"net_amount"`
	TotalAmount      decimal.Decimal `json:"total_amount"`
}

func (r PaymentRequest) toService() service.PaymentRequest {
	hasVAT := true
	if r.HasVAT != nil {
		hasVAT = *r.HasVAT
	}

	return service.PaymentRequest{
		CustomerID:       r.CustomerID,
		Amount:           *r.Amount,
		PaymentDate:      r.PaymentDate,
		PaymentMethod:    domain.PaymentMethod(r.PaymentMethod),
		ServiceType:      domain.ServiceType(r.ServiceType),
		Bank:             r.Bank,
		HasCommission:    r.HasCommission,
		CommissionRate:   r.CommissionRate,
		CommissionAmount: r.CommissionAmount,
		HasVAT:           hasVAT,
		IsVATExempt:      r.IsVATExempt,
	}
}

func toPaymentResponse(p *domain.Payment) PaymentResponse {
	return PaymentResponse{
		ID:               p.ID,
		CustomerID:       p.CustomerID,
		Amount:           p.Amount,
		PaymentDate:      formatTime(p.PaymentDate),
		PaymentMethod:    string(p.PaymentMethod),
		ServiceType:      string(p.ServiceType),
		Bank:             p.Bank,
		HasCommission:    p.HasCommission,
		CommissionRate:   p.CommissionRate,
		CommissionAmount: p.CommissionAmount,
		HasVAT:           p.HasVAT,
		IsVATExempt:      p.IsVATExempt,
		VATAmount:        p.VATAmount,
		NetAmount:        p.NetAmount,
		TotalAmount:      p.TotalAmount,
		CreatedAt:        formatTime(p.CreatedAt),
		UpdatedAt:        formatTime(p.UpdatedAt),
	}
}

func toQuoteResponse(b pricing.Breakdown) QuoteResponse {
	resp := QuoteResponse{
		CommissionAmount: b.CommissionAmount,
		CommissionSource: string(b.CommissionSource),
		VATAmount:        b.VATAmount,
		NetAmount:        b.NetAmount,
		TotalAmount:      b.TotalAmount,
	}
	if b.Tier != nil {
		tier := toTierPayloads([]domain.CommissionTier{*b.Tier})[0]
		resp.Tier = &tier
	}
	return resp
}

// bindPaymentRequest decodes the body and checks the fields gin cannot enforce.
func bindPaymentRequest(c *gin.Context) (PaymentRequest, bool) {
	var req PaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return req, false
	}

	if req.CustomerID == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "customer_id is required"})
		return req, false
	}

	if req.Amount == nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "amount is required"})
		return req, false
	}

	return req, true
}

// CreatePayment handles POST /v1/payments
func (h *PaymentHandler) CreatePayment(c *gin.Context) {
	req, ok := bindPaymentRequest(c)
	if !ok {
		return
	}

	payment, err := h.paymentService.CreatePayment(c.Request.Context(), req.toService())
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, toPaymentResponse(payment))
}

// QuotePayment handles POST /v1/payments/quote
func (h *PaymentHandler) QuotePayment(c *gin.Context) {
	req, ok := bindPaymentRequest(c)
	if !ok {
		return
	}

	breakdown, err := h.paymentService.Quote(c.Request.Context(), req.toService())
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toQuoteResponse(breakdown))
}

// GetAll handles GET /v1/payments
func (h *PaymentHandler) GetAll(c *gin.Context) {
	payments, err := h.paymentService.ListPayments(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toPaymentResponses(payments))
}

// GetCustomerPayments handles GET /v1/customers/:id/payments
func (h *PaymentHandler) GetCustomerPayments(c *gin.Context) {
	payments, err := h.paymentService.ListCustomerPayments(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toPaymentResponses(payments))
}

// GetPayment handles GET /v1/payments/:id
func (h *PaymentHandler) GetPayment(c *gin.Context) {
	payment, err := h.paymentService.GetPayment(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toPaymentResponse(payment))
}

// UpdatePayment handles PUT /v1/payments/:id
func (h *PaymentHandler) UpdatePayment(c *gin.Context) {
	req, ok := bindPaymentRequest(c)
	if !ok {
		return
	}

	payment, err := h.paymentService.UpdatePayment(c.Request.Context(), c.Param("id"), req.toService())
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toPaymentResponse(payment))
}

// DeletePayment handles DELETE /v1/payments/:id
func (h *PaymentHandler) DeletePayment(c *gin.Context) {
	if err := h.paymentService.DeletePayment(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func toPaymentResponses(payments []*domain.Payment) []PaymentResponse {
	response := make([]PaymentResponse, 0, len(payments))
	for _, p := range payments {
		response = append(response, toPaymentResponse(p))
	}
	return response
}
