package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"billing/internal/pricing"
	"billing/internal/repository"
	"billing/internal/service"
	"billing/internal/tests"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testServer struct {
	router    *gin.Engine
	customers *tests.MockCustomerRepository
	payments  *tests.MockPaymentRepository
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	customers := tests.NewMockCustomerRepository()
	payments := tests.NewMockPaymentRepository(customers)
	customers.LinkPayments(payments)

	calc, err := pricing.NewCalculator(pricing.DefaultVATRate)
	require.NoError(t, err)

	customerService := service.NewCustomerService(customers, tests.NewMockTierCache(), tests.NewMockLockStore(), 0)
	paymentService := service.NewPaymentService(payments, customerService, calc)
	customerHandler := NewCustomerHandler(customerService)
	paymentHandler := NewPaymentHandler(paymentService)

	router := gin.New()
	v1 := router.Group("/v1")
	v1.POST("/customers", customerHandler.CreateCustomer)
	v1.GET("/customers/:id", customerHandler.GetCustomer)
	v1.DELETE("/customers/:id", customerHandler.DeleteCustomer)
	v1.PUT("/customers/:id/tiers", customerHandler.ReplaceTiers)
	v1.POST("/tiers/validate", customerHandler.ValidateTiers)
	v1.POST("/payments", paymentHandler.CreatePayment)
	v1.POST("/payments/quote", paymentHandler.QuotePayment)
	v1.GET("/payments/:id", paymentHandler.GetPayment)

	return &testServer{router: router, customers: customers, payments: payments}
}

func (s *testServer) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body == "" {
		reader = bytes.NewReader(nil)
	} else {
		reader = bytes.NewReader([]byte(body))
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *testServer) createCustomer(t *testing.T) string {
	t.Helper()
	w := s.do(t, http.MethodPost, "/v1/customers", `{
		"company": "Acme Ltd",
		"contact_person": "Jordan Smith",
		"email": "billing@acme.example",
		"phone": "+90 555 000 0000",
		"sector": "retail",
		"monthly_spendings": 2500,
		"commission_tiers": [
			{"min_amount": 1000.01, "fee_type": "PERCENTAGE", "rate": 3},
			{"min_amount": 0, "max_amount": 1000, "fee_type": "PERCENTAGE", "rate": 5}
		]
	}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp CustomerResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.ID
}

func TestCreateCustomer_ReturnsCanonicalTiers(t *testing.T) {
	t.Parallel()

	s := newTestServer(t)
	id := s.createCustomer(t)

	w := s.do(t, http.MethodGet, "/v1/customers/"+id, "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp CustomerResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.CommissionTiers, 2)
	assert.Equal(t, "0", resp.CommissionTiers[0].MinAmount.String())
	assert.Equal(t, "pending", resp.Status)
}

func TestValidateTiers_ReportsFieldDetails(t *testing.T) {
	t.Parallel()

	s := newTestServer(t)

	w := s.do(t, http.MethodPost, "/v1/tiers/validate", `{
		"commission_tiers": [
			{"min_amount": 500, "max_amount": 2000, "fee_type": "PERCENTAGE", "rate": 3},
			{"min_amount": 0, "max_amount": 1000, "fee_type": "FIXED"}
		]
	}`)
	require.Equal(t, http.StatusBadRequest, w.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "invalid commission tiers", resp.Error)
	assert.Equal(t, []string{
		"tiers[0].fixedAmount: is required for FIXED tiers",
		"tiers[1].minAmount: must be greater than previous tier maxAmount 1000",
	}, resp.Details)
}

func TestValidateTiers_ValidListIsSorted(t *testing.T) {
	t.Parallel()

	s := newTestServer(t)

	w := s.do(t, http.MethodPost, "/v1/tiers/validate", `{
		"commission_tiers": [
			{"min_amount": 5000, "fee_type": "FIXED", "fixed_amount": 250},
			{"min_amount": 0, "max_amount": 4999.99, "fee_type": "FIXED", "fixed_amount": 100}
		]
	}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp TiersResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Valid)
	require.Len(t, resp.CommissionTiers, 2)
	assert.Equal(t, "0", resp.CommissionTiers[0].MinAmount.String())
	assert.Nil(t, resp.CommissionTiers[1].MaxAmount)
}

func TestReplaceTiers_UnknownCustomer(t *testing.T) {
	t.Parallel()

	s := newTestServer(t)

	w := s.do(t, http.MethodPut, "/v1/customers/missing/tiers", `{"commission_tiers": []}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreatePayment_DefaultsToVAT(t *testing.T) {
	t.Parallel()

	s := newTestServer(t)
	id := s.createCustomer(t)

	w := s.do(t, http.MethodPost, "/v1/payments", fmt.Sprintf(`{
		"customer_id": %q,
		"amount": 500,
		"payment_date": "2024-03-15T00:00:00Z",
		"payment_method": "BANK_TRANSFER",
		"service_type": "META_ADS",
		"has_commission": true
	}`, id))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp PaymentResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.HasVAT)
	assert.Equal(t, "25", resp.CommissionAmount.String())
	assert.Equal(t, "475", resp.NetAmount.String())
	assert.Equal(t, "100", resp.VATAmount.String())
	assert.Equal(t, "600", resp.TotalAmount.String())
}

func TestCreatePayment_Errors(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		body     string
		wantCode int
	}{
		{
			name:     "malformed json",
			body:     `{"customer_id":`,
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "missing amount",
			body:     `{"customer_id": "c1", "payment_date": "2024-03-15T00:00:00Z", "payment_method": "CREDIT_CARD", "service_type": "GOOGLE_ADS"}`,
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "negative amount for unknown customer",
			body:     `{"customer_id": "c1", "amount": -5, "payment_date": "2024-03-15T00:00:00Z", "payment_method": "CREDIT_CARD", "service_type": "GOOGLE_ADS"}`,
			wantCode: http.StatusNotFound, // customer lookup happens before pricing
		},
		{
			name:     "unknown customer",
			body:     `{"customer_id": "c1", "amount": 100, "payment_date": "2024-03-15T00:00:00Z", "payment_method": "CREDIT_CARD", "service_type": "GOOGLE_ADS"}`,
			wantCode: http.StatusNotFound,
		},
		{
			name:     "invalid method",
			body:     `{"customer_id": "c1", "amount": 100, "payment_date": "2024-03-15T00:00:00Z", "payment_method": "CASH", "service_type": "GOOGLE_ADS"}`,
			wantCode: http.StatusBadRequest,
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			s := newTestServer(t)
			w := s.do(t, http.MethodPost, "/v1/payments", tc.body)
			assert.Equal(t, tc.wantCode, w.Code, w.Body.String())
		})
	}
}

func TestQuotePayment_NegativeAmount(t *testing.T) {
	t.Parallel()

	s := newTestServer(t)
	id := s.createCustomer(t)

	w := s.do(t, http.MethodPost, "/v1/payments/quote", fmt.Sprintf(`{"customer_id": %q, "amount": -1}`, id))
	require.Equal(t, http.StatusBadRequest, w.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "invalid amount: must not be negative", resp.Error)
}

func TestDeleteCustomer_WithPayments_Conflict(t *testing.T) {
	t.Parallel()

	s := newTestServer(t)
	id := s.createCustomer(t)

	w := s.do(t, http.MethodPost, "/v1/payments", fmt.Sprintf(`{
		"customer_id": %q,
		"amount": 100,
		"payment_date": "2024-03-15T00:00:00Z",
		"payment_method": "CREDIT_CARD",
		"service_type": "AI_CONSULTING"
	}`, id))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = s.do(t, http.MethodDelete, "/v1/customers/"+id, "")
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestMapErrorToHTTPStatus(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name string
		err  error
		want int
	}{
		{"not found", repository.ErrNotFound, http.StatusNotFound},
		{"wrapped not found", fmt.Errorf("%w: payments_customer_id_fkey", repository.ErrNotFound), http.StatusNotFound},
		{"tier validation", &pricing.ValidationError{}, http.StatusBadRequest},
		{"computation", &pricing.ComputationError{Field: "amount", Reason: "must not be negative"}, http.StatusBadRequest},
		{"no tier matched", pricing.ErrNoTierMatched, http.StatusUnprocessableEntity},
		{"lock busy", service.ErrTierUpdateInProgress, http.StatusConflict},
		{"has payments", service.ErrCustomerHasPayments, http.StatusConflict},
		{"duplicate", repository.ErrConflict, http.StatusConflict},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, mapErrorToHTTPStatus(tc.err))
		})
	}
}

func TestRespondError_MasksInternalErrors(t *testing.T) {
	t.Parallel()

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	respondError(c, errors.New("pq: connection refused"))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "internal server error")
	assert.NotContains(t, w.Body.String(), "connection refused")
}
