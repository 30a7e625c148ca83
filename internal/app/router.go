package app

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/newrelic/go-agent/v3/integrations/nrgin"
	"github.com/newrelic/go-agent/v3/newrelic"

	"billing/internal/handler"
	"billing/internal/middleware"
)

// RouterDeps contains all dependencies needed for the router.
type RouterDeps struct {
	CustomerHandler  *handler.CustomerHandler
	PaymentHandler   *handler.PaymentHandler
	IdempotencyStore middleware.ResponseStore // Optional
	NewRelicApp      *newrelic.Application    // Optional
	AllowedOrigin    string
}

// NewRouter creates a new Gin router with all routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	router := gin.New()

	// Global middleware.
	router.Use(gin.Recovery())
	router.Use(gin.Logger())
	router.Use(middleware.CORSMiddleware(deps.AllowedOrigin))

	if deps.NewRelicApp != nil {
		router.Use(nrgin.Middleware(deps.NewRelicApp))
	}

	router.Use(middleware.IdempotencyMiddleware(deps.IdempotencyStore))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := router.Group("/v1")
	{
		customers := v1.Group("/customers")
		{
			customers.POST("", deps.CustomerHandler.CreateCustomer)
			customers.GET("", deps.CustomerHandler.GetAll)
			customers.GET("/:id", deps.CustomerHandler.GetCustomer)
			customers.PUT("/:id", deps.CustomerHandler.UpdateCustomer)
			customers.DELETE("/:id", deps.CustomerHandler.DeleteCustomer)
			customers.PUT("/:id/tiers", deps.CustomerHandler.ReplaceTiers)
			customers.GET("/:id/payments", deps.PaymentHandler.GetCustomerPayments)
		}

		v1.POST("/tiers/validate", deps.CustomerHandler.ValidateTiers)

		payments := v1.Group("/payments")
		{
			payments.POST("", deps.PaymentHandler.CreatePayment)
			payments.POST("/quote", deps.PaymentHandler.QuotePayment)
			payments.GET("", deps.PaymentHandler.GetAll)
			payments.GET("/:id", deps.PaymentHandler.GetPayment)
			payments.PUT("/:id", deps.PaymentHandler.UpdatePayment)
			payments.DELETE("/:id", deps.PaymentHandler.DeletePayment)
		}
	}

	return router
}
