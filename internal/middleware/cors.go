package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/cors"
)

// CORSMiddleware allows the configured front-end origin to call the API.
// An empty origin allows any origin without credentials.
func CORSMiddleware(allowedOrigin string) gin.HandlerFunc {
	opts := cors.Options{
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "Authorization", idempotencyHeader},
		ExposedHeaders: []string{"Idempotent-Replayed"},

		OptionsSuccessStatus: http.StatusNoContent,
	}
	if allowedOrigin == "" {
		opts.AllowedOrigins = []string{"*"}
	} else {
		opts.AllowedOrigins = []string{allowedOrigin}
		opts.AllowCredentials = true
	}
	c := cors.New(opts)

	return func(ctx *gin.Context) {
		c.HandlerFunc(ctx.Writer, ctx.Request)

		// Preflight requests end here.
		if ctx.Request.Method == http.MethodOptions && ctx.GetHeader("Access-Control-Request-Method") != "" {
			ctx.AbortWithStatus(http.StatusNoContent)
			return
		}

		ctx.Next()
	}
}
