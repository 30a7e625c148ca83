package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const (
	idempotencyHeader = "Idempotency-Key"
	idempotencyTTL    = 24 * time.Hour
)

// ResponseStore records responses for replay. Implemented by redis.IdempotencyStore.
type ResponseStore interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
}

// cachedResponse stores the response for idempotent requests.
type cachedResponse struct {
	StatusCode int             `json:"status_code"`
	Body       json.RawMessage `json:"body"`
	Headers    http.Header     `json:"headers"`
}

// responseWriter wraps gin.ResponseWriter to capture the response.
type responseWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w *responseWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

// IdempotencyMiddleware replays the recorded response when a mutating request
// repeats an Idempotency-Key on the same route, so a retried payment POST
// does not record the payment twice. Store failures never block the request.
func IdempotencyMiddleware(store ResponseStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		if store == nil || !isMutating(c.Request.Method) {
			c.Next()
			return
		}

		key := c.GetHeader(idempotencyHeader)
		if key == "" {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		// Keys are scoped per route so one key cannot replay another endpoint's response.
		storeKey := c.Request.Method + ":" + c.Request.URL.Path + ":" + key

		if cached, ok := lookupResponse(ctx, store, storeKey); ok {
			for k, v := range cached.Headers {
				for _, val := range v {
					c.Header(k, val)
				}
			}
			c.Header("Idempotent-Replayed", "true")
			c.Data(cached.StatusCode, "application/json", cached.Body)
			c.Abort()
			return
		}

		w := &responseWriter{
			ResponseWriter: c.Writer,
			body:           &bytes.Buffer{},
		}
		c.Writer = w

		c.Next()

		// Server errors are not recorded so the client can retry.
		status := c.Writer.Status()
		if status < 200 || status >= 500 {
			return
		}

		data, err := json.Marshal(cachedResponse{
			StatusCode: status,
			Body:       w.body.Bytes(),
			Headers:    extractResponseHeaders(c),
		})
		if err != nil {
			return
		}
		_ = store.Set(ctx, storeKey, data, idempotencyTTL)
	}
}

func isMutating(method string) bool {
	return method == http.MethodPost || method == http.MethodPut || method == http.MethodPatch
}

// lookupResponse returns a previously recorded response, if any.
func lookupResponse(ctx context.Context, store ResponseStore, key string) (*cachedResponse, bool) {
	data, ok, err := store.Get(ctx, key)
	if err != nil || !ok {
		return nil, false
	}

	var cached cachedResponse
	if err := json.Unmarshal(data, &cached); err != nil {
		return nil, false
	}
	return &cached, true
}

// extractResponseHeaders extracts headers to cache.
func extractResponseHeaders(c *gin.Context) http.Header {
	headers := make(http.Header)
	// Only cache Content-Type header.
	if ct := c.Writer.Header().Get("Content-Type"); ct != "" {
		headers.Set("Content-Type", ct)
	}
	return headers
}
