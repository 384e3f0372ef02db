package middleware

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	DefaultTraceIDHeader = "X-Trace-ID"
	// TraceIDKey gin.Context 中的 trace id 键
	TraceIDKey = "trace_id"
)

type traceIDCtxKey struct{}

// TraceMiddleware tags every request with a trace id.
// An id sent by the client in headerName is reused, otherwise a UUID is minted.
// The id is echoed in the response header and stored in both gin and request contexts,
// so note service logs written below the handler can carry it.
func TraceMiddleware(enabled bool, headerName string) gin.HandlerFunc {
	if !enabled {
		return func(c *gin.Context) { c.Next() }
	}
	if headerName == "" {
		headerName = DefaultTraceIDHeader
	}
	return func(c *gin.Context) {
		id := c.GetHeader(headerName)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(TraceIDKey, id)
		c.Request = c.Request.WithContext(WithTraceID(c.Request.Context(), id))
		c.Header(headerName, id)
		c.Next()
	}
}

// WithTraceID 将 trace id 写入 ctx
func WithTraceID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, traceIDCtxKey{}, id)
}

func GetTraceID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(traceIDCtxKey{}).(string)
	return id
}

func GetTraceIDFromGin(c *gin.Context) string {
	if c == nil {
		return ""
	}
	return c.GetString(TraceIDKey)
}
