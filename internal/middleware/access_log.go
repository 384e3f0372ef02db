package middleware

import (
	"net/http"
	"time"

	"github.com/haierkeys/personal-notes/pkg/app"
	"github.com/haierkeys/personal-notes/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AccessLogWithLogger writes one entry per request, message is the path.
// 5xx answers are logged at warn level.
func AccessLogWithLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		url := c.Request.URL.Path
		if q := c.Request.URL.RawQuery; q != "" {
			url += "?" + q
		}
		status := c.Writer.Status()

		fields := []zap.Field{
			zap.String(logger.FieldTraceID, GetTraceIDFromGin(c)),
			zap.String(logger.FieldMethod, c.Request.Method),
			zap.String("url", url),
			zap.Int("status", status),
			zap.Duration(logger.FieldDuration, time.Since(start)),
			zap.String("ip", app.GetRequestIP(c)),
			zap.String("user-agent", c.Request.UserAgent()),
		}
		if errs := c.Errors.ByType(gin.ErrorTypePrivate).String(); errs != "" {
			fields = append(fields, zap.String("errors", errs))
		}

		if status >= http.StatusInternalServerError {
			log.Warn(c.Request.URL.Path, fields...)
			return
		}
		log.Info(c.Request.URL.Path, fields...)
	}
}
