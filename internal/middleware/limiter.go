package middleware

import (
	"math"
	"strconv"

	"github.com/haierkeys/personal-notes/pkg/app"
	"github.com/haierkeys/personal-notes/pkg/code"
	"github.com/haierkeys/personal-notes/pkg/limiter"

	"github.com/gin-gonic/gin"
)

// RateLimiter 令牌桶限流，只作用于配置了桶的路由
// Routes without a bucket pass through. An empty bucket answers 429 with Retry-After in seconds.
func RateLimiter(l limiter.Face) gin.HandlerFunc {
	return func(c *gin.Context) {
		bucket, ok := l.GetBucket(l.Key(c))
		if !ok || bucket.TakeAvailable(1) > 0 {
			c.Next()
			return
		}

		wait := 1
		if rate := bucket.Rate(); rate > 0 {
			wait = max(1, int(math.Ceil(1/rate-1e-6)))
		}
		c.Header("Retry-After", strconv.Itoa(wait))
		app.NewResponse(c).ToResponse(code.ErrorTooManyRequests)
		c.Abort()
	}
}
