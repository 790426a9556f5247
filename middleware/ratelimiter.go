package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ulule/limiter/v3"
	ginlimiter "github.com/ulule/limiter/v3/drivers/middleware/gin"
	memory "github.com/ulule/limiter/v3/drivers/store/memory"
)

// PublicRateLimiter caps unauthenticated traffic per IP. The public
// confirmation and registration links are guessable surfaces, so they get a
// tighter cap than the authenticated API.
func PublicRateLimiter(limit int64) gin.HandlerFunc {
	store := memory.NewStore()
	rate := limiter.Rate{
		Period: 1 * time.Minute,
		Limit:  limit,
	}
	instance := limiter.New(store, rate)
	return ginlimiter.NewMiddleware(instance)
}
