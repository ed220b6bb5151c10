package middleware

import (
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/nulzo/cachekit/pkg/api"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// RateLimiter keeps one token bucket per client IP.
type RateLimiter struct {
	clients map[string]*rate.Limiter
	mu      sync.RWMutex
	rps     rate.Limit
	burst   int
	logger  *zap.Logger
}

// NewRateLimiter creates a limiter allowing rps requests per second per
// client with the given burst. rps <= 0 disables limiting.
func NewRateLimiter(rps float64, burst int, logger *zap.Logger) *RateLimiter {
	limit := rate.Limit(rps)
	if rps <= 0 {
		limit = rate.Inf
	}
	return &RateLimiter{
		clients: make(map[string]*rate.Limiter),
		rps:     limit,
		burst:   burst,
		logger:  logger,
	}
}

// getLimiter returns the limiter of ip, creating it on first use.
func (rl *RateLimiter) getLimiter(ip string) *rate.Limiter {
	rl.mu.RLock()
	limiter, exists := rl.clients[ip]
	rl.mu.RUnlock()

	if exists {
		return limiter
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()

	// Double-check after acquiring write lock
	if limiter, exists = rl.clients[ip]; exists {
		return limiter
	}

	limiter = rate.NewLimiter(rl.rps, rl.burst)
	rl.clients[ip] = limiter

	return limiter
}

// Middleware returns the Gin middleware handler.
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()
		limiter := rl.getLimiter(ip)

		if !limiter.Allow() {
			rl.logger.Warn("Rate limit exceeded",
				zap.String("ip", ip),
				zap.String("path", c.Request.URL.Path),
			)
			problem := api.TooManyRequests("rate limit exceeded")
			c.AbortWithStatusJSON(problem.Status, problem)
			return
		}

		c.Next()
	}
}
