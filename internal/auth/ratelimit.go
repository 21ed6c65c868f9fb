package auth

import (
	"context"
	"net/http"
	"sync"
	"time"

	"hatirlat/internal/config"
	"hatirlat/internal/logger"

	"github.com/gin-gonic/gin"
	"github.com/jmhodges/clock"
	"golang.org/x/time/rate"
)

// PremiumChecker reports whether an account is exempt from the free tier limit
type PremiumChecker func(ctx context.Context, username string) (bool, error)

// FreeLimiter caps the request rate of non-premium accounts, one token bucket per user
type FreeLimiter struct {
	limit     rate.Limit
	burst     int
	isPremium PremiumChecker
	clock     clock.Clock

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// NewFreeLimiter allows cfg.MaxRequests per cfg.PerSeconds for each free account
func NewFreeLimiter(cfg config.FreeLimitConfig, isPremium PremiumChecker, clk clock.Clock) *FreeLimiter {
	window := time.Duration(cfg.PerSeconds) * time.Second
	return &FreeLimiter{
		limit:     rate.Every(window / time.Duration(cfg.MaxRequests)),
		burst:     cfg.MaxRequests,
		isPremium: isPremium,
		clock:     clk,
		limiters:  make(map[string]*rate.Limiter),
	}
}

// Allow consumes one request for username
func (l *FreeLimiter) Allow(ctx context.Context, username string) bool {
	if l.isPremium != nil {
		premium, err := l.isPremium(ctx, username)
		if err != nil {
			logger.Warn("Premium lookup failed, applying free limit", "username", username, "err", err)
		} else if premium {
			return true
		}
	}

	l.mu.Lock()
	limiter, ok := l.limiters[username]
	if !ok {
		limiter = rate.NewLimiter(l.limit, l.burst)
		l.limiters[username] = limiter
	}
	l.mu.Unlock()

	return limiter.AllowN(l.clock.Now(), 1)
}

// Middleware rejects over-limit requests with 429. It must run after AuthMiddleware.
func (l *FreeLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !l.Allow(c.Request.Context(), Username(c)) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"message": "free plan limit reached, please try again later",
			})
			return
		}
		c.Next()
	}
}
