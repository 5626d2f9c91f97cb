package middleware

import (
	"sync"
	"time"

	"storefront/internal/apperr"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"
)

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter はIPごとのトークンバケット。
type RateLimiter struct {
	visitors   map[string]*visitor
	mu         sync.Mutex
	limit      rate.Limit
	burst      int
	ttl        time.Duration
	sweepEvery time.Duration
	lastSweep  time.Time
	now        func() time.Time
}

// perMinute回/分。burstは同じ値
func NewRateLimiter(perMinute int) *RateLimiter {
	if perMinute <= 0 {
		perMinute = 30
	}
	return &RateLimiter{
		visitors:   make(map[string]*visitor),
		limit:      rate.Every(time.Minute / time.Duration(perMinute)),
		burst:      perMinute,
		ttl:        10 * time.Minute,
		sweepEvery: time.Minute,
		now:        time.Now,
	}
}

// IPのlimiterを取得（無ければ作る）。古いIPの掃除はsweepEveryに1回
func (rl *RateLimiter) getLimiter(ip string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	if now.Sub(rl.lastSweep) >= rl.sweepEvery {
		for k, v := range rl.visitors {
			if now.Sub(v.lastSeen) > rl.ttl {
				delete(rl.visitors, k)
			}
		}
		rl.lastSweep = now
	}

	if v, ok := rl.visitors[ip]; ok {
		v.lastSeen = now
		return v.limiter
	}

	l := rate.NewLimiter(rl.limit, rl.burst)
	rl.visitors[ip] = &visitor{limiter: l, lastSeen: now}
	return l
}

func (rl *RateLimiter) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !rl.getLimiter(c.RealIP()).Allow() {
				e := &apperr.Error{Kind: apperr.KindRateLimited, Code: apperr.CodeTooManyRequests, Message: "too many requests"}
				return c.JSON(e.Status(), e.Response())
			}
			return next(c)
		}
	}
}
