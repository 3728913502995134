package middleware

import (
	"net/http"
	"sync"
	"time"

	"modapos/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// limiter is a fixed-window per-IP counter. One instance per guarded surface
// (login, whole API) so a login flood cannot exhaust the API budget.
type limiter struct {
	mu      sync.Mutex
	limit   int
	window  time.Duration
	mensaje string

	entries map[string]*ventana
}

type ventana struct {
	count int
	hasta time.Time
}

func newLimiter(limit int, window time.Duration, mensaje string) *limiter {
	l := &limiter{
		limit:   limit,
		window:  window,
		mensaje: mensaje,
		entries: make(map[string]*ventana),
	}
	go l.purgeLoop()
	return l
}

// allow counts one hit for the IP and reports whether it is still inside the
// window budget. Returns the window end for the Retry-After header.
func (l *limiter) allow(ip string) (bool, time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	v, ok := l.entries[ip]
	if !ok || now.After(v.hasta) {
		v = &ventana{hasta: now.Add(l.window)}
		l.entries[ip] = v
	}
	v.count++
	return v.count <= l.limit, v.hasta
}

// purgeLoop drops expired windows so the map does not grow with IPs that
// never return.
func (l *limiter) purgeLoop() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		now := time.Now()
		purged := 0
		l.mu.Lock()
		for ip, v := range l.entries {
			if now.After(v.hasta) {
				delete(l.entries, ip)
				purged++
			}
		}
		l.mu.Unlock()
		if purged > 0 {
			log.Debug().Int("purged", purged).Msg("rate limiter: ventanas expiradas eliminadas")
		}
	}
}

func (l *limiter) middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ok, hasta := l.allow(c.ClientIP())
		if !ok {
			c.Header("Retry-After", hasta.Format(time.RFC1123))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, apierror.New(l.mensaje))
			return
		}
		c.Next()
	}
}

var loginLimiter = newLimiter(20, time.Minute, "Demasiados intentos de login. Intente en 1 minuto.")

// LoginRateLimiter caps login attempts at 20 per minute per IP.
func LoginRateLimiter() gin.HandlerFunc {
	return loginLimiter.middleware()
}

// RateLimiter caps the whole API at limit requests per window per IP.
func RateLimiter(limit int, window time.Duration) gin.HandlerFunc {
	return newLimiter(limit, window, "Demasiadas solicitudes. Intente nuevamente en un momento.").middleware()
}
