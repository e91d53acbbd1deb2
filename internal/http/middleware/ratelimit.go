package middleware

import (
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/httprate"
	"github.com/partbridge/marketplace-api/internal/auth"
	"github.com/partbridge/marketplace-api/internal/config"
	"go.uber.org/zap"
)

// RateLimiter throttles traffic in two tiers: a tight anonymous tier
// for the public quote-request form and login, and a wider portal tier
// keyed per user once authenticated. Health probes and trusted IPs
// bypass both.
type RateLimiter struct {
	cfg         *config.RateLimitConfig
	logger      *zap.Logger
	anonymous   func(http.Handler) http.Handler
	portal      func(http.Handler) http.Handler
	exemptIPs   map[string]struct{}
	exemptPaths map[string]struct{}
}

func NewRateLimiter(cfg *config.RateLimitConfig, logger *zap.Logger) *RateLimiter {
	rl := &RateLimiter{
		cfg:         cfg,
		logger:      logger,
		exemptIPs:   make(map[string]struct{}, len(cfg.ExemptIPs)),
		exemptPaths: make(map[string]struct{}, len(cfg.ExemptPaths)),
	}
	for _, ip := range cfg.ExemptIPs {
		rl.exemptIPs[ip] = struct{}{}
	}
	for _, path := range cfg.ExemptPaths {
		rl.exemptPaths[path] = struct{}{}
	}

	rl.anonymous = httprate.Limit(
		cfg.AnonymousPerMinute,
		time.Minute,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(rl.rejected),
	)
	rl.portal = httprate.Limit(
		cfg.PortalPerMinute,
		time.Minute,
		httprate.WithKeyFuncs(rl.keyByUserOrIP),
		httprate.WithLimitHandler(rl.rejected),
	)

	logger.Info("rate limiter initialized",
		zap.Int("anonymous_per_minute", cfg.AnonymousPerMinute),
		zap.Int("portal_per_minute", cfg.PortalPerMinute),
		zap.Strings("exempt_ips", cfg.ExemptIPs),
		zap.Strings("exempt_paths", cfg.ExemptPaths),
	)
	return rl
}

// Limit picks the portal tier for authenticated requests and the
// anonymous tier otherwise. Intended inside the auth middleware.
func (rl *RateLimiter) Limit(next http.Handler) http.Handler {
	if !rl.cfg.Enabled {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if rl.exempt(r) {
			next.ServeHTTP(w, r)
			return
		}
		if _, ok := auth.FromContext(r.Context()); ok {
			rl.portal(next).ServeHTTP(w, r)
			return
		}
		rl.anonymous(next).ServeHTTP(w, r)
	})
}

// LimitByIP applies the anonymous tier regardless of authentication.
// Runs globally, before the token is parsed.
func (rl *RateLimiter) LimitByIP(next http.Handler) http.Handler {
	if !rl.cfg.Enabled {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if rl.exempt(r) {
			next.ServeHTTP(w, r)
			return
		}
		rl.anonymous(next).ServeHTTP(w, r)
	})
}

// exempt reports whether the request skips throttling entirely
func (rl *RateLimiter) exempt(r *http.Request) bool {
	if _, ok := rl.exemptPaths[r.URL.Path]; ok {
		return true
	}
	for path := range rl.exemptPaths {
		if prefix, ok := strings.CutSuffix(path, "/*"); ok && strings.HasPrefix(r.URL.Path, prefix) {
			return true
		}
	}
	_, ok := rl.exemptIPs[clientIP(r)]
	return ok
}

func (rl *RateLimiter) keyByUserOrIP(r *http.Request) (string, error) {
	if userCtx, ok := auth.FromContext(r.Context()); ok {
		return "user:" + userCtx.UserID.String(), nil
	}
	return "ip:" + clientIP(r), nil
}

// clientIP resolves the caller's address, honoring the proxy headers
// set by the ingress in front of the portal
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func (rl *RateLimiter) rejected(w http.ResponseWriter, r *http.Request) {
	fields := []zap.Field{
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.String("client_ip", clientIP(r)),
	}
	if userCtx, ok := auth.FromContext(r.Context()); ok {
		fields = append(fields, zap.String("user_id", userCtx.UserID.String()))
	}
	rl.logger.Warn("rate limit exceeded", fields...)

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Retry-After", "60")
	w.WriteHeader(http.StatusTooManyRequests)
	_, _ = w.Write([]byte(`{"error":"rate_limited","message":"Too many requests, slow down and retry shortly"}`))
}
