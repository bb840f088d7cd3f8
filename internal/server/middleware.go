package server

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/ytza/ytza/internal/observability/obscontext"
	"github.com/ytza/ytza/internal/ratelimit"
	"go.uber.org/zap"
)

const (
	ctxUserIDKey    = "user_id"
	ctxUserEmailKey = "user_email"
)

type authClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// AuthRequired validates the Supabase access token from the Authorization
// header. The token is an HS256 JWT signed with the project's JWT secret;
// the subject claim is the user id.
func (s *Server) AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		claims := &authClaims{}
		parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(s.cfg.AuthJWTSecret), nil
		}, jwt.WithValidMethods([]string{"HS256"}))
		if err != nil || !parsed.Valid || claims.Subject == "" {
			s.log.Debug("token rejected", zap.Error(err))
			AbortWithError(c, ErrUnauthorized)
			return
		}

		c.Set(ctxUserIDKey, claims.Subject)
		c.Set(ctxUserEmailKey, claims.Email)
		ctx := obscontext.WithUser(c.Request.Context(), claims.Subject, claims.Email)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func (s *Server) userID(c *gin.Context) string {
	return c.GetString(ctxUserIDKey)
}

func (s *Server) userEmail(c *gin.Context) string {
	return c.GetString(ctxUserEmailKey)
}

func (s *Server) CORS() gin.HandlerFunc {
	allowed := make(map[string]bool, len(s.cfg.CORSAllowedOrigins))
	for _, origin := range s.cfg.CORSAllowedOrigins {
		allowed[origin] = true
	}

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin != "" && allowed[origin] {
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Access-Control-Allow-Credentials", "true")
			c.Header("Access-Control-Allow-Methods", "GET, POST, HEAD, OPTIONS")
			c.Header("Access-Control-Allow-Headers", "Authorization, Content-Type")
			c.Header("Vary", "Origin")
		}
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// RateLimit applies the per-class fixed-window limiter. Authenticated
// requests are keyed by user id, anonymous ones by client IP.
func (s *Server) RateLimit(cfg ratelimit.Config) gin.HandlerFunc {
	class := rateLimitClass(cfg)
	return func(c *gin.Context) {
		identifier := s.userID(c)
		if identifier == "" {
			identifier = c.ClientIP()
		}

		result := s.limiter.Check(class+":"+identifier, cfg)
		c.Header("X-RateLimit-Limit", strconv.Itoa(cfg.MaxRequests))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
		c.Header("X-RateLimit-Reset", strconv.Itoa(int(result.ResetTime.Unix())))

		if !result.Allowed {
			s.metrics.RecordRateLimitDenied(class)
			retryAfter := int(time.Until(result.ResetTime).Seconds())
			if retryAfter < 1 {
				retryAfter = 1
			}
			c.Header("Retry-After", strconv.Itoa(retryAfter))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, errorPayload{
				Error:      "rate_limit_exceeded",
				Message:    "too many requests, slow down",
				RetryAfter: &retryAfter,
			})
			return
		}

		s.metrics.RecordRateLimitAllowed(class)
		c.Next()
	}
}

func rateLimitClass(cfg ratelimit.Config) string {
	switch cfg {
	case ratelimit.AIGeneration:
		return "ai_generation"
	case ratelimit.Payment:
		return "payment"
	case ratelimit.Webhook:
		return "webhook"
	default:
		return "general"
	}
}

