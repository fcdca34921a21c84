package server

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/smallbiznis/roomledger/internal/observability/logger"
	obscontext "github.com/smallbiznis/roomledger/internal/observability/context"
	"go.uber.org/zap"
)

const contextLandlordIDKey = "landlord_id"

// LandlordAuthRequired accepts a bearer access token issued at login.
func (s *Server) LandlordAuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := bearerToken(c.GetHeader("Authorization"))
		if raw == "" {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		landlordID, _, err := s.tokens.Parse(raw)
		if err != nil {
			AbortWithError(c, err)
			return
		}

		c.Set(contextLandlordIDKey, landlordID)
		c.Request = c.Request.WithContext(obscontext.WithLandlordID(c.Request.Context(), landlordID.String()))
		c.Next()
	}
}

// LoginRateLimit throttles login attempts per client address and submitted
// identifier. The body is cached so the handler can bind it again.
func (s *Server) LoginRateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.loginLimiter == nil {
			c.Next()
			return
		}

		var req loginRequest
		_ = c.ShouldBindBodyWith(&req, binding.JSON)

		ctx := c.Request.Context()
		res, err := s.loginLimiter.Allow(ctx, c.ClientIP(), req.identifier())
		if err != nil {
			logger.FromContext(ctx).Warn("login rate limit check failed", zap.Error(err))
			c.Next()
			return
		}
		if !res.Allowed {
			logger.FromContext(ctx).Warn("login rate limit exceeded", zap.String("client_ip", c.ClientIP()))
			s.obsMetrics.RecordLogin(ctx, "throttled")
			retry := int(res.RetryAfter.Seconds())
			if retry < 1 {
				retry = 1
			}
			c.Header("Retry-After", strconv.Itoa(retry))
			AbortWithError(c, ErrTooManyRequests)
			return
		}
		c.Next()
	}
}

func bearerToken(header string) string {
	header = strings.TrimSpace(header)
	if len(header) < 7 || !strings.EqualFold(header[:7], "bearer ") {
		return ""
	}
	return strings.TrimSpace(header[7:])
}
