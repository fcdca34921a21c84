package ratelimit

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/smallbiznis/roomledger/internal/config"
	"go.uber.org/zap"
)

const (
	keyLoginIP         = "roomledger:login:ip:%s"
	keyLoginIdentifier = "roomledger:login:id:%s"
)

// LoginLimiter throttles credential checks per client address and per
// submitted identifier.
type LoginLimiter struct {
	bucket Bucket
	log    *zap.Logger
	rate   float64
	burst  int
}

func NewLoginLimiter(bucket Bucket, attempts int, window time.Duration, burst int, log *zap.Logger) *LoginLimiter {
	if attempts <= 0 || window <= 0 || bucket == nil {
		return nil
	}
	if burst < 1 {
		burst = attempts
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &LoginLimiter{
		bucket: bucket,
		log:    log.Named("ratelimit.login"),
		rate:   float64(attempts) / window.Seconds(),
		burst:  burst,
	}
}

// ProvideLoginLimiter uses redis when a client is available and falls back
// to an in-process bucket otherwise.
func ProvideLoginLimiter(cfg config.Config, client RedisClient, mem *MemoryBucket, log *zap.Logger) *LoginLimiter {
	var bucket Bucket = mem
	if tb := NewTokenBucket(client.Client); tb != nil {
		bucket = tb
	}
	return NewLoginLimiter(bucket, cfg.LoginRate, cfg.LoginWindow, cfg.LoginBurst, log)
}

// Allow reports whether another login attempt from ip for identifier may
// proceed. Backend errors fail open.
func (l *LoginLimiter) Allow(ctx context.Context, ip, identifier string) (Result, error) {
	if l == nil {
		return Result{Allowed: true}, nil
	}

	keys := make([]string, 0, 2)
	if ip = strings.TrimSpace(ip); ip != "" {
		keys = append(keys, fmt.Sprintf(keyLoginIP, ip))
	}
	if identifier = strings.ToLower(strings.TrimSpace(identifier)); identifier != "" {
		keys = append(keys, fmt.Sprintf(keyLoginIdentifier, identifier))
	}

	result := Result{Allowed: true, Limit: l.burst, Remaining: l.burst}
	for _, key := range keys {
		res, err := l.bucket.Take(ctx, key, l.rate, l.burst)
		if err != nil {
			l.log.Warn("login rate limit check failed", zap.Error(err))
			continue
		}
		if !res.Allowed {
			return res, nil
		}
		if res.Remaining < result.Remaining {
			result.Remaining = res.Remaining
		}
	}
	return result, nil
}
