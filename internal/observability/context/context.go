package context

import (
	"context"
	"strings"
)

type ctxKey int

const (
	requestIDKey ctxKey = iota
	landlordIDKey
)

func WithRequestID(ctx context.Context, requestID string) context.Context {
	requestID = strings.TrimSpace(requestID)
	if requestID == "" {
		return ctx
	}
	return context.WithValue(ctx, requestIDKey, requestID)
}

func RequestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	value, _ := ctx.Value(requestIDKey).(string)
	return value
}

// WithLandlordID records the authenticated landlord for log correlation.
func WithLandlordID(ctx context.Context, landlordID string) context.Context {
	landlordID = strings.TrimSpace(landlordID)
	if landlordID == "" {
		return ctx
	}
	return context.WithValue(ctx, landlordIDKey, landlordID)
}

func LandlordIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	value, _ := ctx.Value(landlordIDKey).(string)
	return value
}
