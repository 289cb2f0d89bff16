package contextutil

import (
	"context"

	"go.uber.org/zap"
)

// contextKey adalah tipe privat agar key tidak bentrok dengan package lain
type contextKey string

const (
	requestIDKey contextKey = "request_id"
	userEmailKey contextKey = "user_email"
	loggerKey    contextKey = "logger"
)

// --- Request ID Helpers ---

// WithRequestID menyimpan Request ID ke dalam context
func WithRequestID(ctx context.Context, rid string) context.Context {
	return context.WithValue(ctx, requestIDKey, rid)
}

// GetRequestID mengambil Request ID dari context, kosong jika tidak ada
func GetRequestID(ctx context.Context) string {
	if rid, ok := ctx.Value(requestIDKey).(string); ok {
		return rid
	}
	return ""
}

// --- User Email Helpers ---

// WithUserEmail menyimpan email user yang sedang login ke context
func WithUserEmail(ctx context.Context, email string) context.Context {
	return context.WithValue(ctx, userEmailKey, email)
}

// GetUserEmail mengambil email user dari context
func GetUserEmail(ctx context.Context) string {
	if email, ok := ctx.Value(userEmailKey).(string); ok {
		return email
	}
	return ""
}

// --- Logger Helpers ---

// WithLogger menyimpan zap logger (biasanya sudah berisi request_id) ke context
func WithLogger(ctx context.Context, logger *zap.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// GetLogger mengambil logger dari context.
// Fallback ke defaultLogger, lalu ke no-op logger supaya tidak pernah nil.
func GetLogger(ctx context.Context, defaultLogger *zap.Logger) *zap.Logger {
	if ctx != nil {
		if l, ok := ctx.Value(loggerKey).(*zap.Logger); ok && l != nil {
			return l
		}
	}

	if defaultLogger != nil {
		return defaultLogger
	}

	return zap.NewNop()
}

// --- Combined Metadata ---

// Metadata berisi info tracing dasar untuk logging manual
type Metadata struct {
	RequestID string
	UserEmail string
}

// ExtractMetadata mengambil semua info tracing sekaligus
func ExtractMetadata(ctx context.Context) Metadata {
	return Metadata{
		RequestID: GetRequestID(ctx),
		UserEmail: GetUserEmail(ctx),
	}
}
