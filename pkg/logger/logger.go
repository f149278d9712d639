package logger

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// Logger wraps slog.Logger with additional functionality
type Logger struct {
	*slog.Logger
}

// New creates a new logger instance
func New() *Logger {
	level := getLogLevel(os.Getenv("LOG_LEVEL"))

	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: level == slog.LevelDebug,
	}

	// Text handler for development, JSON for production
	var handler slog.Handler
	if gin.Mode() == gin.DebugMode {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	return &Logger{
		Logger: slog.New(handler),
	}
}

// getLogLevel converts string to slog.Level
func getLogLevel(levelStr string) slog.Level {
	switch strings.ToLower(levelStr) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// WithRequestID adds request ID to logger context
func (l *Logger) WithRequestID(requestID string) *Logger {
	return &Logger{
		Logger: l.Logger.With(slog.String("request_id", requestID)),
	}
}

// WithError adds error to logger context
func (l *Logger) WithError(err error) *Logger {
	return &Logger{
		Logger: l.Logger.With(slog.String("error", err.Error())),
	}
}

// WithFields adds multiple fields to logger context
func (l *Logger) WithFields(fields map[string]interface{}) *Logger {
	args := make([]interface{}, 0, len(fields)*2)
	for k, v := range fields {
		args = append(args, slog.Any(k, v))
	}
	return &Logger{
		Logger: l.Logger.With(args...),
	}
}

// HTTP logging methods

// LogHTTPRequest logs an HTTP request
func (l *Logger) LogHTTPRequest(c *gin.Context, duration time.Duration) {
	l.Logger.InfoContext(c.Request.Context(),
		"HTTP Request",
		slog.String("method", c.Request.Method),
		slog.String("path", c.Request.URL.Path),
		slog.String("query", c.Request.URL.RawQuery),
		slog.Int("status", c.Writer.Status()),
		slog.Duration("duration", duration),
		slog.String("ip", c.ClientIP()),
		slog.Int("size", c.Writer.Size()),
	)
}

// LogHTTPError logs an HTTP error
func (l *Logger) LogHTTPError(c *gin.Context, err error, statusCode int) {
	l.Logger.ErrorContext(c.Request.Context(),
		"HTTP Error",
		slog.String("method", c.Request.Method),
		slog.String("path", c.Request.URL.Path),
		slog.Int("status", statusCode),
		slog.String("error", err.Error()),
		slog.String("ip", c.ClientIP()),
	)
}

// Seat inventory logging methods

// LogLeaseAcquired logs a successful seat lock
func (l *Logger) LogLeaseAcquired(ctx context.Context, seatKey, holderID string, ttl time.Duration) {
	l.Logger.DebugContext(ctx,
		"Seat Lease Acquired",
		slog.String("seat_key", seatKey),
		slog.String("holder_id", holderID),
		slog.Duration("ttl", ttl),
	)
}

// LogLeaseConflict logs a lock attempt rejected because another holder owns the seat
func (l *Logger) LogLeaseConflict(ctx context.Context, seatKey, holderID string) {
	l.Logger.InfoContext(ctx,
		"Seat Lease Conflict",
		slog.String("seat_key", seatKey),
		slog.String("holder_id", holderID),
	)
}

// LogHoldCreated logs a hold issued for a set of seats
func (l *Logger) LogHoldCreated(ctx context.Context, eventID, customerID string, seatCount int, expiresAt time.Time) {
	l.Logger.InfoContext(ctx,
		"Hold Created",
		slog.String("event_id", eventID),
		slog.String("customer_id", customerID),
		slog.Int("seats", seatCount),
		slog.Time("expires_at", expiresAt),
	)
}

// LogPurchaseConfirmed logs a committed purchase
func (l *Logger) LogPurchaseConfirmed(ctx context.Context, eventID, customerID string, seatCount int) {
	l.Logger.InfoContext(ctx,
		"Purchase Confirmed",
		slog.String("event_id", eventID),
		slog.String("customer_id", customerID),
		slog.Int("seats", seatCount),
	)
}

// LogSweepResult logs the outcome of one sweeper iteration
func (l *Logger) LogSweepResult(ctx context.Context, reclaimed int, duration time.Duration) {
	if reclaimed > 0 {
		l.Logger.InfoContext(ctx,
			"Expired Holds Reclaimed",
			slog.Int("reclaimed", reclaimed),
			slog.Duration("duration", duration),
		)
	} else {
		l.Logger.DebugContext(ctx,
			"Sweep Completed",
			slog.Duration("duration", duration),
		)
	}
}

// Global logger instance (can be replaced with dependency injection)
var defaultLogger = New()

// GetDefault returns the default logger instance
func GetDefault() *Logger {
	return defaultLogger
}

// SetDefault sets the default logger instance
func SetDefault(logger *Logger) {
	defaultLogger = logger
}
