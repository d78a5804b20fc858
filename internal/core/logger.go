package core

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

// Logger provides structured logging for the crawler and its commands
type Logger struct {
	*slog.Logger
	level    *slog.LevelVar
	mu       *sync.Mutex
	features map[string]*slog.Logger
	feature  string
}

// NewLogger creates a new logger instance writing text records to stdout at info level
func NewLogger() *Logger {
	return NewLoggerWithOptions(os.Stdout, slog.LevelInfo)
}

// NewLoggerWithOptions creates a logger writing to w at the given level
func NewLoggerWithOptions(w io.Writer, level slog.Level) *Logger {
	lvl := new(slog.LevelVar)
	lvl.Set(level)

	handler := slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: lvl,
	})

	return &Logger{
		Logger:   slog.New(handler),
		level:    lvl,
		mu:       &sync.Mutex{},
		features: make(map[string]*slog.Logger),
	}
}

// ParseLevel maps a level name from configuration to a slog level
func ParseLevel(level string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", level)
	}
}

// ForFeature returns a logger specific to a feature. A logger that already
// belongs to featureName is returned as is.
func (l *Logger) ForFeature(featureName string) *Logger {
	if l.feature == featureName {
		return l
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	featureLogger, exists := l.features[featureName]
	if !exists {
		featureLogger = l.Logger.With("feature", featureName)
		l.features[featureName] = featureLogger
	}

	derived := l.derive(featureLogger)
	derived.feature = featureName
	return derived
}

// WithContext returns a logger carrying the crawl wave ID stored in ctx, if any
func (l *Logger) WithContext(ctx context.Context) *Logger {
	if ctx == nil {
		return l
	}

	if waveID := WaveIDFromContext(ctx); waveID != "" {
		return l.derive(l.Logger.With("wave_id", waveID))
	}

	return l
}

// WithSource returns a logger annotated with a source registry key
func (l *Logger) WithSource(key string) *Logger {
	return l.derive(l.Logger.With("source", key))
}

// SetLevel changes the minimum level for this logger and every logger derived from it
func (l *Logger) SetLevel(level slog.Level) {
	l.level.Set(level)
}

// LogFeatureEvent logs a named feature event such as a finished crawl wave
func (l *Logger) LogFeatureEvent(featureName, event string, attrs ...any) {
	featureLogger := l.ForFeature(featureName)
	featureLogger.Info("Feature event", append([]any{"event", event}, attrs...)...)
}

// LogFeatureError logs a feature-specific error
func (l *Logger) LogFeatureError(featureName, message string, err error, attrs ...any) {
	featureLogger := l.ForFeature(featureName)
	allAttrs := append([]any{"error", err}, attrs...)
	featureLogger.Error(message, allAttrs...)
}

func (l *Logger) derive(logger *slog.Logger) *Logger {
	return &Logger{
		Logger:   logger,
		level:    l.level,
		mu:       l.mu,
		features: make(map[string]*slog.Logger),
		feature:  l.feature,
	}
}

type contextKey string

const waveIDKey contextKey = "wave_id"

// ContextWithWaveID stores the crawl wave ID in ctx
func ContextWithWaveID(ctx context.Context, waveID string) context.Context {
	return context.WithValue(ctx, waveIDKey, waveID)
}

// WaveIDFromContext returns the crawl wave ID stored in ctx or ""
func WaveIDFromContext(ctx context.Context) string {
	if waveID, ok := ctx.Value(waveIDKey).(string); ok {
		return waveID
	}
	return ""
}
