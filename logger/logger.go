package logger

import (
	"context"
	"fmt"
	"io"
	"os"
	"regexp"
	"time"

	c "eventspot/context"

	"github.com/sirupsen/logrus"
)

var logger *logrus.Logger

const (
	CorrelationId = "correlation_id"
	AttemptId     = "attempt_id"
)

var newlines = regexp.MustCompile(`(\n)|(\r\n)`)

func init() {
	logger = logrus.New()
	logger.SetOutput(os.Stderr)
}

// SetOutput redirects every entry, used by the CLI to keep stdout for results.
func SetOutput(w io.Writer) {
	logger.SetOutput(w)
}

// SetLevel parses level and applies it, falling back to info.
func SetLevel(level string) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	logger.SetLevel(lvl)
}

func entry(ctx context.Context) *logrus.Entry {
	e := logger.WithField(CorrelationId, c.GetContextValue(ctx, c.ContextKeyCorrelationID))
	if attempt := c.GetContextValue(ctx, c.ContextKeyAttemptID); attempt != "" {
		e = e.WithField(AttemptId, attempt)
	}
	return e
}

func Fatalf(ctx context.Context, format string, args ...interface{}) {
	entry(ctx).Fatalf(format, args...)
}

func Infof(ctx context.Context, format string, args ...interface{}) {
	entry(ctx).Infof(format, args...)
}

func Info(ctx context.Context, msg string) {
	entry(ctx).Info(msg)
}

func Debugf(ctx context.Context, format string, args ...interface{}) {
	entry(ctx).Debug(escapeString(format, args...))
}

func Warnf(ctx context.Context, format string, args ...interface{}) {
	entry(ctx).Warnf(format, args...)
}

func Errorf(ctx context.Context, format string, args ...interface{}) {
	entry(ctx).Error(escapeString(format, args...))
}

// LogExecutionTime is meant to be deferred with the start time of the measured call.
func LogExecutionTime(ctx context.Context, start time.Time, name string) {
	entry(ctx).WithField("elapsed_ms", time.Since(start).Milliseconds()).Debugf("%s took %s", name, time.Since(start))
}

func escapeString(format string, args ...interface{}) string {
	return newlines.ReplaceAllString(fmt.Sprintf(format, args...), "\\n ")
}
