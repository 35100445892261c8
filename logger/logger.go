package logger

import (
	"context"
	"os"
	"strings"

	"github.com/gookit/slog"
	"github.com/gookit/slog/handler"

	"forum-harvest/trace"
)

// Logger is what packages log through. *slog.Logger satisfies it.
type Logger interface {
	Debug(args ...any)
	Info(args ...any)
	Warn(args ...any)
	Error(args ...any)
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

// Fields are the top-level keys of a JSON log line.
type Fields map[string]any

// Log starts at info so packages can log before a binary calls Init.
var Log Logger = NewLogger("info")

// InitFromEnv sets the level from the named variable.
func InitFromEnv(envKey string) {
	Init(os.Getenv(envKey))
}

// Init swaps Log for a logger at level. Blank means info; unknown names are
// resolved by slog.LevelByName.
func Init(level string) {
	level = strings.ToLower(strings.TrimSpace(level))
	if level == "" {
		level = "info"
	}
	Log = NewLogger(level)
}

// NewLogger writes one JSON object per line to stdout with datetime, level and
// message followed by the caller's fields.
func NewLogger(level string) Logger {
	threshold := slog.LevelByName(level)

	var enabled slog.Levels
	for _, lv := range slog.AllLevels {
		if lv <= threshold {
			enabled = append(enabled, lv)
		}
	}

	h := handler.NewConsoleHandler(enabled)
	h.SetFormatter(slog.NewJSONFormatter(func(f *slog.JSONFormatter) {
		f.Fields = []string{slog.FieldKeyDatetime, slog.FieldKeyLevel, slog.FieldKeyMessage}
		f.Aliases = slog.StringMap{
			slog.FieldKeyDatetime: "datetime",
			slog.FieldKeyLevel:    "level",
			slog.FieldKeyMessage:  "message",
		}
		f.TimeFormat = "2006-01-02T15:04:05"
	}))

	return slog.NewWithHandlers(h)
}

// RunFields merges the run identity carried by ctx (run_id, collector) and the
// SERVICE_NAME of the process into fields. Keys the caller already set win.
func RunFields(ctx context.Context, fields Fields) Fields {
	out := Fields{}
	if sn := os.Getenv("SERVICE_NAME"); sn != "" {
		out["service_name"] = sn
	}
	if ctx != nil {
		if id := trace.RunIDFromContext(ctx); id != "" {
			out["run_id"] = id
		}
		if name := trace.CollectorFromContext(ctx); name != "" {
			out["collector"] = name
		}
	}
	for k, v := range fields {
		out[k] = v
	}
	return out
}

func InfoCtx(ctx context.Context, msg string, fields Fields) {
	emit(slog.InfoLevel, msg, RunFields(ctx, fields))
}

func WarnCtx(ctx context.Context, msg string, fields Fields) {
	emit(slog.WarnLevel, msg, RunFields(ctx, fields))
}

func DebugCtx(ctx context.Context, msg string, fields Fields) {
	emit(slog.DebugLevel, msg, RunFields(ctx, fields))
}

func ErrorCtx(ctx context.Context, msg string, fields Fields) {
	emit(slog.ErrorLevel, msg, RunFields(ctx, fields))
}

// The *WithFields helpers are for code that runs outside a collector run.

func InfoWithFields(msg string, fields Fields)  { InfoCtx(context.Background(), msg, fields) }
func WarnWithFields(msg string, fields Fields)  { WarnCtx(context.Background(), msg, fields) }
func DebugWithFields(msg string, fields Fields) { DebugCtx(context.Background(), msg, fields) }
func ErrorWithFields(msg string, fields Fields) { ErrorCtx(context.Background(), msg, fields) }

// emit drops fields when Log was replaced by something other than gookit slog.
func emit(level slog.Level, msg string, fields Fields) {
	lg, ok := Log.(*slog.Logger)
	if !ok {
		plain(level, msg)
		return
	}
	rec := lg.WithFields(slog.M(fields))
	switch level {
	case slog.DebugLevel:
		rec.Debug(msg)
	case slog.WarnLevel:
		rec.Warn(msg)
	case slog.ErrorLevel:
		rec.Error(msg)
	default:
		rec.Info(msg)
	}
}

func plain(level slog.Level, msg string) {
	switch level {
	case slog.DebugLevel:
		Log.Debug(msg)
	case slog.WarnLevel:
		Log.Warn(msg)
	case slog.ErrorLevel:
		Log.Error(msg)
	default:
		Log.Info(msg)
	}
}
