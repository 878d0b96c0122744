package logger

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger zap SugaredLogger 的薄封装，key/value 形式记录结构化日志。
// 带 token/password/secret/authorization 的 key 一律脱敏。
type Logger struct {
	sugar *zap.SugaredLogger
}

// New mode: prod/production 输出 JSON，其余输出开发格式
func New(mode string, level string) (*Logger, error) {
	var cfg zap.Config
	switch strings.ToLower(mode) {
	case "prod", "production":
		cfg = zap.NewProductionConfig()
	default:
		cfg = zap.NewDevelopmentConfig()
	}
	if level != "" {
		var lvl zapcore.Level
		if err := lvl.UnmarshalText([]byte(level)); err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", level, err)
		}
		cfg.Level = zap.NewAtomicLevelAt(lvl)
	}
	z, err := cfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		return nil, err
	}
	return &Logger{sugar: z.Sugar()}, nil
}

// Nop 丢弃所有日志，测试用
func Nop() *Logger {
	return &Logger{sugar: zap.NewNop().Sugar()}
}

func (l *Logger) Sync() {
	_ = l.sugar.Sync()
}

func (l *Logger) Debug(msg string, kv ...interface{}) {
	l.sugar.Debugw(msg, redact(kv)...)
}

func (l *Logger) Info(msg string, kv ...interface{}) {
	l.sugar.Infow(msg, redact(kv)...)
}

func (l *Logger) Warn(msg string, kv ...interface{}) {
	l.sugar.Warnw(msg, redact(kv)...)
}

func (l *Logger) Error(msg string, kv ...interface{}) {
	l.sugar.Errorw(msg, redact(kv)...)
}

func (l *Logger) Fatal(msg string, kv ...interface{}) {
	l.sugar.Fatalw(msg, redact(kv)...)
}

// With 返回带固定字段的子 logger
func (l *Logger) With(kv ...interface{}) *Logger {
	return &Logger{sugar: l.sugar.With(redact(kv)...)}
}

func redact(kv []interface{}) []interface{} {
	if len(kv) == 0 {
		return kv
	}
	out := make([]interface{}, 0, len(kv))
	for i := 0; i < len(kv); i += 2 {
		if i == len(kv)-1 {
			out = append(out, kv[i])
			break
		}
		key := fmt.Sprint(kv[i])
		if isSensitive(key) {
			out = append(out, key, "[REDACTED]")
			continue
		}
		out = append(out, key, kv[i+1])
	}
	return out
}

func isSensitive(key string) bool {
	k := strings.ToLower(strings.TrimSpace(key))
	for _, s := range []string{"token", "password", "secret", "authorization", "cookie"} {
		if strings.Contains(k, s) {
			return true
		}
	}
	return false
}
