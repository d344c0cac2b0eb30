package xlog

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

// ErrUnknownLevel 表示无法解析的日志级别名。
var ErrUnknownLevel = errors.New("xlog: unknown level")

// Level 日志级别，取值与 slog.Level 相同，可带偏移（如 WARN+2）。
type Level slog.Level

const (
	LevelDebug = Level(slog.LevelDebug)
	LevelInfo  = Level(slog.LevelInfo)
	LevelWarn  = Level(slog.LevelWarn)
	LevelError = Level(slog.LevelError)
)

func (l Level) String() string { return slog.Level(l).String() }

// ParseLevel 解析 debug/info/warn/error，大小写不敏感，忽略首尾空白。
// 名称后可跟偏移，如 "info-4" 等价于 debug。
func ParseLevel(s string) (Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return LevelInfo, fmt.Errorf("%w: %q", ErrUnknownLevel, s)
	}
	return Level(l), nil
}
