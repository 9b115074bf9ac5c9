package logger

import (
	"strings"

	"github.com/sirupsen/logrus"
)

// Level is a log level. The zero value is DebugLevel.
type Level int

const (
	DebugLevel Level = iota
	InfoLevel
	WarnLevel
	ErrorLevel
)

var levelNames = map[Level]string{
	DebugLevel: "debug",
	InfoLevel:  "info",
	WarnLevel:  "warn",
	ErrorLevel: "error",
}

// String returns the name used by --log-level and LOG_LEVEL.
func (l Level) String() string {
	if name, ok := levelNames[l]; ok {
		return name
	}
	return "info"
}

// ParseLevel maps a flag or config value to a Level. Matching ignores case and
// surrounding space, "warning" is accepted for warn, and anything else is info.
func ParseLevel(levelStr string) Level {
	s := strings.ToLower(strings.TrimSpace(levelStr))
	if s == "warning" {
		return WarnLevel
	}
	for l, name := range levelNames {
		if name == s {
			return l
		}
	}
	return InfoLevel
}

func (l Level) logrusLevel() logrus.Level {
	switch l {
	case DebugLevel:
		return logrus.DebugLevel
	case WarnLevel:
		return logrus.WarnLevel
	case ErrorLevel:
		return logrus.ErrorLevel
	default:
		return logrus.InfoLevel
	}
}
