package evaluator

import (
	"fmt"
	"strings"
)

// Logger receives the output of print() and friends, so embedders and tests
// can capture or redirect script output.
type Logger interface {
	Log(values ...any)
	LogLine(values ...any)
}

type stdoutLogger struct{}

func (l *stdoutLogger) Log(values ...any) {
	fmt.Print(formatLogValues(values...))
}

func (l *stdoutLogger) LogLine(values ...any) {
	fmt.Println(formatLogValues(values...))
}

// DefaultLogger writes to stdout.
var DefaultLogger Logger = &stdoutLogger{}

func formatLogValues(values ...any) string {
	if len(values) == 0 {
		return ""
	}
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = fmt.Sprint(v)
	}
	return strings.Join(parts, " ")
}
