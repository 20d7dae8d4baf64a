package adder

import (
	"go.uber.org/zap"
)

// CompletionMessage is written once per cycle, right after the chain has
// been scheduled.
const CompletionMessage = "Done"

// Console is the diagnostic sink.
type Console interface {
	Log(msg string)
}

type zapConsole struct {
	logger *zap.Logger
}

// NewConsole returns a Console writing info entries through logger.
func NewConsole(logger *zap.Logger) Console {
	return &zapConsole{logger: logger.Named("console")}
}

func (c *zapConsole) Log(msg string) {
	c.logger.Info(msg)
}
