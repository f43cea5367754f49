package logger

import (
	"io"
	"os"

	"github.com/rs/zerolog"
)

// ActionField names the user-facing step that failed. Error uses it as the
// log message.
const ActionField = "action"

// ZerologAdapter implements Logger with a zerolog.Logger.
type ZerologAdapter struct {
	logger zerolog.Logger
}

func NewZerolog(writer io.Writer, level zerolog.Level) *ZerologAdapter {
	logger := zerolog.New(writer).
		Level(level).
		With().
		Timestamp().
		Logger()

	return &ZerologAdapter{logger: logger}
}

// NewConsoleLogger writes human readable lines to stderr.
func NewConsoleLogger(level zerolog.Level) *ZerologAdapter {
	consoleWriter := zerolog.ConsoleWriter{Out: os.Stderr}
	return NewZerolog(consoleWriter, level)
}

// NewNop discards everything.
func NewNop() *ZerologAdapter {
	return NewZerolog(io.Discard, zerolog.Disabled)
}

func (z *ZerologAdapter) Debug(component, message string, fields map[string]interface{}) {
	z.write(z.logger.Debug(), component, message, fields)
}

func (z *ZerologAdapter) Info(component, message string, fields map[string]interface{}) {
	z.write(z.logger.Info(), component, message, fields)
}

func (z *ZerologAdapter) Warning(component, message string, fields map[string]interface{}) {
	z.write(z.logger.Warn(), component, message, fields)
}

// Error uses the ActionField value as the message and the error text when
// there is none.
func (z *ZerologAdapter) Error(component string, err error, fields map[string]interface{}) {
	message := "error"
	if err != nil {
		message = err.Error()
	}
	if action, ok := fields[ActionField].(string); ok && action != "" {
		message = action
		rest := make(map[string]interface{}, len(fields)-1)
		for k, v := range fields {
			if k != ActionField {
				rest[k] = v
			}
		}
		fields = rest
	}
	z.write(z.logger.Error().Err(err), component, message, fields)
}

// write adds the component and fields to event and sends it. Map fields are
// written in sorted key order.
func (z *ZerologAdapter) write(event *zerolog.Event, component, message string, fields map[string]interface{}) {
	event.Str("component", component).Fields(fields).Msg(message)
}
