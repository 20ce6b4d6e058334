package logger

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/heroiclabs/nakama-common/runtime"
	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

// New builds the process logger. Unknown levels fall back to info.
func New(level string, pretty bool) zerolog.Logger {
	var out io.Writer = os.Stdout
	if pretty {
		out = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05.000"}
	}
	return NewWithWriter(out, level)
}

func NewWithWriter(w io.Writer, level string) zerolog.Logger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(w).
		With().
		Timestamp().
		Logger().
		Level(lvl)
}

// runtimeLogger adapts zerolog to runtime.Logger so Nakama-facing code can run headless.
type runtimeLogger struct {
	log    zerolog.Logger
	fields map[string]interface{}
}

// Runtime wraps l as a runtime.Logger.
func Runtime(l zerolog.Logger) runtime.Logger {
	return &runtimeLogger{log: l, fields: map[string]interface{}{}}
}

func (r *runtimeLogger) Debug(format string, v ...interface{}) {
	r.log.Debug().Fields(r.fields).Msg(fmt.Sprintf(format, v...))
}

func (r *runtimeLogger) Info(format string, v ...interface{}) {
	r.log.Info().Fields(r.fields).Msg(fmt.Sprintf(format, v...))
}

func (r *runtimeLogger) Warn(format string, v ...interface{}) {
	r.log.Warn().Fields(r.fields).Msg(fmt.Sprintf(format, v...))
}

func (r *runtimeLogger) Error(format string, v ...interface{}) {
	r.log.Error().Fields(r.fields).Msg(fmt.Sprintf(format, v...))
}

func (r *runtimeLogger) WithField(key string, v interface{}) runtime.Logger {
	return r.WithFields(map[string]interface{}{key: v})
}

func (r *runtimeLogger) WithFields(fields map[string]interface{}) runtime.Logger {
	merged := make(map[string]interface{}, len(r.fields)+len(fields))
	for k, v := range r.fields {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}
	return &runtimeLogger{log: r.log, fields: merged}
}

func (r *runtimeLogger) Fields() map[string]interface{} {
	out := make(map[string]interface{}, len(r.fields))
	for k, v := range r.fields {
		out[k] = v
	}
	return out
}

// Params selects the log level and format for Module.
type Params struct {
	fx.In

	Level  string `name:"log_level" optional:"true"`
	Pretty bool   `name:"log_pretty" optional:"true"`
}

func provide(p Params) zerolog.Logger { return New(p.Level, p.Pretty) }

var Module = fx.Provide(provide)
