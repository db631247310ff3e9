// Package logging builds the zap loggers used by the modkit command and adapts
// them to processor.Diagnostics.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/sghaida/modkit/processor"
)

// Format selects the encoder.
type Format string

const (
	FormatConsole Format = "console"
	FormatJSON    Format = "json"
)

// ParseLevel maps a level name to a zap level. Unknown names yield InfoLevel.
func ParseLevel(s string) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug", "trace":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// Options configures New.
type Options struct {
	Level  string
	Format Format

	// Output defaults to os.Stderr.
	Output io.Writer
}

// New builds a logger writing to opts.Output.
func New(opts Options) (*zap.Logger, error) {
	out := opts.Output
	if out == nil {
		out = os.Stderr
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = ""
	encCfg.EncodeLevel = zapcore.CapitalLevelEncoder

	var enc zapcore.Encoder
	switch Format(strings.ToLower(string(opts.Format))) {
	case "", FormatConsole:
		enc = zapcore.NewConsoleEncoder(encCfg)
	case FormatJSON:
		encCfg.EncodeLevel = zapcore.LowercaseLevelEncoder
		enc = zapcore.NewJSONEncoder(encCfg)
	default:
		return nil, fmt.Errorf("logging: unknown format %q", opts.Format)
	}

	core := zapcore.NewCore(enc, zapcore.AddSync(out), ParseLevel(opts.Level))
	return zap.New(core), nil
}

// Sink reports coordinator diagnostics through a logger: notes at debug level,
// warnings at warn level and errors at error level.
type Sink struct {
	log *zap.SugaredLogger
}

var _ processor.Diagnostics = (*Sink)(nil)

// NewSink returns a Sink; a nil logger discards everything.
func NewSink(log *zap.Logger) *Sink {
	if log == nil {
		log = zap.NewNop()
	}
	return &Sink{log: log.Sugar()}
}

// Report implements processor.Diagnostics.
func (s *Sink) Report(sev processor.Severity, msg string) {
	switch sev {
	case processor.SeverityError:
		s.log.Error(msg)
	case processor.SeverityWarning:
		s.log.Warn(msg)
	default:
		s.log.Debug(msg)
	}
}
