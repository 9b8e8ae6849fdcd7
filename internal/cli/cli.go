// Package cli holds the start-up sequence shared by the nutrition commands:
// configuration, logging, metrics and argument parsing.
package cli

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/rs/zerolog"

	"nutrition/internal/config"
	"nutrition/internal/logging"
	"nutrition/internal/metrics"
	"nutrition/internal/metrics/datadog"
	"nutrition/internal/metrics/prompush"
)

// Env is what a command needs after start-up.
type Env struct {
	Tool   string
	Config *config.Config
	Logger zerolog.Logger
}

// Setup loads the configuration, applies override (positional arguments),
// builds the logger and installs the metrics backend for tool. Validation
// warnings are logged; errors in the tool's own config section (or the shared
// log/metrics sections) fail start-up. The returned closer flushes metrics
// and must be called once the tool is done.
func Setup(tool string, logOut io.Writer, override func(*config.Config)) (*Env, func(), error) {
	cfg, err := config.Load("")
	if err != nil {
		return nil, nil, err
	}
	if override != nil {
		override(cfg)
	}
	env := &Env{
		Tool:   tool,
		Config: cfg,
		Logger: logging.New(logOut, cfg.Log.Level, cfg.Log.Format).With().Str("tool", tool).Logger(),
	}
	if err := env.check(config.Validate(*cfg)); err != nil {
		return nil, nil, err
	}
	return env, env.setupMetrics(), nil
}

func (e *Env) check(issues []config.Issue) error {
	var errs []error
	for _, iss := range issues {
		if !inSection(iss.Path, e.Tool) {
			continue
		}
		if iss.Severity == config.SeverityError {
			errs = append(errs, iss)
			continue
		}
		e.Logger.Warn().Str("path", iss.Path).Msg(iss.Message)
	}
	return errors.Join(errs...)
}

func inSection(path, tool string) bool {
	for _, p := range []string{tool + ".", "log.", "metrics."} {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}

// setupMetrics installs the configured backend. A backend that fails to
// initialize leaves metrics disabled; it never stops the tool.
func (e *Env) setupMetrics() func() {
	m := e.Config.Metrics
	var (
		b   metrics.Backend
		err error
	)
	switch {
	case m.PushgatewayURL != "":
		b, err = prompush.NewBackend(m.Job+"_"+e.Tool, m.PushgatewayURL)
		e.Logger.Debug().Str("url", m.PushgatewayURL).Msg("metrics: pushgateway backend")
	case m.StatsdAddr != "":
		b, err = datadog.NewBackend(datadog.Config{
			Addr:      m.StatsdAddr,
			Namespace: m.Job + ".",
			Tags:      []string{"tool:" + e.Tool},
		})
		e.Logger.Debug().Str("addr", m.StatsdAddr).Msg("metrics: dogstatsd backend")
	default:
		return func() {}
	}
	if err != nil {
		e.Logger.Warn().Err(err).Msg("metrics: backend init failed; metrics disabled")
		return func() {}
	}
	metrics.SetBackend(b)
	return func() {
		if err := metrics.Flush(); err != nil {
			e.Logger.Warn().Err(err).Msg("metrics: flush failed")
		}
	}
}

// PositiveInt parses a positional count argument.
func PositiveInt(name, arg string) (int, error) {
	n, err := strconv.Atoi(arg)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer, got %q", name, arg)
	}
	if n <= 0 {
		return 0, fmt.Errorf("%s must be positive, got %d", name, n)
	}
	return n, nil
}

// Colors used by the command summaries.
var (
	Title = color.New(color.FgCyan, color.Bold)
	Good  = color.New(color.FgGreen)
	Warn  = color.New(color.FgYellow)
	Bad   = color.New(color.FgRed, color.Bold)
)

// Rule is the separator line printed around summaries.
const Rule = "------------------------------------------------------------"

// Fail prints err in red on the command's error stream and returns it. The
// command must have SilenceErrors set so cobra does not print it again.
func Fail(w io.Writer, err error) error {
	Bad.Fprintf(w, "Error: %v\n", err)
	return err
}
