package config

import (
	"fmt"
	"net/url"
	"strings"
)

// IssueSeverity represents the severity of a configuration issue.
type IssueSeverity string

const (
	// SeverityError indicates a configuration error that should block execution.
	SeverityError IssueSeverity = "error"
	// SeverityWarning is surfaced to users but does not block execution.
	SeverityWarning IssueSeverity = "warning"
)

// Issue describes a single validation finding.
//
// Path is the dotted config key (e.g. "formatter.batch_size").
type Issue struct {
	Severity IssueSeverity
	Path     string
	Message  string
}

func (i Issue) Error() string {
	return fmt.Sprintf("%s at %s: %s", i.Severity, i.Path, i.Message)
}

// Validate performs static checks over cfg without mutating it. Callers
// decide whether warnings are fatal; see Errors.
func Validate(cfg Config) []Issue {
	var issues []Issue
	issues = append(issues, validateLog(cfg.Log)...)
	issues = append(issues, validateMetrics(cfg.Metrics)...)
	issues = append(issues, validateFormatter(cfg.Formatter)...)
	issues = append(issues, validateSplitter(cfg.Splitter)...)
	issues = append(issues, validateAggregator(cfg.Aggregator)...)
	return issues
}

// Errors returns the error-severity issues of a section, selected by the
// key prefix (e.g. "formatter."), or of all sections when prefix is empty.
func Errors(issues []Issue, prefix string) []Issue {
	var out []Issue
	for _, iss := range issues {
		if iss.Severity == SeverityError && strings.HasPrefix(iss.Path, prefix) {
			out = append(out, iss)
		}
	}
	return out
}

func errorf(path, format string, a ...any) Issue {
	return Issue{Severity: SeverityError, Path: path, Message: fmt.Sprintf(format, a...)}
}

func warnf(path, format string, a ...any) Issue {
	return Issue{Severity: SeverityWarning, Path: path, Message: fmt.Sprintf(format, a...)}
}

func validateLog(l Log) []Issue {
	switch strings.ToLower(l.Format) {
	case "", "console", "json":
		return nil
	default:
		return []Issue{warnf("log.format", "unknown log format %q; falling back to console", l.Format)}
	}
}

func validateMetrics(m Metrics) []Issue {
	var issues []Issue
	if m.PushgatewayURL != "" {
		if u, err := url.Parse(m.PushgatewayURL); err != nil || u.Scheme == "" || u.Host == "" {
			issues = append(issues, errorf("metrics.pushgateway_url", "pushgateway_url %q is not an absolute URL", m.PushgatewayURL))
		}
	}
	if m.PushgatewayURL != "" && m.StatsdAddr != "" {
		issues = append(issues, warnf("metrics.statsd_addr", "both pushgateway_url and statsd_addr are set; using the pushgateway"))
	}
	if (m.PushgatewayURL != "" || m.StatsdAddr != "") && strings.TrimSpace(m.Job) == "" {
		issues = append(issues, errorf("metrics.job", "job must not be empty when metrics are enabled; it labels every series"))
	}
	return issues
}

func validateFormatter(f Formatter) []Issue {
	var issues []Issue
	if f.BatchSize <= 0 {
		issues = append(issues, errorf("formatter.batch_size", "batch_size must be positive, got %d", f.BatchSize))
	}
	if strings.TrimSpace(f.Output) == "" {
		issues = append(issues, errorf("formatter.output", "output must not be empty"))
	}
	if strings.TrimSpace(f.Table) == "" {
		issues = append(issues, errorf("formatter.table", "table must not be empty"))
	}
	return issues
}

func validateSplitter(s Splitter) []Issue {
	var issues []Issue
	if s.RowsPerFile <= 0 {
		issues = append(issues, errorf("splitter.rows_per_file", "rows_per_file must be positive, got %d", s.RowsPerFile))
	}
	if strings.TrimSpace(s.OutputDir) == "" {
		issues = append(issues, errorf("splitter.output_dir", "output_dir must not be empty"))
	}
	if s.Workers < 0 {
		issues = append(issues, errorf("splitter.workers", "workers must not be negative"))
	}
	return issues
}

func validateAggregator(a Aggregator) []Issue {
	var issues []Issue
	if strings.TrimSpace(a.BaseURL) == "" {
		issues = append(issues, errorf("aggregator.base_url", "base_url must not be empty"))
	}
	if a.PageSize < 1 || a.PageSize > 200 {
		issues = append(issues, errorf("aggregator.page_size", "page_size must be within 1..200, got %d", a.PageSize))
	}
	if a.MaxResults <= 0 {
		issues = append(issues, errorf("aggregator.max_results", "max_results must be positive, got %d", a.MaxResults))
	} else if a.PageSize > 0 && a.MaxResults > a.PageSize {
		issues = append(issues, warnf("aggregator.max_results",
			"max_results=%d exceeds page_size=%d; at most %d foods per query will be seen", a.MaxResults, a.PageSize, a.PageSize))
	}
	if a.RequestInterval < 0 {
		issues = append(issues, errorf("aggregator.request_interval", "request_interval must not be negative"))
	}
	if a.Timeout < 0 {
		issues = append(issues, errorf("aggregator.timeout", "timeout must not be negative"))
	}
	if a.MaxRetries < 0 {
		issues = append(issues, errorf("aggregator.max_retries", "max_retries must not be negative"))
	}
	if a.APIKey == "" || a.APIKey == "DEMO_KEY" {
		issues = append(issues, warnf("aggregator.api_key", "using DEMO_KEY; rate limits are much lower"))
	}
	if strings.TrimSpace(a.Output) == "" {
		issues = append(issues, errorf("aggregator.output", "output must not be empty"))
	}
	return issues
}
