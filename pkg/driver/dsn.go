package driver

import (
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/leapstack-labs/leapquery/pkg/guard"
	"github.com/leapstack-labs/leapquery/pkg/remote"
)

// Options configures a Connector.
type Options struct {
	// Endpoint is the engine base URL; queries go to {Endpoint}/query.
	Endpoint string
	Token    string
	Timeout  time.Duration

	// Guard enables client-side validation before anything is sent.
	Guard       bool
	GuardConfig guard.Config

	Transport remote.Transport
	Logger    *slog.Logger
}

// DefaultOptions returns options with the guard enabled in select-only mode.
func DefaultOptions() Options {
	return Options{
		Timeout:     remote.DefaultTimeout,
		Guard:       true,
		GuardConfig: guard.DefaultConfig(),
	}
}

// ParseDSN parses a data source name of the form
//
//	http(s)://host[:port][/base]?token=...&timeout=30s&guard=true&select_only=true&max_query_length=10000
//
// timeout accepts a Go duration or a number of milliseconds.
func ParseDSN(dsn string) (Options, error) {
	opts := DefaultOptions()

	u, err := url.Parse(dsn)
	if err != nil {
		return opts, fmt.Errorf("invalid DSN: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return opts, fmt.Errorf("invalid DSN: scheme must be http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return opts, fmt.Errorf("invalid DSN: missing host")
	}

	for key, values := range u.Query() {
		value := values[len(values)-1]
		switch key {
		case "token":
			opts.Token = value
		case "timeout":
			d, err := parseTimeout(value)
			if err != nil {
				return opts, fmt.Errorf("invalid DSN: timeout: %w", err)
			}
			opts.Timeout = d
		case "guard":
			b, err := strconv.ParseBool(value)
			if err != nil {
				return opts, fmt.Errorf("invalid DSN: guard: %w", err)
			}
			opts.Guard = b
		case "select_only":
			b, err := strconv.ParseBool(value)
			if err != nil {
				return opts, fmt.Errorf("invalid DSN: select_only: %w", err)
			}
			opts.GuardConfig.SelectOnly = b
		case "max_query_length":
			n, err := strconv.Atoi(value)
			if err != nil || n <= 0 {
				return opts, fmt.Errorf("invalid DSN: max_query_length must be a positive integer")
			}
			opts.GuardConfig.MaxQueryLength = n
		default:
			return opts, fmt.Errorf("invalid DSN: unknown parameter %q", key)
		}
	}

	u.RawQuery = ""
	u.Fragment = ""
	opts.Endpoint = strings.TrimRight(u.String(), "/")
	return opts, nil
}

func parseTimeout(s string) (time.Duration, error) {
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		if ms <= 0 {
			return 0, fmt.Errorf("must be positive")
		}
		return time.Duration(ms) * time.Millisecond, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return 0, fmt.Errorf("must be positive")
	}
	return d, nil
}
