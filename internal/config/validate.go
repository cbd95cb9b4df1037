package config

import (
	"errors"
	"fmt"
	"net/url"
	"slices"
	"strings"

	"github.com/leapstack-labs/leapquery/pkg/adapter"
)

// ErrNoEndpoint is returned by RequireEndpoint when remote.endpoint is unset.
var ErrNoEndpoint = errors.New("remote.endpoint is not configured\nHint: set it in leapquery.yaml, LEAPQUERY_REMOTE__ENDPOINT or --endpoint")

// Validate checks the configuration. An empty endpoint is allowed; commands
// that talk to an engine call RequireEndpoint.
func (c *Config) Validate() error {
	var errs []error

	if c.Remote.Endpoint != "" {
		if err := validateEndpoint(c.Remote.Endpoint); err != nil {
			errs = append(errs, err)
		}
	}
	if c.Remote.TimeoutMS <= 0 {
		errs = append(errs, fmt.Errorf("remote.timeout_ms must be positive, got %d", c.Remote.TimeoutMS))
	}
	if c.Guard.MaxQueryLength <= 0 {
		errs = append(errs, fmt.Errorf("guard.max_query_length must be positive, got %d", c.Guard.MaxQueryLength))
	}
	if c.Identifiers.MaxLength <= 0 {
		errs = append(errs, fmt.Errorf("identifiers.max_length must be positive, got %d", c.Identifiers.MaxLength))
	}
	if len(c.Identifiers.AllowedNamespaces) == 0 {
		errs = append(errs, errors.New("identifiers.allowed_namespaces must not be empty"))
	}
	if !adapter.IsRegistered(strings.ToLower(c.Server.Adapter)) {
		errs = append(errs, &adapter.UnknownAdapterError{
			Type:      c.Server.Adapter,
			Available: adapter.ListAdapters(),
		})
	}
	if !slices.Contains(OutputFormats, c.Output) {
		errs = append(errs, fmt.Errorf("unknown output format %q (expected one of %s)", c.Output, strings.Join(OutputFormats, ", ")))
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid configuration: %w", errors.Join(errs...))
	}
	return nil
}

// RequireEndpoint returns ErrNoEndpoint when no engine is configured.
func (c *Config) RequireEndpoint() error {
	if c.Remote.Endpoint == "" {
		return ErrNoEndpoint
	}
	return nil
}

func validateEndpoint(endpoint string) error {
	u, err := url.Parse(endpoint)
	if err != nil {
		return fmt.Errorf("remote.endpoint is not a valid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("remote.endpoint must use http or https, got %q", endpoint)
	}
	if u.Host == "" {
		return fmt.Errorf("remote.endpoint has no host: %q", endpoint)
	}
	return nil
}
