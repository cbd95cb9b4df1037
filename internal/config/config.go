// Package config loads leapquery settings from defaults, a YAML file,
// LEAPQUERY_ environment variables and command-line flags.
package config

import (
	"log/slog"
	"strings"
	"time"

	"github.com/leapstack-labs/leapquery/pkg/adapter"
	"github.com/leapstack-labs/leapquery/pkg/guard"
	"github.com/leapstack-labs/leapquery/pkg/ident"
	"github.com/leapstack-labs/leapquery/pkg/remote"
)

// Default configuration values.
const (
	DefaultTimeoutMS = 30000
	DefaultAddr      = "127.0.0.1:8080"
	DefaultAdapter   = "duckdb"
	DefaultDatabase  = ":memory:"
	DefaultOutput    = "auto" // TTY=table, non-TTY=markdown
)

// Output formats accepted by the output setting.
var OutputFormats = []string{"auto", "table", "text", "json", "yaml", "csv", "markdown"}

// Config holds all leapquery settings.
type Config struct {
	Remote      RemoteConfig     `koanf:"remote" yaml:"remote" json:"remote"`
	Guard       GuardConfig      `koanf:"guard" yaml:"guard" json:"guard"`
	Identifiers IdentifierConfig `koanf:"identifiers" yaml:"identifiers" json:"identifiers"`
	Server      ServerConfig     `koanf:"server" yaml:"server" json:"server"`
	Verbose     bool             `koanf:"verbose" yaml:"verbose" json:"verbose"`
	Output      string           `koanf:"output" yaml:"output" json:"output"`

	// File is the config file that was read, if any.
	File string `koanf:"-" yaml:"-" json:"-"`
}

// RemoteConfig locates the query engine.
type RemoteConfig struct {
	Endpoint  string `koanf:"endpoint" yaml:"endpoint" json:"endpoint"`
	Token     string `koanf:"token" yaml:"token" json:"token"`
	TimeoutMS int    `koanf:"timeout_ms" yaml:"timeout_ms" json:"timeout_ms"`
}

// GuardConfig mirrors guard.Config.
type GuardConfig struct {
	SelectOnly              bool `koanf:"select_only" yaml:"select_only" json:"select_only"`
	MaxQueryLength          int  `koanf:"max_query_length" yaml:"max_query_length" json:"max_query_length"`
	BlockDangerousFunctions bool `koanf:"block_dangerous_functions" yaml:"block_dangerous_functions" json:"block_dangerous_functions"`
}

// IdentifierConfig mirrors ident.Config.
type IdentifierConfig struct {
	AllowedNamespaces []string `koanf:"allowed_namespaces" yaml:"allowed_namespaces" json:"allowed_namespaces"`
	MaxLength         int      `koanf:"max_length" yaml:"max_length" json:"max_length"`
}

// ServerConfig configures the reference engine started by `serve`.
type ServerConfig struct {
	Addr     string `koanf:"addr" yaml:"addr" json:"addr"`
	Adapter  string `koanf:"adapter" yaml:"adapter" json:"adapter"`
	Database string `koanf:"database" yaml:"database" json:"database"`
	Guard    bool   `koanf:"guard" yaml:"guard" json:"guard"`
	ReadOnly bool   `koanf:"read_only" yaml:"read_only" json:"read_only"`

	// AuditLog is a SQLite file recording every query. Empty disables it.
	AuditLog string `koanf:"audit_log" yaml:"audit_log,omitempty" json:"audit_log,omitempty"`

	// Network databases
	Host     string `koanf:"host" yaml:"host,omitempty" json:"host,omitempty"`
	Port     int    `koanf:"port" yaml:"port,omitempty" json:"port,omitempty"`
	User     string `koanf:"user" yaml:"user,omitempty" json:"user,omitempty"`
	Password string `koanf:"password" yaml:"password,omitempty" json:"password,omitempty"`

	Options map[string]string `koanf:"options" yaml:"options,omitempty" json:"options,omitempty"`
	Params  map[string]any    `koanf:"params" yaml:"params,omitempty" json:"params,omitempty"`
}

// Defaults returns the lowest-precedence layer as flat koanf keys.
func Defaults() map[string]any {
	g := guard.DefaultConfig()
	id := ident.DefaultConfig()
	return map[string]any{
		"remote.endpoint":                 "",
		"remote.token":                    "",
		"remote.timeout_ms":               DefaultTimeoutMS,
		"guard.select_only":               g.SelectOnly,
		"guard.max_query_length":          g.MaxQueryLength,
		"guard.block_dangerous_functions": g.BlockDangerousFunctions,
		"identifiers.allowed_namespaces":  id.AllowedNamespaces,
		"identifiers.max_length":          id.MaxLength,
		"server.addr":                     DefaultAddr,
		"server.adapter":                  DefaultAdapter,
		"server.database":                 DefaultDatabase,
		"server.guard":                    true,
		"server.read_only":                true,
		"server.audit_log":                "",
		"verbose":                         false,
		"output":                          DefaultOutput,
	}
}

// GuardConfig converts the guard settings.
func (c *Config) GuardConfig() guard.Config {
	return guard.Config{
		SelectOnly:              c.Guard.SelectOnly,
		MaxQueryLength:          c.Guard.MaxQueryLength,
		BlockDangerousFunctions: c.Guard.BlockDangerousFunctions,
	}
}

// IdentConfig converts the identifier settings.
func (c *Config) IdentConfig() ident.Config {
	return ident.Config{
		AllowedNamespaces: c.Identifiers.AllowedNamespaces,
		MaxLength:         c.Identifiers.MaxLength,
	}
}

// RemoteConfig converts the remote settings into client options.
func (c *Config) RemoteConfig(logger *slog.Logger) remote.Config {
	return remote.Config{
		Endpoint: c.Remote.Endpoint,
		Token:    c.Remote.Token,
		Timeout:  time.Duration(c.Remote.TimeoutMS) * time.Millisecond,
		Logger:   logger,
	}
}

// AdapterConfig converts the server settings into adapter options.
func (c *Config) AdapterConfig() adapter.Config {
	s := c.Server
	return adapter.Config{
		Type:     strings.ToLower(s.Adapter),
		Path:     s.Database,
		Host:     s.Host,
		Port:     s.Port,
		Database: s.Database,
		Username: s.User,
		Password: s.Password,
		ReadOnly: s.ReadOnly,
		Options:  s.Options,
		Params:   s.Params,
	}
}

// Redacted returns a copy safe to print.
func (c *Config) Redacted() Config {
	out := *c
	if out.Remote.Token != "" {
		out.Remote.Token = "********"
	}
	if out.Server.Password != "" {
		out.Server.Password = "********"
	}
	return out
}
