// Package ident validates schema and table identifiers against a naming
// pattern, a reserved keyword list and a namespace allow-list.
//
// Validation only accepts or rejects. A successful result carries the input
// unchanged in Sanitized; nothing is ever quoted or escaped, so callers must
// not treat Sanitized as safe to splice into SQL on its own.
package ident

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// Default configuration values.
const (
	DefaultNamespace = "analytics"
	DefaultMaxLength = 63
)

// Code classifies why an identifier was rejected.
type Code string

// Rejection codes.
const (
	CodeEmpty     Code = "EMPTY"
	CodeTooLong   Code = "TOO_LONG"
	CodePattern   Code = "PATTERN"
	CodeReserved  Code = "RESERVED"
	CodeNamespace Code = "NAMESPACE"
	CodeMalformed Code = "MALFORMED"
)

// Config controls identifier validation.
type Config struct {
	// AllowedNamespaces lists the schemas a qualified name may reference.
	// Membership is case-insensitive.
	AllowedNamespaces []string

	// MaxLength is the maximum identifier length in bytes.
	MaxLength int
}

// DefaultConfig returns the configuration used when callers have no opinion.
func DefaultConfig() Config {
	return Config{
		AllowedNamespaces: []string{DefaultNamespace},
		MaxLength:         DefaultMaxLength,
	}
}

// Result is the verdict for a single identifier.
type Result struct {
	Valid     bool
	Code      Code
	Error     string
	Sanitized string
}

func ok(id string) Result {
	return Result{Valid: true, Sanitized: id}
}

func fail(code Code, format string, args ...any) Result {
	return Result{Code: code, Error: fmt.Sprintf(format, args...)}
}

var identifierPattern = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// ValidateIdentifier checks a bare identifier.
func ValidateIdentifier(id string, cfg Config) Result {
	if strings.TrimSpace(id) == "" {
		return fail(CodeEmpty, "Identifier cannot be empty")
	}

	maxLen := cfg.MaxLength
	if maxLen <= 0 {
		maxLen = DefaultMaxLength
	}
	if len(id) > maxLen {
		return fail(CodeTooLong, "Identifier exceeds maximum length of %d characters", maxLen)
	}

	if !identifierPattern.MatchString(id) {
		return fail(CodePattern,
			"Identifier %q must start with a letter or underscore and contain only letters, digits and underscores", id)
	}

	if IsReserved(id) {
		return fail(CodeReserved, "Identifier %q is a reserved SQL keyword", id)
	}

	return ok(id)
}

// ValidateNamespace checks an identifier and its membership in the
// configured namespace allow-list.
func ValidateNamespace(ns string, cfg Config) Result {
	if res := ValidateIdentifier(ns, cfg); !res.Valid {
		return res
	}

	lower := strings.ToLower(ns)
	for _, allowed := range cfg.AllowedNamespaces {
		if strings.ToLower(allowed) == lower {
			return ok(ns)
		}
	}

	allowed := append([]string(nil), cfg.AllowedNamespaces...)
	sort.Strings(allowed)
	return fail(CodeNamespace, "Namespace %q is not allowed. Allowed namespaces: %s",
		ns, strings.Join(allowed, ", "))
}

// ValidateQualifiedTableName checks a "namespace.table" reference. Exactly one
// dot is required.
func ValidateQualifiedTableName(qualified string, cfg Config) Result {
	parts := strings.Split(qualified, ".")
	if len(parts) != 2 {
		return fail(CodeMalformed, "Table name must be in the form namespace.table, got %q", qualified)
	}

	if res := ValidateNamespace(parts[0], cfg); !res.Valid {
		return Result{Code: res.Code, Error: "invalid namespace: " + res.Error}
	}
	if res := ValidateIdentifier(parts[1], cfg); !res.Valid {
		return Result{Code: res.Code, Error: "invalid table name: " + res.Error}
	}

	return ok(parts[0] + "." + parts[1])
}
