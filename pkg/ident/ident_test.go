package ident

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateIdentifier(t *testing.T) {
	cfg := DefaultConfig()

	tests := []struct {
		name     string
		id       string
		wantCode Code
	}{
		{name: "simple", id: "events"},
		{name: "leading underscore", id: "_private"},
		{name: "mixed case with digits", id: "Events2024"},
		{name: "empty", id: "", wantCode: CodeEmpty},
		{name: "whitespace only", id: "   ", wantCode: CodeEmpty},
		{name: "leading digit", id: "1abc", wantCode: CodePattern},
		{name: "dash", id: "has-dash", wantCode: CodePattern},
		{name: "space", id: "has space", wantCode: CodePattern},
		{name: "quote", id: `evil"name`, wantCode: CodePattern},
		{name: "reserved lower", id: "select", wantCode: CodeReserved},
		{name: "reserved upper", id: "DROP", wantCode: CodeReserved},
		{name: "too long", id: strings.Repeat("a", 100), wantCode: CodeTooLong},
		{name: "exactly max length", id: strings.Repeat("a", 63)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := ValidateIdentifier(tt.id, cfg)
			if tt.wantCode == "" {
				require.True(t, res.Valid, res.Error)
				assert.Equal(t, tt.id, res.Sanitized)
				assert.Empty(t, res.Error)
				return
			}
			assert.False(t, res.Valid)
			assert.Equal(t, tt.wantCode, res.Code)
			assert.NotEmpty(t, res.Error)
			assert.Empty(t, res.Sanitized)
		})
	}
}

func TestValidateIdentifier_CustomMaxLength(t *testing.T) {
	cfg := Config{MaxLength: 5}

	assert.True(t, ValidateIdentifier("abcde", cfg).Valid)

	res := ValidateIdentifier("abcdef", cfg)
	assert.Equal(t, CodeTooLong, res.Code)
	assert.Contains(t, res.Error, "5")
}

func TestValidateIdentifier_SanitizedIsUnmodified(t *testing.T) {
	// Names that would need quoting elsewhere are passed through verbatim.
	res := ValidateIdentifier("MixedCase_Name", DefaultConfig())
	require.True(t, res.Valid)
	assert.Equal(t, "MixedCase_Name", res.Sanitized)
}

func TestValidateNamespace(t *testing.T) {
	cfg := Config{AllowedNamespaces: []string{"analytics", "Reporting"}, MaxLength: 63}

	tests := []struct {
		name     string
		ns       string
		wantCode Code
	}{
		{name: "allowed", ns: "analytics"},
		{name: "allowed case-insensitive", ns: "ANALYTICS"},
		{name: "allowed mixed-case config", ns: "reporting"},
		{name: "not allowed", ns: "other", wantCode: CodeNamespace},
		{name: "reserved before membership", ns: "select", wantCode: CodeReserved},
		{name: "bad pattern", ns: "1ns", wantCode: CodePattern},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := ValidateNamespace(tt.ns, cfg)
			if tt.wantCode == "" {
				assert.True(t, res.Valid, res.Error)
				assert.Equal(t, tt.ns, res.Sanitized)
				return
			}
			assert.False(t, res.Valid)
			assert.Equal(t, tt.wantCode, res.Code)
		})
	}
}

func TestValidateNamespace_ErrorNamesAllowedSet(t *testing.T) {
	cfg := Config{AllowedNamespaces: []string{"staging", "analytics"}}

	res := ValidateNamespace("other", cfg)
	require.False(t, res.Valid)
	assert.Contains(t, res.Error, "analytics, staging")
}

func TestValidateQualifiedTableName(t *testing.T) {
	cfg := DefaultConfig()

	tests := []struct {
		name          string
		qualified     string
		wantSanitized string
		wantCode      Code
		wantPrefix    string
	}{
		{name: "valid", qualified: "analytics.events", wantSanitized: "analytics.events"},
		{name: "namespace case preserved", qualified: "Analytics.events", wantSanitized: "Analytics.events"},
		{name: "missing dot", qualified: "analytics", wantCode: CodeMalformed},
		{name: "too many dots", qualified: "db.analytics.events", wantCode: CodeMalformed},
		{name: "namespace not allowed", qualified: "other.events", wantCode: CodeNamespace, wantPrefix: "invalid namespace"},
		{name: "empty table", qualified: "analytics.", wantCode: CodeEmpty, wantPrefix: "invalid table name"},
		{name: "reserved table", qualified: "analytics.select", wantCode: CodeReserved, wantPrefix: "invalid table name"},
		{name: "bad table pattern", qualified: "analytics.1x", wantCode: CodePattern, wantPrefix: "invalid table name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := ValidateQualifiedTableName(tt.qualified, cfg)
			if tt.wantCode == "" {
				require.True(t, res.Valid, res.Error)
				assert.Equal(t, tt.wantSanitized, res.Sanitized)
				return
			}
			assert.False(t, res.Valid)
			assert.Equal(t, tt.wantCode, res.Code)
			if tt.wantPrefix != "" {
				assert.True(t, strings.HasPrefix(res.Error, tt.wantPrefix), res.Error)
			}
		})
	}
}

func TestIsReserved(t *testing.T) {
	assert.True(t, IsReserved("Grant"))
	assert.True(t, IsReserved("where"))
	assert.False(t, IsReserved("events"))
	assert.Len(t, reserved, 45)
}
