package duckdb

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseParams(t *testing.T) {
	tests := []struct {
		name    string
		input   map[string]any
		want    *Params
		wantErr string
	}{
		{
			name:  "nil params",
			input: nil,
			want:  &Params{},
		},
		{
			name: "extensions",
			input: map[string]any{
				"extensions": []any{"httpfs", "json"},
			},
			want: &Params{Extensions: []string{"httpfs", "json"}},
		},
		{
			name: "settings coerced to strings",
			input: map[string]any{
				"settings": map[string]any{
					"memory_limit": "4GB",
					"threads":      4,
				},
			},
			want: &Params{Settings: map[string]string{"memory_limit": "4GB", "threads": "4"}},
		},
		{
			name:    "unknown key",
			input:   map[string]any{"secrets": []any{}},
			wantErr: "invalid duckdb params",
		},
		{
			name:    "bad extension name",
			input:   map[string]any{"extensions": []any{"httpfs; DROP TABLE x"}},
			wantErr: "invalid duckdb extension name",
		},
		{
			name:    "bad setting name",
			input:   map[string]any{"settings": map[string]any{"x = 1; --": "y"}},
			wantErr: "invalid duckdb setting name",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseParams(tt.input)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParams_Statements(t *testing.T) {
	p := &Params{
		Extensions: []string{"json"},
		Settings:   map[string]string{"threads": "2", "memory_limit": "1GB", "timezone": "O'Hare"},
	}

	assert.Equal(t, []string{
		"INSTALL json",
		"LOAD json",
		"SET memory_limit = '1GB'",
		"SET threads = '2'",
		"SET timezone = 'O''Hare'",
	}, p.statements())
}

func TestBuildDSN(t *testing.T) {
	assert.Equal(t, "", buildDSN(adapterConfig("", false)))
	assert.Equal(t, "", buildDSN(adapterConfig(":memory:", true)))
	assert.Equal(t, "/data/a.duckdb", buildDSN(adapterConfig("/data/a.duckdb", false)))
	assert.Equal(t, "/data/a.duckdb?access_mode=read_only", buildDSN(adapterConfig("/data/a.duckdb", true)))
}
