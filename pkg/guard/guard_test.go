package guard

import (
	"strings"
	"testing"

	"github.com/leapstack-labs/leapquery/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateSQL_FailFast(t *testing.T) {
	tests := []struct {
		name    string
		sql     string
		cfg     Config
		wantErr string
	}{
		{name: "empty", sql: "", cfg: DefaultConfig(), wantErr: "empty"},
		{name: "whitespace", sql: "   ", cfg: DefaultConfig(), wantErr: "empty"},
		{name: "too long", sql: "SELECT " + strings.Repeat("1", 20), cfg: Config{SelectOnly: true, MaxQueryLength: 10}, wantErr: "maximum length of 10"},
		{name: "unterminated literal", sql: "SELECT 'oops", cfg: DefaultConfig(), wantErr: "Failed to parse SQL"},
		{name: "multiple statements", sql: "SELECT 1; SELECT 2", cfg: DefaultConfig(), wantErr: "Multiple statements"},
		{name: "multiple statements without select-only", sql: "SELECT 1; DROP TABLE t", cfg: Config{}, wantErr: "Multiple statements"},
		{name: "stacked after escape string", sql: `SELECT E'\''; DROP TABLE t; --'`, cfg: DefaultConfig(), wantErr: "Multiple statements"},
		{name: "stacked after nested comment", sql: "SELECT 1 /* /* */ '*/; DROP TABLE t; --'", cfg: DefaultConfig(), wantErr: "Multiple statements"},
		{name: "only comments", sql: "-- nothing", cfg: DefaultConfig(), wantErr: "No valid SQL statement"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := ValidateSQL(tt.sql, tt.cfg)
			assert.False(t, res.Valid)
			require.Len(t, res.Errors, 1)
			assert.Contains(t, res.Errors[0], tt.wantErr)
		})
	}
}

func TestValidateSQL_StatementTypes(t *testing.T) {
	tests := []struct {
		name      string
		sql       string
		cfg       Config
		wantValid bool
		wantType  string
		wantErrs  []string
	}{
		{name: "select", sql: "SELECT * FROM analytics.events", cfg: DefaultConfig(), wantValid: true, wantType: "SELECT"},
		{name: "show tables", sql: "SHOW TABLES", cfg: DefaultConfig(), wantValid: true, wantType: "SHOW_TABLES"},
		{name: "cte", sql: "WITH x AS (SELECT 1) SELECT * FROM x", cfg: DefaultConfig(), wantValid: true, wantType: "SELECT"},
		{
			name:     "delete under select-only",
			sql:      "DELETE FROM t",
			cfg:      DefaultConfig(),
			wantType: "DELETE",
			wantErrs: []string{"Only SELECT queries are allowed, got: DELETE", "Modification queries are not allowed"},
		},
		{
			name:     "delete without select-only still blocked",
			sql:      "DELETE FROM t",
			cfg:      Config{MaxQueryLength: 100},
			wantType: "DELETE",
			wantErrs: []string{"Modification queries are not allowed"},
		},
		{
			name:     "unknown under select-only",
			sql:      "PRAGMA database_list",
			cfg:      DefaultConfig(),
			wantType: "UNKNOWN",
			wantErrs: []string{"Only SELECT queries are allowed, got: UNKNOWN"},
		},
		{name: "unknown without select-only", sql: "PRAGMA database_list", cfg: Config{}, wantValid: true, wantType: "UNKNOWN"},
		{name: "transaction without select-only", sql: "BEGIN", cfg: Config{}, wantValid: true, wantType: "BEGIN_TRANSACTION"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := ValidateSQL(tt.sql, tt.cfg)
			assert.Equal(t, tt.wantValid, res.Valid)
			assert.Equal(t, tt.wantType, res.StatementType)
			if tt.wantValid {
				assert.Empty(t, res.Errors)
			} else {
				assert.Equal(t, tt.wantErrs, res.Errors)
			}
		})
	}
}

func TestValidateSQL_DangerousFunctions(t *testing.T) {
	t.Run("blocked when enabled", func(t *testing.T) {
		for _, sql := range []string{
			"SELECT * FROM read_csv('/etc/passwd')",
			"SELECT * FROM READ_CSV ('/etc/passwd')",
			"SELECT * FROM Read_Csv\n('/etc/passwd')",
		} {
			res := ValidateSQL(sql, DefaultConfig())
			assert.False(t, res.Valid, sql)
			assert.Contains(t, res.Errors, "Dangerous function not allowed: read_csv", sql)
		}
	})

	t.Run("allowed when disabled", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.BlockDangerousFunctions = false

		res := ValidateSQL("SELECT * FROM read_csv('/etc/passwd')", cfg)
		assert.True(t, res.Valid)
		assert.Empty(t, res.Errors)
	})

	t.Run("reports every match", func(t *testing.T) {
		sql := "SELECT * FROM read_parquet('a') JOIN read_json_auto('b') USING (id) WHERE load('x')"

		res := ValidateSQL(sql, DefaultConfig())
		assert.False(t, res.Valid)
		assert.ElementsMatch(t, []string{
			"Dangerous function not allowed: read_json_auto",
			"Dangerous function not allowed: read_parquet",
			"Dangerous function not allowed: load",
		}, res.Errors)
	})

	t.Run("accumulates with type errors", func(t *testing.T) {
		res := ValidateSQL("INSERT INTO t SELECT * FROM read_csv_auto('x')", DefaultConfig())
		assert.Equal(t, []string{
			"Only SELECT queries are allowed, got: INSERT",
			"Modification queries are not allowed",
			"Dangerous function not allowed: read_csv_auto",
		}, res.Errors)
	})

	t.Run("name without call is allowed", func(t *testing.T) {
		res := ValidateSQL("SELECT load_count, copy_of FROM analytics.events", DefaultConfig())
		assert.True(t, res.Valid, res.Errors)
	})

	t.Run("suffix match is not a call", func(t *testing.T) {
		res := ValidateSQL("SELECT my_load(1)", DefaultConfig())
		assert.True(t, res.Valid, res.Errors)
	})
}

func TestValidateSQL_ValidIffNoErrors(t *testing.T) {
	inputs := []string{"", "SELECT 1", "DROP TABLE t", "SELECT 1; SELECT 2", "SELECT read_blob('x')", "SHOW TABLES"}
	for _, sql := range inputs {
		res := ValidateSQL(sql, DefaultConfig())
		assert.Equal(t, len(res.Errors) == 0, res.Valid, sql)
	}
}

func TestIsReadOnlyQuery(t *testing.T) {
	assert.True(t, IsReadOnlyQuery("SELECT 1"))
	assert.True(t, IsReadOnlyQuery("SHOW TABLES"))
	assert.False(t, IsReadOnlyQuery("DELETE FROM t"))
	assert.False(t, IsReadOnlyQuery("SELECT 1; DELETE FROM t"))
	assert.False(t, IsReadOnlyQuery("SELECT * FROM read_csv('x')"))
}

func TestValidationResult_Error(t *testing.T) {
	res := ValidationResult{Errors: []string{"a", "b"}}
	assert.Equal(t, "a; b", res.Error())
}

func TestGuard_Check(t *testing.T) {
	g := New(DefaultConfig(), testutil.NewTestLogger(t))

	assert.True(t, g.Check("SELECT 1").Valid)

	res := g.Check("DROP TABLE t")
	assert.False(t, res.Valid)
	assert.Equal(t, "DROP_TABLE", res.StatementType)
	assert.Equal(t, DefaultConfig(), g.Config())
}

func TestGuard_NilLogger(t *testing.T) {
	g := New(DefaultConfig(), nil)
	assert.False(t, g.Check("").Valid)
}
