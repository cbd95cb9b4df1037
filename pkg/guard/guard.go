// Package guard decides whether untrusted SQL text may be sent to the query
// engine.
//
// The checks are a deny-list function scan on top of the lightweight
// statement classifier in package classify. Neither is a parser, so the guard
// is conservative rather than complete: it rejects stacked statements,
// anything that is not a query and a fixed set of file, extension and export
// functions. Validation never fails with an error or a panic; every outcome is
// a ValidationResult.
package guard

import (
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/leapstack-labs/leapquery/pkg/classify"
)

// DefaultMaxQueryLength is the default upper bound on query text, in bytes.
const DefaultMaxQueryLength = 10000

// Config controls which checks ValidateSQL applies.
type Config struct {
	// SelectOnly restricts queries to SELECT and SHOW_* statements.
	SelectOnly bool

	// MaxQueryLength is the maximum accepted query length in bytes.
	MaxQueryLength int

	// BlockDangerousFunctions rejects calls to file, extension and export
	// functions anywhere in the text.
	BlockDangerousFunctions bool
}

// DefaultConfig returns the strictest configuration.
func DefaultConfig() Config {
	return Config{
		SelectOnly:              true,
		MaxQueryLength:          DefaultMaxQueryLength,
		BlockDangerousFunctions: true,
	}
}

// ValidationResult is the verdict for one query. Valid is true exactly when
// Errors is empty.
type ValidationResult struct {
	Valid         bool     `json:"valid" yaml:"valid"`
	Errors        []string `json:"errors" yaml:"errors"`
	StatementType string   `json:"statementType,omitempty" yaml:"statement_type,omitempty"`
}

// Error joins the validation errors into one message.
func (r ValidationResult) Error() string {
	return strings.Join(r.Errors, "; ")
}

func reject(msg string) ValidationResult {
	return ValidationResult{Errors: []string{msg}}
}

// DangerousFunctions is the deny-list scanned for when BlockDangerousFunctions
// is set.
var DangerousFunctions = []string{
	// file I/O
	"read_csv",
	"read_csv_auto",
	"read_json",
	"read_json_auto",
	"read_parquet",
	"read_blob",
	"write_csv",
	"write_parquet",
	"write_json",
	// system and extensions
	"copy",
	"export_database",
	"import_database",
	"load",
	"install",
	"load_extension",
	"install_extension",
}

type functionPattern struct {
	name string
	re   *regexp.Regexp
}

var dangerousPatterns = func() []functionPattern {
	patterns := make([]functionPattern, 0, len(DangerousFunctions))
	for _, name := range DangerousFunctions {
		patterns = append(patterns, functionPattern{
			name: name,
			re:   regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(name) + `\s*\(`),
		})
	}
	return patterns
}()

// ValidateSQL runs every check in order. Emptiness, length, classification
// and statement count fail fast; statement type, modification and dangerous
// function checks accumulate so a caller can report all of them at once.
func ValidateSQL(sql string, cfg Config) ValidationResult {
	if strings.TrimSpace(sql) == "" {
		return reject("Query cannot be empty")
	}

	maxLen := cfg.MaxQueryLength
	if maxLen <= 0 {
		maxLen = DefaultMaxQueryLength
	}
	if len(sql) > maxLen {
		return reject(fmt.Sprintf("Query exceeds maximum length of %d characters", maxLen))
	}

	stmts, err := identify(sql)
	if err != nil {
		return reject(fmt.Sprintf("Failed to parse SQL: %v", err))
	}
	if len(stmts) > 1 {
		return reject("Multiple statements are not allowed")
	}
	if len(stmts) == 0 {
		return reject("No valid SQL statement found")
	}

	stmt := stmts[0]
	res := ValidationResult{StatementType: string(stmt.Type)}

	if cfg.SelectOnly && stmt.Type != classify.TypeSelect && !stmt.Type.IsShow() {
		res.Errors = append(res.Errors, fmt.Sprintf("Only SELECT queries are allowed, got: %s", stmt.Type))
	}

	if stmt.ExecutionType == classify.ExecModification {
		res.Errors = append(res.Errors, "Modification queries are not allowed")
	}

	if cfg.BlockDangerousFunctions {
		for _, p := range dangerousPatterns {
			if p.re.MatchString(sql) {
				res.Errors = append(res.Errors, fmt.Sprintf("Dangerous function not allowed: %s", p.name))
			}
		}
	}

	res.Valid = len(res.Errors) == 0
	return res
}

// identify wraps the classifier so that a fault inside it becomes an error.
func identify(sql string) (stmts []classify.Statement, err error) {
	defer func() {
		if r := recover(); r != nil {
			stmts, err = nil, fmt.Errorf("classifier failure: %v", r)
		}
	}()
	return classify.Identify(sql)
}

// IsReadOnlyQuery reports whether sql passes the default, SELECT-only checks.
func IsReadOnlyQuery(sql string) bool {
	return ValidateSQL(sql, DefaultConfig()).Valid
}

// Guard binds a Config to a logger for callers that validate repeatedly.
type Guard struct {
	cfg    Config
	logger *slog.Logger
}

// New creates a Guard. A nil logger discards output.
func New(cfg Config, logger *slog.Logger) *Guard {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Guard{cfg: cfg, logger: logger}
}

// Config returns the guard's configuration.
func (g *Guard) Config() Config {
	return g.cfg
}

// Check validates sql and logs rejections at debug level.
func (g *Guard) Check(sql string) ValidationResult {
	res := ValidateSQL(sql, g.cfg)
	if !res.Valid {
		g.logger.Debug("query rejected",
			"statement_type", res.StatementType,
			"errors", len(res.Errors),
			"first_error", res.Errors[0],
		)
	}
	return res
}
