// Package classify splits SQL text into statements and assigns each one a
// coarse statement type and execution type.
//
// This is not a parser. It looks at the leading keywords of each statement
// (and, for WITH, the first top-level keyword after the CTE list) and nothing
// else. It exists so the guard can reject stacked statements and anything
// that is not a query, and it errs on the side of UNKNOWN.
package classify

import "strings"

// Type is the coarse statement classification, e.g. SELECT or SHOW_TABLES.
type Type string

// Fixed statement types. CREATE_*, DROP_*, ALTER_* and SHOW_* types are built
// from the object keyword that follows.
const (
	TypeSelect           Type = "SELECT"
	TypeInsert           Type = "INSERT"
	TypeUpdate           Type = "UPDATE"
	TypeDelete           Type = "DELETE"
	TypeTruncate         Type = "TRUNCATE"
	TypeBeginTransaction Type = "BEGIN_TRANSACTION"
	TypeCommit           Type = "COMMIT"
	TypeRollback         Type = "ROLLBACK"
	TypeUnknown          Type = "UNKNOWN"
)

// IsShow reports whether t is one of the SHOW_* types.
func (t Type) IsShow() bool {
	return strings.HasPrefix(string(t), "SHOW_")
}

// ExecutionType is the read-versus-write classification of a statement.
type ExecutionType string

// Execution types.
const (
	ExecListing      ExecutionType = "LISTING"
	ExecModification ExecutionType = "MODIFICATION"
	ExecTransaction  ExecutionType = "TRANSACTION"
	ExecUnknown      ExecutionType = "UNKNOWN"
)

// Statement is one classified statement.
type Statement struct {
	// Text is the statement source without the terminating semicolon.
	Text string
	// Start and End are byte offsets of Text within the input.
	Start int
	End   int

	Type          Type
	ExecutionType ExecutionType
}

// ddlObjects are the object keywords recognised after CREATE, DROP and ALTER.
var ddlObjects = map[string]bool{
	"TABLE":    true,
	"VIEW":     true,
	"INDEX":    true,
	"SCHEMA":   true,
	"DATABASE": true,
	"FUNCTION": true,
	"SEQUENCE": true,
	"TRIGGER":  true,
	"MACRO":    true,
	"TYPE":     true,
	"SECRET":   true,
}

// ddlModifiers may sit between CREATE and the object keyword.
var ddlModifiers = map[string]bool{
	"OR":           true,
	"REPLACE":      true,
	"TEMP":         true,
	"TEMPORARY":    true,
	"UNIQUE":       true,
	"UNLOGGED":     true,
	"PERSISTENT":   true,
	"MATERIALIZED": true,
	"IF":           true,
	"NOT":          true,
	"EXISTS":       true,
}

// writeKeywords are leading keywords that always change database state.
var writeKeywords = map[string]bool{
	"GRANT":      true,
	"REVOKE":     true,
	"MERGE":      true,
	"COPY":       true,
	"ATTACH":     true,
	"DETACH":     true,
	"INSTALL":    true,
	"LOAD":       true,
	"EXPORT":     true,
	"IMPORT":     true,
	"VACUUM":     true,
	"CHECKPOINT": true,
	"REPLACE":    true,
	"UPSERT":     true,
}

// Identify splits sql into statements and classifies each one. Segments that
// contain only whitespace or comments are dropped. The only failure mode is a
// lexical one (an unterminated literal, identifier or comment).
func Identify(sql string) ([]Statement, error) {
	l := newLexer(sql)

	var (
		stmts  []Statement
		tokens []token
	)

	flush := func() {
		if len(tokens) == 0 {
			return
		}
		start := tokens[0].pos
		end := tokens[len(tokens)-1].end
		typ, exec := classifyTokens(tokens)
		stmts = append(stmts, Statement{
			Text:          sql[start:end],
			Start:         start,
			End:           end,
			Type:          typ,
			ExecutionType: exec,
		})
		tokens = tokens[:0]
	}

	for {
		tok, err := l.next()
		if err != nil {
			return nil, err
		}
		switch tok.kind {
		case tokEOF:
			flush()
			return stmts, nil
		case tokSemicolon:
			flush()
		default:
			tokens = append(tokens, tok)
		}
	}
}

func classifyTokens(tokens []token) (Type, ExecutionType) {
	// Leading parentheses wrap a query, e.g. (SELECT 1) UNION (SELECT 2).
	i := 0
	for i < len(tokens) && tokens[i].kind == tokLParen {
		i++
	}
	if i >= len(tokens) || tokens[i].kind != tokWord {
		return TypeUnknown, ExecUnknown
	}

	word := tokens[i].text
	rest := tokens[i+1:]

	switch word {
	case "SELECT", "FROM":
		return TypeSelect, ExecListing
	case "WITH":
		return classifyWith(rest)
	case "INSERT":
		return TypeInsert, ExecModification
	case "UPDATE":
		return TypeUpdate, ExecModification
	case "DELETE":
		return TypeDelete, ExecModification
	case "TRUNCATE":
		return TypeTruncate, ExecModification
	case "CREATE", "DROP", "ALTER":
		return classifyDDL(word, rest), ExecModification
	case "SHOW":
		if w, ok := firstWord(rest); ok {
			return Type("SHOW_" + w), ExecListing
		}
		return TypeUnknown, ExecUnknown
	case "BEGIN", "START":
		return TypeBeginTransaction, ExecTransaction
	case "COMMIT", "END":
		return TypeCommit, ExecTransaction
	case "ROLLBACK", "ABORT":
		return TypeRollback, ExecTransaction
	}

	if writeKeywords[word] {
		return Type(word), ExecModification
	}
	return TypeUnknown, ExecUnknown
}

// classifyWith classifies a CTE query by the first top-level statement
// keyword after the WITH list.
func classifyWith(tokens []token) (Type, ExecutionType) {
	base := -1
	for _, tok := range tokens {
		if base < 0 {
			base = tok.depth
		}
		if tok.kind != tokWord || tok.depth != base {
			continue
		}
		switch tok.text {
		case "SELECT", "FROM":
			return TypeSelect, ExecListing
		case "INSERT":
			return TypeInsert, ExecModification
		case "UPDATE":
			return TypeUpdate, ExecModification
		case "DELETE":
			return TypeDelete, ExecModification
		}
	}
	return TypeUnknown, ExecUnknown
}

func classifyDDL(verb string, tokens []token) Type {
	for _, tok := range tokens {
		if tok.kind != tokWord {
			break
		}
		if ddlObjects[tok.text] {
			return Type(verb + "_" + tok.text)
		}
		if !ddlModifiers[tok.text] {
			break
		}
	}
	return TypeUnknown
}

func firstWord(tokens []token) (string, bool) {
	if len(tokens) == 0 || tokens[0].kind != tokWord {
		return "", false
	}
	return tokens[0].text, true
}
