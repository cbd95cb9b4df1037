package classify

import "fmt"

// SyntaxError reports text the lexer could not tokenize.
type SyntaxError struct {
	Pos int
	Msg string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%s at offset %d", e.Msg, e.Pos)
}

type tokenKind int

const (
	tokWord tokenKind = iota
	tokLParen
	tokRParen
	tokSemicolon
	tokOther
	tokEOF
)

type token struct {
	kind  tokenKind
	text  string // upper-cased for words
	pos   int
	end   int
	depth int
}

// lexer splits SQL into the coarse tokens the classifier needs. String
// literals, quoted identifiers, dollar-quoted bodies and comments are consumed
// whole so that semicolons inside them never end a statement.
type lexer struct {
	input   string
	pos     int  // current position in input
	readPos int  // reading position (after current char)
	ch      byte // current char under examination
	depth   int  // parenthesis nesting
}

func newLexer(input string) *lexer {
	l := &lexer{input: input}
	l.readChar()
	return l
}

// readChar advances to the next character.
func (l *lexer) readChar() {
	if l.readPos >= len(l.input) {
		l.ch = 0
	} else {
		l.ch = l.input[l.readPos]
	}
	l.pos = l.readPos
	l.readPos++
}

// peekChar returns the next character without advancing.
func (l *lexer) peekChar() byte {
	if l.readPos >= len(l.input) {
		return 0
	}
	return l.input[l.readPos]
}

func (l *lexer) atEOF() bool {
	return l.pos >= len(l.input)
}

// next returns the next token.
func (l *lexer) next() (token, error) {
	if err := l.skipWhitespaceAndComments(); err != nil {
		return token{}, err
	}

	start := l.pos
	if l.atEOF() {
		return token{kind: tokEOF, pos: start, end: start}, nil
	}

	switch {
	case l.ch == ';':
		l.readChar()
		return token{kind: tokSemicolon, text: ";", pos: start, end: l.pos}, nil
	case l.ch == '(':
		l.depth++
		l.readChar()
		return token{kind: tokLParen, text: "(", pos: start, end: l.pos, depth: l.depth - 1}, nil
	case l.ch == ')':
		if l.depth > 0 {
			l.depth--
		}
		l.readChar()
		return token{kind: tokRParen, text: ")", pos: start, end: l.pos, depth: l.depth}, nil
	case l.ch == '\'' || l.ch == '"' || l.ch == '`':
		if err := l.readQuoted(l.ch); err != nil {
			return token{}, err
		}
		return token{kind: tokOther, pos: start, end: l.pos, depth: l.depth}, nil
	case l.ch == '$' && isDollarTagStart(l.peekChar()):
		ok, err := l.readDollarQuoted()
		if err != nil {
			return token{}, err
		}
		if !ok {
			l.readChar()
		}
		return token{kind: tokOther, pos: start, end: l.pos, depth: l.depth}, nil
	case isLetter(l.ch):
		for isLetter(l.ch) || isDigit(l.ch) || l.ch == '$' {
			l.readChar()
		}
		if l.pos-start == 1 && (l.input[start] == 'E' || l.input[start] == 'e') && l.ch == '\'' {
			if err := l.readEscapeString(); err != nil {
				return token{}, err
			}
			return token{kind: tokOther, pos: start, end: l.pos, depth: l.depth}, nil
		}
		return token{kind: tokWord, text: upper(l.input[start:l.pos]), pos: start, end: l.pos, depth: l.depth}, nil
	default:
		l.readChar()
		return token{kind: tokOther, pos: start, end: l.pos, depth: l.depth}, nil
	}
}

func (l *lexer) skipWhitespaceAndComments() error {
	for {
		switch {
		case l.ch == ' ' || l.ch == '\t' || l.ch == '\n' || l.ch == '\r' || l.ch == '\f' || l.ch == '\v':
			l.readChar()
		case l.ch == '-' && l.peekChar() == '-':
			for !l.atEOF() && l.ch != '\n' {
				l.readChar()
			}
		case l.ch == '/' && l.peekChar() == '*':
			if err := l.skipBlockComment(); err != nil {
				return err
			}
		default:
			return nil
		}
	}
}

// skipBlockComment consumes a block comment. Block comments nest.
func (l *lexer) skipBlockComment() error {
	start := l.pos
	depth := 0
	for {
		switch {
		case l.atEOF():
			return &SyntaxError{Pos: start, Msg: "unterminated block comment"}
		case l.ch == '/' && l.peekChar() == '*':
			depth++
			l.readChar()
			l.readChar()
		case l.ch == '*' && l.peekChar() == '/':
			depth--
			l.readChar()
			l.readChar()
			if depth == 0 {
				return nil
			}
		default:
			l.readChar()
		}
	}
}

// readEscapeString consumes the body of an E'...' string, where a backslash
// escapes the character after it.
func (l *lexer) readEscapeString() error {
	start := l.pos
	l.readChar()
	for {
		switch {
		case l.atEOF():
			return &SyntaxError{Pos: start, Msg: "unterminated string literal"}
		case l.ch == '\\':
			l.readChar()
			if !l.atEOF() {
				l.readChar()
			}
		case l.ch == '\'' && l.peekChar() == '\'':
			l.readChar()
			l.readChar()
		case l.ch == '\'':
			l.readChar()
			return nil
		default:
			l.readChar()
		}
	}
}

// readQuoted consumes a quoted string or identifier. A doubled quote inside
// the body is an escaped quote.
func (l *lexer) readQuoted(quote byte) error {
	start := l.pos
	l.readChar()
	for {
		if l.atEOF() {
			if quote == '\'' {
				return &SyntaxError{Pos: start, Msg: "unterminated string literal"}
			}
			return &SyntaxError{Pos: start, Msg: "unterminated quoted identifier"}
		}
		if l.ch == quote {
			if l.peekChar() == quote {
				l.readChar()
				l.readChar()
				continue
			}
			l.readChar()
			return nil
		}
		l.readChar()
	}
}

// readDollarQuoted consumes a $tag$...$tag$ body. It returns false without
// consuming anything when the text at the cursor is not a dollar-quote opener.
func (l *lexer) readDollarQuoted() (bool, error) {
	start := l.pos
	i := start + 1
	for i < len(l.input) && (isLetter(l.input[i]) || isDigit(l.input[i])) {
		i++
	}
	if i >= len(l.input) || l.input[i] != '$' {
		return false, nil
	}
	tag := l.input[start : i+1]

	bodyStart := i + 1
	for j := bodyStart; j+len(tag) <= len(l.input); j++ {
		if l.input[j:j+len(tag)] == tag {
			for l.pos < j+len(tag) {
				l.readChar()
			}
			return true, nil
		}
	}
	return false, &SyntaxError{Pos: start, Msg: "unterminated dollar-quoted string"}
}

func isDollarTagStart(ch byte) bool {
	return ch == '$' || isLetter(ch)
}

func isLetter(ch byte) bool {
	return 'a' <= ch && ch <= 'z' || 'A' <= ch && ch <= 'Z' || ch == '_' || ch >= 0x80
}

func isDigit(ch byte) bool {
	return '0' <= ch && ch <= '9'
}

func upper(s string) string {
	b := []byte(s)
	for i, c := range b {
		if 'a' <= c && c <= 'z' {
			b[i] = c - 'a' + 'A'
		}
	}
	return string(b)
}
