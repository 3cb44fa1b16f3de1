package spreadsheet

import (
	"strconv"
)

// TokenType represents different types of tokens in formulas
type TokenType int

const (
	TokenNumber TokenType = iota
	TokenVariable
	TokenOperator
	TokenLeftParen
	TokenRightParen
)

func (t TokenType) String() string {
	switch t {
	case TokenNumber:
		return "number"
	case TokenVariable:
		return "variable"
	case TokenOperator:
		return "operator"
	case TokenLeftParen:
		return "left paren"
	case TokenRightParen:
		return "right paren"
	}
	return "unknown"
}

// character classification constants. slightly easier to read.
const (
	charNull       = 0
	charTab        = '\t'
	charNewline    = '\n'
	charReturn     = '\r'
	charVTab       = '\v'
	charFormFeed   = '\f'
	charSpace      = ' '
	charLParen     = '('
	charRParen     = ')'
	charAsterisk   = '*'
	charPlus       = '+'
	charMinus      = '-'
	charPeriod     = '.'
	charSlash      = '/'
	charUnderscore = '_'
)

// Token represents a lexical token with position information. Number is
// only meaningful for TokenNumber.
type Token struct {
	Type   TokenType
	Value  string
	Number float64
	Pos    int // rune position in input
}

func (t Token) isOperand() bool {
	return t.Type == TokenNumber || t.Type == TokenVariable
}

// Lexer tokenizes infix arithmetic expressions
type Lexer struct {
	input  string
	runes  []rune // UTF-8 aware representation
	pos    int
	tokens []Token
}

// NewLexer creates a new lexer for the given formula text
func NewLexer(input string) *Lexer {
	return &Lexer{
		input:  input,
		runes:  []rune(input),
		pos:    0,
		tokens: []Token{},
	}
}

// Tokenize tokenizes the entire input. Whitespace is dropped; any character
// sequence that is not a number, variable, operator or parenthesis fails
// with a *FormulaFormatError.
func (l *Lexer) Tokenize() ([]Token, error) {
	for {
		l.skipWhitespace()
		if l.pos >= len(l.runes) {
			break
		}
		tok, err := l.nextToken()
		if err != nil {
			return nil, err
		}
		l.tokens = append(l.tokens, tok)
	}
	return l.tokens, nil
}

// nextToken returns the next token from the input. the caller has already
// skipped whitespace and checked for end of input.
func (l *Lexer) nextToken() (Token, error) {
	startPos := l.pos
	ch := l.current()

	// check for numbers
	if isDigit(ch) || (ch == charPeriod && isDigit(l.peek(1))) {
		return l.scanNumber()
	}

	switch ch {
	case charLParen:
		l.pos++
		return Token{Type: TokenLeftParen, Value: "(", Pos: startPos}, nil
	case charRParen:
		l.pos++
		return Token{Type: TokenRightParen, Value: ")", Pos: startPos}, nil
	case charPlus, charMinus, charAsterisk, charSlash:
		// a leading sign is always an operator, never part of a number
		l.pos++
		return Token{Type: TokenOperator, Value: string(ch), Pos: startPos}, nil
	}

	if isAlpha(ch) || ch == charUnderscore {
		return l.scanVariable(), nil
	}

	// unknown character
	l.pos++
	return Token{}, newFormatError(startPos, string(ch), "unexpected character: "+string(ch))
}

// helper methods for character navigation and classification

// substring returns a substring of the original input based on rune positions
func (l *Lexer) substring(start, end int) string {
	if start < 0 || end > len(l.runes) || start > end {
		return ""
	}
	return string(l.runes[start:end])
}

func (l *Lexer) current() rune {
	if l.pos >= len(l.runes) {
		return charNull
	}
	return l.runes[l.pos]
}

func (l *Lexer) peek(offset int) rune {
	pos := l.pos + offset
	if pos >= len(l.runes) || pos < 0 {
		return charNull
	}
	return l.runes[pos]
}

func (l *Lexer) skipWhitespace() {
	for l.pos < len(l.runes) {
		switch l.current() {
		case charSpace, charTab, charNewline, charReturn, charVTab, charFormFeed:
			l.pos++
		default:
			return
		}
	}
}

func isDigit(ch rune) bool {
	return ch >= '0' && ch <= '9'
}

func isAlpha(ch rune) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

// scanNumber scans a number token including decimals and scientific
// notation. "5." and ".5" are both numbers.
func (l *Lexer) scanNumber() (Token, error) {
	startPos := l.pos

	// scan integer part
	for isDigit(l.current()) {
		l.pos++
	}

	// check for decimal part
	if l.current() == charPeriod {
		l.pos++ // consume '.'
		for isDigit(l.current()) {
			l.pos++
		}
	}

	// check for scientific notation (e or E)
	if l.current() == 'e' || l.current() == 'E' {
		savedPos := l.pos
		l.pos++ // consume 'e' or 'E'

		// optional + or - sign
		if l.current() == charPlus || l.current() == charMinus {
			l.pos++
		}

		// must have at least one digit after e/E
		if !isDigit(l.current()) {
			// not scientific notation, restore position. the e is lexed as
			// the start of a variable
			l.pos = savedPos
		} else {
			for isDigit(l.current()) {
				l.pos++
			}
		}
	}

	value := l.substring(startPos, l.pos)
	number, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return Token{}, newFormatError(startPos, value, "number out of range: "+value)
	}
	return Token{Type: TokenNumber, Value: value, Number: number, Pos: startPos}, nil
}

// scanVariable scans a letter or underscore followed by letters, digits or
// underscores
func (l *Lexer) scanVariable() Token {
	startPos := l.pos
	for isAlpha(l.current()) || isDigit(l.current()) || l.current() == charUnderscore {
		l.pos++
	}
	return Token{Type: TokenVariable, Value: l.substring(startPos, l.pos), Pos: startPos}
}

// IsVariable reports whether s is a legal variable, i.e. it matches
// [A-Za-z_][A-Za-z_0-9]*
func IsVariable(s string) bool {
	if s == "" {
		return false
	}
	for i, ch := range s {
		switch {
		case isAlpha(ch) || ch == charUnderscore:
		case i > 0 && isDigit(ch):
		default:
			return false
		}
	}
	return true
}
