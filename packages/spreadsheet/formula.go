package spreadsheet

import (
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// Normalizer converts a variable to its canonical form
type Normalizer func(name string) string

// Validator adds restrictions on top of the variable pattern
type Validator func(name string) bool

// IdentityNormalizer leaves variables unchanged
func IdentityNormalizer(name string) string {
	return name
}

// AcceptAll is a Validator that accepts every name
func AcceptAll(string) bool {
	return true
}

// FormulaContext provides the normalizer and validator applied to every
// variable while a formula is constructed. nil fields fall back to
// IdentityNormalizer and AcceptAll.
type FormulaContext struct {
	Normalize Normalizer
	Validate  Validator
}

// FormulaKey is the normalized text of a formula. two formulas with the
// same tokens (numbers compared by value) have the same key, so it can be
// used as a map key.
type FormulaKey string

// Formula is an immutable, syntactically valid infix expression over
// numbers, variables, + - * / and parentheses
type Formula struct {
	tokens []Token
	key    FormulaKey
}

// NewFormula parses text with the identity normalizer and a validator that
// accepts everything
func NewFormula(text string) (*Formula, error) {
	return NewFormulaWithContext(text, nil)
}

// NewFormulaWithContext parses text, normalizing and validating every
// variable with the given context. returns a *FormulaFormatError if the
// text is not a valid formula.
func NewFormulaWithContext(text string, context *FormulaContext) (*Formula, error) {
	normalize, validate := Normalizer(IdentityNormalizer), Validator(AcceptAll)
	if context != nil {
		if context.Normalize != nil {
			normalize = context.Normalize
		}
		if context.Validate != nil {
			validate = context.Validate
		}
	}

	tokens, err := NewLexer(text).Tokenize()
	if err != nil {
		return nil, err
	}

	for i := range tokens {
		if tokens[i].Type != TokenVariable {
			continue
		}
		normalized := normalize(tokens[i].Value)
		if !IsVariable(normalized) {
			return nil, newFormatError(tokens[i].Pos, normalized,
				"normalized variable is not a legal variable: "+normalized)
		}
		if !validate(normalized) {
			return nil, newFormatError(tokens[i].Pos, normalized, "invalid variable: "+normalized)
		}
		tokens[i].Value = normalized
	}

	if err := checkSyntax(tokens); err != nil {
		return nil, err
	}

	f := &Formula{tokens: tokens}
	f.key = f.buildKey()
	return f, nil
}

// checkSyntax validates the token stream with a single forward scan. it
// tracks the running parenthesis counts and the previous token.
func checkSyntax(tokens []Token) error {
	if len(tokens) == 0 {
		return newFormatError(-1, "", "empty formula")
	}

	first := tokens[0]
	if !first.isOperand() && first.Type != TokenLeftParen {
		return newFormatError(first.Pos, first.Value, "formula must start with a number, variable or '('")
	}

	open, closed := 0, 0
	for i, tok := range tokens {
		switch tok.Type {
		case TokenLeftParen:
			open++
		case TokenRightParen:
			closed++
			if closed > open {
				return newFormatError(tok.Pos, tok.Value, "unbalanced parentheses: too many closing parentheses")
			}
		}

		if i == 0 {
			continue
		}
		prev := tokens[i-1]
		switch prev.Type {
		case TokenLeftParen, TokenOperator:
			if !tok.isOperand() && tok.Type != TokenLeftParen {
				return newFormatError(tok.Pos, tok.Value,
					"expected a number, variable or '(' after '"+prev.Value+"'")
			}
		default: // number, variable, right paren
			if tok.Type != TokenOperator && tok.Type != TokenRightParen {
				return newFormatError(tok.Pos, tok.Value,
					"expected an operator or ')' after '"+prev.Value+"'")
			}
		}
	}

	last := tokens[len(tokens)-1]
	if !last.isOperand() && last.Type != TokenRightParen {
		return newFormatError(last.Pos, last.Value, "formula must end with a number, variable or ')'")
	}
	if open != closed {
		return newFormatError(last.Pos, last.Value, "unbalanced parentheses: missing closing parenthesis")
	}
	return nil
}

// buildKey writes tokens without whitespace, numbers in their shortest
// float64 form so "2.0" and "2.00" share a key
func (f *Formula) buildKey() FormulaKey {
	var b strings.Builder
	for _, tok := range f.tokens {
		if tok.Type == TokenNumber {
			b.WriteString(strconv.FormatFloat(tok.Number, 'g', -1, 64))
			continue
		}
		b.WriteString(tok.Value)
	}
	return FormulaKey(b.String())
}

// Tokens returns a copy of the formula's tokens
func (f *Formula) Tokens() []Token {
	out := make([]Token, len(f.tokens))
	copy(out, f.tokens)
	return out
}

// Variables returns the normalized variables in order of first appearance,
// without duplicates
func (f *Formula) Variables() []string {
	seen := make(map[string]struct{})
	var result []string
	for _, tok := range f.tokens {
		if tok.Type != TokenVariable {
			continue
		}
		if _, exists := seen[tok.Value]; exists {
			continue
		}
		seen[tok.Value] = struct{}{}
		result = append(result, tok.Value)
	}
	return result
}

// String returns the formula with normalized variables and no whitespace.
// passing it back to NewFormula yields an equal formula.
func (f *Formula) String() string {
	var b strings.Builder
	for _, tok := range f.tokens {
		b.WriteString(tok.Value)
	}
	return b.String()
}

// Key returns the normalized key used for equality and hashing
func (f *Formula) Key() FormulaKey {
	return f.key
}

// Equals reports whether both formulas consist of the same tokens in the
// same order. numbers are compared by value, variables by normalized name.
func (f *Formula) Equals(other *Formula) bool {
	if f == nil || other == nil {
		return f == other
	}
	return f.key == other.key
}

// Hash returns a hash consistent with Equals
func (f *Formula) Hash() uint64 {
	return xxhash.Sum64String(string(f.key))
}
