package formula

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/rulego/indicators/aggregator"
)

// TokenType represents token type
type TokenType int

const (
	// TokenFunction aggregation function name, upper-cased
	TokenFunction TokenType = iota
	// TokenField field reference, possibly containing spaces
	TokenField
	// TokenNumber numeric literal, optionally negative
	TokenNumber
	// TokenOperator one of + - * /
	TokenOperator
	// TokenLeftParen left parenthesis token
	TokenLeftParen
	// TokenRightParen right parenthesis token
	TokenRightParen
	// TokenComma comma token
	TokenComma
)

func (t TokenType) String() string {
	switch t {
	case TokenFunction:
		return "function"
	case TokenField:
		return "field"
	case TokenNumber:
		return "number"
	case TokenOperator:
		return "operator"
	case TokenLeftParen:
		return "'('"
	case TokenRightParen:
		return "')'"
	case TokenComma:
		return "','"
	default:
		return "unknown"
	}
}

// Token is a lexical unit with its byte offset in the source.
type Token struct {
	Type  TokenType
	Value string
	Pos   int
}

// End returns the offset just past the token text.
func (t Token) End() int {
	return t.Pos + len(t.Value)
}

var (
	numberPattern = regexp.MustCompile(`^\d+(\.\d+)?$`)
	digitsAndDots = regexp.MustCompile(`^[\d.]+$`)
	// adjacentNumbers matches numeric runs separated only by whitespace.
	adjacentNumbers = regexp.MustCompile(`^[\d.]+(\s+[\d.]+)+$`)
)

func isDelimiter(c byte) bool {
	switch c {
	case '(', ')', ',', '+', '-', '*', '/':
		return true
	}
	return false
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

// Tokenize splits a formula into tokens.
// An empty formula yields no tokens; Parse reports it.
func Tokenize(src string) ([]Token, error) {
	var tokens []Token
	i := 0
	for i < len(src) {
		r, size := utf8.DecodeRuneInString(src[i:])
		if unicode.IsSpace(r) {
			i += size
			continue
		}

		c := src[i]
		switch c {
		case '(':
			tokens = append(tokens, Token{Type: TokenLeftParen, Value: "(", Pos: i})
			i++
			continue
		case ')':
			tokens = append(tokens, Token{Type: TokenRightParen, Value: ")", Pos: i})
			i++
			continue
		case ',':
			tokens = append(tokens, Token{Type: TokenComma, Value: ",", Pos: i})
			i++
			continue
		case '-':
			if operandPosition(tokens) && i+1 < len(src) && isDigit(src[i+1]) {
				end := runEnd(src, i+1)
				if lit := strings.TrimSpace(src[i+1 : end]); numberPattern.MatchString(lit) {
					tokens = append(tokens, Token{Type: TokenNumber, Value: "-" + lit, Pos: i})
					i = end
					continue
				}
			}
			fallthrough
		case '+', '*', '/':
			tokens = append(tokens, Token{Type: TokenOperator, Value: string(c), Pos: i})
			i++
			continue
		}

		end := runEnd(src, i)
		raw := src[i:end]
		text := strings.TrimRightFunc(raw, unicode.IsSpace)
		tok, err := classifyRun(text, i, len(text) == len(raw) && end < len(src) && src[end] == '(')
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, tok)
		i = end
	}
	return tokens, nil
}

// runEnd returns the offset of the next delimiter at or after start.
func runEnd(src string, start int) int {
	for j := start; j < len(src); j++ {
		if isDelimiter(src[j]) {
			return j
		}
	}
	return len(src)
}

// operandPosition reports whether the next token starts an operand.
func operandPosition(tokens []Token) bool {
	if len(tokens) == 0 {
		return true
	}
	switch tokens[len(tokens)-1].Type {
	case TokenOperator, TokenLeftParen, TokenComma:
		return true
	}
	return false
}

func classifyRun(text string, pos int, callFollows bool) (Token, error) {
	if callFollows {
		if _, ok := aggregator.Lookup(text); ok {
			return Token{Type: TokenFunction, Value: strings.ToUpper(text), Pos: pos}, nil
		}
	}
	if numberPattern.MatchString(text) {
		return Token{Type: TokenNumber, Value: text, Pos: pos}, nil
	}
	if digitsAndDots.MatchString(text) {
		err := newError(StageTokenize, KindMalformedNumber, pos, "malformed number '%s'", text)
		err.Token = text
		return Token{}, err
	}
	if adjacentNumbers.MatchString(text) {
		cut := strings.IndexFunc(text, unicode.IsSpace)
		next := cut + strings.IndexFunc(text[cut:], func(r rune) bool { return !unicode.IsSpace(r) })
		end := next + strings.IndexFunc(text[next:], unicode.IsSpace)
		if end < next {
			end = len(text)
		}
		err := newError(StageTokenize, KindUnexpectedToken, pos+next,
			"missing operator between '%s' and '%s'", text[:cut], text[next:end])
		err.Token = text[next:end]
		err.Expected = []string{"operator"}
		return Token{}, err
	}
	return Token{Type: TokenField, Value: text, Pos: pos}, nil
}
