package formula

import (
	"strconv"
	"strings"

	"github.com/rulego/indicators/aggregator"
)

// NodeType identifies the kind of expression node.
type NodeType int

const (
	NodeNumber NodeType = iota
	NodeField
	NodeAggregate
	NodeBinary
)

// Node is an immutable expression tree node.
type Node struct {
	Type NodeType
	// Pos is the offset of the token that produced the node.
	Pos int
	// Value holds the literal of a NodeNumber.
	Value float64
	// Name holds the field reference of a NodeField or the function of a NodeAggregate.
	Name string
	// Op holds the operator of a NodeBinary.
	Op          string
	Left, Right *Node
	// Args holds the single argument of a NodeAggregate.
	Args []*Node
}

// String renders the tree in a canonical, fully parenthesised form.
func (n *Node) String() string {
	if n == nil {
		return ""
	}
	switch n.Type {
	case NodeNumber:
		return strconv.FormatFloat(n.Value, 'f', -1, 64)
	case NodeField:
		return n.Name
	case NodeAggregate:
		args := make([]string, len(n.Args))
		for i, a := range n.Args {
			args[i] = a.String()
		}
		return n.Name + "(" + strings.Join(args, ", ") + ")"
	case NodeBinary:
		return "(" + n.Left.String() + " " + n.Op + " " + n.Right.String() + ")"
	}
	return ""
}

// Fields returns the distinct field references in the tree, in source order.
func (n *Node) Fields() []string {
	var out []string
	seen := make(map[string]bool)
	n.walk(func(node *Node) {
		if node.Type == NodeField && !seen[node.Name] {
			seen[node.Name] = true
			out = append(out, node.Name)
		}
	})
	return out
}

func (n *Node) walk(fn func(*Node)) {
	if n == nil {
		return
	}
	fn(n)
	n.Left.walk(fn)
	n.Right.walk(fn)
	for _, a := range n.Args {
		a.walk(fn)
	}
}

func (n *Node) hasField() bool {
	found := false
	n.walk(func(node *Node) {
		if node.Type == NodeField {
			found = true
		}
	})
	return found
}

// Parse builds an expression tree from tokens.
// End-of-input errors point just past the last token.
func Parse(tokens []Token) (*Node, error) {
	end := 0
	if len(tokens) > 0 {
		end = tokens[len(tokens)-1].End()
	}
	return parse(tokens, end)
}

func parse(tokens []Token, end int) (*Node, error) {
	if len(tokens) == 0 {
		return nil, newError(StageParse, KindEmptyFormula, 0, "formula is empty")
	}
	p := &parser{tokens: tokens, end: end}
	node, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if tok, ok := p.peek(); ok {
		if tok.Type == TokenRightParen {
			return nil, p.errorAt(tok, KindUnbalancedParen, "unmatched ')'")
		}
		err := p.errorAt(tok, KindUnexpectedToken, "unexpected %s", tok.Type)
		err.Expected = []string{"operator"}
		return nil, err
	}
	return node, nil
}

type parser struct {
	tokens []Token
	pos    int
	end    int
}

func (p *parser) peek() (Token, bool) {
	if p.pos >= len(p.tokens) {
		return Token{}, false
	}
	return p.tokens[p.pos], true
}

func (p *parser) next() Token {
	tok := p.tokens[p.pos]
	p.pos++
	return tok
}

func (p *parser) peekOperator(ops ...string) bool {
	tok, ok := p.peek()
	if !ok || tok.Type != TokenOperator {
		return false
	}
	for _, op := range ops {
		if tok.Value == op {
			return true
		}
	}
	return false
}

func (p *parser) errorAt(tok Token, kind ErrorKind, format string, args ...any) *Error {
	err := newError(StageParse, kind, tok.Pos, format, args...)
	err.Token = tok.Value
	return err
}

func (p *parser) endOfInput(format string, args ...any) *Error {
	return newError(StageParse, KindMissingToken, p.end, format, args...)
}

// parseExpression parses additive expressions
func (p *parser) parseExpression() (*Node, error) {
	left, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	for p.peekOperator("+", "-") {
		op := p.next()
		right, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		left = &Node{Type: NodeBinary, Pos: op.Pos, Op: op.Value, Left: left, Right: right}
	}
	return left, nil
}

// parseTerm parses multiplicative expressions
func (p *parser) parseTerm() (*Node, error) {
	left, err := p.parseFactor()
	if err != nil {
		return nil, err
	}
	for p.peekOperator("*", "/") {
		op := p.next()
		right, err := p.parseFactor()
		if err != nil {
			return nil, err
		}
		left = &Node{Type: NodeBinary, Pos: op.Pos, Op: op.Value, Left: left, Right: right}
	}
	return left, nil
}

var operandExpected = []string{"number", "field", "function", "'('"}

// parseFactor parses literals, field references, function calls and groups
func (p *parser) parseFactor() (*Node, error) {
	tok, ok := p.peek()
	if !ok {
		err := p.endOfInput("unexpected end of formula")
		err.Expected = operandExpected
		return nil, err
	}

	switch tok.Type {
	case TokenNumber:
		p.next()
		v, err := strconv.ParseFloat(tok.Value, 64)
		if err != nil {
			return nil, p.errorAt(tok, KindUnexpectedToken, "invalid number '%s'", tok.Value)
		}
		return &Node{Type: NodeNumber, Pos: tok.Pos, Value: v}, nil

	case TokenField:
		p.next()
		if next, ok := p.peek(); ok && next.Type == TokenLeftParen {
			if _, known := aggregator.Lookup(tok.Value); known {
				return nil, p.errorAt(tok, KindUnexpectedToken, "function %s must be followed immediately by '('", strings.ToUpper(tok.Value))
			}
			err := p.errorAt(tok, KindUnknownFunction, "unknown function %s", strings.ToUpper(tok.Value))
			err.Expected = aggregator.Names()
			return nil, err
		}
		return &Node{Type: NodeField, Pos: tok.Pos, Name: tok.Value}, nil

	case TokenFunction:
		return p.parseFunctionCall()

	case TokenLeftParen:
		open := p.next()
		if next, ok := p.peek(); ok && next.Type == TokenRightParen {
			err := p.errorAt(next, KindUnexpectedToken, "empty parentheses")
			err.Expected = operandExpected
			return nil, err
		}
		inner, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if err := p.closeParen(open); err != nil {
			return nil, err
		}
		return inner, nil

	default:
		err := p.errorAt(tok, KindUnexpectedToken, "unexpected %s", tok.Type)
		if tok.Type == TokenOperator {
			err.Message = "unexpected operator '" + tok.Value + "'"
		}
		err.Expected = operandExpected
		return nil, err
	}
}

// parseFunctionCall parses FUNC '(' expr ')' with exactly one argument
func (p *parser) parseFunctionCall() (*Node, error) {
	fn := p.next()
	open, ok := p.peek()
	if !ok || open.Type != TokenLeftParen {
		err := p.errorAt(fn, KindMissingToken, "expected '(' after %s", fn.Value)
		err.Expected = []string{"'('"}
		return nil, err
	}
	p.next()

	if next, ok := p.peek(); ok && next.Type == TokenRightParen {
		return nil, p.errorAt(fn, KindArity, "%s expects exactly one argument, got none", fn.Value)
	}
	arg, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if next, ok := p.peek(); ok && next.Type == TokenComma {
		return nil, p.errorAt(fn, KindArity, "%s expects exactly one argument, got more", fn.Value)
	}
	if err := p.closeParen(open); err != nil {
		return nil, err
	}
	return &Node{Type: NodeAggregate, Pos: fn.Pos, Name: fn.Value, Args: []*Node{arg}}, nil
}

func (p *parser) closeParen(open Token) error {
	tok, ok := p.peek()
	if !ok {
		err := newError(StageParse, KindUnbalancedParen, open.Pos, "missing ')' to close '('")
		err.Token = open.Value
		err.Expected = []string{"')'"}
		return err
	}
	if tok.Type != TokenRightParen {
		err := p.errorAt(tok, KindUnexpectedToken, "unexpected %s", tok.Type)
		err.Expected = []string{"')'"}
		return err
	}
	p.next()
	return nil
}
