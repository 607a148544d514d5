package formula

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// -----------------------------------------------------------------------
// AST nodes
// -----------------------------------------------------------------------

// Expr is the common interface for all AST nodes.
type Expr interface {
	exprNode()
}

// BinaryExpr represents an arithmetic or comparison operator applied to two operands.
type BinaryExpr struct {
	Op    Operator
	Left  Expr
	Right Expr
}

func (*BinaryExpr) exprNode() {}

// NegExpr represents unary minus.
type NegExpr struct {
	Expr Expr
}

func (*NegExpr) exprNode() {}

// CallExpr represents a builtin function call such as min(a, b).
type CallExpr struct {
	Func string
	Args []Expr
}

func (*CallExpr) exprNode() {}

// NumberLit holds a pre-parsed constant.
type NumberLit struct {
	Value float64
}

func (*NumberLit) exprNode() {}

// VarRef names a variable resolved at evaluation time, e.g. "bonus".
type VarRef struct {
	Name string
}

func (*VarRef) exprNode() {}

// -----------------------------------------------------------------------
// Tokenizer
// -----------------------------------------------------------------------

type tokenKind int

const (
	tokWord   tokenKind = iota // identifier
	tokOp                      // + - * / == != >= <= > <
	tokNumber                  // 42 | 3.14
	tokLParen
	tokRParen
	tokComma
	tokEOF
)

type token struct {
	kind tokenKind
	val  string
	pos  int
}

func tokenize(expr string) ([]token, error) {
	var tokens []token
	i := 0
	for i < len(expr) {
		ch := expr[i]
		if unicode.IsSpace(rune(ch)) {
			i++
			continue
		}
		switch ch {
		case '(':
			tokens = append(tokens, token{tokLParen, "(", i})
			i++
			continue
		case ')':
			tokens = append(tokens, token{tokRParen, ")", i})
			i++
			continue
		case ',':
			tokens = append(tokens, token{tokComma, ",", i})
			i++
			continue
		case '+', '-', '*', '/':
			tokens = append(tokens, token{tokOp, string(ch), i})
			i++
			continue
		case '=', '!', '<', '>':
			if i+1 < len(expr) && expr[i+1] == '=' {
				tokens = append(tokens, token{tokOp, expr[i : i+2], i})
				i += 2
				continue
			}
			if ch == '=' || ch == '!' {
				return nil, fmt.Errorf("unexpected character %q at position %d", ch, i)
			}
			tokens = append(tokens, token{tokOp, string(ch), i})
			i++
			continue
		}
		// Numbers. A leading '-' is always an operator; the parser handles negation.
		if unicode.IsDigit(rune(ch)) || (ch == '.' && i+1 < len(expr) && unicode.IsDigit(rune(expr[i+1]))) {
			j := i
			for j < len(expr) && (unicode.IsDigit(rune(expr[j])) || expr[j] == '.') {
				j++
			}
			tokens = append(tokens, token{tokNumber, expr[i:j], i})
			i = j
			continue
		}
		if unicode.IsLetter(rune(ch)) || ch == '_' {
			j := i
			for j < len(expr) && (unicode.IsLetter(rune(expr[j])) || unicode.IsDigit(rune(expr[j])) || expr[j] == '_') {
				j++
			}
			tokens = append(tokens, token{tokWord, expr[i:j], i})
			i = j
			continue
		}
		return nil, fmt.Errorf("unexpected character %q at position %d", ch, i)
	}
	tokens = append(tokens, token{tokEOF, "", len(expr)})
	return tokens, nil
}

// -----------------------------------------------------------------------
// Recursive-descent parser
// -----------------------------------------------------------------------

type parser struct {
	tokens []token
	pos    int
}

func (p *parser) peek() token {
	return p.tokens[p.pos]
}

func (p *parser) consume() token {
	t := p.tokens[p.pos]
	p.pos++
	return t
}

func (p *parser) expect(kind tokenKind, val string) error {
	t := p.peek()
	if t.kind != kind {
		return fmt.Errorf("expected %q but got %q at position %d", val, t.val, t.pos)
	}
	p.consume()
	return nil
}

func (p *parser) peekOp(ops ...string) (string, bool) {
	t := p.peek()
	if t.kind != tokOp {
		return "", false
	}
	for _, op := range ops {
		if t.val == op {
			return op, true
		}
	}
	return "", false
}

// Parse parses an expression string into an AST.
func Parse(expr string) (Expr, error) {
	if strings.TrimSpace(expr) == "" {
		return nil, fmt.Errorf("empty expression")
	}
	tokens, err := tokenize(expr)
	if err != nil {
		return nil, err
	}
	p := &parser{tokens: tokens}
	node, err := p.parseComparison()
	if err != nil {
		return nil, err
	}
	if t := p.peek(); t.kind != tokEOF {
		return nil, fmt.Errorf("unexpected token %q after expression at position %d", t.val, t.pos)
	}
	return node, nil
}

// comparison = sum [ ( "==" | "!=" | ">" | ">=" | "<" | "<=" ) sum ]
func (p *parser) parseComparison() (Expr, error) {
	left, err := p.parseSum()
	if err != nil {
		return nil, err
	}
	if op, ok := p.peekOp("==", "!=", ">", ">=", "<", "<="); ok {
		p.consume()
		right, err := p.parseSum()
		if err != nil {
			return nil, err
		}
		return &BinaryExpr{Op: Operator(op), Left: left, Right: right}, nil
	}
	return left, nil
}

// sum = product ( ( "+" | "-" ) product )*
func (p *parser) parseSum() (Expr, error) {
	left, err := p.parseProduct()
	if err != nil {
		return nil, err
	}
	for {
		op, ok := p.peekOp("+", "-")
		if !ok {
			return left, nil
		}
		p.consume()
		right, err := p.parseProduct()
		if err != nil {
			return nil, err
		}
		left = &BinaryExpr{Op: Operator(op), Left: left, Right: right}
	}
}

// product = unary ( ( "*" | "/" ) unary )*
func (p *parser) parseProduct() (Expr, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		op, ok := p.peekOp("*", "/")
		if !ok {
			return left, nil
		}
		p.consume()
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = &BinaryExpr{Op: Operator(op), Left: left, Right: right}
	}
}

// unary = "-" unary | primary
func (p *parser) parseUnary() (Expr, error) {
	if _, ok := p.peekOp("-"); ok {
		p.consume()
		inner, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &NegExpr{Expr: inner}, nil
	}
	return p.parsePrimary()
}

// primary = number | ident | ident "(" args ")" | "(" comparison ")"
func (p *parser) parsePrimary() (Expr, error) {
	t := p.peek()
	switch t.kind {
	case tokNumber:
		p.consume()
		f, err := strconv.ParseFloat(t.val, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid number %q at position %d", t.val, t.pos)
		}
		return &NumberLit{Value: f}, nil
	case tokWord:
		p.consume()
		if p.peek().kind == tokLParen {
			return p.parseCall(t)
		}
		return &VarRef{Name: t.val}, nil
	case tokLParen:
		p.consume()
		inner, err := p.parseComparison()
		if err != nil {
			return nil, err
		}
		if err := p.expect(tokRParen, ")"); err != nil {
			return nil, err
		}
		return inner, nil
	default:
		return nil, fmt.Errorf("expected operand, got %q at position %d", t.val, t.pos)
	}
}

func (p *parser) parseCall(name token) (Expr, error) {
	fn := strings.ToLower(name.val)
	arity, ok := builtins[fn]
	if !ok {
		return nil, fmt.Errorf("unknown function %q at position %d", name.val, name.pos)
	}
	p.consume() // "("
	var args []Expr
	if p.peek().kind != tokRParen {
		for {
			arg, err := p.parseComparison()
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
			if p.peek().kind != tokComma {
				break
			}
			p.consume()
		}
	}
	if err := p.expect(tokRParen, ")"); err != nil {
		return nil, err
	}
	if !arity.accepts(len(args)) {
		return nil, fmt.Errorf("%s: %s, got %d", fn, arity, len(args))
	}
	return &CallExpr{Func: fn, Args: args}, nil
}
