// Package parser reads restricted-alphabet expression text back into expr
// trees. It accepts the operator subset the encoders emit: numeric literals,
// parentheses, '.', '^', calls and '...' argument unpacking. Precedence
// follows the host language: '.' binds tighter than '^', calls bind tightest.
package parser

import (
	"fmt"

	"phpfk/encoder-go/pkg/expr"
)

// ParseError carries a message plus the byte offset it refers to.
type ParseError struct {
	Message string
	Offset  int
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s at offset %d", e.Message, e.Offset)
}

// Parse returns the tree for src. Blank input yields expr.Empty.
func Parse(src string) (expr.Node, error) {
	tokens, err := lex(src)
	if err != nil {
		return nil, err
	}
	p := &parser{tokens: tokens}
	if p.peek().kind == tokenEOF {
		return expr.Empty{}, nil
	}
	node, err := p.parseXor()
	if err != nil {
		return nil, err
	}
	if tok := p.peek(); tok.kind != tokenEOF {
		return nil, p.unexpected(tok, "end of input")
	}
	return node, nil
}

type parser struct {
	tokens []token
	pos    int
}

func (p *parser) peek() token { return p.tokens[p.pos] }

func (p *parser) next() token {
	tok := p.tokens[p.pos]
	if tok.kind != tokenEOF {
		p.pos++
	}
	return tok
}

func (p *parser) expect(kind tokenKind) (token, error) {
	tok := p.next()
	if tok.kind != kind {
		return tok, p.unexpected(tok, kind.String())
	}
	return tok, nil
}

func (p *parser) unexpected(tok token, want string) error {
	return &ParseError{
		Message: fmt.Sprintf("parser: syntax error: expected %s, found %s", want, tok.kind),
		Offset:  tok.offset,
	}
}

func (p *parser) parseXor() (expr.Node, error) {
	first, err := p.parseConcat()
	if err != nil {
		return nil, err
	}
	operands := []expr.Node{first}
	for p.peek().kind == tokenCaret {
		p.next()
		operand, err := p.parseConcat()
		if err != nil {
			return nil, err
		}
		operands = append(operands, operand)
	}
	if len(operands) == 1 {
		return first, nil
	}
	return expr.Xor{Operands: operands}, nil
}

func (p *parser) parseConcat() (expr.Node, error) {
	first, err := p.parsePostfix()
	if err != nil {
		return nil, err
	}
	parts := []expr.Node{first}
	for p.peek().kind == tokenDot {
		p.next()
		part, err := p.parsePostfix()
		if err != nil {
			return nil, err
		}
		parts = append(parts, part)
	}
	if len(parts) == 1 {
		return first, nil
	}
	return expr.Concat{Parts: parts}, nil
}

func (p *parser) parsePostfix() (expr.Node, error) {
	node, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for p.peek().kind == tokenLParen {
		p.next()
		args, err := p.parseArgs()
		if err != nil {
			return nil, err
		}
		node = expr.Call{Callee: node, Args: args}
	}
	return node, nil
}

func (p *parser) parseArgs() ([]expr.Node, error) {
	var args []expr.Node
	if p.peek().kind == tokenRParen {
		p.next()
		return args, nil
	}
	for {
		spread := false
		if p.peek().kind == tokenEllipsis {
			p.next()
			spread = true
		}
		arg, err := p.parseXor()
		if err != nil {
			return nil, err
		}
		if spread {
			arg = expr.Spread{X: arg}
		}
		args = append(args, arg)
		tok := p.next()
		switch tok.kind {
		case tokenRParen:
			return args, nil
		case tokenComma:
		default:
			return nil, p.unexpected(tok, "',' or ')'")
		}
	}
}

func (p *parser) parsePrimary() (expr.Node, error) {
	tok := p.next()
	switch tok.kind {
	case tokenNumber:
		return expr.Lit{Text: tok.text}, nil
	case tokenLParen:
		inner, err := p.parseXor()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(tokenRParen); err != nil {
			return nil, err
		}
		return inner, nil
	default:
		return nil, p.unexpected(tok, "number or '('")
	}
}
