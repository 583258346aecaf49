package parser

import "fmt"

type tokenKind int

const (
	tokenEOF tokenKind = iota
	tokenNumber
	tokenLParen
	tokenRParen
	tokenDot
	tokenCaret
	tokenEllipsis
	tokenComma
)

func (k tokenKind) String() string {
	switch k {
	case tokenEOF:
		return "end of input"
	case tokenNumber:
		return "number"
	case tokenLParen:
		return "'('"
	case tokenRParen:
		return "')'"
	case tokenDot:
		return "'.'"
	case tokenCaret:
		return "'^'"
	case tokenEllipsis:
		return "'...'"
	case tokenComma:
		return "','"
	default:
		return fmt.Sprintf("token_%d", int(k))
	}
}

type token struct {
	kind   tokenKind
	text   string
	offset int
}

// lex splits src into tokens. Numbers follow the host lexer: a dot directly
// attached to digits belongs to the number, so "9.9" and "9." are floats.
func lex(src string) ([]token, error) {
	var tokens []token
	i := 0
	for i < len(src) {
		c := src[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			i++
		case c == '(':
			tokens = append(tokens, token{kind: tokenLParen, text: "(", offset: i})
			i++
		case c == ')':
			tokens = append(tokens, token{kind: tokenRParen, text: ")", offset: i})
			i++
		case c == '^':
			tokens = append(tokens, token{kind: tokenCaret, text: "^", offset: i})
			i++
		case c == ',':
			tokens = append(tokens, token{kind: tokenComma, text: ",", offset: i})
			i++
		case c == '.':
			switch {
			case i+2 < len(src) && src[i+1] == '.' && src[i+2] == '.':
				tokens = append(tokens, token{kind: tokenEllipsis, text: "...", offset: i})
				i += 3
			case i+1 < len(src) && isDigit(src[i+1]):
				end := scanDigits(src, i+1)
				tokens = append(tokens, token{kind: tokenNumber, text: src[i:end], offset: i})
				i = end
			default:
				tokens = append(tokens, token{kind: tokenDot, text: ".", offset: i})
				i++
			}
		case isDigit(c):
			end := scanDigits(src, i)
			if end < len(src) && src[end] == '.' && !(end+1 < len(src) && src[end+1] == '.') {
				end = scanDigits(src, end+1)
			}
			tokens = append(tokens, token{kind: tokenNumber, text: src[i:end], offset: i})
			i = end
		default:
			return nil, &ParseError{Message: fmt.Sprintf("parser: unexpected character %q", c), Offset: i}
		}
	}
	tokens = append(tokens, token{kind: tokenEOF, offset: len(src)})
	return tokens, nil
}

func scanDigits(src string, i int) int {
	for i < len(src) && isDigit(src[i]) {
		i++
	}
	return i
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }
