// Package parser builds litua's Node tree from a lexer.Token stream.
//
// Grounded on the teacher's recursive-descent shape (pkgs/parser/parser.go):
// one function per grammar production, an explicit cursor over the token
// slice, and error values that carry the offending token's position. The
// error-accumulation style (pkgs/parser/errors.go's addError helpers) is
// simplified to fail-fast here, since litua's grammar is small and
// unambiguous enough that the first error is always the only error worth
// reporting (§4.1 "Deterministic errors").
package parser

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/litua-lang/litua/node"
	"github.com/litua-lang/litua/token"
)

// Error is a positioned parse error.
type Error struct {
	Message string
	Token   token.Token
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Token.Position(), e.Message)
}

// Parse consumes a full token stream (as produced by lexer.Tokenize, with
// a trailing EOF token) and returns the synthetic document root (§4.2,
// invariant 3).
func Parse(tokens []token.Token) (*node.Node, error) {
	p := &parser{tokens: tokens}
	content, pos, err := p.parseSequence(0)
	if err != nil {
		return nil, err
	}
	if tokens[pos].Type != token.EOF {
		return nil, &Error{Message: fmt.Sprintf("unexpected %s", tokens[pos].Type), Token: tokens[pos]}
	}
	root := node.New("document")
	root.Content = content
	return root, nil
}

type parser struct {
	tokens []token.Token
}

// parseSequence parses a Node* production starting at pos, stopping
// (without consuming) at the first ArgClose, CallClose, or EOF token. It
// returns the parsed values and the position of the stopping token.
func (p *parser) parseSequence(pos int) ([]node.Value, int, error) {
	var out []node.Value
	for {
		tok := p.tokens[pos]
		switch tok.Type {
		case token.Text:
			out = append(out, node.Text(tok.Text))
			pos++
		case token.RawString:
			child := node.New(strings.Repeat("<", tok.Depth))
			child.Content = []node.Value{node.Text(tok.Text)}
			if tok.Leading != "" {
				child.AppendArg(node.MetaWhitespace, node.Text(tok.Leading))
			}
			if tok.Trailing != "" {
				child.AppendArg(node.MetaWhitespaceAfter, node.Text(tok.Trailing))
			}
			out = append(out, node.Of(child))
			pos++
		case token.CallOpen:
			child, next, err := p.parseFunction(pos)
			if err != nil {
				return nil, 0, err
			}
			out = append(out, node.Of(child))
			pos = next
		case token.ArgClose, token.CallClose, token.EOF:
			return out, pos, nil
		default:
			return nil, 0, &Error{Message: fmt.Sprintf("unexpected %s", tok.Type), Token: tok}
		}
	}
}

// parseFunction parses a Function production starting at the CallOpen
// token at pos, returning the built node and the position just past the
// matching CallClose (§4.2).
func (p *parser) parseFunction(pos int) (*node.Node, int, error) {
	pos++ // consume CallOpen
	nameTok := p.tokens[pos]
	if nameTok.Type != token.CallName {
		return nil, 0, &Error{Message: "expected call name", Token: nameTok}
	}
	n := node.New(nameTok.Text)
	pos++

	for p.tokens[pos].Type == token.ArgOpen {
		pos++ // consume ArgOpen
		keyTok := p.tokens[pos]
		if keyTok.Type != token.ArgKey {
			return nil, 0, &Error{Message: "expected argument key", Token: keyTok}
		}
		pos++

		eqTok := p.tokens[pos]
		if eqTok.Type != token.ArgEq {
			return nil, 0, &Error{Message: "expected '='", Token: eqTok}
		}
		pos++

		values, next, err := p.parseSequence(pos)
		if err != nil {
			return nil, 0, err
		}
		pos = next

		closeTok := p.tokens[pos]
		if closeTok.Type != token.ArgClose {
			return nil, 0, &Error{Message: "expected ']'", Token: closeTok}
		}
		pos++

		n.AppendArg(keyTok.Text, values...)
	}

	if p.tokens[pos].Type == token.Whitespace {
		wsTok := p.tokens[pos]
		n.AppendArg(node.MetaWhitespace, node.Text(wsTok.Text))
		pos++

		if p.tokens[pos].Type != token.CallClose {
			values, next, err := p.parseSequence(pos)
			if err != nil {
				return nil, 0, err
			}
			pos = next
			values, trailing := peelTrailingWhitespace(values)
			n.Content = values
			if trailing != "" {
				n.AppendArg(node.MetaWhitespaceAfter, node.Text(trailing))
			}
		}
	}

	closeTok := p.tokens[pos]
	if closeTok.Type != token.CallClose {
		return nil, 0, &Error{Message: "expected '}'", Token: closeTok}
	}
	pos++

	return n, pos, nil
}

// peelTrailingWhitespace splits trailing whitespace off the last text
// value of a content sequence into the =whitespace-after meta-key value
// (§4.2 step 3; §9's Open Question resolution: absence is modeled as "no
// entry," never an empty string standing in for presence).
func peelTrailingWhitespace(values []node.Value) ([]node.Value, string) {
	if len(values) == 0 {
		return values, ""
	}
	last := values[len(values)-1]
	if last.IsNode {
		return values, ""
	}
	body, trailing := splitTrailingWhitespace(last.Text)
	if trailing == "" {
		return values, ""
	}
	if body == "" {
		return values[:len(values)-1], trailing
	}
	out := make([]node.Value, len(values))
	copy(out, values)
	out[len(out)-1] = node.Text(body)
	return out, trailing
}

func splitTrailingWhitespace(s string) (body, trailing string) {
	runes := []rune(s)
	i := len(runes)
	for i > 0 && unicode.IsSpace(runes[i-1]) {
		i--
	}
	return string(runes[:i]), string(runes[i:])
}
