// Package lexer scans litua input syntax into a token stream.
//
// The scanning technique — a cursor over pre-decoded runes with explicit
// line/column tracking and a single recursive-descent
// pass rather than incremental re-lexing — is grounded on the teacher's
// hand-written lexer (pkgs/lexer/lexer.go in the devcmd project this
// module grew out of). litua's grammar is context-dependent in a way
// devcmd's is not (raw-string delimiters of variable depth, argument-value
// zones that terminate on ']' instead of '}'), so the mode system differs,
// but the cursor/position-tracking primitives are the same shape.
package lexer

import (
	"fmt"
	"unicode"
	"unicode/utf8"

	"github.com/litua-lang/litua/token"
)

// MaxRawStringDepth is the largest number of '<'/'>' brackets a raw string
// delimiter may use (§4.1).
const MaxRawStringDepth = 126

// Error is a positioned lexical error.
type Error struct {
	Message string
	Offset  int
	Line    int
	Column  int
}

func (e *Error) Error() string {
	return fmt.Sprintf("%d:%d: %s", e.Line, e.Column, e.Message)
}

// Lexer scans a UTF-8 source into litua tokens.
type Lexer struct {
	runes   []rune
	byteOff []int // byteOff[i] is the byte offset of runes[i]; len(byteOff) == len(runes)+1
	pos     int
	line    int
	column  int
}

// New prepares a Lexer over src. The entire source is decoded up front —
// litua processes whole documents in memory, never as a stream (§1
// Non-goals).
func New(src []byte) *Lexer {
	runes := make([]rune, 0, len(src))
	offs := make([]int, 0, len(src)+1)
	i := 0
	for i < len(src) {
		r, size := utf8.DecodeRune(src[i:])
		if r == utf8.RuneError && size <= 1 {
			size = 1
		}
		offs = append(offs, i)
		runes = append(runes, r)
		i += size
	}
	offs = append(offs, len(src))
	return &Lexer{runes: runes, byteOff: offs, line: 1, column: 1}
}

// Tokenize scans the entire source and returns its token stream, ending
// with an explicit EOF token. Lexing fails fast with the first positioned
// error encountered (§4.1 "Deterministic errors").
func (l *Lexer) Tokenize() ([]token.Token, error) {
	toks, err := l.lexSequence(0, false)
	if err != nil {
		return nil, err
	}
	toks = append(toks, l.makeToken(token.EOF, "", l.pos))
	return toks, nil
}

// lexSequence lexes a Node* production: a run of Text / RawString /
// Function constructs. When hasStop, it stops (without consuming) at the
// first occurrence of stop at the current nesting level; a bare '}' seen
// while hasStop is false (document level) — or any '}' seen while the stop
// rune is ']' (argument-value level) — is an unbalanced-brace error.
func (l *Lexer) lexSequence(stop rune, hasStop bool) ([]token.Token, error) {
	var out []token.Token
	for {
		if l.eof() {
			if hasStop {
				return nil, l.errAt(l.pos, "unexpected end of input, unclosed construct")
			}
			return out, nil
		}
		r := l.peek()
		if hasStop && r == stop {
			return out, nil
		}
		switch r {
		case '{':
			toks, err := l.lexBrace()
			if err != nil {
				return nil, err
			}
			out = append(out, toks...)
		case '}':
			return nil, l.errAt(l.pos, "unexpected '}' with no matching '{'")
		default:
			tok := l.lexText(stop, hasStop)
			out = append(out, tok)
		}
	}
}

// lexText consumes a maximal run of literal text: any rune except '{',
// '}', and (inside an argument value) the closing ']'.
func (l *Lexer) lexText(stop rune, hasStop bool) token.Token {
	start := l.pos
	for !l.eof() {
		r := l.peek()
		if r == '{' || r == '}' {
			break
		}
		if hasStop && r == stop {
			break
		}
		l.advance()
	}
	return l.makeToken(token.Text, string(l.runes[start:l.pos]), start)
}

// lexBrace handles a construct starting at '{': either a raw string
// ({<^k ... >^k}) or a function call ({name [k=v]* ws? content? }).
func (l *Lexer) lexBrace() ([]token.Token, error) {
	braceStart := l.pos
	l.advance() // consume '{'
	if l.eof() {
		return nil, l.errAt(braceStart, "unclosed '{'")
	}
	if l.peek() == '}' {
		return nil, l.errAt(braceStart, "empty call name: '{' directly followed by '}'")
	}
	if l.peek() == '<' {
		depth := 0
		for !l.eof() && l.peek() == '<' {
			depth++
			l.advance()
		}
		if depth > MaxRawStringDepth {
			return nil, l.errAt(braceStart, fmt.Sprintf("raw-string opener exceeds maximum depth of %d", MaxRawStringDepth))
		}
		return l.lexRawString(braceStart, depth)
	}
	return l.lexFunction(braceStart)
}

// isCallStop reports whether r terminates a call name.
func isCallStop(r rune) bool {
	return r == '{' || r == '}' || r == '[' || r == '<' || r == '=' || isSpace(r)
}

func isSpace(r rune) bool { return unicode.IsSpace(r) }

func (l *Lexer) lexFunction(braceStart int) ([]token.Token, error) {
	out := []token.Token{l.makeToken(token.CallOpen, "{", braceStart)}

	nameStart := l.pos
	for !l.eof() && !isCallStop(l.peek()) {
		l.advance()
	}
	if l.pos == nameStart {
		return nil, l.errAt(nameStart, "invalid or empty call name")
	}
	out = append(out, l.makeToken(token.CallName, string(l.runes[nameStart:l.pos]), nameStart))

	for !l.eof() && l.peek() == '[' {
		argOpenPos := l.pos
		l.advance() // consume '['
		out = append(out, l.makeToken(token.ArgOpen, "[", argOpenPos))

		keyStart := l.pos
		for !l.eof() && l.peek() != '=' && l.peek() != ']' {
			l.advance()
		}
		if l.pos == keyStart {
			return nil, l.errAt(keyStart, "empty key in '[k=...]' group")
		}
		if l.eof() || l.peek() != '=' {
			return nil, l.errAt(l.pos, "expected '=' in '[k=...]' group")
		}
		out = append(out, l.makeToken(token.ArgKey, string(l.runes[keyStart:l.pos]), keyStart))

		eqPos := l.pos
		l.advance() // consume '='
		out = append(out, l.makeToken(token.ArgEq, "=", eqPos))

		valToks, err := l.lexSequence(']', true)
		if err != nil {
			return nil, err
		}
		out = append(out, valToks...)

		if l.eof() || l.peek() != ']' {
			return nil, l.errAt(l.pos, "unterminated '[k=...]' group, expected ']'")
		}
		closePos := l.pos
		l.advance() // consume ']'
		out = append(out, l.makeToken(token.ArgClose, "]", closePos))
	}

	if !l.eof() && isSpace(l.peek()) {
		wsStart := l.pos
		for !l.eof() && isSpace(l.peek()) {
			l.advance()
		}
		out = append(out, l.makeToken(token.Whitespace, string(l.runes[wsStart:l.pos]), wsStart))

		if !l.eof() && l.peek() != '}' {
			contentToks, err := l.lexSequence('}', true)
			if err != nil {
				return nil, err
			}
			out = append(out, contentToks...)
		}
	}

	if l.eof() || l.peek() != '}' {
		return nil, l.errAt(l.pos, "unclosed function call, expected '}'")
	}
	closeBrace := l.pos
	l.advance() // consume '}'
	out = append(out, l.makeToken(token.CallClose, "}", closeBrace))

	return out, nil
}

// lexRawString scans {<^k ws body ws >^k} and emits a single RawString
// token. Per the data model (§3), the token's text is the whole span
// between the '<' run and the '>' run, including its own boundary
// whitespace — Leading/Trailing additionally hold the opening whitespace
// rune and the closing whitespace run as text so the parser can synthesize the
// =whitespace/=whitespace-after meta-keys without re-scanning.
func (l *Lexer) lexRawString(braceStart, depth int) ([]token.Token, error) {
	if l.eof() || !isSpace(l.peek()) {
		return nil, l.errAt(l.pos, "raw-string opener requires whitespace after '<' run")
	}
	// Only the single required whitespace code point is consumed as the
	// opening delimiter (§4.1 "at least one whitespace code point"); any
	// further whitespace belongs to the search region below, so that a
	// minimal raw string like "{<  >}" still leaves a whitespace rune for
	// findRawTerminator to match against instead of having it all
	// swallowed here. "{< >}" has no rune left after the opener and fails.
	openStart := l.pos
	l.advance()
	leading := string(l.runes[openStart:l.pos])

	searchStart := l.pos
	wsStart, wsEnd, ok := l.findRawTerminator(searchStart, depth)
	if !ok {
		return nil, l.errAt(braceStart, "unterminated raw string: no matching whitespace + '>'*k + '}' found")
	}

	// fullText spans the entire body between the '<' run and the '>' run,
	// including both its own boundary whitespace runs: text_only (§4.3)
	// reads only Content and discards Args, so the leading/trailing
	// whitespace must live in Content for raw strings to round-trip
	// through text projection (§8 scenario 4).
	fullText := leading + string(l.runes[searchStart:wsEnd])
	trailing := string(l.runes[wsStart:wsEnd])

	tok := token.Token{
		Type:     token.RawString,
		Text:     fullText,
		Depth:    depth,
		Offset:   l.byteOffAt(openStart),
		Line:     l.lineAt(openStart),
		Column:   l.columnAt(openStart),
		Leading:  leading,
		Trailing: trailing,
	}

	l.pos = wsEnd + depth + 1 // past the '>'*depth and the closing '}'
	l.recomputeLineColumn()

	return []token.Token{tok}, nil
}

// findRawTerminator finds the earliest whitespace run, starting at or
// after from, that is immediately followed by exactly depth '>' runes and
// then '}'. It returns the whitespace run's [start,end) and whether a
// terminator was found at all. Shorter or longer runs of '>' at a given
// whitespace boundary are literal content (§8 "Raw-string depth"), so the
// scan skips past any whitespace run that doesn't qualify and keeps
// looking.
func (l *Lexer) findRawTerminator(from, depth int) (wsStart, wsEnd int, ok bool) {
	i := from
	n := len(l.runes)
	for i < n {
		if !isSpace(l.runes[i]) {
			i++
			continue
		}
		runStart := i
		e := i
		for e < n && isSpace(l.runes[e]) {
			e++
		}
		if e+depth < n && allAngle(l.runes[e:e+depth]) && l.runes[e+depth] == '}' {
			return runStart, e, true
		}
		i = e
	}
	return 0, 0, false
}

func allAngle(rs []rune) bool {
	for _, r := range rs {
		if r != '>' {
			return false
		}
	}
	return true
}

func (l *Lexer) eof() bool { return l.pos >= len(l.runes) }

func (l *Lexer) peek() rune {
	if l.eof() {
		return -1
	}
	return l.runes[l.pos]
}

func (l *Lexer) advance() {
	if l.eof() {
		return
	}
	if l.runes[l.pos] == '\n' {
		l.line++
		l.column = 1
	} else {
		l.column++
	}
	l.pos++
}

// recomputeLineColumn restores line/column tracking after a bulk jump
// (used once, after a raw-string terminator is located by scanning ahead
// of the normal advance() cursor).
func (l *Lexer) recomputeLineColumn() {
	line, col := 1, 1
	for i := 0; i < l.pos && i < len(l.runes); i++ {
		if l.runes[i] == '\n' {
			line++
			col = 1
		} else {
			col++
		}
	}
	l.line, l.column = line, col
}

func (l *Lexer) byteOffAt(i int) int {
	if i < len(l.byteOff) {
		return l.byteOff[i]
	}
	return l.byteOff[len(l.byteOff)-1]
}

func (l *Lexer) lineAt(i int) int {
	line := 1
	for j := 0; j < i && j < len(l.runes); j++ {
		if l.runes[j] == '\n' {
			line++
		}
	}
	return line
}

func (l *Lexer) columnAt(i int) int {
	lineStart := 0
	for j := i - 1; j >= 0; j-- {
		if l.runes[j] == '\n' {
			lineStart = j + 1
			break
		}
	}
	return i - lineStart + 1
}

func (l *Lexer) makeToken(typ token.Type, text string, startPos int) token.Token {
	return token.Token{
		Type:   typ,
		Text:   text,
		Offset: l.byteOffAt(startPos),
		Line:   l.lineAt(startPos),
		Column: l.columnAt(startPos),
	}
}

func (l *Lexer) errAt(pos int, msg string) error {
	return &Error{
		Message: msg,
		Offset:  l.byteOffAt(pos),
		Line:    l.lineAt(pos),
		Column:  l.columnAt(pos),
	}
}
