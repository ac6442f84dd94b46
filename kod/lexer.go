/*
Copyright (C) 2026  Carl-Philip Hänsch

	This program is free software: you can redistribute it and/or modify
	it under the terms of the GNU General Public License as published by
	the Free Software Foundation, either version 3 of the License, or
	(at your option) any later version.

	This program is distributed in the hope that it will be useful,
	but WITHOUT ANY WARRANTY; without even the implied warranty of
	MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
	GNU General Public License for more details.

	You should have received a copy of the GNU General Public License
	along with this program.  If not, see <https://www.gnu.org/licenses/>.
*/
package kod

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// TokenType enumerates the lexer's output alphabet. The source grammar is
// the ordinary curly-brace/infix shape a dynamically-typed scripting
// language like this one uses — identifiers, C-style operators, fn/if/
// else/while/return/true/false/null keywords.
type TokenType int

const (
	TokEOF TokenType = iota
	TokIdent
	TokInt
	TokFloat
	TokString
	TokKeyword
	TokSymbol
)

// Token is one lexical unit plus its source position, used for error
// messages (SPEC_FULL.md §7's lexer error taxonomy).
type Token struct {
	Type   TokenType
	Text   string
	Int    int64
	Float  float64
	Line   int
	Column int
}

var keywords = map[string]bool{
	"fn": true, "if": true, "else": true, "while": true, "return": true,
	"true": true, "false": true, "null": true, "var": true,
}

// symbols lists multi- and single-character operator/punctuation lexemes,
// longest first so the lexer's greedy match never splits "==" into "=" "=".
var symbols = []string{
	"==", "!=", "<=", ">=", "&&", "||", "<<", ">>",
	"+", "-", "*", "/", "%", "&", "|", "^", "~", "!",
	"<", ">", "=", "(", ")", "[", "]", "{", "}", ",", ";", ".", ":",
}

// Lexer turns normalized source text into a Token stream. Identifiers and
// string contents are passed through Unicode NFC normalization
// (golang.org/x/text/unicode/norm, SPEC_FULL.md §10) before being stored, so
// two visually identical but differently-composed names never collide as
// distinct names in the NamePool.
type Lexer struct {
	src    string
	pos    int
	line   int
	column int
}

// NewLexer returns a Lexer ready to tokenize source.
func NewLexer(source string) *Lexer {
	return &Lexer{src: source, line: 1, column: 1}
}

func (l *Lexer) peek() byte {
	if l.pos >= len(l.src) {
		return 0
	}
	return l.src[l.pos]
}

func (l *Lexer) peekAt(off int) byte {
	if l.pos+off >= len(l.src) {
		return 0
	}
	return l.src[l.pos+off]
}

func (l *Lexer) advance() byte {
	c := l.src[l.pos]
	l.pos++
	if c == '\n' {
		l.line++
		l.column = 1
	} else {
		l.column++
	}
	return c
}

func (l *Lexer) skipTrivia() {
	for l.pos < len(l.src) {
		c := l.peek()
		switch {
		case c == ' ' || c == '\t' || c == '\r' || c == '\n':
			l.advance()
		case c == '/' && l.peekAt(1) == '/':
			for l.pos < len(l.src) && l.peek() != '\n' {
				l.advance()
			}
		case c == '/' && l.peekAt(1) == '*':
			l.advance()
			l.advance()
			for l.pos < len(l.src) && !(l.peek() == '*' && l.peekAt(1) == '/') {
				l.advance()
			}
			if l.pos < len(l.src) {
				l.advance()
				l.advance()
			}
		default:
			return
		}
	}
}

// Next returns the next token, or a TokEOF token once the source is
// exhausted. A malformed token (unterminated string, bad number, unknown
// character) is reported with a "kod: lex error" prefixed error carrying the
// 1-based line/column (SPEC_FULL.md §7).
func (l *Lexer) Next() (Token, error) {
	l.skipTrivia()
	line, col := l.line, l.column
	if l.pos >= len(l.src) {
		return Token{Type: TokEOF, Line: line, Column: col}, nil
	}

	c := l.peek()
	switch {
	case isIdentStart(c):
		return l.lexIdent(line, col), nil
	case c >= '0' && c <= '9':
		return l.lexNumber(line, col)
	case c == '"':
		return l.lexString(line, col)
	default:
		return l.lexSymbol(line, col)
	}
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c >= 0x80
}

func isIdentCont(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}

func (l *Lexer) lexIdent(line, col int) Token {
	start := l.pos
	for l.pos < len(l.src) && isIdentCont(l.peek()) {
		l.advance()
	}
	text := norm.NFC.String(l.src[start:l.pos])
	if keywords[text] {
		return Token{Type: TokKeyword, Text: text, Line: line, Column: col}
	}
	return Token{Type: TokIdent, Text: text, Line: line, Column: col}
}

func (l *Lexer) lexNumber(line, col int) (Token, error) {
	start := l.pos
	isFloat := false
	for l.pos < len(l.src) && (l.peek() >= '0' && l.peek() <= '9') {
		l.advance()
	}
	if l.peek() == '.' && l.peekAt(1) >= '0' && l.peekAt(1) <= '9' {
		isFloat = true
		l.advance()
		for l.pos < len(l.src) && (l.peek() >= '0' && l.peek() <= '9') {
			l.advance()
		}
	}
	text := l.src[start:l.pos]
	if isFloat {
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return Token{}, fmt.Errorf("kod: lex error at %d:%d: invalid float literal %q", line, col, text)
		}
		return Token{Type: TokFloat, Float: f, Text: text, Line: line, Column: col}, nil
	}
	n, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return Token{}, fmt.Errorf("kod: lex error at %d:%d: invalid integer literal %q", line, col, text)
	}
	return Token{Type: TokInt, Int: n, Text: text, Line: line, Column: col}, nil
}

func (l *Lexer) lexString(line, col int) (Token, error) {
	l.advance() // opening quote
	var sb strings.Builder
	for {
		if l.pos >= len(l.src) {
			return Token{}, fmt.Errorf("kod: lex error at %d:%d: unterminated string literal", line, col)
		}
		c := l.advance()
		if c == '"' {
			break
		}
		if c == '\\' {
			if l.pos >= len(l.src) {
				return Token{}, fmt.Errorf("kod: lex error at %d:%d: unterminated string literal", line, col)
			}
			esc := l.advance()
			switch esc {
			case 'n':
				sb.WriteByte('\n')
			case 't':
				sb.WriteByte('\t')
			case '"':
				sb.WriteByte('"')
			case '\\':
				sb.WriteByte('\\')
			default:
				sb.WriteByte(esc)
			}
			continue
		}
		sb.WriteByte(c)
	}
	return Token{Type: TokString, Text: norm.NFC.String(sb.String()), Line: line, Column: col}, nil
}

func (l *Lexer) lexSymbol(line, col int) (Token, error) {
	for _, s := range symbols {
		if strings.HasPrefix(l.src[l.pos:], s) {
			for range s {
				l.advance()
			}
			return Token{Type: TokSymbol, Text: s, Line: line, Column: col}, nil
		}
	}
	return Token{}, fmt.Errorf("kod: lex error at %d:%d: unexpected character %q", line, col, string(l.peek()))
}

// Tokenize drains the lexer into a slice, appending a trailing TokEOF. Small
// programs (the module cache's grain, §6) don't need the lexer to stream.
func Tokenize(source string) ([]Token, error) {
	l := NewLexer(source)
	var toks []Token
	for {
		t, err := l.Next()
		if err != nil {
			return nil, err
		}
		toks = append(toks, t)
		if t.Type == TokEOF {
			return toks, nil
		}
	}
}
