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

import "fmt"

// Parser is a straightforward recursive-descent/precedence-climbing parser
// over a pre-tokenized source (lexer.go). It is hand-written rather than
// table-driven: the grammar is small and fixed, and a hand-written parser's
// error messages can name the exact production that failed.
type Parser struct {
	toks []Token
	pos  int
}

// NewParser wraps an already-tokenized source.
func NewParser(toks []Token) *Parser {
	return &Parser{toks: toks}
}

// ParseSource is the usual entry point: tokenize then parse a whole program
// into one top-level block node.
func ParseSource(source string) (*Node, error) {
	toks, err := Tokenize(source)
	if err != nil {
		return nil, err
	}
	return NewParser(toks).ParseProgram()
}

func (p *Parser) cur() Token  { return p.toks[p.pos] }
func (p *Parser) at(typ TokenType, text string) bool {
	t := p.cur()
	return t.Type == typ && (text == "" || t.Text == text)
}
func (p *Parser) atKeyword(kw string) bool { return p.at(TokKeyword, kw) }
func (p *Parser) atSymbol(sym string) bool { return p.at(TokSymbol, sym) }

func (p *Parser) advance() Token {
	t := p.cur()
	if t.Type != TokEOF {
		p.pos++
	}
	return t
}

func (p *Parser) expectSymbol(sym string) error {
	if !p.atSymbol(sym) {
		return p.errorf("expected %q", sym)
	}
	p.advance()
	return nil
}

func (p *Parser) errorf(format string, args ...any) error {
	t := p.cur()
	msg := fmt.Sprintf(format, args...)
	return fmt.Errorf("kod: parse error at %d:%d: %s (got %q)", t.Line, t.Column, msg, t.Text)
}

// ParseProgram parses a sequence of statements until EOF.
func (p *Parser) ParseProgram() (*Node, error) {
	block := &Node{Kind: NodeBlock}
	for !p.at(TokEOF, "") {
		s, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		block.Stmts = append(block.Stmts, s)
	}
	return block, nil
}

func (p *Parser) parseStatement() (*Node, error) {
	switch {
	case p.atKeyword("fn"):
		return p.parseFuncDecl()
	case p.atKeyword("if"):
		return p.parseIf()
	case p.atKeyword("while"):
		return p.parseWhile()
	case p.atKeyword("return"):
		return p.parseReturn()
	case p.atSymbol("{"):
		return p.parseBlock()
	default:
		return p.parseExprOrAssignStatement()
	}
}

func (p *Parser) parseBlock() (*Node, error) {
	if err := p.expectSymbol("{"); err != nil {
		return nil, err
	}
	block := &Node{Kind: NodeBlock}
	for !p.atSymbol("}") {
		if p.at(TokEOF, "") {
			return nil, p.errorf("unterminated block, expected \"}\"")
		}
		s, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		block.Stmts = append(block.Stmts, s)
	}
	p.advance() // "}"
	return block, nil
}

func (p *Parser) parseFuncDecl() (*Node, error) {
	p.advance() // "fn"
	if p.cur().Type != TokIdent {
		return nil, p.errorf("expected function name")
	}
	name := p.advance().Text
	if err := p.expectSymbol("("); err != nil {
		return nil, err
	}
	var params []string
	for !p.atSymbol(")") {
		if p.cur().Type != TokIdent {
			return nil, p.errorf("expected parameter name")
		}
		params = append(params, p.advance().Text)
		if p.atSymbol(",") {
			p.advance()
		}
	}
	p.advance() // ")"
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &Node{Kind: NodeFuncDecl, Name: name, Params: params, FnBody: body}, nil
}

func (p *Parser) parseIf() (*Node, error) {
	p.advance() // "if"
	if err := p.expectSymbol("("); err != nil {
		return nil, err
	}
	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if err := p.expectSymbol(")"); err != nil {
		return nil, err
	}
	then, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	node := &Node{Kind: NodeIf, Cond: cond, Then: then}
	if p.atKeyword("else") {
		p.advance()
		if p.atKeyword("if") {
			elseIf, err := p.parseIf()
			if err != nil {
				return nil, err
			}
			node.Else = elseIf
		} else {
			els, err := p.parseBlock()
			if err != nil {
				return nil, err
			}
			node.Else = els
		}
	}
	return node, nil
}

func (p *Parser) parseWhile() (*Node, error) {
	p.advance() // "while"
	if err := p.expectSymbol("("); err != nil {
		return nil, err
	}
	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if err := p.expectSymbol(")"); err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &Node{Kind: NodeWhile, Cond: cond, Body: body}, nil
}

func (p *Parser) parseReturn() (*Node, error) {
	p.advance() // "return"
	if p.atSymbol(";") {
		p.advance()
		return &Node{Kind: NodeReturn, Value: &Node{Kind: NodeNullLit}}, nil
	}
	v, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if p.atSymbol(";") {
		p.advance()
	}
	return &Node{Kind: NodeReturn, Value: v}, nil
}

func (p *Parser) parseExprOrAssignStatement() (*Node, error) {
	e, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if p.atSymbol("=") {
		if e.Kind != NodeIdent {
			return nil, p.errorf("left side of assignment must be a name")
		}
		p.advance()
		v, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if p.atSymbol(";") {
			p.advance()
		}
		return &Node{Kind: NodeAssign, Name: e.Name, Value: v}, nil
	}
	if p.atSymbol(";") {
		p.advance()
	}
	return &Node{Kind: NodeExprStmt, X: e}, nil
}

// Binary operator precedence, loosest to tightest — standard C-family
// layering (matches token.rs's operator set).
var precedence = map[string]int{
	"||": 1, "&&": 2,
	"==": 3, "!=": 3,
	"<": 4, ">": 4, "<=": 4, ">=": 4,
	"|": 5, "^": 6, "&": 7,
	"<<": 8, ">>": 8,
	"+": 9, "-": 9,
	"*": 10, "/": 10, "%": 10,
}

var binOps = map[string]BinOp{
	"+": BinAdd, "-": BinSub, "*": BinMul, "/": BinDiv, "%": BinMod,
	"&": BinAnd, "|": BinOr, "^": BinXor, "<<": BinShl, ">>": BinShr,
	"<": BinLt, ">": BinGt, "<=": BinLe, ">=": BinGe,
	"==": BinEq, "!=": BinNe, "&&": BinBoolAnd, "||": BinBoolOr,
}

func (p *Parser) parseExpr() (*Node, error) {
	return p.parseBinary(0)
}

func (p *Parser) parseBinary(minPrec int) (*Node, error) {
	lhs, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.cur().Type == TokSymbol {
		prec, ok := precedence[p.cur().Text]
		if !ok || prec < minPrec {
			break
		}
		op := binOps[p.advance().Text]
		rhs, err := p.parseBinary(prec + 1)
		if err != nil {
			return nil, err
		}
		lhs = &Node{Kind: NodeBinary, BOp: op, L: lhs, R: rhs}
	}
	return lhs, nil
}

func (p *Parser) parseUnary() (*Node, error) {
	if p.atSymbol("-") {
		p.advance()
		x, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &Node{Kind: NodeUnary, UOp: UnNeg, X: x}, nil
	}
	if p.atSymbol("!") {
		p.advance()
		x, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &Node{Kind: NodeUnary, UOp: UnNot, X: x}, nil
	}
	return p.parsePostfix()
}

func (p *Parser) parsePostfix() (*Node, error) {
	n, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for {
		switch {
		case p.atSymbol("("):
			p.advance()
			var args []*Node
			for !p.atSymbol(")") {
				a, err := p.parseExpr()
				if err != nil {
					return nil, err
				}
				args = append(args, a)
				if p.atSymbol(",") {
					p.advance()
				}
			}
			p.advance() // ")"
			n = &Node{Kind: NodeCall, Callee: n, Args: args}
		case p.atSymbol("["):
			p.advance()
			idx, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			if err := p.expectSymbol("]"); err != nil {
				return nil, err
			}
			n = &Node{Kind: NodeSubscript, Base: n, Index: idx}
		default:
			return n, nil
		}
	}
}

func (p *Parser) parsePrimary() (*Node, error) {
	t := p.cur()
	switch {
	case t.Type == TokInt:
		p.advance()
		return &Node{Kind: NodeIntLit, Int: t.Int}, nil
	case t.Type == TokFloat:
		p.advance()
		return &Node{Kind: NodeFloatLit, Float: t.Float}, nil
	case t.Type == TokString:
		p.advance()
		return &Node{Kind: NodeStringLit, Str: t.Text}, nil
	case t.Type == TokKeyword && t.Text == "null":
		p.advance()
		return &Node{Kind: NodeNullLit}, nil
	case t.Type == TokKeyword && (t.Text == "true" || t.Text == "false"):
		p.advance()
		return &Node{Kind: NodeBoolLit, Bool: t.Text == "true"}, nil
	case t.Type == TokIdent:
		p.advance()
		return &Node{Kind: NodeIdent, Name: t.Text}, nil
	case t.Type == TokSymbol && t.Text == "(":
		p.advance()
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if err := p.expectSymbol(")"); err != nil {
			return nil, err
		}
		return e, nil
	case t.Type == TokSymbol && t.Text == "[":
		return p.parseListLit()
	case t.Type == TokSymbol && t.Text == "{":
		return p.parseDictLit()
	default:
		return nil, p.errorf("unexpected token in expression")
	}
}

func (p *Parser) parseListLit() (*Node, error) {
	p.advance() // "["
	node := &Node{Kind: NodeListLit}
	for !p.atSymbol("]") {
		item, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		node.Items = append(node.Items, item)
		if p.atSymbol(",") {
			p.advance()
		}
	}
	p.advance() // "]"
	return node, nil
}

func (p *Parser) parseDictLit() (*Node, error) {
	p.advance() // "{"
	node := &Node{Kind: NodeDictLit}
	for !p.atSymbol("}") {
		key, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if err := p.expectSymbol(":"); err != nil {
			return nil, err
		}
		val, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		node.Keys = append(node.Keys, key)
		node.Vals = append(node.Vals, val)
		if p.atSymbol(",") {
			p.advance()
		}
	}
	p.advance() // "}"
	return node, nil
}
