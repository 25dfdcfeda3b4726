// Package parser implements a recursive-descent parser for the C subset
// this compiler's middle-end analyzes, turning a [lexer.Lexer]'s token
// stream into an [ast.Node] tree.
//
// It exists to feed well-formed trees to the semantic analyzer and IR
// generator and to the REPL/CLI; its error recovery is minimal — on a
// syntax error it records a message and keeps going without
// resynchronizing, so one mistake can produce several follow-on
// messages.
package parser

import (
	"fmt"

	"github.com/dr8co/tacc/ast"
	"github.com/dr8co/tacc/lexer"
	"github.com/dr8co/tacc/token"
)

// Parser holds the two-token lookahead state a predictive recursive
// descent parser for this grammar needs.
type Parser struct {
	l      *lexer.Lexer
	errors []string

	curToken  token.Token
	peekToken token.Token
}

// New creates a Parser reading from l and primes its two-token lookahead.
func New(l *lexer.Lexer) *Parser {
	p := &Parser{l: l}
	p.nextToken()
	p.nextToken()
	return p
}

// Errors returns every syntax error recorded so far.
func (p *Parser) Errors() []string { return p.errors }

func (p *Parser) nextToken() {
	p.curToken = p.peekToken
	p.peekToken = p.l.NextToken()
}

func (p *Parser) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf("line %d: %s", p.curToken.Line, fmt.Sprintf(format, args...)))
}

func (p *Parser) expect(t token.Type) bool {
	if p.curToken.Type != t {
		p.errorf("expected %s, got %s (%q)", t, p.curToken.Type, p.curToken.Literal)
		return false
	}
	p.nextToken()
	return true
}

func dataTypeOf(t token.Type) ast.DataType {
	switch t {
	case token.KwInt:
		return ast.Int
	case token.KwChar:
		return ast.Char
	default:
		return ast.Void
	}
}

// ParseProgram parses a whole translation unit: a sequence of function
// definitions and global variable declarations, Next-linked in source
// order.
func (p *Parser) ParseProgram() *ast.Node {
	var head, tail *ast.Node
	for p.curToken.Type != token.EOF {
		n := p.parseTopLevel()
		if n == nil {
			p.nextToken()
			continue
		}
		if head == nil {
			head = n
		} else {
			tail.Next = n
		}
		tail = n
	}
	return head
}

// parseTopLevel parses one function definition or global declaration.
// Both start with a type keyword followed by an identifier; the
// following token (`(` vs anything else) disambiguates them.
func (p *Parser) parseTopLevel() *ast.Node {
	if !token.IsTypeKeyword(p.curToken.Type) {
		p.errorf("expected a type keyword, got %s", p.curToken.Type)
		return nil
	}
	typ := dataTypeOf(p.curToken.Type)
	line := p.curToken.Line
	p.nextToken()

	if p.curToken.Type != token.Ident {
		p.errorf("expected an identifier, got %s", p.curToken.Type)
		return nil
	}
	name := p.curToken.Literal
	p.nextToken()

	if p.curToken.Type == token.Lparen {
		return p.parseFuncDef(typ, name, line)
	}
	return p.parseVarDeclTail(typ, name, line)
}

func (p *Parser) parseFuncDef(retType ast.DataType, name string, line int) *ast.Node {
	fn := &ast.Node{Kind: ast.FuncDef, Name: name, DataType: retType, Line: line}
	p.nextToken() // consume '('

	var head, tail *ast.Node
	for p.curToken.Type != token.Rparen {
		if !token.IsTypeKeyword(p.curToken.Type) {
			p.errorf("expected a parameter type, got %s", p.curToken.Type)
			return fn
		}
		pt := dataTypeOf(p.curToken.Type)
		pline := p.curToken.Line
		p.nextToken()
		if p.curToken.Type != token.Ident {
			p.errorf("expected a parameter name, got %s", p.curToken.Type)
			return fn
		}
		param := &ast.Node{Kind: ast.Param, Name: p.curToken.Literal, DataType: pt, Line: pline}
		p.nextToken()
		if head == nil {
			head = param
		} else {
			tail.Next = param
		}
		tail = param
		if p.curToken.Type == token.Comma {
			p.nextToken()
		}
	}
	fn.Params = head
	p.nextToken() // consume ')'

	fn.Body = p.parseBlock()
	return fn
}

// parseVarDeclTail finishes a declaration whose type and name have
// already been consumed: called by parseTopLevel for globals and by
// parseVarDecl for in-body declarations.
func (p *Parser) parseVarDeclTail(typ ast.DataType, name string, line int) *ast.Node {
	decl := &ast.Node{Kind: ast.VarDecl, Name: name, DataType: typ, Line: line}
	if p.curToken.Type == token.Assign {
		p.nextToken()
		decl.Right = p.parseExpr()
	}
	p.expect(token.Semicolon)
	return decl
}

func (p *Parser) parseBlock() *ast.Node {
	block := &ast.Node{Kind: ast.Block, Line: p.curToken.Line}
	if !p.expect(token.Lbrace) {
		return block
	}

	var head, tail *ast.Node
	for p.curToken.Type != token.Rbrace && p.curToken.Type != token.EOF {
		s := p.parseStatement()
		if s == nil {
			continue
		}
		if head == nil {
			head = s
		} else {
			tail.Next = s
		}
		tail = s
	}
	block.Left = head
	p.expect(token.Rbrace)
	return block
}

func (p *Parser) parseStatement() *ast.Node {
	switch {
	case token.IsTypeKeyword(p.curToken.Type):
		return p.parseVarDecl()
	case p.curToken.Type == token.Lbrace:
		return p.parseBlock()
	case p.curToken.Type == token.KwIf:
		return p.parseIf()
	case p.curToken.Type == token.KwWhile:
		return p.parseWhile()
	case p.curToken.Type == token.KwFor:
		return p.parseFor()
	case p.curToken.Type == token.KwReturn:
		return p.parseReturn()
	default:
		return p.parseExprStatement()
	}
}

func (p *Parser) parseVarDecl() *ast.Node {
	line := p.curToken.Line
	typ := dataTypeOf(p.curToken.Type)
	p.nextToken()
	if p.curToken.Type != token.Ident {
		p.errorf("expected a variable name, got %s", p.curToken.Type)
		return nil
	}
	name := p.curToken.Literal
	p.nextToken()
	return p.parseVarDeclTail(typ, name, line)
}

func (p *Parser) parseIf() *ast.Node {
	n := &ast.Node{Kind: ast.If, Line: p.curToken.Line}
	p.nextToken()
	p.expect(token.Lparen)
	n.Cond = p.parseExpr()
	p.expect(token.Rparen)
	n.Left = p.parseStatement()
	if p.curToken.Type == token.KwElse {
		p.nextToken()
		n.Right = p.parseStatement()
	}
	return n
}

func (p *Parser) parseWhile() *ast.Node {
	n := &ast.Node{Kind: ast.While, Line: p.curToken.Line}
	p.nextToken()
	p.expect(token.Lparen)
	n.Cond = p.parseExpr()
	p.expect(token.Rparen)
	n.Body = p.parseStatement()
	return n
}

func (p *Parser) parseFor() *ast.Node {
	n := &ast.Node{Kind: ast.For, Line: p.curToken.Line}
	p.nextToken()
	p.expect(token.Lparen)

	if p.curToken.Type != token.Semicolon {
		if token.IsTypeKeyword(p.curToken.Type) {
			n.Init = p.parseVarDecl()
		} else {
			n.Init = p.parseExprStatement()
		}
	} else {
		p.nextToken()
	}

	if p.curToken.Type != token.Semicolon {
		n.Cond = p.parseExpr()
	}
	p.expect(token.Semicolon)

	if p.curToken.Type != token.Rparen {
		n.Incr = p.parseExpr()
	}
	p.expect(token.Rparen)

	n.Body = p.parseStatement()
	return n
}

func (p *Parser) parseReturn() *ast.Node {
	n := &ast.Node{Kind: ast.Return, Line: p.curToken.Line}
	p.nextToken()
	if p.curToken.Type != token.Semicolon {
		n.Left = p.parseExpr()
	}
	p.expect(token.Semicolon)
	return n
}

func (p *Parser) parseExprStatement() *ast.Node {
	n := p.parseExpr()
	p.expect(token.Semicolon)
	return n
}

// Precedence climbing, lowest to highest: assignment, ||, &&,
// ==/!=, relational, +/-, * / %, unary, primary.

func (p *Parser) parseExpr() *ast.Node { return p.parseAssignment() }

func (p *Parser) parseAssignment() *ast.Node {
	left := p.parseLogicalOr()
	if p.curToken.Type == token.Assign {
		if left == nil || left.Kind != ast.Var {
			p.errorf("left-hand side of assignment must be a variable")
			return left
		}
		line := p.curToken.Line
		p.nextToken()
		right := p.parseAssignment()
		return &ast.Node{Kind: ast.Assign, Line: line, Left: left, Right: right}
	}
	return left
}

func (p *Parser) parseLogicalOr() *ast.Node {
	left := p.parseLogicalAnd()
	for p.curToken.Type == token.Or {
		line := p.curToken.Line
		p.nextToken()
		right := p.parseLogicalAnd()
		left = &ast.Node{Kind: ast.BinOp, Op: ast.Or, Line: line, Left: left, Right: right}
	}
	return left
}

func (p *Parser) parseLogicalAnd() *ast.Node {
	left := p.parseEquality()
	for p.curToken.Type == token.And {
		line := p.curToken.Line
		p.nextToken()
		right := p.parseEquality()
		left = &ast.Node{Kind: ast.BinOp, Op: ast.And, Line: line, Left: left, Right: right}
	}
	return left
}

func (p *Parser) parseEquality() *ast.Node {
	left := p.parseRelational()
	for p.curToken.Type == token.Eq || p.curToken.Type == token.Neq {
		op, line := opFor(p.curToken.Type), p.curToken.Line
		p.nextToken()
		right := p.parseRelational()
		left = &ast.Node{Kind: ast.BinOp, Op: op, Line: line, Left: left, Right: right}
	}
	return left
}

func (p *Parser) parseRelational() *ast.Node {
	left := p.parseAdditive()
	for isRelational(p.curToken.Type) {
		op, line := opFor(p.curToken.Type), p.curToken.Line
		p.nextToken()
		right := p.parseAdditive()
		left = &ast.Node{Kind: ast.BinOp, Op: op, Line: line, Left: left, Right: right}
	}
	return left
}

func isRelational(t token.Type) bool {
	return t == token.Lt || t == token.Gt || t == token.Lte || t == token.Gte
}

func (p *Parser) parseAdditive() *ast.Node {
	left := p.parseTerm()
	for p.curToken.Type == token.Plus || p.curToken.Type == token.Minus {
		op, line := opFor(p.curToken.Type), p.curToken.Line
		p.nextToken()
		right := p.parseTerm()
		left = &ast.Node{Kind: ast.BinOp, Op: op, Line: line, Left: left, Right: right}
	}
	return left
}

func (p *Parser) parseTerm() *ast.Node {
	left := p.parseUnary()
	for p.curToken.Type == token.Asterisk || p.curToken.Type == token.Slash || p.curToken.Type == token.Percent {
		op, line := opFor(p.curToken.Type), p.curToken.Line
		p.nextToken()
		right := p.parseUnary()
		left = &ast.Node{Kind: ast.BinOp, Op: op, Line: line, Left: left, Right: right}
	}
	return left
}

func (p *Parser) parseUnary() *ast.Node {
	if p.curToken.Type == token.Minus || p.curToken.Type == token.Bang {
		op, line := ast.Neg, p.curToken.Line
		if p.curToken.Type == token.Bang {
			op = ast.Not
		}
		p.nextToken()
		operand := p.parseUnary()
		return &ast.Node{Kind: ast.UnOp, Op: op, Line: line, Left: operand}
	}
	return p.parsePrimary()
}

func (p *Parser) parsePrimary() *ast.Node {
	switch p.curToken.Type {
	case token.Int:
		return p.parseIntLiteral()
	case token.Char:
		return p.parseCharLiteral()
	case token.String:
		n := &ast.Node{Kind: ast.StrLit, StrVal: p.curToken.Literal, Line: p.curToken.Line}
		p.nextToken()
		return n
	case token.Ident:
		return p.parseIdentOrCall()
	case token.Lparen:
		p.nextToken()
		n := p.parseExpr()
		p.expect(token.Rparen)
		return n
	default:
		p.errorf("unexpected token %s (%q) in expression", p.curToken.Type, p.curToken.Literal)
		p.nextToken()
		return nil
	}
}

func (p *Parser) parseIntLiteral() *ast.Node {
	n := &ast.Node{Kind: ast.ConstInt, Line: p.curToken.Line}
	v := 0
	for _, c := range p.curToken.Literal {
		v = v*10 + int(c-'0')
	}
	n.IntVal = v
	p.nextToken()
	return n
}

func (p *Parser) parseCharLiteral() *ast.Node {
	n := &ast.Node{Kind: ast.ConstChar, Line: p.curToken.Line}
	if len(p.curToken.Literal) > 0 {
		n.IntVal = int(p.curToken.Literal[0])
	}
	p.nextToken()
	return n
}

func (p *Parser) parseIdentOrCall() *ast.Node {
	name, line := p.curToken.Literal, p.curToken.Line
	p.nextToken()
	if p.curToken.Type != token.Lparen {
		return &ast.Node{Kind: ast.Var, Name: name, Line: line}
	}
	p.nextToken() // consume '('

	call := &ast.Node{Kind: ast.FuncCall, Name: name, Line: line}
	var head, tail *ast.Node
	for p.curToken.Type != token.Rparen {
		arg := p.parseExpr()
		if head == nil {
			head = arg
		} else {
			tail.Next = arg
		}
		tail = arg
		if p.curToken.Type == token.Comma {
			p.nextToken()
		}
	}
	call.Left = head
	p.expect(token.Rparen)
	return call
}

func opFor(t token.Type) ast.Op {
	switch t {
	case token.Plus:
		return ast.Add
	case token.Minus:
		return ast.Sub
	case token.Asterisk:
		return ast.Mul
	case token.Slash:
		return ast.Div
	case token.Percent:
		return ast.Mod
	case token.Lt:
		return ast.Lt
	case token.Gt:
		return ast.Gt
	case token.Lte:
		return ast.Le
	case token.Gte:
		return ast.Ge
	case token.Eq:
		return ast.Eq
	case token.Neq:
		return ast.Ne
	default:
		return ast.OpNone
	}
}
