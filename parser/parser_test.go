package parser

import (
	"testing"

	"github.com/dr8co/tacc/ast"
	"github.com/dr8co/tacc/lexer"
)

func parseProgram(t *testing.T, input string) *ast.Node {
	t.Helper()
	p := New(lexer.New(input))
	prog := p.ParseProgram()
	if len(p.Errors()) != 0 {
		t.Fatalf("parser errors: %v", p.Errors())
	}
	return prog
}

func TestParseFunctionDef(t *testing.T) {
	prog := parseProgram(t, `int add(int x, int y) { return x + y; }`)

	if prog == nil || prog.Kind != ast.FuncDef {
		t.Fatalf("expected a single FuncDef, got %v", prog)
	}
	if prog.Name != "add" || prog.DataType != ast.Int {
		t.Fatalf("unexpected function signature: name=%s type=%s", prog.Name, prog.DataType)
	}
	if prog.Params == nil || prog.Params.Name != "x" || prog.Params.Next == nil || prog.Params.Next.Name != "y" {
		t.Fatalf("expected params x, y")
	}
	if prog.Body == nil || prog.Body.Kind != ast.Block {
		t.Fatalf("expected a block body")
	}
	ret := prog.Body.Left
	if ret == nil || ret.Kind != ast.Return || ret.Left.Kind != ast.BinOp || ret.Left.Op != ast.Add {
		t.Fatalf("expected return x + y, got %+v", ret)
	}
}

func TestParseGlobalDeclaration(t *testing.T) {
	prog := parseProgram(t, `int count = 0;`)
	if prog.Kind != ast.VarDecl || prog.Name != "count" || prog.Right.IntVal != 0 {
		t.Fatalf("unexpected global decl: %+v", prog)
	}
}

func TestParseIfElse(t *testing.T) {
	prog := parseProgram(t, `void f() { if (x < 1) { return; } else { return; } }`)
	ifNode := prog.Body.Left
	if ifNode.Kind != ast.If || ifNode.Left == nil || ifNode.Right == nil {
		t.Fatalf("expected if/else with both branches, got %+v", ifNode)
	}
}

func TestParseWhileLoop(t *testing.T) {
	prog := parseProgram(t, `void f() { while (x < 10) { x = x + 1; } }`)
	loop := prog.Body.Left
	if loop.Kind != ast.While || loop.Cond.Kind != ast.BinOp {
		t.Fatalf("expected while loop, got %+v", loop)
	}
}

func TestParseForLoop(t *testing.T) {
	prog := parseProgram(t, `void f() { for (int i = 0; i < 10; i = i + 1) { } }`)
	loop := prog.Body.Left
	if loop.Kind != ast.For {
		t.Fatalf("expected for loop, got %+v", loop)
	}
	if loop.Init == nil || loop.Init.Kind != ast.VarDecl {
		t.Fatalf("expected for-init to be a var decl, got %+v", loop.Init)
	}
	if loop.Incr == nil || loop.Incr.Kind != ast.Assign {
		t.Fatalf("expected for-incr to be an assignment, got %+v", loop.Incr)
	}
}

func TestParseShortCircuitPrecedence(t *testing.T) {
	prog := parseProgram(t, `int f() { return a < 1 && b > 2 || c == 3; }`)
	expr := prog.Body.Left.Left
	if expr.Kind != ast.BinOp || expr.Op != ast.Or {
		t.Fatalf("expected || to bind loosest, got %+v", expr)
	}
	if expr.Left.Op != ast.And {
		t.Fatalf("expected && nested under ||, got %+v", expr.Left)
	}
}

func TestParseFunctionCallArguments(t *testing.T) {
	prog := parseProgram(t, `int f() { return add(1, 2); }`)
	call := prog.Body.Left.Left
	if call.Kind != ast.FuncCall || call.Name != "add" {
		t.Fatalf("expected call to add, got %+v", call)
	}
	if call.Left == nil || call.Left.IntVal != 1 || call.Left.Next == nil || call.Left.Next.IntVal != 2 {
		t.Fatalf("expected two arguments 1, 2")
	}
}

func TestParseUnaryOperators(t *testing.T) {
	prog := parseProgram(t, `int f() { return -1; }`)
	expr := prog.Body.Left.Left
	if expr.Kind != ast.UnOp || expr.Op != ast.Neg {
		t.Fatalf("expected unary negation, got %+v", expr)
	}
}

func TestParseSyntaxError(t *testing.T) {
	p := New(lexer.New(`int f( { }`))
	p.ParseProgram()
	if len(p.Errors()) == 0 {
		t.Fatalf("expected a syntax error for malformed parameter list")
	}
}
