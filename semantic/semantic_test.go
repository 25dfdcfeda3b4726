package semantic

import (
	"strings"
	"testing"

	"github.com/dr8co/tacc/ast"
)

// node is a small builder to keep test fixtures readable.
func node(kind ast.Kind) *ast.Node { return &ast.Node{Kind: kind, Line: 1} }

func link(nodes ...*ast.Node) *ast.Node {
	for i := 0; i < len(nodes)-1; i++ {
		nodes[i].Next = nodes[i+1]
	}
	if len(nodes) == 0 {
		return nil
	}
	return nodes[0]
}

func intConst(v int) *ast.Node {
	n := node(ast.ConstInt)
	n.IntVal = v
	return n
}

func varRef(name string) *ast.Node {
	n := node(ast.Var)
	n.Name = name
	return n
}

// TestGlobalDeclarationAndUse covers scenario A: a well-typed global
// variable declared and then read inside a function.
func TestGlobalDeclarationAndUse(t *testing.T) {
	decl := node(ast.VarDecl)
	decl.Name = "g"
	decl.DataType = ast.Int
	decl.Right = intConst(1)

	ret := node(ast.Return)
	ret.Left = varRef("g")

	body := node(ast.Block)
	body.Left = ret

	fn := node(ast.FuncDef)
	fn.Name = "main"
	fn.DataType = ast.Int
	fn.Body = body

	program := link(decl, fn)

	var out strings.Builder
	az := New(&out)
	az.Analyze(program)

	if az.Errors() != 0 {
		t.Fatalf("expected no errors, got %d:\n%s", az.Errors(), out.String())
	}
	if ret.Left.DataType != ast.Int {
		t.Fatalf("expected variable reference to resolve to int, got %s", ret.Left.DataType)
	}
}

func TestUndeclaredVariableDefaultsToIntAndDoesNotCascade(t *testing.T) {
	ref := varRef("missing")
	assign := node(ast.Assign)
	assign.Left = ref
	assign.Right = intConst(5)

	var out strings.Builder
	az := New(&out)
	az.analyzeNode(assign)

	if az.Errors() != 1 {
		t.Fatalf("expected exactly one error (undeclared variable), got %d:\n%s", az.Errors(), out.String())
	}
	if !strings.Contains(out.String(), "Undeclared variable") {
		t.Fatalf("expected undeclared variable diagnostic, got:\n%s", out.String())
	}
}

func TestFunctionRedeclared(t *testing.T) {
	fn1 := node(ast.FuncDef)
	fn1.Name = "f"
	fn1.DataType = ast.Void
	fn1.Body = node(ast.Block)

	fn2 := node(ast.FuncDef)
	fn2.Name = "f"
	fn2.DataType = ast.Void
	fn2.Body = node(ast.Block)

	var out strings.Builder
	az := New(&out)
	az.Analyze(link(fn1, fn2))

	if az.Errors() != 1 {
		t.Fatalf("expected exactly one redeclaration error, got %d:\n%s", az.Errors(), out.String())
	}
}

func TestNonVoidFunctionMustReturn(t *testing.T) {
	fn := node(ast.FuncDef)
	fn.Name = "f"
	fn.DataType = ast.Int
	fn.Body = node(ast.Block) // empty body, never returns

	var out strings.Builder
	az := New(&out)
	az.Analyze(link(fn))

	if az.Errors() != 1 || !strings.Contains(out.String(), "Non-void function must return a value") {
		t.Fatalf("expected missing-return error, got %d errors:\n%s", az.Errors(), out.String())
	}
}

func TestVoidSuppressesBinaryMismatchCascade(t *testing.T) {
	// Declare a void function so the call below resolves to a Void operand.
	fn := node(ast.FuncDef)
	fn.Name = "doit"
	fn.DataType = ast.Void
	fn.Body = node(ast.Block)

	call := node(ast.FuncCall)
	call.Name = "doit"

	bin := node(ast.BinOp)
	bin.Op = ast.Add
	bin.Left = call
	bin.Right = intConst(1)

	var out strings.Builder
	az := New(&out)
	az.Analyze(link(fn))
	az.analyzeBinary(bin)

	if az.Errors() != 0 {
		t.Fatalf("expected void operand to suppress binary mismatch error, got:\n%s", out.String())
	}
	if bin.DataType != ast.Void {
		t.Fatalf("expected node type to become void, got %s", bin.DataType)
	}
}

func TestIfWithoutElseNeverDefinitelyReturns(t *testing.T) {
	thenBlock := node(ast.Block)
	ret := node(ast.Return)
	ret.Left = intConst(1)
	thenBlock.Left = ret

	ifNode := node(ast.If)
	ifNode.Cond = intConst(1)
	ifNode.Left = thenBlock

	var out strings.Builder
	az := New(&out)
	az.current = nil
	returns := az.analyzeNode(ifNode)

	if returns {
		t.Fatalf("if without else must not count as a definite return")
	}
}

func TestTypeNodeIsNoOp(t *testing.T) {
	var out strings.Builder
	az := New(&out)
	returns := az.analyzeNode(node(ast.Type))

	if returns {
		t.Fatalf("a Type node must never count as a definite return")
	}
	if az.Errors() != 0 {
		t.Fatalf("expected no errors analyzing a Type node, got:\n%s", out.String())
	}
}

func TestCallTooManyArguments(t *testing.T) {
	param := node(ast.Param)
	param.Name = "x"
	param.DataType = ast.Int

	fn := node(ast.FuncDef)
	fn.Name = "f"
	fn.DataType = ast.Void
	fn.Params = param
	retNode := node(ast.Return)
	body := node(ast.Block)
	body.Left = retNode
	fn.Body = body

	badCall := node(ast.FuncCall)
	badCall.Name = "f"
	badCall.Left = link(intConst(1), intConst(2)) // too many args

	var out strings.Builder
	az := New(&out)
	az.Analyze(link(fn))
	az.analyzeNode(badCall)

	if !strings.Contains(out.String(), "Too many arguments") {
		t.Fatalf("expected too-many-arguments diagnostic, got:\n%s", out.String())
	}
}
