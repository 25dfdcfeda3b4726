package ir

import (
	"fmt"

	"github.com/dr8co/tacc/ast"
)

// Generator lowers an analyzed AST into a [Program]. It must only be run
// over a tree that has already passed semantic analysis: it trusts every
// node's DataType and every Var/FuncCall's resolved binding.
type Generator struct {
	tempCounter  int
	labelCounter int
}

// Generate lowers program (a Next-linked list of top-level FuncDef and
// VarDecl nodes) into a [Program]. Functions are emitted in source
// order; global initializers are emitted in source order as well (the
// reference implementation prepends both, yielding reverse order —
// spec permits either, and source order is simpler to test against).
func Generate(program *ast.Node) Program {
	g := &Generator{}
	var p Program
	for n := program; n != nil; n = n.Next {
		switch n.Kind {
		case ast.FuncDef:
			p.Funcs = append(p.Funcs, g.genFunc(n))
		case ast.VarDecl:
			if n.Right != nil {
				val := g.genExpr(n.Right, &p.GlobalInstrs)
				p.GlobalInstrs = append(p.GlobalInstrs, Instr{Op: Assign, Line: n.Line, Result: Name(n.Name), Src: val})
			}
		}
	}
	return p
}

func (g *Generator) newTemp() Operand {
	name := fmt.Sprintf("t%d", g.tempCounter)
	g.tempCounter++
	return Name(name)
}

func (g *Generator) newLabel() string {
	name := fmt.Sprintf("L%d", g.labelCounter)
	g.labelCounter++
	return name
}

func (g *Generator) resetCounters() {
	g.tempCounter = 0
	g.labelCounter = 0
}

func (g *Generator) genFunc(n *ast.Node) Func {
	g.resetCounters()
	f := Func{Name: n.Name, RetType: n.DataType}
	g.genStmt(n.Body, &f.Instrs)
	return f
}

// genStmt lowers a statement node for its side effects, appending
// instructions to *list.
func (g *Generator) genStmt(n *ast.Node, list *[]Instr) {
	if n == nil {
		return
	}
	switch n.Kind {
	case ast.Empty, ast.Type:
		// no-op
	case ast.Block:
		for s := n.Left; s != nil; s = s.Next {
			g.genStmt(s, list)
		}
	case ast.If:
		g.genIf(n, list)
	case ast.While:
		g.genWhile(n, list)
	case ast.For:
		g.genFor(n, list)
	case ast.Return:
		g.genReturn(n, list)
	case ast.VarDecl:
		if n.Right != nil {
			val := g.genExpr(n.Right, list)
			*list = append(*list, Instr{Op: Assign, Line: n.Line, Result: Name(n.Name), Src: val})
		}
	default:
		// An expression used as a statement (assignment, call, bare
		// arithmetic): evaluate for side effects and discard the result.
		g.genExpr(n, list)
	}
}

func (g *Generator) genIf(n *ast.Node, list *[]Instr) {
	lThen := g.newLabel()
	lEnd := g.newLabel()
	lElse := lEnd
	if n.Right != nil {
		lElse = g.newLabel()
	}

	g.genCond(n.Cond, lThen, lElse, list)
	*list = append(*list, Instr{Op: Label, Label: lThen})
	g.genStmt(n.Left, list)

	if n.Right != nil {
		*list = append(*list, Instr{Op: Goto, Label: lEnd})
		*list = append(*list, Instr{Op: Label, Label: lElse})
		g.genStmt(n.Right, list)
	}
	*list = append(*list, Instr{Op: Label, Label: lEnd})
}

func (g *Generator) genWhile(n *ast.Node, list *[]Instr) {
	lCond := g.newLabel()
	lBody := g.newLabel()
	lEnd := g.newLabel()

	*list = append(*list, Instr{Op: Label, Label: lCond})
	g.genCond(n.Cond, lBody, lEnd, list)
	*list = append(*list, Instr{Op: Label, Label: lBody})
	g.genStmt(n.Body, list)
	*list = append(*list, Instr{Op: Goto, Label: lCond})
	*list = append(*list, Instr{Op: Label, Label: lEnd})
}

func (g *Generator) genFor(n *ast.Node, list *[]Instr) {
	lCond := g.newLabel()
	lBody := g.newLabel()
	lEnd := g.newLabel()

	if n.Init != nil {
		g.genStmt(n.Init, list)
	}
	*list = append(*list, Instr{Op: Label, Label: lCond})
	if n.Cond != nil {
		g.genCond(n.Cond, lBody, lEnd, list)
	} else {
		*list = append(*list, Instr{Op: Goto, Label: lBody})
	}
	*list = append(*list, Instr{Op: Label, Label: lBody})
	g.genStmt(n.Body, list)
	// The increment is evaluated in value context whenever present and
	// its result is discarded.
	if n.Incr != nil {
		g.genExpr(n.Incr, list)
	}
	*list = append(*list, Instr{Op: Goto, Label: lCond})
	*list = append(*list, Instr{Op: Label, Label: lEnd})
}

func (g *Generator) genReturn(n *ast.Node, list *[]Instr) {
	if n.Left != nil {
		val := g.genExpr(n.Left, list)
		*list = append(*list, Instr{Op: Return, Line: n.Line, Src: val})
		return
	}
	*list = append(*list, Instr{Op: Return, Line: n.Line})
}

// genExpr lowers an expression node for its value, appending instructions
// to *list and returning the operand holding the result.
func (g *Generator) genExpr(n *ast.Node, list *[]Instr) Operand {
	if n == nil {
		return ConstInt(0)
	}
	switch n.Kind {
	case ast.ConstInt, ast.ConstChar:
		return ConstInt(n.IntVal)
	case ast.StrLit:
		return ConstInt(0)
	case ast.Var:
		return Name(n.Name)
	case ast.BinOp:
		return g.genBinary(n, list)
	case ast.UnOp:
		src := g.genExpr(n.Left, list)
		dst := g.newTemp()
		*list = append(*list, Instr{Op: UnOp, Line: n.Line, Result: dst, UnopSrc: src, Unop: n.Op})
		return dst
	case ast.Assign:
		val := g.genExpr(n.Right, list)
		*list = append(*list, Instr{Op: Assign, Line: n.Line, Result: Name(n.Left.Name), Src: val})
		return Name(n.Left.Name)
	case ast.FuncCall:
		return g.genCall(n, list)
	default:
		return ConstInt(0)
	}
}

func (g *Generator) genBinary(n *ast.Node, list *[]Instr) Operand {
	switch n.Op {
	case ast.And, ast.Or:
		dst := g.newTemp()
		lTrue, lFalse, lEnd := g.newLabel(), g.newLabel(), g.newLabel()
		*list = append(*list, Instr{Op: Assign, Result: dst, Src: ConstInt(0)})
		g.genCond(n, lTrue, lFalse, list)
		*list = append(*list, Instr{Op: Label, Label: lTrue})
		*list = append(*list, Instr{Op: Assign, Result: dst, Src: ConstInt(1)})
		*list = append(*list, Instr{Op: Goto, Label: lEnd})
		*list = append(*list, Instr{Op: Label, Label: lFalse})
		*list = append(*list, Instr{Op: Label, Label: lEnd})
		return dst
	case ast.Lt, ast.Gt, ast.Le, ast.Ge, ast.Eq, ast.Ne:
		lTrue, lEnd := g.newLabel(), g.newLabel()
		dst := g.newTemp()
		l := g.genExpr(n.Left, list)
		r := g.genExpr(n.Right, list)
		*list = append(*list, Instr{Op: Assign, Result: dst, Src: ConstInt(0)})
		*list = append(*list, Instr{Op: IfRel, Left: l, Relop: RelopFromAST(n.Op), Right: r, Label: lTrue})
		*list = append(*list, Instr{Op: Goto, Label: lEnd})
		*list = append(*list, Instr{Op: Label, Label: lTrue})
		*list = append(*list, Instr{Op: Assign, Result: dst, Src: ConstInt(1)})
		*list = append(*list, Instr{Op: Label, Label: lEnd})
		return dst
	default:
		l := g.genExpr(n.Left, list)
		r := g.genExpr(n.Right, list)
		dst := g.newTemp()
		*list = append(*list, Instr{Op: BinOp, Line: n.Line, Result: dst, Left: l, BinOp: n.Op, Right: r})
		return dst
	}
}

func (g *Generator) genCall(n *ast.Node, list *[]Instr) Operand {
	nargs := 0
	for arg := n.Left; arg != nil; arg = arg.Next {
		val := g.genExpr(arg, list)
		*list = append(*list, Instr{Op: Param, Src: val})
		nargs++
	}
	if n.DataType == ast.Void {
		*list = append(*list, Instr{Op: Call, Line: n.Line, CallFn: n.Name, ArgCount: nargs})
		return ConstInt(0)
	}
	dst := g.newTemp()
	*list = append(*list, Instr{Op: Call, Line: n.Line, Result: dst, CallFn: n.Name, ArgCount: nargs})
	return dst
}

// genCond lowers n in jump context: it emits code that transfers control
// to trueLabel if n is nonzero, falseLabel otherwise, without ever
// materializing n's value into a temp unless n has no logical shortcut
// (the "jumping code" translation of boolean expressions).
func (g *Generator) genCond(n *ast.Node, trueLabel, falseLabel string, list *[]Instr) {
	if n == nil {
		*list = append(*list, Instr{Op: Goto, Label: trueLabel})
		return
	}
	switch n.Kind {
	case ast.ConstInt, ast.ConstChar:
		if n.IntVal != 0 {
			*list = append(*list, Instr{Op: Goto, Label: trueLabel})
		} else {
			*list = append(*list, Instr{Op: Goto, Label: falseLabel})
		}
	case ast.Var:
		*list = append(*list, Instr{Op: IfRel, Left: Name(n.Name), Relop: NE, Right: ConstInt(0), Label: trueLabel})
		*list = append(*list, Instr{Op: Goto, Label: falseLabel})
	case ast.BinOp:
		g.genCondBinary(n, trueLabel, falseLabel, list)
	case ast.UnOp:
		if n.Op == ast.Not {
			g.genCond(n.Left, falseLabel, trueLabel, list)
			return
		}
		g.genCondFallback(n, trueLabel, falseLabel, list)
	default:
		g.genCondFallback(n, trueLabel, falseLabel, list)
	}
}

func (g *Generator) genCondBinary(n *ast.Node, trueLabel, falseLabel string, list *[]Instr) {
	switch n.Op {
	case ast.And:
		mid := g.newLabel()
		g.genCond(n.Left, mid, falseLabel, list)
		*list = append(*list, Instr{Op: Label, Label: mid})
		g.genCond(n.Right, trueLabel, falseLabel, list)
	case ast.Or:
		mid := g.newLabel()
		g.genCond(n.Left, trueLabel, mid, list)
		*list = append(*list, Instr{Op: Label, Label: mid})
		g.genCond(n.Right, trueLabel, falseLabel, list)
	case ast.Lt, ast.Gt, ast.Le, ast.Ge, ast.Eq, ast.Ne:
		l := g.genExpr(n.Left, list)
		r := g.genExpr(n.Right, list)
		*list = append(*list, Instr{Op: IfRel, Line: n.Line, Left: l, Relop: RelopFromAST(n.Op), Right: r, Label: trueLabel})
		*list = append(*list, Instr{Op: Goto, Label: falseLabel})
	default:
		g.genCondFallback(n, trueLabel, falseLabel, list)
	}
}

// genCondFallback handles a condition that isn't a comparison or a
// logical connective (e.g. plain arithmetic, or a function call): the
// value is materialized and tested against zero.
func (g *Generator) genCondFallback(n *ast.Node, trueLabel, falseLabel string, list *[]Instr) {
	val := g.genExpr(n, list)
	*list = append(*list, Instr{Op: IfRel, Left: val, Relop: NE, Right: ConstInt(0), Label: trueLabel})
	*list = append(*list, Instr{Op: Goto, Label: falseLabel})
}
