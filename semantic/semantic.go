// Package semantic implements the analyzer that walks a parsed program,
// binds every name through a [symtable.Table], checks types, and
// annotates each expression [ast.Node] with its [ast.DataType] in place.
//
// The analyzer never returns a Go error: malformed input is reported as
// counted diagnostics written to a configurable stream, matching the
// reference implementation's continue-on-error behavior. Callers decide
// whether to proceed to IR generation by checking [Analyzer.Errors].
package semantic

import (
	"fmt"
	"io"
	"os"

	"github.com/dr8co/tacc/ast"
	"github.com/dr8co/tacc/symtable"
)

// Analyzer performs a single top-to-bottom pass over a program.
type Analyzer struct {
	table   *symtable.Table
	errors  int
	out     io.Writer
	current *symtable.Symbol // enclosing function, nil at top level

	// Trace, when non-nil, receives one line per variable declaration
	// as it is bound, mirroring the reference implementation's debug
	// trace. Diagnostics always go to the writer given to New,
	// regardless of Trace.
	Trace io.Writer
}

// New creates an Analyzer that reports diagnostics to out. A nil out
// defaults to os.Stderr.
func New(out io.Writer) *Analyzer {
	if out == nil {
		out = os.Stderr
	}
	return &Analyzer{table: symtable.New(), out: out}
}

// Table exposes the symbol table built up during analysis, so callers
// can render it with [symtable.Table.Dump] after Analyze returns.
func (a *Analyzer) Table() *symtable.Table { return a.table }

// Errors reports how many semantic errors have been recorded so far.
func (a *Analyzer) Errors() int { return a.errors }

func (a *Analyzer) errorf(line int, format string, args ...any) {
	fmt.Fprintf(a.out, "Semantic Error (line %d): %s\n", line, fmt.Sprintf(format, args...))
	a.errors++
}

// Analyze walks every top-level declaration in program (a Next-linked
// list of FuncDef/VarDecl nodes), resolving and type-checking as it goes.
func (a *Analyzer) Analyze(program *ast.Node) {
	a.analyzeList(program)
}

// analyzeList walks a Next-linked sibling list, returning true once any
// element in the list definitely returns — matching the reference
// implementation, it stops analyzing (and so leaves later siblings
// unannotated) as soon as one does.
func (a *Analyzer) analyzeList(n *ast.Node) bool {
	for cur := n; cur != nil; cur = cur.Next {
		if a.analyzeNode(cur) {
			return true
		}
	}
	return false
}

func (a *Analyzer) analyzeNode(n *ast.Node) bool {
	if n == nil {
		return false
	}
	switch n.Kind {
	case ast.FuncDef:
		a.analyzeFunction(n)
		return false
	case ast.VarDecl:
		a.analyzeDeclaration(n)
		return false
	case ast.Block:
		return a.analyzeBlock(n)
	case ast.If:
		return a.analyzeIf(n)
	case ast.While:
		a.analyzeWhile(n)
		return false
	case ast.For:
		a.analyzeFor(n)
		return false
	case ast.Return:
		return a.analyzeReturn(n)
	case ast.Assign:
		a.analyzeAssignment(n)
		return false
	case ast.BinOp:
		a.analyzeBinary(n)
		return false
	case ast.UnOp:
		a.analyzeUnary(n)
		return false
	case ast.FuncCall:
		a.analyzeCall(n)
		return false
	case ast.ConstInt:
		n.DataType = ast.Int
		return false
	case ast.ConstChar:
		n.DataType = ast.Char
		return false
	case ast.StrLit:
		// Simplification carried from the reference implementation:
		// string literals type-check as char and lower to a placeholder
		// constant; there is no string table.
		n.DataType = ast.Char
		return false
	case ast.Var:
		a.analyzeVariable(n)
		return false
	case ast.Param, ast.Type, ast.Empty:
		return false
	default:
		panic(fmt.Sprintf("semantic: unhandled node kind %s", n.Kind))
	}
}

func (a *Analyzer) analyzeFunction(n *ast.Node) {
	sym := &symtable.Symbol{
		Name: n.Name,
		Type: n.DataType,
		Kind: symtable.Function,
		Line: n.Line,
	}
	for p := n.Params; p != nil; p = p.Next {
		sym.ParamTypes = append(sym.ParamTypes, p.DataType)
	}
	if !a.table.Insert(sym) {
		a.errorf(n.Line, "Function redeclared: %s", n.Name)
		return
	}

	prevFunc := a.current
	a.current = sym
	a.table.EnterScope()

	for p := n.Params; p != nil; p = p.Next {
		paramSym := &symtable.Symbol{Name: p.Name, Type: p.DataType, Kind: symtable.Parameter, Line: p.Line}
		if !a.table.Insert(paramSym) {
			a.errorf(p.Line, "Parameter redeclared: %s", p.Name)
		}
	}

	bodyReturns := a.analyzeNode(n.Body)
	if sym.Type != ast.Void && !bodyReturns {
		a.errorf(n.Line, "Non-void function must return a value")
	}

	a.table.ExitScope()
	a.current = prevFunc
}

func (a *Analyzer) analyzeDeclaration(n *ast.Node) {
	sym := &symtable.Symbol{Name: n.Name, Type: n.DataType, Kind: symtable.Variable, Line: n.Line}
	if !a.table.Insert(sym) {
		a.errorf(n.Line, "Variable redeclared: %s", n.Name)
	} else if a.Trace != nil {
		fmt.Fprintf(a.Trace, "Declaring %s at scope level %d\n", n.Name, a.table.Current.Level)
	}

	if n.Right != nil {
		a.analyzeNode(n.Right)
		if n.Right.DataType != n.DataType {
			a.errorf(n.Line, "Type mismatch in initialization")
		}
	}
}

func (a *Analyzer) analyzeBlock(n *ast.Node) bool {
	a.table.EnterScope()
	returns := a.analyzeList(n.Left)
	a.table.ExitScope()
	return returns
}

func (a *Analyzer) analyzeIf(n *ast.Node) bool {
	a.analyzeNode(n.Cond)
	if n.Cond.DataType == ast.Void {
		a.errorf(n.Line, "Invalid condition type")
	}
	thenReturns := a.analyzeNode(n.Left)
	elseReturns := false
	if n.Right != nil {
		elseReturns = a.analyzeNode(n.Right)
	}
	return thenReturns && elseReturns
}

func (a *Analyzer) analyzeWhile(n *ast.Node) {
	a.analyzeNode(n.Cond)
	if n.Cond.DataType == ast.Void {
		a.errorf(n.Line, "Invalid condition type")
	}
	a.analyzeNode(n.Body)
}

func (a *Analyzer) analyzeFor(n *ast.Node) {
	if n.Init != nil {
		a.analyzeNode(n.Init)
	}
	if n.Cond != nil {
		a.analyzeNode(n.Cond)
		if n.Cond.DataType == ast.Void {
			a.errorf(n.Line, "Invalid condition type")
		}
	}
	if n.Incr != nil {
		a.analyzeNode(n.Incr)
	}
	a.analyzeNode(n.Body)
}

func (a *Analyzer) analyzeReturn(n *ast.Node) bool {
	if a.current == nil {
		a.errorf(n.Line, "Return outside function")
		return true
	}
	if n.Left != nil {
		a.analyzeNode(n.Left)
		if n.Left.DataType != a.current.Type {
			a.errorf(n.Line, "Return type mismatch")
		}
	} else if a.current.Type != ast.Void {
		a.errorf(n.Line, "Return type mismatch")
	}
	return true
}

func (a *Analyzer) analyzeAssignment(n *ast.Node) {
	a.analyzeNode(n.Left)
	a.analyzeNode(n.Right)
	if n.Left.DataType == ast.Void || n.Right.DataType == ast.Void {
		n.DataType = n.Left.DataType
		return
	}
	if n.Left.DataType != n.Right.DataType {
		a.errorf(n.Line, "Assignment type mismatch")
	}
	n.DataType = n.Left.DataType
}

func (a *Analyzer) analyzeBinary(n *ast.Node) {
	a.analyzeNode(n.Left)
	a.analyzeNode(n.Right)
	if n.Left.DataType == ast.Void || n.Right.DataType == ast.Void {
		n.DataType = ast.Void
		return
	}
	if n.Left.DataType != n.Right.DataType {
		a.errorf(n.Line, "Binary operand type mismatch")
	}
	n.DataType = n.Left.DataType
}

func (a *Analyzer) analyzeUnary(n *ast.Node) {
	a.analyzeNode(n.Left)
	n.DataType = n.Left.DataType
}

func (a *Analyzer) analyzeCall(n *ast.Node) {
	sym, found := a.table.Lookup(n.Name)
	if !found || sym.Kind != symtable.Function {
		a.errorf(n.Line, "Undeclared function: %s", n.Name)
		n.DataType = ast.Int
		return
	}

	i := 0
	for arg := n.Left; arg != nil; arg = arg.Next {
		a.analyzeNode(arg)
		if i >= len(sym.ParamTypes) {
			a.errorf(arg.Line, "Too many arguments to %s", n.Name)
		} else if arg.DataType != sym.ParamTypes[i] {
			a.errorf(arg.Line, "Argument type mismatch in call to %s", n.Name)
		}
		i++
	}
	if i < len(sym.ParamTypes) {
		a.errorf(n.Line, "Too few arguments to %s", n.Name)
	}
	n.DataType = sym.Type
}

func (a *Analyzer) analyzeVariable(n *ast.Node) {
	sym, found := a.table.Lookup(n.Name)
	if !found {
		a.errorf(n.Line, "Undeclared variable: %s", n.Name)
		n.DataType = ast.Int
		return
	}
	n.DataType = sym.Type
}
