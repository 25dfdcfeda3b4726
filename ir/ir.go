// Package ir defines the three-address code produced by the generator:
// a flat, linear instruction sequence per function plus a block of
// top-level global initializers, rendered in the textual form described
// by the language's IR dump format.
package ir

import (
	"fmt"
	"io"
	"strings"

	"github.com/dr8co/tacc/ast"
)

// Op discriminates the kinds of instruction an [Instr] can be.
type Op int

//nolint:revive
const (
	Assign Op = iota
	BinOp
	UnOp
	Param
	Call
	Return
	Label
	Goto
	IfRel
)

// Relop is the set of relational operators an IfRel instruction tests.
type Relop int

//nolint:revive
const (
	LT Relop = iota
	GT
	LE
	GE
	EQ
	NE
)

func (r Relop) String() string {
	switch r {
	case LT:
		return "<"
	case GT:
		return ">"
	case LE:
		return "<="
	case GE:
		return ">="
	case EQ:
		return "=="
	case NE:
		return "!="
	default:
		return "?"
	}
}

// RelopFromAST maps a binary comparison operator from the AST to the IR's
// Relop, mirroring the reference implementation's ast_relop_to_ir; any
// operator it doesn't recognize maps to EQ, matching that default.
func RelopFromAST(op ast.Op) Relop {
	switch op {
	case ast.Lt:
		return LT
	case ast.Gt:
		return GT
	case ast.Le:
		return LE
	case ast.Ge:
		return GE
	case ast.Eq:
		return EQ
	case ast.Ne:
		return NE
	default:
		return EQ
	}
}

// Operand is either a named place (a temp or a declared variable) or an
// integer constant.
type Operand struct {
	Name    string
	Const   int
	IsConst bool
}

// Name builds a named, non-constant operand.
func Name(name string) Operand { return Operand{Name: name} }

// ConstInt builds a constant operand.
func ConstInt(v int) Operand { return Operand{Const: v, IsConst: true} }

func (o Operand) String() string {
	if o.IsConst {
		return fmt.Sprintf("%d", o.Const)
	}
	return o.Name
}

// empty reports whether the operand was never set (used by Return to
// decide whether it carries a value).
func (o Operand) empty() bool { return !o.IsConst && o.Name == "" }

// Instr is a single three-address-code instruction. Every field is
// present regardless of Op, matching the reference implementation's flat
// IRInstr struct; which fields are meaningful is determined by Op.
type Instr struct {
	Op   Op
	Line int

	Result Operand // Assign, BinOp, UnOp, Call (optional)
	Src    Operand // Assign, Param, Return (optional)

	Left, Right Operand // BinOp operands, or IfRel operands
	BinOp       ast.Op  // BinOp operator

	UnopSrc Operand
	Unop    ast.Op // UnOp operator

	CallFn   string // Call
	ArgCount int    // Call

	Label string // Label, Goto, IfRel target

	Relop Relop // IfRel
}

func (i Instr) String() string {
	switch i.Op {
	case Assign:
		return fmt.Sprintf("  %s := %s", i.Result, i.Src)
	case BinOp:
		return fmt.Sprintf("  %s := %s %s %s", i.Result, i.Left, i.BinOp, i.Right)
	case UnOp:
		return fmt.Sprintf("  %s := %s %s", i.Result, i.Unop, i.UnopSrc)
	case Param:
		return fmt.Sprintf("  param %s", i.Src)
	case Call:
		if i.Result.empty() {
			return fmt.Sprintf("  call %s, %d", i.CallFn, i.ArgCount)
		}
		return fmt.Sprintf("  %s := call %s, %d", i.Result, i.CallFn, i.ArgCount)
	case Return:
		if i.Src.empty() {
			return "  return"
		}
		return fmt.Sprintf("  return %s", i.Src)
	case Label:
		return fmt.Sprintf("%s:", i.Label)
	case Goto:
		return fmt.Sprintf("  goto %s", i.Label)
	case IfRel:
		return fmt.Sprintf("  if %s %s %s goto %s", i.Left, i.Relop, i.Right, i.Label)
	default:
		return fmt.Sprintf("  <unknown op %d>", int(i.Op))
	}
}

// Func is one function's lowered body.
type Func struct {
	Name    string
	RetType ast.DataType
	Instrs  []Instr
}

func (f Func) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "function %s:\n", f.Name)
	for _, ins := range f.Instrs {
		fmt.Fprintln(&b, ins.String())
	}
	return b.String()
}

// Program is the full lowered translation unit: top-level global
// initializers followed by every function, in source order.
type Program struct {
	GlobalInstrs []Instr
	Funcs        []Func
}

func (p Program) String() string {
	var b strings.Builder
	b.WriteString("==================== IR PROGRAM ====================\n")
	if len(p.GlobalInstrs) > 0 {
		b.WriteString("function <globals>:\n")
		for _, ins := range p.GlobalInstrs {
			fmt.Fprintln(&b, ins.String())
		}
		b.WriteString("\n")
	}
	for _, f := range p.Funcs {
		b.WriteString(f.String())
		b.WriteString("\n")
	}
	b.WriteString("=====================================================\n")
	return b.String()
}

// Write renders the program to w in the same format String returns.
func (p Program) Write(w io.Writer) error {
	_, err := io.WriteString(w, p.String())
	return err
}

// WriteDOT renders a Graphviz view of each function's control-flow edges:
// one node per instruction, fallthrough edges between consecutive
// instructions (none after a Goto or Return), and jump edges to
// Goto/IfRel targets. Global initializers are not drawn. This has no
// counterpart in the reference implementation (which only ever exported
// the AST to DOT, not the lowered IR) but follows its digraph structure.
func (p Program) WriteDOT(w io.Writer) error {
	var b strings.Builder
	b.WriteString("digraph IR {\n  node [shape=box, fontname=\"monospace\"];\n")
	for _, f := range p.Funcs {
		writeFuncDOT(&b, f)
	}
	b.WriteString("}\n")
	_, err := io.WriteString(w, b.String())
	return err
}

func writeFuncDOT(b *strings.Builder, f Func) {
	prefix := f.Name
	labelIndex := map[string]int{}
	for i, ins := range f.Instrs {
		if ins.Op == Label {
			labelIndex[ins.Label] = i
		}
	}
	nodeID := func(i int) string { return fmt.Sprintf("%s_%d", prefix, i) }
	for i, ins := range f.Instrs {
		text := strings.ReplaceAll(ins.String(), `"`, `\"`)
		fmt.Fprintf(b, "  %s [label=\"%s\"];\n", nodeID(i), text)

		switch ins.Op {
		case Goto:
			if target, ok := labelIndex[ins.Label]; ok {
				fmt.Fprintf(b, "  %s -> %s;\n", nodeID(i), nodeID(target))
			}
		case IfRel:
			if target, ok := labelIndex[ins.Label]; ok {
				fmt.Fprintf(b, "  %s -> %s [label=\"true\"];\n", nodeID(i), nodeID(target))
			}
			if i+1 < len(f.Instrs) {
				fmt.Fprintf(b, "  %s -> %s [label=\"false\"];\n", nodeID(i), nodeID(i+1))
			}
		case Return:
			// terminal, no fallthrough edge
		default:
			if i+1 < len(f.Instrs) {
				fmt.Fprintf(b, "  %s -> %s;\n", nodeID(i), nodeID(i+1))
			}
		}
	}
}
