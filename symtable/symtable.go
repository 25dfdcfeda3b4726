// Package symtable implements a scoped symbol table: a stack of hash
// tables, one per lexical scope, chained to their enclosing scope for
// lookup.
//
// Scopes are never freed when they are exited — Table retains every
// scope it has ever opened, most recently opened first, so a completed analysis
// can still be dumped in full (see [Table.Dump]).
package symtable

import (
	"fmt"
	"io"
	"strings"

	"github.com/dr8co/tacc/ast"
)

// TableSize is the bucket count of every scope's hash table.
const TableSize = 200

// Kind classifies what a [Symbol] denotes.
type Kind int

//nolint:revive
const (
	Variable Kind = iota
	Function
	Parameter
	Constant
	Keyword
)

func (k Kind) String() string {
	switch k {
	case Variable:
		return "VARIABLE"
	case Function:
		return "FUNCTION"
	case Parameter:
		return "PARAMETER"
	case Constant:
		return "CONSTANT"
	case Keyword:
		return "KEYWORD"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Symbol is one entry in a scope's bucket chain.
type Symbol struct {
	Name       string
	Type       ast.DataType
	Kind       Kind
	Line       int
	ScopeLevel int

	// ParamTypes holds the declared parameter types, in order, for a
	// Function symbol. Nil for every other Kind.
	ParamTypes []ast.DataType

	next *Symbol // next entry in the same bucket, most-recently-inserted first
}

// Scope is one lexical level: a fixed-size bucket array plus a link to
// its enclosing scope.
type Scope struct {
	buckets [TableSize]*Symbol
	Level   int
	Parent  *Scope
}

// Table is a stack of scopes rooted at the global scope, plus every
// scope ever opened (for [Table.Dump]).
type Table struct {
	Current   *Scope
	allScopes []*Scope // most-recently-opened first
}

// New creates a symbol table with its global scope already entered,
// mirroring the reference implementation's init_symbol_table.
func New() *Table {
	t := &Table{}
	t.EnterScope()
	return t
}

func hash(key string) int {
	h := 0
	for i := 0; i < len(key); i++ {
		h = (h << 4) + int(key[i])
	}
	if h < 0 {
		h = -h
	}
	return h % TableSize
}

// EnterScope pushes a new, empty scope whose parent is the current
// scope, and makes it current.
func (t *Table) EnterScope() {
	s := &Scope{Parent: t.Current}
	if t.Current != nil {
		s.Level = t.Current.Level + 1
	}
	t.Current = s
	t.allScopes = append([]*Scope{s}, t.allScopes...)
}

// ExitScope pops the current scope, making its parent current. It does
// not discard the scope: it remains reachable through allScopes for
// [Table.Dump]. Calling ExitScope on the global scope leaves the table
// with no current scope; once there is no current scope, ExitScope is a
// no-op.
func (t *Table) ExitScope() {
	if t.Current == nil {
		return
	}
	t.Current = t.Current.Parent
}

// Insert adds sym to the current scope. It reports false without
// modifying the scope if a symbol with the same name already exists in
// the current scope (shadowing an outer scope's symbol is allowed;
// redeclaring within the same scope is not).
func (t *Table) Insert(sym *Symbol) bool {
	if t.Current == nil {
		return false
	}
	sym.ScopeLevel = t.Current.Level
	idx := hash(sym.Name)
	for s := t.Current.buckets[idx]; s != nil; s = s.next {
		if s.Name == sym.Name {
			return false
		}
	}
	sym.next = t.Current.buckets[idx]
	t.Current.buckets[idx] = sym
	return true
}

// LookupCurrent searches only the current scope.
func (t *Table) LookupCurrent(name string) (*Symbol, bool) {
	if t.Current == nil {
		return nil, false
	}
	for s := t.Current.buckets[hash(name)]; s != nil; s = s.next {
		if s.Name == name {
			return s, true
		}
	}
	return nil, false
}

// Lookup searches the current scope, then each enclosing scope in turn.
func (t *Table) Lookup(name string) (*Symbol, bool) {
	idx := hash(name)
	for scope := t.Current; scope != nil; scope = scope.Parent {
		for s := scope.buckets[idx]; s != nil; s = s.next {
			if s.Name == name {
				return s, true
			}
		}
	}
	return nil, false
}

// Dump renders every scope this table has ever opened, most recently
// opened first, in the format the reference implementation's
// print_symbol_table/print_scope produce.
func (t *Table) Dump(w io.Writer) {
	fmt.Fprintln(w, "==================== SYMBOL TABLE ====================")
	for i, scope := range t.allScopes {
		if i > 0 {
			fmt.Fprintln(w, "-------------------------------------------------------")
		}
		printScope(w, scope)
	}
	fmt.Fprintln(w, "=======================================================")
}

func printScope(w io.Writer, scope *Scope) {
	fmt.Fprintf(w, "Scope Level: %d\n", scope.Level)
	for _, head := range scope.buckets {
		for s := head; s != nil; s = s.next {
			fmt.Fprintf(w, "Name: %-10s | Type: %-6s | Kind: %-9s | Line: %d | Scope: %d\n",
				s.Name, strings.ToLower(s.Type.String()), s.Kind, s.Line, s.ScopeLevel)
		}
	}
}
