package parser

import "github.com/cordy-lang/cordy/lang/ast"

// local is one declared name within a function scope.
type local struct {
	name   string
	depth  int
	slot   int  // permanent index into the function's local-slot array
	isCell bool // lifted into a Cell because a nested function captures it
}

// funcScope tracks the locals and upvalues of one function being parsed,
// linked to its lexically enclosing function so identifier resolution can
// walk outward the same way a standard single-pass closure compiler does
// (see Crafting Interpreters' Compiler chain, adapted here to match the
// upvalue-cell model used by lang/vm).
type funcScope struct {
	parent    *funcScope
	locals    []*local // active locals, shrinks as blocks end
	allLocals []*local // every local ever declared, for final slot counting
	upvalues  []ast.FreeVarDescriptor
	blockDepth int
	loopDepth int
}

func newFuncScope(parent *funcScope) *funcScope {
	return &funcScope{parent: parent}
}

func (f *funcScope) beginBlock() { f.blockDepth++ }

func (f *funcScope) endBlock() {
	f.blockDepth--
	for len(f.locals) > 0 && f.locals[len(f.locals)-1].depth > f.blockDepth {
		f.locals = f.locals[:len(f.locals)-1]
	}
}

// declare adds a new local in the current block, returning its permanent
// slot index. conflict is true if a local with the same name already
// exists at the current block depth (shadowing an outer block is fine;
// redeclaring within the same block is not).
func (f *funcScope) declare(name string) (int, bool) {
	for i := len(f.locals) - 1; i >= 0; i-- {
		l := f.locals[i]
		if l.depth < f.blockDepth {
			break
		}
		if l.name == name {
			return l.slot, true
		}
	}
	l := &local{name: name, depth: f.blockDepth, slot: len(f.allLocals)}
	f.allLocals = append(f.allLocals, l)
	f.locals = append(f.locals, l)
	return l.slot, false
}

// resolveLocal looks up name in this function's own locals only.
func (f *funcScope) resolveLocal(name string) (int, bool) {
	for i := len(f.locals) - 1; i >= 0; i-- {
		if f.locals[i].name == name {
			return f.locals[i].slot, true
		}
	}
	return -1, false
}

// markCellBySlot marks the local at the given permanent slot as captured.
func (f *funcScope) markCellBySlot(slot int) {
	if slot >= 0 && slot < len(f.allLocals) {
		f.allLocals[slot].isCell = true
	}
}

// resolveUpvalue resolves name against enclosing function scopes,
// registering (and deduplicating) an upvalue descriptor chain as it goes.
// Any local captured this way is marked isCell so codegen knows to lift it
// with CloseLocal rather than treat it as a plain stack slot.
func (f *funcScope) resolveUpvalue(name string) (int, bool) {
	if f.parent == nil {
		return -1, false
	}
	if idx, ok := f.parent.resolveLocal(name); ok {
		f.parent.markCellBySlot(idx)
		return f.addUpvalue(name, false, idx), true
	}
	if idx, ok := f.parent.resolveUpvalue(name); ok {
		return f.addUpvalue(name, true, idx), true
	}
	return -1, false
}

func (f *funcScope) addUpvalue(name string, fromUpValue bool, index int) int {
	for i, uv := range f.upvalues {
		if uv.Name == name && uv.FromUpValue == fromUpValue && uv.Index == index {
			return i
		}
	}
	f.upvalues = append(f.upvalues, ast.FreeVarDescriptor{Name: name, FromUpValue: fromUpValue, Index: index})
	return len(f.upvalues) - 1
}

// cellLocals returns the indices of this function's locals that ended up
// captured by a nested closure, for Funcode.CellLocals.
func (f *funcScope) cellLocals() []int {
	var out []int
	for _, l := range f.allLocals {
		if l.isCell {
			out = append(out, l.slot)
		}
	}
	return out
}

// numLocals is the total number of distinct local slots ever declared in
// this function (including ones whose block has since ended).
func (f *funcScope) numLocals() int { return len(f.allLocals) }
