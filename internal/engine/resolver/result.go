package resolver

import "javaindex/internal/engine/syntax"

// Result holds what one resolution learned about a compilation unit. It is
// read by the indexing stage and then discarded.
type Result struct {
	pkg         string
	imports     map[string]string
	importNodes map[*syntax.Node]string
	bindings    []*Binding
	typeNames   map[*syntax.Node]string
	scopes      *scopeManager
	unresolved  int
}

func newResult(r *Resolver) *Result {
	return &Result{
		pkg:         r.namer.pkg,
		imports:     r.imports.Entries(),
		importNodes: r.importNodes,
		bindings:    r.bindings.bindings,
		typeNames:   r.typeNames,
		scopes:      r.scopes,
		unresolved:  r.unresolved,
	}
}

// Package returns the compilation unit's package, or "" when none was declared.
func (res *Result) Package() string { return res.pkg }

// Imports maps short names to fully qualified names.
func (res *Result) Imports() map[string]string { return res.imports }

// ImportNodes maps each non-static import's name node to its qualified name.
func (res *Result) ImportNodes() map[*syntax.Node]string { return res.importNodes }

// Bindings returns every binding in id order.
func (res *Result) Bindings() []*Binding { return res.bindings }

// Binding returns the binding with the given id, or nil.
func (res *Result) Binding(id BindingID) *Binding {
	if int(id) >= len(res.bindings) {
		return nil
	}
	return res.bindings[id]
}

func (res *Result) DeclaredTypes() map[BindingID]string {
	out := make(map[BindingID]string, len(res.bindings))
	for _, b := range res.bindings {
		out[b.ID] = b.DeclaredType
	}
	return out
}

func (res *Result) References() map[BindingID][]*syntax.Node {
	out := make(map[BindingID][]*syntax.Node, len(res.bindings))
	for _, b := range res.bindings {
		out[b.ID] = b.References
	}
	return out
}

// Declarations maps each binding to its declared name node.
func (res *Result) Declarations() map[BindingID]*syntax.Node {
	out := make(map[BindingID]*syntax.Node, len(res.bindings))
	for _, b := range res.bindings {
		out[b.ID] = b.Declaration
	}
	return out
}

// DeclaredTypeNodes maps each binding that has an explicit type to that
// type node. Enum constants have none.
func (res *Result) DeclaredTypeNodes() map[BindingID]*syntax.Node {
	out := make(map[BindingID]*syntax.Node, len(res.bindings))
	for _, b := range res.bindings {
		if b.TypeNode != nil {
			out[b.ID] = b.TypeNode
		}
	}
	return out
}

// TypeNames maps every type-reference node to its qualified name.
func (res *Result) TypeNames() map[*syntax.Node]string { return res.typeNames }

// Scope returns a copy of the names visible at node when it was entered,
// including node's own declarations.
func (res *Result) Scope(node *syntax.Node) map[string]BindingID {
	return res.scopes.snapshot(node)
}

// BindingAt returns the binding a simple-name node was associated with.
func (res *Result) BindingAt(ref *syntax.Node) (*Binding, bool) {
	for _, b := range res.bindings {
		for _, n := range b.References {
			if n == ref {
				return b, true
			}
		}
	}
	return nil, false
}

// Unresolved counts simple names visited without a visible binding.
func (res *Result) Unresolved() int { return res.unresolved }
