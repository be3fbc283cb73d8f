package resolver

import (
	"maps"

	"javaindex/internal/engine/syntax"
)

// BindingID identifies one declaration within a single resolution.
type BindingID uint32

// scope maps a visible short name to the binding it denotes.
type scope map[string]BindingID

// scopeManager keeps one scope per visited node. A node's scope starts as a
// full copy of its parent's scope at entry, so sibling subtrees never share
// mutable state.
type scopeManager struct {
	scopes map[*syntax.Node]scope
}

func newScopeManager() *scopeManager {
	return &scopeManager{scopes: make(map[*syntax.Node]scope)}
}

func (m *scopeManager) open(node *syntax.Node) {
	if node.Parent != nil {
		if parent, ok := m.scopes[node.Parent]; ok {
			m.scopes[node] = maps.Clone(parent)
			return
		}
	}
	m.scopes[node] = make(scope)
}

// declare makes name visible in node's own scope and in its parent's scope,
// so siblings entered after the declaring statement observe it.
func (m *scopeManager) declare(node *syntax.Node, name string, id BindingID) {
	if s, ok := m.scopes[node]; ok {
		s[name] = id
	}
	if node.Parent != nil {
		if s, ok := m.scopes[node.Parent]; ok {
			s[name] = id
		}
	}
}

func (m *scopeManager) resolve(node *syntax.Node, name string) (BindingID, bool) {
	s, ok := m.scopes[node]
	if !ok {
		return 0, false
	}
	id, ok := s[name]
	return id, ok
}

func (m *scopeManager) snapshot(node *syntax.Node) map[string]BindingID {
	s, ok := m.scopes[node]
	if !ok {
		return nil
	}
	return maps.Clone(map[string]BindingID(s))
}
