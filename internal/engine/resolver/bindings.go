package resolver

import "javaindex/internal/engine/syntax"

// Binding is one declared name: its identity, declared type, declaring name
// node and every node that referenced it, in visitation order.
type Binding struct {
	ID           BindingID
	Name         string
	DeclaredType string
	Declaration  *syntax.Node
	TypeNode     *syntax.Node
	References   []*syntax.Node
}

type bindingRegistry struct {
	nextID   BindingID
	bindings []*Binding
	scopes   *scopeManager
}

func newBindingRegistry(scopes *scopeManager) *bindingRegistry {
	return &bindingRegistry{scopes: scopes}
}

// assign mints the next id for the declaration of nameNode inside decl and
// makes it visible through the scope manager.
func (r *bindingRegistry) assign(decl, nameNode *syntax.Node, declaredType string) *Binding {
	b := &Binding{
		ID:           r.nextID,
		Name:         nameNode.Text,
		DeclaredType: declaredType,
		Declaration:  nameNode,
		References:   []*syntax.Node{},
	}
	r.nextID++
	r.bindings = append(r.bindings, b)
	r.scopes.declare(decl, nameNode.Text, b.ID)
	return b
}

func (r *bindingRegistry) recordReference(id BindingID, ref *syntax.Node) {
	b := r.get(id)
	if b == nil {
		return
	}
	b.References = append(b.References, ref)
}

func (r *bindingRegistry) get(id BindingID) *Binding {
	if int(id) >= len(r.bindings) {
		return nil
	}
	return r.bindings[id]
}
