package resolver

import (
	"javaindex/internal/core/errors"
	"javaindex/internal/engine/syntax"
)

// Resolver performs one forward pre-order walk over a compilation unit. It
// types declared variables, binds later simple-name uses to the nearest
// visible declaration, and qualifies every type-reference node.
//
// A Resolver owns all of its state and resolves exactly one tree. Run one
// instance per file; instances share nothing and need no locking.
type Resolver struct {
	scopes     *scopeManager
	bindings   *bindingRegistry
	imports    *ImportTable
	namer      *typeNamer
	packageSet bool

	typeNames   map[*syntax.Node]string
	importNodes map[*syntax.Node]string
	unresolved  int
	used        bool
}

type Option func(*Resolver)

// WithClassLookup replaces the implicit-namespace lookup.
func WithClassLookup(lookup ClassLookup) Option {
	return func(r *Resolver) {
		if lookup != nil {
			r.namer.lookup = lookup
		}
	}
}

var defaultLookup = NewJavaLangLookup()

func New(opts ...Option) *Resolver {
	scopes := newScopeManager()
	imports := NewImportTable()
	r := &Resolver{
		scopes:      scopes,
		bindings:    newBindingRegistry(scopes),
		imports:     imports,
		namer:       &typeNamer{imports: imports, lookup: defaultLookup},
		typeNames:   make(map[*syntax.Node]string),
		importNodes: make(map[*syntax.Node]string),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve walks root and returns the collected facts. An error is returned
// only when the implicit-namespace lookup fails with something other than
// NOT_FOUND; the caller is expected to skip the file.
func (r *Resolver) Resolve(root *syntax.Node) (*Result, error) {
	if r.used {
		return nil, errors.New(errors.CodeInternal, "resolver already used; create one per compilation unit")
	}
	r.used = true
	if root == nil {
		return nil, errors.New(errors.CodeValidationError, "nil syntax tree")
	}

	if err := r.walk(root); err != nil {
		return nil, err
	}
	return newResult(r), nil
}

// Qualify resolves a short type name against the state accumulated so far.
func (r *Resolver) Qualify(short string) (string, error) {
	return r.namer.qualify(short)
}

func (r *Resolver) walk(node *syntax.Node) error {
	r.scopes.open(node)
	descend, err := r.visit(node)
	if err != nil {
		return errors.AddContext(err, "line", node.Start.Line)
	}
	if !descend {
		return nil
	}
	for _, child := range node.Children {
		if err := r.walk(child); err != nil {
			return err
		}
	}
	return nil
}

func (r *Resolver) visit(node *syntax.Node) (bool, error) {
	switch node.Kind {
	case syntax.KindPackage:
		if !r.packageSet {
			r.namer.pkg = nameText(node)
			r.packageSet = true
		}
		return false, nil

	case syntax.KindImport:
		if !node.Static {
			qn := nameText(node)
			r.imports.Add(qn, false)
			if nameNode := node.Child(syntax.FieldName); nameNode != nil {
				r.importNodes[nameNode] = qn
			}
		}
		return false, nil

	case syntax.KindField, syntax.KindLocalVariable, syntax.KindVariableExpression:
		typ := node.Child(syntax.FieldType)
		declared, err := r.namer.nameOf(typ, true)
		if err != nil {
			return false, err
		}
		for _, frag := range node.ChildrenOf(syntax.FieldDeclarator) {
			if nameNode := frag.Child(syntax.FieldName); nameNode != nil {
				b := r.bindings.assign(node, nameNode, declared)
				b.TypeNode = typ
			}
		}
		return true, nil

	case syntax.KindParameter:
		nameNode := node.Child(syntax.FieldName)
		if nameNode == nil {
			return true, nil
		}
		typ := node.Child(syntax.FieldType)
		declared, err := r.namer.nameOf(typ, true)
		if err != nil {
			return false, err
		}
		b := r.bindings.assign(node, nameNode, declared)
		b.TypeNode = typ
		return true, nil

	case syntax.KindEnumConstant:
		nameNode := node.Child(syntax.FieldName)
		if nameNode == nil {
			return true, nil
		}
		enumName := ""
		if enum := node.Ancestor(syntax.KindEnum); enum != nil {
			enumName = nameText(enum)
		}
		qn, err := r.namer.qualify(enumName)
		if err != nil {
			return false, err
		}
		r.bindings.assign(node, nameNode, qn+"."+nameNode.Text)
		return true, nil

	case syntax.KindSimpleName:
		if isMethodNameToken(node) {
			return true, nil
		}
		if id, ok := r.scopes.resolve(node, node.Text); ok {
			r.bindings.recordReference(id, node)
		} else {
			r.unresolved++
		}
		return true, nil

	case syntax.KindOther, syntax.KindCompilationUnit, syntax.KindTypeDecl, syntax.KindEnum,
		syntax.KindMethod, syntax.KindLambda, syntax.KindBlock, syntax.KindFragment,
		syntax.KindQualifiedName, syntax.KindMethodInvocation:
		return true, nil
	}

	if node.Kind.IsType() {
		name, err := r.namer.nameOf(node, false)
		if err != nil {
			return false, err
		}
		r.typeNames[node] = name
	}
	return true, nil
}

// isMethodNameToken reports whether a simple name is the invoked name of a
// call or the declared name of a method. Neither refers to a variable.
func isMethodNameToken(node *syntax.Node) bool {
	parent := node.Parent
	if parent == nil {
		return false
	}
	switch parent.Kind {
	case syntax.KindMethodInvocation:
		return parent.Child(syntax.FieldName) == node
	case syntax.KindMethod:
		return true
	}
	return false
}

func nameText(node *syntax.Node) string {
	if name := node.Child(syntax.FieldName); name != nil {
		return name.Text
	}
	return node.Text
}
