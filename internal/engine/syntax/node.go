package syntax

import "slices"

// Kind identifies the syntactic category of a Node. The set is closed; the
// resolver switches over it exhaustively.
type Kind int

const (
	KindOther Kind = iota
	KindCompilationUnit
	KindPackage
	KindImport
	KindTypeDecl
	KindEnum
	KindMethod
	KindLambda
	KindBlock

	// Declarations
	KindField
	KindLocalVariable
	KindVariableExpression
	KindParameter
	KindFragment
	KindEnumConstant

	// Names
	KindSimpleName
	KindQualifiedName
	KindMethodInvocation

	// Types
	KindPrimitiveType
	KindSimpleType
	KindParameterizedType
	KindArrayType
	KindUnionType
	KindWildcardType
	KindQualifiedType
)

var kindNames = map[Kind]string{
	KindOther:              "other",
	KindCompilationUnit:    "compilation_unit",
	KindPackage:            "package",
	KindImport:             "import",
	KindTypeDecl:           "type_decl",
	KindEnum:               "enum",
	KindMethod:             "method",
	KindLambda:             "lambda",
	KindBlock:              "block",
	KindField:              "field",
	KindLocalVariable:      "local_variable",
	KindVariableExpression: "variable_expression",
	KindParameter:          "parameter",
	KindFragment:           "fragment",
	KindEnumConstant:       "enum_constant",
	KindSimpleName:         "simple_name",
	KindQualifiedName:      "qualified_name",
	KindMethodInvocation:   "method_invocation",
	KindPrimitiveType:      "primitive_type",
	KindSimpleType:         "simple_type",
	KindParameterizedType:  "parameterized_type",
	KindArrayType:          "array_type",
	KindUnionType:          "union_type",
	KindWildcardType:       "wildcard_type",
	KindQualifiedType:      "qualified_type",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// IsType reports whether k is one of the type-reference kinds.
func (k Kind) IsType() bool {
	return k >= KindPrimitiveType && k <= KindQualifiedType
}

// Field names describing a child's role inside its parent.
const (
	FieldNone        = ""
	FieldName        = "name"
	FieldType        = "type"
	FieldDeclarator  = "declarator"
	FieldBound       = "bound"
	FieldElement     = "element"
	FieldArgument    = "argument"
	FieldAlternative = "alternative"
	FieldObject      = "object"
	FieldValue       = "value"
	FieldBody        = "body"
)

type Position struct {
	Line   int
	Column int
}

// Node is one unit of a parsed compilation unit. Nodes are compared by
// pointer identity; two structurally equal nodes are distinct.
type Node struct {
	Kind     Kind
	Field    string
	Text     string
	Parent   *Node
	Children []*Node
	Start    Position
	End      Position

	// Static marks `import static` declarations.
	Static bool
	// OnDemand marks `import a.b.*` declarations.
	OnDemand bool
	// UpperBound marks `? extends T` wildcards. Unbounded wildcards are
	// upper-bounded.
	UpperBound bool
}

// Child returns the first child playing the given role, or nil.
func (n *Node) Child(field string) *Node {
	if n == nil {
		return nil
	}
	for _, child := range n.Children {
		if child.Field == field {
			return child
		}
	}
	return nil
}

// ChildrenOf returns every child playing the given role, in order.
func (n *Node) ChildrenOf(field string) []*Node {
	if n == nil {
		return nil
	}
	var out []*Node
	for _, child := range n.Children {
		if child.Field == field {
			out = append(out, child)
		}
	}
	return out
}

// Append attaches child as the last child of n and returns child.
func (n *Node) Append(child *Node) *Node {
	child.Parent = n
	n.Children = append(n.Children, child)
	return child
}

// Insert attaches child at index i among n's children and returns child.
// An index past the end appends.
func (n *Node) Insert(i int, child *Node) *Node {
	child.Parent = n
	if i >= len(n.Children) {
		n.Children = append(n.Children, child)
		return child
	}
	n.Children = slices.Insert(n.Children, max(i, 0), child)
	return child
}

// Walk visits n and its descendants in pre-order. Returning false from fn
// skips the node's children.
func Walk(n *Node, fn func(*Node) bool) {
	if n == nil {
		return
	}
	if !fn(n) {
		return
	}
	for _, child := range n.Children {
		Walk(child, fn)
	}
}

// Ancestor returns the closest ancestor of n with the given kind.
func (n *Node) Ancestor(kind Kind) *Node {
	if n == nil {
		return nil
	}
	for p := n.Parent; p != nil; p = p.Parent {
		if p.Kind == kind {
			return p
		}
	}
	return nil
}
