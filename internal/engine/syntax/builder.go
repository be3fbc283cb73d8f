package syntax

import "strings"

// Builders for assembling trees by hand. The Java front end produces the
// same shapes from source; these exist for alternate front ends and tests.

// New creates a node of the given kind and adopts children.
func New(kind Kind, text string, children ...*Node) *Node {
	n := &Node{Kind: kind, Text: text}
	for _, child := range children {
		if child != nil {
			n.Append(child)
		}
	}
	return n
}

// As sets the node's role within its parent and returns the node.
func (n *Node) As(field string) *Node {
	n.Field = field
	return n
}

func Unit(children ...*Node) *Node {
	return New(KindCompilationUnit, "", children...)
}

func Package(name string) *Node {
	return New(KindPackage, name, QualifiedName(name).As(FieldName))
}

func Import(name string, static bool) *Node {
	n := New(KindImport, name, QualifiedName(name).As(FieldName))
	n.Static = static
	return n
}

func ImportOnDemand(name string) *Node {
	n := Import(name, false)
	n.OnDemand = true
	return n
}

func Name(text string) *Node {
	return New(KindSimpleName, text)
}

// QualifiedName returns a dotted name; single-segment names become simple names.
func QualifiedName(text string) *Node {
	if !strings.Contains(text, ".") {
		return Name(text)
	}
	return New(KindQualifiedName, text)
}

func Primitive(keyword string) *Node {
	return New(KindPrimitiveType, keyword)
}

func SimpleType(name string) *Node {
	return New(KindSimpleType, name)
}

func QualifiedType(name string) *Node {
	return New(KindQualifiedType, name)
}

func Parameterized(raw *Node, args ...*Node) *Node {
	n := New(KindParameterizedType, "", raw.As(FieldType))
	for _, arg := range args {
		n.Append(arg.As(FieldArgument))
	}
	n.Text = raw.Text + "<" + joinText(args) + ">"
	return n
}

func Array(element *Node) *Node {
	return New(KindArrayType, element.Text+"[]", element.As(FieldElement))
}

func Union(alternatives ...*Node) *Node {
	n := New(KindUnionType, "")
	for _, alt := range alternatives {
		n.Append(alt.As(FieldAlternative))
	}
	return n
}

// Wildcard builds `? extends bound` (upper) or `? super bound`. A nil bound
// yields the unbounded `?`.
func Wildcard(upper bool, bound *Node) *Node {
	n := New(KindWildcardType, "?")
	n.UpperBound = upper || bound == nil
	if bound != nil {
		n.Append(bound.As(FieldBound))
	}
	return n
}

// Fragment declares one name, optionally with an initializer.
func Fragment(name string, value *Node) *Node {
	n := New(KindFragment, name, Name(name).As(FieldName))
	if value != nil {
		n.Append(value.As(FieldValue))
	}
	return n
}

func FieldDecl(typ *Node, fragments ...*Node) *Node {
	return declaration(KindField, typ, fragments)
}

func Local(typ *Node, fragments ...*Node) *Node {
	return declaration(KindLocalVariable, typ, fragments)
}

func VariableExpression(typ *Node, fragments ...*Node) *Node {
	return declaration(KindVariableExpression, typ, fragments)
}

func declaration(kind Kind, typ *Node, fragments []*Node) *Node {
	n := New(kind, "", typ.As(FieldType))
	for _, frag := range fragments {
		n.Append(frag.As(FieldDeclarator))
	}
	return n
}

func Param(typ *Node, name string) *Node {
	return New(KindParameter, name, typ.As(FieldType), Name(name).As(FieldName))
}

func TypeDecl(name string, members ...*Node) *Node {
	return New(KindTypeDecl, name, append([]*Node{Name(name).As(FieldName)}, members...)...)
}

func Enum(name string, members ...*Node) *Node {
	return New(KindEnum, name, append([]*Node{Name(name).As(FieldName)}, members...)...)
}

func EnumConstant(name string, children ...*Node) *Node {
	return New(KindEnumConstant, name, append([]*Node{Name(name).As(FieldName)}, children...)...)
}

// Method builds a method declaration: parameters come first, then the body.
func Method(name string, result *Node, params []*Node, body *Node) *Node {
	n := New(KindMethod, name)
	if result != nil {
		n.Append(result.As(FieldType))
	}
	n.Append(Name(name).As(FieldName))
	for _, p := range params {
		n.Append(p)
	}
	if body != nil {
		n.Append(body.As(FieldBody))
	}
	return n
}

func Block(statements ...*Node) *Node {
	return New(KindBlock, "", statements...)
}

// Invoke builds `object.name(args...)`; object may be nil.
func Invoke(object *Node, name string, args ...*Node) *Node {
	n := New(KindMethodInvocation, name)
	if object != nil {
		n.Append(object.As(FieldObject))
	}
	n.Append(Name(name).As(FieldName))
	for _, arg := range args {
		n.Append(arg.As(FieldArgument))
	}
	return n
}

// Statement wraps children in an opaque node, as an expression statement.
func Statement(children ...*Node) *Node {
	return New(KindOther, "", children...)
}

func joinText(nodes []*Node) string {
	parts := make([]string, 0, len(nodes))
	for _, n := range nodes {
		parts = append(parts, n.Text)
	}
	return strings.Join(parts, ", ")
}
