package resolver

import (
	"strings"

	"javaindex/internal/core/errors"
	"javaindex/internal/engine/syntax"
)

// typeNamer computes canonical names for type-reference nodes from the
// import table, the implicit namespace and the current package.
type typeNamer struct {
	imports *ImportTable
	lookup  ClassLookup
	pkg     string
}

// qualify resolves a short name. Precedence: explicit import, implicit
// namespace, already-qualified lowercase dotted name, current package.
func (n *typeNamer) qualify(short string) (string, error) {
	if qn, ok := n.imports.Lookup(short); ok {
		return qn, nil
	}

	qn, err := n.lookup.Lookup(short)
	if err == nil {
		return qn, nil
	}
	if !errors.IsCode(err, errors.CodeNotFound) {
		return "", errors.AddContext(
			errors.Wrap(err, errors.CodeResolveError, "implicit namespace lookup failed"),
			errors.CtxSymbol, short,
		)
	}

	if short != "" && short[0] >= 'a' && short[0] <= 'z' && strings.Contains(short, ".") {
		return short, nil
	}
	return n.pkg + "." + short, nil
}

// nameOf returns the qualified name of a type node. With expanded set, a
// parameterized type keeps its type arguments; arguments themselves are
// always named unexpanded. Array dimensions are dropped and a union keeps
// only its first alternative.
func (n *typeNamer) nameOf(node *syntax.Node, expanded bool) (string, error) {
	if node == nil {
		return "", nil
	}

	switch node.Kind {
	case syntax.KindPrimitiveType:
		return node.Text, nil

	case syntax.KindParameterizedType:
		return n.parameterized(node, expanded)

	case syntax.KindArrayType:
		return n.nameOf(node.Child(syntax.FieldElement), false)

	case syntax.KindUnionType:
		alternatives := node.ChildrenOf(syntax.FieldAlternative)
		if len(alternatives) == 0 {
			return "", nil
		}
		return n.nameOf(alternatives[0], false)

	case syntax.KindWildcardType:
		bound, err := n.nameOf(node.Child(syntax.FieldBound), false)
		if err != nil {
			return "", err
		}
		if node.UpperBound {
			return "? extends " + bound, nil
		}
		return "? super " + bound, nil

	default:
		// Simple and name-qualified types.
		return n.qualify(node.Text)
	}
}

func (n *typeNamer) parameterized(node *syntax.Node, expanded bool) (string, error) {
	raw := node.Child(syntax.FieldType)
	rawText := ""
	if raw != nil {
		rawText = raw.Text
	}
	base, err := n.qualify(rawText)
	if err != nil {
		return "", err
	}

	args := node.ChildrenOf(syntax.FieldArgument)
	if !expanded || len(args) == 0 {
		return base, nil
	}

	var sb strings.Builder
	sb.WriteString(base)
	sb.WriteByte('<')
	for i, arg := range args {
		name, err := n.nameOf(arg, false)
		if err != nil {
			return "", err
		}
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(name)
	}
	sb.WriteByte('>')
	return sb.String(), nil
}
