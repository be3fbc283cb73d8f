package parser

import (
	"strings"
	"unicode"

	"javaindex/internal/engine/syntax"

	"fortio.org/safecast"
	sitter "github.com/tree-sitter/go-tree-sitter"
)

// trackedFields maps tree-sitter field names onto syntax roles.
var trackedFields = map[string]string{
	"name":    syntax.FieldName,
	"type":    syntax.FieldType,
	"body":    syntax.FieldBody,
	"object":  syntax.FieldObject,
	"value":   syntax.FieldValue,
	"element": syntax.FieldElement,
}

// nodeKey identifies a child independently of the wrapper pointer returned
// by the binding, which differs between Child and ChildByFieldName.
type nodeKey struct {
	start uint
	end   uint
	kind  string
}

func keyOf(n *sitter.Node) nodeKey {
	if n == nil {
		return nodeKey{}
	}
	return nodeKey{start: n.StartByte(), end: n.EndByte(), kind: n.Kind()}
}

type roleMap map[nodeKey]string

func fieldRoles(n *sitter.Node) roleMap {
	roles := make(roleMap, len(trackedFields))
	for tsField, role := range trackedFields {
		if child := n.ChildByFieldName(tsField); child != nil {
			roles[keyOf(child)] = role
		}
	}
	return roles
}

func (r roleMap) of(child *sitter.Node) string {
	return r[keyOf(child)]
}

func firstChildOfKind(n *sitter.Node, kinds ...string) *sitter.Node {
	if n == nil {
		return nil
	}
	for i := uint(0); i < n.ChildCount(); i++ {
		child := n.Child(i)
		for _, kind := range kinds {
			if child.Kind() == kind {
				return child
			}
		}
	}
	return nil
}

func (c *converter) text(n *sitter.Node) string {
	if n == nil {
		return ""
	}
	return string(c.source[n.StartByte():n.EndByte()])
}

func (c *converter) node(kind syntax.Kind, n *sitter.Node, field string) *syntax.Node {
	node := &syntax.Node{Kind: kind, Field: field}
	if n != nil {
		node.Start = position(n.StartPosition())
		node.End = position(n.EndPosition())
	}
	return node
}

func position(p sitter.Point) syntax.Position {
	return syntax.Position{Line: toInt(p.Row) + 1, Column: toInt(p.Column) + 1}
}

func toInt(v uint) int {
	n, err := safecast.Conv[int](v)
	if err != nil {
		return 0
	}
	return n
}

// compactText strips whitespace from dotted names that span several lines.
func compactText(value string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, value)
}

// collapseSpace keeps the tokens of value and joins them with single spaces.
func collapseSpace(value string) string {
	return strings.Join(strings.Fields(value), " ")
}
