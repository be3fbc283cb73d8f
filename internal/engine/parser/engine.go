package parser

import (
	"strings"

	"javaindex/internal/engine/syntax"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

// nodeHandler converts one concrete node (and its subtree) into syntax nodes
// appended to parent. field is the role the node plays in parent.
type nodeHandler func(parent *syntax.Node, node *sitter.Node, field string)

// converter walks a tree-sitter Java tree and emits the syntax model. Each
// declaration is placed directly under the node whose scope governs its
// visibility: bodies and parameter lists are flattened into their owner.
type converter struct {
	source   []byte
	errors   int
	handlers map[string]nodeHandler
	// hosts tracks the innermost construct that can own a type pattern
	// variable. A nil entry marks a statement or body boundary.
	hosts []*syntax.Node
}

var flattenKinds = map[string]bool{
	"class_body":             true,
	"interface_body":         true,
	"enum_body":              true,
	"enum_body_declarations": true,
	"annotation_type_body":   true,
	"formal_parameters":      true,
	"resource_specification": true,
	// Statements of every case group share the switch block's scope.
	"switch_block_statement_group": true,
}

// patternHosts declare the type pattern variables of their condition for
// the rest of the construct.
var patternHosts = map[string]bool{
	"if_statement":           true,
	"while_statement":        true,
	"for_statement":          true,
	"conditional_expression": true,
}

func isPatternBoundary(kind string) bool {
	switch kind {
	case "block", "constructor_body", "lambda_expression", "switch_rule":
		return true
	}
	return strings.HasSuffix(kind, "_statement") || strings.HasSuffix(kind, "_declaration")
}

var skipKinds = map[string]bool{
	"line_comment":  true,
	"block_comment": true,
}

var primitiveKinds = map[string]bool{
	"integral_type":       true,
	"floating_point_type": true,
	"boolean_type":        true,
	"void_type":           true,
}

func isTypeKind(kind string) bool {
	if primitiveKinds[kind] {
		return true
	}
	switch kind {
	case "type_identifier", "scoped_type_identifier", "generic_type", "array_type", "annotated_type":
		return true
	}
	return false
}

func newConverter(source []byte) *converter {
	c := &converter{source: source}
	c.handlers = map[string]nodeHandler{
		"package_declaration":            c.convertPackage,
		"import_declaration":             c.convertImport,
		"class_declaration":              c.convertNamed(syntax.KindTypeDecl),
		"interface_declaration":          c.convertNamed(syntax.KindTypeDecl),
		"record_declaration":             c.convertNamed(syntax.KindTypeDecl),
		"annotation_type_declaration":    c.convertNamed(syntax.KindTypeDecl),
		"enum_declaration":               c.convertNamed(syntax.KindEnum),
		"enum_constant":                  c.convertNamed(syntax.KindEnumConstant),
		"method_declaration":             c.convertNamed(syntax.KindMethod),
		"constructor_declaration":        c.convertNamed(syntax.KindMethod),
		"compact_constructor_declaration": c.convertNamed(syntax.KindMethod),
		"method_invocation":              c.convertNamed(syntax.KindMethodInvocation),
		"lambda_expression":              c.convertAs(syntax.KindLambda),
		"block":                          c.convertAs(syntax.KindBlock),
		"constructor_body":               c.convertAs(syntax.KindBlock),
		"field_declaration":              c.convertDeclaration,
		"constant_declaration":           c.convertDeclaration,
		"local_variable_declaration":     c.convertDeclaration,
		"variable_declarator":            c.convertFragment,
		"formal_parameter":               c.convertParameter,
		"catch_formal_parameter":         c.convertParameter,
		"spread_parameter":               c.convertParameter,
		"enhanced_for_statement":         c.convertEnhancedFor,
		"resource":                       c.convertResource,
		"instanceof_expression":          c.convertInstanceof,
		"type_parameter":                 c.convertTypeParameter,
		"identifier":                     c.convertLeaf(syntax.KindSimpleName),
		"scoped_identifier":              c.convertLeaf(syntax.KindQualifiedName),
		"integral_type":                  c.convertLeaf(syntax.KindPrimitiveType),
		"floating_point_type":            c.convertLeaf(syntax.KindPrimitiveType),
		"boolean_type":                   c.convertLeaf(syntax.KindPrimitiveType),
		"void_type":                      c.convertLeaf(syntax.KindPrimitiveType),
		"type_identifier":                c.convertLeaf(syntax.KindSimpleType),
		"scoped_type_identifier":         c.convertLeaf(syntax.KindQualifiedType),
		"generic_type":                   c.convertGeneric,
		"array_type":                     c.convertArray,
		"annotated_type":                 c.convertAnnotated,
		"wildcard":                       c.convertWildcard,
		"catch_type":                     c.convertCatchType,
	}
	return c
}

func (c *converter) convertRoot(root *sitter.Node) *syntax.Node {
	unit := c.node(syntax.KindCompilationUnit, root, syntax.FieldNone)
	if root == nil {
		return unit
	}
	if root.IsError() {
		c.errors++
	}
	c.emitChildren(unit, root)
	return unit
}

func (c *converter) emit(parent *syntax.Node, n *sitter.Node, field string) {
	if n == nil {
		return
	}
	if n.IsError() || n.IsMissing() {
		c.errors++
	}
	if !n.IsNamed() && !n.IsError() {
		return
	}
	kind := n.Kind()
	if skipKinds[kind] {
		return
	}
	if flattenKinds[kind] {
		c.emitChildren(parent, n)
		return
	}
	if handler, ok := c.handlers[kind]; ok {
		handler(parent, n, field)
		return
	}
	c.generic(parent, n, field, syntax.KindOther)
}

func (c *converter) emitChildren(parent *syntax.Node, n *sitter.Node) {
	roles := fieldRoles(n)
	for i := uint(0); i < n.ChildCount(); i++ {
		child := n.Child(i)
		c.emit(parent, child, roles.of(child))
	}
}

func (c *converter) generic(parent *syntax.Node, n *sitter.Node, field string, kind syntax.Kind) *syntax.Node {
	node := c.node(kind, n, field)
	if n.ChildCount() == 0 {
		node.Text = c.text(n)
	}
	parent.Append(node)
	switch source := n.Kind(); {
	case patternHosts[source]:
		c.hosts = append(c.hosts, node)
		defer c.popHost()
	case isPatternBoundary(source):
		c.hosts = append(c.hosts, nil)
		defer c.popHost()
	}
	c.emitChildren(node, n)
	return node
}

func (c *converter) popHost() {
	c.hosts = c.hosts[:len(c.hosts)-1]
}

func (c *converter) patternHost() *syntax.Node {
	if len(c.hosts) == 0 {
		return nil
	}
	return c.hosts[len(c.hosts)-1]
}

func (c *converter) convertAs(kind syntax.Kind) nodeHandler {
	return func(parent *syntax.Node, n *sitter.Node, field string) {
		c.generic(parent, n, field, kind)
	}
}

// convertNamed emits a node whose Text is its `name` field.
func (c *converter) convertNamed(kind syntax.Kind) nodeHandler {
	return func(parent *syntax.Node, n *sitter.Node, field string) {
		node := c.generic(parent, n, field, kind)
		node.Text = c.text(n.ChildByFieldName("name"))
	}
}

func (c *converter) convertLeaf(kind syntax.Kind) nodeHandler {
	return func(parent *syntax.Node, n *sitter.Node, field string) {
		node := c.node(kind, n, field)
		node.Text = c.text(n)
		if kind == syntax.KindQualifiedName || kind == syntax.KindQualifiedType {
			node.Text = compactText(node.Text)
		}
		parent.Append(node)
	}
}

func (c *converter) convertPackage(parent *syntax.Node, n *sitter.Node, field string) {
	nameNode := firstChildOfKind(n, "scoped_identifier", "identifier")
	pkg := c.node(syntax.KindPackage, n, field)
	pkg.Text = compactText(c.text(nameNode))
	if nameNode != nil {
		pkg.Append(c.nameOf(nameNode, pkg.Text))
	}
	parent.Append(pkg)
}

func (c *converter) convertImport(parent *syntax.Node, n *sitter.Node, field string) {
	nameNode := firstChildOfKind(n, "scoped_identifier", "identifier")
	imp := c.node(syntax.KindImport, n, field)
	imp.Text = compactText(c.text(nameNode))
	imp.Static = firstChildOfKind(n, "static") != nil
	imp.OnDemand = firstChildOfKind(n, "asterisk") != nil
	if nameNode != nil {
		imp.Append(c.nameOf(nameNode, imp.Text))
	}
	parent.Append(imp)
}

func (c *converter) convertDeclaration(parent *syntax.Node, n *sitter.Node, field string) {
	kind := syntax.KindField
	if n.Kind() == "local_variable_declaration" {
		kind = syntax.KindLocalVariable
		if p := n.Parent(); p != nil && p.Kind() == "for_statement" {
			kind = syntax.KindVariableExpression
		}
	}
	c.generic(parent, n, field, kind)
}

func (c *converter) convertFragment(parent *syntax.Node, n *sitter.Node, _ string) {
	node := c.generic(parent, n, syntax.FieldDeclarator, syntax.KindFragment)
	node.Text = c.text(n.ChildByFieldName("name"))
}

// convertParameter handles formal, catch and varargs parameters. Varargs
// carry their name inside a variable_declarator.
func (c *converter) convertParameter(parent *syntax.Node, n *sitter.Node, field string) {
	param := c.node(syntax.KindParameter, n, field)
	parent.Append(param)

	roles := fieldRoles(n)
	typed := false
	for i := uint(0); i < n.ChildCount(); i++ {
		child := n.Child(i)
		kind := child.Kind()
		switch {
		case !typed && (isTypeKind(kind) || kind == "catch_type"):
			typed = true
			c.emit(param, child, syntax.FieldType)
		case kind == "variable_declarator":
			c.emitDeclaratorName(param, child)
		default:
			role := roles.of(child)
			if role == syntax.FieldName {
				param.Text = c.text(child)
			}
			c.emit(param, child, role)
		}
	}
}

func (c *converter) emitDeclaratorName(param *syntax.Node, declarator *sitter.Node) {
	roles := fieldRoles(declarator)
	for i := uint(0); i < declarator.ChildCount(); i++ {
		child := declarator.Child(i)
		role := roles.of(child)
		if role == syntax.FieldName {
			param.Text = c.text(child)
		}
		c.emit(param, child, role)
	}
}

// convertEnhancedFor moves the loop variable into a parameter child of the
// loop so it is visible in the body only.
func (c *converter) convertEnhancedFor(parent *syntax.Node, n *sitter.Node, field string) {
	loop := c.node(syntax.KindOther, n, field)
	loop.Text = "for"
	parent.Append(loop)

	param := c.node(syntax.KindParameter, n, syntax.FieldNone)
	loop.Append(param)

	roles := fieldRoles(n)
	for i := uint(0); i < n.ChildCount(); i++ {
		child := n.Child(i)
		role := roles.of(child)
		switch {
		case role == syntax.FieldType:
			c.emit(param, child, syntax.FieldType)
		case role == syntax.FieldName:
			param.Text = c.text(child)
			c.emit(param, child, syntax.FieldName)
		case child.Kind() == "modifiers" || child.Kind() == "dimensions":
			c.emit(param, child, role)
		default:
			c.emit(loop, child, role)
		}
	}
}

func (c *converter) convertResource(parent *syntax.Node, n *sitter.Node, field string) {
	if n.ChildByFieldName("type") == nil {
		c.generic(parent, n, field, syntax.KindOther)
		return
	}
	decl := c.node(syntax.KindVariableExpression, n, field)
	parent.Append(decl)
	frag := c.node(syntax.KindFragment, n, syntax.FieldDeclarator)

	roles := fieldRoles(n)
	for i := uint(0); i < n.ChildCount(); i++ {
		child := n.Child(i)
		role := roles.of(child)
		switch role {
		case syntax.FieldType:
			c.emit(decl, child, role)
			decl.Append(frag)
		case syntax.FieldName:
			frag.Text = c.text(child)
			c.emit(frag, child, role)
		case syntax.FieldValue:
			c.emit(frag, child, role)
		default:
			c.emit(decl, child, role)
		}
	}
}

// convertInstanceof turns a type pattern (`x instanceof Foo f`) into a
// parameter declaring f. The parameter is placed ahead of the condition of
// the enclosing if, loop or conditional so the whole construct sees f.
func (c *converter) convertInstanceof(parent *syntax.Node, n *sitter.Node, field string) {
	nameField := n.ChildByFieldName("name")
	if nameField == nil {
		c.generic(parent, n, field, syntax.KindOther)
		return
	}
	expr := c.node(syntax.KindOther, n, field)
	parent.Append(expr)
	param := c.node(syntax.KindParameter, n, syntax.FieldNone)
	param.Text = c.text(nameField)

	right := keyOf(n.ChildByFieldName("right"))
	name := keyOf(nameField)
	roles := fieldRoles(n)
	for i := uint(0); i < n.ChildCount(); i++ {
		child := n.Child(i)
		switch keyOf(child) {
		case right:
			if host := c.patternHost(); host != nil {
				hoistParameter(host, param)
			} else {
				expr.Append(param)
			}
			c.emit(param, child, syntax.FieldType)
		case name:
			c.emit(param, child, syntax.FieldName)
		default:
			c.emit(expr, child, roles.of(child))
		}
	}
}

// hoistParameter inserts param after any parameters already hoisted into
// host, keeping source order among patterns of one condition.
func hoistParameter(host, param *syntax.Node) {
	i := 0
	for i < len(host.Children) && host.Children[i].Kind == syntax.KindParameter {
		i++
	}
	host.Insert(i, param)
}

// convertTypeParameter emits the declared type variable as a name, not a
// type reference; its bounds remain types.
func (c *converter) convertTypeParameter(parent *syntax.Node, n *sitter.Node, field string) {
	node := c.node(syntax.KindOther, n, field)
	parent.Append(node)
	named := false
	for i := uint(0); i < n.ChildCount(); i++ {
		child := n.Child(i)
		if !named && (child.Kind() == "type_identifier" || child.Kind() == "identifier") {
			named = true
			node.Text = c.text(child)
			name := c.node(syntax.KindSimpleName, child, syntax.FieldName)
			name.Text = node.Text
			node.Append(name)
			continue
		}
		c.emit(node, child, syntax.FieldNone)
	}
}

func (c *converter) convertGeneric(parent *syntax.Node, n *sitter.Node, field string) {
	node := c.node(syntax.KindParameterizedType, n, field)
	node.Text = collapseSpace(c.text(n))
	parent.Append(node)
	for i := uint(0); i < n.ChildCount(); i++ {
		child := n.Child(i)
		if child.Kind() == "type_arguments" {
			for j := uint(0); j < child.ChildCount(); j++ {
				arg := child.Child(j)
				if isTypeKind(arg.Kind()) || arg.Kind() == "wildcard" {
					c.emit(node, arg, syntax.FieldArgument)
				}
			}
			continue
		}
		if isTypeKind(child.Kind()) {
			c.emit(node, child, syntax.FieldType)
		}
	}
}

func (c *converter) convertArray(parent *syntax.Node, n *sitter.Node, field string) {
	node := c.node(syntax.KindArrayType, n, field)
	node.Text = collapseSpace(c.text(n))
	parent.Append(node)
	c.emit(node, n.ChildByFieldName("element"), syntax.FieldElement)
}

// convertAnnotated drops type annotations and emits the annotated type in
// the annotated type's place.
func (c *converter) convertAnnotated(parent *syntax.Node, n *sitter.Node, field string) {
	for i := uint(0); i < n.ChildCount(); i++ {
		child := n.Child(i)
		if isTypeKind(child.Kind()) {
			c.emit(parent, child, field)
			return
		}
	}
}

func (c *converter) convertWildcard(parent *syntax.Node, n *sitter.Node, field string) {
	node := c.node(syntax.KindWildcardType, n, field)
	node.Text = collapseSpace(c.text(n))
	node.UpperBound = firstChildOfKind(n, "super") == nil
	parent.Append(node)
	for i := uint(0); i < n.ChildCount(); i++ {
		child := n.Child(i)
		if isTypeKind(child.Kind()) {
			c.emit(node, child, syntax.FieldBound)
			return
		}
	}
}

// convertCatchType emits a union for multi-catch and the lone type otherwise.
func (c *converter) convertCatchType(parent *syntax.Node, n *sitter.Node, field string) {
	var alternatives []*sitter.Node
	for i := uint(0); i < n.ChildCount(); i++ {
		child := n.Child(i)
		if isTypeKind(child.Kind()) {
			alternatives = append(alternatives, child)
		}
	}
	if len(alternatives) == 1 {
		c.emit(parent, alternatives[0], field)
		return
	}
	union := c.node(syntax.KindUnionType, n, field)
	union.Text = collapseSpace(c.text(n))
	parent.Append(union)
	for _, alt := range alternatives {
		c.emit(union, alt, syntax.FieldAlternative)
	}
}

func (c *converter) nameOf(n *sitter.Node, text string) *syntax.Node {
	kind := syntax.KindSimpleName
	if n.Kind() == "scoped_identifier" {
		kind = syntax.KindQualifiedName
	}
	node := c.node(kind, n, syntax.FieldName)
	node.Text = text
	return node
}
