package parser

import (
	"fmt"
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/devgony/stc/pkg/ast"
)

func (ctx *parseContext) parseType(node *sitter.Node) (ast.TypeExpression, error) {
	if node == nil {
		return nil, fmt.Errorf("parser: %s: expected type", ctx.path)
	}
	var (
		out ast.TypeExpression
		err error
	)
	switch node.Kind() {
	case "type_annotation", "opting_type_annotation", "adding_type_annotation", "omitting_type_annotation", "constraint", "default_type":
		return ctx.parseType(firstNamedChild(node))
	case "predefined_type":
		text := ctx.text(node)
		if strings.HasPrefix(text, "unique") {
			inner := ast.NewKeywordType("symbol")
			annotateSpan(inner, node)
			out = ast.NewTypeOperator(ast.TypeOperatorUnique, inner)
		} else {
			out = ast.NewKeywordType(text)
		}
	case "type_identifier", "identifier":
		out = ast.NewTypeReference(ctx.identifier(node), nil, nil)
	case "nested_type_identifier", "nested_identifier", "member_expression":
		out, err = ctx.referenceFromText(node)
	case "generic_type":
		ref, rerr := ctx.referenceFromText(node.ChildByFieldName("name"))
		if rerr != nil {
			return nil, rerr
		}
		ref.TypeArgs, err = ctx.parseTypeArguments(node.ChildByFieldName("type_arguments"))
		out = ref
	case "object_type":
		members, mapped, merr := ctx.parseMembers(node)
		if merr != nil {
			return nil, merr
		}
		if mapped != nil {
			out = mapped
		} else {
			out = ast.NewTypeLiteral(members)
		}
	case "union_type":
		var types []ast.TypeExpression
		types, err = ctx.flattenBinaryType(node, "union_type")
		out = ast.NewUnionType(types)
	case "intersection_type":
		var types []ast.TypeExpression
		types, err = ctx.flattenBinaryType(node, "intersection_type")
		out = ast.NewIntersectionType(types)
	case "function_type":
		var sig *ast.FunctionSignature
		sig, err = ctx.parseSignature(node, "return_type")
		out = ast.NewFunctionType(sig)
	case "constructor_type":
		var sig *ast.FunctionSignature
		sig, err = ctx.parseSignature(node, "type")
		ctor := ast.NewConstructorType(sig)
		ctor.Abstract = hasToken(node, "abstract")
		out = ctor
	case "array_type":
		var elem ast.TypeExpression
		elem, err = ctx.parseType(firstNamedChild(node))
		out = ast.NewArrayType(elem)
	case "readonly_type":
		var inner ast.TypeExpression
		inner, err = ctx.parseType(firstNamedChild(node))
		out = ast.NewTypeOperator(ast.TypeOperatorReadonly, inner)
	case "index_type_query":
		var inner ast.TypeExpression
		inner, err = ctx.parseType(firstNamedChild(node))
		out = ast.NewTypeOperator(ast.TypeOperatorKeyOf, inner)
	case "tuple_type":
		out, err = ctx.parseTuple(node)
	case "parenthesized_type":
		var inner ast.TypeExpression
		inner, err = ctx.parseType(firstNamedChild(node))
		out = ast.NewParenthesizedType(inner)
	case "lookup_type":
		children := namedChildren(node)
		if len(children) != 2 {
			return nil, fmt.Errorf("parser: %s: malformed indexed access type", ctx.path)
		}
		obj, oerr := ctx.parseType(children[0])
		if oerr != nil {
			return nil, oerr
		}
		var index ast.TypeExpression
		index, err = ctx.parseType(children[1])
		out = ast.NewIndexedAccessType(obj, index)
	case "conditional_type":
		out, err = ctx.parseConditional(node)
	case "infer_type":
		children := namedChildren(node)
		if len(children) == 0 {
			return nil, fmt.Errorf("parser: %s: infer without a name", ctx.path)
		}
		var constraint ast.TypeExpression
		if len(children) > 1 {
			constraint, err = ctx.parseType(children[1])
		}
		param := ast.NewTypeParameter(ctx.identifier(children[0]), constraint, nil)
		annotateSpan(param, node)
		out = ast.NewInferType(param)
	case "type_query":
		out, err = ctx.parseTypeQuery(node)
	case "literal_type":
		out, err = ctx.parseLiteralType(firstNamedChild(node))
	case "this_type", "this":
		out = ast.NewThisType()
	case "template_literal_type", "template_type":
		out = ast.NewKeywordType("string")
	case "type_predicate", "type_predicate_annotation", "asserts", "asserts_annotation":
		if node.Kind() == "asserts" || node.Kind() == "asserts_annotation" {
			out = ast.NewKeywordType("void")
		} else {
			out = ast.NewKeywordType("boolean")
		}
	case "existential_type":
		out = ast.NewKeywordType("any")
	case "undefined", "null":
		out = ast.NewKeywordType(node.Kind())
	default:
		return nil, fmt.Errorf("parser: %s: unsupported type node %q", ctx.path, node.Kind())
	}
	if err != nil {
		return nil, err
	}
	annotateSpan(out, node)
	return out, nil
}

// referenceFromText builds a possibly qualified reference from a dotted name.
func (ctx *parseContext) referenceFromText(node *sitter.Node) (*ast.TypeReference, error) {
	if node == nil {
		return nil, fmt.Errorf("parser: %s: expected type name", ctx.path)
	}
	parts := strings.Split(strings.Join(strings.Fields(ctx.text(node)), ""), ".")
	if len(parts) == 0 || parts[0] == "" {
		return nil, fmt.Errorf("parser: %s: empty type name", ctx.path)
	}
	id := ast.ID(parts[0])
	annotateSpan(id, node)
	var path []string
	if len(parts) > 1 {
		path = parts[1:]
	}
	ref := ast.NewTypeReference(id, path, nil)
	annotateSpan(ref, node)
	return ref, nil
}

func (ctx *parseContext) parseTypeArguments(node *sitter.Node) ([]ast.TypeExpression, error) {
	if node == nil {
		return nil, nil
	}
	var args []ast.TypeExpression
	for _, child := range namedChildren(node) {
		t, err := ctx.parseType(child)
		if err != nil {
			return nil, err
		}
		args = append(args, t)
	}
	return args, nil
}

func (ctx *parseContext) flattenBinaryType(node *sitter.Node, kind string) ([]ast.TypeExpression, error) {
	var out []ast.TypeExpression
	for _, child := range namedChildren(node) {
		if child.Kind() == kind {
			inner, err := ctx.flattenBinaryType(child, kind)
			if err != nil {
				return nil, err
			}
			out = append(out, inner...)
			continue
		}
		t, err := ctx.parseType(child)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

func (ctx *parseContext) parseTuple(node *sitter.Node) (*ast.TupleType, error) {
	var elems []*ast.TupleElement
	for _, child := range namedChildren(node) {
		var (
			elem *ast.TupleElement
			t    ast.TypeExpression
			err  error
		)
		switch child.Kind() {
		case "tuple_parameter", "optional_tuple_parameter":
			t, err = ctx.parseType(child.ChildByFieldName("type"))
			if err != nil {
				return nil, err
			}
			label := ""
			if nameNode := child.ChildByFieldName("name"); nameNode != nil {
				label = strings.TrimPrefix(ctx.text(nameNode), "...")
			}
			elem = ast.NewTupleElement(label, t)
			elem.Optional = child.Kind() == "optional_tuple_parameter"
			elem.Rest = strings.HasPrefix(ctx.text(child), "...")
		case "optional_type":
			t, err = ctx.parseType(firstNamedChild(child))
			elem = ast.NewTupleElement("", t)
			elem.Optional = true
		case "rest_type":
			t, err = ctx.parseType(firstNamedChild(child))
			elem = ast.NewTupleElement("", t)
			elem.Rest = true
		default:
			t, err = ctx.parseType(child)
			elem = ast.NewTupleElement("", t)
		}
		if err != nil {
			return nil, err
		}
		annotateSpan(elem, child)
		elems = append(elems, elem)
	}
	return ast.NewTupleType(elems), nil
}

func (ctx *parseContext) parseConditional(node *sitter.Node) (*ast.ConditionalType, error) {
	fields := []string{"left", "right", "consequence", "alternative"}
	parts := make([]ast.TypeExpression, len(fields))
	for i, field := range fields {
		t, err := ctx.parseType(node.ChildByFieldName(field))
		if err != nil {
			return nil, err
		}
		parts[i] = t
	}
	return ast.NewConditionalType(parts[0], parts[1], parts[2], parts[3]), nil
}

func (ctx *parseContext) parseTypeQuery(node *sitter.Node) (*ast.TypeQuery, error) {
	target := firstNamedChild(node)
	if target == nil {
		return nil, fmt.Errorf("parser: %s: typeof without operand", ctx.path)
	}
	text := ctx.text(target)
	if i := strings.IndexAny(text, "<("); i >= 0 {
		text = text[:i]
	}
	parts := strings.Split(strings.Join(strings.Fields(text), ""), ".")
	id := ast.ID(parts[0])
	annotateSpan(id, target)
	var path []string
	if len(parts) > 1 {
		path = parts[1:]
	}
	return ast.NewTypeQuery(id, path), nil
}

func (ctx *parseContext) parseLiteralType(node *sitter.Node) (ast.TypeExpression, error) {
	if node == nil {
		return nil, fmt.Errorf("parser: %s: empty literal type", ctx.path)
	}
	var out ast.TypeExpression
	switch node.Kind() {
	case "string":
		out = ast.NewLiteralType(ast.LiteralString, unquote(ctx.text(node)))
	case "number":
		out = numberLiteralType(ctx.text(node))
	case "unary_expression":
		out = numberLiteralType(strings.Join(strings.Fields(ctx.text(node)), ""))
	case "true", "false":
		out = ast.NewLiteralType(ast.LiteralBoolean, node.Kind())
	case "null", "undefined":
		out = ast.NewKeywordType(node.Kind())
	default:
		return nil, fmt.Errorf("parser: %s: unsupported literal type %q", ctx.path, node.Kind())
	}
	annotateSpan(out, node)
	return out, nil
}

func numberLiteralType(text string) *ast.LiteralType {
	if strings.HasSuffix(text, "n") {
		return ast.NewLiteralType(ast.LiteralBigInt, strings.TrimSuffix(text, "n"))
	}
	return ast.NewLiteralType(ast.LiteralNumber, text)
}

// parseMembers converts an interface body or object type. An object type
// whose only member is a mapped clause is returned as a mapped type instead.
func (ctx *parseContext) parseMembers(node *sitter.Node) ([]ast.TypeMember, *ast.MappedType, error) {
	var (
		members []ast.TypeMember
		mapped  *ast.MappedType
	)
	for _, child := range namedChildren(node) {
		var (
			member ast.TypeMember
			err    error
		)
		switch child.Kind() {
		case "property_signature":
			member, err = ctx.parsePropertySignature(child)
		case "method_signature":
			var sig *ast.FunctionSignature
			sig, err = ctx.parseSignature(child, "return_type")
			if err == nil {
				m := ast.NewMethodSignature(ctx.propertyName(child.ChildByFieldName("name")), sig)
				m.Optional = hasToken(child, "?")
				member = m
			}
		case "call_signature":
			var sig *ast.FunctionSignature
			sig, err = ctx.parseSignature(child, "return_type")
			if err == nil {
				member = ast.NewCallSignature(sig)
			}
		case "construct_signature":
			var sig *ast.FunctionSignature
			sig, err = ctx.parseSignature(child, "type")
			if err == nil {
				member = ast.NewConstructSignature(sig)
			}
		case "index_signature":
			var m *ast.MappedType
			member, m, err = ctx.parseIndexSignature(child)
			if m != nil {
				mapped = m
			}
		default:
			continue
		}
		if err != nil {
			return nil, nil, err
		}
		if member != nil {
			annotateSpan(member, child)
			members = append(members, member)
		}
	}
	if mapped != nil && len(members) == 0 {
		return nil, mapped, nil
	}
	return members, nil, nil
}

func (ctx *parseContext) parsePropertySignature(node *sitter.Node) (ast.TypeMember, error) {
	var typ ast.TypeExpression
	if typeNode := node.ChildByFieldName("type"); typeNode != nil {
		t, err := ctx.parseType(typeNode)
		if err != nil {
			return nil, err
		}
		typ = t
	}
	prop := ast.NewPropertySignature(ctx.propertyName(node.ChildByFieldName("name")), typ, hasToken(node, "?"))
	prop.Readonly = hasToken(node, "readonly")
	return prop, nil
}

func (ctx *parseContext) parseIndexSignature(node *sitter.Node) (ast.TypeMember, *ast.MappedType, error) {
	valueNode := node.ChildByFieldName("type")
	value, err := ctx.parseType(valueNode)
	if err != nil {
		return nil, nil, err
	}
	readonly := hasToken(node, "readonly")

	if clause := childOfKind(node, "mapped_type_clause"); clause != nil {
		constraint, err := ctx.parseType(clause.ChildByFieldName("type"))
		if err != nil {
			return nil, nil, err
		}
		var nameType ast.TypeExpression
		if alias := clause.ChildByFieldName("alias"); alias != nil {
			nameType, err = ctx.parseType(alias)
			if err != nil {
				return nil, nil, err
			}
		}
		param := ast.NewTypeParameter(ctx.identifier(clause.ChildByFieldName("name")), constraint, nil)
		annotateSpan(param, clause)
		mapped := ast.NewMappedType(param, nameType, value)
		if readonly {
			mapped.Readonly = ast.MappedModifierAdd
			if tokenBefore(node, "readonly") == "-" {
				mapped.Readonly = ast.MappedModifierRemove
			}
		}
		switch valueNode.Kind() {
		case "opting_type_annotation", "adding_type_annotation":
			mapped.Optional = ast.MappedModifierAdd
		case "omitting_type_annotation":
			mapped.Optional = ast.MappedModifierRemove
		}
		annotateSpan(mapped, node)
		return nil, mapped, nil
	}

	keyType, err := ctx.parseType(node.ChildByFieldName("index_type"))
	if err != nil {
		return nil, nil, err
	}
	paramName := "key"
	if nameNode := node.ChildByFieldName("name"); nameNode != nil {
		paramName = ctx.text(nameNode)
	}
	sig := ast.NewIndexSignature(paramName, keyType, value)
	sig.Readonly = readonly
	return sig, nil, nil
}
