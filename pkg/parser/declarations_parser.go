package parser

import (
	"fmt"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/devgony/stc/pkg/ast"
)

func (ctx *parseContext) parseTypeAlias(node *sitter.Node) (*ast.TypeAliasDeclaration, error) {
	typeParams, err := ctx.parseTypeParameters(node.ChildByFieldName("type_parameters"))
	if err != nil {
		return nil, err
	}
	value, err := ctx.parseType(node.ChildByFieldName("value"))
	if err != nil {
		return nil, err
	}
	decl := ast.NewTypeAliasDeclaration(ctx.identifier(node.ChildByFieldName("name")), typeParams, value)
	annotateSpan(decl, node)
	return decl, nil
}

func (ctx *parseContext) parseInterface(node *sitter.Node) (*ast.InterfaceDeclaration, error) {
	typeParams, err := ctx.parseTypeParameters(node.ChildByFieldName("type_parameters"))
	if err != nil {
		return nil, err
	}
	var extends []*ast.TypeReference
	if clause := childOfKind(node, "extends_type_clause"); clause != nil {
		refs, err := ctx.parseHeritageTypes(clause)
		if err != nil {
			return nil, err
		}
		extends = refs
	}
	members, _, err := ctx.parseMembers(node.ChildByFieldName("body"))
	if err != nil {
		return nil, err
	}
	decl := ast.NewInterfaceDeclaration(ctx.identifier(node.ChildByFieldName("name")), typeParams, extends, members)
	annotateSpan(decl, node)
	return decl, nil
}

func (ctx *parseContext) parseHeritageTypes(clause *sitter.Node) ([]*ast.TypeReference, error) {
	var refs []*ast.TypeReference
	for _, child := range namedChildren(clause) {
		t, err := ctx.parseType(child)
		if err != nil {
			return nil, err
		}
		ref, ok := t.(*ast.TypeReference)
		if !ok {
			return nil, fmt.Errorf("parser: %s: heritage clause must name a type, got %s", ctx.path, child.Kind())
		}
		refs = append(refs, ref)
	}
	return refs, nil
}

func (ctx *parseContext) parseClass(node *sitter.Node) (*ast.ClassDeclaration, error) {
	typeParams, err := ctx.parseTypeParameters(node.ChildByFieldName("type_parameters"))
	if err != nil {
		return nil, err
	}
	var (
		super      *ast.TypeReference
		implements []*ast.TypeReference
	)
	if heritage := childOfKind(node, "class_heritage"); heritage != nil {
		for _, clause := range namedChildren(heritage) {
			switch clause.Kind() {
			case "extends_clause":
				value := clause.ChildByFieldName("value")
				if value == nil {
					continue
				}
				ref, err := ctx.referenceFromText(value)
				if err != nil {
					return nil, err
				}
				if args := clause.ChildByFieldName("type_arguments"); args != nil {
					ref.TypeArgs, err = ctx.parseTypeArguments(args)
					if err != nil {
						return nil, err
					}
				}
				super = ref
			case "implements_clause":
				refs, err := ctx.parseHeritageTypes(clause)
				if err != nil {
					return nil, err
				}
				implements = append(implements, refs...)
			}
		}
	}

	var members []ast.ClassMember
	for _, child := range namedChildren(node.ChildByFieldName("body")) {
		member, err := ctx.parseClassMember(child)
		if err != nil {
			return nil, err
		}
		if member != nil {
			members = append(members, member)
		}
	}

	decl := ast.NewClassDeclaration(ctx.identifier(node.ChildByFieldName("name")), typeParams, super, implements, members)
	decl.Abstract = node.Kind() == "abstract_class_declaration"
	annotateSpan(decl, node)
	return decl, nil
}

func (ctx *parseContext) parseClassMember(node *sitter.Node) (ast.ClassMember, error) {
	switch node.Kind() {
	case "public_field_definition":
		var typ ast.TypeExpression
		if typeNode := node.ChildByFieldName("type"); typeNode != nil {
			t, err := ctx.parseType(typeNode)
			if err != nil {
				return nil, err
			}
			typ = t
		}
		var value ast.Expression
		if valueNode := node.ChildByFieldName("value"); valueNode != nil {
			v, err := ctx.parseExpression(valueNode)
			if err != nil {
				return nil, err
			}
			value = v
		}
		prop := ast.NewClassProperty(ctx.propertyName(node.ChildByFieldName("name")), typ, value)
		prop.Optional = hasToken(node, "?")
		prop.Readonly = hasToken(node, "readonly")
		prop.Static = hasToken(node, "static")
		annotateSpan(prop, node)
		return prop, nil
	case "method_definition", "method_signature", "abstract_method_signature":
		name := ctx.propertyName(node.ChildByFieldName("name"))
		sig, err := ctx.parseSignature(node, "return_type")
		if err != nil {
			return nil, err
		}
		var body *ast.BlockStatement
		if bodyNode := node.ChildByFieldName("body"); bodyNode != nil {
			body, err = ctx.parseBlock(bodyNode)
			if err != nil {
				return nil, err
			}
		}
		if name == "constructor" {
			ctor := ast.NewClassConstructor(sig.Params, body)
			annotateSpan(ctor, node)
			return ctor, nil
		}
		method := ast.NewClassMethod(name, sig, body)
		method.Optional = hasToken(node, "?")
		method.Static = hasToken(node, "static")
		annotateSpan(method, node)
		return method, nil
	}
	return nil, nil
}

func (ctx *parseContext) parseEnum(node *sitter.Node) (*ast.EnumDeclaration, error) {
	var members []*ast.EnumMember
	for _, child := range namedChildren(node.ChildByFieldName("body")) {
		var member *ast.EnumMember
		switch child.Kind() {
		case "enum_assignment":
			init, err := ctx.parseExpression(child.ChildByFieldName("value"))
			if err != nil {
				return nil, err
			}
			member = ast.NewEnumMember(ctx.propertyName(child.ChildByFieldName("name")), init)
		default:
			member = ast.NewEnumMember(ctx.propertyName(child), nil)
		}
		annotateSpan(member, child)
		members = append(members, member)
	}
	decl := ast.NewEnumDeclaration(ctx.identifier(node.ChildByFieldName("name")), members)
	decl.Const = hasToken(node, "const")
	annotateSpan(decl, node)
	return decl, nil
}

func (ctx *parseContext) parseFunction(node *sitter.Node) (*ast.FunctionDeclaration, error) {
	sig, err := ctx.parseSignature(node, "return_type")
	if err != nil {
		return nil, err
	}
	var body *ast.BlockStatement
	if bodyNode := node.ChildByFieldName("body"); bodyNode != nil {
		body, err = ctx.parseBlock(bodyNode)
		if err != nil {
			return nil, err
		}
	}
	decl := ast.NewFunctionDeclaration(ctx.identifier(node.ChildByFieldName("name")), sig, body)
	annotateSpan(decl, node)
	return decl, nil
}

func (ctx *parseContext) parseVariables(node *sitter.Node) (*ast.VariableDeclaration, error) {
	kind := ast.VarKindVar
	if node.Kind() == "lexical_declaration" {
		kind = ast.VarKindLet
		if kindNode := node.ChildByFieldName("kind"); kindNode != nil && ctx.text(kindNode) == "const" {
			kind = ast.VarKindConst
		}
	}
	var declarators []*ast.VariableDeclarator
	for _, child := range namedChildren(node) {
		if child.Kind() != "variable_declarator" {
			continue
		}
		nameNode := child.ChildByFieldName("name")
		if nameNode == nil || nameNode.Kind() != "identifier" {
			// destructuring patterns bind no nameable type
			continue
		}
		var typ ast.TypeExpression
		if typeNode := child.ChildByFieldName("type"); typeNode != nil {
			t, err := ctx.parseType(typeNode)
			if err != nil {
				return nil, err
			}
			typ = t
		}
		var init ast.Expression
		if valueNode := child.ChildByFieldName("value"); valueNode != nil {
			v, err := ctx.parseExpression(valueNode)
			if err != nil {
				return nil, err
			}
			init = v
		}
		d := ast.NewVariableDeclarator(ctx.identifier(nameNode), typ, init)
		annotateSpan(d, child)
		declarators = append(declarators, d)
	}
	decl := ast.NewVariableDeclaration(kind, declarators)
	annotateSpan(decl, node)
	return decl, nil
}

func (ctx *parseContext) parseTypeParameters(node *sitter.Node) ([]*ast.TypeParameter, error) {
	if node == nil {
		return nil, nil
	}
	var params []*ast.TypeParameter
	for _, child := range namedChildren(node) {
		if child.Kind() != "type_parameter" {
			continue
		}
		var constraint, def ast.TypeExpression
		if c := child.ChildByFieldName("constraint"); c != nil {
			t, err := ctx.parseType(firstNamedChild(c))
			if err != nil {
				return nil, err
			}
			constraint = t
		}
		if d := child.ChildByFieldName("value"); d != nil {
			t, err := ctx.parseType(firstNamedChild(d))
			if err != nil {
				return nil, err
			}
			def = t
		}
		p := ast.NewTypeParameter(ctx.identifier(child.ChildByFieldName("name")), constraint, def)
		annotateSpan(p, child)
		params = append(params, p)
	}
	return params, nil
}

// parseSignature reads the type parameters, parameters and return type
// fields of a function-like node. retField names the return type field.
func (ctx *parseContext) parseSignature(node *sitter.Node, retField string) (*ast.FunctionSignature, error) {
	typeParamsNode := node.ChildByFieldName("type_parameters")
	if typeParamsNode == nil {
		typeParamsNode = childOfKind(node, "type_parameters")
	}
	typeParams, err := ctx.parseTypeParameters(typeParamsNode)
	if err != nil {
		return nil, err
	}
	paramsNode := node.ChildByFieldName("parameters")
	if paramsNode == nil {
		paramsNode = childOfKind(node, "formal_parameters")
	}
	params, err := ctx.parseParameters(paramsNode)
	if err != nil {
		return nil, err
	}
	var ret ast.TypeExpression
	if retNode := node.ChildByFieldName(retField); retNode != nil {
		ret, err = ctx.parseType(retNode)
		if err != nil {
			return nil, err
		}
	}
	sig := ast.NewFunctionSignature(typeParams, params, ret)
	annotateSpan(sig, node)
	return sig, nil
}

func (ctx *parseContext) parseParameters(node *sitter.Node) ([]*ast.Parameter, error) {
	var params []*ast.Parameter
	for _, child := range namedChildren(node) {
		if child.Kind() != "required_parameter" && child.Kind() != "optional_parameter" {
			continue
		}
		pattern := child.ChildByFieldName("pattern")
		rest := false
		name := "_"
		if pattern != nil {
			switch pattern.Kind() {
			case "rest_pattern":
				rest = true
				if inner := firstNamedChild(pattern); inner != nil && inner.Kind() == "identifier" {
					name = ctx.text(inner)
				}
			case "identifier", "this":
				name = ctx.text(pattern)
			}
		}
		if name == "this" {
			continue
		}
		var typ ast.TypeExpression
		if typeNode := child.ChildByFieldName("type"); typeNode != nil {
			t, err := ctx.parseType(typeNode)
			if err != nil {
				return nil, err
			}
			typ = t
		}
		id := ast.ID(name)
		annotateSpan(id, pattern)
		p := ast.NewParameter(id, typ)
		p.Optional = child.Kind() == "optional_parameter" || child.ChildByFieldName("value") != nil
		p.Rest = rest
		annotateSpan(p, child)
		params = append(params, p)
	}
	return params, nil
}
