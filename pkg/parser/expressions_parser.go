package parser

import (
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/devgony/stc/pkg/ast"
)

// parseExpression converts the expression forms that initializer typing
// understands. Everything else becomes an OpaqueExpression.
func (ctx *parseContext) parseExpression(node *sitter.Node) (ast.Expression, error) {
	if node == nil {
		return nil, nil
	}
	var out ast.Expression
	switch node.Kind() {
	case "string":
		out = ast.NewStringLiteral(unquote(ctx.text(node)))
	case "template_string":
		if strings.Contains(ctx.text(node), "${") {
			out = ast.NewOpaqueExpression(ctx.text(node))
		} else {
			out = ast.NewStringLiteral(strings.Trim(ctx.text(node), "`"))
		}
	case "number":
		out = numberExpression(ctx.text(node))
	case "true", "false":
		out = ast.NewBooleanLiteral(node.Kind() == "true")
	case "null":
		out = ast.NewNullLiteral()
	case "undefined", "identifier":
		out = ctx.identifier(node)
	case "parenthesized_expression", "satisfies_expression", "non_null_expression":
		return ctx.parseExpression(firstNamedChild(node))
	case "unary_expression":
		operand := node.ChildByFieldName("argument")
		op := node.ChildByFieldName("operator")
		if op != nil && ctx.text(op) == "-" && operand != nil && operand.Kind() == "number" {
			out = numberExpression("-" + ctx.text(operand))
		} else {
			out = ast.NewOpaqueExpression(ctx.text(node))
		}
	case "array":
		var elems []ast.Expression
		for _, child := range namedChildren(node) {
			elem, err := ctx.parseExpression(child)
			if err != nil {
				return nil, err
			}
			elems = append(elems, elem)
		}
		out = ast.NewArrayLiteral(elems)
	case "object":
		obj, err := ctx.parseObject(node)
		if err != nil {
			return nil, err
		}
		out = obj
	case "as_expression":
		children := namedChildren(node)
		if len(children) == 0 {
			return ast.NewOpaqueExpression(ctx.text(node)), nil
		}
		expr, err := ctx.parseExpression(children[0])
		if err != nil {
			return nil, err
		}
		as := ast.NewAsExpression(expr, nil)
		if len(children) < 2 || strings.HasSuffix(strings.TrimSpace(ctx.text(node)), "as const") {
			as.Const = true
		} else {
			typ, err := ctx.parseType(children[1])
			if err != nil {
				return nil, err
			}
			as.Type = typ
		}
		out = as
	default:
		out = ast.NewOpaqueExpression(ctx.text(node))
	}
	annotateSpan(out, node)
	return out, nil
}

func (ctx *parseContext) parseObject(node *sitter.Node) (*ast.ObjectLiteral, error) {
	var props []*ast.ObjectProperty
	for _, child := range namedChildren(node) {
		var prop *ast.ObjectProperty
		switch child.Kind() {
		case "pair":
			value, err := ctx.parseExpression(child.ChildByFieldName("value"))
			if err != nil {
				return nil, err
			}
			prop = ast.NewObjectProperty(ctx.propertyName(child.ChildByFieldName("key")), value)
		case "shorthand_property_identifier":
			id := ast.ID(ctx.text(child))
			annotateSpan(id, child)
			prop = ast.NewObjectProperty(id.Name, id)
		default:
			// Spreads and methods make the object shape unknown to us.
			prop = ast.NewObjectProperty("", ast.NewOpaqueExpression(ctx.text(child)))
		}
		annotateSpan(prop, child)
		props = append(props, prop)
	}
	return ast.NewObjectLiteral(props), nil
}

func numberExpression(text string) ast.Expression {
	if strings.HasSuffix(text, "n") {
		return ast.NewBigIntLiteral(strings.TrimSuffix(text, "n"))
	}
	return ast.NewNumberLiteral(text)
}
