package parser

import (
	"fmt"
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/devgony/stc/pkg/ast"
)

func (ctx *parseContext) parseStatements(node *sitter.Node) ([]ast.Statement, error) {
	body := make([]ast.Statement, 0, node.NamedChildCount())
	for _, child := range namedChildren(node) {
		stmt, err := ctx.parseStatement(child)
		if err != nil {
			return nil, err
		}
		if stmt != nil {
			body = append(body, stmt)
		}
	}
	return body, nil
}

// parseStatement converts one statement. It returns nil for statements
// without type-level meaning.
func (ctx *parseContext) parseStatement(node *sitter.Node) (ast.Statement, error) {
	switch node.Kind() {
	case "type_alias_declaration":
		return ctx.parseTypeAlias(node)
	case "interface_declaration":
		return ctx.parseInterface(node)
	case "class_declaration", "abstract_class_declaration":
		return ctx.parseClass(node)
	case "enum_declaration":
		return ctx.parseEnum(node)
	case "function_declaration", "generator_function_declaration", "function_signature":
		return ctx.parseFunction(node)
	case "lexical_declaration", "variable_declaration":
		return ctx.parseVariables(node)
	case "internal_module", "module":
		return ctx.parseNamespace(node)
	case "ambient_declaration":
		return ctx.parseAmbient(node)
	case "import_statement":
		return ctx.parseImport(node)
	case "export_statement":
		return ctx.parseExport(node)
	case "statement_block":
		return ctx.parseBlock(node)
	case "expression_statement":
		inner := firstNamedChild(node)
		if inner == nil {
			return nil, nil
		}
		if inner.Kind() == "internal_module" {
			return ctx.parseNamespace(inner)
		}
		expr, err := ctx.parseExpression(inner)
		if err != nil {
			return nil, err
		}
		stmt := ast.NewExpressionStatement(expr)
		annotateSpan(stmt, node)
		return stmt, nil
	case "return_statement":
		var arg ast.Expression
		if inner := firstNamedChild(node); inner != nil {
			expr, err := ctx.parseExpression(inner)
			if err != nil {
				return nil, err
			}
			arg = expr
		}
		stmt := ast.NewReturnStatement(arg)
		annotateSpan(stmt, node)
		return stmt, nil
	}
	return nil, nil
}

func (ctx *parseContext) parseBlock(node *sitter.Node) (*ast.BlockStatement, error) {
	if node == nil {
		return nil, nil
	}
	body, err := ctx.parseStatements(node)
	if err != nil {
		return nil, err
	}
	block := ast.NewBlockStatement(body)
	annotateSpan(block, node)
	return block, nil
}

// parseAmbient handles `declare ...`. `declare global { }` and
// `declare module "x" { }` blocks are not modelled.
func (ctx *parseContext) parseAmbient(node *sitter.Node) (ast.Statement, error) {
	for _, child := range namedChildren(node) {
		if child.Kind() == "statement_block" {
			return nil, nil
		}
		stmt, err := ctx.parseStatement(child)
		if err != nil || stmt == nil {
			return stmt, err
		}
		markDeclare(stmt)
		annotateSpan(stmt, node)
		return stmt, nil
	}
	return nil, nil
}

func markDeclare(stmt ast.Statement) {
	switch n := stmt.(type) {
	case *ast.TypeAliasDeclaration:
		n.Declare = true
	case *ast.InterfaceDeclaration:
		n.Declare = true
	case *ast.ClassDeclaration:
		n.Declare = true
	case *ast.EnumDeclaration:
		n.Declare = true
	case *ast.FunctionDeclaration:
		n.Declare = true
	case *ast.VariableDeclaration:
		n.Declare = true
	case *ast.NamespaceDeclaration:
		n.Declare = true
		for _, inner := range n.Body {
			markDeclare(inner)
		}
	case *ast.ExportDeclaration:
		markDeclare(n.Declaration)
	}
}

func (ctx *parseContext) parseImport(node *sitter.Node) (ast.Statement, error) {
	sourceNode := node.ChildByFieldName("source")
	if sourceNode == nil {
		// `import x = require("y")` and side-effect-free forms are not modelled.
		return nil, nil
	}
	decl := ast.NewImportDeclaration(unquote(ctx.text(sourceNode)), nil)
	decl.TypeOnly = hasToken(node, "type")
	clause := childOfKind(node, "import_clause")
	for _, child := range namedChildren(clause) {
		switch child.Kind() {
		case "identifier":
			decl.Default = ctx.identifier(child)
		case "namespace_import":
			decl.Namespace = ctx.identifier(firstNamedChild(child))
		case "named_imports":
			for _, specNode := range namedChildren(child) {
				if specNode.Kind() != "import_specifier" {
					continue
				}
				name := specNode.ChildByFieldName("name")
				local := specNode.ChildByFieldName("alias")
				if local == nil {
					local = name
				}
				spec := ast.NewImportSpecifier(ctx.propertyName(name), ctx.identifier(local))
				annotateSpan(spec, specNode)
				decl.Specifiers = append(decl.Specifiers, spec)
			}
		}
	}
	annotateSpan(decl, node)
	return decl, nil
}

func (ctx *parseContext) parseExport(node *sitter.Node) (ast.Statement, error) {
	if declNode := node.ChildByFieldName("declaration"); declNode != nil {
		inner, err := ctx.parseStatement(declNode)
		if err != nil || inner == nil {
			return nil, err
		}
		exp := ast.NewExportDeclaration(inner)
		exp.Default = hasToken(node, "default")
		annotateSpan(exp, node)
		return exp, nil
	}

	source := ""
	if sourceNode := node.ChildByFieldName("source"); sourceNode != nil {
		source = unquote(ctx.text(sourceNode))
	}

	if valueNode := node.ChildByFieldName("value"); valueNode != nil {
		if valueNode.Kind() != "identifier" {
			return nil, nil
		}
		spec := ast.NewExportSpecifier(ctx.identifier(valueNode), "default")
		named := ast.NewExportNamed([]*ast.ExportSpecifier{spec}, "")
		annotateSpan(named, node)
		return named, nil
	}

	if clause := childOfKind(node, "export_clause"); clause != nil {
		var specs []*ast.ExportSpecifier
		for _, specNode := range namedChildren(clause) {
			if specNode.Kind() != "export_specifier" {
				continue
			}
			name := specNode.ChildByFieldName("name")
			exported := ctx.propertyName(name)
			if alias := specNode.ChildByFieldName("alias"); alias != nil {
				exported = ctx.propertyName(alias)
			}
			spec := ast.NewExportSpecifier(ctx.identifier(name), exported)
			annotateSpan(spec, specNode)
			specs = append(specs, spec)
		}
		named := ast.NewExportNamed(specs, source)
		annotateSpan(named, node)
		return named, nil
	}

	if hasToken(node, "*") && source != "" && childOfKind(node, "namespace_export") == nil {
		named := ast.NewExportNamed(nil, source)
		named.Star = true
		annotateSpan(named, node)
		return named, nil
	}
	return nil, nil
}

func (ctx *parseContext) parseNamespace(node *sitter.Node) (ast.Statement, error) {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil || nameNode.Kind() == "string" {
		return nil, nil
	}
	var body []ast.Statement
	if bodyNode := node.ChildByFieldName("body"); bodyNode != nil {
		parsed, err := ctx.parseStatements(bodyNode)
		if err != nil {
			return nil, err
		}
		body = parsed
	}
	// `namespace A.B { }` nests B, exported, inside A.
	parts := strings.Split(ctx.text(nameNode), ".")
	for i := len(parts) - 1; i >= 0; i-- {
		name := strings.TrimSpace(parts[i])
		if name == "" {
			return nil, fmt.Errorf("parser: %s: empty namespace name", ctx.path)
		}
		id := ast.ID(name)
		annotateSpan(id, nameNode)
		ns := ast.NewNamespaceDeclaration(id, body)
		annotateSpan(ns, node)
		if i == 0 {
			return ns, nil
		}
		exp := ast.NewExportDeclaration(ns)
		annotateSpan(exp, node)
		body = []ast.Statement{exp}
	}
	return nil, nil
}
