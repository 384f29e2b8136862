package parser

import (
	"strconv"
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/devgony/stc/pkg/ast"
)

// parseContext carries the immutable state shared by the node converters.
type parseContext struct {
	path   string
	source []byte
}

func newParseContext(path string, source []byte) *parseContext {
	return &parseContext{path: path, source: source}
}

func (ctx *parseContext) text(node *sitter.Node) string {
	return sliceContent(node, ctx.source)
}

func (ctx *parseContext) identifier(node *sitter.Node) *ast.Identifier {
	if node == nil {
		return nil
	}
	id := ast.ID(ctx.text(node))
	annotateSpan(id, node)
	return id
}

// propertyName returns the key of a member name node: identifiers verbatim,
// string keys unquoted, computed keys without brackets.
func (ctx *parseContext) propertyName(node *sitter.Node) string {
	if node == nil {
		return ""
	}
	switch node.Kind() {
	case "string":
		return unquote(ctx.text(node))
	case "computed_property_name":
		inner := firstNamedChild(node)
		if inner != nil && inner.Kind() == "string" {
			return unquote(ctx.text(inner))
		}
		return strings.TrimSuffix(strings.TrimPrefix(ctx.text(node), "["), "]")
	}
	return ctx.text(node)
}

func sliceContent(node *sitter.Node, source []byte) string {
	if node == nil {
		return ""
	}
	start := int(node.StartByte())
	end := int(node.EndByte())
	if start < 0 || end < start || end > len(source) {
		return ""
	}
	return string(source[start:end])
}

func spanFromNode(node *sitter.Node) ast.Span {
	if node == nil {
		return ast.Span{}
	}
	start := node.StartPosition()
	end := node.EndPosition()
	return ast.Span{
		Start: ast.Position{Line: int(start.Row) + 1, Column: int(start.Column) + 1},
		End:   ast.Position{Line: int(end.Row) + 1, Column: int(end.Column) + 1},
	}
}

func annotateSpan(node ast.Node, tsNode *sitter.Node) {
	if node == nil || tsNode == nil {
		return
	}
	ast.SetSpan(node, spanFromNode(tsNode))
}

func firstNamedChild(node *sitter.Node) *sitter.Node {
	if node == nil {
		return nil
	}
	for i := uint(0); i < node.NamedChildCount(); i++ {
		child := node.NamedChild(i)
		if child != nil && !isIgnorableNode(child) {
			return child
		}
	}
	return nil
}

func namedChildren(node *sitter.Node) []*sitter.Node {
	if node == nil {
		return nil
	}
	out := make([]*sitter.Node, 0, node.NamedChildCount())
	for i := uint(0); i < node.NamedChildCount(); i++ {
		child := node.NamedChild(i)
		if child != nil && !isIgnorableNode(child) {
			out = append(out, child)
		}
	}
	return out
}

func childOfKind(node *sitter.Node, kind string) *sitter.Node {
	if node == nil {
		return nil
	}
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child != nil && child.Kind() == kind {
			return child
		}
	}
	return nil
}

// hasToken reports whether node has a direct child of the given kind, which
// for anonymous nodes is the token text (`?`, `readonly`, `static`).
func hasToken(node *sitter.Node, kind string) bool {
	return childOfKind(node, kind) != nil
}

// tokenBefore returns the kind of the anonymous token directly preceding the
// first child of kind target, or "".
func tokenBefore(node *sitter.Node, target string) string {
	if node == nil {
		return ""
	}
	prev := ""
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child == nil {
			continue
		}
		if child.Kind() == target {
			return prev
		}
		prev = child.Kind()
	}
	return ""
}

func isIgnorableNode(node *sitter.Node) bool {
	if node == nil {
		return false
	}
	switch node.Kind() {
	case "comment", "html_comment":
		return true
	}
	return false
}

// unquote decodes a JavaScript string literal, single or double quoted.
func unquote(raw string) string {
	if len(raw) < 2 {
		return raw
	}
	quote := raw[0]
	if (quote != '"' && quote != '\'') || raw[len(raw)-1] != quote {
		return raw
	}
	body := raw[1 : len(raw)-1]
	if quote == '\'' {
		body = strings.ReplaceAll(body, `\'`, `'`)
		body = strings.ReplaceAll(body, `"`, `\"`)
	}
	if s, err := strconv.Unquote(`"` + body + `"`); err == nil {
		return s
	}
	return body
}
