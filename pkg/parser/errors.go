package parser

import (
	"fmt"
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

// ParseError reports the first syntax error of a file.
type ParseError struct {
	Path    string
	Line    int
	Column  int
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parser: %s:%d:%d: %s", e.Path, e.Line, e.Column, e.Message)
}

func newParseError(path string, root *sitter.Node, source []byte) *ParseError {
	bad := firstErrorNode(root)
	if bad == nil {
		return &ParseError{Path: path, Line: 1, Column: 1, Message: "syntax errors present"}
	}
	span := spanFromNode(bad)
	msg := "unexpected syntax"
	if bad.IsMissing() {
		msg = fmt.Sprintf("missing %s", bad.Kind())
	} else if text := strings.TrimSpace(sliceContent(bad, source)); text != "" {
		if len(text) > 40 {
			text = text[:40] + "..."
		}
		msg = fmt.Sprintf("unexpected %q", text)
	}
	return &ParseError{Path: path, Line: span.Start.Line, Column: span.Start.Column, Message: msg}
}

func firstErrorNode(node *sitter.Node) *sitter.Node {
	if node == nil {
		return nil
	}
	if node.IsError() || node.IsMissing() {
		return node
	}
	if !node.HasError() {
		return nil
	}
	for i := uint(0); i < node.ChildCount(); i++ {
		if found := firstErrorNode(node.Child(i)); found != nil {
			return found
		}
	}
	return nil
}
