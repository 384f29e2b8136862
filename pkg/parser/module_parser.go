package parser

import (
	"fmt"
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/devgony/stc/pkg/ast"
	"github.com/devgony/stc/pkg/parser/language"
)

// ModuleParser wraps tree-sitter parsers configured for TypeScript and TSX.
// A ModuleParser is not safe for concurrent use; create one per goroutine.
type ModuleParser struct {
	ts  *sitter.Parser
	tsx *sitter.Parser
}

// NewModuleParser constructs a parser with the TypeScript grammars loaded.
func NewModuleParser() (*ModuleParser, error) {
	ts, err := newSitterParser(language.TypeScript())
	if err != nil {
		return nil, err
	}
	tsx, err := newSitterParser(language.TSX())
	if err != nil {
		ts.Close()
		return nil, err
	}
	return &ModuleParser{ts: ts, tsx: tsx}, nil
}

func newSitterParser(lang *sitter.Language) (*sitter.Parser, error) {
	if lang == nil {
		return nil, fmt.Errorf("parser: typescript language not available")
	}
	p := sitter.NewParser()
	if err := p.SetLanguage(lang); err != nil {
		p.Close()
		return nil, fmt.Errorf("parser: %w", err)
	}
	return p, nil
}

// Close releases parser resources.
func (p *ModuleParser) Close() {
	if p == nil {
		return
	}
	if p.ts != nil {
		p.ts.Close()
	}
	if p.tsx != nil {
		p.tsx.Close()
	}
}

// ParseModule parses TypeScript source into the type-level AST. Statements
// with no type-level meaning (loops, conditionals) are dropped.
func (p *ModuleParser) ParseModule(path string, source []byte) (*ast.Module, error) {
	if p == nil || p.ts == nil {
		return nil, fmt.Errorf("parser: nil parser")
	}
	sp := p.ts
	if strings.HasSuffix(path, ".tsx") {
		sp = p.tsx
	}

	tree := sp.Parse(source, nil)
	if tree == nil {
		return nil, fmt.Errorf("parser: %s: parse cancelled", path)
	}
	defer tree.Close()

	root := tree.RootNode()
	if root == nil || root.Kind() != "program" {
		return nil, fmt.Errorf("parser: %s: unexpected root node", path)
	}
	if root.HasError() {
		return nil, newParseError(path, root, source)
	}

	ctx := newParseContext(path, source)
	body, err := ctx.parseStatements(root)
	if err != nil {
		return nil, err
	}
	module := ast.NewModule(path, body)
	annotateSpan(module, root)
	return module, nil
}
