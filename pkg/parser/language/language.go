package language

import (
	"unsafe"

	sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"
)

// TypeScript returns the tree-sitter language for `.ts` and `.d.ts` sources.
func TypeScript() *sitter.Language {
	return sitter.NewLanguage(unsafe.Pointer(tree_sitter_typescript.LanguageTypescript()))
}

// TSX returns the tree-sitter language for `.tsx` sources.
func TSX() *sitter.Language {
	return sitter.NewLanguage(unsafe.Pointer(tree_sitter_typescript.LanguageTSX()))
}
