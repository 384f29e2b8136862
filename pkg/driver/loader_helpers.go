package driver

import (
	"path"
	"slices"
	"strings"

	"github.com/devgony/stc/pkg/ast"
	"github.com/devgony/stc/pkg/env"
)

// candidatePaths lists the files a specifier may name, in probing order.
func candidatePaths(specifier, fromPath string, module env.ModuleConfig, aliases map[string]string) []string {
	if target, ok := aliasTarget(specifier, aliases); ok {
		return probe(target, module)
	}
	if isRelative(specifier) {
		return probe(path.Join(path.Dir(fromPath), specifier), module)
	}
	if strings.HasPrefix(specifier, "/") {
		return probe(path.Clean(specifier), module)
	}
	name := packageName(specifier)
	sub := strings.TrimPrefix(strings.TrimPrefix(specifier, name), "/")
	var out []string
	for _, base := range []string{"node_modules/" + name, "node_modules/@types/" + typesName(name)} {
		if sub != "" {
			out = append(out, probe(path.Join(base, sub), env.ModuleNone)...)
			continue
		}
		out = append(out, base+"/index.d.ts", base+"/index.ts")
	}
	return out
}

// probe expands one extensionless or .js path into file candidates.
func probe(p string, module env.ModuleConfig) []string {
	switch {
	case strings.HasSuffix(p, ".ts"), strings.HasSuffix(p, ".tsx"):
		return []string{p}
	case strings.HasSuffix(p, ".js"):
		trimmed := strings.TrimSuffix(p, ".js")
		return []string{trimmed + ".ts", trimmed + ".tsx", trimmed + ".d.ts"}
	case strings.HasSuffix(p, ".mjs"):
		return []string{strings.TrimSuffix(p, ".mjs") + ".mts"}
	}
	if module.RequiresExtension() {
		// extensionless relative imports only resolve to directories' index
		return []string{p + "/index.ts", p + "/index.d.ts"}
	}
	return []string{p + ".ts", p + ".tsx", p + ".d.ts", p + "/index.ts", p + "/index.d.ts"}
}

func isRelative(specifier string) bool {
	return specifier == "." || specifier == ".." || strings.HasPrefix(specifier, "./") || strings.HasPrefix(specifier, "../")
}

// packageName returns the package part of a bare specifier, keeping the
// scope of @scope/name.
func packageName(specifier string) string {
	parts := strings.Split(specifier, "/")
	if strings.HasPrefix(specifier, "@") && len(parts) > 1 {
		return parts[0] + "/" + parts[1]
	}
	return parts[0]
}

// typesName maps @scope/name to the DefinitelyTyped directory scope__name.
func typesName(name string) string {
	if strings.HasPrefix(name, "@") {
		return strings.Replace(strings.TrimPrefix(name, "@"), "/", "__", 1)
	}
	return name
}

// aliasTarget applies the longest matching prefix of the configured paths.
func aliasTarget(specifier string, aliases map[string]string) (string, bool) {
	if len(aliases) == 0 {
		return "", false
	}
	prefixes := make([]string, 0, len(aliases))
	for prefix := range aliases {
		prefixes = append(prefixes, prefix)
	}
	slices.SortFunc(prefixes, func(a, b string) int { return len(b) - len(a) })
	for _, prefix := range prefixes {
		pattern := strings.TrimSuffix(prefix, "*")
		if prefix == specifier || (strings.HasSuffix(prefix, "*") && strings.HasPrefix(specifier, pattern)) {
			target := strings.TrimSuffix(aliases[prefix], "*")
			return path.Clean(target + strings.TrimPrefix(specifier, pattern)), true
		}
	}
	return "", false
}

// importSpecifiers lists the modules a parsed file imports or re-exports from.
func importSpecifiers(mod *ast.Module) []string {
	seen := make(map[string]bool)
	var out []string
	add := func(s string) {
		if s != "" && !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	for _, stmt := range mod.Body {
		switch n := stmt.(type) {
		case *ast.ImportDeclaration:
			add(n.Source)
		case *ast.ExportNamed:
			add(n.Source)
		}
	}
	return out
}

// normalizePath turns a user-supplied path into the slash form used as cache key.
func normalizePath(p string) string {
	p = strings.ReplaceAll(p, "\\", "/")
	if strings.HasPrefix(p, "/") {
		return path.Clean(p)
	}
	return strings.TrimPrefix(path.Clean(p), "./")
}
