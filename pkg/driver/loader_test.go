package driver

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devgony/stc/pkg/analyzer"
	"github.com/devgony/stc/pkg/env"
)

func testEnv(t *testing.T, module env.ModuleConfig) *env.Env {
	t.Helper()
	e, err := analyzer.SimpleFromNames(env.StrictRule(), env.ESNext, module, []string{"es5"})
	require.NoError(t, err)
	return e
}

func newTestLoader(t *testing.T, root string, module env.ModuleConfig, opts ...LoaderOption) *ModuleLoader {
	t.Helper()
	loader := NewModuleLoader(testEnv(t, module), NewDirSource(root), analyzer.Config{}, opts...)
	t.Cleanup(loader.Close)
	return loader
}

func codesOf(diags []analyzer.Diagnostic) []analyzer.Code {
	out := make([]analyzer.Code, 0, len(diags))
	for _, d := range diags {
		out = append(out, d.Code)
	}
	return out
}

func TestLoaderResolvesRelativeImports(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "lib", "point.ts"), `
export interface Point { x: number; y: number }
`)
	writeFile(t, filepath.Join(root, "main.ts"), `
import { Point } from "./lib/point";
const ok: Point = { x: 1, y: 2 };
const bad: Point = { x: "one", y: 2 };
`)

	loader := newTestLoader(t, root, env.ModuleES2015)
	mod, err := loader.Load("main.ts")
	require.NoError(t, err)
	assert.Equal(t, []analyzer.Code{analyzer.CodeNotAssignable}, codesOf(mod.Diagnostics))
	assert.Equal(t, []string{"./lib/point"}, mod.Imports)
	assert.True(t, mod.Storage.Frozen())

	dep, err := loader.Load("lib/point.ts")
	require.NoError(t, err)
	assert.Empty(t, dep.Diagnostics)
	assert.NotEqual(t, mod.ID, dep.ID)
}

func TestLoaderProbesIndexAndDeclarationFiles(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "util", "index.ts"), `export type Id = string;`)
	writeFile(t, filepath.Join(root, "ambient.d.ts"), `export interface Ambient { a: string }`)
	writeFile(t, filepath.Join(root, "node_modules", "pkg", "index.d.ts"), `export type Version = number;`)
	writeFile(t, filepath.Join(root, "main.ts"), `
import { Id } from "./util";
import { Ambient } from "./ambient";
import { Version } from "pkg";
const id: Id = "x";
const v: Version = 1;
`)

	loader := newTestLoader(t, root, env.ModuleES2015)
	mod, err := loader.Load("main.ts")
	require.NoError(t, err)
	assert.Empty(t, mod.Diagnostics)
}

func TestLoaderNode16RequiresExtensions(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "lib.ts"), `export type Id = string;`)
	writeFile(t, filepath.Join(root, "main.ts"), `
import { Id } from "./lib.js";
import { Other } from "./lib";
`)

	loader := newTestLoader(t, root, env.ModuleNode16)
	mod, err := loader.Load("main.ts")
	require.NoError(t, err)
	assert.Equal(t, []analyzer.Code{analyzer.CodeModuleNotFound}, codesOf(mod.Diagnostics))
	assert.Contains(t, mod.Diagnostics[0].Message, "'./lib'")
}

func TestLoaderPathAliases(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "src", "shared", "types.ts"), `export type Name = string;`)
	writeFile(t, filepath.Join(root, "main.ts"), `
import { Name } from "@shared/types";
const n: Name = "stc";
`)

	loader := newTestLoader(t, root, env.ModuleES2015, WithPathAliases(map[string]string{"@shared/*": "src/shared/*"}))
	mod, err := loader.Load("main.ts")
	require.NoError(t, err)
	assert.Empty(t, mod.Diagnostics)
}

func TestLoaderReportsImportCycles(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.ts"), `
import { B } from "./b";
export interface A { b: B }
`)
	writeFile(t, filepath.Join(root, "b.ts"), `
import { A } from "./a";
export interface B { a: A }
`)

	loader := newTestLoader(t, root, env.ModuleES2015)
	a, err := loader.Load("a.ts")
	require.NoError(t, err)
	assert.Empty(t, a.Diagnostics)

	b, err := loader.Load("b.ts")
	require.NoError(t, err)
	require.Equal(t, []analyzer.Code{analyzer.CodeModuleNotFound}, codesOf(b.Diagnostics))
	require.Len(t, b.Diagnostics[0].Notes, 1)
	assert.Contains(t, b.Diagnostics[0].Notes[0].Message, "import cycle")
}

func TestLoaderSelfImport(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "self.ts"), `import { X } from "./self";`)

	loader := newTestLoader(t, root, env.ModuleES2015)
	_, err := loader.Resolve("./self", "self.ts")
	require.ErrorIs(t, err, ErrImportCycle)
}

func TestLoaderMissingModule(t *testing.T) {
	loader := newTestLoader(t, t.TempDir(), env.ModuleES2015)
	_, err := loader.Resolve("./nowhere", "main.ts")
	require.ErrorIs(t, err, analyzer.ErrModuleNotFound)
}

func TestLoaderParseErrorsAreCached(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "broken.ts"), `interface {`)

	loader := newTestLoader(t, root, env.ModuleES2015)
	_, first := loader.Load("broken.ts")
	require.Error(t, first)
	_, second := loader.Load("./broken.ts")
	assert.Equal(t, first, second)
}

func TestLoaderSharesConcurrentLoads(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "shared.ts"), `export type S = { value: string };`)

	loader := newTestLoader(t, root, env.ModuleES2015)
	const n = 8
	mods := make([]*Module, n)
	var wg sync.WaitGroup
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			mod, err := loader.Load("shared.ts")
			assert.NoError(t, err)
			mods[i] = mod
		}()
	}
	wg.Wait()
	for _, mod := range mods[1:] {
		assert.Same(t, mods[0], mod)
	}
}

func writeFile(t *testing.T, path, contents string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(strings.TrimSpace(contents)+"\n"), 0o644); err != nil {
		t.Fatalf("write file %s: %v", path, err)
	}
}
