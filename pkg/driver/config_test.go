package driver

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devgony/stc/pkg/builtins"
	"github.com/devgony/stc/pkg/env"
)

func TestParseConfig(t *testing.T) {
	cfg, err := ParseConfig([]byte(`
compilerOptions:
  strictNullChecks: true
  target: ES2017
  module: NodeNext
  lib: [ES5]
  maxDepth: 64
  paths:
    "@app/*": "src/*"
include: [src]
`))
	require.NoError(t, err)
	assert.Equal(t, env.ES2017, cfg.CompilerOptions.Target)
	assert.Equal(t, env.ModuleNodeNext, cfg.CompilerOptions.Module)
	assert.Equal(t, []string{"es5"}, cfg.Libs())
	assert.Equal(t, 64, cfg.AnalyzerConfig(nil).MaxDepth)
	assert.Equal(t, env.Rule{StrictNullChecks: true}, cfg.Rule())
	assert.Equal(t, "src/*", cfg.CompilerOptions.Paths["@app/*"])
}

func TestParseConfigDefaults(t *testing.T) {
	cfg, err := ParseConfig(nil)
	require.NoError(t, err)
	assert.Equal(t, env.Latest(), cfg.CompilerOptions.Target)
	assert.Equal(t, env.ModuleES2015, cfg.CompilerOptions.Module)
	assert.Equal(t, builtins.DefaultLibs(env.Latest()), cfg.Libs())
}

func TestParseConfigStrict(t *testing.T) {
	cfg, err := ParseConfig([]byte("compilerOptions:\n  strict: true\n  noDeclarationMerging: true\n"))
	require.NoError(t, err)
	want := env.StrictRule()
	want.NoDeclarationMerging = true
	assert.Equal(t, want, cfg.Rule())
}

func TestParseConfigRejects(t *testing.T) {
	cases := []struct {
		name string
		yaml string
		want error
	}{
		{name: "unknown field", yaml: "compilerOptions:\n  jsx: react\n"},
		{name: "bad target", yaml: "compilerOptions:\n  target: ES1999\n", want: env.ErrInvalidTarget},
		{name: "bad module", yaml: "compilerOptions:\n  module: amd2\n", want: env.ErrInvalidModule},
		{name: "negative depth", yaml: "compilerOptions:\n  maxDepth: -1\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseConfig([]byte(tc.yaml))
			require.Error(t, err)
			if tc.want != nil {
				assert.ErrorIs(t, err, tc.want)
			}
		})
	}
}

func TestLoadConfigFiles(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, ConfigFileName), "include: [src, extra.ts]\n")
	writeFile(t, filepath.Join(root, "src", "a.ts"), `export type A = string;`)
	writeFile(t, filepath.Join(root, "src", "nested", "b.tsx"), `export type B = number;`)
	writeFile(t, filepath.Join(root, "src", "node_modules", "dep", "index.d.ts"), `export type D = 1;`)
	writeFile(t, filepath.Join(root, "src", "notes.md"), `notes`)
	writeFile(t, filepath.Join(root, "extra.ts"), `export type E = 2;`)

	cfg, err := LoadConfig(filepath.Join(root, ConfigFileName))
	require.NoError(t, err)
	assert.Equal(t, root, cfg.Dir())
	files, err := cfg.Files()
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(root, "extra.ts"),
		filepath.Join(root, "src", "a.ts"),
		filepath.Join(root, "src", "nested", "b.tsx"),
	}, files)
}

func TestConfigEnv(t *testing.T) {
	cfg, err := ParseConfig([]byte("compilerOptions:\n  lib: [es5]\n  strict: true\n"))
	require.NoError(t, err)
	e, err := cfg.Env()
	require.NoError(t, err)
	assert.Equal(t, env.StrictRule(), e.Rule())
	assert.True(t, e.Global().Frozen())

	cfg.CompilerOptions.Lib = []string{"es1999"}
	_, err = cfg.Env()
	assert.ErrorIs(t, err, builtins.ErrUnknownLib)
}
