package builtins

import (
	"sync"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devgony/stc/pkg/ast"
	"github.com/devgony/stc/pkg/env"
)

func libNames(libs []*Lib) []string {
	out := make([]string, len(libs))
	for i, lib := range libs {
		out[i] = lib.Name()
	}
	return out
}

func TestLoadExpandsReferences(t *testing.T) {
	libs, err := Load("es2015")
	require.NoError(t, err)
	names := libNames(libs)
	assert.Equal(t, "es5", names[0])
	assert.Equal(t, "es2015", names[len(names)-1])
	assert.Contains(t, names, "es2015.collection")
	assert.Contains(t, names, "es2015.promise")

	seen := map[string]int{}
	for _, n := range names {
		seen[n]++
	}
	for n, count := range seen {
		assert.Equal(t, 1, count, "lib %s listed twice", n)
	}
}

func TestLoadAllIsOrderIndependent(t *testing.T) {
	a, err := LoadAll([]string{"dom.lite", "es2020", "dom.lite"})
	require.NoError(t, err)
	b, err := LoadAll([]string{"es2020", "dom.lite"})
	require.NoError(t, err)
	assert.Equal(t, libNames(a), libNames(b))
}

func TestLoadUnknownLib(t *testing.T) {
	_, err := Load("es1999")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownLib))

	_, err = LoadAll([]string{"es5", "nope"})
	assert.True(t, errors.Is(err, ErrUnknownLib))
}

func TestModuleParsedOnce(t *testing.T) {
	libs, err := Load("es5")
	require.NoError(t, err)
	lib := libs[0]

	var wg sync.WaitGroup
	results := make([]*ast.Module, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			mod, err := lib.Module()
			assert.NoError(t, err)
			results[i] = mod
		}(i)
	}
	wg.Wait()
	for _, mod := range results {
		assert.Same(t, results[0], mod)
	}
	assert.Equal(t, 1, lib.parses)

	again, err := Load("es5")
	require.NoError(t, err)
	assert.Same(t, lib, again[0])
}

func TestEveryLibParses(t *testing.T) {
	unresolved := env.DefaultShared().UnresolvedMark()
	for _, name := range Names() {
		libs, err := Load(name)
		require.NoError(t, err, name)
		for _, lib := range libs {
			mod, err := lib.Module()
			require.NoError(t, err, lib.Name())
			for _, stmt := range mod.Body {
				if alias, ok := stmt.(*ast.TypeAliasDeclaration); ok {
					assert.Equal(t, unresolved, alias.ID.Mark, alias.ID.Name)
				}
			}
		}
	}
}

func TestDefaultLibs(t *testing.T) {
	assert.Equal(t, []string{"es5", "dom.lite"}, DefaultLibs(env.ES3))
	assert.Equal(t, []string{"es2015", "dom.lite"}, DefaultLibs(env.ES2015))
	assert.Equal(t, []string{"es2017", "dom.lite"}, DefaultLibs(env.ES2019))
	assert.Equal(t, []string{"es2020", "dom.lite"}, DefaultLibs(env.ES2022))
	assert.Equal(t, []string{"esnext", "dom.lite"}, DefaultLibs(env.Latest()))
	for _, target := range []env.Target{env.ES5, env.ES2020, env.ESNext} {
		_, err := LoadAll(DefaultLibs(target))
		assert.NoError(t, err)
	}
}

func TestNamesSorted(t *testing.T) {
	names := Names()
	require.NotEmpty(t, names)
	assert.IsIncreasing(t, names)
	assert.Contains(t, names, "esnext")
}
