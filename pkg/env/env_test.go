package env

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/devgony/stc/pkg/storage"
)

func TestParseTarget(t *testing.T) {
	cases := map[string]Target{
		"es5":    ES5,
		"ES6":    ES2015,
		"es2020": ES2020,
		"ESNext": ESNext,
		"latest": ESNext,
	}
	for in, want := range cases {
		got, err := ParseTarget(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseTarget("es1999")
	assert.True(t, errors.Is(err, ErrInvalidTarget))
	assert.Equal(t, ESNext, Latest())
}

func TestParseModuleConfig(t *testing.T) {
	got, err := ParseModuleConfig("NodeNext")
	require.NoError(t, err)
	assert.Equal(t, ModuleNodeNext, got)
	assert.True(t, got.RequiresExtension())

	got, err = ParseModuleConfig("esnext")
	require.NoError(t, err)
	assert.Equal(t, ModuleES2015, got)
	assert.False(t, got.RequiresExtension())

	_, err = ParseModuleConfig("amd")
	assert.True(t, errors.Is(err, ErrInvalidModule))
}

func TestTextUnmarshalThroughYAML(t *testing.T) {
	var cfg struct {
		Target Target       `yaml:"target"`
		Module ModuleConfig `yaml:"module"`
	}
	require.NoError(t, yaml.Unmarshal([]byte("target: es2017\nmodule: commonjs\n"), &cfg))
	assert.Equal(t, ES2017, cfg.Target)
	assert.Equal(t, ModuleCommonJS, cfg.Module)

	err := yaml.Unmarshal([]byte("target: es1\n"), &cfg)
	assert.Error(t, err)
}

func TestDefaultSharedIsSingleton(t *testing.T) {
	assert.Same(t, DefaultShared(), DefaultShared())
	assert.NotEqual(t, DefaultShared().UnresolvedMark(), NewShared().UnresolvedMark())
}

func TestEnvAccessorsCopyLibs(t *testing.T) {
	shared := NewShared()
	global := storage.NewGlobal(shared.UnresolvedMark(), nil)
	libs := []string{"es5"}
	e := New(StrictRule(), ES2020, ModuleBundler, shared, global, libs)
	libs[0] = "mutated"

	assert.Equal(t, []string{"es5"}, e.Libs())
	assert.Same(t, global, e.Global())
	assert.Equal(t, ES2020, e.Target())
	assert.True(t, e.Rule().StrictNullChecks)
	assert.Equal(t, ModuleBundler, e.Module())
}

func TestRuleMergePolicy(t *testing.T) {
	assert.True(t, Rule{}.MergePolicy().CanMerge(storage.DeclInterface, storage.DeclInterface))
	assert.False(t, Rule{NoDeclarationMerging: true}.MergePolicy().CanMerge(storage.DeclInterface, storage.DeclInterface))
}
