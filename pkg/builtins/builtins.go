// Package builtins ships the ambient declaration libraries. Libraries are
// described by an embedded manifest and parsed at most once per process;
// every caller shares the same hygiene-applied modules afterwards.
package builtins

import (
	_ "embed"
	"slices"
	"sync"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/devgony/stc/pkg/ast"
	"github.com/devgony/stc/pkg/env"
	"github.com/devgony/stc/pkg/hygiene"
	"github.com/devgony/stc/pkg/parser"
)

//go:embed libs.yaml
var manifestSource []byte

// ErrUnknownLib is returned for library names missing from the manifest.
var ErrUnknownLib = errors.New("builtins: unknown library")

type manifest struct {
	Libs []libSpec `yaml:"libs"`
}

type libSpec struct {
	Name       string   `yaml:"name"`
	References []string `yaml:"references"`
	Source     string   `yaml:"source"`
}

// Lib is one builtin library. Its parsed module is built lazily and shared.
type Lib struct {
	name       string
	references []string
	source     string

	once   sync.Once
	module *ast.Module
	err    error
	parses int
}

func (l *Lib) Name() string { return l.name }

func (l *Lib) References() []string { return slices.Clone(l.references) }

func (l *Lib) Source() string { return l.source }

// Module returns the parsed declarations with hygiene applied against the
// process-wide unresolved mark, so every declaration is globally visible.
func (l *Lib) Module() (*ast.Module, error) {
	l.once.Do(func() {
		l.parses++
		p, err := parser.NewModuleParser()
		if err != nil {
			l.err = errors.Wrapf(err, "builtins: lib %s", l.name)
			return
		}
		defer p.Close()
		mod, err := p.ParseModule("lib."+l.name+".d.ts", []byte(l.source))
		if err != nil {
			l.err = errors.Wrapf(err, "builtins: lib %s", l.name)
			return
		}
		unresolved := env.DefaultShared().UnresolvedMark()
		hygiene.Apply(mod, unresolved, unresolved)
		l.module = mod
	})
	return l.module, l.err
}

var (
	registryOnce sync.Once
	registry     map[string]*Lib
	registryErr  error
)

func libs() (map[string]*Lib, error) {
	registryOnce.Do(func() {
		var m manifest
		if err := yaml.Unmarshal(manifestSource, &m); err != nil {
			registryErr = errors.Wrap(err, "builtins: manifest")
			return
		}
		registry = make(map[string]*Lib, len(m.Libs))
		for _, spec := range m.Libs {
			registry[spec.Name] = &Lib{name: spec.Name, references: spec.References, source: spec.Source}
		}
		for _, lib := range registry {
			for _, ref := range lib.references {
				if _, ok := registry[ref]; !ok {
					registryErr = errors.Wrapf(ErrUnknownLib, "lib %s references %q", lib.name, ref)
					return
				}
			}
		}
	})
	return registry, registryErr
}

// Names lists every library of the manifest in sorted order.
func Names() []string {
	reg, err := libs()
	if err != nil {
		return nil
	}
	out := make([]string, 0, len(reg))
	for name := range reg {
		out = append(out, name)
	}
	slices.Sort(out)
	return out
}

// Load returns the named library preceded by everything it references,
// each library appearing once.
func Load(name string) ([]*Lib, error) {
	return LoadAll([]string{name})
}

// LoadAll expands references of every name. Names are sorted and
// deduplicated first, so the result does not depend on argument order.
func LoadAll(names []string) ([]*Lib, error) {
	reg, err := libs()
	if err != nil {
		return nil, err
	}
	sorted := slices.Clone(names)
	slices.Sort(sorted)
	sorted = slices.Compact(sorted)

	var (
		out  []*Lib
		seen = make(map[string]bool)
	)
	var visit func(name string) error
	visit = func(name string) error {
		if seen[name] {
			return nil
		}
		lib, ok := reg[name]
		if !ok {
			return errors.Wrapf(ErrUnknownLib, "%q", name)
		}
		seen[name] = true
		for _, ref := range lib.references {
			if err := visit(ref); err != nil {
				return err
			}
		}
		out = append(out, lib)
		return nil
	}
	for _, name := range sorted {
		if err := visit(name); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// DefaultLibs returns the baseline library set of a target.
func DefaultLibs(target env.Target) []string {
	switch {
	case target <= env.ES5:
		return []string{"es5", "dom.lite"}
	case target < env.ES2016:
		return []string{"es2015", "dom.lite"}
	case target < env.ES2017:
		return []string{"es2016", "dom.lite"}
	case target < env.ES2020:
		return []string{"es2017", "dom.lite"}
	case target < env.ESNext:
		return []string{"es2020", "dom.lite"}
	default:
		return []string{"esnext", "dom.lite"}
	}
}
