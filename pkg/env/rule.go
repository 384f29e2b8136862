// Package env holds the process-scoped configuration shared read-only by
// every analyzer: strictness rules, target version, module resolution mode
// and the global storage of builtin declarations.
package env

import (
	"strings"
	"sync"

	"github.com/pkg/errors"

	"github.com/devgony/stc/pkg/ast"
	"github.com/devgony/stc/pkg/storage"
)

var (
	ErrInvalidTarget = errors.New("env: invalid target")
	ErrInvalidModule = errors.New("env: invalid module kind")
)

// Rule is the set of strictness toggles read by resolution and checking.
type Rule struct {
	StrictNullChecks    bool `yaml:"strictNullChecks" json:"strictNullChecks"`
	StrictFunctionTypes bool `yaml:"strictFunctionTypes" json:"strictFunctionTypes"`
	NoImplicitAny       bool `yaml:"noImplicitAny" json:"noImplicitAny"`
	NoImplicitOverride  bool `yaml:"noImplicitOverride" json:"noImplicitOverride"`
	// NoDeclarationMerging rejects every merge, including interface merging.
	NoDeclarationMerging bool `yaml:"noDeclarationMerging" json:"noDeclarationMerging"`
}

// StrictRule turns every strict check on.
func StrictRule() Rule {
	return Rule{
		StrictNullChecks:    true,
		StrictFunctionTypes: true,
		NoImplicitAny:       true,
		NoImplicitOverride:  true,
	}
}

// MergePolicy returns the declaration merging table implied by the rule.
func (r Rule) MergePolicy() storage.MergePolicy {
	if r.NoDeclarationMerging {
		return storage.StrictMergePolicy()
	}
	return storage.DefaultMergePolicy()
}

type Target int

const (
	ES3 Target = iota
	ES5
	ES2015
	ES2016
	ES2017
	ES2018
	ES2019
	ES2020
	ES2021
	ES2022
	ESNext
)

var targetNames = []string{"ES3", "ES5", "ES2015", "ES2016", "ES2017", "ES2018", "ES2019", "ES2020", "ES2021", "ES2022", "ESNext"}

func (t Target) String() string {
	if int(t) < len(targetNames) {
		return targetNames[t]
	}
	return "Target(?)"
}

// Latest is the newest supported target.
func Latest() Target { return ESNext }

// ParseTarget accepts names such as "es2020", "ES6" or "esnext".
func ParseTarget(name string) (Target, error) {
	upper := strings.ToUpper(strings.TrimSpace(name))
	switch upper {
	case "ES6":
		return ES2015, nil
	case "LATEST":
		return ESNext, nil
	}
	for i, n := range targetNames {
		if strings.ToUpper(n) == upper {
			return Target(i), nil
		}
	}
	return 0, errors.Wrapf(ErrInvalidTarget, "%q", name)
}

func (t *Target) UnmarshalText(text []byte) error {
	parsed, err := ParseTarget(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

func (t Target) MarshalText() ([]byte, error) {
	return []byte(strings.ToLower(t.String())), nil
}

// ModuleConfig is the module resolution mode. The core only carries it;
// loaders interpret it.
type ModuleConfig int

const (
	ModuleNone ModuleConfig = iota
	ModuleCommonJS
	ModuleES2015
	ModuleNode16
	ModuleNodeNext
	ModuleBundler
)

var moduleNames = map[ModuleConfig]string{
	ModuleNone:     "none",
	ModuleCommonJS: "commonjs",
	ModuleES2015:   "es2015",
	ModuleNode16:   "node16",
	ModuleNodeNext: "nodenext",
	ModuleBundler:  "bundler",
}

func (m ModuleConfig) String() string {
	if name, ok := moduleNames[m]; ok {
		return name
	}
	return "module(?)"
}

// RequiresExtension reports whether relative specifiers must name a file
// extension (ECMAScript module resolution under Node).
func (m ModuleConfig) RequiresExtension() bool {
	return m == ModuleNode16 || m == ModuleNodeNext
}

func ParseModuleConfig(name string) (ModuleConfig, error) {
	lower := strings.ToLower(strings.TrimSpace(name))
	switch lower {
	case "es6", "esnext", "es2020", "es2022":
		return ModuleES2015, nil
	case "":
		return ModuleNone, nil
	}
	for m, n := range moduleNames {
		if n == lower {
			return m, nil
		}
	}
	return 0, errors.Wrapf(ErrInvalidModule, "%q", name)
}

func (m *ModuleConfig) UnmarshalText(text []byte) error {
	parsed, err := ParseModuleConfig(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

func (m ModuleConfig) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// Shared is the explicit handle to process-wide state: the mark every
// unresolved reference receives, which is also the top-level mark of the
// builtin declarations.
type Shared struct {
	unresolved ast.Mark
}

func NewShared() *Shared {
	return &Shared{unresolved: ast.NewMark()}
}

func (s *Shared) UnresolvedMark() ast.Mark { return s.unresolved }

var (
	defaultShared     *Shared
	defaultSharedOnce sync.Once
)

// DefaultShared returns the process-wide handle, creating it on first use.
func DefaultShared() *Shared {
	defaultSharedOnce.Do(func() {
		defaultShared = NewShared()
	})
	return defaultShared
}
