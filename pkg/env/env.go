package env

import "github.com/devgony/stc/pkg/storage"

// Env is the immutable bundle handed to every analyzer of a run.
type Env struct {
	rule   Rule
	target Target
	module ModuleConfig
	shared *Shared
	global *storage.Storage
	libs   []string
}

// New assembles an Env. The global storage must be frozen; the analyzer's
// env factory is the usual constructor.
func New(rule Rule, target Target, module ModuleConfig, shared *Shared, global *storage.Storage, libs []string) *Env {
	if shared == nil {
		shared = DefaultShared()
	}
	return &Env{
		rule:   rule,
		target: target,
		module: module,
		shared: shared,
		global: global,
		libs:   append([]string(nil), libs...),
	}
}

func (e *Env) Rule() Rule { return e.rule }

func (e *Env) Target() Target { return e.target }

func (e *Env) Module() ModuleConfig { return e.module }

func (e *Env) Shared() *Shared { return e.shared }

// Global returns the frozen storage of builtin declarations.
func (e *Env) Global() *storage.Storage { return e.global }

// Libs returns the builtin library names the global storage was built from.
func (e *Env) Libs() []string { return append([]string(nil), e.libs...) }
