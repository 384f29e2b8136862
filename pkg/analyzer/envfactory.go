package analyzer

import (
	"slices"
	"strings"
	"sync"

	"github.com/pkg/errors"

	"github.com/devgony/stc/pkg/builtins"
	"github.com/devgony/stc/pkg/env"
	"github.com/devgony/stc/pkg/storage"
)

// globalEntry is one process-wide global storage, built once per lib set.
type globalEntry struct {
	once   sync.Once
	global *storage.Storage
	err    error
}

var (
	globalsMu sync.Mutex
	globals   = make(map[string]*globalEntry)
)

// Simple returns an Env whose global storage holds the declarations of libs.
// The storage is built on first request for a lib set and shared, frozen,
// by every later Env over the same set.
func Simple(rule env.Rule, target env.Target, module env.ModuleConfig, libs []*builtins.Lib) (*env.Env, error) {
	names := make([]string, 0, len(libs))
	for _, lib := range libs {
		names = append(names, lib.Name())
	}
	slices.Sort(names)
	names = slices.Compact(names)
	key := strings.Join(names, ",")

	globalsMu.Lock()
	entry, ok := globals[key]
	if !ok {
		entry = &globalEntry{}
		globals[key] = entry
	}
	globalsMu.Unlock()

	shared := env.DefaultShared()
	entry.once.Do(func() {
		entry.global, entry.err = buildGlobal(shared, names, libs)
	})
	if entry.err != nil {
		return nil, entry.err
	}
	return env.New(rule, target, module, shared, entry.global, names), nil
}

// SimpleFromNames is Simple over builtin library names.
func SimpleFromNames(rule env.Rule, target env.Target, module env.ModuleConfig, names []string) (*env.Env, error) {
	libs, err := builtins.LoadAll(names)
	if err != nil {
		return nil, err
	}
	return Simple(rule, target, module, libs)
}

func buildGlobal(shared *env.Shared, names []string, libs []*builtins.Lib) (*storage.Storage, error) {
	global := storage.NewGlobal(shared.UnresolvedMark(), storage.DefaultMergePolicy())
	builtinEnv := env.New(env.Rule{}, env.Latest(), env.ModuleNone, shared, global, names)
	a := Root(builtinEnv, nil, Config{IsBuiltin: true}, global, NoopLoader{}, nil)
	for _, lib := range libs {
		mod, err := lib.Module()
		if err != nil {
			return nil, err
		}
		a.declareStatements(global, mod.Body)
	}
	for _, lib := range libs {
		mod, _ := lib.Module()
		if err := a.visitStatements(global, mod.Body); err != nil {
			return nil, errors.Wrapf(err, "analyzing builtin lib %s", lib.Name())
		}
	}
	for _, d := range a.Diagnostics() {
		a.logger.Warn("builtin diagnostic", "code", d.Code.String(), "message", d.Message)
	}
	global.Freeze()
	return global, nil
}
