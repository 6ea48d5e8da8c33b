package widget

import (
	"strings"
	"sync"

	"github.com/flumox/flumox-server/internal/timeexpr"
)

// Environment is everything a path expression can resolve against: the
// team's own attributes, plus every widget instance in the game, keyed by
// its ident.
type Environment struct {
	Team      Attributes
	Instances map[string]*Instance
}

// cacheState tracks whether a path is mid-resolution (used to detect
// cycles) or has already produced a value.
type cacheState int

const (
	stateEvaluating cacheState = iota
	stateEvaluated
)

type cacheEntry struct {
	state cacheState
	value timeexpr.Value
}

// Cache memoizes path resolution for the lifetime of a single render or
// action, and detects circular dependencies between widgets: a path that
// is asked for while it is itself still being resolved is a cycle.
type Cache struct {
	mu      sync.Mutex
	entries map[string]*cacheEntry
}

// NewCache returns an empty cache, one render or action's worth.
func NewCache() *Cache {
	return &Cache{entries: make(map[string]*cacheEntry)}
}

type resolver struct {
	env   *Environment
	cache *Cache
}

// NewResolver builds a timeexpr.Resolver over env, memoizing through
// cache and detecting cycles across widgets.
func NewResolver(env *Environment, cache *Cache) timeexpr.Resolver {
	return &resolver{env: env, cache: cache}
}

func (r *resolver) Resolve(path string) (timeexpr.Value, error) {
	r.cache.mu.Lock()
	if e, ok := r.cache.entries[path]; ok {
		defer r.cache.mu.Unlock()
		if e.state == stateEvaluating {
			return timeexpr.Value{}, timeexpr.ErrCircularDependency(path)
		}
		return e.value, nil
	}
	r.cache.entries[path] = &cacheEntry{state: stateEvaluating}
	r.cache.mu.Unlock()

	value, err := r.resolveRaw(path)

	r.cache.mu.Lock()
	if err == nil {
		r.cache.entries[path] = &cacheEntry{state: stateEvaluated, value: value}
	}
	// On failure the Evaluating sentinel is left in place for the rest of
	// this resolve cycle, so a retried lookup of the same path doesn't
	// paper over a cycle.
	r.cache.mu.Unlock()
	return value, err
}

func (r *resolver) resolveRaw(path string) (timeexpr.Value, error) {
	target, rest, ok := splitFirst(path)
	if !ok {
		return timeexpr.Value{}, timeexpr.ErrUnknownPath(path)
	}
	if target == "team" {
		expr, ok := r.env.Team[rest]
		if !ok {
			return timeexpr.Value{}, timeexpr.ErrUnknownPath(path)
		}
		return expr.Eval(r)
	}
	inst, ok := r.env.Instances[target]
	if !ok {
		return timeexpr.Value{}, timeexpr.ErrUnknownPath(path)
	}
	return inst.Resolve(rest, r)
}

func splitFirst(path string) (head, rest string, ok bool) {
	i := strings.IndexByte(path, '.')
	if i < 0 {
		return path, "", path != ""
	}
	return path[:i], path[i+1:], true
}
