package detect

import (
	"context"
	"log/slog"
)

// Spec describes one tool resolution request.
type Spec struct {
	// Tool is the command name to resolve.
	Tool string

	// ModuleNames are candidate module names tried in order when probing
	// the module system. Defaults to [Tool].
	ModuleNames []string

	// ContainerImage is the image reference used by the container
	// strategies. Container probes are skipped when empty.
	ContainerImage string

	// Preferred is the strategy order to probe. Defaults to DefaultOrder.
	Preferred []Strategy

	// Forced, when set, makes the resolver attempt only that strategy;
	// failure yields an unavailable resolution even when another
	// strategy would have worked.
	Forced Strategy
}

// probes is the probe surface the Resolver depends on; tests substitute
// a counting fake.
type probes interface {
	Native(ctx context.Context, tool string) *Resolution
	ModuleSystem(ctx context.Context, tool string, candidates []string) *Resolution
	Container(ctx context.Context, tool, image string, kind Strategy) *Resolution
}

// Resolver orders strategies by caller preference, runs probes in that
// order, short-circuits on the first success, and memoizes the result
// per tool name for the lifetime of the process.
type Resolver struct {
	prober probes
	cache  *Cache
	logger *slog.Logger
}

// NewResolver creates a Resolver with real probes and a fresh cache.
func NewResolver(logger *slog.Logger) *Resolver {
	return newResolverWith(NewProber(logger), NewCache(), logger)
}

// newResolverWith is used by tests to inject probes and a cache.
func newResolverWith(p probes, cache *Cache, logger *slog.Logger) *Resolver {
	return &Resolver{
		prober: p,
		cache:  cache,
		logger: logger.With("component", "resolver"),
	}
}

// Cache exposes the resolver's cache, mainly so callers can reset it.
func (r *Resolver) Cache() *Cache {
	return r.cache
}

// Resolve returns how the named tool will be invoked. An all-probes-fail
// result is a regular Resolution with StrategyUnavailable, not an error;
// the error decision belongs to the caller.
//
// Once a resolution exists for a tool name, subsequent calls return the
// cached value without re-probing.
func (r *Resolver) Resolve(ctx context.Context, spec Spec) Resolution {
	if res, ok := r.cache.Get(spec.Tool); ok {
		return res
	}

	order := spec.Preferred
	if len(order) == 0 {
		order = DefaultOrder()
	}
	if spec.Forced != "" && spec.Forced != StrategyUnavailable {
		order = []Strategy{spec.Forced}
	}

	candidates := spec.ModuleNames
	if len(candidates) == 0 {
		candidates = []string{spec.Tool}
	}

	for _, strat := range order {
		var res *Resolution
		switch strat {
		case StrategyNative:
			res = r.prober.Native(ctx, spec.Tool)
		case StrategyModule, StrategyLmod:
			res = r.prober.ModuleSystem(ctx, spec.Tool, candidates)
		case StrategySingularity, StrategyDocker:
			if spec.ContainerImage == "" {
				continue
			}
			res = r.prober.Container(ctx, spec.Tool, spec.ContainerImage, strat)
		default:
			r.logger.Warn("skipping unknown strategy", "strategy", strat)
			continue
		}
		if res != nil {
			r.logger.Info("tool resolved", "tool", spec.Tool, "strategy", res.Strategy)
			r.cache.Put(spec.Tool, *res)
			return *res
		}
	}

	r.logger.Warn("tool not available under any execution strategy", "tool", spec.Tool)
	res := Resolution{Tool: spec.Tool, Strategy: StrategyUnavailable}
	r.cache.Put(spec.Tool, res)
	return res
}
