// Package detect resolves how a named command-line tool can be invoked
// on the current host: natively on PATH, through an environment-module
// system (classic Modules or Lmod), or inside a container runtime.
package detect

import (
	"log/slog"
	"strings"
)

// Strategy identifies one way of locating and running a tool.
type Strategy string

const (
	StrategyNative      Strategy = "native"
	StrategyModule      Strategy = "module"
	StrategyLmod        Strategy = "lmod"
	StrategySingularity Strategy = "singularity"
	StrategyDocker      Strategy = "docker"
	StrategyUnavailable Strategy = "unavailable"
)

// DefaultOrder returns the default probe order: native first, then the
// module systems, then the container runtimes.
func DefaultOrder() []Strategy {
	return []Strategy{
		StrategyNative,
		StrategyModule,
		StrategyLmod,
		StrategySingularity,
		StrategyDocker,
	}
}

// ParseStrategy converts a string to a Strategy. The second return value
// reports whether the name was recognized. StrategyUnavailable is not a
// probeable strategy and is rejected here.
func ParseStrategy(s string) (Strategy, bool) {
	switch Strategy(strings.ToLower(strings.TrimSpace(s))) {
	case StrategyNative:
		return StrategyNative, true
	case StrategyModule:
		return StrategyModule, true
	case StrategyLmod:
		return StrategyLmod, true
	case StrategySingularity:
		return StrategySingularity, true
	case StrategyDocker:
		return StrategyDocker, true
	}
	return StrategyUnavailable, false
}

// ParseStrategies parses a comma-separated list of strategy names.
// Unrecognized names are dropped with a warning, never fatal.
func ParseStrategies(csv string, logger *slog.Logger) []Strategy {
	if strings.TrimSpace(csv) == "" {
		return nil
	}
	var out []Strategy
	for _, part := range strings.Split(csv, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		s, ok := ParseStrategy(part)
		if !ok {
			logger.Warn("ignoring unrecognized execution strategy", "value", strings.TrimSpace(part))
			continue
		}
		out = append(out, s)
	}
	return out
}
