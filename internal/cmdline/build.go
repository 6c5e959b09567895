// Package cmdline turns a resolved execution strategy plus a
// tool-specific argument list into a ready-to-spawn command.
package cmdline

import (
	"errors"
	"strings"

	"github.com/me/bioexec/internal/detect"
)

// ErrUnavailable is returned when building a command for a tool that
// resolved to no execution strategy.
var ErrUnavailable = errors.New("tool is not available under any execution strategy")

// Build assembles the full command for a resolution and argument list.
//
// requiresShell is true only for the module strategies: loading a module
// mutates the environment of the shell that loads it, so the tool must
// run in that same shell via a compound `<cmd> load <name> && <tool> …`
// expression. Every other strategy stays on argument-vector execution,
// with arguments passed as discrete tokens.
func Build(res detect.Resolution, args []string) (tokens []string, requiresShell bool, err error) {
	if !res.Available() {
		return nil, false, ErrUnavailable
	}

	tokens = append(tokens, res.CommandPrefix...)

	switch res.Strategy {
	case detect.StrategyNative:
		tokens = append(tokens, res.ExecutablePath)
	case detect.StrategyModule, detect.StrategyLmod:
		requiresShell = true
		tokens = append(tokens, res.Tool)
	default:
		// Container runtimes resolve the in-container binary name
		// themselves.
		tokens = append(tokens, res.Tool)
	}

	tokens = append(tokens, args...)
	return tokens, requiresShell, nil
}

// Shellify joins tokens into the single string handed to a shell when a
// strategy requires one. Shell-string construction is confined to this
// package.
func Shellify(tokens []string) string {
	return strings.Join(tokens, " ")
}
