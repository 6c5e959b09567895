package registry

import (
	"fmt"
	"log/slog"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// Registry maps tool names to their definitions. Definitions are loaded
// at startup before concurrent access, so no mutex is needed.
type Registry struct {
	defs   map[string]ToolDef
	logger *slog.Logger
}

// New creates an empty Registry.
func New(logger *slog.Logger) *Registry {
	return &Registry{
		defs:   make(map[string]ToolDef),
		logger: logger.With("component", "registry"),
	}
}

// Builtin creates a Registry pre-populated with the built-in BLAST
// tool definitions.
func Builtin(logger *slog.Logger) *Registry {
	r := New(logger)
	for _, def := range builtinDefs() {
		r.Register(def)
	}
	return r
}

// Register adds or replaces one definition.
func (r *Registry) Register(def ToolDef) {
	r.defs[def.Name] = def
	r.logger.Debug("tool registered", "tool", def.Name)
}

// Get returns the definition for a tool name.
func (r *Registry) Get(name string) (ToolDef, bool) {
	def, ok := r.defs[name]
	return def, ok
}

// List returns all definitions sorted by tool name.
func (r *Registry) List() []ToolDef {
	out := make([]ToolDef, 0, len(r.defs))
	for _, def := range r.defs {
		out = append(out, def)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// toolFile is the on-disk shape of a tool definitions file.
type toolFile struct {
	Tools []ToolDef `yaml:"tools"`
}

// LoadFile reads tool definitions from a YAML file and registers them,
// overriding built-ins of the same name.
func (r *Registry) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read tool definitions: %w", err)
	}
	return r.Load(data)
}

// Load parses YAML tool definitions and registers them.
func (r *Registry) Load(data []byte) error {
	var f toolFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("parse tool definitions: %w", err)
	}
	for i, def := range f.Tools {
		if def.Name == "" {
			return fmt.Errorf("tools[%d]: missing name", i)
		}
		if err := validateDef(def); err != nil {
			return fmt.Errorf("tool %s: %w", def.Name, err)
		}
		r.Register(def)
	}
	r.logger.Info("tool definitions loaded", "count", len(f.Tools))
	return nil
}

func validateDef(def ToolDef) error {
	for i, p := range def.Params {
		switch p.Type {
		case ParamString, ParamInt, ParamFloat, ParamBool, ParamFile:
		case "":
			return fmt.Errorf("params[%d] (%s): missing type", i, p.Name)
		default:
			return fmt.Errorf("params[%d] (%s): unknown type %q", i, p.Name, p.Type)
		}
	}
	for i, b := range def.Bindings {
		if b.Literal == "" && b.Param == "" && b.ValueFrom == "" {
			return fmt.Errorf("bindings[%d]: no literal, param, or valueFrom", i)
		}
		if b.Param != "" {
			found := false
			for _, p := range def.Params {
				if p.Name == b.Param {
					found = true
					break
				}
			}
			if !found {
				return fmt.Errorf("bindings[%d]: undeclared parameter %q", i, b.Param)
			}
		}
	}
	return nil
}
