// Package registry holds data-driven tool definitions: which module
// names and container image can serve a tool, which parameters its API
// surface accepts, and how parameters bind onto command-line arguments.
package registry

import (
	"fmt"
	"sort"

	"github.com/me/bioexec/internal/argexpr"
)

// ParamType is the closed set of parameter types a tool may declare.
type ParamType string

const (
	ParamString ParamType = "string"
	ParamInt    ParamType = "int"
	ParamFloat  ParamType = "float"
	ParamBool   ParamType = "boolean"
	ParamFile   ParamType = "file"
)

// Param declares one request parameter of a tool.
type Param struct {
	Name        string    `yaml:"name" json:"name"`
	Type        ParamType `yaml:"type" json:"type"`
	Description string    `yaml:"description,omitempty" json:"description,omitempty"`
	Default     any       `yaml:"default,omitempty" json:"default,omitempty"`
	Required    bool      `yaml:"required,omitempty" json:"required,omitempty"`

	// Filename is the staged destination name for file parameters.
	// Defaults to the parameter name.
	Filename string `yaml:"filename,omitempty" json:"filename,omitempty"`
}

// Binding contributes command-line tokens from request parameters.
// Bindings are applied in declaration order. Exactly one of Literal,
// Param, or ValueFrom drives a binding; Flag optionally prefixes the
// value for Param and ValueFrom bindings.
type Binding struct {
	// Literal emits a fixed token.
	Literal string `yaml:"literal,omitempty" json:"literal,omitempty"`

	// Flag is emitted before the bound value. For boolean parameters the
	// flag alone is emitted when the value is true, nothing otherwise.
	Flag string `yaml:"flag,omitempty" json:"flag,omitempty"`

	// Param binds a declared parameter's value.
	Param string `yaml:"param,omitempty" json:"param,omitempty"`

	// ValueFrom is a $(...) expression over `params`. An empty result
	// skips the binding.
	ValueFrom string `yaml:"valueFrom,omitempty" json:"value_from,omitempty"`
}

// ToolDef is one tool's declaration.
type ToolDef struct {
	Name        string `yaml:"name" json:"name"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`

	// ModuleNames are candidate environment-module names, tried in order.
	ModuleNames []string `yaml:"moduleNames,omitempty" json:"module_names,omitempty"`

	// ContainerImage is the image serving this tool under the container
	// strategies.
	ContainerImage string `yaml:"containerImage,omitempty" json:"container_image,omitempty"`

	Params   []Param   `yaml:"params,omitempty" json:"params,omitempty"`
	Bindings []Binding `yaml:"bindings,omitempty" json:"bindings,omitempty"`
}

// Param returns the declared parameter with the given name.
func (d *ToolDef) Param(name string) (Param, bool) {
	for _, p := range d.Params {
		if p.Name == name {
			return p, true
		}
	}
	return Param{}, false
}

// BuildArgs resolves request parameters against the definition's schema
// and applies the bindings, producing the tool-specific argument list.
func (d *ToolDef) BuildArgs(params map[string]any, eval *argexpr.Evaluator) ([]string, error) {
	merged, err := d.mergeParams(params)
	if err != nil {
		return nil, err
	}

	var args []string
	for i, b := range d.Bindings {
		switch {
		case b.Literal != "":
			args = append(args, b.Literal)

		case b.Param != "":
			p, ok := d.Param(b.Param)
			if !ok {
				return nil, fmt.Errorf("binding[%d] references undeclared parameter %q", i, b.Param)
			}
			val, ok := merged[b.Param]
			if !ok {
				continue
			}
			if p.Type == ParamBool {
				if truthy(val) && b.Flag != "" {
					args = append(args, b.Flag)
				}
				continue
			}
			if b.Flag != "" {
				args = append(args, b.Flag)
			}
			args = append(args, argexpr.Stringify(val))

		case b.ValueFrom != "":
			val, err := eval.Evaluate(b.ValueFrom, merged)
			if err != nil {
				return nil, fmt.Errorf("binding[%d]: %w", i, err)
			}
			s := argexpr.Stringify(val)
			if s == "" {
				continue
			}
			if b.Flag != "" {
				args = append(args, b.Flag)
			}
			args = append(args, s)

		default:
			return nil, fmt.Errorf("binding[%d] has no literal, param, or valueFrom", i)
		}
	}
	return args, nil
}

// mergeParams fills defaults, checks required parameters, rejects
// undeclared ones, and substitutes staged filenames for file parameters.
func (d *ToolDef) mergeParams(params map[string]any) (map[string]any, error) {
	for name := range params {
		if _, ok := d.Param(name); !ok {
			return nil, fmt.Errorf("unknown parameter %q for tool %s", name, d.Name)
		}
	}

	merged := make(map[string]any, len(d.Params))
	for _, p := range d.Params {
		val, ok := params[p.Name]
		if !ok {
			if p.Default != nil {
				merged[p.Name] = p.Default
			} else if p.Required {
				return nil, fmt.Errorf("missing required parameter %q for tool %s", p.Name, d.Name)
			}
			continue
		}
		if p.Type == ParamFile {
			// The invoker stages file content under the destination
			// name; the command line refers to the bare filename.
			merged[p.Name] = p.StagedName()
			continue
		}
		merged[p.Name] = val
	}
	return merged, nil
}

// StagedName returns the destination filename of a file parameter.
func (p Param) StagedName() string {
	if p.Filename != "" {
		return p.Filename
	}
	return p.Name
}

// FileParams returns the definition's file parameters sorted by name.
func (d *ToolDef) FileParams() []Param {
	var out []Param
	for _, p := range d.Params {
		if p.Type == ParamFile {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func truthy(v any) bool {
	b, ok := v.(bool)
	return ok && b
}
