package registry

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/me/bioexec/internal/argexpr"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestBuiltinDefinitions(t *testing.T) {
	r := Builtin(newTestLogger())

	for _, name := range []string{"blastn", "blastp", "makeblastdb"} {
		def, ok := r.Get(name)
		if !ok {
			t.Fatalf("Get(%q) missing built-in definition", name)
		}
		if def.ContainerImage == "" {
			t.Errorf("%s has no container image", name)
		}
		if len(def.ModuleNames) == 0 {
			t.Errorf("%s has no module name candidates", name)
		}
	}

	list := r.List()
	if len(list) != 3 {
		t.Fatalf("List() has %d definitions, want 3", len(list))
	}
	for i := 1; i < len(list); i++ {
		if list[i-1].Name > list[i].Name {
			t.Fatalf("List() not sorted: %s before %s", list[i-1].Name, list[i].Name)
		}
	}
}

func TestBuildArgsSearchDefaults(t *testing.T) {
	r := Builtin(newTestLogger())
	def, _ := r.Get("blastn")

	args, err := def.BuildArgs(map[string]any{
		"query":    ">seq\nACGT",
		"database": "nt",
	}, argexpr.New())
	if err != nil {
		t.Fatalf("BuildArgs() error = %v", err)
	}

	want := "-query query.fasta -db nt -outfmt 6 -evalue 0.001 -max_target_seqs 10 -num_threads 1"
	if got := strings.Join(args, " "); got != want {
		t.Errorf("args = %q, want %q", got, want)
	}
}

func TestBuildArgsBooleanFlag(t *testing.T) {
	r := Builtin(newTestLogger())
	def, _ := r.Get("makeblastdb")

	args, err := def.BuildArgs(map[string]any{
		"input":        ">s\nACGT",
		"dbtype":       "nucl",
		"parse_seqids": true,
	}, argexpr.New())
	if err != nil {
		t.Fatalf("BuildArgs() error = %v", err)
	}
	got := strings.Join(args, " ")
	if !strings.Contains(got, "-parse_seqids") {
		t.Errorf("args = %q, want -parse_seqids present", got)
	}
	if strings.Contains(got, "-parse_seqids true") {
		t.Errorf("args = %q, boolean flag must not carry a value", got)
	}

	args, err = def.BuildArgs(map[string]any{
		"input":  ">s\nACGT",
		"dbtype": "nucl",
	}, argexpr.New())
	if err != nil {
		t.Fatalf("BuildArgs() error = %v", err)
	}
	if got := strings.Join(args, " "); strings.Contains(got, "-parse_seqids") {
		t.Errorf("args = %q, want -parse_seqids absent when false", got)
	}
}

func TestBuildArgsMissingRequired(t *testing.T) {
	r := Builtin(newTestLogger())
	def, _ := r.Get("blastn")

	_, err := def.BuildArgs(map[string]any{"query": "ACGT"}, argexpr.New())
	if err == nil || !strings.Contains(err.Error(), "database") {
		t.Fatalf("BuildArgs() error = %v, want missing required database", err)
	}
}

func TestBuildArgsUnknownParameter(t *testing.T) {
	r := Builtin(newTestLogger())
	def, _ := r.Get("blastn")

	_, err := def.BuildArgs(map[string]any{
		"query":    "ACGT",
		"database": "nt",
		"bogus":    1,
	}, argexpr.New())
	if err == nil || !strings.Contains(err.Error(), "bogus") {
		t.Fatalf("BuildArgs() error = %v, want unknown parameter", err)
	}
}

func TestBuildArgsOptionalOmitted(t *testing.T) {
	def := ToolDef{
		Name: "t",
		Params: []Param{
			{Name: "title", Type: ParamString},
		},
		Bindings: []Binding{
			{Flag: "-title", Param: "title"},
		},
	}

	args, err := def.BuildArgs(nil, argexpr.New())
	if err != nil {
		t.Fatalf("BuildArgs() error = %v", err)
	}
	if len(args) != 0 {
		t.Errorf("args = %v, want empty for unset optional with no default", args)
	}
}

func TestBuildArgsValueFrom(t *testing.T) {
	def := ToolDef{
		Name: "t",
		Params: []Param{
			{Name: "threads", Type: ParamInt, Default: 2},
		},
		Bindings: []Binding{
			{Flag: "-num_threads", ValueFrom: "$(params.threads * 2)"},
		},
	}

	args, err := def.BuildArgs(nil, argexpr.New())
	if err != nil {
		t.Fatalf("BuildArgs() error = %v", err)
	}
	if got := strings.Join(args, " "); got != "-num_threads 4" {
		t.Errorf("args = %q, want -num_threads 4", got)
	}
}

func TestLoadFileRegistersAndOverrides(t *testing.T) {
	const doc = `
tools:
  - name: blastn
    description: replaced
    moduleNames: [custom-blast]
    containerImage: example/blast:1
    params:
      - name: query
        type: file
        required: true
    bindings:
      - flag: -query
        param: query
  - name: seqkit
    description: sequence toolkit
    params:
      - name: subcommand
        type: string
        required: true
    bindings:
      - param: subcommand
`
	path := filepath.Join(t.TempDir(), "tools.yaml")
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}

	r := Builtin(newTestLogger())
	if err := r.LoadFile(path); err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}

	def, ok := r.Get("blastn")
	if !ok || def.Description != "replaced" {
		t.Errorf("blastn not overridden: %+v", def)
	}
	if _, ok := r.Get("seqkit"); !ok {
		t.Error("seqkit not registered")
	}
}

func TestLoadRejectsInvalidDefinitions(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"missing name", "tools:\n  - description: x\n"},
		{"unknown param type", "tools:\n  - name: t\n    params:\n      - name: p\n        type: blob\n"},
		{"empty binding", "tools:\n  - name: t\n    bindings:\n      - flag: -x\n"},
		{"undeclared binding param", "tools:\n  - name: t\n    bindings:\n      - param: ghost\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := New(newTestLogger())
			if err := r.Load([]byte(tt.doc)); err == nil {
				t.Fatal("Load() error = nil, want validation error")
			}
		})
	}
}

func TestFileParamsStagedNames(t *testing.T) {
	r := Builtin(newTestLogger())
	def, _ := r.Get("blastn")

	files := def.FileParams()
	if len(files) != 1 {
		t.Fatalf("FileParams() = %d entries, want 1", len(files))
	}
	if files[0].StagedName() != "query.fasta" {
		t.Errorf("StagedName() = %q, want query.fasta", files[0].StagedName())
	}
}
