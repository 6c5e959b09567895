package cmdline

import (
	"errors"
	"strings"
	"testing"

	"github.com/me/bioexec/internal/detect"
)

func TestBuildNative(t *testing.T) {
	res := detect.Resolution{
		Tool:           "blastn",
		Strategy:       detect.StrategyNative,
		ExecutablePath: "/usr/bin/blastn",
	}

	tokens, shell, err := Build(res, []string{"-query", "query.fasta", "-db", "nt"})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if shell {
		t.Error("requiresShell = true for native strategy, want false")
	}
	want := "/usr/bin/blastn -query query.fasta -db nt"
	if got := strings.Join(tokens, " "); got != want {
		t.Errorf("tokens = %q, want %q", got, want)
	}
}

func TestBuildModuleRequiresShell(t *testing.T) {
	for _, strat := range []detect.Strategy{detect.StrategyModule, detect.StrategyLmod} {
		cmd := "module"
		if strat == detect.StrategyLmod {
			cmd = "ml"
		}
		res := detect.Resolution{
			Tool:          "blastn",
			Strategy:      strat,
			ModuleName:    "blast",
			CommandPrefix: []string{cmd, "load", "blast", "&&"},
		}

		tokens, shell, err := Build(res, []string{"-query", "q.fasta"})
		if err != nil {
			t.Fatalf("Build(%s) error = %v", strat, err)
		}
		if !shell {
			t.Errorf("requiresShell = false for %s strategy, want true", strat)
		}
		line := Shellify(tokens)
		if !strings.Contains(line, cmd+" load blast && blastn") {
			t.Errorf("Shellify() = %q, want load-and-run compound", line)
		}
	}
}

func TestBuildDocker(t *testing.T) {
	res := detect.Resolution{
		Tool:           "blastn",
		Strategy:       detect.StrategyDocker,
		ContainerImage: "biocontainers/blast:2.15.0",
		CommandPrefix: []string{
			"docker", "run", "--rm",
			"-v", detect.WorkdirToken + ":/data",
			"-w", "/data",
			"biocontainers/blast:2.15.0",
		},
	}

	tokens, shell, err := Build(res, []string{"-version"})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if shell {
		t.Error("requiresShell = true for docker strategy, want false")
	}
	// Prefix, then the in-container tool name, then the args.
	if tokens[0] != "docker" || tokens[len(tokens)-2] != "blastn" || tokens[len(tokens)-1] != "-version" {
		t.Errorf("tokens = %v", tokens)
	}
}

func TestBuildUnavailable(t *testing.T) {
	res := detect.Resolution{Tool: "ghost", Strategy: detect.StrategyUnavailable}

	if _, _, err := Build(res, nil); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("Build() error = %v, want ErrUnavailable", err)
	}
}
