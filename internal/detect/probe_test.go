package detect

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeRunner scripts subprocess results keyed by command name and
// counts every call.
type fakeRunner struct {
	calls   int
	results map[string]fakeResult
}

type fakeResult struct {
	stdout string
	stderr string
	code   int
	err    error
}

func (r *fakeRunner) Run(ctx context.Context, timeout time.Duration, name string, args ...string) (string, string, int, error) {
	r.calls++
	key := name
	if len(args) > 0 {
		key = name + " " + strings.Join(args, " ")
	}
	if res, ok := r.results[key]; ok {
		return res.stdout, res.stderr, res.code, res.err
	}
	if res, ok := r.results[name]; ok {
		return res.stdout, res.stderr, res.code, res.err
	}
	return "", "", 1, nil
}

// lookPathFor returns a lookup that knows only the given names.
func lookPathFor(names ...string) func(string) (string, error) {
	return func(name string) (string, error) {
		for _, n := range names {
			if n == name {
				return "/usr/bin/" + name, nil
			}
		}
		return "", errors.New("not found in PATH")
	}
}

func TestProberNative_NotFound(t *testing.T) {
	p := newProberWith(newTestLogger(), &fakeRunner{}, lookPathFor())
	if res := p.Native(context.Background(), "blastn"); res != nil {
		t.Fatalf("Native() = %+v, want nil for tool not on PATH", res)
	}
}

func TestProberNative_FoundWithVersion(t *testing.T) {
	runner := &fakeRunner{results: map[string]fakeResult{
		"/usr/bin/blastn --version": {stdout: "blastn: 2.15.0+\nbuild info\n", code: 0},
	}}
	p := newProberWith(newTestLogger(), runner, lookPathFor("blastn"))

	res := p.Native(context.Background(), "blastn")
	if res == nil {
		t.Fatal("Native() = nil, want resolution")
	}
	if res.Strategy != StrategyNative {
		t.Errorf("Strategy = %q, want %q", res.Strategy, StrategyNative)
	}
	if res.ExecutablePath != "/usr/bin/blastn" {
		t.Errorf("ExecutablePath = %q, want /usr/bin/blastn", res.ExecutablePath)
	}
	if res.Version != "blastn: 2.15.0+" {
		t.Errorf("Version = %q, want first output line", res.Version)
	}
}

func TestProberNative_FoundWithoutVersion(t *testing.T) {
	// Every version flag fails; the tool is still reported as native.
	p := newProberWith(newTestLogger(), &fakeRunner{}, lookPathFor("samtools"))

	res := p.Native(context.Background(), "samtools")
	if res == nil {
		t.Fatal("Native() = nil, want resolution despite failed version probes")
	}
	if res.Version != "" {
		t.Errorf("Version = %q, want empty", res.Version)
	}
}

func TestProberNative_VersionOnStderr(t *testing.T) {
	runner := &fakeRunner{results: map[string]fakeResult{
		"/usr/bin/mafft --version": {stderr: "v7.520 (2023/Mar/22)\n", code: 0},
	}}
	p := newProberWith(newTestLogger(), runner, lookPathFor("mafft"))

	res := p.Native(context.Background(), "mafft")
	if res == nil {
		t.Fatal("Native() = nil, want resolution")
	}
	if res.Version != "v7.520 (2023/Mar/22)" {
		t.Errorf("Version = %q, want stderr fallback", res.Version)
	}
}

func TestProberModuleSystem_NoModuleCommand(t *testing.T) {
	p := newProberWith(newTestLogger(), &fakeRunner{}, lookPathFor())
	if res := p.ModuleSystem(context.Background(), "blastn", []string{"blast"}); res != nil {
		t.Fatalf("ModuleSystem() = %+v, want nil without a module command", res)
	}
}

func TestProberModuleSystem_MatchIsCaseInsensitive(t *testing.T) {
	runner := &fakeRunner{results: map[string]fakeResult{
		"module avail":        {code: 0},
		"module avail blast+": {stderr: "----- /etc/modulefiles -----\nBLAST+/2.15.0\n", code: 0},
	}}
	p := newProberWith(newTestLogger(), runner, lookPathFor("module"))

	res := p.ModuleSystem(context.Background(), "blastn", []string{"ncbi", "blast+"})
	if res == nil {
		t.Fatal("ModuleSystem() = nil, want match on second candidate")
	}
	if res.Strategy != StrategyModule {
		t.Errorf("Strategy = %q, want %q", res.Strategy, StrategyModule)
	}
	if res.ModuleName != "blast+" {
		t.Errorf("ModuleName = %q, want blast+", res.ModuleName)
	}
	want := []string{"module", "load", "blast+", "&&"}
	if len(res.CommandPrefix) != len(want) {
		t.Fatalf("CommandPrefix = %v, want %v", res.CommandPrefix, want)
	}
	for i := range want {
		if res.CommandPrefix[i] != want[i] {
			t.Fatalf("CommandPrefix = %v, want %v", res.CommandPrefix, want)
		}
	}
}

func TestProberModuleSystem_LmodFallback(t *testing.T) {
	runner := &fakeRunner{results: map[string]fakeResult{
		"ml avail":       {code: 0},
		"ml avail blast": {stdout: "blast/2.15.0", code: 0},
	}}
	p := newProberWith(newTestLogger(), runner, lookPathFor("ml"))

	res := p.ModuleSystem(context.Background(), "blastn", []string{"blast"})
	if res == nil {
		t.Fatal("ModuleSystem() = nil, want lmod match")
	}
	if res.Strategy != StrategyLmod {
		t.Errorf("Strategy = %q, want %q", res.Strategy, StrategyLmod)
	}
}

func TestProberModuleSystem_NoCandidateListed(t *testing.T) {
	runner := &fakeRunner{results: map[string]fakeResult{
		"module avail":       {code: 0},
		"module avail blast": {stdout: "nothing here", code: 0},
	}}
	p := newProberWith(newTestLogger(), runner, lookPathFor("module"))

	if res := p.ModuleSystem(context.Background(), "blastn", []string{"blast"}); res != nil {
		t.Fatalf("ModuleSystem() = %+v, want nil when no candidate is listed", res)
	}
}

func TestProberContainer_SingularityNeedsOnlyBinary(t *testing.T) {
	p := newProberWith(newTestLogger(), &fakeRunner{}, lookPathFor("singularity"))

	res := p.Container(context.Background(), "blastn", "biocontainers/blast:2.15.0", StrategySingularity)
	if res == nil {
		t.Fatal("Container() = nil, want singularity resolution")
	}
	if res.ContainerImage != "biocontainers/blast:2.15.0" {
		t.Errorf("ContainerImage = %q", res.ContainerImage)
	}
	if got := strings.Join(res.CommandPrefix, " "); got != "singularity exec blastn.sif" {
		t.Errorf("CommandPrefix = %q", got)
	}
}

func TestProberContainer_DockerNeedsLiveDaemon(t *testing.T) {
	runner := &fakeRunner{results: map[string]fakeResult{
		"docker info": {code: 1, stderr: "cannot connect to the daemon"},
	}}
	p := newProberWith(newTestLogger(), runner, lookPathFor("docker"))

	if res := p.Container(context.Background(), "blastn", "img", StrategyDocker); res != nil {
		t.Fatalf("Container() = %+v, want nil when the daemon does not answer", res)
	}

	runner.results["docker info"] = fakeResult{code: 0}
	res := p.Container(context.Background(), "blastn", "img", StrategyDocker)
	if res == nil {
		t.Fatal("Container() = nil, want docker resolution with live daemon")
	}
	if got := strings.Join(res.CommandPrefix, " "); !strings.Contains(got, WorkdirToken+":/data") {
		t.Errorf("CommandPrefix = %q, want workdir bind mount", got)
	}
}
