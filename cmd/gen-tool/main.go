// gen-tool writes a skeleton tool definition for a new command-line
// tool, ready to drop into a definitions file served by bioexec.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"text/template"
)

const defTemplate = `tools:
  - name: {{ .Name }}
    description: "{{ .Description }}"
{{- if .Modules }}
    moduleNames:
{{- range .Modules }}
      - {{ . }}
{{- end }}
{{- end }}
{{- if .Image }}
    containerImage: {{ .Image }}
{{- end }}
    params:
      - name: input
        type: file
        required: true
        filename: input.txt
        description: "Path to input file"
{{- range .Params }}
      - name: {{ . }}
        type: string
        description: ""
{{- end }}
    bindings:
      - param: input
{{- range .Params }}
      - flag: --{{ . }}
        param: {{ . }}
{{- end }}
`

type toolSkeleton struct {
	Name        string
	Description string
	Modules     []string
	Image       string
	Params      []string
}

func main() {
	name := flag.String("name", "", "Tool name (required)")
	description := flag.String("description", "", "One-line tool description")
	modules := flag.String("modules", "", "Comma-separated candidate module names")
	image := flag.String("image", "", "Container image reference")
	params := flag.String("params", "", "Comma-separated extra parameter names")
	out := flag.String("out", "", "Output file (default stdout)")
	flag.Parse()

	if *name == "" {
		fmt.Fprintln(os.Stderr, "usage: gen-tool -name <tool> [-description ...] [-modules a,b] [-image ref] [-params x,y] [-out file]")
		os.Exit(2)
	}

	skel := toolSkeleton{
		Name:        *name,
		Description: *description,
		Modules:     splitList(*modules),
		Image:       *image,
		Params:      splitList(*params),
	}
	if skel.Description == "" {
		skel.Description = "Run " + skel.Name
	}

	tmpl := template.Must(template.New("tooldef").Parse(defTemplate))

	w := os.Stdout
	if *out != "" {
		f, err := os.Create(*out)
		if err != nil {
			fmt.Fprintf(os.Stderr, "create %s: %v\n", *out, err)
			os.Exit(1)
		}
		defer f.Close()
		w = f
	}

	if err := tmpl.Execute(w, skel); err != nil {
		fmt.Fprintf(os.Stderr, "render definition: %v\n", err)
		os.Exit(1)
	}
}

func splitList(csv string) []string {
	var out []string
	for _, part := range strings.Split(csv, ",") {
		if s := strings.TrimSpace(part); s != "" {
			out = append(out, s)
		}
	}
	return out
}
