package registry

// builtinDefs returns the BLAST tool definitions shipped with the
// server. A definitions file can override any of them by name.
func builtinDefs() []ToolDef {
	blastModules := []string{"blast", "blast+", "ncbi-blast+"}
	const blastImage = "biocontainers/blast:2.15.0"

	searchParams := []Param{
		{Name: "query", Type: ParamFile, Required: true, Filename: "query.fasta",
			Description: "Query sequences in FASTA format"},
		{Name: "database", Type: ParamString, Required: true,
			Description: "BLAST database path or name"},
		{Name: "output_format", Type: ParamInt, Default: 6,
			Description: "Output format (0-18)"},
		{Name: "evalue", Type: ParamFloat, Default: 0.001,
			Description: "E-value threshold"},
		{Name: "max_target_seqs", Type: ParamInt, Default: 10,
			Description: "Maximum number of target sequences"},
		{Name: "num_threads", Type: ParamInt, Default: 1,
			Description: "Number of threads"},
	}
	searchBindings := []Binding{
		{Flag: "-query", Param: "query"},
		{Flag: "-db", Param: "database"},
		{Flag: "-outfmt", Param: "output_format"},
		{Flag: "-evalue", Param: "evalue"},
		{Flag: "-max_target_seqs", Param: "max_target_seqs"},
		{Flag: "-num_threads", Param: "num_threads"},
	}

	return []ToolDef{
		{
			Name:           "blastn",
			Description:    "Nucleotide-nucleotide BLAST search",
			ModuleNames:    blastModules,
			ContainerImage: blastImage,
			Params:         searchParams,
			Bindings:       searchBindings,
		},
		{
			Name:           "blastp",
			Description:    "Protein-protein BLAST search",
			ModuleNames:    blastModules,
			ContainerImage: blastImage,
			Params:         searchParams,
			Bindings:       searchBindings,
		},
		{
			Name:           "makeblastdb",
			Description:    "Create a BLAST database from FASTA input",
			ModuleNames:    blastModules,
			ContainerImage: blastImage,
			Params: []Param{
				{Name: "input", Type: ParamFile, Required: true, Filename: "input.fasta",
					Description: "Input sequences in FASTA format"},
				{Name: "dbtype", Type: ParamString, Required: true,
					Description: "Database type (nucl or prot)"},
				{Name: "title", Type: ParamString,
					Description: "Database title"},
				{Name: "parse_seqids", Type: ParamBool, Default: false,
					Description: "Parse sequence IDs"},
			},
			Bindings: []Binding{
				{Flag: "-in", Param: "input"},
				{Flag: "-dbtype", Param: "dbtype"},
				{Flag: "-title", Param: "title"},
				{Flag: "-parse_seqids", Param: "parse_seqids"},
			},
		},
	}
}
