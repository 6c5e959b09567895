package detect

// WorkdirToken is a placeholder in a resolution's command prefix that the
// invoker substitutes with the invocation's working directory. Container
// prefixes use it to bind-mount the staged inputs.
const WorkdirToken = "${PWD}"

// Resolution describes how one named tool will be invoked. It is
// immutable once produced and cached by the Resolver for the lifetime
// of the process.
//
// Exactly one of ExecutablePath, ModuleName, ContainerImage is set,
// consistent with Strategy; all three are empty when the strategy is
// StrategyUnavailable.
type Resolution struct {
	Tool           string   `json:"tool"`
	Strategy       Strategy `json:"strategy"`
	ExecutablePath string   `json:"executable_path,omitempty"` // Native only
	Version        string   `json:"version,omitempty"`         // best effort, informational
	ModuleName     string   `json:"module_name,omitempty"`     // Module/Lmod only
	ContainerImage string   `json:"container_image,omitempty"` // Singularity/Docker only
	CommandPrefix  []string `json:"command_prefix,omitempty"`
}

// Available reports whether the tool can be invoked at all.
func (r Resolution) Available() bool {
	return r.Strategy != StrategyUnavailable && r.Strategy != ""
}
