// Package config holds the server and execution configuration surface.
// Values come from flags and BIOEXEC_-prefixed environment variables;
// enumerated values (strategy names) are kept as raw strings here and
// validated where they are parsed, so invalid names are dropped with a
// warning rather than failing startup.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// ServerConfig holds configuration for the BioExec server process.
type ServerConfig struct {
	Addr      string // Listen address (default ":8080")
	LogLevel  string // Log level: debug, info, warn, error
	LogFormat string // Log format: text, json
	DBPath    string // SQLite history database path (":memory:" for testing)
	ToolsFile string // Optional YAML tool definitions file
	QueueURL  string // Optional remote job broker base URL
}

// ExecConfig holds the execution configuration consumed by the core.
type ExecConfig struct {
	// PreferredModes is a comma-separated strategy order.
	PreferredModes string

	// ForcedMode pins a single strategy for reproducible runs.
	ForcedMode string

	// ModuleNames, when set, overrides every tool definition's candidate
	// module names (comma-separated).
	ModuleNames string

	// ContainerImage, when set, overrides every tool definition's image.
	ContainerImage string

	// MaxInputSize bounds each staged input file, in bytes.
	MaxInputSize int64

	// Timeout bounds each tool invocation.
	Timeout time.Duration

	// TempDir is the root for ephemeral working directories. Empty means
	// the system default.
	TempDir string
}

// DefaultServerConfig returns sensible defaults.
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Addr:      ":8080",
		LogLevel:  "info",
		LogFormat: "text",
	}
}

// DefaultExecConfig mirrors the defaults of the original deployment:
// 100 MB input cap and a five-minute command timeout.
func DefaultExecConfig() ExecConfig {
	return ExecConfig{
		MaxInputSize: 100_000_000,
		Timeout:      300 * time.Second,
	}
}

// FromEnv overlays BIOEXEC_* environment variables onto an ExecConfig.
func (c ExecConfig) FromEnv() ExecConfig {
	if v := os.Getenv("BIOEXEC_PREFERRED_MODES"); v != "" {
		c.PreferredModes = v
	}
	if v := os.Getenv("BIOEXEC_EXECUTION_MODE"); v != "" {
		c.ForcedMode = v
	}
	if v := os.Getenv("BIOEXEC_MODULE_NAMES"); v != "" {
		c.ModuleNames = v
	}
	if v := os.Getenv("BIOEXEC_CONTAINER_IMAGE"); v != "" {
		c.ContainerImage = v
	}
	if v := os.Getenv("BIOEXEC_MAX_INPUT_SIZE"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			c.MaxInputSize = n
		}
	}
	if v := os.Getenv("BIOEXEC_TIMEOUT"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
			c.Timeout = time.Duration(secs) * time.Second
		}
	}
	if v := os.Getenv("BIOEXEC_TEMP_DIR"); v != "" {
		c.TempDir = v
	}
	return c
}

// SplitList splits a comma-separated configuration value, trimming
// whitespace and dropping empty entries.
func SplitList(csv string) []string {
	var out []string
	for _, part := range strings.Split(csv, ",") {
		if s := strings.TrimSpace(part); s != "" {
			out = append(out, s)
		}
	}
	return out
}
