// Package config holds the build-configuration record the CLI front-end
// hands to the core. It is a single immutable struct rather than
// package-level mutable globals, since the core must be safe to reuse
// across builds within one process.
package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/axiomates/cil2cpp/internal/diag"
)

// BuildConfig controls how pass 7 of the IR builder attaches debug
// metadata and how aggressively the safety-net gate reports diagnostics.
type BuildConfig struct {
	// IsDebug marks a debug build. The CLI logs it; no IR builder pass
	// reads it, and no DebugInfo is attached to emitted Instructions.
	IsDebug bool

	// EmitLineDirectives asks the (external) emitter to emit source line
	// directives in the generated C++. The core only threads the flag
	// through; it does not emit anything itself.
	EmitLineDirectives bool

	// EmitILOffsetComments asks the emitter to annotate generated lines
	// with the originating IL offset.
	EmitILOffsetComments bool

	// EnableStackTraces asks the runtime collaborator to maintain a
	// shadow call stack for managed stack traces.
	EnableStackTraces bool

	// ReadDebugSymbols, if true, makes the metadata reader look for and
	// parse a companion debug-symbol file.
	ReadDebugSymbols bool
}

// Debug is the all-true preset.
var Debug = BuildConfig{
	IsDebug:              true,
	EmitLineDirectives:   true,
	EmitILOffsetComments: true,
	EnableStackTraces:    true,
	ReadDebugSymbols:     true,
}

// Release is the all-false preset.
var Release = BuildConfig{
	IsDebug:              false,
	EmitLineDirectives:   false,
	EmitILOffsetComments: false,
	EnableStackTraces:    false,
	ReadDebugSymbols:     false,
}

// FromName resolves a preset by name, case-insensitively. Unknown names
// fail with a ConfigurationError.
func FromName(name string) (BuildConfig, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return Debug, nil
	case "release":
		return Release, nil
	default:
		return BuildConfig{}, diag.New(diag.KindConfigurationError,
			fmt.Sprintf("unknown configuration preset %q", name))
	}
}

// override is the on-disk shape of a cil2cpp.yaml override file, read
// from the path the caller passes in (the CLI's --config-file; nothing
// is looked up next to the entry assembly). Any field present overrides the corresponding
// BuildConfig field after a preset is selected; absent fields (nil
// pointers) leave the preset's value untouched.
type override struct {
	IsDebug              *bool `yaml:"is_debug"`
	EmitLineDirectives   *bool `yaml:"emit_line_directives"`
	EmitILOffsetComments *bool `yaml:"emit_il_offset_comments"`
	EnableStackTraces    *bool `yaml:"enable_stack_traces"`
	ReadDebugSymbols     *bool `yaml:"read_debug_symbols"`
}

// LoadOverride reads path (if it exists) and applies any fields it sets
// on top of cfg. A missing file is not an error: the override is
// optional. A malformed file is a ConfigurationError.
func LoadOverride(cfg BuildConfig, path string) (BuildConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, diag.Wrap(diag.KindConfigurationError, "reading "+path, err)
	}

	var ov override
	if err := yaml.Unmarshal(data, &ov); err != nil {
		return cfg, diag.Wrap(diag.KindConfigurationError, "parsing "+path, err)
	}

	if ov.IsDebug != nil {
		cfg.IsDebug = *ov.IsDebug
	}
	if ov.EmitLineDirectives != nil {
		cfg.EmitLineDirectives = *ov.EmitLineDirectives
	}
	if ov.EmitILOffsetComments != nil {
		cfg.EmitILOffsetComments = *ov.EmitILOffsetComments
	}
	if ov.EnableStackTraces != nil {
		cfg.EnableStackTraces = *ov.EnableStackTraces
	}
	if ov.ReadDebugSymbols != nil {
		cfg.ReadDebugSymbols = *ov.ReadDebugSymbols
	}
	return cfg, nil
}
