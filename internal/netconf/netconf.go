// Package netconf loads the per-network bytecode-target limits the type
// checker enforces: the maximum number of mappings and transitions a
// single program may declare. Loads YAML-shaped runtime
// configuration via gopkg.in/yaml.v3, generalized down
// from interpreter-wide settings to this core's one small document.
package netconf

import (
	"io"

	"gopkg.in/yaml.v3"
)

// Constants are the network-specific program bounds — how many mappings
// and transitions a single program may declare on the target network —
// surfaced through the driver's pass state.
type Constants struct {
	MaxMappingsPerProgram   int `yaml:"max_mappings_per_program"`
	MaxTransitionsPerProgram int `yaml:"max_transitions_per_program"`
	MaxFunctionInputs       int `yaml:"max_function_inputs"`
}

// Default returns the bounds used when the driver has no configuration
// file to read — these
// mirror the target VM's documented testnet limits.
func Default() Constants {
	return Constants{
		MaxMappingsPerProgram:    31,
		MaxTransitionsPerProgram: 31,
		MaxFunctionInputs:        16,
	}
}

// Load decodes a YAML document of network constants from r, filling in
// Default() values for any field the document omits.
func Load(r io.Reader) (Constants, error) {
	c := Default()
	dec := yaml.NewDecoder(r)
	if err := dec.Decode(&c); err != nil && err != io.EOF {
		return Constants{}, err
	}
	return c, nil
}
