package cmd

import (
	"bytes"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/dpsim/dpsim/dp/gambler"
	"github.com/dpsim/dpsim/dp/lightsout"
	"github.com/dpsim/dpsim/dp/relocation"
)

// Presets represents the full defaults.yaml structure.
// All top-level sections must be listed to satisfy KnownFields(true) strict parsing.
type Presets struct {
	Version    string                       `yaml:"version"`
	Relocation map[string]relocation.Config `yaml:"relocation"`
	Gambler    map[string]gambler.Config    `yaml:"gambler"`
	LightsOut  map[string]lightsout.Config  `yaml:"lightsout"`
}

// parsePresets decodes a presets document. Unknown keys are errors so that
// a misspelt field never silently falls back to zero.
func parsePresets(data []byte) (Presets, error) {
	var p Presets
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&p); err != nil {
		return Presets{}, fmt.Errorf("parsing presets YAML: %w", err)
	}
	return p, nil
}

// loadPresets reads and parses the presets file at path.
func loadPresets(path string) (Presets, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Presets{}, fmt.Errorf("reading presets file: %w", err)
	}
	return parsePresets(data)
}

// RelocationPreset returns the named relocation preset.
func (p Presets) RelocationPreset(name string) (relocation.Config, error) {
	cfg, ok := p.Relocation[name]
	if !ok {
		return relocation.Config{}, fmt.Errorf("unknown relocation preset %q; available: %v", name, sortedKeys(p.Relocation))
	}
	return cfg, nil
}

// GamblerPreset returns the named stake-sizing preset.
func (p Presets) GamblerPreset(name string) (gambler.Config, error) {
	cfg, ok := p.Gambler[name]
	if !ok {
		return gambler.Config{}, fmt.Errorf("unknown gambler preset %q; available: %v", name, sortedKeys(p.Gambler))
	}
	return cfg, nil
}

// LightsOutPreset returns the named board preset.
func (p Presets) LightsOutPreset(name string) (lightsout.Config, error) {
	cfg, ok := p.LightsOut[name]
	if !ok {
		return lightsout.Config{}, fmt.Errorf("unknown lightsout preset %q; available: %v", name, sortedKeys(p.LightsOut))
	}
	return cfg, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
