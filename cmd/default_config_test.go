package cmd

import (
	"bytes"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dpsim/dpsim/dp/relocation"
)

const testPresets = `
version: "1"
relocation:
  tiny:
    capacity: 3
    max_action: 1
    transfer_cost: 2
    reward_per_unit: 10
    discount: 0.5
    demand_rate_a: 1
    demand_rate_b: 1
    replenish_rate_a: 1
    replenish_rate_b: 1
    cutoff: 4
    tolerance: 0.001
    expectation: factored
gambler:
  coin:
    goal: 10
    heads_prob: 0.5
    tolerance: 1.0e-9
lightsout:
  two:
    size: 2
`

func TestParsePresets_ValidDocument(t *testing.T) {
	// GIVEN a well-formed presets document
	p, err := parsePresets([]byte(testPresets))
	require.NoError(t, err)

	// THEN every section is populated
	cfg, err := p.RelocationPreset("tiny")
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Capacity)
	assert.Equal(t, relocation.ExpectationFactored, cfg.Expectation)
	assert.NoError(t, cfg.Validate())

	g, err := p.GamblerPreset("coin")
	require.NoError(t, err)
	assert.Equal(t, 10, g.Goal)

	l, err := p.LightsOutPreset("two")
	require.NoError(t, err)
	assert.Equal(t, 2, l.Size)
}

func TestParsePresets_UnknownKeyRejected(t *testing.T) {
	// GIVEN a preset with a misspelt field
	doc := `
relocation:
  typo:
    capacty: 20
`
	// WHEN parsed
	_, err := parsePresets([]byte(doc))

	// THEN strict decoding refuses it instead of zeroing the capacity
	require.Error(t, err)
	assert.Contains(t, err.Error(), "capacty")
}

func TestParsePresets_UnknownSectionRejected(t *testing.T) {
	_, err := parsePresets([]byte("gridworld:\n  small:\n    size: 4\n"))
	assert.Error(t, err)
}

func TestPresets_MissingNameListsAvailable(t *testing.T) {
	p, err := parsePresets([]byte(testPresets))
	require.NoError(t, err)

	_, err = p.RelocationPreset("huge")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "tiny")

	_, err = p.GamblerPreset("huge")
	assert.Error(t, err)
	_, err = p.LightsOutPreset("huge")
	assert.Error(t, err)
}

func TestLoadPresets_MissingFile(t *testing.T) {
	_, err := loadPresets("does-not-exist.yaml")
	assert.Error(t, err)
}

// TestRepoDefaults_AllPresetsValid keeps defaults.yaml in step with the
// config types.
func TestRepoDefaults_AllPresetsValid(t *testing.T) {
	path := "../defaults.yaml"
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Skip("defaults.yaml not found, skipping integration test")
	}
	p, err := loadPresets(path)
	require.NoError(t, err)

	require.Contains(t, p.Relocation, "canonical")
	assert.Equal(t, relocation.DefaultConfig(), p.Relocation["canonical"])
	for name, cfg := range p.Relocation {
		assert.NoError(t, cfg.Validate(), "relocation/%s", name)
	}
	for name, cfg := range p.Gambler {
		assert.NoError(t, cfg.Validate(), "gambler/%s", name)
	}
	for name, cfg := range p.LightsOut {
		assert.NoError(t, cfg.Validate(), "lightsout/%s", name)
	}
}

func TestPrintPresets_SortedByName(t *testing.T) {
	p, err := parsePresets([]byte(testPresets))
	require.NoError(t, err)

	var buf bytes.Buffer
	printPresets(&buf, p)
	out := buf.String()
	assert.Contains(t, out, "relocation/tiny: capacity=3")
	assert.Contains(t, out, "gambler/coin: goal=10")
	assert.Contains(t, out, "lightsout/two: size=2")
}
