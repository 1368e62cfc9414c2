package demes_test

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/popsim-go/demes"
)

func deepCopyMap(m map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(m))
	for k, v := range m {
		out[k] = deepCopyValue(v)
	}
	return out
}

func deepCopyValue(v interface{}) interface{} {
	switch t := v.(type) {
	case map[string]interface{}:
		return deepCopyMap(t)
	case []interface{}:
		out := make([]interface{}, len(t))
		for i, item := range t {
			out[i] = deepCopyValue(item)
		}
		return out
	default:
		return v
	}
}

// --- spec §8 scenario 1: minimal ---------------------------------------

func TestParse_Minimal(t *testing.T) {
	t.Parallel()

	input := map[string]interface{}{
		"time_units": "generations",
		"demes": []interface{}{
			map[string]interface{}{
				"name":   "a",
				"epochs": []interface{}{map[string]interface{}{"start_size": 100}},
			},
		},
	}

	g, err := demes.Parse(deepCopyMap(input))
	require.NoError(t, err)

	a, ok := g.Deme("a")
	require.True(t, ok)
	assert.True(t, math.IsInf(*a.StartTime, 1))
	require.Len(t, a.Epochs, 1)
	e := a.Epochs[0]
	assert.Equal(t, 0.0, *e.EndTime)
	assert.Equal(t, 100.0, *e.StartSize)
	assert.Equal(t, 100.0, *e.EndSize)
	assert.Equal(t, "constant", e.SizeFunction)
	assert.Equal(t, 0.0, e.SelfingRate)
	assert.Equal(t, 0.0, e.CloningRate)
	require.NotNil(t, g.GenerationTime)
	assert.Equal(t, 1.0, *g.GenerationTime)
}

// --- spec §8 scenario 2: ancestry chain ---------------------------------

func TestParse_AncestryChain(t *testing.T) {
	t.Parallel()

	input := map[string]interface{}{
		"time_units": "generations",
		"defaults": map[string]interface{}{
			"epoch": map[string]interface{}{"start_size": 1},
		},
		"demes": []interface{}{
			map[string]interface{}{
				"name":   "a",
				"epochs": []interface{}{map[string]interface{}{"end_time": 20}},
			},
			map[string]interface{}{
				"name":      "b",
				"ancestors": []interface{}{"a"},
				"epochs":    []interface{}{map[string]interface{}{"end_time": 10}},
			},
			map[string]interface{}{
				"name":      "c",
				"ancestors": []interface{}{"b"},
			},
		},
	}

	g, err := demes.Parse(input)
	require.NoError(t, err)

	a, _ := g.Deme("a")
	b, _ := g.Deme("b")
	c, _ := g.Deme("c")

	assert.True(t, math.IsInf(*a.StartTime, 1))
	assert.Equal(t, 20.0, a.EndTime())
	assert.Equal(t, 20.0, *b.StartTime)
	assert.Equal(t, 10.0, b.EndTime())
	assert.Equal(t, 10.0, *c.StartTime)
	assert.Equal(t, 0.0, c.EndTime())
}

// --- spec §8 scenario 3: symmetric migration self-loop rejection --------

func TestParse_SymmetricMigrationSelfLoopRejected(t *testing.T) {
	t.Parallel()

	input := map[string]interface{}{
		"time_units": "generations",
		"demes": []interface{}{
			map[string]interface{}{
				"name":   "d0",
				"epochs": []interface{}{map[string]interface{}{"start_size": 100}},
			},
		},
		"migrations": []interface{}{
			map[string]interface{}{
				"demes": []interface{}{"d0", "d0"},
				"rate":  0.5,
			},
		},
	}

	_, err := demes.Parse(input)
	require.Error(t, err)
	assert.True(t, errors.Is(err, demes.ErrValidation) || errors.Is(err, demes.ErrUnknownReference),
		"expected a validation-stage failure for a migration demes list with a repeated name, got %v", err)
}

// --- spec §8 scenario 4: competing migrations ---------------------------

func TestParse_CompetingMigrationsOverlap(t *testing.T) {
	t.Parallel()

	input := map[string]interface{}{
		"time_units": "generations",
		"demes": []interface{}{
			map[string]interface{}{
				"name":   "x",
				"epochs": []interface{}{map[string]interface{}{"start_size": 100, "end_time": 0}},
			},
			map[string]interface{}{
				"name":   "y",
				"epochs": []interface{}{map[string]interface{}{"start_size": 100, "end_time": 0}},
			},
		},
		"migrations": []interface{}{
			map[string]interface{}{"source": "x", "dest": "y", "rate": 0.1, "start_time": 20, "end_time": 11},
			map[string]interface{}{"source": "x", "dest": "y", "rate": 0.1, "start_time": 12, "end_time": 1},
		},
	}

	_, err := demes.Parse(input)
	require.Error(t, err)
	assert.True(t, errors.Is(err, demes.ErrValidation))
}

// --- spec §8 scenario 5: pulse boundary asymmetry -----------------------

func pulseBoundaryInput(sources []interface{}, dest string) map[string]interface{} {
	return map[string]interface{}{
		"time_units": "generations",
		"demes": []interface{}{
			map[string]interface{}{
				"name":   "deme0",
				"epochs": []interface{}{map[string]interface{}{"start_size": 100, "end_time": 0}},
			},
			map[string]interface{}{
				"name":       "deme1",
				"ancestors":  []interface{}{"deme0"},
				"start_time": 10,
				"epochs":     []interface{}{map[string]interface{}{"start_size": 100, "end_time": 0}},
			},
			map[string]interface{}{
				"name":   "deme2",
				"epochs": []interface{}{map[string]interface{}{"start_size": 100, "end_time": 0}},
			},
		},
		"pulses": []interface{}{
			map[string]interface{}{
				"sources":     sources,
				"dest":        dest,
				"time":        10,
				"proportions": []interface{}{0.1},
			},
		},
	}
}

func TestParse_PulseBoundaryAccepted(t *testing.T) {
	t.Parallel()

	input := pulseBoundaryInput([]interface{}{"deme2"}, "deme1")
	g, err := demes.Parse(input)
	require.NoError(t, err)
	require.Len(t, g.Pulses, 1)
	assert.Equal(t, 10.0, g.Pulses[0].Time)
}

func TestParse_PulseBoundaryRejected(t *testing.T) {
	t.Parallel()

	// swapping source and dest: time == source(deme1).start_time, which is
	// excluded from the source's existence interval (start,end].
	input := pulseBoundaryInput([]interface{}{"deme1"}, "deme2")
	_, err := demes.Parse(input)
	require.Error(t, err)
	assert.True(t, errors.Is(err, demes.ErrValidation))
}

// --- spec §8 scenario 6: pulse ordering normalization -------------------

func TestParse_PulseOrderingNormalization(t *testing.T) {
	t.Parallel()

	input := map[string]interface{}{
		"time_units": "generations",
		"demes": []interface{}{
			map[string]interface{}{
				"name":   "a",
				"epochs": []interface{}{map[string]interface{}{"start_size": 100, "end_time": 0}},
			},
			map[string]interface{}{
				"name":   "b",
				"epochs": []interface{}{map[string]interface{}{"start_size": 100, "end_time": 0}},
			},
		},
		"pulses": []interface{}{
			map[string]interface{}{"sources": []interface{}{"a"}, "dest": "b", "time": 1, "proportions": []interface{}{0.1}},
			map[string]interface{}{"sources": []interface{}{"a"}, "dest": "b", "time": 1.2, "proportions": []interface{}{0.1}},
		},
	}

	g, err := demes.Parse(input)
	require.NoError(t, err)
	require.Len(t, g.Pulses, 2)
	assert.Equal(t, 1.2, g.Pulses[0].Time)
	assert.Equal(t, 1.0, g.Pulses[1].Time)
}

func TestParse_PulseOrderingTiesPreserveInputOrder(t *testing.T) {
	t.Parallel()

	input := map[string]interface{}{
		"time_units": "generations",
		"demes": []interface{}{
			map[string]interface{}{
				"name":   "a",
				"epochs": []interface{}{map[string]interface{}{"start_size": 100, "end_time": 0}},
			},
			map[string]interface{}{
				"name":   "b",
				"epochs": []interface{}{map[string]interface{}{"start_size": 100, "end_time": 0}},
			},
			map[string]interface{}{
				"name":   "c",
				"epochs": []interface{}{map[string]interface{}{"start_size": 100, "end_time": 0}},
			},
		},
		"pulses": []interface{}{
			map[string]interface{}{"sources": []interface{}{"a"}, "dest": "c", "time": 1, "proportions": []interface{}{0.1}},
			map[string]interface{}{"sources": []interface{}{"b"}, "dest": "c", "time": 1, "proportions": []interface{}{0.1}},
		},
	}

	g, err := demes.Parse(input)
	require.NoError(t, err)
	require.Len(t, g.Pulses, 2)
	assert.Equal(t, "a", g.Pulses[0].Sources[0].Name)
	assert.Equal(t, "b", g.Pulses[1].Sources[0].Name)
}

// --- universal invariants (spec §8) -------------------------------------

func TestParse_ExtraFieldRejected(t *testing.T) {
	t.Parallel()

	input := map[string]interface{}{
		"time_units": "generations",
		"unknown":    "field",
		"demes": []interface{}{
			map[string]interface{}{
				"name":   "a",
				"epochs": []interface{}{map[string]interface{}{"start_size": 100}},
			},
		},
	}
	_, err := demes.Parse(input)
	require.Error(t, err)
	assert.True(t, errors.Is(err, demes.ErrExtraField))
}

func TestParse_ExtraFieldRejected_NestedScopes(t *testing.T) {
	t.Parallel()

	cases := map[string]map[string]interface{}{
		"deme scope": {
			"time_units": "generations",
			"demes": []interface{}{
				map[string]interface{}{
					"name":   "a",
					"bogus":  true,
					"epochs": []interface{}{map[string]interface{}{"start_size": 100}},
				},
			},
		},
		"epoch scope": {
			"time_units": "generations",
			"demes": []interface{}{
				map[string]interface{}{
					"name": "a",
					"epochs": []interface{}{
						map[string]interface{}{"start_size": 100, "bogus": true},
					},
				},
			},
		},
		"defaults scope": {
			"time_units": "generations",
			"defaults": map[string]interface{}{
				"deme": map[string]interface{}{"bogus": true},
			},
			"demes": []interface{}{
				map[string]interface{}{
					"name":   "a",
					"epochs": []interface{}{map[string]interface{}{"start_size": 100}},
				},
			},
		},
	}
	for name, input := range cases {
		input := input
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			_, err := demes.Parse(input)
			require.Error(t, err)
			assert.True(t, errors.Is(err, demes.ErrExtraField), "case %s: %v", name, err)
		})
	}
}

func TestParse_DeclarationOrderRequired(t *testing.T) {
	t.Parallel()

	input := map[string]interface{}{
		"time_units": "generations",
		"demes": []interface{}{
			map[string]interface{}{
				"name":      "b",
				"ancestors": []interface{}{"a"},
				"epochs":    []interface{}{map[string]interface{}{"start_size": 100}},
			},
			map[string]interface{}{
				"name":   "a",
				"epochs": []interface{}{map[string]interface{}{"start_size": 100}},
			},
		},
	}
	_, err := demes.Parse(input)
	require.Error(t, err)
	assert.True(t, errors.Is(err, demes.ErrUnknownReference))
}

func TestParse_SymmetricMigrationExpansionCount(t *testing.T) {
	t.Parallel()

	input := map[string]interface{}{
		"time_units": "generations",
		"demes": []interface{}{
			map[string]interface{}{"name": "a", "epochs": []interface{}{map[string]interface{}{"start_size": 100, "end_time": 0}}},
			map[string]interface{}{"name": "b", "epochs": []interface{}{map[string]interface{}{"start_size": 100, "end_time": 0}}},
			map[string]interface{}{"name": "c", "epochs": []interface{}{map[string]interface{}{"start_size": 100, "end_time": 0}}},
		},
		"migrations": []interface{}{
			map[string]interface{}{"demes": []interface{}{"a", "b", "c"}, "rate": 0.01},
		},
	}
	g, err := demes.Parse(input)
	require.NoError(t, err)
	assert.Len(t, g.Migrations, 6) // n(n-1) for n=3
}

func TestParse_Idempotence(t *testing.T) {
	t.Parallel()

	// a and b are both contemporaneous, unrelated demes existing over
	// (Inf,0], so their existence intervals fully overlap; the migration
	// and pulse below sit inside that overlap rather than outside either
	// deme's existence (unlike an ancestor/descendant pair, whose
	// intervals are adjacent, not overlapping).
	input := map[string]interface{}{
		"time_units": "generations",
		"demes": []interface{}{
			map[string]interface{}{
				"name":   "a",
				"epochs": []interface{}{map[string]interface{}{"start_size": 100, "end_time": 0}},
			},
			map[string]interface{}{
				"name":   "b",
				"epochs": []interface{}{map[string]interface{}{"start_size": 50, "end_time": 0}},
			},
		},
		"migrations": []interface{}{
			map[string]interface{}{"source": "a", "dest": "b", "rate": 0.01, "start_time": 20, "end_time": 5},
		},
		"pulses": []interface{}{
			map[string]interface{}{"sources": []interface{}{"a"}, "dest": "b", "time": 15, "proportions": []interface{}{0.1}},
		},
	}

	g1, err := demes.Parse(input)
	require.NoError(t, err)
	mdm := demes.Canonicalize(g1)

	g2, err := demes.Parse(deepCopyMap(mdm))
	require.NoError(t, err)
	mdm2 := demes.Canonicalize(g2)

	assert.Equal(t, mdm, mdm2)
}

func TestGraph_DemeNamesAndDemesPreserveDeclarationOrder(t *testing.T) {
	t.Parallel()

	input := map[string]interface{}{
		"time_units": "generations",
		"demes": []interface{}{
			map[string]interface{}{"name": "c", "epochs": []interface{}{map[string]interface{}{"start_size": 100, "end_time": 0}}},
			map[string]interface{}{"name": "a", "epochs": []interface{}{map[string]interface{}{"start_size": 100, "end_time": 0}}},
			map[string]interface{}{"name": "b", "epochs": []interface{}{map[string]interface{}{"start_size": 100, "end_time": 0}}},
		},
	}
	g, err := demes.Parse(input)
	require.NoError(t, err)

	assert.Equal(t, []string{"c", "a", "b"}, g.DemeNames())

	demeList := g.Demes()
	require.Len(t, demeList, 3)
	for i, name := range []string{"c", "a", "b"} {
		assert.Equal(t, name, demeList[i].Name)
	}
}

func TestParse_MissingRequiredField(t *testing.T) {
	t.Parallel()

	input := map[string]interface{}{
		"demes": []interface{}{
			map[string]interface{}{
				"name":   "a",
				"epochs": []interface{}{map[string]interface{}{"start_size": 100}},
			},
		},
	}
	_, err := demes.Parse(input)
	require.Error(t, err)
	assert.True(t, errors.Is(err, demes.ErrMissingKey))
}

func TestParse_GenerationTimeRequiredForNonGenerationUnits(t *testing.T) {
	t.Parallel()

	input := map[string]interface{}{
		"time_units": "years",
		"demes": []interface{}{
			map[string]interface{}{
				"name":   "a",
				"epochs": []interface{}{map[string]interface{}{"start_size": 100}},
			},
		},
	}
	_, err := demes.Parse(deepCopyMap(input))
	require.Error(t, err)
	assert.True(t, errors.Is(err, demes.ErrValidation))

	input["generation_time"] = 25
	g, err := demes.Parse(input)
	require.NoError(t, err)
	assert.Equal(t, 25.0, *g.GenerationTime)
}
