// SPDX-License-Identifier: MIT
//
// canonical.go — the canonicalizer (spec §4.6): emits the MDM form of a
// fully-resolved Graph as a nested mapping, with every field explicit and
// +Inf encoded as the literal string "Infinity".
package demes

import (
	"fmt"
	"math"
)

// String renders g as its canonical mapping for debugging. It is a debug
// aid only, not the canonical serialization contract — Canonicalize is.
func (g *Graph) String() string {
	return fmt.Sprintf("%+v", Canonicalize(g))
}

// Canonicalize emits g as a Machine Data Model mapping: every field
// explicit, migrations only in asymmetric form, demes as an ordered list,
// and pulses sorted oldest-first (as resolveGraph leaves them).
//
// Re-ingesting the result with Parse must produce a structurally equal
// graph (spec §8 idempotence law); Canonicalize never mutates g.
func Canonicalize(g *Graph) map[string]interface{} {
	demeList := g.Demes()
	demes := make([]interface{}, 0, len(demeList))
	for _, d := range demeList {
		demes = append(demes, demeToMap(d))
	}

	migrations := make([]interface{}, 0, len(g.Migrations))
	for _, m := range g.Migrations {
		migrations = append(migrations, migrationToMap(m))
	}

	pulses := make([]interface{}, 0, len(g.Pulses))
	for _, p := range g.Pulses {
		pulses = append(pulses, pulseToMap(p))
	}

	doi := make([]interface{}, 0, len(g.DOI))
	for _, d := range g.DOI {
		doi = append(doi, d)
	}

	return map[string]interface{}{
		"description":     g.Description,
		"time_units":      g.TimeUnits,
		"generation_time": *g.GenerationTime,
		"doi":             doi,
		"metadata":        g.Metadata,
		"demes":           demes,
		"migrations":      migrations,
		"pulses":          pulses,
	}
}

// encodeInf converts numeric positive infinity to the literal string
// "Infinity" for serialization; all other values pass through unchanged.
func encodeInf(v float64) interface{} {
	if math.IsInf(v, 1) {
		return jsonInfinity
	}
	return v
}

func demeToMap(d *Deme) map[string]interface{} {
	ancestors := make([]interface{}, 0, len(d.Ancestors))
	for _, a := range d.Ancestors {
		ancestors = append(ancestors, a.Name)
	}
	proportions := make([]interface{}, 0, len(d.Proportions))
	for _, p := range d.Proportions {
		proportions = append(proportions, p)
	}
	epochs := make([]interface{}, 0, len(d.Epochs))
	for _, e := range d.Epochs {
		epochs = append(epochs, epochToMap(e))
	}
	return map[string]interface{}{
		"name":        d.Name,
		"description": d.Description,
		"start_time":  encodeInf(*d.StartTime),
		"ancestors":   ancestors,
		"proportions": proportions,
		"epochs":      epochs,
	}
}

func epochToMap(e *Epoch) map[string]interface{} {
	return map[string]interface{}{
		"end_time":      *e.EndTime,
		"start_size":    *e.StartSize,
		"end_size":      *e.EndSize,
		"size_function": e.SizeFunction,
		"selfing_rate":  e.SelfingRate,
		"cloning_rate":  e.CloningRate,
	}
}

func migrationToMap(m *Migration) map[string]interface{} {
	return map[string]interface{}{
		"rate":       m.Rate,
		"start_time": encodeInf(*m.StartTime),
		"end_time":   *m.EndTime,
		"source":     m.Source.Name,
		"dest":       m.Dest.Name,
	}
}

func pulseToMap(p *Pulse) map[string]interface{} {
	sources := make([]interface{}, 0, len(p.Sources))
	for _, s := range p.Sources {
		sources = append(sources, s.Name)
	}
	proportions := make([]interface{}, 0, len(p.Proportions))
	for _, v := range p.Proportions {
		proportions = append(proportions, v)
	}
	return map[string]interface{}{
		"sources":     sources,
		"dest":        p.Dest.Name,
		"time":        p.Time,
		"proportions": proportions,
	}
}
