// SPDX-License-Identifier: MIT
//
// resolve.go — the resolver (spec §4.4): a deterministic pass that imputes
// every omitted value from the structural position of its entity.
//
// Runs in this fixed order: per-deme resolution (in declaration order),
// then per-migration resolution, then pulse sorting (spec §4.4 preamble).
// Grounded on lvlath/builder/api.go's Constructor/BuildGraph idiom of
// applying deterministic passes in a fixed sequence over an already-built
// graph.
package demes

import (
	"fmt"
	"math"
	"sort"
)

// resolveGraph runs every resolution phase over g in the order the spec
// requires. g must already have all demes, migrations and pulses added by
// the builder.
func resolveGraph(g *Graph) error {
	for _, name := range g.demeOrder {
		d := g.demes[name]
		path := fmt.Sprintf("demes[%s]", name)
		if err := resolveDemeTimes(g, d, path); err != nil {
			return err
		}
		if err := resolveDemeSizes(d, path); err != nil {
			return err
		}
		if err := resolveDemeProportions(d, path); err != nil {
			return err
		}
		for i, e := range d.Epochs {
			resolveEpochSizeFunction(e, fmt.Sprintf("%s.epochs[%d]", path, i))
		}
	}

	for i, m := range g.Migrations {
		resolveMigration(m, fmt.Sprintf("migrations[%d]", i))
	}

	// Stable sort: oldest (largest time) first; ties preserve input order
	// (spec §4.4.6 — rationale: discrete-time rounding consumers need an
	// order consistent with a continuous-time consumer).
	sort.SliceStable(g.Pulses, func(i, j int) bool {
		return g.Pulses[i].Time > g.Pulses[j].Time
	})

	return nil
}

// resolveDemeTimes implements spec §4.4.1.
func resolveDemeTimes(g *Graph, d *Deme, path string) error {
	if d.StartTime == nil {
		var def float64
		switch len(d.Ancestors) {
		case 0:
			def = positiveInfinity()
		case 1:
			def = d.Ancestors[0].EndTime()
		default:
			return newParseError(ErrResolution, path+".start_time", "must explicitly set start_time when deme has more than one ancestor")
		}
		d.StartTime = &def
	}

	if len(d.Ancestors) == 0 && !math.IsInf(*d.StartTime, 1) {
		return newParseError(ErrResolution, path+".start_time", "deme %q has finite start_time but no ancestors", d.Name)
	}

	for _, a := range d.Ancestors {
		if !a.TimeInterval().Contains(*d.StartTime) {
			return newParseError(ErrResolution, path+".start_time",
				"ancestor %q (%v,%v] does not exist at deme %q's start_time %v",
				a.Name, *a.StartTime, a.EndTime(), d.Name, *d.StartTime)
		}
	}

	// The last epoch defaults end_time to 0.
	last := d.Epochs[len(d.Epochs)-1]
	if last.EndTime == nil {
		zero := 0.0
		last.EndTime = &zero
	}

	lastTime := *d.StartTime
	for i, e := range d.Epochs {
		if e.EndTime == nil {
			return newParseError(ErrResolution, fmt.Sprintf("%s.epochs[%d].end_time", path, i), "epoch end_time must be specified")
		}
		if *e.EndTime >= lastTime {
			return newParseError(ErrResolution, fmt.Sprintf("%s.epochs[%d].end_time", path, i), "epoch end_times must be strictly decreasing")
		}
		lastTime = *e.EndTime
	}
	return nil
}

// resolveDemeSizes implements spec §4.4.2.
func resolveDemeSizes(d *Deme, path string) error {
	first := d.Epochs[0]
	if first.StartSize == nil && first.EndSize == nil {
		return newParseError(ErrResolution, path+".epochs[0]", "must specify start_size or end_size for the initial epoch")
	}
	if first.StartSize == nil {
		v := *first.EndSize
		first.StartSize = &v
	}
	if first.EndSize == nil {
		v := *first.StartSize
		first.EndSize = &v
	}

	prev := first
	for i := 1; i < len(d.Epochs); i++ {
		e := d.Epochs[i]
		if e.StartSize == nil {
			v := *prev.EndSize
			e.StartSize = &v
		}
		if e.EndSize == nil {
			v := *e.StartSize
			e.EndSize = &v
		}
		prev = e
	}

	if math.IsInf(*d.StartTime, 1) && *first.StartSize != *first.EndSize {
		return newParseError(ErrResolution, path+".epochs[0]", "cannot have varying population size in an infinite time interval")
	}
	return nil
}

// resolveDemeProportions implements spec §4.4.3.
func resolveDemeProportions(d *Deme, path string) error {
	if d.hasProportions {
		return nil
	}
	switch len(d.Ancestors) {
	case 0:
		d.Proportions = []float64{}
	case 1:
		d.Proportions = []float64{1}
	default:
		return newParseError(ErrResolution, path+".proportions", "must specify proportions for a deme with more than one ancestor")
	}
	return nil
}

// resolveEpochSizeFunction implements spec §4.4.4: default inference only.
// The "constant implies start_size==end_size" and "only known kinds
// permitted" checks are semantic and run in validate.go, matching the
// reference implementation's split between resolve() and validate().
func resolveEpochSizeFunction(e *Epoch, _ string) {
	if e.SizeFunction == "" {
		if *e.StartSize == *e.EndSize {
			e.SizeFunction = "constant"
		} else {
			e.SizeFunction = "exponential"
		}
	}
}

// resolveMigration implements spec §4.4.5.
func resolveMigration(m *Migration, _ string) {
	if m.StartTime == nil {
		v := math.Min(*m.Source.StartTime, *m.Dest.StartTime)
		m.StartTime = &v
	}
	if m.EndTime == nil {
		v := math.Max(m.Source.EndTime(), m.Dest.EndTime())
		m.EndTime = &v
	}
}
