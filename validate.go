// SPDX-License-Identifier: MIT
//
// validate.go — the validator (spec §4.5): asserts every cross-entity
// invariant on the fully-resolved graph (spec §3 invariants 1-13, plus the
// pulse half-open existence check, migration interval non-overlap check,
// and per-deme ingress rate bound).
//
// Grounded on lvlath/matrix/validators.go's staged Validate* functions:
// each check here is a small top-to-bottom function returning a wrapped
// sentinel error, composed by validateGraph in a fixed, deterministic
// order (spec §7: "first error encountered in a deterministic traversal
// order").
package demes

import (
	"fmt"
	"math"
	"sort"
)

// validateGraph runs every semantic check over the fully-resolved g,
// returning the first failure encountered.
func validateGraph(g *Graph) error {
	if len(g.demeOrder) == 0 {
		return newParseError(ErrValidation, "demes", "the graph must have one or more demes")
	}

	if err := validateGenerationTime(g); err != nil {
		return err
	}

	for _, name := range g.demeOrder {
		d := g.demes[name]
		path := fmt.Sprintf("demes[%s]", name)
		if err := validateDeme(d, path); err != nil {
			return err
		}
	}

	for i, p := range g.Pulses {
		if err := validatePulse(p, fmt.Sprintf("pulses[%d]", i)); err != nil {
			return err
		}
	}

	for i, m := range g.Migrations {
		if err := validateMigration(m, fmt.Sprintf("migrations[%d]", i)); err != nil {
			return err
		}
	}

	if err := validateMigrationNonOverlap(g); err != nil {
		return err
	}

	if err := validateIngressRateBound(g); err != nil {
		return err
	}

	return nil
}

// validateGenerationTime implements invariant 13.
func validateGenerationTime(g *Graph) error {
	if g.GenerationTime == nil {
		if g.TimeUnits == "generations" {
			one := 1.0
			g.GenerationTime = &one
		} else {
			return newParseError(ErrValidation, "generation_time", "must specify generation_time when time_units is not \"generations\"")
		}
	}
	if g.TimeUnits == "generations" && *g.GenerationTime != 1 {
		return newParseError(ErrValidation, "generation_time", "must be 1 when time_units is \"generations\"")
	}
	return nil
}

// validateDeme implements invariants 2, 3 (already enforced by resolve),
// 7 (proportions length/sum), and ancestor-uniqueness, plus epoch checks.
func validateDeme(d *Deme, path string) error {
	if len(d.Proportions) != len(d.Ancestors) {
		return newParseError(ErrValidation, path+".proportions", "proportions must have the same length as ancestors")
	}
	if len(d.Ancestors) > 0 && !approxEqual(sumFloats(d.Proportions), 1) {
		return newParseError(ErrValidation, path+".proportions", "sum of proportions must be approximately 1")
	}
	seen := make(map[string]bool, len(d.Ancestors))
	for _, a := range d.Ancestors {
		if seen[a.Name] {
			return newParseError(ErrValidation, path+".ancestors", "ancestors list contains duplicate %q", a.Name)
		}
		seen[a.Name] = true
	}
	for i, e := range d.Epochs {
		if err := validateEpoch(e, fmt.Sprintf("%s.epochs[%d]", path, i)); err != nil {
			return err
		}
	}
	return nil
}

// validateEpoch implements the size_function invariant of spec §4.4.4 and
// §9's open question: "constant" requires start_size==end_size, and only
// constant/exponential/linear are permitted.
func validateEpoch(e *Epoch, path string) error {
	switch e.SizeFunction {
	case "constant":
		if *e.StartSize != *e.EndSize {
			return newParseError(ErrValidation, path+".size_function",
				"size_function is constant but start_size (%v) != end_size (%v)", *e.StartSize, *e.EndSize)
		}
	case "exponential", "linear":
		// no further constraint
	default:
		return newParseError(ErrValidation, path+".size_function", "unknown size_function %q", e.SizeFunction)
	}
	if e.SelfingRate+e.CloningRate > 1+epsilon {
		return newParseError(ErrValidation, path, "selfing_rate + cloning_rate must not exceed 1")
	}
	return nil
}

// validatePulse implements invariants 11 and 12, with the direction-
// dependent half-open endpoint rule of spec §4.5: a source's existence
// interval is (start,end] (pulse may coincide with the source's end_time
// but not its start_time); a dest's existence interval is [start,end)
// (pulse may coincide with the dest's start_time but not its end_time).
func validatePulse(p *Pulse, path string) error {
	seen := make(map[string]bool, len(p.Sources))
	for _, s := range p.Sources {
		if s.Name == p.Dest.Name {
			return newParseError(ErrValidation, path, "source deme %q cannot equal dest deme", s.Name)
		}
		if seen[s.Name] {
			return newParseError(ErrValidation, path+".sources", "duplicate source deme %q", s.Name)
		}
		seen[s.Name] = true
	}
	if len(p.Sources) == 0 {
		return newParseError(ErrValidation, path+".sources", "must have one or more source demes")
	}
	if len(p.Sources) != len(p.Proportions) {
		return newParseError(ErrValidation, path, "sources and proportions must have the same length")
	}

	for _, s := range p.Sources {
		if !s.TimeInterval().Contains(p.Time) {
			return newParseError(ErrValidation, path+".time", "source deme %q does not exist at time %v", s.Name, p.Time)
		}
	}

	// Dest existence interval is [dest.StartTime, dest.EndTime): the pulse
	// may land exactly on the dest's start_time, but not its end_time.
	if !(*p.Dest.StartTime >= p.Time && p.Time > p.Dest.EndTime()) {
		return newParseError(ErrValidation, path+".time", "dest deme %q does not exist at time %v", p.Dest.Name, p.Time)
	}

	if sumFloats(p.Proportions) > 1+epsilon {
		return newParseError(ErrValidation, path+".proportions", "pulse proportions into %q at time %v sum to more than 1", p.Dest.Name, p.Time)
	}
	return nil
}

// validateMigration implements invariant 8.
func validateMigration(m *Migration, path string) error {
	if !(*m.StartTime > *m.EndTime) {
		return newParseError(ErrValidation, path, "start_time must be > end_time")
	}
	if m.Source.Name == m.Dest.Name {
		return newParseError(ErrValidation, path, "cannot migrate from deme %q to itself", m.Source.Name)
	}
	iv := m.TimeInterval()
	if !iv.IsSubinterval(m.Source.TimeInterval()) || !iv.IsSubinterval(m.Dest.TimeInterval()) {
		return newParseError(ErrValidation, path, "migration time interval must be within each deme's time interval")
	}
	return nil
}

// validateMigrationNonOverlap implements invariant 9: no two migrations
// sharing (source, dest) may have overlapping time intervals.
func validateMigrationNonOverlap(g *Graph) error {
	for i := 0; i < len(g.Migrations); i++ {
		a := g.Migrations[i]
		for j := i + 1; j < len(g.Migrations); j++ {
			b := g.Migrations[j]
			if a.Source.Name == b.Source.Name && a.Dest.Name == b.Dest.Name && a.TimeInterval().Intersects(b.TimeInterval()) {
				lo := math.Min(*a.EndTime, *b.EndTime)
				hi := math.Max(*a.StartTime, *b.StartTime)
				return newParseError(ErrValidation, fmt.Sprintf("migrations[%d]", j),
					"competing migration definitions for %s->%s during time interval (%v,%v]",
					a.Source.Name, a.Dest.Name, lo, hi)
			}
		}
	}
	return nil
}

// validateIngressRateBound implements invariant 10, via the interval
// partition of spec §4.5: gather every distinct finite migration
// endpoint, sort descending, form the induced half-open intervals, and
// sum migration.Rate per destination deme over each interval.
func validateIngressRateBound(g *Graph) error {
	boundarySet := map[float64]bool{}
	for _, m := range g.Migrations {
		if !math.IsInf(*m.StartTime, 1) {
			boundarySet[*m.StartTime] = true
		}
		boundarySet[*m.EndTime] = true
	}
	endTimes := make([]float64, 0, len(boundarySet))
	for t := range boundarySet {
		endTimes = append(endTimes, t)
	}
	sort.Sort(sort.Reverse(sort.Float64Slice(endTimes)))
	if len(endTimes) == 0 {
		return nil
	}

	startTimes := make([]float64, len(endTimes))
	startTimes[0] = positiveInfinity()
	copy(startTimes[1:], endTimes[:len(endTimes)-1])

	ingress := make(map[string][]float64, len(g.demeOrder))
	for _, name := range g.demeOrder {
		ingress[name] = make([]float64, len(endTimes))
	}

	for j := range endTimes {
		current := newInterval(startTimes[j], endTimes[j])
		for _, m := range g.Migrations {
			if !current.Intersects(m.TimeInterval()) {
				continue
			}
			rate := ingress[m.Dest.Name][j] + m.Rate
			if rate > 1+epsilon {
				return newParseError(ErrValidation, fmt.Sprintf("migrations into %s", m.Dest.Name),
					"migration rates into %q sum to more than 1 during the time interval (%v,%v]",
					m.Dest.Name, startTimes[j], endTimes[j])
			}
			ingress[m.Dest.Name][j] = rate
		}
	}
	return nil
}

func sumFloats(vs []float64) float64 {
	var s float64
	for _, v := range vs {
		s += v
	}
	return s
}
