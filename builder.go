// SPDX-License-Identifier: MIT
//
// builder.go — the graph builder (spec §4.3): constructs in-memory
// entities from pre-defaulted values and resolves Deme references by name
// immediately at add-time.
//
// Grounded on lvlath/core.Graph's add-time validation and by-name lookup
// discipline (duplicate vertex rejection, adjacency keyed by ID), adapted
// here to track declaration order explicitly (spec requires topological
// declaration order, not sorted iteration).
package demes

import "fmt"

// newGraph returns an empty Graph ready to receive demes, migrations and
// pulses via addDeme/addMigration/addPulse.
func newGraph() *Graph {
	return &Graph{
		demes:    map[string]*Deme{},
		Metadata: map[string]interface{}{},
	}
}

// addDeme creates a Deme, resolving ancestorNames against demes already
// declared in g. Returns ErrDuplicateName if name was already used, or
// ErrUnknownReference if any ancestor name has not yet been declared.
func (g *Graph) addDeme(name, description string, startTime *float64, ancestorNames []string, proportions []float64, hasProportions bool, path string) (*Deme, error) {
	if _, exists := g.demes[name]; exists {
		return nil, newParseError(ErrDuplicateName, path, "duplicate deme name %q", name)
	}

	ancestors := make([]*Deme, 0, len(ancestorNames))
	for i, aname := range ancestorNames {
		a, ok := g.demes[aname]
		if !ok {
			return nil, newParseError(ErrUnknownReference, fmt.Sprintf("%s.ancestors[%d]", path, i), "deme %q has not been declared", aname)
		}
		ancestors = append(ancestors, a)
	}

	d := &Deme{
		Name:           name,
		Description:    description,
		StartTime:      startTime,
		Ancestors:      ancestors,
		Proportions:    proportions,
		hasProportions: hasProportions,
	}
	g.demes[name] = d
	g.demeOrder = append(g.demeOrder, name)
	return d, nil
}

// addMigration implements the symmetric/asymmetric migration contract of
// spec §4.3. Exactly one of (source&dest) or (demes, len>=2) must be set.
func (g *Graph) addMigration(rate float64, startTime, endTime *float64, source, dest *string, demeNames []string, path string) ([]*Migration, error) {
	asymmetric := source != nil && dest != nil && demeNames == nil
	symmetric := demeNames != nil && source == nil && dest == nil

	if asymmetric == symmetric {
		return nil, newParseError(ErrResolution, path, "must specify either source and dest, or demes")
	}

	var out []*Migration
	if asymmetric {
		src, ok := g.demes[*source]
		if !ok {
			return nil, newParseError(ErrUnknownReference, path+".source", "deme %q has not been declared", *source)
		}
		dst, ok := g.demes[*dest]
		if !ok {
			return nil, newParseError(ErrUnknownReference, path+".dest", "deme %q has not been declared", *dest)
		}
		out = append(out, &Migration{Rate: rate, StartTime: startTime, EndTime: endTime, Source: src, Dest: dst})
	} else {
		if len(demeNames) < 2 {
			return nil, newParseError(ErrResolution, path+".demes", "must specify two or more deme names")
		}
		resolved := make([]*Deme, len(demeNames))
		for i, name := range demeNames {
			d, ok := g.demes[name]
			if !ok {
				return nil, newParseError(ErrUnknownReference, fmt.Sprintf("%s.demes[%d]", path, i), "deme %q has not been declared", name)
			}
			resolved[i] = d
		}
		for i := 0; i < len(resolved); i++ {
			for j := i + 1; j < len(resolved); j++ {
				a, b := resolved[i], resolved[j]
				out = append(out,
					&Migration{Rate: rate, StartTime: startTime, EndTime: endTime, Source: a, Dest: b},
					&Migration{Rate: rate, StartTime: startTime, EndTime: endTime, Source: b, Dest: a},
				)
			}
		}
	}

	g.Migrations = append(g.Migrations, out...)
	return out, nil
}

// addPulse creates a Pulse, resolving sourceNames and destName against
// already-declared demes.
func (g *Graph) addPulse(sourceNames []string, destName string, time float64, proportions []float64, path string) (*Pulse, error) {
	sources := make([]*Deme, 0, len(sourceNames))
	for i, name := range sourceNames {
		d, ok := g.demes[name]
		if !ok {
			return nil, newParseError(ErrUnknownReference, fmt.Sprintf("%s.sources[%d]", path, i), "deme %q has not been declared", name)
		}
		sources = append(sources, d)
	}
	dest, ok := g.demes[destName]
	if !ok {
		return nil, newParseError(ErrUnknownReference, path+".dest", "deme %q has not been declared", destName)
	}

	p := &Pulse{Sources: sources, Dest: dest, Time: time, Proportions: proportions}
	g.Pulses = append(g.Pulses, p)
	return p, nil
}
