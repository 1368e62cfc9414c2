// SPDX-License-Identifier: MIT
//
// types.go — the five core entities of a Demes graph: Graph, Deme, Epoch,
// Migration, Pulse.
//
// Entities are created once by the builder (builder.go), mutated only
// during resolution (resolve.go fills in every omitted value), then treated
// as read-only by the validator (validate.go) and canonicalizer
// (canonical.go). Cross-entity references (Deme.Ancestors, Migration.Source/
// Dest, Pulse.Sources/Dest) are *Deme pointers into Graph.demes and never
// outlive the Graph that owns them — there is no cyclic ownership, since
// ancestry is a DAG and declaration order is enforced by the builder.
package demes

// Graph is the top-level container for a fully-qualified (or in-progress)
// Demes demographic model.
type Graph struct {
	Description    string
	TimeUnits      string
	GenerationTime *float64 // nil until supplied or defaulted by validation
	DOI            []string
	Metadata       map[string]interface{}

	Migrations []*Migration
	Pulses     []*Pulse

	demes     map[string]*Deme
	demeOrder []string // declaration order, mirrors map keys
}

// Deme is a population existing over the half-open interval
// (StartTime, EndTime].
type Deme struct {
	Name        string
	Description string

	StartTime      *float64 // nil until resolved; may resolve to +Inf
	Ancestors      []*Deme  // resolved by name at add-time, in declared order
	Proportions    []float64
	hasProportions bool // distinguishes "user supplied []" from "unset"

	Epochs []*Epoch
}

// Epoch is a contiguous interval within a Deme following one size_function.
type Epoch struct {
	EndTime      *float64
	StartSize    *float64
	EndSize      *float64
	SizeFunction string // "" until resolved/supplied
	SelfingRate  float64
	CloningRate  float64
}

// Migration is a continuous-time, asymmetric flow from Source to Dest at a
// fixed per-unit Rate during (StartTime, EndTime].
type Migration struct {
	Rate      float64
	StartTime *float64
	EndTime   *float64
	Source    *Deme
	Dest      *Deme
}

// Pulse is a discrete admixture event at Time, in which Dest instantaneously
// absorbs a mixture drawn from Sources according to Proportions.
type Pulse struct {
	Sources     []*Deme
	Dest        *Deme
	Time        float64
	Proportions []float64
}

// EndTime returns the deme's end_time: the end_time of its last epoch.
// Panics if called before at least one epoch has been added — callers
// within this package only ever call it post-resolution.
func (d *Deme) EndTime() float64 {
	last := d.Epochs[len(d.Epochs)-1]
	return *last.EndTime
}

// TimeInterval returns the deme's existence interval (StartTime, EndTime].
// Requires StartTime to be resolved.
func (d *Deme) TimeInterval() Interval {
	return newInterval(*d.StartTime, d.EndTime())
}

// TimeInterval returns the migration's active interval (StartTime, EndTime].
// Requires both endpoints to be resolved.
func (m *Migration) TimeInterval() Interval {
	return newInterval(*m.StartTime, *m.EndTime)
}

// DemeNames returns deme names in declaration order.
func (g *Graph) DemeNames() []string {
	out := make([]string, len(g.demeOrder))
	copy(out, g.demeOrder)
	return out
}

// Deme looks up a deme by name. The second return value is false if no
// deme with that name has been added.
func (g *Graph) Deme(name string) (*Deme, bool) {
	d, ok := g.demes[name]
	return d, ok
}

// Demes returns every deme in declaration order.
func (g *Graph) Demes() []*Deme {
	out := make([]*Deme, 0, len(g.demeOrder))
	for _, name := range g.demeOrder {
		out = append(out, g.demes[name])
	}
	return out
}
