// Package demes is the reference parser for Demes, a declarative
// interchange format describing demographic histories: populations, their
// sizes through time, migrations between them, and discrete admixture
// events.
//
// Parse ingests a Human Data Model (HDM) document — a decoded nested
// mapping that omits fields derivable from context — and produces a
// Graph: a fully-qualified Machine Data Model (MDM) in which every field
// is explicit. Canonicalize converts a Graph back into the MDM mapping
// form, ready for YAML/JSON encoding by the caller.
//
//	g, err := demes.Parse(data)
//	if err != nil {
//	    var pe *demes.ParseError
//	    if errors.As(err, &pe) {
//	        log.Fatalf("%s: %s", pe.Path, pe.Msg)
//	    }
//	}
//	mdm := demes.Canonicalize(g)
//
// Parsing runs in three stages, in dependency order:
//
//   - Structural ingestion (reader.go, defaults.go, builder.go) — shape
//     and type checking with per-field defaulting, then entity
//     construction with by-name cross-reference resolution.
//   - Resolution (resolve.go) — a deterministic pass that imputes every
//     omitted value (times, sizes, proportions, migration intervals,
//     size_function) from the structural position of its entity.
//   - Validation (validate.go) — asserts every cross-entity invariant on
//     the fully-resolved graph: existence intervals, migration
//     containment and non-overlap, pulse half-open boundaries, rate
//     conservation.
//
// Parse is a pure, synchronous function: no goroutines, no shared mutable
// state, no I/O. Parsing distinct documents concurrently is safe.
//
// Out of scope: YAML/JSON decoding and JSON-Schema validation of the raw
// document (the demesyaml package and cmd/demes-lint are an optional,
// bounded collaborator that provides YAML decoding outside the core; no
// package here performs JSON-Schema validation), simulation, equivalence
// checking beyond structural equality, and format conversion.
package demes
