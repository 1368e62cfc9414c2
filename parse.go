// SPDX-License-Identifier: MIT
//
// parse.go — Parse: the single public entry point of the core pipeline.
// Structural ingestion (readers + defaults) -> graph construction ->
// resolution -> validation, in the deterministic traversal order spec §7
// requires: top-level -> defaults -> demes (declaration order) ->
// migrations (declaration order) -> pulses (declaration order) ->
// cross-entity validation.
//
// Parse deletes keys from data as it reads them (mirroring the Python
// reference's copy.deepcopy + pop idiom, minus the defensive copy —
// callers who need the input preserved should pass a copy of their own).
package demes

import "fmt"

// Parse ingests a decoded HDM mapping and returns the fully-qualified
// Graph (MDM), or the first structural, resolution, or validation error
// encountered. data is mutated: every recognized key is removed as it is
// read, so a non-empty leftover at any scope is reported as ErrExtraField.
func Parse(data map[string]interface{}) (*Graph, error) {
	root := newFieldReader(data, "")

	// --- defaults scope ---------------------------------------------
	defaultsObj, err := root.popObject("defaults")
	if err != nil {
		return nil, err
	}
	defaultsReader := newFieldReader(defaultsObj, "defaults")

	demeDefaults, err := defaultsReader.popObject("deme")
	if err != nil {
		return nil, err
	}
	migrationDefaults, err := defaultsReader.popObject("migration")
	if err != nil {
		return nil, err
	}
	pulseDefaults, err := defaultsReader.popObject("pulse")
	if err != nil {
		return nil, err
	}
	globalEpochDefaults, err := defaultsReader.popObject("epoch")
	if err != nil {
		return nil, err
	}
	if err := defaultsReader.extra(); err != nil {
		return nil, err
	}

	// --- top-level fields ---------------------------------------------
	g := newGraph()

	g.Description, err = root.popString("description", "", nil, "")
	if err != nil {
		return nil, err
	}
	g.TimeUnits, err = root.popStringRequired("time_units", nil, "")
	if err != nil {
		return nil, err
	}
	doi, _, err := root.popStringList("doi", isNonEmptyStringList, "a list of non-empty strings")
	if err != nil {
		return nil, err
	}
	g.DOI = doi
	g.GenerationTime, err = root.popNumberOptional("generation_time", isPositiveFinite, "positive and finite")
	if err != nil {
		return nil, err
	}
	g.Metadata, err = root.popObject("metadata")
	if err != nil {
		return nil, err
	}

	if err := checkDefaults(demeDefaults, demeDefaultsSchema, "defaults.deme"); err != nil {
		return nil, err
	}
	if err := checkDefaults(globalEpochDefaults, epochDefaultsSchema, "defaults.epoch"); err != nil {
		return nil, err
	}

	// --- demes (declaration order) ------------------------------------
	demesRaw, err := root.popRawList("demes", true)
	if err != nil {
		return nil, err
	}
	for i, item := range demesRaw {
		path := fmt.Sprintf("demes[%d]", i)
		demeMap, ok := item.(map[string]interface{})
		if !ok {
			return nil, newParseError(ErrTypeMismatch, path, "expected mapping, got %T", item)
		}
		insertDefaults(demeMap, demeDefaults)
		dr := newFieldReader(demeMap, path)

		name, err := dr.popStringRequired("name", isIdentifier, "an identifier")
		if err != nil {
			return nil, err
		}
		path = fmt.Sprintf("demes[%s]", name)
		dr.path = path

		description, err := dr.popString("description", "", nil, "")
		if err != nil {
			return nil, err
		}
		startTime, err := dr.popNumberOrInfinityOptional("start_time", isPositiveOrInfinite, "positive or \"Infinity\"")
		if err != nil {
			return nil, err
		}
		ancestors, _, err := dr.popStringList("ancestors", isIdentifierList, "a list of identifiers")
		if err != nil {
			return nil, err
		}
		proportions, hasProportions, err := dr.popNumberList("proportions", isFractionList, "a list of fractions")
		if err != nil {
			return nil, err
		}

		localDefaultsObj, err := dr.popObject("defaults")
		if err != nil {
			return nil, err
		}
		localDefaultsReader := newFieldReader(localDefaultsObj, path+".defaults")
		localEpochDefaults, err := localDefaultsReader.popObject("epoch")
		if err != nil {
			return nil, err
		}
		if err := localDefaultsReader.extra(); err != nil {
			return nil, err
		}
		if err := checkDefaults(localEpochDefaults, epochDefaultsSchema, path+".defaults.epoch"); err != nil {
			return nil, err
		}
		epochDefaults := mergeEpochDefaults(globalEpochDefaults, localEpochDefaults)

		deme, err := g.addDeme(name, description, startTime, ancestors, proportions, hasProportions, path)
		if err != nil {
			return nil, err
		}

		epochsRaw, err := dr.popRawList("epochs", false)
		if err != nil {
			return nil, err
		}
		if epochsRaw == nil {
			epochsRaw = []interface{}{map[string]interface{}{}}
		}
		for ei, eitem := range epochsRaw {
			epath := fmt.Sprintf("%s.epochs[%d]", path, ei)
			epochMap, ok := eitem.(map[string]interface{})
			if !ok {
				return nil, newParseError(ErrTypeMismatch, epath, "expected mapping, got %T", eitem)
			}
			insertDefaults(epochMap, epochDefaults)
			er := newFieldReader(epochMap, epath)

			endTime, err := er.popNumberOptional("end_time", isNonNegativeFinite, "non-negative and finite")
			if err != nil {
				return nil, err
			}
			startSize, err := er.popNumberOptional("start_size", isPositiveFinite, "positive and finite")
			if err != nil {
				return nil, err
			}
			endSize, err := er.popNumberOptional("end_size", isPositiveFinite, "positive and finite")
			if err != nil {
				return nil, err
			}
			selfingRate, err := er.popNumberDefault("selfing_rate", 0, isFraction, "a fraction")
			if err != nil {
				return nil, err
			}
			cloningRate, err := er.popNumberDefault("cloning_rate", 0, isFraction, "a fraction")
			if err != nil {
				return nil, err
			}
			sizeFunction, err := er.popString("size_function", "", nil, "")
			if err != nil {
				return nil, err
			}
			if err := er.extra(); err != nil {
				return nil, err
			}

			deme.Epochs = append(deme.Epochs, &Epoch{
				EndTime:      endTime,
				StartSize:    startSize,
				EndSize:      endSize,
				SizeFunction: sizeFunction,
				SelfingRate:  selfingRate,
				CloningRate:  cloningRate,
			})
		}
		if err := dr.extra(); err != nil {
			return nil, err
		}
		if len(deme.Epochs) == 0 {
			return nil, newParseError(ErrResolution, path, "no epochs for deme %q", name)
		}
	}

	if len(g.demeOrder) == 0 {
		return nil, newParseError(ErrValidation, "demes", "the graph must have one or more demes")
	}

	// --- migrations (declaration order) --------------------------------
	if err := checkDefaults(migrationDefaults, migrationDefaultsSchema, "defaults.migration"); err != nil {
		return nil, err
	}
	migrationsRaw, err := root.popRawList("migrations", false)
	if err != nil {
		return nil, err
	}
	for i, item := range migrationsRaw {
		path := fmt.Sprintf("migrations[%d]", i)
		migMap, ok := item.(map[string]interface{})
		if !ok {
			return nil, newParseError(ErrTypeMismatch, path, "expected mapping, got %T", item)
		}
		insertDefaults(migMap, migrationDefaults)
		mr := newFieldReader(migMap, path)

		rate, err := mr.popNumberRequired("rate", isFraction, "a fraction")
		if err != nil {
			return nil, err
		}
		startTime, err := mr.popNumberOrInfinityOptional("start_time", isPositiveOrInfinite, "positive or \"Infinity\"")
		if err != nil {
			return nil, err
		}
		endTime, err := mr.popNumberOptional("end_time", isNonNegativeFinite, "non-negative and finite")
		if err != nil {
			return nil, err
		}
		source, err := mr.popStringOptional("source", isIdentifier, "an identifier")
		if err != nil {
			return nil, err
		}
		dest, err := mr.popStringOptional("dest", isIdentifier, "an identifier")
		if err != nil {
			return nil, err
		}
		demeNames, hasDemeNames, err := mr.popStringList("demes", isIdentifierList, "a list of identifiers")
		if err != nil {
			return nil, err
		}
		if err := mr.extra(); err != nil {
			return nil, err
		}
		var demeNamesArg []string
		if hasDemeNames {
			demeNamesArg = demeNames
		}
		if _, err := g.addMigration(rate, startTime, endTime, source, dest, demeNamesArg, path); err != nil {
			return nil, err
		}
	}

	// --- pulses (declaration order) ------------------------------------
	if err := checkDefaults(pulseDefaults, pulseDefaultsSchema, "defaults.pulse"); err != nil {
		return nil, err
	}
	pulsesRaw, err := root.popRawList("pulses", false)
	if err != nil {
		return nil, err
	}
	for i, item := range pulsesRaw {
		path := fmt.Sprintf("pulses[%d]", i)
		pulseMap, ok := item.(map[string]interface{})
		if !ok {
			return nil, newParseError(ErrTypeMismatch, path, "expected mapping, got %T", item)
		}
		insertDefaults(pulseMap, pulseDefaults)
		pr := newFieldReader(pulseMap, path)

		sources, _, err := pr.popStringList("sources", isNonEmptyIdentifierList, "a non-empty list of identifiers")
		if err != nil {
			return nil, err
		}
		dest, err := pr.popStringRequired("dest", isIdentifier, "an identifier")
		if err != nil {
			return nil, err
		}
		timeVal, err := pr.popNumberRequired("time", isPositiveFinite, "positive and finite")
		if err != nil {
			return nil, err
		}
		proportions, _, err := pr.popNumberList("proportions", isNonEmptyFractionListSummingToAtMost1, "a non-empty list of fractions summing to <= 1")
		if err != nil {
			return nil, err
		}
		if err := pr.extra(); err != nil {
			return nil, err
		}

		if _, err := g.addPulse(sources, dest, timeVal, proportions, path); err != nil {
			return nil, err
		}
	}

	if err := root.extra(); err != nil {
		return nil, err
	}

	// The object model is fully populated with type/range-checked,
	// defaulted values. Resolution imputes everything omitted from
	// structural position; validation then checks cross-entity
	// invariants on the fully-resolved graph.
	if err := resolveGraph(g); err != nil {
		return nil, err
	}
	if err := validateGraph(g); err != nil {
		return nil, err
	}

	return g, nil
}
