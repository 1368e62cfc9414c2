// SPDX-License-Identifier: MIT
//
// defaults.go — the defaults engine (spec §4.2): merges hierarchically
// scoped default blocks into each entity's literal record before readers
// run, and type/range-checks the default blocks themselves against the
// same predicates used for the final fields.
//
// Merge rule for grouped epoch defaults: graph-level defaults.epoch is the
// base; a deme's local defaults.epoch overrides keyed entries (spec §4.2).
// Grounded on the teacher's flat functional-option overlay
// (lvlath/builder/config.go: "later options override earlier ones"),
// adapted here to a flat key-by-key map overlay since Demes defaults are
// data, not option closures.
package demes

import "fmt"

// fieldKind names the scalar/sequence shape+predicate combination a
// default value (or field) must satisfy; see predicates.go.
type fieldKind int

const (
	kindString fieldKind = iota
	kindNonEmptyString
	kindIdentifier
	kindPositiveFiniteNumber
	kindNonNegativeFiniteNumber
	kindFraction
	kindPositiveOrInfinity
	kindIdentifierList
	kindFractionList
	kindNonEmptyIdentifierList
	kindNonEmptyFractionListSummingToAtMost1
)

// demeDefaultsSchema lists the fields permitted in defaults.deme.
var demeDefaultsSchema = map[string]fieldKind{
	"description": kindString,
	"start_time":  kindPositiveOrInfinity,
	"ancestors":   kindIdentifierList,
	"proportions": kindFractionList,
}

// epochDefaultsSchema lists the fields permitted in defaults.epoch and in
// a deme's local defaults.epoch.
var epochDefaultsSchema = map[string]fieldKind{
	"end_time":      kindNonNegativeFiniteNumber,
	"start_size":    kindPositiveFiniteNumber,
	"end_size":      kindPositiveFiniteNumber,
	"selfing_rate":  kindFraction,
	"cloning_rate":  kindFraction,
	"size_function": kindString,
}

// migrationDefaultsSchema lists the fields permitted in defaults.migration.
var migrationDefaultsSchema = map[string]fieldKind{
	"rate":       kindFraction,
	"start_time": kindPositiveOrInfinity,
	"end_time":   kindNonNegativeFiniteNumber,
	"source":     kindIdentifier,
	"dest":       kindIdentifier,
	"demes":      kindIdentifierList,
}

// pulseDefaultsSchema lists the fields permitted in defaults.pulse.
var pulseDefaultsSchema = map[string]fieldKind{
	"sources":     kindNonEmptyIdentifierList,
	"dest":        kindIdentifier,
	"time":        kindPositiveFiniteNumber,
	"proportions": kindNonEmptyFractionListSummingToAtMost1,
}

// insertDefaults merges every key of defaults into data that data does not
// already define, leaving any key data already has untouched.
func insertDefaults(data, defaults map[string]interface{}) {
	for k, v := range defaults {
		if _, exists := data[k]; !exists {
			data[k] = v
		}
	}
}

// mergeEpochDefaults applies the two-level merge rule: base (graph-level)
// entries are overridden key-by-key by local (per-deme) entries.
func mergeEpochDefaults(base, local map[string]interface{}) map[string]interface{} {
	merged := make(map[string]interface{}, len(base)+len(local))
	for k, v := range base {
		merged[k] = v
	}
	for k, v := range local {
		merged[k] = v
	}
	return merged
}

// checkDefaults rejects any key in defaults not present in schema, and
// type/range-checks every permitted value.
func checkDefaults(defaults map[string]interface{}, schema map[string]fieldKind, path string) error {
	for key, value := range defaults {
		kind, ok := schema[key]
		if !ok {
			return newParseError(ErrExtraField, path, "%q is not a permitted default field", key)
		}
		if err := validateFieldKind(key, value, kind, path); err != nil {
			return err
		}
	}
	return nil
}

// validateFieldKind type/range-checks a single raw value against kind,
// using the same predicates as the value readers (predicates.go).
func validateFieldKind(key string, value interface{}, kind fieldKind, path string) error {
	fp := key
	if path != "" {
		fp = path + "." + key
	}
	switch kind {
	case kindString:
		if _, ok := value.(string); !ok {
			return newParseError(ErrTypeMismatch, fp, "expected string, got %T", value)
		}
	case kindNonEmptyString:
		s, ok := value.(string)
		if !ok {
			return newParseError(ErrTypeMismatch, fp, "expected string, got %T", value)
		}
		if !isNonEmptyString(s) {
			return newParseError(ErrPredicateViolation, fp, "value must be non-empty")
		}
	case kindIdentifier:
		s, ok := value.(string)
		if !ok {
			return newParseError(ErrTypeMismatch, fp, "expected string, got %T", value)
		}
		if !isIdentifier(s) {
			return newParseError(ErrPredicateViolation, fp, "value %q is not an identifier", s)
		}
	case kindPositiveFiniteNumber:
		n, ok := toFloat64(value)
		if !ok {
			return newParseError(ErrTypeMismatch, fp, "expected number, got %T", value)
		}
		if !isPositiveFinite(n) {
			return newParseError(ErrPredicateViolation, fp, "value %v is not positive and finite", n)
		}
	case kindNonNegativeFiniteNumber:
		n, ok := toFloat64(value)
		if !ok {
			return newParseError(ErrTypeMismatch, fp, "expected number, got %T", value)
		}
		if !isNonNegativeFinite(n) {
			return newParseError(ErrPredicateViolation, fp, "value %v is not non-negative and finite", n)
		}
	case kindFraction:
		n, ok := toFloat64(value)
		if !ok {
			return newParseError(ErrTypeMismatch, fp, "expected number, got %T", value)
		}
		if !isFraction(n) {
			return newParseError(ErrPredicateViolation, fp, "value %v is not in [0,1]", n)
		}
	case kindPositiveOrInfinity:
		if s, ok := value.(string); ok {
			if s != jsonInfinity {
				return newParseError(ErrTypeMismatch, fp, "string value must be %q, got %q", jsonInfinity, s)
			}
			break
		}
		n, ok := toFloat64(value)
		if !ok {
			return newParseError(ErrTypeMismatch, fp, "expected number or %q, got %T", jsonInfinity, value)
		}
		if !isPositiveOrInfinite(n) {
			return newParseError(ErrPredicateViolation, fp, "value %v is not positive", n)
		}
	case kindIdentifierList, kindNonEmptyIdentifierList:
		list, ok := value.([]interface{})
		if !ok {
			return newParseError(ErrTypeMismatch, fp, "expected list, got %T", value)
		}
		strs := make([]string, 0, len(list))
		for i, item := range list {
			s, ok := item.(string)
			if !ok {
				return newParseError(ErrTypeMismatch, fmt.Sprintf("%s[%d]", fp, i), "expected string, got %T", item)
			}
			strs = append(strs, s)
		}
		if kind == kindIdentifierList && !isIdentifierList(strs) {
			return newParseError(ErrPredicateViolation, fp, "value is not a list of identifiers")
		}
		if kind == kindNonEmptyIdentifierList && !isNonEmptyIdentifierList(strs) {
			return newParseError(ErrPredicateViolation, fp, "value is not a non-empty list of identifiers")
		}
	case kindFractionList, kindNonEmptyFractionListSummingToAtMost1:
		list, ok := value.([]interface{})
		if !ok {
			return newParseError(ErrTypeMismatch, fp, "expected list, got %T", value)
		}
		nums := make([]float64, 0, len(list))
		for i, item := range list {
			n, ok := toFloat64(item)
			if !ok {
				return newParseError(ErrTypeMismatch, fmt.Sprintf("%s[%d]", fp, i), "expected number, got %T", item)
			}
			nums = append(nums, n)
		}
		if kind == kindFractionList && !isFractionList(nums) {
			return newParseError(ErrPredicateViolation, fp, "value is not a list of fractions")
		}
		if kind == kindNonEmptyFractionListSummingToAtMost1 && !isNonEmptyFractionListSummingToAtMost1(nums) {
			return newParseError(ErrPredicateViolation, fp, "value is not a non-empty fraction list summing to <= 1")
		}
	}
	return nil
}
