// SPDX-License-Identifier: MIT
//
// reader.go — value readers: extract typed scalars/sequences/mappings from
// a decoded input mapping, consuming keys as they are read (spec §4.1).
//
// Design contract, grounded on the teacher's validator-wrapping idiom
// (lvlath/matrix/validators.go, lvlath/builder/validators.go):
//   - Every pop* method removes its key from the source map immediately,
//     so that any key left behind after all known fields are read is
//     reported by extra() as ErrExtraField.
//   - Every method returns a *ParseError (never a bare error) so callers
//     can propagate it unchanged; see errors.go.
//   - Numeric fields accept both int and float64 input (spec §4.1: "All
//     real fields accept both integer and floating-point input").
package demes

import (
	"fmt"
	"sort"
)

// fieldReader consumes fields from a single decoded mapping, reporting
// missing/mistyped/out-of-range values against a dotted path used purely
// for diagnostics.
type fieldReader struct {
	data map[string]interface{}
	path string
}

func newFieldReader(data map[string]interface{}, path string) *fieldReader {
	return &fieldReader{data: data, path: path}
}

func (r *fieldReader) fieldPath(key string) string {
	if r.path == "" {
		return key
	}
	return r.path + "." + key
}

func (r *fieldReader) popRaw(key string) (interface{}, bool) {
	v, ok := r.data[key]
	if ok {
		delete(r.data, key)
	}
	return v, ok
}

// extra reports ErrExtraField if any keys remain unconsumed in r.data.
func (r *fieldReader) extra() error {
	if len(r.data) == 0 {
		return nil
	}
	keys := make([]string, 0, len(r.data))
	for k := range r.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return newParseError(ErrExtraField, r.path, "extra fields not permitted: %v", keys)
}

// toFloat64 converts the decoded numeric types a YAML/JSON decoder may
// produce (float64, float32, the various ints) into float64.
func toFloat64(v interface{}) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int8:
		return float64(t), true
	case int16:
		return float64(t), true
	case int32:
		return float64(t), true
	case int64:
		return float64(t), true
	case uint:
		return float64(t), true
	case uint64:
		return float64(t), true
	default:
		return 0, false
	}
}

// --- strings -----------------------------------------------------------

// popStringRequired reads a required string field, applying pred if non-nil.
func (r *fieldReader) popStringRequired(key string, pred func(string) bool, predName string) (string, error) {
	raw, ok := r.popRaw(key)
	if !ok {
		return "", newParseError(ErrMissingKey, r.fieldPath(key), "required field is missing")
	}
	s, ok := raw.(string)
	if !ok {
		return "", newParseError(ErrTypeMismatch, r.fieldPath(key), "expected string, got %T", raw)
	}
	if pred != nil && !pred(s) {
		return "", newParseError(ErrPredicateViolation, r.fieldPath(key), "value %q is not %s", s, predName)
	}
	return s, nil
}

// popString reads an optional string field, returning def if absent.
func (r *fieldReader) popString(key, def string, pred func(string) bool, predName string) (string, error) {
	raw, ok := r.popRaw(key)
	if !ok {
		return def, nil
	}
	s, ok := raw.(string)
	if !ok {
		return "", newParseError(ErrTypeMismatch, r.fieldPath(key), "expected string, got %T", raw)
	}
	if pred != nil && !pred(s) {
		return "", newParseError(ErrPredicateViolation, r.fieldPath(key), "value %q is not %s", s, predName)
	}
	return s, nil
}

// --- numbers -------------------------------------------------------------

// popNumberRequired reads a required numeric field.
func (r *fieldReader) popNumberRequired(key string, pred func(float64) bool, predName string) (float64, error) {
	raw, ok := r.popRaw(key)
	if !ok {
		return 0, newParseError(ErrMissingKey, r.fieldPath(key), "required field is missing")
	}
	v, ok := toFloat64(raw)
	if !ok {
		return 0, newParseError(ErrTypeMismatch, r.fieldPath(key), "expected number, got %T", raw)
	}
	if pred != nil && !pred(v) {
		return 0, newParseError(ErrPredicateViolation, r.fieldPath(key), "value %v is not %s", v, predName)
	}
	return v, nil
}

// popNumberDefault reads an optional numeric field, returning def if absent.
func (r *fieldReader) popNumberDefault(key string, def float64, pred func(float64) bool, predName string) (float64, error) {
	raw, ok := r.popRaw(key)
	if !ok {
		return def, nil
	}
	v, ok := toFloat64(raw)
	if !ok {
		return 0, newParseError(ErrTypeMismatch, r.fieldPath(key), "expected number, got %T", raw)
	}
	if pred != nil && !pred(v) {
		return 0, newParseError(ErrPredicateViolation, r.fieldPath(key), "value %v is not %s", v, predName)
	}
	return v, nil
}

// popNumberOptional reads an optional numeric field, returning (nil, nil)
// if absent so the caller can distinguish "unset" from any particular
// numeric value (needed throughout resolve.go).
func (r *fieldReader) popNumberOptional(key string, pred func(float64) bool, predName string) (*float64, error) {
	raw, ok := r.popRaw(key)
	if !ok {
		return nil, nil
	}
	v, ok := toFloat64(raw)
	if !ok {
		return nil, newParseError(ErrTypeMismatch, r.fieldPath(key), "expected number, got %T", raw)
	}
	if pred != nil && !pred(v) {
		return nil, newParseError(ErrPredicateViolation, r.fieldPath(key), "value %v is not %s", v, predName)
	}
	return &v, nil
}

// popNumberOrInfinityRequired reads a required field that accepts either a positive
// finite number or the literal string "Infinity" (spec §4.1). pred is
// applied to the resulting float64 (with math.Inf(1) substituted for the
// literal string) before returning.
func (r *fieldReader) popNumberOrInfinityRequired(key string, pred func(float64) bool, predName string) (float64, error) {
	raw, ok := r.popRaw(key)
	if !ok {
		return 0, newParseError(ErrMissingKey, r.fieldPath(key), "required field is missing")
	}
	return r.resolveNumberOrInfinity(key, raw, pred, predName)
}

// popNumberOrInfinityOptional is the optional counterpart, returning
// (nil, nil) if the key was absent.
func (r *fieldReader) popNumberOrInfinityOptional(key string, pred func(float64) bool, predName string) (*float64, error) {
	raw, ok := r.popRaw(key)
	if !ok {
		return nil, nil
	}
	v, err := r.resolveNumberOrInfinity(key, raw, pred, predName)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *fieldReader) resolveNumberOrInfinity(key string, raw interface{}, pred func(float64) bool, predName string) (float64, error) {
	if s, ok := raw.(string); ok {
		if s != jsonInfinity {
			return 0, newParseError(ErrTypeMismatch, r.fieldPath(key), "string value must be %q, got %q", jsonInfinity, s)
		}
		v := positiveInfinity()
		if pred != nil && !pred(v) {
			return 0, newParseError(ErrPredicateViolation, r.fieldPath(key), "value is not %s", predName)
		}
		return v, nil
	}
	v, ok := toFloat64(raw)
	if !ok {
		return 0, newParseError(ErrTypeMismatch, r.fieldPath(key), "expected number or %q, got %T", jsonInfinity, raw)
	}
	if pred != nil && !pred(v) {
		return 0, newParseError(ErrPredicateViolation, r.fieldPath(key), "value %v is not %s", v, predName)
	}
	return v, nil
}

// popStringOptional reads an optional string field, returning nil if the
// key was absent (used where presence vs. absence must be distinguished,
// e.g. Migration.source/dest in the asymmetric-vs-symmetric contract).
func (r *fieldReader) popStringOptional(key string, pred func(string) bool, predName string) (*string, error) {
	raw, ok := r.popRaw(key)
	if !ok {
		return nil, nil
	}
	s, ok := raw.(string)
	if !ok {
		return nil, newParseError(ErrTypeMismatch, r.fieldPath(key), "expected string, got %T", raw)
	}
	if pred != nil && !pred(s) {
		return nil, newParseError(ErrPredicateViolation, r.fieldPath(key), "value %q is not %s", s, predName)
	}
	return &s, nil
}

// --- lists -----------------------------------------------------------

// popRawList reads a list of arbitrary elements (used for "demes",
// "migrations", "pulses" arrays of mappings).
func (r *fieldReader) popRawList(key string, required bool) ([]interface{}, error) {
	raw, ok := r.popRaw(key)
	if !ok {
		if required {
			return nil, newParseError(ErrMissingKey, r.fieldPath(key), "required field is missing")
		}
		return nil, nil
	}
	list, ok := raw.([]interface{})
	if !ok {
		return nil, newParseError(ErrTypeMismatch, r.fieldPath(key), "expected list, got %T", raw)
	}
	return list, nil
}

// popStringList reads a list of strings, returning (nil, false, nil) if the
// key was absent so callers can tell "unset" from "explicitly empty".
func (r *fieldReader) popStringList(key string, itemPred func(string) bool, predName string) ([]string, bool, error) {
	raw, ok := r.popRaw(key)
	if !ok {
		return nil, false, nil
	}
	list, ok := raw.([]interface{})
	if !ok {
		return nil, false, newParseError(ErrTypeMismatch, r.fieldPath(key), "expected list, got %T", raw)
	}
	out := make([]string, 0, len(list))
	for i, item := range list {
		s, ok := item.(string)
		if !ok {
			return nil, false, newParseError(ErrTypeMismatch, fmt.Sprintf("%s[%d]", r.fieldPath(key), i), "expected string, got %T", item)
		}
		out = append(out, s)
	}
	if itemPred != nil && !itemPred(out) {
		return nil, false, newParseError(ErrPredicateViolation, r.fieldPath(key), "value is not %s", predName)
	}
	return out, true, nil
}

// popNumberList reads a list of numbers, returning (nil, false, nil) if
// the key was absent.
func (r *fieldReader) popNumberList(key string, itemPred func([]float64) bool, predName string) ([]float64, bool, error) {
	raw, ok := r.popRaw(key)
	if !ok {
		return nil, false, nil
	}
	list, ok := raw.([]interface{})
	if !ok {
		return nil, false, newParseError(ErrTypeMismatch, r.fieldPath(key), "expected list, got %T", raw)
	}
	out := make([]float64, 0, len(list))
	for i, item := range list {
		v, ok := toFloat64(item)
		if !ok {
			return nil, false, newParseError(ErrTypeMismatch, fmt.Sprintf("%s[%d]", r.fieldPath(key), i), "expected number, got %T", item)
		}
		out = append(out, v)
	}
	if itemPred != nil && !itemPred(out) {
		return nil, false, newParseError(ErrPredicateViolation, r.fieldPath(key), "value is not %s", predName)
	}
	return out, true, nil
}

// --- mappings -----------------------------------------------------------

// popObject reads an optional mapping field, returning an empty map if
// absent.
func (r *fieldReader) popObject(key string) (map[string]interface{}, error) {
	raw, ok := r.popRaw(key)
	if !ok {
		return map[string]interface{}{}, nil
	}
	obj, ok := raw.(map[string]interface{})
	if !ok {
		return nil, newParseError(ErrTypeMismatch, r.fieldPath(key), "expected mapping, got %T", raw)
	}
	return obj, nil
}
