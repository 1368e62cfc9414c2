// SPDX-License-Identifier: MIT
//
// Package demesyaml decodes and encodes the nested-mapping form the demes
// package's core operates on, using gopkg.in/yaml.v3. It is a thin
// collaborator living outside the demes core: spec.md §1 names YAML/JSON
// decoding an external concern, so this package, not demes itself, is
// where that dependency lives.
package demesyaml

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// Decode reads a single YAML document from r and returns it as a
// map[string]interface{} ready for demes.Parse. yaml.v3 decodes mapping
// nodes into map[string]interface{} (unlike yaml.v2's
// map[interface{}]interface{}), so no key-normalization pass is needed.
func Decode(r io.Reader) (map[string]interface{}, error) {
	var doc map[string]interface{}
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("demesyaml: decode: %w", err)
	}
	return doc, nil
}

// Encode writes mdm (typically the result of demes.Canonicalize) to w as
// YAML.
func Encode(w io.Writer, mdm map[string]interface{}) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(mdm); err != nil {
		return fmt.Errorf("demesyaml: encode: %w", err)
	}
	return enc.Close()
}
