package demes

import (
	"math"
	"unicode"
)

// Scalar predicates used by the value readers (spec §4.1). Each name
// matches the taxonomy in spec.md so error messages can report the
// predicate that failed.

func isPositiveFinite(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}

func isNonNegativeFinite(v float64) bool {
	return v >= 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}

// isPositiveOrInfinite accepts any finite positive number as well as
// positive infinity (spec §4.1: "positive-or-Infinity").
func isPositiveOrInfinite(v float64) bool {
	return v > 0
}

func isFraction(v float64) bool {
	return v >= 0 && v <= 1
}

func isNonEmptyString(s string) bool {
	return len(s) > 0
}

// isIdentifier reports whether s is a non-empty string whose first rune is
// a letter or underscore and whose remaining runes are letters, digits, or
// underscores (spec glossary: Identifier).
func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_':
		case unicode.IsLetter(r):
		case unicode.IsDigit(r) && i > 0:
		default:
			return false
		}
	}
	return true
}

func isFractionList(vs []float64) bool {
	for _, v := range vs {
		if !isFraction(v) {
			return false
		}
	}
	return true
}

func isNonEmptyFractionListSummingToAtMost1(vs []float64) bool {
	if len(vs) == 0 || !isFractionList(vs) {
		return false
	}
	sum := 0.0
	for _, v := range vs {
		sum += v
	}
	return sum <= 1+epsilon
}

func isIdentifierList(vs []string) bool {
	for _, v := range vs {
		if !isIdentifier(v) {
			return false
		}
	}
	return true
}

func isNonEmptyIdentifierList(vs []string) bool {
	return len(vs) > 0 && isIdentifierList(vs)
}

// jsonInfinity is the literal string the interchange format uses to encode
// IEEE positive infinity (spec §9: "Infinity encoding").
const jsonInfinity = "Infinity"

func isNonEmptyStringList(vs []string) bool {
	for _, v := range vs {
		if !isNonEmptyString(v) {
			return false
		}
	}
	return true
}
