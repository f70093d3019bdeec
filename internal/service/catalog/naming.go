// Package catalog implements catalog naming rules and column type lookups.
package catalog

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	nonIdentRun = regexp.MustCompile(`[^A-Za-z0-9_]+`)
	camelBound  = regexp.MustCompile(`([a-z0-9])([A-Z])`)
)

// SanitizeColumnName converts a column name to the catalog's allowed
// character set: accents are stripped, every run of characters outside
// [A-Za-z0-9_] becomes a single underscore, camelCase boundaries get an
// underscore, and the result is lower-cased.
//
// The rule is idempotent.
func SanitizeColumnName(name string) string {
	return sanitizeName(name)
}

// SanitizeTableName converts a table name with the same rule as columns.
func SanitizeTableName(name string) string {
	return sanitizeName(name)
}

// SanitizeColumnNames applies SanitizeColumnName to every name, preserving order.
func SanitizeColumnNames(names []string) []string {
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = SanitizeColumnName(n)
	}
	return out
}

func sanitizeName(name string) string {
	name = stripMarks(name)
	name = nonIdentRun.ReplaceAllString(name, "_")
	name = camelBound.ReplaceAllString(name, "${1}_${2}")
	return strings.ToLower(name)
}

// stripMarks decomposes name and drops nonspacing marks, so "é" becomes "e".
func stripMarks(name string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, name)
	if err != nil {
		return name
	}
	return out
}
