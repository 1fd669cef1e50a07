// SPDX-License-Identifier: MPL-2.0

package luamod

import "regexp"

// requirePattern matches require("literal") exactly: no whitespace between
// tokens, double quotes only, no escapes, no line breaks in the literal.
var requirePattern = regexp.MustCompile(`require\("([^"\r\n]+)"\)`)

// Scan returns every identifier referenced by a require("...") call in
// source, in order of first appearance, without duplicates.
func Scan(source string) []Identifier {
	matches := requirePattern.FindAllStringSubmatch(source, -1)
	found := make([]Identifier, 0, len(matches))
	for _, m := range matches {
		found = append(found, Identifier(m[1]))
	}
	return dedupe(found)
}

// Discover returns the set of module identifiers a script depends on.
//
// With autoDetect disabled the result is explicit with duplicates removed.
// With autoDetect enabled the identifiers found by Scan are appended after
// the explicit ones. Order is first-seen in both cases. The scan does not
// follow into dependency files.
func Discover(source string, explicit []Identifier, autoDetect bool) []Identifier {
	all := make([]Identifier, 0, len(explicit))
	all = append(all, explicit...)
	if autoDetect {
		all = append(all, Scan(source)...)
	}
	return dedupe(all)
}

func dedupe(ids []Identifier) []Identifier {
	seen := make(map[Identifier]struct{}, len(ids))
	out := make([]Identifier, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
