// SPDX-License-Identifier: MPL-2.0

package bundle

import (
	"fmt"
	"strings"
)

// EmitEager builds an eagerly evaluated bundle. Each package is wrapped in
// an immediately invoked function, in order, and its result is registered
// under both its stem and its file name. main is appended verbatim.
//
// With no packages the result is main unchanged.
func EmitEager(main string, pkgs []Package) string {
	if len(pkgs) == 0 {
		return main
	}

	var sb strings.Builder
	sb.WriteString(EagerShim)
	for _, p := range pkgs {
		stem := Quote(p.Stem())
		fmt.Fprintf(&sb, "____bundle__files[%s] = (function()\n%s\nend)();\n", stem, p.Source)
		fmt.Fprintf(&sb, "____bundle__files[%s] = ____bundle__files[%s];\n", Quote(p.FileName()), stem)
	}
	sb.WriteString(main)
	return sb.String()
}

// Every emitted definition ends in a semicolon so a main script starting
// with "(" is not parsed as a call on the previous line.
const (
	funcOpen  = "____bundle__funcs[%s] = function()\n"
	funcClose = "end; -- ____bundle__end\n"
)

// EmitLazy builds a lazily evaluated bundle. Each record becomes an
// unevaluated function in discovery order, followed by the main script with
// any leading LazyShim stripped.
//
// With no records the result is the bundle's main text unchanged.
func EmitLazy(b *Bundle) string {
	if b.Len() == 0 {
		return b.Main()
	}

	var sb strings.Builder
	sb.WriteString(LazyShim)
	for _, r := range b.records {
		fmt.Fprintf(&sb, funcOpen+"%s\n"+funcClose, Quote(string(r.Identifier)), r.Source)
	}
	sb.WriteString(StripShim(b.Main()))
	return sb.String()
}
