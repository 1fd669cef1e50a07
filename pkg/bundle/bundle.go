// SPDX-License-Identifier: MPL-2.0

package bundle

import (
	"github.com/BlockOG/bundle-lua/pkg/fspath"
	"github.com/BlockOG/bundle-lua/pkg/luamod"
	"github.com/BlockOG/bundle-lua/pkg/types"
)

type (
	// Record is one module's identifier and source text.
	Record struct {
		Identifier luamod.Identifier
		Source     string
	}

	// Bundle is an ordered set of module records plus the main script.
	// Identifiers are unique: adding an identifier that is already present
	// replaces its source and keeps its original position.
	Bundle struct {
		main    string
		records []Record
		index   map[luamod.Identifier]int
	}

	// Package is an explicitly listed file for eager bundling.
	Package struct {
		Path   types.FilesystemPath
		Source string
	}
)

// New creates an empty bundle around a main script.
func New(main string) *Bundle {
	return &Bundle{
		main:  main,
		index: make(map[luamod.Identifier]int),
	}
}

// Main returns the main script text as given to New.
func (b *Bundle) Main() string { return b.main }

// Add appends a record, or replaces the source of an existing one.
func (b *Bundle) Add(id luamod.Identifier, source string) {
	if i, ok := b.index[id]; ok {
		b.records[i].Source = source
		return
	}
	b.index[id] = len(b.records)
	b.records = append(b.records, Record{Identifier: id, Source: source})
}

// Len returns the number of module records.
func (b *Bundle) Len() int { return len(b.records) }

// Has reports whether the bundle holds a record for id.
func (b *Bundle) Has(id luamod.Identifier) bool {
	_, ok := b.index[id]
	return ok
}

// Identifiers returns the module identifiers in insertion order.
func (b *Bundle) Identifiers() []luamod.Identifier {
	ids := make([]luamod.Identifier, len(b.records))
	for i, r := range b.records {
		ids[i] = r.Identifier
	}
	return ids
}

// Stem returns the package's file name without its final extension.
func (p Package) Stem() string { return luamod.Stem(p.FileName()) }

// FileName returns the package's base file name.
func (p Package) FileName() string { return fspath.Base(p.Path) }
