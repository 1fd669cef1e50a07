// SPDX-License-Identifier: MPL-2.0

// Package textio reads Lua sources and writes bundles through an afero
// filesystem. Output is committed atomically: the text is written to a
// temporary file next to the destination and renamed over it.
package textio
