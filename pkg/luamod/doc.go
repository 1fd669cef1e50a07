// SPDX-License-Identifier: MPL-2.0

// Package luamod models Lua module identifiers and the two lookups the
// bundler performs on them: discovering which identifiers a script
// requires, and resolving an identifier to a source file under a root.
//
// Discovery is a narrow lexical scan, not a parser. Only the exact form
// require("name") is recognized; single-quoted strings, the
// require "name" call shorthand, long-bracket strings, concatenation and
// variables are never matched. Missing a dynamic require is preferred over
// matching text inside comments or strings by accident.
package luamod
