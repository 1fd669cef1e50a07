// SPDX-License-Identifier: MPL-2.0

// Package bundle assembles Lua sources into a single self-contained script.
//
// Two strategies are provided and a bundle uses exactly one:
//
//   - Eager (EmitEager): every package body is evaluated once, in order,
//     when the bundle is loaded, and its result is stored under both the
//     file stem and the file name.
//   - Lazy (EmitLazy): every module body is stored unevaluated and runs the
//     first time something requires it; the result is memoized so the body
//     runs at most once.
//
// Each strategy starts the output with a runtime shim that declares its
// module tables as locals of the bundle chunk and shadows require with a
// function that consults those tables before the host's original require.
// A fresh set of tables is created every time the bundle is loaded.
//
// Lazy bundles can be fed back in as a main script: a main that already
// starts with LazyShim has it stripped, so the shim is never installed twice.
package bundle
