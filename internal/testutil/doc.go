// SPDX-License-Identifier: MPL-2.0

// Package testutil provides helpers for tests that touch the real
// filesystem or process environment. Every Must* helper fails the test
// immediately on error.
//
// Environment changes (MustSetenv, MustUnsetenv, SetHomeDir) and directory
// changes (MustChdir) return a cleanup function that restores the previous
// state. They mutate process-wide state, so callers must not run in parallel.
package testutil
