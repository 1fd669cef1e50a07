// SPDX-License-Identifier: MPL-2.0

// Package bundler orchestrates a bundling pass: it loads the main script,
// collects dependencies, resolves and loads each one, emits the bundle and
// commits it. Diagnostics are returned to callers rather than printed so the
// CLI layer owns rendering policy.
package bundler
