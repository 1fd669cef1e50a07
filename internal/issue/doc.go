// SPDX-License-Identifier: MPL-2.0

// Package issue provides actionable errors and a catalog of Markdown help
// pages, rendered with glamour, for the failure kinds a bundling run can hit.
package issue
