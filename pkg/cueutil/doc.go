// SPDX-License-Identifier: MPL-2.0

// Package cueutil parses CUE documents against an embedded schema.
//
// Parsing is a 3-step flow:
//
//  1. Compile the embedded schema
//  2. Compile user data and unify it with a schema definition
//  3. Validate and decode into a Go value
//
// # Usage
//
//	//go:embed config_schema.cue
//	var configSchema string
//
//	result, err := cueutil.ParseAndDecodeString[map[string]any](
//	    configSchema,
//	    data,
//	    "#Config",
//	    cueutil.WithFilename("config.cue"),
//	)
//	if err != nil {
//	    return err // "config.cue: log.level: ..."
//	}
//
// Errors carry the file name and the field path in dotted form with
// bracketed list indices, e.g. "watch.ignore[0]".
package cueutil
