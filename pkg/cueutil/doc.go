// SPDX-License-Identifier: MPL-2.0

// Package cueutil provides shared CUE parsing utilities.
//
// Both the configuration file and the definitions files read by
// `modcurator priority eval` go through the same flow:
//
//  1. Compile the embedded schema
//  2. Compile user data and unify with the schema's root definition
//  3. Validate and decode to a Go value
//
// # Usage
//
//	//go:embed definitions_schema.cue
//	var schemaBytes []byte
//
//	result, err := cueutil.ParseFile[DefinitionsFile](schemaBytes, path, "#Definitions")
//	if err != nil {
//	    return nil, err // Error includes the CUE path for debugging
//	}
//	return result.Value, nil
package cueutil
