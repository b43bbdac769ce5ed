// Copyright 2026 The Inferex Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"reflect"

	"gopkg.in/yaml.v3"
)

// Stdout receives command results. Tests replace it.
var Stdout io.Writer = os.Stdout

// OutputFormat is embedded in params structs of commands that print
// structured results. It binds --output/-o (table, json or yaml) and
// the --json shorthand.
//
//	type listParams struct {
//	    cli.ClientOptions
//	    cli.OutputFormat
//	}
//
//	// In Run:
//	if done, err := params.Emit(projects); done {
//	    return err
//	}
//	// ... table output ...
type OutputFormat struct {
	Format string `json:"-" flag:"output,o" desc:"output format: table, json, or yaml" default:"table"`
	JSON   bool   `json:"-" flag:"json" desc:"output as JSON (same as --output json)"`
}

// Structured reports whether a machine-readable format was requested.
func (o *OutputFormat) Structured() bool {
	return o.JSON || o.Format == "json" || o.Format == "yaml"
}

// Check rejects an unknown --output value.
func (o *OutputFormat) Check() error {
	switch o.Format {
	case "", "table", "json", "yaml":
		return nil
	}
	return Validation("unknown output format %q (expected table, json, or yaml)", o.Format)
}

// Emit writes result to [Stdout] as JSON or YAML when requested and
// reports whether it did. With the table format it returns (false, nil)
// and the caller prints its own table. Nil slices are written as empty
// lists.
func (o *OutputFormat) Emit(result any) (bool, error) {
	if err := o.Check(); err != nil {
		return true, err
	}
	switch {
	case o.JSON || o.Format == "json":
		return true, WriteJSON(Stdout, normalizeNilSlice(result))
	case o.Format == "yaml":
		return true, WriteYAML(Stdout, normalizeNilSlice(result))
	}
	return false, nil
}

// WriteJSON writes value to w as indented JSON.
func WriteJSON(w io.Writer, value any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(value)
}

// WriteYAML writes value to w as a YAML document.
func WriteYAML(w io.Writer, value any) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(value); err != nil {
		return fmt.Errorf("encoding yaml: %w", err)
	}
	return encoder.Close()
}

func normalizeNilSlice(value any) any {
	v := reflect.ValueOf(value)
	if v.Kind() == reflect.Slice && v.IsNil() {
		return reflect.MakeSlice(v.Type(), 0, 0).Interface()
	}
	return value
}
