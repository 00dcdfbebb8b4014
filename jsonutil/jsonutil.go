// Copyright 2024 The Fuchsia Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package jsonutil reads and writes JSON files, with transparent gzip
// compression for paths ending in ".gz".
package jsonutil

import (
	"encoding/json"
	"fmt"

	"github.com/vsrinivas/compilestats/readerwriters"
)

// ReadFromFile reads the JSON file at the given path into the given value.
func ReadFromFile(path string, v any) error {
	f, err := readerwriters.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := json.NewDecoder(f).Decode(v); err != nil {
		return fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return nil
}

// WriteToFile writes the given value as indented JSON to the given path,
// creating parent directories as needed.
func WriteToFile(path string, v any) error {
	f, err := readerwriters.Create(path)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		f.Close()
		return fmt.Errorf("failed to encode to %s: %w", path, err)
	}
	return f.Close()
}
