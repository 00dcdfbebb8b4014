// Copyright 2024 The Fuchsia Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package compilecmd classifies logged build commands as single-file
// compiles and rewrites them for preprocessor-only re-invocation.
package compilecmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/shlex"
)

// Compile is a tokenized single-file compile command.
type Compile struct {
	// Args is the full tokenized command line.
	Args []string

	// Source is the argument following the first "-c" flag.
	Source string
}

// Parse tokenizes command and decides whether it is a single-file compile:
// some argument's base name must begin with the compiler marker, and a "-c"
// flag must be followed by a source argument. Commands that are not compiles
// return (nil, nil). A "-c" appearing as the final token means the log is
// corrupt and is an error, as is a command that cannot be tokenized.
func Parse(command, compiler string) (*Compile, error) {
	args, err := shlex.Split(command)
	if err != nil {
		return nil, fmt.Errorf("tokenizing command: %v", err)
	}
	if !referencesCompiler(args, compiler) {
		return nil, nil
	}
	for i, arg := range args {
		if arg != "-c" {
			continue
		}
		if i == len(args)-1 {
			return nil, fmt.Errorf("-c is the final argument, no source file follows")
		}
		return &Compile{Args: args, Source: args[i+1]}, nil
	}
	return nil, nil
}

func referencesCompiler(args []string, compiler string) bool {
	for _, arg := range args {
		if strings.HasPrefix(filepath.Base(arg), compiler) {
			return true
		}
	}
	return false
}

// SourcePath resolves the compile's source file against the build directory.
// An absolute source path is returned as is, cleaned.
func (c *Compile) SourcePath(buildDir string) string {
	if filepath.IsAbs(c.Source) {
		return filepath.Clean(c.Source)
	}
	return filepath.Join(buildDir, c.Source)
}

// PreprocessArgs derives the argv that re-runs the compile in
// preprocessor-only mode with expanded output written to output. Dependency
// file generation and the object output flag are dropped; both their
// separated and attached spellings are recognized.
func (c *Compile) PreprocessArgs(output string) []string {
	args := make([]string, 0, len(c.Args)+3)
	skipNext := false
	for _, arg := range c.Args {
		if skipNext {
			skipNext = false
			continue
		}
		switch {
		case arg == "-MMD":
		case arg == "-MF" || arg == "-o":
			skipNext = true
		case strings.HasPrefix(arg, "-MF") && len(arg) > len("-MF"):
		case strings.HasPrefix(arg, "-o") && len(arg) > len("-o"):
		default:
			args = append(args, arg)
		}
	}
	return append(args, "-E", "-o", output)
}
