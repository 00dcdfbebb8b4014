// Copyright 2024 The Fuchsia Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package preprocess re-runs compile commands in preprocessor-only mode and
// measures the expanded output, which approximates the true input size of a
// compilation much better than the source file alone.
package preprocess

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/vsrinivas/compilestats/compilecmd"
	"github.com/vsrinivas/compilestats/ninjalog"
	"github.com/vsrinivas/compilestats/osmisc"
	"github.com/vsrinivas/compilestats/subprocess"
)

var osStderr io.Writer = os.Stderr // Stubbable in tests.

// subprocessRunner is the subset of the subprocess.Runner interface used by
// this package, allowing for easier mocking in tests.
type subprocessRunner interface {
	Run(ctx context.Context, cmd []string, stdout, stderr io.Writer) error
}

// Measurement holds the compile cost measurements for one step.
type Measurement struct {
	// Source is the compiled source file, resolved against the build dir.
	Source string

	// Duration is the compile duration recorded in the log.
	Duration time.Duration

	// PreprocessedBytes is the byte size of the preprocessor output.
	PreprocessedBytes int64

	// ObjectBytes is the byte size of the step's object file.
	ObjectBytes int64

	// Lines is the line count of the preprocessor output.
	Lines int
}

// Measurer re-invokes compile steps in preprocessor-only mode.
type Measurer struct {
	runner   subprocessRunner
	buildDir string
	tmpDir   string
}

// NewMeasurer returns a Measurer that runs preprocessor commands in buildDir
// and writes their outputs to unique files under tmpDir.
func NewMeasurer(buildDir, tmpDir string) *Measurer {
	return &Measurer{
		runner:   &subprocess.Runner{Dir: buildDir},
		buildDir: buildDir,
		tmpDir:   tmpDir,
	}
}

// Measure runs the preprocessor for one compile step and measures its
// output. Each invocation writes to its own temporary file, so concurrent
// calls do not interfere. On subprocess failure the compiler's output is
// copied to stderr to keep the diagnostics visible.
func (m *Measurer) Measure(ctx context.Context, step ninjalog.Step, compile *compilecmd.Compile) (*Measurement, error) {
	tmp, err := os.CreateTemp(m.tmpDir, "*.ii")
	if err != nil {
		return nil, err
	}
	tmp.Close()
	// The preprocessor runs with the build dir as its working directory, so
	// it needs an absolute path to the output file.
	tmpPath, err := filepath.Abs(tmp.Name())
	if err != nil {
		os.Remove(tmp.Name())
		return nil, err
	}
	defer os.Remove(tmpPath)

	var output bytes.Buffer
	if err := m.runner.Run(ctx, compile.PreprocessArgs(tmpPath), &output, &output); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		osStderr.Write(output.Bytes())
		return nil, fmt.Errorf("preprocessing %s: %w", compile.Source, err)
	}

	measurement := &Measurement{
		Source:   compile.SourcePath(m.buildDir),
		Duration: step.Duration(),
	}
	if measurement.PreprocessedBytes, err = osmisc.FileSize(tmpPath); err != nil {
		return nil, err
	}
	f, err := os.Open(tmpPath)
	if err != nil {
		return nil, err
	}
	measurement.Lines, err = countLines(f)
	f.Close()
	if err != nil {
		return nil, err
	}
	if measurement.ObjectBytes, err = osmisc.FileSize(filepath.Join(m.buildDir, step.Out)); err != nil {
		return nil, fmt.Errorf("object file for %s: %w", step.Out, err)
	}
	return measurement, nil
}

// countLines counts newline-terminated lines in r. A trailing chunk with no
// final newline counts as one line. Reading is chunked so that arbitrarily
// long lines cost constant memory.
func countLines(r io.Reader) (int, error) {
	buf := make([]byte, 64*1024)
	lines := 0
	trailing := false
	for {
		n, err := r.Read(buf)
		if n > 0 {
			lines += bytes.Count(buf[:n], []byte{'\n'})
			trailing = buf[n-1] != '\n'
		}
		if err == io.EOF {
			if trailing {
				lines++
			}
			return lines, nil
		}
		if err != nil {
			return 0, err
		}
	}
}
