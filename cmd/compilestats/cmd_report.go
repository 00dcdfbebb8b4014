// Copyright 2024 The Fuchsia Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"sync"

	"github.com/google/subcommands"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"github.com/vsrinivas/compilestats/logger"
	"github.com/vsrinivas/compilestats/preprocess"
	"github.com/vsrinivas/compilestats/readerwriters"
	"github.com/vsrinivas/compilestats/report"
	"github.com/vsrinivas/compilestats/streams"
)

// ReportCommand measures per-file compile costs by re-running each compile
// in preprocessor-only mode.
type ReportCommand struct {
	logCommand
	buildDir  string
	jobs      int
	keepGoing bool
	format    string
	output    string
	tmpDir    string
}

func (*ReportCommand) Name() string { return "report" }

func (*ReportCommand) Synopsis() string {
	return "measures preprocessed size, line count and object size per compiled file"
}

func (*ReportCommand) Usage() string {
	return `compilestats report -log <path> -C <builddir> [flags]

Re-runs each compile command from the build log with the preprocessor only
and prints one row per compiled file: source name, compile duration in
milliseconds, preprocessed size, object size and preprocessed line count.

flags:
`
}

func (c *ReportCommand) SetFlags(f *flag.FlagSet) {
	c.logCommand.setFlags(f)
	c.logCommand.setCompilerFlag(f)
	f.StringVar(&c.buildDir, "C", "", "ninja build directory; compile commands are re-run here")
	f.IntVar(&c.jobs, "j", 1, "number of parallel preprocessor invocations")
	f.BoolVar(&c.keepGoing, "k", false, "keep going after a failed invocation; failed rows are dropped")
	f.StringVar(&c.format, "format", "csv", "output format, can be csv or json")
	f.StringVar(&c.output, "output", "", "write the report to this file instead of stdout, compressed if it ends in .gz")
	f.StringVar(&c.tmpDir, "tmpdir", "", "directory for preprocessed output files, defaults to the system temp dir")
}

func (c *ReportCommand) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.buildDir == "" {
		logger.Errorf(ctx, "-C flag is required")
		return subcommands.ExitUsageError
	}
	if c.jobs < 1 {
		logger.Errorf(ctx, "-j must be at least 1")
		return subcommands.ExitUsageError
	}
	return c.execute(ctx, c.run)
}

func (c *ReportCommand) run(ctx context.Context) error {
	steps, err := c.readLog()
	if err != nil {
		return err
	}
	compiles, err := c.compileSteps(steps)
	if err != nil {
		return err
	}
	compiles = mostRecentCompiles(compiles)

	if c.output == "" {
		return c.emit(ctx, streams.Stdout(ctx), compiles)
	}
	f, err := readerwriters.Create(c.output)
	if err != nil {
		return err
	}
	if err := c.emit(ctx, f, compiles); err != nil {
		f.Close()
		return err
	}
	// Close errors matter here: a gzip writer flushes on close.
	return f.Close()
}

func (c *ReportCommand) newEmitter(w io.Writer) (report.Emitter, error) {
	switch c.format {
	case "csv":
		return report.NewCSVEmitter(w)
	case "json":
		return report.NewJSONEmitter(w), nil
	default:
		return nil, fmt.Errorf("unknown format %q, can be csv or json", c.format)
	}
}

// emit measures every compile and writes the report to w. Rows come out in
// log order regardless of how many invocations run in parallel.
func (c *ReportCommand) emit(ctx context.Context, w io.Writer, compiles []compileStep) error {
	emitter, err := c.newEmitter(w)
	if err != nil {
		return err
	}

	measurer := preprocess.NewMeasurer(c.buildDir, c.tmpDir)
	stream := report.NewStream(emitter)

	// Errors from rows dropped under -k.
	var mu sync.Mutex
	var dropped error

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(c.jobs)
	for i, cs := range compiles {
		i, cs := i, cs
		eg.Go(func() error {
			m, err := measurer.Measure(ctx, cs.step, cs.compile)
			if err != nil {
				if !c.keepGoing || ctx.Err() != nil {
					return err
				}
				logger.Warningf(ctx, "dropping %s: %v", cs.step.Out, err)
				mu.Lock()
				dropped = multierr.Append(dropped, err)
				mu.Unlock()
				return stream.Skip(i)
			}
			return stream.Put(i, report.Row{
				Name:              m.Source,
				DurationMS:        m.Duration.Milliseconds(),
				PreprocessedBytes: m.PreprocessedBytes,
				ObjectBytes:       m.ObjectBytes,
				Lines:             m.Lines,
			})
		})
	}
	if err := eg.Wait(); err != nil {
		return err
	}
	if err := emitter.Close(); err != nil {
		return err
	}
	if dropped != nil {
		return fmt.Errorf("dropped %d of %d rows: %w", len(multierr.Errors(dropped)), len(compiles), dropped)
	}
	return nil
}
