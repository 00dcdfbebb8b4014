// Copyright 2024 The Fuchsia Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package main

import (
	"context"
	"flag"
	"fmt"
	"path/filepath"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/google/subcommands"

	"github.com/vsrinivas/compilestats/compilecmd"
	"github.com/vsrinivas/compilestats/ninjalog"
	"github.com/vsrinivas/compilestats/osmisc"
	"github.com/vsrinivas/compilestats/streams"
)

// SlowestCommand prints the longest-running steps from the build log.
type SlowestCommand struct {
	logCommand
	n        int
	buildDir string
}

func (*SlowestCommand) Name() string { return "slowest" }

func (*SlowestCommand) Synopsis() string {
	return "prints the longest-running steps in the build log"
}

func (*SlowestCommand) Usage() string {
	return `compilestats slowest -log <path> [-n 30] [-C <builddir>]

Prints the longest-running steps, longest first. Compile steps are named by
their source file, other steps by their target.

flags:
`
}

func (c *SlowestCommand) SetFlags(f *flag.FlagSet) {
	c.logCommand.setFlags(f)
	c.logCommand.setCompilerFlag(f)
	f.IntVar(&c.n, "n", 30, "number of steps to print")
	f.StringVar(&c.buildDir, "C", "", "ninja build directory; when set, object file sizes are printed")
}

func (c *SlowestCommand) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return c.execute(ctx, c.run)
}

func (c *SlowestCommand) run(ctx context.Context) error {
	steps, err := c.readLog()
	if err != nil {
		return err
	}
	slowest := ninjalog.SlowestSteps(ninjalog.MostRecent(steps), c.n)

	w := tabwriter.NewWriter(streams.Stdout(ctx), 1, 0, 2, ' ', 0)
	if c.buildDir != "" {
		fmt.Fprintln(w, "Duration\tObject size\tName")
	} else {
		fmt.Fprintln(w, "Duration\tName")
	}
	for _, step := range slowest {
		name := step.Out
		compile, err := compilecmd.Parse(step.Command, c.compiler)
		if err != nil {
			return fmt.Errorf("%s: %v", step.Out, err)
		}
		if compile != nil {
			name = compile.SourcePath(c.buildDir)
		}
		if c.buildDir == "" {
			fmt.Fprintf(w, "%v\t%s\n", step.Duration(), name)
			continue
		}
		// The object may be gone, e.g. after a clean.
		size := "-"
		if n, err := osmisc.FileSize(filepath.Join(c.buildDir, step.Out)); err == nil {
			size = humanize.IBytes(uint64(n))
		}
		fmt.Fprintf(w, "%v\t%v\t%s\n", step.Duration(), size, name)
	}
	return w.Flush()
}
