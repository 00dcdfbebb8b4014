// Copyright 2024 The Fuchsia Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package main

import (
	"context"
	"flag"

	"github.com/google/subcommands"

	"github.com/vsrinivas/compilestats/chrometrace"
	"github.com/vsrinivas/compilestats/logger"
	"github.com/vsrinivas/compilestats/ninjalog"
	"github.com/vsrinivas/compilestats/readerwriters"
)

// TraceCommand converts the build log into a trace file that
// chrome://tracing and https://ui.perfetto.dev can load.
type TraceCommand struct {
	logCommand
	traceJSON string
}

func (*TraceCommand) Name() string { return "trace" }

func (*TraceCommand) Synopsis() string {
	return "converts the build log into a chrome trace viewer file"
}

func (*TraceCommand) Usage() string {
	return `compilestats trace -log <path> [-trace-json trace.json]

Packs the logged steps into non-overlapping virtual threads and writes one
complete event per step, with the step's command attached as an argument.

flags:
`
}

func (c *TraceCommand) SetFlags(f *flag.FlagSet) {
	c.logCommand.setFlags(f)
	f.StringVar(&c.traceJSON, "trace-json", "trace.json", "output file for the trace, compressed if it ends in .gz")
}

func (c *TraceCommand) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return c.execute(ctx, c.run)
}

func (c *TraceCommand) run(ctx context.Context) error {
	steps, err := c.readLog()
	if err != nil {
		return err
	}
	flow := ninjalog.Flow(ninjalog.MostRecent(steps))
	traces := ninjalog.ToTraces(flow, 1)

	f, err := readerwriters.Create(c.traceJSON)
	if err != nil {
		return err
	}
	if err := chrometrace.Write(f, traces); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	logger.Infof(ctx, "wrote %d events to %s", len(traces), c.traceJSON)
	return nil
}
