// Copyright 2024 The Fuchsia Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// compilestats reports per-file compile costs from a ninja build log.
package main

import (
	"context"
	"flag"
	"os"
	"syscall"

	"github.com/google/subcommands"

	"github.com/vsrinivas/compilestats/color"
	"github.com/vsrinivas/compilestats/command"
	"github.com/vsrinivas/compilestats/logger"
)

var (
	colors = color.ColorAuto
	level  = logger.InfoLevel
)

func init() {
	flag.Var(&colors, "color", "use color in output, can be never, auto, always")
	flag.Var(&level, "level", "output verbosity, can be fatal, error, warning, info, debug or trace")
}

func main() {
	subcommands.Register(subcommands.HelpCommand(), "")
	subcommands.Register(subcommands.CommandsCommand(), "")
	subcommands.Register(subcommands.FlagsCommand(), "")
	subcommands.Register(&ReportCommand{}, "")
	subcommands.Register(&SlowestCommand{}, "")
	subcommands.Register(&SummaryCommand{}, "")
	subcommands.Register(&TraceCommand{}, "")

	flag.Parse()

	// Reports own stdout, so both log streams go to stderr.
	l := logger.NewLogger(level, color.NewColor(colors), os.Stderr, os.Stderr, "")
	l.SetFlags(0)
	ctx := logger.WithLogger(context.Background(), l)
	ctx = command.CancelOnSignals(ctx, syscall.SIGTERM, syscall.SIGINT)
	os.Exit(int(subcommands.Execute(ctx)))
}
