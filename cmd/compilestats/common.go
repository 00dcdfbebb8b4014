// Copyright 2024 The Fuchsia Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/google/subcommands"

	"github.com/vsrinivas/compilestats/compilecmd"
	"github.com/vsrinivas/compilestats/logger"
	"github.com/vsrinivas/compilestats/ninjalog"
	"github.com/vsrinivas/compilestats/readerwriters"
)

const defaultCompiler = "clang"

// logCommand contains the logic shared by all subcommands: the flags every
// verb takes and build log loading.
type logCommand struct {
	logPath  string
	compiler string
}

func (c *logCommand) setFlags(f *flag.FlagSet) {
	f.StringVar(&c.logPath, "log", "", "path to the ninja build log, may be gzip-compressed (.gz)")
}

// setCompilerFlag registers -compiler. Only the verbs that classify compile
// commands take it.
func (c *logCommand) setCompilerFlag(f *flag.FlagSet) {
	f.StringVar(&c.compiler, "compiler", defaultCompiler, "compiler marker used to recognize compile commands")
}

// execute validates the shared flags and then runs a function corresponding
// to a subcommand. Suitable for calling directly from the `Execute` method
// of a subcommand.
func (c *logCommand) execute(ctx context.Context, f func(context.Context) error) subcommands.ExitStatus {
	if c.logPath == "" {
		logger.Errorf(ctx, "-log flag is required")
		return subcommands.ExitUsageError
	}
	if err := f(ctx); err != nil {
		// After a signal the error is just cancellation fallout.
		if ctx.Err() == nil {
			logger.Errorf(ctx, "%v", err)
		}
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

// readLog parses the build log named by -log.
func (c *logCommand) readLog() ([]ninjalog.Step, error) {
	r, err := readerwriters.Open(c.logPath)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return ninjalog.Parse(c.logPath, r)
}

// compileStep pairs a log step with its parsed compile command line.
type compileStep struct {
	step    ninjalog.Step
	compile *compilecmd.Compile
}

// compileSteps keeps the steps whose command is a single-file compile,
// preserving log order. A command that references the compiler but cannot
// be parsed fails the whole run; the log is corrupt.
func (c *logCommand) compileSteps(steps []ninjalog.Step) ([]compileStep, error) {
	var compiles []compileStep
	for _, step := range steps {
		compile, err := compilecmd.Parse(step.Command, c.compiler)
		if err != nil {
			return nil, fmt.Errorf("%s: %v", step.Out, err)
		}
		if compile == nil {
			continue
		}
		compiles = append(compiles, compileStep{step: step, compile: compile})
	}
	return compiles, nil
}

// mostRecentCompiles drops all but the last compile record per target,
// keeping the survivors in log order.
func mostRecentCompiles(compiles []compileStep) []compileStep {
	last := make(map[string]int, len(compiles))
	for i, cs := range compiles {
		last[cs.step.Out] = i
	}
	recent := make([]compileStep, 0, len(last))
	for i, cs := range compiles {
		if last[cs.step.Out] == i {
			recent = append(recent, cs)
		}
	}
	return recent
}
