// Copyright 2024 The Fuchsia Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"path/filepath"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/subcommands"
	"golang.org/x/sync/errgroup"

	"github.com/vsrinivas/compilestats/fswatch"
	"github.com/vsrinivas/compilestats/jsonutil"
	"github.com/vsrinivas/compilestats/logger"
	"github.com/vsrinivas/compilestats/ninjalog"
	"github.com/vsrinivas/compilestats/streams"
)

// SummaryCommand prints aggregate statistics over the compile steps in the
// build log.
type SummaryCommand struct {
	logCommand
	watch  bool
	output string
}

func (*SummaryCommand) Name() string { return "summary" }

func (*SummaryCommand) Synopsis() string {
	return "prints aggregate compile statistics from the build log"
}

func (*SummaryCommand) Usage() string {
	return `compilestats summary -log <path> [flags]

Prints compile step counts, wall and CPU time, the parallelism ratio and a
per-source-extension breakdown.

flags:
`
}

func (c *SummaryCommand) SetFlags(f *flag.FlagSet) {
	c.logCommand.setFlags(f)
	c.logCommand.setCompilerFlag(f)
	f.BoolVar(&c.watch, "watch", false, "stay running and re-emit the summary whenever the log changes")
	f.StringVar(&c.output, "output", "", "also write the summary as JSON to this file, compressed if it ends in .gz")
}

func (c *SummaryCommand) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return c.execute(ctx, c.run)
}

func (c *SummaryCommand) run(ctx context.Context) error {
	if !c.watch {
		return c.emit(ctx)
	}

	w, err := fswatch.NewWatcher(c.logPath)
	if err != nil {
		return err
	}
	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() error { return w.Run(ctx) })
	eg.Go(func() error {
		for {
			if err := c.emit(ctx); err != nil {
				if ctx.Err() != nil {
					return err
				}
				// Builds rewrite the log while we read it; stay alive
				// and retry on the next change.
				logger.Warningf(ctx, "%v", err)
			}
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-w.Events:
				logger.Debugf(ctx, "%s changed, recomputing", c.logPath)
				fmt.Fprintln(streams.Stdout(ctx))
			}
		}
	})
	return eg.Wait()
}

func (c *SummaryCommand) emit(ctx context.Context) error {
	steps, err := c.readLog()
	if err != nil {
		return err
	}
	compiles, err := c.compileSteps(steps)
	if err != nil {
		return err
	}
	summary := summarize(mostRecentCompiles(compiles))
	if err := printSummary(streams.Stdout(ctx), summary); err != nil {
		return err
	}
	if c.output != "" {
		return jsonutil.WriteToFile(c.output, summary)
	}
	return nil
}

// buildSummary is the aggregate view of the compile steps in a log. Field
// values are milliseconds, the granularity the log records.
type buildSummary struct {
	Steps       int               `json:"steps"`
	StartupMS   int64             `json:"startup_ms"`
	WallMS      int64             `json:"wall_ms"`
	CPUMS       int64             `json:"cpu_ms"`
	Parallelism float64           `json:"parallelism"`
	Categories  []categorySummary `json:"categories"`
}

// categorySummary aggregates the compile steps sharing one source file
// extension.
type categorySummary struct {
	Category   string `json:"category"`
	Count      int    `json:"count"`
	TotalMS    int64  `json:"total_ms"`
	MinMS      int64  `json:"min_ms"`
	MaxMS      int64  `json:"max_ms"`
	WeightedMS int64  `json:"weighted_ms"`
}

func summarize(compiles []compileStep) buildSummary {
	steps := make([]ninjalog.Step, len(compiles))
	exts := make(map[string]string, len(compiles))
	for i, cs := range compiles {
		steps[i] = cs.step
		ext := filepath.Ext(cs.compile.Source)
		if ext == "" {
			ext = "other"
		}
		exts[cs.step.Out] = ext
	}

	startup, wall, cpu := ninjalog.TotalTime(steps)
	weighted := ninjalog.WeightedTime(steps)

	s := buildSummary{
		Steps:     len(steps),
		StartupMS: startup.Milliseconds(),
		WallMS:    wall.Milliseconds(),
		CPUMS:     cpu.Milliseconds(),
	}
	if wall > 0 {
		s.Parallelism = float64(cpu) / float64(wall)
	}
	for _, st := range ninjalog.StatsByType(steps, weighted, func(s ninjalog.Step) string { return exts[s.Out] }) {
		shortest, longest := st.Times[0], st.Times[0]
		for _, t := range st.Times[1:] {
			if t < shortest {
				shortest = t
			}
			if t > longest {
				longest = t
			}
		}
		s.Categories = append(s.Categories, categorySummary{
			Category:   st.Type,
			Count:      st.Count,
			TotalMS:    st.Time.Milliseconds(),
			MinMS:      shortest.Milliseconds(),
			MaxMS:      longest.Milliseconds(),
			WeightedMS: st.Weighted.Milliseconds(),
		})
	}
	return s
}

func ms(v int64) time.Duration {
	return time.Duration(v) * time.Millisecond
}

func printSummary(w io.Writer, s buildSummary) error {
	fmt.Fprintf(w, "Compile steps: %s\n", humanize.Comma(int64(s.Steps)))
	fmt.Fprintf(w, "Startup: %v\n", ms(s.StartupMS))
	fmt.Fprintf(w, "Wall time: %v\n", ms(s.WallMS))
	fmt.Fprintf(w, "CPU time: %v\n", ms(s.CPUMS))
	fmt.Fprintf(w, "Parallelism: %.2f\n", s.Parallelism)

	tw := tabwriter.NewWriter(w, 1, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "Category\tCount\tTotal\tMin\tMax\tWeighted")
	for _, c := range s.Categories {
		fmt.Fprintf(tw, "%s\t%d\t%v\t%v\t%v\t%v\n",
			c.Category, c.Count, ms(c.TotalMS), ms(c.MinMS), ms(c.MaxMS), ms(c.WeightedMS))
	}
	return tw.Flush()
}
