// Copyright 2024 The Fuchsia Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package ninjalog parses ninja build logs that record the full command of
// each build step, and computes timing statistics over the recorded steps.
//
// Each log line has five tab-separated fields:
//
//	<start ms>\t<end ms>\t<restat>\t<out>\t<command>
//
// Lines starting with "#" are comments. The command is the final field and
// may contain tabs of its own.
package ninjalog

import (
	"bufio"
	"container/heap"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Step is one step in a ninja log file.
// time is measured from ninja start time.
type Step struct {
	Start time.Duration
	End   time.Duration
	// modification time, but not convertable to absolute real time.
	// on POSIX, time_t is used, but on Windows different type is used.
	// https://github.com/ninja-build/ninja/blob/master/src/timestamp.h
	Restat int
	Out    string

	// Command is the full command line that produced Out.
	Command string
}

// Duration reports step's duration.
func (s Step) Duration() time.Duration {
	return s.End - s.Start
}

// Category returns the base name of the first token of the step's command,
// e.g. "clang++" or "touch". Steps with no command are categorized as
// "unknown".
func (s Step) Category() string {
	fields := strings.Fields(s.Command)
	if len(fields) == 0 {
		return "unknown"
	}
	return filepath.Base(fields[0])
}

// Steps is a list of Step.
// It could be used to sort by start time.
type Steps []Step

func (s Steps) Len() int      { return len(s) }
func (s Steps) Swap(i, j int) { s[i], s[j] = s[j], s[i] }
func (s Steps) Less(i, j int) bool {
	if s[i].Start != s[j].Start {
		return s[i].Start < s[j].Start
	}
	if s[i].End != s[j].End {
		return s[i].End < s[j].End
	}
	return s[i].Out < s[j].Out
}

// Scanner limits for log lines. Compile command lines routinely exceed
// bufio.Scanner's default 64KiB maximum.
const (
	initialBufSize = 256 * 1024
	maxLineSize    = 4 * 1024 * 1024
)

// Parse reads a ninja log from r. fname is used in error messages only.
// Comment lines and blank lines are skipped; any other line that does not
// parse fails the whole read.
func Parse(fname string, r io.Reader) ([]Step, error) {
	scanner := bufio.NewScanner(bufio.NewReader(r))
	scanner.Buffer(make([]byte, 0, initialBufSize), maxLineSize)
	var steps []Step
	lineno := 0
	for scanner.Scan() {
		lineno++
		line := scanner.Text()
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		step, err := lineToStep(line)
		if err != nil {
			return nil, fmt.Errorf("%s: error at %d: %v", fname, lineno, err)
		}
		steps = append(steps, step)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%s: error at %d: %v", fname, lineno, err)
	}
	return steps, nil
}

func lineToStep(line string) (Step, error) {
	var step Step

	// The command is the final field and may itself contain tabs, so only
	// the leading fields split.
	fields := strings.SplitN(line, "\t", 5)
	if len(fields) < 5 {
		return step, fmt.Errorf("few fields:%d", len(fields))
	}
	s, err := strconv.ParseUint(fields[0], 10, 0)
	if err != nil {
		return step, fmt.Errorf("bad start %s:%v", fields[0], err)
	}
	e, err := strconv.ParseUint(fields[1], 10, 0)
	if err != nil {
		return step, fmt.Errorf("bad end %s:%v", fields[1], err)
	}
	rs, err := strconv.ParseUint(fields[2], 10, 0)
	if err != nil {
		return step, fmt.Errorf("bad restat %s:%v", fields[2], err)
	}
	step.Start = time.Duration(s) * time.Millisecond
	step.End = time.Duration(e) * time.Millisecond
	step.Restat = int(rs)
	step.Out = fields[3]
	step.Command = fields[4]
	return step, nil
}

func stepToLine(s Step) string {
	return fmt.Sprintf("%d\t%d\t%d\t%s\t%s",
		s.Start.Milliseconds(),
		s.End.Milliseconds(),
		s.Restat,
		s.Out,
		s.Command)
}

// Dump writes steps to w in the tab-separated log format accepted by Parse.
func Dump(w io.Writer, steps []Step) error {
	for _, s := range steps {
		if _, err := fmt.Fprintln(w, stepToLine(s)); err != nil {
			return err
		}
	}
	return nil
}

// MostRecent returns only the last recorded step for each output target. A
// target rebuilt later in the log supersedes its earlier entries; surviving
// steps keep their log order.
func MostRecent(steps []Step) []Step {
	last := make(map[string]int)
	for i, s := range steps {
		last[s.Out] = i
	}
	var recent []Step
	for i, s := range steps {
		if last[s.Out] == i {
			recent = append(recent, s)
		}
	}
	return recent
}

// TotalTime returns startup time and end time of ninja, and accumulated time
// of all tasks.
func TotalTime(steps []Step) (startupTime, endTime, cpuTime time.Duration) {
	if len(steps) == 0 {
		return 0, 0, 0
	}
	steps = MostRecent(steps)
	startup := steps[0].Start
	var end time.Duration
	for _, s := range steps {
		if s.Start < startup {
			startup = s.Start
		}
		if s.End > end {
			end = s.End
		}
		cpuTime += s.Duration()
	}
	return startup, end, cpuTime
}

// Flow returns concurrent steps by time.
// steps in every []Step will not have time overlap.
// steps will be sorted by start time.
func Flow(steps []Step) [][]Step {
	sort.Sort(Steps(steps))
	var threads [][]Step

	for _, s := range steps {
		tid := -1
		for i, th := range threads {
			if len(th) == 0 {
				panic(fmt.Errorf("thread %d has no entry", i))
			}
			if th[len(th)-1].End <= s.Start {
				tid = i
				break
			}
		}
		if tid == -1 {
			threads = append(threads, nil)
			tid = len(threads) - 1
		}
		threads[tid] = append(threads[tid], s)
	}
	return threads
}

// action represents an event's action. "start" or "stop".
type action string

const (
	startAction action = "start"
	stopAction  action = "stop"
)

// event is an event of steps.
type event struct {
	time   time.Duration
	action action
	target string
}

// toEvent converts steps into events.
// events are sorted by its time.
func toEvent(steps []Step) []event {
	var events []event
	for _, s := range steps {
		events = append(events,
			event{
				time:   s.Start,
				action: startAction,
				target: s.Out,
			},
			event{
				time:   s.End,
				action: stopAction,
				target: s.Out,
			},
		)
	}
	sort.Slice(events, func(i, j int) bool {
		if events[i].time == events[j].time {
			// If a task starts and stops on the same time stamp
			// then the start will come first.
			return events[i].action < events[j].action
		}
		return events[i].time < events[j].time
	})
	return events
}

// WeightedTime calculates weighted time, which is elapsed time with
// each segment divided by the number of tasks that were running in parallel.
// This makes it a much better approximation of how "important" a slow step was.
// For example, a link that is entirely or mostly serialized will have a
// weighted time that is the same or similar to its elapsed time. A compile
// that runs in parallel with 999 other compiles will have a weighted time
// that is tiny.
func WeightedTime(steps []Step) map[string]time.Duration {
	if len(steps) == 0 {
		return nil
	}
	steps = MostRecent(steps)
	events := toEvent(steps)
	weightedDuration := make(map[string]time.Duration)

	// Track the tasks which are currently running.
	runningTasks := make(map[string]time.Duration)

	// Record the time we have processed up to so we know how to calculate
	// time deltas.
	lastTime := events[0].time

	// Track the accumulated weighted time so that it can efficiently be
	// added to individual tasks.
	var lastWeightedTime time.Duration

	for _, event := range events {
		numRunning := len(runningTasks)
		if numRunning > 0 {
			// Update the total weighted time up to this moment.
			lastWeightedTime += (event.time - lastTime) / time.Duration(numRunning)
		}
		switch event.action {
		case startAction:
			// Record the total weighted task time when this task starts.
			runningTasks[event.target] = lastWeightedTime
		case stopAction:
			// Record the change in the total weighted task time while this task ran.
			weightedDuration[event.target] = lastWeightedTime - runningTasks[event.target]
			delete(runningTasks, event.target)
		}
		lastTime = event.time
	}
	return weightedDuration
}

// Stat represents statistics for build step.
type Stat struct {
	Type     string
	Count    int
	Time     time.Duration
	Times    []time.Duration
	Weighted time.Duration
}

// StatsByType summarizes build step statistics with weighted and typeOf.
// Stats is sorted by Weighted, longer first.
func StatsByType(steps []Step, weighted map[string]time.Duration, typeOf func(Step) string) []Stat {
	if len(steps) == 0 {
		return nil
	}
	steps = MostRecent(steps)
	m := make(map[string]int) // type to index of stats.
	var stats []Stat
	for _, step := range steps {
		t := typeOf(step)
		if i, ok := m[t]; ok {
			stats[i].Count++
			stats[i].Time += step.Duration()
			stats[i].Times = append(stats[i].Times, step.Duration())
			stats[i].Weighted += weighted[step.Out]
			continue
		}
		stats = append(stats, Stat{
			Type:     t,
			Count:    1,
			Time:     step.Duration(),
			Times:    []time.Duration{step.Duration()},
			Weighted: weighted[step.Out],
		})
		m[t] = len(stats) - 1
	}
	sort.Slice(stats, func(i, j int) bool {
		return stats[i].Weighted > stats[j].Weighted
	})
	return stats
}

// stepMinHeap is a heap of steps with the shortest duration at the root.
type stepMinHeap []Step

func (h stepMinHeap) Len() int           { return len(h) }
func (h stepMinHeap) Less(i, j int) bool { return h[i].Duration() < h[j].Duration() }
func (h stepMinHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }

func (h *stepMinHeap) Push(x any) {
	*h = append(*h, x.(Step))
}

func (h *stepMinHeap) Pop() any {
	old := *h
	n := len(old)
	s := old[n-1]
	*h = old[:n-1]
	return s
}

// SlowestSteps returns the n longest-running steps, slowest first.
func SlowestSteps(steps []Step, n int) []Step {
	h := new(stepMinHeap)
	for _, s := range steps {
		heap.Push(h, s)
		if h.Len() > n {
			heap.Pop(h)
		}
	}
	res := make([]Step, h.Len())
	for i := h.Len() - 1; i >= 0; i-- {
		res[i] = heap.Pop(h).(Step)
	}
	return res
}
