// Copyright 2024 The Fuchsia Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package ninjalog

import (
	"sort"

	"github.com/vsrinivas/compilestats/chrometrace"
)

func toTrace(step Step, pid, tid int) chrometrace.Trace {
	t := chrometrace.Trace{
		Name:            step.Out,
		Category:        step.Category(),
		EventType:       chrometrace.CompleteEvent,
		TimestampMicros: int(step.Start.Microseconds()),
		DurationMicros:  int(step.Duration().Microseconds()),
		ProcessID:       pid,
		ThreadID:        tid,
	}
	if step.Command != "" {
		t.Args = map[string]any{
			"command": step.Command,
		}
	}
	return t
}

// ToTraces converts Flow output into Chrome trace-viewer complete events.
// Each flow lane becomes a virtual thread; events are sorted by start time.
func ToTraces(flow [][]Step, pid int) []chrometrace.Trace {
	var traces []chrometrace.Trace
	for tid, thread := range flow {
		for _, step := range thread {
			traces = append(traces, toTrace(step, pid, tid))
		}
	}
	sort.Sort(chrometrace.ByStart(traces))
	return traces
}
