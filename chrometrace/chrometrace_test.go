// Copyright 2024 The Fuchsia Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package chrometrace

import (
	"bytes"
	"encoding/json"
	"sort"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestByStart(t *testing.T) {
	traces := []Trace{
		{Name: "b", TimestampMicros: 200},
		{Name: "a", TimestampMicros: 100},
		{Name: "c", TimestampMicros: 300},
	}
	sort.Sort(ByStart(traces))
	want := []Trace{
		{Name: "a", TimestampMicros: 100},
		{Name: "b", TimestampMicros: 200},
		{Name: "c", TimestampMicros: 300},
	}
	if diff := cmp.Diff(want, traces); diff != "" {
		t.Errorf("sort.Sort(ByStart) diff (-want +got):\n%s", diff)
	}
}

func TestWrite(t *testing.T) {
	testCases := []struct {
		name   string
		traces []Trace
		want   []Trace
	}{
		{
			name:   "nil traces written as empty array",
			traces: nil,
			want:   []Trace{},
		},
		{
			name: "complete events round trip",
			traces: []Trace{
				{
					Name:            "obj/a.o",
					Category:        "clang++",
					EventType:       CompleteEvent,
					TimestampMicros: 1000,
					DurationMicros:  2000,
					ProcessID:       1,
					ThreadID:        0,
					Args:            map[string]any{"command": "clang++ -c a.cc"},
				},
			},
			want: []Trace{
				{
					Name:            "obj/a.o",
					Category:        "clang++",
					EventType:       CompleteEvent,
					TimestampMicros: 1000,
					DurationMicros:  2000,
					ProcessID:       1,
					ThreadID:        0,
					Args:            map[string]any{"command": "clang++ -c a.cc"},
				},
			},
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := Write(&buf, tc.traces); err != nil {
				t.Fatalf("Write() failed: %v", err)
			}
			got := []Trace{}
			if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
				t.Fatalf("output is not valid JSON: %v", err)
			}
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("Write() diff (-want +got):\n%s", diff)
			}
		})
	}
}
