// Copyright 2024 The Fuchsia Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

var testRows = []Row{
	{Name: "src/a.cc", DurationMS: 1500, PreprocessedBytes: 654321, ObjectBytes: 4096, Lines: 21000},
	{Name: "src/b.cc", DurationMS: 80, PreprocessedBytes: 1024, ObjectBytes: 512, Lines: 40},
}

func TestCSVEmitter(t *testing.T) {
	var buf bytes.Buffer
	e, err := NewCSVEmitter(&buf)
	if err != nil {
		t.Fatal(err)
	}
	for _, row := range testRows {
		if err := e.Emit(row); err != nil {
			t.Fatal(err)
		}
	}
	if err := e.Close(); err != nil {
		t.Fatal(err)
	}

	want := strings.Join([]string{
		"name,t_ms,in_size_bytes,out_size_bytes,nlines",
		"src/a.cc,1500,654321,4096,21000",
		"src/b.cc,80,1024,512,40",
		"",
	}, "\n")
	if diff := cmp.Diff(want, buf.String()); diff != "" {
		t.Errorf("CSV output diff (-want +got):\n%s", diff)
	}
}

func TestCSVEmitterHeaderOnly(t *testing.T) {
	var buf bytes.Buffer
	e, err := NewCSVEmitter(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if err := e.Close(); err != nil {
		t.Fatal(err)
	}
	if got, want := buf.String(), Header+"\n"; got != want {
		t.Errorf("empty report = %q, want %q", got, want)
	}
}

func TestJSONEmitter(t *testing.T) {
	testCases := []struct {
		name string
		rows []Row
		want []Row
	}{
		{
			name: "rows",
			rows: testRows,
			want: testRows,
		},
		{
			name: "empty report is an empty array",
			rows: nil,
			want: []Row{},
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var buf bytes.Buffer
			e := NewJSONEmitter(&buf)
			for _, row := range tc.rows {
				if err := e.Emit(row); err != nil {
					t.Fatal(err)
				}
			}
			if err := e.Close(); err != nil {
				t.Fatal(err)
			}

			got := []Row{}
			if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
				t.Fatalf("output is not valid JSON: %v", err)
			}
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("JSON output diff (-want +got):\n%s", diff)
			}
		})
	}
}

func TestJSONFieldNames(t *testing.T) {
	var buf bytes.Buffer
	e := NewJSONEmitter(&buf)
	if err := e.Emit(testRows[0]); err != nil {
		t.Fatal(err)
	}
	if err := e.Close(); err != nil {
		t.Fatal(err)
	}
	// The JSON object keys must match the CSV header columns.
	for _, key := range strings.Split(Header, ",") {
		if !strings.Contains(buf.String(), `"`+key+`"`) {
			t.Errorf("JSON output missing key %q:\n%s", key, buf.String())
		}
	}
}

// collectEmitter records emitted rows for order assertions.
type collectEmitter struct {
	rows []Row
}

func (e *collectEmitter) Emit(row Row) error { e.rows = append(e.rows, row); return nil }
func (e *collectEmitter) Close() error       { return nil }

func TestStream(t *testing.T) {
	testCases := []struct {
		name string
		// ops is applied in order; put >= 0 puts row i, put < 0 skips -put-1.
		ops  []int
		want []string
	}{
		{
			name: "in order",
			ops:  []int{0, 1, 2},
			want: []string{"row0", "row1", "row2"},
		},
		{
			name: "reverse order",
			ops:  []int{2, 1, 0},
			want: []string{"row0", "row1", "row2"},
		},
		{
			name: "skips release later rows",
			ops:  []int{1, 2, -1},
			want: []string{"row1", "row2"},
		},
		{
			name: "interleaved",
			ops:  []int{1, 0, 3, -3, 4},
			want: []string{"row0", "row1", "row3", "row4"},
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			collect := &collectEmitter{}
			s := NewStream(collect)
			for _, op := range tc.ops {
				var err error
				if op >= 0 {
					err = s.Put(op, Row{Name: fmt.Sprintf("row%d", op)})
				} else {
					err = s.Skip(-op - 1)
				}
				if err != nil {
					t.Fatal(err)
				}
			}
			var got []string
			for _, row := range collect.rows {
				got = append(got, row.Name)
			}
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("emission order diff (-want +got):\n%s", diff)
			}
		})
	}
}
