// Copyright 2024 The Fuchsia Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package report emits per-file compile cost rows as CSV or JSON.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"sync"
)

// Row is the compile cost report for one source file.
type Row struct {
	// Name is the source file path.
	Name string `json:"name"`

	// DurationMS is the recorded compile duration in milliseconds.
	DurationMS int64 `json:"t_ms"`

	// PreprocessedBytes is the byte size of the preprocessed source.
	PreprocessedBytes int64 `json:"in_size_bytes"`

	// ObjectBytes is the byte size of the object file.
	ObjectBytes int64 `json:"out_size_bytes"`

	// Lines is the line count of the preprocessed source.
	Lines int `json:"nlines"`
}

// Header is the CSV header line, matching the Row field order.
const Header = "name,t_ms,in_size_bytes,out_size_bytes,nlines"

// Emitter writes report rows to some destination.
type Emitter interface {
	// Emit writes a single row.
	Emit(Row) error

	// Close finalizes the output. No Emit may follow Close.
	Close() error
}

// CSVEmitter writes rows as CSV lines.
//
// Values are joined with plain commas: a Name containing a comma is not
// quoted or escaped, matching the long-standing output format of this tool.
type CSVEmitter struct {
	w io.Writer
}

// NewCSVEmitter returns a CSVEmitter after writing the header line, so even
// a report with zero rows identifies its columns.
func NewCSVEmitter(w io.Writer) (*CSVEmitter, error) {
	if _, err := fmt.Fprintln(w, Header); err != nil {
		return nil, err
	}
	return &CSVEmitter{w: w}, nil
}

func (e *CSVEmitter) Emit(row Row) error {
	_, err := fmt.Fprintf(e.w, "%s,%d,%d,%d,%d\n", row.Name, row.DurationMS, row.PreprocessedBytes, row.ObjectBytes, row.Lines)
	return err
}

func (e *CSVEmitter) Close() error {
	return nil
}

// JSONEmitter buffers rows and writes them as one indented JSON array on
// Close.
type JSONEmitter struct {
	w    io.Writer
	rows []Row
}

func NewJSONEmitter(w io.Writer) *JSONEmitter {
	return &JSONEmitter{w: w}
}

func (e *JSONEmitter) Emit(row Row) error {
	e.rows = append(e.rows, row)
	return nil
}

// Close writes the accumulated rows. A report with zero rows is written as
// an empty array.
func (e *JSONEmitter) Close() error {
	rows := e.rows
	if rows == nil {
		rows = []Row{}
	}
	enc := json.NewEncoder(e.w)
	enc.SetIndent("", "  ")
	return enc.Encode(rows)
}

// Stream hands rows to an Emitter in index order no matter which order they
// arrive in, so parallel measurement keeps the output deterministic.
type Stream struct {
	mu      sync.Mutex
	emitter Emitter
	next    int
	pending map[int]*Row
}

// NewStream returns a Stream forwarding to emitter. Indexes must be put or
// skipped exactly once each, starting from 0 with no gaps.
func NewStream(emitter Emitter) *Stream {
	return &Stream{emitter: emitter, pending: make(map[int]*Row)}
}

// Put hands the stream the row for index i. The row is forwarded once every
// smaller index has been put or skipped.
func (s *Stream) Put(i int, row Row) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending[i] = &row
	return s.flushLocked()
}

// Skip records that index i produces no row.
func (s *Stream) Skip(i int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending[i] = nil
	return s.flushLocked()
}

func (s *Stream) flushLocked() error {
	for {
		row, ok := s.pending[s.next]
		if !ok {
			return nil
		}
		delete(s.pending, s.next)
		s.next++
		if row == nil {
			continue
		}
		if err := s.emitter.Emit(*row); err != nil {
			return err
		}
	}
}
