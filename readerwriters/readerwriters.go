// Copyright 2024 The Fuchsia Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package readerwriters opens files for reading and writing with transparent
// gzip compression for paths ending in ".gz".
package readerwriters

import (
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"

	"github.com/vsrinivas/compilestats/osmisc"
)

func isGzip(path string) bool {
	return strings.HasSuffix(path, ".gz")
}

type gzipReader struct {
	f  *os.File
	gz *gzip.Reader
}

func (r *gzipReader) Read(p []byte) (int, error) {
	return r.gz.Read(p)
}

func (r *gzipReader) Close() error {
	if err := r.gz.Close(); err != nil {
		r.f.Close()
		return err
	}
	return r.f.Close()
}

// Open opens the named file for reading, decompressing transparently if the
// path ends in ".gz".
func Open(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	if !isGzip(path) {
		return f, nil
	}
	gz, err := gzip.NewReader(f)
	if err != nil {
		f.Close()
		return nil, err
	}
	return &gzipReader{f: f, gz: gz}, nil
}

type gzipWriter struct {
	f  *os.File
	gz *gzip.Writer
}

func (w *gzipWriter) Write(p []byte) (int, error) {
	return w.gz.Write(p)
}

// Close flushes the compressed stream before closing the underlying file.
func (w *gzipWriter) Close() error {
	if err := w.gz.Close(); err != nil {
		w.f.Close()
		return err
	}
	return w.f.Close()
}

// Create creates or truncates the named file for writing, creating parent
// directories as needed. Data written to a path ending in ".gz" is
// compressed transparently.
func Create(path string) (io.WriteCloser, error) {
	f, err := osmisc.CreateFile(path)
	if err != nil {
		return nil, err
	}
	if !isGzip(path) {
		return f, nil
	}
	return &gzipWriter{f: f, gz: gzip.NewWriter(f)}, nil
}
