// Copyright 2024 The Fuchsia Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package readerwriters

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/gzip"
)

func TestRoundTrip(t *testing.T) {
	testCases := []struct {
		name     string
		filename string
	}{
		{name: "plain file", filename: "steps.log"},
		{name: "gzip file", filename: "steps.log.gz"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), tc.filename)
			content := []byte("0 100 0 foo.o touch foo.o\n")

			w, err := Create(path)
			if err != nil {
				t.Fatalf("Create(%q) failed: %v", path, err)
			}
			if _, err := w.Write(content); err != nil {
				t.Fatal(err)
			}
			if err := w.Close(); err != nil {
				t.Fatal(err)
			}

			r, err := Open(path)
			if err != nil {
				t.Fatalf("Open(%q) failed: %v", path, err)
			}
			got, err := io.ReadAll(r)
			if err != nil {
				t.Fatal(err)
			}
			if err := r.Close(); err != nil {
				t.Fatal(err)
			}
			if !bytes.Equal(got, content) {
				t.Errorf("read back %q, want %q", got, content)
			}
		})
	}
}

func TestCreateCompresses(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.json.gz")
	w, err := Create(path)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := w.Write([]byte(`{"name":"a.cc"}`)); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	// The on-disk bytes must be a valid gzip stream, not the raw payload.
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if _, err := gzip.NewReader(f); err != nil {
		t.Errorf("output is not valid gzip: %v", err)
	}
}

func TestCreateMakesParentDirs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reports", "2024", "report.csv")
	w, err := Create(path)
	if err != nil {
		t.Fatalf("Create(%q) failed: %v", path, err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("created file missing: %v", err)
	}
}

func TestOpenMissingFile(t *testing.T) {
	if _, err := Open(filepath.Join(t.TempDir(), "missing.log")); err == nil {
		t.Errorf("Open() on a missing file should fail")
	}
}
