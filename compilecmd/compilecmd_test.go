// Copyright 2024 The Fuchsia Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package compilecmd

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParse(t *testing.T) {
	testCases := []struct {
		name     string
		command  string
		compiler string
		want     *Compile
		wantErr  bool
	}{
		{
			name:     "simple compile",
			command:  "clang++ -MMD -MF obj/a.o.d -c ../../a.cc -o obj/a.o",
			compiler: "clang",
			want: &Compile{
				Args:   []string{"clang++", "-MMD", "-MF", "obj/a.o.d", "-c", "../../a.cc", "-o", "obj/a.o"},
				Source: "../../a.cc",
			},
		},
		{
			name:     "compiler referenced by path",
			command:  "../../prebuilt/third_party/clang/linux-x64/bin/clang-cl -c a.cc -o a.o",
			compiler: "clang",
			want: &Compile{
				Args:   []string{"../../prebuilt/third_party/clang/linux-x64/bin/clang-cl", "-c", "a.cc", "-o", "a.o"},
				Source: "a.cc",
			},
		},
		{
			name:     "custom compiler marker",
			command:  "gcc -c a.c -o a.o",
			compiler: "gcc",
			want: &Compile{
				Args:   []string{"gcc", "-c", "a.c", "-o", "a.o"},
				Source: "a.c",
			},
		},
		{
			name:     "marker not referenced",
			command:  "gcc -c a.c -o a.o",
			compiler: "clang",
		},
		{
			name:     "link step has no -c",
			command:  "clang++ obj/a.o obj/b.o -o bin/tool",
			compiler: "clang",
		},
		{
			name:     "directory named like the compiler is not a reference",
			command:  "python ../../clang/gen.py a.cc",
			compiler: "clang",
		},
		{
			name:     "first -c wins",
			command:  "clang++ -c a.cc -c b.cc -o obj/a.o",
			compiler: "clang",
			want: &Compile{
				Args:   []string{"clang++", "-c", "a.cc", "-c", "b.cc", "-o", "obj/a.o"},
				Source: "a.cc",
			},
		},
		{
			name:     "quoted -c inside a define is not the compile flag",
			command:  `clang++ -DMSG="say -c now" -c real.cc -o obj/real.o`,
			compiler: "clang",
			want: &Compile{
				Args:   []string{"clang++", "-DMSG=say -c now", "-c", "real.cc", "-o", "obj/real.o"},
				Source: "real.cc",
			},
		},
		{
			name:     "quoted source path with spaces",
			command:  `clang++ -c "../../my src/a.cc" -o obj/a.o`,
			compiler: "clang",
			want: &Compile{
				Args:   []string{"clang++", "-c", "../../my src/a.cc", "-o", "obj/a.o"},
				Source: "../../my src/a.cc",
			},
		},
		{
			name:     "empty command",
			command:  "",
			compiler: "clang",
		},
		{
			name:     "-c as final argument",
			command:  "clang++ ../../a.cc -c",
			compiler: "clang",
			wantErr:  true,
		},
		{
			name:     "unterminated quote",
			command:  `clang++ -c "a.cc`,
			compiler: "clang",
			wantErr:  true,
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Parse(tc.command, tc.compiler)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("Parse(%q) succeeded, expected failure", tc.command)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse(%q) failed: %v", tc.command, err)
			}
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("Parse(%q) diff (-want +got):\n%s", tc.command, diff)
			}
		})
	}
}

func TestSourcePath(t *testing.T) {
	testCases := []struct {
		name     string
		source   string
		buildDir string
		want     string
	}{
		{
			name:     "relative to build dir",
			source:   "../../src/a.cc",
			buildDir: "out/default",
			want:     "src/a.cc",
		},
		{
			name:     "plain relative",
			source:   "gen/b.cc",
			buildDir: "out/default",
			want:     "out/default/gen/b.cc",
		},
		{
			name:     "absolute stays absolute",
			source:   "/work/src/a.cc",
			buildDir: "out/default",
			want:     "/work/src/a.cc",
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			c := &Compile{Source: tc.source}
			if got := c.SourcePath(tc.buildDir); got != tc.want {
				t.Errorf("SourcePath(%q) = %q, want %q", tc.buildDir, got, tc.want)
			}
		})
	}
}

func TestPreprocessArgs(t *testing.T) {
	testCases := []struct {
		name string
		args []string
		want []string
	}{
		{
			name: "drops dep and output flags",
			args: []string{"clang", "-MMD", "-MF", "foo.d", "-c", "bar.cc", "-o", "bar.o"},
			want: []string{"clang", "-c", "bar.cc", "-E", "-o", "tmp.ii"},
		},
		{
			name: "attached spellings",
			args: []string{"clang", "-MFfoo.d", "-obar.o", "-c", "bar.cc"},
			want: []string{"clang", "-c", "bar.cc", "-E", "-o", "tmp.ii"},
		},
		{
			name: "nothing to drop",
			args: []string{"clang++", "-std=c++17", "-c", "bar.cc"},
			want: []string{"clang++", "-std=c++17", "-c", "bar.cc", "-E", "-o", "tmp.ii"},
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			c := &Compile{Args: tc.args}
			got := c.PreprocessArgs("tmp.ii")
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("PreprocessArgs() diff (-want +got):\n%s", diff)
			}
		})
	}
}
