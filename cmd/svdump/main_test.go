// Copyright 2023 Sneller, Inc.
//
//  Licensed under the Apache License, Version 2.0 (the "License");
//  you may not use this file except in compliance with the License.
//  You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
//  Unless required by applicable law or agreed to in writing, software
//  distributed under the License is distributed on an "AS IS" BASIS,
//  WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
//  See the License for the specific language governing permissions and
//  limitations under the License.

package main

import (
	"bytes"
	"errors"
	"io"
	"log"
	"os"
	"path/filepath"
	"runtime/debug"
	"strings"
	"testing"
)

func testLogger(t *testing.T) *log.Logger {
	return log.New(io.Discard, t.Name(), log.LstdFlags)
}

func TestDefaultScenario(t *testing.T) {
	o, err := parseFlags([]string{"-color", "never"})
	if err != nil {
		t.Fatal(err)
	}
	var out bytes.Buffer
	if err := run(o, &out, testLogger(t)); err != nil {
		t.Fatal(err)
	}
	want := "vec = size = 3 {\n  [0] = 10\n  [1] = 20\n  [2] = 30\n}\n"
	if out.String() != want {
		t.Fatalf("got %q, want %q", out.String(), want)
	}
}

const testScenario = `
vectors:
  - name: small
    inline: 2
    values: [1, 2, 3]
  - inline: 8
    values: []
matrices:
  - name: m
    rows: 2
    cols: 2
    values: [1, 2, 3, 4]
`

func TestScenarioFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "s.yaml")
	if err := os.WriteFile(path, []byte(testScenario), 0644); err != nil {
		t.Fatal(err)
	}
	o, err := parseFlags([]string{"-s", path, "-color", "never"})
	if err != nil {
		t.Fatal(err)
	}
	var out bytes.Buffer
	if err := run(o, &out, testLogger(t)); err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{
		"small = size = 3 {\n  [0] = 1\n",
		"vec1 = size = 0 {}\n",
		"m = size = 4 {\n  [0,0] = 1\n  [1,0] = 2\n  [0,1] = 3\n  [1,1] = 4\n}\n",
	} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("output missing %q:\n%s", want, out.String())
		}
	}
}

func TestScenarioErrors(t *testing.T) {
	testcases := []struct {
		name, yaml string
	}{
		{"empty", "vectors: []\n"},
		{"inline", "vectors: [{inline: 3, values: [1]}]\n"},
		{"shape", "matrices: [{rows: 2, cols: 2, values: [1]}]\n"},
		{"overflow", "matrices: [{rows: 4294967296, cols: 4294967296, values: []}]\n"},
		{"unknown field", "vectors: [{inline: 4, bogus: 1}]\n"},
	}
	for i := range testcases {
		tc := &testcases[i]
		t.Run(tc.name, func(t *testing.T) {
			s, err := parseScenario([]byte(tc.yaml))
			if err == nil {
				_, err = s.build()
			}
			if err == nil {
				t.Fatal("expected an error")
			}
		})
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	dir := t.TempDir()
	snap := filepath.Join(dir, "vec.snap")
	o, err := parseFlags([]string{"-o", snap, "-c", "s2"})
	if err != nil {
		t.Fatal(err)
	}
	if err := run(o, io.Discard, testLogger(t)); err != nil {
		t.Fatal(err)
	}
	o, err = parseFlags([]string{"-r", snap, "-color", "never"})
	if err != nil {
		t.Fatal(err)
	}
	var out bytes.Buffer
	if err := run(o, &out, testLogger(t)); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "storage inline") {
		t.Errorf("missing storage line:\n%s", out.String())
	}
	if !strings.HasSuffix(out.String(), "vec = size = 3 {\n  [0] = 10\n  [1] = 20\n  [2] = 30\n}\n") {
		t.Errorf("unexpected output:\n%s", out.String())
	}
}

func TestRefuseTerminal(t *testing.T) {
	o, err := parseFlags([]string{"-o", "-"})
	if err != nil {
		t.Fatal(err)
	}
	o.tty = true
	if err := run(o, io.Discard, testLogger(t)); !errors.Is(err, errTerminal) {
		t.Fatalf("expected errTerminal, got %v", err)
	}
	o.tty = false
	var out bytes.Buffer
	if err := run(o, &out, testLogger(t)); err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(out.Bytes(), []byte("SVSNAP")) {
		t.Fatalf("stdout is not a snapshot: %q", out.Bytes())
	}
}

func TestBadFlags(t *testing.T) {
	if _, err := parseFlags([]string{"extra"}); err == nil {
		t.Fatal("positional argument accepted")
	}
	o, err := parseFlags([]string{"-color", "sometimes"})
	if err != nil {
		t.Fatal(err)
	}
	if err := run(o, io.Discard, testLogger(t)); err == nil {
		t.Fatal("bad -color accepted")
	}
}

func TestDescribeBuild(t *testing.T) {
	bi := &debug.BuildInfo{
		Main: debug.Module{Version: "(devel)"},
		Settings: []debug.BuildSetting{
			{Key: "vcs.revision", Value: "abc123"},
			{Key: "vcs.time", Value: "2023-01-02T03:04:05Z"},
			{Key: "vcs.modified", Value: "true"},
		},
	}
	want := "(devel), revision abc123, committed 2023-01-02T03:04:05Z, modified"
	if got := describe(bi); got != want {
		t.Fatalf("describe() = %q, want %q", got, want)
	}
	bi.Settings = nil
	if got := describe(bi); got != "(devel)" {
		t.Fatalf("describe() = %q", got)
	}
}
