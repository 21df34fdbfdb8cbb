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

package snapshot

import (
	"bytes"
	"encoding/binary"
	"errors"
	"strings"
	"testing"

	"github.com/SnellerInc/smallvec"
	"github.com/SnellerInc/smallvec/inspect"
	"github.com/SnellerInc/smallvec/matrix"

	"golang.org/x/exp/slices"
)

func TestCaptureVec(t *testing.T) {
	var v smallvec.Vec[int, [4]int]
	v.AppendSlice(10, 20, 30)
	s, err := Capture("vec", &v, inspect.Default())
	if err != nil {
		t.Fatal(err)
	}
	if s.Summary != "size = 3" || s.Storage != "inline" || s.Name != "vec" {
		t.Fatalf("bad snapshot header: %+v", s)
	}
	want := []Entry{{"[0]", "10"}, {"[1]", "20"}, {"[2]", "30"}}
	if !slices.Equal(s.Children, want) {
		t.Fatalf("children = %v, want %v", s.Children, want)
	}
	if !s.Verify() {
		t.Fatal("fresh snapshot does not verify")
	}
	if !strings.HasPrefix(s.Type, "*smallvec.Vec[") {
		t.Fatalf("Type = %q", s.Type)
	}
}

func TestCaptureUnknown(t *testing.T) {
	_, err := Capture("x", 42, inspect.Default())
	if !errors.Is(err, inspect.ErrNoProvider) {
		t.Fatalf("expected ErrNoProvider, got %v", err)
	}
}

func TestRoundTrip(t *testing.T) {
	var v smallvec.Vec[string, [2]string]
	v.AppendSlice("a", "b", "c")
	m, _ := matrix.NewDenseFrom(2, 2, []float64{1.5, 2, 3, 4})
	reg := inspect.Default()
	for _, comp := range []string{"zstd", "zstd-better", "s2"} {
		for _, val := range []any{&v, m} {
			s, err := Capture("val", val, reg)
			if err != nil {
				t.Fatal(err)
			}
			var buf bytes.Buffer
			if err := Write(&buf, s, comp); err != nil {
				t.Fatalf("%s: %s", comp, err)
			}
			got, err := Read(&buf)
			if err != nil {
				t.Fatalf("%s: %s", comp, err)
			}
			if got.ID != s.ID || got.Type != s.Type || got.Summary != s.Summary ||
				got.Storage != s.Storage || got.Fingerprint != s.Fingerprint {
				t.Fatalf("%s: header mismatch:\n%+v\n%+v", comp, got, s)
			}
			if !slices.Equal(got.Children, s.Children) {
				t.Fatalf("%s: children %v, want %v", comp, got.Children, s.Children)
			}
			if !got.Verify() {
				t.Fatalf("%s: decoded snapshot does not verify", comp)
			}
		}
	}
}

func TestReadErrors(t *testing.T) {
	var v smallvec.Vec[int, [4]int]
	v.AppendSlice(1, 2, 3, 4, 5)
	s, err := Capture("v", &v, inspect.Default())
	if err != nil {
		t.Fatal(err)
	}
	if err := Write(new(bytes.Buffer), s, "lz4"); !errors.Is(err, ErrUnknownCompression) {
		t.Fatalf("expected ErrUnknownCompression, got %v", err)
	}
	var buf bytes.Buffer
	if err := Write(&buf, s, "s2"); err != nil {
		t.Fatal(err)
	}
	good := buf.Bytes()

	if _, err := Read(bytes.NewReader([]byte("not a snapshot"))); !errors.Is(err, ErrBadMagic) {
		t.Fatalf("expected ErrBadMagic, got %v", err)
	}

	// corrupt the stored checksum
	bad := slices.Clone(good)
	sumAt := len(magic) + 1 + len("s2") + 8
	bad[sumAt] ^= 0xff
	if _, err := Read(bytes.NewReader(bad)); !errors.Is(err, ErrChecksum) {
		t.Fatalf("expected ErrChecksum, got %v", err)
	}

	// rename the compression algorithm
	bad = slices.Clone(good)
	copy(bad[len(magic)+1:], "xx")
	if _, err := Read(bytes.NewReader(bad)); !errors.Is(err, ErrUnknownCompression) {
		t.Fatalf("expected ErrUnknownCompression, got %v", err)
	}

	if _, err := Read(bytes.NewReader(good[:len(magic)+4])); err == nil {
		t.Fatal("truncated snapshot accepted")
	}
}

func TestForgedBodySize(t *testing.T) {
	var v smallvec.Vec[int, [4]int]
	v.AppendSlice(10, 20, 30)
	s, err := Capture("vec", &v, inspect.Default())
	if err != nil {
		t.Fatal(err)
	}
	for _, comp := range []string{"zstd", "s2"} {
		var buf bytes.Buffer
		if err := Write(&buf, s, comp); err != nil {
			t.Fatal(err)
		}
		forged := buf.Bytes()
		sizeAt := len(magic) + 1 + len(comp)
		binary.LittleEndian.PutUint64(forged[sizeAt:], maxBody)
		if _, err := Read(bytes.NewReader(forged)); !errors.Is(err, ErrSize) {
			t.Errorf("%s: expected ErrSize, got %v", comp, err)
		}
		binary.LittleEndian.PutUint64(forged[sizeAt:], maxBody+1)
		if _, err := Read(bytes.NewReader(forged)); err == nil {
			t.Errorf("%s: oversized body accepted", comp)
		}
	}
}
