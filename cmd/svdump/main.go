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

// Command svdump prints the debugger view of
// small vectors and matrices described by a
// YAML scenario, and writes or reads snapshots
// of that view.
//
// Usage:
//
//	svdump [-s scenario.yaml] [-o out.snap] [-c zstd|zstd-better|s2]
//	svdump -r in.snap
package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/SnellerInc/smallvec/inspect"
	"github.com/SnellerInc/smallvec/snapshot"

	"github.com/mattn/go-isatty"
)

type options struct {
	scenario    string
	output      string
	input       string
	compression string
	color       string
	maxChildren int
	version     bool

	// tty is true if stdout is a terminal
	tty bool
}

var errTerminal = errors.New("refusing to write a binary snapshot to a terminal")

func (o *options) printer() (*inspect.Printer, error) {
	pr := &inspect.Printer{MaxChildren: o.maxChildren}
	switch o.color {
	case "auto":
		pr.Color = o.tty
	case "always":
		pr.Color = true
	case "never":
	default:
		return nil, fmt.Errorf("bad -color %q (want auto, always or never)", o.color)
	}
	return pr, nil
}

func parseFlags(args []string) (*options, error) {
	o := new(options)
	fs := flag.NewFlagSet("svdump", flag.ContinueOnError)
	fs.StringVar(&o.scenario, "s", "", "YAML scenario file (default: one vector of 10, 20, 30)")
	fs.StringVar(&o.output, "o", "", "write a snapshot of the first container to this file (- for stdout)")
	fs.StringVar(&o.input, "r", "", "read and print a snapshot file instead")
	fs.StringVar(&o.compression, "c", "zstd", "snapshot compression: zstd, zstd-better or s2")
	fs.StringVar(&o.color, "color", "auto", "colorize output: auto, always or never")
	fs.IntVar(&o.maxChildren, "max", inspect.DefaultMaxChildren, "maximum number of children to print")
	fs.BoolVar(&o.version, "version", false, "print the version and exit")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("unexpected arguments %q", fs.Args())
	}
	return o, nil
}

func run(o *options, stdout io.Writer, lg *log.Logger) error {
	if o.version {
		fmt.Fprintln(stdout, version())
		return nil
	}
	pr, err := o.printer()
	if err != nil {
		return err
	}
	if o.input != "" {
		return readSnapshot(o.input, pr, stdout, lg)
	}

	sc := &defaultScenario
	if o.scenario != "" {
		sc, err = loadScenario(o.scenario)
		if err != nil {
			return err
		}
	}
	vals, err := sc.build()
	if err != nil {
		return err
	}
	reg := inspect.Default()

	if o.output != "" {
		return writeSnapshot(o, &vals[0], reg, stdout, lg)
	}

	w := bufio.NewWriter(stdout)
	for i := range vals {
		p, err := reg.Lookup(vals[i].value)
		if err != nil {
			return err
		}
		if err := pr.Print(w, vals[i].name, p); err != nil {
			return err
		}
	}
	return w.Flush()
}

func writeSnapshot(o *options, val *named, reg *inspect.Registry, stdout io.Writer, lg *log.Logger) error {
	s, err := snapshot.Capture(val.name, val.value, reg)
	if err != nil {
		return err
	}
	if o.output == "-" {
		if o.tty {
			return errTerminal
		}
		return snapshot.Write(stdout, s, o.compression)
	}
	f, err := os.Create(o.output)
	if err != nil {
		return err
	}
	err = snapshot.Write(f, s, o.compression)
	if err2 := f.Close(); err == nil {
		err = err2
	}
	if err != nil {
		os.Remove(o.output)
		return err
	}
	lg.Printf("wrote snapshot %s of %s (%s) to %s", s.ID, s.Name, s.Summary, o.output)
	return nil
}

func readSnapshot(path string, pr *inspect.Printer, stdout io.Writer, lg *log.Logger) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	s, err := snapshot.Read(f)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	if !s.Verify() {
		lg.Printf("warning: %s: fingerprint %s does not match children", path, s.Fingerprint)
	}
	fmt.Fprintf(stdout, "# snapshot %s type %s", s.ID, s.Type)
	if s.Storage != "" {
		fmt.Fprintf(stdout, " storage %s", s.Storage)
	}
	fmt.Fprintln(stdout)
	return pr.Print(stdout, s.Name, s.Provider())
}

func main() {
	lg := log.New(os.Stderr, "svdump: ", 0)
	o, err := parseFlags(os.Args[1:])
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		lg.Fatal(err)
	}
	fd := os.Stdout.Fd()
	o.tty = isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
	if err := run(o, os.Stdout, lg); err != nil {
		lg.Fatal(err)
	}
}
