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

package inspect

import (
	"bufio"
	"fmt"
	"io"

	"github.com/SnellerInc/smallvec/ints"

	"github.com/dchest/siphash"
	"github.com/fatih/color"
)

// DefaultMaxChildren is the number of children
// printed when Printer.MaxChildren is zero.
const DefaultMaxChildren = 256

// Printer renders a provider as text:
//
//	vec = size = 3 {
//	  [0] = 10
//	  [1] = 20
//	  [2] = 30
//	}
type Printer struct {
	// Color enables ANSI colors for
	// names and summaries.
	Color bool
	// MaxChildren limits the number of
	// children printed. Zero means
	// DefaultMaxChildren.
	MaxChildren int
}

func (pr *Printer) paint(attr color.Attribute, s string) string {
	if !pr.Color {
		return s
	}
	c := color.New(attr)
	c.EnableColor()
	return c.Sprint(s)
}

// Print writes the view of p, labeled name, to w.
func (pr *Printer) Print(w io.Writer, name string, p Provider) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "%s = %s", pr.paint(color.FgCyan, name), pr.paint(color.FgYellow, p.Summary()))
	if !p.HasChildren() {
		bw.WriteString(" {}\n")
		return bw.Flush()
	}
	bw.WriteString(" {\n")
	limit := pr.MaxChildren
	if limit <= 0 {
		limit = DefaultMaxChildren
	}
	n := p.NumChildren()
	shown := ints.Clamp(limit, 0, n)
	for i := 0; i < shown; i++ {
		c, ok := p.ChildAt(i)
		if !ok {
			break
		}
		fmt.Fprintf(bw, "  %s = %v\n", pr.paint(color.FgGreen, c.Name), c.Value)
	}
	if shown < n {
		bw.WriteString("  ...\n")
	}
	bw.WriteString("}\n")
	return bw.Flush()
}

// fingerprint keys; fixed so fingerprints are
// comparable across processes
const (
	fpKey0 = 0x736d616c6c766563
	fpKey1 = 0x696e73706563740a
)

// Fingerprint returns a siphash-2-4 digest of the
// names and values of every child of p.
// Two values with equal fingerprints almost
// certainly have identical views.
func Fingerprint(p Provider) uint64 {
	var buf []byte
	n := p.NumChildren()
	for i := 0; i < n; i++ {
		c, ok := p.ChildAt(i)
		if !ok {
			break
		}
		buf = fmt.Appendf(buf, "%s=%v\n", c.Name, c.Value)
	}
	return siphash.Hash(fpKey0, fpKey1, buf)
}
