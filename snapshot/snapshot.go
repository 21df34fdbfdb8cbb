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

// Package snapshot captures the inspector view of
// a container and persists it in a compressed,
// checksummed file so it can be examined later.
//
// A snapshot file is laid out as
//
//	magic       [8]byte  "SVSNAP\x00\x01"
//	namelen     uint8
//	name        [namelen]byte  compression algorithm
//	size        uint64   little-endian, decoded body size
//	sum         [32]byte blake2b-256 of the decoded body
//	body        compressed YAML
package snapshot

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/SnellerInc/smallvec/inspect"

	"github.com/google/uuid"
	"golang.org/x/crypto/blake2b"
	"sigs.k8s.io/yaml"
)

const magic = "SVSNAP\x00\x01"

// maxBody bounds the decoded size we are
// willing to allocate for on Read.
const maxBody = 1 << 30

var (
	// ErrBadMagic is returned by Read when the
	// input does not start with a snapshot header.
	ErrBadMagic = errors.New("snapshot: bad magic")
	// ErrUnknownCompression is returned when the
	// compression algorithm is not supported.
	ErrUnknownCompression = errors.New("snapshot: unknown compression")
	// ErrSize is returned by Read when the
	// body size in the header disagrees with
	// the compressed stream.
	ErrSize = errors.New("snapshot: body size mismatch")
	// ErrChecksum is returned by Read when the
	// decoded body does not match its checksum.
	ErrChecksum = errors.New("snapshot: checksum mismatch")
)

// Entry is one child of the captured value,
// with its value already formatted.
type Entry struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Snapshot is the captured view of one value.
// Storage is "inline" or "heap" for values that
// report it. Fingerprint is the hex form of
// inspect.Fingerprint over the children.
type Snapshot struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name,omitempty"`
	Type        string    `json:"type"`
	Summary     string    `json:"summary"`
	Storage     string    `json:"storage,omitempty"`
	Children    []Entry   `json:"children"`
	Fingerprint string    `json:"fingerprint"`
}

type storager interface {
	Storage() string
}

// Capture looks up the provider for v in reg
// and records its current view under name.
func Capture(name string, v any, reg *inspect.Registry) (*Snapshot, error) {
	p, err := reg.Lookup(v)
	if err != nil {
		return nil, err
	}
	s := &Snapshot{
		ID:          uuid.New(),
		Name:        name,
		Type:        inspect.TypeName(v),
		Summary:     p.Summary(),
		Children:    []Entry{},
		Fingerprint: FormatFingerprint(inspect.Fingerprint(p)),
	}
	if st, ok := p.(storager); ok {
		s.Storage = st.Storage()
	}
	n := p.NumChildren()
	for i := 0; i < n; i++ {
		c, ok := p.ChildAt(i)
		if !ok {
			break
		}
		s.Children = append(s.Children, Entry{Name: c.Name, Value: fmt.Sprint(c.Value)})
	}
	return s, nil
}

// Provider returns an inspect.Provider over
// the recorded children of s.
func (s *Snapshot) Provider() inspect.Provider {
	return entries{s}
}

type entries struct {
	s *Snapshot
}

func (e entries) NumChildren() int  { return len(e.s.Children) }
func (e entries) HasChildren() bool { return len(e.s.Children) > 0 }
func (e entries) Summary() string   { return e.s.Summary }
func (e entries) Update()           {}

func (e entries) ChildAt(i int) (inspect.Child, bool) {
	if i < 0 || i >= len(e.s.Children) {
		return inspect.Child{}, false
	}
	c := &e.s.Children[i]
	return inspect.Child{Name: c.Name, Value: c.Value}, true
}

func (e entries) ChildIndex(name string) int {
	for i := range e.s.Children {
		if e.s.Children[i].Name == name {
			return i
		}
	}
	return -1
}

// Verify recomputes the fingerprint of the
// recorded children and compares it with the
// one stored at capture time.
func (s *Snapshot) Verify() bool {
	return FormatFingerprint(inspect.Fingerprint(s.Provider())) == s.Fingerprint
}

// FormatFingerprint renders a fingerprint
// the way it is stored in a Snapshot.
func FormatFingerprint(fp uint64) string {
	return fmt.Sprintf("%016x", fp)
}

// Write encodes s to w using the named
// compression algorithm ("zstd", "zstd-better" or "s2").
func Write(w io.Writer, s *Snapshot, comp string) error {
	c := lookupCodec(comp)
	if c == nil {
		return fmt.Errorf("%w %q", ErrUnknownCompression, comp)
	}
	body, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("snapshot: encoding: %w", err)
	}
	sum := blake2b.Sum256(body)
	name := c.name

	buf := make([]byte, 0, len(magic)+1+len(name)+8+len(sum)+len(body)/2)
	buf = append(buf, magic...)
	buf = append(buf, byte(len(name)))
	buf = append(buf, name...)
	buf = binary.LittleEndian.AppendUint64(buf, uint64(len(body)))
	buf = append(buf, sum[:]...)
	buf = c.encode(body, buf)
	_, err = w.Write(buf)
	return err
}

// Read decodes a snapshot written by Write.
func Read(r io.Reader) (*Snapshot, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if !bytes.HasPrefix(data, []byte(magic)) {
		return nil, ErrBadMagic
	}
	data = data[len(magic):]
	if len(data) < 1 {
		return nil, io.ErrUnexpectedEOF
	}
	namelen := int(data[0])
	if len(data) < 1+namelen {
		return nil, io.ErrUnexpectedEOF
	}
	name := string(data[1 : 1+namelen])
	data = data[1+namelen:]
	c := lookupCodec(name)
	if c == nil {
		return nil, fmt.Errorf("%w %q", ErrUnknownCompression, name)
	}
	if len(data) < 8+blake2b.Size256 {
		return nil, io.ErrUnexpectedEOF
	}
	size := binary.LittleEndian.Uint64(data)
	if size > maxBody {
		return nil, fmt.Errorf("snapshot: body size %d too large", size)
	}
	var sum [blake2b.Size256]byte
	copy(sum[:], data[8:])
	data = data[8+blake2b.Size256:]

	// the stream must agree with the header
	// before the body buffer is allocated
	n, err := c.size(data)
	if err != nil {
		return nil, fmt.Errorf("snapshot: %s: %w", name, err)
	}
	if uint64(n) != size {
		return nil, fmt.Errorf("%w: header declares %d bytes, %s stream declares %d", ErrSize, size, name, n)
	}
	body := make([]byte, size)
	if err := c.decode(body, data); err != nil {
		return nil, fmt.Errorf("snapshot: %s: %w", name, err)
	}
	if blake2b.Sum256(body) != sum {
		return nil, ErrChecksum
	}
	s := new(Snapshot)
	if err := yaml.Unmarshal(body, s); err != nil {
		return nil, fmt.Errorf("snapshot: decoding: %w", err)
	}
	return s, nil
}
