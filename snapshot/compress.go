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
	"errors"
	"fmt"
	"runtime"

	"github.com/klauspost/compress/s2"
	"github.com/klauspost/compress/zstd"
)

// codec is one body compression algorithm.
// The body size it declares is checked
// against the frame header before Read
// allocates the decode buffer.
type codec struct {
	// name is recorded in the frame
	name string
	// encode appends the compressed body to dst,
	// with the argument order of zstd's EncodeAll
	encode func(body, dst []byte) []byte
	// size returns the decoded size
	// the compressed stream declares
	size func(src []byte) (int, error)
	// decode fills dst, which is exactly size(src) bytes
	decode func(dst, src []byte) error
}

var (
	zstdFast, zstdBetter *zstd.Encoder
	zstdDecoder          *zstd.Decoder

	codecs map[string]*codec
)

func init() {
	var err error
	zstdFast, err = zstd.NewWriter(nil, zstd.WithEncoderConcurrency(1))
	if err != nil {
		panic(err)
	}
	zstdBetter, err = zstd.NewWriter(nil,
		zstd.WithEncoderLevel(zstd.SpeedBetterCompression),
		zstd.WithEncoderConcurrency(1))
	if err != nil {
		panic(err)
	}
	zstdDecoder, err = zstd.NewReader(nil,
		zstd.WithDecoderConcurrency(runtime.GOMAXPROCS(0)),
		zstd.WithDecoderMaxMemory(maxBody))
	if err != nil {
		panic(err)
	}

	// both zstd levels produce ordinary zstd frames
	codecs = map[string]*codec{
		"zstd":        {name: "zstd", encode: zstdFast.EncodeAll, size: zstdSize, decode: zstdDecode},
		"zstd-better": {name: "zstd", encode: zstdBetter.EncodeAll, size: zstdSize, decode: zstdDecode},
		"s2":          {name: "s2", encode: s2Encode, size: s2.DecodedLen, decode: s2Decode},
	}
}

var errNoContentSize = errors.New("zstd frame does not record its content size")

func zstdSize(src []byte) (int, error) {
	var h zstd.Header
	if err := h.Decode(src); err != nil {
		return 0, err
	}
	if !h.HasFCS {
		return 0, errNoContentSize
	}
	if h.FrameContentSize > maxBody {
		return 0, fmt.Errorf("zstd frame content size %d too large", h.FrameContentSize)
	}
	return int(h.FrameContentSize), nil
}

func zstdDecode(dst, src []byte) error {
	ret, err := zstdDecoder.DecodeAll(src, dst[:0:len(dst)])
	if err != nil {
		return err
	}
	if len(ret) != len(dst) || (len(ret) > 0 && &ret[0] != &dst[0]) {
		return fmt.Errorf("zstd: expected %d bytes decompressed; got %d", len(dst), len(ret))
	}
	return nil
}

func s2Encode(body, dst []byte) []byte {
	return append(dst, s2.Encode(nil, body)...)
}

func s2Decode(dst, src []byte) error {
	_, err := s2.Decode(dst, src)
	return err
}

// lookupCodec returns the codec for name,
// or nil if the name is unknown.
func lookupCodec(name string) *codec {
	return codecs[name]
}
