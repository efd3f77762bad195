// Package compression implements the message-set compression codecs named
// by a message's attributes byte.
package compression

import (
	"bytes"
	"compress/gzip"
	"fmt"
	"io"
)

// Codec values occupy the low 3 bits of a message's attributes byte
// (attributes & 0x07). Only None and Gzip are implemented: the wire codec
// in package message treats any other value as UnsupportedCodec, per the
// Kafka message-format spec this library targets.
const (
	None = iota
	Gzip
	Snappy
	Lz4
	Zstd
)

// Compressor compresses the marshaled bytes of a message set.
type Compressor interface {
	Compress([]byte) ([]byte, error)
	Type() int8
}

// Decompressor reverses a Compressor.
type Decompressor interface {
	Decompress([]byte) ([]byte, error)
	Type() int8
}

// Nop implements Compressor and Decompressor for uncompressed message sets.
type Nop struct{}

func (*Nop) Compress(b []byte) ([]byte, error)   { return b, nil }
func (*Nop) Decompress(b []byte) ([]byte, error) { return b, nil }
func (*Nop) Type() int8                          { return None }

// GzipCodec implements Compressor and Decompressor over compress/gzip, the
// only compression primitive this library calls out to directly (SASL, TLS,
// and DNS are external collaborators per the same contract).
type GzipCodec struct{}

func (GzipCodec) Type() int8 { return Gzip }

func (GzipCodec) Compress(b []byte) ([]byte, error) {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write(b); err != nil {
		return nil, fmt.Errorf("error gzip compressing message set: %w", err)
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("error finalizing gzip stream: %w", err)
	}
	return buf.Bytes(), nil
}

func (GzipCodec) Decompress(b []byte) ([]byte, error) {
	zr, err := gzip.NewReader(bytes.NewReader(b))
	if err != nil {
		return nil, fmt.Errorf("error opening gzip stream: %w", err)
	}
	defer zr.Close()
	out, err := io.ReadAll(zr)
	if err != nil {
		return nil, fmt.Errorf("error gzip decompressing message set: %w", err)
	}
	return out, nil
}
