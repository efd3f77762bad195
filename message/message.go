// Package message implements the Kafka message and message-set wire format:
// a single message (key, value, attributes, timestamp) protected by its own
// CRC, and a length-prefixed sequence of offset-tagged messages that may be
// wrapped, as a whole, inside a single GZIP-compressed outer message.
//
// This is the legacy ("v0"/"v1") message format, not the newer record-batch
// (magic 2) format: every message carries its own CRC rather than one CRC
// per batch, and there is no varint record framing.
package message

import (
	"errors"
	"fmt"
	"time"

	"github.com/jtarrio/kafkacore/compression"
	"github.com/jtarrio/kafkacore/proto"
)

var (
	// ErrCrcMismatch is returned when a decoded message's stored CRC does
	// not match the CRC computed over its own bytes.
	ErrCrcMismatch = errors.New("message: crc mismatch")
	// ErrUnsupportedCodec is returned when attributes&0x07 names a
	// compression codec other than none or gzip.
	ErrUnsupportedCodec = errors.New("message: unsupported codec")
	// ErrBufferUnderRun is returned when a declared message_size exceeds
	// the bytes remaining in the set being decoded. Re-exported from
	// package proto so callers need not import it directly.
	ErrBufferUnderRun = proto.ErrBufferUnderRun
)

// minHeaderSize is offset:int64 + message_size:int32, the smallest prefix a
// message-set entry can have. Fewer bytes than this remaining at an entry
// boundary is a tolerated trailing truncation, not an error.
const minHeaderSize = 12

// Message is a single Kafka message as carried inside a message set.
// Offset is meaningful only after decode (or, for a compressed wrapper's
// inner messages, after the wrapper has been expanded); on encode the
// caller-supplied offset is ignored, matching real brokers which always
// assign the final offset themselves.
type Message struct {
	Offset     int64
	Magic      int8
	Attributes int8
	// Timestamp is nil when magic is 0, or when magic is 1 and the
	// broker/producer explicitly encoded "no timestamp" (wire value -1).
	Timestamp *int64
	Key       []byte
	Value     []byte
}

// New builds a magic-1 message ready for Encode. Key and Value may be nil.
func New(key, value []byte) *Message {
	return &Message{Magic: 1, Key: key, Value: value}
}

// Codec returns the compression codec named by the low three bits of
// Attributes.
func (m *Message) Codec() int8 { return m.Attributes & 0x07 }

func nowMillis(now time.Time) int64 { return now.UnixNano() / int64(time.Millisecond) }

// encodeOne writes magic, attributes, the optional timestamp, key, and
// value inside a CRC scope.
func encodeOne(w *proto.Writer, m *Message, now time.Time) {
	crc := w.MarkCRC()
	w.WriteInt8(m.Magic)
	w.WriteInt8(m.Attributes)
	if m.Magic >= 1 {
		ts := nowMillis(now)
		if m.Timestamp != nil {
			ts = *m.Timestamp
		}
		w.WriteInt64(ts)
	}
	w.WriteBytes(m.Key)
	w.WriteBytes(m.Value)
	crc.Close()
}

// encodeEntry writes one message-set entry: offset, then the message inside
// a length scope. The writer always chooses offset 0; brokers assign the
// final offset on produce.
func encodeEntry(w *proto.Writer, m *Message, now time.Time) {
	w.WriteInt64(0)
	length := w.MarkLength()
	encodeOne(w, m, now)
	length.Close()
}

// Encode writes messages as a message set using the given compression
// codec, framed inside its own length scope (the MessageSetSize prefix
// Produce/Fetch bodies expect around a partition's record data). It returns
// the number of bytes saved by compression (0 for compression.None), a
// telemetry signal surfaced through RequestContext.OnProduceRequestMessages.
func Encode(w *proto.Writer, messages []*Message, codec int8, now time.Time) (int, error) {
	switch codec {
	case compression.None:
		scope := w.MarkLength()
		for _, m := range messages {
			encodeEntry(w, m, now)
		}
		scope.Close()
		return 0, nil
	case compression.Gzip:
		inner := proto.NewWriter()
		for _, m := range messages {
			encodeEntry(inner, m, now)
		}
		uncompressed := inner.Bytes()
		compressed, err := (compression.GzipCodec{}).Compress(uncompressed)
		if err != nil {
			return 0, fmt.Errorf("error compressing message set: %w", err)
		}
		outer := w.MarkLength()
		w.WriteInt64(0) // wrapper entry offset
		wrapperLength := w.MarkLength()
		crc := w.MarkCRC()
		w.WriteInt8(0)                      // wrapper magic
		w.WriteInt8(int8(compression.Gzip)) // wrapper attributes
		w.WriteBytes(nil)                   // wrapper key, always null
		w.WriteBytes(compressed)            // wrapper value: the compressed inner set
		crc.Close()
		wrapperLength.Close()
		outer.Close()
		return len(uncompressed) - len(compressed), nil
	default:
		return 0, ErrUnsupportedCodec
	}
}

// Decode reads a length-prefixed message set from r, expanding any
// GZIP-compressed wrapper message it encounters. A nil-length set (-1, as
// opposed to absent entirely) decodes to a nil slice with no error.
func Decode(r *proto.Reader) ([]*Message, error) {
	n, err := r.ReadInt32()
	if err != nil {
		return nil, err
	}
	if n < 0 {
		return nil, nil
	}
	raw, err := r.ReadRaw(int(n))
	if err != nil {
		return nil, fmt.Errorf("error reading message set body: %w", err)
	}
	return decodeEntries(proto.NewReader(raw))
}

// decodeEntries walks a buffer of concatenated offset/message_size/message
// entries (either the top-level set, or a wrapper's decompressed inner
// set) until it runs out of complete entries.
func decodeEntries(r *proto.Reader) ([]*Message, error) {
	var out []*Message
	for r.Remaining() > 0 {
		if r.Remaining() < minHeaderSize {
			break // tolerated trailing truncation
		}
		offset, _ := r.ReadInt64()
		size, err := r.ReadInt32()
		if err != nil {
			return nil, err
		}
		if size < 0 || !r.Available(int(size)) {
			return nil, fmt.Errorf("error reading message of declared size %d at offset %d: %w", size, offset, ErrBufferUnderRun)
		}
		body, err := r.ReadRaw(int(size))
		if err != nil {
			return nil, err
		}
		msgs, err := decodeBody(offset, body)
		if err != nil {
			return nil, err
		}
		out = append(out, msgs...)
	}
	return out, nil
}

// decodeBody decodes the crc-protected body of a single message-set entry.
// For an uncompressed message it returns exactly one Message tagged with
// the entry's outer offset. For a compressed wrapper it recursively expands
// the inner set, whose own offsets (not the wrapper's) are authoritative.
func decodeBody(offset int64, body []byte) ([]*Message, error) {
	r := proto.NewReader(body)
	declaredCRC, err := r.ReadUint32()
	if err != nil {
		return nil, err
	}
	computedCRC, err := r.CRCHash(r.Remaining())
	if err != nil {
		return nil, err
	}
	if declaredCRC != computedCRC {
		return nil, ErrCrcMismatch
	}
	magic, err := r.ReadInt8()
	if err != nil {
		return nil, err
	}
	attributes, err := r.ReadInt8()
	if err != nil {
		return nil, err
	}
	var timestamp *int64
	if magic >= 1 {
		ts, err := r.ReadInt64()
		if err != nil {
			return nil, err
		}
		if ts != -1 {
			timestamp = &ts
		}
	}
	key, err := r.ReadBytes()
	if err != nil {
		return nil, err
	}
	switch codec := attributes & 0x07; codec {
	case compression.None:
		value, err := r.ReadBytes()
		if err != nil {
			return nil, err
		}
		return []*Message{{
			Offset:     offset,
			Magic:      magic,
			Attributes: attributes,
			Timestamp:  timestamp,
			Key:        key,
			Value:      value,
		}}, nil
	case compression.Gzip:
		compressed, err := r.ReadBytes()
		if err != nil {
			return nil, err
		}
		inner, err := (compression.GzipCodec{}).Decompress(compressed)
		if err != nil {
			return nil, fmt.Errorf("error decompressing gzip message set: %w", err)
		}
		return decodeEntries(proto.NewReader(inner))
	default:
		return nil, ErrUnsupportedCodec
	}
}
