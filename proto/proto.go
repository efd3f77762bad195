// Package proto implements the low level big-endian read/write primitives
// shared by every Kafka wire-protocol message: typed integers, nullable
// strings and byte slices, and the two scoped markers (length-prefix and
// CRC) that nest around them.
package proto

import (
	"encoding/binary"
	"errors"
	"hash/crc32"
)

// ErrBufferUnderRun is returned when a Reader is asked for more bytes than
// remain between its cursor and the logical end of the buffer.
var ErrBufferUnderRun = errors.New("proto: buffer underrun")

var ord = binary.BigEndian

// Writer is a growable big-endian sink. The zero value is ready to use.
// Not safe for concurrent use.
type Writer struct {
	buf []byte
}

func NewWriter() *Writer { return &Writer{} }

// NewWriterSize preallocates buf to the given capacity. Use when the caller
// can estimate the encoded size (e.g. one message per record) to cut down on
// reallocation during encode of large message sets.
func NewWriterSize(n int) *Writer { return &Writer{buf: make([]byte, 0, n)} }

func (w *Writer) Bytes() []byte { return w.buf }
func (w *Writer) Len() int      { return len(w.buf) }

func (w *Writer) WriteInt8(v int8) { w.buf = append(w.buf, byte(v)) }

func (w *Writer) WriteInt16(v int16) {
	var b [2]byte
	ord.PutUint16(b[:], uint16(v))
	w.buf = append(w.buf, b[:]...)
}

func (w *Writer) WriteInt32(v int32) {
	var b [4]byte
	ord.PutUint32(b[:], uint32(v))
	w.buf = append(w.buf, b[:]...)
}

func (w *Writer) WriteInt64(v int64) {
	var b [8]byte
	ord.PutUint64(b[:], uint64(v))
	w.buf = append(w.buf, b[:]...)
}

func (w *Writer) WriteBool(v bool) {
	if v {
		w.buf = append(w.buf, 1)
		return
	}
	w.buf = append(w.buf, 0)
}

// WriteRaw appends b unprefixed, unframed. Used for blobs whose length was
// already written separately (e.g. compressed payloads inside a length scope).
func (w *Writer) WriteRaw(b []byte) { w.buf = append(w.buf, b...) }

// WriteBytes writes a nullable byte slice as int32 length + data. A nil slice
// is encoded as length -1.
func (w *Writer) WriteBytes(b []byte) {
	if b == nil {
		w.WriteInt32(-1)
		return
	}
	w.WriteInt32(int32(len(b)))
	w.buf = append(w.buf, b...)
}

// WriteNullableString writes s (or, if nil, a -1-length null marker) as
// int16 length + UTF-8 bytes.
func (w *Writer) WriteNullableString(s *string) {
	if s == nil {
		w.WriteInt16(-1)
		return
	}
	w.WriteInt16(int16(len(*s)))
	w.buf = append(w.buf, *s...)
}

// WriteString writes a non-nullable string as int16 length + UTF-8 bytes.
func (w *Writer) WriteString(s string) {
	w.WriteInt16(int16(len(s)))
	w.buf = append(w.buf, s...)
}

// WriteArrayLen writes an array length prefix. n<0 writes the "null/absent"
// marker (-1), used by APIs such as Metadata where an absent topic list
// means "all topics".
func (w *Writer) WriteArrayLen(n int) {
	if n < 0 {
		w.WriteInt32(-1)
		return
	}
	w.WriteInt32(int32(n))
}

// LengthScope is returned by MarkLength. Close computes the number of bytes
// written since the scope was opened and patches it into the reserved
// 4-byte field.
type LengthScope struct {
	w            *Writer
	markerPos    int
	contentStart int
}

// MarkLength reserves 4 bytes at the current position. Call Close on the
// returned scope once the framed content has been written; it patches
// current_position - marker_position - 4 into the reserved bytes. Scopes
// nest: an inner scope may be opened and closed while an outer one is open.
func (w *Writer) MarkLength() *LengthScope {
	pos := len(w.buf)
	w.WriteInt32(0)
	return &LengthScope{w: w, markerPos: pos, contentStart: len(w.buf)}
}

func (s *LengthScope) Close() {
	n := int32(len(s.w.buf) - s.contentStart)
	ord.PutUint32(s.w.buf[s.markerPos:s.markerPos+4], uint32(n))
}

// CRCScope is returned by MarkCRC. Close computes the CRC-32 (IEEE,
// polynomial 0xEDB88320 - Kafka's own) of the bytes written since the scope
// was opened and patches it into the reserved 4-byte field.
type CRCScope struct {
	w            *Writer
	markerPos    int
	contentStart int
}

func (w *Writer) MarkCRC() *CRCScope {
	pos := len(w.buf)
	w.WriteInt32(0)
	return &CRCScope{w: w, markerPos: pos, contentStart: len(w.buf)}
}

func (s *CRCScope) Close() {
	crc := crc32.ChecksumIEEE(s.w.buf[s.contentStart:])
	ord.PutUint32(s.w.buf[s.markerPos:s.markerPos+4], crc)
}

// Reader is a cursored big-endian source over an in-memory byte slice.
// Not safe for concurrent use.
type Reader struct {
	buf []byte
	pos int
}

func NewReader(b []byte) *Reader { return &Reader{buf: b} }

// Available reports whether at least n bytes remain before the logical end
// of the buffer.
func (r *Reader) Available(n int) bool { return len(r.buf)-r.pos >= n }

// Remaining returns the number of unread bytes.
func (r *Reader) Remaining() int { return len(r.buf) - r.pos }

// Pos returns the current cursor offset from the start of the buffer.
func (r *Reader) Pos() int { return r.pos }

// Skip advances the cursor by n bytes without interpreting them.
func (r *Reader) Skip(n int) error {
	if !r.Available(n) {
		return ErrBufferUnderRun
	}
	r.pos += n
	return nil
}

func (r *Reader) ReadInt8() (int8, error) {
	if !r.Available(1) {
		return 0, ErrBufferUnderRun
	}
	v := int8(r.buf[r.pos])
	r.pos++
	return v, nil
}

func (r *Reader) ReadInt16() (int16, error) {
	if !r.Available(2) {
		return 0, ErrBufferUnderRun
	}
	v := int16(ord.Uint16(r.buf[r.pos : r.pos+2]))
	r.pos += 2
	return v, nil
}

func (r *Reader) ReadInt32() (int32, error) {
	if !r.Available(4) {
		return 0, ErrBufferUnderRun
	}
	v := int32(ord.Uint32(r.buf[r.pos : r.pos+4]))
	r.pos += 4
	return v, nil
}

func (r *Reader) ReadUint32() (uint32, error) {
	if !r.Available(4) {
		return 0, ErrBufferUnderRun
	}
	v := ord.Uint32(r.buf[r.pos : r.pos+4])
	r.pos += 4
	return v, nil
}

func (r *Reader) ReadInt64() (int64, error) {
	if !r.Available(8) {
		return 0, ErrBufferUnderRun
	}
	v := int64(ord.Uint64(r.buf[r.pos : r.pos+8]))
	r.pos += 8
	return v, nil
}

func (r *Reader) ReadBool() (bool, error) {
	if !r.Available(1) {
		return false, ErrBufferUnderRun
	}
	v := r.buf[r.pos] != 0
	r.pos++
	return v, nil
}

// ReadRaw reads exactly n unframed bytes. The returned slice aliases the
// reader's backing array; copy it if it must outlive further reads.
func (r *Reader) ReadRaw(n int) ([]byte, error) {
	if !r.Available(n) {
		return nil, ErrBufferUnderRun
	}
	b := r.buf[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}

// ReadBytes reads a nullable byte slice (int32 length, -1 for null). The
// returned slice aliases the reader's backing array.
func (r *Reader) ReadBytes() ([]byte, error) {
	n, err := r.ReadInt32()
	if err != nil {
		return nil, err
	}
	if n < 0 {
		return nil, nil
	}
	return r.ReadRaw(int(n))
}

// ReadString reads a nullable string (int16 length, -1 for null).
func (r *Reader) ReadString() (*string, error) {
	n, err := r.ReadInt16()
	if err != nil {
		return nil, err
	}
	if n < 0 {
		return nil, nil
	}
	b, err := r.ReadRaw(int(n))
	if err != nil {
		return nil, err
	}
	s := string(b)
	return &s, nil
}

// ReadNonNullString reads a string that the caller knows cannot be null,
// collapsing a null encoding to "".
func (r *Reader) ReadNonNullString() (string, error) {
	s, err := r.ReadString()
	if err != nil {
		return "", err
	}
	if s == nil {
		return "", nil
	}
	return *s, nil
}

// ReadArrayLen reads an int32 array length. -1 ("null/absent array") is
// returned as -1 so callers such as Metadata's "all topics" request can
// distinguish it from a present-but-empty array.
func (r *Reader) ReadArrayLen() (int, error) {
	n, err := r.ReadInt32()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

// CRCHash returns the CRC-32 (IEEE) of the next n bytes without consuming
// them, so the caller can compare it against a checksum that immediately
// precedes the bytes it covers.
func (r *Reader) CRCHash(n int) (uint32, error) {
	if !r.Available(n) {
		return 0, ErrBufferUnderRun
	}
	return crc32.ChecksumIEEE(r.buf[r.pos : r.pos+n]), nil
}
