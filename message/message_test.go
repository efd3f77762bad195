package message

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/jtarrio/kafkacore/compression"
	"github.com/jtarrio/kafkacore/proto"
)

func TestEncodeThreeMessageSetFixture(t *testing.T) {
	// From the repo's own byte-exact message-set test: three uncompressed
	// messages, each with key "1" and values "0", "1", "2".
	want := []byte{
		0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 16, 45, 70, 24, 62, 0, 0, 0, 0, 0, 1, '1', 0, 0, 0, 1, '0',
		0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 16, 90, 65, 40, 168, 0, 0, 0, 0, 0, 1, '1', 0, 0, 0, 1, '1',
		0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 16, 195, 72, 121, 18, 0, 0, 0, 0, 0, 1, '1', 0, 0, 0, 1, '2',
	}

	msgs := []*Message{
		{Magic: 0, Key: []byte("1"), Value: []byte("0")},
		{Magic: 0, Key: []byte("1"), Value: []byte("1")},
		{Magic: 0, Key: []byte("1"), Value: []byte("2")},
	}

	w := proto.NewWriter()
	// Encode(None) writes the triplet of entries inside its own
	// MessageSetSize length scope; the fixture covers only the entries.
	if _, err := Encode(w, msgs, compression.None, time.Now()); err != nil {
		t.Fatal(err)
	}
	got := w.Bytes()[4:] // drop the outer MessageSetSize prefix Encode adds
	if !bytes.Equal(got, want) {
		t.Fatalf("mismatch:\n got  %v\n want %v", got, want)
	}
}

func TestRoundTripUncompressed(t *testing.T) {
	cases := [][2][]byte{
		{[]byte("key"), []byte("value")},
		{nil, []byte("value")},
		{[]byte("key"), nil},
		{nil, nil},
		{[]byte{}, []byte{}},
	}
	for _, c := range cases {
		in := New(c[0], c[1])
		w := proto.NewWriter()
		if _, err := Encode(w, []*Message{in}, compression.None, time.Now()); err != nil {
			t.Fatal(err)
		}
		out, err := Decode(proto.NewReader(w.Bytes()))
		if err != nil {
			t.Fatal(err)
		}
		if len(out) != 1 {
			t.Fatalf("expected 1 message, got %d", len(out))
		}
		if !bytes.Equal(out[0].Key, in.Key) || !bytes.Equal(out[0].Value, in.Value) {
			t.Fatalf("round trip mismatch: got key=%v value=%v, want key=%v value=%v", out[0].Key, out[0].Value, in.Key, in.Value)
		}
	}
}

func TestRoundTripGzip(t *testing.T) {
	var msgs []*Message
	for i := 0; i < 50; i++ {
		msgs = append(msgs, New([]byte("k"), bytes.Repeat([]byte("v"), i+1)))
	}
	w := proto.NewWriter()
	saved, err := Encode(w, msgs, compression.Gzip, time.Now())
	if err != nil {
		t.Fatal(err)
	}
	if saved == 0 {
		t.Fatalf("expected nonzero bytes saved for a compressible set")
	}
	out, err := Decode(proto.NewReader(w.Bytes()))
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != len(msgs) {
		t.Fatalf("expected %d messages, got %d", len(msgs), len(out))
	}
	for i, m := range out {
		if !bytes.Equal(m.Value, msgs[i].Value) {
			t.Fatalf("message %d value mismatch", i)
		}
	}
}

func TestDecodeCrcMismatch(t *testing.T) {
	w := proto.NewWriter()
	if _, err := Encode(w, []*Message{New([]byte("k"), []byte("v"))}, compression.None, time.Now()); err != nil {
		t.Fatal(err)
	}
	b := w.Bytes()
	// Flip a single bit in the message body (well past the crc field,
	// which occupies the first 4 bytes after the per-entry header).
	b[len(b)-1] ^= 0x01
	if _, err := Decode(proto.NewReader(b)); err != ErrCrcMismatch {
		t.Fatalf("expected ErrCrcMismatch, got %v", err)
	}
}

func TestDecodeOuterLengthOverflowIsBufferUnderRun(t *testing.T) {
	w := proto.NewWriter()
	w.WriteInt32(1000) // declared length far exceeds what follows
	w.WriteRaw([]byte{1, 2, 3})
	if _, err := Decode(proto.NewReader(w.Bytes())); !errors.Is(err, ErrBufferUnderRun) {
		t.Fatalf("expected ErrBufferUnderRun for an outer length exceeding the buffer, got %v", err)
	}
}

func TestDecodeTrailingTruncationTolerated(t *testing.T) {
	w := proto.NewWriter()
	if _, err := Encode(w, []*Message{New([]byte("k"), []byte("v"))}, compression.None, time.Now()); err != nil {
		t.Fatal(err)
	}
	full := w.Bytes()

	// Simulate a broker response whose declared set length covers a
	// dangling partial entry (fewer than 12 header bytes) at the end.
	body := append(append([]byte{}, full[4:]...), 1, 2, 3)
	reframed := proto.NewWriter()
	reframed.WriteInt32(int32(len(body)))
	reframed.WriteRaw(body)

	msgs, err := Decode(proto.NewReader(reframed.Bytes()))
	if err != nil {
		t.Fatalf("expected tolerated truncation, got error: %v", err)
	}
	if len(msgs) != 1 {
		t.Fatalf("expected 1 complete message, got %d", len(msgs))
	}
}

func TestDecodeManyMessagesWithTrailingPartialEntry(t *testing.T) {
	// Regression-style check for the "FetchResponseMaxBytesOverflow"
	// scenario: a large complete prefix of messages followed by a
	// dangling partial entry must decode all complete messages and stop
	// silently rather than error.
	const count = 529
	var msgs []*Message
	for i := 0; i < count; i++ {
		v := []byte("test")
		if i > 0 {
			v = []byte("x")
		}
		msgs = append(msgs, New(nil, v))
	}
	w := proto.NewWriter()
	if _, err := Encode(w, msgs, compression.None, time.Now()); err != nil {
		t.Fatal(err)
	}
	full := w.Bytes()
	// Reframe with a dangling 6-byte partial entry appended inside the
	// declared length (i.e. broker sent a bit more, but not a complete
	// header's worth).
	body := full[4:]
	body = append(body, 0, 0, 0, 0, 0, 0)
	reframed := proto.NewWriter()
	reframed.WriteInt32(int32(len(body)))
	reframed.WriteRaw(body)

	out, err := Decode(proto.NewReader(reframed.Bytes()))
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != count {
		t.Fatalf("expected %d messages, got %d", count, len(out))
	}
	if string(out[0].Value) != "test" {
		t.Fatalf("expected first message value %q, got %q", "test", out[0].Value)
	}
}
