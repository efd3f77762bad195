package compression

import "testing"

func TestNopRoundTrip(t *testing.T) {
	n := &Nop{}
	if n.Type() != None {
		t.Fatalf("expected type None, got %d", n.Type())
	}
	in := []byte("some message set bytes")
	out, err := n.Compress(in)
	if err != nil {
		t.Fatal(err)
	}
	back, err := n.Decompress(out)
	if err != nil {
		t.Fatal(err)
	}
	if string(back) != string(in) {
		t.Fatalf("expected %q, got %q", in, back)
	}
}

func TestGzipCodecRoundTrip(t *testing.T) {
	c := GzipCodec{}
	if c.Type() != Gzip {
		t.Fatalf("expected type Gzip, got %d", c.Type())
	}
	in := []byte("some message set bytes, repeated repeated repeated for compression")
	compressed, err := c.Compress(in)
	if err != nil {
		t.Fatal(err)
	}
	if len(compressed) == 0 {
		t.Fatal("expected non-empty compressed output")
	}
	back, err := c.Decompress(compressed)
	if err != nil {
		t.Fatal(err)
	}
	if string(back) != string(in) {
		t.Fatalf("expected %q, got %q", in, back)
	}
}

func TestGzipCodecDecompressGarbageErrors(t *testing.T) {
	c := GzipCodec{}
	if _, err := c.Decompress([]byte("not a gzip stream")); err == nil {
		t.Fatal("expected an error decompressing non-gzip data")
	}
}
