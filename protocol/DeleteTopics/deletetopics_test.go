package DeleteTopics

import (
	"testing"

	"github.com/jtarrio/kafkacore/proto"
)

func TestEncodeWritesTopicsThenTimeout(t *testing.T) {
	req := &Request{Topics: []string{"a", "b"}, TimeoutMs: 2000}
	w := proto.NewWriter()
	if err := Encode(w, req, 0); err != nil {
		t.Fatal(err)
	}
	r := proto.NewReader(w.Bytes())
	n, _ := r.ReadArrayLen()
	if n != 2 {
		t.Fatalf("expected 2 topics, got %d", n)
	}
	first, _ := r.ReadNonNullString()
	second, _ := r.ReadNonNullString()
	if first != "a" || second != "b" {
		t.Fatalf("expected caller order preserved, got %q, %q", first, second)
	}
	timeoutMs, _ := r.ReadInt32()
	if timeoutMs != 2000 {
		t.Fatalf("expected timeout_ms 2000, got %d", timeoutMs)
	}
}

func TestDecodeResponse(t *testing.T) {
	w := proto.NewWriter()
	w.WriteArrayLen(1)
	w.WriteString("a")
	w.WriteInt16(0)

	resp, err := Decode(proto.NewReader(w.Bytes()), 0)
	if err != nil {
		t.Fatal(err)
	}
	if resp.Topics[0].Name != "a" {
		t.Fatalf("unexpected response: %+v", resp)
	}
}
