package SaslHandshake

import (
	"testing"

	"github.com/jtarrio/kafkacore/proto"
)

func TestEncodeWritesMechanism(t *testing.T) {
	w := proto.NewWriter()
	if err := Encode(w, &Request{Mechanism: "PLAIN"}, 0); err != nil {
		t.Fatal(err)
	}
	mechanism, _ := proto.NewReader(w.Bytes()).ReadNonNullString()
	if mechanism != "PLAIN" {
		t.Fatalf("expected mechanism %q, got %q", "PLAIN", mechanism)
	}
}

func TestDecodeResponseListsMechanisms(t *testing.T) {
	w := proto.NewWriter()
	w.WriteInt16(0) // error code
	w.WriteArrayLen(2)
	w.WriteString("PLAIN")
	w.WriteString("SCRAM-SHA-256")

	resp, err := Decode(proto.NewReader(w.Bytes()), 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(resp.Mechanisms) != 2 || resp.Mechanisms[0] != "PLAIN" || resp.Mechanisms[1] != "SCRAM-SHA-256" {
		t.Fatalf("unexpected mechanisms: %v", resp.Mechanisms)
	}
}
