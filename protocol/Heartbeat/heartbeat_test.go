package Heartbeat

import (
	"testing"

	"github.com/jtarrio/kafkacore/proto"
	"github.com/jtarrio/kafkacore/protocol"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	req := &Request{GroupId: "g", GenerationId: 4, MemberId: "m1"}
	w := proto.NewWriter()
	if err := Encode(w, req, 0); err != nil {
		t.Fatal(err)
	}
	r := proto.NewReader(w.Bytes())
	groupID, _ := r.ReadNonNullString()
	gen, _ := r.ReadInt32()
	member, _ := r.ReadNonNullString()
	if groupID != "g" || gen != 4 || member != "m1" {
		t.Fatalf("unexpected encoding: %q %d %q", groupID, gen, member)
	}

	respBytes := proto.NewWriter()
	respBytes.WriteInt16(int16(protocol.ErrNone))
	resp, err := Decode(proto.NewReader(respBytes.Bytes()), 0)
	if err != nil {
		t.Fatal(err)
	}
	if resp.ErrorCode != protocol.ErrNone {
		t.Fatalf("expected ErrNone, got %v", resp.ErrorCode)
	}
}
