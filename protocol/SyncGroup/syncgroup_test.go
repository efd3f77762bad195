package SyncGroup

import (
	"testing"

	"github.com/jtarrio/kafkacore/membership"
	"github.com/jtarrio/kafkacore/proto"
	"github.com/jtarrio/kafkacore/protocol"
)

func newConsumerContext() *protocol.Context {
	ctx := protocol.NewContext("test-client")
	ctx.Encoders.Register("consumer", membership.ConsumerEncoder{})
	ctx.ProtocolType = "consumer"
	return ctx
}

func TestEncodeWithRegisteredEncoder(t *testing.T) {
	ctx := newConsumerContext()
	req := &Request{
		GroupId:      "g",
		GenerationId: 1,
		MemberId:     "m1",
		ProtocolType: "consumer",
		Assignments: []MemberAssignment{
			{MemberId: "m1", Assignment: &membership.ConsumerAssignment{TopicPartition: map[string][]int32{"t": {0, 1}}}},
		},
	}
	w := proto.NewWriter()
	if err := Encode(w, ctx, req); err != nil {
		t.Fatal(err)
	}
	r := proto.NewReader(w.Bytes())
	r.ReadNonNullString() // group id
	r.ReadInt32()         // generation id
	r.ReadNonNullString() // member id
	n, _ := r.ReadArrayLen()
	if n != 1 {
		t.Fatalf("expected 1 assignment, got %d", n)
	}
}

func TestDecodeWithRegisteredEncoder(t *testing.T) {
	ctx := newConsumerContext()
	assignmentBody := proto.NewWriter()
	if err := (membership.ConsumerEncoder{}).EncodeAssignment(assignmentBody, &membership.ConsumerAssignment{TopicPartition: map[string][]int32{"t": {0}}}); err != nil {
		t.Fatal(err)
	}
	resp := proto.NewWriter()
	resp.WriteInt16(0) // error code
	resp.WriteBytes(assignmentBody.Bytes())

	decoded, err := Decode(proto.NewReader(resp.Bytes()), ctx)
	if err != nil {
		t.Fatal(err)
	}
	assignment, ok := decoded.Assignment.(*membership.ConsumerAssignment)
	if !ok {
		t.Fatalf("expected decoded assignment via registered encoder, got %T", decoded.Assignment)
	}
	if partitions, ok := assignment.TopicPartition["t"]; !ok || len(partitions) != 1 {
		t.Fatalf("unexpected decoded assignment: %+v", assignment)
	}
}

func TestDecodeWithNoRegisteredEncoderPassesRawBytes(t *testing.T) {
	ctx := protocol.NewContext("test-client")
	ctx.ProtocolType = "unregistered"
	resp := proto.NewWriter()
	resp.WriteInt16(0)
	resp.WriteBytes([]byte{9, 9, 9})

	decoded, err := Decode(proto.NewReader(resp.Bytes()), ctx)
	if err != nil {
		t.Fatal(err)
	}
	raw, ok := decoded.Assignment.([]byte)
	if !ok || len(raw) != 3 {
		t.Fatalf("expected raw passthrough bytes, got %T: %v", decoded.Assignment, decoded.Assignment)
	}
}
