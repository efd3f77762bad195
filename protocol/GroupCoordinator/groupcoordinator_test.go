package GroupCoordinator

import (
	"testing"

	"github.com/jtarrio/kafkacore/proto"
)

func TestEncodeOmitsKeyTypeAtV0(t *testing.T) {
	w := proto.NewWriter()
	if err := Encode(w, &Request{GroupId: "g", KeyType: CoordinatorTransaction}, 0); err != nil {
		t.Fatal(err)
	}
	want := proto.NewWriter()
	want.WriteString("g")
	if string(w.Bytes()) != string(want.Bytes()) {
		t.Fatalf("expected key_type omitted at v0, got %v", w.Bytes())
	}
}

func TestEncodeWritesKeyTypeAtV1(t *testing.T) {
	w := proto.NewWriter()
	if err := Encode(w, &Request{GroupId: "g", KeyType: CoordinatorTransaction}, 1); err != nil {
		t.Fatal(err)
	}
	r := proto.NewReader(w.Bytes())
	r.ReadNonNullString()
	keyType, _ := r.ReadInt8()
	if keyType != CoordinatorTransaction {
		t.Fatalf("expected key_type %d, got %d", CoordinatorTransaction, keyType)
	}
}

func TestDecodeResponse(t *testing.T) {
	w := proto.NewWriter()
	w.WriteInt16(0)          // error code
	w.WriteInt32(5)          // node id
	w.WriteString("broker1") // host
	w.WriteInt32(9092)       // port

	resp, err := Decode(proto.NewReader(w.Bytes()), 1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.Coordinator.NodeId != 5 || resp.Coordinator.Host != "broker1" || resp.Coordinator.Port != 9092 {
		t.Fatalf("unexpected response: %+v", resp)
	}
}
