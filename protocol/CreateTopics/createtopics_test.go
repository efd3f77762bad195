package CreateTopics

import (
	"testing"

	"github.com/jtarrio/kafkacore/proto"
)

func TestEncodeOmitsValidateOnlyAtV0(t *testing.T) {
	req := &Request{
		Topics:       []Topic{{Name: "t", NumPartitions: 3, ReplicationFactor: 2}},
		TimeoutMs:    1000,
		ValidateOnly: true,
	}
	w := proto.NewWriter()
	if err := Encode(w, req, 0); err != nil {
		t.Fatal(err)
	}
	r := proto.NewReader(w.Bytes())
	r.ReadArrayLen()      // topics
	r.ReadNonNullString() // name
	r.ReadInt32()         // num partitions
	r.ReadInt16()         // replication factor
	r.ReadArrayLen()      // assignments
	r.ReadArrayLen()      // configs
	timeoutMs, _ := r.ReadInt32()
	if timeoutMs != 1000 {
		t.Fatalf("expected timeout_ms to immediately follow topics at v0, got %d", timeoutMs)
	}
	if r.Remaining() != 0 {
		t.Fatalf("expected no validate_only field at v0, %d bytes left over", r.Remaining())
	}
}

func TestEncodeWritesAssignmentsAndConfigs(t *testing.T) {
	req := &Request{
		Topics: []Topic{{
			Name:        "t",
			Assignments: []Assignment{{PartitionIndex: 0, BrokerIds: []int32{1, 2}}},
			Configs:     []Config{{Name: "retention.ms", Value: "60000"}},
		}},
	}
	w := proto.NewWriter()
	if err := Encode(w, req, 1); err != nil {
		t.Fatal(err)
	}
	r := proto.NewReader(w.Bytes())
	r.ReadArrayLen()
	r.ReadNonNullString()
	r.ReadInt32()
	r.ReadInt16()
	assignmentCount, _ := r.ReadArrayLen()
	if assignmentCount != 1 {
		t.Fatalf("expected 1 assignment, got %d", assignmentCount)
	}
	partitionIndex, _ := r.ReadInt32()
	brokerCount, _ := r.ReadArrayLen()
	if partitionIndex != 0 || brokerCount != 2 {
		t.Fatalf("unexpected assignment: partition %d, %d brokers", partitionIndex, brokerCount)
	}
}

func TestDecodeResponseV1IncludesErrorMessage(t *testing.T) {
	w := proto.NewWriter()
	w.WriteArrayLen(1)
	w.WriteString("t")
	w.WriteInt16(36) // INVALID_REPLICATION_FACTOR-ish error code, arbitrary
	w.WriteNullableString(strPtr("replication factor too high"))

	resp, err := Decode(proto.NewReader(w.Bytes()), 1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.Topics[0].ErrorMessage != "replication factor too high" {
		t.Fatalf("unexpected error message: %q", resp.Topics[0].ErrorMessage)
	}
}

func strPtr(s string) *string { return &s }
