package protocol

import (
	"bytes"
	"testing"

	"github.com/jtarrio/kafkacore/proto"
)

func TestWriteRequestHeaderFixture(t *testing.T) {
	want := []byte{0, 18, 0, 0, 7, 91, 205, 21, 0, 4, 't', 'e', 's', 't'}
	clientID := "test"
	w := proto.NewWriter()
	WriteRequestHeader(w, ApiVersions, 0, 123456789, &clientID)
	if !bytes.Equal(w.Bytes(), want) {
		t.Fatalf("header mismatch:\n got  %v\n want %v", w.Bytes(), want)
	}
}

func TestFrameLength(t *testing.T) {
	body := []byte{1, 2, 3}
	framed := Frame(body)
	if len(framed) != 7 {
		t.Fatalf("expected 7 bytes, got %d", len(framed))
	}
	r := proto.NewReader(framed)
	n, err := r.ReadInt32()
	if err != nil {
		t.Fatal(err)
	}
	if n != 3 {
		t.Fatalf("expected length 3, got %d", n)
	}
}

func TestGroupByTopicPartitionOrderAndTieBreak(t *testing.T) {
	type item struct {
		topic     string
		partition int32
		val       int
	}
	items := []item{
		{"b", 0, 1},
		{"a", 1, 2},
		{"a", 0, 3},
		{"a", 1, 4},
		{"b", 0, 5},
	}
	groups := GroupByTopicPartition(items,
		func(i item) string { return i.topic },
		func(i item) int32 { return i.partition },
	)
	if len(groups) != 2 || groups[0].Topic != "b" || groups[1].Topic != "a" {
		t.Fatalf("expected topic order [b, a] (first occurrence), got %+v", groups)
	}
	a := groups[1]
	if len(a.Partitions) != 2 || a.Partitions[0].Partition != 1 || a.Partitions[1].Partition != 0 {
		t.Fatalf("expected partition order [1, 0] within topic a, got %+v", a.Partitions)
	}
	if len(a.Partitions[0].Items) != 2 || a.Partitions[0].Items[0].val != 2 || a.Partitions[0].Items[1].val != 4 {
		t.Fatalf("expected partition 1 items in original order [2, 4], got %+v", a.Partitions[0].Items)
	}
}

func TestReadCorrelationID(t *testing.T) {
	w := proto.NewWriter()
	w.WriteInt32(99) // pretend leading frame size
	w.WriteInt32(42)
	id, err := ReadCorrelationID(proto.NewReader(w.Bytes()), true)
	if err != nil {
		t.Fatal(err)
	}
	if id != 42 {
		t.Fatalf("expected correlation id 42, got %d", id)
	}

	w2 := proto.NewWriter()
	w2.WriteInt32(7)
	id2, err := ReadCorrelationID(proto.NewReader(w2.Bytes()), false)
	if err != nil {
		t.Fatal(err)
	}
	if id2 != 7 {
		t.Fatalf("expected correlation id 7, got %d", id2)
	}
}
