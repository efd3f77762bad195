// Package ListOffsets implements the Offset API (key 2), versions 0 and 1:
// resolving a timestamp (or the special Newest/Oldest markers) to a log
// offset for one or more topic-partitions.
package ListOffsets

import (
	"github.com/jtarrio/kafkacore/proto"
	"github.com/jtarrio/kafkacore/protocol"
)

// Special timestamp values meaning "the next offset to be written" and
// "the earliest offset still retained", respectively.
const (
	Newest = -1
	Oldest = -2
)

// PartitionRequest is one topic-partition's timestamp query.
type PartitionRequest struct {
	Topic     string
	Partition int32
	Timestamp int64
	// MaxOffsets bounds the size of the offsets array in a v0 response.
	// Ignored at v1.
	MaxOffsets int32
}

// Request is the ListOffsets request body, versions 0 and 1.
type Request struct {
	Partitions []PartitionRequest
}

// Response is the ListOffsets response body, versions 0 and 1. At v0,
// Offsets carries the (possibly multiple) matching offsets and Timestamp
// is always -1; at v1, Offsets carries at most one offset and Timestamp is
// meaningful.
type Response struct {
	Topics []TopicResponse
}

type TopicResponse struct {
	Topic      string
	Partitions []PartitionResponse
}

type PartitionResponse struct {
	Partition int32
	ErrorCode protocol.ErrorCode
	Timestamp int64
	Offsets   []int64
}

// Encode writes the ListOffsets request body for apiVersion (0 or 1).
func Encode(w *proto.Writer, req *Request, apiVersion int16) error {
	w.WriteInt32(-1) // replica_id
	if apiVersion >= 1 {
		w.WriteInt8(0) // isolation_level: read_uncommitted
	}
	groups := protocol.GroupByTopicPartition(req.Partitions,
		func(p PartitionRequest) string { return p.Topic },
		func(p PartitionRequest) int32 { return p.Partition },
	)
	w.WriteArrayLen(len(groups))
	for _, topicGroup := range groups {
		w.WriteString(topicGroup.Topic)
		var flat []PartitionRequest
		for _, part := range topicGroup.Partitions {
			flat = append(flat, part.Items...)
		}
		w.WriteArrayLen(len(flat))
		for _, p := range flat {
			w.WriteInt32(p.Partition)
			w.WriteInt64(p.Timestamp)
			if apiVersion == 0 {
				maxOffsets := p.MaxOffsets
				if maxOffsets == 0 {
					maxOffsets = 1
				}
				w.WriteInt32(maxOffsets)
			}
		}
	}
	return nil
}

// Decode reads a ListOffsets response body for apiVersion.
func Decode(r *proto.Reader, apiVersion int16) (*Response, error) {
	resp := &Response{}
	n, err := r.ReadArrayLen()
	if err != nil {
		return nil, err
	}
	for i := 0; i < n; i++ {
		topic, err := r.ReadNonNullString()
		if err != nil {
			return nil, err
		}
		tr := TopicResponse{Topic: topic}
		pn, err := r.ReadArrayLen()
		if err != nil {
			return nil, err
		}
		for j := 0; j < pn; j++ {
			pr := PartitionResponse{Timestamp: -1}
			if pr.Partition, err = r.ReadInt32(); err != nil {
				return nil, err
			}
			code, err := r.ReadInt16()
			if err != nil {
				return nil, err
			}
			pr.ErrorCode = protocol.ErrorCode(code)
			if apiVersion == 0 {
				on, err := r.ReadArrayLen()
				if err != nil {
					return nil, err
				}
				for k := 0; k < on; k++ {
					off, err := r.ReadInt64()
					if err != nil {
						return nil, err
					}
					pr.Offsets = append(pr.Offsets, off)
				}
			} else {
				if pr.Timestamp, err = r.ReadInt64(); err != nil {
					return nil, err
				}
				off, err := r.ReadInt64()
				if err != nil {
					return nil, err
				}
				pr.Offsets = []int64{off}
			}
			tr.Partitions = append(tr.Partitions, pr)
		}
		resp.Topics = append(resp.Topics, tr)
	}
	return resp, nil
}
