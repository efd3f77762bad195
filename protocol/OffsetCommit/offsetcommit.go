// Package OffsetCommit implements the OffsetCommit API (key 8), versions 0
// through 2: persisting a consumer group's committed offsets for one or
// more topic-partitions.
package OffsetCommit

import (
	"github.com/jtarrio/kafkacore/proto"
	"github.com/jtarrio/kafkacore/protocol"
)

// PartitionRequest is one topic-partition's offset commit.
type PartitionRequest struct {
	Topic     string
	Partition int32
	Offset    int64
	Metadata  string
}

// Request is the OffsetCommit request body, versions 0 through 2.
type Request struct {
	GroupId string
	// GenerationId and MemberId are written at v≥1. Use GenerationId=-1,
	// MemberId="" for a simple (non-group) commit.
	GenerationId int32
	MemberId     string
	// RetentionTimeMs is written at v≥2; -1 means "broker default".
	RetentionTimeMs int64
	Partitions      []PartitionRequest
}

// Response is the OffsetCommit response body, versions 0 through 2.
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
}

// Encode writes the OffsetCommit request body for apiVersion (0 through 2).
func Encode(w *proto.Writer, req *Request, apiVersion int16) error {
	w.WriteString(req.GroupId)
	if apiVersion >= 1 {
		w.WriteInt32(req.GenerationId)
		w.WriteString(req.MemberId)
	}
	if apiVersion >= 2 {
		w.WriteInt64(req.RetentionTimeMs)
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
			w.WriteInt64(p.Offset)
			w.WriteString(p.Metadata)
		}
	}
	return nil
}

// Decode reads an OffsetCommit response body for apiVersion.
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
			pr := PartitionResponse{}
			if pr.Partition, err = r.ReadInt32(); err != nil {
				return nil, err
			}
			code, err := r.ReadInt16()
			if err != nil {
				return nil, err
			}
			pr.ErrorCode = protocol.ErrorCode(code)
			tr.Partitions = append(tr.Partitions, pr)
		}
		resp.Topics = append(resp.Topics, tr)
	}
	return resp, nil
}
