// Package OffsetFetch implements the OffsetFetch API (key 9): retrieving a
// consumer group's previously committed offsets for one or more
// topic-partitions.
package OffsetFetch

import (
	"github.com/jtarrio/kafkacore/proto"
	"github.com/jtarrio/kafkacore/protocol"
)

// PartitionRequest names a topic-partition whose committed offset is
// wanted.
type PartitionRequest struct {
	Topic     string
	Partition int32
}

// Request is the OffsetFetch request body.
type Request struct {
	GroupId    string
	Partitions []PartitionRequest
}

// Response is the OffsetFetch response body.
type Response struct {
	Topics []TopicResponse
}

type TopicResponse struct {
	Topic      string
	Partitions []PartitionResponse
}

type PartitionResponse struct {
	Partition int32
	Offset    int64
	Metadata  string
	ErrorCode protocol.ErrorCode
}

// Encode writes the OffsetFetch request body.
func Encode(w *proto.Writer, req *Request, apiVersion int16) error {
	w.WriteString(req.GroupId)
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
		}
	}
	return nil
}

// Decode reads an OffsetFetch response body.
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
			if pr.Offset, err = r.ReadInt64(); err != nil {
				return nil, err
			}
			if pr.Metadata, err = r.ReadNonNullString(); err != nil {
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
