// Package Fetch implements the Fetch API (key 1), versions 0 through 3:
// pulling message sets for one or more topic-partitions starting at a
// given offset, with a bound on how long the broker may wait to
// accumulate min_bytes before responding.
package Fetch

import (
	"github.com/jtarrio/kafkacore/message"
	"github.com/jtarrio/kafkacore/proto"
	"github.com/jtarrio/kafkacore/protocol"
)

// PartitionRequest is one topic-partition's fetch parameters.
type PartitionRequest struct {
	Topic             string
	Partition         int32
	FetchOffset       int64
	PartitionMaxBytes int32
}

// Request is the Fetch request body, versions 0 through 3.
type Request struct {
	MaxWaitTimeMs int32
	MinBytes      int32
	// MaxBytes is the overall response size cap; only written at v≥3.
	MaxBytes   int32
	Partitions []PartitionRequest
}

// Response is the Fetch response body, versions 0 through 3.
type Response struct {
	ThrottleTimeMs int32 // v≥1; zero at v0
	Topics         []TopicResponse
}

type TopicResponse struct {
	Topic      string
	Partitions []PartitionResponse
}

type PartitionResponse struct {
	Partition      int32
	ErrorCode      protocol.ErrorCode
	HighWatermark  int64
	LogStartOffset int64
	Messages       []*message.Message
}

// Encode writes the Fetch request body for apiVersion (0 through 3).
func Encode(w *proto.Writer, req *Request, apiVersion int16) error {
	w.WriteInt32(-1) // replica_id, always -1 for a non-broker client
	w.WriteInt32(req.MaxWaitTimeMs)
	w.WriteInt32(req.MinBytes)
	if apiVersion >= 3 {
		w.WriteInt32(req.MaxBytes)
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
			w.WriteInt64(p.FetchOffset)
			w.WriteInt32(p.PartitionMaxBytes)
		}
	}
	return nil
}

// Decode reads a Fetch response body for apiVersion.
func Decode(r *proto.Reader, apiVersion int16) (*Response, error) {
	resp := &Response{}
	if apiVersion >= 1 {
		n, err := r.ReadInt32()
		if err != nil {
			return nil, err
		}
		resp.ThrottleTimeMs = n
	}
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
			if pr.HighWatermark, err = r.ReadInt64(); err != nil {
				return nil, err
			}
			pr.LogStartOffset = -1
			if pr.Messages, err = message.Decode(r); err != nil {
				return nil, err
			}
			tr.Partitions = append(tr.Partitions, pr)
		}
		resp.Topics = append(resp.Topics, tr)
	}
	return resp, nil
}
