// Package Produce implements the Produce API (key 0), versions 0 through 2:
// appending message sets to one or more topic-partitions in a single
// request, grouped by (topic, partition) and compressed per the caller's
// chosen codec.
package Produce

import (
	"fmt"
	"time"

	"github.com/jtarrio/kafkacore/message"
	"github.com/jtarrio/kafkacore/proto"
	"github.com/jtarrio/kafkacore/protocol"
)

// Record is one caller-supplied message destined for a topic-partition.
type Record struct {
	Topic     string
	Partition int32
	Key       []byte
	Value     []byte
}

// Request is the Produce request body (everything after the common
// header). Acks and TimeoutMs are always present; Records is grouped into
// the wire's nested topic/partition shape at encode time.
type Request struct {
	Acks      int16
	TimeoutMs int32
	Codec     int8
	Records   []Record
}

// Response is the Produce response body, versions 0 through 2.
type Response struct {
	Topics         []TopicResponse
	ThrottleTimeMs int32 // v1+; zero at v0
}

type TopicResponse struct {
	Topic      string
	Partitions []PartitionResponse
}

type PartitionResponse struct {
	Partition int32
	ErrorCode protocol.ErrorCode
	// BaseOffset is the offset of the first message the broker assigned.
	BaseOffset int64
	// LogAppendTime is set at v≥2 when the topic's timestamp type is
	// LogAppendTime; otherwise -1.
	LogAppendTime int64
}

// Encode writes the Produce request body for apiVersion (0, 1, or 2). now
// is used as the message timestamp for magic≥1 messages; onMessages, if
// non-nil, is invoked once with the message count and the encoded and
// compressed sizes of the record-set payload (RequestContext's Produce
// telemetry hook).
func Encode(w *proto.Writer, req *Request, apiVersion int16, now time.Time, onMessages func(count, requestBytes, compressedBytes int)) error {
	w.WriteInt16(req.Acks)
	w.WriteInt32(req.TimeoutMs)

	groups := protocol.GroupByTopicPartition(req.Records,
		func(r Record) string { return r.Topic },
		func(r Record) int32 { return r.Partition },
	)
	w.WriteArrayLen(len(groups))
	totalMessages := 0
	totalRequestBytes := 0
	totalCompressedBytes := 0
	for _, topicGroup := range groups {
		w.WriteString(topicGroup.Topic)
		w.WriteArrayLen(len(topicGroup.Partitions))
		for _, part := range topicGroup.Partitions {
			w.WriteInt32(part.Partition)
			var msgs []*message.Message
			for _, rec := range part.Items {
				msgs = append(msgs, message.New(rec.Key, rec.Value))
			}
			lenBefore := w.Len()
			saved, err := message.Encode(w, msgs, req.Codec, now)
			if err != nil {
				return fmt.Errorf("error encoding records for %s/%d: %w", topicGroup.Topic, part.Partition, err)
			}
			totalMessages += len(msgs)
			onWire := w.Len() - lenBefore
			totalRequestBytes += onWire + saved
			totalCompressedBytes += onWire
		}
	}
	if onMessages != nil {
		onMessages(totalMessages, totalRequestBytes, totalCompressedBytes)
	}
	return nil
}

// Decode reads a Produce response body for apiVersion.
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
			pr := PartitionResponse{LogAppendTime: -1}
			if pr.Partition, err = r.ReadInt32(); err != nil {
				return nil, err
			}
			code, err := r.ReadInt16()
			if err != nil {
				return nil, err
			}
			pr.ErrorCode = protocol.ErrorCode(code)
			if pr.BaseOffset, err = r.ReadInt64(); err != nil {
				return nil, err
			}
			if apiVersion >= 2 {
				if pr.LogAppendTime, err = r.ReadInt64(); err != nil {
					return nil, err
				}
			}
			tr.Partitions = append(tr.Partitions, pr)
		}
		resp.Topics = append(resp.Topics, tr)
	}
	if apiVersion >= 1 {
		if resp.ThrottleTimeMs, err = r.ReadInt32(); err != nil {
			return nil, err
		}
	}
	return resp, nil
}

// ExpectsResponse reports whether a Produce request with the given acks
// setting has a response frame at all. acks=0 means fire-and-forget: the
// connection multiplexer must not register a correlation slot for it.
func ExpectsResponse(acks int16) bool { return acks != 0 }
