// Package CreateTopics implements the CreateTopics API (key 19): an admin
// request to create one or more topics, either letting the broker choose
// partition/replica placement or pinning it explicitly per partition.
package CreateTopics

import (
	"github.com/jtarrio/kafkacore/proto"
	"github.com/jtarrio/kafkacore/protocol"
)

// Request is the CreateTopics request body.
type Request struct {
	Topics       []Topic
	TimeoutMs    int32
	ValidateOnly bool
}

type Topic struct {
	Name      string
	// NumPartitions and ReplicationFactor are ignored when Assignments
	// is non-empty.
	NumPartitions     int32
	ReplicationFactor int16
	Assignments       []Assignment
	Configs           []Config
}

type Assignment struct {
	PartitionIndex int32
	BrokerIds      []int32
}

type Config struct {
	Name  string
	Value string
}

// Response is the CreateTopics response body.
type Response struct {
	Topics []TopicResponse
}

type TopicResponse struct {
	Name         string
	ErrorCode    protocol.ErrorCode
	ErrorMessage string
}

// Encode writes the CreateTopics request body.
func Encode(w *proto.Writer, req *Request, apiVersion int16) error {
	w.WriteArrayLen(len(req.Topics))
	for _, t := range req.Topics {
		w.WriteString(t.Name)
		w.WriteInt32(t.NumPartitions)
		w.WriteInt16(t.ReplicationFactor)
		w.WriteArrayLen(len(t.Assignments))
		for _, a := range t.Assignments {
			w.WriteInt32(a.PartitionIndex)
			w.WriteArrayLen(len(a.BrokerIds))
			for _, b := range a.BrokerIds {
				w.WriteInt32(b)
			}
		}
		w.WriteArrayLen(len(t.Configs))
		for _, c := range t.Configs {
			w.WriteString(c.Name)
			w.WriteNullableString(&c.Value)
		}
	}
	w.WriteInt32(req.TimeoutMs)
	if apiVersion >= 1 {
		w.WriteBool(req.ValidateOnly)
	}
	return nil
}

// Decode reads a CreateTopics response body.
func Decode(r *proto.Reader, apiVersion int16) (*Response, error) {
	resp := &Response{}
	n, err := r.ReadArrayLen()
	if err != nil {
		return nil, err
	}
	for i := 0; i < n; i++ {
		tr := TopicResponse{}
		if tr.Name, err = r.ReadNonNullString(); err != nil {
			return nil, err
		}
		code, err := r.ReadInt16()
		if err != nil {
			return nil, err
		}
		tr.ErrorCode = protocol.ErrorCode(code)
		if apiVersion >= 1 {
			msg, err := r.ReadString()
			if err != nil {
				return nil, err
			}
			if msg != nil {
				tr.ErrorMessage = *msg
			}
		}
		resp.Topics = append(resp.Topics, tr)
	}
	return resp, nil
}
