// Package Metadata implements the Metadata API (key 3), versions 0 through
// 2: discovering brokers, topics, and partition leadership for either a
// named set of topics or (an absent topic list, encoded as -1) all topics.
package Metadata

import (
	"net"
	"strconv"

	"github.com/jtarrio/kafkacore/proto"
	"github.com/jtarrio/kafkacore/protocol"
)

// Request is the Metadata request body, versions 0 through 2. A nil Topics
// requests metadata for all topics (encoded as a -1 array length); an
// empty, non-nil Topics requests metadata for no topics.
type Request struct {
	Topics []string
}

// Response is the Metadata response body, versions 0 through 2.
type Response struct {
	Brokers []Broker
	// ClusterId is present at v≥2; empty otherwise.
	ClusterId string
	// ControllerId is present at v≥1; zero otherwise.
	ControllerId int32
	Topics       []TopicMetadata
}

type Broker struct {
	NodeId int32
	Host   string
	Port   int32
	// Rack is present at v≥1; empty otherwise.
	Rack string
}

func (b *Broker) Addr() string {
	return net.JoinHostPort(b.Host, strconv.Itoa(int(b.Port)))
}

type TopicMetadata struct {
	ErrorCode protocol.ErrorCode
	Topic     string
	// IsInternal is present at v≥1; false otherwise.
	IsInternal bool
	Partitions []PartitionMetadata
}

type PartitionMetadata struct {
	ErrorCode protocol.ErrorCode
	Partition int32
	Leader    int32
	Replicas  []int32
	Isr       []int32
}

// Encode writes the Metadata request body for apiVersion (0 through 2).
func Encode(w *proto.Writer, req *Request, apiVersion int16) error {
	if req.Topics == nil {
		w.WriteArrayLen(-1)
		return nil
	}
	w.WriteArrayLen(len(req.Topics))
	for _, t := range req.Topics {
		w.WriteString(t)
	}
	return nil
}

// Decode reads a Metadata response body for apiVersion.
func Decode(r *proto.Reader, apiVersion int16) (*Response, error) {
	resp := &Response{}
	bn, err := r.ReadArrayLen()
	if err != nil {
		return nil, err
	}
	for i := 0; i < bn; i++ {
		b := Broker{}
		if b.NodeId, err = r.ReadInt32(); err != nil {
			return nil, err
		}
		if b.Host, err = r.ReadNonNullString(); err != nil {
			return nil, err
		}
		if b.Port, err = r.ReadInt32(); err != nil {
			return nil, err
		}
		if apiVersion >= 1 {
			rack, err := r.ReadString()
			if err != nil {
				return nil, err
			}
			if rack != nil {
				b.Rack = *rack
			}
		}
		resp.Brokers = append(resp.Brokers, b)
	}
	if apiVersion >= 2 {
		if resp.ClusterId, err = r.ReadNonNullString(); err != nil {
			return nil, err
		}
	}
	if apiVersion >= 1 {
		if resp.ControllerId, err = r.ReadInt32(); err != nil {
			return nil, err
		}
	}
	tn, err := r.ReadArrayLen()
	if err != nil {
		return nil, err
	}
	for i := 0; i < tn; i++ {
		tm := TopicMetadata{}
		code, err := r.ReadInt16()
		if err != nil {
			return nil, err
		}
		tm.ErrorCode = protocol.ErrorCode(code)
		if tm.Topic, err = r.ReadNonNullString(); err != nil {
			return nil, err
		}
		if apiVersion >= 1 {
			if tm.IsInternal, err = r.ReadBool(); err != nil {
				return nil, err
			}
		}
		pn, err := r.ReadArrayLen()
		if err != nil {
			return nil, err
		}
		for j := 0; j < pn; j++ {
			pm := PartitionMetadata{}
			code, err := r.ReadInt16()
			if err != nil {
				return nil, err
			}
			pm.ErrorCode = protocol.ErrorCode(code)
			if pm.Partition, err = r.ReadInt32(); err != nil {
				return nil, err
			}
			if pm.Leader, err = r.ReadInt32(); err != nil {
				return nil, err
			}
			if pm.Replicas, err = readInt32Array(r); err != nil {
				return nil, err
			}
			if pm.Isr, err = readInt32Array(r); err != nil {
				return nil, err
			}
			tm.Partitions = append(tm.Partitions, pm)
		}
		resp.Topics = append(resp.Topics, tm)
	}
	return resp, nil
}

func readInt32Array(r *proto.Reader) ([]int32, error) {
	n, err := r.ReadArrayLen()
	if err != nil {
		return nil, err
	}
	out := make([]int32, 0, n)
	for i := 0; i < n; i++ {
		v, err := r.ReadInt32()
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// Leaders returns, for the named topic, the leader broker of each
// partition for which a leader is known.
func (r *Response) Leaders(topic string) map[int32]*Broker {
	byID := make(map[int32]*Broker, len(r.Brokers))
	for i := range r.Brokers {
		byID[r.Brokers[i].NodeId] = &r.Brokers[i]
	}
	leaders := make(map[int32]*Broker)
	for _, t := range r.Topics {
		if t.Topic != topic {
			continue
		}
		for _, p := range t.Partitions {
			if b, ok := byID[p.Leader]; ok {
				leaders[p.Partition] = b
			}
		}
	}
	return leaders
}
