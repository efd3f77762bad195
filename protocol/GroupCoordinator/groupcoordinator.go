// Package GroupCoordinator implements the GroupCoordinator API (key 10,
// named FindCoordinator in later protocol documentation): resolving which
// broker is the coordinator for a given consumer group.
package GroupCoordinator

import (
	"github.com/jtarrio/kafkacore/proto"
	"github.com/jtarrio/kafkacore/protocol"
)

const (
	CoordinatorGroup       int8 = 0
	CoordinatorTransaction int8 = 1
)

// Request is the GroupCoordinator request body.
type Request struct {
	GroupId string
	KeyType int8
}

// Response is the GroupCoordinator response body.
type Response struct {
	ErrorCode   protocol.ErrorCode
	Coordinator Broker
}

type Broker struct {
	NodeId int32
	Host   string
	Port   int32
}

// Encode writes the GroupCoordinator request body.
func Encode(w *proto.Writer, req *Request, apiVersion int16) error {
	w.WriteString(req.GroupId)
	if apiVersion >= 1 {
		w.WriteInt8(req.KeyType)
	}
	return nil
}

// Decode reads a GroupCoordinator response body.
func Decode(r *proto.Reader, apiVersion int16) (*Response, error) {
	resp := &Response{}
	code, err := r.ReadInt16()
	if err != nil {
		return nil, err
	}
	resp.ErrorCode = protocol.ErrorCode(code)
	if resp.Coordinator.NodeId, err = r.ReadInt32(); err != nil {
		return nil, err
	}
	if resp.Coordinator.Host, err = r.ReadNonNullString(); err != nil {
		return nil, err
	}
	if resp.Coordinator.Port, err = r.ReadInt32(); err != nil {
		return nil, err
	}
	return resp, nil
}
