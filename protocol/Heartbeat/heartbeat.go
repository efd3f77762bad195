// Package Heartbeat implements the Heartbeat API (key 12): a group
// member's periodic keep-alive, telling the coordinator it is still
// participating in its current generation.
package Heartbeat

import (
	"github.com/jtarrio/kafkacore/proto"
	"github.com/jtarrio/kafkacore/protocol"
)

// Request is the Heartbeat request body.
type Request struct {
	GroupId      string
	GenerationId int32
	MemberId     string
}

// Response is the Heartbeat response body.
type Response struct {
	ErrorCode protocol.ErrorCode
}

// Encode writes the Heartbeat request body.
func Encode(w *proto.Writer, req *Request, apiVersion int16) error {
	w.WriteString(req.GroupId)
	w.WriteInt32(req.GenerationId)
	w.WriteString(req.MemberId)
	return nil
}

// Decode reads a Heartbeat response body.
func Decode(r *proto.Reader, apiVersion int16) (*Response, error) {
	code, err := r.ReadInt16()
	if err != nil {
		return nil, err
	}
	return &Response{ErrorCode: protocol.ErrorCode(code)}, nil
}
