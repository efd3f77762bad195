// Package LeaveGroup implements the LeaveGroup API (key 13): a member's
// voluntary departure from a consumer group, triggering an immediate
// rebalance rather than waiting for its session to time out.
package LeaveGroup

import (
	"github.com/jtarrio/kafkacore/proto"
	"github.com/jtarrio/kafkacore/protocol"
)

// Request is the LeaveGroup request body.
type Request struct {
	GroupId  string
	MemberId string
}

// Response is the LeaveGroup response body.
type Response struct {
	ErrorCode protocol.ErrorCode
}

// Encode writes the LeaveGroup request body.
func Encode(w *proto.Writer, req *Request, apiVersion int16) error {
	w.WriteString(req.GroupId)
	w.WriteString(req.MemberId)
	return nil
}

// Decode reads a LeaveGroup response body.
func Decode(r *proto.Reader, apiVersion int16) (*Response, error) {
	code, err := r.ReadInt16()
	if err != nil {
		return nil, err
	}
	return &Response{ErrorCode: protocol.ErrorCode(code)}, nil
}
