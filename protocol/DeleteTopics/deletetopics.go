// Package DeleteTopics implements the DeleteTopics API (key 20): an admin
// request to delete one or more topics by name.
package DeleteTopics

import (
	"github.com/jtarrio/kafkacore/proto"
	"github.com/jtarrio/kafkacore/protocol"
)

// Request is the DeleteTopics request body.
type Request struct {
	Topics    []string
	TimeoutMs int32
}

// Response is the DeleteTopics response body.
type Response struct {
	Topics []TopicResponse
}

type TopicResponse struct {
	Name      string
	ErrorCode protocol.ErrorCode
}

// Encode writes the DeleteTopics request body.
func Encode(w *proto.Writer, req *Request, apiVersion int16) error {
	w.WriteArrayLen(len(req.Topics))
	for _, t := range req.Topics {
		w.WriteString(t)
	}
	w.WriteInt32(req.TimeoutMs)
	return nil
}

// Decode reads a DeleteTopics response body.
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
		resp.Topics = append(resp.Topics, tr)
	}
	return resp, nil
}
