// Package ListGroups implements the ListGroups API (key 16): enumerating
// every consumer group a broker knows about, with no input parameters.
package ListGroups

import (
	"github.com/jtarrio/kafkacore/proto"
	"github.com/jtarrio/kafkacore/protocol"
)

// Request is the (empty) ListGroups request body.
type Request struct{}

// Response is the ListGroups response body.
type Response struct {
	ErrorCode protocol.ErrorCode
	Groups    []Group
}

type Group struct {
	GroupId      string
	ProtocolType string
}

// Encode writes the ListGroups request body, which carries no fields.
func Encode(w *proto.Writer, req *Request, apiVersion int16) error {
	return nil
}

// Decode reads a ListGroups response body.
func Decode(r *proto.Reader, apiVersion int16) (*Response, error) {
	resp := &Response{}
	code, err := r.ReadInt16()
	if err != nil {
		return nil, err
	}
	resp.ErrorCode = protocol.ErrorCode(code)
	n, err := r.ReadArrayLen()
	if err != nil {
		return nil, err
	}
	for i := 0; i < n; i++ {
		g := Group{}
		if g.GroupId, err = r.ReadNonNullString(); err != nil {
			return nil, err
		}
		if g.ProtocolType, err = r.ReadNonNullString(); err != nil {
			return nil, err
		}
		resp.Groups = append(resp.Groups, g)
	}
	return resp, nil
}
