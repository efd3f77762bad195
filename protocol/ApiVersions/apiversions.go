// Package ApiVersions implements the ApiVersions API (key 18): asking a
// broker which protocol versions it supports for every api key, typically
// the first request sent on a freshly opened connection.
package ApiVersions

import (
	"github.com/jtarrio/kafkacore/proto"
	"github.com/jtarrio/kafkacore/protocol"
)

// Request is the (empty) ApiVersions request body.
type Request struct{}

// Response is the ApiVersions response body.
type Response struct {
	ErrorCode protocol.ErrorCode
	ApiKeys   []ApiKeyVersion
}

type ApiKeyVersion struct {
	ApiKey     int16
	MinVersion int16
	MaxVersion int16
}

// Encode writes the ApiVersions request body, which carries no fields.
func Encode(w *proto.Writer, req *Request, apiVersion int16) error {
	return nil
}

// Decode reads an ApiVersions response body.
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
		v := ApiKeyVersion{}
		if v.ApiKey, err = r.ReadInt16(); err != nil {
			return nil, err
		}
		if v.MinVersion, err = r.ReadInt16(); err != nil {
			return nil, err
		}
		if v.MaxVersion, err = r.ReadInt16(); err != nil {
			return nil, err
		}
		resp.ApiKeys = append(resp.ApiKeys, v)
	}
	return resp, nil
}
