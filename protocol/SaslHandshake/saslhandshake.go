// Package SaslHandshake implements the SaslHandshake API (key 17): the
// client announces its chosen SASL mechanism and the broker confirms it
// (or lists the mechanisms it supports). The actual SASL exchange bytes
// that follow are an external collaborator's concern; this package only
// handles the handshake's own framing.
package SaslHandshake

import (
	"github.com/jtarrio/kafkacore/proto"
	"github.com/jtarrio/kafkacore/protocol"
)

// Request is the SaslHandshake request body.
type Request struct {
	Mechanism string
}

// Response is the SaslHandshake response body.
type Response struct {
	ErrorCode  protocol.ErrorCode
	Mechanisms []string
}

// Encode writes the SaslHandshake request body.
func Encode(w *proto.Writer, req *Request, apiVersion int16) error {
	w.WriteString(req.Mechanism)
	return nil
}

// Decode reads a SaslHandshake response body.
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
		m, err := r.ReadNonNullString()
		if err != nil {
			return nil, err
		}
		resp.Mechanisms = append(resp.Mechanisms, m)
	}
	return resp, nil
}
