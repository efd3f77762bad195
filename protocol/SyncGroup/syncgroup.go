// Package SyncGroup implements the SyncGroup API (key 14): the group
// leader distributes per-member assignments, and every member (including
// the leader) retrieves its own. Assignment bytes are opaque to this
// package, same as JoinGroup's metadata; see membership.Encoder.
package SyncGroup

import (
	"fmt"

	"github.com/jtarrio/kafkacore/proto"
	"github.com/jtarrio/kafkacore/protocol"
)

// MemberAssignment pairs a member id with its protocol-specific assignment
// (e.g. a *membership.ConsumerAssignment), present only in the leader's
// request.
type MemberAssignment struct {
	MemberId   string
	Assignment interface{}
}

// Request is the SyncGroup request body. Assignments is empty for
// non-leader members.
type Request struct {
	GroupId      string
	GenerationId int32
	MemberId     string
	ProtocolType string
	Assignments  []MemberAssignment
}

// Response is the SyncGroup response body: this member's own assignment.
type Response struct {
	ErrorCode  protocol.ErrorCode
	Assignment interface{}
}

// Encode writes the SyncGroup request body, encoding each member's
// assignment via ctx's registry for req.ProtocolType.
func Encode(w *proto.Writer, ctx *protocol.Context, req *Request) error {
	w.WriteString(req.GroupId)
	w.WriteInt32(req.GenerationId)
	w.WriteString(req.MemberId)
	w.WriteArrayLen(len(req.Assignments))
	enc, hasEncoder := ctx.Encoders.Lookup(req.ProtocolType)
	for _, a := range req.Assignments {
		w.WriteString(a.MemberId)
		scope := w.MarkLength()
		if hasEncoder {
			if err := enc.EncodeAssignment(w, a.Assignment); err != nil {
				return fmt.Errorf("error encoding assignment for member %s: %w", a.MemberId, err)
			}
		} else if raw, ok := a.Assignment.([]byte); ok {
			w.WriteRaw(raw)
		} else {
			return fmt.Errorf("no encoder registered for protocol type %q and assignment is not raw bytes", req.ProtocolType)
		}
		scope.Close()
	}
	return nil
}

// Decode reads a SyncGroup response body, decoding Assignment via ctx's
// registry for ctx.ProtocolType. If no encoder is registered, Assignment
// is the raw opaque bytes.
func Decode(r *proto.Reader, ctx *protocol.Context) (*Response, error) {
	resp := &Response{}
	code, err := r.ReadInt16()
	if err != nil {
		return nil, err
	}
	resp.ErrorCode = protocol.ErrorCode(code)
	raw, err := r.ReadBytes()
	if err != nil {
		return nil, err
	}
	if enc, ok := ctx.Encoders.Lookup(ctx.ProtocolType); ok {
		a, err := enc.DecodeAssignment(proto.NewReader(raw))
		if err != nil {
			return nil, fmt.Errorf("error decoding assignment: %w", err)
		}
		resp.Assignment = a
	} else {
		resp.Assignment = raw
	}
	return resp, nil
}
