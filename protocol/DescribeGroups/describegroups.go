// Package DescribeGroups implements the DescribeGroups API (key 15):
// retrieving the current state, protocol, and membership of one or more
// consumer groups. Like JoinGroup and SyncGroup, each member's metadata
// and assignment bytes are opaque to this package and delegated to the
// registered membership.Encoder for the group's protocol type.
package DescribeGroups

import (
	"fmt"

	"github.com/jtarrio/kafkacore/proto"
	"github.com/jtarrio/kafkacore/protocol"
)

// Request is the DescribeGroups request body.
type Request struct {
	GroupIds []string
}

// Response is the DescribeGroups response body.
type Response struct {
	Groups []GroupDescription
}

type GroupDescription struct {
	ErrorCode    protocol.ErrorCode
	GroupId      string
	State        string
	ProtocolType string
	Protocol     string
	Members      []Member
}

type Member struct {
	MemberId   string
	ClientId   string
	ClientHost string
	Metadata   interface{}
	Assignment interface{}
}

// Encode writes the DescribeGroups request body.
func Encode(w *proto.Writer, req *Request, apiVersion int16) error {
	w.WriteArrayLen(len(req.GroupIds))
	for _, g := range req.GroupIds {
		w.WriteString(g)
	}
	return nil
}

// Decode reads a DescribeGroups response body, decoding each member's
// metadata and assignment via ctx's registry for the group's protocol type.
func Decode(r *proto.Reader, ctx *protocol.Context, apiVersion int16) (*Response, error) {
	resp := &Response{}
	n, err := r.ReadArrayLen()
	if err != nil {
		return nil, err
	}
	for i := 0; i < n; i++ {
		g := GroupDescription{}
		code, err := r.ReadInt16()
		if err != nil {
			return nil, err
		}
		g.ErrorCode = protocol.ErrorCode(code)
		if g.GroupId, err = r.ReadNonNullString(); err != nil {
			return nil, err
		}
		if g.State, err = r.ReadNonNullString(); err != nil {
			return nil, err
		}
		if g.ProtocolType, err = r.ReadNonNullString(); err != nil {
			return nil, err
		}
		if g.Protocol, err = r.ReadNonNullString(); err != nil {
			return nil, err
		}
		enc, hasEncoder := ctx.Encoders.Lookup(g.ProtocolType)
		mn, err := r.ReadArrayLen()
		if err != nil {
			return nil, err
		}
		for j := 0; j < mn; j++ {
			m := Member{}
			if m.MemberId, err = r.ReadNonNullString(); err != nil {
				return nil, err
			}
			if m.ClientId, err = r.ReadNonNullString(); err != nil {
				return nil, err
			}
			if m.ClientHost, err = r.ReadNonNullString(); err != nil {
				return nil, err
			}
			metaRaw, err := r.ReadBytes()
			if err != nil {
				return nil, err
			}
			assignRaw, err := r.ReadBytes()
			if err != nil {
				return nil, err
			}
			if hasEncoder {
				md, err := enc.DecodeMetadata(g.Protocol, proto.NewReader(metaRaw))
				if err != nil {
					return nil, fmt.Errorf("error decoding metadata for member %s: %w", m.MemberId, err)
				}
				m.Metadata = md
				as, err := enc.DecodeAssignment(proto.NewReader(assignRaw))
				if err != nil {
					return nil, fmt.Errorf("error decoding assignment for member %s: %w", m.MemberId, err)
				}
				m.Assignment = as
			} else {
				m.Metadata = metaRaw
				m.Assignment = assignRaw
			}
			g.Members = append(g.Members, m)
		}
		resp.Groups = append(resp.Groups, g)
	}
	return resp, nil
}
