// Package JoinGroup implements the JoinGroup API (key 11): a member's
// request to join (or rejoin) a consumer group, advertising one candidate
// protocol per supported protocol name. The per-protocol metadata bytes
// are opaque to this package; encoding and decoding them is delegated to
// whatever membership.Encoder is registered for the request's protocol
// type.
package JoinGroup

import (
	"fmt"

	"github.com/jtarrio/kafkacore/membership"
	"github.com/jtarrio/kafkacore/proto"
	"github.com/jtarrio/kafkacore/protocol"
)

// GroupProtocol is one candidate protocol a member is willing to speak,
// paired with its protocol-specific metadata (e.g. a *membership.ConsumerMetadata
// for protocol_type "consumer").
type GroupProtocol struct {
	Name     string
	Metadata interface{}
}

// Request is the JoinGroup request body.
type Request struct {
	GroupId            string
	SessionTimeoutMs   int32
	RebalanceTimeoutMs int32
	MemberId           string
	ProtocolType       string
	Protocols          []GroupProtocol
}

// Response is the JoinGroup response body.
type Response struct {
	ErrorCode    protocol.ErrorCode
	GenerationId int32
	ProtocolName string
	LeaderId     string
	MemberId     string
	// Members is populated only for the member elected group leader;
	// every other member receives an empty slice.
	Members []Member
}

// Member is one group member's identity and advertised metadata, as seen
// by the elected leader.
type Member struct {
	MemberId string
	Metadata interface{}
}

// Encode writes the JoinGroup request body, encoding each protocol's
// metadata via the Encoders registry carried by ctx. For a protocol type
// with no registered encoder, []byte metadata is passed through unchanged
// and any other metadata value is rejected. RebalanceTimeoutMs is written only at
// apiVersion 1 and above; it does not exist on the wire at v0.
//
// A first-time join leaves Request.MemberId empty; Encode fills in a
// client-generated candidate id (see membership.NewMemberID) rather than
// sending the empty string, the same way real consumers propose a member
// id up front instead of always waiting on the broker to assign one.
func Encode(w *proto.Writer, ctx *protocol.Context, req *Request, apiVersion int16) error {
	w.WriteString(req.GroupId)
	w.WriteInt32(req.SessionTimeoutMs)
	if apiVersion >= 1 {
		w.WriteInt32(req.RebalanceTimeoutMs)
	}
	memberID := req.MemberId
	if memberID == "" && ctx.ClientID != nil {
		memberID = membership.NewMemberID(*ctx.ClientID)
	}
	w.WriteString(memberID)
	w.WriteString(req.ProtocolType)
	w.WriteArrayLen(len(req.Protocols))
	enc, hasEncoder := ctx.Encoders.Lookup(req.ProtocolType)
	for _, p := range req.Protocols {
		w.WriteString(p.Name)
		scope := w.MarkLength()
		if hasEncoder {
			if err := enc.EncodeMetadata(w, p.Metadata); err != nil {
				return fmt.Errorf("error encoding metadata for protocol %s: %w", p.Name, err)
			}
		} else if raw, ok := p.Metadata.([]byte); ok {
			w.WriteRaw(raw)
		} else {
			return fmt.Errorf("no encoder registered for protocol type %q and metadata is not raw bytes", req.ProtocolType)
		}
		scope.Close()
	}
	return nil
}

// Decode reads a JoinGroup response body, decoding each member's metadata
// via ctx's registry for ctx.ProtocolType. If no encoder is registered,
// Metadata is the raw opaque bytes.
func Decode(r *proto.Reader, ctx *protocol.Context) (*Response, error) {
	resp := &Response{}
	code, err := r.ReadInt16()
	if err != nil {
		return nil, err
	}
	resp.ErrorCode = protocol.ErrorCode(code)
	if resp.GenerationId, err = r.ReadInt32(); err != nil {
		return nil, err
	}
	if resp.ProtocolName, err = r.ReadNonNullString(); err != nil {
		return nil, err
	}
	if resp.LeaderId, err = r.ReadNonNullString(); err != nil {
		return nil, err
	}
	if resp.MemberId, err = r.ReadNonNullString(); err != nil {
		return nil, err
	}
	// The response echoes the chosen protocol's name (e.g. "range"), not the
	// protocol type ("consumer") the registry is keyed by -- use ctx's, the
	// same one the matching Encode call was given.
	enc, hasEncoder := ctx.Encoders.Lookup(ctx.ProtocolType)
	n, err := r.ReadArrayLen()
	if err != nil {
		return nil, err
	}
	for i := 0; i < n; i++ {
		m := Member{}
		if m.MemberId, err = r.ReadNonNullString(); err != nil {
			return nil, err
		}
		raw, err := r.ReadBytes()
		if err != nil {
			return nil, err
		}
		if hasEncoder {
			md, err := enc.DecodeMetadata(resp.ProtocolName, proto.NewReader(raw))
			if err != nil {
				return nil, fmt.Errorf("error decoding metadata for member %s: %w", m.MemberId, err)
			}
			m.Metadata = md
		} else {
			m.Metadata = raw
		}
		resp.Members = append(resp.Members, m)
	}
	return resp, nil
}
