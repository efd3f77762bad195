// Package membership implements the pluggable codecs for the opaque
// metadata and assignment byte blobs carried inside the consumer-group
// APIs (JoinGroup, SyncGroup, DescribeGroups). The wire codec in package
// protocol never interprets these bytes itself: it looks up an Encoder by
// protocol_type and, if none is registered, passes the bytes through
// unchanged.
package membership

import (
	"github.com/jtarrio/kafkacore/proto"
)

// Encoder encodes and decodes the metadata a group member advertises when
// joining a group, and the assignment the leader hands back in SyncGroup,
// for one protocol_type (e.g. "consumer").
type Encoder interface {
	EncodeMetadata(w *proto.Writer, metadata interface{}) error
	DecodeMetadata(protocolName string, r *proto.Reader) (interface{}, error)
	EncodeAssignment(w *proto.Writer, assignment interface{}) error
	DecodeAssignment(r *proto.Reader) (interface{}, error)
}

// Registry maps a protocol_type to the Encoder that understands it. The
// zero value is an empty, ready-to-use registry (no lookups succeed;
// callers fall back to raw passthrough).
type Registry struct {
	encoders map[string]Encoder
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{encoders: make(map[string]Encoder)}
}

// Register associates protocolType with enc. Registering under a name that
// already has an Encoder replaces it.
func (r *Registry) Register(protocolType string, enc Encoder) {
	if r.encoders == nil {
		r.encoders = make(map[string]Encoder)
	}
	r.encoders[protocolType] = enc
}

// Lookup returns the Encoder registered for protocolType, or nil (and
// false) if none is registered -- in which case callers must treat the
// metadata/assignment bytes as opaque and pass them through unchanged.
func (r *Registry) Lookup(protocolType string) (Encoder, bool) {
	if r == nil || r.encoders == nil {
		return nil, false
	}
	enc, ok := r.encoders[protocolType]
	return enc, ok
}

// Clone returns a shallow copy sharing the same underlying Encoder values.
// Context derivation (WithCorrelation, WithAPIVersion) does not call it:
// derived contexts share the same *Registry.
func (r *Registry) Clone() *Registry {
	if r == nil {
		return NewRegistry()
	}
	cp := NewRegistry()
	for k, v := range r.encoders {
		cp.encoders[k] = v
	}
	return cp
}
