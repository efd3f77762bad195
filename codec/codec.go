// Package codec dispatches request encoding and response decoding to the
// appropriate protocol/<ApiName> package by ApiKey. It is the only package
// that imports every per-API package, keeping protocol itself free of that
// fan-out and import-cycle-free with respect to its children.
package codec

import (
	"fmt"
	"time"

	"github.com/jtarrio/kafkacore/protocol"
	"github.com/jtarrio/kafkacore/protocol/ApiVersions"
	"github.com/jtarrio/kafkacore/protocol/CreateTopics"
	"github.com/jtarrio/kafkacore/protocol/DeleteTopics"
	"github.com/jtarrio/kafkacore/protocol/DescribeGroups"
	"github.com/jtarrio/kafkacore/protocol/Fetch"
	"github.com/jtarrio/kafkacore/protocol/GroupCoordinator"
	"github.com/jtarrio/kafkacore/protocol/Heartbeat"
	"github.com/jtarrio/kafkacore/protocol/JoinGroup"
	"github.com/jtarrio/kafkacore/protocol/LeaveGroup"
	"github.com/jtarrio/kafkacore/protocol/ListGroups"
	"github.com/jtarrio/kafkacore/protocol/ListOffsets"
	"github.com/jtarrio/kafkacore/protocol/Metadata"
	"github.com/jtarrio/kafkacore/protocol/OffsetCommit"
	"github.com/jtarrio/kafkacore/protocol/OffsetFetch"
	"github.com/jtarrio/kafkacore/protocol/Produce"
	"github.com/jtarrio/kafkacore/protocol/SaslHandshake"
	"github.com/jtarrio/kafkacore/protocol/SyncGroup"
	"github.com/jtarrio/kafkacore/proto"
)

// Request bundles an ApiKey with the opaque body the matching
// protocol/<ApiName> package expects, ready for Encode.
type Request struct {
	ApiKey     protocol.ApiKey
	ApiVersion int16
	Body       interface{}
}

// ErrUnsupportedApiVersion is returned by Encode/Decode when apiVersion
// falls outside the range this library implements for the given api key.
type ErrUnsupportedApiVersion struct {
	ApiKey     protocol.ApiKey
	ApiVersion int16
}

func (e *ErrUnsupportedApiVersion) Error() string {
	return fmt.Sprintf("codec: unsupported api version %d for %s", e.ApiVersion, e.ApiKey)
}

// versionRanges records the inclusive [min, max] api version this library
// accepts per api key.
var versionRanges = map[protocol.ApiKey][2]int16{
	protocol.Produce:          {0, 2},
	protocol.Fetch:            {0, 3},
	protocol.ListOffsets:      {0, 1},
	protocol.Metadata:         {0, 2},
	protocol.OffsetCommit:     {0, 2},
	protocol.OffsetFetch:      {0, 3},
	protocol.GroupCoordinator: {0, 1},
	protocol.JoinGroup:        {0, 2},
	protocol.Heartbeat:        {0, 1},
	protocol.LeaveGroup:       {0, 1},
	protocol.SyncGroup:        {0, 1},
	protocol.DescribeGroups:   {0, 1},
	protocol.ListGroups:       {0, 1},
	protocol.SaslHandshake:    {0, 1},
	protocol.ApiVersions:      {0, 1},
	protocol.CreateTopics:     {0, 2},
	protocol.DeleteTopics:     {0, 1},
}

// ExpectsResponse reports whether req has a response frame at all. Every
// request does except Produce with acks=0, which the broker never
// acknowledges.
func ExpectsResponse(req *Request) bool {
	if req.ApiKey == protocol.Produce {
		return Produce.ExpectsResponse(req.Body.(*Produce.Request).Acks)
	}
	return true
}

func checkVersion(apiKey protocol.ApiKey, apiVersion int16) error {
	r, ok := versionRanges[apiKey]
	if !ok || apiVersion < r[0] || apiVersion > r[1] {
		return &ErrUnsupportedApiVersion{ApiKey: apiKey, ApiVersion: apiVersion}
	}
	return nil
}

// Encode writes the full framed request: length prefix, common header,
// and the api-specific body produced by the matching protocol/<ApiName>
// package.
func Encode(ctx *protocol.Context, req *Request) ([]byte, error) {
	if err := checkVersion(req.ApiKey, req.ApiVersion); err != nil {
		return nil, err
	}
	body := proto.NewWriter()
	var err error
	switch req.ApiKey {
	case protocol.Produce:
		err = Produce.Encode(body, req.Body.(*Produce.Request), req.ApiVersion, time.Now(), ctx.OnProduceRequestMessages)
	case protocol.Fetch:
		err = Fetch.Encode(body, req.Body.(*Fetch.Request), req.ApiVersion)
	case protocol.ListOffsets:
		err = ListOffsets.Encode(body, req.Body.(*ListOffsets.Request), req.ApiVersion)
	case protocol.Metadata:
		err = Metadata.Encode(body, req.Body.(*Metadata.Request), req.ApiVersion)
	case protocol.OffsetCommit:
		err = OffsetCommit.Encode(body, req.Body.(*OffsetCommit.Request), req.ApiVersion)
	case protocol.OffsetFetch:
		err = OffsetFetch.Encode(body, req.Body.(*OffsetFetch.Request), req.ApiVersion)
	case protocol.GroupCoordinator:
		err = GroupCoordinator.Encode(body, req.Body.(*GroupCoordinator.Request), req.ApiVersion)
	case protocol.JoinGroup:
		err = JoinGroup.Encode(body, ctx, req.Body.(*JoinGroup.Request), req.ApiVersion)
	case protocol.Heartbeat:
		err = Heartbeat.Encode(body, req.Body.(*Heartbeat.Request), req.ApiVersion)
	case protocol.LeaveGroup:
		err = LeaveGroup.Encode(body, req.Body.(*LeaveGroup.Request), req.ApiVersion)
	case protocol.SyncGroup:
		err = SyncGroup.Encode(body, ctx, req.Body.(*SyncGroup.Request))
	case protocol.DescribeGroups:
		err = DescribeGroups.Encode(body, req.Body.(*DescribeGroups.Request), req.ApiVersion)
	case protocol.ListGroups:
		err = ListGroups.Encode(body, req.Body.(*ListGroups.Request), req.ApiVersion)
	case protocol.SaslHandshake:
		err = SaslHandshake.Encode(body, req.Body.(*SaslHandshake.Request), req.ApiVersion)
	case protocol.ApiVersions:
		err = ApiVersions.Encode(body, req.Body.(*ApiVersions.Request), req.ApiVersion)
	case protocol.CreateTopics:
		err = CreateTopics.Encode(body, req.Body.(*CreateTopics.Request), req.ApiVersion)
	case protocol.DeleteTopics:
		err = DeleteTopics.Encode(body, req.Body.(*DeleteTopics.Request), req.ApiVersion)
	default:
		return nil, fmt.Errorf("codec: unknown api key %d", int16(req.ApiKey))
	}
	if err != nil {
		return nil, fmt.Errorf("error encoding %s request: %w", req.ApiKey, err)
	}

	framed := proto.NewWriterSize(body.Len() + 16)
	scope := framed.MarkLength()
	protocol.WriteRequestHeader(framed, req.ApiKey, req.ApiVersion, ctx.CorrelationID, ctx.ClientID)
	framed.WriteRaw(body.Bytes())
	scope.Close()
	return framed.Bytes(), nil
}

// Decode reads a response for apiKey/apiVersion out of b. hasSize is true
// when b's first 4 bytes are the frame length (as read directly off a
// socket); false when the caller already consumed it. An unrecognized
// apiKey decodes to a nil response and nil error: the caller is expected
// to treat a nil response as a protocol error.
func Decode(ctx *protocol.Context, apiKey protocol.ApiKey, apiVersion int16, b []byte, hasSize bool) (interface{}, error) {
	r := proto.NewReader(b)
	if _, err := protocol.ReadCorrelationID(r, hasSize); err != nil {
		return nil, err
	}
	switch apiKey {
	case protocol.Produce:
		return Produce.Decode(r, apiVersion)
	case protocol.Fetch:
		return Fetch.Decode(r, apiVersion)
	case protocol.ListOffsets:
		return ListOffsets.Decode(r, apiVersion)
	case protocol.Metadata:
		return Metadata.Decode(r, apiVersion)
	case protocol.OffsetCommit:
		return OffsetCommit.Decode(r, apiVersion)
	case protocol.OffsetFetch:
		return OffsetFetch.Decode(r, apiVersion)
	case protocol.GroupCoordinator:
		return GroupCoordinator.Decode(r, apiVersion)
	case protocol.JoinGroup:
		return JoinGroup.Decode(r, ctx)
	case protocol.Heartbeat:
		return Heartbeat.Decode(r, apiVersion)
	case protocol.LeaveGroup:
		return LeaveGroup.Decode(r, apiVersion)
	case protocol.SyncGroup:
		return SyncGroup.Decode(r, ctx)
	case protocol.DescribeGroups:
		return DescribeGroups.Decode(r, ctx, apiVersion)
	case protocol.ListGroups:
		return ListGroups.Decode(r, apiVersion)
	case protocol.SaslHandshake:
		return SaslHandshake.Decode(r, apiVersion)
	case protocol.ApiVersions:
		return ApiVersions.Decode(r, apiVersion)
	case protocol.CreateTopics:
		return CreateTopics.Decode(r, apiVersion)
	case protocol.DeleteTopics:
		return DeleteTopics.Decode(r, apiVersion)
	default:
		return nil, nil
	}
}
