// Package protocol defines the shared vocabulary of the Kafka wire codec:
// the ApiKey enum, the ErrorCode/KafkaError taxonomy, the common request
// header framing, and RequestContext, the immutable per-call bundle of API
// version, correlation id, client id, and pluggable membership encoders
// that every per-API package (protocol/Produce, protocol/Fetch, ...)
// consumes. It intentionally has no knowledge of any specific API body;
// that lives one level down, in the per-API packages, so that this package
// stays import-cycle-free and reusable by all of them.
package protocol

import (
	"fmt"

	"github.com/jtarrio/kafkacore/membership"
	"github.com/jtarrio/kafkacore/proto"
)

// ApiKey identifies a request/response family, matching the wire value
// Kafka brokers expect.
type ApiKey int16

const (
	Produce          ApiKey = 0
	Fetch            ApiKey = 1
	ListOffsets      ApiKey = 2
	Metadata         ApiKey = 3
	OffsetCommit     ApiKey = 8
	OffsetFetch      ApiKey = 9
	GroupCoordinator ApiKey = 10
	JoinGroup        ApiKey = 11
	Heartbeat        ApiKey = 12
	LeaveGroup       ApiKey = 13
	SyncGroup        ApiKey = 14
	DescribeGroups   ApiKey = 15
	ListGroups       ApiKey = 16
	SaslHandshake    ApiKey = 17
	ApiVersions      ApiKey = 18
	CreateTopics     ApiKey = 19
	DeleteTopics     ApiKey = 20
)

// Names maps a wire ApiKey value to its conventional name, for logging.
var Names = map[ApiKey]string{
	Produce:          "Produce",
	Fetch:            "Fetch",
	ListOffsets:      "ListOffsets",
	Metadata:         "Metadata",
	OffsetCommit:     "OffsetCommit",
	OffsetFetch:      "OffsetFetch",
	GroupCoordinator: "GroupCoordinator",
	JoinGroup:        "JoinGroup",
	Heartbeat:        "Heartbeat",
	LeaveGroup:       "LeaveGroup",
	SyncGroup:        "SyncGroup",
	DescribeGroups:   "DescribeGroups",
	ListGroups:       "ListGroups",
	SaslHandshake:    "SaslHandshake",
	ApiVersions:      "ApiVersions",
	CreateTopics:     "CreateTopics",
	DeleteTopics:     "DeleteTopics",
}

func (k ApiKey) String() string {
	if name, ok := Names[k]; ok {
		return name
	}
	return fmt.Sprintf("ApiKey(%d)", int16(k))
}

// ErrorCode is the signed 16-bit error taxonomy Kafka carries at the top
// level, per-topic, or per-partition level of a response, depending on the
// API. 0 means no error.
type ErrorCode int16

const ErrNone ErrorCode = 0

// KafkaError wraps a non-zero ErrorCode as a Go error. The wire codec never
// raises this itself: a response decodes successfully regardless of the
// error codes it carries, and it is up to the caller to inspect them and
// construct a KafkaError if it wants one.
type KafkaError struct {
	Code ErrorCode
}

func (e *KafkaError) Error() string {
	return fmt.Sprintf("kafka error code %d", e.Code)
}

// Context is the immutable bundle threaded through a single encode/decode
// call: API version, correlation id, client id, the group protocol type
// (for JoinGroup/SyncGroup/DescribeGroups), the membership-encoder
// registry those APIs consult, and an optional Produce telemetry sink.
// Derived contexts (WithCorrelation, WithAPIVersion) share the underlying
// registry and telemetry sink; callers must not mutate a Context shared
// across goroutines.
type Context struct {
	apiVersion    int16
	hasAPIVersion bool
	CorrelationID int32
	ClientID      *string
	ProtocolType  string
	Encoders      *membership.Registry

	// OnProduceRequestMessages, if non-nil, is invoked exactly once per
	// Produce encode with the number of messages, the uncompressed
	// message-set size, and the on-wire (compressed) message-set size
	// (equal to the uncompressed size when no compression was used).
	OnProduceRequestMessages func(count, requestBytes, compressedBytes int)
}

// NewContext returns a Context with the given client id and an empty
// membership-encoder registry. API version is left unspecified: callers
// that care about a specific version call WithAPIVersion.
func NewContext(clientID string) *Context {
	return &Context{
		ClientID: &clientID,
		Encoders: membership.NewRegistry(),
	}
}

// WithCorrelation returns a copy of c with CorrelationID replaced. Required
// invariant: the context passed to Decode must carry the same API version
// used for the matching Encode call.
func (c *Context) WithCorrelation(id int32) *Context {
	cp := *c
	cp.CorrelationID = id
	return &cp
}

// WithAPIVersion returns a copy of c pinned to the given API version.
func (c *Context) WithAPIVersion(v int16) *Context {
	cp := *c
	cp.apiVersion = v
	cp.hasAPIVersion = true
	return &cp
}

// APIVersion returns the pinned API version, or def if none was set via
// WithAPIVersion.
func (c *Context) APIVersion(def int16) int16 {
	if c.hasAPIVersion {
		return c.apiVersion
	}
	return def
}

// HasAPIVersion reports whether WithAPIVersion has pinned a version.
func (c *Context) HasAPIVersion() bool { return c.hasAPIVersion }

// WriteRequestHeader writes the common request header -- api_key,
// api_version, correlation_id, client_id -- that precedes every request
// body on the wire (§6: "Request frame").
func WriteRequestHeader(w *proto.Writer, apiKey ApiKey, apiVersion int16, correlationID int32, clientID *string) {
	w.WriteInt16(int16(apiKey))
	w.WriteInt16(apiVersion)
	w.WriteInt32(correlationID)
	w.WriteNullableString(clientID)
}

// ReadCorrelationID reads the 4-byte correlation id that begins every
// response frame. When hasSize is true, b's leading 4 bytes are the
// overall frame length and are skipped first; when false, the caller has
// already consumed that length (e.g. the connection multiplexer's reader
// loop, which needed it to know how many bytes to read off the socket).
func ReadCorrelationID(r *proto.Reader, hasSize bool) (int32, error) {
	if hasSize {
		if _, err := r.ReadInt32(); err != nil {
			return 0, fmt.Errorf("error reading response size: %w", err)
		}
	}
	id, err := r.ReadInt32()
	if err != nil {
		return 0, fmt.Errorf("error reading correlation id: %w", err)
	}
	return id, nil
}

// Frame wraps body with its 4-byte length prefix, producing the bytes
// ready to write to the wire.
func Frame(body []byte) []byte {
	w := proto.NewWriterSize(len(body) + 4)
	w.WriteInt32(int32(len(body)))
	w.WriteRaw(body)
	return w.Bytes()
}

// PartitionGroup is one partition's worth of items inside a TopicGroup.
type PartitionGroup[T any] struct {
	Partition int32
	Items     []T
}

// TopicGroup is one topic's worth of partitions inside the result of
// GroupByTopicPartition.
type TopicGroup[T any] struct {
	Topic      string
	Partitions []PartitionGroup[T]
}

// GroupByTopicPartition groups a flat caller-supplied slice by topic (outer)
// then partition (inner), per the grouping rule every multi-topic API
// (Produce, Fetch, ListOffsets, OffsetCommit, OffsetFetch) shares: a
// (topic, partition) pair's position in the encoded stream is determined by
// its first occurrence in items, and items within a partition keep the
// caller's relative order.
func GroupByTopicPartition[T any](items []T, topicOf func(T) string, partitionOf func(T) int32) []TopicGroup[T] {
	topicIndex := make(map[string]int)
	var topics []*TopicGroup[T]
	for _, item := range items {
		topic := topicOf(item)
		ti, ok := topicIndex[topic]
		if !ok {
			ti = len(topics)
			topicIndex[topic] = ti
			topics = append(topics, &TopicGroup[T]{Topic: topic})
		}
		tg := topics[ti]
		partition := partitionOf(item)
		pi := -1
		for i := range tg.Partitions {
			if tg.Partitions[i].Partition == partition {
				pi = i
				break
			}
		}
		if pi == -1 {
			tg.Partitions = append(tg.Partitions, PartitionGroup[T]{Partition: partition})
			pi = len(tg.Partitions) - 1
		}
		tg.Partitions[pi].Items = append(tg.Partitions[pi].Items, item)
	}
	out := make([]TopicGroup[T], len(topics))
	for i, tg := range topics {
		out[i] = *tg
	}
	return out
}
