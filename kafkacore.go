/*
Package kafkacore is a low level library for talking the Kafka wire protocol
over a single multiplexed connection. It has one external dependency
(google/uuid, for consumer-group member ids). It is not modeled on the Java
client.


Project Scope

The library focuses on wire-level request/response encoding and connection
management: building and parsing Kafka protocol messages, and multiplexing
many concurrent in-flight requests over one TCP connection per broker.
Partition assignment, offset management, and other consumer/producer-group
semantics are left to the caller; this package only gets bytes to and from
a broker in the shape it expects.


Get Started

Read the documentation for the "conn" and "codec" packages.


Design Decisions

1. Focus on the legacy message format. Kafka protocol Produce and Fetch API
calls operate on message sets: length-prefixed sequences of individually
CRC-protected messages, optionally wrapped as a whole in a single compressed
message. Building and parsing of message sets is separate from sending and
receiving requests; see package message.

2. Asynchronous, pipelined connections. Kafka's wire protocol is asynchronous:
a single connection can have many requests awaiting response from the broker
at once, distinguished by correlation id. Package conn multiplexes exactly
that way, with one background reader goroutine per connection matching
responses back to their callers by correlation id, rather than serializing
calls the way a naive synchronous client would.

3. Explicit, versioned codecs. Each API and version is its own hand-written
encode/decode pair in package protocol/<ApiName>, rather than one generic
reflection-driven marshaler: per-version field layouts differ enough, and
byte-exact framing matters enough, that static struct tags cannot carry the
whole contract.

4. Limited use of data hiding. The library is not intended to be child proof.
Most internal structures are exposed to make debugging and metrics collection
easier.
*/
package kafkacore

import (
	"time"

	"github.com/jtarrio/kafkacore/protocol"
)

// ErrorCode and KafkaError are re-exported from package protocol so that
// callers of the top-level package need not import it directly just to
// inspect a response's error codes.
type ErrorCode = protocol.ErrorCode
type KafkaError = protocol.KafkaError

const ErrNone = protocol.ErrNone

// DialTimeout is 10 seconds, the same value conn.Config falls back to when
// its own DialTimeout field is zero. Package conn does not read this
// constant.
const DialTimeout = 10 * time.Second

// ConnectionTTL is zero. Package conn does not read it: a connection is
// never proactively recycled by age.
const ConnectionTTL = 0
