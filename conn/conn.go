// Package conn implements the per-broker connection multiplexer: one TCP
// socket carrying many concurrently in-flight requests, demultiplexed by
// correlation id. Package codec owns the bytes; this package owns getting
// them to and from the wire.
package conn

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"log"
	"math"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jtarrio/kafkacore/codec"
	"github.com/jtarrio/kafkacore/protocol"
	"github.com/jtarrio/kafkacore/proto"
	"github.com/jtarrio/kafkacore/retry"
)

// correlationGuardBand is how far below math.MaxInt32 the counter wraps to
// 0, per the spec's "reserve a guard band large enough to cover the
// maximum in-flight count" recommendation.
const correlationGuardBand = 100

// DefaultResponseTimeout is the per-request deadline used when Config
// leaves ResponseTimeout at zero.
const DefaultResponseTimeout = 60 * time.Second

// Config configures a new Connection. Endpoint and Context are required;
// everything else has a usable zero value or default.
type Config struct {
	Endpoint Endpoint
	TLS      *tls.Config
	// Context carries the client id and membership-encoder registry
	// every Send shares; its CorrelationID field is ignored (Send
	// manages correlation ids itself).
	Context *protocol.Context
	// Retry governs reconnection. A nil Retry uses a linear backoff
	// starting at 200ms with each delay capped at 2s; it has no attempt
	// limit and no deadline, so it never gives up.
	Retry retry.Policy
	// ResponseTimeout is the per-request deadline. Zero means
	// DefaultResponseTimeout.
	ResponseTimeout time.Duration
	// DialTimeout bounds each individual connection attempt. Zero means
	// 10 seconds.
	DialTimeout time.Duration
	Log         *log.Logger
}

type slot struct {
	apiKey     protocol.ApiKey
	apiVersion int16
	done       chan slotResult
}

type slotResult struct {
	body []byte
	err  error
}

// Connection multiplexes requests and responses over one TCP socket to one
// broker. The zero value is not usable; construct with Dial. Safe for
// concurrent use by any number of callers.
type Connection struct {
	endpoint Endpoint
	tlsConf  *tls.Config
	ctx      *protocol.Context
	retry    retry.Policy
	respTO   time.Duration
	dialTO   time.Duration
	log      *log.Logger

	correlationSeed int32 // atomic

	connMu sync.Mutex
	sock   net.Conn

	writeMu sync.Mutex

	slotsMu sync.Mutex
	slots   map[int32]*slot

	readerGate int32 // atomic: 0 = no reader running, 1 = running
	inError    int32 // atomic bool

	disposed  int32 // atomic bool
	disposeCh chan struct{}
	readerDone chan struct{}
}

// Dial opens a Connection to cfg.Endpoint and starts its background reader.
// The initial connect attempt follows cfg.Retry like any later reconnect.
func Dial(ctx context.Context, cfg Config) (*Connection, error) {
	if cfg.Retry == nil {
		cfg.Retry = retry.Backoff{Delay: 200 * time.Millisecond, Linear: true, MaxDelay: 2 * time.Second, Timeout: 0}
	}
	if cfg.ResponseTimeout == 0 {
		cfg.ResponseTimeout = DefaultResponseTimeout
	}
	if cfg.DialTimeout == 0 {
		cfg.DialTimeout = 10 * time.Second
	}
	if cfg.Log == nil {
		cfg.Log = log.Default()
	}
	c := &Connection{
		endpoint:   cfg.Endpoint,
		tlsConf:    cfg.TLS,
		ctx:        cfg.Context,
		retry:      cfg.Retry,
		respTO:     cfg.ResponseTimeout,
		dialTO:     cfg.DialTimeout,
		log:        cfg.Log,
		slots:      make(map[int32]*slot),
		disposeCh:  make(chan struct{}),
		readerDone: make(chan struct{}),
	}
	if err := c.ensureConnected(ctx); err != nil {
		return nil, err
	}
	go c.readLoop()
	return c, nil
}

// Endpoint returns the immutable endpoint identifier this connection talks
// to, for equality checks and logging.
func (c *Connection) Endpoint() Endpoint { return c.endpoint }

// IsReaderAlive reports whether the background reader goroutine is
// currently running.
func (c *Connection) IsReaderAlive() bool { return atomic.LoadInt32(&c.readerGate) == 1 }

// IsInErrorState reports whether the reader is currently in a read-error
// episode (set on the first failure, cleared on the next successful read).
func (c *Connection) IsInErrorState() bool { return atomic.LoadInt32(&c.inError) == 1 }

func (c *Connection) dial() (net.Conn, error) {
	dialer := &net.Dialer{Timeout: c.dialTO}
	if c.tlsConf != nil {
		return tls.DialWithDialer(dialer, c.endpoint.network(), c.endpoint.Address, c.tlsConf)
	}
	return dialer.Dial(c.endpoint.network(), c.endpoint.Address)
}

// ensureConnected lazily connects, retrying per c.retry. It returns
// ErrConnectionFailed once the policy gives up, and is cancellable: ctx
// cancellation while awaiting a retry delay unblocks immediately with
// ctx.Err().
func (c *Connection) ensureConnected(ctx context.Context) error {
	c.connMu.Lock()
	if c.sock != nil {
		c.connMu.Unlock()
		return nil
	}
	c.connMu.Unlock()

	start := time.Now()
	for attempt := 0; ; attempt++ {
		sock, err := c.dial()
		if err == nil {
			c.connMu.Lock()
			c.sock = sock
			c.connMu.Unlock()
			return nil
		}
		delay, ok := c.retry.NextDelay(attempt, time.Since(start))
		if !ok {
			return fmt.Errorf("%w: %v", ErrConnectionFailed, err)
		}
		timer := time.NewTimer(delay)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-c.disposeCh:
			timer.Stop()
			return ErrDisposed
		}
	}
}

func (c *Connection) currentSock() net.Conn {
	c.connMu.Lock()
	defer c.connMu.Unlock()
	return c.sock
}

// dropSock closes and clears the current socket if it is still bad, so the
// next ensureConnected call reconnects. Safe to call more than once.
func (c *Connection) dropSock(bad net.Conn) {
	c.connMu.Lock()
	defer c.connMu.Unlock()
	if c.sock == bad && c.sock != nil {
		c.sock.Close()
		c.sock = nil
	}
}

func (c *Connection) nextCorrelationID() int32 {
	for {
		id := atomic.AddInt32(&c.correlationSeed, 1) - 1
		if id >= math.MaxInt32-correlationGuardBand {
			atomic.CompareAndSwapInt32(&c.correlationSeed, id+1, 0)
			continue
		}
		return id
	}
}

func (c *Connection) registerSlot(id int32, s *slot) {
	c.slotsMu.Lock()
	defer c.slotsMu.Unlock()
	if _, exists := c.slots[id]; exists {
		panic(fmt.Sprintf("conn: duplicate correlation id %d", id))
	}
	c.slots[id] = s
}

func (c *Connection) removeSlot(id int32) (*slot, bool) {
	c.slotsMu.Lock()
	defer c.slotsMu.Unlock()
	s, ok := c.slots[id]
	if ok {
		delete(c.slots, id)
	}
	return s, ok
}

func (c *Connection) writeFrame(ctx context.Context, frame []byte) error {
	if err := c.ensureConnected(ctx); err != nil {
		return err
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	sock := c.currentSock()
	if sock == nil {
		return fmt.Errorf("%w: no active connection", ErrConnectionFailed)
	}
	if _, err := sock.Write(frame); err != nil {
		c.dropSock(sock)
		return fmt.Errorf("error writing to %s: %w", c.endpoint, err)
	}
	return nil
}

// Send encodes req, writes it, and waits for the matching response. If req
// expects no response (Produce with acks=0), Send returns as soon as the
// write completes and no correlation slot is ever registered.
func (c *Connection) Send(ctx context.Context, req *codec.Request) (interface{}, error) {
	if atomic.LoadInt32(&c.disposed) == 1 {
		return nil, ErrDisposed
	}
	id := c.nextCorrelationID()
	callCtx := c.ctx.WithCorrelation(id)
	frame, err := codec.Encode(callCtx, req)
	if err != nil {
		return nil, err
	}

	if !codec.ExpectsResponse(req) {
		if err := c.writeFrame(ctx, frame); err != nil {
			return nil, err
		}
		return nil, nil
	}

	s := &slot{apiKey: req.ApiKey, apiVersion: req.ApiVersion, done: make(chan slotResult, 1)}
	c.registerSlot(id, s)

	if err := c.writeFrame(ctx, frame); err != nil {
		c.removeSlot(id)
		return nil, err
	}

	timer := time.NewTimer(c.respTO)
	defer timer.Stop()
	start := time.Now()
	select {
	case res := <-s.done:
		if res.err != nil {
			return nil, res.err
		}
		return codec.Decode(callCtx, req.ApiKey, req.ApiVersion, res.body, false)
	case <-timer.C:
		c.removeSlot(id)
		return nil, &TimeoutError{Elapsed: time.Since(start)}
	case <-ctx.Done():
		c.removeSlot(id)
		return nil, ctx.Err()
	case <-c.disposeCh:
		return nil, ErrDisposed
	}
}

// SendRaw writes already-framed bytes with no correlation tracking.
func (c *Connection) SendRaw(ctx context.Context, framed []byte) error {
	if atomic.LoadInt32(&c.disposed) == 1 {
		return ErrDisposed
	}
	return c.writeFrame(ctx, framed)
}

// readLoop is the single background reader. On a non-disposal read error it
// does not force a reconnect: it logs once per error episode and retries
// reading on the same socket, resynchronizing as soon as the next frame
// header is read successfully. This is a known recovery hazard (see
// DESIGN.md): a genuinely dead socket spins here until a concurrent Send
// notices the write side is broken and reconnects out from under the
// reader. errorBackoff keeps that spin from pegging a CPU core.
func (c *Connection) readLoop() {
	if !atomic.CompareAndSwapInt32(&c.readerGate, 0, 1) {
		return
	}
	defer atomic.StoreInt32(&c.readerGate, 0)
	defer close(c.readerDone)

	const errorBackoff = 20 * time.Millisecond
	for {
		select {
		case <-c.disposeCh:
			return
		default:
		}
		frame, skipped, err := c.readFrame()
		if err != nil {
			if atomic.LoadInt32(&c.disposed) == 1 {
				return
			}
			if atomic.CompareAndSwapInt32(&c.inError, 0, 1) {
				c.log.Printf("conn: %s: read error, entering error state: %v", c.endpoint, err)
			}
			select {
			case <-time.After(errorBackoff):
			case <-c.disposeCh:
				return
			}
			continue
		}
		if atomic.CompareAndSwapInt32(&c.inError, 1, 0) {
			c.log.Printf("conn: %s: recovered, skipped %d bytes", c.endpoint, skipped)
		}
		c.dispatch(frame)
	}
}

// readFrame reads one length-prefixed response frame off the current
// socket. It mirrors codec's own framing (4-byte length, then that many
// bytes) because the reader needs the correlation id before it knows which
// decoder to hand the body to. skipped is always 0 here; it exists so a
// future resynchronizing reader (one that scans forward for a plausible
// frame boundary instead of just retrying ReadFull) has somewhere to
// report the discarded byte count the recovery log line names.
func (c *Connection) readFrame() (frame []byte, skipped int, err error) {
	sock := c.currentSock()
	if sock == nil {
		if err := c.ensureConnected(context.Background()); err != nil {
			return nil, 0, err
		}
		sock = c.currentSock()
	}
	var sizeBuf [4]byte
	if _, err := io.ReadFull(sock, sizeBuf[:]); err != nil {
		return nil, 0, err
	}
	size := int32(sizeBuf[0])<<24 | int32(sizeBuf[1])<<16 | int32(sizeBuf[2])<<8 | int32(sizeBuf[3])
	body := make([]byte, size)
	if _, err := io.ReadFull(sock, body); err != nil {
		return nil, 0, err
	}
	return body, 0, nil
}

func (c *Connection) dispatch(body []byte) {
	r := proto.NewReader(body)
	id, err := r.ReadInt32()
	if err != nil {
		c.log.Printf("conn: %s: malformed response frame: %v", c.endpoint, err)
		return
	}
	s, ok := c.removeSlot(id)
	if !ok {
		c.log.Printf("conn: %s: no pending request for correlation id %d, discarding", c.endpoint, id)
		return
	}
	select {
	case s.done <- slotResult{body: body}:
	default:
	}
}

// Dispose cancels the reader, disposes the socket, and fails every pending
// slot with ErrDisposed. Idempotent: later calls are no-ops.
func (c *Connection) Dispose() error {
	if !atomic.CompareAndSwapInt32(&c.disposed, 0, 1) {
		return nil
	}
	close(c.disposeCh)

	c.slotsMu.Lock()
	pending := c.slots
	c.slots = make(map[int32]*slot)
	c.slotsMu.Unlock()
	for _, s := range pending {
		select {
		case s.done <- slotResult{err: ErrDisposed}:
		default:
		}
	}

	c.connMu.Lock()
	if c.sock != nil {
		c.sock.Close()
		c.sock = nil
	}
	c.connMu.Unlock()

	select {
	case <-c.readerDone:
	case <-time.After(time.Second):
	}
	return nil
}
