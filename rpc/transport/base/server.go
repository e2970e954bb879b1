package base

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"time"

	"github.com/ValentinKolb/rKV/rpc/common"
	"github.com/ValentinKolb/rKV/rpc/transport"
	"github.com/lni/dragonboat/v4/logger"
	"github.com/oklog/ulid/v2"
	"github.com/puzpuzpuz/xsync/v3"
	"github.com/sourcegraph/conc"
	"golang.org/x/time/rate"
)

var Logger = logger.GetLogger("transport")

const (
	readChunkSize   = 16 * 1024
	acceptRetryWait = 5 * time.Millisecond
)

// -----------------------------------------------------------
// Interface Definitions for dependency injection
// -----------------------------------------------------------

// IServerConnector defines the interface for transport-specific server operations
type IServerConnector interface {
	// Listen creates a listener and returns it
	Listen(config common.ServerConfig) (net.Listener, error)

	// GetName returns the name of the transport type (e.g., "unix", "tcp")
	GetName() string

	// UpgradeConnection applies protocol-specific settings to an accepted connection
	UpgradeConnection(conn net.Conn, config common.ServerConfig) error
}

// -----------------------------------------------------------
// Helper Types
// -----------------------------------------------------------

// serverTransport implements the core server transport functionality
type serverTransport struct {
	connector IServerConnector
	handler   transport.ServerHandleFunc
	config    common.ServerConfig
	conns     *xsync.MapOf[string, net.Conn] // live connections by id
}

// -----------------------------------------------------------
// Transport Factory Method (used for tcp, unix, etc.)
// -----------------------------------------------------------

// NewBaseServerTransport creates a new base server transport that serves
// every connection in its own goroutine
func NewBaseServerTransport(connector IServerConnector) transport.IRPCServerTransport {
	return &serverTransport{
		connector: connector,
		conns:     xsync.NewMapOf[string, net.Conn](),
	}
}

// --------------------------------------------------------------------------
// Interface Methods (docu see transport.IRPCServerTransport)
// --------------------------------------------------------------------------

func (t *serverTransport) RegisterHandler(handler transport.ServerHandleFunc) {
	t.handler = handler
}

func (t *serverTransport) ActiveConnections() int {
	return t.conns.Size()
}

func (t *serverTransport) Listen(ctx context.Context, config common.ServerConfig) error {
	if t.handler == nil {
		return fmt.Errorf("no handler registered")
	}
	t.config = config

	listener, err := t.connector.Listen(config)
	if err != nil {
		return fmt.Errorf("failed to create listener: %w", err)
	}

	Logger.Infof("Starting %s server on %s", t.connector.GetName(), config.Endpoint)

	var handlers conc.WaitGroup

	// shutdown: stop accepting and unblock all connection reads
	stopped := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
		case <-stopped:
		}
		listener.Close()
		t.conns.Range(func(_ string, conn net.Conn) bool {
			conn.Close()
			return true
		})
	}()

	var acceptErr error
	for {
		conn, err := listener.Accept()
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			if errors.Is(err, net.ErrClosed) {
				acceptErr = err
				break
			}
			Logger.Errorf("Accept error: %v", err)
			time.Sleep(acceptRetryWait)
			continue
		}

		if err := t.connector.UpgradeConnection(conn, config); err != nil {
			Logger.Warningf("Failed to upgrade connection from %s: %v", conn.RemoteAddr(), err)
			conn.Close()
			continue
		}

		handlers.Go(func() {
			t.handleConnection(ctx, conn)
		})
	}

	close(stopped)
	handlers.Wait()
	Logger.Infof("Stopped %s server on %s", t.connector.GetName(), config.Endpoint)

	return acceptErr
}

// --------------------------------------------------------------------------
// Helper Methods
// --------------------------------------------------------------------------

// handleConnection serves one connection until it fails or ctx is cancelled.
//
// Bytes are appended to a pending buffer and handed to the handler as long as
// it consumes complete requests. Replies to all requests found in one read
// are written with a single batched write. A trailing partial request stays
// in the buffer until more bytes arrive.
func (t *serverTransport) handleConnection(ctx context.Context, conn net.Conn) {
	id := ulid.Make().String()
	t.conns.Store(id, conn)
	defer func() {
		t.conns.Delete(id)
		conn.Close()
	}()

	// the connection may have been accepted right before shutdown
	if ctx.Err() != nil {
		return
	}

	Logger.Debugf("[%s] Accepted connection from %s", id, conn.RemoteAddr())

	timeout := time.Duration(t.config.TimeoutSecond) * time.Second

	var limiter *rate.Limiter
	if t.config.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(t.config.RateLimit), max(t.config.RateBurst, 1))
	}

	chunk := make([]byte, readChunkSize)
	pending := make([]byte, 0, readChunkSize)

	for {
		if timeout > 0 {
			if err := conn.SetReadDeadline(time.Now().Add(timeout)); err != nil {
				Logger.Warningf("[%s] Failed to set read deadline: %v", id, err)
				return
			}
		}

		n, readErr := conn.Read(chunk)
		if n > 0 {
			pending = append(pending, chunk[:n]...)

			var (
				replies net.Buffers
				offset  int
			)
			for offset < len(pending) {
				resp, consumed := t.handler(pending[offset:])
				if consumed <= 0 {
					break
				}
				offset += consumed
				if len(resp) > 0 {
					replies = append(replies, resp)
				}
				if limiter != nil {
					if err := limiter.Wait(ctx); err != nil {
						return
					}
				}
			}

			// keep the unconsumed tail at the start of the buffer
			pending = pending[:copy(pending, pending[offset:])]

			if len(replies) > 0 {
				if timeout > 0 {
					if err := conn.SetWriteDeadline(time.Now().Add(timeout)); err != nil {
						Logger.Warningf("[%s] Failed to set write deadline: %v", id, err)
						return
					}
				}
				if _, err := replies.WriteTo(conn); err != nil {
					Logger.Warningf("[%s] Failed to write response: %v", id, err)
					return
				}
			}

			if t.config.MaxRequestBytes > 0 && len(pending) > t.config.MaxRequestBytes {
				Logger.Warningf("[%s] Closing connection, %d pending bytes exceed the limit of %d", id, len(pending), t.config.MaxRequestBytes)
				return
			}
		}

		if readErr != nil {
			switch {
			case errors.Is(readErr, io.EOF):
				Logger.Debugf("[%s] Connection closed by client", id)
			case ctx.Err() != nil || errors.Is(readErr, net.ErrClosed):
				Logger.Debugf("[%s] Connection closed by server", id)
			case errors.Is(readErr, os.ErrDeadlineExceeded):
				Logger.Debugf("[%s] Closing idle connection", id)
			default:
				Logger.Warningf("[%s] Error reading request: %v", id, readErr)
			}
			return
		}
	}
}
