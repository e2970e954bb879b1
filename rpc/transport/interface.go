package transport

import (
	"context"

	"github.com/ValentinKolb/rKV/rpc/common"
)

// --------------------------------------------------------------------------
// Server Transport
// --------------------------------------------------------------------------

// ServerHandleFunc is called by a server transport with the bytes buffered
// for one connection. It processes the first request in req and returns the
// encoded reply (nil = no reply) and the number of bytes it consumed.
// consumed == 0 means that req does not yet hold a complete request; the
// transport then waits for more bytes.
type ServerHandleFunc func(req []byte) (resp []byte, consumed int)

// IRPCServerTransport is the interface for the RPC transport layer
type IRPCServerTransport interface {
	// RegisterHandler registers the handler that processes buffered requests
	RegisterHandler(handler ServerHandleFunc)
	// Listen accepts connections until ctx is cancelled. It then closes the
	// listener and all live connections and returns once their handlers
	// finished.
	Listen(ctx context.Context, config common.ServerConfig) error
	// ActiveConnections returns the number of currently open connections
	ActiveConnections() int
}

// --------------------------------------------------------------------------
// Client Transport
// --------------------------------------------------------------------------

// IRPCClientTransport is the interface for the RPC client transport
type IRPCClientTransport interface {
	// Connect initializes the transport with the given configuration
	Connect(config common.ClientConfig) error
	// Send writes one encoded request and returns the complete encoded reply
	Send(req []byte) (resp []byte, err error)
	// Close closes the transport connection
	Close() error
}
