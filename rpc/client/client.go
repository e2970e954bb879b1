package client

import (
	"strconv"
	"time"

	"github.com/ValentinKolb/rKV/lib/db"
	"github.com/ValentinKolb/rKV/lib/resp"
	"github.com/ValentinKolb/rKV/lib/store"
	"github.com/ValentinKolb/rKV/rpc/common"
	"github.com/ValentinKolb/rKV/rpc/transport"
)

// RESPClient sends commands to an rKV (or any Redis compatible) server.
// It implements store.IStore.
//
// Thread-safety: all methods are safe for concurrent use; concurrency is
// bounded by the connections of the transport.
type RESPClient struct {
	rpcClientAdapter
}

var _ store.IStore = (*RESPClient)(nil)

// NewRESPClient connects the transport and creates a new client
func NewRESPClient(
	config common.ClientConfig,
	transport transport.IRPCClientTransport,
) (*RESPClient, error) {
	if err := transport.Connect(config); err != nil {
		return nil, err
	}

	return &RESPClient{
		rpcClientAdapter{
			config:    config,
			transport: transport,
		},
	}, nil
}

// --------------------------------------------------------------------------
// Commands
// --------------------------------------------------------------------------

// Ping checks that the server answers with PONG
func (c *RESPClient) Ping() error {
	reply, err := invokeRPCRequest(c.transport, "PING")
	if err != nil {
		return err
	}
	if s, ok := reply.(resp.SimpleString); !ok || s != "PONG" {
		return unexpectedReply("PING", reply)
	}
	return nil
}

// Echo returns the message as echoed by the server
func (c *RESPClient) Echo(message string) (string, error) {
	reply, err := invokeRPCRequest(c.transport, "ECHO", message)
	if err != nil {
		return "", err
	}
	s, ok := reply.(resp.BulkString)
	if !ok {
		return "", unexpectedReply("ECHO", reply)
	}
	return string(s), nil
}

// ConfigGet reads a server configuration parameter.
// Servers do not answer for unknown parameters, so the call fails with the
// transport timeout in that case.
func (c *RESPClient) ConfigGet(name string) (string, error) {
	reply, err := invokeRPCRequest(c.transport, "CONFIG", "GET", name)
	if err != nil {
		return "", err
	}
	arr, ok := reply.(resp.Array)
	if !ok || len(arr) != 2 {
		return "", unexpectedReply("CONFIG GET", reply)
	}
	value, ok := arr[1].(resp.BulkString)
	if !ok {
		return "", unexpectedReply("CONFIG GET", reply)
	}
	return string(value), nil
}

// --------------------------------------------------------------------------
// Interface Methods (docu see the store package in interface.go)
// --------------------------------------------------------------------------

// Set stores value at key. A positive expireIn is sent as PX in milliseconds,
// rounded up to at least one millisecond.
func (c *RESPClient) Set(key string, value []byte, expireIn time.Duration) error {
	args := []string{"SET", key, string(value)}
	if expireIn > 0 {
		ms := max(expireIn.Milliseconds(), 1)
		args = append(args, "PX", strconv.FormatInt(ms, 10))
	}

	reply, err := invokeRPCRequest(c.transport, args...)
	if err != nil {
		return err
	}
	if s, ok := reply.(resp.SimpleString); !ok || s != "OK" {
		return unexpectedReply("SET", reply)
	}
	return nil
}

func (c *RESPClient) Get(key string) ([]byte, bool, error) {
	reply, err := invokeRPCRequest(c.transport, "GET", key)
	if err != nil {
		return nil, false, err
	}
	switch v := reply.(type) {
	case resp.BulkString:
		return []byte(v), true, nil
	case resp.NullBulkString, resp.Null:
		return nil, false, nil
	default:
		return nil, false, unexpectedReply("GET", reply)
	}
}

// GetDBInfo is not supported over RESP
func (c *RESPClient) GetDBInfo() (db.DatabaseInfo, error) {
	return db.DatabaseInfo{}, store.NewError(store.RetCUnsupportedOperation, "GetDBInfo is not available through the RESP client")
}

// Close closes all connections of the transport
func (c *RESPClient) Close() error {
	Logger.Debugf("Closing client")
	return c.transport.Close()
}
