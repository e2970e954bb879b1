package client

import (
	"fmt"

	"github.com/ValentinKolb/rKV/lib/resp"
	"github.com/ValentinKolb/rKV/rpc/common"
	"github.com/ValentinKolb/rKV/rpc/transport"
	"github.com/lni/dragonboat/v4/logger"
)

var (
	Logger = logger.GetLogger("client")
)

// ServerError is returned when the server answers with an error reply
type ServerError struct {
	Msg string
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("server error: %s", e.Msg)
}

// rpcClientAdapter stores all data needed by an RPC client
type rpcClientAdapter struct {
	config    common.ClientConfig
	transport transport.IRPCClientTransport
}

// invokeRPCRequest sends args as a command (an array of bulk strings) and
// decodes the reply. Error replies are returned as *ServerError.
func invokeRPCRequest(t transport.IRPCClientTransport, args ...string) (resp.Value, error) {
	req := make(resp.Array, len(args))
	for i, arg := range args {
		req[i] = resp.BulkString(arg)
	}

	respBytes, err := t.Send(resp.Encode(req))
	if err != nil {
		return nil, err
	}

	reply, err := resp.Parse(respBytes)
	if err != nil {
		return nil, fmt.Errorf("invalid reply: %w", err)
	}

	switch e := reply.(type) {
	case resp.Error:
		return nil, &ServerError{Msg: string(e)}
	case resp.BulkError:
		return nil, &ServerError{Msg: string(e)}
	}
	return reply, nil
}

// unexpectedReply reports a reply of the wrong type for a command
func unexpectedReply(cmd string, reply resp.Value) error {
	return fmt.Errorf("unexpected reply to %s: %s", cmd, resp.TypeName(reply))
}
