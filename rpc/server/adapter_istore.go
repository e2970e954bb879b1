package server

import (
	"fmt"
	"strings"

	"github.com/ValentinKolb/rKV/lib/command"
	"github.com/ValentinKolb/rKV/lib/resp"
	"github.com/ValentinKolb/rKV/lib/store"
)

// ParameterLookup resolves a CONFIG GET parameter name to its value
type ParameterLookup func(name string) (string, bool)

// NewIStoreServerAdapter creates the adapter that maps commands to
// store.IStore calls. params answers CONFIG GET.
func NewIStoreServerAdapter(params ParameterLookup) IRPCServerAdapter {
	return &iStoreServerAdapterImpl{params: params}
}

type iStoreServerAdapterImpl struct {
	params ParameterLookup
}

func (adapter *iStoreServerAdapterImpl) Handle(cmd command.Command, store store.IStore) resp.Value {
	if store == nil {
		return resp.Error("ERR store is nil")
	}

	switch c := cmd.(type) {
	case command.Ping:
		return resp.SimpleString("PONG")

	case command.Echo:
		return resp.BulkString(c.Message)

	case command.Get:
		val, ok, err := store.Get(c.Key)
		if err != nil {
			return errorReply(err)
		}
		if !ok {
			return resp.NullBulkString{}
		}
		return resp.BulkString(val)

	case command.Set:
		if err := store.Set(c.Key, []byte(c.Value), c.ExpiresIn()); err != nil {
			return errorReply(err)
		}
		return resp.SimpleString("OK")

	case command.ConfigGet:
		if adapter.params == nil {
			return nil
		}
		value, ok := adapter.params(c.Parameter)
		if !ok {
			// unknown parameters are ignored
			return nil
		}
		return resp.Array{resp.SimpleString(c.Parameter), resp.BulkString(value)}

	default:
		return resp.Error(fmt.Sprintf("ERR unsupported command %s", cmd.Name()))
	}
}

var lineBreaks = strings.NewReplacer("\r", " ", "\n", " ")

// errorReply converts a store error into an error reply.
// Error replies are single lines.
func errorReply(err error) resp.Value {
	return resp.Error("ERR " + lineBreaks.Replace(err.Error()))
}
