package server

import (
	"github.com/ValentinKolb/rKV/lib/command"
	"github.com/ValentinKolb/rKV/lib/resp"
	"github.com/ValentinKolb/rKV/lib/store"
)

// IRPCServerAdapter is the interface for all RPC server adapters.
// It executes interpreted commands against a store.
type IRPCServerAdapter interface {
	// Handle executes cmd against store and returns the reply value.
	// A nil reply means that nothing is written back to the client.
	// Failures are returned as resp.Error values.
	Handle(cmd command.Command, store store.IStore) resp.Value
}
