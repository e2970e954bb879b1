package server

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ValentinKolb/rKV/lib/command"
	"github.com/ValentinKolb/rKV/lib/db"
	"github.com/ValentinKolb/rKV/lib/db/engines/maple"
	"github.com/ValentinKolb/rKV/lib/resp"
	"github.com/ValentinKolb/rKV/lib/store"
	"github.com/ValentinKolb/rKV/lib/store/lstore"
	"github.com/ValentinKolb/rKV/rpc/common"
	"github.com/ValentinKolb/rKV/rpc/transport"
	"github.com/lni/dragonboat/v4/logger"
	"github.com/sourcegraph/conc"
)

var Logger = logger.GetLogger("rpc")

// invalidCommandReply is written for every request that is not a valid command
var invalidCommandReply = resp.Encode(resp.Error("ERR invalid command"))

// NewRPCServer creates a new RPC server
// It takes a config and a transport as parameters
//
// Usage:
//
//	s := server.NewRPCServer(
//		config,
//		tcp.NewTCPServerTransport(),
//	)
//
//	if err := s.Serve(ctx); err != nil {
//		panic(err)
//	}
func NewRPCServer(
	config common.ServerConfig,
	transport transport.IRPCServerTransport,
) *rpcServer {
	Logger.Infof("Created RPC Server")
	Logger.Infof(config.String())

	return &rpcServer{
		config:    config,
		transport: transport,
		decoder:   resp.NewDecoder(config.MaxNestingDepth),
		adapter:   NewIStoreServerAdapter(config.Parameter),
	}
}

type rpcServer struct {
	config    common.ServerConfig
	transport transport.IRPCServerTransport
	decoder   *resp.Decoder
	adapter   IRPCServerAdapter
	store     store.IStore
	metrics   *serverMetrics
}

// handle is the transport.ServerHandleFunc of the server. It executes the
// command at the front of req.
//
// A truncated command consumes nothing, so the transport waits for more
// bytes. A well framed but invalid command consumes exactly its frame. Input
// that can not be framed at all consumes the whole buffer, since there is no
// way to find the start of the next command.
func (s *rpcServer) handle(req []byte) ([]byte, int) {
	cmd, n, err := command.ParseFrame(s.decoder, req)
	if err != nil {
		if errors.Is(err, resp.ErrUnexpectedEnd) {
			return nil, 0
		}
		if n == 0 {
			n = len(req)
		}
		Logger.Debugf("Invalid command: %v", err)
		s.metrics.invalidCommand()
		return invalidCommandReply, n
	}

	start := time.Now()
	reply := s.adapter.Handle(cmd, s.store)
	s.metrics.observe(cmd.Name(), start)

	if reply == nil {
		return nil, n
	}
	return resp.Encode(reply), n
}

// init creates the store and the metrics and registers the transport handler
func (s *rpcServer) init() error {
	if s.transport == nil {
		return fmt.Errorf("no transport configured")
	}

	// Function to create a new database instance
	dbFactory := func() db.KVDB {
		return maple.NewMapleDB(&maple.DBOptions{
			NumShards:     s.config.Shards,
			SweepInterval: s.config.SweepInterval,
		})
	}

	s.store = lstore.NewLocalStore(dbFactory)
	s.metrics = newServerMetrics(s.transport, s.store)
	s.transport.RegisterHandler(s.handle)

	Logger.Infof("rKV setup completed successfully")
	return nil
}

// Serve initializes the store and serves connections until ctx is
// cancelled. On return all connections are closed and the store is shut down.
func (s *rpcServer) Serve(ctx context.Context) error {
	if err := s.init(); err != nil {
		return err
	}
	defer func() {
		if err := s.store.Close(); err != nil {
			Logger.Warningf("Failed to close store: %v", err)
		}
	}()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg conc.WaitGroup
	if s.config.MetricsEndpoint != "" {
		wg.Go(func() {
			s.metrics.serve(ctx, s.config.MetricsEndpoint)
		})
	}

	err := s.transport.Listen(ctx, s.config)

	// stop the metrics endpoint as well if the transport failed
	cancel()
	wg.Wait()

	return err
}
