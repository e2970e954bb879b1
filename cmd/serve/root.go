package serve

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	cmdUtil "github.com/ValentinKolb/rKV/cmd/util"
	"github.com/ValentinKolb/rKV/rpc/common"
	"github.com/ValentinKolb/rKV/rpc/server"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	serveCmdConfig = common.DefaultServerConfig()
	ServeCmd       = &cobra.Command{
		Use:     "serve",
		Short:   "Start the rKV server",
		Long:    `Start the rKV server with the specified configuration. The configuration can be set via command line flags or environment variables. The format of the environment variables is RKV_<flag> (e.g. RKV_TIMEOUT=15)`,
		PreRunE: processConfig,
		RunE:    run,
	}
)

func init() {
	defaults := common.DefaultServerConfig()

	// add flags
	key := "endpoint"
	ServeCmd.PersistentFlags().String(key, defaults.Endpoint, cmdUtil.WrapString("The address on which the server will listen (e.g. 127.0.0.1:6379 or /tmp/rkv.sock for the unix transport)"))

	key = "dir"
	ServeCmd.PersistentFlags().String(key, defaults.Dir, cmdUtil.WrapString("Value of the dir parameter returned by CONFIG GET"))

	key = "dbfilename"
	ServeCmd.PersistentFlags().String(key, defaults.DBFilename, cmdUtil.WrapString("Value of the dbfilename parameter returned by CONFIG GET"))

	key = "shards"
	ServeCmd.PersistentFlags().Int(key, defaults.Shards, cmdUtil.WrapString("Number of shards of the in-memory store"))

	key = "sweep-interval"
	ServeCmd.PersistentFlags().Duration(key, defaults.SweepInterval, cmdUtil.WrapString("Interval at which expired keys are evicted"))

	key = "timeout"
	ServeCmd.PersistentFlags().Int64(key, defaults.TimeoutSecond, cmdUtil.WrapString("Idle timeout of a connection in seconds (0 = none)"))

	key = "max-nesting-depth"
	ServeCmd.PersistentFlags().Int(key, defaults.MaxNestingDepth, cmdUtil.WrapString("Maximum nesting of aggregate values in a request"))

	key = "max-request-bytes"
	ServeCmd.PersistentFlags().Int(key, defaults.MaxRequestBytes, cmdUtil.WrapString("Connections buffering more unprocessed bytes than this are closed"))

	key = "rate-limit"
	ServeCmd.PersistentFlags().Float64(key, defaults.RateLimit, cmdUtil.WrapString("Commands per second allowed per connection (0 = unlimited)"))

	key = "rate-burst"
	ServeCmd.PersistentFlags().Int(key, defaults.RateBurst, cmdUtil.WrapString("Burst size of the per connection rate limit"))

	key = "metrics-endpoint"
	ServeCmd.PersistentFlags().String(key, defaults.MetricsEndpoint, cmdUtil.WrapString("Address of the Prometheus /metrics endpoint (empty = disabled)"))

	key = "tcp-nodelay"
	ServeCmd.PersistentFlags().Bool(key, defaults.TCPNoDelay, cmdUtil.WrapString("Whether to enable TCP_NODELAY (only for tcp)"))

	key = "tcp-keepalive"
	ServeCmd.PersistentFlags().Int(key, defaults.TCPKeepAliveSec, cmdUtil.WrapString("The keepalive interval in seconds (0 = disabled, only for tcp)"))

	key = "write-buffer"
	ServeCmd.PersistentFlags().Int(key, defaults.WriteBufferSize/1024, cmdUtil.WrapString("The size of the socket write buffer (in KB, only for tcp)"))

	key = "read-buffer"
	ServeCmd.PersistentFlags().Int(key, defaults.ReadBufferSize/1024, cmdUtil.WrapString("The size of the socket read buffer (in KB, only for tcp)"))
}

// processConfig reads the configuration from the command line flags and environment variables and converts them to the server configuration
func processConfig(cmd *cobra.Command, _ []string) error {
	// bind the flags to viper
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return err
	}

	t, err := common.ParseTransport(viper.GetString("transport"))
	if err != nil {
		return err
	}

	serveCmdConfig.Transport = t
	serveCmdConfig.Endpoint = viper.GetString("endpoint")
	serveCmdConfig.Dir = viper.GetString("dir")
	serveCmdConfig.DBFilename = viper.GetString("dbfilename")
	serveCmdConfig.Shards = viper.GetInt("shards")
	serveCmdConfig.SweepInterval = viper.GetDuration("sweep-interval")
	serveCmdConfig.TimeoutSecond = viper.GetInt64("timeout")
	serveCmdConfig.MaxNestingDepth = viper.GetInt("max-nesting-depth")
	serveCmdConfig.MaxRequestBytes = viper.GetInt("max-request-bytes")
	serveCmdConfig.RateLimit = viper.GetFloat64("rate-limit")
	serveCmdConfig.RateBurst = viper.GetInt("rate-burst")
	serveCmdConfig.MetricsEndpoint = viper.GetString("metrics-endpoint")
	serveCmdConfig.LogLevel = viper.GetString("log-level")
	serveCmdConfig.TCPNoDelay = viper.GetBool("tcp-nodelay")
	serveCmdConfig.TCPKeepAliveSec = viper.GetInt("tcp-keepalive")
	serveCmdConfig.WriteBufferSize = viper.GetInt("write-buffer") * 1024
	serveCmdConfig.ReadBufferSize = viper.GetInt("read-buffer") * 1024

	if serveCmdConfig.SweepInterval <= 0 {
		serveCmdConfig.SweepInterval = 100 * time.Millisecond
	}

	return common.InitLoggers(serveCmdConfig.LogLevel)
}

// run starts the rKV server and blocks until SIGINT or SIGTERM
func run(_ *cobra.Command, _ []string) error {
	t, err := cmdUtil.GetServerTransport(serveCmdConfig.Transport)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	serv := server.NewRPCServer(serveCmdConfig, t)
	return serv.Serve(ctx)
}
