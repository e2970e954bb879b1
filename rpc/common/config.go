package common

import (
	"fmt"
	"math"
	"runtime"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// --------------------------------------------------------------------------
// Transport types
// --------------------------------------------------------------------------

type TransportType string

const (
	TransportTCP  TransportType = "tcp"
	TransportUnix TransportType = "unix"
)

// ParseTransport validates a transport name
func ParseTransport(name string) (TransportType, error) {
	switch t := TransportType(strings.ToLower(name)); t {
	case TransportTCP, TransportUnix:
		return t, nil
	default:
		return "", fmt.Errorf("invalid transport %q, must be one of tcp, unix", name)
	}
}

// --------------------------------------------------------------------------
// Socket options shared by server and client
// --------------------------------------------------------------------------

// SocketConfig holds TCP socket options. Unix sockets ignore them.
type SocketConfig struct {
	TCPNoDelay      bool
	TCPKeepAliveSec int
	ReadBufferSize  int
	WriteBufferSize int
}

// DefaultSocketConfig returns the socket defaults used by server and client
func DefaultSocketConfig() SocketConfig {
	return SocketConfig{
		TCPNoDelay:      true,
		TCPKeepAliveSec: 30,
		ReadBufferSize:  512 * 1024,
		WriteBufferSize: 512 * 1024,
	}
}

// --------------------------------------------------------------------------
// RPC server configuration struct
// --------------------------------------------------------------------------

// ServerConfig holds all configuration parameters of the server. It is
// built once at startup and never changed afterwards.
type ServerConfig struct {
	// listener
	Endpoint  string
	Transport TransportType
	SocketConfig

	// parameters readable with CONFIG GET
	Dir        string
	DBFilename string

	// storage engine
	Shards        int
	SweepInterval time.Duration

	// request limits
	TimeoutSecond   int64 // idle read timeout (0 = none)
	MaxNestingDepth int
	MaxRequestBytes int
	RateLimit       float64 // commands per second and connection (0 = unlimited)
	RateBurst       int

	// observability
	MetricsEndpoint string
	LogLevel        string
}

// DefaultServerConfig returns the server defaults
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Endpoint:        "127.0.0.1:6379",
		Transport:       TransportTCP,
		SocketConfig:    DefaultSocketConfig(),
		Dir:             "/tmp/redis-data",
		DBFilename:      "dump.rdb",
		Shards:          runtime.NumCPU(),
		SweepInterval:   100 * time.Millisecond,
		MaxNestingDepth: 64,
		MaxRequestBytes: 64 * 1024 * 1024,
		LogLevel:        "info",
	}
}

// Parameter returns the value of a configuration parameter readable with
// CONFIG GET. Names are matched case-insensitively, folding ASCII only.
func (c *ServerConfig) Parameter(name string) (string, bool) {
	for i := 0; i < len(name); i++ {
		if name[i] >= utf8.RuneSelf {
			return "", false
		}
	}
	switch cases.Lower(language.Und).String(name) {
	case "dir":
		return c.Dir, true
	case "dbfilename":
		return c.DBFilename, true
	default:
		return "", false
	}
}

// String returns a formatted string representation of the configuration
func (c *ServerConfig) String() string {
	var sb strings.Builder
	addSection, addField := sectionWriter(&sb)

	addSection("Server")
	addField("Endpoint", c.Endpoint)
	addField("Transport", string(c.Transport))
	addField("Idle Timeout", durationOrNone(c.TimeoutSecond))
	if c.Transport == TransportTCP {
		addSocketFields(addField, c.SocketConfig)
	}

	addSection("Limits")
	addField("Max Request Size", fmt.Sprintf("%d bytes", c.MaxRequestBytes))
	addField("Max Nesting Depth", strconv.Itoa(c.MaxNestingDepth))
	if c.RateLimit > 0 {
		addField("Rate Limit", fmt.Sprintf("%g cmd/s (burst %d)", c.RateLimit, c.RateBurst))
	} else {
		addField("Rate Limit", "none")
	}

	addSection("Storage")
	addField("Shards", strconv.Itoa(c.Shards))
	addField("Sweep Interval", c.SweepInterval.String())
	addField("Dir", c.Dir)
	addField("DB Filename", c.DBFilename)

	addSection("Observability")
	addField("Log Level", c.LogLevel)
	if c.MetricsEndpoint != "" {
		addField("Metrics", "http://"+c.MetricsEndpoint+"/metrics")
	} else {
		addField("Metrics", "disabled")
	}

	return sb.String()
}

// --------------------------------------------------------------------------
// RPC client configuration struct
// --------------------------------------------------------------------------

type ClientConfig struct {
	Endpoints              []string
	Transport              TransportType
	TimeoutSecond          int
	RetryCount             int
	ConnectionsPerEndpoint int
	SocketConfig
}

// String returns a formatted string representation of the client configuration
func (c *ClientConfig) String() string {
	var sb strings.Builder
	addSection, addField := sectionWriter(&sb)

	addSection("Client Configuration")
	addField("Transport", string(c.Transport))
	addField("Timeout", fmt.Sprintf("%d sec", c.TimeoutSecond))
	addField("Retry Count", strconv.Itoa(c.RetryCount))
	addField("Connections Per Endpoint", strconv.Itoa(int(math.Max(1, float64(c.ConnectionsPerEndpoint)))))
	if c.Transport == TransportTCP {
		addSocketFields(addField, c.SocketConfig)
	}

	addSection("Endpoints")
	for i, endpoint := range c.Endpoints {
		addField(strconv.Itoa(i), endpoint)
	}

	return sb.String()
}

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

// sectionWriter returns helpers for consistent formatting of config summaries
func sectionWriter(sb *strings.Builder) (func(title string), func(name, value string)) {
	addSection := func(title string) {
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("%s\n", strings.ToUpper(title)))
	}
	addField := func(name, value string) {
		sb.WriteString(fmt.Sprintf("  %-24s: %s\n", name, value))
	}
	return addSection, addField
}

func addSocketFields(addField func(name, value string), s SocketConfig) {
	addField("TCP No Delay", strconv.FormatBool(s.TCPNoDelay))
	addField("TCP Keep Alive", durationOrNone(int64(s.TCPKeepAliveSec)))
	addField("Read Buffer", fmt.Sprintf("%d bytes", s.ReadBufferSize))
	addField("Write Buffer", fmt.Sprintf("%d bytes", s.WriteBufferSize))
}

func durationOrNone(seconds int64) string {
	if seconds <= 0 {
		return "none"
	}
	return fmt.Sprintf("%d sec", seconds)
}
