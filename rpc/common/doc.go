// Package common provides configuration structures and logging shared by the
// rKV server, client and command line tools.
//
// Key Components:
//
//   - ServerConfig: Listener, storage engine, request limit and observability
//     settings of the server. Parameter exposes the read-only values served by
//     CONFIG GET (dir and dbfilename).
//
//   - ClientConfig: Endpoints, timeouts, retry behavior and socket options of
//     the RESP client.
//
//   - Logger: A logger.ILogger implementation for the dragonboat logger API
//     that prints "LEVEL | name | message" lines. InitLoggers installs it and
//     applies the configured level to all rKV loggers.
package common
