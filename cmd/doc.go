// Package cmd implements the command-line interface of rKV. It provides
// commands for running the server and for talking to it as a client.
//
// The package is organized into several subpackages:
//
//   - serve: Starts the server (rkv serve)
//   - kv: Client commands (ping, echo, get, set, config-get) and a load
//     generator (perf)
//   - util: Shared utilities for flags, environment and transports (internal use)
//
// Every flag can also be set through an environment variable RKV_<FLAG> with
// dashes replaced by underscores (e.g. RKV_LOG_LEVEL=debug). Variables are
// also read from .env and .env.local in the working directory.
//
// See rkv --help for a list of all commands.
package cmd
