// Package transport defines the interfaces for moving RESP requests and
// replies between rKV clients and the server. Implementations live in the
// tcp and unix sub packages, which share the connection handling of base.
//
// Key Components:
//
//   - IRPCServerTransport: Accepts connections and feeds the buffered bytes of
//     each connection to a ServerHandleFunc.
//
//   - ServerHandleFunc: Consumes one complete request from the front of a
//     buffer and returns the encoded reply. Returning 0 consumed bytes asks the
//     transport for more input, which is how requests split across reads are
//     reassembled.
//
//   - IRPCClientTransport: Sends one encoded request and returns the complete
//     encoded reply.
package transport
