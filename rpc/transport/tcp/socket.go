package tcp

import (
	"net"
	"time"

	"github.com/ValentinKolb/rKV/rpc/common"
)

// applySocketConfig sets the socket options of s on a TCP connection.
// Other connection types are left untouched.
func applySocketConfig(conn net.Conn, s common.SocketConfig) error {
	tcpConn, ok := conn.(*net.TCPConn)
	if !ok {
		return nil
	}

	// Disable Nagle's algorithm if configured
	if err := tcpConn.SetNoDelay(s.TCPNoDelay); err != nil {
		return err
	}

	if s.WriteBufferSize > 0 {
		if err := tcpConn.SetWriteBuffer(s.WriteBufferSize); err != nil {
			return err
		}
	}

	if s.ReadBufferSize > 0 {
		if err := tcpConn.SetReadBuffer(s.ReadBufferSize); err != nil {
			return err
		}
	}

	if s.TCPKeepAliveSec > 0 {
		if err := tcpConn.SetKeepAlive(true); err != nil {
			return err
		}
		if err := tcpConn.SetKeepAlivePeriod(time.Duration(s.TCPKeepAliveSec) * time.Second); err != nil {
			return err
		}
	}

	return nil
}
