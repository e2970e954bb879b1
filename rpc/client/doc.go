// Package client implements a RESP client for rKV servers.
//
// RESPClient encodes commands as arrays of bulk strings, sends them through an
// IRPCClientTransport (tcp or unix) and decodes the replies. Error replies
// surface as *ServerError. Besides the typed helpers Ping, Echo and ConfigGet
// the client implements store.IStore, so tools written against a local store
// can run against a remote server unchanged.
//
// Usage Example:
//
//	config := common.ClientConfig{
//		Endpoints:              []string{"127.0.0.1:6379"},
//		Transport:              common.TransportTCP,
//		TimeoutSecond:          5,
//		RetryCount:             3,
//		ConnectionsPerEndpoint: 1,
//		SocketConfig:           common.DefaultSocketConfig(),
//	}
//
//	c, err := client.NewRESPClient(config, tcp.NewTCPClientTransport())
//	if err != nil {
//		panic(err)
//	}
//	defer c.Close()
//
//	if err := c.Set("key", []byte("value"), time.Second); err != nil {
//		panic(err)
//	}
package client
