package kv

import (
	"fmt"

	"github.com/ValentinKolb/rKV/cmd/util"
	"github.com/spf13/cobra"
)

var (
	pingCmd = &cobra.Command{
		Use:   "ping",
		Short: "Checks that the server is reachable",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := rpcClient.Ping(); err != nil {
				return err
			}
			fmt.Println("PONG")
			return nil
		},
	}
	echoCmd = &cobra.Command{
		Use:   "echo [message]",
		Short: "Sends a message that the server echoes back",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			msg, err := rpcClient.Echo(args[0])
			if err != nil {
				return err
			}
			fmt.Println(msg)
			return nil
		},
	}
	setCmd = &cobra.Command{
		Use:   "set [key] [value]",
		Short: "Sets the value for a key",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			px, err := cmd.Flags().GetDuration("px")
			if err != nil {
				return err
			}
			if px < 0 {
				return fmt.Errorf("px must not be negative")
			}
			if err := rpcClient.Set(args[0], []byte(args[1]), px); err != nil {
				return err
			}
			fmt.Println("OK")
			return nil
		},
	}
	getCmd = &cobra.Command{
		Use:   "get [key]",
		Short: "Reads the value for a key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			val, ok, err := rpcClient.Get(key)
			if err != nil {
				return err
			}
			fmt.Printf("key=%s, found=%v, value=%s\n", key, ok, val)
			return nil
		},
	}
	configGetCmd = &cobra.Command{
		Use:   "config-get [parameter]",
		Short: "Reads a server configuration parameter (dir, dbfilename)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			val, err := rpcClient.ConfigGet(args[0])
			if err != nil {
				return err
			}
			fmt.Printf("%s=%s\n", args[0], val)
			return nil
		},
	}
)

func init() {
	setCmd.Flags().Duration("px", 0, util.WrapString("Expire the key after this duration (e.g. 1500ms, 0 = never)"))
}
